// Package ui implements an interactive terminal sync preview using bubbletea's Elm architecture.
//
// The TUI walks through one sync of the liked tracks into the target playlist:
//  1. [LoadingView] : Fetch liked tracks and the playlist, compute the delta
//  2. [DeltaView] : Browse pending additions and removals by name
//  3. [ConfirmView] : Confirm the writes
//  4. [SyncView] : Monitor chunk progress
//  5. [ResultView] : Counts written plus any failed chunks
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the sync engine.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, r, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
