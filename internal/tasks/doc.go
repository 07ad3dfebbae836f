// Package tasks orchestrates liked-tracks sync and local library matching with real-time progress reporting.
//
// # Core Operations
//
//  1. [Engine.Preview] : Read-only sync plan
//     - Fetches liked tracks (source of truth) and the target playlist
//     - Reconciles the two id sets into tracks to add and remove
//     - Merges both collections into a details lookup for logs and email
//
//  2. [Engine.Sync] : Preview, then [Engine.Apply]
//     - Writes adds then removes in chunks of at most 100 ids
//     - A failed chunk is logged with its track details and recorded; later chunks still run
//     - Dry runs skip every write
//     - Records a run summary through the optional [RunRecorder]
//
//  3. [Engine.MatchLibrary] : Local files → catalog tracks
//     - Reads tags through a [LibraryLister]
//     - Searches each entry with apostrophe words dropped from the title
//     - Picks the most popular duration-compatible candidate and the best scored candidate
//     - Saves rows through the optional [MatchStore]
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
// Updates use select with default to prevent blocking.
//
// # Implementation
//
// [Engine] depends on:
//   - [services.Catalog] : streaming catalog client
//   - [LibraryLister] : local tag reader (library.Reader)
//   - [MatchStore] and [RunRecorder] : optional persistence (repositories)
package tasks
