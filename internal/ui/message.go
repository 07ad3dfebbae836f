package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/likesync/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgPlanReady MsgKind = iota
	MsgProgressUpdate
	MsgSyncComplete
)

type planData struct {
	plan *tasks.SyncPlan
	err  error
}

type resultData struct {
	result *tasks.SyncResult
	err    error
}

// planReadyMsg is the constructor for [MsgPlanReady]
func planReadyMsg(plan *tasks.SyncPlan, err error) Msg {
	return Msg{kind: MsgPlanReady, data: planData{plan, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// syncCompleteMsg is the constructor for [MsgSyncComplete]
func syncCompleteMsg(result *tasks.SyncResult, err error) Msg {
	return Msg{kind: MsgSyncComplete, data: resultData{result, err}}
}
