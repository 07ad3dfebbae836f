package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/likesync/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoadingView ViewState = iota
	DeltaView
	ConfirmView
	SyncView
	ResultView
)

// Syncer previews and applies playlist syncs (satisfied by [tasks.Engine]).
type Syncer interface {
	Preview(ctx context.Context, playlistID string, progress chan<- tasks.ProgressUpdate) (*tasks.SyncPlan, error)
	Apply(ctx context.Context, plan *tasks.SyncPlan, opts tasks.SyncOptions, progress chan<- tasks.ProgressUpdate) (*tasks.SyncResult, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	engine       Syncer
	playlistID   string
	opts         tasks.SyncOptions
	width        int
	height       int
	changes      list.Model
	plan         *tasks.SyncPlan
	progressChan chan tasks.ProgressUpdate
	finish       func() Msg
	progress     tasks.ProgressUpdate
	result       *tasks.SyncResult
	err          error
	spinner      spinner.Model
	bar          progress.Model
	help         help.Model
	keys         keyMap
}

// NewModel creates a TUI model that syncs playlistID with opts.
func NewModel(ctx context.Context, engine Syncer, playlistID string, opts tasks.SyncOptions) *Model {
	return &Model{
		ctx:        ctx,
		view:       LoadingView,
		engine:     engine,
		playlistID: playlistID,
		opts:       opts,
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.title.UnsetMarginBottom())),
		bar:        progress.New(progress.WithDefaultGradient()),
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

// Result returns the last sync outcome once the program has exited.
func (m *Model) Result() (*tasks.SyncResult, error) {
	return m.result, m.err
}

// Init starts the preview.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.preview())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = max(msg.Width-8, 10)
		if m.plan != nil {
			m.changes.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) && m.view != SyncView {
			return m, tea.Quit
		}
		switch m.view {
		case DeltaView:
			return m.handleDeltaKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateList(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgPlanReady:
		data := msg.data.(planData)
		if data.err != nil {
			m.err = data.err
			m.view = ResultView
			return m, nil
		}
		m.setPlan(data.plan)
		m.view = DeltaView
		return m, nil

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgSyncComplete:
		data := msg.data.(resultData)
		m.result = data.result
		m.err = data.err
		m.progressChan = nil
		m.view = ResultView
		return m, nil
	}
	return m, nil
}

func (m *Model) setPlan(plan *tasks.SyncPlan) {
	m.plan = plan
	m.changes = list.New(changeItems(plan), list.NewDefaultDelegate(), 0, 0)
	m.changes.Title = fmt.Sprintf("Playlist %s: %d to add, %d to remove", plan.PlaylistID, len(plan.Delta.ToAdd), len(plan.Delta.ToRemove))
	m.changes.SetShowHelp(false)
	m.changes.SetSize(m.width-4, m.height-8)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case LoadingView:
		return fmt.Sprintf("%s Comparing liked tracks with playlist %s...\n", m.spinner.View(), m.playlistID)
	case DeltaView:
		return m.renderDelta()
	case ConfirmView:
		return m.renderConfirm()
	case SyncView:
		return m.renderSync()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleDeltaKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.changes.FilterState() == list.Filtering {
		return m.updateList(msg)
	}

	switch {
	case key.Matches(msg, m.keys.enter):
		if m.plan.Delta.IsEmpty() {
			return m, nil
		}
		m.view = ConfirmView
		return m, nil
	case key.Matches(msg, m.keys.restart):
		return m, m.restart()
	}
	return m.updateList(msg)
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		m.view = SyncView
		return m, m.startSync()
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back):
		m.view = DeltaView
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.restart) {
		return m, m.restart()
	}
	return m, nil
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.view != DeltaView {
		return m, nil
	}
	var cmd tea.Cmd
	m.changes, cmd = m.changes.Update(msg)
	return m, cmd
}

func (m *Model) restart() tea.Cmd {
	m.view = LoadingView
	m.plan = nil
	m.result = nil
	m.err = nil
	m.progress = tasks.ProgressUpdate{}
	return tea.Batch(m.spinner.Tick, m.preview())
}

func (m *Model) preview() tea.Cmd {
	ctx, engine, id := m.ctx, m.engine, m.playlistID
	return func() tea.Msg {
		plan, err := engine.Preview(ctx, id, nil)
		return planReadyMsg(plan, err)
	}
}

func (m *Model) startSync() tea.Cmd {
	ch := make(chan tasks.ProgressUpdate, 50)
	var result *tasks.SyncResult
	var err error

	go func(plan *tasks.SyncPlan) {
		result, err = m.engine.Apply(m.ctx, plan, m.opts, ch)
		close(ch)
	}(m.plan)

	m.progressChan = ch
	m.finish = func() Msg { return syncCompleteMsg(result, err) }
	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	ch, finish := m.progressChan, m.finish
	return func() tea.Msg {
		update, ok := <-ch
		if !ok {
			return finish()
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderDelta() string {
	var helpKeys []key.Binding
	if m.plan.Delta.IsEmpty() {
		helpKeys = []key.Binding{m.keys.restart, m.keys.quit}
		msg := styles.ok.Render("✓ Playlist already matches your liked tracks")
		return fmt.Sprintf("%s\n\n%s", msg, m.help.ShortHelpView(helpKeys))
	}

	helpKeys = []key.Binding{m.keys.up, m.keys.down, m.keys.enter, m.keys.restart, m.keys.quit}
	return fmt.Sprintf("%s\n\n%s", m.changes.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderConfirm() string {
	verb := "Apply"
	if m.opts.DryRun {
		verb = "Dry run"
	}
	title := styles.title.Render(fmt.Sprintf("%s changes to playlist %s?", verb, m.plan.PlaylistID))
	info := fmt.Sprintf("Add: %d\nRemove: %d\n", len(m.plan.Delta.ToAdd), len(m.plan.Delta.ToRemove))

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	return fmt.Sprintf("%s\n%s\n%s", title, info, m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderSync() string {
	title := styles.title.Render("Syncing Playlist")

	var phase string
	switch m.progress.Phase {
	case tasks.AddTracks:
		phase = "Adding tracks"
	case tasks.RemoveTracks:
		phase = "Removing tracks"
	case tasks.Complete:
		phase = "Finishing"
	default:
		phase = "Starting"
	}

	ratio := 0.0
	if m.progress.Total > 0 {
		ratio = float64(m.progress.Step) / float64(m.progress.Total)
	}

	return fmt.Sprintf("%s\n%s %s\n%s\n%s", title, m.spinner.View(), phase, m.bar.ViewAs(ratio), m.progress.Message)
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.quit})

	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Sync failed: %v", m.err)) + "\n\n" + helpView
	}
	if m.result == nil {
		return styles.err.Render("No result available") + "\n\n" + helpView
	}

	var b strings.Builder
	if m.result.DryRun {
		b.WriteString(styles.warn.Render("Dry run: no changes written"))
	} else {
		b.WriteString(styles.ok.Render("✓ Sync Complete!"))
	}
	fmt.Fprintf(&b, "\n\nAdded: %d\nRemoved: %d\n", len(m.result.Added), len(m.result.Removed))

	if len(m.result.Failed) > 0 {
		b.WriteString("\n" + styles.warn.Render(fmt.Sprintf("Failed to write %d tracks:", m.result.FailedCount())))
		for _, f := range m.result.Failed {
			for _, id := range f.IDs {
				fmt.Fprintf(&b, "\n  • %s (%s)", m.result.Plan.Describe(id), f.Op)
			}
		}
		b.WriteString("\n")
	}

	return fmt.Sprintf("%s\n%s", b.String(), helpView)
}
