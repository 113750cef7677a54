// Package ui provides the Bubble Tea TUI for quotebox.
package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/quotebox/internal/app"
	"github.com/five82/quotebox/internal/logtail"
	"github.com/five82/quotebox/internal/quote"
	"github.com/five82/quotebox/internal/reconcile"
	"github.com/five82/quotebox/internal/state"
)

// Engine is the part of app.Engine the UI drives.
type Engine interface {
	Snapshot() state.Snapshot
	ShowRandom() (quote.Record, bool)
	AddQuote(ctx context.Context, text, category string) (quote.Record, error)
	CycleFilter(ctx context.Context) (string, error)
	SetTheme(ctx context.Context, name string) error
	Sync(ctx context.Context) (app.CycleResult, error)
	ResolveConflict(ctx context.Context, id string, choice reconcile.Choice) error
	ImportFile(ctx context.Context, path string) (int, error)
	ExportFile(path string) (string, error)
	SyncEnabled() bool
}

var _ Engine = (*app.Engine)(nil)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Engine    Engine
	LogPath   string // activity pane source; empty hides the pane
	PollTick  time.Duration
	SyncEvery time.Duration // shown in the header
	ThemeName string
}

type bannerKind int

const (
	bannerInfo bannerKind = iota
	bannerSuccess
	bannerError
)

type banner struct {
	text  string
	kind  bannerKind
	until time.Time
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	engine    Engine
	logPath   string
	pollTick  time.Duration
	syncEvery time.Duration
	keys      keyMap
	now       func() time.Time

	// UI state
	theme        Theme
	width        int
	height       int
	ready        bool
	showHelp     bool
	showActivity bool
	modal        Modal
	banner       banner
	syncing      bool

	// Data state
	snapshot    state.Snapshot
	current     *quote.Record
	activity    []logtail.Entry
	deferred    map[string]bool // conflicts the user postponed
	lastUpdated time.Time
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick == 0 {
		pollTick = DefaultUIInterval
	}

	m := Model{
		ctx:          ctx,
		engine:       opts.Engine,
		logPath:      opts.LogPath,
		pollTick:     pollTick,
		syncEvery:    opts.SyncEvery,
		keys:         DefaultKeyMap(),
		now:          time.Now,
		theme:        GetTheme(opts.ThemeName),
		showActivity: opts.LogPath != "",
		deferred:     make(map[string]bool),
	}
	if m.engine != nil {
		m.snapshot = m.engine.Snapshot()
		m.restoreOrPick()
	}
	return m
}

// restoreOrPick shows the last viewed quote of this session, or a random one.
func (m *Model) restoreOrPick() {
	if m.snapshot.LastViewed != nil {
		r := *m.snapshot.LastViewed
		m.current = &r
		return
	}
	m.pickQuote()
}

func (m *Model) pickQuote() {
	if m.engine == nil {
		return
	}
	if r, ok := m.engine.ShowRandom(); ok {
		m.current = &r
	} else {
		m.current = nil
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.pollTick)}
	if m.engine != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.engine))
	}
	if cmd := m.refreshActivity(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.lastUpdated = m.now()
		if m.currentMatchesFilter() {
			m.refreshCurrent()
		} else {
			m.pickQuote()
		}
		return m, m.promptConflict()

	case activityMsg:
		m.activity = []logtail.Entry(msg)
		return m, nil

	case addSubmitMsg:
		return m, addQuoteCmd(m.ctx, m.engine, msg)

	case importSubmitMsg:
		return m, importCmd(m.ctx, m.engine, msg.path)

	case resolveSubmitMsg:
		return m, resolveCmd(m.ctx, m.engine, msg)

	case deferConflictMsg:
		m.deferred[msg.id] = true
		m.setBanner("Conflict postponed; press c to resolve", bannerInfo)
		return m, nil

	case addDoneMsg:
		if msg.err != nil {
			m.setBanner(errorText("Add failed", msg.err), bannerError)
			return m, nil
		}
		r := msg.record
		m.current = &r
		m.setBanner("New quote added!", bannerSuccess)
		return m, fetchSnapshotCmd(m.engine)

	case importDoneMsg:
		if msg.err != nil {
			m.setBanner(errorText("Import failed", msg.err), bannerError)
			return m, nil
		}
		m.snapshot = m.engine.Snapshot()
		m.pickQuote()
		m.setBanner(fmt.Sprintf("Imported %d quotes", msg.count), bannerSuccess)
		return m, nil

	case exportDoneMsg:
		if msg.err != nil {
			m.setBanner(errorText("Export failed", msg.err), bannerError)
			return m, nil
		}
		m.setBanner("Exported to "+msg.path, bannerSuccess)
		return m, nil

	case filterDoneMsg:
		if msg.err != nil {
			m.setBanner(errorText("Could not save category", msg.err), bannerError)
		}
		m.snapshot = m.engine.Snapshot()
		m.pickQuote()
		return m, nil

	case syncDoneMsg:
		m.syncing = false
		if msg.err != nil {
			m.setBanner(errorText("Sync failed", msg.err), bannerError)
		} else {
			m.setBanner(msg.result.Summary(), bannerInfo)
		}
		m.snapshot = m.engine.Snapshot()
		return m, tea.Batch(m.promptConflict(), m.refreshActivity())

	case resolveDoneMsg:
		if msg.err != nil {
			m.setBanner(errorText("Conflict not resolved", msg.err), bannerError)
		} else if msg.choice == reconcile.KeepLocal {
			m.setBanner("Kept local version; it will be pushed on the next sync", bannerSuccess)
		} else {
			m.setBanner("Accepted server version", bannerSuccess)
		}
		m.snapshot = m.engine.Snapshot()
		if m.current != nil && m.current.ID == msg.id {
			m.refreshCurrent()
		}
		return m, m.promptConflict()
	}

	if m.modal != nil {
		return m.updateModal(msg)
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.modal != nil {
		return m.updateModal(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		return m, saveThemeCmd(m.ctx, m.engine, m.theme.Name)

	case key.Matches(msg, m.keys.NextQuote):
		m.pickQuote()
		return m, nil

	case key.Matches(msg, m.keys.CycleFilter):
		return m, cycleFilterCmd(m.ctx, m.engine)

	case key.Matches(msg, m.keys.AddQuote):
		m.modal = newAddModal(m.snapshot.Categories)
		return m, nil

	case key.Matches(msg, m.keys.SyncNow):
		if m.engine == nil || !m.engine.SyncEnabled() {
			m.setBanner("Sync is disabled", bannerInfo)
			return m, nil
		}
		if m.syncing {
			return m, nil
		}
		m.syncing = true
		m.setBanner("Syncing...", bannerInfo)
		return m, syncCmd(m.ctx, m.engine)

	case key.Matches(msg, m.keys.Conflicts):
		if len(m.snapshot.Conflicts) == 0 {
			m.setBanner("No conflicts pending", bannerInfo)
			return m, nil
		}
		clear(m.deferred)
		return m, m.promptConflict()

	case key.Matches(msg, m.keys.Export):
		return m, exportCmd(m.engine)

	case key.Matches(msg, m.keys.Import):
		m.modal = newImportModal()
		return m, nil

	case key.Matches(msg, m.keys.ToggleActivity):
		if m.logPath == "" {
			return m, nil
		}
		m.showActivity = !m.showActivity
		return m, m.refreshActivity()
	}

	return m, nil
}

func (m Model) updateModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd, closed := m.modal.Update(msg, m.keys)
	if closed {
		m.modal = nil
	} else {
		m.modal = next
	}
	return m, cmd
}

// promptConflict opens the conflict dialog for the first pending conflict
// the user has not postponed.
func (m *Model) promptConflict() tea.Cmd {
	if m.modal != nil {
		return nil
	}
	var open []reconcile.Conflict
	for _, c := range m.snapshot.Conflicts {
		if !m.deferred[c.ID] {
			open = append(open, c)
		}
	}
	if len(open) == 0 {
		return nil
	}
	m.modal = newConflictModal(open[0], len(open))
	return nil
}

// refreshCurrent reloads the displayed quote after its record changed.
func (m *Model) refreshCurrent() {
	for _, r := range m.snapshot.Records {
		if r.ID == m.current.ID {
			dup := r
			m.current = &dup
			return
		}
	}
}

// handleTick processes the polling tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if m.engine != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.engine))
	}
	if cmd := m.refreshActivity(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if !m.banner.until.IsZero() && m.now().After(m.banner.until) {
		m.banner = banner{}
	}
	cmds = append(cmds, tickCmd(m.pollTick))
	return m, tea.Batch(cmds...)
}

func (m *Model) setBanner(text string, kind bannerKind) {
	m.banner = banner{text: text, kind: kind, until: m.now().Add(BannerDuration)}
}

func (m Model) refreshActivity() tea.Cmd {
	if m.logPath == "" || !m.showActivity {
		return nil
	}
	path := m.logPath
	return func() tea.Msg {
		entries, err := logtail.Read(path, ActivityLines)
		if err != nil {
			return nil
		}
		return activityMsg(entries)
	}
}

func errorText(prefix string, err error) string {
	var parseErr *quote.ParseError
	switch {
	case errors.As(err, &parseErr):
		return prefix + ": invalid file format"
	case errors.Is(err, quote.ErrValidation):
		return "Please fill in both fields."
	case errors.Is(err, reconcile.ErrStaleConflict):
		return prefix + ": the quote changed since the conflict was found"
	}
	return prefix + ": " + err.Error()
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type activityMsg []logtail.Entry

type addDoneMsg struct {
	record quote.Record
	err    error
}

type importDoneMsg struct {
	count int
	err   error
}

type exportDoneMsg struct {
	path string
	err  error
}

type filterDoneMsg struct {
	filter string
	err    error
}

type syncDoneMsg struct {
	result app.CycleResult
	err    error
}

type resolveDoneMsg struct {
	id     string
	choice reconcile.Choice
	err    error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(e Engine) tea.Cmd {
	if e == nil {
		return nil
	}
	return func() tea.Msg {
		return snapshotMsg(e.Snapshot())
	}
}

func addQuoteCmd(ctx context.Context, e Engine, msg addSubmitMsg) tea.Cmd {
	if e == nil {
		return nil
	}
	return func() tea.Msg {
		r, err := e.AddQuote(ctx, msg.text, msg.category)
		return addDoneMsg{record: r, err: err}
	}
}

func importCmd(ctx context.Context, e Engine, path string) tea.Cmd {
	if e == nil {
		return nil
	}
	return func() tea.Msg {
		n, err := e.ImportFile(ctx, path)
		return importDoneMsg{count: n, err: err}
	}
}

func exportCmd(e Engine) tea.Cmd {
	if e == nil {
		return nil
	}
	return func() tea.Msg {
		path, err := e.ExportFile("")
		return exportDoneMsg{path: path, err: err}
	}
}

func cycleFilterCmd(ctx context.Context, e Engine) tea.Cmd {
	if e == nil {
		return nil
	}
	return func() tea.Msg {
		filter, err := e.CycleFilter(ctx)
		return filterDoneMsg{filter: filter, err: err}
	}
}

func saveThemeCmd(ctx context.Context, e Engine, name string) tea.Cmd {
	if e == nil {
		return nil
	}
	return func() tea.Msg {
		_ = e.SetTheme(ctx, name)
		return nil
	}
}

func syncCmd(ctx context.Context, e Engine) tea.Cmd {
	if e == nil {
		return nil
	}
	return func() tea.Msg {
		res, err := e.Sync(ctx)
		return syncDoneMsg{result: res, err: err}
	}
}

func resolveCmd(ctx context.Context, e Engine, msg resolveSubmitMsg) tea.Cmd {
	if e == nil {
		return nil
	}
	return func() tea.Msg {
		err := e.ResolveConflict(ctx, msg.id, msg.choice)
		return resolveDoneMsg{id: msg.id, choice: msg.choice, err: err}
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
