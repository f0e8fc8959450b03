package monitor

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rileyhilliard/procdash/internal/backend"
	"github.com/rileyhilliard/procdash/internal/editor"
	"github.com/rileyhilliard/procdash/internal/errors"
	"github.com/rileyhilliard/procdash/internal/logger"
)

// frameInterval paces label animation frames. Frames only run while an
// animation is active.
const frameInterval = 16 * time.Millisecond

// Width breakpoints for the table.
const (
	BreakpointCompact = 100
	BreakpointWide    = 160
)

// frameMsg advances label animations.
type frameMsg time.Time

// SettingsMsg applies display settings changed while the dashboard runs,
// e.g. from a config file reload.
type SettingsMsg struct {
	ShowGraphs bool
}

// Options configures the dashboard.
type Options struct {
	// Label names the backend in the header, e.g. its URL.
	Label             string
	PollInterval      time.Duration
	PollTimeout       time.Duration
	ActionTimeout     time.Duration
	History           HistoryPolicy
	AnimationDuration time.Duration
	ShowGraphs        bool
	// Editor is nil when no editor secret is configured.
	Editor *editor.Editor
	Log    logger.Logger
	// Now overrides time.Now, for tests.
	Now func() time.Time
}

// Model is the Bubble Tea model for the dashboard. The update loop is the
// only place history, animations, the editor and the previous snapshot are
// touched; backend calls run in commands and report back as messages.
type Model struct {
	label      string
	keys       KeyMap
	help       help.Model
	poller     *Poller
	dispatcher *Dispatcher
	history    *History
	anim       *Animator
	editorView *editorView
	log        logger.Logger
	now        func() time.Time

	snap       *backend.Snapshot
	header     Header
	rows       []Row
	pollErr    string
	lastUpdate time.Time

	selected     int
	selectedName string
	sortOrder    SortOrder
	viewMode     ViewMode
	showHelp     bool
	showGraphs   bool
	pending      backend.Action
	notice       *Notice
	animating    bool
	quitting     bool

	spinner        spinner.Model
	detailViewport viewport.Model
	viewportReady  bool
	width          int
	height         int
}

// NewModel creates a dashboard over b.
func NewModel(b backend.Backend, opts Options) Model {
	log := opts.Log
	if log == nil {
		log = logger.Noop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	m := Model{
		label:      opts.Label,
		keys:       DefaultKeyMap(),
		help:       help.New(),
		poller:     NewPoller(b, opts.PollInterval, opts.PollTimeout, log),
		dispatcher: NewDispatcher(b, opts.ActionTimeout, log),
		history:    NewHistory(opts.History),
		anim:       NewAnimator(opts.AnimationDuration),
		log:        log,
		now:        now,
		header:     buildHeader(nil),
		showGraphs: opts.ShowGraphs,
		spinner:    spinner.New(spinner.WithSpinner(spinner.MiniDot)),
	}
	if opts.Editor != nil {
		m.editorView = newEditorView(opts.Editor)
	}
	return m
}

// Init starts polling immediately and schedules the cadence.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.poller.Poll(), m.poller.Tick(), m.spinner.Tick)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case pollTickMsg:
		return m, tea.Batch(m.poller.Poll(), m.poller.Tick())

	case pollResultMsg:
		if !m.poller.Accept(msg) {
			return m, nil
		}
		if msg.err != nil {
			m.pollErr = errors.OneLine(msg.err)
			return m, nil
		}
		return m, m.applySnapshot(msg.snap, msg.at)

	case frameMsg:
		if m.anim.Frame(time.Time(msg)) {
			return m, m.frameCmd()
		}
		m.animating = false
		return m, nil

	case SettingsMsg:
		m.showGraphs = msg.ShowGraphs
		return m, nil

	case actionResultMsg:
		n := noticeFor(msg, m.now())
		m.notice = &n
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case editorAuthMsg, editorSaveMsg, editorReloadMsg:
		if m.editorView != nil {
			return m, m.updateEditor(msg)
		}
		return m, nil

	case tea.KeyMsg:
		if m.viewMode == ViewEditor && m.editorView != nil {
			return m, m.updateEditor(msg)
		}
		if handled, cmd := m.HandleKeyMsg(msg); handled {
			return m, cmd
		}
		if m.viewMode == ViewDetail {
			var cmd tea.Cmd
			m.detailViewport, cmd = m.detailViewport.Update(msg)
			return m, cmd
		}
	}

	if m.viewMode == ViewEditor && m.editorView != nil {
		return m, m.updateEditor(msg)
	}
	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.renderDashboard()
}

// applySnapshot rebuilds the table from snap, easing labels from the
// previously applied snapshot, and starts the frame loop if needed.
func (m *Model) applySnapshot(snap *backend.Snapshot, at time.Time) tea.Cmd {
	if snap == nil {
		snap = &backend.Snapshot{}
	}
	table := BuildTable(snap, m.snap, m.history, m.anim, at)
	m.snap = snap
	m.header = table.Header
	m.rows = table.Rows
	m.pollErr = ""
	m.lastUpdate = at
	m.applySort()
	m.refreshDetail()

	if m.anim.Active() && !m.animating {
		m.animating = true
		return m.frameCmd()
	}
	return nil
}

func (m Model) frameCmd() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// applySort orders rows and keeps the selection on the same process.
func (m *Model) applySort() {
	sortRows(m.rows, m.sortOrder)
	if len(m.rows) == 0 {
		m.selected = 0
		return
	}
	for i, r := range m.rows {
		if r.Name == m.selectedName {
			m.selected = i
			return
		}
	}
	m.selected = clampInt(m.selected, len(m.rows)-1)
	m.selectedName = m.rows[m.selected].Name
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width

	vh := height - 4
	if vh < 1 {
		vh = 1
	}
	if !m.viewportReady {
		m.detailViewport = viewport.New(width, vh)
		m.viewportReady = true
	} else {
		m.detailViewport.Width = width
		m.detailViewport.Height = vh
	}
	if m.editorView != nil {
		m.editorView.resize(width, vh)
	}
	m.refreshDetail()
}

// refreshDetail re-renders the detail viewport for the selected row.
func (m *Model) refreshDetail() {
	if len(m.rows) > 0 {
		m.selected = clampInt(m.selected, len(m.rows)-1)
		m.selectedName = m.rows[m.selected].Name
	}
	if m.viewMode != ViewDetail || !m.viewportReady {
		return
	}
	m.detailViewport.SetContent(m.renderDetailContent())
}

// openEditor toggles the editor surface.
func (m *Model) openEditor() tea.Cmd {
	if m.editorView == nil {
		m.notice = &Notice{Text: "config editor disabled: no editor secret configured", Level: NoticeError, At: m.now()}
		return nil
	}
	m.viewMode = ViewEditor
	return m.editorView.open()
}

// updateEditor routes a message to the editor surface and leaves editor
// mode when it closes.
func (m *Model) updateEditor(msg tea.Msg) tea.Cmd {
	cmd, closed := m.editorView.update(msg)
	if closed {
		m.viewMode = ViewList
	}
	return cmd
}

// SelectedRow returns the selected process row.
func (m Model) SelectedRow() (Row, bool) {
	if m.selected >= 0 && m.selected < len(m.rows) {
		return m.rows[m.selected], true
	}
	return Row{}, false
}

// Rows returns the rows of the last applied snapshot in display order.
func (m Model) Rows() []Row { return m.rows }

// Header returns the header of the last applied snapshot.
func (m Model) Header() Header { return m.header }

// Animator exposes the label animator, for rendering and tests.
func (m Model) Animator() *Animator { return m.anim }

// History exposes the metric history.
func (m Model) History() *History { return m.history }

// ShowGraphs reports whether trend graphs are drawn.
func (m Model) ShowGraphs() bool { return m.showGraphs }

// PollError returns the last poll failure, cleared by the next success.
func (m Model) PollError() string { return m.pollErr }

// Notice returns the footer notice, if any.
func (m Model) Notice() *Notice { return m.notice }

// SecondsSinceUpdate returns how many seconds have passed since the last
// applied snapshot.
func (m Model) SecondsSinceUpdate() int {
	if m.lastUpdate.IsZero() {
		return 0
	}
	return int(m.now().Sub(m.lastUpdate).Seconds())
}

// wide reports whether there is room for inline trends.
func (m Model) wide() bool {
	return m.width == 0 || m.width >= BreakpointCompact
}
