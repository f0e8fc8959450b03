package monitor

import (
	"sort"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rileyhilliard/procdash/internal/backend"
)

// SortOrder defines how rows are ordered in the table.
type SortOrder int

const (
	SortBySnapshot SortOrder = iota
	SortByName
	SortByCPU
	SortByMem
	numSortOrders
)

// String returns a human-readable label for the sort order.
func (s SortOrder) String() string {
	switch s {
	case SortByName:
		return "name"
	case SortByCPU:
		return "CPU"
	case SortByMem:
		return "RAM"
	default:
		return "backend"
	}
}

// Next cycles to the next sort order.
func (s SortOrder) Next() SortOrder {
	return SortOrder((int(s) + 1) % int(numSortOrders))
}

// sortRows orders rows in place. Ties keep snapshot order.
func sortRows(rows []Row, order SortOrder) {
	switch order {
	case SortByName:
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	case SortByCPU:
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].Metrics[ChannelCPU].Raw > rows[j].Metrics[ChannelCPU].Raw
		})
	case SortByMem:
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].Metrics[ChannelMem].Raw > rows[j].Metrics[ChannelMem].Raw
		})
	}
}

// ViewMode defines the current display mode of the dashboard.
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetail
	ViewEditor
)

// KeyMap holds the dashboard bindings. It implements help.KeyMap.
type KeyMap struct {
	Up         key.Binding
	Down       key.Binding
	First      key.Binding
	Last       key.Binding
	Expand     key.Binding
	Back       key.Binding
	Start      key.Binding
	Stop       key.Binding
	Restart    key.Binding
	OpenFolder key.Binding
	RestartAll key.Binding
	KillCMD    key.Binding
	KillNode   key.Binding
	Confirm    key.Binding
	Sort       key.Binding
	Graphs     key.Binding
	Editor     key.Binding
	Help       key.Binding
	Quit       key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "previous process")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next process")),
		First:      key.NewBinding(key.WithKeys("home"), key.WithHelp("home", "first process")),
		Last:       key.NewBinding(key.WithKeys("end"), key.WithHelp("end", "last process")),
		Expand:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back / dismiss")),
		Start:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start")),
		Stop:       key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop")),
		Restart:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart")),
		OpenFolder: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open folder")),
		RestartAll: key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "restart all")),
		KillCMD:    key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "kill cmd")),
		KillNode:   key.NewBinding(key.WithKeys("N"), key.WithHelp("N", "kill node")),
		Confirm:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "confirm")),
		Sort:       key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "cycle sort")),
		Graphs:     key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "toggle graphs")),
		Editor:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "config editor")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp is shown in the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Stop, k.Restart, k.Editor, k.Help, k.Quit}
}

// FullHelp is shown in the help overlay.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.First, k.Last, k.Expand, k.Back},
		{k.Start, k.Stop, k.Restart, k.OpenFolder},
		{k.RestartAll, k.KillCMD, k.KillNode, k.Confirm},
		{k.Sort, k.Graphs, k.Editor, k.Help, k.Quit},
	}
}

// rowActions maps row bindings to the actions they trigger.
func (k KeyMap) rowAction(msg tea.KeyMsg) (backend.Action, bool) {
	switch {
	case key.Matches(msg, k.Start):
		return backend.ActionStart, true
	case key.Matches(msg, k.Stop):
		return backend.ActionStop, true
	case key.Matches(msg, k.Restart):
		return backend.ActionRestart, true
	case key.Matches(msg, k.OpenFolder):
		return backend.ActionOpenFolder, true
	}
	return "", false
}

// globalAction maps roster-wide bindings. These ask for confirmation.
func (k KeyMap) globalAction(msg tea.KeyMsg) (backend.Action, bool) {
	switch {
	case key.Matches(msg, k.RestartAll):
		return backend.ActionRestartAll, true
	case key.Matches(msg, k.KillCMD):
		return backend.ActionKillCMD, true
	case key.Matches(msg, k.KillNode):
		return backend.ActionKillNode, true
	}
	return "", false
}

// HandleKeyMsg processes keyboard input in the list and detail views.
// It reports whether the key was handled.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	k := m.keys

	if key.Matches(msg, k.Help) {
		m.showHelp = !m.showHelp
		return true, nil
	}
	if m.showHelp && key.Matches(msg, k.Back) {
		m.showHelp = false
		return true, nil
	}

	// A pending global action takes the next key as its answer.
	if m.pending != "" {
		action := m.pending
		m.pending = ""
		if key.Matches(msg, k.Confirm) {
			return true, m.dispatcher.Cmd(action, "")
		}
		m.notice = &Notice{Text: string(action) + " cancelled", Level: NoticeInfo, At: m.now()}
		return true, nil
	}

	switch {
	case key.Matches(msg, k.Quit):
		m.quitting = true
		return true, tea.Quit

	case key.Matches(msg, k.Back):
		switch {
		case m.viewMode == ViewDetail:
			m.viewMode = ViewList
		case m.notice != nil:
			m.notice = nil
		}
		return true, nil

	case key.Matches(msg, k.Up):
		if m.selected > 0 {
			m.selected--
		}
		m.refreshDetail()
		return true, nil

	case key.Matches(msg, k.Down):
		if m.selected < len(m.rows)-1 {
			m.selected++
		}
		m.refreshDetail()
		return true, nil

	case key.Matches(msg, k.First):
		m.selected = 0
		m.refreshDetail()
		return true, nil

	case key.Matches(msg, k.Last):
		if len(m.rows) > 0 {
			m.selected = len(m.rows) - 1
		}
		m.refreshDetail()
		return true, nil

	case key.Matches(msg, k.Expand):
		if m.viewMode == ViewList && len(m.rows) > 0 {
			m.viewMode = ViewDetail
			m.refreshDetail()
		}
		return true, nil

	case key.Matches(msg, k.Sort):
		m.sortOrder = m.sortOrder.Next()
		m.applySort()
		return true, nil

	case key.Matches(msg, k.Graphs):
		m.showGraphs = !m.showGraphs
		return true, nil

	case key.Matches(msg, k.Editor):
		return true, m.openEditor()
	}

	if action, ok := k.rowAction(msg); ok {
		row, ok := m.SelectedRow()
		if !ok {
			return true, nil
		}
		if !row.CanRun(action) {
			m.notice = &Notice{Text: string(action) + " is not available for " + row.Name, Level: NoticeInfo, At: m.now()}
			return true, nil
		}
		return true, m.dispatcher.Cmd(action, row.Name)
	}

	if action, ok := k.globalAction(msg); ok {
		m.pending = action
		return true, nil
	}

	return false, nil
}
