package monitor

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/rileyhilliard/procdash/internal/backend"
	"github.com/rileyhilliard/procdash/internal/editor"
	"github.com/rileyhilliard/procdash/internal/errors"
)

// editorCallTimeout bounds unlock, reload and save calls.
const editorCallTimeout = 10 * time.Second

const noModelNotice = "Nothing loaded; press ctrl+r to reload"

// Backend results for the editor. The commands that produce them only talk
// to the backend; update applies them to the editor.
type editorAuthMsg struct {
	model *backend.ConfigModel
	err   error
}

type editorSaveMsg struct {
	saved backend.ConfigModel
	err   error
}

type editorReloadMsg struct {
	model *backend.ConfigModel
	err   error
}

// editorKeys are the bindings of the editor's entry list.
type editorKeys struct {
	Up     key.Binding
	Down   key.Binding
	Edit   key.Binding
	Add    key.Binding
	Remove key.Binding
	Save   key.Binding
	Reload key.Binding
	Close  key.Binding
}

func defaultEditorKeys() editorKeys {
	return editorKeys{
		Up:     key.NewBinding(key.WithKeys("up", "k")),
		Down:   key.NewBinding(key.WithKeys("down", "j")),
		Edit:   key.NewBinding(key.WithKeys("enter")),
		Add:    key.NewBinding(key.WithKeys("a")),
		Remove: key.NewBinding(key.WithKeys("d")),
		Save:   key.NewBinding(key.WithKeys("w", "ctrl+s")),
		Reload: key.NewBinding(key.WithKeys("ctrl+r")),
		Close:  key.NewBinding(key.WithKeys("esc", "e")),
	}
}

// editorView is the terminal surface over editor.Editor: a masked secret
// prompt, a list of the settings and process entries, and huh forms that
// edit a draft of one entry at a time. While a backend call is in flight
// the view holds no reference into the editor and ignores input.
type editorView struct {
	ed     *editor.Editor
	keys   editorKeys
	secret textinput.Model
	list   viewport.Model

	busy   string
	errMsg string
	info   string
	cursor int // 0 is settings, i+1 is process i

	form          *huh.Form
	formIndex     int
	draftSettings backend.Settings
	draftProcess  backend.ProcessDef
}

func newEditorView(ed *editor.Editor) *editorView {
	ti := textinput.New()
	ti.Placeholder = "secret"
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	ti.Prompt = "Secret: "

	return &editorView{
		ed:     ed,
		keys:   defaultEditorKeys(),
		secret: ti,
		list:   viewport.New(80, 20),
	}
}

func (v *editorView) resize(width, height int) {
	v.list.Width = width
	v.list.Height = max(height-4, 3)
	if v.form != nil {
		v.form = v.form.WithWidth(width)
	}
}

// open toggles the editor: from locked it shows the secret prompt.
func (v *editorView) open() tea.Cmd {
	v.ed.Toggle()
	v.errMsg, v.info = "", ""
	v.form = nil
	v.cursor = 0
	v.secret.Reset()
	if v.ed.State() == editor.AuthPending {
		return v.secret.Focus()
	}
	return nil
}

// update handles msg and reports whether the surface closed.
func (v *editorView) update(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case editorAuthMsg:
		v.busy = ""
		if err := v.ed.FinishFetch(msg.model, msg.err); err != nil {
			v.errMsg = errors.OneLine(err)
		} else {
			v.errMsg = ""
			v.info = "Unlocked"
		}
		return nil, false

	case editorSaveMsg:
		v.busy = ""
		return nil, v.settle(v.ed.FinishSave(msg.saved, msg.err), "Saved")

	case editorReloadMsg:
		v.busy = ""
		v.cursor = 0
		return nil, v.settle(v.ed.FinishFetch(msg.model, msg.err), "Reloaded")
	}

	if v.busy != "" {
		return nil, false
	}

	switch v.ed.State() {
	case editor.AuthPending:
		return v.updateAuth(msg)
	case editor.Unlocked:
		if v.form != nil {
			return v.updateForm(msg), false
		}
		return v.updateList(msg)
	}
	return nil, true
}

// settle shows the outcome of a gated call. An expired session closes the view.
func (v *editorView) settle(err error, ok string) bool {
	var verr *editor.ValidationError
	switch {
	case err == nil:
		v.errMsg, v.info = "", ok
	case stderrors.Is(err, editor.ErrSessionExpired):
		v.errMsg = "Session expired; unlock again"
		return true
	case stderrors.Is(err, editor.ErrNoModel):
		v.errMsg = noModelNotice
	case stderrors.As(err, &verr):
		v.errMsg = verr.Message
		if verr.Index >= 0 {
			v.cursor = verr.Index + 1
		} else {
			v.cursor = 0
		}
	default:
		v.errMsg = errors.OneLine(err)
	}
	return false
}

func (v *editorView) updateAuth(msg tea.Msg) (tea.Cmd, bool) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.Type {
		case tea.KeyEsc:
			v.ed.Cancel()
			v.secret.Blur()
			return nil, true
		case tea.KeyEnter:
			err := v.ed.Unlock(v.secret.Value())
			v.secret.Reset()
			if stderrors.Is(err, editor.ErrInvalidSecret) {
				v.errMsg = "Invalid secret"
				return v.secret.Focus(), false
			}
			v.secret.Blur()
			if err != nil {
				v.errMsg = errors.OneLine(err)
				return nil, false
			}
			v.busy = "Unlocking"
			fetch := v.fetchCmd()
			return func() tea.Msg {
				model, err := fetch()
				return editorAuthMsg{model: model, err: err}
			}, false
		}
	}
	var cmd tea.Cmd
	v.secret, cmd = v.secret.Update(msg)
	return cmd, false
}

func (v *editorView) updateList(msg tea.Msg) (tea.Cmd, bool) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil, false
	}
	w := v.ed.Working()
	n := 0
	if w != nil {
		n = len(w.Processes)
	}

	switch {
	case key.Matches(km, v.keys.Close):
		v.ed.Close()
		return nil, true

	case key.Matches(km, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
		}

	case key.Matches(km, v.keys.Down):
		if v.cursor < n {
			v.cursor++
		}

	case key.Matches(km, v.keys.Edit):
		if w == nil {
			v.errMsg = noModelNotice
			return nil, false
		}
		return v.openForm(v.cursor - 1), false

	case key.Matches(km, v.keys.Add):
		i, err := v.ed.AddProcess()
		if v.settle(err, "") {
			return nil, true
		}
		if err == nil {
			v.cursor = i + 1
			v.info = "Added a process; fill it in and save"
		}

	case key.Matches(km, v.keys.Remove):
		if v.cursor == 0 {
			return nil, false
		}
		name := ""
		if w != nil && v.cursor-1 < n {
			name = w.Processes[v.cursor-1].Name
		}
		err := v.ed.RemoveProcess(v.cursor - 1)
		if v.settle(err, "") {
			return nil, true
		}
		if err == nil {
			v.info = fmt.Sprintf("Removed %q locally; save to apply", name)
			v.cursor = min(v.cursor, n-1)
		}

	case key.Matches(km, v.keys.Save):
		out, err := v.ed.BeginSave()
		if err != nil {
			return nil, v.settle(err, "")
		}
		v.busy = "Saving"
		ed := v.ed
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), editorCallTimeout)
			defer cancel()
			return editorSaveMsg{saved: out, err: ed.SendModel(ctx, out)}
		}, false

	case key.Matches(km, v.keys.Reload):
		if err := v.ed.BeginReload(); err != nil {
			return nil, v.settle(err, "")
		}
		v.busy = "Reloading"
		fetch := v.fetchCmd()
		return func() tea.Msg {
			model, err := fetch()
			return editorReloadMsg{model: model, err: err}
		}, false
	}
	return nil, false
}

// fetchCmd returns the backend read for a command goroutine. It must not
// touch editor state; update applies the result.
func (v *editorView) fetchCmd() func() (*backend.ConfigModel, error) {
	ed := v.ed
	return func() (*backend.ConfigModel, error) {
		ctx, cancel := context.WithTimeout(context.Background(), editorCallTimeout)
		defer cancel()
		return ed.FetchModel(ctx)
	}
}

// openForm edits a draft of entry i (-1 for settings).
func (v *editorView) openForm(i int) tea.Cmd {
	w := v.ed.Working()
	v.formIndex = i
	if i < 0 {
		v.draftSettings = w.Settings
		v.form = settingsForm(&v.draftSettings)
	} else {
		if i >= len(w.Processes) {
			return nil
		}
		v.draftProcess = w.Processes[i]
		v.form = processForm(&v.draftProcess)
	}
	v.form = v.form.WithShowHelp(true).WithWidth(v.list.Width)
	return v.form.Init()
}

func (v *editorView) updateForm(msg tea.Msg) tea.Cmd {
	if km, ok := msg.(tea.KeyMsg); ok && km.Type == tea.KeyEsc {
		v.form = nil
		v.info = "Edit discarded"
		return nil
	}

	model, cmd := v.form.Update(msg)
	if f, ok := model.(*huh.Form); ok {
		v.form = f
	}

	switch v.form.State {
	case huh.StateCompleted:
		if w := v.ed.Working(); w != nil {
			if v.formIndex < 0 {
				w.Settings = v.draftSettings
			} else if v.formIndex < len(w.Processes) {
				w.Processes[v.formIndex] = v.draftProcess
			}
		}
		v.form = nil
		v.info = "Edited locally; press w to save"
		return nil
	case huh.StateAborted:
		v.form = nil
		v.info = "Edit discarded"
		return nil
	}
	return cmd
}

func (v *editorView) view() string {
	var b strings.Builder
	b.WriteString(detailTitleStyle.Render("Config editor"))
	if v.busy == "" {
		if s := v.ed.Session(); s != nil {
			b.WriteString(LabelStyle.Render(fmt.Sprintf("  session expires %s", s.ExpiresAt.Format("15:04:05"))))
		}
	}
	b.WriteString("\n\n")

	switch {
	case v.busy != "":
		b.WriteString(LabelStyle.Render(v.busy + "..."))
	case v.ed.State() == editor.AuthPending:
		b.WriteString(v.secret.View())
		b.WriteString("\n")
		b.WriteString(FooterStyle.Render("enter unlock | esc cancel"))
	case v.form != nil:
		b.WriteString(v.form.View())
		b.WriteString("\n")
		b.WriteString(FooterStyle.Render("esc discard"))
	default:
		v.list.SetContent(v.renderEntries())
		b.WriteString(v.list.View())
		b.WriteString("\n")
		b.WriteString(FooterStyle.Render("enter edit | a add | d remove | w save | ctrl+r reload | esc lock"))
	}

	if v.errMsg != "" {
		b.WriteString("\n" + NoticeErrorStyle.Render(v.errMsg))
	} else if v.info != "" {
		b.WriteString("\n" + NoticeInfoStyle.Render(v.info))
	}
	return PanelStyle.Render(b.String())
}

func (v *editorView) renderEntries() string {
	w := v.ed.Working()
	if w == nil {
		return LabelStyle.Render("No config loaded")
	}

	lines := make([]string, 0, len(w.Processes)+1)
	lines = append(lines, v.entryLine(0, "Settings", fmt.Sprintf("check %s, restart %s, net %s",
		orDefault(w.Settings.CheckTiming, CellPlaceholder),
		orDefault(w.Settings.RestartTiming, CellPlaceholder),
		orDefault(w.Settings.NetUnit, "KB"))))

	for i, p := range w.Processes {
		name := p.Name
		if strings.TrimSpace(name) == "" {
			name = "(unnamed)"
		}
		desc := orDefault(p.Type, "exe")
		if p.Disabled {
			desc += ", disabled"
		}
		if p.MonitorHang {
			desc += ", hang " + orDefault(p.HangTimeout, "default")
		}
		lines = append(lines, v.entryLine(i+1, name, desc))
	}
	return strings.Join(lines, "\n")
}

func (v *editorView) entryLine(i int, name, desc string) string {
	cursor := "  "
	style := ValueStyle
	if i == v.cursor {
		cursor = "▸ "
		style = style.Bold(true).Foreground(ColorAccent)
	}
	return cursor + style.Render(name) + "  " + LabelStyle.Render(desc)
}

// settingsForm edits the global settings.
func settingsForm(s *backend.Settings) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Check timing").Description(`e.g. "1s", "500ms" or seconds`).
				Value(&s.CheckTiming).Validate(validDuration),
			huh.NewInput().Title("Restart timing").
				Value(&s.RestartTiming).Validate(validDuration),
			huh.NewSelect[string]().Title("Network unit").
				Options(huh.NewOptions(backend.NetUnits...)...).Value(&s.NetUnit),
			huh.NewInput().Title("Network scale").
				Value(&s.NetScale).Validate(validNumber),
		),
		huh.NewGroup(
			huh.NewConfirm().Title("Use ETW network counters").Value(&s.UseETWNetwork),
			huh.NewConfirm().Title("Network debug").Value(&s.NetDebug),
			huh.NewConfirm().Title("Launch in new console").Value(&s.LaunchInNewConsole),
			huh.NewConfirm().Title("Auto-close error dialogs").Value(&s.AutoCloseErrorDialogs),
			huh.NewInput().Title("Error window titles").Value(&s.ErrorWindowTitles),
		),
	)
}

// processForm edits one process definition.
func processForm(p *backend.ProcessDef) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(&p.Name).Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("name is required")
				}
				return nil
			}),
			huh.NewSelect[string]().Title("Type").
				Options(huh.NewOptions(backend.ProcessTypes...)...).Value(&p.Type),
			huh.NewConfirm().Title("Disabled").Value(&p.Disabled),
		),
		huh.NewGroup(
			huh.NewInput().Title("Process").Description("executable name to watch").Value(&p.Process),
			huh.NewInput().Title("Path").Value(&p.Path),
			huh.NewInput().Title("Command").Value(&p.Command),
			huh.NewInput().Title("Args").Value(&p.Args),
			huh.NewInput().Title("Check process").Value(&p.CheckProcess),
			huh.NewInput().Title("Check command line").Value(&p.CheckCmdline),
		),
		huh.NewGroup(
			huh.NewConfirm().Title("Monitor hangs").Value(&p.MonitorHang),
			huh.NewInput().Title("Hang timeout").Value(&p.HangTimeout).Validate(validDuration),
		),
	)
}

func validDuration(s string) error {
	_, err := backend.ParseDuration(s)
	return err
}

func validNumber(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
		return fmt.Errorf("must be a number")
	}
	return nil
}
