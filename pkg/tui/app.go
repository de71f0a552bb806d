// Package tui hosts the Bubble Tea program for the daybook TUI.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"tableflip.dev/daybook/pkg/dates"
	"tableflip.dev/daybook/pkg/day"
	"tableflip.dev/daybook/pkg/daystore"
	"tableflip.dev/daybook/pkg/history"
	"tableflip.dev/daybook/pkg/undoredo"
)

type mode int

const (
	modeNormal mode = iota
	modeInsert
)

type action int

const (
	actionNone action = iota
	actionAddNote
	actionAddItem
	actionEditNote
	actionEditItem
)

// Model contains UI state for one day at a time.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	p       daystore.Persistence
	session *undoredo.Session
	keymap  undoredo.Keymap

	dateKey string
	record  *day.Record
	cursor  int

	mode     mode
	action   action
	targetID string
	input    textinput.Model

	status     string
	termWidth  int
	termHeight int

	watchCh     <-chan daystore.Event
	watchCancel context.CancelFunc
}

// New creates a UI model showing the given day.
func New(session *undoredo.Session, p daystore.Persistence, dateKey string) *Model {
	ti := textinput.New()
	ti.Placeholder = "Type here"
	ti.CharLimit = 256
	ti.Prompt = ""
	ti.VirtualCursor = true
	ti.Styles.Cursor.Color = lipgloss.Color("212")
	ti.Styles.Cursor.Shape = tea.CursorBlock
	ti.Styles.Cursor.Blink = true

	ctx, cancel := context.WithCancel(context.Background())
	session.SetDate(dateKey)
	return &Model{
		ctx:     ctx,
		cancel:  cancel,
		p:       p,
		session: session,
		keymap:  undoredo.DefaultKeymap(),
		dateKey: dateKey,
		mode:    modeNormal,
		action:  actionNone,
		input:   ti,
	}
}

// messages
type errMsg struct{ err error }
type dayLoadedMsg struct {
	dateKey string
	record  *day.Record
}
type opResultMsg struct{ err error }

type watchStartedMsg struct {
	ch     <-chan daystore.Event
	cancel context.CancelFunc
	err    error
}
type watchEventMsg struct{ event daystore.Event }
type watchStoppedMsg struct{}

// Init loads initial data.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.loadDay(), startWatchCmd(m.ctx, m.p))
}

func (m *Model) loadDay() tea.Cmd {
	dateKey := m.dateKey
	return func() tea.Msg {
		r, err := m.p.GetDayData(m.ctx, dateKey)
		if err != nil {
			return errMsg{err}
		}
		if r == nil {
			r = &day.Record{DateKey: dateKey}
		}
		return dayLoadedMsg{dateKey: dateKey, record: r}
	}
}

func startWatchCmd(parent context.Context, p daystore.Persistence) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithCancel(parent)
		ch, err := p.Watch(ctx)
		if err != nil {
			cancel()
			return watchStartedMsg{err: err}
		}
		if ch == nil {
			cancel()
			return watchStartedMsg{}
		}
		return watchStartedMsg{ch: ch, cancel: cancel}
	}
}

func (m *Model) waitForWatch() tea.Cmd {
	if m.watchCh == nil {
		return nil
	}
	ch := m.watchCh
	return func() tea.Msg {
		if ev, ok := <-ch; ok {
			return watchEventMsg{event: ev}
		}
		return watchStoppedMsg{}
	}
}

func (m *Model) stopWatch() {
	if m.watchCancel != nil {
		m.watchCancel()
		m.watchCancel = nil
	}
	m.watchCh = nil
}

// apply runs a history command against the active day and reports the result.
func (m *Model) apply(cmd history.Command) tea.Cmd {
	return func() tea.Msg {
		return opResultMsg{err: m.session.ExecuteCommand(m.ctx, cmd)}
	}
}

func (m *Model) applyUndo() tea.Cmd {
	desc, ok := m.session.UndoDescription()
	if !ok {
		m.setStatus("Nothing to undo")
		return nil
	}
	m.setStatus("Undid: " + desc)
	return func() tea.Msg {
		_, err := m.session.Undo(m.ctx)
		return opResultMsg{err: err}
	}
}

func (m *Model) applyRedo() tea.Cmd {
	desc, ok := m.session.RedoDescription()
	if !ok {
		m.setStatus("Nothing to redo")
		return nil
	}
	m.setStatus("Redid: " + desc)
	return func() tea.Msg {
		_, err := m.session.Redo(m.ctx)
		return opResultMsg{err: err}
	}
}

// Update routes messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.termWidth = msg.Width
		m.termHeight = msg.Height
	case errMsg:
		m.setStatus("ERR: " + msg.err.Error())
	case dayLoadedMsg:
		if msg.dateKey == m.dateKey {
			m.record = msg.record
			m.clampCursor()
		}
	case opResultMsg:
		switch undoredo.Classify(msg.err) {
		case undoredo.SeverityNone:
		case undoredo.SeverityBusy:
			m.setStatus("Busy, try again")
		case undoredo.SeverityWarning:
			m.setStatus("Saved, but history was rolled back")
		case undoredo.SeverityInconsistent:
			m.setStatus("ERR: " + msg.err.Error() + " (data may be inconsistent)")
		default:
			m.setStatus("ERR: " + msg.err.Error())
		}
		cmds = append(cmds, m.loadDay())
	case watchStartedMsg:
		if msg.err != nil {
			m.setStatus("ERR: watch " + msg.err.Error())
			break
		}
		if msg.ch == nil {
			break
		}
		m.stopWatch()
		m.watchCh = msg.ch
		m.watchCancel = msg.cancel
		if cmd := m.waitForWatch(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	case watchEventMsg:
		if msg.event.Type == daystore.EventInvalidated || msg.event.DateKey == m.dateKey {
			cmds = append(cmds, m.loadDay())
		}
		if cmd := m.waitForWatch(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	case watchStoppedMsg:
		m.stopWatch()
		cmds = append(cmds, startWatchCmd(m.ctx, m.p))
	case tea.KeyPressMsg:
		m.handleKeyPress(msg, &cmds)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKeyPress(msg tea.KeyPressMsg, cmds *[]tea.Cmd) {
	key := msg.String()

	switch m.keymap.Match(key, m.mode == modeInsert) {
	case undoredo.ActionUndo:
		if cmd := m.applyUndo(); cmd != nil {
			*cmds = append(*cmds, cmd)
		}
		return
	case undoredo.ActionRedo:
		if cmd := m.applyRedo(); cmd != nil {
			*cmds = append(*cmds, cmd)
		}
		return
	}

	switch m.mode {
	case modeInsert:
		m.handleInsertKey(msg, cmds)
	default:
		m.handleNormalKey(key, cmds)
	}
}

func (m *Model) handleInsertKey(msg tea.KeyPressMsg, cmds *[]tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.submitInsert(strings.TrimSpace(m.input.Value()), cmds)
	case "esc":
		m.cancelInsert()
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if cmd != nil {
			*cmds = append(*cmds, cmd)
		}
	}
}

func (m *Model) handleNormalKey(key string, cmds *[]tea.Cmd) {
	switch key {
	case "q", "ctrl+c":
		m.stopWatch()
		if m.cancel != nil {
			m.cancel()
			m.cancel = nil
		}
		*cmds = append(*cmds, tea.Quit)
	case "j", "down":
		if m.cursor < m.rowCount()-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "g":
		m.cursor = 0
	case "G":
		if n := m.rowCount(); n > 0 {
			m.cursor = n - 1
		}
	case "h", "left":
		m.switchDay(dates.Shift(m.dateKey, -1), cmds)
	case "l", "right":
		m.switchDay(dates.Shift(m.dateKey, 1), cmds)
	case "t":
		m.switchDay(dates.Today(), cmds)
	case "x", "enter", "space":
		if it := m.currentItem(); it != nil {
			*cmds = append(*cmds, m.apply(history.NewToggleItem(m.p, m.dateKey, it.ID)))
		}
	case "n":
		m.enterInsert(actionAddNote, "", "New note", cmds)
	case "a":
		m.enterInsert(actionAddItem, "", "New checklist item", cmds)
	case "i", "e":
		if n := m.currentNote(); n != nil {
			m.enterInsert(actionEditNote, n.ID, n.Content, cmds)
		} else if it := m.currentItem(); it != nil {
			m.enterInsert(actionEditItem, it.ID, it.Text, cmds)
		}
	case "d":
		if n := m.currentNote(); n != nil {
			*cmds = append(*cmds, m.apply(history.NewDeleteNote(m.p, m.dateKey, n.ID)))
		} else if it := m.currentItem(); it != nil {
			*cmds = append(*cmds, m.apply(history.NewDeleteItem(m.p, m.dateKey, it.ID)))
		}
	case "J":
		m.moveItem(1, cmds)
	case "K":
		m.moveItem(-1, cmds)
	case "u":
		if cmd := m.applyUndo(); cmd != nil {
			*cmds = append(*cmds, cmd)
		}
	case "r":
		if cmd := m.applyRedo(); cmd != nil {
			*cmds = append(*cmds, cmd)
		}
	}
}

func (m *Model) enterInsert(a action, targetID, value string, cmds *[]tea.Cmd) {
	m.action = a
	m.targetID = targetID
	m.mode = modeInsert
	m.input.SetValue(value)
	m.input.CursorEnd()
	switch a {
	case actionAddNote:
		m.input.Placeholder = "Note"
	case actionAddItem:
		m.input.Placeholder = "Checklist item"
	default:
		m.input.Placeholder = "Type here"
	}
	if cmd := m.input.Focus(); cmd != nil {
		*cmds = append(*cmds, cmd)
	}
	*cmds = append(*cmds, textinput.Blink)
}

func (m *Model) submitInsert(input string, cmds *[]tea.Cmd) {
	if input != "" {
		switch m.action {
		case actionAddNote:
			*cmds = append(*cmds, m.apply(history.NewAddNote(m.p, m.dateKey, input)))
		case actionAddItem:
			*cmds = append(*cmds, m.apply(history.NewAddItem(m.p, m.dateKey, input)))
		case actionEditNote:
			*cmds = append(*cmds, m.apply(history.NewEditNote(m.p, m.dateKey, m.targetID, input)))
		case actionEditItem:
			*cmds = append(*cmds, m.apply(history.NewEditItemText(m.p, m.dateKey, m.targetID, input)))
		}
	}
	m.mode = modeNormal
	m.action = actionNone
	m.targetID = ""
	m.input.Reset()
	m.input.Blur()
}

func (m *Model) cancelInsert() {
	prev := m.action
	m.mode = modeNormal
	m.action = actionNone
	m.targetID = ""
	m.input.Reset()
	m.input.Blur()
	switch prev {
	case actionAddNote, actionAddItem:
		m.setStatus("Add cancelled")
	case actionEditNote, actionEditItem:
		m.setStatus("Edit cancelled")
	default:
		m.setStatus("Cancelled")
	}
}

func (m *Model) switchDay(dateKey string, cmds *[]tea.Cmd) {
	if dateKey == m.dateKey {
		return
	}
	m.dateKey = dateKey
	m.cursor = 0
	m.session.SetDate(dateKey)
	m.setStatus("")
	*cmds = append(*cmds, m.loadDay())
}

// moveItem reorders the checklist by swapping the current item with its
// neighbor. Successive moves within the merge window coalesce into one
// undo step.
func (m *Model) moveItem(delta int, cmds *[]tea.Cmd) {
	it := m.currentItem()
	if it == nil || m.record == nil {
		return
	}
	order := m.record.ItemOrder()
	pos := -1
	for i, id := range order {
		if id == it.ID {
			pos = i
			break
		}
	}
	next := pos + delta
	if pos < 0 || next < 0 || next >= len(order) {
		return
	}
	order[pos], order[next] = order[next], order[pos]
	m.cursor += delta
	*cmds = append(*cmds, m.apply(history.NewReorderItems(m.p, m.dateKey, order)))
}

func (m *Model) rowCount() int {
	if m.record == nil {
		return 0
	}
	return len(m.record.Notes) + len(m.record.Checklist)
}

func (m *Model) clampCursor() {
	if n := m.rowCount(); m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) currentNote() *day.Note {
	if m.record == nil || m.cursor >= len(m.record.Notes) {
		return nil
	}
	return &m.record.Notes[m.cursor]
}

func (m *Model) currentItem() *day.Item {
	if m.record == nil {
		return nil
	}
	i := m.cursor - len(m.record.Notes)
	if i < 0 || i >= len(m.record.Checklist) {
		return nil
	}
	return &m.record.Checklist[i]
}

func (m *Model) setStatus(msg string) {
	m.status = msg
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
	cursorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	doneStyle     = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	sectionStyle  = lipgloss.NewStyle().Faint(true)
	footerStyle   = lipgloss.NewStyle().Faint(true)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	emptyDayStyle = lipgloss.NewStyle().Faint(true).Italic(true)
)

// View renders the day with a footer of undo/redo context.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(dates.Display(m.dateKey)))
	b.WriteString("\n\n")

	if m.rowCount() == 0 {
		b.WriteString(emptyDayStyle.Render("Nothing here yet. n adds a note, a adds a checklist item."))
		b.WriteString("\n")
	}

	row := 0
	if m.record != nil && len(m.record.Notes) > 0 {
		b.WriteString(sectionStyle.Render("Notes"))
		b.WriteString("\n")
		for i := range m.record.Notes {
			b.WriteString(m.renderRow(row, "– "+m.record.Notes[i].Content, false))
			row++
		}
		b.WriteString("\n")
	}
	if m.record != nil && len(m.record.Checklist) > 0 {
		b.WriteString(sectionStyle.Render("Checklist"))
		b.WriteString("\n")
		for i := range m.record.Checklist {
			it := &m.record.Checklist[i]
			box := "☐"
			if it.Completed {
				box = "☑"
			}
			b.WriteString(m.renderRow(row, box+" "+it.Text, it.Completed))
			row++
		}
	}

	b.WriteString("\n")
	if m.mode == modeInsert {
		prompt := "Add: "
		if m.action == actionEditNote || m.action == actionEditItem {
			prompt = "Edit: "
		}
		b.WriteString(prompt + m.input.View())
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(footerStyle.Render(m.footer()))
	return b.String()
}

func (m *Model) renderRow(row int, text string, done bool) string {
	line := "  " + text
	if done {
		line = "  " + doneStyle.Render(text)
	}
	if row == m.cursor && m.mode == modeNormal {
		line = cursorStyle.Render("❯ " + text)
	}
	return line + "\n"
}

func (m *Model) footer() string {
	if m.mode == modeInsert {
		return "Enter save · Esc cancel"
	}
	parts := []string{"h/l day", "x toggle", "n note", "a item", "e edit", "d delete", "q quit"}
	if desc, ok := m.session.UndoDescription(); ok {
		parts = append(parts, "u undo "+desc)
	}
	if desc, ok := m.session.RedoDescription(); ok {
		parts = append(parts, "r redo "+desc)
	}
	if m.session.IsExecuting() {
		parts = append(parts, "busy")
	}
	return strings.Join(parts, " · ")
}

// Run launches the interactive TUI program.
func Run(session *undoredo.Session, p daystore.Persistence, dateKey string) error {
	prog := tea.NewProgram(New(session, p, dateKey), tea.WithAltScreen())
	_, err := prog.Run()
	return err
}
