// Package tui is the terminal grid editor.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ukaji3/gridsync-go/pkg/gridsync/grid"
)

type loadedMsg struct{ err error }

type savedMsg struct{ err error }

// Model is the bubbletea model of the editor. All table changes go through the controller;
// the model only keeps a view snapshot and the cursor.
type Model struct {
	ctx  context.Context
	ctrl *grid.Controller
	view grid.View

	keys    keyMap
	help    help.Model
	input   textinput.Model
	spinner spinner.Model
	clip    func(string) error

	width, height    int
	cx, cy           int
	scrollX, scrollY int
	editing          bool
	notice           string
}

// New creates an editor bound to ctrl. ctx bounds every load and save it triggers.
func New(ctx context.Context, ctrl *grid.Controller) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 0
	ti.Width = 40

	return Model{
		ctx:     ctx,
		ctrl:    ctrl,
		view:    ctrl.View(),
		keys:    defaultKeys(),
		help:    help.New(),
		input:   ti,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		clip:    clipboard.WriteAll,
	}
}

// Run starts the editor full-screen and blocks until it exits.
func Run(ctx context.Context, ctrl *grid.Controller) error {
	p := tea.NewProgram(New(ctx, ctrl), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load(), m.spinner.Tick)
}

func (m Model) load() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return loadedMsg{err: ctrl.Load(ctx)}
	}
}

func (m Model) save() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return savedMsg{err: ctrl.Save(ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.follow()
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.input.Width = msg.Width - 10
		return m, nil
	case loadedMsg, savedMsg:
		m.refresh()
		return m, nil
	case spinner.TickMsg:
		// the controller changes state from command goroutines; pick that up on every tick
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if !m.editing {
			m.refresh()
		}
		return m, cmd
	case tea.KeyMsg:
		if m.editing {
			return m.updateEdit(msg)
		}
		return m.updateTable(msg)
	}
	return m, nil
}

// --- Table (normal) ---

func (m Model) updateTable(msg tea.KeyMsg) (Model, tea.Cmd) {
	m.notice = ""
	rows, cols := len(m.view.Rows), len(m.view.Columns)

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Left):
		if m.cx > 0 {
			m.cx--
		}
	case key.Matches(msg, m.keys.Right):
		if m.cx < cols-1 {
			m.cx++
		}
	case key.Matches(msg, m.keys.Up):
		if m.cy > 0 {
			m.cy--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cy < rows-1 {
			m.cy++
		}
	case key.Matches(msg, m.keys.Next):
		m.advance()
	case key.Matches(msg, m.keys.Prev):
		m.cx--
		if m.cx < 0 {
			m.cx = max(cols-1, 0)
			if m.cy > 0 {
				m.cy--
			}
		}
	case key.Matches(msg, m.keys.Edit):
		return m.startEdit()
	case key.Matches(msg, m.keys.Save):
		return m, m.save()
	case key.Matches(msg, m.keys.Reload):
		return m, m.load()
	case key.Matches(msg, m.keys.Yank):
		if rows > 0 && cols > 0 {
			if err := m.clip(m.view.Rows[m.cy][m.cx]); err != nil {
				m.notice = fmt.Sprintf("copy failed: %v", err)
			} else {
				m.notice = "copied"
			}
		}
	}
	return m, nil
}

func (m *Model) advance() {
	m.cx++
	if m.cx >= len(m.view.Columns) {
		m.cx = 0
		if m.cy < len(m.view.Rows)-1 {
			m.cy++
		}
	}
}

func (m Model) startEdit() (Model, tea.Cmd) {
	if !m.view.Editable(m.cy, m.cx) {
		if m.cx < len(m.view.Columns) && m.view.Locked[m.cx] {
			m.notice = "Formula-driven column"
		}
		return m, nil
	}
	m.editing = true
	m.input.SetValue(m.view.Rows[m.cy][m.cx])
	m.input.CursorEnd()
	return m, m.input.Focus()
}

// --- Edit mode ---

func (m Model) updateEdit(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.stopEdit()
		return m, nil
	case msg.Type == tea.KeyEnter:
		m.commitEdit()
		m.stopEdit()
		// move down after confirm
		if m.cy < len(m.view.Rows)-1 {
			m.cy++
		}
		return m, nil
	case msg.Type == tea.KeyTab:
		m.commitEdit()
		m.stopEdit()
		m.advance()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// commitEdit hands the committed input text to the controller. Only the text present when
// the edit is confirmed is recorded, and unchanged text is not an edit.
func (m *Model) commitEdit() {
	text := m.input.Value()
	if text == m.view.Rows[m.cy][m.cx] {
		return
	}
	if err := m.ctrl.Edit(m.cy, m.cx, text); err != nil {
		m.notice = err.Error()
	}
	m.refresh()
}

func (m *Model) stopEdit() {
	m.editing = false
	m.input.Blur()
	m.input.SetValue("")
}

// refresh takes a new snapshot and clamps the cursor to it.
func (m *Model) refresh() {
	m.view = m.ctrl.View()
	if m.cy >= len(m.view.Rows) {
		m.cy = max(len(m.view.Rows)-1, 0)
	}
	if m.cx >= len(m.view.Columns) {
		m.cx = max(len(m.view.Columns)-1, 0)
	}
}

// dataHeight is the number of table rows that fit on screen; 0 means no limit.
func (m Model) dataHeight() int {
	if m.height == 0 {
		return 0
	}
	return max(m.height-6, 1) // title + header + separator + status + input + help
}

// follow scrolls just enough to keep the cursor on screen.
func (m *Model) follow() {
	if m.cy < m.scrollY {
		m.scrollY = m.cy
	}
	if h := m.dataHeight(); h > 0 && m.cy >= m.scrollY+h {
		m.scrollY = m.cy - h + 1
	}
	if len(m.view.Columns) > 0 {
		m.scrollX, _ = visibleColRange(computeColWidths(m.view), m.width, m.scrollX, m.cx)
	}
}

func (m Model) busy() bool {
	return m.view.State == grid.Loading || m.view.State == grid.Saving
}

// --- View ---

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(" gridsync"))
	if m.view.Dirty {
		b.WriteString(" *")
	}
	b.WriteString("\n")

	if len(m.view.Columns) == 0 {
		if m.view.Empty != "" {
			b.WriteString(dimStyle.Render(" " + m.view.Empty))
		}
		b.WriteString("\n")
	} else {
		b.WriteString(renderTable(m.view, renderOpts{
			width:    m.width,
			height:   m.dataHeight(),
			cx:       m.cx,
			cy:       m.cy,
			cursor:   true,
			scrollX:  m.scrollX,
			scrollY:  m.scrollY,
			editing:  m.editing,
			editCell: m.input.Value() + "_",
		}))
	}

	// status bar
	status := " " + statusLine(m.view)
	if m.busy() {
		status = " " + m.spinner.View() + statusLine(m.view)
	}
	if len(m.view.Columns) > 0 {
		status += dimStyle.Render(fmt.Sprintf("  [%d,%d] %dx%d", m.cx+1, m.cy+1, len(m.view.Columns), len(m.view.Rows)))
	}
	if m.notice != "" {
		status += "  " + warnStyle.Render(m.notice)
	}
	b.WriteString(status)
	b.WriteString("\n")

	if m.editing {
		b.WriteString(" " + m.input.View())
		b.WriteString("\n")
	}
	b.WriteString(" " + m.help.View(m.keys))
	return b.String()
}
