// Package tui is the interactive board view.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/m-hosseinpour/infinite-kanban-task-manager/internal/editor"
	"github.com/m-hosseinpour/infinite-kanban-task-manager/internal/printer"
	"github.com/m-hosseinpour/infinite-kanban-task-manager/pkg/board"
	"github.com/mattn/go-isatty"
)

const statusTick = 250 * time.Millisecond

// ErrNoTerminal is returned when stdout is not a terminal.
var ErrNoTerminal = errors.New("the interactive view needs a terminal")

type keyMap struct {
	Left, Right, Up, Down key.Binding
	MoveLeft, MoveRight   key.Binding
	AddItem               key.Binding
	AddLeft, AddRight     key.Binding
	DeleteItem, DeleteCol key.Binding
	CopyCol, Save, Quit   key.Binding
}

var keys = keyMap{
	Left:       key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("←/h", "column")),
	Right:      key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("→/l", "column")),
	Up:         key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "item")),
	Down:       key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "item")),
	MoveLeft:   key.NewBinding(key.WithKeys("H", "shift+left"), key.WithHelp("H", "move left")),
	MoveRight:  key.NewBinding(key.WithKeys("L", "shift+right"), key.WithHelp("L", "move right")),
	AddItem:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
	AddLeft:    key.NewBinding(key.WithKeys("["), key.WithHelp("[", "column left")),
	AddRight:   key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "column right")),
	DeleteItem: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	DeleteCol:  key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "delete column")),
	CopyCol:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy column")),
	Save:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
	Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

type tickMsg time.Time

type saveDoneMsg struct{ err error }

// Model is the Bubble Tea model. All board changes go through the editor.
type Model struct {
	ed     *editor.Editor
	col    int // selected column
	item   int // selected item within the column, -1 when empty
	adding bool
	ti     textinput.Model
	status string
	isErr  bool
}

// New returns a model showing ed's board.
func New(ed *editor.Editor) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "New item text..."
	ti.CharLimit = 500

	m := Model{ed: ed, ti: ti}
	m.clamp()
	return m
}

// Run starts the program in the alternate screen and blocks until it quits.
func Run(ed *editor.Editor) error {
	fd := os.Stdout.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return ErrNoTerminal
	}
	_, err := tea.NewProgram(New(ed), tea.WithAltScreen()).Run()
	return err
}

func tick() tea.Cmd {
	return tea.Tick(statusTick, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return tick() }

// clamp keeps the cursor on an existing column and item.
func (m *Model) clamp() {
	b := m.ed.Board()
	m.col = max(0, min(m.col, len(b)-1))
	n := len(b[m.col].Tasks)
	if n == 0 {
		m.item = -1
		return
	}
	m.item = max(0, min(m.item, n-1))
}

func (m *Model) selected() (board.Column, board.Item, bool) {
	b := m.ed.Board()
	col := b[m.col]
	if m.item < 0 || m.item >= len(col.Tasks) {
		return col, board.Item{}, false
	}
	return col, col.Tasks[m.item], true
}

func (m *Model) notify(msg string, isErr bool) {
	m.status = msg
	m.isErr = isErr
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return m, tick()
	case saveDoneMsg:
		if msg.err != nil {
			m.notify(printer.SaveError+" "+msg.err.Error(), true)
		} else {
			m.notify(printer.SaveSuccess, false)
		}
		return m, nil
	case tea.KeyMsg:
		if m.adding {
			return m.updateAdding(msg)
		}
		return m.updateBrowsing(msg)
	}
	return m, nil
}

func (m Model) updateAdding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		col, _, _ := m.selected()
		if ids := m.ed.AddItems(col.ID, m.ti.Value()); len(ids) > 0 {
			m.item = len(col.Tasks) + len(ids) - 1
		}
		fallthrough
	case "esc":
		m.adding = false
		m.ti.SetValue("")
		m.ti.Blur()
		m.clamp()
		return m, nil
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

func (m Model) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	col, it, hasItem := m.selected()
	m.status = ""

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Left):
		m.col--
	case key.Matches(msg, keys.Right):
		m.col++
	case key.Matches(msg, keys.Up):
		m.item--
	case key.Matches(msg, keys.Down):
		m.item++
	case key.Matches(msg, keys.MoveLeft), key.Matches(msg, keys.MoveRight):
		dir := board.Left
		if key.Matches(msg, keys.MoveRight) {
			dir = board.Right
		}
		if hasItem && m.ed.MoveItem(it.ID, col.ID, dir) {
			b := m.ed.Board()
			if dir == board.Left {
				m.col--
			} else {
				m.col++
			}
			m.item = len(b[m.col].Tasks) - 1
		}
	case key.Matches(msg, keys.AddItem):
		m.adding = true
		m.ti.Focus()
		return m, textinput.Blink
	case key.Matches(msg, keys.AddLeft):
		if _, ok := m.ed.AddColumn(col.ID, board.Left); ok {
			m.item = -1
		}
	case key.Matches(msg, keys.AddRight):
		if _, ok := m.ed.AddColumn(col.ID, board.Right); ok {
			m.col++
			m.item = -1
		}
	case key.Matches(msg, keys.DeleteItem):
		if hasItem {
			m.ed.DeleteItem(it.ID, col.ID)
		}
	case key.Matches(msg, keys.DeleteCol):
		removed, copied := m.ed.DeleteColumn(col.ID)
		switch {
		case !removed:
			m.notify("The last column cannot be deleted.", true)
		case copied:
			m.notify("Column deleted; its items were copied to the clipboard.", false)
		case len(col.Tasks) > 0:
			m.notify("Column deleted; its items could not be copied to the clipboard.", true)
		}
	case key.Matches(msg, keys.CopyCol):
		if err := m.ed.CopyColumn(col.ID); err != nil {
			m.notify(err.Error(), true)
		} else {
			m.notify("Column copied to the clipboard.", false)
		}
	case key.Matches(msg, keys.Save):
		if !m.ed.Online() {
			m.notify("Not logged in; the board is only kept locally.", true)
			return m, nil
		}
		ed := m.ed
		return m, func() tea.Msg {
			return saveDoneMsg{err: ed.Save(context.Background())}
		}
	}

	m.clamp()
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	b := m.ed.Board()
	columns, items := b.Stats()

	header := fmt.Sprintf("%s   %d columns  %d items   %s",
		titleStyle.Render("Kanban"), columns, items, m.syncState())

	boxes := make([]string, len(b))
	for i, col := range b {
		boxes[i] = m.renderColumn(i, col)
	}

	parts := []string{header, lipgloss.JoinHorizontal(lipgloss.Top, boxes...)}
	if m.adding {
		parts = append(parts, inputStyle.Render("Add items\n"+m.ti.View()))
	}
	if m.status != "" {
		style := successStyle
		if m.isErr {
			style = errorStyle
		}
		parts = append(parts, style.Render(m.status))
	}
	parts = append(parts, helpStyle.Render(helpLine()))
	return strings.Join(parts, "\n")
}

func (m Model) syncState() string {
	switch {
	case !m.ed.Online():
		return mutedStyle.Render("local")
	case m.ed.Saving():
		return pendingStyle.Render("saving…")
	default:
		return successStyle.Render("synced")
	}
}

func (m Model) renderColumn(i int, col board.Column) string {
	lines := []string{mutedStyle.Render(fmt.Sprintf("%d · %s", i+1, shortID(col.ID)))}
	if len(col.Tasks) == 0 {
		lines = append(lines, mutedStyle.Render("(empty)"))
	}
	for j, it := range col.Tasks {
		text := truncate(it.Text, columnWidth-4)
		if i == m.col && j == m.item {
			text = selectedStyle.Render(text)
		}
		lines = append(lines, text)
	}

	style := columnStyle
	if i == m.col {
		style = activeColumnStyle
	}
	return style.Render(strings.Join(lines, "\n"))
}

func helpLine() string {
	bindings := []key.Binding{keys.Left, keys.Up, keys.MoveLeft, keys.MoveRight, keys.AddItem,
		keys.AddLeft, keys.AddRight, keys.DeleteItem, keys.DeleteCol, keys.CopyCol, keys.Save, keys.Quit}
	parts := make([]string, len(bindings))
	for i, b := range bindings {
		h := b.Help()
		parts[i] = h.Key + " " + h.Desc
	}
	return strings.Join(parts, " • ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
