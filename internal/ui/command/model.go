package command

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/led-repair/internal/theme"
)

// historyLimit caps how many applied filter lines the palette remembers.
const historyLimit = 20

// recentShown is how many history lines the palette lists under the input.
const recentShown = 3

// CommandMsg is emitted when the user submits a palette line.
type CommandMsg string

// Model is the filter palette. It keeps the lines that were applied so
// they can be recalled with up/down, and shows a rejected line's error
// under the input until the line is edited.
type Model struct {
	input   textinput.Model
	history []string
	// cursor indexes history while recalling; len(history) means the line
	// being typed.
	cursor int
	draft  string
	err    string
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "site KLCC | sort date-newest | months jan,feb | clear"
	ti.Prompt = ": "
	ti.Focus()
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			line := strings.TrimSpace(m.input.Value())
			if line == "" {
				return m, nil
			}
			return m, func() tea.Msg {
				return CommandMsg(line)
			}
		case "up", "ctrl+p":
			m.recall(-1)
			return m, nil
		case "down", "ctrl+n":
			m.recall(1)
			return m, nil
		}
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.err = ""
		m.cursor = len(m.history)
	}
	return m, cmd
}

// recall moves through the history by step. Leaving the newest entry
// restores the line that was being typed.
func (m *Model) recall(step int) {
	if len(m.history) == 0 {
		return
	}
	if m.cursor == len(m.history) {
		m.draft = m.input.Value()
	}
	next := m.cursor + step
	if next < 0 || next > len(m.history) {
		return
	}
	m.cursor = next
	if next == len(m.history) {
		m.input.SetValue(m.draft)
	} else {
		m.input.SetValue(m.history[next])
	}
	m.input.CursorEnd()
}

// Accept records line as applied and clears the input.
func (m *Model) Accept(line string) {
	line = strings.TrimSpace(line)
	if line != "" && (len(m.history) == 0 || m.history[len(m.history)-1] != line) {
		m.history = append(m.history, line)
		if len(m.history) > historyLimit {
			m.history = m.history[len(m.history)-historyLimit:]
		}
	}
	m.input.Reset()
	m.cursor = len(m.history)
	m.draft = ""
	m.err = ""
}

// Reject keeps line in the input for correction and shows err under it.
func (m *Model) Reject(line string, err error) {
	m.input.SetValue(line)
	m.input.CursorEnd()
	m.cursor = len(m.history)
	m.err = err.Error()
}

// Err returns the error shown for the last rejected line, if any.
func (m Model) Err() string {
	return m.err
}

// History returns the applied lines, oldest first.
func (m Model) History() []string {
	return append([]string(nil), m.history...)
}

// Value returns the current input line.
func (m Model) Value() string {
	return m.input.Value()
}

// View renders the command palette.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	rows := []string{titleStyle.Render("Filter Command"), m.input.View()}
	if m.err != "" {
		rows = append(rows, theme.ErrorStyle.Render("✗ "+m.err))
	}
	if n := len(m.history); n > 0 {
		recent := m.history[max(0, n-recentShown):]
		lines := make([]string, 0, len(recent))
		for i := len(recent) - 1; i >= 0; i-- {
			lines = append(lines, "  "+recent[i])
		}
		rows = append(rows, "", theme.HelpStyle.Render("Recent (up/down to recall)\n"+strings.Join(lines, "\n")))
	}

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}
