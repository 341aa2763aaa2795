package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/led-repair/internal/keys"
	"github.com/nhle/led-repair/internal/model"
	"github.com/nhle/led-repair/internal/query"
	"github.com/nhle/led-repair/internal/theme"
)

// BackMsg signals the parent to navigate back to the board table.
type BackMsg struct{}

// EditMsg asks the parent to open the form for the displayed board.
type EditMsg struct {
	Board model.Board
}

// Model shows every field of one board in a scrollable pane.
type Model struct {
	board     *model.Board
	photoPath func(string) string
	viewport  viewport.Model
	keys      *keys.KeyMap
	width     int
	height    int
}

// New creates a detail view. photoPath resolves stored photo references to
// absolute paths; nil shows them as stored.
func New(photoPath func(string) string, keys *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	if photoPath == nil {
		photoPath = func(s string) string { return s }
	}
	return Model{
		photoPath: photoPath,
		viewport:  vp,
		keys:      keys,
		width:     width,
		height:    height,
	}
}

// Init returns the initial command for the detail view.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg { return BackMsg{} }

		case key.Matches(msg, m.keys.Edit):
			if m.board != nil {
				b := *m.board
				return m, func() tea.Msg { return EditMsg{Board: b} }
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the detail view.
func (m Model) View() string {
	if m.board == nil {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No board selected")
	}
	return m.viewport.View()
}

// Board returns the displayed board, if any.
func (m Model) Board() (model.Board, bool) {
	if m.board == nil {
		return model.Board{}, false
	}
	return *m.board, true
}

// SetBoard replaces the displayed board and scrolls to the top.
func (m *Model) SetBoard(b model.Board) {
	m.board = &b
	m.viewport.SetContent(m.renderContent())
	m.viewport.GotoTop()
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	if m.board != nil {
		m.viewport.SetContent(m.renderContent())
	}
}

func (m Model) renderContent() string {
	b := m.board
	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, titleStyle.Render(fmt.Sprintf("Board %s  %s", b.BoardID, query.DisplayValue(b.Name))))

	badges := []string{theme.UrgencyStyle(b.Urgency).Render(urgencyLabel(b.Urgency))}
	if b.Issues.TotalLoss {
		badges = append(badges, "  ", theme.ErrorStyle.Render("TOTAL LOSS"))
	}
	if b.Issues.NoIssue {
		badges = append(badges, "  ", lipgloss.NewStyle().Foreground(theme.ColorGreen).Render("NO ISSUE"))
	}
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, badges...), "")

	labelStyle := lipgloss.NewStyle().Foreground(theme.ColorGray).Width(15)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)
	field := func(label, value string) {
		sections = append(sections, labelStyle.Render(label+":")+valStyle.Render(query.DisplayValue(value)))
	}

	field("IC", b.IC)
	field("DC", b.DC)
	field("Size", b.Size)
	field("Module Number", b.ModuleNumber)
	field("Pixel", b.Pixel)
	field("Board Code", b.BoardCode)
	field("Running No", b.RunningNumber())
	field("Date Request", b.DateRequest)
	field("DO Date", b.DODate)
	field("Date Repair", b.DateRepair)
	field("Added by", b.CreatedBy)

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", max(min(m.width-4, 80), 0)))
	sections = append(sections, "", separator, "")

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).MarginBottom(1)
	sections = append(sections, headerStyle.Render("Photos"))
	for _, p := range []struct{ label, path string }{
		{"Before", b.BeforePhoto},
		{"After", b.AfterPhoto},
	} {
		if p.path == "" {
			field(p.label, "")
			continue
		}
		field(p.label, m.photoPath(p.path))
	}

	sections = append(sections, "", separator, "")
	sections = append(sections, headerStyle.Render("Issues"))

	if !b.Issues.HasCounts() {
		sections = append(sections, lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true).
			Render("No issue counts recorded"))
	} else {
		countStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorYellow)
		for _, issue := range model.AllIssues() {
			n := b.Issues.Count(issue)
			if n == 0 {
				continue
			}
			sections = append(sections, fmt.Sprintf("%s %s",
				lipgloss.NewStyle().Width(30).Render(issue.Label()),
				countStyle.Render(fmt.Sprint(n)),
			))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func urgencyLabel(urgent bool) string {
	if urgent {
		return "URGENT"
	}
	return "NORMAL"
}
