// Package viewer is the read-only board table with filter and sort
// controls.
package viewer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/led-repair/internal/keys"
	"github.com/nhle/led-repair/internal/model"
	"github.com/nhle/led-repair/internal/query"
	"github.com/nhle/led-repair/internal/store"
	"github.com/nhle/led-repair/internal/theme"
)

// BoardsLoadedMsg is sent when boards have been read from the store.
type BoardsLoadedMsg struct {
	Boards []model.Board
	Err    error
}

// AddBoardMsg asks the parent to open an empty board form.
type AddBoardMsg struct{}

// OpenBoardMsg asks the parent to show every field of a board.
type OpenBoardMsg struct {
	Board model.Board
}

// EditBoardMsg asks the parent to open the form for an existing board.
type EditBoardMsg struct {
	Board model.Board
}

// Model is the board table view.
type Model struct {
	table       table.Model
	store       store.BoardStore
	keys        *keys.KeyMap
	all         []model.Board
	shown       []model.Board
	criteria    query.Criteria
	month       time.Month
	searchMode  bool
	searchInput textinput.Model
	err         error
	width       int
	height      int
}

// New creates a viewer reading from s.
func New(s store.BoardStore, k *keys.KeyMap, width, height int) Model {
	cols := make([]table.Column, len(Columns))
	for i, c := range Columns {
		cols[i] = table.Column{Title: c.Title, Width: c.Width}
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithFocused(true),
		table.WithHeight(tableHeight(height)),
	)
	styles := table.DefaultStyles()
	styles.Header = theme.TableHeaderStyle
	styles.Cell = theme.TableCellStyle
	styles.Selected = theme.TableSelectedStyle
	t.SetStyles(styles)

	si := textinput.New()
	si.Placeholder = "id, site, running no or size..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		table:       t,
		store:       s,
		keys:        k,
		searchInput: si,
		width:       width,
		height:      height,
	}
}

// Init loads the board file.
func (m Model) Init() tea.Cmd {
	return m.LoadBoards()
}

// LoadBoards returns a tea.Cmd that reads every board from the store.
func (m Model) LoadBoards() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		boards, err := s.ListBoards(context.Background())
		return BoardsLoadedMsg{Boards: boards, Err: err}
	}
}

// Update handles messages for the viewer.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case BoardsLoadedMsg:
		m.err = msg.Err
		m.all = msg.Boards
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.criteria.Search = strings.TrimSpace(m.searchInput.Value())
		m.refresh()
		return m, nil

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.criteria.Search = ""
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.SetValue(m.criteria.Search)
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.CycleUrgency):
		m.criteria.Urgency = (m.criteria.Urgency + 1) % 3
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.CycleMonth):
		m.month = (m.month + 1) % 13
		m.criteria.Months = nil
		if m.month != 0 {
			m.criteria.Months = []time.Month{m.month}
		}
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.CycleSort):
		modes := query.SortModes()
		m.criteria.Sort = modes[(int(m.criteria.Sort)+1)%len(modes)]
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.ClearFilters):
		m.criteria = query.Criteria{}
		m.month = 0
		m.searchInput.Reset()
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, m.LoadBoards()

	case key.Matches(msg, m.keys.Add):
		return m, func() tea.Msg { return AddBoardMsg{} }

	case key.Matches(msg, m.keys.Open):
		b, ok := m.Selected()
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg { return OpenBoardMsg{Board: b} }

	case key.Matches(msg, m.keys.Edit):
		b, ok := m.Selected()
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg { return EditBoardMsg{Board: b} }
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// refresh re-applies the criteria to the loaded boards and rebuilds the
// table rows.
func (m *Model) refresh() {
	m.shown = query.Apply(m.all, m.criteria)
	rows := make([]table.Row, len(m.shown))
	for i, b := range m.shown {
		rows[i] = Cells(b)
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

// Criteria returns the active filter and sort selection.
func (m Model) Criteria() query.Criteria {
	return m.criteria
}

// SetCriteria replaces the filter and sort selection.
func (m *Model) SetCriteria(c query.Criteria) {
	m.criteria = c
	m.month = 0
	if len(c.Months) == 1 {
		m.month = c.Months[0]
	}
	m.refresh()
}

// Shown returns the boards currently listed, in display order.
func (m Model) Shown() []model.Board {
	return m.shown
}

// Selected returns the board under the cursor.
func (m Model) Selected() (model.Board, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.shown) {
		return model.Board{}, false
	}
	return m.shown[i], true
}

// Searching reports whether the search input has focus.
func (m Model) Searching() bool {
	return m.searchMode
}

// Status summarizes the active filters for the status bar.
func (m Model) Status() string {
	monthLabel := query.All
	if m.month != 0 {
		monthLabel = m.month.String()[:3]
	}
	parts := []string{
		theme.FilterStyle(m.criteria.Urgency != query.UrgencyAll).
			Render("urgency: " + m.criteria.Urgency.String()),
		theme.FilterStyle(m.month != 0).Render("month: " + monthLabel),
		theme.FilterStyle(m.criteria.Sort != query.SortNone).
			Render("sort: " + m.criteria.Sort.Label()),
	}
	if m.criteria.Search != "" {
		parts = append(parts, theme.FilterStyle(true).Render("search: "+m.criteria.Search))
	}
	parts = append(parts, fmt.Sprintf("%d/%d boards", len(m.shown), len(m.all)))
	return strings.Join(parts, " ")
}

// View renders the table.
func (m Model) View() string {
	if m.err != nil {
		return theme.ErrorStyle.Render("Could not read boards: " + m.err.Error())
	}

	body := m.table.View()
	if len(m.shown) == 0 {
		body = m.renderEmptyState()
	}

	if m.searchMode {
		searchBar := lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View())
		return lipgloss.JoinVertical(lipgloss.Left, searchBar, body)
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.Status(), body)
}

func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height-2).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if len(m.all) > 0 {
		return style.Render("No matching boards.\nPress c to clear filters.")
	}
	return style.Render("No boards recorded yet.\n\nPress a to add one.")
}

// SetSize updates the table dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetWidth(width)
	m.table.SetHeight(tableHeight(height))
	m.searchInput.Width = width - 4
}

func tableHeight(height int) int {
	return max(height-2, 3)
}
