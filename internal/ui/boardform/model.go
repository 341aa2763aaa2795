// Package boardform is the interactive add/edit form for board records.
package boardform

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/led-repair/internal/model"
	"github.com/nhle/led-repair/internal/theme"
)

// maxIssueCount bounds a single category tally.
const maxIssueCount = 999

// BoardSubmittedMsg is dispatched when the form is completed.
type BoardSubmittedMsg struct {
	Board model.Board
	Edit  bool
}

// CancelMsg is dispatched when the user aborts the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	boardID      string
	name         string
	ic           string
	dc           string
	size         string
	moduleNumber string
	pixel        string
	boardCode    string
	runningNo    string
	dateRequest  string
	doDate       string
	dateRepair   string
	beforePhoto  string
	afterPhoto   string
	urgency      bool
	noIssue      bool
	totalLoss    bool
	counts       [model.NumIssues]string

	// kept from the edited record and not shown on the form
	runningNoP1 string
	runningNoP2 string
	createdBy   string
}

// Model is the Bubble Tea model for the board form.
type Model struct {
	form     *huh.Form
	fb       *formBindings
	editMode bool
	width    int
	height   int
}

// New creates a new board form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// StartCreate initializes the form for a new board. suggestedID is shown
// as the placeholder for the id field; a blank id is filled in on save.
func (m *Model) StartCreate(suggestedID string) tea.Cmd {
	m.editMode = false
	*m.fb = formBindings{}
	m.form = m.buildForm(suggestedID)
	return m.form.Init()
}

// StartEdit initializes the form with an existing board.
func (m *Model) StartEdit(b model.Board) tea.Cmd {
	m.editMode = true
	m.fb.fill(b)
	m.form = m.buildForm("")
	return m.form.Init()
}

// Update handles messages for the board form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		board := m.fb.board()
		edit := m.editMode
		m.form = nil
		return m, func() tea.Msg { return BoardSubmittedMsg{Board: board, Edit: edit} }
	}
	if m.form.State == huh.StateAborted {
		m.form = nil
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the board form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New Board"
	if m.editMode {
		titleText = "Edit Board " + m.fb.boardID
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render(titleText) + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm(suggestedID string) *huh.Form {
	fb := m.fb

	var idField huh.Field
	if m.editMode {
		idField = huh.NewNote().
			Title("Board ID").
			Description(fb.boardID + " (cannot be changed)")
	} else {
		in := huh.NewInput().
			Title("Board ID").
			Value(&fb.boardID)
		if suggestedID != "" {
			in = in.Placeholder(suggestedID + " (leave blank to use)")
		}
		idField = in
	}

	required := huh.NewGroup(
		idField,
		huh.NewInput().Title("Site Name").Value(&fb.name).Validate(validateRequired("Site name")),
		huh.NewInput().Title("IC").Value(&fb.ic).Validate(validateRequired("IC")),
		huh.NewInput().Title("DC").Value(&fb.dc).Validate(validateRequired("DC")),
		huh.NewInput().Title("Size").Placeholder("e.g. P2.5").Value(&fb.size).Validate(validateRequired("Size")),
		huh.NewInput().Title("Module Number").Value(&fb.moduleNumber),
	).Title("Board")

	details := huh.NewGroup(
		huh.NewInput().Title("Pixel").Placeholder("pitch or format, e.g. 64x64").Value(&fb.pixel),
		huh.NewInput().Title("Board Code").Value(&fb.boardCode),
		huh.NewInput().Title("Running No").Value(&fb.runningNo),
		huh.NewInput().Title("Date Request").Placeholder("YYYY-MM-DD").Value(&fb.dateRequest).Validate(validateOptionalDate),
		huh.NewInput().Title("DO Date").Placeholder("YYYY-MM-DD").Value(&fb.doDate).Validate(validateOptionalDate),
		huh.NewInput().Title("Date Repair").Placeholder("YYYY-MM-DD").Value(&fb.dateRepair).Validate(validateOptionalDate),
		huh.NewInput().Title("Before Photo").Placeholder("path to png/jpg").Value(&fb.beforePhoto),
		huh.NewInput().Title("After Photo").Placeholder("path to png/jpg").Value(&fb.afterPhoto),
		huh.NewConfirm().Title("Urgent?").Affirmative("Yes").Negative("No").Value(&fb.urgency),
	).Title("Details")

	flags := huh.NewGroup(
		huh.NewConfirm().Title("No issue").Description("Clears every count below").Value(&fb.noIssue),
		huh.NewConfirm().Title("Total loss").Value(&fb.totalLoss),
	).Title("Issues")

	counts := make([]huh.Field, 0, model.NumIssues)
	for _, issue := range model.AllIssues() {
		counts = append(counts, huh.NewInput().
			Title(issue.Label()).
			Placeholder("0").
			Value(&fb.counts[issue]).
			Validate(validateCount))
	}
	tally := huh.NewGroup(counts...).
		Title("Issue counts").
		WithHideFunc(func() bool { return fb.noIssue })

	return huh.NewForm(required, details, flags, tally).
		WithWidth(m.formWidth()).
		WithHeight(m.formHeight())
}

func (fb *formBindings) fill(b model.Board) {
	*fb = formBindings{
		boardID:      b.BoardID,
		name:         b.Name,
		ic:           b.IC,
		dc:           b.DC,
		size:         b.Size,
		moduleNumber: b.ModuleNumber,
		pixel:        b.Pixel,
		boardCode:    b.BoardCode,
		runningNo:    b.RunningNo,
		dateRequest:  b.DateRequest,
		doDate:       b.DODate,
		dateRepair:   b.DateRepair,
		beforePhoto:  b.BeforePhoto,
		afterPhoto:   b.AfterPhoto,
		urgency:      b.Urgency,
		noIssue:      b.Issues.NoIssue,
		totalLoss:    b.Issues.TotalLoss,
		runningNoP1:  b.RunningNoP1,
		runningNoP2:  b.RunningNoP2,
		createdBy:    b.CreatedBy,
	}
	for _, issue := range model.AllIssues() {
		if n := b.Issues.Count(issue); n != 0 {
			fb.counts[issue] = strconv.Itoa(n)
		}
	}
}

func (fb *formBindings) board() model.Board {
	b := model.Board{
		BoardID:      strings.TrimSpace(fb.boardID),
		Name:         strings.TrimSpace(fb.name),
		IC:           strings.TrimSpace(fb.ic),
		DC:           strings.TrimSpace(fb.dc),
		Size:         strings.TrimSpace(fb.size),
		ModuleNumber: strings.TrimSpace(fb.moduleNumber),
		Pixel:        strings.TrimSpace(fb.pixel),
		BoardCode:    strings.TrimSpace(fb.boardCode),
		RunningNo:    strings.TrimSpace(fb.runningNo),
		RunningNoP1:  fb.runningNoP1,
		RunningNoP2:  fb.runningNoP2,
		DateRequest:  strings.TrimSpace(fb.dateRequest),
		DODate:       strings.TrimSpace(fb.doDate),
		DateRepair:   strings.TrimSpace(fb.dateRepair),
		BeforePhoto:  strings.TrimSpace(fb.beforePhoto),
		AfterPhoto:   strings.TrimSpace(fb.afterPhoto),
		Urgency:      fb.urgency,
		CreatedBy:    fb.createdBy,
	}
	b.Issues.NoIssue = fb.noIssue
	b.Issues.TotalLoss = fb.totalLoss
	for _, issue := range model.AllIssues() {
		n, _ := strconv.Atoi(strings.TrimSpace(fb.counts[issue]))
		b.Issues.Set(issue, n)
	}
	b.Issues.Normalize()
	return b
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func (m Model) formHeight() int {
	return max(m.height-4, 10)
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateOptionalDate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return fmt.Errorf("invalid date format, use YYYY-MM-DD")
	}
	return nil
}

func validateCount(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > maxIssueCount {
		return fmt.Errorf("enter a whole number from 0 to %d", maxIssueCount)
	}
	return nil
}
