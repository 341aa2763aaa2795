package app

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/led-repair/internal/keys"
	"github.com/nhle/led-repair/internal/model"
	"github.com/nhle/led-repair/internal/ui"
	"github.com/nhle/led-repair/internal/ui/boardform"
	"github.com/nhle/led-repair/internal/ui/command"
	"github.com/nhle/led-repair/internal/ui/detail"
	helpview "github.com/nhle/led-repair/internal/ui/help"
	"github.com/nhle/led-repair/internal/ui/viewer"
)

// ViewState represents the current active view in the terminal UI.
type ViewState int

const (
	ViewList ViewState = iota
	ViewDetail
	ViewForm
	ViewHelp
	ViewCommand
)

// boardSavedMsg reports the outcome of a form submission.
type boardSavedMsg struct {
	board *model.Board
	edit  bool
	err   error
}

// nextIDMsg carries the id suggested for a new board.
type nextIDMsg struct {
	id string
}

// Model is the root Bubble Tea model that routes between the board
// table, the board details, the board form and the help overlay.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	svc          *Service
	keys         *keys.KeyMap
	viewer       viewer.Model
	detail       detail.Model
	form         boardform.Model
	helpView     helpview.Model
	commandView  command.Model
	ready        bool
	message      string
	messageErr   bool
}

// NewModel creates the root terminal UI model over svc.
func NewModel(svc *Service) Model {
	k := keys.DefaultKeyMap()
	return Model{
		currentView: ViewList,
		svc:         svc,
		keys:        k,
		viewer:      viewer.New(svc.Store(), k, 80, 24),
		detail:      detail.New(svc.PhotoPath, k, 80, 24),
		form:        boardform.New(80, 24),
		helpView:    helpview.New(k, 80, 24),
		commandView: command.New(80, 24),
	}
}

// Init loads the board table.
func (m Model) Init() tea.Cmd {
	return m.viewer.Init()
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.viewer.SetSize(w, h)
		m.detail.SetSize(w, h)
		m.form.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case viewer.BoardsLoadedMsg:
		if msg.Err != nil {
			m.flash(fmt.Sprintf("reading boards: %v", msg.Err), true)
		}
		var cmd tea.Cmd
		m.viewer, cmd = m.viewer.Update(msg)
		return m, cmd

	case viewer.AddBoardMsg:
		return m, m.suggestID()

	case nextIDMsg:
		m.previousView = m.currentView
		m.currentView = ViewForm
		return m, m.form.StartCreate(msg.id)

	case viewer.OpenBoardMsg:
		m.previousView = m.currentView
		m.currentView = ViewDetail
		m.detail.SetBoard(msg.Board)
		return m, nil

	case detail.BackMsg:
		m.currentView = ViewList
		return m, nil

	case viewer.EditBoardMsg:
		m.previousView = m.currentView
		m.currentView = ViewForm
		return m, m.form.StartEdit(msg.Board)

	case detail.EditMsg:
		m.previousView = m.currentView
		m.currentView = ViewForm
		return m, m.form.StartEdit(msg.Board)

	case boardform.BoardSubmittedMsg:
		m.currentView = ViewList
		return m, m.saveBoard(msg.Board, msg.Edit)

	case boardform.CancelMsg:
		m.currentView = ViewList
		return m, nil

	case boardSavedMsg:
		if msg.err != nil {
			m.flash(msg.err.Error(), true)
			return m, nil
		}
		verb := "Added"
		if msg.edit {
			verb = "Updated"
		}
		m.flash(fmt.Sprintf("%s board %s", verb, msg.board.BoardID), false)
		return m, m.viewer.LoadBoards()

	case command.CommandMsg:
		return m, m.executeCommand(string(msg))

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.currentView == ViewCommand && key.Matches(msg, m.keys.Back) {
			m.currentView = ViewList
			return m, nil
		}
		if m.capturesKeys() {
			break
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			if m.currentView == ViewHelp {
				m.currentView = m.previousView
				return m, nil
			}
			m.previousView = m.currentView
			m.currentView = ViewHelp
			return m, nil

		case msg.String() == ":":
			m.previousView = m.currentView
			m.currentView = ViewCommand
			return m, m.commandView.Focus()

		case key.Matches(msg, m.keys.Back):
			if m.currentView != ViewList {
				m.currentView = ViewList
				return m, nil
			}
		}
	}

	return m.updateActiveView(msg)
}

// capturesKeys reports whether the active view owns the keyboard, so the
// global bindings must not fire.
func (m Model) capturesKeys() bool {
	switch m.currentView {
	case ViewForm, ViewCommand:
		return true
	case ViewList:
		return m.viewer.Searching()
	}
	return false
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewList:
		m.viewer, cmd = m.viewer.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewForm:
		m.form, cmd = m.form.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	operator := m.svc.Operator()
	if operator == "" {
		operator = "read-only"
	}
	header := m.layout.RenderHeader("LED Board Repairs", operator)
	statusBar := m.layout.RenderStatusBar(m.keyHints(), m.message, m.messageErr)

	return m.layout.RenderWithFrame(header, m.renderContent(), statusBar)
}

func (m Model) renderContent() string {
	switch m.currentView {
	case ViewDetail:
		return m.detail.View()
	case ViewForm:
		return m.form.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	default:
		return m.viewer.View()
	}
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter apply | esc back"
	case ViewDetail:
		return "j/k scroll | e edit | esc back | q quit"
	case ViewForm:
		return "enter next | shift+tab previous | ctrl+c quit"
	default:
		return "q quit | ? help | / search | u urgency | m month | tab sort | c clear | : filter | enter details | a add | e edit"
	}
}

func (m *Model) flash(text string, isErr bool) {
	m.message = text
	m.messageErr = isErr
}

// executeCommand applies a filter command line to the board table. A line
// that does not parse leaves the palette open with the error shown inline.
func (m *Model) executeCommand(line string) tea.Cmd {
	c, action, err := command.Apply(line, m.viewer.Criteria())
	if err != nil {
		m.commandView.Reject(line, err)
		m.currentView = ViewCommand
		return m.commandView.Focus()
	}
	m.commandView.Accept(line)
	m.currentView = ViewList

	switch action {
	case command.ActionQuit:
		return tea.Quit
	case command.ActionReload:
		return m.viewer.LoadBoards()
	}
	m.viewer.SetCriteria(c)
	m.flash("", false)
	return nil
}

// suggestID returns a command that looks up the next free board id.
func (m Model) suggestID() tea.Cmd {
	s := m.svc.Store()
	return func() tea.Msg {
		id, err := s.NextBoardID(context.Background())
		if err != nil {
			return nextIDMsg{}
		}
		return nextIDMsg{id: id}
	}
}

// saveBoard returns a command that stores a submitted board.
func (m Model) saveBoard(b model.Board, edit bool) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx := context.Background()
		var saved *model.Board
		var err error
		if edit {
			saved, err = svc.EditBoard(ctx, b)
		} else {
			saved, err = svc.AddBoard(ctx, b)
		}
		return boardSavedMsg{board: saved, edit: edit, err: err}
	}
}
