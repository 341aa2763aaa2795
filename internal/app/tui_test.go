package app

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/led-repair/internal/model"
	"github.com/nhle/led-repair/internal/ui/boardform"
	"github.com/nhle/led-repair/internal/ui/command"
	"github.com/nhle/led-repair/internal/ui/detail"
	"github.com/nhle/led-repair/internal/ui/viewer"
	"github.com/nhle/led-repair/tests/testutil"
)

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func TestModelRoutesCommandLine(t *testing.T) {
	svc := New(testutil.NewTestStore(t), Options{Operator: "ali"})
	m := NewModel(svc)

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = update(t, m, viewer.BoardsLoadedMsg{Boards: []model.Board{
		testutil.NewBoard("1", "KLCC"),
		testutil.NewBoard("2", "Pavilion"),
	}})
	assert.Contains(t, m.View(), "ali")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{':'}})
	require.Equal(t, ViewCommand, m.currentView)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	assert.Equal(t, ViewCommand, m.currentView, "palette keeps typed keys")

	m, _ = update(t, m, command.CommandMsg("site Pavilion"))
	assert.Equal(t, ViewList, m.currentView)
	require.Len(t, m.viewer.Shown(), 1)
	assert.Equal(t, "2", m.viewer.Shown()[0].BoardID)

	m, _ = update(t, m, command.CommandMsg("sort sideways"))
	assert.Equal(t, ViewCommand, m.currentView, "a bad line keeps the palette open")
	assert.Contains(t, m.commandView.Err(), "sideways")
	assert.Equal(t, "sort sideways", m.commandView.Value())
	assert.Contains(t, m.View(), "unknown sort mode")
	assert.Len(t, m.viewer.Shown(), 1)
	assert.Equal(t, []string{"site Pavilion"}, m.commandView.History())
}

func TestModelFormLifecycle(t *testing.T) {
	svc := New(testutil.NewTestStore(t), Options{Operator: "ali"})
	m := NewModel(svc)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	m, _ = update(t, m, nextIDMsg{id: "1"})
	assert.Equal(t, ViewForm, m.currentView)

	m, _ = update(t, m, boardform.CancelMsg{})
	assert.Equal(t, ViewList, m.currentView)

	m, cmd := update(t, m, boardform.BoardSubmittedMsg{Board: testutil.NewBoard("", "KLCC")})
	require.NotNil(t, cmd)
	saved, ok := cmd().(boardSavedMsg)
	require.True(t, ok)
	require.NoError(t, saved.err)
	assert.Equal(t, "1", saved.board.BoardID)
	assert.Equal(t, "ali", saved.board.CreatedBy)

	m, cmd = update(t, m, saved)
	assert.Equal(t, "Added board 1", m.message)
	require.NotNil(t, cmd)
	loaded, ok := cmd().(viewer.BoardsLoadedMsg)
	require.True(t, ok)
	assert.Len(t, loaded.Boards, 1)

	m, _ = update(t, m, boardSavedMsg{err: errors.New("disk full")})
	assert.True(t, m.messageErr)
	assert.Equal(t, "disk full", m.message)
}

func TestModelDetailRouting(t *testing.T) {
	svc := New(testutil.NewTestStore(t), Options{})
	m := NewModel(svc)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = update(t, m, viewer.BoardsLoadedMsg{Boards: []model.Board{testutil.NewBoard("7", "KLCC")}})

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	require.Equal(t, ViewDetail, m.currentView)
	assert.Contains(t, m.View(), "Board 7")
	assert.Contains(t, m.View(), "read-only")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewList, m.currentView)

	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'v'}})
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	_, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'e'}})
	require.NotNil(t, cmd)
	edit, ok := cmd().(detail.EditMsg)
	require.True(t, ok)
	assert.Equal(t, "7", edit.Board.BoardID)

	m, _ = update(t, m, edit)
	assert.Equal(t, ViewForm, m.currentView)
}
