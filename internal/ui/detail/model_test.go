package detail

import (
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/led-repair/internal/keys"
	"github.com/nhle/led-repair/internal/model"
	"github.com/nhle/led-repair/tests/testutil"
)

func TestViewShowsBoardFields(t *testing.T) {
	resolve := func(s string) string { return filepath.Join("/data", s) }
	m := New(resolve, keys.DefaultKeyMap(), 100, 40)
	assert.Contains(t, m.View(), "No board selected")

	b := testutil.NewBoard("12", "KLCC")
	b.Urgency = true
	b.BeforePhoto = "pictures/12_before.jpg"
	b.Issues.Set(model.IssuePixelDrop, 4)
	m.SetBoard(b)

	view := m.View()
	assert.Contains(t, view, "Board 12")
	assert.Contains(t, view, "URGENT")
	assert.Contains(t, view, filepath.Join("/data", "pictures/12_before.jpg"))
	assert.Contains(t, view, model.IssuePixelDrop.Label())

	got, ok := m.Board()
	require.True(t, ok)
	assert.Equal(t, "12", got.BoardID)
}

func TestKeysEmitMessages(t *testing.T) {
	m := New(nil, keys.DefaultKeyMap(), 100, 40)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'e'}})
	assert.Nil(t, cmd, "no board to edit")

	m.SetBoard(testutil.NewBoard("3", "Pavilion"))
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'e'}})
	require.NotNil(t, cmd)
	edit, ok := cmd().(EditMsg)
	require.True(t, ok)
	assert.Equal(t, "3", edit.Board.BoardID)

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	_, ok = cmd().(BackMsg)
	assert.True(t, ok)
}
