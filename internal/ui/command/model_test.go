package command

import (
	"errors"
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/led-repair/internal/query"
)

func typeLine(m Model, line string) Model {
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(line)})
	return m
}

func press(m Model, k tea.KeyType) Model {
	m, _ = m.Update(tea.KeyMsg{Type: k})
	return m
}

func TestPaletteSubmitsTrimmedLine(t *testing.T) {
	m := typeLine(New(80, 24), "  site KLCC ")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, CommandMsg("site KLCC"), cmd())

	_, cmd = New(80, 24).Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd, "blank lines are not submitted")
}

func TestPaletteRejectShowsErrorUntilEdited(t *testing.T) {
	m := New(80, 24)
	_, _, err := Apply("sort sideways", query.Criteria{})
	require.Error(t, err)

	m.Reject("sort sideways", err)
	assert.Equal(t, "sort sideways", m.Value())
	assert.Contains(t, m.View(), `unknown sort mode "sideways"`)

	m = press(m, tea.KeyBackspace)
	assert.Empty(t, m.Err())
	assert.NotContains(t, m.View(), "unknown sort mode")
	assert.Empty(t, m.History(), "rejected lines are not remembered")
}

func TestPaletteHistoryRecall(t *testing.T) {
	m := New(80, 24)
	m.Accept("site KLCC")
	m.Accept("sort site")
	m.Accept("sort site")
	assert.Equal(t, []string{"site KLCC", "sort site"}, m.History())
	assert.Empty(t, m.Value())

	m = typeLine(m, "mon")
	m = press(m, tea.KeyUp)
	assert.Equal(t, "sort site", m.Value())
	m = press(m, tea.KeyUp)
	assert.Equal(t, "site KLCC", m.Value())
	m = press(m, tea.KeyUp)
	assert.Equal(t, "site KLCC", m.Value(), "stops at the oldest line")

	m = press(m, tea.KeyDown)
	assert.Equal(t, "sort site", m.Value())
	m = press(m, tea.KeyDown)
	assert.Equal(t, "mon", m.Value(), "the typed line comes back")

	view := m.View()
	assert.Contains(t, view, "Recent")
	assert.Contains(t, view, "site KLCC")
}

func TestPaletteHistoryIsCapped(t *testing.T) {
	m := New(80, 24)
	for i := 0; i < historyLimit+5; i++ {
		m.Accept(fmt.Sprintf("search %d", i))
	}
	h := m.History()
	require.Len(t, h, historyLimit)
	assert.Equal(t, "search 5", h[0])
	assert.Equal(t, fmt.Sprintf("search %d", historyLimit+4), h[len(h)-1])
}

func TestPaletteAcceptClearsError(t *testing.T) {
	m := New(80, 24)
	m.Reject("bogus", errors.New(`unknown command "bogus"`))
	require.NotEmpty(t, m.Err())

	m.Accept("clear")
	assert.Empty(t, m.Err())
	assert.Empty(t, m.Value())
}
