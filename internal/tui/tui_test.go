package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atinyakov/PassLock/internal/device"
	"github.com/atinyakov/PassLock/internal/models"
	"github.com/atinyakov/PassLock/internal/panel"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok, "Update returned %T", next)
	return nm, cmd
}

func TestUpdate_KeysQueuePresses(t *testing.T) {
	p := panel.New()
	m := New(p, 125*time.Millisecond)

	m, _ = update(t, m, runes("7"))
	m, _ = update(t, m, runes("m"))
	m, _ = update(t, m, runes("r"))
	_, _ = update(t, m, runes("x"))

	want := []device.Sample{
		{Key: 7}, device.IdleSample,
		{Mode: true, Key: models.Blank}, device.IdleSample,
		{Reset: true, Key: models.Blank}, device.IdleSample,
	}
	require.Equal(t, len(want), p.Pending())
	for i, w := range want {
		assert.Equal(t, w, p.Poll(), "sample %d", i)
	}
}

func TestUpdate_Quit(t *testing.T) {
	m := New(panel.New(), 125*time.Millisecond)
	_, cmd := update(t, m, runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestUpdate_RefreshReadsPanel(t *testing.T) {
	p := panel.New()
	m := New(p, 125*time.Millisecond)
	p.Show(models.Passcode{4, 2, models.Blank, models.Blank})

	m, cmd := update(t, m, refreshMsg(time.Now()))
	assert.NotNil(t, cmd, "refresh must schedule the next refresh")
	assert.Equal(t, models.Passcode{4, 2, models.Blank, models.Blank}, m.state.Display)
	assert.Contains(t, m.View(), "0x42FF")
}

func TestView_FlashShowsEvaluatedCode(t *testing.T) {
	p := panel.New()
	d := device.New(device.Config{Capacity: 5}, p, p, p, zap.NewNop())
	for _, k := range []models.Digit{0, 0, 0, 0} {
		p.PressKey(k)
	}
	for p.Pending() > 0 {
		d.Tick()
	}

	m := New(p, 125*time.Millisecond)
	flashedAt := p.State().FlashedAt
	m.now = func() time.Time { return flashedAt.Add(10 * time.Millisecond) }
	view := m.View()
	assert.Contains(t, view, "check · accept")
	assert.Contains(t, view, renderDisplay(models.MasterPasscode), "display shows the evaluated code while flashing")

	m.now = func() time.Time { return flashedAt.Add(time.Second) }
	view = m.View()
	assert.Contains(t, view, renderDisplay(models.BlankPasscode))
	assert.NotContains(t, view, "accept")
	assert.Contains(t, view, "check")
}

func TestView_Off(t *testing.T) {
	p := panel.New()
	p.Off()
	m := New(p, 125*time.Millisecond)
	assert.Contains(t, m.View(), "off")
}
