// Package tui renders the device front panel in the terminal: the four
// digit display, the mode and status indicator, and key bindings standing
// in for the keypad and the two buttons.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/atinyakov/PassLock/internal/models"
	"github.com/atinyakov/PassLock/internal/panel"
)

// refreshInterval is how often the view polls the panel outputs.
const refreshInterval = 40 * time.Millisecond

type refreshMsg time.Time

// Model is the bubbletea model for the panel.
type Model struct {
	p     *panel.Panel
	flash time.Duration
	keys  KeyMap
	help  help.Model
	now   func() time.Time
	state panel.State
}

// New returns a model reading from and writing to p. flash is the length of
// each on and off phase of a status flash.
func New(p *panel.Panel, flash time.Duration) Model {
	return Model{
		p:     p,
		flash: flash,
		keys:  DefaultKeyMap,
		help:  help.New(),
		now:   time.Now,
		state: p.State(),
	}
}

func refresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return refresh()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Digit):
			m.p.PressKey(models.Digit(msg.String()[0] - '0'))
		case key.Matches(msg, m.keys.Mode):
			m.p.PressMode()
		case key.Matches(msg, m.keys.Reset):
			m.p.PressReset()
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil
	case refreshMsg:
		m.state = m.p.State()
		return m, refresh()
	}
	return m, nil
}

func (m Model) View() string {
	st := m.state
	now := m.now()
	flashing := st.Flashing(now, m.flash)

	code := st.Display
	if flashing {
		code = st.FlashedCode
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("PassLock"))
	b.WriteString("\n")
	b.WriteString(renderDisplay(code))
	b.WriteString("\n\n")
	b.WriteString(m.renderIndicator(st, now, flashing))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render(fmt.Sprintf("register 0x%04X", st.Register)))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return docStyle.Render(b.String())
}

func renderDisplay(code models.Passcode) string {
	digits := make([]string, 0, len(code))
	for _, d := range code {
		s := " "
		if d.Valid() {
			s = string('0' + rune(d))
		}
		digits = append(digits, digitStyle.Render(s))
	}
	return displayStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top, digits...))
}

func (m Model) renderIndicator(st panel.State, now time.Time, flashing bool) string {
	if !st.Lit {
		return lamp(colorOff) + " " + lamp(colorOff) + labelStyle.Render("  off")
	}
	status := lamp(colorOff)
	if flashing && panel.FlashOn(now.Sub(st.FlashedAt), m.flash) {
		status = lamp(verdictColor(st.Verdict))
	}
	label := st.Mode.String()
	if flashing {
		label += " · " + st.Verdict.String()
	}
	return lamp(modeColor(st.Mode)) + " " + status + labelStyle.Render("  "+label)
}

// Run starts the terminal UI and blocks until the user quits.
func Run(p *panel.Panel, flash time.Duration) error {
	_, err := tea.NewProgram(New(p, flash), tea.WithAltScreen()).Run()
	return err
}
