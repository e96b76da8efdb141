package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ensigniasec/signature-rain/internal/rain"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) { // nolint:ireturn
	switch x := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = x.Width, x.Height
		m.help.Width = x.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(x)

	case tea.FocusMsg:
		m.blurred = false
		m.syncVisibility()
		return m, nil

	case tea.BlurMsg:
		m.blurred = true
		m.syncVisibility()
		return m, nil

	case frameMsg:
		dt := x.At.Sub(m.lastFrame)
		m.lastFrame = x.At
		if dt > 0 {
			m.canvas.advance(min(dt, maxFrameStep))
		}
		return m, m.frame()

	case rain.SpawnTickMsg, rain.CleanupTickMsg, rain.UnitExpiredMsg:
		return m, m.rain.Update(x)
	}

	var cmd tea.Cmd
	m.uptime, cmd = m.uptime.Update(msg)
	return m, cmd
}
