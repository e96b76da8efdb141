package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/ensigniasec/signature-rain/internal/rain"
)

// handleKey processes key bindings and returns updated model and command.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) { // nolint:ireturn
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.rain.Stop()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Pause):
		m.paused = !m.paused
		m.syncVisibility()
		return m, nil

	case key.Matches(msg, m.keys.Motion):
		m.reduced = !m.reduced
		return m, m.rain.Update(rain.MotionPreferenceMsg{Reduced: m.reduced})

	case key.Matches(msg, m.keys.Spawn):
		return m, m.rain.SpawnOne(true)

	case key.Matches(msg, m.keys.Status):
		m.showStatus = !m.showStatus
		return m, nil

	case key.Matches(msg, m.keys.Activate):
		logrus.Info("signature activated")
		m.bannerUntil = m.now().Add(bannerDuration)
		return m, nil
	}

	return m, nil
}

// syncVisibility forwards the combined pause/focus state to the rain.
func (m Model) syncVisibility() {
	m.rain.Update(rain.VisibilityMsg{Hidden: m.hidden()})
}
