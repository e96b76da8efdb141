package rain

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// expire removes a unit whose scheduled time has elapsed.
func (m *Manager) expire(id uuid.UUID) {
	if m.remove(id, "expire") {
		m.stats.Expired++
	}
}

// trim removes the oldest units while the population is above the threshold, at most
// TrimBatch per tick. It backs up per-unit expiry when timers drift or a removal failed.
func (m *Manager) trim() {
	excess := m.registry.Len() - m.cfg.Threshold()
	if excess <= 0 {
		return
	}
	n := min(m.cfg.TrimBatch, excess)
	removed := 0
	for _, u := range m.registry.Oldest(n) {
		if m.remove(u.ID, "trim") {
			removed++
		}
	}
	m.stats.Trimmed += removed
	logrus.WithFields(logrus.Fields{"removed": removed, "live": m.registry.Len()}).Debug("rain trimmed")
}

// remove deregisters one unit, reporting whether it was live. Unmount failures are logged;
// the unit leaves the registry regardless.
func (m *Manager) remove(id uuid.UUID, op string) bool {
	var removed bool
	_ = m.guard(op, id, func() (err error) {
		removed, err = m.registry.Deregister(id)
		return err
	})
	return removed
}

func (m *Manager) cleanupTick() tea.Cmd {
	id, tag := m.id, m.cleanupTag
	return tea.Tick(m.cfg.CleanupInterval.Std(), func(time.Time) tea.Msg {
		return CleanupTickMsg{ID: id, tag: tag}
	})
}
