package rain

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
)

// SpawnOne attempts a single spawn outside the cadence. Non-immediate attempts are still
// rate limited. It returns the unit's expiry command, or nil when nothing was spawned.
func (m *Manager) SpawnOne(immediate bool) tea.Cmd {
	if !m.running {
		return nil
	}
	return m.attemptSpawn(immediate)
}

// SetReducedMotion switches cadence. On a change while running, the current spawn trigger
// is cancelled and a new one is scheduled at the new interval. Live units are untouched.
func (m *Manager) SetReducedMotion(reduced bool) tea.Cmd {
	next := CadenceNormal
	if reduced {
		next = CadenceReduced
	}
	if next == m.cadence {
		return nil
	}
	m.cadence = next
	m.spawnTag++
	logrus.WithField("cadence", next).Debug("rain cadence changed")
	if !m.running {
		return nil
	}
	return m.spawnTick()
}

// attemptSpawn is the per-tick spawn: rate limit, ceiling, build, register, schedule expiry.
// Immediate attempts skip the rate limit and do not move the last-spawn time.
func (m *Manager) attemptSpawn(immediate bool) tea.Cmd {
	now := m.now()
	if !immediate && !m.lastSpawn.IsZero() && now.Sub(m.lastSpawn) < m.cfg.MinSpawnGap.Std() {
		m.stats.RateLimited++
		return nil
	}

	u := m.factory.NewUnit(immediate, now)
	u.Paused = m.hidden

	var ok bool
	if err := m.guard("mount", u.ID, func() (err error) {
		ok, err = m.registry.TryRegister(u)
		return err
	}); err != nil {
		return nil
	}
	if !ok {
		m.stats.AtCapacity++
		return nil
	}

	m.stats.Spawned++
	if !immediate {
		m.lastSpawn = now
	}
	return m.expireAfter(u)
}

func (m *Manager) spawnTick() tea.Cmd {
	id, tag := m.id, m.spawnTag
	return tea.Tick(m.Interval(), func(time.Time) tea.Msg {
		return SpawnTickMsg{ID: id, tag: tag}
	})
}

func (m *Manager) expireAfter(u Unit) tea.Cmd {
	id, unit := m.id, u.ID
	return tea.Tick(u.Lifetime(), func(time.Time) tea.Msg {
		return UnitExpiredMsg{ID: id, Unit: unit}
	})
}
