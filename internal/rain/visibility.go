package rain

import "github.com/sirupsen/logrus"

// SetHidden pauses (hidden) or resumes every live unit. Spawning and eviction carry on
// while hidden; units spawned in the meantime start paused.
func (m *Manager) SetHidden(hidden bool) {
	m.hidden = hidden
	for _, u := range m.registry.Live() {
		_ = m.guard("visibility", u.ID, func() error {
			return m.registry.SetPaused(u.ID, hidden)
		})
	}
	logrus.WithFields(logrus.Fields{"hidden": hidden, "live": m.registry.Len()}).Debug("rain visibility changed")
}
