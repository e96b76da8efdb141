//nolint:testpackage // White-box tests require access to unexported identifiers in this package.
package rain

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ensigniasec/signature-rain/internal/config"
)

var errMountRefused = errors.New("mount refused")

// fakeSurface records what the manager mounts. Hooks let tests inject failures.
type fakeSurface struct {
	mounted   map[uuid.UUID]Unit
	paused    map[uuid.UUID]bool
	mounts    int
	unmounts  int
	onMount   func(Unit) error
	onUnmount func(uuid.UUID) error
	onPause   func(uuid.UUID) error
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{
		mounted: make(map[uuid.UUID]Unit),
		paused:  make(map[uuid.UUID]bool),
	}
}

func (s *fakeSurface) Mount(u Unit) error {
	if s.onMount != nil {
		if err := s.onMount(u); err != nil {
			return err
		}
	}
	s.mounts++
	s.mounted[u.ID] = u
	s.paused[u.ID] = u.Paused
	return nil
}

func (s *fakeSurface) Unmount(id uuid.UUID) error {
	s.unmounts++
	delete(s.mounted, id)
	delete(s.paused, id)
	if s.onUnmount != nil {
		return s.onUnmount(id)
	}
	return nil
}

func (s *fakeSurface) SetPaused(id uuid.UUID, paused bool) error {
	if s.onPause != nil {
		if err := s.onPause(id); err != nil {
			return err
		}
	}
	s.paused[id] = paused
	return nil
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestManager(t *testing.T, mutate func(*config.Config)) (*Manager, *fakeSurface, *fakeClock) {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	surface := newFakeSurface()
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	m, err := New(cfg, surface, WithClock(clock.Now), WithRand(rand.New(rand.NewSource(1))))
	require.NoError(t, err)
	return m, surface, clock
}

func (m *Manager) spawnTickNow() SpawnTickMsg     { return SpawnTickMsg{ID: m.id, tag: m.spawnTag} }
func (m *Manager) cleanupTickNow() CleanupTickMsg { return CleanupTickMsg{ID: m.id, tag: m.cleanupTag} }
func (m *Manager) expiry(id uuid.UUID) UnitExpiredMsg {
	return UnitExpiredMsg{ID: m.id, Unit: id}
}

func ids(units []Unit) []uuid.UUID {
	out := make([]uuid.UUID, len(units))
	for i, u := range units {
		out[i] = u.ID
	}
	return out
}
