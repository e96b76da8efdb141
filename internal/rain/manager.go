package rain

import (
	"errors"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ensigniasec/signature-rain/internal/config"
)

var (
	// ErrNoSurface is returned by New when there is nothing to mount units on.
	ErrNoSurface = errors.New("rain container not found")
	// ErrSurfacePanic wraps a panic recovered from a Surface call.
	ErrSurfacePanic = errors.New("surface panicked")
)

//nolint:gochecknoglobals // instance id source, as in bubbles components.
var lastID int64

func nextID() int {
	return int(atomic.AddInt64(&lastID, 1))
}

// Cadence selects the spawn interval.
type Cadence int

const (
	CadenceNormal Cadence = iota
	CadenceReduced
)

func (c Cadence) String() string {
	if c == CadenceReduced {
		return "reduced"
	}
	return "normal"
}

// Stats is a snapshot of the manager's counters.
type Stats struct {
	Live        int     `json:"live"`
	Capacity    int     `json:"capacity"`
	Spawned     int     `json:"spawned"`
	RateLimited int     `json:"rate_limited"`
	AtCapacity  int     `json:"at_capacity"`
	Expired     int     `json:"expired"`
	Trimmed     int     `json:"trimmed"`
	Failures    int     `json:"failures"`
	Cadence     Cadence `json:"-"`
	Hidden      bool    `json:"hidden"`
	Running     bool    `json:"running"`
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces time.Now, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithRand seeds unit generation.
func WithRand(r *rand.Rand) Option {
	return func(m *Manager) { m.rng = r }
}

// WithCharset sets the glyphs units are drawn from.
func WithCharset(charset string) Option {
	return func(m *Manager) { m.charset = charset }
}

// Manager owns the population of live units and the timers that grow and shrink it.
type Manager struct {
	id       int
	cfg      config.Config
	registry *Registry
	factory  *Factory
	now      func() time.Time
	rng      *rand.Rand
	charset  string

	running    bool
	hidden     bool
	cadence    Cadence
	lastSpawn  time.Time
	spawnTag   int
	cleanupTag int

	stats Stats
}

// New returns a stopped Manager mounting units on surface.
func New(cfg config.Config, surface Surface, opts ...Option) (*Manager, error) {
	if surface == nil {
		return nil, ErrNoSurface
	}
	m := &Manager{
		id:  nextID(),
		cfg: cfg,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if cfg.ReducedMotion {
		m.cadence = CadenceReduced
	}
	m.registry = NewRegistry(cfg.MaxColumns, surface)
	m.factory = NewFactory(cfg, m.charset, m.rng)
	return m, nil
}

// ID is the instance id carried by this manager's timer messages.
func (m *Manager) ID() int { return m.id }

// Len is the live unit count.
func (m *Manager) Len() int { return m.registry.Len() }

// Live returns the live units in creation order.
func (m *Manager) Live() []Unit { return m.registry.Live() }

// Cadence is the active spawn cadence.
func (m *Manager) Cadence() Cadence { return m.cadence }

// Interval is the spawn interval of the active cadence.
func (m *Manager) Interval() time.Duration {
	if m.cadence == CadenceReduced {
		return m.cfg.ReducedMotionInterval.Std()
	}
	return m.cfg.SpawnInterval.Std()
}

// Stats returns a snapshot of the counters.
func (m *Manager) Stats() Stats {
	s := m.stats
	s.Live = m.registry.Len()
	s.Capacity = m.registry.Cap()
	s.Cadence = m.cadence
	s.Hidden = m.hidden
	s.Running = m.running
	return s
}

// Start runs the initial burst and begins the spawn and cleanup cadences.
// Starting a running manager does nothing.
func (m *Manager) Start() tea.Cmd {
	if m.running {
		return nil
	}
	m.running = true
	cmds := make([]tea.Cmd, 0, m.cfg.InitialColumns+2) //nolint:mnd // spawn + cleanup ticks
	for i := 0; i < m.cfg.InitialColumns; i++ {
		cmds = append(cmds, m.attemptSpawn(true))
	}
	cmds = append(cmds, m.spawnTick(), m.cleanupTick())
	logrus.WithFields(logrus.Fields{
		"live":    m.registry.Len(),
		"cadence": m.cadence,
	}).Info("rain started")
	return tea.Batch(cmds...)
}

// Stop cancels both cadences and removes every live unit. Expiry messages still in
// flight find nothing to remove.
func (m *Manager) Stop() {
	m.running = false
	m.spawnTag++
	m.cleanupTag++
	for _, u := range m.registry.Live() {
		m.remove(u.ID, "stop")
	}
	logrus.Debug("rain stopped")
}

// Update handles this manager's timer messages and the host signals.
func (m *Manager) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case SpawnTickMsg:
		if msg.ID != m.id || msg.tag != m.spawnTag || !m.running {
			return nil
		}
		return tea.Batch(m.attemptSpawn(false), m.spawnTick())

	case CleanupTickMsg:
		if msg.ID != m.id || msg.tag != m.cleanupTag || !m.running {
			return nil
		}
		m.trim()
		return m.cleanupTick()

	case UnitExpiredMsg:
		if msg.ID != m.id {
			return nil
		}
		m.expire(msg.Unit)
		return nil

	case VisibilityMsg:
		m.SetHidden(msg.Hidden)
		return nil

	case MotionPreferenceMsg:
		return m.SetReducedMotion(msg.Reduced)

	case SpawnMsg:
		return m.SpawnOne(msg.Immediate)
	}
	return nil
}

// guard runs one surface-touching operation, converting panics to errors and logging
// failures so a single bad unit never stops the loop.
func (m *Manager) guard(op string, id uuid.UUID, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrSurfacePanic, r)
		}
		if err != nil {
			m.stats.Failures++
			logrus.WithFields(logrus.Fields{"op": op, "unit": id}).Warnf("rain %s failed: %v", op, err)
		}
	}()
	return fn()
}
