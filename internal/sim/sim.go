// Package sim runs the rain headless for a fixed duration and reports how the
// population behaved. It drives the same manager the TUI uses, on a Bubble Tea
// program with no renderer and no input.
package sim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/bubbles/timer"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ensigniasec/signature-rain/internal/config"
	"github.com/ensigniasec/signature-rain/internal/rain"
)

const tickInterval = 100 * time.Millisecond

// ErrBadDuration is returned when the run length is not positive.
var ErrBadDuration = errors.New("simulation duration must be positive")

// Options configures a simulation run.
type Options struct {
	Config   config.Config
	Charset  string
	Duration time.Duration
	Seed     int64
	// HideAfter pauses every unit once this much time has passed; zero never hides.
	HideAfter time.Duration
	// Nudge requests one extra, rate-limited spawn at this interval; zero disables it.
	Nudge time.Duration
}

// tally is a Surface that only counts what happens to it.
type tally struct {
	mounts   int
	unmounts int
	pauses   int
	peak     int
	live     map[uuid.UUID]bool
}

func newTally() *tally { return &tally{live: make(map[uuid.UUID]bool)} }

func (t *tally) Mount(u rain.Unit) error {
	t.mounts++
	t.live[u.ID] = u.Paused
	t.peak = max(t.peak, len(t.live))
	return nil
}

func (t *tally) Unmount(id uuid.UUID) error {
	t.unmounts++
	delete(t.live, id)
	return nil
}

func (t *tally) SetPaused(id uuid.UUID, paused bool) error {
	if _, ok := t.live[id]; ok {
		t.pauses++
		t.live[id] = paused
	}
	return nil
}

type (
	hideMsg  struct{}
	nudgeMsg struct{}
)

type model struct {
	rain      *rain.Manager
	timer     timer.Model
	hideAfter time.Duration
	nudge     time.Duration
	final     rain.Stats
	done      bool
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.rain.Start(), m.timer.Init()}
	if m.hideAfter > 0 {
		cmds = append(cmds, tea.Tick(m.hideAfter, func(time.Time) tea.Msg { return hideMsg{} }))
	}
	return tea.Batch(append(cmds, m.nudgeTick())...)
}

func (m model) nudgeTick() tea.Cmd {
	if m.nudge <= 0 {
		return nil
	}
	return tea.Tick(m.nudge, func(time.Time) tea.Msg { return nudgeMsg{} })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) { // nolint:ireturn
	switch x := msg.(type) {
	case timer.TimeoutMsg:
		if x.ID != m.timer.ID() || m.done {
			return m, nil
		}
		m.done = true
		m.final = m.rain.Stats()
		m.rain.Stop()
		return m, tea.Quit

	case timer.TickMsg, timer.StartStopMsg:
		var cmd tea.Cmd
		m.timer, cmd = m.timer.Update(msg)
		return m, cmd

	case hideMsg:
		m.rain.Update(rain.VisibilityMsg{Hidden: true})
		return m, nil

	case nudgeMsg:
		if m.done {
			return m, nil
		}
		return m, tea.Batch(m.rain.Update(rain.SpawnMsg{}), m.nudgeTick())
	}

	return m, m.rain.Update(msg)
}

func (m model) View() string { return "" }

// Run simulates the rain for opts.Duration of wall time and returns the report.
func Run(ctx context.Context, opts Options) (Report, error) {
	if opts.Duration <= 0 {
		return Report{}, ErrBadDuration
	}
	ropts := []rain.Option{rain.WithCharset(opts.Charset)}
	if opts.Seed != 0 {
		ropts = append(ropts, rain.WithRand(rand.New(rand.NewSource(opts.Seed)))) //nolint:gosec // decorative randomness
	}
	surface := newTally()
	mgr, err := rain.New(opts.Config, surface, ropts...)
	if err != nil {
		return Report{}, err
	}

	start := time.Now()
	m := model{
		rain:      mgr,
		timer:     timer.NewWithInterval(opts.Duration, tickInterval),
		hideAfter: opts.HideAfter,
		nudge:     opts.Nudge,
	}
	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
		tea.WithoutRenderer(),
		tea.WithoutSignalHandler(),
	)
	out, err := p.Run()
	if err != nil {
		mgr.Stop()
		return Report{}, fmt.Errorf("simulation aborted: %w", err)
	}
	fm, ok := out.(model)
	if !ok {
		return Report{}, fmt.Errorf("simulation aborted: unexpected model %T", out)
	}
	r := Report{
		Duration: time.Since(start),
		Cadence:  fm.final.Cadence.String(),
		PeakLive: surface.peak,
		Mounts:   surface.mounts,
		Unmounts: surface.unmounts,
		Pauses:   surface.pauses,
		Final:    fm.final,
	}
	logrus.WithFields(logrus.Fields{
		"spawned": r.Final.Spawned,
		"peak":    r.PeakLive,
	}).Debug("simulation finished")
	return r, nil
}
