package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/stopwatch"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ensigniasec/signature-rain/internal/config"
	"github.com/ensigniasec/signature-rain/internal/rain"
	"github.com/ensigniasec/signature-rain/internal/theme"
)

// Model is the root Bubble Tea model. The rain manager owns the population; the model
// owns the terminal: frame pacing, focus tracking and key handling.
type Model struct {
	rain    *rain.Manager
	canvas  *canvas
	palette palette
	theme   theme.Theme

	frameRate int
	lastFrame time.Time
	now       func() time.Time

	width  int
	height int

	// visibility inputs; the rain is hidden when either is set
	paused  bool
	blurred bool
	reduced bool

	showStatus  bool
	bannerUntil time.Time
	quitting    bool

	keys   keyMap
	help   help.Model
	gauge  progress.Model
	uptime stopwatch.Model
}

// NewModel constructs a Model drawing mgr's units onto cv.
func NewModel(mgr *rain.Manager, cv *canvas, cfg config.Config, th theme.Theme) Model {
	gauge := progress.New(
		progress.WithSolidFill(th.Body[0]),
		progress.WithoutPercentage(),
		progress.WithWidth(gaugeWidth),
	)
	return Model{
		rain:       mgr,
		canvas:     cv,
		palette:    newPalette(th),
		theme:      th,
		frameRate:  cfg.FrameRate,
		lastFrame:  time.Now(),
		now:        time.Now,
		reduced:    cfg.ReducedMotion,
		showStatus: true,
		keys:       newKeyMap(),
		help:       help.New(),
		gauge:      gauge,
		uptime:     stopwatch.NewWithInterval(uptimeInterval),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.rain.Start(),
		m.uptime.Init(),
		m.frame(),
	)
}

// frameInterval is the redraw period; reduced motion lowers the rate.
func (m Model) frameInterval() time.Duration {
	rate := max(m.frameRate, 1)
	if m.reduced {
		rate = min(rate, reducedFrameRate)
	}
	return time.Second / time.Duration(rate)
}

// frame schedules the next animation frame.
func (m Model) frame() tea.Cmd {
	return tea.Tick(m.frameInterval(), func(t time.Time) tea.Msg {
		return frameMsg{At: t}
	})
}

// hidden reports whether the rain should be paused.
func (m Model) hidden() bool {
	return m.paused || m.blurred
}
