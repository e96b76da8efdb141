//nolint:testpackage // White-box tests require access to unexported identifiers in this package.
package tui

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ensigniasec/signature-rain/internal/config"
	"github.com/ensigniasec/signature-rain/internal/rain"
	"github.com/ensigniasec/signature-rain/internal/theme"
)

func newTestModel(t *testing.T, mutate func(*config.Config)) Model {
	t.Helper()
	cfg := config.Default()
	cfg.InitialColumns = 5
	if mutate != nil {
		mutate(&cfg)
	}
	cv := newCanvas()
	mgr, err := rain.New(cfg, cv, rain.WithRand(rand.New(rand.NewSource(5))))
	require.NoError(t, err)
	m := NewModel(mgr, cv, cfg, theme.Default())
	m.Init()
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 12})
	return next.(Model) //nolint:forcetypeassert // Update always returns Model
}

func press(t *testing.T, m Model, k tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(k)
	return next.(Model), cmd //nolint:forcetypeassert // Update always returns Model
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestModel_InitStartsRain(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, nil)
	assert.Equal(t, 5, m.rain.Len())
	assert.Len(t, m.canvas.columns, 5)
}

func TestModel_FocusDrivesVisibility(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, nil)

	next, _ := m.Update(tea.BlurMsg{})
	m = next.(Model) //nolint:forcetypeassert // Update always returns Model
	assert.True(t, m.rain.Stats().Hidden)
	for _, col := range m.canvas.columns {
		assert.True(t, col.paused)
	}

	next, _ = m.Update(tea.FocusMsg{})
	m = next.(Model) //nolint:forcetypeassert // Update always returns Model
	assert.False(t, m.rain.Stats().Hidden)
	for _, col := range m.canvas.columns {
		assert.False(t, col.paused)
	}
	assert.Equal(t, 5, m.rain.Len(), "visibility never adds or removes columns")
}

func TestModel_PauseKeyCombinesWithFocus(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, nil)
	m, _ = press(t, m, runes("p"))
	assert.True(t, m.rain.Stats().Hidden)

	// Regaining focus does not override a manual pause.
	next, _ := m.Update(tea.FocusMsg{})
	m = next.(Model) //nolint:forcetypeassert // Update always returns Model
	assert.True(t, m.rain.Stats().Hidden)

	m, _ = press(t, m, runes("p"))
	assert.False(t, m.rain.Stats().Hidden)
}

func TestModel_MotionKeySwitchesCadence(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, nil)
	normal := m.frameInterval()

	m, cmd := press(t, m, runes("m"))
	require.NotNil(t, cmd)
	assert.Equal(t, rain.CadenceReduced, m.rain.Cadence())
	assert.Greater(t, m.frameInterval(), normal)

	m, _ = press(t, m, runes("m"))
	assert.Equal(t, rain.CadenceNormal, m.rain.Cadence())
}

func TestModel_SpawnAndQuitKeys(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, nil)
	m, cmd := press(t, m, runes("n"))
	require.NotNil(t, cmd)
	assert.Equal(t, 6, m.rain.Len())

	m, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Zero(t, m.rain.Len())
	assert.Empty(t, m.canvas.columns)
	assert.Equal(t, "Shutting down...\n", m.View())
}

func TestModel_ActivateShowsBanner(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, nil)
	now := time.Now()
	m.now = func() time.Time { return now }

	assert.NotContains(t, m.View(), signatureTitle)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Contains(t, m.View(), signatureTitle)

	now = now.Add(bannerDuration + time.Second)
	assert.NotContains(t, m.View(), signatureTitle)
}

func TestModel_ViewLayout(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, nil)
	view := m.View()
	assert.Equal(t, 12, lipgloss.Height(view))
	assert.Contains(t, view, "live")
	assert.Contains(t, view, "5/80")
	assert.Contains(t, view, "NORMAL")

	m, _ = press(t, m, runes("s"))
	assert.Equal(t, 12, lipgloss.Height(m.View()))
	assert.NotContains(t, m.View(), "NORMAL")
}

func TestModel_FrameAdvancesOnlyRunningColumns(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, nil)
	var frozen uuid.UUID
	for id := range m.canvas.columns {
		frozen = id
		break
	}
	require.NoError(t, m.canvas.SetPaused(frozen, true))

	next, _ := m.Update(frameMsg{At: m.lastFrame.Add(100 * time.Millisecond)})
	m = next.(Model) //nolint:forcetypeassert // Update always returns Model
	for id, col := range m.canvas.columns {
		if id == frozen {
			assert.Zero(t, col.elapsed)
		} else {
			assert.Equal(t, 100*time.Millisecond, col.elapsed)
		}
	}

	// Long stalls are clamped.
	next, _ = m.Update(frameMsg{At: m.lastFrame.Add(time.Hour)})
	m = next.(Model) //nolint:forcetypeassert // Update always returns Model
	for id, col := range m.canvas.columns {
		if id != frozen {
			assert.Equal(t, 100*time.Millisecond+maxFrameStep, col.elapsed)
		}
	}
}

func TestCanvas_RenderPlacesColumn(t *testing.T) {
	t.Parallel()

	cv := newCanvas()
	u := rain.Unit{
		ID:       uuid.New(),
		Seq:      1,
		Position: 50,
		Content:  []rune("ABC"),
		Duration: 10 * time.Second,
	}
	require.NoError(t, cv.Mount(u))

	// Not started yet: nothing drawn.
	out := cv.render(10, 5, palette{lipgloss.NewStyle(), lipgloss.NewStyle()})
	assert.Equal(t, strings.Repeat(strings.Repeat(" ", 10)+"\n", 4)+strings.Repeat(" ", 10), out)

	// Halfway: travel is height+len = 8, head at row 3, so rows 1..3 hold A, B, C.
	cv.advance(5 * time.Second)
	lines := strings.Split(cv.render(10, 5, palette{lipgloss.NewStyle(), lipgloss.NewStyle()}), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "          ", lines[0])
	assert.Equal(t, "     A    ", lines[1])
	assert.Equal(t, "     B    ", lines[2])
	assert.Equal(t, "     C    ", lines[3])
	assert.Equal(t, "          ", lines[4])

	require.NoError(t, cv.Unmount(u.ID))
	assert.Empty(t, cv.columns)
}

func TestCanvas_DelayHoldsColumnBack(t *testing.T) {
	t.Parallel()

	cv := newCanvas()
	u := rain.Unit{ID: uuid.New(), Seq: 1, Position: 0, Content: []rune("Z"), Duration: time.Second, Delay: time.Second}
	require.NoError(t, cv.Mount(u))
	cv.advance(900 * time.Millisecond)
	assert.NotContains(t, cv.render(3, 3, palette{lipgloss.NewStyle()}), "Z")
	cv.advance(500 * time.Millisecond)
	assert.Contains(t, cv.render(3, 3, palette{lipgloss.NewStyle()}), "Z")
}

func TestShadeFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, shadeFor(0, 10, 5))
	assert.Equal(t, 1, shadeFor(1, 10, 5))
	assert.Equal(t, 5, shadeFor(9, 10, 5))
	assert.Equal(t, 0, shadeFor(3, 10, 0))
	for d := 0; d < 30; d++ {
		s := shadeFor(d, 30, 4)
		assert.GreaterOrEqual(t, s, 0)
		assert.LessOrEqual(t, s, 4)
	}
}
