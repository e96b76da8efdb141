package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/ensigniasec/signature-rain/internal/rain"
	"github.com/ensigniasec/signature-rain/internal/theme"
)

// column is a mounted unit plus how far its animation has run.
type column struct {
	unit    rain.Unit
	elapsed time.Duration
	paused  bool
}

// canvas is the terminal container rain units are mounted on. It implements rain.Surface.
type canvas struct {
	columns map[uuid.UUID]*column
}

func newCanvas() *canvas {
	return &canvas{columns: make(map[uuid.UUID]*column)}
}

func (c *canvas) Mount(u rain.Unit) error {
	c.columns[u.ID] = &column{unit: u, paused: u.Paused}
	return nil
}

func (c *canvas) Unmount(id uuid.UUID) error {
	delete(c.columns, id)
	return nil
}

func (c *canvas) SetPaused(id uuid.UUID, paused bool) error {
	if col, ok := c.columns[id]; ok {
		col.paused = paused
	}
	return nil
}

// advance runs every unpaused column's animation forward by dt.
func (c *canvas) advance(dt time.Duration) {
	for _, col := range c.columns {
		if !col.paused {
			col.elapsed += dt
		}
	}
}

// palette holds pre-built styles: index 0 is the head glyph, the rest fade along the tail.
type palette []lipgloss.Style

func newPalette(t theme.Theme) palette {
	p := make(palette, 0, len(t.Body)+1)
	p = append(p, lipgloss.NewStyle().Foreground(lipgloss.Color(t.Head)).Bold(true))
	for _, c := range t.Body {
		p = append(p, lipgloss.NewStyle().Foreground(lipgloss.Color(c)))
	}
	return p
}

type cell struct {
	glyph rune
	shade int
	seq   uint64
}

// render draws the canvas into a width x height block. Where columns overlap, the newer one wins.
func (c *canvas) render(width, height int, pal palette) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	grid := make([][]cell, height)
	for y := range grid {
		grid[y] = make([]cell, width)
	}
	for _, col := range c.columns {
		col.draw(grid, width, height, len(pal)-1)
	}

	var b strings.Builder
	for y, row := range grid {
		if y > 0 {
			b.WriteByte('\n')
		}
		writeRow(&b, row, pal)
	}
	return b.String()
}

// draw places the column's glyphs on the grid. The column falls from fully above the
// top edge to fully below the bottom edge over its duration, after its delay.
func (col *column) draw(grid [][]cell, width, height, tailShades int) {
	u := col.unit
	t := col.elapsed - u.Delay
	if t < 0 || u.Duration <= 0 || len(u.Content) == 0 {
		return
	}
	progress := min(float64(t)/float64(u.Duration), 1)
	n := len(u.Content)
	head := int(progress*float64(height+n)) - 1
	x := min(int(u.Position/100*float64(width)), width-1) //nolint:mnd // percent

	for k, glyph := range u.Content {
		y := head - (n - 1) + k
		if y < 0 || y >= height {
			continue
		}
		if existing := grid[y][x]; existing.glyph != 0 && existing.seq > u.Seq {
			continue
		}
		grid[y][x] = cell{glyph: glyph, shade: shadeFor(n-1-k, n, tailShades), seq: u.Seq}
	}
}

// shadeFor maps distance from the head to a palette index.
func shadeFor(dist, length, tailShades int) int {
	if dist == 0 || tailShades <= 0 {
		return 0
	}
	idx := 1 + (dist-1)*tailShades/max(length-1, 1)
	return min(idx, tailShades)
}

// writeRow renders runs of equally-shaded cells with one style call each.
func writeRow(b *strings.Builder, row []cell, pal palette) {
	var run strings.Builder
	shade := -1
	flush := func() {
		if run.Len() == 0 {
			return
		}
		if shade < 0 {
			b.WriteString(run.String())
		} else {
			b.WriteString(pal[shade].Render(run.String()))
		}
		run.Reset()
	}
	for _, c := range row {
		s := -1
		if c.glyph != 0 {
			s = c.shade
		}
		if s != shade {
			flush()
			shade = s
		}
		if c.glyph == 0 {
			run.WriteByte(' ')
		} else {
			run.WriteRune(c.glyph)
		}
	}
	flush()
}
