package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}
	if m.width <= 0 || m.height <= 0 {
		return ""
	}

	rainHeight := m.height
	if m.showStatus {
		rainHeight -= statusLines
	}
	body := m.canvas.render(m.width, rainHeight, m.palette)
	if !m.showStatus {
		return body
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderStatus(), m.help.View(m.keys))
}

// renderStatus is the summary line: population gauge, cadence, visibility and uptime,
// or the signature banner while it is active.
func (m Model) renderStatus() string {
	if m.now().Before(m.bannerUntil) {
		return lipgloss.NewStyle().
			Width(m.width).
			Align(lipgloss.Center).
			Bold(true).
			Foreground(lipgloss.Color(m.theme.Head)).
			Render(signatureTitle)
	}

	st := m.rain.Stats()
	pct := 0.0
	if st.Capacity > 0 {
		pct = float64(st.Live) / float64(st.Capacity)
	}
	label := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	parts := []string{
		label.Render("live ") + fmt.Sprintf("%d/%d", st.Live, st.Capacity),
		m.gauge.ViewAs(pct),
		cadenceBadge(st.Cadence.String()),
	}
	if st.Hidden {
		parts = append(parts, badge("PAUSED", "208"))
	}
	parts = append(parts, label.Render("theme ")+m.theme.Name, label.Render("up ")+m.uptime.View())
	line := strings.Join(parts, "  ")
	return lipgloss.NewStyle().MaxWidth(m.width).Render(line)
}

func cadenceBadge(cadence string) string {
	if cadence == "reduced" {
		return badge("REDUCED MOTION", "69")
	}
	return badge("NORMAL", "46")
}

func badge(text, color string) string {
	return lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(lipgloss.Color(color)).Render(text)
}
