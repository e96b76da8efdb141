package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ensigniasec/signature-rain/internal/rain"
)

const reportWidth = 60

// Report summarises a simulation run.
type Report struct {
	Duration time.Duration `json:"-"`
	Cadence  string        `json:"cadence"`
	PeakLive int           `json:"peak_live"`
	Mounts   int           `json:"mounts"`
	Unmounts int           `json:"unmounts"`
	Pauses   int           `json:"pauses"`
	Final    rain.Stats    `json:"final"`
}

// MarshalJSON adds the human-readable duration alongside the counters.
func (r Report) MarshalJSON() ([]byte, error) {
	type plain Report
	return json.Marshal(struct {
		Duration string `json:"duration"`
		plain
	}{Duration: HumanDuration(r.Duration), plain: plain(r)})
}

// PrintReport writes the report to w, as indented JSON or as a text summary.
func PrintReport(w io.Writer, r Report, jsonOutput bool) error {
	if jsonOutput {
		out, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	}

	var b strings.Builder
	fmt.Fprintln(&b, strings.Repeat("=", reportWidth))
	fmt.Fprintln(&b, "SIGNATURE RAIN SIMULATION")
	fmt.Fprintln(&b, strings.Repeat("=", reportWidth))
	fmt.Fprintf(&b, "Ran for %s at %s cadence\n", HumanDuration(r.Duration), r.Cadence)
	fmt.Fprintf(&b, "Live at end:   %d/%d (peak %d)\n", r.Final.Live, r.Final.Capacity, r.PeakLive)
	fmt.Fprintf(&b, "Spawned:       %d\n", r.Final.Spawned)
	fmt.Fprintf(&b, "Expired:       %d\n", r.Final.Expired)
	fmt.Fprintf(&b, "Trimmed:       %d\n", r.Final.Trimmed)
	fmt.Fprintf(&b, "Rate limited:  %d\n", r.Final.RateLimited)
	fmt.Fprintf(&b, "At capacity:   %d\n", r.Final.AtCapacity)
	fmt.Fprintf(&b, "Failures:      %d\n", r.Final.Failures)
	fmt.Fprintf(&b, "Surface:       %d mounts, %d unmounts, %d pause changes\n", r.Mounts, r.Unmounts, r.Pauses)
	fmt.Fprintln(&b, strings.Repeat("=", reportWidth))
	_, err := io.WriteString(w, b.String())
	return err
}

// HumanDuration returns a compact, human-readable duration string.
// Examples: 850ms, 1.23s, 2m05s, 1h02m.
func HumanDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d/time.Millisecond)
	}
	if d < time.Minute {
		return fmt.Sprintf("%.2fs", float64(d)/float64(time.Second))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%02ds", d/time.Minute, (d%time.Minute)/time.Second)
	}
	return fmt.Sprintf("%dh%02dm", d/time.Hour, (d%time.Hour)/time.Minute)
}
