package tui

import "time"

// Message types for Bubble Tea update loop.

// frameMsg advances column animations and triggers a redraw.
type frameMsg struct{ At time.Time }
