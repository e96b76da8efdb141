package tui

import "time"

// Package-level constants to avoid magic numbers and improve readability.
const (
	// reducedFrameRate caps redraws while reduced motion is on.
	reducedFrameRate = 8
	// maxFrameStep bounds how far one frame may advance animations after a stall.
	maxFrameStep = 250 * time.Millisecond

	bannerDuration = 3 * time.Second
	uptimeInterval = time.Second

	gaugeWidth = 20
	// statusLines is the height of the status bar: summary line + help line.
	statusLines = 2

	signatureTitle = "✦ MARIO DIGITAL SIGNATURE ✦"
)
