package rain

import "github.com/google/uuid"

// Message types for the Bubble Tea update loop.

// SpawnTickMsg fires at the current cadence. Ticks carrying a stale tag belong to a
// cancelled trigger and are dropped.
type SpawnTickMsg struct {
	ID  int
	tag int
}

// CleanupTickMsg fires every cleanup interval.
type CleanupTickMsg struct {
	ID  int
	tag int
}

// UnitExpiredMsg fires once per unit when its duration plus delay has elapsed.
type UnitExpiredMsg struct {
	ID   int
	Unit uuid.UUID
}

// VisibilityMsg reports that the container became hidden or visible.
type VisibilityMsg struct{ Hidden bool }

// MotionPreferenceMsg reports a change of the reduced-motion preference.
type MotionPreferenceMsg struct{ Reduced bool }

// SpawnMsg asks for one extra spawn outside the cadence.
type SpawnMsg struct{ Immediate bool }
