// Package rain manages the lifecycle of falling rain columns: bounded spawning, a population
// ceiling, eviction of expired columns, and pausing on visibility or motion-preference changes.
//
// A Manager is driven by a Bubble Tea event loop. Every timer fire is a typed message
// (SpawnTickMsg, CleanupTickMsg, UnitExpiredMsg) handled by Manager.Update, so all state
// changes happen on one goroutine and need no locking.
package rain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultCharset is the glyph set of the Mario signature effect.
const DefaultCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789@#$%^&*()_+-=[]{}|;:,.<>?"

// Unit is one falling column. Only Paused changes after creation.
type Unit struct {
	ID  uuid.UUID
	Seq uint64
	// Position is the horizontal offset as a percentage of the container width, in [0,100).
	Position  float64
	Content   []rune
	Duration  time.Duration
	Delay     time.Duration
	CreatedAt time.Time
	Paused    bool
}

// Lifetime is how long after creation the unit is due for removal.
func (u Unit) Lifetime() time.Duration { return u.Duration + u.Delay }

// Deadline is the scheduled removal time.
func (u Unit) Deadline() time.Time { return u.CreatedAt.Add(u.Lifetime()) }
