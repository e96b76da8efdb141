package rain

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/ensigniasec/signature-rain/internal/config"
)

// Factory builds units with uniformly random parameters drawn from the configured ranges.
type Factory struct {
	minLength, maxLength     int
	minDuration, maxDuration time.Duration
	maxDelay                 time.Duration
	charset                  []rune
	rng                      *rand.Rand
	seq                      uint64
}

// NewFactory returns a Factory over cfg's ranges. An empty charset falls back to DefaultCharset.
func NewFactory(cfg config.Config, charset string, rng *rand.Rand) *Factory {
	if charset == "" {
		charset = DefaultCharset
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // decorative randomness
	}
	return &Factory{
		minLength:   cfg.MinLength,
		maxLength:   cfg.MaxLength,
		minDuration: cfg.MinDuration.Std(),
		maxDuration: cfg.MaxDuration.Std(),
		maxDelay:    cfg.MaxDelay.Std(),
		charset:     []rune(charset),
		rng:         rng,
	}
}

// NewUnit builds one unit created at now. Immediate units (the initial burst) start without delay.
func (f *Factory) NewUnit(immediate bool, now time.Time) Unit {
	f.seq++
	u := Unit{
		ID:        uuid.New(),
		Seq:       f.seq,
		Position:  f.rng.Float64() * 100, //nolint:mnd // percent
		Duration:  f.between(f.minDuration, f.maxDuration),
		CreatedAt: now,
	}
	if !immediate {
		u.Delay = f.between(0, f.maxDelay)
	}

	length := max(f.minLength, 1)
	if span := f.maxLength - f.minLength; span > 0 {
		length += f.rng.Intn(span)
	}
	u.Content = make([]rune, length)
	for i := range u.Content {
		u.Content[i] = f.charset[f.rng.Intn(len(f.charset))]
	}
	return u
}

// between draws uniformly from [lo, hi).
func (f *Factory) between(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(f.rng.Float64()*float64(hi-lo))
}
