package game

import (
	rand "math/rand/v2"
	"sync"

	"github.com/lox/guesspot/internal/randutil"
)

// DrawContext describes the guess a number is being drawn for. Hosts may fold
// any of it into their entropy source; the seeded implementation ignores it.
type DrawContext struct {
	RoundNumber uint64
	Identity    string
	Attempt     int
}

// RandomDraw supplies the winning number for a single guess. Every guess gets
// a fresh draw; implementations must return a value in [MinNumber, MaxNumber].
//
// This is not a secure randomness source and makes no fairness guarantees
// beyond the distribution of the underlying generator.
type RandomDraw interface {
	Draw(ctx DrawContext) int
}

// SeededDraw draws uniformly from [min, max] using a deterministically seeded
// generator. Safe for concurrent use.
type SeededDraw struct {
	mu  sync.Mutex
	rng *rand.Rand
	min int
	max int
}

// NewSeededDraw creates a SeededDraw over the inclusive range [min, max].
func NewSeededDraw(seed int64, min, max int) *SeededDraw {
	return &SeededDraw{
		rng: randutil.New(seed),
		min: min,
		max: max,
	}
}

// Draw returns the next number in [min, max]
func (d *SeededDraw) Draw(DrawContext) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return randutil.InRange(d.rng, d.min, d.max)
}

// DrawFunc adapts a plain function to the RandomDraw interface
type DrawFunc func(ctx DrawContext) int

// Draw implements RandomDraw
func (f DrawFunc) Draw(ctx DrawContext) int {
	return f(ctx)
}
