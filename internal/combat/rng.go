package combat

import (
	"math/rand"
	"time"
)

// Roller is the source of every random decision in combat.
type Roller interface {
	// Float64 returns a number in [0.0, 1.0).
	Float64() float64
	// Intn returns a number in [0, n).
	Intn(n int) int
}

// PRNG wraps math/rand so a whole encounter can be replayed from one seed.
type PRNG struct {
	rng *rand.Rand
}

// NewPRNG creates a seeded roller. A zero seed uses the current time.
func NewPRNG(seed int64) *PRNG {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &PRNG{rng: rand.New(rand.NewSource(seed))}
}

func (p *PRNG) Float64() float64 { return p.rng.Float64() }

func (p *PRNG) Intn(n int) int { return p.rng.Intn(n) }
