package respond

import (
	"math/rand"
	"sync"
	"time"
)

type randPicker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewPicker returns the production Picker backed by a seeded PRNG. It is
// safe for concurrent use.
func NewPicker() Picker {
	return &randPicker{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (p *randPicker) Pick(n int) int {
	if n <= 1 {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.Intn(n)
}

func (p *randPicker) Chance(probability float64) bool {
	if probability <= 0 {
		return false
	}
	if probability >= 1 {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.Float64() < probability
}
