package tire

import (
	"math/rand/v2"
	"sync"
)

const (
	minPressure = 30.0
	maxPressure = 60.0
	minWidth    = 5.0
	maxWidth    = 10.0
	minHeight   = 10.0
	maxHeight   = 20.0
)

// CreateRandomTire returns a tire drawn from the global random source.
// It is safe for concurrent use.
func CreateRandomTire() Tire {
	return sampleTire(rand.Float64)
}

// Generator produces tires from a seeded source, so sequences are
// reproducible. A Generator is safe for concurrent use.
type Generator struct {
	rng *rand.Rand
	mu  sync.Mutex
}

// NewGenerator creates a generator seeded with seed.
func NewGenerator(seed uint64) *Generator {
	return &Generator{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Tire returns the next tire from the generator's sequence.
func (g *Generator) Tire() Tire {
	g.mu.Lock()
	defer g.mu.Unlock()
	return sampleTire(g.rng.Float64)
}

// sampleTire draws material, pressure, width and height in that order.
// next must return values in [0, 1).
func sampleTire(next func() float64) Tire {
	material := Plastic
	if next() >= 0.5 {
		material = Rubber
	}
	return Tire{
		Material: material,
		Pressure: between(next(), minPressure, maxPressure),
		Size: Size{
			Width:  between(next(), minWidth, maxWidth),
			Height: between(next(), minHeight, maxHeight),
		},
	}
}

func between(f, lo, hi float64) float64 {
	return lo + f*(hi-lo)
}
