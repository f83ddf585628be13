package generator

import (
	"math/rand/v2"
	"sync"
)

// Generator produces the next number of a distribution.
type Generator interface {
	Next() int64
}

// LastValuer is implemented by generators that can report the last value they produced.
type LastValuer interface {
	Last() int64
}

// Rand is the source of randomness the generators draw from.
type Rand interface {
	Float64() float64
	Int64N(n int64) int64
}

type globalRand struct{}

func (globalRand) Float64() float64     { return rand.Float64() }
func (globalRand) Int64N(n int64) int64 { return rand.Int64N(n) }

// DefaultRand returns a Rand backed by the top-level functions of math/rand/v2.
func DefaultRand() Rand {
	return globalRand{}
}

type lockedRand struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRand returns a seeded Rand that is safe for concurrent use.
func NewRand(seed uint64) Rand {
	return &lockedRand{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (r *lockedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.rnd.Float64()
}

func (r *lockedRand) Int64N(n int64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.rnd.Int64N(n)
}

func orDefault(r Rand) Rand {
	if r == nil {
		return DefaultRand()
	}

	return r
}
