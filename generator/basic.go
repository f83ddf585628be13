package generator

import (
	"fmt"
	"sync/atomic"
)

// Constant always returns the same value.
type Constant struct {
	value int64
}

// NewConstant creates a Constant generator.
func NewConstant(value int64) *Constant {
	return &Constant{value: value}
}

// Next returns the constant value.
func (c *Constant) Next() int64 {
	return c.value
}

// Last returns the constant value.
func (c *Constant) Last() int64 {
	return c.value
}

// Uniform returns values uniformly distributed over [lower, upper].
type Uniform struct {
	lower    int64
	interval int64
	rnd      Rand
	last     atomic.Int64
}

// NewUniform creates a Uniform generator over the inclusive range [lower, upper].
func NewUniform(lower, upper int64, rnd Rand) (*Uniform, error) {
	if upper < lower {
		return nil, fmt.Errorf("uniform: upper bound %d is below lower bound %d", upper, lower)
	}

	return &Uniform{lower: lower, interval: upper - lower + 1, rnd: orDefault(rnd)}, nil
}

// Next returns the next uniformly distributed value.
func (u *Uniform) Next() int64 {
	v := u.lower + u.rnd.Int64N(u.interval)
	u.last.Store(v)

	return v
}

// Last returns the most recently generated value.
func (u *Uniform) Last() int64 {
	return u.last.Load()
}

// Counter returns a monotonically increasing sequence, starting at start.
type Counter struct {
	counter atomic.Int64
}

// NewCounter creates a Counter whose first Next returns start.
func NewCounter(start int64) *Counter {
	c := &Counter{}
	c.counter.Store(start)

	return c
}

// Next returns the current value and advances the counter.
func (c *Counter) Next() int64 {
	return c.counter.Add(1) - 1
}

// Last returns the highest value handed out so far, i.e. start-1 before the first Next.
func (c *Counter) Last() int64 {
	return c.counter.Load() - 1
}
