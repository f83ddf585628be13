package generator

import (
	"fmt"
	"math"
)

// Hotspot returns values where a hot fraction of the range receives a hot fraction of the draws.
type Hotspot struct {
	lower        int64
	hotInterval  int64
	coldInterval int64
	hotOpnFrac   float64
	rnd          Rand
}

// NewHotspot creates a Hotspot generator over [lower, upper].
// Fractions outside [0, 1] are rejected.
func NewHotspot(lower, upper int64, hotsetFraction, hotOpnFraction float64, rnd Rand) (*Hotspot, error) {
	if upper < lower {
		return nil, fmt.Errorf("hotspot: upper bound %d is below lower bound %d", upper, lower)
	}

	if hotsetFraction < 0 || hotsetFraction > 1 {
		return nil, fmt.Errorf("hotspot: data fraction %v is not within [0, 1]", hotsetFraction)
	}

	if hotOpnFraction < 0 || hotOpnFraction > 1 {
		return nil, fmt.Errorf("hotspot: operation fraction %v is not within [0, 1]", hotOpnFraction)
	}

	interval := upper - lower + 1
	hotInterval := int64(float64(interval) * hotsetFraction)

	return &Hotspot{
		lower:        lower,
		hotInterval:  hotInterval,
		coldInterval: interval - hotInterval,
		hotOpnFrac:   hotOpnFraction,
		rnd:          orDefault(rnd),
	}, nil
}

// Next returns a value from the hot set with probability hotOpnFraction, else from the cold set.
func (h *Hotspot) Next() int64 {
	hot := h.rnd.Float64() < h.hotOpnFrac

	switch {
	case (hot && h.hotInterval > 0) || h.coldInterval == 0:
		return h.lower + h.rnd.Int64N(h.hotInterval)
	default:
		return h.lower + h.hotInterval + h.rnd.Int64N(h.coldInterval)
	}
}

// Exponential returns values with an exponential distribution, such that percentile percent of
// the draws fall below valueRange.
type Exponential struct {
	gamma float64
	rnd   Rand
}

// NewExponential creates an Exponential generator.
func NewExponential(percentile, valueRange float64, rnd Rand) (*Exponential, error) {
	if percentile <= 0 || percentile >= 100 {
		return nil, fmt.Errorf("exponential: percentile %v is not within (0, 100)", percentile)
	}

	if valueRange <= 0 {
		return nil, fmt.Errorf("exponential: range %v must be positive", valueRange)
	}

	return &Exponential{
		gamma: -math.Log(1.0-percentile/100.0) / valueRange,
		rnd:   orDefault(rnd),
	}, nil
}

// Next returns the next exponentially distributed value.
func (e *Exponential) Next() int64 {
	return int64(-math.Log(1.0-e.rnd.Float64()) / e.gamma)
}
