package workload

import (
	"errors"
	"fmt"

	"github.com/AntonStoeckl/closed-economy-workload/generator"
)

// KeySelector chooses an account index.
type KeySelector interface {
	Next() int64
}

// BoundedKeySelector draws indices from a distribution and rejects any index above the highest
// inserted one, so a distribution over an enlarged keyspace stays within the populated accounts.
type BoundedKeySelector struct {
	chooser  generator.Generator
	inserted generator.LastValuer

	// offset draws count back from the latest inserted index.
	offset bool
}

// NewBoundedKeySelector wraps a chooser whose values are indices.
func NewBoundedKeySelector(chooser generator.Generator, inserted generator.LastValuer) *BoundedKeySelector {
	return &BoundedKeySelector{chooser: chooser, inserted: inserted}
}

// NewOffsetKeySelector wraps a chooser whose values are distances back from the latest inserted index.
func NewOffsetKeySelector(chooser generator.Generator, inserted generator.LastValuer) *BoundedKeySelector {
	return &BoundedKeySelector{chooser: chooser, inserted: inserted, offset: true}
}

// Next returns an index in [0, inserted.Last()], retrying until the draw is in range.
func (s *BoundedKeySelector) Next() int64 {
	for {
		var index int64

		if s.offset {
			index = s.inserted.Last() - s.chooser.Next()
			if index >= 0 {
				return index
			}
			continue
		}

		index = s.chooser.Next()
		if index <= s.inserted.Last() {
			return index
		}
	}
}

// newKeySelector builds the selector for the configured request distribution.
func newKeySelector(cfg Config, inserted *generator.Counter, rnd generator.Rand) (KeySelector, error) {
	upper := cfg.RecordCount - 1

	switch cfg.RequestDistribution {
	case DistributionUniform:
		chooser, err := generator.NewUniform(0, upper, rnd)
		if err != nil {
			return nil, err
		}
		return NewBoundedKeySelector(chooser, inserted), nil

	case DistributionZipfian:
		expectedNewKeys := int64(float64(cfg.OperationCount) * cfg.Proportions.Insert * 2.0)
		chooser, err := generator.NewScrambledZipfian(0, upper+expectedNewKeys, rnd)
		if err != nil {
			return nil, err
		}
		return NewBoundedKeySelector(chooser, inserted), nil

	case DistributionLatest:
		return NewBoundedKeySelector(generator.NewSkewedLatest(inserted, rnd), inserted), nil

	case DistributionHotspot:
		chooser, err := generator.NewHotspot(0, upper, cfg.HotspotDataFraction, cfg.HotspotOpnFraction, rnd)
		if err != nil {
			return nil, errors.Join(ErrInvalidProperty, err)
		}
		return NewBoundedKeySelector(chooser, inserted), nil

	case DistributionExponential:
		chooser, err := generator.NewExponential(cfg.ExponentialPercentile, float64(cfg.RecordCount)*cfg.ExponentialFrac, rnd)
		if err != nil {
			return nil, errors.Join(ErrInvalidProperty, err)
		}
		return NewOffsetKeySelector(chooser, inserted), nil

	default:
		return nil, errors.Join(ErrUnknownDistribution, fmt.Errorf("%s=%q", PropRequestDistribution, cfg.RequestDistribution))
	}
}

// newLengthGenerator builds a field or scan length generator over [1, upper].
func newLengthGenerator(kind Distribution, upper int64, histogramFile string, rnd generator.Rand) (generator.Generator, error) {
	switch kind {
	case DistributionConstant:
		return generator.NewConstant(upper), nil
	case DistributionUniform:
		return generator.NewUniform(1, upper, rnd)
	case DistributionZipfian:
		return generator.NewZipfian(1, upper, rnd)
	case DistributionHistogram:
		return generator.LoadHistogramFile(histogramFile, rnd)
	default:
		return nil, errors.Join(ErrUnknownDistribution, fmt.Errorf("%q is not a length distribution", kind))
	}
}
