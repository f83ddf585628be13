package workload

import (
	"github.com/AntonStoeckl/closed-economy-workload/generator"
)

type weightedOperation struct {
	weight    float64
	operation Operation
}

// OperationSelector is a weighted discrete choice among operation kinds. Safe for concurrent Next
// once all weights are added.
type OperationSelector struct {
	choices []weightedOperation
	total   float64
	rnd     generator.Rand
}

// NewOperationSelector creates an empty selector.
func NewOperationSelector(rnd generator.Rand) *OperationSelector {
	if rnd == nil {
		rnd = generator.DefaultRand()
	}

	return &OperationSelector{rnd: rnd}
}

// Add enables an operation with the given weight. Weights <= 0 are ignored.
func (s *OperationSelector) Add(weight float64, operation Operation) {
	if weight <= 0 {
		return
	}

	s.choices = append(s.choices, weightedOperation{weight: weight, operation: operation})
	s.total += weight
}

// Total returns the sum of all added weights.
func (s *OperationSelector) Total() float64 {
	return s.total
}

// Empty reports whether no operation is selectable.
func (s *OperationSelector) Empty() bool {
	return len(s.choices) == 0
}

// Next draws an operation. It must not be called on an empty selector.
func (s *OperationSelector) Next() Operation {
	draw := s.rnd.Float64() * s.total

	for _, choice := range s.choices {
		if draw < choice.weight {
			return choice.operation
		}
		draw -= choice.weight
	}

	// float rounding can leave a tiny rest
	return s.choices[len(s.choices)-1].operation
}
