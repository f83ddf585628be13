package runner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_SplitOperations(t *testing.T) {
	tests := []struct {
		name     string
		total    int64
		threads  int
		expected []int64
	}{
		{name: "even", total: 9, threads: 3, expected: []int64{3, 3, 3}},
		{name: "remainder goes to the first workers", total: 11, threads: 4, expected: []int64{3, 3, 3, 2}},
		{name: "more threads than operations", total: 2, threads: 4, expected: []int64{1, 1, 0, 0}},
		{name: "single thread", total: 7, threads: 1, expected: []int64{7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, splitOperations(tt.total, tt.threads))
		})
	}
}
