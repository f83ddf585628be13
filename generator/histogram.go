package generator

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

var ErrEmptyHistogram = errors.New("histogram has no weight")

// Histogram returns bucket values weighted by the bucket counts.
// Bucket i yields (i+1)*blockSize.
type Histogram struct {
	buckets   []int64
	blockSize int64
	area      int64
	rnd       Rand
}

// NewHistogram creates a Histogram generator from bucket counts.
func NewHistogram(buckets []int64, blockSize int64, rnd Rand) (*Histogram, error) {
	area := int64(0)
	for _, count := range buckets {
		area += count
	}

	if area <= 0 {
		return nil, ErrEmptyHistogram
	}

	return &Histogram{buckets: buckets, blockSize: blockSize, area: area, rnd: orDefault(rnd)}, nil
}

// LoadHistogramFile reads a histogram file, see ReadHistogram.
func LoadHistogramFile(path string, rnd Rand) (*Histogram, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return ReadHistogram(f, rnd)
}

// ReadHistogram parses the tab separated histogram format:
//
//	BlockSize	<n>
//	<bucket>	<count>
//	...
func ReadHistogram(r io.Reader, rnd Rand) (*Histogram, error) {
	scanner := bufio.NewScanner(r)

	var blockSize int64 = 1
	buckets := make([]int64, 0)

	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		parts := strings.Split(text, "\t")
		if len(parts) != 2 {
			return nil, fmt.Errorf("histogram line %d: expected 2 tab separated columns", line)
		}

		value, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("histogram line %d: %w", line, err)
		}

		if line == 1 && strings.EqualFold(parts[0], "BlockSize") {
			blockSize = value
			continue
		}

		bucket, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, fmt.Errorf("histogram line %d: %w", line, err)
		}

		for len(buckets) <= bucket {
			buckets = append(buckets, 0)
		}
		buckets[bucket] = value
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return NewHistogram(buckets, blockSize, rnd)
}

// Next returns the next bucket value.
func (h *Histogram) Next() int64 {
	number := h.rnd.Int64N(h.area)

	for i, count := range h.buckets {
		number -= count
		if number < 0 {
			return int64(i+1) * h.blockSize
		}
	}

	return int64(len(h.buckets)) * h.blockSize
}
