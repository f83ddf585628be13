package measurement

import (
	"math"
	"sort"
	"time"
)

// defaultBuckets is the number of one millisecond histogram buckets; slower operations land in the overflow bucket.
const defaultBuckets = 1000

// OperationStats is a point in time copy of the statistics of one measurement name.
type OperationStats struct {
	Name     string
	Count    int64
	Total    time.Duration
	Min      time.Duration
	Max      time.Duration
	P95      time.Duration
	P99      time.Duration
	Statuses map[string]int64
}

// Average returns the mean latency, zero without operations.
func (s OperationStats) Average() time.Duration {
	if s.Count == 0 {
		return 0
	}

	return s.Total / time.Duration(s.Count)
}

// StatusNames returns the recorded status names in sorted order.
func (s OperationStats) StatusNames() []string {
	names := make([]string, 0, len(s.Statuses))
	for name := range s.Statuses {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

type opStats struct {
	count    int64
	total    time.Duration
	min      time.Duration
	max      time.Duration
	buckets  []int64
	overflow int64
	statuses map[string]int64

	// interval values are reset by every status summary
	intervalCount int64
	intervalTotal time.Duration
	intervalMin   time.Duration
	intervalMax   time.Duration
}

func newOpStats(buckets int) *opStats {
	return &opStats{
		min:         time.Duration(math.MaxInt64),
		intervalMin: time.Duration(math.MaxInt64),
		buckets:     make([]int64, buckets),
		statuses:    make(map[string]int64),
	}
}

func (s *opStats) measure(latency time.Duration) {
	s.count++
	s.total += latency
	s.min = min(s.min, latency)
	s.max = max(s.max, latency)

	s.intervalCount++
	s.intervalTotal += latency
	s.intervalMin = min(s.intervalMin, latency)
	s.intervalMax = max(s.intervalMax, latency)

	bucket := int(latency / time.Millisecond)
	if bucket >= len(s.buckets) {
		s.overflow++
		return
	}
	s.buckets[bucket]++
}

// percentile returns the upper bound of the bucket holding the given percentile.
// Operations in the overflow bucket report the maximum latency.
func (s *opStats) percentile(p float64) time.Duration {
	if s.count == 0 {
		return 0
	}

	threshold := int64(math.Ceil(float64(s.count) * p / 100))
	seen := int64(0)

	for i, n := range s.buckets {
		seen += n
		if seen >= threshold {
			return time.Duration(i+1) * time.Millisecond
		}
	}

	return s.max
}

func (s *opStats) snapshot(name string) OperationStats {
	stats := OperationStats{
		Name:     name,
		Count:    s.count,
		Total:    s.total,
		Max:      s.max,
		P95:      s.percentile(95),
		P99:      s.percentile(99),
		Statuses: make(map[string]int64, len(s.statuses)),
	}

	if s.count > 0 {
		stats.Min = s.min
	}

	for status, n := range s.statuses {
		stats.Statuses[status] = n
	}

	return stats
}

func (s *opStats) resetInterval() {
	s.intervalCount = 0
	s.intervalTotal = 0
	s.intervalMin = time.Duration(math.MaxInt64)
	s.intervalMax = 0
}
