package measurement

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/AntonStoeckl/closed-economy-workload/economy"
	"github.com/AntonStoeckl/closed-economy-workload/workload"
)

const (
	metricLatency = "closedeconomy_measurement_latency_seconds"
	metricReturns = "closedeconomy_measurement_returns_total"
	labelName     = "measurement"
	labelStatus   = "status"
)

var ErrInvalidBucketCount = errors.New("histogram bucket count must be positive")

// Option defines a functional option for configuring a Collector.
type Option func(*Collector) error

// WithMetrics forwards every latency and every return status to the given collector.
func WithMetrics(collector economy.MetricsCollector) Option {
	return func(c *Collector) error {
		c.metricsCollector = collector
		return nil
	}
}

// WithHistogramBuckets sets the number of one millisecond latency buckets used for the percentiles.
func WithHistogramBuckets(buckets int) Option {
	return func(c *Collector) error {
		if buckets < 1 {
			return ErrInvalidBucketCount
		}
		c.buckets = buckets
		return nil
	}
}

// Collector implements workload.Measurements. It is safe for concurrent use by all workers.
type Collector struct {
	mu               sync.Mutex
	ops              map[string]*opStats
	buckets          int
	metricsCollector economy.MetricsCollector
}

// New creates an empty Collector.
func New(options ...Option) (*Collector, error) {
	c := &Collector{
		ops:     make(map[string]*opStats),
		buckets: defaultBuckets,
	}

	for _, option := range options {
		if err := option(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Measure records the latency of one operation.
func (c *Collector) Measure(name string, latency time.Duration) {
	c.mu.Lock()
	c.statsFor(name).measure(latency)
	c.mu.Unlock()

	if c.metricsCollector != nil {
		c.recordDuration(name, latency)
	}
}

// ReportStatus counts the return status of one operation.
func (c *Collector) ReportStatus(name string, status economy.Status) {
	c.mu.Lock()
	c.statsFor(name).statuses[status.String()]++
	c.mu.Unlock()

	if c.metricsCollector != nil {
		c.incrementCounter(name, status)
	}
}

// Snapshot returns the statistics of all measurement names, sorted by name.
func (c *Collector) Snapshot() []OperationStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := make([]OperationStats, 0, len(c.ops))
	for name, stats := range c.ops {
		snapshot = append(snapshot, stats.snapshot(name))
	}

	sort.Slice(snapshot, func(i, j int) bool { return snapshot[i].Name < snapshot[j].Name })

	return snapshot
}

// Operations returns the number of measured operations of all names.
func (c *Collector) Operations() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := int64(0)
	for _, stats := range c.ops {
		total += stats.count
	}

	return total
}

// Summary formats the operations since the previous Summary, e.g.
// "[TX-READ: Count=10, Max=1200, Min=20, Avg=110.50]", and starts a new interval.
// Latencies are in microseconds.
func (c *Collector) Summary() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := make([]string, 0, len(c.ops))
	for name := range c.ops {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		stats := c.ops[name]
		if stats.intervalCount == 0 {
			continue
		}

		avg := float64(stats.intervalTotal.Microseconds()) / float64(stats.intervalCount)
		parts = append(parts, fmt.Sprintf("[%s: Count=%d, Max=%d, Min=%d, Avg=%.2f]",
			name, stats.intervalCount, stats.intervalMax.Microseconds(), stats.intervalMin.Microseconds(), avg))

		stats.resetInterval()
	}

	return strings.Join(parts, " ")
}

// Export writes the overall run figures and the statistics of every measurement name in the YCSB text format.
func (c *Collector) Export(out io.Writer, runTime time.Duration, operations int64) error {
	throughput := 0.0
	if runTime > 0 {
		throughput = float64(operations) / runTime.Seconds()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[OVERALL], RunTime(ms), %d\n", runTime.Milliseconds())
	fmt.Fprintf(&b, "[OVERALL], Throughput(ops/sec), %s\n", formatFloat(throughput))

	for _, stats := range c.Snapshot() {
		fmt.Fprintf(&b, "[%s], Operations, %d\n", stats.Name, stats.Count)
		fmt.Fprintf(&b, "[%s], AverageLatency(us), %s\n", stats.Name, formatFloat(float64(stats.Average().Nanoseconds())/1e3))
		fmt.Fprintf(&b, "[%s], MinLatency(us), %d\n", stats.Name, stats.Min.Microseconds())
		fmt.Fprintf(&b, "[%s], MaxLatency(us), %d\n", stats.Name, stats.Max.Microseconds())
		fmt.Fprintf(&b, "[%s], 95thPercentileLatency(us), %d\n", stats.Name, stats.P95.Microseconds())
		fmt.Fprintf(&b, "[%s], 99thPercentileLatency(us), %d\n", stats.Name, stats.P99.Microseconds())

		for _, status := range stats.StatusNames() {
			fmt.Fprintf(&b, "[%s], Return=%s, %d\n", stats.Name, status, stats.Statuses[status])
		}
	}

	_, err := io.WriteString(out, b.String())

	return err
}

func (c *Collector) statsFor(name string) *opStats {
	stats, ok := c.ops[name]
	if !ok {
		stats = newOpStats(c.buckets)
		c.ops[name] = stats
	}

	return stats
}

func (c *Collector) recordDuration(name string, latency time.Duration) {
	labels := map[string]string{labelName: name}

	if contextual, ok := c.metricsCollector.(economy.ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(context.Background(), metricLatency, latency, labels)
		return
	}

	c.metricsCollector.RecordDuration(metricLatency, latency, labels)
}

func (c *Collector) incrementCounter(name string, status economy.Status) {
	labels := map[string]string{labelName: name, labelStatus: status.String()}

	if contextual, ok := c.metricsCollector.(economy.ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(context.Background(), metricReturns, labels)
		return
	}

	c.metricsCollector.IncrementCounter(metricReturns, labels)
}

// formatFloat prints integral values without decimals, like the YCSB exporters do.
func formatFloat(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}

	return fmt.Sprintf("%.2f", f)
}

var _ workload.Measurements = (*Collector)(nil)
