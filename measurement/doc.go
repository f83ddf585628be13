// Package measurement collects the latency and the return status of every workload operation.
//
// A Collector keeps per operation statistics (count, min, max, average and percentiles from a
// millisecond bucket histogram) plus counters per return status. It can print the statistics in
// the YCSB text format, summarize them for a periodic status line and forward every measurement to
// an economy.MetricsCollector.
package measurement
