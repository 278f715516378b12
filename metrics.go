package ip6count

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordRun is called after each counting run.
	// distinct is the final count (0 on failure), err is nil if successful.
	RecordRun(mode Mode, distinct uint64, duration time.Duration, err error)

	// RecordPartitionPhase is called after a partitioned run's spill phase.
	RecordPartitionPhase(lines, spilledBytes, flushes uint64, duration time.Duration)

	// RecordCountPhase is called after a partitioned run's counting phase.
	RecordCountPhase(partitions uint64, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordRun(Mode, uint64, time.Duration, error)            {}
func (NoopMetricsCollector) RecordPartitionPhase(uint64, uint64, uint64, time.Duration) {}
func (NoopMetricsCollector) RecordCountPhase(uint64, time.Duration)                  {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	RunCount        atomic.Int64
	RunErrors       atomic.Int64
	RunTotalNanos   atomic.Int64
	LinesTotal      atomic.Int64
	SpilledBytes    atomic.Int64
	FlushCount      atomic.Int64
	PartitionsTotal atomic.Int64
}

// RecordRun implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRun(mode Mode, distinct uint64, duration time.Duration, err error) {
	b.RunCount.Add(1)
	b.RunTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RunErrors.Add(1)
	}
}

// RecordPartitionPhase implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPartitionPhase(lines, spilledBytes, flushes uint64, duration time.Duration) {
	b.LinesTotal.Add(int64(lines))
	b.SpilledBytes.Add(int64(spilledBytes))
	b.FlushCount.Add(int64(flushes))
}

// RecordCountPhase implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCountPhase(partitions uint64, duration time.Duration) {
	b.PartitionsTotal.Add(int64(partitions))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		RunCount:        b.RunCount.Load(),
		RunErrors:       b.RunErrors.Load(),
		RunAvgNanos:     b.getAvgRunNanos(),
		LinesTotal:      b.LinesTotal.Load(),
		SpilledBytes:    b.SpilledBytes.Load(),
		FlushCount:      b.FlushCount.Load(),
		PartitionsTotal: b.PartitionsTotal.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgRunNanos() int64 {
	count := b.RunCount.Load()
	if count == 0 {
		return 0
	}
	return b.RunTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	RunCount        int64
	RunErrors       int64
	RunAvgNanos     int64
	LinesTotal      int64
	SpilledBytes    int64
	FlushCount      int64
	PartitionsTotal int64
}
