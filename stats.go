package kvload

import (
	"time"
)

// Stats accumulates counters for the current reporting window. It is owned
// by the single scheduler loop; no locking is needed. Invariants:
// total == reads+writes and success+failed == total at all times.
type Stats struct {
	total       uint64
	success     uint64
	failed      uint64
	reads       uint64
	writes      uint64
	readErrors  uint64
	writeErrors uint64

	windowStart time.Time
	interval    time.Duration
	now         func() time.Time
}

// Report is one window's snapshot, taken at a report boundary.
type Report struct {
	Total       uint64
	Success     uint64
	Failed      uint64
	Reads       uint64
	Writes      uint64
	ReadErrors  uint64
	WriteErrors uint64
	Elapsed     time.Duration
	OpsPerSec   float64
	SuccessRate float64
}

// NewStats builds an aggregator reporting at the given interval. The clock
// is injectable for tests; nil means time.Now.
func NewStats(interval time.Duration, now func() time.Time) *Stats {
	if now == nil {
		now = time.Now
	}
	return &Stats{
		interval:    interval,
		now:         now,
		windowStart: now(),
	}
}

// Record accounts for one dispatched operation.
func (s *Stats) Record(kind OpKind, err error) {
	s.total++
	if kind == OpRead {
		s.reads++
	} else {
		s.writes++
	}
	if err == nil {
		s.success++
		return
	}
	s.failed++
	if kind == OpRead {
		s.readErrors++
	} else {
		s.writeErrors++
	}
}

// Due reports whether the window has reached the reporting interval.
func (s *Stats) Due() bool {
	return s.now().Sub(s.windowStart) >= s.interval
}

// Flush snapshots the window and hard-resets every counter, starting the
// next window at the current time.
func (s *Stats) Flush() Report {
	now := s.now()
	elapsed := now.Sub(s.windowStart)

	rep := Report{
		Total:       s.total,
		Success:     s.success,
		Failed:      s.failed,
		Reads:       s.reads,
		Writes:      s.writes,
		ReadErrors:  s.readErrors,
		WriteErrors: s.writeErrors,
		Elapsed:     elapsed,
	}
	if elapsed > 0 {
		rep.OpsPerSec = float64(s.total) / elapsed.Seconds()
	}
	if s.total > 0 {
		rep.SuccessRate = float64(s.success) / float64(s.total) * 100
	}

	s.total = 0
	s.success = 0
	s.failed = 0
	s.reads = 0
	s.writes = 0
	s.readErrors = 0
	s.writeErrors = 0
	s.windowStart = now

	return rep
}
