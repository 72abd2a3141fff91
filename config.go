package kvload

import (
	"fmt"
	"time"
)

// Fallback tick interval when the configured rate is non-positive.
const defaultTickInterval = 10 * time.Millisecond

// Config controls workload shape, pacing and recovery behavior.
type Config struct {
	// Pacing
	OpsPerSecond   int
	ReadRatio      int // percentage of reads, 0-100
	ReportInterval time.Duration

	// Payloads
	ValueLength     int
	HashFieldLength int
	SetTTL          time.Duration
	ListKeep        int64
	ListReadSpan    int64

	// Key pool sizes (closed ranges starting at 1)
	PrimaryKeys    int
	CounterKeys    int
	CollectionKeys int

	// Recovery
	ConnectRetry    RetryConfig
	ReconnectDelay  time.Duration
	UnexpectedPause time.Duration
}

// RetryConfig describes a bounded fixed-delay retry policy.
type RetryConfig struct {
	MaxAttempts int
	Delay       time.Duration
}

// DefaultConfig matches the workload the generators were originally run
// with: 100 ops/s, 70% reads, 10s reports, 5 minute value TTL.
func DefaultConfig() Config {
	return Config{
		OpsPerSecond:   100,
		ReadRatio:      70,
		ReportInterval: 10 * time.Second,

		ValueLength:     20,
		HashFieldLength: 10,
		SetTTL:          5 * time.Minute,
		ListKeep:        100,
		ListReadSpan:    10,

		PrimaryKeys:    1000,
		CounterKeys:    100,
		CollectionKeys: 50,

		ConnectRetry: RetryConfig{
			MaxAttempts: 10,
			Delay:       5 * time.Second,
		},
		ReconnectDelay:  2 * time.Second,
		UnexpectedPause: time.Second,
	}
}

// TickInterval returns the pacing sleep between dispatches. The sleep is
// not adjusted for time spent in the tick, so achieved throughput is at
// most the configured rate.
func (c Config) TickInterval() time.Duration {
	if c.OpsPerSecond <= 0 {
		return defaultTickInterval
	}
	return time.Second / time.Duration(c.OpsPerSecond)
}

// Validate ensures config values are safe.
func (c Config) Validate() error {
	if c.ReadRatio < 0 || c.ReadRatio > 100 {
		return fmt.Errorf("ReadRatio must be between 0 and 100")
	}
	if c.ReportInterval <= 0 {
		return fmt.Errorf("ReportInterval must be >0")
	}
	if c.ValueLength <= 0 {
		return fmt.Errorf("ValueLength must be >0")
	}
	if c.HashFieldLength <= 0 {
		return fmt.Errorf("HashFieldLength must be >0")
	}
	if c.SetTTL <= 0 {
		return fmt.Errorf("SetTTL must be >0")
	}
	if c.ListKeep <= 0 {
		return fmt.Errorf("ListKeep must be >0")
	}
	if c.ListReadSpan < 0 {
		return fmt.Errorf("ListReadSpan cannot be negative")
	}
	if c.PrimaryKeys <= 0 || c.CounterKeys <= 0 || c.CollectionKeys <= 0 {
		return fmt.Errorf("key pool sizes must be >0")
	}
	if c.ReconnectDelay < 0 {
		return fmt.Errorf("ReconnectDelay cannot be negative")
	}
	if c.UnexpectedPause < 0 {
		return fmt.Errorf("UnexpectedPause cannot be negative")
	}
	if err := c.ConnectRetry.validate(); err != nil {
		return fmt.Errorf("ConnectRetry invalid: %w", err)
	}
	return nil
}

func (r RetryConfig) validate() error {
	if r.MaxAttempts <= 0 {
		return fmt.Errorf("MaxAttempts must be >0")
	}
	if r.Delay < 0 {
		return fmt.Errorf("Delay cannot be negative")
	}
	return nil
}
