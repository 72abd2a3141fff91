package kvload

import (
	"context"
	"fmt"
	"time"

	"github.com/suyash-sneo/kvload/topo"
)

// Supervisor owns connection establishment and recovery for a topology.
// Connect is bounded retry with a fixed delay; Reconnect waits briefly and
// re-runs the full Connect sequence, replacing every handle.
type Supervisor struct {
	topology       topo.Topology
	retry          RetryConfig
	reconnectDelay time.Duration
	logger         Logger
}

// NewSupervisor wires a supervisor for the given topology.
func NewSupervisor(topology topo.Topology, retry RetryConfig, reconnectDelay time.Duration, logger Logger) *Supervisor {
	if logger == nil {
		logger = NopLogger()
	}
	return &Supervisor{
		topology:       topology,
		retry:          retry,
		reconnectDelay: reconnectDelay,
		logger:         logger,
	}
}

// Connect establishes every handle the topology needs and verifies
// liveness with a ping. After the attempt budget is spent it returns an
// *ExhaustedError; callers on the startup path treat that as fatal.
func (s *Supervisor) Connect(ctx context.Context) error {
	err := s.retry.Do(ctx, func(ctx context.Context, attempt int) error {
		s.logger.Info("connecting",
			Field{Key: "attempt", Value: attempt},
			Field{Key: "max_attempts", Value: s.retry.MaxAttempts})
		if err := s.topology.Connect(ctx); err != nil {
			s.logger.Warn("connect attempt failed",
				Field{Key: "attempt", Value: attempt},
				Field{Key: "err", Value: err})
			return err
		}
		target, err := s.topology.WriteTarget(ctx)
		if err != nil {
			return fmt.Errorf("resolve write target: %w", err)
		}
		if err := target.Conn.Ping(ctx); err != nil {
			return fmt.Errorf("liveness ping %s: %w", target.Addr, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("connected")
	if ins, ok := s.topology.(topo.Inspector); ok {
		if info, err := ins.Inspect(ctx); err == nil {
			fields := make([]Field, 0, len(info))
			for k, v := range info {
				fields = append(fields, Field{Key: k, Value: v})
			}
			s.logger.Info("topology details", fields...)
		}
	}
	return nil
}

// Reconnect is invoked after a transient operation failure. It waits a
// fixed delay then re-runs the full Connect sequence; a single failed
// operation causes full topology re-resolution.
func (s *Supervisor) Reconnect(ctx context.Context) error {
	s.logger.Warn("connection lost, reconnecting",
		Field{Key: "delay", Value: s.reconnectDelay})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.reconnectDelay):
	}
	return s.Connect(ctx)
}
