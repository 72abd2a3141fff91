package kvload

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/suyash-sneo/kvload/topo"
)

// Option mutates Generator construction.
type Option func(*Generator)

// WithNow sets a custom clock (tests).
func WithNow(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithRand sets a deterministic random source (tests).
func WithRand(rng *rand.Rand) Option {
	return func(g *Generator) { g.rng = rng }
}

// Generator runs the rate-controlled dispatch loop: select an operation,
// resolve its target, dispatch once, record, report, sleep. Execution is
// strictly sequential; one operation is in flight at a time and the
// connection handles are exclusively owned by the loop.
type Generator struct {
	cfg      Config
	topology topo.Topology
	logger   Logger
	metrics  Metrics

	runID string
	now   func() time.Time
	rng   *rand.Rand

	mix        *Mix
	dispatcher *Dispatcher
	supervisor *Supervisor
	stats      *Stats
	state      atomic.Int32
}

// NewGenerator constructs a generator for the given topology.
func NewGenerator(cfg Config, topology topo.Topology, logger Logger, metrics Metrics, opts ...Option) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if topology == nil {
		return nil, fmt.Errorf("topology is required")
	}
	if logger == nil {
		logger = NopLogger()
	}
	if metrics == nil {
		metrics = NopMetrics()
	}
	g := &Generator{
		cfg:      cfg,
		topology: topology,
		logger:   logger,
		metrics:  metrics,
		runID:    uuid.NewString(),
		now:      time.Now,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(g)
	}
	values := NewValueGen(cfg, g.rng)
	g.mix = NewMix(cfg, g.rng)
	g.dispatcher = NewDispatcher(cfg, values)
	g.supervisor = NewSupervisor(topology, cfg.ConnectRetry, cfg.ReconnectDelay, logger)
	g.stats = NewStats(cfg.ReportInterval, g.now)
	return g, nil
}

// RunID identifies this generator run in logs.
func (g *Generator) RunID() string { return g.runID }

// State returns the current lifecycle state.
func (g *Generator) State() State { return State(g.state.Load()) }

func (g *Generator) setState(s State) { g.state.Store(int32(s)) }

// Run connects and drives the loop until ctx is cancelled. Startup connect
// exhaustion is the only error returned; every steady-state failure is
// classified, recorded and survived. On interrupt the in-flight tick
// completes, a final stats flush is emitted, and Run returns nil.
func (g *Generator) Run(ctx context.Context) error {
	g.setState(StateStarting)
	g.logger.Info("starting load generation",
		Field{Key: "run_id", Value: g.runID},
		Field{Key: "ops_per_second", Value: g.cfg.OpsPerSecond},
		Field{Key: "read_ratio_pct", Value: g.cfg.ReadRatio})

	if err := g.supervisor.Connect(ctx); err != nil {
		g.setState(StateStopped)
		return fmt.Errorf("startup connect: %w", err)
	}
	g.setState(StateRunning)

	interval := g.cfg.TickInterval()
	for ctx.Err() == nil {
		g.tick(ctx)
		select {
		case <-ctx.Done():
		case <-time.After(interval):
		}
	}

	g.setState(StateTerminating)
	g.emit(g.stats.Flush())
	g.logger.Info("load generator stopped", Field{Key: "run_id", Value: g.runID})
	g.setState(StateStopped)
	return nil
}

func (g *Generator) tick(ctx context.Context) {
	spec := g.mix.Next()
	err := g.attempt(ctx, spec)
	if err != nil && ctx.Err() != nil {
		// Interrupted mid-flight; shutdown noise is not an operation outcome.
		return
	}

	switch classify(err) {
	case classNone:
		g.stats.Record(spec.Kind, nil)
		g.metrics.IncCounter("ops_total", 1, Label{Name: "kind", Value: string(spec.Kind)})
	case classTransient:
		g.stats.Record(spec.Kind, err)
		g.metrics.IncCounter("op_failures_total", 1, Label{Name: "kind", Value: string(spec.Kind)})
		g.logger.Error("operation failed",
			Field{Key: "kind", Value: string(spec.Kind)},
			Field{Key: "subtype", Value: string(spec.Subtype)},
			Field{Key: "err", Value: err})
		if rerr := g.supervisor.Reconnect(ctx); rerr != nil && ctx.Err() == nil {
			// Keep looping; the next failed tick triggers another cycle.
			g.logger.Error("reconnect failed", Field{Key: "err", Value: rerr})
		}
	case classUnexpected:
		g.logger.Error("unexpected error",
			Field{Key: "subtype", Value: string(spec.Subtype)},
			Field{Key: "err", Value: err})
		g.pause(ctx, g.cfg.UnexpectedPause)
	}

	g.maybeReport()
}

// attempt resolves a target and dispatches exactly once.
func (g *Generator) attempt(ctx context.Context, spec OperationSpec) error {
	target, err := g.resolve(ctx, spec)
	if err != nil {
		return err
	}
	return g.dispatcher.Dispatch(ctx, spec, target)
}

func (g *Generator) resolve(ctx context.Context, spec OperationSpec) (topo.Target, error) {
	var (
		target topo.Target
		err    error
	)
	if spec.Kind == OpWrite {
		target, err = g.topology.WriteTarget(ctx)
	} else {
		target, err = g.topology.ReadTarget(ctx)
	}
	if err != nil {
		return topo.Target{}, &OpError{
			Kind:    spec.Kind,
			Subtype: spec.Subtype,
			Stage:   StageResolve,
			Err:     err,
		}
	}
	return target, nil
}

func (g *Generator) maybeReport() {
	if !g.stats.Due() {
		return
	}
	g.emit(g.stats.Flush())
}

func (g *Generator) emit(rep Report) {
	g.logger.Info("stats",
		Field{Key: "total", Value: rep.Total},
		Field{Key: "success", Value: rep.Success},
		Field{Key: "failed", Value: rep.Failed},
		Field{Key: "reads", Value: rep.Reads},
		Field{Key: "writes", Value: rep.Writes},
		Field{Key: "read_errors", Value: rep.ReadErrors},
		Field{Key: "write_errors", Value: rep.WriteErrors},
		Field{Key: "ops_per_sec", Value: fmt.Sprintf("%.2f", rep.OpsPerSec)},
		Field{Key: "success_rate_pct", Value: fmt.Sprintf("%.2f", rep.SuccessRate)})
	g.metrics.SetGauge("window_ops_per_sec", rep.OpsPerSec)
	g.metrics.SetGauge("window_success_rate_pct", rep.SuccessRate)
}

func (g *Generator) pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
