package kvload

import (
	"context"
	"fmt"

	"github.com/suyash-sneo/kvload/topo"
)

// Dispatcher executes one operation against a resolved target. At most one
// attempt per tick; retrying a failed logical operation is never done here.
type Dispatcher struct {
	cfg    Config
	values *ValueGen
}

// NewDispatcher builds a dispatcher sharing the generator's value source.
func NewDispatcher(cfg Config, values *ValueGen) *Dispatcher {
	return &Dispatcher{cfg: cfg, values: values}
}

// Dispatch runs the command for spec on the target's connection. Store
// failures come back as *OpError so the caller can classify them as
// transient; anything else is an unexpected fault.
func (d *Dispatcher) Dispatch(ctx context.Context, spec OperationSpec, target topo.Target) error {
	cmd, ok := d.command(spec)
	if !ok {
		return fmt.Errorf("no command for subtype %q", spec.Subtype)
	}
	if target.Conn == nil {
		return fmt.Errorf("target %s has no connection", target.Addr)
	}
	if err := cmd(ctx, target.Conn); err != nil {
		return &OpError{
			Kind:    spec.Kind,
			Subtype: spec.Subtype,
			Stage:   StageExecute,
			Addr:    target.Addr,
			Err:     err,
		}
	}
	return nil
}

func (d *Dispatcher) command(spec OperationSpec) (func(context.Context, topo.Conn) error, bool) {
	switch spec.Subtype {
	case WriteSetWithTTL:
		return func(ctx context.Context, c topo.Conn) error {
			return c.SetWithTTL(ctx, spec.Key, d.values.Value(), d.cfg.SetTTL)
		}, true
	case WriteIncr:
		return func(ctx context.Context, c topo.Conn) error {
			return c.Incr(ctx, spec.Key)
		}, true
	case WriteListPushTrim:
		return func(ctx context.Context, c topo.Conn) error {
			return c.ListPushTrim(ctx, spec.Key, d.values.Value(), d.cfg.ListKeep)
		}, true
	case WriteSetAdd:
		return func(ctx context.Context, c topo.Conn) error {
			return c.SetAdd(ctx, spec.Key, d.values.Value())
		}, true
	case WriteHashSet:
		return func(ctx context.Context, c topo.Conn) error {
			return c.HashSet(ctx, spec.Key, d.values.Field(), d.values.Value())
		}, true
	case ReadGet:
		return func(ctx context.Context, c topo.Conn) error {
			return c.Get(ctx, spec.Key)
		}, true
	case ReadExists:
		return func(ctx context.Context, c topo.Conn) error {
			return c.Exists(ctx, spec.Key)
		}, true
	case ReadListRange:
		return func(ctx context.Context, c topo.Conn) error {
			return c.ListRange(ctx, spec.Key, 0, d.cfg.ListReadSpan)
		}, true
	case ReadSetMembers:
		return func(ctx context.Context, c topo.Conn) error {
			return c.SetMembers(ctx, spec.Key)
		}, true
	case ReadHashGetAll:
		return func(ctx context.Context, c topo.Conn) error {
			return c.HashGetAll(ctx, spec.Key)
		}, true
	default:
		return nil, false
	}
}
