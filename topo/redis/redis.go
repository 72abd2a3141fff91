// Package redis implements the Topology variants over go-redis: cluster,
// sentinel-managed failover, and a static primary/replica set.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/suyash-sneo/kvload/topo"
)

const defaultTimeout = 5 * time.Second

// Options configure a Redis topology. Only the fields for the chosen
// variant need to be set.
type Options struct {
	// Cluster
	ClusterNodes []string

	// Sentinel
	SentinelAddrs []string
	MasterName    string

	// Static
	PrimaryAddr  string
	ReplicaAddrs []string

	Username string
	Password string
	DB       int

	// Timeout bounds dials, reads and writes on every handle.
	// Defaults to 5s.
	Timeout time.Duration
}

func (o Options) timeout() time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	return defaultTimeout
}

// New builds the topology variant named by kind: "cluster", "sentinel" or
// "static".
func New(kind string, opts Options) (topo.Topology, error) {
	switch kind {
	case "cluster":
		return NewCluster(opts)
	case "sentinel":
		return NewSentinel(opts)
	case "static":
		return NewStatic(opts)
	default:
		return nil, fmt.Errorf("unknown topology %q", kind)
	}
}

var errNotConnected = errors.New("topology not connected")

// conn adapts any go-redis client to topo.Conn. Read commands discard the
// value; a key miss is a successful read.
type conn struct {
	cmd goredis.Cmdable
}

func (c conn) Ping(ctx context.Context) error {
	return c.cmd.Ping(ctx).Err()
}

func (c conn) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.cmd.Set(ctx, key, value, ttl).Err()
}

func (c conn) Incr(ctx context.Context, key string) error {
	return c.cmd.Incr(ctx, key).Err()
}

func (c conn) ListPushTrim(ctx context.Context, key, value string, keep int64) error {
	if err := c.cmd.LPush(ctx, key, value).Err(); err != nil {
		return err
	}
	return c.cmd.LTrim(ctx, key, 0, keep-1).Err()
}

func (c conn) SetAdd(ctx context.Context, key, member string) error {
	return c.cmd.SAdd(ctx, key, member).Err()
}

func (c conn) HashSet(ctx context.Context, key, field, value string) error {
	return c.cmd.HSet(ctx, key, field, value).Err()
}

func (c conn) Get(ctx context.Context, key string) error {
	err := c.cmd.Get(ctx, key).Err()
	if errors.Is(err, goredis.Nil) {
		return nil
	}
	return err
}

func (c conn) Exists(ctx context.Context, key string) error {
	return c.cmd.Exists(ctx, key).Err()
}

func (c conn) ListRange(ctx context.Context, key string, start, stop int64) error {
	return c.cmd.LRange(ctx, key, start, stop).Err()
}

func (c conn) SetMembers(ctx context.Context, key string) error {
	return c.cmd.SMembers(ctx, key).Err()
}

func (c conn) HashGetAll(ctx context.Context, key string) error {
	return c.cmd.HGetAll(ctx, key).Err()
}
