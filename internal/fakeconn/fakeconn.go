// Package fakeconn provides in-memory Conn and Topology implementations
// for engine tests, with connect and command failure injection.
package fakeconn

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/suyash-sneo/kvload/topo"
)

// Call records one command issued against the fake connection.
type Call struct {
	Op  string
	Key string
}

// Conn is an in-memory topo.Conn that stores enough state to validate
// workload behavior (list lengths, counters) and records every call.
type Conn struct {
	mu       sync.Mutex
	calls    []Call
	failNext int
	failErr  error

	kv       map[string]string
	counters map[string]int64
	lists    map[string][]string
	sets     map[string]map[string]struct{}
	hashes   map[string]map[string]string
}

// NewConn returns an empty fake connection.
func NewConn() *Conn {
	return &Conn{
		kv:       map[string]string{},
		counters: map[string]int64{},
		lists:    map[string][]string{},
		sets:     map[string]map[string]struct{}{},
		hashes:   map[string]map[string]string{},
	}
}

// FailNext makes the next n commands return err.
func (c *Conn) FailNext(n int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failNext = n
	c.failErr = err
}

// Calls returns a copy of the recorded command log.
func (c *Conn) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Call(nil), c.calls...)
}

// ListLen returns the current length of a list key.
func (c *Conn) ListLen(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lists[key])
}

// Counter returns the current value of a counter key.
func (c *Conn) Counter(key string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counters[key]
}

func (c *Conn) record(op, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, Call{Op: op, Key: key})
	if c.failNext > 0 {
		c.failNext--
		return c.failErr
	}
	return nil
}

func (c *Conn) Ping(ctx context.Context) error {
	return c.record("ping", "")
}

func (c *Conn) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.record("set", key); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.kv[key] = value
	return nil
}

func (c *Conn) Incr(ctx context.Context, key string) error {
	if err := c.record("incr", key); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters[key]++
	return nil
}

func (c *Conn) ListPushTrim(ctx context.Context, key, value string, keep int64) error {
	if err := c.record("lpushtrim", key); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lists[key] = append([]string{value}, c.lists[key]...)
	if int64(len(c.lists[key])) > keep {
		c.lists[key] = c.lists[key][:keep]
	}
	return nil
}

func (c *Conn) SetAdd(ctx context.Context, key, member string) error {
	if err := c.record("sadd", key); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sets[key] == nil {
		c.sets[key] = map[string]struct{}{}
	}
	c.sets[key][member] = struct{}{}
	return nil
}

func (c *Conn) HashSet(ctx context.Context, key, field, value string) error {
	if err := c.record("hset", key); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hashes[key] == nil {
		c.hashes[key] = map[string]string{}
	}
	c.hashes[key][field] = value
	return nil
}

func (c *Conn) Get(ctx context.Context, key string) error {
	return c.record("get", key)
}

func (c *Conn) Exists(ctx context.Context, key string) error {
	return c.record("exists", key)
}

func (c *Conn) ListRange(ctx context.Context, key string, start, stop int64) error {
	return c.record("lrange", key)
}

func (c *Conn) SetMembers(ctx context.Context, key string) error {
	return c.record("smembers", key)
}

func (c *Conn) HashGetAll(ctx context.Context, key string) error {
	return c.record("hgetall", key)
}

// Topology serves the same fake connection as both targets and lets tests
// fail the first N connect attempts.
type Topology struct {
	mu           sync.Mutex
	conn         *Conn
	connects     int
	failConnects int
	connected    bool
}

// NewTopology wraps a fake connection. nil conn allocates a fresh one.
func NewTopology(conn *Conn) *Topology {
	if conn == nil {
		conn = NewConn()
	}
	return &Topology{conn: conn}
}

// FailConnects makes the first n Connect calls fail.
func (t *Topology) FailConnects(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failConnects = n
}

// Connects returns how many Connect calls were made.
func (t *Topology) Connects() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connects
}

// Conn exposes the underlying fake connection for assertions.
func (t *Topology) Conn() *Conn { return t.conn }

func (t *Topology) Connect(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.connects++
	if t.connects <= t.failConnects {
		return errors.New("dial refused")
	}
	t.connected = true
	return nil
}

func (t *Topology) WriteTarget(ctx context.Context) (topo.Target, error) {
	return t.target(topo.RolePrimary)
}

func (t *Topology) ReadTarget(ctx context.Context) (topo.Target, error) {
	return t.target(topo.RoleReplica)
}

func (t *Topology) target(role topo.Role) (topo.Target, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.connected {
		return topo.Target{}, errors.New("fake topology not connected")
	}
	return topo.Target{Addr: "fake:0", Role: role, Conn: t.conn}, nil
}

func (t *Topology) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.connected = false
	return nil
}
