package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/suyash-sneo/kvload/topo"
)

func newStatic(t *testing.T, replicas int) (*Static, *miniredis.Miniredis, []*miniredis.Miniredis) {
	t.Helper()
	primary := miniredis.RunT(t)
	reps := make([]*miniredis.Miniredis, 0, replicas)
	addrs := make([]string, 0, replicas)
	for i := 0; i < replicas; i++ {
		mr := miniredis.RunT(t)
		reps = append(reps, mr)
		addrs = append(addrs, mr.Addr())
	}
	s, err := NewStatic(Options{PrimaryAddr: primary.Addr(), ReplicaAddrs: addrs})
	if err != nil {
		t.Fatalf("new static: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, primary, reps
}

func TestStaticTargets(t *testing.T) {
	s, primary, reps := newStatic(t, 2)
	ctx := context.Background()
	if err := s.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}

	wt, err := s.WriteTarget(ctx)
	if err != nil {
		t.Fatalf("write target: %v", err)
	}
	if wt.Addr != primary.Addr() || wt.Role != topo.RolePrimary {
		t.Fatalf("unexpected write target: %+v", wt)
	}

	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		rt, err := s.ReadTarget(ctx)
		if err != nil {
			t.Fatalf("read target: %v", err)
		}
		if rt.Role != topo.RoleReplica {
			t.Fatalf("expected replica role, got %v", rt.Role)
		}
		seen[rt.Addr] = true
	}
	for _, mr := range reps {
		if !seen[mr.Addr()] {
			t.Fatalf("replica %s never selected over 200 draws", mr.Addr())
		}
	}
}

func TestStaticReadsFallBackToPrimary(t *testing.T) {
	s, primary, _ := newStatic(t, 0)
	ctx := context.Background()
	if err := s.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}

	rt, err := s.ReadTarget(ctx)
	if err != nil {
		t.Fatalf("read target: %v", err)
	}
	if rt.Addr != primary.Addr() || rt.Role != topo.RoleAny {
		t.Fatalf("expected primary fallback, got %+v", rt)
	}
}

func TestStaticConnectRequiresAllInstances(t *testing.T) {
	primary := miniredis.RunT(t)
	dead := miniredis.RunT(t)
	deadAddr := dead.Addr()
	dead.Close()

	s, err := NewStatic(Options{
		PrimaryAddr:  primary.Addr(),
		ReplicaAddrs: []string{deadAddr},
		Timeout:      200 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("new static: %v", err)
	}
	defer s.Close()

	if err := s.Connect(context.Background()); err == nil {
		t.Fatalf("expected connect to fail with a dead replica")
	}
}

func TestStaticTargetsBeforeConnect(t *testing.T) {
	s, _, _ := newStatic(t, 1)
	if _, err := s.WriteTarget(context.Background()); err == nil {
		t.Fatalf("expected error resolving target before connect")
	}
}

func TestConnCommands(t *testing.T) {
	s, primary, _ := newStatic(t, 0)
	ctx := context.Background()
	if err := s.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	wt, err := s.WriteTarget(ctx)
	if err != nil {
		t.Fatalf("write target: %v", err)
	}
	conn := wt.Conn

	if err := conn.SetWithTTL(ctx, "key:1", "hello", 5*time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	primary.CheckGet(t, "key:1", "hello")
	if ttl := primary.TTL("key:1"); ttl != 5*time.Minute {
		t.Fatalf("expected 5m ttl, got %v", ttl)
	}

	if err := conn.Incr(ctx, "counter:1"); err != nil {
		t.Fatalf("incr: %v", err)
	}
	if err := conn.Incr(ctx, "counter:1"); err != nil {
		t.Fatalf("incr: %v", err)
	}
	primary.CheckGet(t, "counter:1", "2")

	for i := 0; i < 120; i++ {
		if err := conn.ListPushTrim(ctx, "list:1", "v", 100); err != nil {
			t.Fatalf("lpush/ltrim: %v", err)
		}
	}
	client := goredis.NewClient(&goredis.Options{Addr: primary.Addr()})
	defer client.Close()
	n, err := client.LLen(ctx, "list:1").Result()
	if err != nil {
		t.Fatalf("llen: %v", err)
	}
	if n > 100 {
		t.Fatalf("list grew past trim bound: %d", n)
	}

	if err := conn.SetAdd(ctx, "set:1", "m1"); err != nil {
		t.Fatalf("sadd: %v", err)
	}
	if err := conn.HashSet(ctx, "hash:1", "f1", "v1"); err != nil {
		t.Fatalf("hset: %v", err)
	}

	// Reads against missing keys are successful round trips.
	if err := conn.Get(ctx, "key:missing"); err != nil {
		t.Fatalf("get miss should not error: %v", err)
	}
	if err := conn.Exists(ctx, "key:missing"); err != nil {
		t.Fatalf("exists: %v", err)
	}
	if err := conn.ListRange(ctx, "list:missing", 0, 10); err != nil {
		t.Fatalf("lrange: %v", err)
	}
	if err := conn.SetMembers(ctx, "set:missing"); err != nil {
		t.Fatalf("smembers: %v", err)
	}
	if err := conn.HashGetAll(ctx, "hash:missing"); err != nil {
		t.Fatalf("hgetall: %v", err)
	}
}

func TestNewTopologyKinds(t *testing.T) {
	if _, err := New("cluster", Options{ClusterNodes: []string{"n1:6379"}}); err != nil {
		t.Fatalf("cluster: %v", err)
	}
	if _, err := New("sentinel", Options{SentinelAddrs: []string{"s1:26379"}, MasterName: "mymaster"}); err != nil {
		t.Fatalf("sentinel: %v", err)
	}
	if _, err := New("static", Options{PrimaryAddr: "p:6379"}); err != nil {
		t.Fatalf("static: %v", err)
	}
	if _, err := New("mesh", Options{}); err == nil {
		t.Fatalf("expected error for unknown topology kind")
	}
}

func TestVariantValidation(t *testing.T) {
	if _, err := NewCluster(Options{}); err == nil {
		t.Fatalf("cluster without nodes should fail")
	}
	if _, err := NewSentinel(Options{MasterName: "mymaster"}); err == nil {
		t.Fatalf("sentinel without addresses should fail")
	}
	if _, err := NewSentinel(Options{SentinelAddrs: []string{"s1:26379"}}); err == nil {
		t.Fatalf("sentinel without master name should fail")
	}
	if _, err := NewStatic(Options{}); err == nil {
		t.Fatalf("static without primary should fail")
	}

	s, _ := NewSentinel(Options{SentinelAddrs: []string{"s1:26379"}, MasterName: "mymaster"})
	if _, err := s.WriteTarget(context.Background()); err == nil {
		t.Fatalf("expected error resolving sentinel target before connect")
	}
	c, _ := NewCluster(Options{ClusterNodes: []string{"n1:6379"}})
	if _, err := c.WriteTarget(context.Background()); err == nil {
		t.Fatalf("expected error resolving cluster target before connect")
	}
}
