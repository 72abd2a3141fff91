package redis

import (
	"context"
	"errors"
	"math/rand"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/suyash-sneo/kvload/topo"
)

// Static is a fixed primary plus N configured replicas. Writes always go to
// the primary; each read picks a replica uniformly at random. With no
// replicas configured, reads fall back to the primary.
type Static struct {
	opts     Options
	rng      *rand.Rand
	primary  *goredis.Client
	replicas []*goredis.Client
}

// NewStatic builds a static primary/replica topology.
func NewStatic(opts Options) (*Static, error) {
	if opts.PrimaryAddr == "" {
		return nil, errors.New("static topology requires a primary address")
	}
	return &Static{
		opts: opts,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Connect replaces every handle and pings them all concurrently; any
// unreachable instance fails the whole attempt.
func (s *Static) Connect(ctx context.Context) error {
	s.closeHandles()

	s.primary = s.newClient(s.opts.PrimaryAddr)
	s.replicas = make([]*goredis.Client, 0, len(s.opts.ReplicaAddrs))
	for _, addr := range s.opts.ReplicaAddrs {
		s.replicas = append(s.replicas, s.newClient(addr))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.primary.Ping(gctx).Err() })
	for _, r := range s.replicas {
		r := r
		g.Go(func() error { return r.Ping(gctx).Err() })
	}
	return g.Wait()
}

func (s *Static) newClient(addr string) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:         addr,
		Username:     s.opts.Username,
		Password:     s.opts.Password,
		DB:           s.opts.DB,
		DialTimeout:  s.opts.timeout(),
		ReadTimeout:  s.opts.timeout(),
		WriteTimeout: s.opts.timeout(),
	})
}

func (s *Static) WriteTarget(ctx context.Context) (topo.Target, error) {
	if s.primary == nil {
		return topo.Target{}, errNotConnected
	}
	return topo.Target{
		Addr: s.opts.PrimaryAddr,
		Role: topo.RolePrimary,
		Conn: conn{cmd: s.primary},
	}, nil
}

func (s *Static) ReadTarget(ctx context.Context) (topo.Target, error) {
	if s.primary == nil {
		return topo.Target{}, errNotConnected
	}
	if len(s.replicas) == 0 {
		return topo.Target{
			Addr: s.opts.PrimaryAddr,
			Role: topo.RoleAny,
			Conn: conn{cmd: s.primary},
		}, nil
	}
	i := s.rng.Intn(len(s.replicas))
	return topo.Target{
		Addr: s.opts.ReplicaAddrs[i],
		Role: topo.RoleReplica,
		Conn: conn{cmd: s.replicas[i]},
	}, nil
}

func (s *Static) Close() error {
	s.closeHandles()
	return nil
}

func (s *Static) closeHandles() {
	if s.primary != nil {
		_ = s.primary.Close()
		s.primary = nil
	}
	for _, r := range s.replicas {
		_ = r.Close()
	}
	s.replicas = nil
}
