package redis

import (
	"context"
	"errors"
	"fmt"
	"net"

	goredis "github.com/redis/go-redis/v9"

	"github.com/suyash-sneo/kvload/topo"
)

// Sentinel resolves the current primary through the sentinel quorum and
// serves reads from a replica-only failover client. Both handles follow
// failovers on their own; a full Connect replaces them wholesale.
type Sentinel struct {
	opts      Options
	primary   *goredis.Client
	replica   *goredis.Client
	sentinels []*goredis.SentinelClient
}

// NewSentinel builds a sentinel-managed topology.
func NewSentinel(opts Options) (*Sentinel, error) {
	if len(opts.SentinelAddrs) == 0 {
		return nil, errors.New("sentinel topology requires at least one sentinel address")
	}
	if opts.MasterName == "" {
		return nil, errors.New("sentinel topology requires a master name")
	}
	return &Sentinel{opts: opts}, nil
}

// Connect replaces all handles and forces primary resolution with a ping.
func (s *Sentinel) Connect(ctx context.Context) error {
	s.closeHandles()

	s.primary = goredis.NewFailoverClient(s.failoverOptions(false))
	s.replica = goredis.NewFailoverClient(s.failoverOptions(true))
	s.sentinels = make([]*goredis.SentinelClient, 0, len(s.opts.SentinelAddrs))
	for _, addr := range s.opts.SentinelAddrs {
		s.sentinels = append(s.sentinels, goredis.NewSentinelClient(&goredis.Options{
			Addr:         addr,
			DialTimeout:  s.opts.timeout(),
			ReadTimeout:  s.opts.timeout(),
			WriteTimeout: s.opts.timeout(),
		}))
	}
	return s.primary.Ping(ctx).Err()
}

func (s *Sentinel) failoverOptions(replicaOnly bool) *goredis.FailoverOptions {
	return &goredis.FailoverOptions{
		MasterName:    s.opts.MasterName,
		SentinelAddrs: s.opts.SentinelAddrs,
		Username:      s.opts.Username,
		Password:      s.opts.Password,
		DB:            s.opts.DB,
		ReplicaOnly:   replicaOnly,
		DialTimeout:   s.opts.timeout(),
		ReadTimeout:   s.opts.timeout(),
		WriteTimeout:  s.opts.timeout(),
	}
}

// WriteTarget asks the sentinels for the current primary address. The
// address may change across calls when a failover happens.
func (s *Sentinel) WriteTarget(ctx context.Context) (topo.Target, error) {
	if s.primary == nil {
		return topo.Target{}, errNotConnected
	}
	addr, err := s.masterAddr(ctx)
	if err != nil {
		return topo.Target{}, err
	}
	return topo.Target{
		Addr: addr,
		Role: topo.RolePrimary,
		Conn: conn{cmd: s.primary},
	}, nil
}

// ReadTarget returns the replica-only handle. Which replica serves a given
// command is delegated to the failover client.
func (s *Sentinel) ReadTarget(ctx context.Context) (topo.Target, error) {
	if s.replica == nil {
		return topo.Target{}, errNotConnected
	}
	return topo.Target{
		Addr: s.opts.MasterName + "/replica",
		Role: topo.RoleReplica,
		Conn: conn{cmd: s.replica},
	}, nil
}

func (s *Sentinel) masterAddr(ctx context.Context) (string, error) {
	var lastErr error
	for _, sc := range s.sentinels {
		res, err := sc.GetMasterAddrByName(ctx, s.opts.MasterName).Result()
		if err != nil {
			lastErr = err
			continue
		}
		if len(res) == 2 {
			return net.JoinHostPort(res[0], res[1]), nil
		}
		lastErr = fmt.Errorf("unexpected master address reply: %v", res)
	}
	return "", fmt.Errorf("resolve primary for %q: %w", s.opts.MasterName, lastErr)
}

func (s *Sentinel) Close() error {
	s.closeHandles()
	return nil
}

func (s *Sentinel) closeHandles() {
	if s.primary != nil {
		_ = s.primary.Close()
		s.primary = nil
	}
	if s.replica != nil {
		_ = s.replica.Close()
		s.replica = nil
	}
	for _, sc := range s.sentinels {
		_ = sc.Close()
	}
	s.sentinels = nil
}
