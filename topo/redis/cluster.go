package redis

import (
	"context"
	"errors"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/suyash-sneo/kvload/topo"
)

// Cluster routes every operation through the cluster entry point. Hash-slot
// routing is delegated to the client, so reads and writes share one target.
type Cluster struct {
	opts   Options
	client *goredis.ClusterClient
}

// NewCluster builds a cluster topology from startup nodes.
func NewCluster(opts Options) (*Cluster, error) {
	if len(opts.ClusterNodes) == 0 {
		return nil, errors.New("cluster topology requires at least one startup node")
	}
	return &Cluster{opts: opts}, nil
}

// Connect replaces the cluster client wholesale and forces slot discovery
// with a ping.
func (c *Cluster) Connect(ctx context.Context) error {
	if c.client != nil {
		_ = c.client.Close()
	}
	c.client = goredis.NewClusterClient(&goredis.ClusterOptions{
		Addrs:        c.opts.ClusterNodes,
		Username:     c.opts.Username,
		Password:     c.opts.Password,
		DialTimeout:  c.opts.timeout(),
		ReadTimeout:  c.opts.timeout(),
		WriteTimeout: c.opts.timeout(),
	})
	return c.client.Ping(ctx).Err()
}

func (c *Cluster) WriteTarget(ctx context.Context) (topo.Target, error) {
	return c.target()
}

func (c *Cluster) ReadTarget(ctx context.Context) (topo.Target, error) {
	return c.target()
}

func (c *Cluster) target() (topo.Target, error) {
	if c.client == nil {
		return topo.Target{}, errNotConnected
	}
	return topo.Target{
		Addr: strings.Join(c.opts.ClusterNodes, ","),
		Role: topo.RoleAny,
		Conn: conn{cmd: c.client},
	}, nil
}

// Inspect reports cluster state and assigned slot count from CLUSTER INFO.
func (c *Cluster) Inspect(ctx context.Context) (map[string]string, error) {
	if c.client == nil {
		return nil, errNotConnected
	}
	raw, err := c.client.ClusterInfo(ctx).Result()
	if err != nil {
		return nil, err
	}
	info := make(map[string]string, 2)
	for _, line := range strings.Split(raw, "\n") {
		k, v, ok := strings.Cut(strings.TrimSpace(line), ":")
		if !ok {
			continue
		}
		if k == "cluster_state" || k == "cluster_slots_assigned" {
			info[k] = strings.TrimRight(v, "\r")
		}
	}
	return info, nil
}

func (c *Cluster) Close() error {
	if c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client = nil
	return err
}
