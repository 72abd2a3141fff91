package kvload

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Profile is the external configuration surface of the binary: which
// topology to drive and at what rate. Values come from an optional YAML
// file with environment variables layered on top.
type Profile struct {
	Topology string `yaml:"topology"`

	ClusterNodes  []string `yaml:"cluster_nodes"`
	SentinelAddrs []string `yaml:"sentinel_addrs"`
	MasterName    string   `yaml:"master_name"`
	PrimaryAddr   string   `yaml:"primary_addr"`
	ReplicaAddrs  []string `yaml:"replica_addrs"`

	OpsPerSecond int `yaml:"operations_per_second"`
	// Pointer so an explicit 0 (write-only workload) survives the overlay.
	ReadRatio   *int `yaml:"read_write_ratio"`
	ValueLength int  `yaml:"value_length"`
}

// DefaultProfile mirrors the defaults the generators were deployed with.
func DefaultProfile() Profile {
	return Profile{
		Topology:      "static",
		ClusterNodes:  []string{"redis-node-1:6379"},
		SentinelAddrs: []string{"redis-sentinel-1:26379"},
		MasterName:    "mymaster",
		PrimaryAddr:   "127.0.0.1:6379",
		ReplicaAddrs:  []string{"127.0.0.1:6380", "127.0.0.1:6381"},
	}
}

// LoadProfile reads a YAML profile, starting from defaults.
func LoadProfile(path string) (Profile, error) {
	p := DefaultProfile()
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read profile: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse profile %s: %w", path, err)
	}
	return p, nil
}

// WithEnv overlays the documented environment variables on the profile.
func (p Profile) WithEnv() (Profile, error) {
	if v := os.Getenv("TOPOLOGY"); v != "" {
		p.Topology = v
	}
	if v := os.Getenv("REDIS_CLUSTER_NODES"); v != "" {
		p.ClusterNodes = splitAddrs(v)
	}
	if v := os.Getenv("REDIS_SENTINELS"); v != "" {
		p.SentinelAddrs = splitAddrs(v)
	}
	if v := os.Getenv("REDIS_MASTER_NAME"); v != "" {
		p.MasterName = v
	}
	if v := os.Getenv("REDIS_PRIMARY"); v != "" {
		p.PrimaryAddr = v
	}
	if v := os.Getenv("REDIS_REPLICAS"); v != "" {
		p.ReplicaAddrs = splitAddrs(v)
	}
	if v := os.Getenv("OPERATIONS_PER_SECOND"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, fmt.Errorf("OPERATIONS_PER_SECOND: %w", err)
		}
		p.OpsPerSecond = n
	}
	if v := os.Getenv("READ_WRITE_RATIO"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, fmt.Errorf("READ_WRITE_RATIO: %w", err)
		}
		p.ReadRatio = &n
	}
	return p, nil
}

// Config maps the profile onto the engine config, leaving defaults in
// place for anything unset.
func (p Profile) Config() Config {
	cfg := DefaultConfig()
	if p.OpsPerSecond != 0 {
		cfg.OpsPerSecond = p.OpsPerSecond
	}
	if p.ReadRatio != nil {
		cfg.ReadRatio = *p.ReadRatio
	}
	if p.ValueLength > 0 {
		cfg.ValueLength = p.ValueLength
	}
	return cfg
}

func splitAddrs(v string) []string {
	parts := strings.Split(v, ",")
	addrs := make([]string, 0, len(parts))
	for _, part := range parts {
		if a := strings.TrimSpace(part); a != "" {
			addrs = append(addrs, a)
		}
	}
	return addrs
}
