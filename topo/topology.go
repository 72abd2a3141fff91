package topo

import (
	"context"
	"time"
)

// Role describes which replication role a target plays for an operation.
type Role string

const (
	RolePrimary Role = "primary"
	RoleReplica Role = "replica"
	// RoleAny is used by topologies that route internally (e.g. cluster),
	// where the caller cannot pin a role.
	RoleAny Role = "any"
)

// Conn is the narrow command surface the dispatcher needs from a store
// connection. Read commands discard the returned value; the generator only
// cares whether the round trip succeeded.
type Conn interface {
	Ping(ctx context.Context) error

	// Writes
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error
	Incr(ctx context.Context, key string) error
	// ListPushTrim pushes value and trims the list to its newest keep
	// elements. Counted as a single logical write by callers.
	ListPushTrim(ctx context.Context, key, value string, keep int64) error
	SetAdd(ctx context.Context, key, member string) error
	HashSet(ctx context.Context, key, field, value string) error

	// Reads
	Get(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) error
	ListRange(ctx context.Context, key string, start, stop int64) error
	SetMembers(ctx context.Context, key string) error
	HashGetAll(ctx context.Context, key string) error
}

// Target is a resolved endpoint plus the connection handle to reach it.
type Target struct {
	Addr string
	Role Role
	Conn Conn
}

// Topology resolves where reads and writes go for one deployment shape.
// Connect establishes (or wholesale replaces) every handle the topology
// needs; target resolution is only valid after a successful Connect.
type Topology interface {
	Connect(ctx context.Context) error
	WriteTarget(ctx context.Context) (Target, error)
	ReadTarget(ctx context.Context) (Target, error)
	Close() error
}

// Inspector is optionally implemented by topologies that can report
// deployment details after connecting (e.g. cluster state).
type Inspector interface {
	Inspect(ctx context.Context) (map[string]string, error)
}
