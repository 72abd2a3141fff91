// Package kvload is a rate-controlled load generator for key/value stores
// deployed under cluster, sentinel-failover or static primary/replica
// topologies. The engine is topology-agnostic: it consumes a topo.Topology
// and drives a single cooperative dispatch loop against it.
package kvload

// OpKind classifies an operation as a read or a write.
type OpKind string

const (
	OpRead  OpKind = "read"
	OpWrite OpKind = "write"
)

// Subtype names one concrete store command shape.
type Subtype string

const (
	WriteSetWithTTL   Subtype = "set-with-ttl"
	WriteIncr         Subtype = "incr"
	WriteListPushTrim Subtype = "list-push-trim"
	WriteSetAdd       Subtype = "set-add"
	WriteHashSet      Subtype = "hash-set"

	ReadGet        Subtype = "get"
	ReadExists     Subtype = "exists"
	ReadListRange  Subtype = "list-range"
	ReadSetMembers Subtype = "set-members"
	ReadHashGetAll Subtype = "hash-getall"
)

// OperationSpec describes one tick's operation before dispatch.
type OperationSpec struct {
	Kind    OpKind
	Subtype Subtype
	Key     string
}

// State tracks the generator lifecycle.
type State int32

const (
	StateStarting State = iota
	StateRunning
	StateTerminating
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateTerminating:
		return "terminating"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Logger is a lightweight structured logger interface.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Field holds a structured logging field.
type Field struct {
	Key   string
	Value interface{}
}

// Metrics records counters and gauges.
type Metrics interface {
	IncCounter(name string, value float64, labels ...Label)
	SetGauge(name string, value float64, labels ...Label)
}

// Label is a simple name/value pair for metrics.
type Label struct {
	Name  string
	Value string
}

type nopLogger struct{}

// NopLogger returns a no-op logger implementation.
func NopLogger() Logger { return nopLogger{} }

func (nopLogger) Debug(string, ...Field) {}
func (nopLogger) Info(string, ...Field)  {}
func (nopLogger) Warn(string, ...Field)  {}
func (nopLogger) Error(string, ...Field) {}

type nopMetrics struct{}

// NopMetrics returns a no-op metrics recorder.
func NopMetrics() Metrics { return nopMetrics{} }

func (nopMetrics) IncCounter(string, float64, ...Label) {}
func (nopMetrics) SetGauge(string, float64, ...Label)   {}
