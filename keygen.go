package kvload

import (
	"fmt"
	"math/rand"
)

const alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Pool is a bounded integer-indexed key namespace. Keys format as
// "<prefix>:<n>" with n drawn uniformly from the closed range [Min, Max].
// Pools never grow; the bound is what gives the workload cache locality.
type Pool struct {
	Prefix string
	Min    int
	Max    int
}

// Key draws one key from the pool.
func (p Pool) Key(rng *rand.Rand) string {
	return fmt.Sprintf("%s:%d", p.Prefix, p.Min+rng.Intn(p.Max-p.Min+1))
}

// ValueGen produces random alphanumeric payloads. It is stateless apart
// from its random source and never talks to the store.
type ValueGen struct {
	rng      *rand.Rand
	valueLen int
	fieldLen int
}

// NewValueGen builds a generator for the configured payload lengths.
func NewValueGen(cfg Config, rng *rand.Rand) *ValueGen {
	return &ValueGen{
		rng:      rng,
		valueLen: cfg.ValueLength,
		fieldLen: cfg.HashFieldLength,
	}
}

// Value returns a fresh random payload.
func (g *ValueGen) Value() string { return randString(g.rng, g.valueLen) }

// Field returns a fresh random hash field name.
func (g *ValueGen) Field() string { return randString(g.rng, g.fieldLen) }

func randString(rng *rand.Rand, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = alphanumeric[rng.Intn(len(alphanumeric))]
	}
	return string(b)
}
