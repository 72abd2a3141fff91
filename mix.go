package kvload

import (
	"math/rand"
)

var writeSubtypes = []Subtype{
	WriteSetWithTTL,
	WriteIncr,
	WriteListPushTrim,
	WriteSetAdd,
	WriteHashSet,
}

var readSubtypes = []Subtype{
	ReadGet,
	ReadExists,
	ReadListRange,
	ReadSetMembers,
	ReadHashGetAll,
}

// Mix selects the next operation per tick: a uniform draw in [1,100]
// against the read ratio decides the kind, then a subtype is drawn
// uniformly from the matching 5-element set. Each subtype maps to a fixed
// key pool so reads have a chance of hitting recently written keys.
type Mix struct {
	readRatio int
	rng       *rand.Rand

	primary  Pool
	counters Pool
	lists    Pool
	sets     Pool
	hashes   Pool
}

// NewMix builds a selector with pools sized from the config.
func NewMix(cfg Config, rng *rand.Rand) *Mix {
	return &Mix{
		readRatio: cfg.ReadRatio,
		rng:       rng,
		primary:   Pool{Prefix: "key", Min: 1, Max: cfg.PrimaryKeys},
		counters:  Pool{Prefix: "counter", Min: 1, Max: cfg.CounterKeys},
		lists:     Pool{Prefix: "list", Min: 1, Max: cfg.CollectionKeys},
		sets:      Pool{Prefix: "set", Min: 1, Max: cfg.CollectionKeys},
		hashes:    Pool{Prefix: "hash", Min: 1, Max: cfg.CollectionKeys},
	}
}

// Next draws the kind, subtype and key for one tick.
func (m *Mix) Next() OperationSpec {
	var kind OpKind
	var subtype Subtype
	if m.rng.Intn(100)+1 <= m.readRatio {
		kind = OpRead
		subtype = readSubtypes[m.rng.Intn(len(readSubtypes))]
	} else {
		kind = OpWrite
		subtype = writeSubtypes[m.rng.Intn(len(writeSubtypes))]
	}
	return OperationSpec{
		Kind:    kind,
		Subtype: subtype,
		Key:     m.poolFor(subtype).Key(m.rng),
	}
}

// poolFor maps a subtype to its key pool. Reads mirror the write mapping.
func (m *Mix) poolFor(subtype Subtype) Pool {
	switch subtype {
	case WriteIncr:
		return m.counters
	case WriteListPushTrim, ReadListRange:
		return m.lists
	case WriteSetAdd, ReadSetMembers:
		return m.sets
	case WriteHashSet, ReadHashGetAll:
		return m.hashes
	default:
		return m.primary
	}
}
