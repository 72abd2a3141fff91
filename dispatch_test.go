package kvload

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/suyash-sneo/kvload/internal/fakeconn"
	"github.com/suyash-sneo/kvload/topo"
)

func newTestDispatcher() *Dispatcher {
	cfg := DefaultConfig()
	return NewDispatcher(cfg, NewValueGen(cfg, rand.New(rand.NewSource(1))))
}

func TestDispatchRoutesSubtypes(t *testing.T) {
	cases := []struct {
		subtype Subtype
		kind    OpKind
		key     string
		wantOp  string
	}{
		{WriteSetWithTTL, OpWrite, "key:1", "set"},
		{WriteIncr, OpWrite, "counter:1", "incr"},
		{WriteListPushTrim, OpWrite, "list:1", "lpushtrim"},
		{WriteSetAdd, OpWrite, "set:1", "sadd"},
		{WriteHashSet, OpWrite, "hash:1", "hset"},
		{ReadGet, OpRead, "key:1", "get"},
		{ReadExists, OpRead, "key:1", "exists"},
		{ReadListRange, OpRead, "list:1", "lrange"},
		{ReadSetMembers, OpRead, "set:1", "smembers"},
		{ReadHashGetAll, OpRead, "hash:1", "hgetall"},
	}

	d := newTestDispatcher()
	for _, tc := range cases {
		conn := fakeconn.NewConn()
		target := topo.Target{Addr: "fake:0", Role: topo.RoleAny, Conn: conn}
		spec := OperationSpec{Kind: tc.kind, Subtype: tc.subtype, Key: tc.key}
		if err := d.Dispatch(context.Background(), spec, target); err != nil {
			t.Fatalf("%s: dispatch failed: %v", tc.subtype, err)
		}
		calls := conn.Calls()
		if len(calls) != 1 || calls[0].Op != tc.wantOp || calls[0].Key != tc.key {
			t.Fatalf("%s: unexpected calls %+v", tc.subtype, calls)
		}
	}
}

func TestDispatchWrapsStoreFailures(t *testing.T) {
	d := newTestDispatcher()
	conn := fakeconn.NewConn()
	conn.FailNext(1, errors.New("broken pipe"))
	target := topo.Target{Addr: "fake:0", Role: topo.RolePrimary, Conn: conn}

	err := d.Dispatch(context.Background(), OperationSpec{Kind: OpWrite, Subtype: WriteIncr, Key: "counter:7"}, target)
	var oe *OpError
	if !errors.As(err, &oe) {
		t.Fatalf("expected OpError, got %v", err)
	}
	if oe.Stage != StageExecute || oe.Subtype != WriteIncr || oe.Addr != "fake:0" {
		t.Fatalf("unexpected OpError fields: %+v", oe)
	}
}

func TestDispatchUnknownSubtypeIsUnexpected(t *testing.T) {
	d := newTestDispatcher()
	target := topo.Target{Addr: "fake:0", Conn: fakeconn.NewConn()}

	err := d.Dispatch(context.Background(), OperationSpec{Kind: OpWrite, Subtype: "flush-all", Key: "key:1"}, target)
	if err == nil {
		t.Fatalf("expected error for unknown subtype")
	}
	if classify(err) != classUnexpected {
		t.Fatalf("unknown subtype should classify as unexpected, got %v", err)
	}
}

func TestDispatchListPushTrimBoundsList(t *testing.T) {
	cfg := DefaultConfig()
	d := NewDispatcher(cfg, NewValueGen(cfg, rand.New(rand.NewSource(1))))
	conn := fakeconn.NewConn()
	target := topo.Target{Addr: "fake:0", Conn: conn}

	spec := OperationSpec{Kind: OpWrite, Subtype: WriteListPushTrim, Key: "list:3"}
	for i := 0; i < 150; i++ {
		if err := d.Dispatch(context.Background(), spec, target); err != nil {
			t.Fatalf("push %d failed: %v", i, err)
		}
	}
	if n := conn.ListLen("list:3"); n > 100 {
		t.Fatalf("list grew past trim bound: %d", n)
	}
}
