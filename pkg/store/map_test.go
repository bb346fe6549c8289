// Copyright 2025 Meridian Protocol
//
// Unit tests for prefix-scoped maps

package store

import (
	"testing"

	"github.com/meridian-protocol/bridge/pkg/txmodel"
)

func TestMapPutGetDelete(t *testing.T) {
	engine := OpenMemDB()
	defer engine.Close()

	m := NewMap[txmodel.CanonicalTx](engine, PrefixExecute)
	tx := txmodel.CanonicalTx{FromChainTxHash: "0xabc", FromChainID: 1, ToChainID: 2}

	if err := m.Put([]byte("k1"), tx); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, ok, err := m.Get([]byte("k1"))
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got.FromChainTxHash != tx.FromChainTxHash {
		t.Fatalf("got %+v", got)
	}

	if err := m.Delete([]byte("k1")); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := m.Get([]byte("k1")); ok {
		t.Fatal("expected key to be gone after delete")
	}
}

func TestMapFirstReturnsLexicographicallySmallest(t *testing.T) {
	engine := OpenMemDB()
	defer engine.Close()

	m := NewMap[txmodel.CanonicalTx](engine, PrefixExecute)
	txs := []struct {
		key  string
		hash string
	}{
		{"b", "second"},
		{"a", "first"},
		{"c", "third"},
	}
	for _, e := range txs {
		if err := m.Put([]byte(e.key), txmodel.CanonicalTx{FromChainTxHash: e.hash}); err != nil {
			t.Fatalf("put %s: %v", e.key, err)
		}
	}

	entry, ok, err := m.First()
	if err != nil || !ok {
		t.Fatalf("first: ok=%v err=%v", ok, err)
	}
	if entry.Value.FromChainTxHash != "first" {
		t.Fatalf("want first, got %s", entry.Value.FromChainTxHash)
	}
}

func TestMapCountAndPrefixIsolation(t *testing.T) {
	engine := OpenMemDB()
	defer engine.Close()

	execute := NewMap[txmodel.CanonicalTx](engine, PrefixExecute)
	pending := NewMap[txmodel.CanonicalTx](engine, PrefixPending)

	for i := 0; i < 3; i++ {
		if err := execute.Put([]byte{byte(i)}, txmodel.CanonicalTx{}); err != nil {
			t.Fatalf("put: %v", err)
		}
	}
	if err := pending.Put([]byte{0}, txmodel.CanonicalTx{}); err != nil {
		t.Fatalf("put: %v", err)
	}

	n, err := execute.Count()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 3 {
		t.Fatalf("want 3, got %d", n)
	}
	n, err = pending.Count()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("want 1 (prefix isolation), got %d", n)
	}
}

func TestMapPutIsIdempotent(t *testing.T) {
	engine := OpenMemDB()
	defer engine.Close()

	m := NewMap[txmodel.CanonicalTx](engine, PrefixFinalize)
	key := []byte("0xsame")
	tx := txmodel.CanonicalTx{FromChainTxHash: "0xsame", FromChainID: 7}

	if err := m.Put(key, tx); err != nil {
		t.Fatalf("put 1: %v", err)
	}
	if err := m.Put(key, tx); err != nil {
		t.Fatalf("put 2: %v", err)
	}
	n, err := m.Count()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("replaying the same key must not duplicate entries, got %d", n)
	}
}
