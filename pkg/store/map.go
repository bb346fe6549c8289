// Copyright 2025 Meridian Protocol
//
// Typed Prefix-Scoped KV Maps
// Get/Put/Delete/Take, ordered prefix iteration and atomic batches over the shared engine

package store

import (
	"bytes"
	"encoding/json"

	dbm "github.com/cometbft/cometbft-db"
)

// Map is a typed view over one key prefix of a shared Engine. Keys are
// caller-supplied raw bytes (an order_key, a from_chain_tx_hash, a chain ID)
// concatenated onto the prefix; values are JSON-serialized V. Map values are
// cheap to construct: every adapter/orchestrator just opens the prefixes it
// owns against the same Engine.
type Map[V any] struct {
	engine *Engine
	prefix []byte
}

// NewMap scopes a Map to prefix over engine.
func NewMap[V any](engine *Engine, prefix string) *Map[V] {
	return &Map[V]{engine: engine, prefix: []byte(prefix)}
}

func (m *Map[V]) rawKey(key []byte) []byte {
	out := make([]byte, 0, len(m.prefix)+len(key))
	out = append(out, m.prefix...)
	out = append(out, key...)
	return out
}

// Get fetches the value stored under key, or (zero, false, nil) if absent.
func (m *Map[V]) Get(key []byte) (V, bool, error) {
	var zero V
	raw, err := m.engine.db.Get(m.rawKey(key))
	if err != nil {
		return zero, false, wrapErr("get", err)
	}
	if raw == nil {
		return zero, false, nil
	}
	var v V
	if err := json.Unmarshal(raw, &v); err != nil {
		return zero, false, wrapErr("get.unmarshal", err)
	}
	return v, true, nil
}

// Contains reports whether key is present, without deserializing the value.
func (m *Map[V]) Contains(key []byte) (bool, error) {
	has, err := m.engine.db.Has(m.rawKey(key))
	if err != nil {
		return false, wrapErr("contains", err)
	}
	return has, nil
}

// Put durably writes key -> value.
func (m *Map[V]) Put(key []byte, value V) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return wrapErr("put.marshal", err)
	}
	if err := m.engine.db.SetSync(m.rawKey(key), raw); err != nil {
		return wrapErr("put", err)
	}
	return nil
}

// Delete removes key, if present.
func (m *Map[V]) Delete(key []byte) error {
	if err := m.engine.db.DeleteSync(m.rawKey(key)); err != nil {
		return wrapErr("delete", err)
	}
	return nil
}

// Take fetches and deletes key in one call. ok is false if key was absent.
func (m *Map[V]) Take(key []byte) (value V, ok bool, err error) {
	value, ok, err = m.Get(key)
	if err != nil || !ok {
		return value, ok, err
	}
	if err := m.Delete(key); err != nil {
		return value, false, err
	}
	return value, true, nil
}

// Entry is one (key, value) pair returned by iteration, with the prefix
// already stripped from Key.
type Entry[V any] struct {
	Key   []byte
	Value V
}

// prefixRange computes the [start, end) byte range covering every key with
// the given prefix, for use with the engine's ordered Iterator.
func prefixRange(prefix []byte) (start, end []byte) {
	start = prefix
	end = make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xFF {
			end[i]++
			return start, end[:i+1]
		}
	}
	// prefix is all 0xFF bytes: no finite upper bound, iterate to the end
	// of the keyspace.
	return start, nil
}

// All returns every entry in the prefix, ordered lexicographically by Key.
// This is the ordering every queue depends on: priority then timestamp then
// tx hash, because OrderKey is built to sort that way.
func (m *Map[V]) All() ([]Entry[V], error) {
	start, end := prefixRange(m.prefix)
	it, err := m.engine.db.Iterator(start, end)
	if err != nil {
		return nil, wrapErr("all.iterator", err)
	}
	defer it.Close()

	var out []Entry[V]
	for ; it.Valid(); it.Next() {
		k := it.Key()
		if !bytes.HasPrefix(k, m.prefix) {
			continue
		}
		var v V
		if err := json.Unmarshal(it.Value(), &v); err != nil {
			return nil, wrapErr("all.unmarshal", err)
		}
		out = append(out, Entry[V]{Key: append([]byte(nil), k[len(m.prefix):]...), Value: v})
	}
	if err := it.Error(); err != nil {
		return nil, wrapErr("all.iterator", err)
	}
	return out, nil
}

// Count returns the number of entries in the prefix, for queue-depth
// reporting.
func (m *Map[V]) Count() (int, error) {
	start, end := prefixRange(m.prefix)
	it, err := m.engine.db.Iterator(start, end)
	if err != nil {
		return 0, wrapErr("count.iterator", err)
	}
	defer it.Close()

	n := 0
	for ; it.Valid(); it.Next() {
		if !bytes.HasPrefix(it.Key(), m.prefix) {
			continue
		}
		n++
	}
	if err := it.Error(); err != nil {
		return 0, wrapErr("count.iterator", err)
	}
	return n, nil
}

// First returns the smallest-keyed entry in the prefix, or ok=false if the
// prefix is empty. This is what execute_handler and pending_checker peek at
// on every tick.
func (m *Map[V]) First() (entry Entry[V], ok bool, err error) {
	start, end := prefixRange(m.prefix)
	it, err := m.engine.db.Iterator(start, end)
	if err != nil {
		return entry, false, wrapErr("first.iterator", err)
	}
	defer it.Close()

	if !it.Valid() {
		return entry, false, it.Error()
	}
	k := it.Key()
	if !bytes.HasPrefix(k, m.prefix) {
		return entry, false, nil
	}
	var v V
	if err := json.Unmarshal(it.Value(), &v); err != nil {
		return entry, false, wrapErr("first.unmarshal", err)
	}
	return Entry[V]{Key: append([]byte(nil), k[len(m.prefix):]...), Value: v}, true, nil
}

// Batch accumulates writes/deletes across one or more Maps sharing the same
// Engine, committed atomically by AtomicBatch.
type Batch struct {
	raw dbm.Batch
}

// WriteAppend stages key -> value for atomic commit.
func (m *Map[V]) WriteAppend(b *Batch, key []byte, value V) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return wrapErr("write_append.marshal", err)
	}
	if err := b.raw.Set(m.rawKey(key), raw); err != nil {
		return wrapErr("write_append", err)
	}
	return nil
}

// DeleteAppend stages the removal of key for atomic commit.
func (m *Map[V]) DeleteAppend(b *Batch, key []byte) error {
	if err := b.raw.Delete(m.rawKey(key)); err != nil {
		return wrapErr("delete_append", err)
	}
	return nil
}

// AtomicBatch runs fn against a fresh write-batch handle and commits it
// atomically; fn stages writes/deletes via Map.WriteAppend/DeleteAppend.
func (e *Engine) AtomicBatch(fn func(b *Batch) error) error {
	raw := e.db.NewBatch()
	defer raw.Close()

	b := &Batch{raw: raw}
	if err := fn(b); err != nil {
		return err
	}
	if err := raw.WriteSync(); err != nil {
		return wrapErr("atomic_batch.commit", err)
	}
	return nil
}
