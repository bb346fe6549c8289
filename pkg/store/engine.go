// Copyright 2025 Meridian Protocol
//
// Embedded KV Engine
// goleveldb in production, memdb in tests

// Package store implements typed, prefix-partitioned key-value maps over a
// single embedded ordered KV engine. Every voter/relayer queue (unconfirmed,
// speedup, execute, pending, finalize, per-chain cursors, unspent fee
// records) is a Map scoped to its own prefix over the same shared Engine.
package store

import (
	dbm "github.com/cometbft/cometbft-db"
)

// Engine is the process-wide KV handle. It is opened once and shared by
// every Map via prefixing. It is an explicitly-passed value, never a hidden
// package-level global, so tests can open their own in-memory instance.
type Engine struct {
	db dbm.DB
}

// OpenGoLevelDB opens (or creates) a goleveldb-backed engine rooted at dir.
// This is the production backend: an LSM tree with prefix iteration and
// atomic write batches.
func OpenGoLevelDB(name, dir string) (*Engine, error) {
	db, err := dbm.NewGoLevelDB(name, dir)
	if err != nil {
		return nil, wrapErr("open_goleveldb", err)
	}
	return &Engine{db: db}, nil
}

// OpenMemDB opens an in-memory engine. Intended for tests: no hidden global
// initialization, no files touched.
func OpenMemDB() *Engine {
	return &Engine{db: dbm.NewMemDB()}
}

// Close releases the underlying engine handle.
func (e *Engine) Close() error {
	return wrapErr("close", e.db.Close())
}

// DB exposes the raw handle for components that need it directly. Prefer
// Map for anything that belongs to one of the named prefixes.
func (e *Engine) DB() dbm.DB {
	return e.db
}
