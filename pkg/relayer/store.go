// Copyright 2025 Meridian Protocol
//
// Relayer Queue Store

package relayer

import (
	"github.com/meridian-protocol/bridge/pkg/store"
	"github.com/meridian-protocol/bridge/pkg/txmodel"
)

// Store is the relayer's three queues, each a view over the shared engine:
// execute (newly ingested, awaiting destination submission), pending
// (submitted, awaiting finality), and finalize (terminal, keyed by
// from_chain_tx_hash so a re-ingested tx can be recognized as already done).
type Store struct {
	execute  *store.Map[txmodel.CanonicalTx]
	pending  *store.Map[txmodel.CanonicalTx]
	finalize *store.Map[txmodel.CanonicalTx]
}

// NewStore opens the three relayer queues against engine.
func NewStore(engine *store.Engine) *Store {
	return &Store{
		execute:  store.NewMap[txmodel.CanonicalTx](engine, store.PrefixExecute),
		pending:  store.NewMap[txmodel.CanonicalTx](engine, store.PrefixPending),
		finalize: store.NewMap[txmodel.CanonicalTx](engine, store.PrefixFinalize),
	}
}
