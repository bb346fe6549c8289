// Copyright 2025 Meridian Protocol
//
// Chain Adapter Registry
// Validator/Operator contracts and runtime chain-id dispatch

package chain

import (
	"context"

	"github.com/meridian-protocol/bridge/pkg/txmodel"
)

// Validator is the voter-side contract: advance this chain's cursor, and
// sign a CanonicalTx destined for this chain.
type Validator interface {
	// Sync advances the adapter's persisted cursor by scanning new blocks
	// for bridge events, inserting each decoded CanonicalTx into the
	// unconfirmed queue. Idempotent: replaying the same range overwrites
	// identical values under the same key.
	Sync(ctx context.Context) error

	// Sign produces this chain's signature over tx's canonical message.
	Sign(ctx context.Context, tx txmodel.CanonicalTx) (txmodel.Certificate, error)

	// Profile returns this adapter's chain profile.
	Profile() Profile
}

// Operator is the relayer-side contract: submit a signed CanonicalTx to this
// chain, and produce a handle that can be polled to finality.
type Operator interface {
	// Execute submits the receive-payload transaction for tx on this chain,
	// populating and returning tx with ToChainTxHash set.
	Execute(ctx context.Context, tx txmodel.CanonicalTx) (txmodel.CanonicalTx, error)

	// Pending returns a handle for polling tx (which must already have
	// ToChainTxHash set) to finality.
	Pending(tx txmodel.CanonicalTx) (PendingTx, error)

	// Profile returns this adapter's chain profile.
	Profile() Profile
}

// PendingTx is the destination-chain-specific "is this final yet?" handle.
// Checking blocks until a terminal TransactionStatus is reached.
type PendingTx interface {
	Checking(ctx context.Context) TransactionStatus
}

// StatusCode mirrors the {code, result} shape the relayer PATCHes to the
// sequencer.
type StatusCode int

const (
	StatusSuccess        StatusCode = 1
	StatusNotBroadcasted StatusCode = 2
	StatusRejected       StatusCode = 3
)

// TransactionStatus is the outcome of a pending-tx finality check.
type TransactionStatus struct {
	Code   StatusCode `json:"code"`
	Result string     `json:"result"`
}

// Registry maps a bridge chain ID to its registered adapters. A chain may
// register a Validator, an Operator, or both, depending on whether this
// process is running the voter role, the relayer role, or (in tests) both.
type Registry struct {
	validators map[uint32]Validator
	operators  map[uint32]Operator
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		validators: make(map[uint32]Validator),
		operators:  make(map[uint32]Operator),
	}
}

// RegisterValidator adds (or replaces) the Validator for chainID.
func (r *Registry) RegisterValidator(chainID uint32, v Validator) {
	r.validators[chainID] = v
}

// RegisterOperator adds (or replaces) the Operator for chainID.
func (r *Registry) RegisterOperator(chainID uint32, op Operator) {
	r.operators[chainID] = op
}

// Validator returns the registered Validator for chainID, or ErrNoAdapter.
func (r *Registry) Validator(chainID uint32) (Validator, error) {
	v, ok := r.validators[chainID]
	if !ok {
		return nil, ErrNoAdapter
	}
	return v, nil
}

// Operator returns the registered Operator for chainID, or ErrNoAdapter.
func (r *Registry) Operator(chainID uint32) (Operator, error) {
	op, ok := r.operators[chainID]
	if !ok {
		return nil, ErrNoAdapter
	}
	return op, nil
}

// Validators returns every registered chain ID -> Validator pair. Used by
// the voter orchestrator to drive each chain's scan loop.
func (r *Registry) Validators() map[uint32]Validator {
	return r.validators
}
