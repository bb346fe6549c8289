// Copyright 2025 Meridian Protocol
//
// Native-Chain RPC Capability Interface

// Package native implements the non-EVM Validator and Operator: a
// field-element-addressed chain whose bridge program emits cross_public and
// speed_up_eth transitions, and whose relayer submits receive_payload by
// slotting certificate signatures into a fixed keeper array.
package native

import (
	"context"
	"math/big"
)

// TransitionKind distinguishes the two bridge program transitions this
// adapter cares about.
type TransitionKind int

const (
	// KindCrossPublic is an outbound transfer: funds locked on this chain,
	// destined for another chain.
	KindCrossPublic TransitionKind = iota
	// KindSpeedUp records a user's request to bump priority on an
	// already-submitted transfer, identified by its source-chain (EVM) tx
	// hash.
	KindSpeedUp
)

// Transition is a decoded bridge-program transition, already stripped of
// chain-specific plaintext/field encoding. Decoding raw block data into this
// shape is RPC's job, not this package's: the field-element <-> canonical
// address conversion lives in pkg/codec.
type Transition struct {
	Kind          TransitionKind
	TxID          string
	FromAddr      string
	FromAssetAddr string

	// Populated when Kind == KindCrossPublic.
	ToChainID   uint32
	ToAssetAddr [32]byte // raw field-element bytes, little-endian
	ToAddr      [32]byte
	Amount      *big.Int
	Fee         *big.Int

	// Populated when Kind == KindSpeedUp: the two little-endian u128 limbs
	// the bridge program splits a 32-byte EVM tx hash into.
	SpeedupHashLo *big.Int
	SpeedupHashHi *big.Int
}

// FeeRecord is an unspent native-asset record this chain's operator wallet
// can spend as a transaction fee.
type FeeRecord struct {
	ID           string
	Microcredits uint64
}

// RPC is everything the native-chain adapters need from a node: block
// fetch, keeper-set lookup, and program execution.
type RPC interface {
	LatestHeight(ctx context.Context) (uint64, error)
	GetTransitions(ctx context.Context, start, end uint64) ([]Transition, error)

	// Keepers returns the protocol contract's current keeper address list,
	// in slot order. InvalidValidator marks an empty slot.
	Keepers(ctx context.Context) ([]string, error)

	// SpendableRecords scans blocks [start, end) for this wallet's fee
	// records, returning the ids of records spent and the records received.
	SpendableRecords(ctx context.Context, start, end uint64) (spent []string, received []FeeRecord, err error)

	// SubmitReceivePayload executes the receive_payload program call with
	// the keeper-slotted signature array and returns the resulting tx id.
	SubmitReceivePayload(ctx context.Context, signatures, keepers []string, payload string, feeRecord string) (string, error)

	// TransactionStatus reports whether txID has finalized, rejected, or is
	// still pending.
	TransactionStatus(ctx context.Context, txID string) (Status, error)
}

// Status is the raw outcome the RPC layer reports for a submitted tx id,
// translated into chain.TransactionStatus by PendingTx.
type Status int

const (
	StatusPending Status = iota
	StatusAccepted
	StatusRejected
)
