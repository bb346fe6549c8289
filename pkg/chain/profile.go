// Copyright 2025 Meridian Protocol
//
// Per-Chain Profile
// Runtime constants handed to each adapter constructor

package chain

import "time"

// Profile holds the per-chain constants an adapter constructor needs:
// gas limits, start heights, window sizes, confirmation depth. Contract
// addresses are passed to the constructors separately.
// Passing this as a value instead of a compile-time constant set is what
// lets adapters be added at runtime.
type Profile struct {
	// IzarChainID is this system's internal bridge chain ID for the chain
	// (independent of the chain's own native chain ID).
	IzarChainID uint32

	// Name is a human-readable label used in logs ("sepolia", "izar-native").
	Name string

	// StartHeight is where a fresh cursor begins if none is persisted yet.
	StartHeight uint64

	// SteadyStateWindow is the block window size used once the scanner is
	// caught up.
	SteadyStateWindow uint64

	// FastSyncWindow is the block window size used while catching up (500).
	FastSyncWindow uint64

	// FastSyncSubWindow is the parallel sub-window fast-sync fans out into
	// (50).
	FastSyncSubWindow uint64

	// Confirmations is the number of confirmations required for finality on
	// this chain (EVM side; native-chain finality uses a retry count
	// instead, see pkg/chain/native).
	Confirmations int

	// GasLimit bounds the destination-chain receive_payload call (EVM only).
	GasLimit uint64

	// FeeRecordFloor is the minimum microcredits a newly observed record
	// must hold to be tracked as spendable (native-chain only).
	FeeRecordFloor uint64

	// PollInterval is how often the voter-side scanner, and the native
	// operator's fee-record scan, tick for this chain.
	PollInterval time.Duration
}

const (
	// MaxFastSyncWindow is the hard fast-sync limit: a window request
	// larger than this fails with ErrBadRange.
	MaxFastSyncWindow = 500
	// FastSyncSubWindow is the parallel fan-out granularity fast-sync uses.
	FastSyncSubWindow = 50
)
