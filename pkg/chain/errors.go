// Copyright 2025 Meridian Protocol
//
// Chain Error Types

// Package chain defines the chain-polymorphism contracts shared by the voter
// and relayer pipelines: the Validator/Operator interfaces each concrete
// adapter implements, and the runtime registry that maps bridge chain IDs to
// adapters.
package chain

import "errors"

// ErrNoAdapter is returned when a CanonicalTx names a chain ID with no
// registered adapter: the deployment is missing a chain, not corrupt.
var ErrNoAdapter = errors.New("chain: no adapter registered for chain id")

// ErrBadRange is returned when a fast-sync window request exceeds the fixed
// 500-block limit.
var ErrBadRange = errors.New("chain: requested block range exceeds fast-sync limit")
