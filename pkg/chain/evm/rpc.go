// Copyright 2025 Meridian Protocol
//
// EVM RPC Capability Interface

// Package evm implements the EVM-side Validator and Operator: a block-range
// scanner that pairs Packet/WrapperLock logs into CanonicalTx values, an
// ECDSA certificate signer, and a receive_payload submitter with
// receipt-confirmation polling.
package evm

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// RPC is everything the scanner and submitter need from an EVM node,
// satisfied in production by *ethclient.Client.
type RPC interface {
	BlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	NetworkID(ctx context.Context) (*big.Int, error)
}
