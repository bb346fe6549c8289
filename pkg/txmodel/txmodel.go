// Copyright 2025 Meridian Protocol
//
// Canonical Cross-Chain Transaction Model

// Package txmodel defines CanonicalTx, the chain-agnostic transaction value
// that flows through both the voter and relayer pipelines.
package txmodel

import (
	"encoding/base64"
	"encoding/binary"
)

// Priority controls queue ordering. Lower numeric value drains first.
type Priority uint8

const (
	PriorityHigh   Priority = 0x00
	PriorityMedium Priority = 0x77
	PriorityLow    Priority = 0xFF
)

// Certificate is one validator's signature over a CanonicalTx's canonical
// message.
type Certificate struct {
	Signature string `json:"signature"`
	Signer    string `json:"signer"`
}

// CanonicalTx is the central entity passed between every component: the
// voter builds it from an observed lock event, signs it, and hands it to the
// sequencer; the relayer receives it back fully signed and drives it to
// finality on the destination chain.
type CanonicalTx struct {
	Priority  Priority `json:"priority"`
	Timestamp uint64   `json:"timestamp"`

	FromChainTxHash string `json:"from_chain_tx_hash"`
	FromChainID     uint32 `json:"from_chain_id"`
	FromAssetAddr   string `json:"from_asset_addr"`
	FromAddr        string `json:"from_addr"`

	ToChainID     uint32  `json:"to_chain_id"`
	ToAssetAddr   string  `json:"to_asset_addr"`
	ToAddr        string  `json:"to_addr"`
	ToChainTxHash *string `json:"to_chain_tx_hash,omitempty"`

	Payload string `json:"payload"` // base64 of the length-prefixed payload (pkg/codec)
	Nonce   string `json:"nonce"`   // decimal string

	Certificates []Certificate `json:"certificates"`

	Fee string `json:"fee"` // decimal string
}

// IsSigned reports whether at least one validator certificate is attached.
func (tx *CanonicalTx) IsSigned() bool {
	return len(tx.Certificates) > 0
}

// EthPayload base64-decodes Payload into the raw canonical payload bytes.
func (tx *CanonicalTx) EthPayload() ([]byte, error) {
	return base64.StdEncoding.DecodeString(tx.Payload)
}

// OrderKey is the lexicographic queue key:
//
//	priority || big-endian(timestamp) || from_chain_tx_hash
//
// Iterating any queue keyed by OrderKey yields priority-then-FIFO ordering.
func (tx *CanonicalTx) OrderKey() []byte {
	key := make([]byte, 0, 1+8+len(tx.FromChainTxHash))
	key = append(key, byte(tx.Priority))
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], tx.Timestamp)
	key = append(key, ts[:]...)
	key = append(key, []byte(tx.FromChainTxHash)...)
	return key
}

// SpeedupRequest is the body posted to the sequencer's speedup endpoint.
type SpeedupRequest struct {
	FromChainTxHash string `json:"fromChainTxHash"`
	SpeedUpHash     string `json:"speedUpHash"`
}
