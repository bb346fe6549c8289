// Copyright 2025 Meridian Protocol
//
// Bridge Event Decoding
// Packet and WrapperLock log decoding

package evm

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Event signatures the scanner filters for per block range.
var (
	packetSig       = crypto.Keccak256Hash([]byte("Packet(address,uint256,uint16,bytes,bytes)"))
	wrapperLockSig  = crypto.Keccak256Hash([]byte("WrapperLock(address,address,uint64,bytes,uint256,uint256)"))
	packetArgs      abi.Arguments
	wrapperLockArgs abi.Arguments
)

func init() {
	mustType := func(t string) abi.Type {
		ty, err := abi.NewType(t, "", nil)
		if err != nil {
			panic(err)
		}
		return ty
	}
	packetArgs = abi.Arguments{
		{Type: mustType("address")}, // sender (non-indexed on this event)
		{Type: mustType("uint256")}, // nonce
		{Type: mustType("uint16")},  // dst_chain_id
		{Type: mustType("bytes")},   // destination
		{Type: mustType("bytes")},   // payload
	}
	wrapperLockArgs = abi.Arguments{
		{Type: mustType("uint64")},  // to_chain_id
		{Type: mustType("bytes")},   // to_address
		{Type: mustType("uint256")}, // amount
		{Type: mustType("uint256")}, // fee
	}
}

// packetEvent is the decoded Packet(address,uint256,uint16,bytes,bytes) log.
type packetEvent struct {
	Sender      common.Address
	Nonce       *big.Int
	DstChainID  uint16
	Destination []byte
	Payload     []byte
}

func decodePacket(log types.Log) (*packetEvent, error) {
	if len(log.Topics) == 0 || log.Topics[0] != packetSig {
		return nil, fmt.Errorf("evm: log is not a Packet event")
	}
	vals, err := packetArgs.Unpack(log.Data)
	if err != nil {
		return nil, fmt.Errorf("evm: decode Packet: %w", err)
	}
	return &packetEvent{
		Sender:      vals[0].(common.Address),
		Nonce:       vals[1].(*big.Int),
		DstChainID:  vals[2].(uint16),
		Destination: vals[3].([]byte),
		Payload:     vals[4].([]byte),
	}, nil
}

// wrapperLockEvent is the decoded
// WrapperLock(address,address,uint64,bytes,uint256,uint256) log. Token and
// sender are indexed, so they're read off the topics.
type wrapperLockEvent struct {
	Token     common.Address
	Sender    common.Address
	ToChainID uint64
	ToAddress []byte
	Amount    *big.Int
	Fee       *big.Int
}

func decodeWrapperLock(log types.Log) (*wrapperLockEvent, error) {
	if len(log.Topics) == 0 || log.Topics[0] != wrapperLockSig {
		return nil, fmt.Errorf("evm: log is not a WrapperLock event")
	}
	if len(log.Topics) < 3 {
		return nil, fmt.Errorf("evm: WrapperLock log missing indexed topics")
	}
	vals, err := wrapperLockArgs.Unpack(log.Data)
	if err != nil {
		return nil, fmt.Errorf("evm: decode WrapperLock: %w", err)
	}
	return &wrapperLockEvent{
		Token:     common.BytesToAddress(log.Topics[1].Bytes()),
		Sender:    common.BytesToAddress(log.Topics[2].Bytes()),
		ToChainID: vals[0].(uint64),
		ToAddress: vals[1].([]byte),
		Amount:    vals[2].(*big.Int),
		Fee:       vals[3].(*big.Int),
	}, nil
}
