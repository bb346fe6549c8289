// Copyright 2025 Meridian Protocol
//
// Unit tests for bridge event decoding

package evm

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

func packLog(t *testing.T, sig common.Hash, topics []common.Hash, args interface{ Pack(...interface{}) ([]byte, error) }, values ...interface{}) types.Log {
	t.Helper()
	data, err := args.Pack(values...)
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	return types.Log{Topics: append([]common.Hash{sig}, topics...), Data: data}
}

func TestDecodePacketRoundTrip(t *testing.T) {
	sender := common.HexToAddress("0x1111111111111111111111111111111111111111")
	log := packLog(t, packetSig, nil, packetArgs, sender, big.NewInt(7), uint16(2), []byte("dest"), []byte("payload"))

	got, err := decodePacket(log)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Sender != sender || got.DstChainID != 2 || got.Nonce.Cmp(big.NewInt(7)) != 0 {
		t.Fatalf("got %+v", got)
	}
	if string(got.Destination) != "dest" || string(got.Payload) != "payload" {
		t.Fatalf("got %+v", got)
	}
}

func TestDecodePacketRejectsWrongSignature(t *testing.T) {
	log := types.Log{Topics: []common.Hash{wrapperLockSig}}
	if _, err := decodePacket(log); err == nil {
		t.Fatal("expected signature mismatch error")
	}
}

func TestDecodeWrapperLockRoundTrip(t *testing.T) {
	token := common.HexToAddress("0x2222222222222222222222222222222222222222")
	sender := common.HexToAddress("0x3333333333333333333333333333333333333333")
	topics := []common.Hash{common.BytesToHash(token.Bytes()), common.BytesToHash(sender.Bytes())}
	log := packLog(t, wrapperLockSig, topics, wrapperLockArgs, uint64(5), []byte("to"), big.NewInt(100), big.NewInt(1))

	got, err := decodeWrapperLock(log)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ToChainID != 5 || got.Amount.Cmp(big.NewInt(100)) != 0 || got.Fee.Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("got %+v", got)
	}
	if string(got.ToAddress) != "to" {
		t.Fatalf("got %+v", got)
	}
}

func TestDecodeWrapperLockMissingTopics(t *testing.T) {
	log := types.Log{Topics: []common.Hash{wrapperLockSig}}
	if _, err := decodeWrapperLock(log); err == nil {
		t.Fatal("expected missing-topics error")
	}
}
