// Copyright 2025 Meridian Protocol
//
// Unit tests for the EVM address and hash codecs

package codec

import (
	"math/big"
	"testing"
)

func TestEVMAddressFieldRoundTrip(t *testing.T) {
	var addr [20]byte
	for i := range addr {
		addr[i] = byte(i + 1)
	}

	el, err := EVMAddressToField(addr)
	if err != nil {
		t.Fatalf("to field: %v", err)
	}
	back, err := FieldToEVMAddress(el)
	if err != nil {
		t.Fatalf("from field: %v", err)
	}
	if back != addr {
		t.Fatalf("want %x got %x", addr, back)
	}
}

func TestFieldBytesToEVMAddress(t *testing.T) {
	var addr [20]byte
	for i := range addr {
		addr[i] = byte(0x10 + i)
	}
	el, err := EVMAddressToField(addr)
	if err != nil {
		t.Fatalf("to field: %v", err)
	}

	// el's canonical little-endian wire form, as it would appear on a raw
	// transition input.
	be := el.Bytes()
	var wire [32]byte
	copy(wire[:], reverse(be[:]))

	got, err := FieldBytesToEVMAddress(wire)
	if err != nil {
		t.Fatalf("field bytes to address: %v", err)
	}
	want := FormatEVMAddress(addr)
	if got != want {
		t.Fatalf("want %s got %s", want, got)
	}
}

func TestEVMHashLimbsRoundTrip(t *testing.T) {
	var hash [32]byte
	for i := range hash {
		hash[i] = byte(i * 3)
	}
	lo, hi := EVMHashToLimbs(hash)
	back, err := LimbsToEVMHash(lo, hi)
	if err != nil {
		t.Fatalf("limbs to hash: %v", err)
	}
	if back != hash {
		t.Fatalf("want %x got %x", hash, back)
	}
}

func TestLimbsToEVMHashOverflow(t *testing.T) {
	huge := new(big.Int).Lsh(big.NewInt(1), 200)
	if _, err := LimbsToEVMHash(huge, big.NewInt(0)); err == nil {
		t.Fatal("expected overflow error")
	}
}
