// Copyright 2025 Meridian Protocol
//
// Unit tests for the length-prefixed byte codec

package codec

import (
	"math/big"
	"testing"
)

func TestVarBytesRoundTrip(t *testing.T) {
	cases := [][]byte{
		{},
		[]byte("short"),
		make([]byte, 0xFC),
		make([]byte, 0xFD),
		make([]byte, 0x10000+1),
	}
	for _, c := range cases {
		w := NewWriter()
		w.WriteVarBytes(c)
		r := NewReader(w.Bytes())
		got, err := r.ReadVarBytes()
		if err != nil {
			t.Fatalf("len %d: %v", len(c), err)
		}
		if len(got) != len(c) {
			t.Fatalf("len %d: got %d bytes back", len(c), len(got))
		}
	}
}

func TestU256RoundTrip(t *testing.T) {
	cases := []*big.Int{
		big.NewInt(0),
		big.NewInt(1),
		big.NewInt(1_000_000_000_000),
		new(big.Int).Lsh(big.NewInt(1), 255),
	}
	for _, n := range cases {
		w := NewWriter()
		w.WriteU256(n)
		r := NewReader(w.Bytes())
		got, err := r.ReadU256()
		if err != nil {
			t.Fatalf("%s: %v", n, err)
		}
		if got.Cmp(n) != 0 {
			t.Fatalf("want %s, got %s", n, got)
		}
	}
}

func TestVarintBoundaries(t *testing.T) {
	cases := []uint64{
		0, 1, 0xFC, 0xFD, 0xFFFE, 0xFFFF,
		0x10000, 0xFFFF_FFFE, 0xFFFF_FFFF,
		0x1_0000_0000, 1<<64 - 1,
	}
	for _, n := range cases {
		w := NewWriter()
		w.writeVarint(n)
		r := NewReader(w.Bytes())
		got, err := r.readVarint()
		if err != nil {
			t.Fatalf("%#x: %v", n, err)
		}
		if got != n {
			t.Fatalf("want %#x, got %#x", n, got)
		}
		if r.offset != len(w.Bytes()) {
			t.Fatalf("%#x: cursor at %d of %d", n, r.offset, len(w.Bytes()))
		}
	}
}

func TestReadVarBytesUnderflow(t *testing.T) {
	r := NewReader([]byte{0xFD, 0x10, 0x00}) // claims 16 bytes follow, none present
	if _, err := r.ReadVarBytes(); err == nil {
		t.Fatal("expected underflow error")
	}
}
