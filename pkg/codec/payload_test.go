// Copyright 2025 Meridian Protocol
//
// Unit tests for canonical payload encoding

package codec

import (
	"math/big"
	"testing"
)

func TestPayloadRoundTrip(t *testing.T) {
	want := struct {
		asset, addr string
		amount      *big.Int
	}{
		"0xa5A5dC4A6F869e279AC32b1925d2605a96289859",
		"0x5CB1fA08AAAF49A9d3C80af80AF177b3035083E0",
		big.NewInt(100),
	}

	raw := EncodePayload(want.asset, want.addr, want.amount)
	got, err := DecodePayload(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ToAssetAddr != want.asset || got.ToAddr != want.addr {
		t.Fatalf("got %+v", got)
	}
	if got.Amount.Cmp(want.amount) != 0 {
		t.Fatalf("amount: want %s got %s", want.amount, got.Amount)
	}
}

func TestDecodePayloadRejectsInvalidUTF8(t *testing.T) {
	w := NewWriter()
	w.WriteVarBytes([]byte{0xFF, 0xFE}) // not valid UTF-8
	w.WriteVarBytes([]byte("addr"))
	w.WriteU256(big.NewInt(1))

	if _, err := DecodePayload(w.Bytes()); err == nil {
		t.Fatal("expected invalid utf8 error")
	}
}
