// Copyright 2025 Meridian Protocol
//
// Canonical Transfer Payload
// Encode/decode of the payload bytes every validator signs over

package codec

import (
	"math/big"
	"unicode/utf8"
)

// PayloadParts is the decoded form of a canonical cross-chain transfer
// payload: the destination asset address, the destination recipient
// address, and the transfer amount.
type PayloadParts struct {
	ToAssetAddr string
	ToAddr      string
	Amount      *big.Int
}

// EncodePayload builds the canonical payload bytes:
//
//	var_bytes(to_asset_addr_utf8) || var_bytes(to_addr_utf8) || u256_le(amount)
//
// This is exactly what ends up base64-encoded in CanonicalTx.Payload, and is
// the message both the source lock event and the destination receive call
// agree on.
func EncodePayload(toAssetAddr, toAddr string, amount *big.Int) []byte {
	w := NewWriter()
	w.WriteVarBytes([]byte(toAssetAddr))
	w.WriteVarBytes([]byte(toAddr))
	w.WriteU256(amount)
	return w.Bytes()
}

// DecodePayload reverses EncodePayload.
func DecodePayload(payload []byte) (*PayloadParts, error) {
	r := NewReader(payload)

	assetBytes, err := r.ReadVarBytes()
	if err != nil {
		return nil, newErr("decode_payload.to_asset_addr", err)
	}
	if !utf8.Valid(assetBytes) {
		return nil, newErr("decode_payload.to_asset_addr", ErrInvalidUTF8)
	}

	addrBytes, err := r.ReadVarBytes()
	if err != nil {
		return nil, newErr("decode_payload.to_addr", err)
	}
	if !utf8.Valid(addrBytes) {
		return nil, newErr("decode_payload.to_addr", ErrInvalidUTF8)
	}

	amount, err := r.ReadU256()
	if err != nil {
		return nil, newErr("decode_payload.amount", err)
	}

	return &PayloadParts{
		ToAssetAddr: string(assetBytes),
		ToAddr:      string(addrBytes),
		Amount:      amount,
	}, nil
}
