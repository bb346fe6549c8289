// Copyright 2025 Meridian Protocol
//
// EVM Address and Hash Codecs
// Field-element and u128-limb conversions for cross-chain address transport

package codec

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// EVMAddressToField packs a 20-byte EVM address into a field element,
// zero-padded to the field's width and read little-endian. This is the
// representation the native-chain side of a receive_payload call expects
// for "the other chain's address" when that other chain is EVM.
func EVMAddressToField(addr [20]byte) (fr.Element, error) {
	var padded [32]byte
	copy(padded[:20], addr[:])
	// fr.Element.SetBytes expects a big-endian encoding; our wire format is
	// little-endian, so reverse before handing it to the field type.
	var be [32]byte
	for i, b := range padded {
		be[31-i] = b
	}
	var el fr.Element
	el.SetBytes(be[:])

	var check big.Int
	el.BigInt(&check)
	var want big.Int
	want.SetBytes(reverse(padded[:]))
	if check.Cmp(&want) != 0 {
		return fr.Element{}, newErr("evm_address_to_field", ErrFieldOverflow)
	}
	return el, nil
}

// FieldToEVMAddress reverses EVMAddressToField, taking the low 20 bytes of
// the field element's little-endian byte representation.
func FieldToEVMAddress(el fr.Element) ([20]byte, error) {
	be := el.Bytes() // canonical big-endian form
	le := reverse(be[:])
	var out [20]byte
	copy(out[:], le[:20])
	// Anything above the 20-byte address window must be zero: a non-zero
	// high limb means this field element never came from EVMAddressToField.
	for _, b := range le[20:] {
		if b != 0 {
			return [20]byte{}, newErr("field_to_evm_address", ErrFieldOverflow)
		}
	}
	return out, nil
}

// FieldBytesToEVMAddress decodes a raw little-endian 32-byte field-element
// encoding (as read directly off a native-chain transition input) into its
// canonical "0x"-prefixed EVM address form.
func FieldBytesToEVMAddress(b [32]byte) (string, error) {
	var el fr.Element
	el.SetBytes(reverse(b[:]))
	addr, err := FieldToEVMAddress(el)
	if err != nil {
		return "", err
	}
	return FormatEVMAddress(addr), nil
}

func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}

// FormatEVMAddress renders a 20-byte address as "0x"-prefixed, zero-padded
// lowercase hex.
func FormatEVMAddress(addr [20]byte) string {
	return fmt.Sprintf("0x%040x", addr[:])
}

// FormatEVMHash renders a 32-byte hash as "0x"-prefixed, zero-padded
// lowercase hex.
func FormatEVMHash(hash [32]byte) string {
	return fmt.Sprintf("0x%064x", hash[:])
}

// EVMHashToLimbs splits a 32-byte EVM tx hash into two little-endian u128
// limbs: the lower 16 bytes and the upper 16 bytes. This is the
// representation used when an EVM tx hash must travel as two native-chain
// u128 inputs (e.g. a speed_up_eth style input).
func EVMHashToLimbs(hash [32]byte) (lo *big.Int, hi *big.Int) {
	loBytes := make([]byte, 16)
	hiBytes := make([]byte, 16)
	copy(loBytes, hash[:16])
	copy(hiBytes, hash[16:])
	lo = new(big.Int).SetBytes(reverse(loBytes))
	hi = new(big.Int).SetBytes(reverse(hiBytes))
	return lo, hi
}

// LimbsToEVMHash reverses EVMHashToLimbs.
func LimbsToEVMHash(lo, hi *big.Int) ([32]byte, error) {
	var out [32]byte
	loBytes := lo.Bytes()
	hiBytes := hi.Bytes()
	if len(loBytes) > 16 || len(hiBytes) > 16 {
		return out, newErr("limbs_to_evm_hash", ErrFieldOverflow)
	}
	var loFixed, hiFixed [16]byte
	copy(loFixed[16-len(loBytes):], loBytes)
	copy(hiFixed[16-len(hiBytes):], hiBytes)
	copy(out[:16], reverse(loFixed[:]))
	copy(out[16:], reverse(hiFixed[:]))
	return out, nil
}
