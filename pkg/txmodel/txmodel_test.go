// Copyright 2025 Meridian Protocol
//
// Unit tests for CanonicalTx ordering and helpers

package txmodel

import "testing"

func TestOrderKeyPriorityDominatesTimestamp(t *testing.T) {
	high := CanonicalTx{Priority: PriorityHigh, Timestamp: 1_000_000, FromChainTxHash: "a"}
	low := CanonicalTx{Priority: PriorityLow, Timestamp: 1, FromChainTxHash: "b"}

	if string(high.OrderKey()) >= string(low.OrderKey()) {
		t.Fatalf("high priority entry must sort before low priority regardless of timestamp")
	}
}

func TestOrderKeyTimestampOrdersWithinSamePriority(t *testing.T) {
	earlier := CanonicalTx{Priority: PriorityMedium, Timestamp: 10, FromChainTxHash: "z"}
	later := CanonicalTx{Priority: PriorityMedium, Timestamp: 20, FromChainTxHash: "a"}

	if string(earlier.OrderKey()) >= string(later.OrderKey()) {
		t.Fatalf("earlier timestamp must sort first within the same priority")
	}
}

func TestIsSigned(t *testing.T) {
	tx := CanonicalTx{}
	if tx.IsSigned() {
		t.Fatal("fresh tx must not be signed")
	}
	tx.Certificates = append(tx.Certificates, Certificate{Signature: "0xsig", Signer: "0xsigner"})
	if !tx.IsSigned() {
		t.Fatal("tx with a certificate must be signed")
	}
}

func TestEthPayloadDecodesBase64(t *testing.T) {
	tx := CanonicalTx{Payload: "aGVsbG8="} // "hello"
	got, err := tx.EthPayload()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("want hello got %s", got)
	}
}
