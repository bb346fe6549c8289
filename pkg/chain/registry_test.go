// Copyright 2025 Meridian Protocol
//
// Unit tests for the chain adapter registry

package chain

import (
	"context"
	"errors"
	"testing"

	"github.com/meridian-protocol/bridge/pkg/txmodel"
)

type stubValidator struct{ profile Profile }

func (s *stubValidator) Sync(ctx context.Context) error { return nil }
func (s *stubValidator) Sign(ctx context.Context, tx txmodel.CanonicalTx) (txmodel.Certificate, error) {
	return txmodel.Certificate{}, nil
}
func (s *stubValidator) Profile() Profile { return s.profile }

func TestRegistryReturnsErrNoAdapterForUnknownChain(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Validator(99); !errors.Is(err, ErrNoAdapter) {
		t.Fatalf("want ErrNoAdapter, got %v", err)
	}
	if _, err := r.Operator(99); !errors.Is(err, ErrNoAdapter) {
		t.Fatalf("want ErrNoAdapter, got %v", err)
	}
}

func TestRegistryRegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	v := &stubValidator{profile: Profile{IzarChainID: 1, Name: "test"}}
	r.RegisterValidator(1, v)

	got, err := r.Validator(1)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got.Profile().Name != "test" {
		t.Fatalf("got %+v", got.Profile())
	}
	if len(r.Validators()) != 1 {
		t.Fatalf("want 1 registered validator, got %d", len(r.Validators()))
	}
}
