// Copyright 2025 Meridian Protocol
//
// Unit tests for the relayer REST ingress

package relayer

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/meridian-protocol/bridge/pkg/chain"
	"github.com/meridian-protocol/bridge/pkg/sequencer"
	"github.com/meridian-protocol/bridge/pkg/store"
	"github.com/meridian-protocol/bridge/pkg/txmodel"
)

func newTestOrchestrator(t *testing.T) *Orchestrator {
	t.Helper()
	engine := store.OpenMemDB()
	t.Cleanup(func() { engine.Close() })
	return New(chain.NewRegistry(), sequencer.New("http://unused.invalid"), engine, ":0", nil)
}

func postTx(t *testing.T, srv *httptest.Server, path string, tx txmodel.CanonicalTx) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(tx)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Config.Handler.ServeHTTP(rec, req)
	return rec
}

func TestEnqueueNewTransactionReturns202(t *testing.T) {
	o := newTestOrchestrator(t)
	srv := httptest.NewServer(o.newCORSMux())
	defer srv.Close()

	tx := txmodel.CanonicalTx{FromChainTxHash: "0xnew", FromChainID: 1, ToChainID: 2}
	rec := postTx(t, srv, "/exec", tx)
	if rec.Code != 202 {
		t.Fatalf("want 202, got %d: %s", rec.Code, rec.Body.String())
	}

	entries, err := o.store.execute.All()
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("want 1 queued entry, got %d", len(entries))
	}
}

func TestEnqueueAlreadyFinalizedReturns200WithHash(t *testing.T) {
	o := newTestOrchestrator(t)
	srv := httptest.NewServer(o.newCORSMux())
	defer srv.Close()

	toHash := "0xdestfinal"
	finalized := txmodel.CanonicalTx{FromChainTxHash: "0xdone", ToChainTxHash: &toHash}
	if err := o.store.finalize.Put([]byte(finalized.FromChainTxHash), finalized); err != nil {
		t.Fatalf("seed finalize: %v", err)
	}

	rec := postTx(t, srv, "/exec", txmodel.CanonicalTx{FromChainTxHash: "0xdone"})
	if rec.Code != 200 {
		t.Fatalf("want 200, got %d", rec.Code)
	}
	if rec.Body.String() != toHash {
		t.Fatalf("want body %q, got %q", toHash, rec.Body.String())
	}

	entries, err := o.store.execute.All()
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("an already-finalized tx must not be re-queued, got %d entries", len(entries))
	}
}

func TestSpeedupEndpointSetsHighPriority(t *testing.T) {
	o := newTestOrchestrator(t)
	srv := httptest.NewServer(o.newCORSMux())
	defer srv.Close()

	tx := txmodel.CanonicalTx{FromChainTxHash: "0xspeed", Priority: txmodel.PriorityLow}
	rec := postTx(t, srv, "/speedup", tx)
	if rec.Code != 202 {
		t.Fatalf("want 202, got %d", rec.Code)
	}

	entries, err := o.store.execute.All()
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(entries) != 1 || entries[0].Value.Priority != txmodel.PriorityHigh {
		t.Fatalf("want 1 high-priority entry, got %+v", entries)
	}
}
