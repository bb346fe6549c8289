// Copyright 2025 Meridian Protocol
//
// Unit tests for sequencer response classification

package sequencer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/meridian-protocol/bridge/pkg/chain"
	"github.com/meridian-protocol/bridge/pkg/txmodel"
)

func TestPostBridgeTxClassifiesResponses(t *testing.T) {
	cases := []struct {
		status int
		want   ResponseClass
	}{
		{200, ClassSuccess},
		{202, ClassSuccess},
		{400, ClassClientError},
		{404, ClassClientError},
		{500, ClassOther},
		{302, ClassOther},
	}
	for _, c := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(c.status)
		}))

		client := New(srv.URL)
		outcome, err := client.PostBridgeTx(context.Background(), txmodel.CanonicalTx{FromChainTxHash: "0x1"})
		if err != nil {
			t.Fatalf("status %d: %v", c.status, err)
		}
		if outcome.Class != c.want {
			t.Fatalf("status %d: want class %d, got %d", c.status, c.want, outcome.Class)
		}
		srv.Close()
	}
}

func TestPatchResultSendsToBaseURL(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(200)
	}))
	defer srv.Close()

	client := New(srv.URL)
	status := chain.TransactionStatus{Code: chain.StatusSuccess, Result: "finalized"}
	if _, err := client.PatchResult(context.Background(), "0xabc", status); err != nil {
		t.Fatalf("patch: %v", err)
	}
	if gotMethod != http.MethodPatch {
		t.Fatalf("want PATCH, got %s", gotMethod)
	}
	if gotPath != "/" {
		t.Fatalf("want request to base URL path /, got %s", gotPath)
	}
}
