// Copyright 2025 Meridian Protocol
//
// Relayer REST Ingress
// /exec and /speedup handlers behind a CORS wrapper

package relayer

import (
	"encoding/json"
	"net/http"

	"github.com/meridian-protocol/bridge/pkg/txmodel"
)

// newCORSMux wires the two ingress routes behind an any-origin CORS
// wrapper allowing GET/POST/OPTIONS and Content-Type.
func (o *Orchestrator) newCORSMux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/exec", o.handleExec)
	mux.HandleFunc("/speedup", o.handleSpeedup)
	if o.metrics != nil {
		mux.Handle("/metrics", o.metrics.Handler())
	}

	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// enqueue is shared by /exec and /speedup: if tx already finalized, return
// its destination tx hash with 200; otherwise insert it into the execute
// queue (keyed by order_key so priority/timestamp/tx-hash ordering holds)
// and reply 202.
func (o *Orchestrator) enqueue(w http.ResponseWriter, r *http.Request, highPriority bool) {
	var tx txmodel.CanonicalTx
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if highPriority {
		tx.Priority = txmodel.PriorityHigh
	}

	existing, ok, err := o.store.finalize.Get([]byte(tx.FromChainTxHash))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if ok {
		o.logger.Printf("tx already finalized: %s", tx.FromChainTxHash)
		w.WriteHeader(http.StatusOK)
		if existing.ToChainTxHash != nil {
			w.Write([]byte(*existing.ToChainTxHash))
		}
		return
	}

	if err := o.store.execute.Put(tx.OrderKey(), tx); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusAccepted)
	w.Write([]byte("already added to queue"))
}

func (o *Orchestrator) handleExec(w http.ResponseWriter, r *http.Request) {
	o.enqueue(w, r, false)
}

func (o *Orchestrator) handleSpeedup(w http.ResponseWriter, r *http.Request) {
	o.enqueue(w, r, true)
}
