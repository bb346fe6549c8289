// Copyright 2025 Meridian Protocol
//
// Relayer Orchestrator
// execute and pending drain loops plus finality reporting

// Package relayer drives the ingest -> execute -> pending -> finalize
// pipeline: a REST ingress for the sequencer to post signed transfers
// against, an execute_handler goroutine that submits them to the
// destination chain, and a pending_checker goroutine that polls submitted
// transfers to finality and reports back.
package relayer

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-protocol/bridge/pkg/chain"
	"github.com/meridian-protocol/bridge/pkg/metrics"
	"github.com/meridian-protocol/bridge/pkg/sequencer"
	"github.com/meridian-protocol/bridge/pkg/store"
	"github.com/meridian-protocol/bridge/pkg/txmodel"
)

const (
	executeIdleSleep = 15 * time.Second
	pendingIdleSleep = 60 * time.Second
)

// Orchestrator owns the relayer's REST ingress and its two background
// drain loops.
type Orchestrator struct {
	registry *chain.Registry
	seq      *sequencer.Client
	store    *Store
	addr     string
	metrics  *metrics.Registry

	logger *log.Logger
}

// New builds an Orchestrator serving its REST ingress on addr. reg may be
// nil, in which case metrics are not recorded.
func New(registry *chain.Registry, seq *sequencer.Client, engine *store.Engine, addr string, reg *metrics.Registry) *Orchestrator {
	return &Orchestrator{
		registry: registry,
		seq:      seq,
		store:    NewStore(engine),
		addr:     addr,
		metrics:  reg,
		logger:   log.New(log.Writer(), "[relayer] ", log.LstdFlags),
	}
}

// observe records outcome under stage in the metrics registry, a no-op when
// no registry was configured.
func (o *Orchestrator) observe(stage, class string) {
	if o.metrics == nil {
		return
	}
	o.metrics.SubmitOutcome.WithLabelValues(stage, class).Inc()
}

func (o *Orchestrator) gaugeDepth(queue string, m *store.Map[txmodel.CanonicalTx]) {
	if o.metrics == nil {
		return
	}
	n, err := m.Count()
	if err != nil {
		return
	}
	o.metrics.QueueDepth.WithLabelValues(queue).Set(float64(n))
}

// Run starts the REST server and the two drain goroutines, blocking until
// ctx is cancelled or the HTTP server fails.
func (o *Orchestrator) Run(ctx context.Context) error {
	srv := &http.Server{Addr: o.addr, Handler: o.newCORSMux()}

	go o.executeHandler(ctx)
	go o.pendingChecker(ctx)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	o.logger.Printf("rest server listening on %s", o.addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("relayer: serve: %w", err)
	}
	return nil
}

// executeHandler drains the execute queue one tx at a time, sleeping
// executeIdleSleep whenever it's empty.
func (o *Orchestrator) executeHandler(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		o.gaugeDepth("execute", o.store.execute)

		entry, ok, err := o.store.execute.First()
		if err != nil {
			o.logger.Printf("execute queue read error: %v", err)
			time.Sleep(executeIdleSleep)
			continue
		}
		if !ok {
			o.logger.Printf("no execute transaction, sleep 15s")
			time.Sleep(executeIdleSleep)
			continue
		}

		tx := entry.Value
		if err := o.store.execute.Delete(entry.Key); err != nil {
			o.logger.Printf("failed to remove execute entry: %v", err)
			continue
		}

		if _, finalized, err := o.store.finalize.Get([]byte(tx.FromChainTxHash)); err == nil && finalized {
			o.logger.Printf("tx already finalized: %s", tx.FromChainTxHash)
			// The key is already gone; this second delete is a no-op.
			o.store.execute.Delete(entry.Key)
			continue
		}

		o.logger.Printf("executing %s", tx.FromChainTxHash)
		operator, err := o.registry.Operator(tx.ToChainID)
		if err != nil {
			o.logger.Printf("no operator for chain id %d: %v", tx.ToChainID, err)
			continue
		}

		executed, err := operator.Execute(ctx, tx)
		if err != nil {
			o.logger.Printf("failed to execute tx: %v", err)
			o.observe("execute", "error")
			continue
		}
		o.observe("execute", "success")
		if err := o.store.pending.Put(entry.Key, executed); err != nil {
			o.logger.Printf("failed to insert pending entry: %v", err)
		}
	}
}

// pendingChecker drains the pending queue one tx at a time, sleeping
// pendingIdleSleep whenever it's empty.
func (o *Orchestrator) pendingChecker(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		o.gaugeDepth("pending", o.store.pending)

		entry, ok, err := o.store.pending.First()
		if err != nil {
			o.logger.Printf("pending queue read error: %v", err)
			time.Sleep(pendingIdleSleep)
			continue
		}
		if !ok {
			o.logger.Printf("no pending transaction, sleep 60s")
			time.Sleep(pendingIdleSleep)
			continue
		}

		tx := entry.Value
		fromChainTxHash := tx.FromChainTxHash
		// Removed before the status check resolves; a crash here loses the
		// in-flight check silently and relies on sequencer redrive.
		if err := o.store.pending.Delete(entry.Key); err != nil {
			o.logger.Printf("failed to remove pending entry: %v", err)
		}

		correlationID := uuid.NewString()
		go func() {
			operator, err := o.registry.Operator(tx.ToChainID)
			if err != nil {
				o.logger.Printf("[%s] no operator for chain id %d: %v", correlationID, tx.ToChainID, err)
				return
			}
			pending, err := operator.Pending(tx)
			if err != nil {
				o.logger.Printf("[%s] pending handle error: %v", correlationID, err)
				return
			}
			status := pending.Checking(ctx)

			switch status.Code {
			case chain.StatusSuccess:
				o.logger.Printf("[%s] tx %s finalized: %s", correlationID, fromChainTxHash, status.Result)
				o.observe("pending_check", "success")
				if err := o.store.finalize.Put([]byte(fromChainTxHash), tx); err != nil {
					o.logger.Printf("[%s] failed to insert finalize entry: %v", correlationID, err)
				}
			case chain.StatusNotBroadcasted:
				o.logger.Printf("[%s] tx %s not broadcasted: %s, re-add executing pipeline", correlationID, fromChainTxHash, status.Result)
				o.observe("pending_check", "not_broadcasted")
			case chain.StatusRejected:
				o.logger.Printf("[%s] tx %s rejected: %s", correlationID, fromChainTxHash, status.Result)
				o.observe("pending_check", "rejected")
			}

			if _, err := o.seq.PatchResult(ctx, fromChainTxHash, status); err != nil {
				o.logger.Printf("[%s] patch result error: %v", correlationID, err)
			}
		}()
	}
}
