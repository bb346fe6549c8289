// Copyright 2025 Meridian Protocol
//
// Voter Orchestrator
// Per-chain scan loops and the sign/submit tick

// Package voter drives the observe -> canonicalize -> sign -> submit
// pipeline: one scan goroutine per registered chain, and a single 20-second
// tick that signs newly observed transfers and posts speedup requests.
package voter

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-protocol/bridge/pkg/chain"
	"github.com/meridian-protocol/bridge/pkg/metrics"
	"github.com/meridian-protocol/bridge/pkg/sequencer"
	"github.com/meridian-protocol/bridge/pkg/store"
	"github.com/meridian-protocol/bridge/pkg/txmodel"
)

const tickInterval = 20 * time.Second

// Orchestrator owns the adapter registry and the stores the registered
// adapters write into, and drives both the per-chain scan loops and the
// sign/submit tick.
type Orchestrator struct {
	registry *chain.Registry
	seq      *sequencer.Client
	metrics  *metrics.Registry

	unconfirmed *store.Map[txmodel.CanonicalTx]
	speedup     *store.Map[string]

	logger *log.Logger
}

// New builds an Orchestrator over registry, submitting signed transactions
// through seq. reg may be nil, in which case metrics are not recorded.
func New(registry *chain.Registry, seq *sequencer.Client, engine *store.Engine, reg *metrics.Registry) *Orchestrator {
	return &Orchestrator{
		registry:    registry,
		seq:         seq,
		metrics:     reg,
		unconfirmed: store.NewMap[txmodel.CanonicalTx](engine, store.PrefixUnconfirmedTxs),
		speedup:     store.NewMap[string](engine, store.PrefixSpeedupTxs),
		logger:      log.New(log.Writer(), "[voter] ", log.LstdFlags),
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

func (o *Orchestrator) gaugeDepth(queue string, n int) {
	if o.metrics == nil {
		return
	}
	o.metrics.QueueDepth.WithLabelValues(queue).Set(float64(n))
}

// Run blocks, running each registered chain's scan loop and the sign/submit
// tick until ctx is cancelled.
func (o *Orchestrator) Run(ctx context.Context) error {
	if len(o.registry.Validators()) == 0 {
		return fmt.Errorf("voter: no chain adapters registered")
	}

	for chainID, v := range o.registry.Validators() {
		go o.scanLoop(ctx, chainID, v)
	}

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := o.handleTxs(ctx); err != nil {
				o.logger.Printf("handle txs error: %v", err)
			}
			if err := o.handleSpeedupTxs(ctx); err != nil {
				o.logger.Printf("handle speedup txs error: %v", err)
			}
		}
	}
}

// scanLoop runs v.Sync on its own chain's PollInterval cadence until ctx is
// cancelled.
func (o *Orchestrator) scanLoop(ctx context.Context, chainID uint32, v chain.Validator) {
	interval := v.Profile().PollInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := v.Sync(ctx); err != nil {
			o.logger.Printf("chain %d sync error: %v", chainID, err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// handleTxs drains the unconfirmed queue, signing each tx with its
// destination chain's validator and posting it to the sequencer. A tx is
// removed from the queue before it's signed and submitted: a crash between
// removal and a successful post loses the tx, and only a non-2xx/non-4xx
// response re-queues it for retry.
func (o *Orchestrator) handleTxs(ctx context.Context) error {
	entries, err := o.unconfirmed.All()
	if err != nil {
		return err
	}
	o.gaugeDepth("unconfirmed", len(entries))
	for _, entry := range entries {
		tx := entry.Value
		if err := o.unconfirmed.Delete(entry.Key); err != nil {
			return err
		}

		correlationID := uuid.NewString()
		validator, err := o.registry.Validator(tx.ToChainID)
		if err != nil {
			o.logger.Printf("[%s] sign skipped: %v", correlationID, err)
			continue
		}
		cert, err := validator.Sign(ctx, tx)
		if err != nil {
			o.logger.Printf("[%s] sign failed for %s: %v", correlationID, tx.FromChainTxHash, err)
			o.observe("sign", "error")
			continue
		}
		tx.Certificates = append(tx.Certificates, cert)

		outcome, err := o.seq.PostBridgeTx(ctx, tx)
		if err != nil {
			o.logger.Printf("[%s] post bridge tx transport error: %v", correlationID, err)
			o.observe("submit", "transport_error")
			continue
		}
		switch outcome.Class {
		case sequencer.ClassClientError:
			o.logger.Printf("[%s] submit response error: %s", correlationID, outcome.Body)
			o.observe("submit", "client_error")
		case sequencer.ClassSuccess:
			o.logger.Printf("[%s] submit sigs success: %s", correlationID, tx.FromChainTxHash)
			o.observe("submit", "success")
		default:
			o.logger.Printf("[%s] unimplemented status code %d, requeuing", correlationID, outcome.StatusCode)
			o.observe("submit", "retry")
			if err := o.unconfirmed.Put(entry.Key, tx); err != nil {
				return err
			}
		}
	}
	return nil
}

// handleSpeedupTxs drains the speedup queue exactly the same way: remove,
// attempt to post, and only re-queue on a status code outside 2xx/4xx.
func (o *Orchestrator) handleSpeedupTxs(ctx context.Context) error {
	entries, err := o.speedup.All()
	if err != nil {
		return err
	}
	o.gaugeDepth("speedup", len(entries))
	for _, entry := range entries {
		speedupHash := string(entry.Key)
		fromChainTxHash := entry.Value
		if err := o.speedup.Delete(entry.Key); err != nil {
			return err
		}

		req := txmodel.SpeedupRequest{FromChainTxHash: fromChainTxHash, SpeedUpHash: speedupHash}
		outcome, err := o.seq.PostSpeedUp(ctx, req)
		if err != nil {
			o.logger.Printf("post speedup tx transport error: %v", err)
			o.observe("speedup", "transport_error")
			continue
		}
		switch outcome.Class {
		case sequencer.ClassClientError:
			o.logger.Printf("submit response error: %s", outcome.Body)
			o.observe("speedup", "client_error")
		case sequencer.ClassSuccess:
			o.logger.Printf("submit speedup tx success: %+v", req)
			o.observe("speedup", "success")
		default:
			o.logger.Printf("unimplemented status code %d, requeuing", outcome.StatusCode)
			o.observe("speedup", "retry")
			if err := o.speedup.Put(entry.Key, fromChainTxHash); err != nil {
				return err
			}
		}
	}
	return nil
}
