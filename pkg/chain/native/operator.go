// Copyright 2025 Meridian Protocol
//
// Native-Chain Relayer Operator
// Keeper-slotted receive_payload submission and fee-record bookkeeping

package native

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/meridian-protocol/bridge/pkg/chain"
	"github.com/meridian-protocol/bridge/pkg/store"
	"github.com/meridian-protocol/bridge/pkg/txmodel"
)

// Sentinel values slotted into the keeper-indexed signature array a
// receive_payload call submits: a keeper with no certificate gets
// InvalidSign, and an empty keeper slot is marked InvalidValidator.
const (
	InvalidSign      = "0"
	InvalidValidator = "none"
)

// maxPendingRetries bounds the native-chain Pending handle's exponential
// backoff polling.
const maxPendingRetries = 10

// OperatorAdapter is the native-chain implementation of chain.Operator.
type OperatorAdapter struct {
	profile chain.Profile
	rpc     RPC

	unspentRecords *store.Map[FeeRecord]
	recordCursor   *store.Map[uint64]

	logger *log.Logger
}

// NewOperatorAdapter builds an OperatorAdapter.
func NewOperatorAdapter(profile chain.Profile, rpc RPC, engine *store.Engine) *OperatorAdapter {
	return &OperatorAdapter{
		profile:        profile,
		rpc:            rpc,
		unspentRecords: store.NewMap[FeeRecord](engine, store.PrefixUnspentRecords),
		recordCursor:   store.NewMap[uint64](engine, store.PrefixRecordCursor),
		logger:         log.New(log.Writer(), fmt.Sprintf("[native:%s] ", profile.Name), log.LstdFlags),
	}
}

// Profile implements chain.Operator.
func (o *OperatorAdapter) Profile() chain.Profile { return o.profile }

// slotSignatures builds the keeper-indexed signature array: keepers[i]'s
// slot gets the certificate signed by that keeper, or InvalidSign if no
// certificate in tx matches it.
func slotSignatures(tx txmodel.CanonicalTx, keepers []string) []string {
	signatures := make([]string, len(keepers))
	for i := range signatures {
		signatures[i] = InvalidSign
	}
	for _, cert := range tx.Certificates {
		for i, k := range keepers {
			if k == InvalidValidator {
				continue
			}
			if k == cert.Signer {
				signatures[i] = cert.Signature
			}
		}
	}
	return signatures
}

// reconcileFeeRecords refreshes the unspent-record set by scanning the
// range of blocks since the operator's last record scan, spending the
// records the RPC layer reports as consumed and recording any new ones
// received with enough microcredits to cover a submission.
func (o *OperatorAdapter) reconcileFeeRecords(ctx context.Context, start, end uint64) error {
	spent, received, err := o.rpc.SpendableRecords(ctx, start, end)
	if err != nil {
		return fmt.Errorf("native operator: spendable records: %w", err)
	}
	for _, id := range spent {
		if err := o.unspentRecords.Delete([]byte(id)); err != nil {
			return err
		}
	}
	for _, rec := range received {
		if rec.Microcredits <= o.profile.FeeRecordFloor {
			continue
		}
		if err := o.unspentRecords.Put([]byte(rec.ID), rec); err != nil {
			return err
		}
	}
	return nil
}

// RunRecordScan drives reconcileFeeRecords on the operator's own cursor
// until ctx is cancelled, so the unspent-record set tracks the chain even
// while no transfers are being executed. Runs on its own goroutine; the
// underlying RPC calls block, which is fine here since nothing else shares
// this loop.
func (o *OperatorAdapter) RunRecordScan(ctx context.Context) {
	interval := o.profile.PollInterval
	if interval <= 0 {
		interval = 15 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	key := []byte(o.profile.Name)
	for {
		cur, ok, err := o.recordCursor.Get(key)
		if err != nil {
			o.logger.Printf("record cursor read error: %v", err)
		} else {
			if !ok {
				cur = o.profile.StartHeight
			}
			latest, err := o.rpc.LatestHeight(ctx)
			if err != nil {
				o.logger.Printf("latest height error: %v", err)
			} else if cur < latest {
				if err := o.reconcileFeeRecords(ctx, cur, latest); err != nil {
					o.logger.Printf("record scan [%d,%d) error: %v", cur, latest, err)
				} else if err := o.recordCursor.Put(key, latest); err != nil {
					o.logger.Printf("record cursor write error: %v", err)
				}
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// pickFeeRecord returns the id of an arbitrary unspent fee record, the
// native equivalent of picking a coin to spend as the program call's fee.
func (o *OperatorAdapter) pickFeeRecord() (string, error) {
	entry, ok, err := o.unspentRecords.First()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("native operator: no spendable fee record")
	}
	return string(entry.Key), nil
}

// Execute implements chain.Operator: fetches the current keeper set,
// slots every gathered certificate into its keeper's array position, and
// submits receive_payload.
func (o *OperatorAdapter) Execute(ctx context.Context, tx txmodel.CanonicalTx) (txmodel.CanonicalTx, error) {
	keepers, err := o.rpc.Keepers(ctx)
	if err != nil {
		return tx, fmt.Errorf("native operator: keepers: %w", err)
	}
	signatures := slotSignatures(tx, keepers)

	feeRecord, err := o.pickFeeRecord()
	if err != nil {
		return tx, err
	}

	txID, err := o.rpc.SubmitReceivePayload(ctx, signatures, keepers, tx.Payload, feeRecord)
	if err != nil {
		return tx, fmt.Errorf("native operator: submit receive_payload: %w", err)
	}
	// The fee record is consumed by this call; remove it eagerly rather
	// than waiting for the next reconcileFeeRecords scan to observe it
	// spent, so a rapid run of Execute calls doesn't pick the same record
	// twice.
	if err := o.unspentRecords.Delete([]byte(feeRecord)); err != nil {
		return tx, err
	}

	tx.ToChainTxHash = &txID
	return tx, nil
}

// Pending implements chain.Operator.
func (o *OperatorAdapter) Pending(tx txmodel.CanonicalTx) (chain.PendingTx, error) {
	if tx.ToChainTxHash == nil {
		return nil, fmt.Errorf("native operator: pending: tx has no ToChainTxHash")
	}
	return &PendingTx{rpc: o.rpc, txID: *tx.ToChainTxHash}, nil
}

// PendingTx polls a submitted native-chain transaction id to finality,
// backing off exponentially across at most maxPendingRetries tries.
type PendingTx struct {
	rpc  RPC
	txID string
}

// Checking implements chain.PendingTx: it polls TransactionStatus with
// exponential backoff, up to maxPendingRetries tries, before giving up as
// NotBroadcasted. An accepted status maps to Success and a rejected status
// to Rejected; a pending status or a fetch error is retried.
func (p *PendingTx) Checking(ctx context.Context) chain.TransactionStatus {
	for tries := 0; tries < maxPendingRetries; tries++ {
		if ctx.Err() != nil {
			return chain.TransactionStatus{Code: chain.StatusNotBroadcasted, Result: ctx.Err().Error()}
		}

		status, err := p.rpc.TransactionStatus(ctx, p.txID)
		if err == nil {
			switch status {
			case StatusAccepted:
				return chain.TransactionStatus{Code: chain.StatusSuccess, Result: p.txID}
			case StatusRejected:
				return chain.TransactionStatus{Code: chain.StatusRejected, Result: "transaction rejected"}
			}
		}

		backoff := time.Duration(math.Pow(2, float64(tries+1))) * time.Second
		time.Sleep(backoff)
	}
	return chain.TransactionStatus{Code: chain.StatusNotBroadcasted, Result: "exceeded max pending retries"}
}
