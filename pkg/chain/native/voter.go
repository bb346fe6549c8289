// Copyright 2025 Meridian Protocol
//
// Native-Chain Voter Adapter
// Transition scanning and certificate signing for the native chain

package native

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"log"
	"sync"
	"time"

	acc_url "gitlab.com/accumulatenetwork/accumulate/pkg/url"

	"github.com/meridian-protocol/bridge/pkg/chain"
	"github.com/meridian-protocol/bridge/pkg/codec"
	"github.com/meridian-protocol/bridge/pkg/store"
	"github.com/meridian-protocol/bridge/pkg/txmodel"
)

const maxParallelSubWindows = 10

// VoterAdapter is the native-chain implementation of chain.Validator.
type VoterAdapter struct {
	profile chain.Profile
	rpc     RPC
	signKey ed25519.PrivateKey
	address *acc_url.URL

	unconfirmed *store.Map[txmodel.CanonicalTx]
	speedup     *store.Map[string]
	cursor      *store.Map[uint64]

	logger *log.Logger
}

// NewVoterAdapter builds a VoterAdapter. address identifies this keeper's
// slot in the bridge program's keeper array (an Accumulate-style ADI URL).
func NewVoterAdapter(profile chain.Profile, rpc RPC, signKey ed25519.PrivateKey, address string, engine *store.Engine) (*VoterAdapter, error) {
	parsed, err := acc_url.Parse(address)
	if err != nil {
		return nil, fmt.Errorf("native voter: parse keeper address: %w", err)
	}
	return &VoterAdapter{
		profile:     profile,
		rpc:         rpc,
		signKey:     signKey,
		address:     parsed,
		unconfirmed: store.NewMap[txmodel.CanonicalTx](engine, store.PrefixUnconfirmedTxs),
		speedup:     store.NewMap[string](engine, store.PrefixSpeedupTxs),
		cursor:      store.NewMap[uint64](engine, store.PrefixNativeCursor),
		logger:      log.New(log.Writer(), fmt.Sprintf("[native:%s] ", profile.Name), log.LstdFlags),
	}, nil
}

// Profile implements chain.Validator.
func (a *VoterAdapter) Profile() chain.Profile { return a.profile }

func chainIDKey(id uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], id)
	return b[:]
}

func (a *VoterAdapter) loadCursor() (uint64, error) {
	h, ok, err := a.cursor.Get(chainIDKey(a.profile.IzarChainID))
	if err != nil {
		return 0, err
	}
	if !ok {
		return a.profile.StartHeight, nil
	}
	return h, nil
}

func (a *VoterAdapter) saveCursor(height uint64) error {
	return a.cursor.Put(chainIDKey(a.profile.IzarChainID), height)
}

// Sync implements chain.Validator: fast-sync in 500-block windows (fanned
// into parallel 50-block sub-windows) while behind, falling back to a
// sequential 45-block steady-state window once caught up.
func (a *VoterAdapter) Sync(ctx context.Context) error {
	cur, err := a.loadCursor()
	if err != nil {
		return err
	}
	latest, err := a.rpc.LatestHeight(ctx)
	if err != nil {
		return fmt.Errorf("native voter: latest height: %w", err)
	}
	if cur >= latest {
		return nil
	}
	if latest-cur > a.profile.FastSyncWindow {
		return a.fastSync(ctx, cur, latest)
	}
	return a.steadySync(ctx, cur, latest)
}

func (a *VoterAdapter) steadySync(ctx context.Context, cur, latest uint64) error {
	window := a.profile.SteadyStateWindow
	if window == 0 {
		window = 45
	}
	for start := cur; start < latest; start += window {
		end := start + window
		if end > latest {
			end = latest
		}
		if err := a.scanWindow(ctx, start, end); err != nil {
			return err
		}
		if err := a.saveCursor(end); err != nil {
			return err
		}
	}
	return nil
}

func (a *VoterAdapter) fastSync(ctx context.Context, cur, latest uint64) error {
	window := a.profile.FastSyncWindow
	if window == 0 {
		window = chain.MaxFastSyncWindow
	}
	for start := cur; start < latest; start += window {
		end := start + window
		if end > latest {
			end = latest
		}
		if end-start > chain.MaxFastSyncWindow {
			return chain.ErrBadRange
		}
		if err := a.scanWindowParallel(ctx, start, end); err != nil {
			return err
		}
		if err := a.saveCursor(end); err != nil {
			return err
		}
	}
	return nil
}

func (a *VoterAdapter) scanWindowParallel(ctx context.Context, start, end uint64) error {
	sub := a.profile.FastSyncSubWindow
	if sub == 0 {
		sub = chain.FastSyncSubWindow
	}

	type subWindow struct{ s, e uint64 }
	var windows []subWindow
	for s := start; s < end; s += sub {
		e := s + sub
		if e > end {
			e = end
		}
		windows = append(windows, subWindow{s, e})
	}

	sem := make(chan struct{}, maxParallelSubWindows)
	var wg sync.WaitGroup
	errCh := make(chan error, len(windows))

	for _, w := range windows {
		wg.Add(1)
		sem <- struct{}{}
		go func(w subWindow) {
			defer wg.Done()
			defer func() { <-sem }()
			if err := a.scanWindow(ctx, w.s, w.e); err != nil {
				errCh <- err
			}
		}(w)
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *VoterAdapter) scanWindow(ctx context.Context, start, end uint64) error {
	transitions, err := a.rpc.GetTransitions(ctx, start, end)
	if err != nil {
		return fmt.Errorf("native voter: get transitions [%d,%d): %w", start, end, err)
	}
	for _, t := range transitions {
		var err error
		switch t.Kind {
		case KindCrossPublic:
			err = a.handleCrossPublic(t)
		case KindSpeedUp:
			err = a.handleSpeedUp(t)
		}
		if err != nil {
			a.logger.Printf("failed to handle transition %s: %v", t.TxID, err)
		}
	}
	return nil
}

func (a *VoterAdapter) handleCrossPublic(t Transition) error {
	toAssetField, err := codec.FieldBytesToEVMAddress(t.ToAssetAddr)
	if err != nil {
		return fmt.Errorf("decode to_asset_addr: %w", err)
	}
	toAddrField, err := codec.FieldBytesToEVMAddress(t.ToAddr)
	if err != nil {
		return fmt.Errorf("decode to_addr: %w", err)
	}

	payload := codec.EncodePayload(toAssetField, toAddrField, t.Amount)

	tx := txmodel.CanonicalTx{
		Priority:        txmodel.PriorityLow,
		Timestamp:       uint64(time.Now().Unix()),
		FromChainTxHash: t.TxID,
		FromChainID:     a.profile.IzarChainID,
		FromAssetAddr:   t.FromAssetAddr,
		FromAddr:        t.FromAddr,
		ToChainID:       t.ToChainID,
		ToAssetAddr:     toAssetField,
		ToAddr:          toAddrField,
		Payload:         base64.StdEncoding.EncodeToString(payload),
		Nonce:           nonceFromTxID(t.TxID),
		Fee:             t.Fee.String(),
	}
	return a.unconfirmed.Put([]byte(tx.FromChainTxHash), tx)
}

func (a *VoterAdapter) handleSpeedUp(t Transition) error {
	ethHash, err := codec.LimbsToEVMHash(t.SpeedupHashLo, t.SpeedupHashHi)
	if err != nil {
		return fmt.Errorf("decode speedup hash: %w", err)
	}
	return a.speedup.Put([]byte(t.TxID), codec.FormatEVMHash(ethHash))
}

// Sign implements chain.Validator: an ed25519 signature over the canonical
// payload bytes, matching the "sign the recv-message fields" pattern the
// native chain's own on-chain verifier expects.
func (a *VoterAdapter) Sign(ctx context.Context, tx txmodel.CanonicalTx) (txmodel.Certificate, error) {
	payload, err := tx.EthPayload()
	if err != nil {
		return txmodel.Certificate{}, fmt.Errorf("native voter: sign: decode payload: %w", err)
	}
	sig := ed25519.Sign(a.signKey, payload)
	return txmodel.Certificate{
		Signature: base64.StdEncoding.EncodeToString(sig),
		Signer:    a.address.String(),
	}, nil
}
