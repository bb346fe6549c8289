// Copyright 2025 Meridian Protocol
//
// EVM Voter Adapter
// Block-range scanner, log pairing and certificate signing for EVM chains

package evm

import (
	"context"
	"crypto/ecdsa"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"log"
	"math/big"
	"strings"
	"sync"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/meridian-protocol/bridge/pkg/chain"
	"github.com/meridian-protocol/bridge/pkg/codec"
	"github.com/meridian-protocol/bridge/pkg/store"
	"github.com/meridian-protocol/bridge/pkg/txmodel"
)

// maxParallelSubWindows bounds the fast-sync fan-out: at most this many
// sub-window fetches run concurrently.
const maxParallelSubWindows = 10

// VoterAdapter is the EVM implementation of chain.Validator: it scans
// Packet/WrapperLock log pairs into CanonicalTx and signs outgoing transfers
// with an ECDSA wallet.
type VoterAdapter struct {
	profile      chain.Profile
	rpc          RPC
	wallet       *ecdsa.PrivateKey
	address      common.Address
	lockContract common.Address
	wrapContract common.Address

	unconfirmed *store.Map[txmodel.CanonicalTx]
	cursor      *store.Map[uint64]

	logger *log.Logger
}

// NewVoterAdapter builds a VoterAdapter. privKeyHex is the adapter's signing
// wallet (hex, no 0x prefix required); lockContract/wrapContract are the two
// bridge program addresses this chain's scanner filters for.
func NewVoterAdapter(profile chain.Profile, rpc RPC, privKeyHex string, lockContract, wrapContract common.Address, engine *store.Engine) (*VoterAdapter, error) {
	wallet, err := crypto.HexToECDSA(strings.TrimPrefix(privKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("evm voter: parse private key: %w", err)
	}
	return &VoterAdapter{
		profile:      profile,
		rpc:          rpc,
		wallet:       wallet,
		address:      crypto.PubkeyToAddress(wallet.PublicKey),
		lockContract: lockContract,
		wrapContract: wrapContract,
		unconfirmed:  store.NewMap[txmodel.CanonicalTx](engine, store.PrefixUnconfirmedTxs),
		cursor:       store.NewMap[uint64](engine, store.PrefixEVMCursor),
		logger:       log.New(log.Writer(), fmt.Sprintf("[evm:%s] ", profile.Name), log.LstdFlags),
	}, nil
}

// Profile implements chain.Validator.
func (a *VoterAdapter) Profile() chain.Profile { return a.profile }

func chainIDKey(id uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], id)
	return b[:]
}

func (a *VoterAdapter) loadCursor(ctx context.Context) (uint64, error) {
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

// Sync implements chain.Validator. The cursor is only advanced after an
// entire window's logs have been decoded and inserted, so a crash mid-window
// simply replays it (decoding is idempotent: same key, same value).
func (a *VoterAdapter) Sync(ctx context.Context) error {
	cur, err := a.loadCursor(ctx)
	if err != nil {
		return err
	}
	latest, err := a.rpc.BlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("evm voter: latest height: %w", err)
	}
	if cur >= latest {
		return nil
	}

	if latest-cur > a.profile.FastSyncWindow {
		return a.fastSync(ctx, cur, latest)
	}
	return a.steadySync(ctx, cur, latest)
}

// steadySync walks [cur, latest) sequentially in SteadyStateWindow chunks.
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

// fastSync walks [cur, latest) in FastSyncWindow (500) chunks, each fanned
// out into parallel FastSyncSubWindow (50) sub-fetches.
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

// scanWindowParallel fans [start, end) into FastSyncSubWindow-sized
// sub-windows, bounded to maxParallelSubWindows concurrent fetches.
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

// scanWindow fetches Packet/WrapperLock logs for [start, end), pairs them,
// and inserts the decoded CanonicalTx values into unconfirmed.
func (a *VoterAdapter) scanWindow(ctx context.Context, start, end uint64) error {
	startBig := newBigUint64(start)
	// FilterQuery.ToBlock is inclusive; the last block of [start, end) is end-1.
	endBig := newBigUint64(end - 1)

	logs, err := a.rpc.FilterLogs(ctx, ethereum.FilterQuery{
		Addresses: []common.Address{a.lockContract, a.wrapContract},
		Topics:    [][]common.Hash{{packetSig, wrapperLockSig}},
		FromBlock: startBig,
		ToBlock:   endBig,
	})
	if err != nil {
		return fmt.Errorf("evm voter: filter logs [%d,%d): %w", start, end, err)
	}

	for i := 0; i+1 < len(logs); i += 2 {
		packetLog, wrapLog := logs[i], logs[i+1]
		if err := a.handleLogPair(packetLog, wrapLog); err != nil {
			a.logger.Printf("invalid log pair at block %d: %v", packetLog.BlockNumber, err)
		}
	}
	if len(logs)%2 == 1 {
		a.logger.Printf("odd log count in window [%d,%d): last log at index %d unpaired, dropped", start, end, len(logs)-1)
	}
	return nil
}

func (a *VoterAdapter) handleLogPair(packetLog, wrapLog types.Log) error {
	if packetLog.TxHash != wrapLog.TxHash {
		return fmt.Errorf("mismatched tx hash in log pair: %s vs %s", packetLog.TxHash, wrapLog.TxHash)
	}

	packet, err := decodePacket(packetLog)
	if err != nil {
		return err
	}
	wrap, err := decodeWrapperLock(wrapLog)
	if err != nil {
		return err
	}

	parts, err := codec.DecodePayload(packet.Payload)
	if err != nil {
		return fmt.Errorf("decode canonical payload: %w", err)
	}

	tx := txmodel.CanonicalTx{
		Priority:        txmodel.PriorityLow,
		Timestamp:       uint64(time.Now().Unix()),
		FromChainTxHash: strings.ToLower(packetLog.TxHash.Hex()),
		FromChainID:     a.profile.IzarChainID,
		FromAssetAddr:   codec.FormatEVMAddress([20]byte(wrap.Token)),
		FromAddr:        codec.FormatEVMAddress([20]byte(wrap.Sender)),
		ToChainID:       uint32(wrap.ToChainID),
		ToAssetAddr:     parts.ToAssetAddr,
		ToAddr:          parts.ToAddr,
		Payload:         base64.StdEncoding.EncodeToString(packet.Payload),
		Nonce:           packet.Nonce.String(),
		Fee:             wrap.Fee.String(),
	}

	return a.unconfirmed.Put([]byte(tx.FromChainTxHash), tx)
}

// Sign implements chain.Validator: keccak256 of
// abi.encodePacked(src_chain_id:u16 BE, to_chain_id:u16 BE, nonce:u256 BE,
// from_addr bytes, lock_contract_addr, payload), signed by the adapter's
// wallet.
func (a *VoterAdapter) Sign(ctx context.Context, tx txmodel.CanonicalTx) (txmodel.Certificate, error) {
	payload, err := tx.EthPayload()
	if err != nil {
		return txmodel.Certificate{}, fmt.Errorf("evm voter: sign: decode payload: %w", err)
	}

	var nonce [32]byte
	nonceInt, ok := new(big.Int).SetString(tx.Nonce, 10)
	if !ok {
		return txmodel.Certificate{}, fmt.Errorf("evm voter: sign: invalid nonce %q", tx.Nonce)
	}
	nonceInt.FillBytes(nonce[:])

	var buf []byte
	buf = appendU16(buf, uint16(tx.FromChainID))
	buf = appendU16(buf, uint16(tx.ToChainID))
	buf = append(buf, nonce[:]...)
	buf = append(buf, addrBytes(tx.FromAddr)...)
	buf = append(buf, a.lockContract.Bytes()...)
	buf = append(buf, payload...)

	hash := crypto.Keccak256(buf)
	sig, err := crypto.Sign(hash, a.wallet)
	if err != nil {
		return txmodel.Certificate{}, fmt.Errorf("evm voter: sign: %w", err)
	}
	// crypto.Sign returns a recovery id of 0/1; on-chain ecrecover expects
	// the Ethereum convention of 27/28.
	sig[64] += 27

	return txmodel.Certificate{
		Signature: "0x" + hexEncode(sig),
		Signer:    codec.FormatEVMAddress([20]byte(a.address)),
	}, nil
}
