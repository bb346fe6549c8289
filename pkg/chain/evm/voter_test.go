// Copyright 2025 Meridian Protocol
//
// Unit tests for the EVM voter adapter

package evm

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/meridian-protocol/bridge/pkg/chain"
	"github.com/meridian-protocol/bridge/pkg/codec"
	"github.com/meridian-protocol/bridge/pkg/store"
)

const testPrivKey = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

type fakeRPC struct {
	latest uint64
	logs   []types.Log
}

func (f *fakeRPC) BlockNumber(ctx context.Context) (uint64, error) { return f.latest, nil }
func (f *fakeRPC) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	return f.logs, nil
}
func (f *fakeRPC) TransactionReceipt(ctx context.Context, h common.Hash) (*types.Receipt, error) {
	return nil, ethereum.NotFound
}
func (f *fakeRPC) SendTransaction(ctx context.Context, tx *types.Transaction) error { return nil }
func (f *fakeRPC) PendingNonceAt(ctx context.Context, a common.Address) (uint64, error) {
	return 0, nil
}
func (f *fakeRPC) SuggestGasPrice(ctx context.Context) (*big.Int, error) { return big.NewInt(1), nil }
func (f *fakeRPC) NetworkID(ctx context.Context) (*big.Int, error)       { return big.NewInt(1), nil }

func newTestAdapter(t *testing.T, rpc RPC, profile chain.Profile) (*VoterAdapter, *store.Engine) {
	t.Helper()
	engine := store.OpenMemDB()
	t.Cleanup(func() { engine.Close() })

	lock := common.HexToAddress("0x1000000000000000000000000000000000000001")
	wrap := common.HexToAddress("0x1000000000000000000000000000000000000002")
	a, err := NewVoterAdapter(profile, rpc, testPrivKey, lock, wrap, engine)
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	return a, engine
}

func TestHandleLogPairBuildsCanonicalTx(t *testing.T) {
	a, engine := newTestAdapter(t, &fakeRPC{}, chain.Profile{IzarChainID: 1, Name: "test"})

	txHash := common.HexToHash("0xAAAABBBB00000000000000000000000000000000000000000000000000000001")
	payload := codec.EncodePayload("asset", "addr", big.NewInt(100))

	packetLog := packLog(t, packetSig, nil, packetArgs,
		common.HexToAddress("0x3333333333333333333333333333333333333333"),
		big.NewInt(7), uint16(2), []byte("dest"), payload)
	packetLog.TxHash = txHash

	token := common.HexToAddress("0x2222222222222222222222222222222222222222")
	sender := common.HexToAddress("0x3333333333333333333333333333333333333333")
	wrapLog := packLog(t, wrapperLockSig, []common.Hash{common.BytesToHash(token.Bytes()), common.BytesToHash(sender.Bytes())}, wrapperLockArgs,
		uint64(2), []byte("to"), big.NewInt(100), big.NewInt(1))
	wrapLog.TxHash = txHash

	if err := a.handleLogPair(packetLog, wrapLog); err != nil {
		t.Fatalf("handle pair: %v", err)
	}

	unconfirmed := store.NewMap[struct{}](engine, store.PrefixUnconfirmedTxs)
	wantKey := strings.ToLower(txHash.Hex())
	ok, err := unconfirmed.Contains([]byte(wantKey))
	if err != nil {
		t.Fatalf("contains: %v", err)
	}
	if !ok {
		t.Fatalf("expected unconfirmed entry under %s", wantKey)
	}
}

func TestHandleLogPairRejectsMismatchedTxHash(t *testing.T) {
	a, _ := newTestAdapter(t, &fakeRPC{}, chain.Profile{IzarChainID: 1, Name: "test"})

	packetLog := types.Log{Topics: []common.Hash{packetSig}, TxHash: common.HexToHash("0x01")}
	wrapLog := types.Log{Topics: []common.Hash{wrapperLockSig}, TxHash: common.HexToHash("0x02")}

	if err := a.handleLogPair(packetLog, wrapLog); err == nil {
		t.Fatal("expected mismatched tx hash error")
	}
}

func TestSyncNoopWhenCaughtUp(t *testing.T) {
	profile := chain.Profile{IzarChainID: 1, Name: "test", StartHeight: 100}
	a, _ := newTestAdapter(t, &fakeRPC{latest: 100}, profile)

	if err := a.Sync(context.Background()); err != nil {
		t.Fatalf("sync: %v", err)
	}
}

func TestFastSyncRejectsOversizedWindow(t *testing.T) {
	profile := chain.Profile{
		IzarChainID:       1,
		Name:              "test",
		StartHeight:       0,
		FastSyncWindow:    chain.MaxFastSyncWindow + 1,
		FastSyncSubWindow: chain.FastSyncSubWindow,
	}
	a, _ := newTestAdapter(t, &fakeRPC{latest: 10_000}, profile)

	err := a.Sync(context.Background())
	if !errors.Is(err, chain.ErrBadRange) {
		t.Fatalf("want ErrBadRange, got %v", err)
	}
}
