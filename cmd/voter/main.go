// Copyright 2025 Meridian Protocol
//
// Voter Entry Point
// Builds chain adapters from voter.toml and runs the scan/sign/submit loops

// Command voter runs the observe -> canonicalize -> sign -> submit pipeline:
// one EVM or native-chain adapter per configured chain, registered into a
// shared chain.Registry and driven by pkg/voter's Orchestrator.
package main

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/meridian-protocol/bridge/pkg/chain"
	"github.com/meridian-protocol/bridge/pkg/chain/evm"
	"github.com/meridian-protocol/bridge/pkg/chain/native"
	"github.com/meridian-protocol/bridge/pkg/config"
	"github.com/meridian-protocol/bridge/pkg/metrics"
	"github.com/meridian-protocol/bridge/pkg/sequencer"
	"github.com/meridian-protocol/bridge/pkg/store"
	"github.com/meridian-protocol/bridge/pkg/voter"
)

func main() {
	configPath := flag.String("config", "./voter.toml", "path to voter.toml")
	dbDir := flag.String("db-dir", "./voter-data", "directory for the embedded queue store")
	flag.Parse()

	cfg, err := config.LoadVoterConfig(*configPath)
	if err != nil {
		log.Fatalf("voter: %v", err)
	}
	log.Printf("voter init with %+v", cfg)

	engine, err := store.OpenGoLevelDB("voter", *dbDir)
	if err != nil {
		log.Fatalf("voter: open store: %v", err)
	}
	defer engine.Close()

	registry := chain.NewRegistry()

	if cfg.NativeConfig != nil {
		if err := registerNativeValidator(registry, cfg.NativeConfig, engine); err != nil {
			log.Fatalf("voter: init native adapter: %v", err)
		}
	}
	for _, ec := range cfg.EVMConfigs {
		if err := registerEVMValidator(registry, ec, engine); err != nil {
			log.Fatalf("voter: init evm adapter %d: %v", ec.ChainID, err)
		}
	}

	var reg *metrics.Registry
	if cfg.Metrics != "" {
		reg = metrics.NewRegistry()
		mux := http.NewServeMux()
		mux.Handle("/metrics", reg.Handler())
		go func() {
			if err := http.ListenAndServe(cfg.Metrics, mux); err != nil {
				log.Printf("voter: metrics server: %v", err)
			}
		}()
	}

	seq := sequencer.New(cfg.APIDest)
	orch := voter.New(registry, seq, engine, reg)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := orch.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("voter: %v", err)
	}
}

func registerEVMValidator(registry *chain.Registry, ec config.EVMChainConfig, engine *store.Engine) error {
	rpc, err := ethclient.Dial(ec.RPCEndpoint)
	if err != nil {
		return fmt.Errorf("dial rpc: %w", err)
	}
	profile := chain.Profile{
		IzarChainID:       ec.ChainID,
		Name:              fmt.Sprintf("evm-%d", ec.ChainID),
		StartHeight:       ec.FromHeight,
		SteadyStateWindow: 45,
		FastSyncWindow:    chain.MaxFastSyncWindow,
		FastSyncSubWindow: chain.FastSyncSubWindow,
	}
	adapter, err := evm.NewVoterAdapter(profile, rpc, ec.PrivateKey, common.HexToAddress(ec.LockContract), common.HexToAddress(ec.WrapContract), engine)
	if err != nil {
		return err
	}
	registry.RegisterValidator(ec.ChainID, adapter)
	return nil
}

func registerNativeValidator(registry *chain.Registry, nc *config.NativeChainConfig, engine *store.Engine) error {
	rpc := native.NewJSONRPCClient(nc.RPCDest)
	profile := chain.Profile{
		IzarChainID:       nc.ChainID,
		Name:              "native",
		StartHeight:       nc.FromHeight,
		SteadyStateWindow: 45,
		FastSyncWindow:    chain.MaxFastSyncWindow,
		FastSyncSubWindow: chain.FastSyncSubWindow,
	}
	signKey, err := parseEd25519Key(nc.PrivateKey)
	if err != nil {
		return fmt.Errorf("parse native signing key: %w", err)
	}
	adapter, err := native.NewVoterAdapter(profile, rpc, signKey, nc.Address, engine)
	if err != nil {
		return err
	}
	registry.RegisterValidator(nc.ChainID, adapter)
	return nil
}

// parseEd25519Key decodes a hex-encoded 64-byte ed25519 private key, the
// same wire shape the native-chain config's EVM counterpart uses for its
// ECDSA key.
func parseEd25519Key(hexKey string) (ed25519.PrivateKey, error) {
	b, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, err
	}
	if len(b) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("expected %d bytes, got %d", ed25519.PrivateKeySize, len(b))
	}
	return ed25519.PrivateKey(b), nil
}
