// Copyright 2025 Meridian Protocol
//
// Relayer Entry Point
// Builds chain operators from relayer.toml and runs the REST ingress and drain loops

// Command relayer runs the ingest -> execute -> pending -> finalize
// pipeline: a REST ingress plus one EVM or native-chain operator per
// configured chain, registered into a shared chain.Registry and driven by
// pkg/relayer's Orchestrator.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
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
	"github.com/meridian-protocol/bridge/pkg/relayer"
	"github.com/meridian-protocol/bridge/pkg/sequencer"
	"github.com/meridian-protocol/bridge/pkg/store"
)

func main() {
	configPath := flag.String("config", "./relayer.toml", "path to relayer.toml")
	dbDir := flag.String("db-dir", "./relayer-data", "directory for the embedded queue store")
	flag.Parse()

	cfg, err := config.LoadRelayerConfig(*configPath)
	if err != nil {
		log.Fatalf("relayer: %v", err)
	}
	log.Printf("relayer init with %+v", cfg)

	engine, err := store.OpenGoLevelDB("relayer", *dbDir)
	if err != nil {
		log.Fatalf("relayer: open store: %v", err)
	}
	defer engine.Close()

	registry := chain.NewRegistry()

	var nativeOp *native.OperatorAdapter
	if cfg.NativeConfig != nil {
		op, err := registerNativeOperator(registry, cfg.NativeConfig, engine)
		if err != nil {
			log.Fatalf("relayer: init native adapter: %v", err)
		}
		nativeOp = op
	}
	for _, ec := range cfg.EVMConfigs {
		if err := registerEVMOperator(registry, ec); err != nil {
			log.Fatalf("relayer: init evm adapter %d: %v", ec.ChainID, err)
		}
	}

	var reg *metrics.Registry
	if cfg.Metrics != "" {
		reg = metrics.NewRegistry()
	}

	seq := sequencer.New(cfg.APIDest)
	addr := fmt.Sprintf(":%d", cfg.Port)
	orch := relayer.New(registry, seq, engine, addr, reg)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if nativeOp != nil {
		go nativeOp.RunRecordScan(ctx)
	}

	if err := orch.Run(ctx); err != nil {
		log.Fatalf("relayer: %v", err)
	}
}

func registerEVMOperator(registry *chain.Registry, ec config.EVMChainConfig) error {
	rpc, err := ethclient.Dial(ec.RPCEndpoint)
	if err != nil {
		return fmt.Errorf("dial rpc: %w", err)
	}
	profile := chain.Profile{
		IzarChainID:   ec.ChainID,
		Name:          fmt.Sprintf("evm-%d", ec.ChainID),
		Confirmations: 12,
		GasLimit:      300000,
	}
	adapter, err := evm.NewOperatorAdapter(profile, rpc, ec.PrivateKey, common.HexToAddress(ec.BridgeAddr), common.HexToAddress(ec.LockContract))
	if err != nil {
		return err
	}
	registry.RegisterOperator(ec.ChainID, adapter)
	return nil
}

func registerNativeOperator(registry *chain.Registry, nc *config.NativeChainConfig, engine *store.Engine) (*native.OperatorAdapter, error) {
	rpc := native.NewJSONRPCClient(nc.RPCDest)
	profile := chain.Profile{
		IzarChainID:    nc.ChainID,
		Name:           "native",
		StartHeight:    nc.FromHeight,
		FeeRecordFloor: 4_000_000,
	}
	adapter := native.NewOperatorAdapter(profile, rpc, engine)
	registry.RegisterOperator(nc.ChainID, adapter)
	return adapter, nil
}
