// Copyright 2025 Meridian Protocol
//
// Role Configuration
// TOML-backed voter and relayer config structs

// Package config loads the per-role TOML configuration files: one chain
// entry per configured adapter, decoded with BurntSushi/toml.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// EVMChainConfig configures one EVM-side adapter.
type EVMChainConfig struct {
	ChainID      uint32 `toml:"chain_id"`
	PrivateKey   string `toml:"pk"`
	RPCEndpoint  string `toml:"dest"`
	LockContract string `toml:"lock_contract"`
	WrapContract string `toml:"wrap_contract"`
	BridgeAddr   string `toml:"bridge_contract"`
	FromHeight   uint64 `toml:"from_height"`
}

// NativeChainConfig configures the non-EVM adapter.
type NativeChainConfig struct {
	ChainID    uint32 `toml:"chain_id"`
	PrivateKey string `toml:"pk"`
	Address    string `toml:"address"`
	RPCDest    string `toml:"dest"`
	FromHeight uint64 `toml:"from_height"`
}

// VoterConfig is voter.toml's shape. Metrics, when set, is the listen
// address for the voter's own /metrics endpoint.
type VoterConfig struct {
	APIDest      string             `toml:"api_dest"`
	Metrics      string             `toml:"metrics"`
	NativeConfig *NativeChainConfig `toml:"native_config"`
	EVMConfigs   []EVMChainConfig   `toml:"evm_config"`
}

// RelayerConfig is relayer.toml's shape.
type RelayerConfig struct {
	APIDest      string             `toml:"api_dest"`
	Port         uint16             `toml:"port"`
	Metrics      string             `toml:"metrics"`
	NativeConfig *NativeChainConfig `toml:"native_config"`
	EVMConfigs   []EVMChainConfig   `toml:"evm_config"`
}

// LoadVoterConfig decodes a voter.toml file at path.
func LoadVoterConfig(path string) (*VoterConfig, error) {
	var cfg VoterConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: decode voter config: %w", err)
	}
	return &cfg, nil
}

// LoadRelayerConfig decodes a relayer.toml file at path.
func LoadRelayerConfig(path string) (*RelayerConfig, error) {
	var cfg RelayerConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: decode relayer config: %w", err)
	}
	return &cfg, nil
}
