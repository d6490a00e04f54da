// Package config loads the dashboard configuration from a YAML file, from
// environment variables, or both, with environment variables taking
// precedence over file values.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"

	"github.com/spf13/viper"
)

// NetworkConfig identifies the Stellar network and its RPC endpoint.
type NetworkConfig struct {
	RPCURL     string `mapstructure:"rpc_url" yaml:"rpc_url"`       // The Soroban RPC endpoint URL
	Passphrase string `mapstructure:"passphrase" yaml:"passphrase"` // The network passphrase signatures are scoped to
	Name       string `mapstructure:"name" yaml:"name"`             // Human-readable network name (e.g. testnet)
}

// ContractConfig locates the token contract.
type ContractConfig struct {
	Address      string `mapstructure:"address" yaml:"address"`             // The token contract address (C...)
	AdminAddress string `mapstructure:"admin_address" yaml:"admin_address"` // The contract admin account address (G...)
}

// WalletConfig is the configuration for the keypair-backed wallet.
//
// WARNING: This data type contains sensitive fields and should not be logged
// or set in file configuration.
type WalletConfig struct {
	SignerKey string `mapstructure:"signer_key" yaml:"signer_key"` // Secret: Hex-encoded ed25519 seed for the signing account
}

// PipelineConfig tunes transaction assembly and confirmation polling.
type PipelineConfig struct {
	BaseFee         int64 `mapstructure:"base_fee" yaml:"base_fee"`                   // Inclusion base fee in stroops
	TimeoutSeconds  int64 `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`     // Envelope validity window in seconds
	PollIntervalMS  int64 `mapstructure:"poll_interval_ms" yaml:"poll_interval_ms"`   // Delay between status polls in milliseconds
	MaxPollAttempts uint  `mapstructure:"max_poll_attempts" yaml:"max_poll_attempts"` // Status poll cap before timing out
}

// SessionConfig tunes the dashboard session behavior.
type SessionConfig struct {
	SettleDelayMS int64 `mapstructure:"settle_delay_ms" yaml:"settle_delay_ms"` // Delay before the post-spend balance refetch in milliseconds
}

// Config wraps the entire configuration for the token dashboard.
type Config struct {
	Network  NetworkConfig  `mapstructure:"network" yaml:"network"`
	Contract ContractConfig `mapstructure:"contract" yaml:"contract"`
	Wallet   WalletConfig   `mapstructure:"wallet" yaml:"wallet"`
	Pipeline PipelineConfig `mapstructure:"pipeline" yaml:"pipeline"`
	Session  SessionConfig  `mapstructure:"session" yaml:"session"`
}

// Validate checks the fields every deployment must set.
func (c *Config) Validate() error {
	if c.Network.RPCURL == "" {
		return errors.New("network.rpc_url is required")
	}
	if c.Network.Passphrase == "" {
		return errors.New("network.passphrase is required")
	}
	if c.Contract.Address == "" {
		return errors.New("contract.address is required")
	}

	return nil
}

// Load loads the config from the file path, falling back to env vars if the
// file does not exist. If the file exists, any env vars that are set will
// override the values loaded from the file.
func Load(filePath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(filePath)

	if err := bindEnvs(v); err != nil {
		return nil, err
	}

	// If the config file exists, we continue to read it, otherwise we
	// fall back to using environment variables.
	if _, err := os.Stat(filePath); !errors.Is(err, fs.ErrNotExist) {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	err := v.Unmarshal(cfg)

	return cfg, err
}

// LoadEnv loads the config from the environment variables.
func LoadEnv() (*Config, error) {
	v := viper.New()

	if err := bindEnvs(v); err != nil {
		return nil, err
	}

	cfg := &Config{}
	err := v.Unmarshal(cfg)

	return cfg, err
}

// LoadFile loads the config from a file.
func LoadFile(filePath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(filePath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	err := v.Unmarshal(cfg)

	return cfg, err
}

// envBindings defines how environment variables map to configuration keys
// used by Viper. Each entry maps a config key (as used in the struct, e.g.
// "network.rpc_url") to the environment variable names that can provide its
// value, checked in order.
var envBindings = map[string][]string{
	"network.rpc_url":            {"TOKENFLEX_NETWORK_RPC_URL"},
	"network.passphrase":         {"TOKENFLEX_NETWORK_PASSPHRASE"},
	"network.name":               {"TOKENFLEX_NETWORK_NAME"},
	"contract.address":           {"TOKENFLEX_CONTRACT_ADDRESS"},
	"contract.admin_address":     {"TOKENFLEX_CONTRACT_ADMIN_ADDRESS"},
	"wallet.signer_key":          {"TOKENFLEX_WALLET_SIGNER_KEY"},
	"pipeline.base_fee":          {"TOKENFLEX_PIPELINE_BASE_FEE"},
	"pipeline.timeout_seconds":   {"TOKENFLEX_PIPELINE_TIMEOUT_SECONDS"},
	"pipeline.poll_interval_ms":  {"TOKENFLEX_PIPELINE_POLL_INTERVAL_MS"},
	"pipeline.max_poll_attempts": {"TOKENFLEX_PIPELINE_MAX_POLL_ATTEMPTS"},
	"session.settle_delay_ms":    {"TOKENFLEX_SESSION_SETTLE_DELAY_MS"},
}

// bindEnvs binds the environment variables to the viper instance.
func bindEnvs(v *viper.Viper) error {
	for key, envs := range envBindings {
		inputs := slices.Insert(envs, 0, key)

		if err := v.BindEnv(inputs...); err != nil {
			return err
		}
	}

	return nil
}
