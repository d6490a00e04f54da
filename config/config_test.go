package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigYAML = `
network:
  rpc_url: https://soroban-testnet.stellar.org
  passphrase: "Test SDF Network ; September 2015"
  name: testnet
contract:
  address: CA3D5KRYM6CB7OWQ6TWYRR3Z4T7GNZLKERYNZGGA5SOAOPIFY6YQGAXE
  admin_address: GBZXP4PWGMIYJKGNNWI3YVBPQIOVZOLNXL7OJMI3WFQLHA4NABOTYZLR
pipeline:
  base_fee: 100
  timeout_seconds: 300
  poll_interval_ms: 1000
  max_poll_attempts: 30
session:
  settle_delay_ms: 2000
`

func writeTestConfig(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfigYAML), 0o600))

	return path
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFile(writeTestConfig(t))
	require.NoError(t, err)

	assert.Equal(t, "https://soroban-testnet.stellar.org", cfg.Network.RPCURL)
	assert.Equal(t, "Test SDF Network ; September 2015", cfg.Network.Passphrase)
	assert.Equal(t, "testnet", cfg.Network.Name)
	assert.Equal(t, "CA3D5KRYM6CB7OWQ6TWYRR3Z4T7GNZLKERYNZGGA5SOAOPIFY6YQGAXE", cfg.Contract.Address)
	assert.Equal(t, "GBZXP4PWGMIYJKGNNWI3YVBPQIOVZOLNXL7OJMI3WFQLHA4NABOTYZLR", cfg.Contract.AdminAddress)
	assert.Equal(t, int64(100), cfg.Pipeline.BaseFee)
	assert.Equal(t, int64(300), cfg.Pipeline.TimeoutSeconds)
	assert.Equal(t, int64(1000), cfg.Pipeline.PollIntervalMS)
	assert.Equal(t, uint(30), cfg.Pipeline.MaxPollAttempts)
	assert.Equal(t, int64(2000), cfg.Session.SettleDelayMS)

	require.NoError(t, cfg.Validate())
}

func TestLoadFile_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("TOKENFLEX_NETWORK_RPC_URL", "https://rpc.example.org")
	t.Setenv("TOKENFLEX_NETWORK_PASSPHRASE", "Public Global Stellar Network ; September 2015")
	t.Setenv("TOKENFLEX_CONTRACT_ADDRESS", "CA3D5KRYM6CB7OWQ6TWYRR3Z4T7GNZLKERYNZGGA5SOAOPIFY6YQGAXE")
	t.Setenv("TOKENFLEX_WALLET_SIGNER_KEY", "0xdeadbeef")

	cfg, err := LoadEnv()
	require.NoError(t, err)

	assert.Equal(t, "https://rpc.example.org", cfg.Network.RPCURL)
	assert.Equal(t, "Public Global Stellar Network ; September 2015", cfg.Network.Passphrase)
	assert.Equal(t, "0xdeadbeef", cfg.Wallet.SignerKey)

	require.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("TOKENFLEX_NETWORK_RPC_URL", "https://override.example.org")

	cfg, err := Load(writeTestConfig(t))
	require.NoError(t, err)

	assert.Equal(t, "https://override.example.org", cfg.Network.RPCURL)
	// Values without env overrides come from the file.
	assert.Equal(t, "testnet", cfg.Network.Name)
}

func TestLoad_MissingFileFallsBackToEnv(t *testing.T) {
	t.Setenv("TOKENFLEX_NETWORK_RPC_URL", "https://env-only.example.org")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "https://env-only.example.org", cfg.Network.RPCURL)
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	valid := Config{
		Network: NetworkConfig{
			RPCURL:     "https://rpc.example.org",
			Passphrase: "Test SDF Network ; September 2015",
		},
		Contract: ContractConfig{Address: "CA3D5KRYM6CB7OWQ6TWYRR3Z4T7GNZLKERYNZGGA5SOAOPIFY6YQGAXE"},
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "missing rpc url", mutate: func(c *Config) { c.Network.RPCURL = "" }},
		{name: "missing passphrase", mutate: func(c *Config) { c.Network.Passphrase = "" }},
		{name: "missing contract address", mutate: func(c *Config) { c.Contract.Address = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid
			tt.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
