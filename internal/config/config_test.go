package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_Valid(t *testing.T) {
	path := writeConfig(t, `{
		"rpc_list": ["https://api.mainnet-beta.solana.com"],
		"wallets_file": "wallets.csv",
		"fee_payer": "main"
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"https://api.mainnet-beta.solana.com"}, cfg.RPCList)
	assert.Equal(t, "wallets.csv", cfg.WalletsFile)
	assert.Equal(t, DefaultMaxParallel, cfg.MaxParallel)
	assert.Equal(t, DefaultProbeLimit, cfg.ProbeLimit)
	assert.Equal(t, uint64(DefaultSlippageBps), cfg.SlippageBps)
}

func TestLoadConfig_MissingRPCList(t *testing.T) {
	path := writeConfig(t, `{"wallets_file": "wallets.csv"}`)

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rpc_list")
}

func TestLoadConfig_MissingWalletsFile(t *testing.T) {
	path := writeConfig(t, `{"rpc_list": ["https://rpc.example"]}`)

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wallets_file")
}

func TestLoadConfig_RejectsNonHTTPRPC(t *testing.T) {
	path := writeConfig(t, `{
		"rpc_list": ["ftp://rpc.example"],
		"wallets_file": "wallets.csv"
	}`)

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RPC URL")
}

func TestLoadConfig_InvalidNumericParams(t *testing.T) {
	cases := map[string]string{
		"max_parallel":        `{"rpc_list":["https://rpc.example"],"wallets_file":"w.csv","max_parallel":0}`,
		"probe_limit":         `{"rpc_list":["https://rpc.example"],"wallets_file":"w.csv","probe_limit":-1}`,
		"confirm_timeout_sec": `{"rpc_list":["https://rpc.example"],"wallets_file":"w.csv","confirm_timeout_sec":0}`,
		"slippage_bps":        `{"rpc_list":["https://rpc.example"],"wallets_file":"w.csv","slippage_bps":20000}`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, content))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_EnvOverridesRPCList(t *testing.T) {
	path := writeConfig(t, `{
		"rpc_list": ["https://from-file.example"],
		"wallets_file": "wallets.csv"
	}`)

	t.Setenv("PUMPBATCH_RPC_LIST", "https://one.example, https://two.example")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://one.example", "https://two.example"}, cfg.RPCList)
}
