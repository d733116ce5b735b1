package main

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pumpbatch/engine/internal/batch"
	"github.com/pumpbatch/engine/internal/wallet"
)

func writeOperationsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "operations.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func testWallets(t *testing.T) map[string]*wallet.Wallet {
	t.Helper()
	w, err := wallet.NewRandom()
	require.NoError(t, err)
	return map[string]*wallet.Wallet{"trader": w}
}

func randomAddress(t *testing.T) string {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return key.PublicKey().String()
}

func TestLoadOperations_ParsesMixedFile(t *testing.T) {
	wallets := testWallets(t)
	mint := randomAddress(t)
	recipient := randomAddress(t)

	path := writeOperationsFile(t, fmt.Sprintf(`[
		{"id": "op-1", "type": "sol-transfer", "sender": "trader",
		 "params": {"recipient": %q, "lamports": 5000}},
		{"id": "op-2", "type": "buy-bonding-curve", "sender": "trader",
		 "params": {"mint": %q, "token_amount": 1000, "sol_amount": 2000}}
	]`, recipient, mint))

	operations, err := loadOperations(path, wallets, 250)

	require.NoError(t, err)
	require.Len(t, operations, 2)
	assert.Equal(t, batch.OpSolTransfer, operations[0].Type)
	assert.Same(t, wallets["trader"], operations[0].Sender)

	// Omitted slippage falls back to the configured default.
	params, ok := operations[1].Params.(batch.BondingCurveParams)
	require.True(t, ok)
	assert.Equal(t, uint64(250), params.SlippageBps)
}

func TestLoadOperations_RejectsExcessiveSlippage(t *testing.T) {
	path := writeOperationsFile(t, fmt.Sprintf(`[
		{"id": "op-1", "type": "sell-bonding-curve", "sender": "trader",
		 "params": {"mint": %q, "token_amount": 1000, "slippage_bps": 12000}}
	]`, randomAddress(t)))

	_, err := loadOperations(path, testWallets(t), 250)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "slippage_bps 12000 exceeds 10000")
}

func TestLoadOperations_RejectsExcessiveAMMSlippage(t *testing.T) {
	path := writeOperationsFile(t, fmt.Sprintf(`[
		{"id": "op-1", "type": "sell-amm", "sender": "trader",
		 "params": {"pool": %q, "base_amount": 1000, "slippage_bps": 10001}}
	]`, randomAddress(t)))

	_, err := loadOperations(path, testWallets(t), 250)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds 10000")
}

func TestLoadOperations_UnknownSender(t *testing.T) {
	path := writeOperationsFile(t, fmt.Sprintf(`[
		{"id": "op-1", "type": "sol-transfer", "sender": "ghost",
		 "params": {"recipient": %q, "lamports": 1}}
	]`, randomAddress(t)))

	_, err := loadOperations(path, testWallets(t), 250)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown sender wallet")
}

func TestResolveSlippage(t *testing.T) {
	tests := []struct {
		name       string
		specBps    uint64
		defaultBps uint64
		want       uint64
		wantErr    bool
	}{
		{name: "explicit value wins", specBps: 500, defaultBps: 250, want: 500},
		{name: "zero falls back to default", specBps: 0, defaultBps: 250, want: 250},
		{name: "full slippage allowed", specBps: 10_000, defaultBps: 250, want: 10_000},
		{name: "over full slippage rejected", specBps: 10_001, defaultBps: 250, wantErr: true},
		{name: "oversized default rejected", specBps: 0, defaultBps: 20_000, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveSlippage(tt.specBps, tt.defaultBps)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
