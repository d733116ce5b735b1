package pumpfun

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAccounts(t *testing.T) InstructionAccounts {
	t.Helper()

	mint := solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	user := solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	creator := solana.MustPublicKeyFromBase58("4wTV1YmiEkRvAtNtsSGPtUrqRYQMe5SKy2uB4Jjaxnjf")

	accounts, err := ResolveInstructionAccounts(mint, user, creator)
	require.NoError(t, err)
	return accounts
}

func TestBuildBuyInstruction_Payload(t *testing.T) {
	accounts := testAccounts(t)

	ix := BuildBuyInstruction(accounts, 1_000_000, 500_000_000, true)

	data, err := ix.Data()
	require.NoError(t, err)

	assert.Len(t, data, 25, "buy payload is exactly 25 bytes")
	assert.Equal(t, BuyDiscriminator, data[0:8], "payload must begin with the buy discriminator")
	assert.Equal(t, uint64(1_000_000), binary.LittleEndian.Uint64(data[8:16]))
	assert.Equal(t, uint64(500_000_000), binary.LittleEndian.Uint64(data[16:24]))
	assert.Equal(t, byte(1), data[24], "track volume flag set")
}

func TestBuildBuyInstruction_TrackVolumeOff(t *testing.T) {
	accounts := testAccounts(t)

	ix := BuildBuyInstruction(accounts, 1, 1, false)

	data, err := ix.Data()
	require.NoError(t, err)
	assert.Equal(t, byte(0), data[24])
}

func TestBuildBuyInstruction_AccountOrder(t *testing.T) {
	accounts := testAccounts(t)

	ix := BuildBuyInstruction(accounts, 1, 1, false)
	metas := ix.Accounts()
	require.Len(t, metas, 16)

	expected := []solana.PublicKey{
		accounts.Global,
		accounts.FeeRecipient,
		accounts.Mint,
		accounts.BondingCurve,
		accounts.AssociatedBondingCurve,
		accounts.AssociatedUser,
		accounts.User,
		solana.SystemProgramID,
		solana.TokenProgramID,
		accounts.CreatorVault,
		accounts.EventAuthority,
		ProgramID,
		accounts.GlobalVolumeAccumulator,
		accounts.UserVolumeAccumulator,
		accounts.FeeConfig,
		FeeProgramID,
	}
	for i, want := range expected {
		assert.Equal(t, want, metas[i].PublicKey, "buy account position %d", i)
	}

	assert.True(t, metas[6].IsSigner, "user signs")
	assert.False(t, metas[0].IsWritable, "global is read-only")
	assert.True(t, metas[3].IsWritable, "bonding curve is writable")
}

func TestBuildSellInstruction_Payload(t *testing.T) {
	accounts := testAccounts(t)

	ix := BuildSellInstruction(accounts, 2_500_000, 90_000_000)

	data, err := ix.Data()
	require.NoError(t, err)

	assert.Len(t, data, 24, "sell payload is exactly 24 bytes, no track volume flag")
	assert.Equal(t, SellDiscriminator, data[0:8], "payload must begin with the sell discriminator")
	assert.Equal(t, uint64(2_500_000), binary.LittleEndian.Uint64(data[8:16]))
	assert.Equal(t, uint64(90_000_000), binary.LittleEndian.Uint64(data[16:24]))
}

func TestBuildSellInstruction_AccountOrder(t *testing.T) {
	accounts := testAccounts(t)

	ix := BuildSellInstruction(accounts, 1, 1)
	metas := ix.Accounts()
	require.Len(t, metas, 12)

	// Sell puts the creator vault at position 8, before the token
	// program. The order differs from buy and must stay that way.
	assert.Equal(t, accounts.CreatorVault, metas[8].PublicKey)
	assert.Equal(t, solana.TokenProgramID, metas[9].PublicKey)
	assert.Equal(t, accounts.EventAuthority, metas[10].PublicKey)
	assert.Equal(t, ProgramID, metas[11].PublicKey)
}

func TestMaxSolCost(t *testing.T) {
	tests := []struct {
		name        string
		solAmount   uint64
		slippageBps uint64
		want        uint64
	}{
		{"no slippage", 1_000_000_000, 0, 1_000_000_000},
		{"one percent", 1_000_000_000, 100, 1_010_000_000},
		{"five percent", 200_000_000, 500, 210_000_000},
		{"full tolerance", 1_000, 10000, 2_000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MaxSolCost(tt.solAmount, tt.slippageBps))
		})
	}
}

func TestMinSolOutput(t *testing.T) {
	assert.Equal(t, uint64(990_000_000), MinSolOutput(1_000_000_000, 100))
	assert.Equal(t, uint64(1_000_000_000), MinSolOutput(1_000_000_000, 0))
	assert.Equal(t, uint64(0), MinSolOutput(1_000_000_000, 10_000))

	// Past 100% the guard stays at zero instead of wrapping the
	// unsigned arithmetic into an enormous minimum.
	assert.Equal(t, uint64(0), MinSolOutput(1_000_000_000, 12_000))
}

func TestMaxSolCost_NeverBelowInput(t *testing.T) {
	// The buy guard protects the buyer by allowing more, never less.
	for _, bps := range []uint64{0, 1, 50, 100, 9999} {
		assert.GreaterOrEqual(t, MaxSolCost(123_456_789, bps), uint64(123_456_789))
	}
}
