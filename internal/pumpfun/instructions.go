package pumpfun

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// InstructionAccounts carries every address the buy/sell instructions
// reference. All of them are either protocol constants or PDAs derived in
// pda.go; none require a network call.
type InstructionAccounts struct {
	Global                  solana.PublicKey
	FeeRecipient            solana.PublicKey
	Mint                    solana.PublicKey
	BondingCurve            solana.PublicKey
	AssociatedBondingCurve  solana.PublicKey
	AssociatedUser          solana.PublicKey
	User                    solana.PublicKey
	CreatorVault            solana.PublicKey
	EventAuthority          solana.PublicKey
	GlobalVolumeAccumulator solana.PublicKey
	UserVolumeAccumulator   solana.PublicKey
	FeeConfig               solana.PublicKey
}

// ResolveInstructionAccounts derives the full account set for a
// (mint, user, creator) triple. FeeRecipient defaults to the published
// mainnet recipient and may be overwritten by the caller after fetching
// the global account.
func ResolveInstructionAccounts(mint, user, creator solana.PublicKey) (InstructionAccounts, error) {
	global, err := GlobalPDA()
	if err != nil {
		return InstructionAccounts{}, err
	}
	bondingCurve, err := BondingCurvePDA(mint)
	if err != nil {
		return InstructionAccounts{}, err
	}
	associatedBC, err := AssociatedBondingCurve(bondingCurve.Address, mint)
	if err != nil {
		return InstructionAccounts{}, err
	}
	associatedUser, _, err := solana.FindAssociatedTokenAddress(user, mint)
	if err != nil {
		return InstructionAccounts{}, fmt.Errorf("failed to derive associated user account: %w", err)
	}
	creatorVault, err := CreatorVaultPDA(creator)
	if err != nil {
		return InstructionAccounts{}, err
	}
	eventAuthority, err := EventAuthorityPDA()
	if err != nil {
		return InstructionAccounts{}, err
	}
	globalVolume, err := GlobalVolumeAccumulatorPDA()
	if err != nil {
		return InstructionAccounts{}, err
	}
	userVolume, err := UserVolumeAccumulatorPDA(user)
	if err != nil {
		return InstructionAccounts{}, err
	}
	feeConfig, err := FeeConfigPDA()
	if err != nil {
		return InstructionAccounts{}, err
	}

	return InstructionAccounts{
		Global:                  global.Address,
		FeeRecipient:            DefaultFeeRecipient,
		Mint:                    mint,
		BondingCurve:            bondingCurve.Address,
		AssociatedBondingCurve:  associatedBC,
		AssociatedUser:          associatedUser,
		User:                    user,
		CreatorVault:            creatorVault.Address,
		EventAuthority:          eventAuthority.Address,
		GlobalVolumeAccumulator: globalVolume.Address,
		UserVolumeAccumulator:   userVolume.Address,
		FeeConfig:               feeConfig.Address,
	}, nil
}

// MaxSolCost applies the buy-side slippage guard: the buyer is willing to
// pay up to this many lamports for the estimated token amount.
func MaxSolCost(solAmount, slippageBps uint64) uint64 {
	return solAmount * (10000 + slippageBps) / 10000
}

// MinSolOutput applies the sell-side slippage guard: the seller accepts
// no less than this many lamports. Slippage is capped at 100%; past
// that the guard is already zero and the subtraction would wrap.
func MinSolOutput(solAmount, slippageBps uint64) uint64 {
	if slippageBps >= 10000 {
		return 0
	}
	return solAmount * (10000 - slippageBps) / 10000
}

// BuildBuyInstruction builds a pump.fun buy instruction.
//
// Payload layout (25 bytes):
//
//	[0:8]   buy discriminator
//	[8:16]  token amount estimate, u64 LE
//	[16:24] max SOL cost in lamports, u64 LE
//	[24]    track volume flag, u8
func BuildBuyInstruction(accounts InstructionAccounts, amount, maxSolCost uint64, trackVolume bool) solana.Instruction {
	data := make([]byte, BuyInstructionSize)
	copy(data[0:8], BuyDiscriminator)
	binary.LittleEndian.PutUint64(data[8:16], amount)
	binary.LittleEndian.PutUint64(data[16:24], maxSolCost)
	if trackVolume {
		data[24] = 1
	}

	// Account list must be in the exact order expected by the program.
	// The program indexes accounts by position, not by name.
	insAccounts := []*solana.AccountMeta{
		{PublicKey: accounts.Global, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.FeeRecipient, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.Mint, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.BondingCurve, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.AssociatedBondingCurve, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.AssociatedUser, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.User, IsSigner: true, IsWritable: true},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.TokenProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.CreatorVault, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.EventAuthority, IsSigner: false, IsWritable: false},
		{PublicKey: ProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.GlobalVolumeAccumulator, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.UserVolumeAccumulator, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.FeeConfig, IsSigner: false, IsWritable: false},
		{PublicKey: FeeProgramID, IsSigner: false, IsWritable: false},
	}

	return solana.NewInstruction(ProgramID, insAccounts, data)
}

// BuildSellInstruction builds a pump.fun sell instruction.
//
// Payload layout (24 bytes):
//
//	[0:8]   sell discriminator
//	[8:16]  token amount, u64 LE
//	[16:24] min SOL output in lamports, u64 LE
//
// There is no track-volume flag on sell.
func BuildSellInstruction(accounts InstructionAccounts, amount, minSolOutput uint64) solana.Instruction {
	data := make([]byte, SellInstructionSize)
	copy(data[0:8], SellDiscriminator)
	binary.LittleEndian.PutUint64(data[8:16], amount)
	binary.LittleEndian.PutUint64(data[16:24], minSolOutput)

	// Sell orders the creator vault before the token program. Copied from
	// the IDL; do not normalize against the buy order.
	insAccounts := []*solana.AccountMeta{
		{PublicKey: accounts.Global, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.FeeRecipient, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.Mint, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.BondingCurve, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.AssociatedBondingCurve, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.AssociatedUser, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.User, IsSigner: true, IsWritable: true},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.CreatorVault, IsSigner: false, IsWritable: true},
		{PublicKey: solana.TokenProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.EventAuthority, IsSigner: false, IsWritable: false},
		{PublicKey: ProgramID, IsSigner: false, IsWritable: false},
	}

	return solana.NewInstruction(ProgramID, insAccounts, data)
}
