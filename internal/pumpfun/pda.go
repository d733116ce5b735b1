package pumpfun

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// PDA is a program-derived address together with its bump seed.
type PDA struct {
	Address solana.PublicKey
	Bump    uint8
}

// GlobalPDA derives the global configuration account of the pump.fun
// program.
func GlobalPDA() (PDA, error) {
	return derive([][]byte{[]byte(seedGlobal)}, ProgramID)
}

// BondingCurvePDA derives the bonding curve account for a mint.
func BondingCurvePDA(mint solana.PublicKey) (PDA, error) {
	return derive([][]byte{[]byte(seedBondingCurve), mint.Bytes()}, ProgramID)
}

// CreatorVaultPDA derives the vault that accrues creator fees for the
// wallet that launched the token.
func CreatorVaultPDA(creator solana.PublicKey) (PDA, error) {
	return derive([][]byte{[]byte(seedCreatorVault), creator.Bytes()}, ProgramID)
}

// EventAuthorityPDA derives the Anchor event authority of the program.
func EventAuthorityPDA() (PDA, error) {
	return derive([][]byte{[]byte(seedEventAuthority)}, ProgramID)
}

// GlobalVolumeAccumulatorPDA derives the program-wide volume tracking
// account.
func GlobalVolumeAccumulatorPDA() (PDA, error) {
	return derive([][]byte{[]byte(seedGlobalVolumeAccumulator)}, ProgramID)
}

// UserVolumeAccumulatorPDA derives the per-user volume tracking account.
func UserVolumeAccumulatorPDA(user solana.PublicKey) (PDA, error) {
	return derive([][]byte{[]byte(seedUserVolumeAccumulator), user.Bytes()}, ProgramID)
}

// FeeConfigPDA derives the fee configuration account. The owning program
// is the fee program, not the main pump.fun program.
func FeeConfigPDA() (PDA, error) {
	return derive([][]byte{[]byte(seedFeeConfig), ProgramID.Bytes()}, FeeProgramID)
}

// AssociatedBondingCurve returns the bonding curve's associated token
// account for the mint.
func AssociatedBondingCurve(bondingCurve, mint solana.PublicKey) (solana.PublicKey, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(bondingCurve, mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive associated bonding curve: %w", err)
	}
	return ata, nil
}

func derive(seeds [][]byte, programID solana.PublicKey) (PDA, error) {
	addr, bump, err := solana.FindProgramAddress(seeds, programID)
	if err != nil {
		return PDA{}, fmt.Errorf("failed to derive program address: %w", err)
	}
	return PDA{Address: addr, Bump: bump}, nil
}
