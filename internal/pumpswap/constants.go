package pumpswap

import "github.com/gagliardetto/solana-go"

// Known PumpSwap (pump AMM) protocol addresses
var (
	ProgramID = solana.MustPublicKeyFromBase58("pAMMBay6oceH9fJKBRHGP5D4bD4sWpmSwMn52FMfXEA")

	AssociatedTokenProgramID = solana.SPLAssociatedTokenAccountProgramID

	WSOLMint = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
)

// Instruction discriminators extracted from the IDL
var (
	buyDiscriminator  = []byte{102, 6, 61, 18, 1, 218, 235, 234}
	sellDiscriminator = []byte{51, 230, 133, 164, 1, 127, 131, 173}
)

// Account discriminators extracted from the IDL
var (
	GlobalConfigDiscriminator = []byte{149, 8, 156, 202, 160, 252, 176, 217}
	PoolDiscriminator         = []byte{241, 154, 109, 4, 17, 177, 109, 188}
)

// PDA seed strings, protocol constants.
const (
	seedGlobalConfig   = "global_config"
	seedEventAuthority = "__event_authority"
	seedCreatorVault   = "creator_vault"
)
