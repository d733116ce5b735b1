package pumpfun

import "github.com/gagliardetto/solana-go"

// Known pump.fun protocol addresses
var (
	// ProgramID is the pump.fun bonding curve program
	ProgramID = solana.MustPublicKeyFromBase58("6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P")

	// FeeProgramID owns the fee_config PDA. It is a separate program from
	// the main pump.fun program; deriving fee_config against ProgramID
	// yields a valid-looking but wrong address.
	FeeProgramID = solana.MustPublicKeyFromBase58("pfeeUxB6jkeY1Hxd7CsFCAjcbHA9rWtchMGdZ6VojVZ")

	// DefaultFeeRecipient is the mainnet fee recipient published in the
	// global account. Used when the caller does not resolve it from chain.
	DefaultFeeRecipient = solana.MustPublicKeyFromBase58("CebN5WGQ4jvEPvsVU4EoHEpgzq1VV7AbicfhtW4xC9iM")

	AssociatedTokenProgramID = solana.SPLAssociatedTokenAccountProgramID
)

// Instruction discriminators extracted from the IDL. Opaque protocol
// constants, copied verbatim.
var (
	BuyDiscriminator  = []byte{0x66, 0x06, 0x3d, 0x12, 0x01, 0xda, 0xeb, 0xea}
	SellDiscriminator = []byte{0x33, 0xe6, 0x85, 0xa4, 0x01, 0x7f, 0x83, 0xad}
)

// PDA seed strings. These match the on-chain seed constraints byte for
// byte and must never be edited.
const (
	seedGlobal                  = "global"
	seedBondingCurve            = "bonding-curve"
	seedCreatorVault            = "creator-vault"
	seedEventAuthority          = "__event_authority"
	seedGlobalVolumeAccumulator = "global_volume_accumulator"
	seedUserVolumeAccumulator   = "user_volume_accumulator"
	seedFeeConfig               = "fee_config"
)

// Payload sizes for the fixed-layout argument blocks.
const (
	BuyInstructionSize  = 8 + 8 + 8 + 1 // discriminator, amount, maxSolCost, trackVolume
	SellInstructionSize = 8 + 8 + 8     // discriminator, amount, minSolOutput
)
