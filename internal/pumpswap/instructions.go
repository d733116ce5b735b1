package pumpswap

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

// SwapInstructionParams contains all parameters needed to create a swap
// instruction.
type SwapInstructionParams struct {
	IsBuy bool

	PoolAddress                      solana.PublicKey
	User                             solana.PublicKey
	GlobalConfig                     solana.PublicKey
	BaseMint                         solana.PublicKey
	QuoteMint                        solana.PublicKey
	UserBaseTokenAccount             solana.PublicKey
	UserQuoteTokenAccount            solana.PublicKey
	PoolBaseTokenAccount             solana.PublicKey
	PoolQuoteTokenAccount            solana.PublicKey
	ProtocolFeeRecipient             solana.PublicKey
	ProtocolFeeRecipientTokenAccount solana.PublicKey
	EventAuthority                   solana.PublicKey
	CoinCreatorVaultATA              solana.PublicKey
	CoinCreatorVaultAuthority        solana.PublicKey

	// For buy: Amount1 = baseAmountOut, Amount2 = maxQuoteAmountIn
	// For sell: Amount1 = baseAmountIn, Amount2 = minQuoteAmountOut
	Amount1 uint64
	Amount2 uint64
}

// createSwapInstruction creates an instruction to buy or sell tokens in
// PumpSwap. The account order is mandated by the program and never
// reordered.
func createSwapInstruction(params *SwapInstructionParams) solana.Instruction {
	data := make([]byte, 8+8+8)
	if params.IsBuy {
		copy(data[0:8], buyDiscriminator)
	} else {
		copy(data[0:8], sellDiscriminator)
	}
	binary.LittleEndian.PutUint64(data[8:16], params.Amount1)
	binary.LittleEndian.PutUint64(data[16:24], params.Amount2)

	accountMetas := []*solana.AccountMeta{
		solana.NewAccountMeta(params.PoolAddress, false, false),
		solana.NewAccountMeta(params.User, true, true),
		solana.NewAccountMeta(params.GlobalConfig, false, false),
		solana.NewAccountMeta(params.BaseMint, false, false),
		solana.NewAccountMeta(params.QuoteMint, false, false),
		solana.NewAccountMeta(params.UserBaseTokenAccount, true, false),
		solana.NewAccountMeta(params.UserQuoteTokenAccount, true, false),
		solana.NewAccountMeta(params.PoolBaseTokenAccount, true, false),
		solana.NewAccountMeta(params.PoolQuoteTokenAccount, true, false),
		solana.NewAccountMeta(params.ProtocolFeeRecipient, false, false),
		solana.NewAccountMeta(params.ProtocolFeeRecipientTokenAccount, true, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
		solana.NewAccountMeta(AssociatedTokenProgramID, false, false),
		solana.NewAccountMeta(params.EventAuthority, false, false),
		solana.NewAccountMeta(ProgramID, false, false),
		solana.NewAccountMeta(params.CoinCreatorVaultATA, true, false),
		solana.NewAccountMeta(params.CoinCreatorVaultAuthority, false, false),
	}

	return solana.NewInstruction(ProgramID, accountMetas, data)
}
