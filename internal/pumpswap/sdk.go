// Package pumpswap implements the PumpSwap (pump AMM) SDK: pool state
// fetching, constant-product quoting and swap instruction building. The
// batch engine consumes it through a narrow interface and owns none of
// the pool math.
package pumpswap

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// AccountFetcher is the single RPC capability the SDK needs.
type AccountFetcher interface {
	GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*rpc.GetAccountInfoResult, error)
}

// Direction selects the swap side.
type Direction int

const (
	Buy Direction = iota
	Sell
)

// SwapState is a snapshot of everything needed to build swap
// instructions for one (pool, user) pair. Building from a SwapState is
// pure; only FetchSwapState touches the network.
type SwapState struct {
	Pool                 *Pool
	PoolAddress          solana.PublicKey
	User                 solana.PublicKey
	GlobalConfig         solana.PublicKey
	BaseReserves         uint64
	QuoteReserves        uint64
	LPFeeBasisPoints     uint64
	ProtocolFeeBPS       uint64
	ProtocolFeeRecipient solana.PublicKey
	UserBaseATA          solana.PublicKey
	UserQuoteATA         solana.PublicKey
}

// SDK fetches pool state and builds PumpSwap instructions.
type SDK struct {
	client AccountFetcher
	logger *zap.Logger
}

// New creates a PumpSwap SDK handle.
func New(client AccountFetcher, logger *zap.Logger) *SDK {
	return &SDK{
		client: client,
		logger: logger.Named("pumpswap"),
	}
}

// GlobalConfigPDA derives the global configuration account.
func GlobalConfigPDA() (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{[]byte(seedGlobalConfig)}, ProgramID)
}

// EventAuthorityPDA derives the Anchor event authority of the program.
func EventAuthorityPDA() (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{[]byte(seedEventAuthority)}, ProgramID)
}

// CoinCreatorVaultAuthority derives the authority of the coin creator's
// fee vault.
func CoinCreatorVaultAuthority(coinCreator solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{[]byte(seedCreatorVault), coinCreator.Bytes()},
		ProgramID,
	)
}

// FetchSwapState reads the pool, global config and pool token balances
// and returns a self-contained snapshot. This is the SDK's only network
// entry point.
func (s *SDK) FetchSwapState(ctx context.Context, poolAddress, user solana.PublicKey) (*SwapState, error) {
	poolInfo, err := s.client.GetAccountInfo(ctx, poolAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to get pool account: %w", err)
	}
	if poolInfo == nil || poolInfo.Value == nil {
		return nil, fmt.Errorf("pool account not found: %s", poolAddress.String())
	}
	pool, err := ParsePool(poolInfo.Value.Data.GetBinary())
	if err != nil {
		return nil, fmt.Errorf("failed to parse pool %s: %w", poolAddress.String(), err)
	}

	globalConfigAddr, _, err := GlobalConfigPDA()
	if err != nil {
		return nil, fmt.Errorf("failed to derive global config: %w", err)
	}
	configInfo, err := s.client.GetAccountInfo(ctx, globalConfigAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to get global config: %w", err)
	}
	if configInfo == nil || configInfo.Value == nil {
		return nil, fmt.Errorf("global config account not found: %s", globalConfigAddr.String())
	}
	config, err := ParseGlobalConfig(configInfo.Value.Data.GetBinary())
	if err != nil {
		return nil, fmt.Errorf("failed to parse global config: %w", err)
	}

	baseReserves, err := s.fetchTokenBalance(ctx, pool.PoolBaseTokenAccount)
	if err != nil {
		return nil, fmt.Errorf("failed to get pool base reserves: %w", err)
	}
	quoteReserves, err := s.fetchTokenBalance(ctx, pool.PoolQuoteTokenAccount)
	if err != nil {
		return nil, fmt.Errorf("failed to get pool quote reserves: %w", err)
	}

	userBaseATA, _, err := solana.FindAssociatedTokenAddress(user, pool.BaseMint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive user base ATA: %w", err)
	}
	userQuoteATA, _, err := solana.FindAssociatedTokenAddress(user, pool.QuoteMint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive user quote ATA: %w", err)
	}

	feeRecipient := firstNonZero(config.ProtocolFeeRecipients)
	if feeRecipient.IsZero() {
		return nil, fmt.Errorf("no protocol fee recipient in global config")
	}

	s.logger.Debug("Fetched swap state",
		zap.String("pool", poolAddress.String()),
		zap.Uint64("base_reserves", baseReserves),
		zap.Uint64("quote_reserves", quoteReserves))

	return &SwapState{
		Pool:                 pool,
		PoolAddress:          poolAddress,
		User:                 user,
		GlobalConfig:         globalConfigAddr,
		BaseReserves:         baseReserves,
		QuoteReserves:        quoteReserves,
		LPFeeBasisPoints:     config.LPFeeBasisPoints,
		ProtocolFeeBPS:       config.ProtocolFeeBasisPoints,
		ProtocolFeeRecipient: feeRecipient,
		UserBaseATA:          userBaseATA,
		UserQuoteATA:         userQuoteATA,
	}, nil
}

// BuildInstructions builds the swap instruction for baseAmount tokens in
// the given direction, with the slippage guard applied to the quote
// side. Pure: operates only on the snapshot.
func (s *SDK) BuildInstructions(state *SwapState, baseAmount, slippageBps uint64, direction Direction) ([]solana.Instruction, error) {
	if state == nil {
		return nil, fmt.Errorf("swap state is nil")
	}
	if baseAmount == 0 {
		return nil, fmt.Errorf("swap amount must be greater than zero")
	}

	vaultAuthority, _, err := CoinCreatorVaultAuthority(state.Pool.CoinCreator)
	if err != nil {
		return nil, fmt.Errorf("failed to derive coin creator vault authority: %w", err)
	}
	vaultATA, _, err := solana.FindAssociatedTokenAddress(vaultAuthority, state.Pool.QuoteMint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive coin creator vault ATA: %w", err)
	}
	feeRecipientATA, _, err := solana.FindAssociatedTokenAddress(state.ProtocolFeeRecipient, state.Pool.QuoteMint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive fee recipient ATA: %w", err)
	}
	eventAuthority, _, err := EventAuthorityPDA()
	if err != nil {
		return nil, fmt.Errorf("failed to derive event authority: %w", err)
	}

	params := &SwapInstructionParams{
		PoolAddress:                      state.PoolAddress,
		User:                             state.User,
		GlobalConfig:                     state.GlobalConfig,
		BaseMint:                         state.Pool.BaseMint,
		QuoteMint:                        state.Pool.QuoteMint,
		UserBaseTokenAccount:             state.UserBaseATA,
		UserQuoteTokenAccount:            state.UserQuoteATA,
		PoolBaseTokenAccount:             state.Pool.PoolBaseTokenAccount,
		PoolQuoteTokenAccount:            state.Pool.PoolQuoteTokenAccount,
		ProtocolFeeRecipient:             state.ProtocolFeeRecipient,
		ProtocolFeeRecipientTokenAccount: feeRecipientATA,
		EventAuthority:                   eventAuthority,
		CoinCreatorVaultATA:              vaultATA,
		CoinCreatorVaultAuthority:        vaultAuthority,
	}

	switch direction {
	case Buy:
		quoteIn, err := QuoteBuy(state.BaseReserves, state.QuoteReserves, baseAmount,
			state.LPFeeBasisPoints, state.ProtocolFeeBPS)
		if err != nil {
			return nil, err
		}
		params.IsBuy = true
		params.Amount1 = baseAmount
		params.Amount2 = applySlippageUp(quoteIn, slippageBps)
	case Sell:
		quoteOut, err := QuoteSell(state.BaseReserves, state.QuoteReserves, baseAmount,
			state.LPFeeBasisPoints, state.ProtocolFeeBPS)
		if err != nil {
			return nil, err
		}
		params.IsBuy = false
		params.Amount1 = baseAmount
		params.Amount2 = applySlippageDown(quoteOut, slippageBps)
	default:
		return nil, fmt.Errorf("unknown swap direction: %d", direction)
	}

	return []solana.Instruction{createSwapInstruction(params)}, nil
}

func (s *SDK) fetchTokenBalance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	info, err := s.client.GetAccountInfo(ctx, account)
	if err != nil {
		return 0, err
	}
	if info == nil || info.Value == nil {
		return 0, fmt.Errorf("token account not found: %s", account.String())
	}
	return parseTokenAmount(info.Value.Data.GetBinary())
}

func firstNonZero(keys [8]solana.PublicKey) solana.PublicKey {
	for _, key := range keys {
		if !key.IsZero() {
			return key
		}
	}
	return solana.PublicKey{}
}
