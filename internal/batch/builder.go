package batch

import (
	"context"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"go.uber.org/zap"

	"github.com/pumpbatch/engine/internal/pumpfun"
	"github.com/pumpbatch/engine/internal/pumpswap"
	solclient "github.com/pumpbatch/engine/internal/solana"
)

// AMMClient is the swap SDK surface the builder delegates AMM
// operations to. Pool math and account layout live behind it.
type AMMClient interface {
	FetchSwapState(ctx context.Context, poolAddress, user solana.PublicKey) (*pumpswap.SwapState, error)
	BuildInstructions(state *pumpswap.SwapState, baseAmount, slippageBps uint64, direction pumpswap.Direction) ([]solana.Instruction, error)
}

// BuildContext carries the collaborators instruction building needs:
// a read connection, the AMM SDK handle and the fee payer. It caches
// per-mint bonding curve creators and the global fee recipient, so
// repeated builds against the same mint stay off the network.
type BuildContext struct {
	Client   solclient.ClientInterface
	AMM      AMMClient
	FeePayer solana.PublicKey
	Logger   *zap.Logger

	mu           sync.Mutex
	creators     map[solana.PublicKey]solana.PublicKey
	feeRecipient solana.PublicKey
}

// NewBuildContext creates a build context.
func NewBuildContext(client solclient.ClientInterface, amm AMMClient, feePayer solana.PublicKey, logger *zap.Logger) *BuildContext {
	return &BuildContext{
		Client:   client,
		AMM:      amm,
		FeePayer: feePayer,
		Logger:   logger.Named("builder"),
		creators: make(map[solana.PublicKey]solana.PublicKey),
	}
}

// Build produces the instructions for one operation. The dispatch is an
// exhaustive switch over the closed operation set; anything else is an
// UnknownOperationTypeError. A build failure affects only this
// operation.
func (b *BuildContext) Build(ctx context.Context, op *Operation) ([]solana.Instruction, error) {
	if op.Sender == nil {
		return nil, fmt.Errorf("operation %s: %w", op.ID, ErrMissingSender)
	}

	switch op.Type {
	case OpCreateAccount:
		params, ok := op.Params.(CreateAccountParams)
		if !ok {
			return nil, invalidParams(op)
		}
		return b.buildCreateAccount(op, params)

	case OpTransfer:
		params, ok := op.Params.(TransferParams)
		if !ok {
			return nil, invalidParams(op)
		}
		return b.buildTransfer(op, params)

	case OpSolTransfer:
		params, ok := op.Params.(SolTransferParams)
		if !ok {
			return nil, invalidParams(op)
		}
		instruction := system.NewTransferInstruction(
			params.Lamports,
			op.Sender.PublicKey,
			params.Recipient,
		).Build()
		return []solana.Instruction{instruction}, nil

	case OpBuyBondingCurve:
		params, ok := op.Params.(BondingCurveParams)
		if !ok {
			return nil, invalidParams(op)
		}
		accounts, err := b.resolveCurveAccounts(ctx, params.Mint, op.Sender.PublicKey)
		if err != nil {
			return nil, err
		}
		maxSolCost := pumpfun.MaxSolCost(params.SolAmount, params.SlippageBps)
		instruction := pumpfun.BuildBuyInstruction(accounts, params.TokenAmount, maxSolCost, params.TrackVolume)
		return []solana.Instruction{instruction}, nil

	case OpSellBondingCurve:
		params, ok := op.Params.(BondingCurveParams)
		if !ok {
			return nil, invalidParams(op)
		}
		accounts, err := b.resolveCurveAccounts(ctx, params.Mint, op.Sender.PublicKey)
		if err != nil {
			return nil, err
		}
		minSolOutput := pumpfun.MinSolOutput(params.SolAmount, params.SlippageBps)
		instruction := pumpfun.BuildSellInstruction(accounts, params.TokenAmount, minSolOutput)
		return []solana.Instruction{instruction}, nil

	case OpBuyAMM:
		params, ok := op.Params.(AMMParams)
		if !ok {
			return nil, invalidParams(op)
		}
		return b.buildSwap(ctx, op, params, pumpswap.Buy)

	case OpSellAMM:
		params, ok := op.Params.(AMMParams)
		if !ok {
			return nil, invalidParams(op)
		}
		return b.buildSwap(ctx, op, params, pumpswap.Sell)

	default:
		return nil, &UnknownOperationTypeError{Type: op.Type}
	}
}

func (b *BuildContext) buildCreateAccount(op *Operation, params CreateAccountParams) ([]solana.Instruction, error) {
	instructions := []solana.Instruction{
		associatedtokenaccount.NewCreateInstruction(
			b.FeePayer,
			op.Sender.PublicKey,
			params.Mint,
		).Build(),
	}
	if params.WrapSOL {
		instructions = append(instructions, associatedtokenaccount.NewCreateInstruction(
			b.FeePayer,
			op.Sender.PublicKey,
			solana.WrappedSol,
		).Build())
	}
	return instructions, nil
}

func (b *BuildContext) buildTransfer(op *Operation, params TransferParams) ([]solana.Instruction, error) {
	senderATA, err := op.Sender.GetATA(params.Mint)
	if err != nil {
		return nil, fmt.Errorf("operation %s: failed to derive sender ATA: %w", op.ID, err)
	}
	recipientATA, _, err := solana.FindAssociatedTokenAddress(params.Recipient, params.Mint)
	if err != nil {
		return nil, fmt.Errorf("operation %s: failed to derive recipient ATA: %w", op.ID, err)
	}

	instruction := token.NewTransferCheckedInstruction(
		params.Amount,
		params.Decimals,
		senderATA,
		params.Mint,
		recipientATA,
		op.Sender.PublicKey,
		[]solana.PublicKey{},
	).Build()
	return []solana.Instruction{instruction}, nil
}

func (b *BuildContext) buildSwap(ctx context.Context, op *Operation, params AMMParams, direction pumpswap.Direction) ([]solana.Instruction, error) {
	state, err := b.AMM.FetchSwapState(ctx, params.Pool, op.Sender.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("operation %s: failed to fetch swap state: %w", op.ID, err)
	}
	return b.AMM.BuildInstructions(state, params.BaseAmount, params.SlippageBps, direction)
}

// resolveCurveAccounts derives the full bonding curve account set. The
// curve creator comes from the on-chain curve account and is cached per
// mint; the fee recipient comes from the global account, fetched once.
func (b *BuildContext) resolveCurveAccounts(ctx context.Context, mint, user solana.PublicKey) (pumpfun.InstructionAccounts, error) {
	creator, err := b.curveCreator(ctx, mint)
	if err != nil {
		return pumpfun.InstructionAccounts{}, err
	}
	accounts, err := pumpfun.ResolveInstructionAccounts(mint, user, creator)
	if err != nil {
		return pumpfun.InstructionAccounts{}, err
	}
	accounts.FeeRecipient = b.globalFeeRecipient(ctx)
	return accounts, nil
}

func (b *BuildContext) curveCreator(ctx context.Context, mint solana.PublicKey) (solana.PublicKey, error) {
	b.mu.Lock()
	creator, ok := b.creators[mint]
	b.mu.Unlock()
	if ok {
		return creator, nil
	}

	curve, err := pumpfun.BondingCurvePDA(mint)
	if err != nil {
		return solana.PublicKey{}, err
	}
	info, err := b.Client.GetAccountInfo(ctx, curve.Address)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to get bonding curve account: %w", err)
	}
	if info == nil || info.Value == nil {
		return solana.PublicKey{}, fmt.Errorf("bonding curve account not found for mint %s", mint.String())
	}
	state, err := pumpfun.ParseBondingCurveState(info.Value.Data.GetBinary())
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to parse bonding curve state: %w", err)
	}
	if state.Complete {
		b.Logger.Warn("Bonding curve already migrated",
			zap.String("mint", mint.String()))
	}

	b.mu.Lock()
	b.creators[mint] = state.Creator
	b.mu.Unlock()
	return state.Creator, nil
}

// globalFeeRecipient returns the fee recipient from the program's
// global account, falling back to the published default when the fetch
// fails. The default is correct on mainnet, so the fallback only loses
// freshness, not validity.
func (b *BuildContext) globalFeeRecipient(ctx context.Context) solana.PublicKey {
	b.mu.Lock()
	cached := b.feeRecipient
	b.mu.Unlock()
	if !cached.IsZero() {
		return cached
	}

	recipient := pumpfun.DefaultFeeRecipient
	global, err := pumpfun.GlobalPDA()
	if err == nil {
		if info, err := b.Client.GetAccountInfo(ctx, global.Address); err == nil && info != nil && info.Value != nil {
			if state, err := pumpfun.ParseGlobalState(info.Value.Data.GetBinary()); err == nil && !state.FeeRecipient.IsZero() {
				recipient = state.FeeRecipient
			}
		} else if err != nil {
			b.Logger.Debug("Global account fetch failed, using default fee recipient", zap.Error(err))
		}
	}

	b.mu.Lock()
	b.feeRecipient = recipient
	b.mu.Unlock()
	return recipient
}

func invalidParams(op *Operation) error {
	return fmt.Errorf("operation %s: params do not match type %s", op.ID, op.Type)
}
