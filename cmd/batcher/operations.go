package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"

	"github.com/pumpbatch/engine/internal/batch"
	"github.com/pumpbatch/engine/internal/wallet"
)

// operationSpec is the on-disk form of one operation. Params are
// decoded against the concrete type for the operation kind.
type operationSpec struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Sender      string          `json:"sender"`
	Description string          `json:"description,omitempty"`
	Params      json.RawMessage `json:"params"`
}

type createAccountSpec struct {
	Mint    string `json:"mint"`
	WrapSOL bool   `json:"wrap_sol,omitempty"`
}

type transferSpec struct {
	Mint      string `json:"mint"`
	Recipient string `json:"recipient"`
	Amount    uint64 `json:"amount"`
	Decimals  uint8  `json:"decimals"`
}

type solTransferSpec struct {
	Recipient string `json:"recipient"`
	Lamports  uint64 `json:"lamports"`
}

type bondingCurveSpec struct {
	Mint        string `json:"mint"`
	TokenAmount uint64 `json:"token_amount"`
	SolAmount   uint64 `json:"sol_amount"`
	SlippageBps uint64 `json:"slippage_bps"`
	TrackVolume bool   `json:"track_volume,omitempty"`
}

type ammSpec struct {
	Pool        string `json:"pool"`
	BaseAmount  uint64 `json:"base_amount"`
	SlippageBps uint64 `json:"slippage_bps"`
}

// loadOperations reads the operations file and binds each entry to its
// sender wallet.
func loadOperations(path string, wallets map[string]*wallet.Wallet, defaultSlippageBps uint64) ([]*batch.Operation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read operations file: %w", err)
	}

	var specs []operationSpec
	if err := json.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("failed to parse operations file: %w", err)
	}

	operations := make([]*batch.Operation, 0, len(specs))
	for i, spec := range specs {
		op, err := spec.toOperation(wallets, defaultSlippageBps)
		if err != nil {
			return nil, fmt.Errorf("operation %d (%s): %w", i, spec.ID, err)
		}
		operations = append(operations, op)
	}
	return operations, nil
}

func (s *operationSpec) toOperation(wallets map[string]*wallet.Wallet, defaultSlippageBps uint64) (*batch.Operation, error) {
	if s.ID == "" {
		return nil, fmt.Errorf("missing id")
	}
	sender, ok := wallets[s.Sender]
	if !ok && s.Sender != "" {
		return nil, fmt.Errorf("unknown sender wallet %q", s.Sender)
	}

	op := &batch.Operation{
		ID:          s.ID,
		Type:        batch.OpType(s.Type),
		Sender:      sender,
		Description: s.Description,
	}

	switch op.Type {
	case batch.OpCreateAccount:
		var params createAccountSpec
		if err := json.Unmarshal(s.Params, &params); err != nil {
			return nil, fmt.Errorf("invalid params: %w", err)
		}
		mint, err := solana.PublicKeyFromBase58(params.Mint)
		if err != nil {
			return nil, fmt.Errorf("invalid mint: %w", err)
		}
		op.Params = batch.CreateAccountParams{Mint: mint, WrapSOL: params.WrapSOL}

	case batch.OpTransfer:
		var params transferSpec
		if err := json.Unmarshal(s.Params, &params); err != nil {
			return nil, fmt.Errorf("invalid params: %w", err)
		}
		mint, err := solana.PublicKeyFromBase58(params.Mint)
		if err != nil {
			return nil, fmt.Errorf("invalid mint: %w", err)
		}
		recipient, err := solana.PublicKeyFromBase58(params.Recipient)
		if err != nil {
			return nil, fmt.Errorf("invalid recipient: %w", err)
		}
		op.Params = batch.TransferParams{
			Mint:      mint,
			Recipient: recipient,
			Amount:    params.Amount,
			Decimals:  params.Decimals,
		}

	case batch.OpSolTransfer:
		var params solTransferSpec
		if err := json.Unmarshal(s.Params, &params); err != nil {
			return nil, fmt.Errorf("invalid params: %w", err)
		}
		recipient, err := solana.PublicKeyFromBase58(params.Recipient)
		if err != nil {
			return nil, fmt.Errorf("invalid recipient: %w", err)
		}
		op.Params = batch.SolTransferParams{Recipient: recipient, Lamports: params.Lamports}

	case batch.OpBuyBondingCurve, batch.OpSellBondingCurve:
		var params bondingCurveSpec
		if err := json.Unmarshal(s.Params, &params); err != nil {
			return nil, fmt.Errorf("invalid params: %w", err)
		}
		mint, err := solana.PublicKeyFromBase58(params.Mint)
		if err != nil {
			return nil, fmt.Errorf("invalid mint: %w", err)
		}
		slippage, err := resolveSlippage(params.SlippageBps, defaultSlippageBps)
		if err != nil {
			return nil, err
		}
		op.Params = batch.BondingCurveParams{
			Mint:        mint,
			TokenAmount: params.TokenAmount,
			SolAmount:   params.SolAmount,
			SlippageBps: slippage,
			TrackVolume: params.TrackVolume,
		}

	case batch.OpBuyAMM, batch.OpSellAMM:
		var params ammSpec
		if err := json.Unmarshal(s.Params, &params); err != nil {
			return nil, fmt.Errorf("invalid params: %w", err)
		}
		pool, err := solana.PublicKeyFromBase58(params.Pool)
		if err != nil {
			return nil, fmt.Errorf("invalid pool: %w", err)
		}
		slippage, err := resolveSlippage(params.SlippageBps, defaultSlippageBps)
		if err != nil {
			return nil, err
		}
		op.Params = batch.AMMParams{
			Pool:        pool,
			BaseAmount:  params.BaseAmount,
			SlippageBps: slippage,
		}

	default:
		return nil, fmt.Errorf("unknown operation type %q", s.Type)
	}

	return op, nil
}

// resolveSlippage applies the configured default and caps slippage at
// 100%. Anything above 10000 bps would wrap the unsigned min-output
// math downstream.
func resolveSlippage(specBps, defaultBps uint64) (uint64, error) {
	bps := specBps
	if bps == 0 {
		bps = defaultBps
	}
	if bps > 10_000 {
		return 0, fmt.Errorf("slippage_bps %d exceeds 10000", bps)
	}
	return bps, nil
}
