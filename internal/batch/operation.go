// Package batch groups heterogeneous operations into transactions that
// respect the protocol's size and account limits, executes them, and
// reports success or failure per operation.
package batch

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/pumpbatch/engine/internal/wallet"
)

// OpType identifies an operation kind. The set is closed: the builder
// rejects anything outside it.
type OpType string

const (
	OpCreateAccount    OpType = "create-account"
	OpTransfer         OpType = "transfer"
	OpSolTransfer      OpType = "sol-transfer"
	OpBuyBondingCurve  OpType = "buy-bonding-curve"
	OpSellBondingCurve OpType = "sell-bonding-curve"
	OpBuyAMM           OpType = "buy-amm"
	OpSellAMM          OpType = "sell-amm"
)

// ErrMissingSender is returned when an operation has no signing wallet.
var ErrMissingSender = errors.New("operation has no sender")

// UnknownOperationTypeError is returned for a type outside the closed
// operation set.
type UnknownOperationTypeError struct {
	Type OpType
}

func (e *UnknownOperationTypeError) Error() string {
	return fmt.Sprintf("unknown operation type: %q", string(e.Type))
}

// Operation is one requested action. ID must be unique within a run;
// Params must match the concrete type for Type. Immutable once built.
type Operation struct {
	ID          string
	Type        OpType
	Sender      *wallet.Wallet
	Params      any
	Description string
}

// CreateAccountParams creates the sender's associated token account for
// Mint. WrapSOL additionally creates the sender's wrapped SOL account.
type CreateAccountParams struct {
	Mint    solana.PublicKey
	WrapSOL bool
}

// TransferParams moves Amount base units of Mint from the sender to the
// recipient's associated token account.
type TransferParams struct {
	Mint      solana.PublicKey
	Recipient solana.PublicKey
	Amount    uint64
	Decimals  uint8
}

// SolTransferParams moves Lamports of native SOL.
type SolTransferParams struct {
	Recipient solana.PublicKey
	Lamports  uint64
}

// BondingCurveParams drives a pump.fun buy or sell.
//
// On buy, TokenAmount is the token estimate and SolAmount the intended
// spend before the slippage guard. On sell, TokenAmount is the amount
// sold and SolAmount the expected proceeds before the guard.
type BondingCurveParams struct {
	Mint        solana.PublicKey
	TokenAmount uint64
	SolAmount   uint64
	SlippageBps uint64
	TrackVolume bool
}

// AMMParams drives a PumpSwap pool swap of BaseAmount base tokens.
type AMMParams struct {
	Pool        solana.PublicKey
	BaseAmount  uint64
	SlippageBps uint64
}

// BatchResult is the per-operation outcome. Exactly one is produced for
// every input operation, in input order.
type BatchResult struct {
	OperationID string `json:"operationId"`
	Type        OpType `json:"type"`
	Success     bool   `json:"success"`
	Signature   string `json:"signature,omitempty"`
	Error       string `json:"error,omitempty"`
}
