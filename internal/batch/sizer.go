package batch

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// DefaultProbeLimit bounds how many operations the sizer probes. It is
// a safety cap, not a structural limit; callers can raise it.
const DefaultProbeLimit = 20

// SizeDecision is the sizer's output: how many operations to pack per
// transaction and why.
type SizeDecision struct {
	MaxOpsPerBatch int
	Reasoning      string
}

// BuildFunc builds the instructions for one operation.
type BuildFunc func(ctx context.Context, op *Operation) ([]solana.Instruction, error)

// DetermineOptimalBatchSize probes how many of the given operations fit
// one transaction by building real instructions for growing prefixes
// and estimating each candidate. Operation mix changes footprint
// sharply, so repeated local estimation beats any closed formula.
//
// base holds instructions the executor prepends to every transaction
// (compute budget). They are part of every candidate's footprint, so
// every probe estimate includes them.
//
// The floor is 1 even when a single operation already exceeds the
// limits. A one-operation transaction cannot be subdivided further, so
// the sizer lets it through and the submission surfaces the real
// rejection. See DESIGN.md for the decision record.
func DetermineOptimalBatchSize(ctx context.Context, operations []*Operation, feePayer solana.PublicKey, base []solana.Instruction, probeLimit int, build BuildFunc, logger *zap.Logger) (SizeDecision, error) {
	if len(operations) == 0 {
		return SizeDecision{MaxOpsPerBatch: 1, Reasoning: "no operations to size"}, nil
	}
	if probeLimit <= 0 {
		probeLimit = DefaultProbeLimit
	}

	probeCap := len(operations)
	if probeCap > probeLimit {
		probeCap = probeLimit
	}

	maxOps := 1
	instructions := append([]solana.Instruction(nil), base...)
	signerSet := make(map[solana.PublicKey]struct{})
	signers := []solana.PublicKey{feePayer}
	signerSet[feePayer] = struct{}{}

	for testSize := 1; testSize <= probeCap; testSize++ {
		op := operations[testSize-1]
		built, err := build(ctx, op)
		if err != nil {
			logger.Warn("Sizing probe aborted on build failure",
				zap.String("operation_id", op.ID),
				zap.Int("test_size", testSize),
				zap.Error(err))
			return SizeDecision{
				MaxOpsPerBatch: maxOps,
				Reasoning:      fmt.Sprintf("probe stopped at %d operations: build failed: %v", testSize, err),
			}, nil
		}
		instructions = append(instructions, built...)
		if op.Sender != nil {
			if _, ok := signerSet[op.Sender.PublicKey]; !ok {
				signerSet[op.Sender.PublicKey] = struct{}{}
				signers = append(signers, op.Sender.PublicKey)
			}
		}

		limits := EstimateLimits(instructions, signers)
		if !limits.CanFit {
			if testSize == 1 {
				return SizeDecision{
					MaxOpsPerBatch: 1,
					Reasoning: fmt.Sprintf("a single operation already exceeds limits (%v); floor of 1 applies",
						limits.Reasons),
				}, nil
			}
			return SizeDecision{
				MaxOpsPerBatch: maxOps,
				Reasoning: fmt.Sprintf("%d operations fit; %d exceeded limits (%v)",
					maxOps, testSize, limits.Reasons),
			}, nil
		}
		maxOps = testSize
	}

	return SizeDecision{
		MaxOpsPerBatch: maxOps,
		Reasoning:      fmt.Sprintf("all %d probed operations fit in one transaction", maxOps),
	}, nil
}
