package batch

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pumpbatch/engine/internal/computebudget"
)

func makeOperations(t *testing.T, count int) []*Operation {
	t.Helper()
	operations := make([]*Operation, count)
	for i := range operations {
		operations[i] = &Operation{
			ID:   fmt.Sprintf("op-%d", i),
			Type: OpSolTransfer,
		}
	}
	return operations
}

func fixedBuild(t *testing.T, dataLen, accountCount int) BuildFunc {
	t.Helper()
	return func(ctx context.Context, op *Operation) ([]solana.Instruction, error) {
		return []solana.Instruction{syntheticInstruction(t, dataLen, accountCount)}, nil
	}
}

func testFeePayer(t *testing.T) solana.PublicKey {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return key.PublicKey()
}

func TestDetermineOptimalBatchSize_SmallOpsAllFit(t *testing.T) {
	operations := makeOperations(t, 5)

	decision, err := DetermineOptimalBatchSize(context.Background(), operations, testFeePayer(t), nil,
		DefaultProbeLimit, fixedBuild(t, 12, 2), zap.NewNop())

	require.NoError(t, err)
	assert.Equal(t, 5, decision.MaxOpsPerBatch)
}

func TestDetermineOptimalBatchSize_StopsAtFirstOverflow(t *testing.T) {
	operations := makeOperations(t, 10)

	// Each instruction is ~300 bytes of payload plus account keys, so
	// only a couple fit under 1232.
	decision, err := DetermineOptimalBatchSize(context.Background(), operations, testFeePayer(t), nil,
		DefaultProbeLimit, fixedBuild(t, 300, 5), zap.NewNop())

	require.NoError(t, err)
	assert.Greater(t, decision.MaxOpsPerBatch, 0)
	assert.Less(t, decision.MaxOpsPerBatch, 10)
	assert.Contains(t, decision.Reasoning, "exceeded limits")

	// The reported size must actually fit.
	var instructions []solana.Instruction
	build := fixedBuild(t, 300, 5)
	for i := 0; i < decision.MaxOpsPerBatch; i++ {
		built, err := build(context.Background(), operations[i])
		require.NoError(t, err)
		instructions = append(instructions, built...)
	}
	limits := EstimateLimits(instructions, []solana.PublicKey{testFeePayer(t)})
	assert.True(t, limits.CanFit)
}

func TestDetermineOptimalBatchSize_SingleOversizedOpStillReturnsOne(t *testing.T) {
	operations := makeOperations(t, 3)

	decision, err := DetermineOptimalBatchSize(context.Background(), operations, testFeePayer(t), nil,
		DefaultProbeLimit, fixedBuild(t, 2000, 3), zap.NewNop())

	require.NoError(t, err)
	assert.Equal(t, 1, decision.MaxOpsPerBatch)
	assert.Contains(t, decision.Reasoning, "floor of 1")
}

func TestDetermineOptimalBatchSize_ProbeLimitCapsResult(t *testing.T) {
	operations := makeOperations(t, 50)

	decision, err := DetermineOptimalBatchSize(context.Background(), operations, testFeePayer(t), nil,
		4, fixedBuild(t, 10, 1), zap.NewNop())

	require.NoError(t, err)
	assert.Equal(t, 4, decision.MaxOpsPerBatch)
}

func TestDetermineOptimalBatchSize_ZeroProbeLimitUsesDefault(t *testing.T) {
	operations := makeOperations(t, 30)

	// Instructions share one program and one account, so the unique
	// account table stays flat and all probed sizes fit.
	program, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	account, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	shared := solana.NewInstruction(program.PublicKey(),
		[]*solana.AccountMeta{{PublicKey: account.PublicKey(), IsWritable: true}}, []byte{1})
	build := func(ctx context.Context, op *Operation) ([]solana.Instruction, error) {
		return []solana.Instruction{shared}, nil
	}

	decision, err := DetermineOptimalBatchSize(context.Background(), operations, testFeePayer(t), nil,
		0, build, zap.NewNop())

	require.NoError(t, err)
	assert.Equal(t, DefaultProbeLimit, decision.MaxOpsPerBatch)
}

func TestDetermineOptimalBatchSize_BuildFailureReturnsLastGoodSize(t *testing.T) {
	operations := makeOperations(t, 5)
	calls := 0
	build := func(ctx context.Context, op *Operation) ([]solana.Instruction, error) {
		calls++
		if calls == 3 {
			return nil, errors.New("pool state unavailable")
		}
		return []solana.Instruction{syntheticInstruction(t, 10, 2)}, nil
	}

	decision, err := DetermineOptimalBatchSize(context.Background(), operations, testFeePayer(t), nil,
		DefaultProbeLimit, build, zap.NewNop())

	require.NoError(t, err)
	assert.Equal(t, 2, decision.MaxOpsPerBatch)
	assert.Contains(t, decision.Reasoning, "build failed")
}

func TestDetermineOptimalBatchSize_IncludesPrependedInstructions(t *testing.T) {
	operations := makeOperations(t, 6)

	// Instructions share one program and one account so the size per
	// operation is exact: 233 bytes each over a 260-byte base table.
	// Four fit alone (1192 bytes); with the compute budget pair (two
	// instructions plus one program account, 54 bytes) only three do.
	program, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	account, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	shared := solana.NewInstruction(program.PublicKey(),
		[]*solana.AccountMeta{{PublicKey: account.PublicKey(), IsWritable: true}}, make([]byte, 228))
	build := func(ctx context.Context, op *Operation) ([]solana.Instruction, error) {
		return []solana.Instruction{shared}, nil
	}

	base, err := computebudget.BuildInstructions(computebudget.Config{Units: 200_000, UnitPrice: 1_000})
	require.NoError(t, err)
	require.Len(t, base, 2)

	feePayer := testFeePayer(t)

	without, err := DetermineOptimalBatchSize(context.Background(), operations, feePayer,
		nil, DefaultProbeLimit, build, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 4, without.MaxOpsPerBatch)

	seeded, err := DetermineOptimalBatchSize(context.Background(), operations, feePayer,
		base, DefaultProbeLimit, build, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 3, seeded.MaxOpsPerBatch)

	// The unadjusted size would overflow once the prepended instructions
	// are added back; the seeded size still fits.
	full := func(count int) []solana.Instruction {
		instructions := append([]solana.Instruction(nil), base...)
		for i := 0; i < count; i++ {
			instructions = append(instructions, shared)
		}
		return instructions
	}
	assert.False(t, EstimateLimits(full(without.MaxOpsPerBatch), []solana.PublicKey{feePayer}).CanFit)
	assert.True(t, EstimateLimits(full(seeded.MaxOpsPerBatch), []solana.PublicKey{feePayer}).CanFit)
}

func TestDetermineOptimalBatchSize_EmptyInput(t *testing.T) {
	decision, err := DetermineOptimalBatchSize(context.Background(), nil, testFeePayer(t), nil,
		DefaultProbeLimit, fixedBuild(t, 10, 1), zap.NewNop())

	require.NoError(t, err)
	assert.Equal(t, 1, decision.MaxOpsPerBatch)
}
