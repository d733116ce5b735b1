package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pumpbatch/engine/internal/computebudget"
	"github.com/pumpbatch/engine/internal/logger"
	"github.com/pumpbatch/engine/internal/metrics"
	solclient "github.com/pumpbatch/engine/internal/solana"
	"github.com/pumpbatch/engine/internal/wallet"
)

// ExecutorConfig is the execution policy. Zero values mean sequential
// execution, no inter-batch delay, continue past failures, and
// per-operation fallback retry enabled.
type ExecutorConfig struct {
	MaxParallel          int
	DelayBetween         time.Duration
	FailFast             bool
	DisableFallbackRetry bool
	ConfirmTimeout       time.Duration
	ComputeBudget        computebudget.Config
	SubmitMaxElapsed     time.Duration
	Metrics              *metrics.Collector
}

// Executor turns batches of operations into signed transactions, one
// transaction per batch, and maps transaction outcomes back onto the
// operations.
type Executor struct {
	client   solclient.ClientInterface
	builder  *BuildContext
	feePayer *wallet.Wallet
	config   ExecutorConfig
	logger   *zap.Logger
}

// NewExecutor creates an executor. feePayer signs and funds every
// transaction regardless of operation senders.
func NewExecutor(client solclient.ClientInterface, builder *BuildContext, feePayer *wallet.Wallet, config ExecutorConfig, logger *zap.Logger) *Executor {
	if config.MaxParallel <= 0 {
		config.MaxParallel = 1
	}
	if config.ConfirmTimeout <= 0 {
		config.ConfirmTimeout = 30 * time.Second
	}
	if config.SubmitMaxElapsed <= 0 {
		config.SubmitMaxElapsed = 15 * time.Second
	}
	return &Executor{
		client:   client,
		builder:  builder,
		feePayer: feePayer,
		config:   config,
		logger:   logger.Named("executor"),
	}
}

// Execute sizes the operation list, partitions it into batches, and
// runs them. One BatchResult per input operation, in input order.
// Concurrency is bounded at batch granularity; operations inside one
// batch always share a transaction.
func (e *Executor) Execute(ctx context.Context, operations []*Operation, probeLimit int) ([]BatchResult, error) {
	if len(operations) == 0 {
		return nil, nil
	}

	// Size against the full transaction footprint: the compute budget
	// instructions prepended to every submission count toward the same
	// 1232-byte and 64-account caps as the operations themselves.
	baseInstructions, err := computebudget.BuildInstructions(e.config.ComputeBudget)
	if err != nil {
		return nil, fmt.Errorf("failed to build compute budget instructions: %w", err)
	}
	decision, err := DetermineOptimalBatchSize(ctx, operations, e.feePayer.PublicKey, baseInstructions, probeLimit, e.builder.Build, e.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to size batches: %w", err)
	}
	batches := Chunk(operations, decision.MaxOpsPerBatch)
	e.logger.Info("Packed operations into batches",
		zap.Int("operations", len(operations)),
		zap.Int("batches", len(batches)),
		zap.Int("max_ops_per_batch", decision.MaxOpsPerBatch),
		zap.String("reasoning", decision.Reasoning))

	results := make([][]BatchResult, len(batches))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(e.config.MaxParallel)

	for i, operationsInBatch := range batches {
		if e.config.DelayBetween > 0 && i > 0 {
			select {
			case <-groupCtx.Done():
			case <-time.After(e.config.DelayBetween):
			}
		}

		i, operationsInBatch := i, operationsInBatch
		group.Go(func() error {
			batchResults := e.executeBatch(groupCtx, operationsInBatch)
			results[i] = batchResults

			if e.config.FailFast {
				for _, result := range batchResults {
					if !result.Success {
						return fmt.Errorf("batch %d failed: %s", i, result.Error)
					}
				}
			}
			return nil
		})
	}

	groupErr := group.Wait()

	flat := make([]BatchResult, 0, len(operations))
	for i, batchResults := range results {
		if batchResults == nil {
			// Batch never ran (fail-fast cancelled it).
			for _, op := range batches[i] {
				flat = append(flat, BatchResult{
					OperationID: op.ID,
					Type:        op.Type,
					Error:       "batch not executed: aborted by fail-fast policy",
				})
			}
			continue
		}
		flat = append(flat, batchResults...)
	}

	if e.config.Metrics != nil {
		for _, result := range flat {
			e.config.Metrics.RecordOperation(string(result.Type), result.Success)
		}
	}

	if e.config.FailFast && groupErr != nil {
		return flat, groupErr
	}
	return flat, nil
}

// executeBatch builds, signs, submits and confirms one transaction for
// the batch. A build failure affects only its operation; the rest of
// the batch still flies. A transaction failure is atomic and stamps
// every surviving operation, then falls back to per-operation retries
// unless disabled.
func (e *Executor) executeBatch(ctx context.Context, operations []*Operation) []BatchResult {
	results := make([]BatchResult, len(operations))
	for i, op := range operations {
		results[i] = BatchResult{OperationID: op.ID, Type: op.Type}
	}

	instructions, err := computebudget.BuildInstructions(e.config.ComputeBudget)
	if err != nil {
		for i := range results {
			results[i].Error = fmt.Sprintf("failed to build compute budget instructions: %v", err)
		}
		return results
	}

	survivors := make([]int, 0, len(operations))
	for i, op := range operations {
		built, err := e.builder.Build(ctx, op)
		if err != nil {
			results[i].Error = err.Error()
			logger.WithOperation(e.logger, op.ID).Warn("Instruction build failed", zap.Error(err))
			continue
		}
		instructions = append(instructions, built...)
		survivors = append(survivors, i)
	}
	if len(survivors) == 0 {
		return results
	}

	signature, err := e.submitInstructions(ctx, operationsAt(operations, survivors), instructions)
	if err == nil {
		for _, i := range survivors {
			results[i].Success = true
			results[i].Signature = signature.String()
		}
		return results
	}

	e.logger.Warn("Batch transaction failed",
		zap.Int("operations", len(survivors)),
		zap.Error(err))

	if e.config.DisableFallbackRetry || len(survivors) == 1 {
		for _, i := range survivors {
			results[i].Error = err.Error()
		}
		return results
	}

	// Per-operation fallback: each surviving operation gets its own
	// transaction, so one poisoned operation no longer sinks the rest.
	for _, i := range survivors {
		op := operations[i]
		results[i] = e.executeSingle(ctx, op)
	}
	return results
}

func (e *Executor) executeSingle(ctx context.Context, op *Operation) BatchResult {
	result := BatchResult{OperationID: op.ID, Type: op.Type}
	opLogger := logger.WithOperation(e.logger, op.ID)

	instructions, err := computebudget.BuildInstructions(e.config.ComputeBudget)
	if err != nil {
		result.Error = fmt.Sprintf("failed to build compute budget instructions: %v", err)
		return result
	}
	built, err := e.builder.Build(ctx, op)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	instructions = append(instructions, built...)

	signature, err := e.submitInstructions(ctx, []*Operation{op}, instructions)
	if err != nil {
		opLogger.Warn("Individual retry failed", zap.Error(err))
		result.Error = err.Error()
		return result
	}
	opLogger.Debug("Individual retry confirmed", zap.String("signature", signature.String()))
	result.Success = true
	result.Signature = signature.String()
	return result
}

// submitInstructions signs one transaction and pushes it through
// submission and confirmation with bounded backoff. The transaction is
// signed once; retries resubmit the identical bytes, so the
// blockhash-scoped signature makes resubmission idempotent.
func (e *Executor) submitInstructions(ctx context.Context, operations []*Operation, instructions []solana.Instruction) (solana.Signature, error) {
	tx, err := e.createSignedTransaction(ctx, operations, instructions)
	if err != nil {
		return solana.Signature{}, err
	}

	started := time.Now()

	op := func() (solana.Signature, error) {
		sig, err := e.client.SendTransaction(ctx, tx)
		if err != nil {
			return solana.Signature{}, fmt.Errorf("failed to send transaction: %w", err)
		}

		status, err := e.client.AwaitConfirmation(ctx, sig, e.config.ConfirmTimeout)
		if err != nil {
			if status != nil && status.Status == "failed" {
				// On-chain rejection: an identical transaction fails
				// identically, do not retry.
				return solana.Signature{}, backoff.Permanent(err)
			}
			return solana.Signature{}, err
		}

		e.logger.Debug("Transaction confirmed",
			zap.String("signature", sig.String()),
			zap.Uint64("slot", status.Slot))
		return sig, nil
	}

	signature, submitErr := backoff.Retry(
		ctx,
		op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(e.config.SubmitMaxElapsed),
	)
	if e.config.Metrics != nil {
		e.config.Metrics.RecordTransaction(submitErr == nil, time.Since(started))
		e.config.Metrics.RecordBatchSize(len(operations))
	}
	return signature, submitErr
}

func (e *Executor) createSignedTransaction(ctx context.Context, operations []*Operation, instructions []solana.Instruction) (*solana.Transaction, error) {
	blockhash, err := e.client.GetRecentBlockhash(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(e.feePayer.PublicKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	signerWallets := map[solana.PublicKey]*wallet.Wallet{
		e.feePayer.PublicKey: e.feePayer,
	}
	for _, op := range operations {
		if op.Sender != nil {
			signerWallets[op.Sender.PublicKey] = op.Sender
		}
	}

	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if w, ok := signerWallets[key]; ok {
			return w.SignerFor(key)
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	return tx, nil
}

func operationsAt(operations []*Operation, indexes []int) []*Operation {
	selected := make([]*Operation, 0, len(indexes))
	for _, i := range indexes {
		selected = append(selected, operations[i])
	}
	return selected
}
