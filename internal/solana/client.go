// Package solana wraps the RPC layer behind a rotating endpoint pool.
// The rest of the engine talks to ClientInterface only.
package solana

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/pumpbatch/engine/internal/metrics"
)

// NewClient creates a client over the given RPC endpoints and validates
// connectivity. collector may be nil; when set, every round trip is
// recorded by method and endpoint.
func NewClient(rpcURLs []string, collector *metrics.Collector, logger *zap.Logger) (*Client, error) {
	if len(rpcURLs) == 0 {
		return nil, errors.New("empty RPC URL list")
	}

	var clients []*RPCClient
	for _, urlStr := range rpcURLs {
		if _, err := url.Parse(urlStr); err != nil {
			logger.Warn("Invalid RPC URL", zap.String("url", urlStr), zap.Error(err))
			continue
		}
		clients = append(clients, &RPCClient{
			Client:  rpc.New(urlStr),
			URL:     urlStr,
			active:  true,
			metrics: &RPCMetrics{},
		})
	}
	if len(clients) == 0 {
		return nil, errors.New("no valid RPC URLs provided")
	}

	c := &Client{
		rpcClients: clients,
		collector:  collector,
		logger:     logger.Named("rpc"),
	}

	if err := c.validateConnections(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to validate connections: %w", err)
	}

	return c, nil
}

func (c *Client) testConnection(ctx context.Context, rpcClient *RPCClient) error {
	version, err := rpcClient.Client.GetVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to get version: %w", err)
	}

	if _, err = rpcClient.Client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized); err != nil {
		return fmt.Errorf("failed to get latest blockhash: %w", err)
	}

	c.logger.Debug("Successfully connected to RPC",
		zap.String("url", rpcClient.URL),
		zap.String("solana_core", version.SolanaCore))
	return nil
}

func (c *Client) validateConnections(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	for _, client := range c.rpcClients {
		var lastErr error
		for attempt := 0; attempt < maxRetries; attempt++ {
			start := time.Now()
			if err := c.testConnection(ctx, client); err != nil {
				lastErr = err
				client.updateMetrics(false, time.Since(start))
				time.Sleep(retryDelay)
				continue
			}
			client.updateMetrics(true, time.Since(start))
			lastErr = nil
			break
		}
		if lastErr != nil {
			c.logger.Warn("RPC endpoint unavailable",
				zap.String("url", client.URL), zap.Error(lastErr))
			client.setActive(false)
		}
	}

	if !c.hasActiveClients() {
		return errors.New("no active RPC connections available")
	}
	return nil
}

// GetAccountInfo fetches account data with confirmed commitment,
// rotating endpoints on failure.
func (c *Client) GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		client := c.getNextClient()
		if client == nil {
			return nil, ErrNoActiveClients
		}

		start := time.Now()
		result, err := client.Client.GetAccountInfoWithOpts(ctx, pubkey, &rpc.GetAccountInfoOpts{
			Encoding:   solana.EncodingBase64,
			Commitment: rpc.CommitmentConfirmed,
		})
		latency := time.Since(start)
		client.updateMetrics(err == nil, latency)
		c.observe("getAccountInfo", client.URL, latency)

		if err != nil {
			lastErr = err
			continue
		}
		return result, nil
	}
	return nil, fmt.Errorf("failed to get account info after %d attempts: %w", maxRetries, lastErr)
}

// GetRecentBlockhash returns the latest finalized blockhash.
func (c *Client) GetRecentBlockhash(ctx context.Context) (solana.Hash, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		client := c.getNextClient()
		if client == nil {
			return solana.Hash{}, ErrNoActiveClients
		}

		start := time.Now()
		result, err := client.Client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
		latency := time.Since(start)
		client.updateMetrics(err == nil, latency)
		c.observe("getLatestBlockhash", client.URL, latency)

		if err != nil {
			lastErr = err
			continue
		}
		return result.Value.Blockhash, nil
	}
	return solana.Hash{}, fmt.Errorf("failed to get recent blockhash after %d attempts: %w", maxRetries, lastErr)
}

// SendTransaction submits a signed transaction. Preflight is skipped:
// the engine sizes transactions itself and wants the real on-chain
// error, not the simulator's.
func (c *Client) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		client := c.getNextClient()
		if client == nil {
			return solana.Signature{}, ErrNoActiveClients
		}

		start := time.Now()
		sig, err := client.Client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
			SkipPreflight:       true,
			PreflightCommitment: rpc.CommitmentConfirmed,
		})
		latency := time.Since(start)
		client.updateMetrics(err == nil, latency)
		c.observe("sendTransaction", client.URL, latency)

		if err != nil {
			lastErr = err
			continue
		}
		return sig, nil
	}
	return solana.Signature{}, fmt.Errorf("failed to send transaction after %d attempts: %w", maxRetries, lastErr)
}

// AwaitConfirmation polls signature status until the transaction is
// confirmed, fails, or the timeout elapses.
func (c *Client) AwaitConfirmation(ctx context.Context, signature solana.Signature, timeout time.Duration) (*TxStatus, error) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	deadline := time.After(timeout)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline:
			return nil, ErrConfirmationTimeout
		case <-ticker.C:
			status, err := c.getSignatureStatus(ctx, signature)
			if err != nil {
				c.logger.Warn("Confirmation check failed", zap.Error(err))
				continue
			}
			if status == nil {
				continue
			}
			if status.Status == "failed" {
				return status, fmt.Errorf("transaction failed on chain: %s", status.Error)
			}
			if status.Status == "confirmed" || status.Status == "finalized" {
				return status, nil
			}
		}
	}
}

func (c *Client) getSignatureStatus(ctx context.Context, signature solana.Signature) (*TxStatus, error) {
	client := c.getNextClient()
	if client == nil {
		return nil, ErrNoActiveClients
	}

	start := time.Now()
	response, err := client.Client.GetSignatureStatuses(ctx, false, signature)
	latency := time.Since(start)
	client.updateMetrics(err == nil, latency)
	c.observe("getSignatureStatuses", client.URL, latency)
	if err != nil {
		return nil, fmt.Errorf("failed to get signature status: %w", err)
	}
	if response == nil || len(response.Value) == 0 || response.Value[0] == nil {
		return nil, nil
	}

	status := response.Value[0]
	txStatus := &TxStatus{
		Signature: signature.String(),
		Timestamp: time.Now(),
		Slot:      uint64(status.Slot),
	}
	if status.Confirmations != nil {
		txStatus.Confirmations = *status.Confirmations
	}

	switch status.ConfirmationStatus {
	case rpc.ConfirmationStatusFinalized:
		txStatus.Status = "finalized"
	case rpc.ConfirmationStatusConfirmed:
		txStatus.Status = "confirmed"
	default:
		txStatus.Status = "pending"
	}

	if status.Err != nil {
		txStatus.Error = fmt.Sprintf("%v", status.Err)
		txStatus.Status = "failed"
	}

	return txStatus, nil
}

func (c *Client) observe(method, endpoint string, latency time.Duration) {
	if c.collector != nil {
		c.collector.RecordRPCLatency(method, endpoint, latency)
	}
}

// LogEndpointHealth logs each endpoint's request counts and rolling
// average latency. Called once a run finishes so endpoint trouble is
// visible without scraping the metrics endpoint.
func (c *Client) LogEndpointHealth() {
	for _, client := range c.rpcClients {
		successes, failures, latency := client.getMetrics()
		c.logger.Info("RPC endpoint health",
			zap.String("url", client.URL),
			zap.Bool("active", client.isActive()),
			zap.Uint64("successes", successes),
			zap.Uint64("failures", failures),
			zap.Duration("avg_latency", latency))
	}
}

func (c *Client) hasActiveClients() bool {
	for _, client := range c.rpcClients {
		if client.isActive() {
			return true
		}
	}
	return false
}

func (c *Client) getNextClient() *RPCClient {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	initialIndex := c.currIndex
	for {
		c.currIndex = (c.currIndex + 1) % len(c.rpcClients)
		if c.rpcClients[c.currIndex].isActive() {
			return c.rpcClients[c.currIndex]
		}
		if c.currIndex == initialIndex {
			return nil
		}
	}
}
