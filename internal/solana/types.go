package solana

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/pumpbatch/engine/internal/metrics"
)

var (
	ErrConfirmationTimeout = errors.New("transaction confirmation timeout")
	ErrNoActiveClients     = errors.New("no active RPC clients available")
)

const (
	defaultTimeout = 10 * time.Second
	maxRetries     = 3
	retryDelay     = 500 * time.Millisecond
)

// ClientInterface is the RPC surface the batch engine depends on.
type ClientInterface interface {
	GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*rpc.GetAccountInfoResult, error)
	GetRecentBlockhash(ctx context.Context) (solana.Hash, error)
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	AwaitConfirmation(ctx context.Context, signature solana.Signature, timeout time.Duration) (*TxStatus, error)
}

// Client rotates over a pool of RPC endpoints.
type Client struct {
	rpcClients []*RPCClient
	currIndex  int
	mutex      sync.Mutex
	collector  *metrics.Collector
	logger     *zap.Logger
}

// RPCClient wraps one endpoint with liveness state and basic metrics.
type RPCClient struct {
	Client  *rpc.Client
	URL     string
	active  bool
	mutex   sync.RWMutex
	metrics *RPCMetrics
}

type RPCMetrics struct {
	successCount uint64
	errorCount   uint64
	latency      time.Duration
	mutex        sync.RWMutex
}

// TxStatus describes the confirmation outcome of one submitted
// transaction.
type TxStatus struct {
	Signature     string
	Status        string
	Confirmations uint64
	Slot          uint64
	Error         string
	Timestamp     time.Time
}
