// Package metrics exposes prometheus counters for batch execution and
// RPC traffic. Each Collector owns its registry, so tests can create
// them freely without duplicate registration panics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the engine's metric vectors.
type Collector struct {
	registry *prometheus.Registry

	operationCounter    *prometheus.CounterVec
	transactionCounter  *prometheus.CounterVec
	transactionDuration *prometheus.HistogramVec
	rpcLatency          *prometheus.HistogramVec
	batchSize           prometheus.Histogram
}

// NewCollector creates a collector with all vectors registered.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		operationCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "batcher_operations_total",
			Help: "Operations processed, by outcome and type",
		}, []string{"status", "type"}),
		transactionCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "batcher_transactions_total",
			Help: "Transactions submitted, by outcome",
		}, []string{"status"}),
		transactionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "batcher_transaction_duration_seconds",
			Help:    "Submit-to-confirmation latency",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}, []string{"status"}),
		rpcLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "batcher_rpc_latency_seconds",
			Help:    "RPC request latency, by method and endpoint",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"method", "endpoint"}),
		batchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "batcher_batch_size_operations",
			Help:    "Operations packed per transaction",
			Buckets: prometheus.LinearBuckets(1, 2, 10),
		}),
	}

	c.registry.MustRegister(
		c.operationCounter,
		c.transactionCounter,
		c.transactionDuration,
		c.rpcLatency,
		c.batchSize,
	)
	return c
}

// RecordOperation counts one finished operation.
func (c *Collector) RecordOperation(opType string, success bool) {
	c.operationCounter.WithLabelValues(statusLabel(success), opType).Inc()
}

// RecordTransaction counts one transaction and its latency.
func (c *Collector) RecordTransaction(success bool, duration time.Duration) {
	status := statusLabel(success)
	c.transactionCounter.WithLabelValues(status).Inc()
	c.transactionDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordRPCLatency records one RPC round trip.
func (c *Collector) RecordRPCLatency(method, endpoint string, duration time.Duration) {
	c.rpcLatency.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordBatchSize records how many operations one transaction carried.
func (c *Collector) RecordBatchSize(operations int) {
	c.batchSize.Observe(float64(operations))
}

// Gatherer exposes the registry for an HTTP exposition handler.
func (c *Collector) Gatherer() prometheus.Gatherer {
	return c.registry
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "failed"
}
