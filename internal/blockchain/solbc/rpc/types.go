// internal/blockchain/solbc/rpc/types.go
package rpc

import (
	"sync"
	"sync/atomic"
	"time"

	solanarpc "github.com/gagliardetto/solana-go/rpc"
)

const (
	DefaultTimeout = 10 * time.Second
	MaxRetries     = 3
	RetryDelay     = 1 * time.Second

	healthCheckInterval = 30 * time.Second
	reconnectDelay      = 5 * time.Second
	maxReconnectTries   = 3
)

// NodeClient is a single RPC endpoint in the pool.
type NodeClient struct {
	Client  *solanarpc.Client
	URL     string
	active  bool
	mutex   sync.RWMutex
	metrics nodeMetrics
}

// nodeMetrics tracks per-node request outcomes.
type nodeMetrics struct {
	successCount uint64
	errorCount   uint64
	latency      time.Duration
	mutex        sync.RWMutex
}

func newNode(url string) *NodeClient {
	return &NodeClient{
		Client: solanarpc.New(url),
		URL:    url,
		active: true,
	}
}

// SetActive marks the node usable or not.
func (c *NodeClient) SetActive(state bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.active = state
}

// IsActive reports whether the node is usable.
func (c *NodeClient) IsActive() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.active
}

// UpdateMetrics records the outcome and latency of a request.
func (c *NodeClient) UpdateMetrics(success bool, latency time.Duration) {
	c.metrics.mutex.Lock()
	defer c.metrics.mutex.Unlock()

	if success {
		atomic.AddUint64(&c.metrics.successCount, 1)
	} else {
		atomic.AddUint64(&c.metrics.errorCount, 1)
	}

	c.metrics.latency = (c.metrics.latency + latency) / 2
}

// GetMetrics returns success count, error count and smoothed latency.
func (c *NodeClient) GetMetrics() (uint64, uint64, time.Duration) {
	c.metrics.mutex.RLock()
	defer c.metrics.mutex.RUnlock()

	return atomic.LoadUint64(&c.metrics.successCount),
		atomic.LoadUint64(&c.metrics.errorCount),
		c.metrics.latency
}
