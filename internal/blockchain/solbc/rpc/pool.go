// internal/blockchain/solbc/rpc/pool.go
package rpc

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Pool is a set of RPC nodes with background health monitoring. Requests
// rotate across healthy nodes; failing nodes are benched and periodically
// retried.
type Pool struct {
	nodes          []*NodeClient
	activeNodes    sync.Map
	healthyChan    chan string
	logger         *zap.Logger
	metrics        *PoolMetrics
	ctx            context.Context
	cancel         context.CancelFunc
	currentNodeIdx int
	mu             sync.RWMutex
}

// PoolMetrics aggregates request outcomes across the pool.
type PoolMetrics struct {
	TotalRequests  uint64
	FailedRequests uint64
	ActiveNodes    int32
	LastSuccessful time.Time
	AverageLatency time.Duration
	lastLatencies  []time.Duration
	metricsLock    sync.RWMutex
}

func NewPool(urls []string, logger *zap.Logger) (*Pool, error) {
	if len(urls) == 0 {
		return nil, fmt.Errorf("no RPC URLs provided")
	}

	ctx, cancel := context.WithCancel(context.Background())
	pool := &Pool{
		nodes:       make([]*NodeClient, 0, len(urls)),
		healthyChan: make(chan string, len(urls)),
		logger:      logger.Named("rpc-pool"),
		metrics:     &PoolMetrics{},
		ctx:         ctx,
		cancel:      cancel,
	}

	for _, url := range urls {
		node := newNode(url)
		pool.nodes = append(pool.nodes, node)
		pool.activeNodes.Store(url, true)
	}

	go pool.healthCheck()

	return pool, nil
}

func (p *Pool) healthCheck() {
	ticker := time.NewTicker(healthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.checkNodesHealth()
		}
	}
}

func (p *Pool) checkNodesHealth() {
	var wg sync.WaitGroup
	activeCount := int32(0)

	for _, node := range p.nodes {
		wg.Add(1)
		go func(n *NodeClient) {
			defer wg.Done()

			for attempt := 0; attempt < 3; attempt++ {
				if healthy := p.checkNodeHealth(n); healthy {
					atomic.AddInt32(&activeCount, 1)
					p.activeNodes.Store(n.URL, true)
					select {
					case p.healthyChan <- n.URL:
					default:
					}
					return
				}
				time.Sleep(reconnectDelay / 3)
			}

			p.activeNodes.Delete(n.URL)
			p.logger.Warn("Node marked as inactive",
				zap.String("url", n.URL),
				zap.Int("failed_attempts", 3))
		}(node)
	}

	wg.Wait()

	p.metrics.metricsLock.Lock()
	p.metrics.ActiveNodes = activeCount
	p.metrics.metricsLock.Unlock()

	nodesCount := len(p.nodes)
	threshold := nodesCount / 2
	if nodesCount > 0 && int(activeCount) < threshold {
		p.logger.Warn("Low number of active nodes, starting aggressive reconnection",
			zap.Int32("active_nodes", activeCount),
			zap.Int("total_nodes", nodesCount))
		go p.aggressiveReconnect()
	}
}

func (p *Pool) aggressiveReconnect() {
	backoff := reconnectDelay
	maxBackoff := 30 * time.Second

	for {
		select {
		case <-p.ctx.Done():
			return
		default:
		}

		nodesCount := len(p.nodes)
		threshold := nodesCount / 2
		if nodesCount > 0 && int(atomic.LoadInt32(&p.metrics.ActiveNodes)) >= threshold {
			return
		}

		p.logger.Info("Attempting aggressive reconnection of inactive nodes")
		reconnected := false

		for _, node := range p.nodes {
			if active, ok := p.activeNodes.Load(node.URL); !ok || !active.(bool) {
				if p.checkNodeHealth(node) {
					p.activeNodes.Store(node.URL, true)
					atomic.AddInt32(&p.metrics.ActiveNodes, 1)
					reconnected = true
					p.logger.Info("Node reconnected",
						zap.String("url", node.URL))
				}
			}
		}

		if !reconnected {
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			time.Sleep(backoff)
		} else {
			backoff = reconnectDelay
		}
	}
}

func (p *Pool) checkNodeHealth(node *NodeClient) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	_, err := node.Client.GetVersion(ctx)
	duration := time.Since(start)

	if err != nil {
		p.logger.Warn("Node health check failed",
			zap.String("url", node.URL),
			zap.Error(err))
		return false
	}

	p.updateLatencyMetrics(duration)
	return true
}

func (p *Pool) updateLatencyMetrics(duration time.Duration) {
	p.metrics.metricsLock.Lock()
	defer p.metrics.metricsLock.Unlock()

	p.metrics.lastLatencies = append(p.metrics.lastLatencies, duration)
	if len(p.metrics.lastLatencies) > 10 {
		p.metrics.lastLatencies = p.metrics.lastLatencies[1:]
	}

	var total time.Duration
	for _, d := range p.metrics.lastLatencies {
		total += d
	}
	p.metrics.AverageLatency = total / time.Duration(len(p.metrics.lastLatencies))
}

// GetHealthyNode returns the next active node in round-robin order.
func (p *Pool) GetHealthyNode() (*NodeClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	initialIdx := p.currentNodeIdx
	for i := 0; i < len(p.nodes); i++ {
		idx := (initialIdx + i) % len(p.nodes)
		node := p.nodes[idx]

		if active, ok := p.activeNodes.Load(node.URL); ok && active.(bool) {
			p.currentNodeIdx = (idx + 1) % len(p.nodes)
			return node, nil
		}
	}

	if err := p.reconnectInactiveNodes(); err != nil {
		return nil, fmt.Errorf("no active nodes available and reconnection failed: %w", err)
	}

	for _, node := range p.nodes {
		if active, ok := p.activeNodes.Load(node.URL); ok && active.(bool) {
			return node, nil
		}
	}

	return nil, ErrNoActiveClients
}

func (p *Pool) reconnectInactiveNodes() error {
	for _, node := range p.nodes {
		if active, ok := p.activeNodes.Load(node.URL); !ok || !active.(bool) {
			p.logger.Info("Attempting to reconnect node", zap.String("url", node.URL))

			for i := 0; i < maxReconnectTries; i++ {
				if p.checkNodeHealth(node) {
					p.activeNodes.Store(node.URL, true)
					p.logger.Info("Successfully reconnected node", zap.String("url", node.URL))
					return nil
				}
				time.Sleep(reconnectDelay)
			}
		}
	}
	return fmt.Errorf("failed to reconnect any nodes")
}

// ExecuteWithRetry runs the operation against healthy nodes, rotating and
// backing off on retryable failures. Critical failures bench the node.
func (p *Pool) ExecuteWithRetry(ctx context.Context, operation func(*NodeClient) error) error {
	var lastErr error
	backoff := RetryDelay

	for attempt := 0; attempt < maxReconnectTries*2; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			node, err := p.GetHealthyNode()
			if err != nil {
				lastErr = err
				time.Sleep(backoff)
				backoff *= 2
				if backoff > 5*time.Second {
					backoff = 5 * time.Second
				}
				continue
			}

			start := time.Now()
			err = operation(node)
			duration := time.Since(start)
			node.UpdateMetrics(err == nil, duration)

			if err == nil {
				p.metrics.metricsLock.Lock()
				p.metrics.TotalRequests++
				p.metrics.LastSuccessful = time.Now()
				p.metrics.metricsLock.Unlock()
				p.updateLatencyMetrics(duration)
				return nil
			}

			lastErr = err
			p.metrics.metricsLock.Lock()
			p.metrics.FailedRequests++
			p.metrics.metricsLock.Unlock()

			if IsRetryableError(err) {
				p.logger.Debug("Retryable error occurred, will retry",
					zap.Error(err),
					zap.Duration("backoff", backoff))
				time.Sleep(backoff)
				backoff *= 2
				continue
			}

			if IsCriticalError(err) {
				p.activeNodes.Delete(node.URL)
				p.logger.Warn("Node marked as inactive due to critical error",
					zap.String("url", node.URL),
					zap.Error(err))
				continue
			}

			// Not retryable and not the node's fault: surface it.
			return err
		}
	}

	return fmt.Errorf("all retry attempts failed: %w", lastErr)
}

// GetMetrics returns a snapshot of the pool metrics.
func (p *Pool) GetMetrics() *PoolMetrics {
	p.metrics.metricsLock.RLock()
	defer p.metrics.metricsLock.RUnlock()

	return &PoolMetrics{
		TotalRequests:  p.metrics.TotalRequests,
		FailedRequests: p.metrics.FailedRequests,
		ActiveNodes:    p.metrics.ActiveNodes,
		AverageLatency: p.metrics.AverageLatency,
		LastSuccessful: p.metrics.LastSuccessful,
	}
}

func (p *Pool) Close() {
	p.cancel()
}
