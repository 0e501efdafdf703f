// internal/blockchain/solbc/rpc/errors.go
package rpc

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoActiveClients means every node in the pool is marked inactive.
	ErrNoActiveClients = errors.New("no active RPC clients available")

	// ErrRateLimit means the endpoint rejected the request for throughput.
	ErrRateLimit = errors.New("rate limit exceeded")

	// ErrTimeout means the request deadline elapsed.
	ErrTimeout = errors.New("request timeout")

	// ErrInvalidResponse means the endpoint returned something unusable.
	ErrInvalidResponse = errors.New("invalid RPC response")

	// ErrConnectionFailed means the endpoint could not be reached.
	ErrConnectionFailed = errors.New("connection failed")
)

// Error carries the node and method that produced an RPC failure.
type Error struct {
	Err     error
	NodeURL string
	Method  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("RPC error [%s] at %s: %v", e.Method, e.NodeURL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps an RPC failure with node and method context.
func NewError(err error, nodeURL, method string) error {
	return &Error{
		Err:     err,
		NodeURL: nodeURL,
		Method:  method,
	}
}

// IsRetryableError reports whether the operation may succeed on another
// attempt or another node.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		switch {
		case errors.Is(rpcErr.Err, ErrTimeout),
			errors.Is(rpcErr.Err, ErrRateLimit),
			errors.Is(rpcErr.Err, ErrConnectionFailed):
			return true
		}
	}

	errStr := err.Error()
	return strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "Too Many Requests") ||
		strings.Contains(errStr, "BlockhashNotFound")
}

// IsCriticalError reports whether the node itself should be taken out of
// rotation.
func IsCriticalError(err error) bool {
	if err == nil {
		return false
	}

	var rpcErr *Error
	if errors.As(err, &rpcErr) && errors.Is(rpcErr.Err, ErrInvalidResponse) {
		return true
	}

	errStr := err.Error()
	return strings.Contains(errStr, "invalid request") ||
		strings.Contains(errStr, "unauthorized") ||
		strings.Contains(errStr, "forbidden")
}
