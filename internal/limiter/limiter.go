// Package limiter throttles repeated failed session attempts per client.
package limiter

import (
	"context"
	"time"
)

// Limiter tracks failed attempts for a (scope, client) pair and places temporary blocks.
type Limiter interface {
	// Allow reports whether the client may try again and, if not, for how long it is blocked.
	Allow(ctx context.Context, scope string, client []byte) (bool, time.Duration, error)
	// Success clears the failure counter.
	Success(ctx context.Context, scope string, client []byte) error
	// Failure counts one failed attempt and reports whether the client is now blocked.
	Failure(ctx context.Context, scope string, client []byte) (bool, time.Duration, error)
}
