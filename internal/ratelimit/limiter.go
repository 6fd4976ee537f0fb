package ratelimit

import "context"

// Limiter counts hits per key inside fixed windows.
type Limiter interface {
	// Allow records one hit for key and reports whether it is within the
	// limit for the current window.
	Allow(ctx context.Context, key string) (bool, error)
}
