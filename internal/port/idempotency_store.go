package port

import "context"

type IdempotencyStore interface {
	// SetIdempotency claims key, returns false if it was already claimed
	SetIdempotency(ctx context.Context, key string) (bool, error)

	// ReleaseIdempotency drops a claim so the key can be used again
	ReleaseIdempotency(ctx context.Context, key string) error

	// Ping reports whether the backing store is reachable
	Ping(ctx context.Context) error
}
