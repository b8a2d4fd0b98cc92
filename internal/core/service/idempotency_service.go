package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rl1809/commerce-admin/internal/port"
)

// IdempotencyGuard rejects a repeated client key within the store's TTL. It
// does not replay the first response. A key is held only by a request that
// succeeded.
type IdempotencyGuard struct {
	store  port.IdempotencyStore
	logger *zap.Logger
}

func NewIdempotencyGuard(store port.IdempotencyStore, logger *zap.Logger) *IdempotencyGuard {
	return &IdempotencyGuard{store: store, logger: orNop(logger)}
}

// Claim reserves key within scope. An empty key is never guarded.
func (g *IdempotencyGuard) Claim(ctx context.Context, scope, key string) error {
	if key == "" {
		return nil
	}

	ok, err := g.store.SetIdempotency(ctx, scopedKey(scope, key))
	if err != nil {
		return fmt.Errorf("idempotency check failed: %w", err)
	}
	if !ok {
		g.logger.Info("duplicate request rejected", zap.String("scope", scope), zap.String("key", key))
		return ErrDuplicateRequest
	}
	return nil
}

// Release gives back a key whose request was rejected, so the client can
// retry it with a corrected body.
func (g *IdempotencyGuard) Release(ctx context.Context, scope, key string) error {
	if key == "" {
		return nil
	}
	if err := g.store.ReleaseIdempotency(ctx, scopedKey(scope, key)); err != nil {
		return fmt.Errorf("idempotency release failed: %w", err)
	}
	return nil
}

func scopedKey(scope, key string) string {
	return fmt.Sprintf("%s:%s", scope, key)
}

func (g *IdempotencyGuard) Ping(ctx context.Context) error {
	return g.store.Ping(ctx)
}
