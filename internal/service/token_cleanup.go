package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// TokenCleanup periodically deletes reset tickets that expired or were
// used. It stops when ctx is cancelled.
func TokenCleanup(ctx context.Context, t time.Duration, tokens VerificationTokenStore) {
	ticker := time.NewTicker(t)

	zap.L().Debug("Token cleanup attached", zap.Duration("tick_every", t))

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				sweepTokens(ctx, tokens, now.UTC())
			}
		}
	}()
}

func sweepTokens(ctx context.Context, tokens VerificationTokenStore, now time.Time) {
	n, err := tokens.DeleteStale(ctx, now)
	if err != nil {
		zap.L().Error("Failed to cleanup verification tokens", zap.Error(err))
		return
	}

	if n > 0 {
		zap.L().Debug("Cleaned up verification tokens", zap.Int64("count", n))
	}
}
