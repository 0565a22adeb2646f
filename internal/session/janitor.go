package session

import (
	"context"
	"time"

	"staybook/internal/domain"
	"staybook/pkg/logger"
	"staybook/pkg/metrics"
)

// RunJanitor prunes expired sessions every interval until ctx is done.
func RunJanitor(ctx context.Context, store domain.SessionStore, interval time.Duration, log logger.Logger) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.Prune(ctx)
			if err != nil {
				log.Error("Session sweep failed", map[string]interface{}{"error": err.Error()})
				continue
			}
			if n > 0 {
				metrics.RecordSessionsPruned(n)
				log.Debug("Expired sessions pruned", map[string]interface{}{"count": n})
			}
		}
	}
}
