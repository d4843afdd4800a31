// Package resultcache persists full strategy results per destination so a
// re-run can skip paid API calls. Entries expire after a configured age;
// anything unreadable is treated as a miss, never an error.
package resultcache

import (
	"context"
	"time"

	"github.com/bokangsibolla/sola-images/internal/domain"
)

// DefaultMaxAge is how long a cached strategy result stays fresh.
const DefaultMaxAge = 72 * time.Hour

// Entry is one persisted record: the capture time plus the full result.
type Entry struct {
	Timestamp time.Time             `json:"timestamp"`
	Result    domain.StrategyResult `json:"result"`
}

// Store is a keyed, TTL-aware cache of strategy results. Get returns
// (nil, false) when the entry is absent, corrupt, or older than maxAge.
type Store interface {
	Get(ctx context.Context, destinationID string, maxAge time.Duration) (*domain.StrategyResult, bool)
	Set(ctx context.Context, destinationID string, result domain.StrategyResult) error
	Clear(ctx context.Context) error
}
