package ledger

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/gelateria/internal/domain/models"
	"github.com/mamadbah2/gelateria/internal/metrics"
)

// Distribute moves the listed factory buckets to store and returns how many
// moved. Unknown identifiers and buckets outside the factory are skipped.
func (l *Ledger) Distribute(ctx context.Context, store models.Location, bucketIDs []string) (int, error) {
	if !store.IsStore() {
		return 0, fmt.Errorf("%w: %q", ErrUnknownStore, store)
	}

	wanted := make(map[string]struct{}, len(bucketIDs))
	for _, id := range bucketIDs {
		wanted[id] = struct{}{}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	moved := 0
	for i := range l.state.Buckets {
		b := &l.state.Buckets[i]
		if _, ok := wanted[b.ID]; !ok || b.Location != models.LocationFactory {
			continue
		}
		b.Location = store
		moved++
	}

	if skipped := len(wanted) - moved; skipped > 0 {
		l.logger.Debug("distribution skipped buckets", zap.String("store", string(store)), zap.Int("skipped", skipped))
	}
	metrics.BucketsDistributed.WithLabelValues(string(store)).Add(float64(moved))

	l.persist(ctx, "distribute")
	l.notify(models.SeverityInfo, fmt.Sprintf("%d buckets sent to %s", moved, store))

	return moved, nil
}
