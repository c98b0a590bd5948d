package ledger

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/gelateria/internal/domain/models"
	"github.com/mamadbah2/gelateria/internal/metrics"
)

// StoreInventory returns copies of the store's in-stock buckets. It is the
// starting point of a closing working copy.
func (l *Ledger) StoreInventory(store models.Location) ([]models.Bucket, error) {
	if !store.IsStore() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStore, store)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	out := []models.Bucket{}
	for _, b := range l.state.Buckets {
		if b.Location == store && b.Status == models.StatusInStock {
			out = append(out, b)
		}
	}
	return out, nil
}

// CloseStore reconciles the store against the buckets it still holds.
// Buckets present in snapshot take the snapshot weight; every other bucket at
// the store is marked sold and dropped from the active collection. The sold
// weight is not stored anywhere. Every snapshot entry must name a distinct
// bucket in stock at the store, otherwise nothing changes.
func (l *Ledger) CloseStore(ctx context.Context, store models.Location, snapshot []models.Bucket) (models.ClosingLog, error) {
	if !store.IsStore() {
		return models.ClosingLog{}, fmt.Errorf("%w: %q", ErrUnknownStore, store)
	}
	for _, b := range snapshot {
		if b.WeightGrams < 0 {
			return models.ClosingLog{}, fmt.Errorf("%w: %v g for bucket %s", ErrInvalidWeight, b.WeightGrams, b.ID)
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	held := make(map[string]struct{})
	for _, b := range l.state.Buckets {
		if b.Location == store && b.Status == models.StatusInStock {
			held[b.ID] = struct{}{}
		}
	}

	remaining := make(map[string]float64, len(snapshot))
	for _, b := range snapshot {
		if _, ok := held[b.ID]; !ok {
			return models.ClosingLog{}, fmt.Errorf("%w: %q is not in stock at %s", ErrUnknownBucket, b.ID, store)
		}
		if _, dup := remaining[b.ID]; dup {
			return models.ClosingLog{}, fmt.Errorf("%w: %q listed twice", ErrUnknownBucket, b.ID)
		}
		remaining[b.ID] = b.WeightGrams
	}

	closing := models.ClosingLog{
		ID:       l.newID(),
		Store:    store,
		ClosedAt: l.now(),
		Items:    make([]models.ClosingItem, 0, len(snapshot)),
	}
	for _, b := range snapshot {
		flavorID := b.FlavorID
		if flavorID == "" {
			flavorID = l.bucketFlavor(b.ID)
		}
		closing.TotalWeight += b.WeightGrams
		closing.Items = append(closing.Items, models.ClosingItem{FlavorID: flavorID, Grams: b.WeightGrams})
	}

	sold := 0
	active := make([]models.Bucket, 0, len(l.state.Buckets))
	for _, b := range l.state.Buckets {
		if b.Location == store {
			if weight, ok := remaining[b.ID]; ok {
				b.WeightGrams = weight
			} else {
				b.Status = models.StatusSold
				sold++
			}
		}
		if b.Status == models.StatusInStock {
			active = append(active, b)
		}
	}
	l.state.Buckets = active
	l.state.ClosingLogs = append([]models.ClosingLog{closing}, l.state.ClosingLogs...)

	metrics.StoreClosings.WithLabelValues(string(store)).Inc()
	metrics.BucketsSold.WithLabelValues(string(store)).Add(float64(sold))
	l.logger.Info("store closed",
		zap.String("store", string(store)),
		zap.Int("remaining_items", len(closing.Items)),
		zap.Float64("remaining_grams", closing.TotalWeight),
		zap.Int("sold_buckets", sold))

	l.persist(ctx, "close_store")
	l.notify(models.SeveritySuccess, fmt.Sprintf("Closing saved for %s", store))

	return closing, nil
}

func (l *Ledger) bucketFlavor(id string) string {
	for _, b := range l.state.Buckets {
		if b.ID == id {
			return b.FlavorID
		}
	}
	return ""
}
