package ledger

import (
	"context"
	"fmt"

	"github.com/mamadbah2/gelateria/internal/domain/models"
)

// BucketUpdate carries an administrative correction. Nil fields are kept.
type BucketUpdate struct {
	WeightGrams *float64 `json:"weightGrams,omitempty"`
	Note        *string  `json:"note,omitempty"`
}

// Buckets returns the active bucket collection.
func (l *Ledger) Buckets() []models.Bucket {
	return l.Snapshot().Buckets
}

// UpdateBucket applies an administrative edit to one bucket.
func (l *Ledger) UpdateBucket(ctx context.Context, id string, upd BucketUpdate) (models.Bucket, error) {
	if upd.WeightGrams != nil && *upd.WeightGrams < 0 {
		return models.Bucket{}, fmt.Errorf("%w: %v g", ErrInvalidWeight, *upd.WeightGrams)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.state.Buckets {
		b := &l.state.Buckets[i]
		if b.ID != id {
			continue
		}
		if upd.WeightGrams != nil {
			b.WeightGrams = *upd.WeightGrams
		}
		if upd.Note != nil {
			b.Note = *upd.Note
		}
		updated := *b

		l.persist(ctx, "update_bucket")
		l.notify(models.SeverityInfo, fmt.Sprintf("Bucket %s updated", id))
		return updated, nil
	}
	return models.Bucket{}, fmt.Errorf("%w: %s", ErrBucketNotFound, id)
}

// DeleteBucket removes a bucket from the active collection.
func (l *Ledger) DeleteBucket(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, b := range l.state.Buckets {
		if b.ID != id {
			continue
		}
		l.state.Buckets = append(l.state.Buckets[:i], l.state.Buckets[i+1:]...)

		l.persist(ctx, "delete_bucket")
		l.notify(models.SeverityInfo, fmt.Sprintf("Bucket %s deleted", id))
		return nil
	}
	return fmt.Errorf("%w: %s", ErrBucketNotFound, id)
}
