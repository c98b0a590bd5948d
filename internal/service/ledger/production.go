package ledger

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/gelateria/internal/domain/models"
	"github.com/mamadbah2/gelateria/internal/metrics"
)

// ProductionEntry is one flavor's part of a production submission.
type ProductionEntry struct {
	FlavorID string    `json:"flavorId"`
	Weights  []float64 `json:"weights"`
	Note     string    `json:"note,omitempty"`
}

// Produce creates factory buckets for every weight and one production log per
// entry. Any invalid entry aborts the whole submission before state changes.
func (l *Ledger) Produce(ctx context.Context, date time.Time, entries []ProductionEntry) ([]models.Bucket, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyProduction
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	flavors := make([]models.Flavor, len(entries))
	for i, entry := range entries {
		if len(entry.Weights) == 0 {
			return nil, ErrEmptyProduction
		}
		for _, w := range entry.Weights {
			if w <= 0 {
				return nil, fmt.Errorf("%w: %v g for flavor %s", ErrInvalidWeight, w, entry.FlavorID)
			}
		}
		flavor, ok := l.findFlavor(entry.FlavorID)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrFlavorNotFound, entry.FlavorID)
		}
		flavors[i] = flavor
	}

	local := date.In(l.location)
	var created []models.Bucket

	for i, entry := range entries {
		flavor := flavors[i]
		sequence := l.lastSequence(flavor.ID, local)

		var total float64
		for _, weight := range entry.Weights {
			sequence++
			bucket := models.Bucket{
				ID:          bucketID(flavor.Initials, local, sequence, l.disambiguator()),
				FlavorID:    flavor.ID,
				WeightGrams: weight,
				ProducedAt:  date,
				Note:        entry.Note,
				Location:    models.LocationFactory,
				Status:      models.StatusInStock,
				Sequence:    sequence,
			}
			l.state.Buckets = append(l.state.Buckets, bucket)
			created = append(created, bucket)
			total += weight
		}

		l.state.ProductionLogs = append(l.state.ProductionLogs, models.ProductionLog{
			ID:          l.newID(),
			FlavorID:    flavor.ID,
			TotalWeight: total,
			BucketCount: len(entry.Weights),
			ProducedAt:  date,
			Note:        entry.Note,
		})

		metrics.BucketsProduced.WithLabelValues(flavor.Name).Add(float64(len(entry.Weights)))
		metrics.GramsProduced.Add(total)
	}

	l.logger.Info("production recorded",
		zap.Int("entries", len(entries)),
		zap.Int("buckets", len(created)),
		zap.Time("date", date))

	l.persist(ctx, "produce")
	l.notify(models.SeveritySuccess, fmt.Sprintf("Produced %d buckets across %d flavors", len(created), len(entries)))

	return created, nil
}
