// Package export converts ledger snapshots to and from their portable forms:
// a JSON backup of every collection and a flat CSV of ledger events.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mamadbah2/gelateria/internal/domain/models"
)

const formatVersion = 1

// ErrMalformed indicates a backup that cannot be restored.
var ErrMalformed = errors.New("malformed backup")

// Accepted timestamp layouts, most precise first.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

type backup struct {
	Version        int                `json:"version"`
	ExportedAt     string             `json:"exportedAt,omitempty"`
	Buckets        []bucketRecord     `json:"buckets"`
	Flavors        []models.Flavor    `json:"flavors"`
	Categories     []models.Category  `json:"categories"`
	ProductionLogs []productionRecord `json:"productionLogs"`
	ClosingLogs    []closingRecord    `json:"closingLogs"`
}

type bucketRecord struct {
	ID          string  `json:"id"`
	FlavorID    string  `json:"flavorId"`
	WeightGrams float64 `json:"weightGrams"`
	ProducedAt  string  `json:"producedAt"`
	Note        string  `json:"note,omitempty"`
	Location    string  `json:"location"`
	Status      string  `json:"status"`
	Sequence    int     `json:"sequence"`
}

type productionRecord struct {
	ID          string  `json:"id"`
	FlavorID    string  `json:"flavorId"`
	TotalWeight float64 `json:"totalWeight"`
	BucketCount int     `json:"bucketCount"`
	ProducedAt  string  `json:"producedAt"`
	Note        string  `json:"note,omitempty"`
}

type closingRecord struct {
	ID          string               `json:"id"`
	Store       string               `json:"store"`
	ClosedAt    string               `json:"closedAt"`
	TotalWeight float64              `json:"totalWeight"`
	Items       []models.ClosingItem `json:"items"`
}

// Dump renders every collection as an indented JSON backup.
func Dump(snap models.Snapshot) ([]byte, error) {
	out := backup{
		Version:        formatVersion,
		ExportedAt:     time.Now().UTC().Format(time.RFC3339),
		Buckets:        make([]bucketRecord, 0, len(snap.Buckets)),
		Flavors:        nonNil(snap.Flavors),
		Categories:     nonNil(snap.Categories),
		ProductionLogs: make([]productionRecord, 0, len(snap.ProductionLogs)),
		ClosingLogs:    make([]closingRecord, 0, len(snap.ClosingLogs)),
	}

	for _, b := range snap.Buckets {
		out.Buckets = append(out.Buckets, bucketRecord{
			ID:          b.ID,
			FlavorID:    b.FlavorID,
			WeightGrams: b.WeightGrams,
			ProducedAt:  formatTime(b.ProducedAt),
			Note:        b.Note,
			Location:    string(b.Location),
			Status:      string(b.Status),
			Sequence:    b.Sequence,
		})
	}
	for _, p := range snap.ProductionLogs {
		out.ProductionLogs = append(out.ProductionLogs, productionRecord{
			ID:          p.ID,
			FlavorID:    p.FlavorID,
			TotalWeight: p.TotalWeight,
			BucketCount: p.BucketCount,
			ProducedAt:  formatTime(p.ProducedAt),
			Note:        p.Note,
		})
	}
	for _, c := range snap.ClosingLogs {
		out.ClosingLogs = append(out.ClosingLogs, closingRecord{
			ID:          c.ID,
			Store:       string(c.Store),
			ClosedAt:    formatTime(c.ClosedAt),
			TotalWeight: c.TotalWeight,
			Items:       nonNil(c.Items),
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode backup: %w", err)
	}
	return data, nil
}

// Restore parses a backup produced by Dump. Either the whole backup is valid
// or an error wrapping ErrMalformed is returned.
func Restore(data []byte) (models.Snapshot, error) {
	var in backup
	if err := json.Unmarshal(data, &in); err != nil {
		return models.Snapshot{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if in.Version > formatVersion {
		return models.Snapshot{}, fmt.Errorf("%w: unsupported version %d", ErrMalformed, in.Version)
	}

	snap := models.Snapshot{
		Buckets:        make([]models.Bucket, 0, len(in.Buckets)),
		Flavors:        nonNil(in.Flavors),
		Categories:     nonNil(in.Categories),
		ProductionLogs: make([]models.ProductionLog, 0, len(in.ProductionLogs)),
		ClosingLogs:    make([]models.ClosingLog, 0, len(in.ClosingLogs)),
	}

	for i, f := range snap.Flavors {
		if f.ID == "" {
			return models.Snapshot{}, fmt.Errorf("%w: flavor %d has no id", ErrMalformed, i)
		}
	}
	for i, c := range snap.Categories {
		if c.ID == "" {
			return models.Snapshot{}, fmt.Errorf("%w: category %d has no id", ErrMalformed, i)
		}
	}

	for i, r := range in.Buckets {
		if r.ID == "" {
			return models.Snapshot{}, fmt.Errorf("%w: bucket %d has no id", ErrMalformed, i)
		}
		if r.WeightGrams < 0 {
			return models.Snapshot{}, fmt.Errorf("%w: bucket %s has negative weight", ErrMalformed, r.ID)
		}
		producedAt, err := parseTime(r.ProducedAt)
		if err != nil {
			return models.Snapshot{}, fmt.Errorf("%w: bucket %s: %v", ErrMalformed, r.ID, err)
		}
		loc, ok := models.ParseLocation(r.Location)
		if !ok {
			return models.Snapshot{}, fmt.Errorf("%w: bucket %s has unknown location %q", ErrMalformed, r.ID, r.Location)
		}
		status := models.BucketStatus(r.Status)
		switch status {
		case models.StatusInStock, models.StatusSold, models.StatusInTransit:
		default:
			return models.Snapshot{}, fmt.Errorf("%w: bucket %s has unknown status %q", ErrMalformed, r.ID, r.Status)
		}
		snap.Buckets = append(snap.Buckets, models.Bucket{
			ID:          r.ID,
			FlavorID:    r.FlavorID,
			WeightGrams: r.WeightGrams,
			ProducedAt:  producedAt,
			Note:        r.Note,
			Location:    loc,
			Status:      status,
			Sequence:    r.Sequence,
		})
	}

	for i, r := range in.ProductionLogs {
		if r.ID == "" {
			return models.Snapshot{}, fmt.Errorf("%w: production log %d has no id", ErrMalformed, i)
		}
		producedAt, err := parseTime(r.ProducedAt)
		if err != nil {
			return models.Snapshot{}, fmt.Errorf("%w: production log %s: %v", ErrMalformed, r.ID, err)
		}
		snap.ProductionLogs = append(snap.ProductionLogs, models.ProductionLog{
			ID:          r.ID,
			FlavorID:    r.FlavorID,
			TotalWeight: r.TotalWeight,
			BucketCount: r.BucketCount,
			ProducedAt:  producedAt,
			Note:        r.Note,
		})
	}

	for i, r := range in.ClosingLogs {
		if r.ID == "" {
			return models.Snapshot{}, fmt.Errorf("%w: closing log %d has no id", ErrMalformed, i)
		}
		closedAt, err := parseTime(r.ClosedAt)
		if err != nil {
			return models.Snapshot{}, fmt.Errorf("%w: closing log %s: %v", ErrMalformed, r.ID, err)
		}
		store, ok := models.ParseLocation(r.Store)
		if !ok || !store.IsStore() {
			return models.Snapshot{}, fmt.Errorf("%w: closing log %s has unknown store %q", ErrMalformed, r.ID, r.Store)
		}
		snap.ClosingLogs = append(snap.ClosingLogs, models.ClosingLog{
			ID:          r.ID,
			Store:       store,
			ClosedAt:    closedAt,
			TotalWeight: r.TotalWeight,
			Items:       nonNil(r.Items),
		})
	}

	return snap, nil
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func parseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", value)
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
