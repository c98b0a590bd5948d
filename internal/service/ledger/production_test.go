package ledger

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mamadbah2/gelateria/internal/domain/models"
)

func TestProduceCreatesBucketsAndLogs(t *testing.T) {
	l, gw := newTestLedger(t)

	entries := []ProductionEntry{
		{FlavorID: "f-pis", Weights: []float64{4000, 3500, 4100}, Note: "bronte"},
		{FlavorID: "f-cho", Weights: []float64{5000}},
	}

	created, err := l.Produce(context.Background(), productionDay, entries)
	if err != nil {
		t.Fatalf("Produce() error = %v", err)
	}

	if len(created) != 4 {
		t.Fatalf("Produce() created %d buckets, want 4", len(created))
	}
	for _, b := range created {
		if b.Status != models.StatusInStock || b.Location != models.LocationFactory {
			t.Errorf("bucket %s status=%q location=%q, want in-stock at factory", b.ID, b.Status, b.Location)
		}
		if !b.ProducedAt.Equal(productionDay) {
			t.Errorf("bucket %s ProducedAt = %v", b.ID, b.ProducedAt)
		}
	}

	wantIDs := []string{"PIS-1910-01-R001", "PIS-1910-02-R002", "PIS-1910-03-R003", "CHO-1910-01-R004"}
	for i, want := range wantIDs {
		if created[i].ID != want {
			t.Errorf("bucket %d ID = %q, want %q", i, created[i].ID, want)
		}
	}
	if created[1].WeightGrams != 3500 || created[1].Note != "bronte" {
		t.Errorf("bucket 1 = %+v, want 3500 g with note", created[1])
	}

	saved := gw.last(t)
	if len(saved.Buckets) != 4 {
		t.Errorf("saved buckets = %d, want 4", len(saved.Buckets))
	}
	if len(saved.ProductionLogs) != 2 {
		t.Fatalf("saved production logs = %d, want 2", len(saved.ProductionLogs))
	}
	pis := saved.ProductionLogs[0]
	if pis.FlavorID != "f-pis" || pis.TotalWeight != 11600 || pis.BucketCount != 3 || pis.Note != "bronte" {
		t.Errorf("pistachio log = %+v", pis)
	}

	notes := l.Notifications()
	if len(notes) != 1 || notes[0].Severity != models.SeveritySuccess {
		t.Errorf("notifications = %+v, want one success", notes)
	}
}

func TestProduceRejectsWithoutMutation(t *testing.T) {
	tests := []struct {
		name    string
		entries []ProductionEntry
		wantErr error
	}{
		{
			name:    "zeroWeight",
			entries: []ProductionEntry{{FlavorID: "f-pis", Weights: []float64{4000, 0}}},
			wantErr: ErrInvalidWeight,
		},
		{
			name: "negativeWeightInLaterEntry",
			entries: []ProductionEntry{
				{FlavorID: "f-pis", Weights: []float64{4000}},
				{FlavorID: "f-cho", Weights: []float64{-10}},
			},
			wantErr: ErrInvalidWeight,
		},
		{
			name:    "noEntries",
			entries: nil,
			wantErr: ErrEmptyProduction,
		},
		{
			name:    "entryWithoutWeights",
			entries: []ProductionEntry{{FlavorID: "f-pis"}},
			wantErr: ErrEmptyProduction,
		},
		{
			name:    "unknownFlavor",
			entries: []ProductionEntry{{FlavorID: "f-none", Weights: []float64{100}}},
			wantErr: ErrFlavorNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, gw := newTestLedger(t)

			_, err := l.Produce(context.Background(), productionDay, tt.entries)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Produce() error = %v, want %v", err, tt.wantErr)
			}

			snap := l.Snapshot()
			if len(snap.Buckets) != 0 || len(snap.ProductionLogs) != 0 {
				t.Errorf("state mutated: %d buckets, %d logs", len(snap.Buckets), len(snap.ProductionLogs))
			}
			if len(gw.saves) != 0 {
				t.Errorf("gateway saved %d times, want 0", len(gw.saves))
			}
		})
	}
}

func TestProduceSequenceContinuesAcrossCalls(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	first, err := l.Produce(ctx, productionDay, []ProductionEntry{{FlavorID: "f-pis", Weights: []float64{100, 200}}})
	if err != nil {
		t.Fatalf("first Produce() error = %v", err)
	}

	// Selling the newest bucket must not free its number.
	if err := l.DeleteBucket(ctx, first[1].ID); err != nil {
		t.Fatalf("DeleteBucket() error = %v", err)
	}

	second, err := l.Produce(ctx, productionDay.Add(6*time.Hour), []ProductionEntry{{FlavorID: "f-pis", Weights: []float64{300}}})
	if err != nil {
		t.Fatalf("second Produce() error = %v", err)
	}
	if second[0].Sequence != 3 {
		t.Errorf("second run sequence = %d, want 3", second[0].Sequence)
	}
	if !strings.HasPrefix(second[0].ID, "PIS-1910-03-") {
		t.Errorf("second run ID = %q, want PIS-1910-03-*", second[0].ID)
	}

	nextDay, err := l.Produce(ctx, productionDay.AddDate(0, 0, 1), []ProductionEntry{{FlavorID: "f-pis", Weights: []float64{300}}})
	if err != nil {
		t.Fatalf("next day Produce() error = %v", err)
	}
	if nextDay[0].Sequence != 1 || !strings.HasPrefix(nextDay[0].ID, "PIS-2010-01-") {
		t.Errorf("next day bucket = %s seq %d, want numbering restarted", nextDay[0].ID, nextDay[0].Sequence)
	}

	other, err := l.Produce(ctx, productionDay, []ProductionEntry{{FlavorID: "f-cho", Weights: []float64{300}}})
	if err != nil {
		t.Fatalf("other flavor Produce() error = %v", err)
	}
	if other[0].Sequence != 1 {
		t.Errorf("other flavor sequence = %d, want 1", other[0].Sequence)
	}
}

func TestProduceSameFlavorTwiceInOneSubmission(t *testing.T) {
	l, _ := newTestLedger(t)

	created, err := l.Produce(context.Background(), productionDay, []ProductionEntry{
		{FlavorID: "f-pis", Weights: []float64{100}},
		{FlavorID: "f-pis", Weights: []float64{200, 300}},
	})
	if err != nil {
		t.Fatalf("Produce() error = %v", err)
	}

	for i, b := range created {
		if b.Sequence != i+1 {
			t.Errorf("bucket %d sequence = %d, want %d", i, b.Sequence, i+1)
		}
	}
}

func TestProduceUsesLedgerTimezoneForDate(t *testing.T) {
	rome, err := time.LoadLocation("Europe/Rome")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}

	l, _ := newTestLedger(t)
	l.location = rome

	// 23:30 UTC on the 19th is already the 20th in Rome.
	late := time.Date(2026, 10, 19, 23, 30, 0, 0, time.UTC)
	created, err := l.Produce(context.Background(), late, []ProductionEntry{{FlavorID: "f-pis", Weights: []float64{100}}})
	if err != nil {
		t.Fatalf("Produce() error = %v", err)
	}
	if !strings.HasPrefix(created[0].ID, "PIS-2010-01-") {
		t.Errorf("ID = %q, want Rome calendar date 20/10", created[0].ID)
	}
}

func TestPersistenceFailureIsSwallowed(t *testing.T) {
	l, gw := newTestLedger(t)
	gw.failing = true

	created, err := l.Produce(context.Background(), productionDay, []ProductionEntry{{FlavorID: "f-pis", Weights: []float64{100}}})
	if err != nil {
		t.Fatalf("Produce() error = %v, want nil despite failing gateway", err)
	}
	if len(created) != 1 || len(l.Buckets()) != 1 {
		t.Errorf("in-memory state should keep the bucket after a failed write")
	}
}

func TestBucketID(t *testing.T) {
	got := bucketID("fdl", time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC), 4, "9ZQX")
	if got != "FDL-0703-04-9ZQX" {
		t.Errorf("bucketID() = %q, want FDL-0703-04-9ZQX", got)
	}

	if s := randomSuffix(); len(s) != 4 || strings.ToUpper(s) != s {
		t.Errorf("randomSuffix() = %q, want four upper-case characters", s)
	}
}
