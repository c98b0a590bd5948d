package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/mamadbah2/gelateria/internal/domain/models"
)

type fakeGateway struct {
	mu      sync.Mutex
	loaded  models.Snapshot
	saves   []models.Snapshot
	failing bool
}

func (g *fakeGateway) LoadAll(ctx context.Context) (models.Snapshot, error) {
	return g.loaded, nil
}

func (g *fakeGateway) SaveAll(ctx context.Context, snap models.Snapshot) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failing {
		return errors.New("backend unavailable")
	}
	g.saves = append(g.saves, snap)
	return nil
}

func (g *fakeGateway) last(t *testing.T) models.Snapshot {
	t.Helper()
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.saves) == 0 {
		t.Fatal("expected a write-through save")
	}
	return g.saves[len(g.saves)-1]
}

var productionDay = time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

// newTestLedger returns a ledger with deterministic ids, suffixes and clock,
// seeded with two flavors: f-pis (PIS) and f-cho (CHO).
func newTestLedger(t *testing.T) (*Ledger, *fakeGateway) {
	t.Helper()

	gw := &fakeGateway{loaded: models.Snapshot{
		Flavors: []models.Flavor{
			{ID: "f-pis", Name: "Pistachio", Initials: "PIS", Active: true},
			{ID: "f-cho", Name: "Chocolate", Initials: "CHO", Active: true},
		},
	}}

	l := New(gw, time.UTC, nil)
	ids, suffixes := 0, 0
	l.newID = func() string { ids++; return fmt.Sprintf("id-%d", ids) }
	l.disambiguator = func() string { suffixes++; return fmt.Sprintf("R%03d", suffixes) }
	l.now = func() time.Time { return time.Date(2026, 10, 19, 22, 0, 0, 0, time.UTC) }

	if err := l.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return l, gw
}

// seedStore places buckets directly at a store, bypassing production.
func seedStore(l *Ledger, store models.Location, weights map[string]float64, order ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, id := range order {
		l.state.Buckets = append(l.state.Buckets, models.Bucket{
			ID:          id,
			FlavorID:    "f-pis",
			WeightGrams: weights[id],
			ProducedAt:  productionDay,
			Location:    store,
			Status:      models.StatusInStock,
		})
	}
}

func bucketsAt(buckets []models.Bucket, loc models.Location) map[string]float64 {
	out := map[string]float64{}
	for _, b := range buckets {
		if b.Location == loc {
			out[b.ID] = b.WeightGrams
		}
	}
	return out
}
