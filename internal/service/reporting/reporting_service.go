package reporting

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/gelateria/internal/domain/models"
)

// SnapshotSource exposes the ledger's current collections.
type SnapshotSource interface {
	Snapshot() models.Snapshot
}

// Service computes read-only views over the ledger. Every view is a
// deterministic function of the current snapshot.
type Service struct {
	source SnapshotSource
	logger *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(source SnapshotSource, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{source: source, logger: logger}
}

// LocationStock is the in-stock total held at one location.
type LocationStock struct {
	Location models.Location `json:"location"`
	Buckets  int             `json:"buckets"`
	Grams    float64         `json:"grams"`
}

// FlavorStock is the in-stock total of one flavor across locations.
type FlavorStock struct {
	FlavorID   string  `json:"flavorId"`
	FlavorName string  `json:"flavorName"`
	Buckets    int     `json:"buckets"`
	Grams      float64 `json:"grams"`
}

// FlavorProduction is the production total of one flavor.
type FlavorProduction struct {
	FlavorID   string  `json:"flavorId"`
	FlavorName string  `json:"flavorName"`
	Buckets    int     `json:"buckets"`
	Grams      float64 `json:"grams"`
}

// MatrixRow holds grams per location for one flavor.
type MatrixRow struct {
	FlavorID   string                      `json:"flavorId"`
	FlavorName string                      `json:"flavorName"`
	Active     bool                        `json:"active"`
	Grams      map[models.Location]float64 `json:"grams"`
	Total      float64                     `json:"total"`
}

// Dashboard is the landing overview.
type Dashboard struct {
	TotalBuckets int                 `json:"totalBuckets"`
	TotalGrams   float64             `json:"totalGrams"`
	ByLocation   []LocationStock     `json:"byLocation"`
	ByFlavor     []FlavorStock       `json:"byFlavor"`
	TopProduced  []FlavorProduction  `json:"topProduced"`
	LastClosings []models.ClosingLog `json:"lastClosings"`
}

const dashboardTopN = 5

// Dashboard assembles the overview from the current snapshot.
func (s *Service) Dashboard() Dashboard {
	snap := s.source.Snapshot()

	byLocation := StockByLocation(snap)
	d := Dashboard{
		ByLocation:   byLocation,
		ByFlavor:     StockByFlavor(snap),
		TopProduced:  TopFlavors(snap, time.Time{}, time.Time{}, dashboardTopN),
		LastClosings: LatestClosings(snap),
	}
	for _, loc := range byLocation {
		d.TotalBuckets += loc.Buckets
		d.TotalGrams += loc.Grams
	}

	s.logger.Debug("dashboard computed", zap.Int("buckets", d.TotalBuckets))
	return d
}

// Matrix returns the flavor × location grid.
func (s *Service) Matrix() []MatrixRow {
	return FlavorLocationMatrix(s.source.Snapshot())
}

// Production returns per-flavor production totals in [from, to).
func (s *Service) Production(from, to time.Time) []FlavorProduction {
	return ProductionByFlavor(s.source.Snapshot(), from, to)
}

// Top returns the n flavors with the most grams produced in [from, to).
func (s *Service) Top(from, to time.Time, n int) []FlavorProduction {
	return TopFlavors(s.source.Snapshot(), from, to, n)
}

// Closings returns closing logs for a store (all stores when empty) in [from, to), newest first.
func (s *Service) Closings(store models.Location, from, to time.Time) []models.ClosingLog {
	return ClosingHistory(s.source.Snapshot(), store, from, to)
}

// StockByLocation totals in-stock buckets per location, in fixed location order.
func StockByLocation(snap models.Snapshot) []LocationStock {
	totals := make(map[models.Location]*LocationStock, len(models.Locations))
	out := make([]LocationStock, len(models.Locations))
	for i, loc := range models.Locations {
		out[i] = LocationStock{Location: loc}
		totals[loc] = &out[i]
	}

	for _, b := range snap.Buckets {
		if b.Status != models.StatusInStock {
			continue
		}
		if t, ok := totals[b.Location]; ok {
			t.Buckets++
			t.Grams += b.WeightGrams
		}
	}
	return out
}

// StockByFlavor totals in-stock buckets per flavor, heaviest first.
func StockByFlavor(snap models.Snapshot) []FlavorStock {
	names := flavorNames(snap)
	totals := map[string]*FlavorStock{}

	for _, b := range snap.Buckets {
		if b.Status != models.StatusInStock {
			continue
		}
		t, ok := totals[b.FlavorID]
		if !ok {
			t = &FlavorStock{FlavorID: b.FlavorID, FlavorName: names.lookup(b.FlavorID)}
			totals[b.FlavorID] = t
		}
		t.Buckets++
		t.Grams += b.WeightGrams
	}

	out := make([]FlavorStock, 0, len(totals))
	for _, t := range totals {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Grams != out[j].Grams {
			return out[i].Grams > out[j].Grams
		}
		return out[i].FlavorName < out[j].FlavorName
	})
	return out
}

// FlavorLocationMatrix lists every flavor, inactive ones included, with its
// in-stock grams per location. Rows follow flavor name order.
func FlavorLocationMatrix(snap models.Snapshot) []MatrixRow {
	rows := make(map[string]*MatrixRow, len(snap.Flavors))
	for _, f := range snap.Flavors {
		rows[f.ID] = &MatrixRow{FlavorID: f.ID, FlavorName: f.Name, Active: f.Active, Grams: emptyLocationGrams()}
	}

	for _, b := range snap.Buckets {
		if b.Status != models.StatusInStock {
			continue
		}
		row, ok := rows[b.FlavorID]
		if !ok {
			row = &MatrixRow{FlavorID: b.FlavorID, FlavorName: b.FlavorID, Grams: emptyLocationGrams()}
			rows[b.FlavorID] = row
		}
		row.Grams[b.Location] += b.WeightGrams
		row.Total += b.WeightGrams
	}

	out := make([]MatrixRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FlavorName != out[j].FlavorName {
			return out[i].FlavorName < out[j].FlavorName
		}
		return out[i].FlavorID < out[j].FlavorID
	})
	return out
}

// ProductionByFlavor sums production logs in [from, to) per flavor, by name.
// A zero bound leaves that side open.
func ProductionByFlavor(snap models.Snapshot, from, to time.Time) []FlavorProduction {
	names := flavorNames(snap)
	totals := map[string]*FlavorProduction{}

	for _, p := range snap.ProductionLogs {
		if !within(p.ProducedAt, from, to) {
			continue
		}
		t, ok := totals[p.FlavorID]
		if !ok {
			t = &FlavorProduction{FlavorID: p.FlavorID, FlavorName: names.lookup(p.FlavorID)}
			totals[p.FlavorID] = t
		}
		t.Buckets += p.BucketCount
		t.Grams += p.TotalWeight
	}

	out := make([]FlavorProduction, 0, len(totals))
	for _, t := range totals {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FlavorName != out[j].FlavorName {
			return out[i].FlavorName < out[j].FlavorName
		}
		return out[i].FlavorID < out[j].FlavorID
	})
	return out
}

// TopFlavors ranks flavors by grams produced in [from, to) and keeps n.
func TopFlavors(snap models.Snapshot, from, to time.Time, n int) []FlavorProduction {
	ranked := ProductionByFlavor(snap, from, to)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Grams > ranked[j].Grams })
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// ClosingHistory filters closing logs by store and range, newest first.
func ClosingHistory(snap models.Snapshot, store models.Location, from, to time.Time) []models.ClosingLog {
	out := []models.ClosingLog{}
	for _, c := range snap.ClosingLogs {
		if store != "" && c.Store != store {
			continue
		}
		if !within(c.ClosedAt, from, to) {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ClosedAt.After(out[j].ClosedAt) })
	return out
}

// LatestClosings returns the most recent closing log of each store that has one.
func LatestClosings(snap models.Snapshot) []models.ClosingLog {
	out := []models.ClosingLog{}
	for _, store := range models.Stores {
		if history := ClosingHistory(snap, store, time.Time{}, time.Time{}); len(history) > 0 {
			out = append(out, history[0])
		}
	}
	return out
}

type nameIndex map[string]string

func flavorNames(snap models.Snapshot) nameIndex {
	names := make(nameIndex, len(snap.Flavors))
	for _, f := range snap.Flavors {
		names[f.ID] = f.Name
	}
	return names
}

func (n nameIndex) lookup(id string) string {
	if name, ok := n[id]; ok {
		return name
	}
	return id
}

func emptyLocationGrams() map[models.Location]float64 {
	grams := make(map[models.Location]float64, len(models.Locations))
	for _, loc := range models.Locations {
		grams[loc] = 0
	}
	return grams
}

func within(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && !t.Before(to) {
		return false
	}
	return true
}
