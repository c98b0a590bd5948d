package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/mamadbah2/gelateria/internal/domain/models"
)

func sampleSnapshot() models.Snapshot {
	produced := time.Date(2026, 10, 19, 9, 30, 0, 123000000, time.FixedZone("CEST", 2*3600))
	closed := time.Date(2026, 10, 19, 21, 5, 0, 0, time.UTC)

	return models.Snapshot{
		Buckets: []models.Bucket{
			{ID: "PIS-1910-01-AB12", FlavorID: "f-pis", WeightGrams: 4200, ProducedAt: produced, Note: "sicilian", Location: models.LocationFactory, Status: models.StatusInStock, Sequence: 1},
			{ID: "PIS-1910-02-CD34", FlavorID: "f-pis", WeightGrams: 3100.5, ProducedAt: produced, Location: models.LocationStoreB, Status: models.StatusInStock, Sequence: 2},
		},
		Flavors: []models.Flavor{
			{ID: "f-pis", Name: "Pistachio", Initials: "PIS", CategoryIDs: []string{"c-nuts"}, Active: true},
			{ID: "f-old", Name: "Retired", Initials: "RET", CategoryIDs: []string{}, Active: false},
		},
		Categories: []models.Category{{ID: "c-nuts", Name: "Nuts"}},
		ProductionLogs: []models.ProductionLog{
			{ID: "p-1", FlavorID: "f-pis", TotalWeight: 7300.5, BucketCount: 2, ProducedAt: produced, Note: "sicilian"},
		},
		ClosingLogs: []models.ClosingLog{
			{ID: "c-1", Store: models.LocationStoreB, ClosedAt: closed, TotalWeight: 3100.5, Items: []models.ClosingItem{{FlavorID: "f-pis", Grams: 3100.5}}},
		},
	}
}

func TestDumpRestoreRoundTrip(t *testing.T) {
	want := sampleSnapshot()

	data, err := Dump(want)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}

	got, err := Restore(data)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	if len(got.Buckets) != len(want.Buckets) {
		t.Fatalf("Restore() buckets = %d, want %d", len(got.Buckets), len(want.Buckets))
	}
	for i := range want.Buckets {
		w, g := want.Buckets[i], got.Buckets[i]
		if !g.ProducedAt.Equal(w.ProducedAt) {
			t.Errorf("bucket %s ProducedAt = %v, want %v", w.ID, g.ProducedAt, w.ProducedAt)
		}
		g.ProducedAt, w.ProducedAt = time.Time{}, time.Time{}
		if g != w {
			t.Errorf("bucket %d = %+v, want %+v", i, g, w)
		}
	}

	if !reflect.DeepEqual(got.Flavors, want.Flavors) {
		t.Errorf("flavors = %+v, want %+v", got.Flavors, want.Flavors)
	}
	if !reflect.DeepEqual(got.Categories, want.Categories) {
		t.Errorf("categories = %+v, want %+v", got.Categories, want.Categories)
	}

	if !got.ProductionLogs[0].ProducedAt.Equal(want.ProductionLogs[0].ProducedAt) {
		t.Errorf("production log time = %v, want %v", got.ProductionLogs[0].ProducedAt, want.ProductionLogs[0].ProducedAt)
	}
	if got.ProductionLogs[0].TotalWeight != 7300.5 || got.ProductionLogs[0].BucketCount != 2 {
		t.Errorf("production log = %+v", got.ProductionLogs[0])
	}

	c := got.ClosingLogs[0]
	if !c.ClosedAt.Equal(want.ClosingLogs[0].ClosedAt) || c.Store != models.LocationStoreB || c.TotalWeight != 3100.5 {
		t.Errorf("closing log = %+v", c)
	}
	if !reflect.DeepEqual(c.Items, want.ClosingLogs[0].Items) {
		t.Errorf("closing items = %+v", c.Items)
	}
}

func TestRestoreAcceptsLooseTimestamps(t *testing.T) {
	payload := []byte(`{
		"buckets": [{"id": "b1", "flavorId": "f", "weightGrams": 100, "producedAt": "2026-10-19", "location": "store-a", "status": "in-stock", "sequence": 1}],
		"productionLogs": [{"id": "p1", "flavorId": "f", "totalWeight": 100, "bucketCount": 1, "producedAt": "2026-10-19T08:00:00.000Z"}]
	}`)

	snap, err := Restore(payload)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if snap.Buckets[0].Location != models.LocationStoreA {
		t.Errorf("location = %q, want %q", snap.Buckets[0].Location, models.LocationStoreA)
	}
	want := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	if !snap.ProductionLogs[0].ProducedAt.Equal(want) {
		t.Errorf("producedAt = %v, want %v", snap.ProductionLogs[0].ProducedAt, want)
	}
	if snap.Flavors == nil || snap.ClosingLogs == nil {
		t.Error("missing collections should restore as empty slices")
	}
}

func TestRestoreRejectsMalformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "notJSON", payload: `buckets: []`},
		{name: "futureVersion", payload: `{"version": 99}`},
		{name: "bucketWithoutID", payload: `{"buckets": [{"weightGrams": 1, "producedAt": "2026-10-19", "location": "Factory", "status": "in-stock"}]}`},
		{name: "negativeWeight", payload: `{"buckets": [{"id": "b", "weightGrams": -1, "producedAt": "2026-10-19", "location": "Factory", "status": "in-stock"}]}`},
		{name: "badDate", payload: `{"buckets": [{"id": "b", "weightGrams": 1, "producedAt": "yesterday", "location": "Factory", "status": "in-stock"}]}`},
		{name: "badLocation", payload: `{"buckets": [{"id": "b", "weightGrams": 1, "producedAt": "2026-10-19", "location": "Moon", "status": "in-stock"}]}`},
		{name: "badStatus", payload: `{"buckets": [{"id": "b", "weightGrams": 1, "producedAt": "2026-10-19", "location": "Factory", "status": "melted"}]}`},
		{name: "closingAtFactory", payload: `{"closingLogs": [{"id": "c", "store": "Factory", "closedAt": "2026-10-19"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Restore([]byte(tt.payload))
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("Restore() error = %v, want ErrMalformed", err)
			}
		})
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleSnapshot()); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}

	want := [][]string{
		Header,
		{"Production", "2026-10-19", "Pistachio", "7300.5", "2 buckets; sicilian"},
		{"Closing", "2026-10-19", "Store B", "3100.5", "1 items"},
	}
	if !reflect.DeepEqual(records, want) {
		t.Errorf("csv = %v, want %v", records, want)
	}
}

func TestRowsRange(t *testing.T) {
	snap := sampleSnapshot()
	from := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	rows := Rows(snap, from, time.Time{})
	if len(rows) != 1 || rows[0][0] != "Closing" {
		t.Errorf("Rows() = %v, want only the closing row", rows)
	}

	snap.ProductionLogs[0].FlavorID = "unknown"
	rows = Rows(snap, time.Time{}, from)
	if len(rows) != 1 || rows[0][2] != "unknown" {
		t.Errorf("Rows() = %v, want production row falling back to the flavor id", rows)
	}
}
