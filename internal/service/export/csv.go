package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/mamadbah2/gelateria/internal/domain/models"
)

const dateLayout = "2006-01-02"

// Header is the first row of the ledger CSV.
var Header = []string{"Type", "Date", "Entity", "Quantity/Weight", "Extra"}

const (
	rowProduction = "Production"
	rowClosing    = "Closing"
)

type event struct {
	at  time.Time
	row []string
}

// Rows flattens production and closing events, oldest first. A zero from or
// to leaves that side of the range open. Raw bucket state is not included.
func Rows(snap models.Snapshot, from, to time.Time) [][]string {
	names := make(map[string]string, len(snap.Flavors))
	for _, f := range snap.Flavors {
		names[f.ID] = f.Name
	}
	flavorName := func(id string) string {
		if name, ok := names[id]; ok {
			return name
		}
		return id
	}
	inRange := func(t time.Time) bool {
		return (from.IsZero() || !t.Before(from)) && (to.IsZero() || t.Before(to))
	}

	var events []event
	for _, p := range snap.ProductionLogs {
		if !inRange(p.ProducedAt) {
			continue
		}
		extra := fmt.Sprintf("%d buckets", p.BucketCount)
		if p.Note != "" {
			extra += "; " + p.Note
		}
		events = append(events, event{at: p.ProducedAt, row: []string{
			rowProduction,
			p.ProducedAt.Format(dateLayout),
			flavorName(p.FlavorID),
			grams(p.TotalWeight),
			extra,
		}})
	}
	for _, c := range snap.ClosingLogs {
		if !inRange(c.ClosedAt) {
			continue
		}
		events = append(events, event{at: c.ClosedAt, row: []string{
			rowClosing,
			c.ClosedAt.Format(dateLayout),
			string(c.Store),
			grams(c.TotalWeight),
			fmt.Sprintf("%d items", len(c.Items)),
		}})
	}

	sort.SliceStable(events, func(i, j int) bool { return events[i].at.Before(events[j].at) })

	rows := make([][]string, 0, len(events))
	for _, e := range events {
		rows = append(rows, e.row)
	}
	return rows
}

// WriteCSV writes the header and every ledger event row.
func WriteCSV(w io.Writer, snap models.Snapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(Rows(snap, time.Time{}, time.Time{})); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}

func grams(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
