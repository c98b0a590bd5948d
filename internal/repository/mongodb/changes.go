package mongodb

import (
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/mamadbah2/gelateria/internal/domain/models"
)

// debouncer runs fn once after delay has passed without another trigger.
type debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	fn      func()
	timer   *time.Timer
	stopped bool
}

func newDebouncer(delay time.Duration, fn func()) *debouncer {
	return &debouncer{delay: delay, fn: fn}
}

func (d *debouncer) trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer == nil {
		d.timer = time.AfterFunc(d.delay, d.fn)
		return
	}
	d.timer.Reset(d.delay)
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}

// fingerprint maps "<collection>/<id>" to the document's BSON encoding.
// BSON stores times at millisecond precision in UTC, so a snapshot and its
// round trip through the database encode identically. Document order is
// ignored.
func fingerprint(snap models.Snapshot) (map[string]string, error) {
	fp := make(map[string]string)
	add := func(collection, id string, doc any) error {
		raw, err := bson.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encode %s/%s: %w", collection, id, err)
		}
		fp[collection+"/"+id] = string(raw)
		return nil
	}

	for _, b := range snap.Buckets {
		if err := add(bucketsCollection, b.ID, b); err != nil {
			return nil, err
		}
	}
	for _, f := range snap.Flavors {
		if err := add(flavorsCollection, f.ID, f); err != nil {
			return nil, err
		}
	}
	for _, c := range snap.Categories {
		if err := add(categoriesCollection, c.ID, c); err != nil {
			return nil, err
		}
	}
	for _, p := range snap.ProductionLogs {
		if err := add(productionLogsCollection, p.ID, p); err != nil {
			return nil, err
		}
	}
	for _, c := range snap.ClosingLogs {
		if err := add(closingLogsCollection, c.ID, c); err != nil {
			return nil, err
		}
	}
	return fp, nil
}
