// Package ledger owns the gelato inventory collections and every operation
// that mutates them. Each mutation is written through to the persistence
// gateway; write failures are logged and never roll back memory.
package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/gelateria/internal/domain/models"
	"github.com/mamadbah2/gelateria/internal/metrics"
)

// Gateway is the durable storage contract shared by every backend.
type Gateway interface {
	LoadAll(ctx context.Context) (models.Snapshot, error)
	SaveAll(ctx context.Context, snapshot models.Snapshot) error
}

// Subscriber is implemented by backends that push external updates.
type Subscriber interface {
	Subscribe(ctx context.Context, onChange func(models.Snapshot)) error
}

// Ledger is the single owner of inventory state.
type Ledger struct {
	mu            sync.Mutex
	state         models.Snapshot
	notifications []models.Notification

	gateway  Gateway
	logger   *zap.Logger
	location *time.Location

	now           func() time.Time
	newID         func() string
	disambiguator func() string
}

// New constructs a ledger writing through to the gateway. Calendar dates used
// for bucket numbering are evaluated in loc (UTC when nil).
func New(gateway Gateway, loc *time.Location, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Ledger{
		state:         normalize(models.Snapshot{}),
		gateway:       gateway,
		logger:        logger,
		location:      loc,
		now:           time.Now,
		newID:         uuid.NewString,
		disambiguator: randomSuffix,
	}
}

// Load replaces in-memory state with the gateway's collections.
func (l *Ledger) Load(ctx context.Context) error {
	if l.gateway == nil {
		return nil
	}

	snap, err := l.gateway.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load ledger state: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.state = normalize(snap)
	l.refreshGauges()
	l.logger.Info("ledger loaded",
		zap.Int("buckets", len(l.state.Buckets)),
		zap.Int("flavors", len(l.state.Flavors)),
		zap.Int("production_logs", len(l.state.ProductionLogs)),
		zap.Int("closing_logs", len(l.state.ClosingLogs)))
	return nil
}

// Watch registers ApplyRemote with backends that push updates. Backends
// without notifications are left alone.
func (l *Ledger) Watch(ctx context.Context) error {
	sub, ok := l.gateway.(Subscriber)
	if !ok {
		return nil
	}
	return sub.Subscribe(ctx, l.ApplyRemote)
}

// ApplyRemote overwrites local state with an externally pushed snapshot.
// Last write wins; an in-progress closing working copy is not reconciled.
func (l *Ledger) ApplyRemote(snap models.Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.state = normalize(snap)
	l.refreshGauges()
	l.logger.Debug("remote snapshot applied", zap.Int("buckets", len(l.state.Buckets)))
}

// Snapshot returns a copy of every durable collection.
func (l *Ledger) Snapshot() models.Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.Clone()
}

// persist writes the full state through to the gateway. Must hold l.mu.
func (l *Ledger) persist(ctx context.Context, operation string) {
	l.refreshGauges()
	if l.gateway == nil {
		return
	}

	if err := l.gateway.SaveAll(context.WithoutCancel(ctx), l.state.Clone()); err != nil {
		metrics.PersistenceFailures.WithLabelValues(operation).Inc()
		l.logger.Warn("write-through failed", zap.String("operation", operation), zap.Error(err))
	}
}

func (l *Ledger) refreshGauges() {
	counts := make(map[models.Location]int, len(models.Locations))
	for _, b := range l.state.Buckets {
		if b.Status == models.StatusInStock {
			counts[b.Location]++
		}
	}
	for _, loc := range models.Locations {
		metrics.ActiveBuckets.WithLabelValues(string(loc)).Set(float64(counts[loc]))
	}
}

func (l *Ledger) findFlavor(id string) (models.Flavor, bool) {
	for _, f := range l.state.Flavors {
		if f.ID == id {
			return f, true
		}
	}
	return models.Flavor{}, false
}

func normalize(snap models.Snapshot) models.Snapshot {
	snap = snap.Clone()
	if snap.Buckets == nil {
		snap.Buckets = []models.Bucket{}
	}
	if snap.Flavors == nil {
		snap.Flavors = []models.Flavor{}
	}
	if snap.Categories == nil {
		snap.Categories = []models.Category{}
	}
	if snap.ProductionLogs == nil {
		snap.ProductionLogs = []models.ProductionLog{}
	}
	if snap.ClosingLogs == nil {
		snap.ClosingLogs = []models.ClosingLog{}
	}
	return snap
}
