package mongodb

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/gelateria/internal/domain/models"
)

const (
	bucketsCollection        = "buckets"
	flavorsCollection        = "flavors"
	categoriesCollection     = "categories"
	productionLogsCollection = "production_logs"
	closingLogsCollection    = "closing_logs"

	// Change events arrive per document; a full save fans out into many.
	changeDebounce = 500 * time.Millisecond
)

// MongoDBRepository stores each ledger collection in its own MongoDB
// collection and pushes external changes through a change stream.
type MongoDBRepository struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger

	// saveMu serializes SaveAll with change-stream reloads so a reload never
	// reads a half-written snapshot.
	saveMu    sync.Mutex
	lastSaved map[string]string
	diverged  bool
	load      func(ctx context.Context) (models.Snapshot, error)
}

// NewMongoDBRepository connects, pings and prepares indexes.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string, logger *zap.Logger) (*MongoDBRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOptions := options.Client().ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	repo := &MongoDBRepository{
		client: client,
		db:     client.Database(dbName),
		logger: logger,
	}
	repo.load = repo.LoadAll

	if err := repo.ensureIndexes(ctx); err != nil {
		return nil, err
	}

	logger.Info("connected to mongodb", zap.String("database", dbName))
	return repo, nil
}

func (r *MongoDBRepository) ensureIndexes(ctx context.Context) error {
	indexes := map[string]bson.D{
		bucketsCollection:        {{Key: "location", Value: 1}, {Key: "flavor_id", Value: 1}},
		productionLogsCollection: {{Key: "produced_at", Value: -1}},
		closingLogsCollection:    {{Key: "store", Value: 1}, {Key: "closed_at", Value: -1}},
	}
	for coll, keys := range indexes {
		if _, err := r.db.Collection(coll).Indexes().CreateOne(ctx, mongo.IndexModel{Keys: keys}); err != nil {
			return fmt.Errorf("cannot create %s index: %w", coll, err)
		}
	}
	return nil
}

// LoadAll reads every collection.
func (r *MongoDBRepository) LoadAll(ctx context.Context) (models.Snapshot, error) {
	var snap models.Snapshot

	if err := findAll(ctx, r.db.Collection(bucketsCollection), &snap.Buckets); err != nil {
		return snap, err
	}
	if err := findAll(ctx, r.db.Collection(flavorsCollection), &snap.Flavors); err != nil {
		return snap, err
	}
	if err := findAll(ctx, r.db.Collection(categoriesCollection), &snap.Categories); err != nil {
		return snap, err
	}
	if err := findAll(ctx, r.db.Collection(productionLogsCollection), &snap.ProductionLogs); err != nil {
		return snap, err
	}
	if err := findAll(ctx, r.db.Collection(closingLogsCollection), &snap.ClosingLogs); err != nil {
		return snap, err
	}

	// Closing logs are kept newest first in memory.
	sortClosingLogs(snap.ClosingLogs)
	sortProductionLogs(snap.ProductionLogs)

	return snap, nil
}

// SaveAll mirrors the snapshot: every document is upserted and documents no
// longer present are removed.
func (r *MongoDBRepository) SaveAll(ctx context.Context, snap models.Snapshot) error {
	r.saveMu.Lock()
	defer r.saveMu.Unlock()

	var errs []error
	errs = append(errs, replaceAll(ctx, r.db.Collection(bucketsCollection), snap.Buckets, func(b models.Bucket) string { return b.ID }))
	errs = append(errs, replaceAll(ctx, r.db.Collection(flavorsCollection), snap.Flavors, func(f models.Flavor) string { return f.ID }))
	errs = append(errs, replaceAll(ctx, r.db.Collection(categoriesCollection), snap.Categories, func(c models.Category) string { return c.ID }))
	errs = append(errs, replaceAll(ctx, r.db.Collection(productionLogsCollection), snap.ProductionLogs, func(p models.ProductionLog) string { return p.ID }))
	errs = append(errs, replaceAll(ctx, r.db.Collection(closingLogsCollection), snap.ClosingLogs, func(c models.ClosingLog) string { return c.ID }))

	err := errors.Join(errs...)
	r.recordSave(snap, err)
	return err
}

// recordSave remembers what this process last wrote. After a failed save the
// database may hold a partial write, so reloads are held back until a save
// succeeds again. Must hold r.saveMu.
func (r *MongoDBRepository) recordSave(snap models.Snapshot, saveErr error) {
	if saveErr != nil {
		r.diverged = true
		r.lastSaved = nil
		return
	}

	fp, err := fingerprint(snap)
	if err != nil {
		r.logger.Warn("cannot fingerprint saved snapshot", zap.Error(err))
		fp = nil
	}
	r.diverged = false
	r.lastSaved = fp
}

// Subscribe watches the database and reloads the full snapshot after each
// burst of changes. Bursts that only reflect this process's own saves are
// dropped. It returns once the stream is open; events are delivered from a
// background goroutine until ctx is cancelled.
func (r *MongoDBRepository) Subscribe(ctx context.Context, onChange func(models.Snapshot)) error {
	stream, err := r.db.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return fmt.Errorf("open change stream: %w", err)
	}

	go func() {
		defer func() { _ = stream.Close(context.Background()) }()

		d := newDebouncer(changeDebounce, func() { r.reload(ctx, onChange) })
		defer d.stop()

		for stream.Next(ctx) {
			d.trigger()
		}

		if err := stream.Err(); err != nil && ctx.Err() == nil {
			r.logger.Error("change stream stopped", zap.Error(err))
		}
	}()

	r.logger.Info("watching mongodb for external changes")
	return nil
}

// reload reads the stored snapshot while no save is in flight and hands it to
// onChange unless it is exactly what this process last saved.
func (r *MongoDBRepository) reload(ctx context.Context, onChange func(models.Snapshot)) {
	r.saveMu.Lock()
	if r.diverged {
		r.saveMu.Unlock()
		r.logger.Debug("reload skipped, last save failed")
		return
	}
	snap, err := r.load(ctx)
	own := false
	if err == nil && r.lastSaved != nil {
		fp, fpErr := fingerprint(snap)
		own = fpErr == nil && maps.Equal(fp, r.lastSaved)
	}
	r.saveMu.Unlock()

	if err != nil {
		r.logger.Warn("reload after change failed", zap.Error(err))
		return
	}
	if own {
		r.logger.Debug("change stream echoed our own save")
		return
	}

	// Called without saveMu: onChange takes the ledger lock, which is held
	// across SaveAll.
	onChange(snap)
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, out *[]T) error {
	cursor, err := coll.Find(ctx, bson.D{})
	if err != nil {
		return fmt.Errorf("find %s: %w", coll.Name(), err)
	}
	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("decode %s: %w", coll.Name(), err)
	}
	return nil
}

func replaceAll[T any](ctx context.Context, coll *mongo.Collection, docs []T, id func(T) string) error {
	ids := make([]string, 0, len(docs))
	writes := make([]mongo.WriteModel, 0, len(docs))
	for _, doc := range docs {
		docID := id(doc)
		ids = append(ids, docID)
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": docID}).
			SetReplacement(doc).
			SetUpsert(true))
	}

	if len(writes) > 0 {
		if _, err := coll.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false)); err != nil {
			return fmt.Errorf("upsert %s: %w", coll.Name(), err)
		}
	}

	if _, err := coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$nin": ids}}); err != nil {
		return fmt.Errorf("prune %s: %w", coll.Name(), err)
	}
	return nil
}
