// Package local persists the ledger in a single JSON file laid out as a
// key-value store, one key per collection. It never pushes notifications.
package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/mamadbah2/gelateria/internal/domain/models"
)

const (
	keyBuckets        = "gelato_buckets"
	keyFlavors        = "gelato_flavors"
	keyCategories     = "gelato_categories"
	keyProductionLogs = "gelato_production_logs"
	keyClosingLogs    = "gelato_closing_logs"
)

// Repository is a file-backed key-value store.
type Repository struct {
	path   string
	mu     sync.Mutex
	logger *zap.Logger
}

// NewRepository prepares a store at path. The file is created on first save.
func NewRepository(path string, logger *zap.Logger) (*Repository, error) {
	if path == "" {
		return nil, errors.New("local store path must not be empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{path: path, logger: logger}, nil
}

// LoadAll reads every key. A missing or empty file yields an empty snapshot.
func (r *Repository) LoadAll(ctx context.Context) (models.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var snap models.Snapshot

	entries, err := r.read()
	if err != nil {
		return snap, err
	}

	for key, target := range map[string]any{
		keyBuckets:        &snap.Buckets,
		keyFlavors:        &snap.Flavors,
		keyCategories:     &snap.Categories,
		keyProductionLogs: &snap.ProductionLogs,
		keyClosingLogs:    &snap.ClosingLogs,
	} {
		raw, ok := entries[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, target); err != nil {
			return models.Snapshot{}, fmt.Errorf("decode %s: %w", key, err)
		}
	}

	r.logger.Debug("local store loaded", zap.String("path", r.path), zap.Int("keys", len(entries)))
	return snap, nil
}

// SaveAll rewrites every key atomically.
func (r *Repository) SaveAll(ctx context.Context, snap models.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := make(map[string]json.RawMessage, 5)
	for key, value := range map[string]any{
		keyBuckets:        snap.Buckets,
		keyFlavors:        snap.Flavors,
		keyCategories:     snap.Categories,
		keyProductionLogs: snap.ProductionLogs,
		keyClosingLogs:    snap.ClosingLogs,
	} {
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		entries[key] = raw
	}

	return r.write(entries)
}

func (r *Repository) read() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read local store: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode local store: %w", err)
	}
	return entries, nil
}

func (r *Repository) write(entries map[string]json.RawMessage) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode local store: %w", err)
	}
	temp := r.path + ".tmp"
	if err := os.WriteFile(temp, data, 0o644); err != nil {
		return fmt.Errorf("write local store: %w", err)
	}
	return os.Rename(temp, r.path)
}
