package ledger

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/gelateria/internal/domain/models"
	"github.com/mamadbah2/gelateria/internal/service/export"
)

// Import replaces the whole state with a JSON dump. A malformed payload
// leaves state untouched and raises a warning notification.
func (l *Ledger) Import(ctx context.Context, data []byte) error {
	snap, err := export.Restore(data)
	if err != nil {
		l.logger.Warn("import rejected", zap.Error(err))
		l.Notify(models.SeverityWarning, "Import failed: the file is not a valid backup")
		return fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.state = normalize(snap)
	l.persist(ctx, "import")
	l.notify(models.SeveritySuccess, fmt.Sprintf("Backup restored: %d buckets, %d flavors", len(snap.Buckets), len(snap.Flavors)))
	return nil
}

// Export renders the whole state as a JSON dump.
func (l *Ledger) Export() ([]byte, error) {
	return export.Dump(l.Snapshot())
}
