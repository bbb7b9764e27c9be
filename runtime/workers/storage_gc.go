package workers

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// StorageGCWorker periodically reclaims space in the Badger value log.
// Badger never runs value-log GC on its own; without this loop the
// store grows unbounded under message churn.
type StorageGCWorker struct {
	log      *slog.Logger
	db       *badger.DB
	interval time.Duration
}

func NewStorageGCWorker(log *slog.Logger, db *badger.DB, interval time.Duration) *StorageGCWorker {
	return &StorageGCWorker{log: log, db: db, interval: interval}
}

func (w *StorageGCWorker) Run(ctx context.Context) error {
	w.log.Info("Starting storage GC worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			// One file at most per cycle; loop until nothing rewrites.
			for {
				err := w.db.RunValueLogGC(0.5)
				if stderrors.Is(err, badger.ErrNoRewrite) {
					break
				}
				if err != nil {
					w.log.Warn("Value log GC failed", "err", err)
					break
				}
				w.log.Debug("Value log file reclaimed")
			}
		}
	}
}
