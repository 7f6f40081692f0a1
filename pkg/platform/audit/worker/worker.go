// Package worker drains the audit outbox. It runs beside the HTTP server and
// ships unpublished entries to the Kafka sink in small batches, so audit
// durability never sits on the scan request path.
package worker

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// Sink receives published outbox payloads.
type Sink interface {
	Publish(ctx context.Context, key string, payload []byte) error
}

// Worker polls the outbox table and publishes pending entries.
type Worker struct {
	db       *sql.DB
	sink     Sink
	logger   *slog.Logger
	interval time.Duration
	batch    int
}

// New constructs an outbox worker.
func New(db *sql.DB, sink Sink, logger *slog.Logger) *Worker {
	return &Worker{
		db:       db,
		sink:     sink,
		logger:   logger,
		interval: 2 * time.Second,
		batch:    100,
	}
}

// Run polls until ctx is cancelled, then returns nil: cancellation is the
// normal shutdown path, not a failure. Publish failures are logged and
// retried on the next tick; entries stay in the outbox until shipped.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := w.publishBatch(ctx); err != nil {
				w.logger.Error("outbox publish batch failed", "error", err)
			}
		}
	}
}

type outboxRow struct {
	id          string
	aggregateID string
	payload     []byte
}

func (w *Worker) publishBatch(ctx context.Context) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin outbox batch: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	rows, err := tx.QueryContext(ctx, `
		SELECT id, aggregate_id, payload
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`, w.batch)
	if err != nil {
		return fmt.Errorf("select outbox entries: %w", err)
	}

	var pending []outboxRow
	for rows.Next() {
		var row outboxRow
		if err := rows.Scan(&row.id, &row.aggregateID, &row.payload); err != nil {
			rows.Close()
			return fmt.Errorf("scan outbox entry: %w", err)
		}
		pending = append(pending, row)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("iterate outbox entries: %w", err)
	}
	rows.Close()

	if len(pending) == 0 {
		return nil
	}

	for _, row := range pending {
		if err := w.sink.Publish(ctx, row.aggregateID, row.payload); err != nil {
			return fmt.Errorf("publish outbox entry %s: %w", row.id, err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE outbox SET published_at = $1 WHERE id = $2`, time.Now(), row.id); err != nil {
			return fmt.Errorf("mark outbox entry %s published: %w", row.id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit outbox batch: %w", err)
	}
	w.logger.Debug("outbox batch published", "count", len(pending))
	return nil
}
