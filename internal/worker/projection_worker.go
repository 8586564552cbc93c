package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"darkfinance/internal/amqp"
	"darkfinance/internal/core"
	"darkfinance/internal/log"
)

// Snapshotter is the part of the planning service the worker drives.
type Snapshotter interface {
	RecordSnapshot(ctx context.Context, userID string) (core.ProjectionSnapshot, error)
	UserIDs(ctx context.Context) ([]string, error)
}

// ProjectionWorker keeps persisted projection snapshots current: one per
// change event, plus a periodic sweep over every user to cover lost events.
type ProjectionWorker struct {
	planner Snapshotter
	logger  *log.Logger
}

func NewProjectionWorker(planner Snapshotter, logger *log.Logger) *ProjectionWorker {
	if logger == nil {
		logger = log.Default(log.ComponentWorker)
	}
	return &ProjectionWorker{planner: planner, logger: logger}
}

// HandleRecordChanged re-snapshots the user named in the event. An error makes
// the consumer requeue the message.
func (w *ProjectionWorker) HandleRecordChanged(ctx context.Context, msg *amqp.RecordChangedMessage) error {
	snap, err := w.planner.RecordSnapshot(ctx, msg.UserID)
	if err != nil {
		return fmt.Errorf("snapshot after %s %s: %w", msg.Op, msg.Table, err)
	}
	w.logger.InfoContext(ctx, "Projection snapshot stored", log.NewFields().
		WithUser(msg.UserID).
		WithRecord(msg.Table, msg.RecordID).
		WithOperation(log.OpSnapshot).
		WithProjection(snap.TotalDebt, snap.TotalAccounts, snap.PayoffYear, snap.DebtToIncomeRatio).
		ToSlice()...)
	return nil
}

// SnapshotAll snapshots every known user. One user's failure does not stop
// the others; all failures are returned joined.
func (w *ProjectionWorker) SnapshotAll(ctx context.Context) error {
	users, err := w.planner.UserIDs(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	var errs []error
	stored := 0
	for _, id := range users {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := w.planner.RecordSnapshot(ctx, id); err != nil {
			w.logger.ErrorContext(ctx, "Snapshot failed", log.FieldUserID, id, log.FieldError, err)
			errs = append(errs, fmt.Errorf("user %s: %w", id, err))
			continue
		}
		stored++
	}

	w.logger.InfoContext(ctx, "Snapshot sweep finished", "users", len(users), "stored", stored)
	return errors.Join(errs...)
}

// Run sweeps once immediately and then every interval until ctx ends.
func (w *ProjectionWorker) Run(ctx context.Context, interval time.Duration) {
	if err := w.SnapshotAll(ctx); err != nil {
		w.logger.ErrorContext(ctx, "Startup snapshot sweep failed", log.FieldError, err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.SnapshotAll(ctx); err != nil {
				w.logger.ErrorContext(ctx, "Periodic snapshot sweep failed", log.FieldError, err)
			}
		}
	}
}
