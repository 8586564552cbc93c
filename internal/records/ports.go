// Package records defines the storage ports the planning layer reads and
// writes through. Every method is scoped to a user id; a row belonging to
// another user behaves as missing and yields core.ErrNotFound.
package records

import (
	"context"

	"darkfinance/internal/core"
)

type (
	// AccountStore lists accounts newest first.
	AccountStore interface {
		ListAccounts(ctx context.Context, userID string) ([]core.Account, error)
		GetAccount(ctx context.Context, userID string, id int64) (core.Account, error)
		CreateAccount(ctx context.Context, a core.Account) (int64, error)
		UpdateAccount(ctx context.Context, a core.Account) error
		DeleteAccount(ctx context.Context, userID string, id int64) error
	}

	BillStore interface {
		ListBills(ctx context.Context, userID string) ([]core.FixedBill, error)
		GetBill(ctx context.Context, userID string, id int64) (core.FixedBill, error)
		CreateBill(ctx context.Context, b core.FixedBill) (int64, error)
		UpdateBill(ctx context.Context, b core.FixedBill) error
		DeleteBill(ctx context.Context, userID string, id int64) error
	}

	// IncomeStore keeps at most one income row per user.
	IncomeStore interface {
		// GetIncome reports false when the user never set an income.
		GetIncome(ctx context.Context, userID string) (core.IncomeRecord, bool, error)
		UpsertIncome(ctx context.Context, rec core.IncomeRecord) error
	}

	SnapshotStore interface {
		SaveSnapshot(ctx context.Context, s core.ProjectionSnapshot) (int64, error)
		// ListSnapshots returns the latest snapshots first; limit <= 0 means all.
		ListSnapshots(ctx context.Context, userID string, limit int) ([]core.ProjectionSnapshot, error)
		// ListUserIDs returns every user that owns at least one record.
		ListUserIDs(ctx context.Context) ([]string, error)
	}

	Backend interface {
		AccountStore
		BillStore
		IncomeStore
		SnapshotStore
	}
)
