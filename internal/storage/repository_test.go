package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"darkfinance/internal/core"
)

const testUser = "a11ce000-0000-4000-8000-000000000001"

func newTestRepo(t *testing.T) *SQLRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "nested", "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSQLiteAccounts(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	id1, err := repo.CreateAccount(ctx, core.Account{
		UserID:         testUser,
		Name:           "Visa",
		CurrentBalance: 1500,
		MinimumPayment: 365,
		MyMonthlyPay:   365,
		APRInterest:    24.99,
		DueDate:        core.NewDate(2025, 1, 1),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	id2, err := repo.CreateAccount(ctx, core.Account{UserID: testUser, Name: "Mortgage", AccountType: "Loan", CurrentBalance: 250000, MyMonthlyPay: 6777})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	list, err := repo.ListAccounts(ctx, testUser)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != id2 || list[1].ID != id1 {
		t.Fatalf("expected newest first, got %+v", list)
	}
	visa := list[1]
	if visa.APRInterest != 24.99 || visa.DueDate.String() != "2025-01-01" || visa.AccountType != "" {
		t.Fatalf("visa round trip = %+v", visa)
	}
	if !list[0].DueDate.IsEmpty() {
		t.Fatalf("mortgage due date should be unset, got %v", list[0].DueDate)
	}

	visa.MyMonthlyPay = 500
	if err := repo.UpdateAccount(ctx, visa); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := repo.GetAccount(ctx, testUser, id1)
	if err != nil || got.MyMonthlyPay != 500 {
		t.Fatalf("get = %+v, err = %v", got, err)
	}

	if _, err := repo.GetAccount(ctx, "someone-else", id1); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other user, got %v", err)
	}
	visa.ID = 9999
	if err := repo.UpdateAccount(ctx, visa); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}

	if err := repo.DeleteAccount(ctx, testUser, id1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.DeleteAccount(ctx, testUser, id1); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestSQLiteNullColumnsReadAsZero(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	if _, err := repo.db.ExecContext(ctx, `INSERT INTO accounts (user_id) VALUES (?)`, testUser); err != nil {
		t.Fatalf("raw insert: %v", err)
	}
	if _, err := repo.db.ExecContext(ctx, `INSERT INTO fixed_bills (user_id, bill_name, due_date) VALUES (?, 'Gym', 'garbage')`, testUser); err != nil {
		t.Fatalf("raw insert: %v", err)
	}

	accounts, err := repo.ListAccounts(ctx, testUser)
	if err != nil || len(accounts) != 1 {
		t.Fatalf("list = %v, err = %v", accounts, err)
	}
	a := accounts[0]
	if a.CurrentBalance != 0 || a.MyMonthlyPay != 0 || a.Name != "" || !a.DueDate.IsEmpty() {
		t.Fatalf("nulls not coerced: %+v", a)
	}
	if a.DisplayName() != core.DefaultAccountName {
		t.Fatalf("DisplayName = %q", a.DisplayName())
	}

	bills, err := repo.ListBills(ctx, testUser)
	if err != nil || len(bills) != 1 || bills[0].Cost != 0 || !bills[0].DueDate.IsEmpty() {
		t.Fatalf("bills = %+v, err = %v", bills, err)
	}
}

func TestSQLiteBills(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	id, err := repo.CreateBill(ctx, core.FixedBill{UserID: testUser, Name: "Rent", Cost: 1200, DueDate: core.NewDate(2025, 1, 31)})
	if err != nil {
		t.Fatalf("create bill: %v", err)
	}
	if _, err := repo.CreateBill(ctx, core.FixedBill{UserID: testUser, Cost: 5}); !errors.Is(err, core.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}

	if err := repo.UpdateBill(ctx, core.FixedBill{ID: id, UserID: testUser, Name: "Rent", Cost: 1250}); err != nil {
		t.Fatalf("update bill: %v", err)
	}
	b, err := repo.GetBill(ctx, testUser, id)
	if err != nil || b.Cost != 1250 || !b.DueDate.IsEmpty() {
		t.Fatalf("get bill = %+v, err = %v", b, err)
	}

	if err := repo.DeleteBill(ctx, testUser, id); err != nil {
		t.Fatalf("delete bill: %v", err)
	}
	if _, err := repo.GetBill(ctx, testUser, id); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteIncomeUpsert(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	rec, ok, err := repo.GetIncome(ctx, testUser)
	if err != nil || ok || rec.MonthlyIncome != 0 {
		t.Fatalf("expected no income, got %+v ok=%v err=%v", rec, ok, err)
	}

	for _, v := range []float64{4000, 4500} {
		if err := repo.UpsertIncome(ctx, core.IncomeRecord{UserID: testUser, MonthlyIncome: v}); err != nil {
			t.Fatalf("upsert %v: %v", v, err)
		}
	}
	rec, ok, err = repo.GetIncome(ctx, testUser)
	if err != nil || !ok || rec.MonthlyIncome != 4500 {
		t.Fatalf("income = %+v ok=%v err=%v", rec, ok, err)
	}

	var rows int
	if err := repo.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM fixed_income`).Scan(&rows); err != nil || rows != 1 {
		t.Fatalf("expected one income row, got %d err=%v", rows, err)
	}

	if err := repo.UpsertIncome(ctx, core.IncomeRecord{UserID: testUser, MonthlyIncome: -1}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestSQLiteSnapshotsAndUsers(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := repo.SaveSnapshot(ctx, core.ProjectionSnapshot{
			UserID:        testUser,
			TotalDebt:     float64(1000 * (i + 1)),
			TotalAccounts: i + 1,
			PayoffYear:    2027,
			ComputedAt:    base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("save snapshot: %v", err)
		}
	}

	snaps, err := repo.ListSnapshots(ctx, testUser, 2)
	if err != nil || len(snaps) != 2 {
		t.Fatalf("snapshots = %v, err = %v", snaps, err)
	}
	if snaps[0].TotalDebt != 3000 || !snaps[0].ComputedAt.Equal(base.Add(2*time.Hour)) || snaps[0].PayoffYear != 2027 {
		t.Fatalf("latest snapshot = %+v", snaps[0])
	}
	all, _ := repo.ListSnapshots(ctx, testUser, 0)
	if len(all) != 3 {
		t.Fatalf("expected 3 snapshots, got %d", len(all))
	}

	_ = repo.UpsertIncome(ctx, core.IncomeRecord{UserID: "b-user", MonthlyIncome: 1})
	_, _ = repo.CreateBill(ctx, core.FixedBill{UserID: testUser, Name: "Rent", Cost: 1})
	_, _ = repo.CreateAccount(ctx, core.Account{UserID: testUser})

	ids, err := repo.ListUserIDs(ctx)
	if err != nil || len(ids) != 2 || ids[0] != testUser || ids[1] != "b-user" {
		t.Fatalf("ListUserIDs = %v, err = %v", ids, err)
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twice.db")
	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	_ = repo.Close()

	repo, err = NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer repo.Close()
	if err := repo.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
