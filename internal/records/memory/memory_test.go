package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"darkfinance/internal/core"
)

const (
	alice = "a11ce000-0000-4000-8000-000000000001"
	bob   = "b0b00000-0000-4000-8000-000000000002"
)

func TestStoreAccountsCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	id1, err := s.CreateAccount(ctx, core.Account{UserID: alice, Name: "Visa", CurrentBalance: 1500})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	id2, _ := s.CreateAccount(ctx, core.Account{UserID: alice, Name: "Loan", CurrentBalance: 9000})
	if _, err := s.CreateAccount(ctx, core.Account{UserID: bob, Name: "Other"}); err != nil {
		t.Fatalf("create bob: %v", err)
	}

	list, err := s.ListAccounts(ctx, alice)
	if err != nil || len(list) != 2 {
		t.Fatalf("list = %v, err = %v", list, err)
	}
	if list[0].ID != id2 || list[1].ID != id1 {
		t.Fatalf("expected newest first, got ids %d, %d", list[0].ID, list[1].ID)
	}

	updated := list[1]
	updated.CurrentBalance = 1000
	if err := s.UpdateAccount(ctx, updated); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := s.GetAccount(ctx, alice, id1)
	if err != nil || got.CurrentBalance != 1000 {
		t.Fatalf("get after update = %+v, err = %v", got, err)
	}

	if _, err := s.GetAccount(ctx, bob, id1); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("other user's account should be not found, got %v", err)
	}
	updated.UserID = bob
	if err := s.UpdateAccount(ctx, updated); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("cross-user update should be not found, got %v", err)
	}

	if err := s.DeleteAccount(ctx, alice, id1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteAccount(ctx, alice, id1); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second delete should be not found, got %v", err)
	}
}

func TestStoreRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	s := New()
	if _, err := s.CreateAccount(ctx, core.Account{UserID: alice, CurrentBalance: -1}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := s.CreateBill(ctx, core.FixedBill{UserID: alice, Cost: 10}); !errors.Is(err, core.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if err := s.UpsertIncome(ctx, core.IncomeRecord{UserID: alice, MonthlyIncome: -5}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestStoreBillsAndIncome(t *testing.T) {
	ctx := context.Background()
	s := New()

	id, err := s.CreateBill(ctx, core.FixedBill{UserID: alice, Name: "Rent", Cost: 1200})
	if err != nil {
		t.Fatalf("create bill: %v", err)
	}
	if err := s.UpdateBill(ctx, core.FixedBill{ID: id, UserID: alice, Name: "Rent", Cost: 1250}); err != nil {
		t.Fatalf("update bill: %v", err)
	}
	b, err := s.GetBill(ctx, alice, id)
	if err != nil || b.Cost != 1250 {
		t.Fatalf("get bill = %+v, err = %v", b, err)
	}

	if _, ok, _ := s.GetIncome(ctx, alice); ok {
		t.Fatalf("income should be unset")
	}
	_ = s.UpsertIncome(ctx, core.IncomeRecord{UserID: alice, MonthlyIncome: 4000})
	_ = s.UpsertIncome(ctx, core.IncomeRecord{UserID: alice, MonthlyIncome: 4500})
	rec, ok, err := s.GetIncome(ctx, alice)
	if err != nil || !ok || rec.MonthlyIncome != 4500 {
		t.Fatalf("income = %+v ok=%v err=%v", rec, ok, err)
	}

	if err := s.DeleteBill(ctx, alice, id); err != nil {
		t.Fatalf("delete bill: %v", err)
	}
	bills, _ := s.ListBills(ctx, alice)
	if len(bills) != 0 {
		t.Fatalf("expected no bills, got %v", bills)
	}
}

func TestStoreSnapshots(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if _, err := s.SaveSnapshot(ctx, core.ProjectionSnapshot{UserID: alice, TotalDebt: float64(i), ComputedAt: base.Add(time.Duration(i) * time.Hour)}); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	_, _ = s.SaveSnapshot(ctx, core.ProjectionSnapshot{UserID: bob})

	got, _ := s.ListSnapshots(ctx, alice, 2)
	if len(got) != 2 || got[0].TotalDebt != 2 || got[1].TotalDebt != 1 {
		t.Fatalf("unexpected snapshots: %+v", got)
	}
	all, _ := s.ListSnapshots(ctx, alice, 0)
	if len(all) != 3 {
		t.Fatalf("expected 3 snapshots, got %d", len(all))
	}
	if _, err := s.SaveSnapshot(ctx, core.ProjectionSnapshot{}); !errors.Is(err, core.ErrInvalidUser) {
		t.Fatalf("expected ErrInvalidUser, got %v", err)
	}
}

func TestStoreListUserIDs(t *testing.T) {
	ctx := context.Background()
	s := New()
	_ = s.UpsertIncome(ctx, core.IncomeRecord{UserID: bob})
	_, _ = s.CreateAccount(ctx, core.Account{UserID: alice})
	_, _ = s.CreateBill(ctx, core.FixedBill{UserID: alice, Name: "Gym", Cost: 30})

	ids, err := s.ListUserIDs(ctx)
	if err != nil || len(ids) != 2 || ids[0] != alice || ids[1] != bob {
		t.Fatalf("ListUserIDs = %v, err = %v", ids, err)
	}
}

func TestNewFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.toml")
	content := "monthly_income = 3000\n\n[[accounts]]\nname = \"Visa\"\ncurrent_balance = 800\n\n[[bills]]\nname = \"Rent\"\ncost = 900\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	s, err := NewFromFile(path, alice)
	if err != nil {
		t.Fatalf("NewFromFile: %v", err)
	}
	ctx := context.Background()
	accounts, _ := s.ListAccounts(ctx, alice)
	bills, _ := s.ListBills(ctx, alice)
	rec, ok, _ := s.GetIncome(ctx, alice)
	if len(accounts) != 1 || len(bills) != 1 || !ok || rec.MonthlyIncome != 3000 {
		t.Fatalf("seed not applied: accounts=%v bills=%v income=%+v", accounts, bills, rec)
	}

	if _, err := NewFromFile(filepath.Join(t.TempDir(), "nope.toml"), alice); err == nil {
		t.Fatalf("expected error for missing seed file")
	}
}
