// Package memory is an in-process records.Backend for development and tests.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"darkfinance/internal/core"
	"darkfinance/internal/records"
)

var _ records.Backend = (*Store)(nil)

type Store struct {
	mu        sync.Mutex
	nextID    int64
	accounts  map[int64]core.Account
	bills     map[int64]core.FixedBill
	income    map[string]core.IncomeRecord
	snapshots []core.ProjectionSnapshot
}

func New() *Store {
	return &Store{
		accounts: make(map[int64]core.Account),
		bills:    make(map[int64]core.FixedBill),
		income:   make(map[string]core.IncomeRecord),
	}
}

// NewFromFile seeds a store from a TOML snapshot file. Rows are owned by the
// file's user_id, or defaultUserID when the file names none.
func NewFromFile(path, defaultUserID string) (*Store, error) {
	f, err := records.LoadSnapshotFile(path)
	if err != nil {
		return nil, err
	}
	s := New()
	if err := s.Seed(context.Background(), f, defaultUserID); err != nil {
		return nil, err
	}
	return s, nil
}

// Seed loads the contents of a snapshot file. File ids are discarded and
// fresh ones assigned.
func (s *Store) Seed(ctx context.Context, f records.SnapshotFile, defaultUserID string) error {
	userID := cmp.Or(f.UserID, defaultUserID)
	if err := s.UpsertIncome(ctx, core.IncomeRecord{UserID: userID, MonthlyIncome: f.MonthlyIncome}); err != nil {
		return fmt.Errorf("seed income: %w", err)
	}
	for _, a := range f.Accounts {
		a.UserID = userID
		if _, err := s.CreateAccount(ctx, a); err != nil {
			return fmt.Errorf("seed account %q: %w", a.Name, err)
		}
	}
	for _, b := range f.Bills {
		b.UserID = userID
		if _, err := s.CreateBill(ctx, b); err != nil {
			return fmt.Errorf("seed bill %q: %w", b.Name, err)
		}
	}
	return nil
}

func (s *Store) ListAccounts(_ context.Context, userID string) ([]core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Account, 0)
	for _, a := range s.accounts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	slices.SortFunc(out, func(a, b core.Account) int { return cmp.Compare(b.ID, a.ID) })
	return out, nil
}

func (s *Store) GetAccount(_ context.Context, userID string, id int64) (core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok || a.UserID != userID {
		return core.Account{}, core.ErrNotFound
	}
	return a, nil
}

// CreateAccount stores the account and returns its new id.
func (s *Store) CreateAccount(_ context.Context, a core.Account) (int64, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	a.ID = s.nextID
	s.accounts[a.ID] = a
	return a.ID, nil
}

func (s *Store) UpdateAccount(_ context.Context, a core.Account) error {
	if err := a.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.accounts[a.ID]
	if !ok || cur.UserID != a.UserID {
		return core.ErrNotFound
	}
	s.accounts[a.ID] = a
	return nil
}

func (s *Store) DeleteAccount(_ context.Context, userID string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.accounts[id]
	if !ok || cur.UserID != userID {
		return core.ErrNotFound
	}
	delete(s.accounts, id)
	return nil
}

func (s *Store) ListBills(_ context.Context, userID string) ([]core.FixedBill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.FixedBill, 0)
	for _, b := range s.bills {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	slices.SortFunc(out, func(a, b core.FixedBill) int { return cmp.Compare(b.ID, a.ID) })
	return out, nil
}

func (s *Store) GetBill(_ context.Context, userID string, id int64) (core.FixedBill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bills[id]
	if !ok || b.UserID != userID {
		return core.FixedBill{}, core.ErrNotFound
	}
	return b, nil
}

func (s *Store) CreateBill(_ context.Context, b core.FixedBill) (int64, error) {
	if err := b.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	b.ID = s.nextID
	s.bills[b.ID] = b
	return b.ID, nil
}

func (s *Store) UpdateBill(_ context.Context, b core.FixedBill) error {
	if err := b.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.bills[b.ID]
	if !ok || cur.UserID != b.UserID {
		return core.ErrNotFound
	}
	s.bills[b.ID] = b
	return nil
}

func (s *Store) DeleteBill(_ context.Context, userID string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.bills[id]
	if !ok || cur.UserID != userID {
		return core.ErrNotFound
	}
	delete(s.bills, id)
	return nil
}

func (s *Store) GetIncome(_ context.Context, userID string) (core.IncomeRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.income[userID]
	return rec, ok, nil
}

func (s *Store) UpsertIncome(_ context.Context, rec core.IncomeRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.income[rec.UserID] = rec
	return nil
}

func (s *Store) SaveSnapshot(_ context.Context, snap core.ProjectionSnapshot) (int64, error) {
	if snap.UserID == "" {
		return 0, core.ErrInvalidUser
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if snap.ComputedAt.IsZero() {
		snap.ComputedAt = time.Now().UTC()
	}
	s.nextID++
	snap.ID = s.nextID
	s.snapshots = append(s.snapshots, snap)
	return snap.ID, nil
}

func (s *Store) ListSnapshots(_ context.Context, userID string, limit int) ([]core.ProjectionSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.ProjectionSnapshot, 0)
	for i := len(s.snapshots) - 1; i >= 0; i-- {
		if s.snapshots[i].UserID != userID {
			continue
		}
		out = append(out, s.snapshots[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// ListUserIDs returns users with any account, bill or income, sorted.
func (s *Store) ListUserIDs(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]struct{})
	for _, a := range s.accounts {
		seen[a.UserID] = struct{}{}
	}
	for _, b := range s.bills {
		seen[b.UserID] = struct{}{}
	}
	for id := range s.income {
		seen[id] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	slices.Sort(out)
	return out, nil
}
