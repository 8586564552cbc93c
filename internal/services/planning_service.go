package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"darkfinance/internal/amqp"
	"darkfinance/internal/calendar"
	"darkfinance/internal/core"
	"darkfinance/internal/log"
	"darkfinance/internal/payoff"
	"darkfinance/internal/records"
)

// Publisher announces record changes. *amqp.Client satisfies it.
type Publisher interface {
	PublishRecordChanged(ctx context.Context, msg *amqp.RecordChangedMessage) error
}

// PlanningService owns the write path for a user's planning data and turns
// fetched records into projections.
type PlanningService struct {
	store     records.Backend
	publisher Publisher
	now       func() time.Time
	logger    *log.Logger
}

type Option func(*PlanningService)

// WithPublisher enables change events. Without one, writes publish nothing.
func WithPublisher(p Publisher) Option {
	return func(s *PlanningService) { s.publisher = p }
}

// WithClock overrides the time source used for payoff years and calendars.
func WithClock(now func() time.Time) Option {
	return func(s *PlanningService) { s.now = now }
}

func WithLogger(l *log.Logger) Option {
	return func(s *PlanningService) { s.logger = l }
}

func NewPlanningService(store records.Backend, opts ...Option) *PlanningService {
	s := &PlanningService{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.Default(log.ComponentPlanning)
	}
	return s
}

// Snapshot fetches accounts, bills and income concurrently and merges them.
// A user with no income row gets income 0.
func (s *PlanningService) Snapshot(ctx context.Context, userID string) (payoff.Snapshot, error) {
	var (
		snap   payoff.Snapshot
		income core.IncomeRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		accounts, err := s.store.ListAccounts(gctx, userID)
		if err != nil {
			return fmt.Errorf("fetch accounts: %w", err)
		}
		snap.Accounts = accounts
		return nil
	})
	g.Go(func() error {
		bills, err := s.store.ListBills(gctx, userID)
		if err != nil {
			return fmt.Errorf("fetch bills: %w", err)
		}
		snap.Bills = bills
		return nil
	})
	g.Go(func() error {
		rec, _, err := s.store.GetIncome(gctx, userID)
		if err != nil {
			return fmt.Errorf("fetch income: %w", err)
		}
		income = rec
		return nil
	})
	if err := g.Wait(); err != nil {
		return payoff.Snapshot{}, err
	}
	snap.MonthlyIncome = income.MonthlyIncome
	return snap, nil
}

// Refresh recomputes the full overview for a user. Calling it again with
// unchanged data yields the same result.
func (s *PlanningService) Refresh(ctx context.Context, userID string) (payoff.Overview, error) {
	snap, err := s.Snapshot(ctx, userID)
	if err != nil {
		return payoff.Overview{}, fmt.Errorf("refresh %s: %w", userID, err)
	}
	ov := payoff.BuildOverview(snap, s.now().Year())

	s.logger.DebugContext(ctx, "Overview refreshed", log.NewFields().
		WithUser(userID).
		WithOperation(log.OpRefresh).
		WithProjection(ov.Metrics.TotalDebt, ov.Metrics.TotalAccounts, ov.Metrics.PayoffYear, ov.Metrics.DebtToIncomeRatio).
		ToSlice()...)
	return ov, nil
}

// ListAccounts returns projected accounts, newest first unless order sorts
// them by balance.
func (s *PlanningService) ListAccounts(ctx context.Context, userID string, order payoff.SortOrder) ([]payoff.AccountProjection, error) {
	accounts, err := s.store.ListAccounts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return payoff.ProjectAccounts(payoff.SortByBalance(accounts, order)), nil
}

func (s *PlanningService) GetAccount(ctx context.Context, userID string, id int64) (payoff.AccountProjection, error) {
	a, err := s.store.GetAccount(ctx, userID, id)
	if err != nil {
		return payoff.AccountProjection{}, err
	}
	return payoff.ProjectAccounts([]core.Account{a})[0], nil
}

// CreateAccount saves the account and returns it with its new id.
func (s *PlanningService) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	id, err := s.store.CreateAccount(ctx, a)
	if err != nil {
		return core.Account{}, fmt.Errorf("save account: %w", err)
	}
	a.ID = id
	s.publish(ctx, a.UserID, amqp.TableAccounts, id, amqp.OpInsert)
	return a, nil
}

func (s *PlanningService) UpdateAccount(ctx context.Context, a core.Account) error {
	if err := s.store.UpdateAccount(ctx, a); err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	s.publish(ctx, a.UserID, amqp.TableAccounts, a.ID, amqp.OpUpdate)
	return nil
}

func (s *PlanningService) DeleteAccount(ctx context.Context, userID string, id int64) error {
	if err := s.store.DeleteAccount(ctx, userID, id); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	s.publish(ctx, userID, amqp.TableAccounts, id, amqp.OpDelete)
	return nil
}

func (s *PlanningService) ListBills(ctx context.Context, userID string) ([]core.FixedBill, error) {
	bills, err := s.store.ListBills(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	return bills, nil
}

func (s *PlanningService) GetBill(ctx context.Context, userID string, id int64) (core.FixedBill, error) {
	return s.store.GetBill(ctx, userID, id)
}

func (s *PlanningService) CreateBill(ctx context.Context, b core.FixedBill) (core.FixedBill, error) {
	id, err := s.store.CreateBill(ctx, b)
	if err != nil {
		return core.FixedBill{}, fmt.Errorf("save bill: %w", err)
	}
	b.ID = id
	s.publish(ctx, b.UserID, amqp.TableBills, id, amqp.OpInsert)
	return b, nil
}

func (s *PlanningService) UpdateBill(ctx context.Context, b core.FixedBill) error {
	if err := s.store.UpdateBill(ctx, b); err != nil {
		return fmt.Errorf("update bill: %w", err)
	}
	s.publish(ctx, b.UserID, amqp.TableBills, b.ID, amqp.OpUpdate)
	return nil
}

func (s *PlanningService) DeleteBill(ctx context.Context, userID string, id int64) error {
	if err := s.store.DeleteBill(ctx, userID, id); err != nil {
		return fmt.Errorf("delete bill: %w", err)
	}
	s.publish(ctx, userID, amqp.TableBills, id, amqp.OpDelete)
	return nil
}

// MonthlyIncome returns the user's income; an unset income reads as 0.
func (s *PlanningService) MonthlyIncome(ctx context.Context, userID string) (core.IncomeRecord, error) {
	rec, _, err := s.store.GetIncome(ctx, userID)
	if err != nil {
		return core.IncomeRecord{}, fmt.Errorf("get income: %w", err)
	}
	rec.UserID = userID
	return rec, nil
}

// SetMonthlyIncome creates or replaces the user's single income row.
// Negative amounts are rejected with core.ErrInvalidAmount.
func (s *PlanningService) SetMonthlyIncome(ctx context.Context, userID string, amount float64) error {
	rec := core.IncomeRecord{UserID: userID, MonthlyIncome: amount}
	if err := rec.Validate(); err != nil {
		return err
	}
	if err := s.store.UpsertIncome(ctx, rec); err != nil {
		return fmt.Errorf("save income: %w", err)
	}
	s.publish(ctx, userID, amqp.TableIncome, 0, amqp.OpUpdate)
	return nil
}

// Calendar lays out due payments for months consecutive months from now.
func (s *PlanningService) Calendar(ctx context.Context, userID string, months int) ([]calendar.Month, error) {
	snap, err := s.Snapshot(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("calendar: %w", err)
	}
	return calendar.BuildWindow(s.now(), months, snap.Accounts, snap.Bills), nil
}

// RecordSnapshot refreshes the user's overview and persists its aggregate
// metrics.
func (s *PlanningService) RecordSnapshot(ctx context.Context, userID string) (core.ProjectionSnapshot, error) {
	ov, err := s.Refresh(ctx, userID)
	if err != nil {
		return core.ProjectionSnapshot{}, err
	}
	m := ov.Metrics
	snap := core.ProjectionSnapshot{
		UserID:               userID,
		TotalDebt:            m.TotalDebt,
		TotalMonthlyPayments: m.TotalMonthlyPayments,
		TotalAccounts:        m.TotalAccounts,
		PayoffYear:           m.PayoffYear,
		RemainingAfterBills:  m.RemainingAfterBills,
		DebtToIncomeRatio:    m.DebtToIncomeRatio,
		ComputedAt:           s.now().UTC(),
	}
	id, err := s.store.SaveSnapshot(ctx, snap)
	if err != nil {
		return core.ProjectionSnapshot{}, fmt.Errorf("save snapshot: %w", err)
	}
	snap.ID = id
	return snap, nil
}

func (s *PlanningService) ListSnapshots(ctx context.Context, userID string, limit int) ([]core.ProjectionSnapshot, error) {
	snaps, err := s.store.ListSnapshots(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return snaps, nil
}

// UserIDs lists every user with planning data.
func (s *PlanningService) UserIDs(ctx context.Context) ([]string, error) {
	return s.store.ListUserIDs(ctx)
}

// publish sends a change event after a successful write. Failures are logged
// and never returned: the row is already stored.
func (s *PlanningService) publish(ctx context.Context, userID, table string, id int64, op string) {
	if s.publisher == nil {
		return
	}
	msg := amqp.NewRecordChangedMessage(userID, table, id, op)
	if err := s.publisher.PublishRecordChanged(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish record change", log.NewFields().
			WithUser(userID).
			WithRecord(table, id).
			WithOperation(op).
			WithError(err).
			ToSlice()...)
	}
}
