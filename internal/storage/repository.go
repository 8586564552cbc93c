package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"darkfinance/internal/core"
	"darkfinance/internal/records"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

var _ records.Backend = (*SQLRepository)(nil)

// SQLRepository stores records in SQLite or Postgres. NULL numeric columns
// read back as 0 and NULL text as "".
type SQLRepository struct {
	db      *sql.DB
	dialect Dialect
}

const sqlitePragmas = "?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)"

func NewSQLiteRepository(dbPath string) (*SQLRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	return open(DialectSQLite, dbPath+sqlitePragmas)
}

func NewPostgresRepository(dsn string) (*SQLRepository, error) {
	return open(DialectPostgres, dsn)
}

func open(dialect Dialect, dsn string) (*SQLRepository, error) {
	db, err := sql.Open(dialect.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", dialect, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dialect, dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLRepository{db: db, dialect: dialect}, nil
}

func (r *SQLRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLRepository) query(ctx context.Context, q string, args ...any) (*sql.Rows, error) {
	return r.db.QueryContext(ctx, r.dialect.rebind(q), args...)
}

func (r *SQLRepository) queryRow(ctx context.Context, q string, args ...any) *sql.Row {
	return r.db.QueryRowContext(ctx, r.dialect.rebind(q), args...)
}

// execOne runs a statement that must touch exactly one row.
func (r *SQLRepository) execOne(ctx context.Context, q string, args ...any) error {
	res, err := r.db.ExecContext(ctx, r.dialect.rebind(q), args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

const accountColumns = `id, user_id, acct_name, current_balance, minimum_payment, my_monthly_pay,
	apr_interest, acct_type, due_date, loan_limit`

func (r *SQLRepository) ListAccounts(ctx context.Context, userID string) ([]core.Account, error) {
	rows, err := r.query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE user_id = ? ORDER BY id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	out := make([]core.Account, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return out, nil
}

func (r *SQLRepository) GetAccount(ctx context.Context, userID string, id int64) (core.Account, error) {
	row := r.queryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ? AND user_id = ?`, id, userID)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, core.ErrNotFound
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("get account %d: %w", id, err)
	}
	return a, nil
}

func (r *SQLRepository) CreateAccount(ctx context.Context, a core.Account) (int64, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	var id int64
	err := r.queryRow(ctx, `INSERT INTO accounts (user_id, acct_name, current_balance, minimum_payment,
		my_monthly_pay, apr_interest, acct_type, due_date, loan_limit)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		a.UserID, a.Name, a.CurrentBalance, a.MinimumPayment, a.MyMonthlyPay,
		a.APRInterest, a.AccountType, nullDate(a.DueDate), a.LoanLimit,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create account: %w", err)
	}

	slog.InfoContext(ctx, "Account saved",
		"id", id,
		"user_id", a.UserID,
		"current_balance", a.CurrentBalance,
		"my_monthly_pay", a.MyMonthlyPay)

	return id, nil
}

func (r *SQLRepository) UpdateAccount(ctx context.Context, a core.Account) error {
	if err := a.Validate(); err != nil {
		return err
	}
	err := r.execOne(ctx, `UPDATE accounts SET acct_name = ?, current_balance = ?, minimum_payment = ?,
		my_monthly_pay = ?, apr_interest = ?, acct_type = ?, due_date = ?, loan_limit = ?
		WHERE id = ? AND user_id = ?`,
		a.Name, a.CurrentBalance, a.MinimumPayment, a.MyMonthlyPay, a.APRInterest,
		a.AccountType, nullDate(a.DueDate), a.LoanLimit, a.ID, a.UserID)
	if err != nil {
		return wrapMissing(err, "update account %d", a.ID)
	}
	return nil
}

func (r *SQLRepository) DeleteAccount(ctx context.Context, userID string, id int64) error {
	if err := r.execOne(ctx, `DELETE FROM accounts WHERE id = ? AND user_id = ?`, id, userID); err != nil {
		return wrapMissing(err, "delete account %d", id)
	}
	slog.InfoContext(ctx, "Account deleted", "id", id, "user_id", userID)
	return nil
}

const billColumns = `id, user_id, bill_name, bill_cost, due_date`

func (r *SQLRepository) ListBills(ctx context.Context, userID string) ([]core.FixedBill, error) {
	rows, err := r.query(ctx, `SELECT `+billColumns+` FROM fixed_bills WHERE user_id = ? ORDER BY id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	defer rows.Close()

	out := make([]core.FixedBill, 0)
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bill: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	return out, nil
}

func (r *SQLRepository) GetBill(ctx context.Context, userID string, id int64) (core.FixedBill, error) {
	b, err := scanBill(r.queryRow(ctx, `SELECT `+billColumns+` FROM fixed_bills WHERE id = ? AND user_id = ?`, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return core.FixedBill{}, core.ErrNotFound
	}
	if err != nil {
		return core.FixedBill{}, fmt.Errorf("get bill %d: %w", id, err)
	}
	return b, nil
}

func (r *SQLRepository) CreateBill(ctx context.Context, b core.FixedBill) (int64, error) {
	if err := b.Validate(); err != nil {
		return 0, err
	}
	var id int64
	err := r.queryRow(ctx, `INSERT INTO fixed_bills (user_id, bill_name, bill_cost, due_date)
		VALUES (?, ?, ?, ?) RETURNING id`,
		b.UserID, b.Name, b.Cost, nullDate(b.DueDate)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create bill: %w", err)
	}

	slog.InfoContext(ctx, "Bill saved", "id", id, "user_id", b.UserID, "bill_cost", b.Cost)
	return id, nil
}

func (r *SQLRepository) UpdateBill(ctx context.Context, b core.FixedBill) error {
	if err := b.Validate(); err != nil {
		return err
	}
	err := r.execOne(ctx, `UPDATE fixed_bills SET bill_name = ?, bill_cost = ?, due_date = ?
		WHERE id = ? AND user_id = ?`,
		b.Name, b.Cost, nullDate(b.DueDate), b.ID, b.UserID)
	if err != nil {
		return wrapMissing(err, "update bill %d", b.ID)
	}
	return nil
}

func (r *SQLRepository) DeleteBill(ctx context.Context, userID string, id int64) error {
	if err := r.execOne(ctx, `DELETE FROM fixed_bills WHERE id = ? AND user_id = ?`, id, userID); err != nil {
		return wrapMissing(err, "delete bill %d", id)
	}
	return nil
}

func (r *SQLRepository) GetIncome(ctx context.Context, userID string) (core.IncomeRecord, bool, error) {
	var income sql.NullFloat64
	err := r.queryRow(ctx, `SELECT monthly_income FROM fixed_income WHERE user_id = ?`, userID).Scan(&income)
	if errors.Is(err, sql.ErrNoRows) {
		return core.IncomeRecord{UserID: userID}, false, nil
	}
	if err != nil {
		return core.IncomeRecord{}, false, fmt.Errorf("get income: %w", err)
	}
	return core.IncomeRecord{UserID: userID, MonthlyIncome: income.Float64}, true, nil
}

// UpsertIncome inserts the user's income row or overwrites the existing one.
func (r *SQLRepository) UpsertIncome(ctx context.Context, rec core.IncomeRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, r.dialect.rebind(`INSERT INTO fixed_income (user_id, monthly_income) VALUES (?, ?)
		ON CONFLICT (user_id) DO UPDATE SET monthly_income = excluded.monthly_income`),
		rec.UserID, rec.MonthlyIncome)
	if err != nil {
		return fmt.Errorf("upsert income: %w", err)
	}
	slog.InfoContext(ctx, "Income saved", "user_id", rec.UserID, "monthly_income", rec.MonthlyIncome)
	return nil
}

func (r *SQLRepository) SaveSnapshot(ctx context.Context, s core.ProjectionSnapshot) (int64, error) {
	if s.UserID == "" {
		return 0, core.ErrInvalidUser
	}
	if s.ComputedAt.IsZero() {
		s.ComputedAt = time.Now()
	}
	var id int64
	err := r.queryRow(ctx, `INSERT INTO projection_snapshots (user_id, total_debt, total_monthly_payments,
		total_accounts, payoff_year, remaining_after_bills, debt_to_income_ratio, computed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		s.UserID, s.TotalDebt, s.TotalMonthlyPayments, s.TotalAccounts, s.PayoffYear,
		s.RemainingAfterBills, s.DebtToIncomeRatio, s.ComputedAt.Unix(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("save snapshot: %w", err)
	}
	return id, nil
}

func (r *SQLRepository) ListSnapshots(ctx context.Context, userID string, limit int) ([]core.ProjectionSnapshot, error) {
	q := `SELECT id, user_id, total_debt, total_monthly_payments, total_accounts, payoff_year,
		remaining_after_bills, debt_to_income_ratio, computed_at
		FROM projection_snapshots WHERE user_id = ? ORDER BY computed_at DESC, id DESC`
	args := []any{userID}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	out := make([]core.ProjectionSnapshot, 0)
	for rows.Next() {
		var (
			s          core.ProjectionSnapshot
			computedAt int64
		)
		if err := rows.Scan(&s.ID, &s.UserID, &s.TotalDebt, &s.TotalMonthlyPayments, &s.TotalAccounts,
			&s.PayoffYear, &s.RemainingAfterBills, &s.DebtToIncomeRatio, &computedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		s.ComputedAt = time.Unix(computedAt, 0).UTC()
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return out, nil
}

func (r *SQLRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := r.query(ctx, `SELECT user_id FROM accounts
		UNION SELECT user_id FROM fixed_bills
		UNION SELECT user_id FROM fixed_income
		ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list user ids: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(s scanner) (core.Account, error) {
	var (
		a                                     core.Account
		name, acctType, due                   sql.NullString
		balance, minimum, pay, apr, loanLimit sql.NullFloat64
	)
	if err := s.Scan(&a.ID, &a.UserID, &name, &balance, &minimum, &pay, &apr, &acctType, &due, &loanLimit); err != nil {
		return core.Account{}, err
	}
	a.Name = name.String
	a.AccountType = acctType.String
	a.CurrentBalance = balance.Float64
	a.MinimumPayment = minimum.Float64
	a.MyMonthlyPay = pay.Float64
	a.APRInterest = apr.Float64
	a.LoanLimit = loanLimit.Float64
	a.DueDate = parseStoredDate(due)
	return a, nil
}

func scanBill(s scanner) (core.FixedBill, error) {
	var (
		b    core.FixedBill
		due  sql.NullString
		cost sql.NullFloat64
	)
	if err := s.Scan(&b.ID, &b.UserID, &b.Name, &cost, &due); err != nil {
		return core.FixedBill{}, err
	}
	b.Cost = cost.Float64
	b.DueDate = parseStoredDate(due)
	return b, nil
}

func nullDate(d core.Date) sql.NullString {
	if d.IsEmpty() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

// parseStoredDate treats an unreadable stored date as unset rather than
// failing the whole list.
func parseStoredDate(s sql.NullString) core.Date {
	if !s.Valid {
		return core.Date{}
	}
	d, err := core.ParseDate(s.String)
	if err != nil {
		slog.Warn("Ignoring malformed stored due date", "value", s.String)
		return core.Date{}
	}
	return d
}

func wrapMissing(err error, format string, args ...any) error {
	if errors.Is(err, core.ErrNotFound) {
		return core.ErrNotFound
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
