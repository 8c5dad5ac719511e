/*
Package sqlite keeps transaction records (work logs, manual adjustments,
expense reimbursements) in a single SQLite database instead of YAML files.

PURPOSE:
  Organisations that feed the payroll from another system (time tracking,
  expense tooling) import records in bulk; a database handles that better
  than thousands of small YAML files. The payroll engine itself is agnostic:
  the store exposes the same payroll.TransactionSource stream the filesystem
  store does.

KEY TABLE:
  transaction_records: One row per dated record, discriminated by kind.
  Amounts and hours are stored as decimal strings to avoid float drift.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  db, err := sqlite.Open("./data/transactions.db")
  if err != nil {
      log.Fatal(err)
  }
  defer db.Close()

  worklogs := db.Source(payroll.KindWorkLog)

SEE ALSO:
  - store: YAML-backed stores for the rest of the data set
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/payroll"
)

const dateLayout = "2006-01-02"

// DB wraps the SQLite connection holding transaction records.
type DB struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens (or creates) the database at dbPath and migrates the schema.
// Use ":memory:" for an in-memory database.
func Open(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &DB{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS transaction_records (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		employee TEXT NOT NULL,
		dated TEXT NOT NULL,
		value TEXT,
		currency TEXT,
		hours TEXT,
		hourly_wage TEXT,
		description TEXT,
		created_at TEXT NOT NULL
	);

	-- Streaming is always per employee, kind and year (hot path)
	CREATE INDEX IF NOT EXISTS idx_records_employee_kind_dated
		ON transaction_records(employee, kind, dated);
	`

	_, err := d.db.Exec(schema)
	return err
}

// Append inserts one record of the given kind.
func (d *DB) Append(ctx context.Context, kind payroll.TransactionKind, record payroll.Transaction) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.appendTx(ctx, d.db, kind, record)
}

// AppendBatch inserts multiple records atomically.
func (d *DB) AppendBatch(ctx context.Context, kind payroll.TransactionKind, records []payroll.Transaction) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	sqlTx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	for _, record := range records {
		if err := d.appendTx(ctx, sqlTx, kind, record); err != nil {
			return err
		}
	}

	return sqlTx.Commit()
}

func (d *DB) appendTx(ctx context.Context, db interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}, kind payroll.TransactionKind, record payroll.Transaction) error {
	query := `
		INSERT INTO transaction_records
		(id, kind, employee, dated, value, currency, hours, hourly_wage, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.ExecContext(ctx, query,
		uuid.NewString(),
		string(kind),
		record.Employee,
		record.Dated.String(),
		record.Value.Amount.String(),
		record.Value.Currency,
		record.Hours.String(),
		record.HourlyWage.Amount.String(),
		record.Description,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to append transaction record: %w", err)
	}
	return nil
}

// Source returns a payroll.TransactionSource streaming records of one kind.
func (d *DB) Source(kind payroll.TransactionKind) payroll.TransactionSource {
	return &source{db: d, kind: kind}
}

type source struct {
	db   *DB
	kind payroll.TransactionKind
}

func (s *source) Stream(employeeKey string, year int, keep func(payroll.Transaction) bool) ([]payroll.Transaction, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	query := `
		SELECT employee, dated, value, currency, hours, hourly_wage, description
		FROM transaction_records
		WHERE employee = ? AND kind = ? AND dated >= ? AND dated <= ?
		ORDER BY dated ASC, created_at ASC
	`

	rows, err := s.db.db.Query(query, employeeKey, string(s.kind),
		fmt.Sprintf("%d-01-01", year), fmt.Sprintf("%d-12-31", year))
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction records: %w", err)
	}
	defer rows.Close()

	var records []payroll.Transaction
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		if keep == nil || keep(record) {
			records = append(records, record)
		}
	}
	return records, rows.Err()
}

func scanRecord(rows *sql.Rows) (payroll.Transaction, error) {
	var (
		record     payroll.Transaction
		dated      string
		value      sql.NullString
		currency   sql.NullString
		hours      sql.NullString
		hourlyWage sql.NullString
	)

	err := rows.Scan(&record.Employee, &dated, &value, &currency, &hours, &hourlyWage, &record.Description)
	if err != nil {
		return record, fmt.Errorf("failed to scan transaction record: %w", err)
	}

	t, err := time.Parse(dateLayout, dated)
	if err != nil {
		return record, &payroll.RecordParseError{Source: dated, Err: err}
	}
	record.Dated = payroll.DateOf(t)

	record.Value = payroll.NewMoney(parseDecimal(value), currency.String)
	record.Hours = payroll.NewDecimal(parseDecimal(hours))
	record.HourlyWage = payroll.NewMoney(parseDecimal(hourlyWage), currency.String)
	return record, nil
}

func parseDecimal(value sql.NullString) decimal.Decimal {
	if !value.Valid || value.String == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(value.String)
	if err != nil {
		return decimal.Zero
	}
	return d
}
