/*
Package store persists the payroll data set as plain YAML files under a
single data directory.

PURPOSE:
  Everything the engine reads and writes lives in one reviewable directory
  tree. Records are small, human-edited YAML documents; a payroll run reads
  employees and transactions, and writes one payment file per employee per
  month.

DIRECTORY LAYOUT:
  organisation.yml                 Employer identity and currency
  employees/<key>.yml              One employee per file; key is the filename
  worklogs/<key>/<year>/*.yml      Hourly work logs
  manualadjustments/<key>/<year>/*.yml
  reimbursements/<key>/<year>/*.yml
  payments/<key>/<year>/<year>-<month>-payment-<key>.yml

PARSE FAILURES:
  A record that fails to parse or validate is logged and skipped; it never
  aborts the batch. Corrupt data is a data problem for a human, and one bad
  file must not block everyone else's payslip.

SEE ALSO:
  - store/sqlite: Transaction records kept in SQLite instead of YAML
*/
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// INTERFACES
// =============================================================================

// Employees loads employee records.
type Employees interface {
	Load(keep func(*payroll.Employee) bool) ([]*payroll.Employee, error)
	LoadByKey(key string) (*payroll.Employee, error)
}

// Payments loads and saves computed payments, and aggregates an employee's
// payments into year-to-date line-item totals.
type Payments interface {
	Load(employeeKey string, year int, keep func(*payroll.Payment) bool) ([]*payroll.Payment, error)
	LoadForMonth(year, month int, keep func(*payroll.Payment) bool) ([]*payroll.Payment, error)
	AggregateForEmployee(employeeKey string, year int, currency string, keep func(*payroll.Payment) bool) (payroll.Items, error)
	Save(payment *payroll.Payment) error
	Delete(employeeKey string, year, month int) error
}

// =============================================================================
// ORGANISATION
// =============================================================================

// LoadOrganisation reads and validates the employer record at path.
func LoadOrganisation(path string) (*payroll.Organisation, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &payroll.ConfigurationError{Source: path, Err: err}
	}
	var organisation payroll.Organisation
	if err := yaml.Unmarshal(content, &organisation); err != nil {
		return nil, &payroll.ConfigurationError{Source: path, Err: err}
	}
	if err := organisation.Validate(); err != nil {
		return nil, &payroll.ConfigurationError{Source: path, Err: err}
	}
	return &organisation, nil
}

// =============================================================================
// FILESYSTEM EMPLOYEE STORE
// =============================================================================

// FilesystemEmployees reads employees/<key>.yml records. The employee key
// is the filename without its extension, never stored inside the document.
type FilesystemEmployees struct {
	dir    string
	logger *zap.Logger
}

func NewFilesystemEmployees(dir string, logger *zap.Logger) *FilesystemEmployees {
	return &FilesystemEmployees{dir: dir, logger: logger}
}

// Load returns every parseable employee the predicate accepts. Unparseable
// or invalid records are logged and skipped.
func (s *FilesystemEmployees) Load(keep func(*payroll.Employee) bool) ([]*payroll.Employee, error) {
	paths, err := filepath.Glob(filepath.Join(s.dir, "*.yml"))
	if err != nil {
		return nil, err
	}

	var employees []*payroll.Employee
	for _, path := range paths {
		employee, err := s.read(path)
		if err != nil {
			s.logger.Warn("could not parse employee, skipping",
				zap.String("path", path),
				zap.Error(err))
			continue
		}
		if keep == nil || keep(employee) {
			employees = append(employees, employee)
		}
	}
	return employees, nil
}

// LoadByKey returns the employee stored under the given key, or nil when no
// such record exists.
func (s *FilesystemEmployees) LoadByKey(key string) (*payroll.Employee, error) {
	path := filepath.Join(s.dir, key+".yml")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	return s.read(path)
}

func (s *FilesystemEmployees) read(path string) (*payroll.Employee, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &payroll.RecordParseError{Source: path, Err: err}
	}
	var employee payroll.Employee
	if err := yaml.Unmarshal(content, &employee); err != nil {
		return nil, &payroll.RecordParseError{Source: path, Err: err}
	}
	employee.Key = keyFromPath(path)
	if err := employee.Validate(); err != nil {
		return nil, &payroll.RecordParseError{Source: path, Err: err}
	}
	return &employee, nil
}

func keyFromPath(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}

// =============================================================================
// FILESYSTEM TRANSACTION STORE
// =============================================================================

// FilesystemTransactions streams one kind of transaction record from
// <dir>/<employee>/<year>/*.yml files.
type FilesystemTransactions struct {
	dir    string
	logger *zap.Logger
}

func NewFilesystemTransactions(dir string, logger *zap.Logger) *FilesystemTransactions {
	return &FilesystemTransactions{dir: dir, logger: logger}
}

// Stream implements payroll.TransactionSource over the YAML tree.
func (s *FilesystemTransactions) Stream(employeeKey string, year int, keep func(payroll.Transaction) bool) ([]payroll.Transaction, error) {
	paths, err := filepath.Glob(filepath.Join(s.dir, employeeKey, fmt.Sprintf("%d", year), "*.yml"))
	if err != nil {
		return nil, err
	}

	var transactions []payroll.Transaction
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn("could not read transaction, skipping",
				zap.String("path", path),
				zap.Error(&payroll.RecordParseError{Source: path, Err: err}))
			continue
		}
		var transaction payroll.Transaction
		if err := yaml.Unmarshal(content, &transaction); err != nil {
			s.logger.Warn("could not parse transaction, skipping",
				zap.String("path", path),
				zap.Error(&payroll.RecordParseError{Source: path, Err: err}))
			continue
		}
		if keep == nil || keep(transaction) {
			transactions = append(transactions, transaction)
		}
	}
	return transactions, nil
}

// =============================================================================
// FILESYSTEM PAYMENT STORE
// =============================================================================

// FilesystemPayments stores one payment file per employee per month under
// payments/<key>/<year>/.
type FilesystemPayments struct {
	dir    string
	logger *zap.Logger
}

func NewFilesystemPayments(dir string, logger *zap.Logger) *FilesystemPayments {
	return &FilesystemPayments{dir: dir, logger: logger}
}

// PaymentFileName is the canonical payment filename for a year, month and
// employee key.
func PaymentFileName(year, month int, employeeKey string) string {
	return fmt.Sprintf("%d-%02d-payment-%s.yml", year, month, employeeKey)
}

// Load returns the employee's parseable payments for a year.
func (s *FilesystemPayments) Load(employeeKey string, year int, keep func(*payroll.Payment) bool) ([]*payroll.Payment, error) {
	pattern := filepath.Join(s.dir, employeeKey, fmt.Sprintf("%d", year), "*.yml")
	return s.glob(pattern, keep)
}

// LoadForMonth returns every employee's payment for one year-month.
func (s *FilesystemPayments) LoadForMonth(year, month int, keep func(*payroll.Payment) bool) ([]*payroll.Payment, error) {
	pattern := filepath.Join(s.dir, "*", fmt.Sprintf("%d", year), fmt.Sprintf("%d-%02d-*.yml", year, month))
	return s.glob(pattern, keep)
}

// AggregateForEmployee sums the line items of the employee's payments the
// predicate accepts, starting from zero in the given currency. This is how
// year-to-date history reaches the calculator.
func (s *FilesystemPayments) AggregateForEmployee(employeeKey string, year int, currency string, keep func(*payroll.Payment) bool) (payroll.Items, error) {
	payments, err := s.Load(employeeKey, year, keep)
	if err != nil {
		return payroll.Items{}, err
	}
	accumulator := payroll.ZeroItems(currency)
	for _, payment := range payments {
		accumulator = accumulator.Add(payment.Items)
	}
	return accumulator, nil
}

// Save writes the payment under its canonical path, creating directories as
// needed. An existing file for the same month is overwritten.
func (s *FilesystemPayments) Save(payment *payroll.Payment) error {
	year := payment.Period.Start.Year()
	month := int(payment.Period.Start.Month())
	dir := filepath.Join(s.dir, payment.Employee.Key, fmt.Sprintf("%d", year))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	content, err := yaml.Marshal(payment)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, PaymentFileName(year, month, payment.Employee.Key)), content, 0o644)
}

// Delete removes the employee's payment file for a month, if present.
func (s *FilesystemPayments) Delete(employeeKey string, year, month int) error {
	path := filepath.Join(s.dir, employeeKey, fmt.Sprintf("%d", year), PaymentFileName(year, month, employeeKey))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *FilesystemPayments) glob(pattern string, keep func(*payroll.Payment) bool) ([]*payroll.Payment, error) {
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}

	var payments []*payroll.Payment
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn("could not read payment, skipping",
				zap.String("path", path),
				zap.Error(&payroll.RecordParseError{Source: path, Err: err}))
			continue
		}
		var payment payroll.Payment
		if err := yaml.Unmarshal(content, &payment); err != nil {
			s.logger.Warn("could not parse payment, skipping",
				zap.String("path", path),
				zap.Error(&payroll.RecordParseError{Source: path, Err: err}))
			continue
		}
		if payment.Employee != nil {
			payment.Employee.Key = keyFromPath(filepath.Dir(filepath.Dir(path)))
		}
		if err := payment.Validate(); err != nil {
			s.logger.Warn("could not parse payment, skipping",
				zap.String("path", path),
				zap.Error(&payroll.RecordParseError{Source: path, Err: err}))
			continue
		}
		if keep == nil || keep(&payment) {
			payments = append(payments, &payment)
		}
	}
	return payments, nil
}
