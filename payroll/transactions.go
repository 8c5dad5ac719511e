/*
transactions.go - Dated transaction records feeding the calculations

PURPOSE:
  Three kinds of dated records are credited alongside an employee's salary:

  WorkLog:          Hourly work paid and taxed as a part-time emolument.
  ManualAdjustment: A one-time taxed payment (bonus, correction).
  Reimbursement:    An expense refund, credited but never taxed.

  Calculations stream the records for an employee and year, keeping only
  those dated within the current payment period. A store may be backed by
  YAML files or SQLite; the calculator never does I/O beyond the stream.
*/
package payroll

// TransactionKind discriminates the three record kinds.
type TransactionKind string

const (
	KindWorkLog          TransactionKind = "work_log"
	KindManualAdjustment TransactionKind = "manual_adjustment"
	KindReimbursement    TransactionKind = "reimbursement"
)

// Transaction is one dated record for an employee. Value is set for manual
// adjustments and reimbursements; Hours and HourlyWage for work logs.
type Transaction struct {
	Employee    string  `yaml:"employee"`
	Dated       Date    `yaml:"dated"`
	Value       Money   `yaml:"value,omitempty"`
	Hours       Decimal `yaml:"hours,omitempty"`
	HourlyWage  Money   `yaml:"hourly_wage,omitempty"`
	Description string  `yaml:"description,omitempty"`
}

// TransactionSource streams an employee's transactions for a year, keeping
// only those the predicate accepts. Order is unspecified. Unparseable
// records are logged and skipped by the implementation, not surfaced here.
type TransactionSource interface {
	Stream(employeeKey string, year int, keep func(Transaction) bool) ([]Transaction, error)
}
