/*
Package batch drives a payroll run end to end.

PURPOSE:
  A run resolves one year-month: load the organisation and rate tables,
  stream the employees employed during the period, aggregate each one's
  year-to-date history, materialize a payment through the calculator, and
  save it. Payslips and statutory forms are generated from saved payments
  in separate passes.

FAILURE DISCIPLINE:
  Missing or invalid rate tables abort the run before any employee is
  processed. A failure on one employee is logged and the run continues;
  rerunning the same year-month overwrites that month's payments, so a run
  is repeatable after the data is fixed.
*/
package batch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warp/payroll-engine/calculation"
	"github.com/warp/payroll-engine/forms"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/payslip"
	"github.com/warp/payroll-engine/store"
	"github.com/warp/payroll-engine/store/sqlite"
	"github.com/warp/payroll-engine/tables"
)

// Payroll wires the stores, tables and calculator for one data directory.
type Payroll struct {
	root         string
	organisation *payroll.Organisation
	employees    store.Employees
	payments     store.Payments
	partTimeRate decimal.Decimal
	logger       *zap.Logger

	workLogs       payroll.TransactionSource
	adjustments    payroll.TransactionSource
	reimbursements payroll.TransactionSource

	transactionsDB *sqlite.DB
}

// Options tunes how a Payroll is assembled.
type Options struct {
	// PartTimeRate is the flat part-time withholding rate. Required.
	PartTimeRate decimal.Decimal

	// TransactionsDB, when non-empty, reads transaction records from the
	// SQLite database at this path instead of the YAML tree.
	TransactionsDB string
}

// New assembles a Payroll over the data directory at root.
func New(root string, options Options, logger *zap.Logger) (*Payroll, error) {
	organisation, err := store.LoadOrganisation(filepath.Join(root, "organisation.yml"))
	if err != nil {
		return nil, err
	}

	p := &Payroll{
		root:         root,
		organisation: organisation,
		employees:    store.NewFilesystemEmployees(filepath.Join(root, "employees"), logger),
		payments:     store.NewFilesystemPayments(filepath.Join(root, "payments"), logger),
		partTimeRate: options.PartTimeRate,
		logger:       logger,
	}

	if options.TransactionsDB != "" {
		db, err := sqlite.Open(options.TransactionsDB)
		if err != nil {
			return nil, err
		}
		p.transactionsDB = db
		p.workLogs = db.Source(payroll.KindWorkLog)
		p.adjustments = db.Source(payroll.KindManualAdjustment)
		p.reimbursements = db.Source(payroll.KindReimbursement)
	} else {
		p.workLogs = store.NewFilesystemTransactions(filepath.Join(root, "worklogs"), logger)
		p.adjustments = store.NewFilesystemTransactions(filepath.Join(root, "manualadjustments"), logger)
		p.reimbursements = store.NewFilesystemTransactions(filepath.Join(root, "reimbursements"), logger)
	}

	return p, nil
}

// Close releases the transaction database, if one is open.
func (p *Payroll) Close() error {
	if p.transactionsDB != nil {
		return p.transactionsDB.Close()
	}
	return nil
}

// Organisation returns the employer the payroll runs for.
func (p *Payroll) Organisation() *payroll.Organisation {
	return p.organisation
}

// Employees returns the employee store.
func (p *Payroll) Employees() store.Employees {
	return p.employees
}

// Payments returns the payment store.
func (p *Payroll) Payments() store.Payments {
	return p.payments
}

// registry loads the year's rate tables and builds the calculation set. A
// missing or invalid table is a configuration error that aborts the run.
func (p *Payroll) registry(year int) (calculation.Registry, error) {
	dir := filepath.Join(p.root, "tables")

	incomeTax, err := tables.LoadIncomeTaxTable(filepath.Join(dir, fmt.Sprintf("%d-income-tax-single.csv", year)))
	if err != nil {
		return nil, err
	}
	socialSecurity, err := tables.LoadCategoryRateTable(filepath.Join(dir, fmt.Sprintf("%d-ssc.csv", year)))
	if err != nil {
		return nil, err
	}
	maternity, err := tables.LoadCategoryRateTable(filepath.Join(dir, fmt.Sprintf("%d-maternity.csv", year)))
	if err != nil {
		return nil, err
	}
	bonus, err := tables.LoadMonetaryBonusTable(filepath.Join(dir, fmt.Sprintf("%d-statutory-bonus.csv", year)))
	if err != nil {
		return nil, err
	}

	return calculation.Standard(calculation.Dependencies{
		IncomeTax:       incomeTax,
		SocialSecurity:  socialSecurity,
		MaternityFund:   maternity,
		StatutoryBonus:  bonus,
		PartTimeTaxRate: p.partTimeRate,

		WorkLogs:       p.workLogs,
		Adjustments:    p.adjustments,
		Reimbursements: p.reimbursements,
	}), nil
}

// Execute computes the payments for one year-month without saving them.
// Employees outside their employment span are skipped; a failure on one
// employee is logged and the rest of the batch continues.
func (p *Payroll) Execute(ctx context.Context, year int, month time.Month) ([]*payroll.Payment, error) {
	registry, err := p.registry(year)
	if err != nil {
		return nil, err
	}

	period := payroll.MonthPeriod(year, month)
	currency := p.organisation.Currency

	employees, err := p.employees.Load(func(e *payroll.Employee) bool {
		return e.FractionWorked(period).IsPositive()
	})
	if err != nil {
		return nil, err
	}

	var computed []*payroll.Payment
	for _, employee := range employees {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		payment, err := p.executeOne(employee, period, currency, registry)
		if err != nil {
			p.logger.Error("payroll failed for employee, continuing",
				zap.String("employee", employee.Key),
				zap.Int("year", year),
				zap.Int("month", int(month)),
				zap.Error(err))
			continue
		}
		computed = append(computed, payment)
	}
	return computed, nil
}

func (p *Payroll) executeOne(employee *payroll.Employee, period payroll.Period, currency string, registry calculation.Registry) (*payroll.Payment, error) {
	historical, err := p.payments.AggregateForEmployee(employee.Key, period.Start.Year(), currency,
		func(prior *payroll.Payment) bool {
			return prior.Period.End.Before(period.Start)
		})
	if err != nil {
		return nil, err
	}

	payment, err := payroll.NewPayment(employee, period, currency)
	if err != nil {
		return nil, err
	}

	calculator := calculation.NewCalculator(payment, historical, registry)
	if err := calculator.Materialize(); err != nil {
		return nil, err
	}
	return payment, nil
}

// Run computes and saves the payments for one year-month, returning the
// saved payments.
func (p *Payroll) Run(ctx context.Context, year int, month time.Month) ([]*payroll.Payment, error) {
	computed, err := p.Execute(ctx, year, month)
	if err != nil {
		return nil, err
	}
	for _, payment := range computed {
		if err := p.payments.Save(payment); err != nil {
			return nil, err
		}
		p.logger.Info("payment saved",
			zap.String("employee", payment.Employee.Key),
			zap.String("net_pay", payment.Items.NetPay.String()))
	}
	return computed, nil
}

// Payslips renders a PDF payslip for every payment saved for the
// year-month, returning the written paths.
func (p *Payroll) Payslips(year int, month time.Month) ([]string, error) {
	renderer := payslip.NewRenderer(p.organisation, filepath.Join(p.root, "payslips"))

	payments, err := p.payments.LoadForMonth(year, int(month), nil)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, payment := range payments {
		path, err := renderer.Render(payment)
		if err != nil {
			p.logger.Error("payslip failed for employee, continuing",
				zap.String("employee", payment.Employee.Key),
				zap.Error(err))
			continue
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// Revert removes the payments saved for one year-month. Payslips and forms
// generated from them become stale and are regenerated on the next run.
func (p *Payroll) Revert(year int, month time.Month) error {
	employees, err := p.employees.Load(nil)
	if err != nil {
		return err
	}
	for _, employee := range employees {
		if err := p.payments.Delete(employee.Key, year, int(month)); err != nil {
			return err
		}
	}
	return nil
}

// FS3Generator builds the per-employee annual form generator.
func (p *Payroll) FS3Generator() *forms.GeneratorFS3 {
	return forms.NewGeneratorFS3(p.organisation, filepath.Join(p.root, "tax-fs3"), p.employees, p.payments)
}

// FS5Generator builds the monthly remittance form generator.
func (p *Payroll) FS5Generator() *forms.GeneratorFS5 {
	return forms.NewGeneratorFS5(p.organisation, filepath.Join(p.root, "tax-fs5"), p.payments)
}

// FS7Generator builds the annual reconciliation form generator.
func (p *Payroll) FS7Generator() *forms.GeneratorFS7 {
	return forms.NewGeneratorFS7(p.organisation, filepath.Join(p.root, "tax-fs7"), filepath.Join(p.root, "tax-fs3"))
}
