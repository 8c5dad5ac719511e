/*
Package calculation derives the line items of one payment.

PURPOSE:
  Each line item is computed by one Calculation. Calculations depend on each
  other (net pay needs total deductions, which needs income tax, which needs
  the projected basic pay...), so the Calculator resolves names on demand
  through resolver callbacks, caching every result: no item is computed twice
  per payment, and a value and its annual projection are cached separately.

KEY CONCEPTS IN THIS FILE (calculator.go):
  - Resolver: Callback a Calculation invokes to read another item, thereby
    forming a dependency edge.
  - Calculator: Owns the per-payment value/projection caches and the
    in-progress markers that turn a dependency cycle into an explicit error
    instead of unbounded recursion.

DISCIPLINE:
  ValueOf(name): return the cached value, or run the Calculation's Compute,
  cache, return. ProjectionOf(name): same over Project; a Calculation that
  does not project makes the request a ProjectionUnavailable error, never a
  zero default.

LIFECYCLE:
  One Calculator is scoped to exactly one (employee, period) payment and
  discarded after use. Rate tables are loaded before construction and shared
  read-only; no I/O happens inside a resolver call beyond streaming the
  transaction records a Calculation was built with.

SEE ALSO:
  - calculations.go: The closed set of Calculation variants
  - payroll/items.go: The closed line-item name set
*/
package calculation

import (
	"fmt"

	"github.com/warp/payroll-engine/payroll"
)

// Resolver reads the value (or annual projection) of another line item.
// Invoking one from inside Compute or Project creates a dependency edge.
type Resolver func(name payroll.ItemName) (payroll.Money, error)

// Calculation computes the value of one line item for the current payment,
// given resolvers into the calculator, the payment facts, and the aggregated
// Items of all prior same-year payments.
type Calculation interface {
	Compute(valueOf, projectionOf Resolver, payment *payroll.Payment, historical payroll.Items) (payroll.Money, error)
}

// Projector is implemented by calculations that can estimate their full-year
// value. Absence means the item is not projectable: requesting its
// projection is a caller error.
type Projector interface {
	Project(valueOf, projectionOf Resolver, payment *payroll.Payment, historical payroll.Items) (payroll.Money, error)
}

// Describer is implemented by calculations that narrate themselves for the
// payslip ("1.00 months", "4 weeks").
type Describer interface {
	Describe(value payroll.Money, payment *payroll.Payment, historical payroll.Items) string
}

// Registry maps every line-item name to its Calculation. Built once per run
// and shared read-only across payments.
type Registry map[payroll.ItemName]Calculation

// =============================================================================
// CALCULATOR - Memoized dependency-graph evaluator for one payment
// =============================================================================

// resolution keys the caches and in-progress markers. A value and its
// projection are distinct resolutions: income tax legitimately computes its
// period value from its own annual projection.
type resolution struct {
	name      payroll.ItemName
	projected bool
}

func (r resolution) String() string {
	if r.projected {
		return string(r.name) + " (projected)"
	}
	return string(r.name)
}

type Calculator struct {
	payment    *payroll.Payment
	historical payroll.Items
	registry   Registry

	values      map[payroll.ItemName]payroll.Money
	projections map[payroll.ItemName]payroll.Money

	// Cycle detection: in-progress resolutions and the path that led here.
	inProgress map[resolution]bool
	stack      []resolution
}

// NewCalculator scopes a calculator to one payment and its year-to-date
// history. The registry must cover every name that will be resolved.
func NewCalculator(payment *payroll.Payment, historical payroll.Items, registry Registry) *Calculator {
	return &Calculator{
		payment:     payment,
		historical:  historical,
		registry:    registry,
		values:      make(map[payroll.ItemName]payroll.Money),
		projections: make(map[payroll.ItemName]payroll.Money),
		inProgress:  make(map[resolution]bool),
	}
}

// ValueOf returns the line item's value for this payment, computing and
// caching it on first request.
func (c *Calculator) ValueOf(name payroll.ItemName) (payroll.Money, error) {
	if value, ok := c.values[name]; ok {
		return value, nil
	}
	calc, ok := c.registry[name]
	if !ok {
		return payroll.Money{}, fmt.Errorf("%w: %s", payroll.ErrUnknownLineItem, name)
	}

	release, err := c.enter(resolution{name: name})
	if err != nil {
		return payroll.Money{}, err
	}
	defer release()

	value, err := calc.Compute(c.ValueOf, c.ProjectionOf, c.payment, c.historical)
	if err != nil {
		return payroll.Money{}, fmt.Errorf("compute %s: %w", name, err)
	}
	c.values[name] = value
	return value, nil
}

// ProjectionOf returns the line item's projected full-year value, computing
// and caching it on first request. Items that do not project fail with
// ProjectionUnavailable.
func (c *Calculator) ProjectionOf(name payroll.ItemName) (payroll.Money, error) {
	if projection, ok := c.projections[name]; ok {
		return projection, nil
	}
	calc, ok := c.registry[name]
	if !ok {
		return payroll.Money{}, fmt.Errorf("%w: %s", payroll.ErrUnknownLineItem, name)
	}
	projector, ok := calc.(Projector)
	if !ok {
		return payroll.Money{}, &payroll.ProjectionUnavailableError{Item: name}
	}

	release, err := c.enter(resolution{name: name, projected: true})
	if err != nil {
		return payroll.Money{}, err
	}
	defer release()

	projection, err := projector.Project(c.ValueOf, c.ProjectionOf, c.payment, c.historical)
	if err != nil {
		return payroll.Money{}, fmt.Errorf("project %s: %w", name, err)
	}
	c.projections[name] = projection
	return projection, nil
}

// CanProject reports whether the named item declares an annual projection.
func (c *Calculator) CanProject(name payroll.ItemName) bool {
	calc, ok := c.registry[name]
	if !ok {
		return false
	}
	_, ok = calc.(Projector)
	return ok
}

// Describe returns the narration for an item's computed value, if its
// calculation provides one. The value is resolved first if needed.
func (c *Calculator) Describe(name payroll.ItemName) (string, error) {
	calc, ok := c.registry[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", payroll.ErrUnknownLineItem, name)
	}
	describer, ok := calc.(Describer)
	if !ok {
		return "", nil
	}
	value, err := c.ValueOf(name)
	if err != nil {
		return "", err
	}
	return describer.Describe(value, c.payment, c.historical), nil
}

// enter marks a resolution in progress. Re-entering an in-progress
// resolution means a calculation transitively depends on itself; the cycle
// path is reported instead of recursing until the stack is exhausted.
func (c *Calculator) enter(r resolution) (func(), error) {
	if c.inProgress[r] {
		path := make([]string, 0, len(c.stack)+1)
		for _, step := range c.stack {
			path = append(path, step.String())
		}
		path = append(path, r.String())
		return nil, &payroll.DependencyCycleError{Path: path}
	}
	c.inProgress[r] = true
	c.stack = append(c.stack, r)
	return func() {
		delete(c.inProgress, r)
		c.stack = c.stack[:len(c.stack)-1]
	}, nil
}

// Materialize resolves every registered line item and fills the payment's
// Items, per-item ledger records and narrations. The first failing item
// aborts the payment.
func (c *Calculator) Materialize() error {
	items := payroll.ZeroItems(c.payment.Currency)
	ledger := make(map[payroll.ItemName]payroll.LineItem, len(c.registry))
	notes := make(map[payroll.ItemName]string)

	for _, name := range payroll.ItemNames() {
		if _, ok := c.registry[name]; !ok {
			continue
		}
		value, err := c.ValueOf(name)
		if err != nil {
			return err
		}
		items = items.With(name, value)

		historical, err := c.historical.Get(name)
		if err != nil {
			return err
		}
		record := payroll.LineItem{
			CurrentPeriod: payroll.NewDecimal(value.Amount),
			YearToDate:    payroll.NewDecimal(historical.Add(value).Amount),
		}
		if c.CanProject(name) {
			projection, err := c.ProjectionOf(name)
			if err != nil {
				return err
			}
			record.ProjectedYearly = payroll.NewDecimal(projection.Amount)
		}
		ledger[name] = record

		if note, err := c.Describe(name); err != nil {
			return err
		} else if note != "" {
			notes[name] = note
		}
	}

	c.payment.Items = items
	c.payment.Ledger = ledger
	if len(notes) > 0 {
		c.payment.Notes = notes
	}
	return nil
}
