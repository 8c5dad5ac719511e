/*
errors.go - Centralized error types for the payroll engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Other packages wrap these errors with additional context.

ERROR CATEGORIES:
  1. Configuration errors - Malformed rate-table rows, unmatched categories,
     invalid periods. Fatal for the payment that depends on them.
  2. Resolution errors - Projection requested from a non-projectable item,
     dependency cycles between line items. Abort the single payment.
  3. Record errors - A stored employee/payment/transaction record failed
     validation. Policy is log-and-skip that record, continue the batch.

USAGE:
  Callers branch with errors.Is/errors.As:

    if errors.Is(err, payroll.ErrProjectionUnavailable) { ... }

    var cycle *payroll.DependencyCycleError
    if errors.As(err, &cycle) { log cycle.Path }
*/
package payroll

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidPeriod is returned when a period is malformed (start after end).
	ErrInvalidPeriod = errors.New("invalid period: start after end")

	// ErrProjectionUnavailable is returned when an annual projection is
	// requested for a line item that cannot be projected. Never defaulted
	// to zero.
	ErrProjectionUnavailable = errors.New("projection unavailable")

	// ErrDependencyCycle is returned when a line item transitively depends
	// on itself.
	ErrDependencyCycle = errors.New("line item dependency cycle")

	// ErrUnknownLineItem is returned when a name outside the closed line-item
	// set is resolved.
	ErrUnknownLineItem = errors.New("unknown line item")

	// ErrUnmatchedCategory is returned when a rate table has no row for a
	// social security category. A gap in the table is a configuration error,
	// not an empty result.
	ErrUnmatchedCategory = errors.New("no rate table entry for category")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ConfigurationError reports a malformed rate-table row or missing table
// configuration, with the offending source and row when known.
type ConfigurationError struct {
	Source string // file path or identifier of the table
	Row    int    // 1-based data row, 0 when not row-scoped
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("configuration error in %s row %d: %v", e.Source, e.Row, e.Err)
	}
	return fmt.Sprintf("configuration error in %s: %v", e.Source, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// ProjectionUnavailableError identifies the line item whose projection was
// requested.
type ProjectionUnavailableError struct {
	Item ItemName
}

func (e *ProjectionUnavailableError) Error() string {
	return fmt.Sprintf("cannot compute an annual projected value for %s", e.Item)
}

func (e *ProjectionUnavailableError) Unwrap() error { return ErrProjectionUnavailable }

// DependencyCycleError carries the resolution path that closed the cycle.
type DependencyCycleError struct {
	Path []string
}

func (e *DependencyCycleError) Error() string {
	return fmt.Sprintf("line item dependency cycle: %s", strings.Join(e.Path, " -> "))
}

func (e *DependencyCycleError) Unwrap() error { return ErrDependencyCycle }

// RecordParseError reports a stored record that failed validation. The batch
// driver logs it and continues with the next record.
type RecordParseError struct {
	Source string // file path or row identifier
	Err    error
}

func (e *RecordParseError) Error() string {
	return fmt.Sprintf("could not parse record %s: %v", e.Source, e.Err)
}

func (e *RecordParseError) Unwrap() error { return e.Err }
