/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONETARY VALUES:
  Money is serialized as "1234.56 EUR" strings. Clients must not do float
  arithmetic on payroll amounts; the string format makes that explicit.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	Key                    string `json:"key"`
	Identifier             string `json:"identifier"`
	FirstName              string `json:"first_name"`
	Surname                string `json:"surname"`
	Email                  string `json:"email"`
	Role                   string `json:"role"`
	StartDate              string `json:"start_date"`
	EndDate                string `json:"end_date,omitempty"`
	HoursPerWeek           int    `json:"hours_per_week"`
	TaxComputation         string `json:"tax_computation"`
	SocialSecurityCategory string `json:"social_security_category"`
	GrossAnnualSalary      string `json:"gross_annual_salary"`
}

// LineItemDTO is one stored line-item record in API responses.
type LineItemDTO struct {
	CurrentPeriod   string `json:"current_period"`
	YearToDate      string `json:"year_to_date"`
	ProjectedYearly string `json:"projected_yearly,omitempty"`
}

// PaymentDTO represents one computed payment in API responses.
type PaymentDTO struct {
	EmployeeKey string                 `json:"employee_key"`
	PeriodStart string                 `json:"period_start"`
	PeriodEnd   string                 `json:"period_end"`
	Currency    string                 `json:"currency"`
	TimeWorked  string                 `json:"time_worked"`
	WeeksWorked int                    `json:"weeks_worked"`
	MonthlyWage string                 `json:"monthly_wage"`
	WeeklyWage  string                 `json:"weekly_wage"`
	Items       map[string]string      `json:"items"`
	LineItems   map[string]LineItemDTO `json:"line_items,omitempty"`
	Notes       map[string]string      `json:"notes,omitempty"`
}

// RunPayrollRequest selects the year-month to run, revert or render.
type RunPayrollRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// PayslipsResponseDTO lists the rendered payslip files.
type PayslipsResponseDTO struct {
	Paths []string `json:"paths"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toEmployeeDTO(e *payroll.Employee) EmployeeDTO {
	dto := EmployeeDTO{
		Key:                    e.Key,
		Identifier:             e.Identifier,
		FirstName:              e.FirstName,
		Surname:                e.Surname,
		Email:                  e.Email,
		Role:                   e.Role,
		StartDate:              e.StartDate.String(),
		HoursPerWeek:           e.HoursPerWeek,
		TaxComputation:         string(e.TaxComputation),
		SocialSecurityCategory: string(e.SocialSecurityCategory),
		GrossAnnualSalary:      e.GrossAnnualSalary.StringFixed(2),
	}
	if e.EndDate != nil {
		dto.EndDate = e.EndDate.String()
	}
	return dto
}

func toPaymentDTO(p *payroll.Payment) PaymentDTO {
	dto := PaymentDTO{
		EmployeeKey: p.Employee.Key,
		PeriodStart: p.Period.Start.String(),
		PeriodEnd:   p.Period.End.String(),
		Currency:    p.Currency,
		TimeWorked:  p.TimeWorked.StringFixed(2),
		WeeksWorked: p.WeeksWorked,
		MonthlyWage: p.MonthlyWage.String(),
		WeeklyWage:  p.WeeklyWage.String(),
		Items:       make(map[string]string, len(payroll.ItemNames())),
	}
	for _, name := range payroll.ItemNames() {
		value, err := p.Items.Get(name)
		if err != nil {
			continue
		}
		dto.Items[string(name)] = value.String()
	}
	if len(p.Ledger) > 0 {
		dto.LineItems = make(map[string]LineItemDTO, len(p.Ledger))
		for name, record := range p.Ledger {
			item := LineItemDTO{
				CurrentPeriod: record.CurrentPeriod.StringFixed(2),
				YearToDate:    record.YearToDate.StringFixed(2),
			}
			if !record.ProjectedYearly.IsZero() {
				item.ProjectedYearly = record.ProjectedYearly.StringFixed(2)
			}
			dto.LineItems[string(name)] = item
		}
	}
	if len(p.Notes) > 0 {
		dto.Notes = make(map[string]string, len(p.Notes))
		for name, note := range p.Notes {
			dto.Notes[string(name)] = note
		}
	}
	return dto
}
