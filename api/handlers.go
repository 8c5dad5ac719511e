/*
handlers.go - HTTP API handlers for the payroll engine

PURPOSE:
  Exposes the payroll engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Employees:
    GET    /api/employees                 List all employees
    GET    /api/employees/{key}           Get employee details
    GET    /api/employees/{key}/payments  Employee's payments for a year

  Payroll:
    POST   /api/payroll/run               Run a year-month and save payments
    POST   /api/payroll/revert            Remove a year-month's payments
    POST   /api/payroll/payslips          Render PDF payslips for a month

  Payments:
    GET    /api/payments/{year}/{month}   Saved payments for a month
    GET    /api/payslips/{key}/{year}/{month}  Download a payslip PDF

  Forms:
    GET    /api/forms/fs3/{year}/{key}    Compute an employee's FS3
    GET    /api/forms/fs5/{year}/{month}  Compute the month's FS5
    GET    /api/forms/fs7/{year}          Compute the year's FS7

FORM RESPONSES:
  Statutory forms are YAML documents by nature; the form endpoints return
  them verbatim as application/x-yaml instead of re-shaping them into JSON.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - batch: The run driver the handlers delegate to
*/
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/warp/payroll-engine/batch"
	"github.com/warp/payroll-engine/payslip"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Payroll *batch.Payroll

	// DataDir is the payroll data root, used to locate rendered payslips.
	DataDir string

	logger *zap.Logger
}

// NewHandler creates a new handler over an assembled payroll.
func NewHandler(payroll *batch.Payroll, dataDir string, logger *zap.Logger) *Handler {
	return &Handler{Payroll: payroll, DataDir: dataDir, logger: logger}
}

// =============================================================================
// EMPLOYEE ENDPOINTS
// =============================================================================

// ListEmployees returns all parseable employees.
// GET /api/employees
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Payroll.Employees().Load(nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, 0, len(employees))
	for _, employee := range employees {
		dtos = append(dtos, toEmployeeDTO(employee))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns one employee by key.
// GET /api/employees/{key}
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	employee, err := h.Payroll.Employees().LoadByKey(key)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}
	if employee == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(employee))
}

// GetEmployeePayments returns the employee's saved payments for a year.
// GET /api/employees/{key}/payments?year=2026
func (h *Handler) GetEmployeePayments(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid or missing year query parameter", err)
		return
	}

	payments, err := h.Payroll.Payments().Load(key, year, nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load payments", err)
		return
	}

	dtos := make([]PaymentDTO, 0, len(payments))
	for _, payment := range payments {
		dtos = append(dtos, toPaymentDTO(payment))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// PAYROLL ENDPOINTS
// =============================================================================

// RunPayroll computes and saves the payments for a year-month.
// POST /api/payroll/run
func (h *Handler) RunPayroll(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRunRequest(w, r)
	if !ok {
		return
	}

	payments, err := h.Payroll.Run(r.Context(), req.Year, time.Month(req.Month))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Payroll run failed", err)
		return
	}

	dtos := make([]PaymentDTO, 0, len(payments))
	for _, payment := range payments {
		dtos = append(dtos, toPaymentDTO(payment))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// RevertPayroll removes the payments saved for a year-month.
// POST /api/payroll/revert
func (h *Handler) RevertPayroll(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRunRequest(w, r)
	if !ok {
		return
	}

	if err := h.Payroll.Revert(req.Year, time.Month(req.Month)); err != nil {
		writeError(w, http.StatusInternalServerError, "Payroll revert failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reverted": fmt.Sprintf("%d-%02d", req.Year, req.Month)})
}

// GeneratePayslips renders PDF payslips for a saved year-month.
// POST /api/payroll/payslips
func (h *Handler) GeneratePayslips(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRunRequest(w, r)
	if !ok {
		return
	}

	paths, err := h.Payroll.Payslips(req.Year, time.Month(req.Month))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Payslip generation failed", err)
		return
	}
	writeJSON(w, http.StatusOK, PayslipsResponseDTO{Paths: paths})
}

// GetMonthPayments returns every saved payment for a year-month.
// GET /api/payments/{year}/{month}
func (h *Handler) GetMonthPayments(w http.ResponseWriter, r *http.Request) {
	year, month, ok := yearMonthParams(w, r)
	if !ok {
		return
	}

	payments, err := h.Payroll.Payments().LoadForMonth(year, month, nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load payments", err)
		return
	}

	dtos := make([]PaymentDTO, 0, len(payments))
	for _, payment := range payments {
		dtos = append(dtos, toPaymentDTO(payment))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// DownloadPayslip serves a rendered payslip PDF.
// GET /api/payslips/{key}/{year}/{month}
func (h *Handler) DownloadPayslip(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	year, month, ok := yearMonthParams(w, r)
	if !ok {
		return
	}

	path := filepath.Join(h.DataDir, "payslips", key, fmt.Sprintf("%d", year),
		payslip.FileName(year, month, key))
	if _, err := os.Stat(path); os.IsNotExist(err) {
		writeError(w, http.StatusNotFound, "Payslip not rendered for this month", nil)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	http.ServeFile(w, r, path)
}

// =============================================================================
// FORM ENDPOINTS
// =============================================================================

// ComputeFS3 computes an employee's annual FS3 from saved payments.
// GET /api/forms/fs3/{year}/{key}
func (h *Handler) ComputeFS3(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}
	key := chi.URLParam(r, "key")

	form, err := h.Payroll.FS3Generator().Compute(year, key)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "FS3 computation failed", err)
		return
	}
	writeYAML(w, form)
}

// ComputeFS5 computes the month's FS5 from saved payments.
// GET /api/forms/fs5/{year}/{month}
func (h *Handler) ComputeFS5(w http.ResponseWriter, r *http.Request) {
	year, month, ok := yearMonthParams(w, r)
	if !ok {
		return
	}

	form, err := h.Payroll.FS5Generator().Compute(year, month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "FS5 computation failed", err)
		return
	}
	writeYAML(w, form)
}

// ComputeFS7 computes the year's FS7 from generated FS3 files.
// GET /api/forms/fs7/{year}
func (h *Handler) ComputeFS7(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	form, err := h.Payroll.FS7Generator().Compute(year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "FS7 computation failed", err)
		return
	}
	writeYAML(w, form)
}

// =============================================================================
// HELPERS
// =============================================================================

func decodeRunRequest(w http.ResponseWriter, r *http.Request) (RunPayrollRequest, bool) {
	var req RunPayrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return req, false
	}
	if req.Month < 1 || req.Month > 12 {
		writeError(w, http.StatusBadRequest, "Month must be between 1 and 12", nil)
		return req, false
	}
	if req.Year < 1 {
		writeError(w, http.StatusBadRequest, "Year is required", nil)
		return req, false
	}
	return req, true
}

func yearMonthParams(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return 0, 0, false
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "Invalid month", err)
		return 0, 0, false
	}
	return year, month, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeYAML(w http.ResponseWriter, form any) {
	content, err := yaml.Marshal(form)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to serialize form", err)
		return
	}
	w.Header().Set("Content-Type", "application/x-yaml")
	w.WriteHeader(http.StatusOK)
	w.Write(content)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
