/*
Package payslip renders saved payments as PDF payslips.

PURPOSE:
  A payslip is a presentation of an already-computed payment; nothing is
  recalculated here. The renderer prints the organisation header, the
  employee and period, every line item with its year-to-date total, and the
  calculation narrations (pro-rated months, logged hours, weeks worked).

OUTPUT:
  payslips/<key>/<year>/<year>-<month>-payslip-<key>.pdf in the data
  directory.
*/
package payslip

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/warp/payroll-engine/payroll"
)

// Renderer writes payslip PDFs under a root directory.
type Renderer struct {
	organisation *payroll.Organisation
	dir          string
}

func NewRenderer(organisation *payroll.Organisation, dir string) *Renderer {
	return &Renderer{organisation: organisation, dir: dir}
}

// FileName is the canonical payslip filename for a year, month and employee
// key.
func FileName(year, month int, employeeKey string) string {
	return fmt.Sprintf("%d-%02d-payslip-%s.pdf", year, month, employeeKey)
}

// Render writes the payment's payslip, creating directories as needed, and
// returns the written path.
func (r *Renderer) Render(payment *payroll.Payment) (string, error) {
	year := payment.Period.Start.Year()
	month := int(payment.Period.Start.Month())
	dir := filepath.Join(r.dir, payment.Employee.Key, fmt.Sprintf("%d", year))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, FileName(year, month, payment.Employee.Key))

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, r.organisation.Name)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, r.organisation.Address)
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Employer number: %s", r.organisation.EmployerNumber))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, fmt.Sprintf("Payslip %d-%02d", year, month))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Employee: %s %s (%s)",
		payment.Employee.FirstName, payment.Employee.Surname, payment.Employee.Identifier))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Role: %s", payment.Employee.Role))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Period: %s to %s", payment.Period.Start, payment.Period.End))
	pdf.Ln(10)

	r.lineItems(pdf, payment)

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Net pay: %s", payment.Items.NetPay))

	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("failed to write payslip: %w", err)
	}
	return path, nil
}

func (r *Renderer) lineItems(pdf *gofpdf.Fpdf, payment *payroll.Payment) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(80, 7, "Line item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(40, 7, "Current period", "B", 0, "R", false, 0, "")
	pdf.CellFormat(40, 7, "Year to date", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, name := range payroll.ItemNames() {
		value, err := payment.Items.Get(name)
		if err != nil {
			continue
		}
		record := payment.Ledger[name]

		label := itemLabel(name)
		if note := payment.Notes[name]; note != "" {
			label = fmt.Sprintf("%s (%s)", label, note)
		}

		pdf.CellFormat(80, 6, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, value.Amount.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, record.YearToDate.StringFixed(2), "", 1, "R", false, 0, "")
	}
}

// itemLabel turns a snake_case item name into a printable label.
func itemLabel(name payroll.ItemName) string {
	label := strings.ReplaceAll(string(name), "_", " ")
	if label == "" {
		return string(name)
	}
	return strings.ToUpper(label[:1]) + label[1:]
}
