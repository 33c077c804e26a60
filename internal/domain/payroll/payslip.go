package payroll

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	cryptoutil "staffpay/internal/platform/crypto"
)

// PayslipData is everything the PDF needs; the renderer itself does no
// fetching, it is strictly downstream of the calculator and reconciler.
type PayslipData struct {
	CompanyName string
	StaffName   string
	StaffEmail  string
	Designation string
	Record      SalaryRecord
	Entries     []BreakdownEntry
	Recon       Reconciliation
}

// RenderPayslipPDF renders one salary record with its breakdown and ledger
// balance into a PDF document.
func RenderPayslipPDF(data PayslipData) ([]byte, error) {
	rec := data.Record

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, fmt.Sprintf("Payslip %s", rec.Period))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Company: %s", data.CompanyName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Staff: %s (%s)", data.StaffName, data.Designation))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Email: %s", data.StaffEmail))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Attendance")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Working days: %d (%d half)   Absent: %d   Late: %d min   Overtime: %s h",
		rec.WorkingDays, rec.HalfDays, rec.AbsentDays, rec.LateMinutes, rec.OvertimeHours.StringFixed(2)))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Earnings and deductions")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	for _, entry := range data.Entries {
		pdf.Cell(130, 7, entry.Description)
		pdf.CellFormat(40, 7, entry.Amount.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.Ln(7)
	}
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(130, 7, "Gross amount")
	pdf.CellFormat(40, 7, rec.GrossAmount.StringFixed(2), "", 0, "R", false, 0, "")
	pdf.Ln(7)
	pdf.Cell(130, 7, "Net amount")
	pdf.CellFormat(40, 7, rec.NetAmount.StringFixed(2), "", 0, "R", false, 0, "")
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Ledger")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Paid: %s   Recovered: %s   Outstanding: %s",
		data.Recon.TotalPaid.StringFixed(2), data.Recon.TotalRecovered.StringFixed(2), data.Recon.Balance.StringFixed(2)))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PayslipWriter archives rendered payslips, encrypting at rest when a
// data encryption key is configured.
type PayslipWriter struct {
	Dir    string
	Crypto *cryptoutil.Service
}

// Store writes an already-rendered payslip for the record and returns the
// archive path. Encrypted files carry a .enc suffix.
func (w *PayslipWriter) Store(rec SalaryRecord, raw []byte) (string, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", err
	}

	name := fmt.Sprintf("%s-%s.pdf", rec.StaffID, rec.Period)
	path := filepath.Join(w.Dir, name)

	if w.Crypto != nil && w.Crypto.Configured() {
		encrypted, err := w.Crypto.Encrypt(raw)
		if err != nil {
			return "", err
		}
		path += ".enc"
		if err := os.WriteFile(path, encrypted, 0o600); err != nil {
			return "", err
		}
		return path, nil
	}

	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
