package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"staffpay/internal/domain/payroll"
)

// RegisterRow is one line of the monthly payroll register.
type RegisterRow struct {
	StaffID     string
	StaffName   string
	Designation string
	PayType     string
	WorkingDays int
	HalfDays    int
	AbsentDays  int
	PayableDays decimal.Decimal
	BaseAmount  decimal.Decimal
	Overtime    decimal.Decimal
	Penalties   decimal.Decimal
	Deductions  decimal.Decimal
	GrossAmount decimal.Decimal
	NetAmount   decimal.Decimal
	Status      string
}

type Service struct {
	DB *pgxpool.Pool
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

func (s *Service) MonthlyRegister(ctx context.Context, companyID string, period payroll.Period) ([]RegisterRow, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT st.id, st.full_name, st.designation, st.pay_type,
           r.working_days, r.half_days, r.absent_days, r.payable_days,
           r.base_amount, r.overtime_amount, r.penalty_amount, r.deduction_amount,
           r.gross_amount, r.net_amount, r.status
    FROM salary_records r
    JOIN staff st ON st.id = r.staff_id
    WHERE st.company_id = $1 AND r.year = $2 AND r.month = $3
    ORDER BY st.full_name
  `, companyID, period.Year, int(period.Month))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RegisterRow
	for rows.Next() {
		var row RegisterRow
		if err := rows.Scan(
			&row.StaffID, &row.StaffName, &row.Designation, &row.PayType,
			&row.WorkingDays, &row.HalfDays, &row.AbsentDays, &row.PayableDays,
			&row.BaseAmount, &row.Overtime, &row.Penalties, &row.Deductions,
			&row.GrossAmount, &row.NetAmount, &row.Status,
		); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// RegisterCSV renders the register rows plus a totals line.
func RegisterCSV(period payroll.Period, rows []RegisterRow) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{
		"period", "staff_id", "staff_name", "designation", "pay_type",
		"working_days", "half_days", "absent_days", "payable_days",
		"base_amount", "overtime_amount", "penalty_amount", "deduction_amount",
		"gross_amount", "net_amount", "status",
	}
	if err := writer.Write(header); err != nil {
		return nil, err
	}

	totalGross := decimal.Zero
	totalNet := decimal.Zero
	for _, row := range rows {
		record := []string{
			period.String(),
			row.StaffID,
			row.StaffName,
			row.Designation,
			row.PayType,
			strconv.Itoa(row.WorkingDays),
			strconv.Itoa(row.HalfDays),
			strconv.Itoa(row.AbsentDays),
			row.PayableDays.StringFixed(2),
			row.BaseAmount.StringFixed(2),
			row.Overtime.StringFixed(2),
			row.Penalties.StringFixed(2),
			row.Deductions.StringFixed(2),
			row.GrossAmount.StringFixed(2),
			row.NetAmount.StringFixed(2),
			row.Status,
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
		totalGross = totalGross.Add(row.GrossAmount)
		totalNet = totalNet.Add(row.NetAmount)
	}

	totals := []string{
		period.String(), "", "TOTAL", "", "",
		"", "", "", "",
		"", "", "", "",
		totalGross.StringFixed(2),
		totalNet.StringFixed(2),
		"",
	}
	if err := writer.Write(totals); err != nil {
		return nil, err
	}

	writer.Flush()
	return buf.Bytes(), writer.Error()
}
