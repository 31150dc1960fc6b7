package payroll

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/sme-hris/payroll-backend-go/internal/domain/employee"
	"github.com/sme-hris/payroll-backend-go/internal/domain/payroll"
)

// RenderPayslip writes a one-page PDF payslip for a single active employee.
func (s *PayrollServiceImpl) RenderPayslip(ctx context.Context, companyID string, period payroll.Period, employeeID string, w io.Writer) error {
	if err := period.Validate(); err != nil {
		return err
	}

	emp, err := s.employeeRepo.GetByID(ctx, employeeID, companyID)
	if err != nil {
		return err
	}
	if !emp.IsActive() {
		return payroll.ErrEmployeeNotFound
	}

	data, err := s.loadMonth(ctx, companyID, period, false)
	if err != nil {
		return err
	}

	entry, err := payroll.CalculateEntry(s.entryInput(data, emp, period, s.clock.Now()))
	if err != nil {
		return fmt.Errorf("employee %s: %w", emp.ID, err)
	}

	pdf := buildPayslip(emp, entry)
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render payslip: %w", err)
	}

	s.logger.InfoContext(ctx, "payslip rendered",
		slog.String("company_id", companyID),
		slog.String("employee_id", employeeID),
		slog.String("period", period.String()),
	)
	return nil
}

func rm(d decimal.Decimal) string {
	return "RM " + d.StringFixed(2)
}

func buildPayslip(emp employee.Employee, e payroll.PayrollEntry) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Payslip %s %s", e.EmployeeCode, e.Period), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	header := [][2]string{
		{"Employee", fmt.Sprintf("%s (%s)", e.EmployeeName, e.EmployeeCode)},
		{"IC Number", emp.ICNumber},
		{"Employment Type", e.EmploymentType},
		{"Period", e.Period.String()},
		{"Bank", fmt.Sprintf("%s %s", emp.BankName, emp.BankAccountNumber)},
		{"Status", string(e.PaymentStatus)},
	}
	for _, row := range header {
		pdf.CellFormat(45, 7, row[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, row[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Standard days %d, days worked %d, unpaid leave %d, late %d min, overtime %d min",
		e.StandardDays, e.DaysWorked, e.UnpaidLeaveDays, e.TotalLateMinutes, e.TotalOvertimeMinutes), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	section := func(title string, rows [][2]string, totalLabel string, total decimal.Decimal) {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 8, title, "B", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		for _, row := range rows {
			pdf.CellFormat(120, 7, row[0], "", 0, "L", false, 0, "")
			pdf.CellFormat(0, 7, row[1], "", 1, "R", false, 0, "")
		}
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(120, 7, totalLabel, "T", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, rm(total), "T", 1, "R", false, 0, "")
		pdf.Ln(4)
	}

	section("Earnings", [][2]string{
		{"Basic salary", rm(e.BasicSalary)},
		{"Allowances and claims", rm(e.Allowances)},
		{"Overtime", rm(e.OvertimeAmount)},
		{"Unpaid leave", "-" + rm(e.UnpaidLeaveDeduction)},
		{"Late deduction", "-" + rm(e.LateDeduction)},
	}, "Gross pay", e.GrossPay)

	section("Statutory deductions", [][2]string{
		{"EPF", rm(e.EPF)},
		{"SOCSO", rm(e.SOCSO)},
		{"EIS", rm(e.EIS)},
		{"PCB", rm(e.PCB)},
	}, "Total deductions", e.TotalStatutory())

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(120, 10, "Net salary", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 10, rm(e.NetSalary), "", 1, "R", false, 0, "")

	return pdf
}
