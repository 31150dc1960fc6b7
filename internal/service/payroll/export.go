package payroll

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/sme-hris/payroll-backend-go/internal/domain/employee"
	"github.com/sme-hris/payroll-backend-go/internal/domain/payroll"
)

var exportHeaders = map[payroll.ExportKind][]string{
	payroll.ExportEPF:      {"employee_code", "name", "ic_number", "epf_number", "wages", "employee_share", "employer_share"},
	payroll.ExportSOCSOEIS: {"employee_code", "name", "ic_number", "socso_number", "wages", "socso", "eis"},
	payroll.ExportPCB:      {"employee_code", "name", "ic_number", "tax_number", "gross", "epf", "pcb"},
}

// ExportStatutory writes a CSV submission file for one statutory body.
// Only employees who contribute (Permanent) are listed.
func (s *PayrollServiceImpl) ExportStatutory(ctx context.Context, companyID string, period payroll.Period, kind payroll.ExportKind, w io.Writer) error {
	header, ok := exportHeaders[kind]
	if !ok {
		return payroll.ErrUnknownExportKind
	}

	c, err := s.computeRun(ctx, companyID, period)
	if err != nil {
		return err
	}
	employerRate := c.settings.StatutoryRates.EPFEmployer.Div(decimal.NewFromInt(100))

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write export header: %w", err)
	}

	rows := 0
	for i, e := range c.run.Entries {
		emp := c.employees[i]
		if emp.EmploymentType != employee.EmploymentTypePermanent {
			continue
		}

		var record []string
		switch kind {
		case payroll.ExportEPF:
			employer := e.GrossPay.Mul(employerRate).Round(0)
			record = []string{emp.EmployeeCode, emp.FullName, emp.ICNumber, deref(emp.EPFNumber),
				money(e.GrossPay), money(e.EPF), money(employer)}
		case payroll.ExportSOCSOEIS:
			record = []string{emp.EmployeeCode, emp.FullName, emp.ICNumber, deref(emp.SOCSONumber),
				money(e.GrossPay), money(e.SOCSO), money(e.EIS)}
		case payroll.ExportPCB:
			record = []string{emp.EmployeeCode, emp.FullName, emp.ICNumber, deref(emp.TaxNumber),
				money(e.GrossPay), money(e.EPF), money(e.PCB)}
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write export row: %w", err)
		}
		rows++
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush export: %w", err)
	}

	s.logger.InfoContext(ctx, "statutory export written",
		slog.String("company_id", companyID),
		slog.String("period", period.String()),
		slog.String("kind", string(kind)),
		slog.Int("rows", rows),
	)
	return nil
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
