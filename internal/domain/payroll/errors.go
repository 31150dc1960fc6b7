package payroll

import "errors"

var (
	ErrPayrollSettingsNotFound = errors.New("payroll settings not found")
	ErrInvalidPeriod           = errors.New("invalid payroll period")
	ErrEmployeeHasNoBaseSalary = errors.New("employee has no base salary configured")
	ErrEmployeeNotFound        = errors.New("employee not found")
	ErrInvalidTaxTable         = errors.New("invalid tax table")
	ErrUnknownExportKind       = errors.New("unknown statutory export kind")
)
