package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID                string
	CompanyID         string
	EmployeeCode      string
	FullName          string
	ICNumber          string
	EPFNumber         *string
	SOCSONumber       *string
	TaxNumber         *string
	HireDate          time.Time
	ResignationDate   *time.Time
	EmploymentType    EmploymentType
	EmploymentStatus  EmploymentStatus
	BankName          string
	BankAccountNumber string
	BaseSalary        *decimal.Decimal
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type EmploymentType string

const (
	EmploymentTypePermanent EmploymentType = "Permanent"
	EmploymentTypeContract  EmploymentType = "Contract"
	EmploymentTypeIntern    EmploymentType = "Intern"
	EmploymentTypeExternal  EmploymentType = "External"
)

func (t EmploymentType) Valid() bool {
	switch t {
	case EmploymentTypePermanent, EmploymentTypeContract, EmploymentTypeIntern, EmploymentTypeExternal:
		return true
	}
	return false
}

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "Active"
	EmploymentStatusResigned   EmploymentStatus = "Resigned"
	EmploymentStatusTerminated EmploymentStatus = "Terminated"
)

// IsActive reports whether the employee should be included in a payroll run.
func (e Employee) IsActive() bool {
	return e.EmploymentStatus == EmploymentStatusActive
}

// Validate checks only the fields payroll depends on. Identity documents
// are passed through untouched; foreign workers carry passport numbers.
func (e Employee) Validate() error {
	switch {
	case e.BaseSalary == nil:
		return ErrBaseSalaryRequired
	case e.BaseSalary.IsNegative():
		return ErrNegativeBaseSalary
	case !e.EmploymentType.Valid():
		return ErrInvalidEmploymentType
	}
	return nil
}
