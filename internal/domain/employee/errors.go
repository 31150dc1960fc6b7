package employee

import "errors"

var (
	ErrEmployeeNotFound      = errors.New("employee not found")
	ErrBaseSalaryRequired    = errors.New("base salary is required")
	ErrNegativeBaseSalary    = errors.New("base salary must be non-negative")
	ErrInvalidEmploymentType = errors.New("employment type must be Permanent, Contract, Intern or External")
)
