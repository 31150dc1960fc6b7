package employee

import "context"

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string, companyID string) (Employee, error)
	// ListByCompanyID returns every employee regardless of status; callers
	// decide who is payable.
	ListByCompanyID(ctx context.Context, companyID string) ([]Employee, error)
}
