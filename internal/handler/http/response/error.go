package response

import (
	"errors"
	"net/http"

	"github.com/sme-hris/payroll-backend-go/internal/domain/employee"
	"github.com/sme-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/sme-hris/payroll-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound),
		errors.Is(err, payroll.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	// Payroll domain errors
	case errors.Is(err, payroll.ErrInvalidPeriod):
		BadRequest(w, "Invalid payroll period", nil)
	case errors.Is(err, payroll.ErrUnknownExportKind):
		NotFound(w, "Unknown export kind")
	case errors.Is(err, payroll.ErrEmployeeHasNoBaseSalary),
		errors.Is(err, employee.ErrNegativeBaseSalary),
		errors.Is(err, employee.ErrInvalidEmploymentType):
		UnprocessableEntity(w, err.Error())

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
