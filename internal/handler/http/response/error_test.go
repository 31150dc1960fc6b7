package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sme-hris/payroll-backend-go/internal/domain/employee"
	"github.com/sme-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/sme-hris/payroll-backend-go/internal/pkg/validator"
)

func TestHandleError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", validator.ValidationErrors{{Field: "month", Message: "is required"}}, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"wrapped validation", fmt.Errorf("update: %w", validator.ValidationErrors{{Field: "x", Message: "y"}}), http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"employee not found", employee.ErrEmployeeNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"no payslip", payroll.ErrEmployeeNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"invalid period", fmt.Errorf("%w: month 13", payroll.ErrInvalidPeriod), http.StatusBadRequest, "BAD_REQUEST"},
		{"unknown export", payroll.ErrUnknownExportKind, http.StatusNotFound, "NOT_FOUND"},
		{"missing salary", fmt.Errorf("employee e1: %w", payroll.ErrEmployeeHasNoBaseSalary), http.StatusUnprocessableEntity, "UNPROCESSABLE_ENTITY"},
		{"negative salary", fmt.Errorf("employee e1: %w", employee.ErrNegativeBaseSalary), http.StatusUnprocessableEntity, "UNPROCESSABLE_ENTITY"},
		{"bad employment type", fmt.Errorf("employee e1: %w", employee.ErrInvalidEmploymentType), http.StatusUnprocessableEntity, "UNPROCESSABLE_ENTITY"},
		{"unexpected", assert.AnError, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(rec, c.err)

			assert.Equal(t, c.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, c.code, body.Error.Code)
		})
	}
}
