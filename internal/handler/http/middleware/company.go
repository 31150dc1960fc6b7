package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sme-hris/payroll-backend-go/internal/handler/http/response"
	"github.com/sme-hris/payroll-backend-go/internal/pkg/validator"
)

type companyIDKey struct{}

// RequireCompany validates the {companyID} path parameter and stores it in
// the request context.
func RequireCompany(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		companyID := chi.URLParam(r, "companyID")
		if !validator.IsValidUUID(companyID) {
			response.BadRequest(w, "Invalid company ID", map[string]string{"company_id": "must be a UUID"})
			return
		}

		ctx := context.WithValue(r.Context(), companyIDKey{}, companyID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CompanyID returns the company set by RequireCompany.
func CompanyID(ctx context.Context) string {
	id, _ := ctx.Value(companyIDKey{}).(string)
	return id
}
