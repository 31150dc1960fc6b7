package claim

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

// Claim is a general employee request. Only Type "Claim" carries money.
type Claim struct {
	ID         string
	EmployeeID string
	CompanyID  string
	Type       string
	Details    string
	// Amount is the structured claim value. Rows created before the column
	// existed have it nil and keep the amount inside Details.
	Amount    *decimal.Decimal
	Status    Status
	Date      time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

const TypeClaim = "Claim"

type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
)

// IsApprovedClaim reports whether the request is an approved expense claim.
func (c Claim) IsApprovedClaim() bool {
	return c.Type == TypeClaim && c.Status == StatusApproved
}

// Value returns the claim amount, preferring the structured field.
func (c Claim) Value() decimal.Decimal {
	if c.Amount != nil {
		return *c.Amount
	}
	return ParseLegacyAmount(c.Details)
}

var legacyAmountRegex = regexp.MustCompile(`\d+(\.\d+)?`)

// ParseLegacyAmount extracts the first decimal number in a free-text claim
// description such as "Grab to Client Meeting (RM 45)". It returns zero
// when no number is present.
func ParseLegacyAmount(details string) decimal.Decimal {
	match := legacyAmountRegex.FindString(details)
	if match == "" {
		return decimal.Zero
	}
	amount, err := decimal.NewFromString(match)
	if err != nil {
		return decimal.Zero
	}
	return amount
}
