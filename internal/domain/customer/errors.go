package customer

import (
	"fmt"

	"github.com/customeridentity/backend/internal/domain/shared"
)

// Conflict errors name the offending field so callers can tell them apart
var (
	ErrDuplicateEmail = shared.NewDomainError("DUPLICATE_EMAIL", "Data integrity violation").WithDetails("Email address already exists.")
	ErrDuplicateSSN   = shared.NewDomainError("DUPLICATE_SSN", "Data integrity violation").WithDetails("SSN already exists.")
)

// NotFound returns the error for an unknown or soft-deleted customer id
func NotFound(id int64) *shared.DomainError {
	return shared.NewDomainError("CUSTOMER_NOT_FOUND", fmt.Sprintf("Customer not found with id: %d", id)).
		WithDetails("The requested resource was not found.")
}
