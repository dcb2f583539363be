package customer

import (
	"context"
	"time"

	"github.com/customeridentity/backend/internal/domain/shared"
)

// Repository defines persistence for the customer aggregate.
// Every read excludes soft-deleted customers.
type Repository interface {
	// FindByID finds an active customer with its addresses
	FindByID(ctx context.Context, id int64) (*Customer, error)

	// FindAll finds active customers matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Customer, error)

	// Count counts active customers
	Count(ctx context.Context) (int64, error)

	// Create inserts the customer and then its addresses in one transaction
	Create(ctx context.Context, customer *Customer) error

	// Update overwrites the customer row and replaces its whole address set
	Update(ctx context.Context, customer *Customer) error

	// SoftDelete sets deleted_at on an active customer; addresses are kept
	SoftDelete(ctx context.Context, id int64, at time.Time) error

	// ExistsActiveByEmail checks for another active customer using the email
	ExistsActiveByEmail(ctx context.Context, email string, excludeID int64) (bool, error)

	// ExistsActiveBySSN checks for another active customer using the SSN
	ExistsActiveBySSN(ctx context.Context, ssn string, excludeID int64) (bool, error)

	// TouchAll backfills created_at and refreshes updated_at on active customers
	TouchAll(ctx context.Context, at time.Time) (int64, error)
}
