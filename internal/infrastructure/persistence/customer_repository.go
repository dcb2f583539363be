package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/customeridentity/backend/internal/domain/customer"
	"github.com/customeridentity/backend/internal/domain/shared"
	"github.com/customeridentity/backend/internal/infrastructure/persistence/models"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// GormCustomerRepository implements customer.Repository using GORM.
// Soft-deleted rows are filtered explicitly on every read.
type GormCustomerRepository struct {
	db *gorm.DB
}

var _ customer.Repository = (*GormCustomerRepository)(nil)

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

func (r *GormCustomerRepository) active(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.CustomerModel{}).Where("deleted_at IS NULL")
}

func preloadAddresses(db *gorm.DB) *gorm.DB {
	return db.Order("addresses.id ASC")
}

// FindByID finds an active customer with its addresses
func (r *GormCustomerRepository) FindByID(ctx context.Context, id int64) (*customer.Customer, error) {
	var model models.CustomerModel
	err := r.active(ctx).
		Preload("Addresses", preloadAddresses).
		Where("id = ?", id).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, customer.NotFound(id)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds active customers for one page of the filter
func (r *GormCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]customer.Customer, error) {
	var customerModels []models.CustomerModel
	query := r.applyFilter(r.active(ctx).Preload("Addresses", preloadAddresses), filter)

	if err := query.Find(&customerModels).Error; err != nil {
		return nil, err
	}

	customers := make([]customer.Customer, len(customerModels))
	for i := range customerModels {
		customers[i] = *customerModels[i].ToDomain()
	}
	return customers, nil
}

// Count counts active customers
func (r *GormCustomerRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.active(ctx).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts the customer and then its addresses in one transaction.
// The generated ids are written back onto the aggregate.
func (r *GormCustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.CustomerModelFromDomain(c)
		addresses := model.Addresses
		model.Addresses = nil

		if err := tx.Omit("Addresses").Create(model).Error; err != nil {
			return translateWriteError(err)
		}
		c.ID = model.ID
		c.CreatedAt = model.CreatedAt
		c.UpdatedAt = model.UpdatedAt

		if err := insertAddresses(tx, model.ID, addresses); err != nil {
			return err
		}
		c.Addresses = toDomainAddresses(addresses)
		return nil
	})
}

// Update overwrites the customer row and replaces its whole address set.
// A customer that is missing or soft-deleted yields NotFound.
func (r *GormCustomerRepository) Update(ctx context.Context, c *customer.Customer) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.CustomerModel{}).
			Where("id = ? AND deleted_at IS NULL", c.ID).
			Updates(map[string]any{
				"first_name": c.FirstName,
				"last_name":  c.LastName,
				"email":      c.Email,
				"ssn":        c.SSN,
				"phone":      c.Phone,
				"status":     c.Status,
				"updated_at": c.UpdatedAt,
			})
		if result.Error != nil {
			return translateWriteError(result.Error)
		}
		if result.RowsAffected == 0 {
			return customer.NotFound(c.ID)
		}

		if err := tx.Where("customer_id = ?", c.ID).Delete(&models.AddressModel{}).Error; err != nil {
			return err
		}

		addresses := models.AddressModelsFromDomain(c.Addresses)
		if err := insertAddresses(tx, c.ID, addresses); err != nil {
			return err
		}
		c.Addresses = toDomainAddresses(addresses)
		return nil
	})
}

// SoftDelete marks an active customer deleted. Its addresses are kept.
func (r *GormCustomerRepository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.CustomerModel{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Updates(map[string]any{
			"deleted_at": at,
			"updated_at": at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return customer.NotFound(id)
	}
	return nil
}

// ExistsActiveByEmail checks whether another active customer uses the email
func (r *GormCustomerRepository) ExistsActiveByEmail(ctx context.Context, email string, excludeID int64) (bool, error) {
	return r.existsActive(ctx, "email", email, excludeID)
}

// ExistsActiveBySSN checks whether another active customer uses the SSN
func (r *GormCustomerRepository) ExistsActiveBySSN(ctx context.Context, ssn string, excludeID int64) (bool, error) {
	return r.existsActive(ctx, "ssn", ssn, excludeID)
}

func (r *GormCustomerRepository) existsActive(ctx context.Context, column, value string, excludeID int64) (bool, error) {
	var count int64
	query := r.active(ctx).Where(column+" = ?", value)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// TouchAll backfills a missing created_at and refreshes updated_at on every
// active customer, returning the number of rows touched
func (r *GormCustomerRepository) TouchAll(ctx context.Context, at time.Time) (int64, error) {
	result := r.active(ctx).Updates(map[string]any{
		"created_at": gorm.Expr("COALESCE(created_at, ?)", at),
		"updated_at": at,
	})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// applyFilter applies whitelisted ordering and pagination
func (r *GormCustomerRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	filter = filter.Normalize()
	orderBy := ValidateSortField(filter.OrderBy, CustomerSortFields, "id")
	orderDir := ValidateSortOrder(filter.OrderDir)

	query = query.Order(orderBy + " " + orderDir)
	if orderBy != "id" {
		query = query.Order("id ASC")
	}
	return query.Offset(filter.Offset()).Limit(filter.PageSize)
}

func insertAddresses(tx *gorm.DB, customerID int64, addresses []models.AddressModel) error {
	if len(addresses) == 0 {
		return nil
	}
	for i := range addresses {
		addresses[i].ID = 0
		addresses[i].CustomerID = customerID
	}
	return tx.Create(&addresses).Error
}

func toDomainAddresses(addresses []models.AddressModel) []customer.Address {
	out := make([]customer.Address, len(addresses))
	for i := range addresses {
		out[i] = addresses[i].ToDomain()
	}
	return out
}

// translateWriteError maps unique index violations from Postgres or SQLite
// onto the duplicate email/SSN conflicts
func translateWriteError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return duplicateFor(pgErr.ConstraintName + " " + pgErr.Detail)
	}

	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		return duplicateFor(msg)
	}
	return err
}

func duplicateFor(hint string) error {
	switch {
	case strings.Contains(hint, "email"):
		return customer.ErrDuplicateEmail
	case strings.Contains(hint, "ssn"):
		return customer.ErrDuplicateSSN
	default:
		return shared.ErrConflict
	}
}
