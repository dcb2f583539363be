// Package customer implements the customer use cases on top of the domain repository.
package customer

import (
	"context"
	"time"

	"github.com/customeridentity/backend/internal/domain/customer"
	"github.com/customeridentity/backend/internal/domain/shared"
	"github.com/customeridentity/backend/internal/infrastructure/logger"
	"github.com/customeridentity/backend/internal/infrastructure/orderclient"
	"github.com/customeridentity/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// OrderLookup fetches the orders of one customer
type OrderLookup interface {
	GetOrdersByCustomerID(ctx context.Context, customerID int64) ([]orderclient.Order, error)
}

// Service handles customer business operations
type Service struct {
	repo    customer.Repository
	orders  OrderLookup
	metrics *telemetry.ServiceMetrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewService creates a new customer Service. A nil orders lookup disables enrichment.
func NewService(repo customer.Repository, orders OrderLookup, metrics *telemetry.ServiceMetrics, logger *zap.Logger) *Service {
	return &Service{
		repo:    repo,
		orders:  orders,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *Service) log(ctx context.Context) *zap.Logger {
	return logger.Enrich(ctx, s.logger)
}

// Create creates a new customer pending verification
func (s *Service) Create(ctx context.Context, req CreateCustomerRequest) (*CustomerResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "customer", "create")
	defer span.End()

	addresses, err := toDomainAddresses(req.Addresses)
	if err != nil {
		return nil, err
	}
	c, err := customer.NewCustomer(customer.Profile{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		SSN:       req.SSN,
		Phone:     req.Phone,
	}, addresses)
	if err != nil {
		return nil, err
	}

	if err := s.ensureUnique(ctx, c.Email, c.SSN, 0); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, c); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.metrics.RecordCustomerMutation(ctx, "create")
	telemetry.SetAttributes(span, telemetry.SpanAttrCustomerID, c.ID)
	s.log(ctx).Info("Customer created", zap.Int64("customer_id", c.ID))

	response := ToCustomerResponse(c)
	return &response, nil
}

// GetByID returns an active customer with its orders. An order service
// failure is logged and yields an empty order list.
func (s *Service) GetByID(ctx context.Context, id int64) (*CustomerResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "customer", "get",
		telemetry.WithAttribute(telemetry.SpanAttrCustomerID, id))
	defer span.End()

	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	response := ToCustomerResponse(c)
	response.Orders = s.lookupOrders(ctx, id)
	telemetry.SetAttributes(span, telemetry.SpanAttrOrderCount, len(response.Orders))
	return &response, nil
}

func (s *Service) lookupOrders(ctx context.Context, id int64) []OrderResponse {
	if s.orders == nil {
		return []OrderResponse{}
	}

	start := time.Now()
	orders, err := s.orders.GetOrdersByCustomerID(ctx, id)
	elapsed := time.Since(start)
	if err != nil {
		kind := string(orderclient.KindOf(err))
		if kind == "" {
			kind = "unknown"
		}
		s.metrics.RecordOrderLookup(ctx, kind, elapsed)
		telemetry.AddEvent(telemetry.SpanFromContext(ctx), "orders_degraded", telemetry.SpanAttrLookupFailure, kind)
		s.log(ctx).Warn("Order lookup failed, returning customer without orders",
			zap.Int64("customer_id", id),
			zap.String("failure_kind", kind),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return []OrderResponse{}
	}

	s.metrics.RecordOrderLookup(ctx, "ok", elapsed)
	return ToOrderResponses(orders)
}

// Update overwrites the customer's fields and replaces its address set
func (s *Service) Update(ctx context.Context, id int64, req UpdateCustomerRequest) (*CustomerResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "customer", "update",
		telemetry.WithAttribute(telemetry.SpanAttrCustomerID, id))
	defer span.End()

	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	addresses, err := toDomainAddresses(req.Addresses)
	if err != nil {
		return nil, err
	}
	if err := c.Update(customer.Profile{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		SSN:       req.SSN,
		Phone:     req.Phone,
	}, addresses); err != nil {
		return nil, err
	}
	if req.Status != "" {
		if err := c.ChangeStatus(customer.Status(req.Status)); err != nil {
			return nil, err
		}
	}

	if err := s.ensureUnique(ctx, c.Email, c.SSN, c.ID); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, c); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.metrics.RecordCustomerMutation(ctx, "update")
	s.log(ctx).Info("Customer updated", zap.Int64("customer_id", c.ID))

	response := ToCustomerResponse(c)
	return &response, nil
}

// Delete soft-deletes an active customer
func (s *Service) Delete(ctx context.Context, id int64) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "customer", "delete",
		telemetry.WithAttribute(telemetry.SpanAttrCustomerID, id))
	defer span.End()

	if err := s.repo.SoftDelete(ctx, id, s.now()); err != nil {
		return err
	}

	s.metrics.RecordCustomerMutation(ctx, "delete")
	s.log(ctx).Info("Customer deleted", zap.Int64("customer_id", id))
	return nil
}

// List returns one page of active customers without orders
func (s *Service) List(ctx context.Context, filter ListCustomersFilter) (*CustomerListResponse, error) {
	f := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
	}.Normalize()

	customers, err := s.repo.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}

	page := shared.NewPaginated(ToCustomerResponses(customers), total, f.Page, f.PageSize)
	return &page, nil
}

// RefreshTimestamps backfills created_at and bumps updated_at on every active customer
func (s *Service) RefreshTimestamps(ctx context.Context) (int64, error) {
	updated, err := s.repo.TouchAll(ctx, s.now())
	if err != nil {
		return 0, err
	}
	s.log(ctx).Info("Customer timestamps refreshed", zap.Int64("updated", updated))
	return updated, nil
}

// ensureUnique rejects an email or SSN already used by another active customer.
// The unique indexes remain the final arbiter under concurrent writes.
func (s *Service) ensureUnique(ctx context.Context, email, ssn string, excludeID int64) error {
	exists, err := s.repo.ExistsActiveByEmail(ctx, email, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return customer.ErrDuplicateEmail
	}

	exists, err = s.repo.ExistsActiveBySSN(ctx, ssn, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return customer.ErrDuplicateSSN
	}
	return nil
}
