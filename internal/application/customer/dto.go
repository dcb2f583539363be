package customer

import (
	"time"

	"github.com/customeridentity/backend/internal/domain/customer"
	"github.com/customeridentity/backend/internal/domain/shared"
	"github.com/customeridentity/backend/internal/infrastructure/orderclient"
	"github.com/shopspring/decimal"
)

// AddressRequest is one address of a create or update request
type AddressRequest struct {
	Street      string `json:"street" binding:"max=255"`
	City        string `json:"city" binding:"max=100"`
	State       string `json:"state" binding:"max=100"`
	ZipCode     string `json:"zipCode" binding:"max=20"`
	AddressType string `json:"addressType" binding:"required,oneof=HOME BILLING SHIPPING WORK"`
}

// CreateCustomerRequest represents a request to create a new customer
type CreateCustomerRequest struct {
	FirstName string           `json:"firstName" binding:"required,max=100"`
	LastName  string           `json:"lastName" binding:"required,max=100"`
	Email     string           `json:"email" binding:"required,email,max=200"`
	SSN       string           `json:"ssn" binding:"required,max=20"`
	Phone     string           `json:"phone" binding:"omitempty,max=30"`
	Addresses []AddressRequest `json:"addresses" binding:"omitempty,dive"`
}

// UpdateCustomerRequest overwrites every field. An empty status keeps the current one.
type UpdateCustomerRequest struct {
	FirstName string           `json:"firstName" binding:"required,max=100"`
	LastName  string           `json:"lastName" binding:"required,max=100"`
	Email     string           `json:"email" binding:"required,email,max=200"`
	SSN       string           `json:"ssn" binding:"required,max=20"`
	Phone     string           `json:"phone" binding:"omitempty,max=30"`
	Status    string           `json:"status" binding:"omitempty,oneof=PENDING_VERIFICATION ACTIVE SUSPENDED INACTIVE"`
	Addresses []AddressRequest `json:"addresses" binding:"omitempty,dive"`
}

// ListCustomersFilter selects one page of active customers
type ListCustomersFilter struct {
	Page     int    `form:"page" binding:"omitempty,min=1,max=1000000"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// AddressResponse is the API view of an address
type AddressResponse struct {
	ID          int64  `json:"id"`
	Street      string `json:"street"`
	City        string `json:"city"`
	State       string `json:"state"`
	ZipCode     string `json:"zipCode"`
	AddressType string `json:"addressType"`
}

// OrderResponse is the API view of an order fetched from the order service
type OrderResponse struct {
	OrderID     int64           `json:"orderId"`
	Amount      decimal.Decimal `json:"amount"`
	OrderStatus string          `json:"orderStatus"`
}

// CustomerResponse is the API view of a customer
type CustomerResponse struct {
	ID        int64             `json:"id"`
	FirstName string            `json:"firstName"`
	LastName  string            `json:"lastName"`
	Email     string            `json:"email"`
	SSN       string            `json:"ssn"`
	Phone     string            `json:"phone"`
	Status    string            `json:"status"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
	Addresses []AddressResponse `json:"addresses"`
	Orders    []OrderResponse   `json:"orders"`
}

// CustomerListResponse is one page of customers
type CustomerListResponse = shared.Paginated[CustomerResponse]

// ToCustomerResponse converts a domain Customer to a CustomerResponse with no orders
func ToCustomerResponse(c *customer.Customer) CustomerResponse {
	addresses := make([]AddressResponse, len(c.Addresses))
	for i, a := range c.Addresses {
		addresses[i] = AddressResponse{
			ID:          a.ID,
			Street:      a.Street,
			City:        a.City,
			State:       a.State,
			ZipCode:     a.ZipCode,
			AddressType: string(a.AddressType),
		}
	}
	return CustomerResponse{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		SSN:       c.SSN,
		Phone:     c.Phone,
		Status:    string(c.Status),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Addresses: addresses,
		Orders:    []OrderResponse{},
	}
}

// ToCustomerResponses converts a slice of domain Customers
func ToCustomerResponses(customers []customer.Customer) []CustomerResponse {
	responses := make([]CustomerResponse, len(customers))
	for i := range customers {
		responses[i] = ToCustomerResponse(&customers[i])
	}
	return responses
}

// ToOrderResponses converts orders from the order service
func ToOrderResponses(orders []orderclient.Order) []OrderResponse {
	responses := make([]OrderResponse, len(orders))
	for i, o := range orders {
		responses[i] = OrderResponse{
			OrderID:     o.OrderID,
			Amount:      o.Amount,
			OrderStatus: o.OrderStatus,
		}
	}
	return responses
}

func toDomainAddresses(reqs []AddressRequest) ([]customer.Address, error) {
	addresses := make([]customer.Address, 0, len(reqs))
	for _, r := range reqs {
		a, err := customer.NewAddress(r.Street, r.City, r.State, r.ZipCode, customer.AddressType(r.AddressType))
		if err != nil {
			return nil, err
		}
		addresses = append(addresses, a)
	}
	return addresses, nil
}
