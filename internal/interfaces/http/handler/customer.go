package handler

import (
	"context"
	"net/http"

	appcustomer "github.com/customeridentity/backend/internal/application/customer"
	"github.com/gin-gonic/gin"
)

// CustomerService is the customer use case surface used by the handler
type CustomerService interface {
	Create(ctx context.Context, req appcustomer.CreateCustomerRequest) (*appcustomer.CustomerResponse, error)
	GetByID(ctx context.Context, id int64) (*appcustomer.CustomerResponse, error)
	Update(ctx context.Context, id int64, req appcustomer.UpdateCustomerRequest) (*appcustomer.CustomerResponse, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter appcustomer.ListCustomersFilter) (*appcustomer.CustomerListResponse, error)
	RefreshTimestamps(ctx context.Context) (int64, error)
}

// CustomerHandler handles customer-related API endpoints
type CustomerHandler struct {
	BaseHandler
	customerService CustomerService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerService CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

// RefreshResponse reports how many customers were touched
type RefreshResponse struct {
	Updated int64 `json:"updated"`
}

// List handles GET /customers
func (h *CustomerHandler) List(c *gin.Context) {
	var filter appcustomer.ListCustomersFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	page, err := h.customerService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Create handles POST /customers
func (h *CustomerHandler) Create(c *gin.Context) {
	var req appcustomer.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	created, err := h.customerService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetByID handles GET /customers/:id
func (h *CustomerHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	found, err := h.customerService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, found)
}

// Update handles PUT /customers/:id
func (h *CustomerHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	var req appcustomer.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	updated, err := h.customerService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /customers/:id
func (h *CustomerHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	if err := h.customerService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RefreshTimestamps handles POST /customers/maintenance/refresh-timestamps
func (h *CustomerHandler) RefreshTimestamps(c *gin.Context) {
	n, err := h.customerService.RefreshTimestamps(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, RefreshResponse{Updated: n})
}
