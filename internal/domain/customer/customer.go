package customer

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/customeridentity/backend/internal/domain/shared"
)

// Status represents the lifecycle status of a customer
type Status string

const (
	StatusPendingVerification Status = "PENDING_VERIFICATION"
	StatusActive              Status = "ACTIVE"
	StatusSuspended           Status = "SUSPENDED"
	StatusInactive            Status = "INACTIVE"
)

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	switch s {
	case StatusPendingVerification, StatusActive, StatusSuspended, StatusInactive:
		return true
	}
	return false
}

// AddressType classifies an address
type AddressType string

const (
	AddressTypeHome     AddressType = "HOME"
	AddressTypeBilling  AddressType = "BILLING"
	AddressTypeShipping AddressType = "SHIPPING"
	AddressTypeWork     AddressType = "WORK"
)

// IsValid reports whether t is a known address type
func (t AddressType) IsValid() bool {
	switch t {
	case AddressTypeHome, AddressTypeBilling, AddressTypeShipping, AddressTypeWork:
		return true
	}
	return false
}

// Address is owned by exactly one customer and refers to it by id only.
type Address struct {
	ID          int64
	CustomerID  int64
	Street      string
	City        string
	State       string
	ZipCode     string
	AddressType AddressType
}

// NewAddress creates an address that is not yet attached to a customer
func NewAddress(street, city, state, zipCode string, addressType AddressType) (Address, error) {
	if !addressType.IsValid() {
		return Address{}, shared.NewDomainError("VALIDATION_ERROR", "Invalid address type").
			WithDetails(fmt.Sprintf("addressType: must be one of %s", strings.Join(addressTypeNames(), ", ")))
	}
	if len(street) > 255 || len(city) > 100 || len(state) > 100 || len(zipCode) > 20 {
		return Address{}, shared.NewDomainError("VALIDATION_ERROR", "Address field exceeds maximum length")
	}
	return Address{
		Street:      street,
		City:        city,
		State:       state,
		ZipCode:     zipCode,
		AddressType: addressType,
	}, nil
}

// Profile holds the mutable identity fields of a customer
type Profile struct {
	FirstName string
	LastName  string
	Email     string
	SSN       string
	Phone     string
}

// Customer is the aggregate root of the customer context.
// A non-nil DeletedAt hides the customer from every normal read.
type Customer struct {
	shared.BaseEntity
	FirstName string
	LastName  string
	Email     string
	SSN       string
	Phone     string
	Status    Status
	DeletedAt *time.Time
	Addresses []Address
}

// NewCustomer creates a customer pending verification
func NewCustomer(profile Profile, addresses []Address) (*Customer, error) {
	profile = normalizeProfile(profile)
	if err := validateProfile(profile); err != nil {
		return nil, err
	}

	c := &Customer{
		BaseEntity: shared.NewBaseEntity(time.Now()),
		Status:     StatusPendingVerification,
	}
	c.applyProfile(profile)
	c.ReplaceAddresses(addresses)
	return c, nil
}

// Update overwrites every mutable field and replaces the address set
func (c *Customer) Update(profile Profile, addresses []Address) error {
	if c.IsDeleted() {
		return shared.ErrNotFound
	}
	profile = normalizeProfile(profile)
	if err := validateProfile(profile); err != nil {
		return err
	}

	c.applyProfile(profile)
	c.ReplaceAddresses(addresses)
	c.Touch(time.Now())
	return nil
}

// ChangeStatus moves the customer to the given status
func (c *Customer) ChangeStatus(status Status) error {
	if !status.IsValid() {
		return shared.NewDomainError("VALIDATION_ERROR", "Invalid customer status").
			WithDetails(fmt.Sprintf("status: unknown value %q", status))
	}
	if c.Status == status {
		return nil
	}
	c.Status = status
	c.Touch(time.Now())
	return nil
}

// ReplaceAddresses discards the current address set and adopts the given one.
// The new addresses lose any previous identity and are bound to this customer.
func (c *Customer) ReplaceAddresses(addresses []Address) {
	replaced := make([]Address, 0, len(addresses))
	for _, a := range addresses {
		a.ID = 0
		a.CustomerID = c.ID
		replaced = append(replaced, a)
	}
	c.Addresses = replaced
}

// SoftDelete marks the customer deleted at the given time
func (c *Customer) SoftDelete(at time.Time) error {
	if c.IsDeleted() {
		return shared.ErrNotFound
	}
	c.DeletedAt = &at
	c.Touch(at)
	return nil
}

// IsDeleted reports whether the customer has been soft-deleted
func (c *Customer) IsDeleted() bool {
	return c.DeletedAt != nil
}

func (c *Customer) applyProfile(p Profile) {
	c.FirstName = p.FirstName
	c.LastName = p.LastName
	c.Email = p.Email
	c.SSN = p.SSN
	c.Phone = p.Phone
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

var phonePattern = regexp.MustCompile(`^[\d\s\-\(\)\+\.]+$`)

func normalizeProfile(p Profile) Profile {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Email = strings.TrimSpace(p.Email)
	p.SSN = strings.TrimSpace(p.SSN)
	p.Phone = strings.TrimSpace(p.Phone)
	return p
}

// validateProfile collects one detail per offending field
func validateProfile(p Profile) error {
	var details []string

	switch {
	case p.FirstName == "":
		details = append(details, "firstName: must not be blank")
	case len(p.FirstName) > 100:
		details = append(details, "firstName: must be at most 100 characters")
	}
	switch {
	case p.LastName == "":
		details = append(details, "lastName: must not be blank")
	case len(p.LastName) > 100:
		details = append(details, "lastName: must be at most 100 characters")
	}
	switch {
	case p.Email == "":
		details = append(details, "email: must not be blank")
	case len(p.Email) > 200 || !emailPattern.MatchString(p.Email):
		details = append(details, "email: must be a well-formed email address")
	}
	switch {
	case p.SSN == "":
		details = append(details, "ssn: must not be blank")
	case len(p.SSN) > 20:
		details = append(details, "ssn: must be at most 20 characters")
	}
	if p.Phone != "" && (len(p.Phone) > 30 || !phonePattern.MatchString(p.Phone)) {
		details = append(details, "phone: invalid phone number format")
	}

	if len(details) > 0 {
		return shared.NewDomainError("VALIDATION_ERROR", "Validation failed").WithDetails(details...)
	}
	return nil
}

func addressTypeNames() []string {
	return []string{
		string(AddressTypeHome),
		string(AddressTypeBilling),
		string(AddressTypeShipping),
		string(AddressTypeWork),
	}
}
