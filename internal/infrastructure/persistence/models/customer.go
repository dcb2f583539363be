package models

import (
	"time"

	"github.com/customeridentity/backend/internal/domain/customer"
)

// CustomerModel is the persistence model for the Customer aggregate root.
// Email and SSN are unique among rows whose deleted_at is NULL only.
type CustomerModel struct {
	BaseModel
	FirstName string          `gorm:"type:varchar(100);not null"`
	LastName  string          `gorm:"type:varchar(100);not null"`
	Email     string          `gorm:"type:varchar(200);not null;uniqueIndex:idx_customers_email_active,where:deleted_at IS NULL"`
	SSN       string          `gorm:"column:ssn;type:varchar(20);not null;uniqueIndex:idx_customers_ssn_active,where:deleted_at IS NULL"`
	Phone     string          `gorm:"type:varchar(30)"`
	Status    customer.Status `gorm:"type:varchar(30);not null;default:'PENDING_VERIFICATION'"`
	DeletedAt *time.Time      `gorm:"index"`
	Addresses []AddressModel  `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer
func (m *CustomerModel) ToDomain() *customer.Customer {
	c := &customer.Customer{
		BaseEntity: m.BaseModel.ToDomain(),
		FirstName:  m.FirstName,
		LastName:   m.LastName,
		Email:      m.Email,
		SSN:        m.SSN,
		Phone:      m.Phone,
		Status:     m.Status,
		DeletedAt:  m.DeletedAt,
		Addresses:  make([]customer.Address, 0, len(m.Addresses)),
	}
	for i := range m.Addresses {
		c.Addresses = append(c.Addresses, m.Addresses[i].ToDomain())
	}
	return c
}

// FromDomain populates the persistence model from a domain Customer
func (m *CustomerModel) FromDomain(c *customer.Customer) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.FirstName = c.FirstName
	m.LastName = c.LastName
	m.Email = c.Email
	m.SSN = c.SSN
	m.Phone = c.Phone
	m.Status = c.Status
	m.DeletedAt = c.DeletedAt
	m.Addresses = AddressModelsFromDomain(c.Addresses)
}

// CustomerModelFromDomain creates a new persistence model from a domain Customer
func CustomerModelFromDomain(c *customer.Customer) *CustomerModel {
	m := &CustomerModel{}
	m.FromDomain(c)
	return m
}

// AddressModel is the persistence model for a customer address
type AddressModel struct {
	ID          int64                `gorm:"primaryKey;autoIncrement"`
	CustomerID  int64                `gorm:"not null;index"`
	Street      string               `gorm:"type:varchar(255)"`
	City        string               `gorm:"type:varchar(100)"`
	State       string               `gorm:"type:varchar(100)"`
	ZipCode     string               `gorm:"type:varchar(20)"`
	AddressType customer.AddressType `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (AddressModel) TableName() string {
	return "addresses"
}

// ToDomain converts the persistence model to a domain Address
func (m *AddressModel) ToDomain() customer.Address {
	return customer.Address{
		ID:          m.ID,
		CustomerID:  m.CustomerID,
		Street:      m.Street,
		City:        m.City,
		State:       m.State,
		ZipCode:     m.ZipCode,
		AddressType: m.AddressType,
	}
}

// FromDomain populates the persistence model from a domain Address
func (m *AddressModel) FromDomain(a customer.Address) {
	m.ID = a.ID
	m.CustomerID = a.CustomerID
	m.Street = a.Street
	m.City = a.City
	m.State = a.State
	m.ZipCode = a.ZipCode
	m.AddressType = a.AddressType
}

// AddressModelsFromDomain converts a domain address set
func AddressModelsFromDomain(addresses []customer.Address) []AddressModel {
	out := make([]AddressModel, len(addresses))
	for i, a := range addresses {
		out[i].FromDomain(a)
	}
	return out
}
