package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "ASC"},
		{"asc", "ASC"},
		{"ASC", "ASC"},
		{"desc", "DESC"},
		{"DESC", "DESC"},
		{"  Desc  ", "DESC"},
		{"sideways", "ASC"},
		{"DESC; DROP TABLE customers;--", "ASC"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortOrder(tt.input))
		})
	}
}

func TestValidateSortField(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty falls back", "", "id"},
		{"whitelisted column", "last_name", "last_name"},
		{"trimmed", "  email  ", "email"},
		{"case sensitive", "EMAIL", "id"},
		{"json name is not a column", "firstName", "id"},
		{"ssn is not sortable", "ssn", "id"},
		{"injection", "id; DROP TABLE customers;--", "id"},
		{"subquery", "id, (SELECT ssn FROM customers)", "id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortField(tt.input, CustomerSortFields, "id"))
		})
	}
}

func TestCustomerSortFields(t *testing.T) {
	for _, field := range []string{"id", "first_name", "last_name", "email", "status", "created_at", "updated_at"} {
		assert.True(t, CustomerSortFields[field], field)
	}
	assert.False(t, CustomerSortFields["ssn"])
	assert.False(t, CustomerSortFields["deleted_at"])
}
