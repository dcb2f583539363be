package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainError_IsMatchesByCode(t *testing.T) {
	err := NewDomainError("NOT_FOUND", "customer 9 is gone")

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(fmt.Errorf("wrapped: %w", err), ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
}

func TestDomainError_WithDetailsDoesNotMutateReceiver(t *testing.T) {
	base := NewDomainError("VALIDATION_ERROR", "Validation failed")

	withDetails := base.WithDetails("email: required")

	assert.Empty(t, base.Details)
	assert.Equal(t, []string{"email: required"}, withDetails.Details)
	assert.Equal(t, base.Code, withDetails.Code)
}

func TestAsDomainError(t *testing.T) {
	de, ok := AsDomainError(fmt.Errorf("ctx: %w", ErrInvalidCredentials))
	require.True(t, ok)
	assert.Equal(t, "INVALID_CREDENTIALS", de.Code)

	_, ok = AsDomainError(errors.New("plain"))
	assert.False(t, ok)
}

func TestFilter_Normalize(t *testing.T) {
	f := Filter{Page: 0, PageSize: 1000, OrderDir: "sideways"}.Normalize()

	assert.Equal(t, 1, f.Page)
	assert.Equal(t, MaxPageSize, f.PageSize)
	assert.Equal(t, "asc", f.OrderDir)
	assert.Equal(t, 0, f.Offset())

	f = Filter{Page: 3, PageSize: 10, OrderDir: "desc"}.Normalize()
	assert.Equal(t, 20, f.Offset())
	assert.Equal(t, "desc", f.OrderDir)
}

func TestNewPaginated(t *testing.T) {
	p := NewPaginated[int](nil, 21, 2, 10)

	assert.NotNil(t, p.Items)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, int64(21), p.Total)
}
