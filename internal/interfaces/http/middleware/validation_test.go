package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testAddress struct {
	AddressType string `json:"addressType" binding:"required,oneof=HOME WORK"`
}

type testRequest struct {
	Email     string        `json:"email" binding:"required,email"`
	FirstName string        `json:"firstName" binding:"required,max=5"`
	Page      int           `form:"page" binding:"omitempty,min=1"`
	Addresses []testAddress `json:"addresses" binding:"omitempty,dive"`
}

func bindTestRequest(t *testing.T, body string) error {
	t.Helper()
	SetupValidator()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var req testRequest
	return c.ShouldBindJSON(&req)
}

func TestValidationDetails(t *testing.T) {
	err := bindTestRequest(t, `{"email":"not-an-email","firstName":"Bartholomew"}`)
	require.Error(t, err)

	details := ValidationDetails(err)
	assert.ElementsMatch(t, []string{
		"email: Invalid email format",
		"firstName: Must be at most 5 characters",
	}, details)
}

func TestValidationDetails_Required(t *testing.T) {
	err := bindTestRequest(t, `{}`)
	require.Error(t, err)

	assert.ElementsMatch(t, []string{
		"email: This field is required",
		"firstName: This field is required",
	}, ValidationDetails(err))
}

func TestValidationDetails_NestedField(t *testing.T) {
	err := bindTestRequest(t, `{"email":"a@b.co","firstName":"Ann","addresses":[{"addressType":"MOON"}]}`)
	require.Error(t, err)

	assert.Equal(t, []string{"addresses[0].addressType: Must be one of: HOME WORK"}, ValidationDetails(err))
}

func TestValidationDetails_NotValidationError(t *testing.T) {
	assert.Nil(t, ValidationDetails(errors.New("boom")))
	assert.Nil(t, ValidationDetails(nil))
}
