// Package identity holds the credential and principal types used by authentication.
package identity

import (
	"slices"
	"time"

	"github.com/customeridentity/backend/internal/domain/shared"
)

const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// ErrUserNotFound is returned by a Directory for an unknown username
var ErrUserNotFound = shared.NewDomainError("USER_NOT_FOUND", "User not found")

// Credential is a directory entry. It is never mutated after the directory is built.
type Credential struct {
	Username     string
	PasswordHash string
	Roles        []string
	Disabled     bool
	Locked       bool
}

// CanAuthenticate reports whether the account may log in at all
func (c Credential) CanAuthenticate() bool {
	return !c.Disabled && !c.Locked
}

// Clone returns a deep copy of the credential
func (c Credential) Clone() Credential {
	c.Roles = slices.Clone(c.Roles)
	return c
}

// Directory answers credential lookups by exact, case-sensitive username.
type Directory interface {
	FindByUsername(username string) (Credential, error)
}

// Principal is the authenticated identity attached to a single request
type Principal struct {
	Username  string
	Roles     []string
	TokenID   string
	ExpiresAt time.Time
}
