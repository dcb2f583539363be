package auth

import (
	"fmt"
	"slices"

	"github.com/customeridentity/backend/internal/domain/identity"
	"github.com/customeridentity/backend/internal/infrastructure/config"
)

// Directory is the fixed, read-only user table built once at startup.
// Lookups hand out copies so callers cannot alter the stored entries.
type Directory struct {
	users map[string]identity.Credential
}

var _ identity.Directory = (*Directory)(nil)

// NewDirectory hashes the seed passwords and builds the table
func NewDirectory(hasher *PasswordHasher, seeds []config.UserSeed) (*Directory, error) {
	users := make(map[string]identity.Credential, len(seeds))
	for _, seed := range seeds {
		if _, exists := users[seed.Username]; exists {
			return nil, fmt.Errorf("duplicate user %q in directory seed", seed.Username)
		}
		hash, err := hasher.Hash(seed.Password)
		if err != nil {
			return nil, fmt.Errorf("seed user %q: %w", seed.Username, err)
		}
		users[seed.Username] = identity.Credential{
			Username:     seed.Username,
			PasswordHash: hash,
			Roles:        slices.Clone(seed.Roles),
			Disabled:     seed.Disabled,
			Locked:       seed.Locked,
		}
	}
	return &Directory{users: users}, nil
}

// FindByUsername returns a copy of the credential for an exact username match
func (d *Directory) FindByUsername(username string) (identity.Credential, error) {
	c, ok := d.users[username]
	if !ok {
		return identity.Credential{}, identity.ErrUserNotFound
	}
	return c.Clone(), nil
}

// Usernames lists the seeded usernames in sorted order
func (d *Directory) Usernames() []string {
	names := make([]string, 0, len(d.users))
	for name := range d.users {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
