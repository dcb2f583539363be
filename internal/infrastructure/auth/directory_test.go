package auth

import (
	"testing"

	"github.com/customeridentity/backend/internal/domain/identity"
	"github.com/customeridentity/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	first, err := h.Hash("admin123")
	require.NoError(t, err)
	second, err := h.Hash("admin123")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "salt must differ per hash")
	assert.True(t, h.Verify("admin123", first))
	assert.True(t, h.Verify("admin123", second))
	assert.False(t, h.Verify("admin124", first))
	assert.False(t, h.Verify("admin123", "not-a-hash"))
}

func TestNewPasswordHasher_FallsBackToDefaultCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(99).cost)
}

func newTestDirectory(t *testing.T) *Directory {
	t.Helper()
	dir, err := NewDirectory(NewPasswordHasher(bcrypt.MinCost), config.DefaultUsers())
	require.NoError(t, err)
	return dir
}

func TestDirectory_FindByUsername(t *testing.T) {
	dir := newTestDirectory(t)
	hasher := NewPasswordHasher(bcrypt.MinCost)

	t.Run("finds every seeded account", func(t *testing.T) {
		for _, seed := range config.DefaultUsers() {
			cred, err := dir.FindByUsername(seed.Username)
			require.NoError(t, err)
			assert.Equal(t, seed.Username, cred.Username)
			assert.True(t, hasher.Verify(seed.Password, cred.PasswordHash))
			assert.True(t, cred.CanAuthenticate())
		}
	})

	t.Run("is case sensitive", func(t *testing.T) {
		_, err := dir.FindByUsername("Admin")
		assert.ErrorIs(t, err, identity.ErrUserNotFound)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := dir.FindByUsername("mallory")
		assert.ErrorIs(t, err, identity.ErrUserNotFound)
	})

	t.Run("returns copies", func(t *testing.T) {
		cred, err := dir.FindByUsername("admin")
		require.NoError(t, err)
		cred.Roles[0] = "HACKED"
		cred.Disabled = true

		again, err := dir.FindByUsername("admin")
		require.NoError(t, err)
		assert.Equal(t, []string{"ADMIN", "USER"}, again.Roles)
		assert.False(t, again.Disabled)
	})
}

func TestDirectory_Usernames(t *testing.T) {
	dir := newTestDirectory(t)

	assert.Equal(t, []string{"admin", "demo", "user"}, dir.Usernames())
}

func TestNewDirectory_RejectsDuplicates(t *testing.T) {
	_, err := NewDirectory(NewPasswordHasher(bcrypt.MinCost), []config.UserSeed{
		{Username: "a", Password: "x"},
		{Username: "a", Password: "y"},
	})
	assert.Error(t, err)
}

func TestNewDirectory_KeepsAccountFlags(t *testing.T) {
	dir, err := NewDirectory(NewPasswordHasher(bcrypt.MinCost), []config.UserSeed{
		{Username: "locked", Password: "x", Locked: true},
	})
	require.NoError(t, err)

	cred, err := dir.FindByUsername("locked")
	require.NoError(t, err)
	assert.False(t, cred.CanAuthenticate())
}
