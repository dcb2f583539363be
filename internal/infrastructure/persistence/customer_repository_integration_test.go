//go:build integration

package persistence

import (
	"context"
	"database/sql"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/customeridentity/backend/internal/domain/customer"
	"github.com/customeridentity/backend/internal/domain/shared"
	"github.com/customeridentity/backend/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// startPostgres runs a throwaway Postgres container, applies the schema under
// migrations/ and returns a gorm handle onto it.
func startPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("customers_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	migrateDB, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	m, err := migration.New(migrateDB, migrationsDir(t), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())
	status, err := m.Version()
	require.NoError(t, err)
	require.Equal(t, uint(2), status.Version)
	require.NoError(t, m.Close())

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func migrationsDir(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "migrations")
}

func newPostgresCustomer(t *testing.T, email, ssn string, addresses ...customer.Address) *customer.Customer {
	t.Helper()
	c, err := customer.NewCustomer(customer.Profile{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     email,
		SSN:       ssn,
		Phone:     "555-0100",
	}, addresses)
	require.NoError(t, err)
	return c
}

func TestGormCustomerRepository_Postgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres test in short mode")
	}

	db := startPostgres(t)
	repo := NewGormCustomerRepository(db)
	ctx := context.Background()

	home, err := customer.NewAddress("1 Main St", "Springfield", "IL", "62701", customer.AddressTypeHome)
	require.NoError(t, err)
	work, err := customer.NewAddress("2 Office Rd", "Springfield", "IL", "62702", customer.AddressTypeWork)
	require.NoError(t, err)

	t.Run("create persists addresses after the parent row", func(t *testing.T) {
		c := newPostgresCustomer(t, "create@example.com", "111-11-1111", home, work)
		require.NoError(t, repo.Create(ctx, c))
		require.NotZero(t, c.ID)

		found, err := repo.FindByID(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, customer.StatusPendingVerification, found.Status)
		require.Len(t, found.Addresses, 2)
		for _, a := range found.Addresses {
			assert.Equal(t, c.ID, a.CustomerID)
			assert.NotZero(t, a.ID)
		}
	})

	t.Run("partial unique indexes reject live duplicates", func(t *testing.T) {
		first := newPostgresCustomer(t, "dup@example.com", "222-22-2222")
		require.NoError(t, repo.Create(ctx, first))

		err := repo.Create(ctx, newPostgresCustomer(t, "dup@example.com", "222-22-3333"))
		assert.ErrorIs(t, err, customer.ErrDuplicateEmail)

		err = repo.Create(ctx, newPostgresCustomer(t, "other@example.com", "222-22-2222"))
		assert.ErrorIs(t, err, customer.ErrDuplicateSSN)
	})

	t.Run("soft delete hides the row and releases email and ssn", func(t *testing.T) {
		c := newPostgresCustomer(t, "gone@example.com", "333-33-3333", home)
		require.NoError(t, repo.Create(ctx, c))
		require.NoError(t, repo.SoftDelete(ctx, c.ID, time.Now()))

		_, err := repo.FindByID(ctx, c.ID)
		requireCode(t, err, "CUSTOMER_NOT_FOUND")
		requireCode(t, repo.SoftDelete(ctx, c.ID, time.Now()), "CUSTOMER_NOT_FOUND")

		var addressRows int64
		require.NoError(t, db.Table("addresses").Where("customer_id = ?", c.ID).Count(&addressRows).Error)
		assert.Equal(t, int64(1), addressRows)

		reuse := newPostgresCustomer(t, "gone@example.com", "333-33-3333")
		require.NoError(t, repo.Create(ctx, reuse))
		assert.NotEqual(t, c.ID, reuse.ID)
	})

	t.Run("update replaces the whole address set", func(t *testing.T) {
		c := newPostgresCustomer(t, "update@example.com", "444-44-4444", home, work)
		require.NoError(t, repo.Create(ctx, c))
		oldIDs := []int64{c.Addresses[0].ID, c.Addresses[1].ID}

		billing, err := customer.NewAddress("9 Bill Ave", "Shelbyville", "IL", "62565", customer.AddressTypeBilling)
		require.NoError(t, err)
		require.NoError(t, c.Update(customer.Profile{
			FirstName: "Grace",
			LastName:  "Hopper",
			Email:     "update@example.com",
			SSN:       "444-44-4444",
		}, []customer.Address{billing}))
		require.NoError(t, repo.Update(ctx, c))

		found, err := repo.FindByID(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, "Grace", found.FirstName)
		require.Len(t, found.Addresses, 1)
		assert.Equal(t, customer.AddressTypeBilling, found.Addresses[0].AddressType)
		assert.NotContains(t, oldIDs, found.Addresses[0].ID)
	})

	t.Run("update of a deleted customer is not found", func(t *testing.T) {
		c := newPostgresCustomer(t, "late@example.com", "555-55-5555")
		require.NoError(t, repo.Create(ctx, c))
		require.NoError(t, repo.SoftDelete(ctx, c.ID, time.Now()))

		requireCode(t, repo.Update(ctx, c), "CUSTOMER_NOT_FOUND")
	})

	t.Run("list and count only see live customers", func(t *testing.T) {
		total, err := repo.Count(ctx)
		require.NoError(t, err)

		page, err := repo.FindAll(ctx, shared.Filter{Page: 1, PageSize: 100, OrderBy: "id", OrderDir: "asc"})
		require.NoError(t, err)
		assert.Len(t, page, int(total))
		for i := 1; i < len(page); i++ {
			assert.Less(t, page[i-1].ID, page[i].ID)
		}
		for _, c := range page {
			assert.Nil(t, c.DeletedAt)
		}
	})

	t.Run("touch all refreshes live rows only", func(t *testing.T) {
		total, err := repo.Count(ctx)
		require.NoError(t, err)

		at := time.Now().Add(time.Hour).UTC().Truncate(time.Microsecond)
		touched, err := repo.TouchAll(ctx, at)
		require.NoError(t, err)
		assert.Equal(t, total, touched)
	})
}
