// Package dbtest opens isolated sqlite databases with the storefront schema
// for repository and service tests.
package dbtest

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/migrate"
)

// Open returns a fresh in-memory database migrated with the gorm models.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := migrate.AutoMigrateModels(conn); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return conn
}

// MustCreateUser inserts a directory user with one email address, which is
// primary. metadata may be nil.
func MustCreateUser(t testing.TB, conn *gorm.DB, id, email string, verified bool, metadata map[string]any) *models.User {
	t.Helper()
	emailID := "idn_" + id
	first := "Test"
	user := &models.User{
		ID:                    id,
		FirstName:             &first,
		PrimaryEmailAddressID: &emailID,
		PrivateMetadata:       metadata,
		EmailAddresses: []models.UserEmailAddress{
			{ID: emailID, EmailAddress: email, Verified: verified},
		},
	}
	if err := conn.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// MustCreateStore inserts a store owned by userID.
func MustCreateStore(t testing.TB, conn *gorm.DB, userID, name string) *models.Store {
	t.Helper()
	store := &models.Store{UserID: userID, Name: name}
	if err := conn.Create(store).Error; err != nil {
		t.Fatalf("create store: %v", err)
	}
	return store
}

// MustCreatePayment inserts the payment row of a store.
func MustCreatePayment(t testing.TB, conn *gorm.DB, storeID int64, accountID *string, detailsSubmitted bool) *models.Payment {
	t.Helper()
	payment := &models.Payment{StoreID: storeID, StripeAccountID: accountID, DetailsSubmitted: detailsSubmitted}
	if err := conn.Create(payment).Error; err != nil {
		t.Fatalf("create payment: %v", err)
	}
	return payment
}
