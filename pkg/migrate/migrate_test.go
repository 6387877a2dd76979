package migrate

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	require.NoError(t, ValidateDir("migrations"))
}

func TestShippedMigrationsDeclareConstraints(t *testing.T) {
	checks := map[string][]string{
		"*_create_payments.sql": {
			"CONSTRAINT payments_store_id_key UNIQUE (store_id)",
			"REFERENCES stores(id) ON DELETE CASCADE",
			"DROP TABLE IF EXISTS payments",
		},
		"*_create_newsletter_subscriptions.sql": {
			"CONSTRAINT newsletter_subscriptions_email_key UNIQUE (email)",
		},
		"*_create_users.sql": {
			"private_metadata JSONB NOT NULL",
			"CREATE TABLE IF NOT EXISTS user_email_addresses",
		},
		"*_create_products.sql": {
			"CHECK (category IN ('skateboards', 'clothing', 'shoes', 'accessories'))",
			"idx_products_lower_name",
		},
	}

	for pattern, wants := range checks {
		matches, err := filepath.Glob(filepath.Join("migrations", pattern))
		require.NoError(t, err)
		require.Len(t, matches, 1, pattern)

		data, err := os.ReadFile(matches[0])
		require.NoError(t, err)
		for _, want := range wants {
			require.True(t, strings.Contains(string(data), want), "%s missing %q", matches[0], want)
		}
	}
}

func TestValidateDirRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()
	require.Error(t, ValidateDir(dir), "empty dir should fail")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad-name.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	require.Error(t, ValidateDir(dir))

	dir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20250101000000_no_down.sql"), []byte("-- +goose Up\n"), 0o644))
	require.Error(t, ValidateDir(dir))
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()

	path, err := CreateSQLMigration(dir, "Add Product Images!")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(path, "_add_product_images.sql"), path)
	require.NoError(t, ValidateDir(dir))

	_, err = CreateSQLMigration(dir, "!!!")
	require.Error(t, err)
}

func TestCreateSQLMigrationBumpsPastLatestVersion(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	first, err := createSQLMigration(dir, "create carts", now)
	require.NoError(t, err)
	second, err := createSQLMigration(dir, "create cart lines", now)
	require.NoError(t, err)

	require.Equal(t, "20250301120000_create_carts.sql", filepath.Base(first))
	require.Equal(t, "20250301120001_create_cart_lines.sql", filepath.Base(second))

	latest, err := LatestVersion(dir)
	require.NoError(t, err)
	require.EqualValues(t, 20250301120001, latest)
}

func TestParseVersion(t *testing.T) {
	version, err := ParseVersion("20250301120400")
	require.NoError(t, err)
	require.EqualValues(t, 20250301120400, version)

	for _, raw := range []string{"", "2025", "2025030112040x", "202503011204001"} {
		_, err := ParseVersion(raw)
		require.Error(t, err, raw)
	}
}

func TestLatestVersionMissingDir(t *testing.T) {
	latest, err := LatestVersion(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	require.Zero(t, latest)
}

func TestValidateDirReportsEveryProblem(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"20250101000000_swapped.sql":    "-- +goose Down\n-- +goose Up\n",
		"20250101000001_unbalanced.sql": "-- +goose Up\n-- +goose StatementBegin\n-- +goose Down\n",
		"20250101000001_zdupe.sql":      "-- +goose Up\n-- +goose Down\n",
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}

	err := ValidateDir(dir)
	require.Error(t, err)
	require.Len(t, multierr.Errors(err), 3, err.Error())
}

func TestValidateDirChecksSectionsPastBadFilenames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "add_carts.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20250101000000_no_down.sql"), []byte("-- +goose Up\nSELECT 1;\n"), 0o644))

	err := ValidateDir(dir)
	require.Error(t, err)
	require.Len(t, multierr.Errors(err), 2, err.Error())
	require.Contains(t, err.Error(), "add_carts.sql")
	require.Contains(t, err.Error(), "missing")
}

func TestValidateDirMissingDir(t *testing.T) {
	err := ValidateDir(filepath.Join(t.TempDir(), "absent"))
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestMaybeRunDevAutoMigratesSQLite(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:migrate_autorun?mode=memory&cache=shared"), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	cfg := &config.Config{
		App:          config.AppConfig{Env: config.AppEnvDev},
		DB:           config.DBConfig{Driver: config.DBDriverSQLite},
		FeatureFlags: config.FeatureFlagsConfig{AutoMigrate: true},
	}
	logg := logger.New(logger.Options{ServiceName: "test", Output: os.Stderr})

	require.NoError(t, MaybeRunDev(context.Background(), cfg, logg, db.NewFromGorm(conn)))
	for _, table := range []string{"users", "user_email_addresses", "stores", "payments", "newsletter_subscriptions", "products"} {
		require.True(t, conn.Migrator().HasTable(table), table)
	}
}

func TestMaybeRunDevSkipsOutsideDev(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: config.AppEnvProd}, FeatureFlags: config.FeatureFlagsConfig{AutoMigrate: true}}
	require.NoError(t, MaybeRunDev(context.Background(), cfg, nil, nil))
}
