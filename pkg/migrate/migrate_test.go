package migrate

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := fs.Glob(Embedded(), "migrations/*_"+suffix+".sql")
	require.NoError(t, err)
	require.Len(t, matches, 1, "expected exactly one %s migration", suffix)

	data, err := fs.ReadFile(Embedded(), matches[0])
	require.NoError(t, err)
	return string(data)
}

func TestDrugsMigrationGuardsStock(t *testing.T) {
	content := readMigration(t, "create_drugs")
	for _, sub := range []string{
		"CREATE TABLE IF NOT EXISTS drugs",
		"name TEXT PRIMARY KEY",
		"CHECK (quantity >= 0)",
		"price NUMERIC(12,2) NOT NULL",
		"DROP TABLE IF EXISTS drugs",
	} {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestCartLinesMigrationIsUniquePerCustomerDrug(t *testing.T) {
	content := readMigration(t, "create_cart_lines")
	for _, sub := range []string{
		"PRIMARY KEY (customer_id, drug_name)",
		"REFERENCES drugs(name)",
		"CHECK (quantity > 0)",
	} {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestPurchasesMigrationCarriesReminderState(t *testing.T) {
	content := readMigration(t, "create_purchases")
	for _, sub := range []string{
		"course_end_date TEXT",
		"last_reminder_sent TEXT",
		"reminders_sent INTEGER NOT NULL DEFAULT 0",
		"completed BOOLEAN NOT NULL DEFAULT FALSE",
		"UNIQUE (order_id, drug_name)",
		"idx_purchases_reminder_scan",
	} {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestEmbeddedMigrationsValidate(t *testing.T) {
	sub, err := fs.Sub(Embedded(), "migrations")
	require.NoError(t, err)
	require.NoError(t, ValidateFS(sub))
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "001_bad.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))

	err := ValidateDir(dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid migration filename")
}

func TestValidateDirRequiresGooseHeaders(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20251002093000_drugs.sql"), []byte("-- +goose Up\n"), 0o644))

	err := ValidateDir(dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "+goose Down")
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2025, 10, 14, 8, 30, 0, 0, time.UTC)

	path, err := createSQLMigrationAt(dir, "Add Drug Barcode!", now)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "20251014083000_add_drug_barcode.sql"), path)
	require.NoError(t, ValidateDir(dir))

	_, err = createSQLMigrationAt(dir, "add drug barcode", now)
	require.Error(t, err, "same version must not be overwritten")

	_, err = createSQLMigrationAt(dir, "!!!", now)
	require.Error(t, err)
}
