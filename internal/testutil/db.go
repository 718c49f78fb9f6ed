package testutil

import (
	"path/filepath"
	"testing"

	"github.com/kutbudev/todoflow/pkg/config"
	"github.com/kutbudev/todoflow/pkg/repository"
	"gorm.io/gorm"
)

// NewTestDB opens a migrated sqlite database in a per-test temp directory.
// It automatically closes the database when the test completes.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := &config.Config{Database: config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "todoflow_test.db"),
	}}

	db, err := repository.NewDatabase(cfg)
	if err != nil {
		t.Fatalf("creating test database: %v", err)
	}

	t.Cleanup(func() {
		if err := repository.Close(db); err != nil {
			t.Errorf("closing test database: %v", err)
		}
	})

	return db
}
