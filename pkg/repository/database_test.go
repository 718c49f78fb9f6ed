package repository

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/kutbudev/todoflow/pkg/config"
	"github.com/kutbudev/todoflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestNewDatabaseSQLite(t *testing.T) {
	cfg := &config.Config{Database: config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "todo.db"),
	}}

	db, err := NewDatabase(cfg)
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, Health(db))

	for _, table := range []string{"todos", "categories", "tags", "users", "comments",
		"activity_logs", "notifications", "analytics", "todo_tags", "todo_assignees", models.DependencyJoinTable} {
		assert.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}
	assert.True(t, db.Migrator().HasColumn(models.DependencyJoinTable, "depends_on_id"))
}

func TestDialectorRejectsUnknownDriver(t *testing.T) {
	_, err := Dialector(config.DatabaseConfig{Driver: "mysql"}, "")
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestDialectorPostgresDriverName(t *testing.T) {
	d, err := Dialector(config.DatabaseConfig{Driver: "postgres", DriverName: "postgres"}, "host=x")
	require.NoError(t, err)

	pg, ok := d.(*postgres.Dialector)
	require.True(t, ok)
	assert.Equal(t, "postgres", pg.DriverName)
	assert.Equal(t, "postgres", d.Name())
}

func TestHealthReportsPingFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer sqlDB.Close()

	cfg := GormConfig(logger.Silent)
	cfg.DisableAutomaticPing = true
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), cfg)
	require.NoError(t, err)

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	err = Health(db)
	assert.ErrorContains(t, err, "connection refused")
	require.NoError(t, mock.ExpectationsWereMet())
}
