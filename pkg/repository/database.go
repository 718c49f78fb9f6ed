package repository

import (
	"fmt"
	"time"

	"github.com/kutbudev/todoflow/pkg/config"
	"github.com/kutbudev/todoflow/pkg/models"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// sqliteDriverName is the database/sql name registered by modernc.org/sqlite.
const sqliteDriverName = "sqlite"

// NewDatabase creates a new database connection and migrates the schema.
func NewDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	// Auto migrate the schema
	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to auto migrate: %w", err)
	}
	return db, nil
}

// Open connects to the configured database without touching the schema.
func Open(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := Dialector(cfg.Database, cfg.GetDatabaseDSN())
	if err != nil {
		return nil, err
	}

	// GORM logger konfigürasyonu
	logLevel := logger.Warn
	if cfg.Database.Debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dialector, GormConfig(logLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Connection pool ayarları
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get SQL DB: %w", err)
	}
	if cfg.Database.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	}
	if cfg.Database.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	}

	return db, nil
}

// Dialector picks the gorm dialector for the configured driver.
func Dialector(cfg config.DatabaseConfig, dsn string) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "postgres":
		// DriverName "postgres" routes through lib/pq instead of pgx.
		return postgres.New(postgres.Config{
			DriverName: cfg.DriverName,
			DSN:        dsn,
		}), nil
	case "sqlite":
		return sqlite.New(sqlite.Config{
			DriverName: sqliteDriverName,
			DSN:        SQLiteDSN(cfg.Path),
		}), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// SQLiteDSN adds the pragmas todoflow relies on to a sqlite file path.
func SQLiteDSN(path string) string {
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
}

// GormConfig is shared by every connection. Foreign keys are not created by
// migration; the service layer owns cascades so that deleting a todo leaves
// subtasks and dependents in place.
func GormConfig(level logger.LogLevel) *gorm.Config {
	return &gorm.Config{
		Logger:                                   logger.Default.LogMode(level),
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// AutoMigrate runs auto migration for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}

// Close closes the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Health pings the database.
func Health(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
