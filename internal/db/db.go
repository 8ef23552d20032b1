package db

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vyaparsetu/portal/internal/models"
)

const sqliteParams = "_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

// Open connects to sqlite (dsn is a file path) or postgres (dsn is a
// connection string) and migrates the schema.
func Open(driver, dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	var (
		conn *gorm.DB
		err  error
	)
	switch driver {
	case "postgres":
		conn, err = gorm.Open(postgres.Open(dsn), cfg)
	case "sqlite", "firestore", "":
		// firestore deployments still keep identity accounts in a local sqlite file
		conn, err = gorm.Open(sqlite.Open(SQLiteDSN(dsn)), cfg)
	default:
		return nil, fmt.Errorf("unknown database driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if conn.Dialector.Name() == "sqlite" {
		// SQLite works best with a single writer; cap the pool accordingly.
		sqlDB, err := conn.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
	}

	if err := Migrate(conn); err != nil {
		return nil, err
	}
	return conn, nil
}

// SQLiteDSN appends the WAL/busy-timeout parameters unless the path already carries a query.
func SQLiteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?" + sqliteParams
}

// Migrate creates or updates every table the application uses.
func Migrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(
		&models.AgentRecord{},
		&models.RegistrationRecord{},
		&models.Account{},
		&models.Session{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	// Drop the index older schemas created; every registrations read is
	// served by the (agent_id, id) primary key.
	if err := conn.Exec("DROP INDEX IF EXISTS idx_reg_agent_created").Error; err != nil {
		return fmt.Errorf("drop index: %w", err)
	}
	return nil
}
