package db

import (
	"fmt"
	"strings"
	"time"

	"court_filing_app_go/config"
	"court_filing_app_go/logger"

	"github.com/sirupsen/logrus"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

// Driver names reported by Backend
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendLibSQL   = "libsql"
)

// Backend picks the database driver from configuration.
// DATABASE_URL wins over TURSO_DATABASE_URL, which wins over the sqlite file.
func Backend(cfg *config.Config) string {
	switch {
	case cfg.DatabaseURL != "":
		return BackendPostgres
	case cfg.TursoDatabaseURL != "":
		return BackendLibSQL
	default:
		return BackendSQLite
	}
}

// Dialector builds the gorm dialector for the configured backend
func Dialector(cfg *config.Config) gorm.Dialector {
	switch Backend(cfg) {
	case BackendPostgres:
		return postgres.Open(cfg.DatabaseURL)
	case BackendLibSQL:
		dsn := cfg.TursoDatabaseURL
		if cfg.TursoAuthToken != "" && !strings.Contains(dsn, "authToken=") {
			sep := "?"
			if strings.Contains(dsn, "?") {
				sep = "&"
			}
			dsn = dsn + sep + "authToken=" + cfg.TursoAuthToken
		}
		return sqlite.New(sqlite.Config{DriverName: "libsql", DSN: dsn})
	default:
		// WAL mode for better concurrency support
		return sqlite.Open(cfg.DBPath + "?_journal_mode=WAL&_busy_timeout=5000")
	}
}

// NewGormLogger routes gorm's SQL logging through logrus
func NewGormLogger(environment string) gormlogger.Interface {
	level := gormlogger.Info
	if environment == "production" {
		level = gormlogger.Warn
	}
	if environment == "test" {
		level = gormlogger.Silent
	}
	return gormlogger.New(
		logger.Log.WithField("component", "gorm"),
		gormlogger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		},
	)
}

// Initialize opens the configured database and stores it in DB
func Initialize(cfg *config.Config) error {
	var err error

	// Case references are checked by the services; payment rows outlive deleted cases
	DB, err = gorm.Open(Dialector(cfg), &gorm.Config{
		Logger:                                   NewGormLogger(cfg.Environment),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{
		"backend": Backend(cfg),
	}).Info("Database connection established")
	return nil
}

// AutoMigrate runs database migrations for the provided models
func AutoMigrate(models ...interface{}) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	if err := DB.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Log.Info("Database migrations completed")
	return nil
}

// Close closes the database connection
func Close() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	return sqlDB.Close()
}
