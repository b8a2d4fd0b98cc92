package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations
var migrationsFS embed.FS

type migrateLogger struct {
	sugar *zap.SugaredLogger
}

func (l migrateLogger) Printf(format string, v ...interface{}) {
	l.sugar.Infof(format, v...)
}

func (l migrateLogger) Verbose() bool { return false }

// MigrateUp applies every pending migration for driver.
func MigrateUp(driver, dsn string, logger *zap.Logger) error {
	m, err := newMigrator(driver, dsn, logger)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// MigrateDown rolls back steps migrations, or all of them when steps <= 0.
func MigrateDown(driver, dsn string, steps int, logger *zap.Logger) error {
	m, err := newMigrator(driver, dsn, logger)
	if err != nil {
		return err
	}
	defer m.Close()

	if steps > 0 {
		err = m.Steps(-steps)
	} else {
		err = m.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

// newMigrator uses a dedicated connection; closing the migrator closes it.
func newMigrator(driver, dsn string, logger *zap.Logger) (*migrate.Migrate, error) {
	normalized, err := migrationDSN(driver, dsn)
	if err != nil {
		return nil, err
	}

	src, err := iofs.New(migrationsFS, "migrations/"+driver)
	if err != nil {
		return nil, fmt.Errorf("load migrations: %w", err)
	}

	db, err := sql.Open(driver, normalized)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	var target database.Driver
	switch driver {
	case DriverMySQL:
		target, err = migratemysql.WithInstance(db, &migratemysql.Config{})
	case DriverSQLite:
		target, err = migratesqlite.WithInstance(db, &migratesqlite.Config{})
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, driver, target)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init migrations: %w", err)
	}
	if logger != nil {
		m.Log = migrateLogger{sugar: logger.Sugar()}
	}
	return m, nil
}

// migrationDSN is NormalizeDSN plus multiStatements for MySQL, which
// golang-migrate needs to run a multi-statement file in one Exec. Request
// connections never get it.
func migrationDSN(driver, dsn string) (string, error) {
	normalized, err := NormalizeDSN(driver, dsn)
	if err != nil || driver != DriverMySQL {
		return normalized, err
	}

	cfg, err := mysql.ParseDSN(normalized)
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.MultiStatements = true
	return cfg.FormatDSN(), nil
}
