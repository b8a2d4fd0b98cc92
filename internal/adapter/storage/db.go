package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// WAL and busy_timeout let concurrent writers queue instead of failing with
// SQLITE_BUSY. _time_format keeps stored timestamps comparable as text.
const sqliteParams = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_time_format=sqlite"

type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Open connects to driver at dsn and verifies the connection with a ping.
func Open(ctx context.Context, driver, dsn string, pool PoolConfig) (*sqlx.DB, error) {
	normalized, err := NormalizeDSN(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(driver, normalized)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if pool.MaxOpenConns > 0 {
		db.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		db.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}

// NormalizeDSN forces the connection options the adapter depends on. MySQL
// needs parsed UTC times and found-rows semantics so that an UPDATE that
// matches a row without changing it still counts as affected.
func NormalizeDSN(driver, dsn string) (string, error) {
	switch driver {
	case DriverMySQL:
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return "", fmt.Errorf("parse mysql dsn: %w", err)
		}
		cfg.ParseTime = true
		cfg.Loc = time.UTC
		cfg.ClientFoundRows = true
		return cfg.FormatDSN(), nil
	case DriverSQLite:
		if dsn == "" {
			return "", fmt.Errorf("sqlite dsn is empty")
		}
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		return dsn + sep + sqliteParams, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}
