// Package sqlite opens a single-connection SQLite database for local runs and
// tests. Use ":memory:" for a throwaway database.
package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"todo-api/internal/platform/gormconf"
)

// foreignKeys is applied by the driver on every new connection.
const foreignKeys = "_pragma=foreign_keys(1)"

func New(ctx context.Context, path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(DSN(path)), gormconf.Config())
	if err != nil {
		return nil, fmt.Errorf("open sqlite failed: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sqlite sql db failed: %w", err)
	}

	// One connection: an in-memory database lives and dies with it, and
	// SQLite serialises writers anyway.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)
	sqlDB.SetConnMaxIdleTime(0)

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping sqlite failed: %w", err)
	}

	return db, nil
}

// DSN appends the foreign key pragma to path, keeping any query it already has.
func DSN(path string) string {
	if strings.Contains(path, foreignKeys) {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + foreignKeys
}
