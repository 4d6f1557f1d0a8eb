package store

import (
	"database/sql"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// driver opens a dialector and tunes the connection pool for a backend.
type driver struct {
	open func(dsn string) gorm.Dialector
	tune func(db *sql.DB, dsn string)
}

var drivers = map[string]driver{
	"sqlite": {
		open: func(dsn string) gorm.Dialector { return sqlite.Open(sqliteDSN(dsn)) },
		tune: func(db *sql.DB, dsn string) {
			// Each connection to :memory: is a separate database, and a
			// single writer avoids SQLITE_BUSY on concurrent token writes.
			db.SetMaxOpenConns(1)
		},
	},
	"postgres": {
		open: postgres.Open,
		tune: func(db *sql.DB, _ string) {
			db.SetMaxOpenConns(25)
			db.SetMaxIdleConns(5)
		},
	},
}

// GetDialector returns a GORM dialector for the given driver name and DSN
func GetDialector(name, dsn string) (gorm.Dialector, error) {
	d, ok := drivers[name]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver: %s", name)
	}
	return d.open(dsn), nil
}

func tunePool(db *gorm.DB, name, dsn string) error {
	d, ok := drivers[name]
	if !ok || d.tune == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	d.tune(sqlDB, dsn)
	return nil
}

// sqliteDSN enables a busy timeout on file databases unless the DSN sets one.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "busy_timeout") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_busy_timeout=5000"
}
