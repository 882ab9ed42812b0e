//go:build !js

package storage

import (
	"fmt"
	"strings"

	"github.com/julianstephens/dayglow/internal/storage/jsonfile"
	"github.com/julianstephens/dayglow/internal/storage/memory"
	"github.com/julianstephens/dayglow/internal/storage/postgres"
	"github.com/julianstephens/dayglow/internal/storage/sqlite"
	"github.com/julianstephens/dayglow/internal/utils"
)

// IsPostgres reports whether dsn is a PostgreSQL connection URL.
func IsPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Open selects a backend from dsn:
//
//	memory | :memory:          in-process map
//	postgres://...             PostgreSQL (no embedded password)
//	*.json                     single JSON file
//	anything else              SQLite database path
func Open(dsn string) (*Store, error) {
	switch {
	case dsn == "memory" || dsn == ":memory:":
		return New(memory.New()), nil
	case IsPostgres(dsn):
		if err := postgres.ValidateConnString(dsn); err != nil {
			return nil, err
		}
		return OpenPostgres(dsn)
	}

	path, err := utils.ExpandPath(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve store path: %w", err)
	}

	if strings.HasSuffix(path, ".json") {
		fs := jsonfile.NewStore(path)
		if err := fs.Load(); err != nil {
			return nil, err
		}
		return New(fs), nil
	}

	db := sqlite.NewStore(path)
	if err := db.Init(); err != nil {
		return nil, err
	}
	return New(db), nil
}

// OpenPostgres connects with a trusted connection string, such as one read
// from the OS keyring, without the embedded-credential check.
func OpenPostgres(connStr string) (*Store, error) {
	db := postgres.New(connStr)
	if err := db.Init(); err != nil {
		return nil, err
	}
	return New(db), nil
}
