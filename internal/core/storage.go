package core

import (
	"compath/internal/infra/persistence/memory"
	"compath/internal/infra/persistence/postgres"
	"compath/internal/infra/persistence/sqlite"
	"compath/pkg/domain"
	"fmt"
	"os"
)

// StorageDriver identifies a concrete persistent storage implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// OpenStore selects a backend using environment variables. Defaults to
// sqlite when unset.
//
//	COMPATH_STORAGE_DRIVER: memory|sqlite|postgres (default sqlite)
//	COMPATH_SQLITE_PATH: path to sqlite file (default ./compath.db)
//	COMPATH_POSTGRES_DSN: postgres DSN when driver=postgres
func OpenStore() (domain.Store, error) {
	driver := os.Getenv("COMPATH_STORAGE_DRIVER")
	if driver == "" {
		driver = string(StorageSQLite)
	}
	switch StorageDriver(driver) {
	case StorageMemory:
		return memory.NewStore(), nil
	case StorageSQLite:
		path := os.Getenv("COMPATH_SQLITE_PATH")
		return sqlite.NewStore(path, sqlite.DefaultBindings())
	case StoragePostgres:
		dsn := os.Getenv("COMPATH_POSTGRES_DSN")
		return postgres.NewStore(dsn, postgres.DefaultBindings())
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
