// Package store implements the remote document collection of watched stocks.
package store

import (
	"fmt"

	"github.com/bestchoice-b3/b3-daily/internal/contracts"
	"github.com/bestchoice-b3/b3-daily/pkg/config"
	"github.com/bestchoice-b3/b3-daily/pkg/database"
	"github.com/bestchoice-b3/b3-daily/pkg/logger"
)

var (
	_ contracts.StockStore = (*PostgresStore)(nil)
	_ contracts.StockStore = (*MemoryStore)(nil)
)

// New returns the store selected by STORE_BACKEND. db may be nil for memory.
func New(cfg *config.Config, db *database.DB, log *logger.Logger) (contracts.StockStore, error) {
	switch cfg.StoreBackend {
	case "memory":
		return NewMemoryStore(), nil
	case "postgres":
		if db == nil {
			return nil, fmt.Errorf("postgres store requires a database connection")
		}
		return NewPostgresStore(db.Pool, log), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
