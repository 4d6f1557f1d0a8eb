package bootstrap

import (
	"context"
	"fmt"
	"log"

	"github.com/go-authgate/applink/internal/config"
	"github.com/go-authgate/applink/internal/store"
)

// initializeDatabase opens the database and runs migrations. Opening is
// abandoned once DBInitTimeout elapses.
func initializeDatabase(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.DBInitTimeout)
	defer cancel()

	type result struct {
		db  *store.Store
		err error
	}
	done := make(chan result, 1)
	go func() {
		db, err := store.New(cfg.DatabaseDriver, cfg.DatabaseDSN, cfg)
		done <- result{db, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", r.err)
		}
		log.Printf("Database initialized (driver: %s)", cfg.DatabaseDriver)
		return r.db, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("failed to initialize database: %w", ctx.Err())
	}
}
