package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/orbitnotes/orbit-cli/internal/contact"
	"github.com/orbitnotes/orbit-cli/internal/store"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		path := cfg.Store.Path
		if path == "" {
			path = "orbit.db"
		}
		return store.NewSQLite(path)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, cfg.Store.Pool)
	case "memory":
		return store.NewMemory(), nil
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func loadMergePolicy() (contact.Policy, error) {
	if cfg.Merge.PolicyPath == "" {
		return contact.Policy{}, nil
	}
	return contact.LoadPolicy(cfg.Merge.PolicyPath)
}
