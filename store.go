package auth

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
)

// NewCredentialStore builds the backend selected by configuration. The bun
// store owns its records in SQL; the GraphQL store fronts a remote graph
// database and authenticates to it with fresh admin tokens.
func NewCredentialStore(ctx context.Context, cfg *Config, tokens TokenIssuer, logger Logger) (CredentialStore, error) {
	switch cfg.StoreBackend {
	case StoreBackendSQLite:
		db, err := OpenDatabase(cfg)
		if err != nil {
			return nil, err
		}

		store := NewBunStore(db)
		if err := store.Init(ctx); err != nil {
			return nil, err
		}
		return store, nil
	case StoreBackendGraphQL:
		return NewGraphQLStore(cfg, tokens, logger), nil
	}

	return nil, goerrors.New("unsupported store backend: "+cfg.StoreBackend, goerrors.CategoryBadInput)
}
