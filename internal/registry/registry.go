// Package registry manages the named document types that partition the
// shared index and result tables. It is thin CRUD over the store, required
// by both the indexer and the query engine.
package registry

import (
	"context"
	"log/slog"

	"github.com/searchcore/fulltext/internal/store"
	"github.com/searchcore/fulltext/pkg/errors"
	"github.com/searchcore/fulltext/pkg/logger"
)

// Registry resolves document type names to their stable integer ids.
type Registry struct {
	store  store.Store
	logger *slog.Logger
}

// New wraps a store.
func New(st store.Store) *Registry {
	return &Registry{
		store:  st,
		logger: logger.WithComponent("doctype-registry"),
	}
}

// Create registers a type name and returns its id. Creating an existing
// name returns the existing id.
func (r *Registry) Create(ctx context.Context, name string) (int, error) {
	id, err := r.store.CreateDocumentType(ctx, name)
	if err != nil {
		return 0, err
	}
	r.logger.Debug("document type registered", "name", name, "id", id)
	return id, nil
}

// Lookup resolves a registered type name to its id.
func (r *Registry) Lookup(ctx context.Context, name string) (int, error) {
	id, ok, err := r.store.LookupDocumentType(ctx, name)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errors.Newf(errors.ErrUnknownDocumentType, "%s", name)
	}
	return id, nil
}

// Remove deletes a type and cascades to all of its postings and result
// rows.
func (r *Registry) Remove(ctx context.Context, name string) error {
	if err := r.store.RemoveDocumentType(ctx, name); err != nil {
		return err
	}
	r.logger.Info("document type removed", "name", name)
	return nil
}
