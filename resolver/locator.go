/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package resolver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/suparena/entityseed/datastore"
	"github.com/suparena/entityseed/hooks"
	"github.com/suparena/entityseed/model"
)

// Locator looks up existing records by the lookup-key projection of an
// attribute bag and dispatches the found event on a hit.
type Locator[T any] struct {
	store  datastore.DataStore[T]
	keys   model.KeySet
	hooks  *hooks.Set[T]
	logger *slog.Logger
}

// NewLocator creates a locator querying store by keys.
func NewLocator[T any](store datastore.DataStore[T], keys model.KeySet, set *hooks.Set[T], logger *slog.Logger) *Locator[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Locator[T]{store: store, keys: keys, hooks: set, logger: logger}
}

// Filter returns the equality filter Find would query with.
func (l *Locator[T]) Filter(attrs model.Attributes) (model.Attributes, error) {
	normalized, err := attrs.Normalize()
	if err != nil {
		return nil, err
	}
	return l.keys.Project(normalized), nil
}

// Find returns the first record matching the lookup keys present in attrs,
// or (nil, nil). Attributes outside the lookup keys never influence the
// query. When none of the lookup keys is present the store is not queried
// and nothing matches.
func (l *Locator[T]) Find(ctx context.Context, attrs model.Attributes) (*T, error) {
	filter, err := l.Filter(attrs)
	if err != nil {
		return nil, err
	}
	if len(filter) == 0 {
		l.logger.DebugContext(ctx, "No lookup key present, skipping lookup.", "schema", l.store.Schema().Name(), "lookupKeys", []string(l.keys))
		return nil, nil
	}

	rec, err := l.store.FindBy(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", l.store.Schema().Name(), err)
	}
	if rec == nil {
		return nil, nil
	}
	return l.hooks.Dispatch(ctx, hooks.Found, rec, nil)
}
