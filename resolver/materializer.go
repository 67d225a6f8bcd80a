/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package resolver

import (
	"context"
	"fmt"

	"github.com/suparena/entityseed/datastore"
	"github.com/suparena/entityseed/hooks"
	"github.com/suparena/entityseed/model"
)

// Materializer constructs records and optionally persists them, dispatching
// the build and create events of its hook namespace.
type Materializer[T any] struct {
	store datastore.DataStore[T]
	hooks *hooks.Set[T]
}

// NewMaterializer creates a materializer over store sharing the namespace set.
func NewMaterializer[T any](store datastore.DataStore[T], set *hooks.Set[T]) *Materializer[T] {
	return &Materializer[T]{store: store, hooks: set}
}

// Build constructs a record from attrs, applies customizer and then the build
// handlers. The record is not persisted.
func (m *Materializer[T]) Build(ctx context.Context, attrs model.Attributes, customizer hooks.Handler[T]) (*T, error) {
	rec, err := m.store.Construct(ctx, attrs)
	if err != nil {
		return nil, fmt.Errorf("construct %s: %w", m.store.Schema().Name(), err)
	}
	if customizer != nil {
		if err := customizer(ctx, rec); err != nil {
			return nil, err
		}
	}
	return m.hooks.Dispatch(ctx, hooks.Build, rec, nil)
}

// Create builds a record, persists it and then runs the create handlers, so
// create handlers always observe a stored record.
func (m *Materializer[T]) Create(ctx context.Context, attrs model.Attributes, customizer hooks.Handler[T]) (*T, error) {
	rec, err := m.Build(ctx, attrs, customizer)
	if err != nil {
		return nil, err
	}
	return m.hooks.Dispatch(ctx, hooks.Create, rec, m.persist)
}

func (m *Materializer[T]) persist(ctx context.Context, rec *T) (*T, error) {
	saved, err := m.store.Persist(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("persist %s: %w", m.store.Schema().Name(), err)
	}
	if saved == nil {
		saved = rec
	}
	return saved, nil
}
