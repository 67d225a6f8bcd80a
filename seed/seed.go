/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package seed exposes a process-wide default registry. It is a thin
// convenience over entityseed.Registry for programs that register their
// resolvers once at startup.
package seed

import (
	"context"
	"sync"

	"github.com/suparena/entityseed"
	"github.com/suparena/entityseed/datastore"
	"github.com/suparena/entityseed/hooks"
	"github.com/suparena/entityseed/model"
	"github.com/suparena/entityseed/resolver"
)

var (
	mu       sync.Mutex
	registry *entityseed.Registry
)

// Default returns the default registry, creating it on first use.
func Default() *entityseed.Registry {
	mu.Lock()
	defer mu.Unlock()
	if registry == nil {
		registry = entityseed.New()
	}
	return registry
}

// SetDefault installs r as the default registry. A nil r behaves like Reset.
func SetDefault(r *entityseed.Registry) {
	mu.Lock()
	defer mu.Unlock()
	registry = r
}

// Reset discards the default registry; the next access starts empty.
func Reset() {
	SetDefault(nil)
}

// Register registers a resolver for T on the default registry.
func Register[T any](store datastore.DataStore[T], lookupKeys []string, opts ...entityseed.RegisterOption) (*resolver.Resolver[T], error) {
	return entityseed.Register(Default(), store, lookupKeys, opts...)
}

// ResolverFor returns the resolver registered under key on the default
// registry.
func ResolverFor[T any](key string) (*resolver.Resolver[T], error) {
	return entityseed.ResolverFor[T](Default(), key)
}

// On registers a handler on the resolver registered under key.
func On[T any](key string, event hooks.Event, h hooks.Handler[T]) error {
	return entityseed.On(Default(), key, event, h)
}

// FindOrCreate resolves through the resolver registered under key.
func FindOrCreate[T any](ctx context.Context, key string, attrs model.Attributes, customizer hooks.Handler[T]) (*T, error) {
	return entityseed.FindOrCreate(ctx, Default(), key, attrs, customizer)
}
