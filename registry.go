/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package entityseed

import (
	"context"
	"log/slog"
	"reflect"
	"sort"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/suparena/entityseed/datastore"
	"github.com/suparena/entityseed/errors"
	"github.com/suparena/entityseed/hooks"
	"github.com/suparena/entityseed/model"
	"github.com/suparena/entityseed/resolver"
)

// entry is the type-erased view of a *resolver.Resolver[T] kept in the map.
type entry interface {
	Key() string
	TypeName() string
	LookupKeys() model.KeySet
	FindOrCreateAny(ctx context.Context, attrs model.Attributes) (any, error)
	ResolveAny(ctx context.Context, attrs model.Attributes) (any, bool, error)
}

// Registry maps keys to resolvers of possibly different record types. It is
// safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	resolvers map[string]entry
	logger    *slog.Logger
	tracer    trace.Tracer
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger handed to every registered resolver.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithTracerProvider sets the provider resolver spans are created from.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(r *Registry) {
		if tp != nil {
			r.tracer = tp.Tracer(resolver.TracerName)
		}
	}
}

// New creates an empty Registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		resolvers: make(map[string]entry),
		logger:    slog.Default(),
		tracer:    otel.GetTracerProvider().Tracer(resolver.TracerName),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterOption configures a single registration.
type RegisterOption func(*registerOptions)

type registerOptions struct {
	key string
}

// WithKey registers under an explicit key instead of the one derived from
// the record type name.
func WithKey(key string) RegisterOption {
	return func(o *registerOptions) {
		o.key = key
	}
}

// KeyFor returns the default registration key of T: its type name in lower
// snake case, so AdminUser registers as "admin_user".
func KeyFor[T any]() string {
	return model.NormalizeKey(reflect.TypeFor[T]().Name())
}

// Register builds a resolver for T over store and stores it under its key,
// replacing any previous registration. Handlers of a replaced resolver are
// dropped with it.
func Register[T any](r *Registry, store datastore.DataStore[T], lookupKeys []string, opts ...RegisterOption) (*resolver.Resolver[T], error) {
	o := registerOptions{key: KeyFor[T]()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.key == "" {
		return nil, errors.NewValidationError("key", "a registration key is required for unnamed types")
	}

	res, err := resolver.New[T](o.key, store, lookupKeys,
		resolver.WithLogger(r.logger.With("key", o.key)),
		resolver.WithTracer(r.tracer),
	)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, exists := r.resolvers[o.key]; exists {
		r.logger.Info("Replacing resolver.", "key", o.key, "previousType", prev.TypeName(), "type", res.TypeName())
	} else {
		r.logger.Debug("Registering resolver.", "key", o.key, "type", res.TypeName(), "lookupKeys", []string(res.LookupKeys()))
	}
	r.resolvers[o.key] = res
	return res, nil
}

// ResolverFor returns the resolver registered under key. It fails with a
// not-registered error when the key is unknown and with a type mismatch
// error when the key belongs to another record type.
func ResolverFor[T any](r *Registry, key string) (*resolver.Resolver[T], error) {
	e, err := r.lookup(key)
	if err != nil {
		return nil, err
	}
	res, ok := e.(*resolver.Resolver[T])
	if !ok {
		return nil, errors.NewTypeMismatchError(key, reflect.TypeFor[T]().String(), e.TypeName())
	}
	return res, nil
}

// FindOrCreate resolves through the resolver registered under key.
func FindOrCreate[T any](ctx context.Context, r *Registry, key string, attrs model.Attributes, customizer hooks.Handler[T]) (*T, error) {
	res, err := ResolverFor[T](r, key)
	if err != nil {
		return nil, err
	}
	return res.FindOrCreate(ctx, attrs, customizer)
}

// On registers a handler on the resolver registered under key.
func On[T any](r *Registry, key string, event hooks.Event, h hooks.Handler[T]) error {
	res, err := ResolverFor[T](r, key)
	if err != nil {
		return err
	}
	_, err = res.On(event, h)
	return err
}

// FindOrCreate resolves through the resolver registered under key without
// naming its record type. The result is a pointer to the record.
func (r *Registry) FindOrCreate(ctx context.Context, key string, attrs model.Attributes) (any, error) {
	e, err := r.lookup(key)
	if err != nil {
		return nil, err
	}
	return e.FindOrCreateAny(ctx, attrs)
}

// Resolve is FindOrCreate reporting whether the record was created.
func (r *Registry) Resolve(ctx context.Context, key string, attrs model.Attributes) (any, bool, error) {
	e, err := r.lookup(key)
	if err != nil {
		return nil, false, err
	}
	return e.ResolveAny(ctx, attrs)
}

// LookupKeys returns the lookup keys of the resolver registered under key.
func (r *Registry) LookupKeys(key string) (model.KeySet, error) {
	e, err := r.lookup(key)
	if err != nil {
		return nil, err
	}
	return e.LookupKeys(), nil
}

// Has reports whether a resolver is registered under key.
func (r *Registry) Has(key string) bool {
	_, err := r.lookup(key)
	return err == nil
}

// Keys returns all registration keys in lexical order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.resolvers))
	for k := range r.resolvers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Unregister removes the resolver registered under key.
func (r *Registry) Unregister(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.resolvers[key]; !exists {
		return errors.NewNotRegisteredError(key)
	}
	delete(r.resolvers, key)
	return nil
}

// Reset drops every registration.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolvers = make(map[string]entry)
}

func (r *Registry) lookup(key string) (entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, exists := r.resolvers[key]
	if !exists {
		return nil, errors.NewNotRegisteredError(key)
	}
	return e, nil
}
