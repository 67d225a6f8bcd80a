/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/suparena/entityseed/datastore"
	"github.com/suparena/entityseed/errors"
	"github.com/suparena/entityseed/hooks"
	"github.com/suparena/entityseed/model"
)

// TracerName is the instrumentation scope of resolver spans.
const TracerName = "github.com/suparena/entityseed/resolver"

// Resolution paths reported in logs and spans.
const (
	PathFound   = "found"
	PathCreated = "created"
)

// Option configures a Resolver.
type Option func(*options)

type options struct {
	logger *slog.Logger
	tracer trace.Tracer
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithTracer sets the tracer used for find-or-create spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) {
		if tracer != nil {
			o.tracer = tracer
		}
	}
}

// Resolver is the find-or-create unit for one record type. Its locator and
// materializer share one hook namespace, which also holds the returned event.
type Resolver[T any] struct {
	key          string
	keys         model.KeySet
	store        datastore.DataStore[T]
	hooks        *hooks.Set[T]
	locator      *Locator[T]
	materializer *Materializer[T]
	logger       *slog.Logger
	tracer       trace.Tracer
}

// New creates a resolver registered under key. lookupKeys must name at least
// one field the store's schema knows.
func New[T any](key string, store datastore.DataStore[T], lookupKeys []string, opts ...Option) (*Resolver[T], error) {
	if store == nil {
		return nil, errors.NewValidationError("store", "a data store is required")
	}
	keys := model.NewKeySet(lookupKeys...)
	if len(keys) == 0 {
		return nil, errors.NewValidationError("lookup_keys", "at least one lookup key is required")
	}
	schema := store.Schema()
	for _, k := range keys {
		if !schema.Has(k) {
			return nil, errors.NewValidationError(k, fmt.Sprintf("lookup key is not a field of %s", schema.Name()))
		}
	}

	o := options{
		logger: slog.Default(),
		tracer: otel.Tracer(TracerName),
	}
	for _, opt := range opts {
		opt(&o)
	}

	set := hooks.NewSet[T]()
	return &Resolver[T]{
		key:          key,
		keys:         keys,
		store:        store,
		hooks:        set,
		locator:      NewLocator(store, keys, set, o.logger),
		materializer: NewMaterializer(store, set),
		logger:       o.logger,
		tracer:       o.tracer,
	}, nil
}

// Key returns the registration key.
func (r *Resolver[T]) Key() string { return r.key }

// LookupKeys returns a copy of the canonical lookup keys.
func (r *Resolver[T]) LookupKeys() model.KeySet {
	out := make(model.KeySet, len(r.keys))
	copy(out, r.keys)
	return out
}

// Store returns the persistence collaborator.
func (r *Resolver[T]) Store() datastore.DataStore[T] { return r.store }

// Hooks returns the shared hook namespace.
func (r *Resolver[T]) Hooks() *hooks.Set[T] { return r.hooks }

// Locator returns the lookup half of the resolver.
func (r *Resolver[T]) Locator() *Locator[T] { return r.locator }

// Materializer returns the construction half of the resolver.
func (r *Resolver[T]) Materializer() *Materializer[T] { return r.materializer }

// TypeName returns the Go type name of T.
func (r *Resolver[T]) TypeName() string {
	return reflect.TypeFor[T]().String()
}

// On registers a handler for an event name and returns the resolver for
// chaining.
func (r *Resolver[T]) On(event hooks.Event, h hooks.Handler[T]) (*Resolver[T], error) {
	if err := r.hooks.On(event, h); err != nil {
		return nil, err
	}
	return r, nil
}

// OnBuild registers a build handler.
func (r *Resolver[T]) OnBuild(h hooks.Handler[T]) *Resolver[T] { return r.must(hooks.Build, h) }

// OnCreate registers a create handler.
func (r *Resolver[T]) OnCreate(h hooks.Handler[T]) *Resolver[T] { return r.must(hooks.Create, h) }

// OnFound registers a found handler.
func (r *Resolver[T]) OnFound(h hooks.Handler[T]) *Resolver[T] { return r.must(hooks.Found, h) }

// OnReturned registers a returned handler.
func (r *Resolver[T]) OnReturned(h hooks.Handler[T]) *Resolver[T] { return r.must(hooks.Returned, h) }

func (r *Resolver[T]) must(event hooks.Event, h hooks.Handler[T]) *Resolver[T] {
	if err := r.hooks.On(event, h); err != nil {
		panic(err)
	}
	return r
}

// Find looks up an existing record without creating one.
func (r *Resolver[T]) Find(ctx context.Context, attrs model.Attributes) (*T, error) {
	return r.locator.Find(ctx, attrs)
}

// Build constructs an unsaved record.
func (r *Resolver[T]) Build(ctx context.Context, attrs model.Attributes, customizer hooks.Handler[T]) (*T, error) {
	return r.materializer.Build(ctx, attrs, customizer)
}

// Create constructs and persists a record without looking up first.
func (r *Resolver[T]) Create(ctx context.Context, attrs model.Attributes, customizer hooks.Handler[T]) (*T, error) {
	return r.materializer.Create(ctx, attrs, customizer)
}

// FindOrCreate returns the record matching the lookup keys of attrs, creating
// it from all of attrs when there is none. On the found path neither build
// nor create handlers run and customizer is not applied. Returned handlers
// run exactly once per call on both paths.
//
// Errors from handlers and customizer are returned unchanged. Work already
// done is kept: a record persisted before a failing create handler stays
// persisted.
func (r *Resolver[T]) FindOrCreate(ctx context.Context, attrs model.Attributes, customizer hooks.Handler[T]) (rec *T, err error) {
	ctx, span := r.tracer.Start(ctx, "entityseed.find_or_create",
		trace.WithAttributes(
			attribute.String("entityseed.key", r.key),
			attribute.String("entityseed.type", r.TypeName()),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	path := PathFound
	rec, err = r.locator.Find(ctx, attrs)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		path = PathCreated
		rec, err = r.materializer.Create(ctx, attrs, customizer)
		if err != nil {
			return nil, err
		}
	}
	span.SetAttributes(attribute.String("entityseed.path", path))
	r.logger.DebugContext(ctx, "Resolved record.", "key", r.key, "path", path)

	rec, err = r.hooks.Dispatch(ctx, hooks.Returned, rec, nil)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// FindOrCreateAny is FindOrCreate for callers that do not know T.
func (r *Resolver[T]) FindOrCreateAny(ctx context.Context, attrs model.Attributes) (any, error) {
	rec, err := r.FindOrCreate(ctx, attrs, nil)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ResolveAny is Resolve for callers that do not know T.
func (r *Resolver[T]) ResolveAny(ctx context.Context, attrs model.Attributes) (any, bool, error) {
	rec, created, err := r.Resolve(ctx, attrs, nil)
	if err != nil {
		return nil, created, err
	}
	return rec, created, nil
}

// Resolve is FindOrCreate reporting whether the record was created.
func (r *Resolver[T]) Resolve(ctx context.Context, attrs model.Attributes, customizer hooks.Handler[T]) (*T, bool, error) {
	created := false
	mark := func(ctx context.Context, rec *T) error {
		created = true
		if customizer != nil {
			return customizer(ctx, rec)
		}
		return nil
	}
	rec, err := r.FindOrCreate(ctx, attrs, mark)
	return rec, created, err
}

// Equal reports structural equality: same record type, same schema and the
// same lookup keys.
func (r *Resolver[T]) Equal(other *Resolver[T]) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.store.Schema().Name() == other.store.Schema().Name() && r.keys.Equal(other.keys)
}
