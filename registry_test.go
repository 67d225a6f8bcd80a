/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package entityseed_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/suparena/entityseed"
	"github.com/suparena/entityseed/datastore/mock"
	"github.com/suparena/entityseed/datastore/testmodels"
	"github.com/suparena/entityseed/errors"
	"github.com/suparena/entityseed/hooks"
	"github.com/suparena/entityseed/model"
)

type User = testmodels.User

type AdminUser struct {
	ID    string
	Email string
}

func adminSchema() *model.Schema[AdminUser] {
	return model.NewSchema[AdminUser]("AdminUser",
		model.Field("id", func(a *AdminUser) string { return a.ID }, func(a *AdminUser, v string) { a.ID = v }),
		model.Field("email", func(a *AdminUser) string { return a.Email }, func(a *AdminUser, v string) { a.Email = v }),
	).IdentifiedBy("id")
}

func TestRegister(t *testing.T) {
	t.Run("DefaultKeys", func(t *testing.T) {
		reg := entityseed.New()

		if _, err := entityseed.Register[User](reg, mock.New(testmodels.UserSchema()), []string{"email"}); err != nil {
			t.Fatalf("Failed to register user: %v", err)
		}
		if _, err := entityseed.Register[AdminUser](reg, mock.New(adminSchema()), []string{"email"}); err != nil {
			t.Fatalf("Failed to register admin user: %v", err)
		}
		if _, err := entityseed.Register[testmodels.RatingSystem](reg, mock.New(testmodels.RatingSystemSchema()), []string{"name"}); err != nil {
			t.Fatalf("Failed to register rating system: %v", err)
		}

		keys := reg.Keys()
		want := []string{"admin_user", "rating_system", "user"}
		if fmt.Sprint(keys) != fmt.Sprint(want) {
			t.Fatalf("Expected keys %v, got %v", want, keys)
		}
		if !reg.Has("admin_user") || reg.Has("AdminUser") {
			t.Fatal("Has should match derived keys exactly")
		}
	})

	t.Run("ExplicitKey", func(t *testing.T) {
		reg := entityseed.New()
		res, err := entityseed.Register[User](reg, mock.New(testmodels.UserSchema()), []string{"email"}, entityseed.WithKey("admin"))
		if err != nil {
			t.Fatalf("Failed to register: %v", err)
		}
		if res.Key() != "admin" || !reg.Has("admin") || reg.Has("user") {
			t.Fatalf("Expected registration under admin only, got %v", reg.Keys())
		}
	})

	t.Run("EmptyLookupKeysRejected", func(t *testing.T) {
		reg := entityseed.New()
		_, err := entityseed.Register[User](reg, mock.New(testmodels.UserSchema()), nil)
		if !errors.IsValidationError(err) {
			t.Fatalf("Expected validation error, got: %v", err)
		}
		if reg.Has("user") {
			t.Fatal("Rejected registration must not be stored")
		}
	})

	t.Run("ReregistrationReplaces", func(t *testing.T) {
		ctx := context.Background()
		reg := entityseed.New()
		first, err := entityseed.Register[User](reg, mock.New(testmodels.UserSchema()), []string{"email"})
		if err != nil {
			t.Fatalf("Failed to register: %v", err)
		}
		first.OnCreate(func(context.Context, *User) error {
			return fmt.Errorf("stale handler ran")
		})

		store := mock.New(testmodels.UserSchema())
		second, err := entityseed.Register[User](reg, store, []string{"email"})
		if err != nil {
			t.Fatalf("Failed to re-register: %v", err)
		}

		got, err := entityseed.ResolverFor[User](reg, "user")
		if err != nil {
			t.Fatalf("ResolverFor failed: %v", err)
		}
		if got != second {
			t.Fatal("Expected the replacement resolver")
		}
		if _, err := entityseed.FindOrCreate[User](ctx, reg, "user", model.Attributes{"email": "a@x.com"}, nil); err != nil {
			t.Fatalf("Handlers of the replaced resolver must not run: %v", err)
		}
		if store.Count() != 1 {
			t.Fatalf("Expected the new store to hold the record, got %d", store.Count())
		}
	})
}

func TestResolverFor(t *testing.T) {
	reg := entityseed.New()
	if _, err := entityseed.Register[User](reg, mock.New(testmodels.UserSchema()), []string{"email"}); err != nil {
		t.Fatalf("Failed to register: %v", err)
	}

	res, err := entityseed.ResolverFor[User](reg, "missing")
	if !errors.IsNotRegistered(err) || res != nil {
		t.Fatalf("Expected not registered error, got %v, %v", res, err)
	}

	_, err = entityseed.ResolverFor[AdminUser](reg, "user")
	if !errors.IsTypeMismatch(err) {
		t.Fatalf("Expected type mismatch error, got: %v", err)
	}

	_, err = entityseed.FindOrCreate[User](context.Background(), reg, "missing", model.Attributes{"email": "a@x.com"}, nil)
	if !errors.IsNotRegistered(err) {
		t.Fatalf("Expected not registered error, got: %v", err)
	}
	if _, err := reg.FindOrCreate(context.Background(), "missing", nil); !errors.IsNotRegistered(err) {
		t.Fatalf("Expected not registered error, got: %v", err)
	}
}

func TestFindOrCreateThroughRegistry(t *testing.T) {
	ctx := context.Background()
	reg := entityseed.New()
	store := mock.New(testmodels.UserSchema())
	if _, err := entityseed.Register[User](reg, store, []string{"email"}); err != nil {
		t.Fatalf("Failed to register: %v", err)
	}

	if err := entityseed.On[User](reg, "user", hooks.Found, func(_ context.Context, u *User) error {
		u.Name = "seen"
		return nil
	}); err != nil {
		t.Fatalf("On failed: %v", err)
	}
	if err := entityseed.On[User](reg, "user", "destroy", func(context.Context, *User) error { return nil }); !errors.IsUnknownEvent(err) {
		t.Fatalf("Expected unknown event error, got: %v", err)
	}

	u, err := entityseed.FindOrCreate[User](ctx, reg, "user", model.Attributes{"email": "a@x.com", "name": "A"}, nil)
	if err != nil {
		t.Fatalf("FindOrCreate failed: %v", err)
	}
	if u.Name != "A" {
		t.Fatalf("Expected created record named A, got %q", u.Name)
	}

	rec, created, err := reg.Resolve(ctx, "user", model.Attributes{"email": "a@x.com", "name": "B"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	found, ok := rec.(*User)
	if !ok || created || found.Name != "seen" {
		t.Fatalf("Expected found record named seen, got %+v created=%v", rec, created)
	}

	rec, err = reg.FindOrCreate(ctx, "user", model.Attributes{"email": "b@x.com"})
	if err != nil {
		t.Fatalf("FindOrCreate failed: %v", err)
	}
	if _, ok := rec.(*User); !ok {
		t.Fatalf("Expected *User, got %T", rec)
	}
	if store.Count() != 2 {
		t.Fatalf("Expected 2 stored users, got %d", store.Count())
	}

	keys, err := reg.LookupKeys("user")
	if err != nil || !keys.Equal(model.KeySet{"email"}) {
		t.Fatalf("Expected lookup keys [email], got %v, %v", keys, err)
	}
}

func TestUnregisterAndReset(t *testing.T) {
	reg := entityseed.New()
	for _, key := range []string{"a", "b"} {
		if _, err := entityseed.Register[User](reg, mock.New(testmodels.UserSchema()), []string{"email"}, entityseed.WithKey(key)); err != nil {
			t.Fatalf("Failed to register %s: %v", key, err)
		}
	}

	if err := reg.Unregister("a"); err != nil {
		t.Fatalf("Unregister failed: %v", err)
	}
	if err := reg.Unregister("a"); !errors.IsNotRegistered(err) {
		t.Fatalf("Expected not registered error, got: %v", err)
	}

	reg.Reset()
	if len(reg.Keys()) != 0 {
		t.Fatalf("Expected empty registry after reset, got %v", reg.Keys())
	}
	if _, err := entityseed.ResolverFor[User](reg, "b"); !errors.IsNotRegistered(err) {
		t.Fatalf("Expected not registered error after reset, got: %v", err)
	}
}

func TestTracerProvider(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	reg := entityseed.New(entityseed.WithTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))))
	if _, err := entityseed.Register[User](reg, mock.New(testmodels.UserSchema()), []string{"email"}); err != nil {
		t.Fatalf("Failed to register: %v", err)
	}

	if _, err := reg.FindOrCreate(context.Background(), "user", model.Attributes{"email": "a@x.com"}); err != nil {
		t.Fatalf("FindOrCreate failed: %v", err)
	}
	if n := len(recorder.Ended()); n != 1 {
		t.Fatalf("Expected 1 span, got %d", n)
	}
}

func TestThreadSafety(t *testing.T) {
	ctx := context.Background()
	reg := entityseed.New()
	var wg sync.WaitGroup

	// Concurrent registrations
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := fmt.Sprintf("store%d", id)
			if _, err := entityseed.Register[User](reg, mock.New(testmodels.UserSchema()), []string{"email"}, entityseed.WithKey(key)); err != nil {
				t.Errorf("Failed to register %s: %v", key, err)
			}
		}(i)
	}

	// Concurrent reads
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reg.Keys()
			_, _ = reg.FindOrCreate(ctx, "store0", model.Attributes{"email": "a@x.com"})
		}()
	}
	wg.Wait()

	if keys := reg.Keys(); len(keys) != 10 {
		t.Fatalf("Expected 10 resolvers, got %d", len(keys))
	}
}
