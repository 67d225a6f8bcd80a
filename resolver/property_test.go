/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package resolver_test

import (
	"context"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/suparena/entityseed/datastore/mock"
	"github.com/suparena/entityseed/datastore/testmodels"
	"github.com/suparena/entityseed/hooks"
	"github.com/suparena/entityseed/model"
	"github.com/suparena/entityseed/resolver"
)

// Repeated find-or-create over any sequence of attribute bags stores exactly
// one record per distinct lookup value and always hands back that record.
func TestFindOrCreateIsIdempotentPerLookupValue(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		store := mock.New(testmodels.UserSchema())
		r, err := resolver.New[User]("user", store, []string{"email"})
		if err != nil {
			t.Fatalf("New: %v", err)
		}

		emails := rapid.SliceOfN(rapid.SampledFrom([]string{"a@x.com", "b@x.com", "c@x.com", "d@x.com"}), 1, 30).Draw(t, "emails")
		first := map[string]*User{}
		for i, email := range emails {
			name := rapid.StringMatching(`[A-Za-z]{0,8}`).Draw(t, "name")
			got, err := r.FindOrCreate(ctx, model.Attributes{"email": email, "name": name}, nil)
			if err != nil {
				t.Fatalf("call %d: %v", i, err)
			}
			if prev, ok := first[email]; ok {
				if got != prev {
					t.Fatalf("call %d: %s resolved to a different record", i, email)
				}
				continue
			}
			if got.Name != name {
				t.Fatalf("call %d: created record has name %q, want %q", i, got.Name, name)
			}
			first[email] = got
		}
		if store.Count() != len(first) {
			t.Fatalf("stored %d records for %d distinct emails", store.Count(), len(first))
		}
	})
}

// Handlers run in registration order after the default action, whatever the
// number of handlers and the event they hang off.
func TestHandlersRunInRegistrationOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		store := mock.New(testmodels.UserSchema())
		r, err := resolver.New[User]("user", store, []string{"email"})
		if err != nil {
			t.Fatalf("New: %v", err)
		}

		n := rapid.IntRange(0, 12).Draw(t, "handlers")
		event := rapid.SampledFrom([]hooks.Event{hooks.Build, hooks.Create, hooks.Returned}).Draw(t, "event")

		var trail []int
		var persistedFirst bool
		for i := 0; i < n; i++ {
			idx := i
			if _, err := r.On(event, func(_ context.Context, u *User) error {
				if idx == 0 && u.ID != "" {
					persistedFirst = true
				}
				trail = append(trail, idx)
				return nil
			}); err != nil {
				t.Fatalf("On: %v", err)
			}
		}

		if _, err := r.FindOrCreate(ctx, model.Attributes{"email": "a@x.com"}, nil); err != nil {
			t.Fatalf("FindOrCreate: %v", err)
		}
		if len(trail) != n {
			t.Fatalf("ran %d handlers, want %d", len(trail), n)
		}
		for i, got := range trail {
			if got != i {
				t.Fatalf("handler %d ran at position %d", got, i)
			}
		}
		if n > 0 && event == hooks.Create && !persistedFirst {
			t.Fatalf("create handlers ran before persistence")
		}
	})
}

// Only lookup keys reach the store, in whatever casing they arrive.
func TestLookupFilterIsTheLookupKeyProjection(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		fields := []string{"email", "name", "age", "password"}
		lookup := rapid.SliceOfNDistinct(rapid.SampledFrom(fields), 1, len(fields), rapid.ID[string]).Draw(t, "lookup")
		present := rapid.SliceOfDistinct(rapid.SampledFrom(fields), rapid.ID[string]).Draw(t, "present")

		r, err := resolver.New[User]("user", mock.New(testmodels.UserSchema()), lookup)
		if err != nil {
			t.Fatalf("New: %v", err)
		}

		attrs := model.Attributes{}
		for _, f := range present {
			key := f
			if rapid.Bool().Draw(t, "upper") {
				key = strings.ToUpper(f)
			}
			attrs[key] = f + "-value"
		}

		filter, err := r.Locator().Filter(attrs)
		if err != nil {
			t.Fatalf("Filter: %v", err)
		}
		for k := range filter {
			if !model.KeySet(lookup).Contains(k) {
				t.Fatalf("filter holds non-lookup key %q", k)
			}
		}
		for _, k := range lookup {
			inAttrs := false
			for _, p := range present {
				inAttrs = inAttrs || p == k
			}
			if _, inFilter := filter[k]; inFilter != inAttrs {
				t.Fatalf("lookup key %q: in filter=%v, in attributes=%v", k, inFilter, inAttrs)
			}
		}
	})
}
