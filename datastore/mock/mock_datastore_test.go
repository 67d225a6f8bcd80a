/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mock_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/suparena/entityseed/datastore"
	"github.com/suparena/entityseed/datastore/mock"
	"github.com/suparena/entityseed/datastore/testmodels"
	"github.com/suparena/entityseed/errors"
	"github.com/suparena/entityseed/model"
)

var _ datastore.DataStore[testmodels.User] = (*mock.DataStore[testmodels.User])(nil)

func TestMockDataStore(t *testing.T) {
	ctx := context.Background()

	t.Run("BasicOperations", func(t *testing.T) {
		mockStore := mock.New(testmodels.UserSchema()).
			WithIdentityFunc(func() any { return "u-1" })

		user, err := mockStore.Construct(ctx, model.Attributes{"email": "a@x.com", "name": "A"})
		if err != nil {
			t.Fatalf("Construct failed: %v", err)
		}
		if user.ID != "" {
			t.Fatalf("Construct should not assign identity, got %q", user.ID)
		}

		saved, err := mockStore.Persist(ctx, user)
		if err != nil {
			t.Fatalf("Persist failed: %v", err)
		}
		if saved.ID != "u-1" {
			t.Fatalf("Expected assigned identity u-1, got %q", saved.ID)
		}

		found, err := mockStore.FindBy(ctx, model.Attributes{"email": "a@x.com"})
		if err != nil {
			t.Fatalf("FindBy failed: %v", err)
		}
		if found != saved {
			t.Fatalf("FindBy should return the stored record")
		}

		missing, err := mockStore.FindBy(ctx, model.Attributes{"email": "b@x.com"})
		if err != nil || missing != nil {
			t.Fatalf("Expected miss, got %+v, %v", missing, err)
		}

		if mockStore.FindCalls() != 2 || mockStore.PersistCalls() != 1 {
			t.Fatalf("Unexpected call counts: find=%d persist=%d", mockStore.FindCalls(), mockStore.PersistCalls())
		}
	})

	t.Run("DefaultIdentityIsUUID", func(t *testing.T) {
		mockStore := mock.New(testmodels.UserSchema())
		user := &testmodels.User{Email: "a@x.com"}
		if _, err := mockStore.Persist(ctx, user); err != nil {
			t.Fatalf("Persist failed: %v", err)
		}
		if len(user.ID) != 36 {
			t.Fatalf("Expected a UUID identity, got %q", user.ID)
		}
		if _, ok := mockStore.Get(user.ID); !ok {
			t.Fatalf("Record not stored under its identity")
		}
	})

	t.Run("DuplicateIdentity", func(t *testing.T) {
		mockStore := mock.New(testmodels.UserSchema())
		if _, err := mockStore.Persist(ctx, &testmodels.User{ID: "1"}); err != nil {
			t.Fatalf("Persist failed: %v", err)
		}
		_, err := mockStore.Persist(ctx, &testmodels.User{ID: "1"})
		if !errors.IsAlreadyExists(err) {
			t.Fatalf("Expected already exists error, got: %v", err)
		}
	})

	t.Run("ErrorSimulation", func(t *testing.T) {
		constructErr := errors.NewValidationError("name", "required")
		findErr := stderrors.New("connection reset")
		persistErr := errors.NewAlreadyExistsError("User", "x")

		mockStore := mock.New(testmodels.UserSchema()).
			WithConstructError(constructErr).
			WithFindError(findErr).
			WithPersistError(persistErr)

		if _, err := mockStore.Construct(ctx, nil); err != constructErr {
			t.Fatalf("Expected construct error, got: %v", err)
		}
		if _, err := mockStore.FindBy(ctx, nil); err != findErr {
			t.Fatalf("Expected find error, got: %v", err)
		}
		if _, err := mockStore.Persist(ctx, &testmodels.User{}); err != persistErr {
			t.Fatalf("Expected persist error, got: %v", err)
		}
		if mockStore.Count() != 0 {
			t.Fatalf("Failed persist must not store anything")
		}
	})

	t.Run("SchemaWithoutIdentity", func(t *testing.T) {
		schema := model.NewSchema[testmodels.User]("User",
			model.Field("email", func(u *testmodels.User) string { return u.Email }, func(u *testmodels.User, v string) { u.Email = v }),
		)
		mockStore := mock.New(schema)
		for i := 0; i < 2; i++ {
			if _, err := mockStore.Persist(ctx, &testmodels.User{Email: "same@x.com"}); err != nil {
				t.Fatalf("Persist failed: %v", err)
			}
		}
		if mockStore.Count() != 2 {
			t.Fatalf("Expected 2 records, got %d", mockStore.Count())
		}
	})

	t.Run("HelperMethods", func(t *testing.T) {
		mockStore := mock.New(testmodels.UserSchema())

		err := mockStore.Seed(
			&testmodels.User{ID: "1", Email: "one@x.com"},
			&testmodels.User{ID: "2", Email: "two@x.com"},
		)
		if err != nil {
			t.Fatalf("Seed failed: %v", err)
		}
		if mockStore.Count() != 2 || mockStore.PersistCalls() != 0 {
			t.Fatalf("Seed should store without counting, count=%d calls=%d", mockStore.Count(), mockStore.PersistCalls())
		}

		records := mockStore.Records()
		if len(records) != 2 || records[0].ID != "1" || records[1].ID != "2" {
			t.Fatalf("Records should keep insertion order, got %+v", records)
		}

		mockStore.Clear()
		if mockStore.Count() != 0 {
			t.Fatalf("Expected count 0 after clear, got %d", mockStore.Count())
		}
	})
}
