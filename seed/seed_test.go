/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package seed_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/entityseed"
	"github.com/suparena/entityseed/datastore/mock"
	"github.com/suparena/entityseed/datastore/testmodels"
	"github.com/suparena/entityseed/errors"
	"github.com/suparena/entityseed/hooks"
	"github.com/suparena/entityseed/model"
	"github.com/suparena/entityseed/seed"
)

type User = testmodels.User

func TestDefaultRegistry(t *testing.T) {
	t.Cleanup(seed.Reset)
	seed.Reset()
	ctx := context.Background()

	store := mock.New(testmodels.UserSchema())
	_, err := seed.Register[User](store, []string{"email"})
	require.NoError(t, err)
	require.NoError(t, seed.On[User]("user", hooks.Found, func(_ context.Context, u *User) error {
		u.Name = "seen"
		return nil
	}))

	first, err := seed.FindOrCreate[User](ctx, "user", model.Attributes{"email": "a@x.com", "name": "A"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "A", first.Name)

	again, err := seed.FindOrCreate[User](ctx, "user", model.Attributes{"email": "a@x.com", "name": "B"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "seen", again.Name)
	assert.Equal(t, 1, store.Count())

	assert.Same(t, seed.Default(), seed.Default())
}

func TestResetDropsRegistrations(t *testing.T) {
	t.Cleanup(seed.Reset)
	seed.Reset()

	_, err := seed.Register[User](mock.New(testmodels.UserSchema()), []string{"email"})
	require.NoError(t, err)
	before := seed.Default()

	seed.Reset()
	assert.NotSame(t, before, seed.Default())

	res, err := seed.ResolverFor[User]("user")
	assert.Nil(t, res)
	assert.True(t, errors.IsNotRegistered(err))

	_, err = seed.FindOrCreate[User](context.Background(), "user", model.Attributes{"email": "a@x.com"}, nil)
	assert.True(t, errors.IsNotRegistered(err))

	err = seed.On[User]("user", hooks.Build, func(context.Context, *User) error { return nil })
	assert.True(t, errors.IsNotRegistered(err))
}

func TestSetDefault(t *testing.T) {
	t.Cleanup(seed.Reset)

	reg := entityseed.New()
	_, err := entityseed.Register[User](reg, mock.New(testmodels.UserSchema()), []string{"email"}, entityseed.WithKey("member"))
	require.NoError(t, err)

	seed.SetDefault(reg)
	assert.Same(t, reg, seed.Default())

	res, err := seed.ResolverFor[User]("member")
	require.NoError(t, err)
	assert.Equal(t, "member", res.Key())
}
