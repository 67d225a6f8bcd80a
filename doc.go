/*
Package entityseed finds or creates records through typed resolvers, with
lifecycle hooks around every step.

A resolver is registered per record type over a data store and a set of
lookup keys. FindOrCreate projects the input attributes onto those keys,
returns the first stored record that matches, and otherwise builds and
persists a new record from all of the attributes. Handlers can be attached
to four events: build, create, found and returned.

Stores ship for tests (datastore/mock), SQL databases (datastore/sqlstore)
and DynamoDB (datastore/ddb).

Basic Usage:

	reg := entityseed.New()

	// Register a resolver for User, keyed "user", looked up by email
	users, _ := entityseed.Register[User](reg, mock.New(userSchema), []string{"email"})
	users.OnCreate(func(ctx context.Context, u *User) error {
	    log.Printf("created %s", u.Email)
	    return nil
	})

	// Resolve by key from anywhere that holds the registry
	u, err := entityseed.FindOrCreate[User](ctx, reg, "user",
	    model.Attributes{"email": "a@x.com", "name": "A"}, nil)

The seed package keeps a process-wide default registry for callers that do
not want to pass one around.
*/
package entityseed
