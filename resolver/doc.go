/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

/*
Package resolver implements find-or-create for one record type.

A Resolver pairs a Locator, which queries a data store by the lookup-key
projection of an attribute bag, with a Materializer, which constructs and
persists new records. Both halves share one hook namespace with four events:

	build     record constructed, not yet saved
	create    record saved
	found     existing record matched the lookup
	returned  once per FindOrCreate, on both paths

For every event the default action runs first and the handlers follow in
registration order. A handler error stops the call and is returned as is.

Usage:

	users, err := resolver.New[User]("user", store, []string{"email"})
	if err != nil {
	    return err
	}
	users.OnFound(func(ctx context.Context, u *User) error {
	    u.Name = "seen"
	    return nil
	})

	u, err := users.FindOrCreate(ctx, model.Attributes{"email": "a@x.com", "name": "A"}, nil)
*/
package resolver
