/*
Package hooks provides the ordered, synchronous event dispatch used by the
find-or-create lifecycle.

A Channel holds the handlers of one event. Dispatch optionally runs a default
action first (this is where persistence happens for the create event) and then
calls every handler in registration order with the same record:

	ch := hooks.NewChannel[User](hooks.Create)
	ch.Register(func(ctx context.Context, u *User) error {
	    u.Name = "seeded"
	    return nil
	})
	user, err := ch.Dispatch(ctx, user, persist)

Handlers mutate the record in place; the value returned by Dispatch is always
the working record, never something a handler produced. The first handler error
stops the dispatch. Nothing is rolled back.

The event vocabulary is fixed: build, create, found and returned. A Set groups
one channel per event into a namespace shared by a resolver's locator and
materializer.
*/
package hooks
