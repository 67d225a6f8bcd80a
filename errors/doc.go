/*
Package errors provides semantic error types for entityseed.

The package defines the failure modes of the find-or-create core and of the
shipped stores. Every typed error matches its sentinel through errors.Is, and
each sentinel has a helper predicate.

Common Errors:

	var (
	    ErrNotRegistered = errors.New("key not registered")
	    ErrUnknownEvent  = errors.New("unknown event")
	    ErrTypeMismatch  = errors.New("record type mismatch")
	    ErrAlreadyExists = errors.New("entity already exists")
	    ErrInvalidInput  = errors.New("invalid input")
	    ErrNoIndexMap    = errors.New("no index map found for type")
	)

Usage:

	user, err := entityseed.FindOrCreate[User](ctx, reg, "user", attrs, nil)
	if err != nil {
	    if errors.IsNotRegistered(err) {
	        // register the key first
	    }
	    return nil, err
	}

Errors returned by hook handlers and customizers are never wrapped: callers
receive exactly the value the handler returned.
*/
package errors
