/*
Package datastore defines the persistence collaborator used by entityseed.

The main interface is DataStore[T], covering the three operations find-or-create
needs for any record type T:

	type DataStore[T any] interface {
	    Construct(ctx context.Context, attrs model.Attributes) (*T, error)
	    FindBy(ctx context.Context, filter model.Attributes) (*T, error)
	    Persist(ctx context.Context, record *T) (*T, error)
	    Schema() *model.Schema[T]
	}

FindBy is an equality filter on named fields; a miss is (nil, nil), not an
error.

Implementations:
  - mock: in-memory store for tests, with error injection
  - sqlstore: database/sql store (SQLite in tests, any driver with ? or $n placeholders)
  - ddb: DynamoDB store with single-table index maps and optional GSI lookups

The interface deliberately leaves transactions to the caller. Wrapping a whole
find-or-create in a transaction is the way to undo a persisted record when a
later hook fails.
*/
package datastore
