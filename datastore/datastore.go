/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"

	"github.com/suparena/entityseed/model"
)

// DataStore is the persistence collaborator of a resolver.
type DataStore[T any] interface {
	// Construct builds an unsaved record from the full attribute bag,
	// including attributes that are not lookup keys.
	Construct(ctx context.Context, attrs model.Attributes) (*T, error)

	// FindBy returns the first record whose fields equal every entry of
	// filter, or (nil, nil) when none does.
	FindBy(ctx context.Context, filter model.Attributes) (*T, error)

	// Persist saves the record. It may assign fields such as the identity
	// and returns the saved record.
	Persist(ctx context.Context, record *T) (*T, error)

	// Schema exposes the field table the store reads records through.
	Schema() *model.Schema[T]
}
