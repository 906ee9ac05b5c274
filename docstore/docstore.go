// Package docstore defines the document store boundary used by sets.
package docstore

import (
	"context"

	"github.com/nasdf/household/errors"
	"github.com/nasdf/household/filter"
	"github.com/nasdf/household/object"
)

// ErrNotFound is returned by FindOne when no document matches.
var ErrNotFound = errors.ErrNotFound

// Client is a connection to a document store.
type Client interface {
	// Database returns a handle to the named database.
	Database(name string) Database
	// Close releases the connection.
	Close(ctx context.Context) error
}

// Database groups named collections.
type Database interface {
	Name() string
	// Collection returns a handle to the named collection.
	// Collections are created on first insert.
	Collection(name string) Collection
}

// Collection is an ordered collection of objects.
type Collection interface {
	Name() string
	// InsertOne appends o to the collection.
	InsertOne(ctx context.Context, o object.Object) error
	// FindOne returns the first document in insertion order matching f.
	FindOne(ctx context.Context, f *filter.Filter) (object.Object, error)
	// Find returns a cursor over all documents matching f in insertion order.
	Find(ctx context.Context, f *filter.Filter) (Cursor, error)
	// DeleteOne deletes the first document matching f and reports whether
	// a document was deleted.
	DeleteOne(ctx context.Context, f *filter.Filter) (bool, error)
	// Drop deletes the collection and all of its documents.
	Drop(ctx context.Context) error
}

// Cursor iterates over query results.
type Cursor interface {
	// Next advances to the next document and returns false when done or on error.
	Next(ctx context.Context) bool
	// Object returns the current document.
	Object() object.Object
	// Err returns the error that stopped iteration, if any.
	Err() error
	Close(ctx context.Context) error
}

// All drains the cursor and closes it.
func All(ctx context.Context, cur Cursor) (out []object.Object, err error) {
	defer func() {
		if cerr := cur.Close(ctx); err == nil {
			err = cerr
		}
	}()
	for cur.Next(ctx) {
		out = append(out, cur.Object())
	}
	return out, cur.Err()
}
