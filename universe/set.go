// Package universe provides persisted sets of objects and the naming of
// the collections that back them.
package universe

import (
	"context"
	"fmt"
	"iter"

	"github.com/nasdf/household/docstore"
	"github.com/nasdf/household/errors"
	"github.com/nasdf/household/filter"
	"github.com/nasdf/household/object"
)

// CardinalityError is returned by FindOne when the number of matches is not exactly one.
type CardinalityError struct {
	// Count is the number of matches found, capped at two.
	Count int
}

func (e *CardinalityError) Error() string {
	if e.Count == 0 {
		return "expected exactly one result, found none"
	}
	return fmt.Sprintf("expected exactly one result, found %d or more", e.Count)
}

// IsCardinalityError returns true if err is or wraps a CardinalityError.
func IsCardinalityError(err error) bool {
	var target *CardinalityError
	return errors.As(err, &target)
}

// UniversalSet is a persisted set of objects unique by content.
type UniversalSet struct {
	collection docstore.Collection
}

// New returns a set backed by the given collection.
func New(collection docstore.Collection) *UniversalSet {
	return &UniversalSet{collection: collection}
}

// Name returns the name of the backing collection.
func (s *UniversalSet) Name() string {
	return s.collection.Name()
}

// Collection returns the backing collection.
func (s *UniversalSet) Collection() docstore.Collection {
	return s.collection
}

// Add inserts o unless an object with the same content is already stored.
func (s *UniversalSet) Add(ctx context.Context, o object.Object) error {
	_, err := s.collection.FindOne(ctx, filter.Exact(o))
	if err == nil {
		return nil
	}
	if !errors.Is(err, docstore.ErrNotFound) {
		return err
	}
	return s.collection.InsertOne(ctx, o)
}

// Remove deletes at most one stored object with the same content as o.
//
// Removing an absent object is not an error.
func (s *UniversalSet) Remove(ctx context.Context, o object.Object) error {
	_, err := s.collection.DeleteOne(ctx, filter.Exact(o))
	return err
}

// Find returns the objects matching f.
//
// The query runs each time the sequence is ranged over. Iteration stops
// after the first error.
func (s *UniversalSet) Find(ctx context.Context, f *filter.Filter) iter.Seq2[object.Object, error] {
	return func(yield func(object.Object, error) bool) {
		cur, err := s.collection.Find(ctx, f)
		if err != nil {
			yield(object.Object{}, err)
			return
		}
		defer cur.Close(ctx)

		for cur.Next(ctx) {
			if !yield(cur.Object(), nil) {
				return
			}
		}
		if err := cur.Err(); err != nil {
			yield(object.Object{}, err)
		}
	}
}

// FindOne returns the only object matching f.
func (s *UniversalSet) FindOne(ctx context.Context, f *filter.Filter) (object.Object, error) {
	var (
		found object.Object
		count int
	)
	for o, err := range s.Find(ctx, f) {
		if err != nil {
			return object.Object{}, err
		}
		found = o
		count++
		if count > 1 {
			break
		}
	}
	if count != 1 {
		return object.Object{}, &CardinalityError{Count: count}
	}
	return found, nil
}

// Elements returns a snapshot of every stored object.
func (s *UniversalSet) Elements(ctx context.Context) (*object.Set, error) {
	out := object.NewSet()
	for o, err := range s.Find(ctx, filter.Empty()) {
		if err != nil {
			return nil, err
		}
		out.Add(o)
	}
	return out, nil
}

// Slice returns every object matching f in storage order.
func (s *UniversalSet) Slice(ctx context.Context, f *filter.Filter) ([]object.Object, error) {
	var out []object.Object
	for o, err := range s.Find(ctx, f) {
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}
