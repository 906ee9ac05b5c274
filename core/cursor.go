package core

import (
	"context"

	"github.com/nasdf/household/filter"
	"github.com/nasdf/household/object"

	"github.com/ipld/go-ipld-prime/datamodel"
)

// cursor iterates over a snapshot of a collection's documents.
type cursor struct {
	store   *Store
	filter  *filter.Filter
	entries []documentEntry
	current object.Object
	err     error
}

func (c *cursor) Next(ctx context.Context) bool {
	for c.err == nil && len(c.entries) > 0 {
		entry := c.entries[0]
		c.entries = c.entries[1:]

		o, err := c.store.loadObject(ctx, entry.link)
		if err != nil {
			c.err = err
			return false
		}
		match, err := c.filter.Match(o)
		if err != nil {
			c.err = err
			return false
		}
		if match {
			c.current = o
			return true
		}
	}
	return false
}

func (c *cursor) Object() object.Object {
	return c.current
}

func (c *cursor) Err() error {
	return c.err
}

func (c *cursor) Close(ctx context.Context) error {
	c.entries = nil
	return nil
}

// loadObject returns the document stored under the given link.
func (s *Store) loadObject(ctx context.Context, lnk datamodel.Link) (object.Object, error) {
	n, err := s.Load(ctx, lnk)
	if err != nil {
		return object.Object{}, err
	}
	return object.FromNode(n)
}
