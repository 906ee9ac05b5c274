package core

import (
	"context"
	"slices"

	"github.com/nasdf/household/docstore"
	"github.com/nasdf/household/errors"
	"github.com/nasdf/household/filter"
	"github.com/nasdf/household/object"
)

// CollectionSeparator joins database and collection names.
const CollectionSeparator = "/"

// Database returns a handle to the named database.
func (s *Store) Database(name string) docstore.Database {
	return &Database{store: s, name: name}
}

// Database is a namespace of collections within a store.
type Database struct {
	store *Store
	name  string
}

func (d *Database) Name() string {
	return d.name
}

// Collection returns a handle to the named collection.
func (d *Database) Collection(name string) docstore.Collection {
	return &Collection{
		store: d.store,
		name:  name,
		path:  d.name + CollectionSeparator + name,
	}
}

// Collection is an ordered collection of documents.
type Collection struct {
	store *Store
	name  string
	path  string
}

func (c *Collection) Name() string {
	return c.name
}

// Path returns the name of the collection within the store root.
func (c *Collection) Path() string {
	return c.path
}

func (c *Collection) InsertOne(ctx context.Context, o object.Object) error {
	lnk, err := c.store.Store(ctx, o.Node())
	if err != nil {
		return errors.Wrapf(err, "insert into %s", c.path)
	}
	return c.store.update(ctx, c.path, func(col *collectionRoot) (*collectionRoot, error) {
		col.sequence++
		col.documents = append(col.documents, documentEntry{
			key:  DocumentKey(col.sequence),
			link: lnk,
		})
		return col, nil
	})
}

func (c *Collection) Find(ctx context.Context, f *filter.Filter) (docstore.Cursor, error) {
	if f == nil {
		f = filter.Empty()
	}
	col, _, err := c.store.collection(ctx, c.path)
	if err != nil {
		return nil, errors.Wrapf(err, "find in %s", c.path)
	}
	return &cursor{
		store:   c.store,
		filter:  f,
		entries: col.documents,
	}, nil
}

func (c *Collection) FindOne(ctx context.Context, f *filter.Filter) (object.Object, error) {
	cur, err := c.Find(ctx, f)
	if err != nil {
		return object.Object{}, err
	}
	defer cur.Close(ctx)

	if cur.Next(ctx) {
		return cur.Object(), nil
	}
	if err := cur.Err(); err != nil {
		return object.Object{}, err
	}
	return object.Object{}, errors.Wrapf(docstore.ErrNotFound, "find one in %s", c.path)
}

func (c *Collection) DeleteOne(ctx context.Context, f *filter.Filter) (bool, error) {
	if f == nil {
		f = filter.Empty()
	}
	var deleted bool
	err := c.store.update(ctx, c.path, func(col *collectionRoot) (*collectionRoot, error) {
		for i, doc := range col.documents {
			o, err := c.store.loadObject(ctx, doc.link)
			if err != nil {
				return nil, err
			}
			match, err := f.Match(o)
			if err != nil {
				return nil, err
			}
			if match {
				col.documents = slices.Delete(col.documents, i, i+1)
				deleted = true
				return col, nil
			}
		}
		return nil, errNoChange
	})
	if err != nil {
		return false, errors.Wrapf(err, "delete from %s", c.path)
	}
	return deleted, nil
}

func (c *Collection) Drop(ctx context.Context) error {
	err := c.store.update(ctx, c.path, func(col *collectionRoot) (*collectionRoot, error) {
		if col.sequence == 0 && len(col.documents) == 0 {
			return nil, errNoChange
		}
		return nil, nil
	})
	if err != nil {
		return errors.Wrapf(err, "drop %s", c.path)
	}
	return nil
}
