// Package mongostore implements the document store on MongoDB.
package mongostore

import (
	"context"
	"time"

	"github.com/nasdf/household/docstore"
	"github.com/nasdf/household/errors"
	"github.com/nasdf/household/filter"
	"github.com/nasdf/household/logger"
	"github.com/nasdf/household/object"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// insertionOrder sorts by the driver generated ObjectID which increases
// with insertion time.
var insertionOrder = bson.D{{Key: idField, Value: 1}}

// Client is a docstore client backed by a MongoDB deployment.
type Client struct {
	client *mongo.Client
	logger *zap.SugaredLogger
}

// Connect dials the deployment at uri and verifies it is reachable.
func Connect(ctx context.Context, uri string, timeout time.Duration, log *zap.SugaredLogger) (*Client, error) {
	log = logger.OrNop(log)

	opts := options.Client().ApplyURI(uri)
	if timeout > 0 {
		opts.SetTimeout(timeout)
	}
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(err, "connect to mongo")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(err, "ping mongo")
	}
	log.Infow("connected to mongo", "hosts", opts.Hosts)
	return &Client{client: client, logger: log}, nil
}

// New returns a client using an existing connection.
func New(client *mongo.Client, log *zap.SugaredLogger) *Client {
	return &Client{client: client, logger: logger.OrNop(log)}
}

func (c *Client) Database(name string) docstore.Database {
	return &Database{db: c.client.Database(name), logger: c.logger}
}

func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// Database is a MongoDB database.
type Database struct {
	db     *mongo.Database
	logger *zap.SugaredLogger
}

func (d *Database) Name() string {
	return d.db.Name()
}

func (d *Database) Collection(name string) docstore.Collection {
	return &Collection{coll: d.db.Collection(name), logger: d.logger}
}

// Collection is a MongoDB collection of objects.
type Collection struct {
	coll   *mongo.Collection
	logger *zap.SugaredLogger
}

func (c *Collection) Name() string {
	return c.coll.Name()
}

func (c *Collection) path() string {
	return c.coll.Database().Name() + "." + c.coll.Name()
}

func (c *Collection) InsertOne(ctx context.Context, o object.Object) error {
	doc, err := encodeObject(o)
	if err != nil {
		return errors.Wrapf(err, "insert into %s", c.path())
	}
	if _, err := c.coll.InsertOne(ctx, doc); err != nil {
		return errors.Wrapf(err, "insert into %s", c.path())
	}
	return nil
}

func (c *Collection) Find(ctx context.Context, f *filter.Filter) (docstore.Cursor, error) {
	if f == nil {
		f = filter.Empty()
	}
	query, err := translateFilter(f)
	if err != nil {
		return nil, errors.Wrapf(err, "find in %s", c.path())
	}
	c.logger.Debugw("find", "collection", c.path(), "filter", f.String())

	cur, err := c.coll.Find(ctx, query, options.Find().SetSort(insertionOrder))
	if err != nil {
		return nil, errors.Wrapf(err, "find in %s", c.path())
	}
	return &cursor{cur: cur, filter: f}, nil
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
	return object.Object{}, errors.Wrapf(docstore.ErrNotFound, "find one in %s", c.path())
}

func (c *Collection) DeleteOne(ctx context.Context, f *filter.Filter) (bool, error) {
	if f == nil {
		f = filter.Empty()
	}
	query, err := translateFilter(f)
	if err != nil {
		return false, errors.Wrapf(err, "delete from %s", c.path())
	}
	cur, err := c.coll.Find(ctx, query, options.Find().SetSort(insertionOrder))
	if err != nil {
		return false, errors.Wrapf(err, "delete from %s", c.path())
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var doc bson.D
		if err := cur.Decode(&doc); err != nil {
			return false, errors.Wrapf(err, "delete from %s", c.path())
		}
		match, err := matchDocument(f, doc)
		if err != nil {
			return false, errors.Wrapf(err, "delete from %s", c.path())
		}
		if !match {
			continue
		}
		res, err := c.coll.DeleteOne(ctx, bson.D{{Key: idField, Value: documentID(doc)}})
		if err != nil {
			return false, errors.Wrapf(err, "delete from %s", c.path())
		}
		return res.DeletedCount > 0, nil
	}
	if err := cur.Err(); err != nil {
		return false, errors.Wrapf(err, "delete from %s", c.path())
	}
	return false, nil
}

func (c *Collection) Drop(ctx context.Context) error {
	if err := c.coll.Drop(ctx); err != nil {
		return errors.Wrapf(err, "drop %s", c.path())
	}
	return nil
}

func documentID(doc bson.D) any {
	for _, e := range doc {
		if e.Key == idField {
			return e.Value
		}
	}
	return nil
}

func matchDocument(f *filter.Filter, doc bson.D) (bool, error) {
	o, err := decodeObject(doc)
	if err != nil {
		return false, err
	}
	return f.Match(o)
}

// cursor re-checks every server result against the filter since
// the server query may select a superset.
type cursor struct {
	cur     *mongo.Cursor
	filter  *filter.Filter
	current object.Object
	err     error
}

func (c *cursor) Next(ctx context.Context) bool {
	for c.err == nil && c.cur.Next(ctx) {
		var doc bson.D
		if err := c.cur.Decode(&doc); err != nil {
			c.err = err
			return false
		}
		o, err := decodeObject(doc)
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
	if c.err == nil {
		c.err = c.cur.Err()
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
	return c.cur.Close(ctx)
}
