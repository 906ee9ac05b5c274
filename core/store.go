// Package core implements a content-addressed document store.
//
// Every document is stored as an immutable dag-cbor block. A collection is
// a block mapping document keys to document links and the root is a block
// mapping collection names to collection links. Writes build new blocks and
// then move the root link, so readers always see a consistent snapshot.
package core

import (
	"context"
	"sync"

	"github.com/nasdf/household/errors"
	"github.com/nasdf/household/logger"
	"github.com/nasdf/household/storage"

	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/ipld/go-ipld-prime/linking"
	cidlink "github.com/ipld/go-ipld-prime/linking/cid"
	"github.com/ipld/go-ipld-prime/node/basicnode"
	"go.uber.org/zap"
)

// RootLinkKey is the name of the key for the root link.
const RootLinkKey = "root"

// errNoChange aborts an update without committing.
var errNoChange = errors.New("no change")

type Store struct {
	storage storage.Storage
	links   linking.LinkSystem
	logger  *zap.SugaredLogger
	// commitLock serializes writers.
	commitLock sync.Mutex
}

// Open returns a store using the given storage.
//
// An empty root is created if the storage does not contain one.
func Open(ctx context.Context, s storage.Storage, log *zap.SugaredLogger) (*Store, error) {
	links := cidlink.DefaultLinkSystem()
	links.SetReadStorage(s)
	links.SetWriteStorage(s)

	store := &Store{
		storage: s,
		links:   links,
		logger:  logger.OrNop(log),
	}

	_, err := store.RootLink(ctx)
	if err == nil {
		return store, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	rootNode, err := BuildRootNode(nil)
	if err != nil {
		return nil, err
	}
	rootLink, err := store.Store(ctx, rootNode)
	if err != nil {
		return nil, err
	}
	if err := store.SetRootLink(ctx, rootLink); err != nil {
		return nil, err
	}
	store.logger.Debugw("initialized empty store", "root", rootLink.String())
	return store, nil
}

// RootLink returns the current root link from the store.
func (s *Store) RootLink(ctx context.Context) (datamodel.Link, error) {
	data, err := s.storage.Get(ctx, RootLinkKey)
	if err != nil {
		return nil, err
	}
	return ParseLink(string(data))
}

// SetRootLink sets the store root link to the given link value.
func (s *Store) SetRootLink(ctx context.Context, lnk datamodel.Link) error {
	return s.storage.Put(ctx, RootLinkKey, []byte(lnk.String()))
}

// Load returns the node matching the given link.
func (s *Store) Load(ctx context.Context, lnk datamodel.Link) (datamodel.Node, error) {
	return s.links.Load(linking.LinkContext{Ctx: ctx}, lnk, basicnode.Prototype.Any)
}

// Store writes the given node to the store and returns its link.
func (s *Store) Store(ctx context.Context, node datamodel.Node) (datamodel.Link, error) {
	return s.links.Store(linking.LinkContext{Ctx: ctx}, defaultLinkPrototype, node)
}

// LinkSystem returns the linking.LinkSystem used to store and load data.
func (s *Store) LinkSystem() *linking.LinkSystem {
	return &s.links
}

// Collections returns the links of all collections in the current root.
func (s *Store) Collections(ctx context.Context) (map[string]datamodel.Link, error) {
	rootLink, err := s.RootLink(ctx)
	if err != nil {
		return nil, err
	}
	rootNode, err := s.Load(ctx, rootLink)
	if err != nil {
		return nil, err
	}
	return parseRootNode(rootNode)
}

// collection returns the named collection from the current root.
func (s *Store) collection(ctx context.Context, name string) (*collectionRoot, bool, error) {
	collections, err := s.Collections(ctx)
	if err != nil {
		return nil, false, err
	}
	lnk, ok := collections[name]
	if !ok {
		return &collectionRoot{}, false, nil
	}
	n, err := s.Load(ctx, lnk)
	if err != nil {
		return nil, false, err
	}
	col, err := parseCollectionNode(n)
	if err != nil {
		return nil, false, err
	}
	return col, true, nil
}

// update applies fn to the named collection and commits the result.
//
// When fn returns a nil collection the collection is removed.
func (s *Store) update(ctx context.Context, name string, fn func(col *collectionRoot) (*collectionRoot, error)) error {
	s.commitLock.Lock()
	defer s.commitLock.Unlock()

	collections, err := s.Collections(ctx)
	if err != nil {
		return err
	}
	col := &collectionRoot{}
	if lnk, ok := collections[name]; ok {
		n, err := s.Load(ctx, lnk)
		if err != nil {
			return err
		}
		col, err = parseCollectionNode(n)
		if err != nil {
			return err
		}
	}
	col, err = fn(col)
	if errors.Is(err, errNoChange) {
		return nil
	}
	if err != nil {
		return err
	}
	if col == nil {
		delete(collections, name)
	} else {
		n, err := buildCollectionNode(col)
		if err != nil {
			return err
		}
		lnk, err := s.Store(ctx, n)
		if err != nil {
			return err
		}
		collections[name] = lnk
	}
	rootNode, err := BuildRootNode(collections)
	if err != nil {
		return err
	}
	rootLink, err := s.Store(ctx, rootNode)
	if err != nil {
		return err
	}
	return s.SetRootLink(ctx, rootLink)
}

// Close closes the underlying storage.
func (s *Store) Close(ctx context.Context) error {
	s.logger.Infow("closing store")
	return s.storage.Close()
}
