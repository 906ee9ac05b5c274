package core

import (
	"context"
	"io"

	"github.com/nasdf/household/docstore"
	"github.com/nasdf/household/errors"

	"github.com/ipld/go-car/v2"
	cidlink "github.com/ipld/go-ipld-prime/linking/cid"
	"github.com/ipld/go-ipld-prime/node/basicnode"
	"github.com/ipld/go-ipld-prime/traversal/selector"
	"github.com/ipld/go-ipld-prime/traversal/selector/builder"
)

// Export writes a CAR containing the DAG of the given collection to out.
func Export(ctx context.Context, store *Store, collection docstore.Collection, out io.Writer) error {
	c, ok := collection.(*Collection)
	if !ok || c.store != store {
		return errors.InvalidArgumentf("collection %s does not belong to this store", collection.Name())
	}
	collections, err := store.Collections(ctx)
	if err != nil {
		return err
	}
	rootLink, ok := collections[c.path]
	if !ok {
		return errors.Wrapf(docstore.ErrNotFound, "collection %s", c.path)
	}
	cid := rootLink.(cidlink.Link).Cid
	ssb := builder.NewSelectorSpecBuilder(basicnode.Prototype.Any)
	sel := ssb.ExploreRecursive(selector.RecursionLimitNone(), ssb.ExploreAll(ssb.ExploreRecursiveEdge()))

	w, err := car.NewSelectiveWriter(ctx, &store.links, cid, sel.Node())
	if err != nil {
		return err
	}
	_, err = w.WriteTo(out)
	return err
}
