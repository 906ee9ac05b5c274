package core

import (
	"github.com/ipfs/go-cid"
	"github.com/ipld/go-ipld-prime/datamodel"
	cidlink "github.com/ipld/go-ipld-prime/linking/cid"
	"github.com/multiformats/go-multihash"

	// codecs need to be initialized and registered
	_ "github.com/ipld/go-ipld-prime/codec/dagcbor"
	_ "github.com/ipld/go-ipld-prime/codec/dagjson"
)

var defaultLinkPrototype = cidlink.LinkPrototype{Prefix: cid.Prefix{
	Version:  1,
	Codec:    cid.DagCBOR,
	MhType:   multihash.SHA2_256,
	MhLength: 32,
}}

// ParseLink decodes a link from its string form.
func ParseLink(s string) (datamodel.Link, error) {
	id, err := cid.Decode(s)
	if err != nil {
		return nil, err
	}
	return cidlink.Link{Cid: id}, nil
}
