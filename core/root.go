package core

import (
	"cmp"
	"fmt"
	"maps"
	"slices"

	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/ipld/go-ipld-prime/fluent/qp"
	"github.com/ipld/go-ipld-prime/node/basicnode"
)

const (
	// RootCollectionsFieldName is the name of the collections field on a root.
	RootCollectionsFieldName = "Collections"
	// CollectionSequenceFieldName is the name of the last assigned document key on a collection.
	CollectionSequenceFieldName = "Sequence"
	// CollectionDocumentsFieldName is the name of the documents field on a collection.
	CollectionDocumentsFieldName = "Documents"
)

// DocumentKey returns the key of the document with the given sequence number.
//
// Keys are fixed width so that sorting them preserves insertion order.
func DocumentKey(seq int64) string {
	return fmt.Sprintf("%020d", seq)
}

// documentEntry is a document key and the link to its content.
type documentEntry struct {
	key  string
	link datamodel.Link
}

// collectionRoot is the decoded form of a collection node.
type collectionRoot struct {
	sequence  int64
	documents []documentEntry
}

// BuildRootNode returns a root node holding the given collection links.
func BuildRootNode(collections map[string]datamodel.Link) (datamodel.Node, error) {
	names := slices.Sorted(maps.Keys(collections))
	return qp.BuildMap(basicnode.Prototype.Map, 1, func(ma datamodel.MapAssembler) {
		qp.MapEntry(ma, RootCollectionsFieldName, qp.Map(int64(len(names)), func(ma datamodel.MapAssembler) {
			for _, name := range names {
				qp.MapEntry(ma, name, qp.Link(collections[name]))
			}
		}))
	})
}

// buildCollectionNode returns a collection node holding the given documents.
func buildCollectionNode(col *collectionRoot) (datamodel.Node, error) {
	return qp.BuildMap(basicnode.Prototype.Map, 2, func(ma datamodel.MapAssembler) {
		qp.MapEntry(ma, CollectionSequenceFieldName, qp.Int(col.sequence))
		qp.MapEntry(ma, CollectionDocumentsFieldName, qp.Map(int64(len(col.documents)), func(ma datamodel.MapAssembler) {
			for _, doc := range col.documents {
				qp.MapEntry(ma, doc.key, qp.Link(doc.link))
			}
		}))
	})
}

// parseRootNode returns the collection links of a root node.
func parseRootNode(n datamodel.Node) (map[string]datamodel.Link, error) {
	collectionsNode, err := n.LookupByString(RootCollectionsFieldName)
	if err != nil {
		return nil, err
	}
	out := make(map[string]datamodel.Link, collectionsNode.Length())
	for iter := collectionsNode.MapIterator(); !iter.Done(); {
		k, v, err := iter.Next()
		if err != nil {
			return nil, err
		}
		name, err := k.AsString()
		if err != nil {
			return nil, err
		}
		lnk, err := v.AsLink()
		if err != nil {
			return nil, err
		}
		out[name] = lnk
	}
	return out, nil
}

// parseCollectionNode returns the decoded collection with documents sorted by key.
func parseCollectionNode(n datamodel.Node) (*collectionRoot, error) {
	sequenceNode, err := n.LookupByString(CollectionSequenceFieldName)
	if err != nil {
		return nil, err
	}
	sequence, err := sequenceNode.AsInt()
	if err != nil {
		return nil, err
	}
	documentsNode, err := n.LookupByString(CollectionDocumentsFieldName)
	if err != nil {
		return nil, err
	}
	col := &collectionRoot{
		sequence:  sequence,
		documents: make([]documentEntry, 0, documentsNode.Length()),
	}
	for iter := documentsNode.MapIterator(); !iter.Done(); {
		k, v, err := iter.Next()
		if err != nil {
			return nil, err
		}
		key, err := k.AsString()
		if err != nil {
			return nil, err
		}
		lnk, err := v.AsLink()
		if err != nil {
			return nil, err
		}
		col.documents = append(col.documents, documentEntry{key: key, link: lnk})
	}
	slices.SortFunc(col.documents, func(a, b documentEntry) int {
		return cmp.Compare(a.key, b.key)
	})
	return col, nil
}
