// Package object defines the immutable documents stored in and queried from sets.
package object

import (
	"bytes"
	"iter"

	"github.com/nasdf/household/errors"

	"github.com/ipld/go-ipld-prime/codec/dagcbor"
	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/ipld/go-ipld-prime/node/basicnode"
)

var emptyNode = func() datamodel.Node {
	nb := basicnode.Prototype.Map.NewBuilder()
	ma, err := nb.BeginMap(0)
	if err != nil {
		panic(err)
	}
	if err := ma.Finish(); err != nil {
		panic(err)
	}
	return nb.Build()
}()

// Object is an immutable mapping of string keys to JSON-like values.
//
// The zero value is an empty object.
type Object struct {
	node datamodel.Node
}

// New returns an object containing the given fields.
func New(fields map[string]any) (Object, error) {
	nb := basicnode.Prototype.Map.NewBuilder()
	if err := assignMap(fields, nb); err != nil {
		return Object{}, err
	}
	return Object{node: nb.Build()}, nil
}

// MustNew is like New but panics on error.
func MustNew(fields map[string]any) Object {
	o, err := New(fields)
	if err != nil {
		panic(err)
	}
	return o
}

// FromNode returns an object holding a normalized copy of the given map node.
func FromNode(n datamodel.Node) (Object, error) {
	if n.Kind() != datamodel.Kind_Map {
		return Object{}, errors.InvalidArgumentf("object must be a map, got %s", n.Kind())
	}
	nb := basicnode.Prototype.Map.NewBuilder()
	if err := assignNode(n, nb); err != nil {
		return Object{}, err
	}
	return Object{node: nb.Build()}, nil
}

// Node returns the underlying map node.
func (o Object) Node() datamodel.Node {
	if o.node == nil {
		return emptyNode
	}
	return o.node
}

// Len returns the number of fields.
func (o Object) Len() int {
	return int(o.Node().Length())
}

// Keys returns the field names in sorted order.
func (o Object) Keys() []string {
	keys := make([]string, 0, o.Len())
	for k := range o.All() {
		keys = append(keys, k)
	}
	return keys
}

// All returns an iterator over the fields in key order.
func (o Object) All() iter.Seq2[string, datamodel.Node] {
	return func(yield func(string, datamodel.Node) bool) {
		for it := o.Node().MapIterator(); !it.Done(); {
			k, v, err := it.Next()
			if err != nil {
				return
			}
			key, err := k.AsString()
			if err != nil {
				return
			}
			if !yield(key, v) {
				return
			}
		}
	}
}

// Has returns true if the field exists.
func (o Object) Has(key string) bool {
	_, ok := o.Lookup(key)
	return ok
}

// Lookup returns the node stored under key.
func (o Object) Lookup(key string) (datamodel.Node, bool) {
	n, err := o.Node().LookupByString(key)
	if err != nil {
		return nil, false
	}
	return n, true
}

func (o Object) field(key string) (datamodel.Node, error) {
	n, ok := o.Lookup(key)
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "field %q", key)
	}
	return n, nil
}

// GetString returns the string field with the given key.
func (o Object) GetString(key string) (string, error) {
	n, err := o.field(key)
	if err != nil {
		return "", err
	}
	if n.Kind() != datamodel.Kind_String {
		return "", errors.InvalidArgumentf("field %q is %s, not string", key, n.Kind())
	}
	return n.AsString()
}

// GetInt returns the integer field with the given key.
func (o Object) GetInt(key string) (int64, error) {
	n, err := o.field(key)
	if err != nil {
		return 0, err
	}
	if n.Kind() != datamodel.Kind_Int {
		return 0, errors.InvalidArgumentf("field %q is %s, not int", key, n.Kind())
	}
	return n.AsInt()
}

// GetObject returns the nested object with the given key.
func (o Object) GetObject(key string) (Object, error) {
	n, err := o.field(key)
	if err != nil {
		return Object{}, err
	}
	if n.Kind() != datamodel.Kind_Map {
		return Object{}, errors.InvalidArgumentf("field %q is %s, not map", key, n.Kind())
	}
	return Object{node: n}, nil
}

// GetObjects returns the list of objects with the given key.
func (o Object) GetObjects(key string) ([]Object, error) {
	n, err := o.field(key)
	if err != nil {
		return nil, err
	}
	if n.Kind() != datamodel.Kind_List {
		return nil, errors.InvalidArgumentf("field %q is %s, not list", key, n.Kind())
	}
	out := make([]Object, 0, n.Length())
	for it := n.ListIterator(); !it.Done(); {
		i, v, err := it.Next()
		if err != nil {
			return nil, err
		}
		if v.Kind() != datamodel.Kind_Map {
			return nil, errors.InvalidArgumentf("field %q item %d is %s, not map", key, i, v.Kind())
		}
		out = append(out, Object{node: v})
	}
	return out, nil
}

// Get returns the go value of the field with the given key.
func (o Object) Get(key string) (any, error) {
	n, err := o.field(key)
	if err != nil {
		return nil, err
	}
	return Value(n)
}

// Map returns the object as a go map.
func (o Object) Map() (map[string]any, error) {
	return MapValue(o.Node())
}

// Merge returns a new object with the fields of o overridden by the fields of other.
func (o Object) Merge(other Object) Object {
	fields := make(map[string]datamodel.Node, o.Len()+other.Len())
	for k, v := range o.All() {
		fields[k] = v
	}
	for k, v := range other.All() {
		fields[k] = v
	}
	nb := basicnode.Prototype.Map.NewBuilder()
	if err := assignNodeMap(fields, nb); err != nil {
		panic(errors.NewAssertionErrorWithWrappedErrf(err, "merge objects"))
	}
	return Object{node: nb.Build()}
}

// With returns a copy of o with key set to value.
func (o Object) With(key string, value any) (Object, error) {
	other, err := New(map[string]any{key: value})
	if err != nil {
		return Object{}, err
	}
	return o.Merge(other), nil
}

// Encode returns the canonical dag-cbor encoding of the object.
func (o Object) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := dagcbor.Encode(o.Node(), &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Digest returns the content hash of the object.
//
// Objects with equal content always have equal digests.
func (o Object) Digest() Hash {
	data, err := o.Encode()
	if err != nil {
		panic(errors.NewAssertionErrorWithWrappedErrf(err, "encode object"))
	}
	return Sum(data)
}

// Equal returns true if both objects have the same content.
func (o Object) Equal(other Object) bool {
	a, err := o.Encode()
	if err != nil {
		return false
	}
	b, err := other.Encode()
	if err != nil {
		return false
	}
	return bytes.Equal(a, b)
}

// IsEmpty returns true if the object has no fields.
func (o Object) IsEmpty() bool {
	return o.Len() == 0
}
