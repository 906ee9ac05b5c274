package object

import (
	"bytes"

	"github.com/nasdf/household/errors"

	"github.com/ipld/go-ipld-prime/codec"
	"github.com/ipld/go-ipld-prime/codec/dagjson"
	"github.com/ipld/go-ipld-prime/node/basicnode"
)

var jsonEncodeOptions = dagjson.EncodeOptions{
	EncodeLinks: false,
	EncodeBytes: false,
	MapSortMode: codec.MapSortMode_Lexical,
}

// ParseJSON returns the object encoded in the given JSON text.
func ParseJSON(data []byte) (Object, error) {
	nb := basicnode.Prototype.Any.NewBuilder()
	if err := dagjson.Decode(nb, bytes.NewReader(data)); err != nil {
		return Object{}, errors.Mark(errors.Wrap(err, "decode json"), errors.ErrInvalidArgument)
	}
	return FromNode(nb.Build())
}

// MarshalJSON implements json.Marshaler.
func (o Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := jsonEncodeOptions.Encode(o.Node(), &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Object) UnmarshalJSON(data []byte) error {
	out, err := ParseJSON(data)
	if err != nil {
		return err
	}
	*o = out
	return nil
}

// String returns the JSON representation of the object.
func (o Object) String() string {
	data, err := o.MarshalJSON()
	if err != nil {
		return "<invalid object: " + err.Error() + ">"
	}
	return string(data)
}
