// Package filter matches objects against partial, nested-path predicates.
package filter

import (
	"strings"

	"github.com/nasdf/household/errors"
	"github.com/nasdf/household/object"
)

const (
	equalFilter          = "$eq"
	notEqualFilter       = "$ne"
	greaterFilter        = "$gt"
	greaterOrEqualFilter = "$gte"
	lessFilter           = "$lt"
	lessOrEqualFilter    = "$lte"
	inFilter             = "$in"
	notInFilter          = "$nin"
	existsFilter         = "$exists"
	allFilter            = "$all"
	anyFilter            = "$any"
	noneFilter           = "$none"
	andFilter            = "$and"
	orFilter             = "$or"
	notFilter            = "$not"
)

var fieldOperators = map[string]struct{}{
	equalFilter:          {},
	notEqualFilter:       {},
	greaterFilter:        {},
	greaterOrEqualFilter: {},
	lessFilter:           {},
	lessOrEqualFilter:    {},
	inFilter:             {},
	notInFilter:          {},
	existsFilter:         {},
	allFilter:            {},
	anyFilter:            {},
	noneFilter:           {},
}

// IsFieldOperator returns true if key is an operator applied to a single field.
func IsFieldOperator(key string) bool {
	_, ok := fieldOperators[key]
	return ok
}

// IsOperatorMap returns true if every key of value is a field operator.
func IsOperatorMap(value map[string]any) bool {
	if len(value) == 0 {
		return false
	}
	for k := range value {
		if !IsFieldOperator(k) {
			return false
		}
	}
	return true
}

// SplitPath splits a dotted field key into its segments.
func SplitPath(key string) []string {
	return strings.Split(key, ".")
}

// Filter selects objects.
//
// A filter is either a partial predicate built with Where or New, or an
// exact match built with Exact. Filters are immutable and safe for
// concurrent use.
type Filter struct {
	source object.Object
	exact  bool
	root   *document
}

// New returns a partial predicate built from the given fields.
func New(fields map[string]any) (*Filter, error) {
	o, err := object.New(fields)
	if err != nil {
		return nil, errors.Mark(err, errors.ErrInvalidArgument)
	}
	return Where(o)
}

// MustNew is like New but panics on error.
func MustNew(fields map[string]any) *Filter {
	f, err := New(fields)
	if err != nil {
		panic(err)
	}
	return f
}

// Where returns a partial predicate described by o.
//
// Each key of o constrains a field (dotted keys address nested fields) or
// is one of the logical operators $and, $or and $not. A map value made only
// of field operators applies them to the field, any other map value
// constrains the sub-fields of the field, and any other value must equal
// the field.
func Where(o object.Object) (*Filter, error) {
	value, err := o.Map()
	if err != nil {
		return nil, err
	}
	root, err := parseDocument(value)
	if err != nil {
		return nil, err
	}
	return &Filter{source: o, root: root}, nil
}

// MustWhere is like Where but panics on error.
func MustWhere(o object.Object) *Filter {
	f, err := Where(o)
	if err != nil {
		panic(err)
	}
	return f
}

// Exact returns a filter matching only objects with the same content as o.
func Exact(o object.Object) *Filter {
	return &Filter{source: o, exact: true}
}

// Empty returns a filter matching every object.
func Empty() *Filter {
	return &Filter{root: &document{}}
}

// Object returns the predicate, or the document of an exact filter.
func (f *Filter) Object() object.Object {
	return f.source
}

// IsExact returns true if the filter was built with Exact.
func (f *Filter) IsExact() bool {
	return f.exact
}

// Document returns the document an exact filter matches.
func (f *Filter) Document() (object.Object, bool) {
	return f.source, f.exact
}

// IsEmpty returns true if the filter matches every object.
func (f *Filter) IsEmpty() bool {
	return !f.exact && f.source.IsEmpty()
}

// Digest returns a content hash that distinguishes exact and partial filters.
func (f *Filter) Digest() object.Hash {
	if f.exact {
		return object.MustNew(map[string]any{equalFilter: f.source}).Digest()
	}
	return f.source.Digest()
}

// String returns a printable form of the filter.
func (f *Filter) String() string {
	if f.exact {
		return "exact " + f.source.String()
	}
	return f.source.String()
}

// Match returns true if o satisfies the filter.
func (f *Filter) Match(o object.Object) (bool, error) {
	if f.exact {
		return f.source.Equal(o), nil
	}
	doc, err := o.Map()
	if err != nil {
		return false, err
	}
	return f.root.match(doc), nil
}

// Within returns a filter applying f to the map stored under field.
func (f *Filter) Within(field string) *Filter {
	if f.exact {
		return MustNew(map[string]any{
			field: map[string]any{equalFilter: f.source},
		})
	}
	return MustNew(map[string]any{field: f.source})
}

// And returns a filter matching objects that satisfy every given filter.
func And(filters ...*Filter) (*Filter, error) {
	clauses := make([]any, 0, len(filters))
	for _, f := range filters {
		if f.exact {
			return nil, errors.InvalidArgumentf("exact filters cannot be combined")
		}
		if f.IsEmpty() {
			continue
		}
		clauses = append(clauses, f.source)
	}
	switch len(clauses) {
	case 0:
		return Empty(), nil
	case 1:
		return Where(clauses[0].(object.Object))
	default:
		return New(map[string]any{andFilter: clauses})
	}
}
