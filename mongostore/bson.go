package mongostore

import (
	"slices"

	"github.com/nasdf/household/errors"
	"github.com/nasdf/household/filter"
	"github.com/nasdf/household/object"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	idField     = "_id"
	digestField = "_digest"
)

// encodeObject returns the stored form of o: its fields with sorted keys
// plus the content digest used for exact matches.
func encodeObject(o object.Object) (bson.D, error) {
	fields, err := o.Map()
	if err != nil {
		return nil, err
	}
	doc := encodeMap(fields)
	doc = append(doc, bson.E{Key: digestField, Value: o.Digest().String()})
	return doc, nil
}

func encodeMap(fields map[string]any) bson.D {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	doc := make(bson.D, 0, len(fields))
	for _, k := range keys {
		doc = append(doc, bson.E{Key: k, Value: encodeValue(fields[k])})
	}
	return doc
}

func encodeValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return encodeMap(v)
	case []any:
		out := make(bson.A, len(v))
		for i, e := range v {
			out[i] = encodeValue(e)
		}
		return out
	default:
		return v
	}
}

// decodeObject returns the object stored in doc without the store's own fields.
func decodeObject(doc bson.D) (object.Object, error) {
	fields := make(map[string]any, len(doc))
	for _, e := range doc {
		if e.Key == idField || e.Key == digestField {
			continue
		}
		v, err := decodeValue(e.Value)
		if err != nil {
			return object.Object{}, errors.Wrapf(err, "field %q", e.Key)
		}
		fields[e.Key] = v
	}
	return object.New(fields)
}

func decodeValue(value any) (any, error) {
	switch v := value.(type) {
	case nil, bool, string, int64, float64:
		return v, nil
	case int32:
		return int64(v), nil
	case primitive.D:
		out := make(map[string]any, len(v))
		for _, e := range v {
			val, err := decodeValue(e.Value)
			if err != nil {
				return nil, err
			}
			out[e.Key] = val
		}
		return out, nil
	case primitive.M:
		out := make(map[string]any, len(v))
		for k, e := range v {
			val, err := decodeValue(e)
			if err != nil {
				return nil, err
			}
			out[k] = val
		}
		return out, nil
	case primitive.A:
		out := make([]any, len(v))
		for i, e := range v {
			val, err := decodeValue(e)
			if err != nil {
				return nil, err
			}
			out[i] = val
		}
		return out, nil
	default:
		return nil, errors.InvalidArgumentf("unsupported bson value %T", value)
	}
}

// pushdownOperators are the field operators evaluated by the server.
// Server paths and equality reach into arrays, so only operators whose
// server form selects a superset are listed. Negations stay client side.
var pushdownOperators = map[string]struct{}{
	"$eq":     {},
	"$gt":     {},
	"$gte":    {},
	"$lt":     {},
	"$lte":    {},
	"$in":     {},
	"$exists": {},
}

// translateFilter returns a server query selecting at least every document
// f matches. Parts without a faithful server form are left out, so results
// must still be checked with f.Match.
func translateFilter(f *filter.Filter) (bson.D, error) {
	if doc, ok := f.Document(); ok {
		return bson.D{{Key: digestField, Value: doc.Digest().String()}}, nil
	}
	fields, err := f.Object().Map()
	if err != nil {
		return nil, err
	}
	return translateDocument(fields, ""), nil
}

func translateDocument(fields map[string]any, prefix string) bson.D {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := bson.D{}
	for _, key := range keys {
		value := fields[key]
		switch key {
		case "$and":
			var clauses bson.A
			for _, sub := range value.([]any) {
				if q := translateDocument(sub.(map[string]any), prefix); len(q) > 0 {
					clauses = append(clauses, q)
				}
			}
			if len(clauses) > 0 {
				out = append(out, bson.E{Key: "$and", Value: clauses})
			}
		case "$or":
			var clauses bson.A
			widened := false
			for _, sub := range value.([]any) {
				q := translateDocument(sub.(map[string]any), prefix)
				if len(q) == 0 {
					widened = true
					break
				}
				clauses = append(clauses, q)
			}
			if !widened && len(clauses) > 0 {
				out = append(out, bson.E{Key: "$or", Value: clauses})
			}
		case "$not":
			// no faithful top level form; checked client side
		default:
			out = append(out, translateField(prefix+key, value)...)
		}
	}
	return out
}

func translateField(path string, value any) bson.D {
	m, ok := value.(map[string]any)
	if !ok {
		if isScalar(value) && value != nil {
			return bson.D{{Key: path, Value: value}}
		}
		return nil
	}
	if !filter.IsOperatorMap(m) {
		return translateDocument(m, path+".")
	}
	ops := bson.D{}
	for _, op := range sortedKeys(m) {
		if _, ok := pushdownOperators[op]; !ok {
			continue
		}
		arg := m[op]
		switch op {
		case "$in":
			list := arg.([]any)
			if !slices.ContainsFunc(list, func(v any) bool { return !isScalar(v) || v == nil }) {
				ops = append(ops, bson.E{Key: op, Value: bson.A(list)})
			}
		case "$exists":
			if arg == true {
				ops = append(ops, bson.E{Key: op, Value: true})
			}
		default:
			if isScalar(arg) && arg != nil {
				ops = append(ops, bson.E{Key: op, Value: arg})
			}
		}
	}
	if len(ops) == 0 {
		return nil
	}
	return bson.D{{Key: path, Value: ops}}
}

func isScalar(v any) bool {
	switch v.(type) {
	case nil, bool, string, int64, float64:
		return true
	default:
		return false
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
