package filter

import (
	"cmp"
	"slices"

	"github.com/nasdf/household/errors"
)

type clause interface {
	match(doc map[string]any) bool
}

type condition interface {
	match(value any, present bool) bool
}

// document is a conjunction of clauses applied to a map.
type document struct {
	clauses []clause
}

func (d *document) match(doc map[string]any) bool {
	for _, c := range d.clauses {
		if !c.match(doc) {
			return false
		}
	}
	return true
}

type andClause []*document

func (c andClause) match(doc map[string]any) bool {
	for _, d := range c {
		if !d.match(doc) {
			return false
		}
	}
	return true
}

type orClause []*document

func (c orClause) match(doc map[string]any) bool {
	for _, d := range c {
		if d.match(doc) {
			return true
		}
	}
	return false
}

type notClause struct {
	doc *document
}

func (c notClause) match(doc map[string]any) bool {
	return !c.doc.match(doc)
}

type fieldClause struct {
	path []string
	cond condition
}

func (c fieldClause) match(doc map[string]any) bool {
	value, present := lookup(doc, c.path)
	return c.cond.match(value, present)
}

type equalCondition struct {
	value any
}

func (c equalCondition) match(value any, present bool) bool {
	return present && equal(value, c.value)
}

type nestedCondition struct {
	doc *document
}

func (c nestedCondition) match(value any, present bool) bool {
	m, ok := value.(map[string]any)
	return present && ok && c.doc.match(m)
}

type operator struct {
	name  string
	value any
	elem  condition
}

type operatorCondition []operator

func (c operatorCondition) match(value any, present bool) bool {
	for _, op := range c {
		if !op.match(value, present) {
			return false
		}
	}
	return true
}

func (op operator) match(value any, present bool) bool {
	switch op.name {
	case equalFilter:
		return present && equal(value, op.value)
	case notEqualFilter:
		return !present || !equal(value, op.value)
	case greaterFilter:
		res, ok := compare(value, op.value)
		return present && ok && res > 0
	case greaterOrEqualFilter:
		res, ok := compare(value, op.value)
		return present && ok && res >= 0
	case lessFilter:
		res, ok := compare(value, op.value)
		return present && ok && res < 0
	case lessOrEqualFilter:
		res, ok := compare(value, op.value)
		return present && ok && res <= 0
	case inFilter:
		return present && contains(op.value.([]any), value)
	case notInFilter:
		return !present || !contains(op.value.([]any), value)
	case existsFilter:
		return present == op.value.(bool)
	case anyFilter:
		list, ok := value.([]any)
		return present && ok && slices.ContainsFunc(list, op.matchElem)
	case allFilter:
		list, ok := value.([]any)
		if !present || !ok {
			return false
		}
		for _, v := range list {
			if !op.matchElem(v) {
				return false
			}
		}
		return true
	case noneFilter:
		list, ok := value.([]any)
		return present && ok && !slices.ContainsFunc(list, op.matchElem)
	default:
		return false
	}
}

func (op operator) matchElem(v any) bool {
	return op.elem.match(v, true)
}

func parseDocument(value map[string]any) (*document, error) {
	keys := make([]string, 0, len(value))
	for k := range value {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	doc := &document{}
	for _, key := range keys {
		val := value[key]
		switch key {
		case andFilter, orFilter:
			docs, err := parseDocumentList(key, val)
			if err != nil {
				return nil, err
			}
			if key == andFilter {
				doc.clauses = append(doc.clauses, andClause(docs))
			} else {
				doc.clauses = append(doc.clauses, orClause(docs))
			}
		case notFilter:
			m, ok := val.(map[string]any)
			if !ok {
				return nil, errors.InvalidArgumentf("%s requires a filter, got %T", key, val)
			}
			sub, err := parseDocument(m)
			if err != nil {
				return nil, err
			}
			doc.clauses = append(doc.clauses, notClause{doc: sub})
		default:
			if key == "" || key[0] == '$' {
				return nil, errors.InvalidArgumentf("invalid filter operator %s", key)
			}
			cond, err := parseCondition(val)
			if err != nil {
				return nil, errors.Wrapf(err, "field %s", key)
			}
			doc.clauses = append(doc.clauses, fieldClause{path: SplitPath(key), cond: cond})
		}
	}
	return doc, nil
}

func parseDocumentList(key string, value any) ([]*document, error) {
	list, ok := value.([]any)
	if !ok {
		return nil, errors.InvalidArgumentf("%s requires a list of filters, got %T", key, value)
	}
	docs := make([]*document, 0, len(list))
	for _, v := range list {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, errors.InvalidArgumentf("%s requires a list of filters, got item %T", key, v)
		}
		sub, err := parseDocument(m)
		if err != nil {
			return nil, err
		}
		docs = append(docs, sub)
	}
	return docs, nil
}

func parseCondition(value any) (condition, error) {
	m, ok := value.(map[string]any)
	if !ok {
		return equalCondition{value: value}, nil
	}
	if !IsOperatorMap(m) {
		doc, err := parseDocument(m)
		if err != nil {
			return nil, err
		}
		return nestedCondition{doc: doc}, nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	ops := make(operatorCondition, 0, len(m))
	for _, key := range keys {
		op := operator{name: key, value: m[key]}
		switch key {
		case inFilter, notInFilter:
			if _, ok := op.value.([]any); !ok {
				return nil, errors.InvalidArgumentf("%s requires a list, got %T", key, op.value)
			}
		case existsFilter:
			if _, ok := op.value.(bool); !ok {
				return nil, errors.InvalidArgumentf("%s requires a bool, got %T", key, op.value)
			}
		case greaterFilter, greaterOrEqualFilter, lessFilter, lessOrEqualFilter:
			if !isComparable(op.value) {
				return nil, errors.InvalidArgumentf("%s requires a number or string, got %T", key, op.value)
			}
		case anyFilter, allFilter, noneFilter:
			elem, err := parseCondition(op.value)
			if err != nil {
				return nil, err
			}
			op.elem = elem
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func lookup(doc map[string]any, path []string) (any, bool) {
	var current any = doc
	for _, key := range path {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func contains(list []any, value any) bool {
	return slices.ContainsFunc(list, func(v any) bool { return equal(value, v) })
}

func isComparable(v any) bool {
	switch v.(type) {
	case int64, float64, string:
		return true
	default:
		return false
	}
}

// compare orders numbers numerically and strings lexically. Any other
// pairing is not ordered.
func compare(a, b any) (int, bool) {
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		if !ok {
			return 0, false
		}
		return cmp.Compare(x, y), true
	case int64:
		switch y := b.(type) {
		case int64:
			return cmp.Compare(x, y), true
		case float64:
			return cmp.Compare(float64(x), y), true
		}
	case float64:
		switch y := b.(type) {
		case int64:
			return cmp.Compare(x, float64(y)), true
		case float64:
			return cmp.Compare(x, y), true
		}
	}
	return 0, false
}

func equal(a, b any) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	case string:
		y, ok := b.(string)
		return ok && x == y
	case int64, float64:
		res, ok := compare(a, b)
		return ok && res == 0
	case []any:
		y, ok := b.([]any)
		return ok && slices.EqualFunc(x, y, equal)
	case map[string]any:
		y, ok := b.(map[string]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, v := range x {
			w, ok := y[k]
			if !ok || !equal(v, w) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
