package object

import (
	"math"
	"slices"

	"github.com/nasdf/household/errors"

	"github.com/ipld/go-ipld-prime/datamodel"
)

func assignMap(value map[string]any, na datamodel.NodeAssembler) error {
	keys := make([]string, 0, len(value))
	for k := range value {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	ma, err := na.BeginMap(int64(len(value)))
	if err != nil {
		return err
	}
	for _, k := range keys {
		va, err := ma.AssembleEntry(k)
		if err != nil {
			return err
		}
		if err := assignValue(value[k], va); err != nil {
			return errors.Wrapf(err, "field %q", k)
		}
	}
	return ma.Finish()
}

func assignList[T any](value []T, na datamodel.NodeAssembler) error {
	la, err := na.BeginList(int64(len(value)))
	if err != nil {
		return err
	}
	for i, v := range value {
		if err := assignValue(v, la.AssembleValue()); err != nil {
			return errors.Wrapf(err, "item %d", i)
		}
	}
	return la.Finish()
}

func assignFloat(v float64, na datamodel.NodeAssembler) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return errors.InvalidArgumentf("unsupported float value %v", v)
	}
	return na.AssignFloat(v)
}

func assignValue(value any, na datamodel.NodeAssembler) error {
	switch v := value.(type) {
	case nil:
		return na.AssignNull()
	case bool:
		return na.AssignBool(v)
	case string:
		return na.AssignString(v)
	case int:
		return na.AssignInt(int64(v))
	case int8:
		return na.AssignInt(int64(v))
	case int16:
		return na.AssignInt(int64(v))
	case int32:
		return na.AssignInt(int64(v))
	case int64:
		return na.AssignInt(v)
	case uint8:
		return na.AssignInt(int64(v))
	case uint16:
		return na.AssignInt(int64(v))
	case uint32:
		return na.AssignInt(int64(v))
	case uint:
		if uint64(v) > math.MaxInt64 {
			return errors.InvalidArgumentf("integer %d overflows int64", v)
		}
		return na.AssignInt(int64(v))
	case uint64:
		if v > math.MaxInt64 {
			return errors.InvalidArgumentf("integer %d overflows int64", v)
		}
		return na.AssignInt(int64(v))
	case float32:
		return assignFloat(float64(v), na)
	case float64:
		return assignFloat(v, na)
	case Object:
		return na.AssignNode(v.Node())
	case map[string]any:
		return assignMap(v, na)
	case []any:
		return assignList(v, na)
	case []Object:
		return assignList(v, na)
	case []string:
		return assignList(v, na)
	case []int64:
		return assignList(v, na)
	case datamodel.Node:
		return assignNode(v, na)
	default:
		return errors.InvalidArgumentf("unsupported value type %T", value)
	}
}

// assignNode copies n into na, sorting map keys and rejecting kinds
// that have no JSON representation.
func assignNode(n datamodel.Node, na datamodel.NodeAssembler) error {
	switch n.Kind() {
	case datamodel.Kind_Map:
		fields := make(map[string]datamodel.Node, n.Length())
		for it := n.MapIterator(); !it.Done(); {
			k, v, err := it.Next()
			if err != nil {
				return err
			}
			key, err := k.AsString()
			if err != nil {
				return err
			}
			fields[key] = v
		}
		return assignNodeMap(fields, na)
	case datamodel.Kind_List:
		la, err := na.BeginList(n.Length())
		if err != nil {
			return err
		}
		for it := n.ListIterator(); !it.Done(); {
			_, v, err := it.Next()
			if err != nil {
				return err
			}
			if err := assignNode(v, la.AssembleValue()); err != nil {
				return err
			}
		}
		return la.Finish()
	case datamodel.Kind_Float:
		v, err := n.AsFloat()
		if err != nil {
			return err
		}
		return assignFloat(v, na)
	case datamodel.Kind_Null, datamodel.Kind_Bool, datamodel.Kind_Int, datamodel.Kind_String:
		return na.AssignNode(n)
	default:
		return errors.InvalidArgumentf("unsupported node kind %s", n.Kind())
	}
}

func assignNodeMap(fields map[string]datamodel.Node, na datamodel.NodeAssembler) error {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	ma, err := na.BeginMap(int64(len(fields)))
	if err != nil {
		return err
	}
	for _, k := range keys {
		va, err := ma.AssembleEntry(k)
		if err != nil {
			return err
		}
		if err := assignNode(fields[k], va); err != nil {
			return errors.Wrapf(err, "field %q", k)
		}
	}
	return ma.Finish()
}
