package object

import "iter"

// Set is a collection of objects unique by content.
//
// Iteration follows insertion order.
type Set struct {
	index map[string]int
	items []Object
}

// NewSet returns a set containing the given objects.
func NewSet(objects ...Object) *Set {
	s := &Set{index: make(map[string]int)}
	for _, o := range objects {
		s.Add(o)
	}
	return s
}

// Add inserts o and returns false if an equal object was already present.
func (s *Set) Add(o Object) bool {
	key := string(o.Digest())
	if _, ok := s.index[key]; ok {
		return false
	}
	s.index[key] = len(s.items)
	s.items = append(s.items, o)
	return true
}

// Has returns true if an object with the same content is in the set.
func (s *Set) Has(o Object) bool {
	_, ok := s.index[string(o.Digest())]
	return ok
}

// Len returns the number of objects in the set.
func (s *Set) Len() int {
	return len(s.items)
}

// Slice returns a copy of the objects in insertion order.
func (s *Set) Slice() []Object {
	out := make([]Object, len(s.items))
	copy(out, s.items)
	return out
}

// All returns an iterator over the objects in insertion order.
func (s *Set) All() iter.Seq[Object] {
	return func(yield func(Object) bool) {
		for _, o := range s.items {
			if !yield(o) {
				return
			}
		}
	}
}

// Equal returns true if both sets hold the same objects regardless of order.
func (s *Set) Equal(other *Set) bool {
	if s.Len() != other.Len() {
		return false
	}
	for key := range s.index {
		if _, ok := other.index[key]; !ok {
			return false
		}
	}
	return true
}
