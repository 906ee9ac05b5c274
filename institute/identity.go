package institute

import (
	"context"

	"github.com/nasdf/household/mental"
	"github.com/nasdf/household/object"
)

var (
	identityInstitute = object.MustNew(map[string]any{"type": "identity_institute"})
	person            = object.MustNew(map[string]any{"type": "person"})
	me                = person.Merge(object.MustNew(map[string]any{"identity_type": "me"}))
)

// Identity models a personal identity and the persons outside of it.
type Identity struct {
	base
}

// NewIdentity returns an identity client claiming into m.
func NewIdentity(m *mental.MentalSet) *Identity {
	i := &Identity{}
	i.base = base{mental: m, client: i}
	return i
}

func (i *Identity) ExistencePredicates() []object.Object {
	return []object.Object{i.PInstitute()}
}

func (i *Identity) InitAxioms(ctx context.Context) error {
	return i.claimAll(ctx, i.PInstitute(), i.PPerson(), i.PMe(), i.PSocietyMember())
}

// PInstitute is the predicate of the identity institute itself.
func (i *Identity) PInstitute() object.Object {
	return identityInstitute
}

// PPerson is the predicate of any person.
func (i *Identity) PPerson() object.Object {
	return person
}

// PMe is the predicate of the person keeping the records.
func (i *Identity) PMe() object.Object {
	return me
}

// PSocietyMember is the predicate of a person known to the user.
func (i *Identity) PSocietyMember() object.Object {
	return i.PPerson()
}
