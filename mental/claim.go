package mental

import (
	"time"

	"github.com/nasdf/household/errors"
	"github.com/nasdf/household/object"
)

// Kind is the discriminator stored in a claim's type field.
type Kind string

const (
	// KindExists claims that an object exists from made_at onwards.
	KindExists Kind = "claim_exists"
	// KindDoesNotExist claims that an object ceased to exist at made_at.
	KindDoesNotExist Kind = "claim_does_not_exists"
	// KindConforms attaches properties to an object. Not replayed.
	KindConforms Kind = "claim_conforms"
	// KindNotConforms detaches properties from an object. Not replayed.
	KindNotConforms Kind = "claim_not_conforms"
	// KindTransition replaces one object with another. Not replayed.
	KindTransition Kind = "claim_transition"
)

// Claim record fields.
const (
	TypeField       = "type"
	ObjectField     = "object"
	PredicatesField = "claim_predicates"
	MadeAtField     = "made_at"
	PropertiesField = "properties"
	OldObjectField  = "old_object"
	NewObjectField  = "new_object"
)

// ErrUnsupportedClaimKind is returned when a ledger row is not an existence claim.
var ErrUnsupportedClaimKind = errors.New("unsupported claim kind")

// Replayed reports whether claims of this kind change existence state.
func (k Kind) Replayed() bool {
	return k == KindExists || k == KindDoesNotExist
}

// Claim is a decoded existence claim.
type Claim struct {
	Kind       Kind
	Object     object.Object
	Predicates []object.Object
	MadeAt     time.Time
}

// Record returns the object stored in the ledger for this claim.
func (c Claim) Record() (object.Object, error) {
	predicates := c.Predicates
	if predicates == nil {
		predicates = []object.Object{}
	}
	return object.New(map[string]any{
		TypeField:       string(c.Kind),
		ObjectField:     c.Object,
		PredicatesField: predicates,
		MadeAtField:     c.MadeAt.UnixNano(),
	})
}

// ParseClaim decodes an existence claim from a ledger record.
func ParseClaim(o object.Object) (Claim, error) {
	kind, err := o.GetString(TypeField)
	if err != nil {
		return Claim{}, err
	}
	if !Kind(kind).Replayed() {
		return Claim{}, errors.Wrapf(ErrUnsupportedClaimKind, "%q", kind)
	}
	subject, err := o.GetObject(ObjectField)
	if err != nil {
		return Claim{}, err
	}
	var predicates []object.Object
	if o.Has(PredicatesField) {
		predicates, err = o.GetObjects(PredicatesField)
		if err != nil {
			return Claim{}, err
		}
	}
	madeAt, err := o.GetInt(MadeAtField)
	if err != nil {
		return Claim{}, err
	}
	return Claim{
		Kind:       Kind(kind),
		Object:     subject,
		Predicates: predicates,
		MadeAt:     time.Unix(0, madeAt).UTC(),
	}, nil
}

// ConformsClaim returns a claim attaching properties to o.
//
// Conformance claims are not persisted and do not affect existence.
func ConformsClaim(o, properties object.Object) object.Object {
	return object.MustNew(map[string]any{
		TypeField:       string(KindConforms),
		ObjectField:     o,
		PropertiesField: properties,
	})
}

// NotConformsClaim returns a claim detaching properties from o.
//
// Conformance claims are not persisted and do not affect existence.
func NotConformsClaim(o, properties object.Object) object.Object {
	return object.MustNew(map[string]any{
		TypeField:       string(KindNotConforms),
		ObjectField:     o,
		PropertiesField: properties,
	})
}

// TransitionClaim returns a claim that oldObject became newObject at madeAt.
//
// Transition claims are not persisted and do not affect existence.
func TransitionClaim(oldObject, newObject object.Object, predicates []object.Object, madeAt time.Time) object.Object {
	if predicates == nil {
		predicates = []object.Object{}
	}
	return object.MustNew(map[string]any{
		TypeField:       string(KindTransition),
		OldObjectField:  oldObject,
		NewObjectField:  newObject,
		PredicatesField: predicates,
		MadeAtField:     madeAt.UnixNano(),
	})
}
