package institute

import (
	"context"

	"github.com/nasdf/household/mental"
	"github.com/nasdf/household/object"
)

var ownershipInstitute = object.MustNew(map[string]any{"type": "institute_ownership"})

const (
	ownershipLabelPrefix = "ownership:"
	protectLiability     = "protect_liability"
	protectOwnership     = "protect_ownership"
)

// Ownership models ownership as a contract between society members.
type Ownership struct {
	base
	identity        *Identity
	socialContracts *SocialContracts
}

func NewOwnership(m *mental.MentalSet, identity *Identity, socialContracts *SocialContracts) *Ownership {
	o := &Ownership{
		identity:        identity,
		socialContracts: socialContracts,
	}
	o.base = base{mental: m, client: o}
	return o
}

func (o *Ownership) ExistencePredicates() []object.Object {
	return []object.Object{
		o.socialContracts.PInstitute(),
		o.identity.PInstitute(),
		o.PInstitute(),
	}
}

func (o *Ownership) InitAxioms(ctx context.Context) error {
	return o.claimAll(ctx, o.PInstitute())
}

// PInstitute is the predicate of the ownership institute itself.
func (o *Ownership) PInstitute() object.Object {
	return ownershipInstitute
}

// ClaimOwnership claims the labelled ownership contract over subject.
func (o *Ownership) ClaimOwnership(ctx context.Context, subject object.Object, label string) (mental.Claim, error) {
	participants := []object.Object{
		object.MustNew(map[string]any{
			"subject":   o.identity.PSocietyMember(),
			"liability": protectLiability,
		}),
		object.MustNew(map[string]any{
			"subject":   o.identity.PSocietyMember(),
			"liability": protectOwnership,
		}),
	}
	return o.socialContracts.claimContract(ctx, ownershipLabelPrefix+label, participants, map[string]any{
		"subject": subject,
	})
}
