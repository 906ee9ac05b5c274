package institute

import (
	"context"

	"github.com/nasdf/household/mental"
	"github.com/nasdf/household/object"
)

var socialContractsInstitute = object.MustNew(map[string]any{"type": "social_contracts_institute"})

const contractType = "contract"

// SocialContracts models liabilities between subjects.
type SocialContracts struct {
	base
}

func NewSocialContracts(m *mental.MentalSet) *SocialContracts {
	s := &SocialContracts{}
	s.base = base{mental: m, client: s}
	return s
}

func (s *SocialContracts) ExistencePredicates() []object.Object {
	return []object.Object{s.PInstitute()}
}

func (s *SocialContracts) InitAxioms(ctx context.Context) error {
	return s.claimAll(ctx, s.PInstitute())
}

// PInstitute is the predicate of the social contracts institute itself.
func (s *SocialContracts) PInstitute() object.Object {
	return socialContractsInstitute
}

// ClaimContract claims that participants are bound by the labelled contract.
func (s *SocialContracts) ClaimContract(ctx context.Context, label string, participants []object.Object) (mental.Claim, error) {
	return s.claimContract(ctx, label, participants, nil)
}

func (s *SocialContracts) claimContract(ctx context.Context, label string, participants []object.Object, extra map[string]any) (mental.Claim, error) {
	fields := map[string]any{
		"type":         contractType,
		"label":        label,
		"participants": participants,
	}
	for k, v := range extra {
		fields[k] = v
	}
	contract, err := object.New(fields)
	if err != nil {
		return mental.Claim{}, err
	}
	return s.claimExists(ctx, contract)
}
