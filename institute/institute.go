// Package institute defines axiom sets that describe parts of a person's
// life as existence claims.
package institute

import (
	"context"

	"github.com/nasdf/household/mental"
	"github.com/nasdf/household/object"
)

// Client lets a person act within an institute.
type Client interface {
	// InitAxioms claims the existence of the objects the institute is built on.
	InitAxioms(ctx context.Context) error
	// ExistencePredicates returns the predicates attached to every claim the client makes.
	ExistencePredicates() []object.Object
}

// base appends claims justified by the client's existence predicates.
type base struct {
	mental *mental.MentalSet
	client Client
}

func (b base) claimExists(ctx context.Context, o object.Object) (mental.Claim, error) {
	return b.mental.ClaimExists(ctx, o, mental.WithPredicates(b.client.ExistencePredicates()...))
}

func (b base) claimAll(ctx context.Context, objects ...object.Object) error {
	for _, o := range objects {
		if _, err := b.claimExists(ctx, o); err != nil {
			return err
		}
	}
	return nil
}

// InitAll initializes the axioms of every client in order.
func InitAll(ctx context.Context, clients ...Client) error {
	for _, c := range clients {
		if err := c.InitAxioms(ctx); err != nil {
			return err
		}
	}
	return nil
}
