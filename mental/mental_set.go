// Package mental records existence claims in an append-only ledger and
// reconstructs point in time views of the universe by replaying them.
package mental

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/nasdf/household/errors"
	"github.com/nasdf/household/filter"
	"github.com/nasdf/household/logger"
	"github.com/nasdf/household/object"
	"github.com/nasdf/household/universe"

	"go.uber.org/zap"
)

// MentalSet is the claims ledger and its temporal queries.
type MentalSet struct {
	claims  *universe.UniversalSet
	manager *universe.CollectionsManager
	logger  *zap.SugaredLogger
	now     func() time.Time
}

// New returns a MentalSet appending to claims and materializing views
// in collections allocated by manager.
func New(claims *universe.UniversalSet, manager *universe.CollectionsManager, opts ...Option) *MentalSet {
	m := &MentalSet{
		claims:  claims,
		manager: manager,
		logger:  logger.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Claims returns the ledger.
func (m *MentalSet) Claims() *universe.UniversalSet {
	return m.claims
}

// ClaimExists appends a claim that o exists.
func (m *MentalSet) ClaimExists(ctx context.Context, o object.Object, opts ...ClaimOption) (Claim, error) {
	return m.claim(ctx, KindExists, o, opts)
}

// ClaimDoesNotExist appends a claim that o does not exist.
func (m *MentalSet) ClaimDoesNotExist(ctx context.Context, o object.Object, opts ...ClaimOption) (Claim, error) {
	return m.claim(ctx, KindDoesNotExist, o, opts)
}

func (m *MentalSet) claim(ctx context.Context, kind Kind, o object.Object, opts []ClaimOption) (Claim, error) {
	now := m.now()

	var options claimOptions
	for _, opt := range opts {
		opt(&options)
	}
	c := Claim{
		Kind:       kind,
		Object:     o,
		Predicates: options.predicates,
		MadeAt:     options.madeAt.Resolve(now).UTC(),
	}
	if err := checkTime(MadeAtField, c.MadeAt); err != nil {
		return Claim{}, err
	}
	record, err := c.Record()
	if err != nil {
		return Claim{}, err
	}
	if err := m.claims.Collection().InsertOne(ctx, record); err != nil {
		return Claim{}, errors.Wrapf(err, "append %s", kind)
	}
	claimsAppended.WithLabelValues(string(kind)).Inc()
	return c, nil
}

// UniverseRevision returns a new set holding every object that exists at the given time.
//
// Claims made at or before the time are replayed in made_at order. Claims
// with equal made_at replay in ledger order.
func (m *MentalSet) UniverseRevision(ctx context.Context, at Timestamp) (*universe.UniversalSet, error) {
	cutoff := at.Resolve(m.now())
	if err := checkTime("revision time", cutoff); err != nil {
		return nil, err
	}

	f, err := filter.New(map[string]any{
		MadeAtField: map[string]any{"$lte": cutoff.UnixNano()},
	})
	if err != nil {
		return nil, err
	}
	claims, err := m.load(ctx, f)
	if err != nil {
		return nil, err
	}
	col, err := m.manager.NewRevisionCollection(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	revision := universe.New(col)
	for i, c := range claims {
		switch c.claim.Kind {
		case KindExists:
			err = revision.Add(ctx, c.claim.Object)
		case KindDoesNotExist:
			err = revision.Remove(ctx, c.claim.Object)
		default:
			return nil, errors.WithAssertionFailure(errors.Wrapf(ErrUnsupportedClaimKind, "replay claim %d of kind %q", i, c.claim.Kind))
		}
		if err != nil {
			return nil, err
		}
	}
	replaysTotal.WithLabelValues(revisionOperation).Inc()
	replayedClaims.WithLabelValues(revisionOperation).Observe(float64(len(claims)))
	m.logger.Debugw("materialized universe revision",
		"at", cutoff,
		"claims", len(claims),
		"collection", col.Name(),
	)
	return revision, nil
}

// ObjectClaims returns a new set holding the existence claims made during
// period about objects matching predicate, in made_at order.
func (m *MentalSet) ObjectClaims(ctx context.Context, predicate *filter.Filter, period Period) (*universe.UniversalSet, error) {
	if predicate == nil {
		predicate = filter.Empty()
	}
	end := period.End.Resolve(m.now())
	if err := checkTime("period end", end); err != nil {
		return nil, err
	}
	madeAt := map[string]any{"$lt": end.UnixNano()}
	var start time.Time
	if t := period.Start.Resolve(end); period.Start.IsSet() && !t.Before(MinTime) {
		start = t
		if err := checkTime("period start", start); err != nil {
			return nil, err
		}
		madeAt["$gte"] = start.UnixNano()
	}
	window, err := filter.New(map[string]any{
		TypeField:   map[string]any{"$in": []any{string(KindExists), string(KindDoesNotExist)}},
		MadeAtField: madeAt,
	})
	if err != nil {
		return nil, err
	}
	f, err := filter.And(window, predicate.Within(ObjectField))
	if err != nil {
		return nil, err
	}
	claims, err := m.load(ctx, f)
	if err != nil {
		return nil, err
	}
	col, err := m.manager.NewTransitionsCollection(ctx, predicate, start, end)
	if err != nil {
		return nil, err
	}
	transitions := universe.New(col)
	for _, c := range claims {
		if err := transitions.Add(ctx, c.record); err != nil {
			return nil, err
		}
	}
	replaysTotal.WithLabelValues(objectClaimsOperation).Inc()
	replayedClaims.WithLabelValues(objectClaimsOperation).Observe(float64(len(claims)))
	m.logger.Debugw("materialized object claims",
		"predicate", predicate.String(),
		"start", start,
		"end", end,
		"claims", len(claims),
		"collection", col.Name(),
	)
	return transitions, nil
}

// ledgerRow is a decoded claim and the record it was read from.
type ledgerRow struct {
	claim  Claim
	record object.Object
}

// load returns the claims matching f sorted by made_at. The sort is stable
// so claims made at the same time keep their ledger order.
func (m *MentalSet) load(ctx context.Context, f *filter.Filter) ([]ledgerRow, error) {
	var claims []ledgerRow
	for o, err := range m.claims.Find(ctx, f) {
		if err != nil {
			return nil, err
		}
		c, err := ParseClaim(o)
		if errors.Is(err, ErrUnsupportedClaimKind) {
			return nil, errors.WithAssertionFailure(errors.Wrapf(err, "ledger row %s", o.String()))
		}
		if err != nil {
			return nil, err
		}
		claims = append(claims, ledgerRow{claim: c, record: o})
	}
	slices.SortStableFunc(claims, func(a, b ledgerRow) int {
		return cmp.Compare(a.claim.MadeAt.UnixNano(), b.claim.MadeAt.UnixNano())
	})
	return claims, nil
}
