package mental

import (
	"context"
	"testing"
	"time"

	"github.com/nasdf/household/core"
	"github.com/nasdf/household/errors"
	"github.com/nasdf/household/filter"
	"github.com/nasdf/household/object"
	"github.com/nasdf/household/storage"
	"github.com/nasdf/household/universe"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	t1 = t0.Add(time.Hour)
	t2 = t1.Add(time.Hour)

	fridge = object.MustNew(map[string]any{"type": "fridge", "name": "my fridge"})
	oven   = object.MustNew(map[string]any{"type": "oven", "name": "my oven"})
)

func newMentalSet(t *testing.T, now time.Time) *MentalSet {
	t.Helper()
	store, err := core.Open(context.Background(), storage.NewMemory(), nil)
	require.NoError(t, err)

	manager := universe.NewCollectionsManager(store, universe.Namespace{Main: "household", Derivatives: "views"}, nil)
	claims := universe.New(manager.ClaimsCollection())
	return New(claims, manager, WithClock(func() time.Time { return now }))
}

func elements(t *testing.T, s *universe.UniversalSet) *object.Set {
	t.Helper()
	out, err := s.Elements(context.Background())
	require.NoError(t, err)
	return out
}

func TestClaimRecord(t *testing.T) {
	ctx := context.Background()
	m := newMentalSet(t, t2)
	predicate := object.MustNew(map[string]any{"type": "identity_institute"})

	c, err := m.ClaimExists(ctx, fridge, WithPredicates(predicate), MadeAt(t0))
	require.NoError(t, err)
	assert.Equal(t, KindExists, c.Kind)
	assert.Equal(t, t0, c.MadeAt)

	rows, err := m.Claims().Slice(ctx, filter.Empty())
	require.NoError(t, err)
	require.Len(t, rows, 1)

	expected := object.MustNew(map[string]any{
		"type":             "claim_exists",
		"object":           fridge,
		"claim_predicates": []object.Object{predicate},
		"made_at":          t0.UnixNano(),
	})
	assert.True(t, rows[0].Equal(expected), rows[0].String())

	parsed, err := ParseClaim(rows[0])
	require.NoError(t, err)
	assert.True(t, parsed.Object.Equal(fridge))
	require.Len(t, parsed.Predicates, 1)
	assert.True(t, parsed.Predicates[0].Equal(predicate))
	assert.True(t, parsed.MadeAt.Equal(t0))
}

func TestClaimDefaultsToNow(t *testing.T) {
	ctx := context.Background()
	m := newMentalSet(t, t1)

	c, err := m.ClaimDoesNotExist(ctx, fridge)
	require.NoError(t, err)
	assert.Equal(t, KindDoesNotExist, c.Kind)
	assert.True(t, c.MadeAt.Equal(t1))
	assert.Empty(t, c.Predicates)
}

func TestLedgerIsNotDeduplicated(t *testing.T) {
	ctx := context.Background()
	m := newMentalSet(t, t2)

	_, err := m.ClaimExists(ctx, fridge, MadeAt(t0))
	require.NoError(t, err)
	_, err = m.ClaimExists(ctx, fridge, MadeAt(t0))
	require.NoError(t, err)

	rows, err := m.Claims().Slice(ctx, filter.Empty())
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestDuplicateExistsYieldsOneObject(t *testing.T) {
	ctx := context.Background()
	m := newMentalSet(t, t2)

	_, err := m.ClaimExists(ctx, fridge, MadeAt(t0))
	require.NoError(t, err)
	_, err = m.ClaimExists(ctx, object.MustNew(map[string]any{"name": "my fridge", "type": "fridge"}), MadeAt(t1))
	require.NoError(t, err)

	revision, err := m.UniverseRevision(ctx, At(t1))
	require.NoError(t, err)

	found, err := revision.Slice(ctx, filter.MustWhere(fridge))
	require.NoError(t, err)
	assert.Len(t, found, 1)
	assert.True(t, elements(t, revision).Equal(object.NewSet(fridge)))
}

func TestExistsNotExistsExists(t *testing.T) {
	ctx := context.Background()
	m := newMentalSet(t, t2.Add(time.Hour))

	_, err := m.ClaimExists(ctx, fridge, MadeAt(t0))
	require.NoError(t, err)
	_, err = m.ClaimDoesNotExist(ctx, fridge, MadeAt(t1))
	require.NoError(t, err)
	_, err = m.ClaimExists(ctx, fridge, MadeAt(t2))
	require.NoError(t, err)

	cases := []struct {
		at     time.Time
		exists bool
	}{
		{t0.Add(-time.Nanosecond), false},
		{t0, true},
		{t1.Add(-time.Nanosecond), true},
		{t1, false},
		{t2.Add(-time.Nanosecond), false},
		{t2, true},
		{t2.Add(time.Hour), true},
	}
	for _, c := range cases {
		revision, err := m.UniverseRevision(ctx, At(c.at))
		require.NoError(t, err)
		assert.Equal(t, c.exists, elements(t, revision).Has(fridge), "at %s", c.at)
	}

	revision, err := m.UniverseRevision(ctx, Now())
	require.NoError(t, err)
	assert.True(t, elements(t, revision).Has(fridge))
}

func TestMonotonicExistence(t *testing.T) {
	ctx := context.Background()
	m := newMentalSet(t, t2)

	_, err := m.ClaimExists(ctx, oven, MadeAt(t0))
	require.NoError(t, err)

	revision, err := m.UniverseRevision(ctx, At(t2))
	require.NoError(t, err)
	assert.True(t, elements(t, revision).Has(oven))

	_, err = m.ClaimDoesNotExist(ctx, oven, MadeAt(t1))
	require.NoError(t, err)

	revision, err = m.UniverseRevision(ctx, At(t2))
	require.NoError(t, err)
	assert.False(t, elements(t, revision).Has(oven))
}

func TestReplayOrdersByMadeAtNotLedgerOrder(t *testing.T) {
	ctx := context.Background()
	m := newMentalSet(t, t2)

	_, err := m.ClaimDoesNotExist(ctx, fridge, MadeAt(t1))
	require.NoError(t, err)
	_, err = m.ClaimExists(ctx, fridge, MadeAt(t0))
	require.NoError(t, err)

	revision, err := m.UniverseRevision(ctx, At(t2))
	require.NoError(t, err)
	assert.False(t, elements(t, revision).Has(fridge))
}

func TestTieBreakUsesLedgerOrder(t *testing.T) {
	ctx := context.Background()
	m := newMentalSet(t, t2)

	_, err := m.ClaimExists(ctx, fridge, MadeAt(t0))
	require.NoError(t, err)
	_, err = m.ClaimDoesNotExist(ctx, fridge, MadeAt(t0))
	require.NoError(t, err)
	_, err = m.ClaimDoesNotExist(ctx, oven, MadeAt(t0))
	require.NoError(t, err)
	_, err = m.ClaimExists(ctx, oven, MadeAt(t0))
	require.NoError(t, err)

	revision, err := m.UniverseRevision(ctx, At(t0))
	require.NoError(t, err)
	assert.True(t, elements(t, revision).Equal(object.NewSet(oven)))
}

func TestReplayIsDeterministic(t *testing.T) {
	ctx := context.Background()
	m := newMentalSet(t, t2)

	_, err := m.ClaimExists(ctx, fridge, MadeAt(t0))
	require.NoError(t, err)
	_, err = m.ClaimExists(ctx, oven, MadeAt(t1))
	require.NoError(t, err)
	_, err = m.ClaimDoesNotExist(ctx, fridge, MadeAt(t1))
	require.NoError(t, err)

	first, err := m.UniverseRevision(ctx, At(t1))
	require.NoError(t, err)
	a := elements(t, first)

	second, err := m.UniverseRevision(ctx, At(t1))
	require.NoError(t, err)
	b := elements(t, second)

	assert.True(t, a.Equal(b))
	assert.True(t, a.Equal(object.NewSet(oven)))
}

func TestUnsupportedClaimKindAbortsReplay(t *testing.T) {
	ctx := context.Background()
	m := newMentalSet(t, t2)

	_, err := m.ClaimExists(ctx, fridge, MadeAt(t0))
	require.NoError(t, err)
	bogus := object.MustNew(map[string]any{
		"type":    "claim_teleported",
		"object":  fridge,
		"made_at": t0.UnixNano(),
	})
	require.NoError(t, m.Claims().Collection().InsertOne(ctx, bogus))

	_, err = m.UniverseRevision(ctx, At(t1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedClaimKind))
	assert.True(t, errors.HasAssertionFailure(err))
}

func TestObjectClaims(t *testing.T) {
	ctx := context.Background()
	m := newMentalSet(t, t2.Add(time.Hour))
	garage := object.MustNew(map[string]any{"type": "fridge", "name": "garage fridge"})

	_, err := m.ClaimDoesNotExist(ctx, fridge, MadeAt(t1))
	require.NoError(t, err)
	_, err = m.ClaimExists(ctx, fridge, MadeAt(t0))
	require.NoError(t, err)
	_, err = m.ClaimExists(ctx, oven, MadeAt(t0))
	require.NoError(t, err)
	_, err = m.ClaimExists(ctx, garage, MadeAt(t2))
	require.NoError(t, err)

	predicate := filter.MustNew(map[string]any{"type": "fridge"})

	history, err := m.ObjectClaims(ctx, predicate, Period{})
	require.NoError(t, err)
	rows, err := history.Slice(ctx, filter.Empty())
	require.NoError(t, err)
	require.Len(t, rows, 3)

	var kinds []Kind
	for _, row := range rows {
		c, err := ParseClaim(row)
		require.NoError(t, err)
		kinds = append(kinds, c.Kind)
	}
	assert.Equal(t, []Kind{KindExists, KindDoesNotExist, KindExists}, kinds)

	window, err := m.ObjectClaims(ctx, predicate, Period{Start: At(t1), End: At(t2)})
	require.NoError(t, err)
	rows, err = window.Slice(ctx, filter.Empty())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	c, err := ParseClaim(rows[0])
	require.NoError(t, err)
	assert.Equal(t, KindDoesNotExist, c.Kind)
	assert.True(t, c.MadeAt.Equal(t1))
}

func TestObjectClaimsExactPredicate(t *testing.T) {
	ctx := context.Background()
	m := newMentalSet(t, t2)

	_, err := m.ClaimExists(ctx, fridge, MadeAt(t0))
	require.NoError(t, err)
	_, err = m.ClaimExists(ctx, fridge.Merge(object.MustNew(map[string]any{"color": "white"})), MadeAt(t0))
	require.NoError(t, err)

	history, err := m.ObjectClaims(ctx, filter.Exact(fridge), Period{})
	require.NoError(t, err)
	rows, err := history.Slice(ctx, filter.Empty())
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestClaimConstructorsAreNotReplayed(t *testing.T) {
	properties := object.MustNew(map[string]any{"color": "white"})

	conforms := ConformsClaim(fridge, properties)
	kind, err := conforms.GetString(TypeField)
	require.NoError(t, err)
	assert.Equal(t, string(KindConforms), kind)

	notConforms := NotConformsClaim(fridge, properties)
	kind, err = notConforms.GetString(TypeField)
	require.NoError(t, err)
	assert.Equal(t, string(KindNotConforms), kind)

	transition := TransitionClaim(fridge, oven, nil, t0)
	kind, err = transition.GetString(TypeField)
	require.NoError(t, err)
	assert.Equal(t, string(KindTransition), kind)

	for _, o := range []object.Object{conforms, notConforms, transition} {
		_, err := ParseClaim(o)
		assert.True(t, errors.Is(err, ErrUnsupportedClaimKind))
	}
	assert.False(t, KindTransition.Replayed())
	assert.True(t, KindDoesNotExist.Replayed())
}

func TestMetrics(t *testing.T) {
	ctx := context.Background()
	m := newMentalSet(t, t2)

	appended := testutil.ToFloat64(claimsAppended.WithLabelValues(string(KindExists)))
	replays := testutil.ToFloat64(replaysTotal.WithLabelValues(revisionOperation))

	_, err := m.ClaimExists(ctx, fridge, MadeAt(t0))
	require.NoError(t, err)
	_, err = m.UniverseRevision(ctx, Now())
	require.NoError(t, err)

	assert.Equal(t, appended+1, testutil.ToFloat64(claimsAppended.WithLabelValues(string(KindExists))))
	assert.Equal(t, replays+1, testutil.ToFloat64(replaysTotal.WithLabelValues(revisionOperation)))
}

func TestTimestamp(t *testing.T) {
	assert.False(t, Now().IsSet())
	assert.Equal(t, t1, Now().Resolve(t1))
	assert.True(t, At(t0).IsSet())
	assert.Equal(t, t0, At(t0).Resolve(t1))
}

func TestClaimTimesOutsideNanosecondRange(t *testing.T) {
	ctx := context.Background()
	m := newMentalSet(t, t2)
	late := time.Date(2300, 1, 1, 0, 0, 0, 0, time.UTC)
	early := time.Date(1000, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := m.ClaimExists(ctx, fridge, MadeAt(late))
	require.Error(t, err)
	assert.True(t, errors.IsInvalidArgument(err))
	_, err = m.ClaimExists(ctx, oven, MadeAt(early))
	require.Error(t, err)
	assert.True(t, errors.IsInvalidArgument(err))

	rows, err := m.Claims().Slice(ctx, filter.Empty())
	require.NoError(t, err)
	assert.Empty(t, rows)

	revision, err := m.UniverseRevision(ctx, At(t1))
	require.NoError(t, err)
	assert.Zero(t, elements(t, revision).Len())

	_, err = m.UniverseRevision(ctx, At(late))
	assert.True(t, errors.IsInvalidArgument(err))
	_, err = m.ObjectClaims(ctx, filter.Empty(), Period{End: At(late)})
	assert.True(t, errors.IsInvalidArgument(err))
	_, err = m.ObjectClaims(ctx, filter.Empty(), Period{Start: At(late), End: At(t1)})
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestObjectClaimsEarlyStartIsUnbounded(t *testing.T) {
	ctx := context.Background()
	m := newMentalSet(t, t2)
	predicate := filter.MustNew(map[string]any{"type": "fridge"})

	_, err := m.ClaimExists(ctx, fridge, MadeAt(t0))
	require.NoError(t, err)

	unbounded, err := m.ObjectClaims(ctx, predicate, Period{})
	require.NoError(t, err)
	want, err := unbounded.Slice(ctx, filter.Empty())
	require.NoError(t, err)
	require.Len(t, want, 1)

	starts := map[string]time.Time{
		"zero":       {},
		"year 1000":  time.Date(1000, 1, 1, 0, 0, 0, 0, time.UTC),
		"before min": MinTime.Add(-time.Nanosecond),
	}
	for name, start := range starts {
		t.Run(name, func(t *testing.T) {
			history, err := m.ObjectClaims(ctx, predicate, Period{Start: At(start)})
			require.NoError(t, err)
			assert.Equal(t, unbounded.Name(), history.Name())
			rows, err := history.Slice(ctx, filter.Empty())
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.True(t, rows[0].Equal(want[0]), rows[0].String())
		})
	}

	history, err := m.ObjectClaims(ctx, predicate, Period{Start: At(MinTime)})
	require.NoError(t, err)
	assert.NotEqual(t, unbounded.Name(), history.Name())
}
