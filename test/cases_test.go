package test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/nasdf/household"
	"github.com/nasdf/household/config"
	"github.com/nasdf/household/filter"
	"github.com/nasdf/household/mental"
	"github.com/nasdf/household/object"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var drivers = []string{config.DriverMemory, config.DriverSQLite, config.DriverBadger}

func openHousehold(t *testing.T, driver string) *household.Household {
	t.Helper()
	cfg := &config.Config{
		Storage: config.StorageConfig{Driver: driver},
		Namespace: config.NamespaceConfig{
			Main:        "household",
			Derivatives: "household_derivatives",
		},
	}
	switch driver {
	case config.DriverSQLite:
		cfg.Storage.Path = filepath.Join(t.TempDir(), "household.db")
	case config.DriverBadger:
		cfg.Storage.Path = filepath.Join(t.TempDir(), "badger")
	}

	clock := func() time.Time { return Epoch }
	h, err := household.Open(context.Background(), cfg, nil, mental.WithClock(clock))
	require.NoError(t, err)
	t.Cleanup(func() { h.Close(context.Background()) })
	return h
}

func (tc TestCase) Run(t *testing.T, h *household.Household) {
	ctx := context.Background()

	if tc.Axioms {
		require.NoError(t, h.InitAxioms(ctx))
	}
	for _, c := range tc.Claims {
		o, err := object.New(c.Object)
		require.NoError(t, err)

		if c.Exists {
			_, err = h.Mental.ClaimExists(ctx, o, mental.MadeAt(Time(c.At)))
		} else {
			_, err = h.Mental.ClaimDoesNotExist(ctx, o, mental.MadeAt(Time(c.At)))
		}
		require.NoError(t, err)
	}

	for _, r := range tc.Revisions {
		revision, err := h.Mental.UniverseRevision(ctx, mental.At(Time(r.At)))
		require.NoError(t, err)

		actual, err := revision.Elements(ctx)
		require.NoError(t, err)

		expect := object.NewSet()
		for _, fields := range r.Expect {
			o, err := object.New(fields)
			require.NoError(t, err)
			expect.Add(o)
		}
		assert.True(t, expect.Equal(actual), "revision at %d: expected %v got %v", r.At, expect.Slice(), actual.Slice())
	}

	for _, hist := range tc.History {
		period := mental.Period{End: mental.At(Time(hist.To))}
		if hist.From != nil {
			period.Start = mental.At(Time(*hist.From))
		}
		where, err := filter.New(hist.Where)
		require.NoError(t, err)

		transitions, err := h.Mental.ObjectClaims(ctx, where, period)
		require.NoError(t, err)

		records, err := transitions.Slice(ctx, filter.Empty())
		require.NoError(t, err)

		actual := make([]int, 0, len(records))
		for _, rec := range records {
			madeAt, err := rec.GetInt(mental.MadeAtField)
			require.NoError(t, err)
			actual = append(actual, int(time.Duration(madeAt-Epoch.UnixNano())/time.Second))
		}
		expect := hist.Expect
		if expect == nil {
			expect = []int{}
		}
		assert.Equal(t, expect, actual, "history of %v", hist.Where)
	}
}

func TestCases(t *testing.T) {
	paths, err := TestCasePaths()
	require.NoError(t, err, "failed to walk test cases dir")
	require.NotEmpty(t, paths)

	for _, path := range paths {
		testCase, err := LoadTestCase(path)
		require.NoError(t, err, "failed to load test case %s", path)

		for _, driver := range drivers {
			t.Run(driver+"/"+testCase.Description, func(t *testing.T) {
				testCase.Run(t, openHousehold(t, driver))
			})
		}
	}
}
