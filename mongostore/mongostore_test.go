package mongostore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/nasdf/household/docstore"
	"github.com/nasdf/household/errors"
	"github.com/nasdf/household/filter"
	"github.com/nasdf/household/object"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testURIEnv names a MongoDB deployment used by the integration tests.
const testURIEnv = "HOUSEHOLD_TEST_MONGO_URI"

func openCollection(t *testing.T) docstore.Collection {
	t.Helper()
	uri := os.Getenv(testURIEnv)
	if uri == "" {
		t.Skipf("%s not set", testURIEnv)
	}
	ctx := context.Background()

	client, err := Connect(ctx, uri, 10*time.Second, nil)
	require.NoError(t, err)

	col := client.Database("household_test_" + uuid.NewString()[:8]).Collection("claims")
	t.Cleanup(func() {
		_ = col.Drop(ctx)
		_ = client.Close(ctx)
	})
	return col
}

func TestCollectionInsertionOrder(t *testing.T) {
	ctx := context.Background()
	col := openCollection(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, col.InsertOne(ctx, object.MustNew(map[string]any{"n": i, "odd": i%2 == 1})))
	}

	cur, err := col.Find(ctx, filter.MustNew(map[string]any{"odd": true}))
	require.NoError(t, err)
	all, err := docstore.All(ctx, cur)
	require.NoError(t, err)
	require.Len(t, all, 2)

	n, err := all[0].GetInt("n")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestCollectionExactAndDelete(t *testing.T) {
	ctx := context.Background()
	col := openCollection(t)

	fridge := object.MustNew(map[string]any{"type": "fridge", "size": map[string]any{"liters": 250}})
	require.NoError(t, col.InsertOne(ctx, fridge))
	require.NoError(t, col.InsertOne(ctx, fridge))

	found, err := col.FindOne(ctx, filter.Exact(fridge))
	require.NoError(t, err)
	assert.True(t, fridge.Equal(found))

	deleted, err := col.DeleteOne(ctx, filter.Exact(fridge))
	require.NoError(t, err)
	assert.True(t, deleted)

	cur, err := col.Find(ctx, nil)
	require.NoError(t, err)
	all, err := docstore.All(ctx, cur)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = col.FindOne(ctx, filter.MustNew(map[string]any{"type": "oven"}))
	assert.True(t, errors.Is(err, docstore.ErrNotFound))
}

func TestCollectionClientSideMatch(t *testing.T) {
	ctx := context.Background()
	col := openCollection(t)

	require.NoError(t, col.InsertOne(ctx, object.MustNew(map[string]any{"tags": []any{"cold", "kitchen"}})))
	require.NoError(t, col.InsertOne(ctx, object.MustNew(map[string]any{"tags": "cold"})))

	cur, err := col.Find(ctx, filter.MustNew(map[string]any{"tags": map[string]any{"$any": "cold"}}))
	require.NoError(t, err)
	all, err := docstore.All(ctx, cur)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	cur, err = col.Find(ctx, filter.MustNew(map[string]any{"tags": "cold"}))
	require.NoError(t, err)
	all, err = docstore.All(ctx, cur)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
