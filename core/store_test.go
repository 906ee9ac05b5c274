package core

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/nasdf/household/docstore"
	"github.com/nasdf/household/errors"
	"github.com/nasdf/household/filter"
	"github.com/nasdf/household/object"
	"github.com/nasdf/household/storage"

	"github.com/ipld/go-car/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), storage.NewMemory(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close(context.Background()) })
	return store
}

func collect(t *testing.T, col docstore.Collection, f *filter.Filter) []object.Object {
	t.Helper()
	ctx := context.Background()
	cur, err := col.Find(ctx, f)
	require.NoError(t, err)
	out, err := docstore.All(ctx, cur)
	require.NoError(t, err)
	return out
}

func TestInsertAndFindInInsertionOrder(t *testing.T) {
	ctx := context.Background()
	col := openStore(t).Database("main").Collection("claims")

	for i := 0; i < 12; i++ {
		require.NoError(t, col.InsertOne(ctx, object.MustNew(map[string]any{"n": i, "even": i%2 == 0})))
	}

	all := collect(t, col, filter.Empty())
	require.Len(t, all, 12)
	for i, o := range all {
		n, err := o.GetInt("n")
		require.NoError(t, err)
		assert.Equal(t, int64(i), n)
	}

	even := collect(t, col, filter.MustNew(map[string]any{"even": true}))
	require.Len(t, even, 6)
	n, err := even[5].GetInt("n")
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)
}

func TestDuplicateDocumentsAreKept(t *testing.T) {
	ctx := context.Background()
	col := openStore(t).Database("main").Collection("claims")
	o := object.MustNew(map[string]any{"type": "fridge"})

	require.NoError(t, col.InsertOne(ctx, o))
	require.NoError(t, col.InsertOne(ctx, o))
	assert.Len(t, collect(t, col, filter.Exact(o)), 2)
}

func TestFindOne(t *testing.T) {
	ctx := context.Background()
	col := openStore(t).Database("main").Collection("things")

	_, err := col.FindOne(ctx, filter.Empty())
	require.Error(t, err)
	assert.True(t, errors.Is(err, docstore.ErrNotFound))

	require.NoError(t, col.InsertOne(ctx, object.MustNew(map[string]any{"type": "oven", "n": 1})))
	require.NoError(t, col.InsertOne(ctx, object.MustNew(map[string]any{"type": "oven", "n": 2})))

	o, err := col.FindOne(ctx, filter.MustNew(map[string]any{"type": "oven"}))
	require.NoError(t, err)
	n, err := o.GetInt("n")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestDeleteOne(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	col := store.Database("main").Collection("things")

	deleted, err := col.DeleteOne(ctx, filter.Empty())
	require.NoError(t, err)
	assert.False(t, deleted)

	dump, err := Dump(ctx, store)
	require.NoError(t, err)
	assert.Empty(t, dump)

	a := object.MustNew(map[string]any{"type": "a"})
	b := object.MustNew(map[string]any{"type": "b"})
	require.NoError(t, col.InsertOne(ctx, a))
	require.NoError(t, col.InsertOne(ctx, b))
	require.NoError(t, col.InsertOne(ctx, a))

	deleted, err = col.DeleteOne(ctx, filter.Exact(a))
	require.NoError(t, err)
	assert.True(t, deleted)

	remaining := collect(t, col, filter.Empty())
	require.Len(t, remaining, 2)
	assert.True(t, remaining[0].Equal(b))
	assert.True(t, remaining[1].Equal(a))

	require.NoError(t, col.InsertOne(ctx, object.MustNew(map[string]any{"type": "c"})))
	last := collect(t, col, filter.Empty())
	require.Len(t, last, 3)
	assert.True(t, last[2].Equal(object.MustNew(map[string]any{"type": "c"})))
}

func TestDropAndDump(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	main := store.Database("main")
	views := store.Database("views")

	require.NoError(t, main.Collection("claims").InsertOne(ctx, object.MustNew(map[string]any{"a": 1})))
	require.NoError(t, views.Collection("revision").InsertOne(ctx, object.MustNew(map[string]any{"a": 1})))
	require.NoError(t, views.Collection("revision").InsertOne(ctx, object.MustNew(map[string]any{"a": 2})))

	dump, err := Dump(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"main/claims": 1, "views/revision": 2}, dump)

	require.NoError(t, views.Collection("revision").Drop(ctx))
	require.NoError(t, views.Collection("missing").Drop(ctx))

	dump, err = Dump(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"main/claims": 1}, dump)
	assert.Empty(t, collect(t, views.Collection("revision"), filter.Empty()))
}

func TestCursorIsSnapshot(t *testing.T) {
	ctx := context.Background()
	col := openStore(t).Database("main").Collection("claims")
	require.NoError(t, col.InsertOne(ctx, object.MustNew(map[string]any{"n": 1})))

	cur, err := col.Find(ctx, filter.Empty())
	require.NoError(t, err)
	require.NoError(t, col.InsertOne(ctx, object.MustNew(map[string]any{"n": 2})))

	out, err := docstore.All(ctx, cur)
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemory()

	store, err := Open(ctx, s, nil)
	require.NoError(t, err)
	require.NoError(t, store.Database("main").Collection("claims").InsertOne(ctx, object.MustNew(map[string]any{"n": 1})))

	reopened, err := Open(ctx, s, nil)
	require.NoError(t, err)
	assert.Len(t, collect(t, reopened.Database("main").Collection("claims"), filter.Empty()), 1)
}

func TestConcurrentInserts(t *testing.T) {
	ctx := context.Background()
	col := openStore(t).Database("main").Collection("claims")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, col.InsertOne(ctx, object.MustNew(map[string]any{"n": i})))
		}(i)
	}
	wg.Wait()

	assert.Len(t, collect(t, col, filter.Empty()), 20)
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	col := store.Database("main").Collection("claims")
	require.NoError(t, col.InsertOne(ctx, object.MustNew(map[string]any{"n": 1})))
	require.NoError(t, col.InsertOne(ctx, object.MustNew(map[string]any{"n": 2})))

	var buf bytes.Buffer
	require.NoError(t, Export(ctx, store, col, &buf))

	reader, err := car.NewBlockReader(&buf)
	require.NoError(t, err)
	require.Len(t, reader.Roots, 1)

	collections, err := store.Collections(ctx)
	require.NoError(t, err)
	assert.Equal(t, collections["main/claims"].String(), reader.Roots[0].String())

	blocks := 0
	for {
		_, err := reader.Next()
		if err != nil {
			break
		}
		blocks++
	}
	assert.Equal(t, 3, blocks)

	err = Export(ctx, store, store.Database("main").Collection("missing"), &bytes.Buffer{})
	assert.True(t, errors.Is(err, docstore.ErrNotFound))
}
