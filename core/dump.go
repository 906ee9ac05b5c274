package core

import (
	"context"
)

// Dump returns a map of collections to document counts.
//
// This function is primarily used for testing.
func Dump(ctx context.Context, store *Store) (map[string]int, error) {
	collections, err := store.Collections(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(collections))
	for name, lnk := range collections {
		n, err := store.Load(ctx, lnk)
		if err != nil {
			return nil, err
		}
		col, err := parseCollectionNode(n)
		if err != nil {
			return nil, err
		}
		out[name] = len(col.documents)
	}
	return out, nil
}
