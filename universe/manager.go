package universe

import (
	"context"
	"time"

	"github.com/nasdf/household/docstore"
	"github.com/nasdf/household/filter"
	"github.com/nasdf/household/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	claimsCollectionName     = "claims"
	revisionCollectionPrefix = "revision-"
	transitionsPrefix        = "transitions-"
	unboundedStart           = "min"
)

// Namespace names the databases used by a CollectionsManager.
type Namespace struct {
	// Main holds the claims ledger.
	Main string
	// Derivatives holds materialized revision and transition sets.
	Derivatives string
	// Ephemeral appends a random suffix to Main so each process gets its own ledger.
	Ephemeral bool
}

// CollectionsManager allocates the collections backing the ledger and
// materialized sets.
type CollectionsManager struct {
	main        docstore.Database
	derivatives docstore.Database
	logger      *zap.SugaredLogger
}

// NewCollectionsManager returns a manager allocating collections from client.
func NewCollectionsManager(client docstore.Client, ns Namespace, log *zap.SugaredLogger) *CollectionsManager {
	main := ns.Main
	if ns.Ephemeral {
		main = main + "_" + uuid.NewString()
	}
	return &CollectionsManager{
		main:        client.Database(main),
		derivatives: client.Database(ns.Derivatives),
		logger:      logger.OrNop(log),
	}
}

// MainDatabase returns the database holding the ledger.
func (m *CollectionsManager) MainDatabase() docstore.Database {
	return m.main
}

// DerivativesDatabase returns the database holding materialized sets.
func (m *CollectionsManager) DerivativesDatabase() docstore.Database {
	return m.derivatives
}

// ClaimsCollection returns the collection holding the claims ledger.
func (m *CollectionsManager) ClaimsCollection() docstore.Collection {
	return m.main.Collection(claimsCollectionName)
}

// RevisionCollectionName returns the name of the revision collection for at.
func RevisionCollectionName(at time.Time) string {
	return revisionCollectionPrefix + at.UTC().Format(time.RFC3339Nano)
}

// TransitionsCollectionName returns the name of the transitions collection
// for f over [start, end). A zero start means unbounded, so callers pass
// the zero time for every start that does not bound the query.
func TransitionsCollectionName(f *filter.Filter, start, end time.Time) string {
	from := unboundedStart
	if !start.IsZero() {
		from = start.UTC().Format(time.RFC3339Nano)
	}
	return transitionsPrefix + f.Digest().Short(16) + "-" + from + "-" + end.UTC().Format(time.RFC3339Nano)
}

// NewRevisionCollection returns an empty collection for the revision at the given time.
func (m *CollectionsManager) NewRevisionCollection(ctx context.Context, at time.Time) (docstore.Collection, error) {
	return m.fresh(ctx, RevisionCollectionName(at))
}

// NewTransitionsCollection returns an empty collection for the claims matching f over [start, end).
func (m *CollectionsManager) NewTransitionsCollection(ctx context.Context, f *filter.Filter, start, end time.Time) (docstore.Collection, error) {
	return m.fresh(ctx, TransitionsCollectionName(f, start, end))
}

func (m *CollectionsManager) fresh(ctx context.Context, name string) (docstore.Collection, error) {
	col := m.derivatives.Collection(name)
	if err := col.Drop(ctx); err != nil {
		return nil, err
	}
	m.logger.Debugw("allocated derived collection", "database", m.derivatives.Name(), "collection", name)
	return col, nil
}
