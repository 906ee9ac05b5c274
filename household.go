// Package household records what a person believes exists in their life
// as an append-only ledger of claims and replays it into sets of objects.
package household

import (
	"context"

	"github.com/nasdf/household/config"
	"github.com/nasdf/household/core"
	"github.com/nasdf/household/docstore"
	"github.com/nasdf/household/errors"
	"github.com/nasdf/household/institute"
	"github.com/nasdf/household/logger"
	"github.com/nasdf/household/mental"
	"github.com/nasdf/household/mongostore"
	"github.com/nasdf/household/storage"
	"github.com/nasdf/household/universe"

	"go.uber.org/zap"
)

// Household is an opened ledger with its institute clients.
type Household struct {
	Client          docstore.Client
	Manager         *universe.CollectionsManager
	Mental          *mental.MentalSet
	Identity        *institute.Identity
	SocialContracts *institute.SocialContracts
	Ownership       *institute.Ownership

	// store is set when the backend is the content-addressed store.
	store  *core.Store
	logger *zap.SugaredLogger
}

// Open connects to the backend named in cfg and wires the ledger.
func Open(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger, opts ...mental.Option) (*Household, error) {
	log = logger.OrNop(log)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	h := &Household{logger: log}
	switch cfg.Storage.Driver {
	case config.DriverMongo:
		client, err := mongostore.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Timeout, log.Named("mongo"))
		if err != nil {
			return nil, err
		}
		h.Client = client
	default:
		s, err := openStorage(cfg.Storage, log)
		if err != nil {
			return nil, err
		}
		store, err := core.Open(ctx, s, log.Named("core"))
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		h.store = store
		h.Client = store
	}

	h.Manager = universe.NewCollectionsManager(h.Client, universe.Namespace{
		Main:        cfg.Namespace.Main,
		Derivatives: cfg.Namespace.Derivatives,
		Ephemeral:   cfg.Namespace.Ephemeral,
	}, log.Named("universe"))

	opts = append([]mental.Option{mental.WithLogger(log.Named("mental"))}, opts...)
	h.Mental = mental.New(universe.New(h.Manager.ClaimsCollection()), h.Manager, opts...)
	h.Identity = institute.NewIdentity(h.Mental)
	h.SocialContracts = institute.NewSocialContracts(h.Mental)
	h.Ownership = institute.NewOwnership(h.Mental, h.Identity, h.SocialContracts)

	log.Infow("opened household",
		"driver", cfg.Storage.Driver,
		"main", h.Manager.MainDatabase().Name(),
		"derivatives", h.Manager.DerivativesDatabase().Name())
	return h, nil
}

func openStorage(cfg config.StorageConfig, log *zap.SugaredLogger) (storage.Storage, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return storage.NewMemory(), nil
	case config.DriverBadger:
		return storage.OpenBadger(storage.BadgerConfig{
			Path:     cfg.Path,
			InMemory: cfg.Path == "",
			Logger:   log.Named("badger"),
		})
	case config.DriverSQLite:
		path := cfg.Path
		if path == "" {
			path = ":memory:"
		}
		return storage.OpenSQLite(path, log.Named("sqlite"))
	default:
		return nil, errors.InvalidArgumentf("unknown storage driver %q", cfg.Driver)
	}
}

// Institutes returns the institute clients in initialization order.
func (h *Household) Institutes() []institute.Client {
	return []institute.Client{h.Identity, h.SocialContracts, h.Ownership}
}

// InitAxioms claims the axioms of every institute.
func (h *Household) InitAxioms(ctx context.Context) error {
	return institute.InitAll(ctx, h.Institutes()...)
}

// Store returns the content-addressed store and false for other backends.
func (h *Household) Store() (*core.Store, bool) {
	return h.store, h.store != nil
}

// Close releases the backend.
func (h *Household) Close(ctx context.Context) error {
	return h.Client.Close(ctx)
}
