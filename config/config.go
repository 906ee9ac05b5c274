package config

import (
	"slices"
	"time"

	"github.com/nasdf/household/errors"
	"github.com/nasdf/household/logger"
)

// Storage drivers.
const (
	DriverMemory = "memory"
	DriverBadger = "badger"
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

var drivers = []string{DriverMemory, DriverBadger, DriverSQLite, DriverMongo}

// Config is the household configuration.
type Config struct {
	Storage   StorageConfig   `mapstructure:"storage"`
	Mongo     MongoConfig     `mapstructure:"mongo"`
	Namespace NamespaceConfig `mapstructure:"namespace"`
	Log       LogConfig       `mapstructure:"log"`
}

// StorageConfig selects the document store backend.
type StorageConfig struct {
	// Driver is one of memory, badger, sqlite or mongo.
	Driver string `mapstructure:"driver"`
	// Path is the badger directory or sqlite file. Empty means in-memory.
	Path string `mapstructure:"path"`
}

// MongoConfig locates the mongo deployment used by the mongo driver.
type MongoConfig struct {
	URI     string        `mapstructure:"uri"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// NamespaceConfig names the databases holding the ledger and materialized sets.
type NamespaceConfig struct {
	Main        string `mapstructure:"main"`
	Derivatives string `mapstructure:"derivatives"`
	// Ephemeral gives every process its own main database.
	Ephemeral bool `mapstructure:"ephemeral"`
}

// LogConfig selects the logger encoding and level.
type LogConfig struct {
	JSON  bool   `mapstructure:"json"`
	Level string `mapstructure:"level"`
}

// Logger returns the logger config.
func (c LogConfig) Logger() logger.Config {
	return logger.Config{JSON: c.JSON, Level: c.Level}
}

// Validate checks the config for values that cannot be opened.
func (c *Config) Validate() error {
	if !slices.Contains(drivers, c.Storage.Driver) {
		return errors.InvalidArgumentf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.Driver == DriverMongo && c.Mongo.URI == "" {
		return errors.InvalidArgumentf("mongo.uri is required for the mongo driver")
	}
	if c.Mongo.Timeout < 0 {
		return errors.InvalidArgumentf("mongo.timeout must not be negative")
	}
	if c.Namespace.Main == "" || c.Namespace.Derivatives == "" {
		return errors.InvalidArgumentf("namespace.main and namespace.derivatives are required")
	}
	if c.Namespace.Main == c.Namespace.Derivatives {
		return errors.InvalidArgumentf("namespace.main and namespace.derivatives must differ")
	}
	return nil
}
