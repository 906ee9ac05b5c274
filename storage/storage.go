// Package storage provides key/value block storage for the content-addressed store.
package storage

import (
	"github.com/nasdf/household/errors"

	"github.com/ipld/go-ipld-prime/storage"
)

// ErrNotFound is returned when a key does not exist.
var ErrNotFound = errors.Mark(errors.New("key not found"), errors.ErrNotFound)

// Storage holds blocks addressed by key.
type Storage interface {
	storage.ReadableStorage
	storage.WritableStorage
	// Close releases the resources held by the storage.
	Close() error
}
