// Package storage holds the durable key/value backends that keep the
// serialized place list between restarts.
package storage

import (
	"context"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("blob not found")

// BlobStore persists whole values under string keys. Put replaces any
// previous value for the key.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Ping(ctx context.Context) error
	Close() error
}

const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Options struct {
	Driver      string
	Dir         string
	DatabaseURL string
	SQLitePath  string
}

// Open returns the backend selected by opts.Driver.
func Open(ctx context.Context, opts Options) (BlobStore, error) {
	switch opts.Driver {
	case DriverMemory:
		return NewMemoryStore(), nil
	case DriverFile, "":
		return NewFileStore(opts.Dir)
	case DriverPostgres:
		return NewPostgresStore(ctx, opts.DatabaseURL)
	case DriverSQLite:
		return NewSQLiteStore(ctx, opts.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
}
