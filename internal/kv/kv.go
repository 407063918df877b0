// Package kv is the durable string key-value storage the todo list and the
// session marker live in. It plays the part a browser's local storage plays
// for a web app: a handful of named slots that outlive the process.
package kv

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/idilsaglam/todo/internal/kv/filekv"
	"github.com/idilsaglam/todo/internal/kv/memkv"
	"github.com/idilsaglam/todo/internal/kv/sqlitekv"
)

// Store is a durable key-value slot set.
type Store interface {
	// Get returns the value under key; ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set writes value under key, overwriting any prior value.
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Removing an absent key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Options selects and parameterizes a backend.
type Options struct {
	Backend     string
	Dir         string
	FileName    string
	SQLiteName  string
	LockTimeout time.Duration
}

// Open returns the backend named in opts.
func Open(opts Options) (Store, error) {
	switch opts.Backend {
	case BackendFile, "":
		return filekv.New(filepath.Join(opts.Dir, opts.FileName), opts.LockTimeout)
	case BackendSQLite:
		return sqlitekv.New(filepath.Join(opts.Dir, opts.SQLiteName))
	case BackendMemory:
		return memkv.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q (want file, sqlite or memory)", opts.Backend)
	}
}
