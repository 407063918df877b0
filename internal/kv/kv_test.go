package kv

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/todo/internal/kv/filekv"
	"github.com/idilsaglam/todo/internal/kv/memkv"
	"github.com/idilsaglam/todo/internal/kv/sqlitekv"
)

func TestOpenSelectsBackend(t *testing.T) {
	dir := t.TempDir()
	base := Options{Dir: dir, FileName: "storage.json", SQLiteName: "storage.db", LockTimeout: time.Second}

	tests := []struct {
		backend string
		check   func(t *testing.T, s Store)
	}{
		{"", func(t *testing.T, s Store) { assert.IsType(t, &filekv.Store{}, s) }},
		{BackendFile, func(t *testing.T, s Store) { assert.IsType(t, &filekv.Store{}, s) }},
		{BackendSQLite, func(t *testing.T, s Store) { assert.IsType(t, &sqlitekv.Store{}, s) }},
		{BackendMemory, func(t *testing.T, s Store) { assert.IsType(t, &memkv.Store{}, s) }},
	}
	for _, tt := range tests {
		t.Run("backend="+tt.backend, func(t *testing.T) {
			opts := base
			opts.Backend = tt.backend
			s, err := Open(opts)
			require.NoError(t, err)
			defer s.Close()
			tt.check(t, s)
		})
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(Options{Backend: "redis"})
	assert.ErrorContains(t, err, `unknown storage backend "redis"`)
}
