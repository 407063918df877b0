package filekv

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/todo/internal/kv/kvtest"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "profile", "storage.json"), time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestConformance(t *testing.T) {
	kvtest.Run(t, func(t *testing.T) kvtest.Store { return newStore(t) })
}

func TestFileIsReadableJSON(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "username", "ada"))
	require.NoError(t, s.Set(ctx, "todos", `[{"text":"a","completed":true}]`))

	b, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	var data map[string]string
	require.NoError(t, json.Unmarshal(b, &data))
	assert.Equal(t, "ada", data["username"])

	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestPersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	ctx := context.Background()

	a, err := New(path, time.Second)
	require.NoError(t, err)
	require.NoError(t, a.Set(ctx, "todos", "[]"))
	require.NoError(t, a.Close())

	b, err := New(path, time.Second)
	require.NoError(t, err)
	defer b.Close()
	v, ok, err := b.Get(ctx, "todos")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", v)
}

func TestCorruptFileIsAnError(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0o600))

	_, _, err := s.Get(context.Background(), "todos")
	assert.Error(t, err)
	assert.Error(t, s.Set(context.Background(), "todos", "[]"))
}

func TestEmptyFileIsEmptyStore(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.WriteFile(s.Path(), nil, 0o600))

	_, ok, err := s.Get(context.Background(), "todos")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEmptyPath(t *testing.T) {
	_, err := New("", time.Second)
	assert.Error(t, err)
}
