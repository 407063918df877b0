// Package kvtest is the behaviour every kv backend must share.
package kvtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Store mirrors kv.Store; kv itself imports the backends, so the suite
// cannot import it without a cycle.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Run exercises a fresh store returned by open. open is called once per subtest.
func Run(t *testing.T, open func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		s := open(t)
		v, ok, err := s.Get(ctx, "todos")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, v)
	})

	t.Run("set then get", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.Set(ctx, "username", "ada"))
		v, ok, err := s.Get(ctx, "username")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "ada", v)
	})

	t.Run("overwrite", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.Set(ctx, "todos", "[]"))
		require.NoError(t, s.Set(ctx, "todos", `[{"text":"a","completed":false}]`))
		v, _, err := s.Get(ctx, "todos")
		require.NoError(t, err)
		assert.Equal(t, `[{"text":"a","completed":false}]`, v)
	})

	t.Run("empty value is present", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.Set(ctx, "k", ""))
		v, ok, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Empty(t, v)
	})

	t.Run("keys are independent", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.Set(ctx, "todos", "x"))
		require.NoError(t, s.Set(ctx, "username", "y"))
		require.NoError(t, s.Delete(ctx, "todos"))

		_, ok, err := s.Get(ctx, "todos")
		require.NoError(t, err)
		assert.False(t, ok)
		v, ok, err := s.Get(ctx, "username")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "y", v)
	})

	t.Run("delete absent key", func(t *testing.T) {
		s := open(t)
		assert.NoError(t, s.Delete(ctx, "nope"))
	})

	t.Run("unicode and quotes", func(t *testing.T) {
		s := open(t)
		val := `"quoted" \ back — 日本語 🎉`
		require.NoError(t, s.Set(ctx, "todos", val))
		v, _, err := s.Get(ctx, "todos")
		require.NoError(t, err)
		assert.Equal(t, val, v)
	})
}
