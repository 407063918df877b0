package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/todo/internal/config"
	"github.com/idilsaglam/todo/internal/kv/memkv"
	"github.com/idilsaglam/todo/internal/logging"
	"github.com/idilsaglam/todo/internal/model"
	"github.com/idilsaglam/todo/internal/persist"
	"github.com/idilsaglam/todo/internal/session"
)

func testConfig(t *testing.T, backend string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Storage.Backend = backend
	cfg.Storage.Dir = filepath.Join(t.TempDir(), "profile")
	return cfg
}

func TestMutationsSurviveReopen(t *testing.T) {
	for _, backend := range []string{"file", "sqlite"} {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			cfg := testConfig(t, backend)

			a, err := Open(ctx, cfg, logging.Discard())
			require.NoError(t, err)
			_, err = a.Store.Add(model.Item{Text: "buy milk"})
			require.NoError(t, err)
			_, err = a.Store.Add(model.Item{Text: "walk dog"})
			require.NoError(t, err)
			_, err = a.Store.ToggleComplete(1)
			require.NoError(t, err)
			require.NoError(t, a.Close())

			b, err := Open(ctx, cfg, logging.Discard())
			require.NoError(t, err)
			defer b.Close()
			assert.Equal(t, model.List{{Text: "buy milk"}, {Text: "walk dog", Completed: true}}, b.Store.Items())
		})
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	cfg := testConfig(t, "redis")
	_, err := Open(context.Background(), cfg, logging.Discard())
	assert.Error(t, err)
}

func TestMalformedSnapshotStartsEmpty(t *testing.T) {
	ctx := context.Background()
	kv := memkv.New()
	require.NoError(t, kv.Set(ctx, persist.TodosKey, "{broken"))

	a := New(ctx, testConfig(t, "memory"), logging.Discard(), kv)
	assert.Empty(t, a.Store.Items())

	_, err := a.Store.Add(model.Item{Text: "fresh"})
	require.NoError(t, err)
	raw, _, err := kv.Get(ctx, persist.TodosKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"text":"fresh","completed":false}]`, raw)
}

func TestLogoutClearsEverything(t *testing.T) {
	ctx := context.Background()
	kv := memkv.New()
	a := New(ctx, testConfig(t, "memory"), logging.Discard(), kv)

	_, err := a.Session.Login(ctx, session.Credentials{Username: "ada", Password: "pw"})
	require.NoError(t, err)
	_, err = a.Store.Add(model.Item{Text: "a"})
	require.NoError(t, err)

	require.NoError(t, a.Logout(ctx))
	assert.Empty(t, a.Store.Items())
	_, ok, _ := kv.Get(ctx, persist.TodosKey)
	assert.False(t, ok)
	_, ok, _ = kv.Get(ctx, session.UsernameKey)
	assert.False(t, ok)
}

func TestCloseDetaches(t *testing.T) {
	ctx := context.Background()
	kv := memkv.New()
	a := New(ctx, testConfig(t, "memory"), logging.Discard(), kv)
	require.NoError(t, a.Close())

	_, err := a.Store.Add(model.Item{Text: "after close"})
	require.NoError(t, err)
	assert.NoError(t, a.Bridge.LastError())
}

func TestReloadPicksUpExternalWrites(t *testing.T) {
	ctx := context.Background()
	kv := memkv.New()
	a := New(ctx, testConfig(t, "memory"), logging.Discard(), kv)

	require.NoError(t, kv.Set(ctx, persist.TodosKey, `[{"text":"from elsewhere","completed":true}]`))
	require.NoError(t, a.Reload(ctx))
	assert.Equal(t, model.List{{Text: "from elsewhere", Completed: true}}, a.Store.Items())
}
