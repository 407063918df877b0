package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "github.com/idilsaglam/todo/internal/errors"
	"github.com/idilsaglam/todo/internal/kv"
	"github.com/idilsaglam/todo/internal/kv/memkv"
	"github.com/idilsaglam/todo/internal/logging"
	"github.com/idilsaglam/todo/internal/persist"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		creds Credentials
		field string
	}{
		{"ok", Credentials{"ada", "secret"}, ""},
		{"no username", Credentials{"", "secret"}, "username"},
		{"blank username", Credentials{"  ", "secret"}, "username"},
		{"no password", Credentials{"ada", ""}, "password"},
		{"both missing", Credentials{}, "username"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.creds.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			require.True(t, apperr.IsKind(err, apperr.KindEmptyInput))
			appErr, _ := apperr.AsAppError(err)
			field, _ := appErr.GetContext("field")
			assert.Equal(t, tt.field, field)
		})
	}
}

func TestLoginAndCurrent(t *testing.T) {
	ctx := context.Background()
	m := NewManager(memkv.New(), nil)

	_, ok, err := m.Current(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	name, err := m.Login(ctx, Credentials{Username: "  ada ", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, "ada", name)

	got, ok, err := m.Current(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ada", got)
}

func TestLoginRejectsBlankAndStoresNothing(t *testing.T) {
	ctx := context.Background()
	kv := memkv.New()
	m := NewManager(kv, nil)

	_, err := m.Login(ctx, Credentials{Username: "ada"})
	assert.True(t, apperr.IsKind(err, apperr.KindEmptyInput))

	_, ok, _ := kv.Get(ctx, UsernameKey)
	assert.False(t, ok)
}

func TestRequire(t *testing.T) {
	ctx := context.Background()
	m := NewManager(memkv.New(), nil)

	_, err := m.Require(ctx)
	assert.True(t, apperr.IsKind(err, apperr.KindNotLoggedIn))

	_, err = m.Login(ctx, Credentials{"ada", "pw"})
	require.NoError(t, err)
	name, err := m.Require(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ada", name)
}

func TestLogoutClearsMarkerAndTodos(t *testing.T) {
	ctx := context.Background()
	kv := memkv.New()
	bridge := persist.New(kv, logging.Discard())
	m := NewManager(kv, bridge)

	_, err := m.Login(ctx, Credentials{"ada", "pw"})
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, persist.TodosKey, `[{"text":"a","completed":false}]`))

	require.NoError(t, m.Logout(ctx))

	_, ok, _ := kv.Get(ctx, UsernameKey)
	assert.False(t, ok)
	_, ok, _ = kv.Get(ctx, persist.TodosKey)
	assert.False(t, ok)
}

// failDeleteKV refuses to delete one key.
type failDeleteKV struct {
	kv.Store
	key string
}

func (f failDeleteKV) Delete(ctx context.Context, key string) error {
	if key == f.key {
		return errors.New("disk full")
	}
	return f.Store.Delete(ctx, key)
}

func TestLogoutKeepsSessionWhenTodosStay(t *testing.T) {
	ctx := context.Background()
	store := failDeleteKV{Store: memkv.New(), key: persist.TodosKey}
	m := NewManager(store, persist.New(store, logging.Discard()))

	_, err := m.Login(ctx, Credentials{"ada", "pw"})
	require.NoError(t, err)
	saved := `[{"text":"secret","completed":false}]`
	require.NoError(t, store.Set(ctx, persist.TodosKey, saved))

	err = m.Logout(ctx)
	assert.True(t, apperr.IsKind(err, apperr.KindPersistenceUnavailable))

	name, ok, err := m.Current(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ada", name)

	got, ok, err := store.Get(ctx, persist.TodosKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, saved, got)

	// once storage recovers, the same logout goes through
	store.key = ""
	m = NewManager(store, persist.New(store, logging.Discard()))
	require.NoError(t, m.Logout(ctx))
	_, ok, _ = m.Current(ctx)
	assert.False(t, ok)
	_, ok, _ = store.Get(ctx, persist.TodosKey)
	assert.False(t, ok)
}

func TestLogoutWhenLoggedOut(t *testing.T) {
	m := NewManager(memkv.New(), nil)
	assert.NoError(t, m.Logout(context.Background()))
}

func TestStorageFailures(t *testing.T) {
	ctx := context.Background()
	kv := memkv.New()
	m := NewManager(kv, nil)

	kv.FailWrites = errors.New("disabled")
	_, err := m.Login(ctx, Credentials{"ada", "pw"})
	assert.True(t, apperr.IsKind(err, apperr.KindPersistenceUnavailable))
	assert.True(t, apperr.IsKind(m.Logout(ctx), apperr.KindPersistenceUnavailable))

	kv.FailReads = errors.New("disabled")
	_, _, err = m.Current(ctx)
	assert.True(t, apperr.IsKind(err, apperr.KindPersistenceUnavailable))
}
