// Package app wires storage, session, store and persistence together and
// owns their lifecycle.
package app

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/todo/internal/config"
	"github.com/idilsaglam/todo/internal/kv"
	"github.com/idilsaglam/todo/internal/persist"
	"github.com/idilsaglam/todo/internal/session"
	"github.com/idilsaglam/todo/internal/store"
)

// App is one open profile.
type App struct {
	Config  *config.Config
	Logger  *log.Logger
	KV      kv.Store
	Store   *store.Store
	Bridge  *persist.Bridge
	Session *session.Manager

	detach func()
}

// Open opens the configured backend, hydrates the store from it and attaches
// the bridge. Hydration problems are logged by the bridge and otherwise
// ignored: the app starts with an empty list.
func Open(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	s, err := kv.Open(kv.Options{
		Backend:     cfg.Storage.Backend,
		Dir:         cfg.Storage.Dir,
		FileName:    cfg.Storage.File,
		SQLiteName:  cfg.Storage.SQLiteFile,
		LockTimeout: cfg.Storage.LockTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return New(ctx, cfg, logger, s), nil
}

// New builds an App over an already open kv store.
func New(ctx context.Context, cfg *config.Config, logger *log.Logger, s kv.Store) *App {
	bridge := persist.New(s, logger,
		persist.WithRetries(cfg.Storage.SyncRetries),
		persist.WithRetryInterval(cfg.Storage.RetryBackoff),
		persist.WithWriteTimeout(cfg.Storage.SyncTimeout),
	)
	a := &App{
		Config:  cfg,
		Logger:  logger,
		KV:      s,
		Store:   store.New(nil),
		Bridge:  bridge,
		Session: session.NewManager(s, bridge),
	}
	a.Reload(ctx)
	a.detach = bridge.Attach(a.Store)
	return a
}

// Reload re-hydrates the store from storage. The returned error is
// informational; the store always ends up holding a usable list.
func (a *App) Reload(ctx context.Context) error {
	list, err := a.Bridge.Hydrate(ctx)
	a.Store.Replace(list)
	return err
}

// Logout clears the session and the saved list, and empties the in-memory store.
func (a *App) Logout(ctx context.Context) error {
	if err := a.Session.Logout(ctx); err != nil {
		return err
	}
	a.Store.Replace(nil)
	return nil
}

// Close detaches the bridge and closes storage.
func (a *App) Close() error {
	if a.detach != nil {
		a.detach()
		a.detach = nil
	}
	return a.KV.Close()
}
