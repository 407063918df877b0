// Package session owns the login marker. Login is a mock: any non-empty
// username and password pair is accepted and only the username is kept.
package session

import (
	"context"
	"fmt"
	"strings"

	apperr "github.com/idilsaglam/todo/internal/errors"
	"github.com/idilsaglam/todo/internal/kv"
)

// UsernameKey is the durable slot gating access to the todo list.
const UsernameKey = "username"

// Credentials is what the login form collects.
type Credentials struct {
	Username string
	Password string
}

// Validate reports the first blank field.
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Username) == "" {
		return apperr.NewEmptyInput("username")
	}
	if strings.TrimSpace(c.Password) == "" {
		return apperr.NewEmptyInput("password")
	}
	return nil
}

// Clearer removes the persisted todo list on logout.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Manager reads and writes the session marker.
type Manager struct {
	kv    kv.Store
	todos Clearer
}

func NewManager(s kv.Store, todos Clearer) *Manager {
	return &Manager{kv: s, todos: todos}
}

// Login validates creds and records the username.
func (m *Manager) Login(ctx context.Context, creds Credentials) (string, error) {
	if err := creds.Validate(); err != nil {
		return "", err
	}
	username := strings.TrimSpace(creds.Username)
	if err := m.kv.Set(ctx, UsernameKey, username); err != nil {
		return "", apperr.NewPersistenceUnavailable("write", err)
	}
	return username, nil
}

// Current returns the logged-in username. A stored blank name counts as logged out.
func (m *Manager) Current(ctx context.Context) (string, bool, error) {
	v, ok, err := m.kv.Get(ctx, UsernameKey)
	if err != nil {
		return "", false, apperr.NewPersistenceUnavailable("read", err)
	}
	v = strings.TrimSpace(v)
	if !ok || v == "" {
		return "", false, nil
	}
	return v, true, nil
}

// Require returns the username or a NotLoggedIn error.
func (m *Manager) Require(ctx context.Context) (string, error) {
	name, ok, err := m.Current(ctx)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", apperr.NewNotLoggedIn()
	}
	return name, nil
}

// Logout removes the saved todo list, then the marker. If the list cannot be
// cleared the session stays, so the next user never inherits it and the
// logout can be retried.
func (m *Manager) Logout(ctx context.Context) error {
	if m.todos != nil {
		if err := m.todos.Clear(ctx); err != nil {
			return fmt.Errorf("clear todos: %w", err)
		}
	}
	if err := m.kv.Delete(ctx, UsernameKey); err != nil {
		return apperr.NewPersistenceUnavailable("delete", err)
	}
	return nil
}
