// Package persist keeps the durable "todos" slot in step with the store.
//
// The store knows nothing about storage: the bridge subscribes to it and
// writes a full JSON snapshot after each mutation. Storage trouble is logged
// and reported, never allowed to undo a change already applied in memory.
package persist

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"

	apperr "github.com/idilsaglam/todo/internal/errors"
	"github.com/idilsaglam/todo/internal/kv"
	"github.com/idilsaglam/todo/internal/logging"
	"github.com/idilsaglam/todo/internal/model"
	"github.com/idilsaglam/todo/internal/store"
)

// TodosKey is the durable slot holding the serialized list.
const TodosKey = "todos"

const (
	defaultRetries       = 3
	defaultRetryInterval = 50 * time.Millisecond
	defaultWriteTimeout  = 2 * time.Second
)

// Bridge synchronizes one store with one kv slot.
type Bridge struct {
	kv     kv.Store
	logger *log.Logger

	retries       uint64
	retryInterval time.Duration
	writeTimeout  time.Duration

	lastErr error
}

// Option customizes a Bridge.
type Option func(*Bridge)

// WithRetries sets how many times a failed write is retried.
func WithRetries(n uint64) Option { return func(b *Bridge) { b.retries = n } }

// WithRetryInterval sets the first backoff interval.
func WithRetryInterval(d time.Duration) Option {
	return func(b *Bridge) {
		if d > 0 {
			b.retryInterval = d
		}
	}
}

// WithWriteTimeout bounds each write made from a store notification.
func WithWriteTimeout(d time.Duration) Option {
	return func(b *Bridge) {
		if d > 0 {
			b.writeTimeout = d
		}
	}
}

// New returns a bridge over s. A nil logger discards output.
func New(s kv.Store, logger *log.Logger, opts ...Option) *Bridge {
	if logger == nil {
		logger = logging.Discard()
	}
	b := &Bridge{
		kv:            s,
		logger:        logger.WithPrefix("persist"),
		retries:       defaultRetries,
		retryInterval: defaultRetryInterval,
		writeTimeout:  defaultWriteTimeout,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Hydrate reads the stored list. It always returns a usable list: when the
// slot is absent, unreadable or malformed the list is empty, and the error
// (PersistenceUnavailable or MalformedSnapshot) is informational.
func (b *Bridge) Hydrate(ctx context.Context) (model.List, error) {
	raw, ok, err := b.kv.Get(ctx, TodosKey)
	if err != nil {
		e := apperr.NewPersistenceUnavailable("read", err)
		b.logger.Warn("could not read saved todos, starting empty", "key", TodosKey, "err", err)
		return model.List{}, e
	}
	if !ok {
		b.logger.Debug("no saved todos", "key", TodosKey)
		return model.List{}, nil
	}
	list, err := Decode([]byte(raw))
	if err != nil {
		b.logger.Warn("saved todos are malformed, starting empty", "key", TodosKey, "err", err)
		return model.List{}, apperr.NewMalformedSnapshot(TodosKey, err)
	}
	b.logger.Debug("hydrated todos", "items", len(list))
	return list, nil
}

// Sync overwrites the slot with the full list, retrying transient failures.
func (b *Bridge) Sync(ctx context.Context, list model.List) error {
	payload, err := Encode(list)
	if err != nil {
		return b.fail(apperr.NewPersistenceUnavailable("encode", err))
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = b.retryInterval
	bo.MaxElapsedTime = 0 // bounded by retries and ctx instead

	attempt := 0
	op := func() error {
		attempt++
		err := b.kv.Set(ctx, TodosKey, string(payload))
		if err != nil && ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		if err != nil {
			b.logger.Debug("write failed", "attempt", attempt, "err", err)
		}
		return err
	}
	if err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, b.retries), ctx)); err != nil {
		return b.fail(apperr.NewPersistenceUnavailable("write", err))
	}
	b.lastErr = nil
	return nil
}

// Clear removes the slot.
func (b *Bridge) Clear(ctx context.Context) error {
	if err := b.kv.Delete(ctx, TodosKey); err != nil {
		return b.fail(apperr.NewPersistenceUnavailable("clear", err))
	}
	return nil
}

// Attach subscribes the bridge to s so that every mutation is synced.
func (b *Bridge) Attach(s *store.Store) (detach func()) {
	return s.Subscribe(func(list model.List) {
		ctx, cancel := context.WithTimeout(context.Background(), b.writeTimeout)
		defer cancel()
		_ = b.Sync(ctx, list)
	})
}

// LastError is the most recent sync failure, or nil once a later sync succeeds.
func (b *Bridge) LastError() error { return b.lastErr }

func (b *Bridge) fail(err *apperr.AppError) error {
	b.lastErr = err
	op, _ := err.GetContext("operation")
	b.logger.Error("storage unavailable; in-memory todos stay authoritative", "op", op, "err", err.Cause)
	return err
}

// Encode serializes a list as the durable JSON array.
func Encode(list model.List) ([]byte, error) {
	return json.Marshal(list.Clone())
}

// Decode parses and validates a durable JSON array.
func Decode(raw []byte) (model.List, error) {
	if err := validateSnapshot(raw); err != nil {
		return nil, err
	}
	var list model.List
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, err
	}
	return list.Clone(), nil
}
