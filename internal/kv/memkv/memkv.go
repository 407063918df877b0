// Package memkv is a process-local key-value store. It backs the "memory"
// storage mode and doubles as the test store for packages above kv.
package memkv

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by every operation after Close.
var ErrClosed = errors.New("memkv: store closed")

// Store is a map guarded by a mutex.
type Store struct {
	mu     sync.Mutex
	data   map[string]string
	closed bool

	// FailWrites, when non-nil, is returned from Set and Delete.
	FailWrites error
	// FailReads, when non-nil, is returned from Get.
	FailReads error
}

func New() *Store {
	return &Store{data: make(map[string]string)}
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", false, ErrClosed
	}
	if s.FailReads != nil {
		return "", false, s.FailReads
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.FailWrites != nil {
		return s.FailWrites
	}
	s.data[key] = value
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.FailWrites != nil {
		return s.FailWrites
	}
	delete(s.data, key)
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
