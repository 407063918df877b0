// Package store holds the in-memory todo list and its four mutations.
//
// A Store is owned by a single goroutine (a CLI command or the dashboard's
// update loop) and is not safe for concurrent use. Mutations never modify a
// snapshot that was already handed out: every change builds a new backing
// slice, so listeners and renderers can keep the list they were given.
package store

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	apperr "github.com/idilsaglam/todo/internal/errors"
	"github.com/idilsaglam/todo/internal/model"
)

// Listener is called with the new snapshot after every successful mutation.
type Listener func(model.List)

type subscription struct {
	id int
	fn Listener
}

// Store is an ordered todo list addressed by position.
type Store struct {
	items model.List
	ids   []uuid.UUID // parallel to items; never persisted

	subs   []subscription
	nextID int
}

// New returns a store seeded with a copy of initial.
func New(initial model.List) *Store {
	s := &Store{}
	s.reset(initial)
	return s
}

// Items returns the current snapshot.
func (s *Store) Items() model.List { return s.items.Clone() }

// Len returns the number of items.
func (s *Store) Len() int { return len(s.items) }

// Add appends item to the end of the list. The text is stored as given; it
// must not be blank and must be valid UTF-8.
func (s *Store) Add(item model.Item) (model.List, error) {
	if err := validText(item.Text); err != nil {
		return nil, err
	}

	items := make(model.List, len(s.items), len(s.items)+1)
	copy(items, s.items)
	ids := make([]uuid.UUID, len(s.ids), len(s.ids)+1)
	copy(ids, s.ids)

	s.items = append(items, item)
	s.ids = append(ids, uuid.New())
	return s.commit(), nil
}

// Edit replaces the text of the item at index, leaving Completed untouched.
func (s *Store) Edit(index int, text string) (model.List, error) {
	if err := s.check("edit", index); err != nil {
		return nil, err
	}
	if err := validText(text); err != nil {
		return nil, err
	}
	items := s.items.Clone()
	items[index].Text = text
	s.items = items
	return s.commit(), nil
}

// Delete removes the item at index; later items shift left by one.
func (s *Store) Delete(index int) (model.List, error) {
	if err := s.check("delete", index); err != nil {
		return nil, err
	}
	items := make(model.List, 0, len(s.items)-1)
	items = append(items, s.items[:index]...)
	items = append(items, s.items[index+1:]...)

	ids := make([]uuid.UUID, 0, len(s.ids)-1)
	ids = append(ids, s.ids[:index]...)
	ids = append(ids, s.ids[index+1:]...)

	s.items, s.ids = items, ids
	return s.commit(), nil
}

// ToggleComplete flips the completed flag of the item at index.
func (s *Store) ToggleComplete(index int) (model.List, error) {
	if err := s.check("toggle", index); err != nil {
		return nil, err
	}
	items := s.items.Clone()
	items[index].Completed = !items[index].Completed
	s.items = items
	return s.commit(), nil
}

// Replace swaps in a whole list, e.g. after hydration. Listeners are not
// notified: this is a load, not a user mutation.
func (s *Store) Replace(list model.List) {
	s.reset(list)
}

// ID returns the stable identifier of the item currently at index.
func (s *Store) ID(index int) (uuid.UUID, error) {
	if err := s.check("id", index); err != nil {
		return uuid.Nil, err
	}
	return s.ids[index], nil
}

// IndexOf returns the current position of the item with the given id, or -1.
func (s *Store) IndexOf(id uuid.UUID) int {
	for i, v := range s.ids {
		if v == id {
			return i
		}
	}
	return -1
}

// Subscribe registers fn for change notifications. Listeners run in
// subscription order. The returned func removes the subscription.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	id := s.nextID
	s.nextID++
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	return func() {
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) reset(list model.List) {
	s.items = list.Clone()
	s.ids = make([]uuid.UUID, len(s.items))
	for i := range s.ids {
		s.ids[i] = uuid.New()
	}
}

// validText rejects text that is blank after trimming, or that JSON could
// not carry byte for byte.
func validText(text string) error {
	if strings.TrimSpace(text) == "" {
		return apperr.NewEmptyInput("text")
	}
	if !utf8.ValidString(text) {
		return apperr.NewInvalidInput("text", "not valid UTF-8")
	}
	return nil
}

func (s *Store) check(op string, index int) error {
	if index < 0 || index >= len(s.items) {
		return apperr.NewIndexOutOfRange(op, index, len(s.items))
	}
	return nil
}

// commit notifies listeners and returns a snapshot for the caller.
func (s *Store) commit() model.List {
	for _, sub := range s.subs {
		sub.fn(s.items.Clone())
	}
	return s.items.Clone()
}
