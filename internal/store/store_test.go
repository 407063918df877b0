package store

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "github.com/idilsaglam/todo/internal/errors"
	"github.com/idilsaglam/todo/internal/model"
)

func seeded(t *testing.T, texts ...string) *Store {
	t.Helper()
	s := New(nil)
	for _, txt := range texts {
		_, err := s.Add(model.Item{Text: txt})
		require.NoError(t, err)
	}
	return s
}

func TestScenario(t *testing.T) {
	s := New(nil)
	assert.Empty(t, s.Items())

	list, err := s.Add(model.Item{Text: "buy milk"})
	require.NoError(t, err)
	assert.Equal(t, model.List{{Text: "buy milk"}}, list)

	list, err = s.Add(model.Item{Text: "walk dog"})
	require.NoError(t, err)
	assert.Equal(t, model.List{{Text: "buy milk"}, {Text: "walk dog"}}, list)

	list, err = s.ToggleComplete(0)
	require.NoError(t, err)
	assert.Equal(t, model.List{{Text: "buy milk", Completed: true}, {Text: "walk dog"}}, list)

	list, err = s.Delete(0)
	require.NoError(t, err)
	assert.Equal(t, model.List{{Text: "walk dog"}}, list)

	list, err = s.Edit(0, "walk the dog")
	require.NoError(t, err)
	assert.Equal(t, model.List{{Text: "walk the dog"}}, list)
	assert.Equal(t, list, s.Items())
}

func TestAddKeepsInsertionOrder(t *testing.T) {
	for _, n := range []int{0, 1, 5, 50} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			s := New(nil)
			for i := 0; i < n; i++ {
				_, err := s.Add(model.Item{Text: fmt.Sprintf("item %d", i)})
				require.NoError(t, err)
			}
			items := s.Items()
			require.Len(t, items, n)
			for i, it := range items {
				assert.Equal(t, fmt.Sprintf("item %d", i), it.Text)
			}
		})
	}
}

func TestAddKeepsCompletedFlag(t *testing.T) {
	s := New(nil)
	list, err := s.Add(model.Item{Text: "  done already ", Completed: true})
	require.NoError(t, err)
	assert.Equal(t, model.List{{Text: "  done already ", Completed: true}}, list)
}

func TestTextIsStoredAsGiven(t *testing.T) {
	s := seeded(t, "  buy milk\n")
	list, err := s.Edit(0, "\twalk dog ")
	require.NoError(t, err)
	assert.Equal(t, model.List{{Text: "\twalk dog "}}, list)
}

func TestRejectsInvalidUTF8(t *testing.T) {
	s := seeded(t, "a")

	_, err := s.Add(model.Item{Text: "a\xffb"})
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidInput))

	_, err = s.Edit(0, "x\xc3")
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidInput))

	assert.Equal(t, model.List{{Text: "a"}}, s.Items())
}

func TestAddRejectsBlank(t *testing.T) {
	s := seeded(t, "a")
	for _, txt := range []string{"", "   ", "\t\n"} {
		_, err := s.Add(model.Item{Text: txt})
		assert.True(t, apperr.IsKind(err, apperr.KindEmptyInput), "text %q", txt)
	}
	assert.Equal(t, 1, s.Len())
}

func TestToggleTwiceRestores(t *testing.T) {
	s := seeded(t, "a", "b", "c")
	_, err := s.ToggleComplete(1)
	require.NoError(t, err)
	before := s.Items()

	for i := 0; i < s.Len(); i++ {
		_, err := s.ToggleComplete(i)
		require.NoError(t, err)
		_, err = s.ToggleComplete(i)
		require.NoError(t, err)
		assert.Equal(t, before, s.Items())
	}
}

func TestEditChangesOnlyText(t *testing.T) {
	s := seeded(t, "a", "b", "c")
	_, err := s.ToggleComplete(1)
	require.NoError(t, err)

	for i := 0; i < s.Len(); i++ {
		before := s.Items()
		after, err := s.Edit(i, "new text")
		require.NoError(t, err)

		for j := range before {
			if j == i {
				assert.Equal(t, "new text", after[j].Text)
				assert.Equal(t, before[j].Completed, after[j].Completed)
				continue
			}
			assert.Equal(t, before[j], after[j])
		}
	}
}

func TestEditRejectsBlank(t *testing.T) {
	s := seeded(t, "a")
	_, err := s.Edit(0, "  ")
	assert.True(t, apperr.IsKind(err, apperr.KindEmptyInput))
	assert.Equal(t, model.List{{Text: "a"}}, s.Items())
}

func TestDeleteShiftsSurvivors(t *testing.T) {
	texts := []string{"a", "b", "c", "d"}
	for i := range texts {
		t.Run(texts[i], func(t *testing.T) {
			s := seeded(t, texts...)
			before := s.Items()

			after, err := s.Delete(i)
			require.NoError(t, err)
			require.Len(t, after, len(before)-1)

			want := append(before[:i:i], before[i+1:]...)
			assert.Equal(t, want, after)
		})
	}
}

func TestOutOfRangeLeavesListUnmodified(t *testing.T) {
	s := seeded(t, "a", "b")
	before := s.Items()

	ops := map[string]func(int) (model.List, error){
		"edit":   func(i int) (model.List, error) { return s.Edit(i, "x") },
		"delete": s.Delete,
		"toggle": s.ToggleComplete,
	}
	for name, op := range ops {
		for _, idx := range []int{-1, s.Len(), 100} {
			t.Run(fmt.Sprintf("%s/%d", name, idx), func(t *testing.T) {
				list, err := op(idx)
				require.Error(t, err)
				assert.Nil(t, list)
				assert.True(t, apperr.IsKind(err, apperr.KindIndexOutOfRange))
				assert.Equal(t, before, s.Items())
			})
		}
	}
}

func TestOutOfRangeOnEmptyList(t *testing.T) {
	s := New(nil)
	_, err := s.Delete(0)
	assert.True(t, apperr.IsKind(err, apperr.KindIndexOutOfRange))
}

func TestSnapshotsAreNotAliased(t *testing.T) {
	s := seeded(t, "a", "b")
	snap := s.Items()

	_, err := s.Edit(0, "changed")
	require.NoError(t, err)
	_, err = s.ToggleComplete(1)
	require.NoError(t, err)

	assert.Equal(t, model.List{{Text: "a"}, {Text: "b"}}, snap)

	snap[0].Text = "mutated by caller"
	assert.Equal(t, "changed", s.Items()[0].Text)
}

func TestNewCopiesInitial(t *testing.T) {
	initial := model.List{{Text: "a"}}
	s := New(initial)
	initial[0].Text = "mutated"
	assert.Equal(t, "a", s.Items()[0].Text)
}

func TestListenersNotifiedOnSuccessOnly(t *testing.T) {
	s := New(nil)
	var got []model.List
	s.Subscribe(func(l model.List) { got = append(got, l) })

	_, err := s.Add(model.Item{Text: "a"})
	require.NoError(t, err)
	_, err = s.Delete(5)
	require.Error(t, err)
	_, err = s.Add(model.Item{Text: " "})
	require.Error(t, err)
	_, err = s.ToggleComplete(0)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, model.List{{Text: "a"}}, got[0])
	assert.Equal(t, model.List{{Text: "a", Completed: true}}, got[1])
}

func TestListenerOrderAndUnsubscribe(t *testing.T) {
	s := New(nil)
	var calls []string
	unsubA := s.Subscribe(func(model.List) { calls = append(calls, "a") })
	s.Subscribe(func(model.List) { calls = append(calls, "b") })

	_, err := s.Add(model.Item{Text: "x"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, calls)

	unsubA()
	unsubA()
	calls = nil
	_, err = s.Add(model.Item{Text: "y"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, calls)
}

func TestReplaceDoesNotNotify(t *testing.T) {
	s := New(nil)
	notified := false
	s.Subscribe(func(model.List) { notified = true })

	s.Replace(model.List{{Text: "loaded"}})
	assert.False(t, notified)
	assert.Equal(t, model.List{{Text: "loaded"}}, s.Items())
}

func TestIDsFollowItems(t *testing.T) {
	s := seeded(t, "a", "b", "c")
	idC, err := s.ID(2)
	require.NoError(t, err)

	_, err = s.Delete(0)
	require.NoError(t, err)
	assert.Equal(t, 1, s.IndexOf(idC))

	idA, err := s.ID(0)
	require.NoError(t, err)
	_, err = s.Edit(0, "b2")
	require.NoError(t, err)
	same, err := s.ID(0)
	require.NoError(t, err)
	assert.Equal(t, idA, same)

	_, err = s.Delete(1)
	require.NoError(t, err)
	assert.Equal(t, -1, s.IndexOf(idC))

	_, err = s.ID(7)
	assert.True(t, apperr.IsKind(err, apperr.KindIndexOutOfRange))
}
