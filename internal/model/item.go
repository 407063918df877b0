package model

// Item is the domain model for a todo entry.
// The JSON form is the durable snapshot format: {"text": ..., "completed": ...}.
type Item struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// List is an ordered snapshot of items. Position is the address of an item.
type List []Item

// Clone returns a copy that shares no backing array with l.
// A nil list clones to an empty, non-nil list so it encodes as [] rather than null.
func (l List) Clone() List {
	out := make(List, len(l))
	copy(out, l)
	return out
}

// Stats counts completed and pending items.
func (l List) Stats() (done, pending int) {
	for _, it := range l {
		if it.Completed {
			done++
		} else {
			pending++
		}
	}
	return
}
