// Package focus keeps the UI cursor on the same photo while the library
// changes underneath it.
package focus

import (
	"github.com/alexwlchan/blink/internal/domain"
	"github.com/alexwlchan/blink/internal/snapshot"
)

// State is the cursor position plus the identifier it pointed at when the
// index last changed.
type State struct {
	Index int
	ID    domain.AssetID
}

// Reconcile returns the index in next that best preserves the user's place,
// given the focus (index, id) in old and the change that produced next.
// It returns false when next is empty.
//
// The cheapest answer wins: the photo has not moved, the change's indices
// predict where it went, a lookup finds it, or it was deleted and the cursor
// stays at the equivalent position.
func Reconcile(old, next *snapshot.Snapshot, changes *domain.AssetChanges, index int, id domain.AssetID) (int, bool) {
	n := next.Len()
	if n == 0 {
		return 0, false
	}
	if id == "" {
		id = old.At(index)
	}

	if id != "" && next.At(index) == id {
		return index, true
	}

	estimate, haveEstimate := Shift(changes, index)
	if haveEstimate && !changes.HasMoves && id != "" && next.At(estimate) == id {
		return estimate, true
	}

	if id != "" {
		if i, ok := next.IndexOf(id); ok {
			return i, true
		}
	}

	if haveEstimate {
		return clamp(estimate, n), true
	}
	return clamp(index, n), true
}

// Shift maps a position in the previous ordering through an incremental
// change: removals before it pull it back, insertions at or before it push
// it forward. It returns false when changes carries no usable indices.
func Shift(changes *domain.AssetChanges, index int) (int, bool) {
	if changes == nil || !changes.Incremental {
		return 0, false
	}
	pos := index
	for _, r := range changes.Removed {
		if r < index {
			pos--
		}
	}
	if pos < 0 {
		pos = 0
	}
	for _, ins := range changes.Inserted {
		if ins <= pos {
			pos++
		}
	}
	return pos, true
}

func clamp(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// Tracker owns a focus State. It is not safe for concurrent use; the library
// service guards it.
type Tracker struct {
	state State
	valid bool
}

// State returns the current focus and whether anything is focused.
func (t *Tracker) State() (State, bool) {
	return t.state, t.valid
}

// Set focuses index in snap, clamped into range. It returns true when the
// focus moved.
func (t *Tracker) Set(snap *snapshot.Snapshot, index int) bool {
	n := snap.Len()
	if n == 0 {
		changed := t.valid
		t.state, t.valid = State{}, false
		return changed
	}
	next := State{Index: clamp(index, n)}
	next.ID = snap.At(next.Index)
	changed := !t.valid || next != t.state
	t.state, t.valid = next, true
	return changed
}

// Move shifts the focus by delta within snap.
func (t *Tracker) Move(snap *snapshot.Snapshot, delta int) bool {
	return t.Set(snap, t.state.Index+delta)
}

// Focus puts the cursor on id, if snap contains it.
func (t *Tracker) Focus(snap *snapshot.Snapshot, id domain.AssetID) bool {
	i, ok := snap.IndexOf(id)
	if !ok {
		return false
	}
	return t.Set(snap, i)
}

// Apply relocates the focus after old became next. It returns true when the
// index or focused identifier changed.
func (t *Tracker) Apply(old, next *snapshot.Snapshot, changes *domain.AssetChanges) bool {
	if !t.valid {
		if next.Len() == 0 {
			return false
		}
		return t.Set(next, 0)
	}
	i, ok := Reconcile(old, next, changes, t.state.Index, t.state.ID)
	if !ok {
		return t.Set(next, 0)
	}
	return t.Set(next, i)
}
