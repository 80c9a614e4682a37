// Package review derives a photo's review state from album membership.
package review

import "github.com/alexwlchan/blink/internal/domain"

// Memberships answers album membership questions. *snapshot.Snapshot
// implements it.
type Memberships interface {
	InAlbum(state domain.ReviewState, id domain.AssetID) bool
}

// Resolve returns the effective review state of id.
//
// Albums can briefly overlap while a change is being applied, so membership
// is checked in priority order: rejected, then needs action, then approved.
func Resolve(id domain.AssetID, m Memberships) domain.ReviewState {
	if m == nil {
		return domain.StateNone
	}
	for _, state := range domain.ReviewStates {
		if m.InAlbum(state, id) {
			return state
		}
	}
	return domain.StateNone
}

// Overlapping returns every state whose album contains id, in priority order.
func Overlapping(id domain.AssetID, m Memberships) []domain.ReviewState {
	if m == nil {
		return nil
	}
	var out []domain.ReviewState
	for _, state := range domain.ReviewStates {
		if m.InAlbum(state, id) {
			out = append(out, state)
		}
	}
	return out
}

// Transition returns the album changes that move a photo from current to
// requested. Requesting the current state clears it, so pressing the same
// key twice undoes a review.
func Transition(current, requested domain.ReviewState) []domain.MembershipChange {
	var changes []domain.MembershipChange
	if current != domain.StateNone {
		changes = append(changes, domain.MembershipChange{State: current, Member: false})
	}
	if requested != domain.StateNone && requested != current {
		changes = append(changes, domain.MembershipChange{State: requested, Member: true})
	}
	return changes
}

// Cleanup returns changes that remove id from every album except keep.
// Used to settle overlapping memberships when a new state is applied.
func Cleanup(id domain.AssetID, m Memberships, keep domain.ReviewState) []domain.MembershipChange {
	var changes []domain.MembershipChange
	for _, state := range Overlapping(id, m) {
		if state != keep {
			changes = append(changes, domain.MembershipChange{State: state, Member: false})
		}
	}
	return changes
}

// Exclusive returns changes that leave id in target's album and no other.
// Unlike Transition it is absolute: applying it twice changes nothing.
func Exclusive(id domain.AssetID, m Memberships, target domain.ReviewState) []domain.MembershipChange {
	changes := Cleanup(id, m, target)
	if target != domain.StateNone && (m == nil || !m.InAlbum(target, id)) {
		changes = append(changes, domain.MembershipChange{State: target, Member: true})
	}
	return changes
}

// Counts tallies review states over a collection.
type Counts struct {
	Total       int
	Approved    int
	Rejected    int
	NeedsAction int
}

// Unreviewed returns the number of photos without a review state.
func (c Counts) Unreviewed() int {
	return c.Total - c.Approved - c.Rejected - c.NeedsAction
}

// Count resolves every id and tallies the results.
func Count(ids []domain.AssetID, m Memberships) Counts {
	c := Counts{Total: len(ids)}
	for _, id := range ids {
		switch Resolve(id, m) {
		case domain.StateApproved:
			c.Approved++
		case domain.StateRejected:
			c.Rejected++
		case domain.StateNeedsAction:
			c.NeedsAction++
		}
	}
	return c
}
