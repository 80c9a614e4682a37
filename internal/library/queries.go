package library

import (
	"fmt"

	"github.com/alexwlchan/blink/internal/domain"
	"github.com/alexwlchan/blink/internal/focus"
	"github.com/alexwlchan/blink/internal/review"
	"github.com/alexwlchan/blink/internal/snapshot"
)

// Snapshot returns the latest published snapshot. It never returns nil.
func (s *Service) Snapshot() *snapshot.Snapshot {
	return s.snap.Load()
}

// Focus returns the current focus, and false when nothing is focused.
func (s *Service) Focus() (focus.State, bool) {
	s.focusMu.Lock()
	defer s.focusMu.Unlock()
	return s.focus.State()
}

// FocusedAsset returns the focused asset.
func (s *Service) FocusedAsset() (domain.Asset, bool) {
	s.focusMu.Lock()
	state, ok := s.focus.State()
	snap := s.snap.Load()
	s.focusMu.Unlock()
	if !ok {
		return domain.Asset{}, false
	}
	return snap.Asset(state.ID)
}

// MoveFocus moves the focus by delta, clamped to the library.
func (s *Service) MoveFocus(delta int) {
	s.updateFocus(func(snap *snapshot.Snapshot) bool {
		return s.focus.Move(snap, delta)
	})
}

// SetFocus focuses position index, clamped to the library.
func (s *Service) SetFocus(index int) {
	s.updateFocus(func(snap *snapshot.Snapshot) bool {
		return s.focus.Set(snap, index)
	})
}

// FocusAsset focuses id. It returns false if id is not in the library.
func (s *Service) FocusAsset(id domain.AssetID) bool {
	found := false
	s.updateFocus(func(snap *snapshot.Snapshot) bool {
		found = snap.Contains(id)
		return s.focus.Focus(snap, id)
	})
	return found
}

// FocusAfter focuses the photo following id, staying on id when it is the
// oldest. It returns false if id is not in the library.
func (s *Service) FocusAfter(id domain.AssetID) bool {
	found := false
	s.updateFocus(func(snap *snapshot.Snapshot) bool {
		var i int
		if i, found = snap.IndexOf(id); !found {
			return false
		}
		return s.focus.Set(snap, i+1)
	})
	return found
}

func (s *Service) updateFocus(fn func(*snapshot.Snapshot) bool) {
	s.focusMu.Lock()
	snap := s.snap.Load()
	changed := fn(snap)
	state, ok := s.focus.State()
	s.focusMu.Unlock()

	if changed {
		s.publish(Event{Snapshot: snap, Focus: state, HasFocus: ok, FocusChanged: true})
	}
}

// ReviewState returns the effective review state of id in the current snapshot.
func (s *Service) ReviewState(id domain.AssetID) domain.ReviewState {
	return review.Resolve(id, s.Snapshot())
}

// Statistics summarises the review progress of a library.
type Statistics struct {
	review.Counts
	Favorites int
}

// String formats the statistics the way the header shows them
func (st Statistics) String() string {
	return fmt.Sprintf("%s, %d approved, %d rejected, %d need action",
		pluralize(st.Total, "photo"), st.Approved, st.Rejected, st.NeedsAction)
}

// StatisticsOf tallies snap.
func StatisticsOf(snap *snapshot.Snapshot) Statistics {
	return Statistics{
		Counts:    review.Count(snap.Ordered(), snap),
		Favorites: snap.Favorites().Len(),
	}
}

// Statistics tallies the current snapshot.
func (s *Service) Statistics() Statistics {
	return StatisticsOf(s.Snapshot())
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
