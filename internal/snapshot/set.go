package snapshot

import "github.com/alexwlchan/blink/internal/domain"

// Set is an immutable-by-convention set of asset identifiers.
// Once a Set is stored in a Snapshot it must not be modified; use Clone and
// build a new one.
type Set map[domain.AssetID]struct{}

// NewSet builds a set from ids.
func NewSet(ids ...domain.AssetID) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports membership. Safe on a nil set.
func (s Set) Has(id domain.AssetID) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of members.
func (s Set) Len() int { return len(s) }

// Clone returns a mutable copy.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// With returns a copy with inserted added and removed dropped.
// When both are empty the receiver itself is returned.
func (s Set) With(inserted, removed []domain.AssetID) Set {
	if len(inserted) == 0 && len(removed) == 0 {
		if s == nil {
			return Set{}
		}
		return s
	}
	out := s.Clone()
	for _, id := range removed {
		delete(out, id)
	}
	for _, id := range inserted {
		out[id] = struct{}{}
	}
	return out
}
