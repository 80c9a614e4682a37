// Package snapshot holds the immutable, in-memory mirror of the photo library.
package snapshot

import (
	"sync"

	"github.com/alexwlchan/blink/internal/domain"
)

// Snapshot is one consistent view of the library. It is never modified after
// construction, so it can be shared freely between goroutines.
type Snapshot struct {
	loaded    bool
	ordered   []domain.AssetID
	assets    map[domain.AssetID]domain.Asset
	albums    map[domain.ReviewState]Set
	favorites Set

	indexOnce sync.Once
	index     map[domain.AssetID]int
}

// Empty returns the uninitialized snapshot used before the first load.
func Empty() *Snapshot {
	return &Snapshot{
		albums:    map[domain.ReviewState]Set{},
		favorites: Set{},
	}
}

// Builder accumulates the parts of a new snapshot.
type Builder struct {
	Assets    []domain.Asset
	Albums    map[domain.ReviewState]Set
	Favorites Set
}

// Build creates a loaded snapshot. The builder's slices and sets are owned by
// the snapshot afterwards.
func (b Builder) Build() *Snapshot {
	s := &Snapshot{
		loaded:    true,
		ordered:   make([]domain.AssetID, len(b.Assets)),
		assets:    make(map[domain.AssetID]domain.Asset, len(b.Assets)),
		albums:    make(map[domain.ReviewState]Set, len(domain.ReviewStates)),
		favorites: b.Favorites,
	}
	for i, a := range b.Assets {
		s.ordered[i] = a.ID
		s.assets[a.ID] = a
	}
	for _, state := range domain.ReviewStates {
		set := b.Albums[state]
		if set == nil {
			set = Set{}
		}
		s.albums[state] = set
	}
	if s.favorites == nil {
		s.favorites = Set{}
	}
	return s
}

// Loaded reports whether the snapshot reflects a successful read of the
// library. An empty library is loaded; the initial placeholder is not.
func (s *Snapshot) Loaded() bool { return s != nil && s.loaded }

// Len returns the number of assets.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.ordered)
}

// At returns the identifier at position i, or "" when out of range.
func (s *Snapshot) At(i int) domain.AssetID {
	if s == nil || i < 0 || i >= len(s.ordered) {
		return ""
	}
	return s.ordered[i]
}

// Ordered returns the ordering. Callers must not modify the result.
func (s *Snapshot) Ordered() []domain.AssetID {
	if s == nil {
		return nil
	}
	return s.ordered
}

// Asset returns the metadata for id.
func (s *Snapshot) Asset(id domain.AssetID) (domain.Asset, bool) {
	if s == nil {
		return domain.Asset{}, false
	}
	a, ok := s.assets[id]
	if ok {
		a.IsFavorite = s.favorites.Has(id)
	}
	return a, ok
}

// Assets returns the assets in order, with favorite flags from this snapshot.
func (s *Snapshot) Assets() []domain.Asset {
	out := make([]domain.Asset, 0, s.Len())
	for _, id := range s.Ordered() {
		a, _ := s.Asset(id)
		out = append(out, a)
	}
	return out
}

// IndexOf returns the position of id in the ordering.
// The index is derived from the ordering on first use.
func (s *Snapshot) IndexOf(id domain.AssetID) (int, bool) {
	if s == nil {
		return 0, false
	}
	s.indexOnce.Do(func() {
		s.index = make(map[domain.AssetID]int, len(s.ordered))
		for i, a := range s.ordered {
			s.index[a] = i
		}
	})
	i, ok := s.index[id]
	return i, ok
}

// Contains reports whether id is in the library.
func (s *Snapshot) Contains(id domain.AssetID) bool {
	_, ok := s.IndexOf(id)
	return ok
}

// Album returns the members of the album backing state.
func (s *Snapshot) Album(state domain.ReviewState) Set {
	if s == nil {
		return nil
	}
	return s.albums[state]
}

// Albums returns every review album. Callers must not modify the result.
func (s *Snapshot) Albums() map[domain.ReviewState]Set {
	if s == nil {
		return nil
	}
	return s.albums
}

// InAlbum implements review.Memberships.
func (s *Snapshot) InAlbum(state domain.ReviewState, id domain.AssetID) bool {
	return s.Album(state).Has(id)
}

// Favorites returns the favorite set.
func (s *Snapshot) Favorites() Set {
	if s == nil {
		return nil
	}
	return s.favorites
}

// IsFavorite reports the favorite flag of id; unknown ids are not favorites.
func (s *Snapshot) IsFavorite(id domain.AssetID) bool {
	return s.Favorites().Has(id)
}

// metadata returns the asset map for derived snapshots in this package.
func (s *Snapshot) metadata() map[domain.AssetID]domain.Asset {
	return s.assets
}

// WithAlbums returns a snapshot sharing this one's ordering and favorites with
// the given albums. Missing states keep their current membership.
func (s *Snapshot) WithAlbums(albums map[domain.ReviewState]Set) *Snapshot {
	next := &Snapshot{
		loaded:    s.loaded,
		ordered:   s.ordered,
		assets:    s.metadata(),
		albums:    make(map[domain.ReviewState]Set, len(domain.ReviewStates)),
		favorites: s.favorites,
	}
	for _, state := range domain.ReviewStates {
		if set, ok := albums[state]; ok && set != nil {
			next.albums[state] = set
		} else {
			next.albums[state] = s.Album(state)
		}
	}
	return next
}

// WithFavorites returns a snapshot sharing everything but the favorite set.
func (s *Snapshot) WithFavorites(favorites Set) *Snapshot {
	return &Snapshot{
		loaded:    s.loaded,
		ordered:   s.ordered,
		assets:    s.metadata(),
		albums:    s.albums,
		favorites: favorites,
	}
}
