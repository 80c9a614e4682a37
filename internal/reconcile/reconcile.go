// Package reconcile turns library change notifications into new snapshots.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alexwlchan/blink/internal/domain"
	"github.com/alexwlchan/blink/internal/review"
	"github.com/alexwlchan/blink/internal/snapshot"
)

// Reconciler builds snapshots from the CollectionSource. It holds no state
// of its own, so one Reconciler can be shared, but snapshots must be applied
// in notification order by a single owner.
type Reconciler struct {
	source domain.CollectionSource
	logger *slog.Logger
}

// New creates a Reconciler reading from source.
func New(source domain.CollectionSource, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{source: source, logger: logger}
}

// FullReload reads the whole library and builds a snapshot from scratch.
// Album members that are no longer in the library are dropped.
func (r *Reconciler) FullReload(ctx context.Context) (*snapshot.Snapshot, error) {
	lib, err := r.source.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch library: %w", err)
	}

	ordering := make(map[domain.AssetID]struct{}, len(lib.Assets))
	favorites := snapshot.Set{}
	for _, a := range lib.Assets {
		ordering[a.ID] = struct{}{}
		if a.IsFavorite {
			favorites[a.ID] = struct{}{}
		}
	}

	albums := make(map[domain.ReviewState]snapshot.Set, len(domain.ReviewStates))
	for _, state := range domain.ReviewStates {
		albums[state] = prune(lib.Albums[state], ordering)
	}

	next := snapshot.Builder{Assets: lib.Assets, Albums: albums, Favorites: favorites}.Build()
	r.warnOverlap(next)
	r.logger.Info("reloaded library", "assets", next.Len(), "favorites", favorites.Len())
	return next, nil
}

// ApplyIncremental returns the snapshot that results from applying n to old.
// old is never modified. Collections the notification cannot describe are
// re-fetched from the source; a failed re-fetch is returned as an error and
// the caller should keep old.
func (r *Reconciler) ApplyIncremental(ctx context.Context, old *snapshot.Snapshot, n domain.ChangeNotification) (*snapshot.Snapshot, error) {
	if !old.Loaded() {
		return r.FullReload(ctx)
	}

	assets, favorites, err := r.applyAssets(ctx, old, n.Assets)
	if err != nil {
		return nil, err
	}

	albums := make(map[domain.ReviewState]snapshot.Set, len(domain.ReviewStates))
	for _, state := range domain.ReviewStates {
		change := n.Albums[state]
		if change != nil && change.Incremental {
			albums[state] = old.Album(state).With(change.Inserted, change.Removed)
			continue
		}

		ids, err := r.source.FetchAlbum(ctx, state)
		if err != nil {
			return nil, fmt.Errorf("fetch %s album: %w", state.AlbumName(), err)
		}
		albums[state] = prune(ids, index(assets))
		r.logger.Debug("re-fetched album", "album", state.AlbumName(), "members", len(ids))
	}

	return snapshot.Builder{Assets: assets, Albums: albums, Favorites: favorites}.Build(), nil
}

// applyAssets returns the new ordering and favorite set
func (r *Reconciler) applyAssets(ctx context.Context, old *snapshot.Snapshot, c *domain.AssetChanges) ([]domain.Asset, snapshot.Set, error) {
	if c == nil || c.After == nil {
		assets, err := r.source.FetchAssets(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("fetch assets: %w", err)
		}
		r.logger.Debug("re-fetched assets", "assets", len(assets))
		return assets, favoritesOf(assets), nil
	}

	if !c.Incremental || c.HasMoves {
		return c.After, favoritesOf(c.After), nil
	}

	favorites := old.Favorites().Clone()
	for _, id := range c.RemovedIDs {
		delete(favorites, id)
	}
	for _, i := range c.Inserted {
		if i < 0 || i >= len(c.After) {
			r.logger.Warn("insert index out of range, rebuilding favorites", "index", i, "assets", len(c.After))
			return c.After, favoritesOf(c.After), nil
		}
		setFlag(favorites, c.After[i])
	}
	for _, a := range c.Changed {
		setFlag(favorites, a)
	}
	return c.After, favorites, nil
}

// ApplyMembership applies album deltas to old without consulting the source.
// Non-incremental entries are ignored.
func (r *Reconciler) ApplyMembership(old *snapshot.Snapshot, changes map[domain.ReviewState]*domain.MembershipChanges) *snapshot.Snapshot {
	albums := make(map[domain.ReviewState]snapshot.Set, len(changes))
	for state, change := range changes {
		if change == nil || !change.Incremental {
			continue
		}
		albums[state] = old.Album(state).With(change.Inserted, change.Removed)
	}
	return old.WithAlbums(albums)
}

// ApplyFavorite sets one favorite flag without consulting the source.
func (r *Reconciler) ApplyFavorite(old *snapshot.Snapshot, id domain.AssetID, favorite bool) *snapshot.Snapshot {
	if old.IsFavorite(id) == favorite || !old.Contains(id) {
		return old
	}
	favorites := old.Favorites().Clone()
	if favorite {
		favorites[id] = struct{}{}
	} else {
		delete(favorites, id)
	}
	return old.WithFavorites(favorites)
}

// warnOverlap logs photos that claim more than one review state
func (r *Reconciler) warnOverlap(s *snapshot.Snapshot) {
	overlapping := 0
	var example domain.AssetID
	seen := make(map[domain.AssetID]struct{})
	for _, state := range domain.ReviewStates {
		for id := range s.Album(state) {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			if len(review.Overlapping(id, s)) > 1 {
				overlapping++
				example = id
			}
		}
	}
	if overlapping > 0 {
		r.logger.Warn("photos are in more than one review album",
			"count", overlapping, "example", example)
	}
}

func favoritesOf(assets []domain.Asset) snapshot.Set {
	favorites := snapshot.Set{}
	for _, a := range assets {
		setFlag(favorites, a)
	}
	return favorites
}

func setFlag(favorites snapshot.Set, a domain.Asset) {
	if a.IsFavorite {
		favorites[a.ID] = struct{}{}
	} else {
		delete(favorites, a.ID)
	}
}

func index(assets []domain.Asset) map[domain.AssetID]struct{} {
	out := make(map[domain.AssetID]struct{}, len(assets))
	for _, a := range assets {
		out[a.ID] = struct{}{}
	}
	return out
}

// prune builds a set of ids, keeping only those present in ordering
func prune(ids []domain.AssetID, ordering map[domain.AssetID]struct{}) snapshot.Set {
	out := make(snapshot.Set, len(ids))
	for _, id := range ids {
		if _, ok := ordering[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out
}
