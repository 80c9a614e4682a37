package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/alexwlchan/blink/internal/domain"
)

// mutate applies fn to a copy of the library, persists the difference,
// publishes the new version and notifies subscribers. Nothing is published
// when fn or the commit fails.
func (s *PhotoStore) mutate(ctx context.Context, op string, fn func(next *library) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	prev, err := s.current()
	if err != nil {
		return err
	}

	next := prev.clone()
	if err := fn(next); err != nil {
		return err
	}
	next.sortOrder()

	d := diff(prev, next)
	if d.empty() {
		return nil
	}
	if err := s.persist(d, next); err != nil {
		s.logger.Error("failed to commit library change", "op", op, "error", err)
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	s.lib = next
	s.mu.Unlock()

	n := d.notification(next, s.opts.MaxIncrementalChanges)
	s.logger.Debug("library changed", "op", op,
		"inserted", len(d.inserted), "removed", len(d.removedIDs),
		"changed", len(d.changed), "moves", d.hasMoves,
		"incremental", n.Assets.Incremental)
	s.dispatch(n)
	return nil
}

func (s *PhotoStore) persist(d *delta, next *library) error {
	if s.db == nil {
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		assets := tx.Bucket(bucketAssets)
		for _, id := range d.removedIDs {
			if err := assets.Delete([]byte(id)); err != nil {
				return err
			}
		}
		for _, id := range d.written(next) {
			data, err := json.Marshal(toRecord(next.assets[id]))
			if err != nil {
				return err
			}
			if err := assets.Put([]byte(id), data); err != nil {
				return err
			}
		}
		for state, change := range d.albums {
			b := tx.Bucket(bucketAlbums[state])
			for _, id := range change.Removed {
				if err := b.Delete([]byte(id)); err != nil {
					return err
				}
			}
			for _, id := range change.Inserted {
				if err := b.Put([]byte(id), []byte{}); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// Add inserts assets, replacing any with the same identifier.
func (s *PhotoStore) Add(ctx context.Context, assets ...domain.Asset) error {
	return s.mutate(ctx, "add", func(next *library) error {
		for _, a := range assets {
			if a.ID == "" {
				return fmt.Errorf("asset %q has no identifier", a.Filename)
			}
			next.assets[a.ID] = a
		}
		return nil
	})
}

// Remove deletes assets and drops them from every album.
func (s *PhotoStore) Remove(ctx context.Context, ids ...domain.AssetID) error {
	return s.mutate(ctx, "remove", func(next *library) error {
		for _, id := range ids {
			if _, ok := next.assets[id]; !ok {
				return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
			}
			delete(next.assets, id)
			for _, members := range next.albums {
				delete(members, id)
			}
		}
		return nil
	})
}

// SetFavorite sets the favorite flag of an asset.
func (s *PhotoStore) SetFavorite(ctx context.Context, id domain.AssetID, favorite bool) error {
	return s.mutate(ctx, "favorite", func(next *library) error {
		a, ok := next.assets[id]
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
		}
		a.IsFavorite = favorite
		next.assets[id] = a
		return nil
	})
}

// SetCreatedAt changes an asset's capture date, which may move it within
// the ordering.
func (s *PhotoStore) SetCreatedAt(ctx context.Context, id domain.AssetID, t time.Time) error {
	return s.mutate(ctx, "redate", func(next *library) error {
		a, ok := next.assets[id]
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
		}
		a.CreatedAt = t
		next.assets[id] = a
		return nil
	})
}

// UpdateMembership adds an asset to, or removes it from, review albums in a
// single change.
func (s *PhotoStore) UpdateMembership(ctx context.Context, id domain.AssetID, changes []domain.MembershipChange) error {
	return s.mutate(ctx, "update membership", func(next *library) error {
		if _, ok := next.assets[id]; !ok {
			return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
		}
		for _, c := range changes {
			members, ok := next.albums[c.State]
			if !ok {
				return fmt.Errorf("no album for review state %s", c.State)
			}
			if c.Member {
				members[id] = struct{}{}
			} else {
				delete(members, id)
			}
		}
		return nil
	})
}
