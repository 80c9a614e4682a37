package library

import (
	"context"
	"fmt"

	"github.com/alexwlchan/blink/internal/domain"
	"github.com/alexwlchan/blink/internal/review"
	"github.com/alexwlchan/blink/internal/snapshot"
)

// SetReviewState asks the source to move id to requested. Requesting the
// photo's current state clears it. Any other albums claiming the photo are
// cleaned up in the same change. It returns the state the photo ends in.
//
// Optimistic edits are queued before the source is asked, so the source's
// own notification and any later external change are applied after them.
func (s *Service) SetReviewState(ctx context.Context, id domain.AssetID, requested domain.ReviewState) (domain.ReviewState, error) {
	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()

	snap := s.Snapshot()
	if snap.Loaded() && !snap.Contains(id) {
		return domain.StateNone, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}

	current := review.Resolve(id, snap)
	target := requested
	if requested == current {
		target = domain.StateNone
	}

	changes := review.Transition(current, requested)
	for _, c := range review.Cleanup(id, snap, target) {
		if c.State != current {
			changes = append(changes, c)
		}
	}
	if len(changes) == 0 {
		return target, nil
	}

	if s.opts.Optimistic {
		deltas := membershipDeltas(id, changes)
		s.enqueue(job{local: func(cur *snapshot.Snapshot) *snapshot.Snapshot {
			return s.reconciler.ApplyMembership(cur, deltas)
		}})
	}

	if err := s.source.UpdateMembership(ctx, id, changes); err != nil {
		s.logger.Error("failed to update review state", "error", err, "assetID", id, "state", target.String())
		s.undoLocal()
		return current, fmt.Errorf("set review state: %w", err)
	}
	s.logger.Info("reviewed photo", "assetID", id, "from", current.String(), "to", target.String())
	return target, nil
}

// ToggleFavorite flips the favorite flag of id and returns the new value.
func (s *Service) ToggleFavorite(ctx context.Context, id domain.AssetID) (bool, error) {
	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()

	snap := s.Snapshot()
	if snap.Loaded() && !snap.Contains(id) {
		return false, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}

	favorite := !snap.IsFavorite(id)
	if s.opts.Optimistic {
		s.enqueue(job{local: func(cur *snapshot.Snapshot) *snapshot.Snapshot {
			return s.reconciler.ApplyFavorite(cur, id, favorite)
		}})
	}

	if err := s.source.SetFavorite(ctx, id, favorite); err != nil {
		s.logger.Error("failed to set favorite", "error", err, "assetID", id)
		s.undoLocal()
		return !favorite, fmt.Errorf("toggle favorite: %w", err)
	}
	return favorite, nil
}

// undoLocal discards an optimistic edit the source refused
func (s *Service) undoLocal() {
	if s.opts.Optimistic {
		s.Reload()
	}
}

func membershipDeltas(id domain.AssetID, changes []domain.MembershipChange) map[domain.ReviewState]*domain.MembershipChanges {
	deltas := make(map[domain.ReviewState]*domain.MembershipChanges, len(changes))
	for _, c := range changes {
		d := &domain.MembershipChanges{Incremental: true}
		if c.Member {
			d.Inserted = []domain.AssetID{id}
		} else {
			d.Removed = []domain.AssetID{id}
		}
		deltas[c.State] = d
	}
	return deltas
}
