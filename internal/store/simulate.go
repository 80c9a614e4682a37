package store

import (
	"context"
	"math/rand"
	"time"
)

// Simulate mutates the library every interval until ctx is done, the way a
// phone syncing new photos would: mostly new arrivals, occasionally a
// deletion, a favorite toggled elsewhere or an edited capture date.
func (s *PhotoStore) Simulate(ctx context.Context, interval time.Duration, rng *rand.Rand) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if err := s.simulateStep(ctx, rng); err != nil && ctx.Err() == nil {
			s.logger.Warn("simulated change failed", "error", err)
		}
	}
}

func (s *PhotoStore) simulateStep(ctx context.Context, rng *rand.Rand) error {
	lib, err := s.current()
	if err != nil {
		return err
	}

	switch roll := rng.Intn(10); {
	case roll < 7 || len(lib.order) == 0:
		return s.Add(ctx, Generate(rng, 1+rng.Intn(3), time.Now())...)
	case roll < 8:
		victim := lib.order[rng.Intn(len(lib.order))]
		return s.Remove(ctx, victim.ID)
	case roll < 9:
		a := lib.order[rng.Intn(len(lib.order))]
		return s.SetFavorite(ctx, a.ID, !a.IsFavorite)
	default:
		// A corrected capture date moves the photo next to another one.
		a := lib.order[rng.Intn(len(lib.order))]
		b := lib.order[rng.Intn(len(lib.order))]
		return s.SetCreatedAt(ctx, a.ID, b.CreatedAt.Add(-time.Second))
	}
}
