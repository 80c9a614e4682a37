// Package preview serves rendered previews through bounded LRU caches.
package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sourcegraph/conc/pool"

	"github.com/alexwlchan/blink/internal/domain"
	"github.com/alexwlchan/blink/internal/lru"
	"github.com/alexwlchan/blink/internal/snapshot"
)

// DefaultConcurrency bounds concurrent renders during prefetch
const DefaultConcurrency = 4

// Options configures the preview caches.
type Options struct {
	Thumbnails  int // thumbnail cache capacity
	FullSize    int // full-size cache capacity
	Concurrency int // concurrent renders during prefetch
}

// Service loads previews from a PreviewSource, keeping the most recently
// used ones in memory. Thumbnails and full-size previews have separate caches
// so a burst of thumbnails never evicts the photo being reviewed.
type Service struct {
	source      domain.PreviewSource
	thumbnails  *lru.Cache[domain.AssetID, *domain.Preview]
	fullSize    *lru.Cache[domain.AssetID, *domain.Preview]
	concurrency int
	logger      *slog.Logger
}

// NewService creates the caches.
func NewService(source domain.PreviewSource, opts Options, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	thumbnails, err := lru.New[domain.AssetID, *domain.Preview](opts.Thumbnails)
	if err != nil {
		return nil, fmt.Errorf("thumbnail cache: %w", err)
	}
	fullSize, err := lru.New[domain.AssetID, *domain.Preview](opts.FullSize)
	if err != nil {
		return nil, fmt.Errorf("full-size cache: %w", err)
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	return &Service{
		source:      source,
		thumbnails:  thumbnails,
		fullSize:    fullSize,
		concurrency: opts.Concurrency,
		logger:      logger,
	}, nil
}

func (s *Service) cache(size domain.PreviewSize) *lru.Cache[domain.AssetID, *domain.Preview] {
	if size == domain.PreviewFull {
		return s.fullSize
	}
	return s.thumbnails
}

// Load returns the preview of id, rendering it on a cache miss. Render
// failures are returned to the caller and not cached.
func (s *Service) Load(ctx context.Context, id domain.AssetID, size domain.PreviewSize) (*domain.Preview, error) {
	return s.cache(size).GetOrLoad(id, func() (*domain.Preview, error) {
		return s.source.LoadPreview(ctx, id, size)
	})
}

// Peek returns a cached preview without rendering or touching recency.
func (s *Service) Peek(id domain.AssetID, size domain.PreviewSize) (*domain.Preview, bool) {
	return s.cache(size).Peek(id)
}

// Forget drops the previews of photos that left the library.
func (s *Service) Forget(ids ...domain.AssetID) {
	for _, id := range ids {
		s.thumbnails.Remove(id)
		s.fullSize.Remove(id)
	}
}

// Purge empties both caches.
func (s *Service) Purge() {
	s.thumbnails.Purge()
	s.fullSize.Purge()
}

// String formats the occupancy for the help screen
func (st Stats) String() string {
	return fmt.Sprintf("%d/%d thumbnails, %d/%d full size", st.Thumbnails, st.ThumbnailCap, st.FullSize, st.FullSizeCap)
}

// Prefetch renders every uncached id concurrently. Renders that complete
// after the focus has moved on still populate the cache. Failures are
// logged and joined into the returned error.
func (s *Service) Prefetch(ctx context.Context, ids []domain.AssetID, size domain.PreviewSize) error {
	c := s.cache(size)
	p := pool.New().WithMaxGoroutines(s.concurrency).WithContext(ctx)
	for _, id := range ids {
		if c.Contains(id) {
			continue
		}
		id := id
		p.Go(func(ctx context.Context) error {
			if _, err := s.Load(ctx, id, size); err != nil {
				if !errors.Is(err, context.Canceled) {
					s.logger.Debug("failed to prefetch preview", "error", err, "assetID", id)
				}
				return err
			}
			return nil
		})
	}
	return p.Wait()
}

// Stats reports cache occupancy.
type Stats struct {
	Thumbnails, ThumbnailCap int
	FullSize, FullSizeCap    int
}

// Stats returns the current occupancy of both caches.
func (s *Service) Stats() Stats {
	return Stats{
		Thumbnails:   s.thumbnails.Len(),
		ThumbnailCap: s.thumbnails.Cap(),
		FullSize:     s.fullSize.Len(),
		FullSizeCap:  s.fullSize.Cap(),
	}
}

// Around returns the identifiers within radius of index, nearest first,
// starting with index itself.
func Around(snap *snapshot.Snapshot, index, radius int) []domain.AssetID {
	if snap.Len() == 0 {
		return nil
	}
	ids := make([]domain.AssetID, 0, 2*radius+1)
	if id := snap.At(index); id != "" {
		ids = append(ids, id)
	}
	for d := 1; d <= radius; d++ {
		if id := snap.At(index + d); id != "" {
			ids = append(ids, id)
		}
		if id := snap.At(index - d); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
