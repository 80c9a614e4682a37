package store

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alexwlchan/blink/internal/domain"
)

// NewAssetID returns a fresh local identifier in the library's format,
// e.g. "9F2B51C4-0E6A-4A43-8F55-0D1B6C8C9E37/L0/001".
func NewAssetID() domain.AssetID {
	return domain.AssetID(strings.ToUpper(uuid.NewString()) + "/L0/001")
}

var dimensions = [][2]int{
	{4032, 3024}, {3024, 4032}, {4284, 5712}, {1920, 1080}, {3024, 3024},
}

// Generate returns n synthetic photos taken before start, newest first.
func Generate(rng *rand.Rand, n int, start time.Time) []domain.Asset {
	assets := make([]domain.Asset, n)
	t := start
	for i := range assets {
		t = t.Add(-time.Duration(rng.Intn(6*60*60)+1) * time.Second)
		dim := dimensions[rng.Intn(len(dimensions))]
		ext := "HEIC"
		if rng.Intn(4) == 0 {
			ext = "JPG"
		}
		assets[i] = domain.Asset{
			ID:         NewAssetID(),
			Filename:   fmt.Sprintf("IMG_%04d.%s", rng.Intn(10000), ext),
			CreatedAt:  t.Truncate(time.Second).UTC(),
			IsFavorite: rng.Intn(20) == 0,
			Width:      dim[0],
			Height:     dim[1],
		}
	}
	return assets
}

// Seed adds n synthetic photos in a single change.
func (s *PhotoStore) Seed(ctx context.Context, rng *rand.Rand, n int) ([]domain.Asset, error) {
	assets := Generate(rng, n, time.Now())
	if err := s.Add(ctx, assets...); err != nil {
		return nil, err
	}
	return assets, nil
}
