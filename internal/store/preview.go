package store

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"time"

	"github.com/alexwlchan/blink/internal/domain"
)

// LoadPreview renders a colour-cell preview of an asset. Rendering is
// deterministic per asset and size, and waits PreviewLatency first.
func (s *PhotoStore) LoadPreview(ctx context.Context, id domain.AssetID, size domain.PreviewSize) (*domain.Preview, error) {
	a, err := s.Asset(id)
	if err != nil {
		return nil, err
	}

	if s.opts.PreviewLatency > 0 {
		timer := time.NewTimer(s.opts.PreviewLatency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	cols, rows := size.Grid()
	return &domain.Preview{
		Asset: a,
		Size:  size,
		Cells: render(a.ID, cols, rows),
	}, nil
}

// render paints a diagonal gradient between two colours picked from the id
func render(id domain.AssetID, cols, rows int) [][]string {
	h := fnv.New64a()
	h.Write([]byte(id))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	from := [3]int{rng.Intn(256), rng.Intn(256), rng.Intn(256)}
	to := [3]int{rng.Intn(256), rng.Intn(256), rng.Intn(256)}

	cells := make([][]string, rows)
	span := cols + rows - 2
	if span < 1 {
		span = 1
	}
	for y := range cells {
		cells[y] = make([]string, cols)
		for x := range cells[y] {
			t := float64(x+y) / float64(span)
			var c [3]int
			for i := range c {
				c[i] = from[i] + int(t*float64(to[i]-from[i]))
			}
			cells[y][x] = fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
		}
	}
	return cells
}
