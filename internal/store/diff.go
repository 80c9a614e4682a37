package store

import (
	"github.com/alexwlchan/blink/internal/domain"
)

// delta is the difference between two versions of the library.
type delta struct {
	removed    []int // indices into the previous ordering
	removedIDs []domain.AssetID
	inserted   []int // indices into the next ordering
	changed    []domain.Asset
	hasMoves   bool
	albums     map[domain.ReviewState]*domain.MembershipChanges
}

func diff(prev, next *library) *delta {
	d := &delta{albums: make(map[domain.ReviewState]*domain.MembershipChanges, len(domain.ReviewStates))}

	for i, a := range prev.order {
		if _, ok := next.assets[a.ID]; !ok {
			d.removed = append(d.removed, i)
			d.removedIDs = append(d.removedIDs, a.ID)
		}
	}

	var before, after []domain.AssetID
	for _, a := range prev.order {
		if _, ok := next.assets[a.ID]; ok {
			before = append(before, a.ID)
		}
	}
	for i, a := range next.order {
		old, ok := prev.assets[a.ID]
		if !ok {
			d.inserted = append(d.inserted, i)
			continue
		}
		after = append(after, a.ID)
		if !sameAsset(old, a) {
			d.changed = append(d.changed, a)
		}
	}
	for i := range before {
		if before[i] != after[i] {
			d.hasMoves = true
			break
		}
	}

	for _, state := range domain.ReviewStates {
		change := &domain.MembershipChanges{Incremental: true}
		for id := range next.albums[state] {
			if _, ok := prev.albums[state][id]; !ok {
				change.Inserted = append(change.Inserted, id)
			}
		}
		for id := range prev.albums[state] {
			if _, ok := next.albums[state][id]; !ok {
				change.Removed = append(change.Removed, id)
			}
		}
		sortIDs(change.Inserted)
		sortIDs(change.Removed)
		d.albums[state] = change
	}
	return d
}

func (d *delta) size() int {
	n := len(d.removed) + len(d.inserted) + len(d.changed)
	for _, c := range d.albums {
		n += len(c.Inserted) + len(c.Removed)
	}
	return n
}

func (d *delta) empty() bool {
	return d.size() == 0 && !d.hasMoves
}

// written returns the identifiers whose records must be rewritten
func (d *delta) written(next *library) []domain.AssetID {
	ids := make([]domain.AssetID, 0, len(d.inserted)+len(d.changed))
	for _, i := range d.inserted {
		ids = append(ids, next.order[i].ID)
	}
	for _, a := range d.changed {
		ids = append(ids, a.ID)
	}
	return ids
}

// notification describes the change. Changes larger than max are reported
// without per-item details, and without album information.
func (d *delta) notification(next *library, max int) domain.ChangeNotification {
	after := append([]domain.Asset(nil), next.order...)
	if max > 0 && d.size() > max {
		return domain.ChangeNotification{
			Assets: &domain.AssetChanges{After: after},
		}
	}
	return domain.ChangeNotification{
		Assets: &domain.AssetChanges{
			After:       after,
			Incremental: true,
			Removed:     d.removed,
			Inserted:    d.inserted,
			Changed:     d.changed,
			RemovedIDs:  d.removedIDs,
			HasMoves:    d.hasMoves,
		},
		Albums: d.albums,
	}
}

func sameAsset(a, b domain.Asset) bool {
	return a.ID == b.ID && a.Filename == b.Filename && a.CreatedAt.Equal(b.CreatedAt) &&
		a.IsFavorite == b.IsFavorite && a.Width == b.Width && a.Height == b.Height
}
