package store

import (
	"context"
	"fmt"

	"github.com/alexwlchan/blink/internal/domain"
)

// FetchAll returns the ordered assets and every review album.
func (s *PhotoStore) FetchAll(ctx context.Context) (domain.Library, error) {
	if err := ctx.Err(); err != nil {
		return domain.Library{}, err
	}
	lib, err := s.current()
	if err != nil {
		return domain.Library{}, err
	}

	out := domain.Library{
		Assets: append([]domain.Asset(nil), lib.order...),
		Albums: make(map[domain.ReviewState][]domain.AssetID, len(domain.ReviewStates)),
	}
	for _, state := range domain.ReviewStates {
		out.Albums[state] = lib.albumIDs(state)
	}
	return out, nil
}

// FetchAssets returns the ordered assets.
func (s *PhotoStore) FetchAssets(ctx context.Context) ([]domain.Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	lib, err := s.current()
	if err != nil {
		return nil, err
	}
	return append([]domain.Asset(nil), lib.order...), nil
}

// FetchAlbum returns the members of one review album.
func (s *PhotoStore) FetchAlbum(ctx context.Context, state domain.ReviewState) ([]domain.AssetID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	lib, err := s.current()
	if err != nil {
		return nil, err
	}
	if _, ok := lib.albums[state]; !ok {
		return nil, fmt.Errorf("no album for review state %s", state)
	}
	return lib.albumIDs(state), nil
}

// Asset looks up one asset by identifier.
func (s *PhotoStore) Asset(id domain.AssetID) (domain.Asset, error) {
	lib, err := s.current()
	if err != nil {
		return domain.Asset{}, err
	}
	a, ok := lib.assets[id]
	if !ok {
		return domain.Asset{}, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return a, nil
}

// Subscribe registers fn for change notifications. Notifications are
// delivered synchronously, in commit order, after each mutation commits.
// fn must not call back into the store's mutation methods.
func (s *PhotoStore) Subscribe(fn func(domain.ChangeNotification)) (cancel func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

// dispatch must be called with writeMu held
func (s *PhotoStore) dispatch(n domain.ChangeNotification) {
	s.subMu.Lock()
	subs := make([]func(domain.ChangeNotification), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()

	for _, fn := range subs {
		fn(n)
	}
}
