package reconcile_test

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexwlchan/blink/internal/domain"
	"github.com/alexwlchan/blink/internal/log"
	"github.com/alexwlchan/blink/internal/reconcile"
	"github.com/alexwlchan/blink/internal/snapshot"
	"github.com/alexwlchan/blink/internal/store"
)

// view is a comparable rendering of a snapshot
type view struct {
	Order     []domain.AssetID
	Favorites []domain.AssetID
	Albums    map[domain.ReviewState][]domain.AssetID
}

func sorted(s snapshot.Set) []domain.AssetID {
	out := make([]domain.AssetID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func viewOf(s *snapshot.Snapshot) view {
	v := view{
		Order:     append([]domain.AssetID{}, s.Ordered()...),
		Favorites: sorted(s.Favorites()),
		Albums:    map[domain.ReviewState][]domain.AssetID{},
	}
	for _, state := range domain.ReviewStates {
		v.Albums[state] = sorted(s.Album(state))
	}
	return v
}

// fakeSource serves a fixed library and counts fetches
type fakeSource struct {
	lib          domain.Library
	err          error
	assetFetches int
	albumFetches map[domain.ReviewState]int
}

func newFakeSource(lib domain.Library) *fakeSource {
	return &fakeSource{lib: lib, albumFetches: map[domain.ReviewState]int{}}
}

func (f *fakeSource) FetchAll(ctx context.Context) (domain.Library, error) {
	return f.lib, f.err
}

func (f *fakeSource) FetchAssets(ctx context.Context) ([]domain.Asset, error) {
	f.assetFetches++
	return f.lib.Assets, f.err
}

func (f *fakeSource) FetchAlbum(ctx context.Context, state domain.ReviewState) ([]domain.AssetID, error) {
	f.albumFetches[state]++
	return f.lib.Albums[state], f.err
}

func (f *fakeSource) Subscribe(fn func(domain.ChangeNotification)) func() { return func() {} }

func (f *fakeSource) UpdateMembership(context.Context, domain.AssetID, []domain.MembershipChange) error {
	return nil
}

func (f *fakeSource) SetFavorite(context.Context, domain.AssetID, bool) error { return nil }

func assets(ids ...string) []domain.Asset {
	out := make([]domain.Asset, len(ids))
	for i, id := range ids {
		out[i] = domain.Asset{ID: domain.AssetID(id)}
	}
	return out
}

func allIncremental() map[domain.ReviewState]*domain.MembershipChanges {
	return map[domain.ReviewState]*domain.MembershipChanges{
		domain.StateApproved:    {Incremental: true},
		domain.StateNeedsAction: {Incremental: true},
		domain.StateRejected:    {Incremental: true},
	}
}

func TestFullReload_PrunesStaleAlbumMembers(t *testing.T) {
	src := newFakeSource(domain.Library{
		Assets: assets("a", "b"),
		Albums: map[domain.ReviewState][]domain.AssetID{
			domain.StateRejected: {"a", "gone"},
		},
	})
	r := reconcile.New(src, log.NullLogger())

	s, err := r.FullReload(context.Background())
	require.NoError(t, err)
	assert.True(t, s.Loaded())
	assert.Equal(t, []domain.AssetID{"a"}, sorted(s.Album(domain.StateRejected)))
	assert.Empty(t, s.Album(domain.StateApproved))
}

func TestFullReload_Idempotent(t *testing.T) {
	list := assets("a", "b", "c")
	list[1].IsFavorite = true
	src := newFakeSource(domain.Library{
		Assets: list,
		Albums: map[domain.ReviewState][]domain.AssetID{
			domain.StateApproved: {"a", "c"},
			domain.StateRejected: {"c"},
		},
	})
	r := reconcile.New(src, log.NullLogger())

	first, err := r.FullReload(context.Background())
	require.NoError(t, err)
	second, err := r.FullReload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, viewOf(first), viewOf(second))
}

func TestFullReload_Error(t *testing.T) {
	src := newFakeSource(domain.Library{})
	src.err = domain.ErrUnavailable
	r := reconcile.New(src, log.NullLogger())

	_, err := r.FullReload(context.Background())
	require.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestApplyIncremental_UnloadedDoesFullReload(t *testing.T) {
	src := newFakeSource(domain.Library{Assets: assets("a")})
	r := reconcile.New(src, log.NullLogger())

	s, err := r.ApplyIncremental(context.Background(), snapshot.Empty(), domain.ChangeNotification{})
	require.NoError(t, err)
	assert.True(t, s.Loaded())
	assert.Equal(t, 1, s.Len())
}

func TestApplyIncremental_MissingDetailsRefetch(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource(domain.Library{
		Assets: assets("a", "b"),
		Albums: map[domain.ReviewState][]domain.AssetID{domain.StateApproved: {"a"}},
	})
	r := reconcile.New(src, log.NullLogger())
	old, err := r.FullReload(ctx)
	require.NoError(t, err)

	src.lib = domain.Library{
		Assets: assets("n", "a", "b"),
		Albums: map[domain.ReviewState][]domain.AssetID{domain.StateApproved: {"a", "n"}},
	}

	// No asset details, and only the rejected album is described.
	next, err := r.ApplyIncremental(ctx, old, domain.ChangeNotification{
		Albums: map[domain.ReviewState]*domain.MembershipChanges{
			domain.StateRejected: {Incremental: true},
			domain.StateApproved: {Incremental: false},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, src.assetFetches)
	assert.Equal(t, 1, src.albumFetches[domain.StateApproved])
	assert.Equal(t, 1, src.albumFetches[domain.StateNeedsAction])
	assert.Zero(t, src.albumFetches[domain.StateRejected])
	assert.Equal(t, []domain.AssetID{"n", "a", "b"}, next.Ordered())
	assert.Equal(t, []domain.AssetID{"a", "n"}, sorted(next.Album(domain.StateApproved)))

	// old is untouched
	assert.Equal(t, []domain.AssetID{"a", "b"}, old.Ordered())
	assert.Equal(t, []domain.AssetID{"a"}, sorted(old.Album(domain.StateApproved)))
}

func TestApplyIncremental_RefetchErrorReturned(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource(domain.Library{Assets: assets("a")})
	r := reconcile.New(src, log.NullLogger())
	old, err := r.FullReload(ctx)
	require.NoError(t, err)

	boom := errors.New("library went away")
	src.err = boom
	_, err = r.ApplyIncremental(ctx, old, domain.ChangeNotification{})
	require.ErrorIs(t, err, boom)
}

func TestApplyIncremental_Favorites(t *testing.T) {
	ctx := context.Background()
	list := assets("a", "b", "c")
	list[0].IsFavorite = true
	list[2].IsFavorite = true
	src := newFakeSource(domain.Library{Assets: list})
	r := reconcile.New(src, log.NullLogger())
	old, err := r.FullReload(ctx)
	require.NoError(t, err)

	after := assets("n", "b", "c")
	after[0].IsFavorite = true // inserted favorite
	after[1].IsFavorite = true // b became a favorite
	next, err := r.ApplyIncremental(ctx, old, domain.ChangeNotification{
		Assets: &domain.AssetChanges{
			After:       after,
			Incremental: true,
			Removed:     []int{0},
			RemovedIDs:  []domain.AssetID{"a"},
			Inserted:    []int{0},
			Changed:     []domain.Asset{after[1]},
		},
		Albums: allIncremental(),
	})
	require.NoError(t, err)

	// c keeps its flag from old even though After says otherwise
	assert.Equal(t, []domain.AssetID{"b", "c", "n"}, sorted(next.Favorites()))
	assert.Zero(t, src.assetFetches)
}

func TestApplyIncremental_EmptyAlbumDeltaSharesSet(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource(domain.Library{
		Assets: assets("a"),
		Albums: map[domain.ReviewState][]domain.AssetID{domain.StateApproved: {"a"}},
	})
	r := reconcile.New(src, log.NullLogger())
	old, err := r.FullReload(ctx)
	require.NoError(t, err)

	next, err := r.ApplyIncremental(ctx, old, domain.ChangeNotification{
		Assets: &domain.AssetChanges{After: assets("a"), Incremental: true},
		Albums: allIncremental(),
	})
	require.NoError(t, err)
	assert.Equal(t, viewOf(old), viewOf(next))
	for _, n := range src.albumFetches {
		assert.Zero(t, n)
	}
}

func TestApplyMembership(t *testing.T) {
	src := newFakeSource(domain.Library{
		Assets: assets("a", "b"),
		Albums: map[domain.ReviewState][]domain.AssetID{domain.StateApproved: {"a"}},
	})
	r := reconcile.New(src, log.NullLogger())
	old, err := r.FullReload(context.Background())
	require.NoError(t, err)

	next := r.ApplyMembership(old, map[domain.ReviewState]*domain.MembershipChanges{
		domain.StateApproved: {Incremental: true, Removed: []domain.AssetID{"a"}},
		domain.StateRejected: {Incremental: true, Inserted: []domain.AssetID{"a"}},
	})

	assert.False(t, next.InAlbum(domain.StateApproved, "a"))
	assert.True(t, next.InAlbum(domain.StateRejected, "a"))
	assert.True(t, old.InAlbum(domain.StateApproved, "a"))
	assert.Equal(t, old.Ordered(), next.Ordered())
}

func TestApplyFavorite(t *testing.T) {
	src := newFakeSource(domain.Library{Assets: assets("a")})
	r := reconcile.New(src, log.NullLogger())
	old, err := r.FullReload(context.Background())
	require.NoError(t, err)

	next := r.ApplyFavorite(old, "a", true)
	assert.True(t, next.IsFavorite("a"))
	assert.False(t, old.IsFavorite("a"))
	assert.Same(t, next, r.ApplyFavorite(next, "a", true))
	assert.Same(t, next, r.ApplyFavorite(next, "missing", true))
}

// Applying notifications one by one must always agree with reading the
// library from scratch, whether the store sends details or not.
func TestIncrementalMatchesFullReload(t *testing.T) {
	for _, max := range []int{-1, 4} {
		ctx := context.Background()
		lib, err := store.Open("", store.Options{MaxIncrementalChanges: max, Logger: log.NullLogger()})
		require.NoError(t, err)
		defer lib.Close()

		rng := rand.New(rand.NewSource(int64(42 + max)))
		_, err = lib.Seed(ctx, rng, 20)
		require.NoError(t, err)

		r := reconcile.New(lib, log.NullLogger())
		current, err := r.FullReload(ctx)
		require.NoError(t, err)

		var applyErr error
		lib.Subscribe(func(n domain.ChangeNotification) {
			next, err := r.ApplyIncremental(ctx, current, n)
			if err != nil {
				applyErr = err
				return
			}
			current = next
		})

		for step := 0; step < 300; step++ {
			mutateRandomly(t, ctx, lib, rng)
			require.NoError(t, applyErr)

			want, err := r.FullReload(ctx)
			require.NoError(t, err)
			require.Equal(t, viewOf(want), viewOf(current), "step %d", step)
			for i, id := range current.Ordered() {
				got, ok := current.IndexOf(id)
				require.True(t, ok)
				require.Equal(t, i, got)
			}
		}
	}
}

func mutateRandomly(t *testing.T, ctx context.Context, lib *store.PhotoStore, rng *rand.Rand) {
	t.Helper()

	all, err := lib.FetchAssets(ctx)
	require.NoError(t, err)
	if len(all) == 0 {
		require.NoError(t, lib.Add(ctx, store.Generate(rng, 3, time.Now())...))
		return
	}
	pick := func() domain.Asset { return all[rng.Intn(len(all))] }

	switch rng.Intn(6) {
	case 0:
		require.NoError(t, lib.Add(ctx, store.Generate(rng, 1+rng.Intn(6), all[rng.Intn(len(all))].CreatedAt.Add(time.Hour))...))
	case 1:
		ids := []domain.AssetID{pick().ID}
		if len(all) > 3 && rng.Intn(2) == 0 {
			if extra := pick().ID; extra != ids[0] {
				ids = append(ids, extra)
			}
		}
		require.NoError(t, lib.Remove(ctx, ids...))
	case 2:
		a := pick()
		require.NoError(t, lib.SetFavorite(ctx, a.ID, !a.IsFavorite))
	case 3:
		a := pick()
		require.NoError(t, lib.SetCreatedAt(ctx, a.ID, a.CreatedAt.Add(time.Duration(rng.Intn(48)-24)*time.Hour)))
	default:
		state := domain.ReviewStates[rng.Intn(len(domain.ReviewStates))]
		require.NoError(t, lib.UpdateMembership(ctx, pick().ID, []domain.MembershipChange{
			{State: state, Member: rng.Intn(3) > 0},
		}))
	}
}
