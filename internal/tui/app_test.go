package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexwlchan/blink/internal/domain"
	"github.com/alexwlchan/blink/internal/library"
	"github.com/alexwlchan/blink/internal/log"
	"github.com/alexwlchan/blink/internal/preview"
	"github.com/alexwlchan/blink/internal/store"
)

var base = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestModel(t *testing.T) (Model, *store.PhotoStore) {
	t.Helper()
	ctx := context.Background()

	lib, err := store.Open("", store.Options{Logger: log.NullLogger()})
	require.NoError(t, err)
	t.Cleanup(func() { lib.Close() })
	require.NoError(t, lib.Add(ctx,
		domain.Asset{ID: "a", Filename: "IMG_0001.HEIC", CreatedAt: base},
		domain.Asset{ID: "b", Filename: "holiday.png", CreatedAt: base.Add(-time.Hour)},
		domain.Asset{ID: "c", Filename: "IMG_0003.JPG", CreatedAt: base.Add(-2 * time.Hour)},
	))

	svc := library.NewService(lib, library.Options{Optimistic: true}, log.NullLogger())
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.Run(runCtx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	previews, err := preview.NewService(lib, preview.Options{Thumbnails: 10, FullSize: 2}, log.NullLogger())
	require.NoError(t, err)

	m := NewModel(svc, previews, Options{StripWidth: 1, Prefetch: 1, AdvanceAfterReview: true})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model), lib
}

// drain applies library events until cond holds
func drain(t *testing.T, m Model, cond func(Model) bool) Model {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for !cond(m) {
		msgCh := make(chan tea.Msg, 1)
		go func() { msgCh <- ListenForEventsCmd(m.LibrarySvc)() }()
		select {
		case msg := <-msgCh:
			next, _ := m.Update(msg)
			m = next.(Model)
		case <-deadline:
			t.Fatal("condition not reached")
		}
	}
	return m
}

func loaded(m Model) bool { return m.snap.Loaded() }

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_LoadsLibrary(t *testing.T) {
	m, _ := newTestModel(t)
	m = drain(t, m, loaded)
	assert.True(t, m.hasFocus)
	assert.Equal(t, domain.AssetID("a"), m.focus.ID)
	assert.Equal(t, "3 photos, 0 approved, 0 rejected, 0 need action", m.stats.String())
	assert.Contains(t, m.View(), "IMG_0001.HEIC")
}

func TestModel_Navigation(t *testing.T) {
	m, _ := newTestModel(t)
	m = drain(t, m, loaded)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = next.(Model)
	assert.Equal(t, domain.AssetID("b"), m.focus.ID)

	next, _ = m.Update(keyRunes("G"))
	m = next.(Model)
	assert.Equal(t, 2, m.focus.Index)

	next, _ = m.Update(keyRunes("g"))
	m = next.(Model)
	assert.Equal(t, 0, m.focus.Index)
}

func TestModel_ReviewAdvances(t *testing.T) {
	m, lib := newTestModel(t)
	m = drain(t, m, loaded)

	_, cmd := m.Update(keyRunes("2"))
	require.NotNil(t, cmd)
	msg := cmd()
	require.Equal(t, ReviewedMsg{Asset: mustAsset(t, lib, "a"), State: domain.StateRejected}, msg)

	next, _ := m.Update(msg)
	m = next.(Model)
	assert.Contains(t, m.StatusMsg, "Rejected: IMG_0001.HEIC")

	m = drain(t, m, func(m Model) bool {
		return m.reviewState("a") == domain.StateRejected && m.focus.ID == "b"
	})
	assert.Equal(t, 1, m.stats.Rejected)
}

func TestModel_ReviewAdvancesFromReviewedPhoto(t *testing.T) {
	m, lib := newTestModel(t)
	m = drain(t, m, loaded)

	_, cmd := m.Update(keyRunes("1"))
	require.NotNil(t, cmd)
	msg := cmd()

	// the user moved on while the review was in flight
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = next.(Model)
	require.Equal(t, domain.AssetID("b"), m.focus.ID)

	next, _ = m.Update(msg)
	m = next.(Model)
	assert.Equal(t, domain.AssetID("b"), m.focus.ID)

	// clearing a review advances too
	next, _ = m.Update(ReviewedMsg{Asset: mustAsset(t, lib, "b"), State: domain.StateNone})
	m = next.(Model)
	assert.Equal(t, domain.AssetID("c"), m.focus.ID)
	assert.Contains(t, m.StatusMsg, "Cleared review of holiday.png")
}

func TestModel_DeletedPhotoPreviewsAreDropped(t *testing.T) {
	m, lib := newTestModel(t)
	m = drain(t, m, loaded)

	_, err := m.PreviewSvc.Load(context.Background(), "c", domain.PreviewThumbnail)
	require.NoError(t, err)

	require.NoError(t, lib.Remove(context.Background(), "c"))
	m = drain(t, m, func(m Model) bool { return m.snap.Len() == 2 })

	_, ok := m.PreviewSvc.Peek("c", domain.PreviewThumbnail)
	assert.False(t, ok)
}

func TestModel_Favorite(t *testing.T) {
	m, _ := newTestModel(t)
	m = drain(t, m, loaded)

	_, cmd := m.Update(keyRunes("f"))
	require.NotNil(t, cmd)
	msg := cmd()
	fav, ok := msg.(FavoriteToggledMsg)
	require.True(t, ok)
	assert.True(t, fav.Favorite)

	m = drain(t, m, func(m Model) bool { return m.snap.IsFavorite("a") })
	assert.Equal(t, 1, m.stats.Favorites)
}

func TestModel_JumpToPhoto(t *testing.T) {
	m, _ := newTestModel(t)
	m = drain(t, m, loaded)

	next, _ := m.Update(keyRunes("/"))
	m = next.(Model)
	require.Equal(t, StateSearching, m.State)

	next, _ = m.Update(keyRunes("holi"))
	m = next.(Model)
	require.Len(t, m.results, 1)
	assert.Contains(t, m.View(), "iday.png")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	assert.Equal(t, StateBrowsing, m.State)
	assert.Equal(t, domain.AssetID("b"), m.focus.ID)
}

func TestModel_FollowsFocusAcrossInsert(t *testing.T) {
	m, lib := newTestModel(t)
	m = drain(t, m, loaded)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = next.(Model)
	require.Equal(t, domain.AssetID("b"), m.focus.ID)

	require.NoError(t, lib.Add(context.Background(),
		domain.Asset{ID: "new", Filename: "IMG_0004.HEIC", CreatedAt: base.Add(time.Hour)}))

	m = drain(t, m, func(m Model) bool { return m.snap.Len() == 4 })
	assert.Equal(t, domain.AssetID("b"), m.focus.ID)
	assert.Equal(t, 2, m.focus.Index)
}

func TestModel_HelpAndQuit(t *testing.T) {
	m, _ := newTestModel(t)

	next, _ := m.Update(keyRunes("?"))
	m = next.(Model)
	assert.Equal(t, StateHelp, m.State)
	assert.Contains(t, m.View(), "approve")
	assert.Contains(t, m.View(), "Previews cached: 0/10 thumbnails")

	next, _ = m.Update(keyRunes("x"))
	m = next.(Model)
	assert.Equal(t, StateBrowsing, m.State)

	_, cmd := m.Update(keyRunes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestModel_ClearStatus(t *testing.T) {
	m, _ := newTestModel(t)
	m.setStatus("old", false)
	m.setStatus("new", true)

	next, _ := m.Update(ClearStatusMsg{Seq: 1})
	m = next.(Model)
	assert.Equal(t, "new", m.StatusMsg)

	next, _ = m.Update(ClearStatusMsg{Seq: 2})
	m = next.(Model)
	assert.Empty(t, m.StatusMsg)
}

func mustAsset(t *testing.T, lib *store.PhotoStore, id domain.AssetID) domain.Asset {
	t.Helper()
	a, err := lib.Asset(id)
	require.NoError(t, err)
	return a
}

func TestModel_ViewBeforeLoad(t *testing.T) {
	lib, err := store.Open("", store.Options{Logger: log.NullLogger()})
	require.NoError(t, err)
	defer lib.Close()

	svc := library.NewService(lib, library.Options{}, log.NullLogger())
	previews, err := preview.NewService(lib, preview.Options{Thumbnails: 1, FullSize: 1}, nil)
	require.NoError(t, err)

	m := NewModel(svc, previews, Options{})
	assert.Equal(t, "Loading...", m.View())

	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = next.(Model)
	assert.Contains(t, m.View(), "Loading library")

	next, _ = m.Update(LibraryEventMsg{Event: library.Event{Snapshot: svc.Snapshot(), Err: domain.ErrUnavailable}})
	m = next.(Model)
	assert.Contains(t, m.View(), "unavailable")

	// keys that need a focused photo do nothing
	_, cmd := m.Update(keyRunes("1"))
	assert.Nil(t, cmd)
}
