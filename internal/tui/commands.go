package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexwlchan/blink/internal/domain"
	"github.com/alexwlchan/blink/internal/library"
	"github.com/alexwlchan/blink/internal/preview"
)

// Command factories for async operations

// ListenForEventsCmd waits for the next library event. The model re-issues
// it after every LibraryEventMsg so exactly one listener is ever pending.
func ListenForEventsCmd(svc *library.Service) tea.Cmd {
	return func() tea.Msg {
		return LibraryEventMsg{Event: <-svc.Updates()}
	}
}

// SetReviewStateCmd applies a review state to a photo
func SetReviewStateCmd(svc *library.Service, a domain.Asset, state domain.ReviewState) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		got, err := svc.SetReviewState(ctx, a.ID, state)
		if err != nil {
			return ErrMsg{Err: err, Context: "reviewing " + a.Filename}
		}
		return ReviewedMsg{Asset: a, State: got}
	}
}

// ToggleFavoriteCmd flips a photo's favorite flag
func ToggleFavoriteCmd(svc *library.Service, a domain.Asset) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		fav, err := svc.ToggleFavorite(ctx, a.ID)
		if err != nil {
			return ErrMsg{Err: err, Context: "updating favorite"}
		}
		return FavoriteToggledMsg{Asset: a, Favorite: fav}
	}
}

// LoadPreviewCmd renders one preview into the cache
func LoadPreviewCmd(svc *preview.Service, id domain.AssetID, size domain.PreviewSize) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if _, err := svc.Load(ctx, id, size); err != nil {
			return ErrMsg{Err: err, Context: "loading preview"}
		}
		return PreviewLoadedMsg{ID: id, Size: size}
	}
}

// PrefetchCmd renders the previews around the focus. Failures are logged by
// the preview service and otherwise ignored.
func PrefetchCmd(svc *preview.Service, ids []domain.AssetID, size domain.PreviewSize) tea.Cmd {
	if len(ids) == 0 {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		_ = svc.Prefetch(ctx, ids, size)
		return PrefetchDoneMsg{Size: size}
	}
}

// ClearStatusCmd clears the status message after a delay
func ClearStatusCmd(seq int, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return ClearStatusMsg{Seq: seq}
	})
}
