package tui

import (
	"github.com/alexwlchan/blink/internal/domain"
	"github.com/alexwlchan/blink/internal/library"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// LibraryEventMsg carries the latest library state from the service
type LibraryEventMsg struct {
	Event library.Event
}

// ReviewedMsg signals that a review state was applied
type ReviewedMsg struct {
	Asset domain.Asset
	State domain.ReviewState
}

// FavoriteToggledMsg signals that a favorite flag was changed
type FavoriteToggledMsg struct {
	Asset    domain.Asset
	Favorite bool
}

// PreviewLoadedMsg signals that a preview is now cached
type PreviewLoadedMsg struct {
	ID   domain.AssetID
	Size domain.PreviewSize
}

// PrefetchDoneMsg signals that a prefetch batch has finished
type PrefetchDoneMsg struct {
	Size domain.PreviewSize
}

// ClearStatusMsg clears the status line if it still shows the same message
type ClearStatusMsg struct {
	Seq int
}
