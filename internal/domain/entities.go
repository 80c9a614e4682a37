package domain

import (
	"fmt"
	"strings"
	"time"
)

// AssetID is the stable identifier of one photo in the library.
// Positions change as photos are added or removed; identifiers do not.
type AssetID string

// Asset is a single photo as reported by the library.
type Asset struct {
	ID         AssetID   // Local identifier, e.g. "6F1C.../L0/001"
	Filename   string    // Original filename
	CreatedAt  time.Time // Capture date; the library is ordered newest first
	IsFavorite bool      // Favorite flag
	Width      int       // Pixel width
	Height     int       // Pixel height
}

// Orientation returns a short description of the asset's aspect
func (a Asset) Orientation() string {
	switch {
	case a.Width == 0 || a.Height == 0:
		return ""
	case a.Width > a.Height:
		return "landscape"
	case a.Width < a.Height:
		return "portrait"
	default:
		return "square"
	}
}

// Dimensions returns "W×H", or an empty string when unknown
func (a Asset) Dimensions() string {
	if a.Width == 0 || a.Height == 0 {
		return ""
	}
	return fmt.Sprintf("%d×%d", a.Width, a.Height)
}

// ReviewState is the outcome of reviewing a photo.
// Each non-none state is backed by one album in the library.
type ReviewState int

const (
	StateNone ReviewState = iota
	StateApproved
	StateNeedsAction
	StateRejected
)

// ReviewStates lists the album-backed states in priority order, most
// consequential first.
var ReviewStates = []ReviewState{StateRejected, StateNeedsAction, StateApproved}

// String returns the CLI spelling of the state
func (s ReviewState) String() string {
	switch s {
	case StateApproved:
		return "approved"
	case StateNeedsAction:
		return "needs-action"
	case StateRejected:
		return "rejected"
	default:
		return "none"
	}
}

// AlbumName returns the title of the album that backs the state
func (s ReviewState) AlbumName() string {
	switch s {
	case StateApproved:
		return "Approved"
	case StateNeedsAction:
		return "Needs Action"
	case StateRejected:
		return "Rejected"
	default:
		return ""
	}
}

// ParseReviewState converts user input ("rejected", "needs action", "2") to a state
func ParseReviewState(s string) (ReviewState, error) {
	normalized := strings.NewReplacer(" ", "-", "_", "-").Replace(strings.ToLower(strings.TrimSpace(s)))
	switch normalized {
	case "approved", "approve", "1":
		return StateApproved, nil
	case "rejected", "reject", "2":
		return StateRejected, nil
	case "needs-action", "needsaction", "3":
		return StateNeedsAction, nil
	case "none", "unreviewed", "":
		return StateNone, nil
	}
	return StateNone, fmt.Errorf("unknown review state %q", s)
}

// PreviewSize selects the resolution of a rendered preview
type PreviewSize int

const (
	PreviewThumbnail PreviewSize = iota
	PreviewFull
)

// Grid returns the number of columns and rows of colour cells for the size
func (s PreviewSize) Grid() (cols, rows int) {
	if s == PreviewFull {
		return 48, 12
	}
	return 6, 2
}

// Preview is a rendered, cacheable resource for one asset.
// Cells holds hex colours, one row per slice.
type Preview struct {
	Asset Asset
	Size  PreviewSize
	Cells [][]string
}
