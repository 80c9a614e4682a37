package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/alexwlchan/blink/internal/domain"
)

// Color palette
var (
	Accent     = lipgloss.Color("#E5A00D")
	SlateDark  = lipgloss.Color("#1F2937")
	SlateLight = lipgloss.Color("#374151")
	DimGray    = lipgloss.Color("#6B7280")
	LightGray  = lipgloss.Color("#9CA3AF")
	White      = lipgloss.Color("#F9FAFB")
	Green      = lipgloss.Color("#10B981")
	Red        = lipgloss.Color("#EF4444")
	Amber      = lipgloss.Color("#F59E0B")
	Pink       = lipgloss.Color("#EC4899")
)

// StateColor returns the colour associated with a review state
func StateColor(state domain.ReviewState) lipgloss.Color {
	switch state {
	case domain.StateApproved:
		return Green
	case domain.StateRejected:
		return Red
	case domain.StateNeedsAction:
		return Amber
	default:
		return DimGray
	}
}

// Thumbnail borders: focused thumbnails get a thick border, all of them are
// tinted by review state.
func ThumbnailBorder(state domain.ReviewState, focused bool) lipgloss.Style {
	border := lipgloss.RoundedBorder()
	if focused {
		border = lipgloss.ThickBorder()
	}
	return lipgloss.NewStyle().
		Border(border).
		BorderForeground(StateColor(state))
}

// PreviewBorder frames the full-size preview
func PreviewBorder(state domain.ReviewState) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(StateColor(state))
}

// Text styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(LightGray)

	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	AccentStyle = lipgloss.NewStyle().
			Foreground(Accent)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Green)

	FavoriteStyle = lipgloss.NewStyle().
			Foreground(Pink)

	MatchStyle = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(White).
			Background(SlateLight)
)

// StateBadge renders a review state as a coloured label
func StateBadge(state domain.ReviewState) string {
	if state == domain.StateNone {
		return DimStyle.Render("unreviewed")
	}
	return lipgloss.NewStyle().
		Foreground(SlateDark).
		Background(StateColor(state)).
		Padding(0, 1).
		Render(state.AlbumName())
}

// Panel styles
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(White).
			Background(SlateDark).
			Padding(0, 1)

	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Accent).
			Padding(0, 2)
)

// FavoriteHeart is the favorite indicator
var FavoriteHeart = FavoriteStyle.Render("♥")
