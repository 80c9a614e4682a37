package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/alexwlchan/blink/internal/domain"
	"github.com/alexwlchan/blink/internal/tui/styles"
)

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	if m.State == StateHelp {
		return m.renderHelp()
	}

	var body string
	switch {
	case !m.snap.Loaded() && errors.Is(m.libErr, domain.ErrUnavailable):
		body = m.centered(styles.ErrorStyle.Render("The photo library is unavailable.") + "\n" +
			styles.DimStyle.Render("Press r to try again."))
	case !m.snap.Loaded():
		body = m.centered(m.Spinner.View() + " " + styles.DimStyle.Render("Loading library…"))
	case m.snap.Len() == 0:
		body = m.centered(styles.DimStyle.Render("There are no photos in the library."))
	case m.State == StateSearching:
		body = m.renderSearch()
	default:
		body = lipgloss.JoinVertical(lipgloss.Center,
			m.renderPreview(),
			m.renderInfo(),
			m.renderStrip(),
		)
		body = lipgloss.PlaceHorizontal(m.Width, lipgloss.Center, body)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderFooter(),
	)
}

// bodyHeight is the space between header and footer
func (m Model) bodyHeight() int {
	h := m.Height - 2
	if h < 1 {
		h = 1
	}
	return h
}

func (m Model) centered(s string) string {
	return lipgloss.Place(m.Width, m.bodyHeight(), lipgloss.Center, lipgloss.Center, s)
}

func (m Model) renderHeader() string {
	left := styles.TitleStyle.Render("blink")
	if m.snap.Loaded() {
		left += styles.SubtitleStyle.Render("  ·  " + m.stats.String())
		if m.stats.Favorites > 0 {
			left += styles.SubtitleStyle.Render(fmt.Sprintf("  ·  %s %d", styles.FavoriteHeart, m.stats.Favorites))
		}
	}
	var right string
	if m.hasFocus {
		right = styles.SubtitleStyle.Render(fmt.Sprintf("%d / %d", m.focus.Index+1, m.snap.Len()))
	}

	gap := m.Width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return styles.HeaderStyle.Width(m.Width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) renderFooter() string {
	var left string
	if m.StatusMsg != "" {
		if m.StatusIsErr {
			left = styles.ErrorStyle.Render(m.StatusMsg)
		} else {
			left = styles.DimStyle.Render(m.StatusMsg)
		}
	}

	h := help.New()
	right := h.ShortHelpView(m.Keys.ShortHelp())

	gap := m.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}

// renderPreview draws the focused photo, or a placeholder while it renders
func (m Model) renderPreview() string {
	state := m.reviewState(m.focus.ID)
	border := styles.PreviewBorder(state)

	cols, rows := domain.PreviewFull.Grid()
	cellWidth := 2
	if cols*cellWidth+2 > m.Width {
		cellWidth = 1
	}

	p, ok := m.PreviewSvc.Peek(m.focus.ID, domain.PreviewFull)
	if !ok {
		placeholder := lipgloss.Place(cols*cellWidth, rows, lipgloss.Center, lipgloss.Center,
			m.Spinner.View()+" "+styles.DimStyle.Render("Rendering…"))
		return border.Render(placeholder)
	}
	return border.Render(renderCells(p.Cells, cellWidth))
}

func (m Model) renderInfo() string {
	a, ok := m.focusedAsset()
	if !ok {
		return ""
	}

	parts := []string{styles.TitleStyle.Render(a.Filename)}
	if !a.CreatedAt.IsZero() {
		parts = append(parts, styles.SubtitleStyle.Render(a.CreatedAt.Local().Format("2 Jan 2006 15:04")))
	}
	if dims := a.Dimensions(); dims != "" {
		parts = append(parts, styles.DimStyle.Render(dims+" "+a.Orientation()))
	}
	parts = append(parts, styles.StateBadge(m.reviewState(a.ID)))
	if a.IsFavorite {
		parts = append(parts, styles.FavoriteHeart)
	}
	return strings.Join(parts, "  ")
}

// renderStrip draws thumbnails either side of the focus
func (m Model) renderStrip() string {
	width := m.opts.StripWidth
	var thumbs []string
	for i := m.focus.Index - width; i <= m.focus.Index+width; i++ {
		id := m.snap.At(i)
		if id == "" {
			continue
		}
		border := styles.ThumbnailBorder(m.reviewState(id), i == m.focus.Index)

		var inner string
		if p, ok := m.PreviewSvc.Peek(id, domain.PreviewThumbnail); ok {
			inner = renderCells(p.Cells, 2)
		} else {
			cols, rows := domain.PreviewThumbnail.Grid()
			inner = lipgloss.Place(cols*2, rows, lipgloss.Center, lipgloss.Center, styles.DimStyle.Render("…"))
		}
		if m.snap.IsFavorite(id) {
			inner = lipgloss.JoinVertical(lipgloss.Right, inner, styles.FavoriteHeart)
		}
		thumbs = append(thumbs, border.Render(inner))
	}
	return lipgloss.JoinHorizontal(lipgloss.Bottom, thumbs...)
}

// renderCells paints preview cells as coloured blocks
func renderCells(cells [][]string, cellWidth int) string {
	blank := strings.Repeat(" ", cellWidth)
	lines := make([]string, len(cells))
	for y, row := range cells {
		var b strings.Builder
		for _, hex := range row {
			b.WriteString(lipgloss.NewStyle().Background(lipgloss.Color(hex)).Render(blank))
		}
		lines[y] = b.String()
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderSearch() string {
	var b strings.Builder
	b.WriteString(m.SearchInput.View())
	b.WriteString("\n\n")

	if len(m.results) == 0 && m.SearchInput.Value() != "" {
		b.WriteString(styles.DimStyle.Render("No matching photos"))
	}
	for i, r := range m.results {
		line := highlight(r.Asset.Filename, r.MatchedIndexes) +
			styles.DimStyle.Render(fmt.Sprintf("  #%d  %s", r.Index+1, r.Asset.ID))
		if i == m.resultCursor {
			line = styles.SelectedStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}

	modal := styles.ModalStyle.Width(min(72, m.Width-4)).Render(b.String())
	return lipgloss.Place(m.Width, m.bodyHeight(), lipgloss.Center, lipgloss.Center, modal)
}

// highlight renders matched byte positions in the accent colour
func highlight(s string, matched []int) string {
	if len(matched) == 0 {
		return s
	}
	hit := make(map[int]bool, len(matched))
	for _, i := range matched {
		hit[i] = true
	}
	var b strings.Builder
	for i, r := range s {
		if hit[i] {
			b.WriteString(styles.MatchStyle.Render(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	h := help.New()
	h.ShowAll = true

	content := styles.TitleStyle.Render("blink") + "\n\n" +
		h.View(m.Keys) + "\n\n" +
		styles.DimStyle.Render("Reviewing a photo with its current state clears it.") + "\n" +
		styles.DimStyle.Render("Previews cached: "+m.PreviewSvc.Stats().String()) + "\n" +
		styles.DimStyle.Render("Press any key to return...")

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(content))
}
