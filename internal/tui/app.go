// Package tui is the interactive photo reviewer.
package tui

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexwlchan/blink/internal/domain"
	"github.com/alexwlchan/blink/internal/focus"
	"github.com/alexwlchan/blink/internal/library"
	"github.com/alexwlchan/blink/internal/preview"
	"github.com/alexwlchan/blink/internal/review"
	"github.com/alexwlchan/blink/internal/search"
	"github.com/alexwlchan/blink/internal/snapshot"
	"github.com/alexwlchan/blink/internal/tui/styles"
)

// ApplicationState represents the current UI mode
type ApplicationState int

const (
	StateBrowsing ApplicationState = iota
	StateSearching
	StateHelp
)

const statusTimeout = 3 * time.Second

// maxSearchResults bounds the jump box result list
const maxSearchResults = 8

// Options tunes the reviewer
type Options struct {
	StripWidth         int  // thumbnails either side of the focus
	Prefetch           int  // full-size previews either side of the focus
	AdvanceAfterReview bool // move to the next photo after reviewing
}

// Model is the main Bubble Tea model for the application
type Model struct {
	State ApplicationState
	Ready bool

	// Services
	LibrarySvc *library.Service
	PreviewSvc *preview.Service

	Keys KeyMap
	opts Options

	// Latest library state
	snap     *snapshot.Snapshot
	focus    focus.State
	hasFocus bool
	stats    library.Statistics
	libErr   error

	// Jump box
	SearchInput  textinput.Model
	searchIndex  *search.Index
	results      []search.Match
	resultCursor int

	Spinner spinner.Model

	// Dimensions
	Width  int
	Height int

	// UI state
	StatusMsg   string
	StatusIsErr bool
	statusSeq   int
}

// NewModel creates a new application model
func NewModel(librarySvc *library.Service, previewSvc *preview.Service, opts Options) Model {
	input := textinput.New()
	input.Placeholder = "filename, glob or identifier"
	input.Prompt = "/ "
	input.CharLimit = 128

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.AccentStyle

	return Model{
		State:       StateBrowsing,
		LibrarySvc:  librarySvc,
		PreviewSvc:  previewSvc,
		Keys:        DefaultKeyMap(),
		opts:        opts,
		snap:        librarySvc.Snapshot(),
		SearchInput: input,
		Spinner:     sp,
	}
}

// Init starts listening for library events
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		ListenForEventsCmd(m.LibrarySvc),
		m.Spinner.Tick,
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case LibraryEventMsg:
		cmd := m.applyEvent(msg.Event)
		return m, tea.Batch(cmd, ListenForEventsCmd(m.LibrarySvc))

	case ReviewedMsg:
		verb := "Cleared review of"
		if msg.State != domain.StateNone {
			verb = msg.State.AlbumName() + ":"
		}
		cmd := m.setStatus(fmt.Sprintf("%s %s", verb, msg.Asset.Filename), false)
		if m.opts.AdvanceAfterReview {
			// From the reviewed photo, not wherever the focus went meanwhile.
			m.LibrarySvc.FocusAfter(msg.Asset.ID)
			m.focus, m.hasFocus = m.LibrarySvc.Focus()
		}
		return m, cmd

	case FavoriteToggledMsg:
		text := "Unfavorited " + msg.Asset.Filename
		if msg.Favorite {
			text = "Favorited " + msg.Asset.Filename
		}
		return m, m.setStatus(text, false)

	case PreviewLoadedMsg, PrefetchDoneMsg:
		// The view reads previews from the cache; re-rendering is enough.
		return m, nil

	case ClearStatusMsg:
		if msg.Seq == m.statusSeq {
			m.StatusMsg = ""
			m.StatusIsErr = false
		}
		return m, nil

	case ErrMsg:
		if errors.Is(msg.Err, domain.ErrNotFound) {
			return m, m.setStatus("That photo is no longer in the library", true)
		}
		return m, m.setStatus(msg.Error(), true)
	}

	return m, nil
}

// applyEvent adopts the service's latest state and schedules preview loads
func (m *Model) applyEvent(ev library.Event) tea.Cmd {
	if ev.Snapshot != nil {
		m.snap = ev.Snapshot
	}
	m.focus, m.hasFocus = m.LibrarySvc.Focus()
	m.libErr = ev.Err
	m.PreviewSvc.Forget(ev.Removed...)

	if ev.Err != nil && !m.snap.Loaded() {
		return nil
	}

	if ev.SnapshotChanged {
		m.stats = library.StatisticsOf(m.snap)
		if m.State == StateSearching {
			m.searchIndex = search.NewIndex(m.snap.Assets())
			m.runSearch()
		} else {
			m.searchIndex = nil
		}
	}
	if ev.SnapshotChanged || ev.FocusChanged {
		return m.loadPreviews()
	}
	return nil
}

// loadPreviews requests the focused preview and prefetches its neighbours
func (m *Model) loadPreviews() tea.Cmd {
	if !m.hasFocus {
		return nil
	}
	var cmds []tea.Cmd
	if _, ok := m.PreviewSvc.Peek(m.focus.ID, domain.PreviewFull); !ok {
		cmds = append(cmds, LoadPreviewCmd(m.PreviewSvc, m.focus.ID, domain.PreviewFull))
	}
	cmds = append(cmds, PrefetchCmd(m.PreviewSvc,
		preview.Around(m.snap, m.focus.Index, m.opts.StripWidth), domain.PreviewThumbnail))
	if neighbours := preview.Around(m.snap, m.focus.Index, m.opts.Prefetch); len(neighbours) > 1 {
		cmds = append(cmds, PrefetchCmd(m.PreviewSvc, neighbours[1:], domain.PreviewFull))
	}
	return tea.Batch(cmds...)
}

// setStatus shows a message and schedules it to clear
func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.statusSeq++
	m.StatusMsg = text
	m.StatusIsErr = isErr
	return ClearStatusCmd(m.statusSeq, statusTimeout)
}

// focusedAsset returns the asset under the cursor
func (m Model) focusedAsset() (domain.Asset, bool) {
	if !m.hasFocus {
		return domain.Asset{}, false
	}
	return m.snap.Asset(m.focus.ID)
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.State {
	case StateHelp:
		m.State = StateBrowsing
		return m, nil
	case StateSearching:
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.Keys.Help):
		m.State = StateHelp
		return m, nil

	case key.Matches(msg, m.Keys.Left):
		m.LibrarySvc.MoveFocus(-1)
	case key.Matches(msg, m.Keys.Right):
		m.LibrarySvc.MoveFocus(1)
	case key.Matches(msg, m.Keys.Home):
		m.LibrarySvc.SetFocus(0)
	case key.Matches(msg, m.Keys.End):
		m.LibrarySvc.SetFocus(m.snap.Len() - 1)

	case key.Matches(msg, m.Keys.Approve):
		return m, m.review(domain.StateApproved)
	case key.Matches(msg, m.Keys.Reject):
		return m, m.review(domain.StateRejected)
	case key.Matches(msg, m.Keys.NeedsAction):
		return m, m.review(domain.StateNeedsAction)

	case key.Matches(msg, m.Keys.Favorite):
		a, ok := m.focusedAsset()
		if !ok {
			return m, nil
		}
		return m, ToggleFavoriteCmd(m.LibrarySvc, a)

	case key.Matches(msg, m.Keys.Search):
		if !m.snap.Loaded() {
			return m, nil
		}
		m.State = StateSearching
		m.searchIndex = search.NewIndex(m.snap.Assets())
		m.results = nil
		m.resultCursor = 0
		m.SearchInput.SetValue("")
		return m, m.SearchInput.Focus()

	case key.Matches(msg, m.Keys.Reload):
		m.PreviewSvc.Purge()
		m.LibrarySvc.Reload()
		return m, m.setStatus("Reloading library…", false)
	}

	m.focus, m.hasFocus = m.LibrarySvc.Focus()
	return m, nil
}

func (m Model) review(state domain.ReviewState) tea.Cmd {
	a, ok := m.focusedAsset()
	if !ok {
		return nil
	}
	return SetReviewStateCmd(m.LibrarySvc, a, state)
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Escape):
		m.closeSearch()
		return m, nil

	case key.Matches(msg, m.Keys.Enter):
		if m.resultCursor < len(m.results) {
			target := m.results[m.resultCursor].Asset
			m.closeSearch()
			if !m.LibrarySvc.FocusAsset(target.ID) {
				return m, m.setStatus(target.Filename+" is no longer in the library", true)
			}
			m.focus, m.hasFocus = m.LibrarySvc.Focus()
		}
		return m, nil

	case key.Matches(msg, m.Keys.Up):
		if m.resultCursor > 0 {
			m.resultCursor--
		}
		return m, nil

	case key.Matches(msg, m.Keys.Down):
		if m.resultCursor < len(m.results)-1 {
			m.resultCursor++
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.SearchInput, cmd = m.SearchInput.Update(msg)
	m.runSearch()
	return m, cmd
}

func (m *Model) runSearch() {
	if m.searchIndex == nil {
		return
	}
	m.results = m.searchIndex.Search(m.SearchInput.Value(), maxSearchResults)
	if m.resultCursor >= len(m.results) {
		m.resultCursor = 0
	}
}

func (m *Model) closeSearch() {
	m.State = StateBrowsing
	m.SearchInput.Blur()
	m.searchIndex = nil
	m.results = nil
}

// reviewState resolves the state of id in the model's snapshot
func (m Model) reviewState(id domain.AssetID) domain.ReviewState {
	return review.Resolve(id, m.snap)
}
