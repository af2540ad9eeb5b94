package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aural-fm/aural/internal/models"
	"github.com/aural-fm/aural/internal/player"
	"github.com/aural-fm/aural/internal/shared"
	"github.com/aural-fm/aural/internal/store"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LikedView ViewState = iota
	PlaylistListView
	TrackListView
)

// Library is the slice of the store the TUI reads from. The notifier keeps
// the lists current when the store is written behind the TUI's back, by the
// player's like toggle or a concurrent import.
type Library interface {
	LikedTracks() ([]models.Track, error)
	Playlists() ([]models.Playlist, error)
	Notifier() *store.Notifier
}

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	view    ViewState
	player  *player.Player
	library Library
	changes <-chan store.Change

	width  int
	height int

	likedList    list.Model
	playlistList list.Model
	trackList    list.Model

	liked     []models.Track
	playlists []models.Playlist
	selected  *models.Playlist

	state player.State
	err   error

	help help.Model
	keys keyMap
}

type libraryLoadedMsg struct {
	liked     []models.Track
	playlists []models.Playlist
	err       error
}

type libraryChangedMsg struct{}

type playerStateMsg player.State

type actionErrMsg struct{ err error }

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, p *player.Player, library Library) *Model {
	return &Model{
		ctx:     ctx,
		view:    LikedView,
		player:  p,
		library: library,
		changes: library.Notifier().Subscribe(store.ChangeLiked, store.ChangePlaylists),
		state:   p.State(),
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init loads the library and starts watching playback state and store
// changes.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.loadLibrary(), m.waitForState(), m.waitForChange())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeLists()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case libraryLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.liked = msg.liked
		m.playlists = msg.playlists
		m.rebuildLists()
		return m, nil

	case libraryChangedMsg:
		return m, tea.Batch(m.loadLibrary(), m.waitForChange())

	case playerStateMsg:
		m.state = player.State(msg)
		return m, m.waitForState()

	case actionErrMsg:
		m.err = msg.err
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case LikedView:
		body = m.likedList.View()
	case PlaylistListView:
		body = m.playlistList.View()
	case TrackListView:
		body = m.trackList.View()
	}

	return fmt.Sprintf("%s\n%s\n%s", body, m.renderNowPlaying(), m.help.ShortHelpView(m.keys.ShortHelp()))
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		return m, m.doAction(func() error { return m.player.TogglePlayPause() })
	case "n":
		return m, m.doAction(func() error { return m.player.PlayNext(m.ctx) })
	case "b":
		return m, m.doAction(func() error { return m.player.PlayPrevious(m.ctx) })
	case "s":
		m.player.ToggleShuffle()
		return m, nil
	case "r":
		m.player.ToggleRepeat()
		return m, nil
	case "l":
		// The store write publishes a liked change, which reloads the lists.
		if track, ok := m.selectedTrack(); ok {
			return m, m.doAction(func() error { _, err := m.player.ToggleLike(track); return err })
		}
		return m, nil
	case "+", "=":
		m.player.SetVolume(m.state.Volume + 0.05)
		return m, nil
	case "-":
		m.player.SetVolume(m.state.Volume - 0.05)
		return m, nil
	case "tab":
		m.cycleView()
		return m, nil
	case "esc":
		if m.view == TrackListView {
			m.view = PlaylistListView
		}
		return m, nil
	case "enter":
		return m.handleEnter()
	}

	return m.updateLists(msg)
}

func (m *Model) handleEnter() (tea.Model, tea.Cmd) {
	switch m.view {
	case LikedView:
		if track, ok := m.selectedTrack(); ok {
			m.player.SetQueue(m.liked)
			return m, m.playTrack(track)
		}

	case PlaylistListView:
		selected := m.playlistList.SelectedItem()
		if item, ok := selected.(playlistItem); ok {
			m.openPlaylist(item.playlist)
		}

	case TrackListView:
		if track, ok := m.selectedTrack(); ok && m.selected != nil {
			m.player.SetQueue(m.selected.Tracks)
			return m, m.playTrack(track)
		}
	}
	return m, nil
}

// selectedTrack returns the track under the cursor in the active list.
func (m *Model) selectedTrack() (models.Track, bool) {
	var item list.Item
	switch m.view {
	case LikedView:
		item = m.likedList.SelectedItem()
	case TrackListView:
		item = m.trackList.SelectedItem()
	default:
		return models.Track{}, false
	}

	if ti, ok := item.(trackItem); ok {
		return ti.track, true
	}
	return models.Track{}, false
}

func (m *Model) cycleView() {
	if m.view == LikedView {
		m.view = PlaylistListView
	} else {
		m.view = LikedView
	}
}

func (m *Model) openPlaylist(playlist models.Playlist) {
	m.selected = &playlist

	items := make([]list.Item, len(playlist.Tracks))
	for i, track := range playlist.Tracks {
		items[i] = trackItem{track: track}
	}
	m.trackList = list.New(items, list.NewDefaultDelegate(), 0, 0)
	m.trackList.Title = playlist.Name
	m.trackList.SetSize(m.width-4, m.listHeight())
	m.view = TrackListView
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case LikedView:
		m.likedList, cmd = m.likedList.Update(msg)
	case PlaylistListView:
		m.playlistList, cmd = m.playlistList.Update(msg)
	case TrackListView:
		m.trackList, cmd = m.trackList.Update(msg)
	}
	return m, cmd
}

func (m *Model) rebuildLists() {
	likedItems := make([]list.Item, len(m.liked))
	for i, track := range m.liked {
		likedItems[i] = trackItem{track: track}
	}
	m.likedList = list.New(likedItems, list.NewDefaultDelegate(), 0, 0)
	m.likedList.Title = "Liked Tracks"

	playlistItems := make([]list.Item, len(m.playlists))
	for i, pl := range m.playlists {
		playlistItems[i] = playlistItem{playlist: pl}
	}
	m.playlistList = list.New(playlistItems, list.NewDefaultDelegate(), 0, 0)
	m.playlistList.Title = "Playlists"

	m.resizeLists()
}

func (m *Model) listHeight() int {
	return m.height - 6
}

func (m *Model) resizeLists() {
	w, h := m.width-4, m.listHeight()
	m.likedList.SetSize(w, h)
	m.playlistList.SetSize(w, h)
	m.trackList.SetSize(w, h)
}

func (m *Model) loadLibrary() tea.Cmd {
	return func() tea.Msg {
		liked, err := m.library.LikedTracks()
		if err != nil {
			return libraryLoadedMsg{err: err}
		}
		playlists, err := m.library.Playlists()
		if err != nil {
			return libraryLoadedMsg{err: err}
		}
		return libraryLoadedMsg{liked: liked, playlists: playlists}
	}
}

// waitForState blocks on the player's update stream and converts each
// snapshot into a message.
func (m *Model) waitForState() tea.Cmd {
	updates := m.player.Updates()
	return func() tea.Msg {
		state, ok := <-updates
		if !ok {
			return nil
		}
		return playerStateMsg(state)
	}
}

// waitForChange blocks on the store's change stream and signals a library
// reload for each write.
func (m *Model) waitForChange() tea.Cmd {
	changes := m.changes
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return libraryChangedMsg{}
	}
}

func (m *Model) playTrack(track models.Track) tea.Cmd {
	return m.doAction(func() error { return m.player.PlayTrack(m.ctx, track) })
}

// doAction runs a player operation off the update loop, reporting failures
// as messages.
func (m *Model) doAction(action func() error) tea.Cmd {
	return func() tea.Msg {
		if err := action(); err != nil {
			return actionErrMsg{err: err}
		}
		return nil
	}
}

func (m *Model) renderNowPlaying() string {
	state := m.state

	if state.Current == nil {
		if m.err != nil {
			return styles.err.Render(fmt.Sprintf("error: %v", m.err))
		}
		return styles.help.Render("nothing playing")
	}

	icon := "⏸"
	if state.Playing {
		icon = "▶"
	}
	if state.LoadingStream {
		icon = "⌕"
	} else if state.Loading {
		icon = "…"
	}

	line := fmt.Sprintf("%s %s — %s  %s/%s",
		icon,
		state.Current.Title,
		state.Current.Artist,
		shared.FormatDuration(int(state.CurrentTime)),
		shared.FormatDuration(int(state.Duration)),
	)

	flags := fmt.Sprintf("  vol %d%%", int(state.Volume*100))
	if state.Shuffled {
		flags += " · shuffle"
	}
	if state.RepeatMode != models.RepeatOff {
		flags += " · repeat " + state.RepeatMode.String()
	}

	out := styles.accent.Render(line) + styles.help.Render(flags)
	if state.Err != nil {
		out += "\n" + styles.err.Render(fmt.Sprintf("error: %v", state.Err))
	} else if m.err != nil {
		out += "\n" + styles.err.Render(fmt.Sprintf("error: %v", m.err))
	}
	return out
}
