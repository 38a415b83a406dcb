package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/radar/internal/models"
	"github.com/desertthunder/radar/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	DiscoveryView ViewState = iota
	ReleaseListView
	DetailView
)

// Mode selects which release window the TUI is browsing.
type Mode int

const (
	ModeNew Mode = iota
	ModeUpcoming
)

func (m Mode) String() string {
	if m == ModeUpcoming {
		return "Upcoming Releases"
	}
	return "New Releases"
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	mode         Mode
	engine       *tasks.DiscoveryEngine
	favorites    []models.Artist
	lookbackDays int
	width        int
	height       int
	releaseList  list.Model
	releases     []models.ClassifiedRelease
	selected     *models.ClassifiedRelease
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	err          error
	help         help.Model
	keys         keyMap
}

// keyMap defines the key bindings for the TUI.
type keyMap struct {
	up      key.Binding
	down    key.Binding
	enter   key.Binding
	back    key.Binding
	toggle  key.Binding
	refresh key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "details"),
		),
		back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		toggle: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "new/upcoming"),
		),
		refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter},
		{k.back, k.toggle},
		{k.refresh, k.quit},
	}
}

type discoveryCompleteMsg struct {
	releases []models.ClassifiedRelease
	err      error
}

type progressUpdateMsg tasks.ProgressUpdate

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, engine *tasks.DiscoveryEngine, favorites []models.Artist, lookbackDays int) *Model {
	return &Model{
		ctx:          ctx,
		view:         DiscoveryView,
		mode:         ModeNew,
		engine:       engine,
		favorites:    favorites,
		lookbackDays: lookbackDays,
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

// Init starts the first discovery batch.
func (m *Model) Init() tea.Cmd {
	return m.startDiscovery(false)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.releaseList.Width() == 0 {
			m.releaseList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case DiscoveryView:
			return m.handleDiscoveryKeys(msg)
		case ReleaseListView:
			return m.handleReleaseListKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		}

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case discoveryCompleteMsg:
		m.err = msg.err
		m.progressChan = nil
		if msg.err != nil {
			return m, nil
		}
		m.releases = msg.releases
		items := make([]list.Item, len(msg.releases))
		for i, release := range msg.releases {
			items[i] = releaseItem{release: release}
		}
		m.releaseList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.releaseList.Title = m.mode.String()
		m.releaseList.SetSize(m.width-4, m.height-8)
		m.view = ReleaseListView
		return m, nil
	}

	if m.view == ReleaseListView {
		var cmd tea.Cmd
		m.releaseList, cmd = m.releaseList.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case DiscoveryView:
		return m.renderDiscovery()
	case ReleaseListView:
		return m.renderReleaseList()
	case DetailView:
		return m.renderDetail()
	default:
		return ""
	}
}

func (m *Model) handleDiscoveryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleReleaseListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "tab":
		if m.mode == ModeNew {
			m.mode = ModeUpcoming
		} else {
			m.mode = ModeNew
		}
		m.view = DiscoveryView
		return m, m.startDiscovery(false)
	case "r":
		m.view = DiscoveryView
		return m, m.startDiscovery(true)
	case "enter":
		selected := m.releaseList.SelectedItem()
		if selected != nil {
			if item, ok := selected.(releaseItem); ok {
				release := item.release
				m.selected = &release
				m.view = DetailView
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.releaseList, cmd = m.releaseList.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.selected = nil
		m.view = ReleaseListView
		return m, nil
	}
	return m, nil
}

func (m *Model) startDiscovery(forceRefresh bool) tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	progressChan := m.progressChan
	mode := m.mode

	go func() {
		opts := tasks.BatchOpts{Priority: true, ForceRefresh: forceRefresh}

		var releases []models.ClassifiedRelease
		var err error
		if mode == ModeUpcoming {
			releases, err = m.engine.FindUpcomingReleases(m.ctx, progressChan, m.favorites, 0, opts)
		} else {
			releases, err = m.engine.FindNewReleases(m.ctx, progressChan, m.favorites, m.lookbackDays, opts)
		}

		m.releases = releases
		m.err = err
		close(progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return discoveryCompleteMsg{releases: m.releases, err: m.err}
		}

		update, ok := <-m.progressChan
		if !ok {
			return discoveryCompleteMsg{releases: m.releases, err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderDiscovery() string {
	title := styles.title.Render(fmt.Sprintf("Checking for %s", m.mode))

	var phase string
	switch m.progress.Phase {
	case tasks.CacheLookup:
		phase = "Consulting cache..."
	case tasks.FetchCatalog:
		phase = fmt.Sprintf("Fetching catalogs (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.ClassifyReleases:
		phase = fmt.Sprintf("Classifying releases (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.EnrichDetails:
		phase = "Fetching release details..."
	case tasks.MergeResults:
		phase = "Assembling results..."
	default:
		phase = "Starting..."
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.quit})

	return fmt.Sprintf("%s\n\n%s\n%s\n\n%s", title, phase, m.progress.Message, helpView)
}

func (m *Model) renderReleaseList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.toggle, m.keys.refresh, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.releaseList.View(), helpView)
}

func (m *Model) renderDetail() string {
	if m.selected == nil {
		return styles.err.Render("No release selected\n\nPress esc to go back")
	}

	release := m.selected
	title := styles.title.Render(release.Entry.Title)

	info := fmt.Sprintf(
		"\nArtist: %s\nType: %s\nReleased: %s\nWindow: %s\n",
		release.PrimaryArtist.Name,
		release.Entry.Type,
		release.Entry.DateString(),
		release.Window,
	)

	if len(release.Collaborators) > 0 {
		info += fmt.Sprintf("With: %v\n", release.Collaborators)
	}
	if release.Entry.TrackCount > 0 {
		info += fmt.Sprintf("Tracks: %d\n", release.Entry.TrackCount)
	}
	if release.Entry.URL != "" {
		info += fmt.Sprintf("Listen: %s\n", release.Entry.URL)
	}

	helpKeys := []key.Binding{m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}
