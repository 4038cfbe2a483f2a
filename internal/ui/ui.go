package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spx/internal/models"
	"github.com/desertthunder/spx/internal/services"
	"github.com/desertthunder/spx/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SectionsView ViewState = iota
	ConfirmView
	ExportView
	ResultView
)

// WriteFunc persists a finished run and returns the path written.
//
// Injected by the command layer so the TUI stays free of file and
// database wiring. The sections are the ones picked in the UI.
type WriteFunc func(*tasks.ExportResult, []services.Section) (string, error)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	engine       *tasks.ExportEngine
	opts         tasks.ExportOpts
	file         string
	format       string
	write        WriteFunc
	width        int
	height       int
	sectionList  list.Model
	chosen       map[services.Section]bool
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	result       *tasks.ExportResult
	written      string
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
//
// The sections already present in opts start out checked; with none given
// the playlist section is checked by default.
func NewModel(ctx context.Context, engine *tasks.ExportEngine, opts tasks.ExportOpts, file, format string, write WriteFunc) *Model {
	chosen := make(map[services.Section]bool)
	for _, section := range opts.Sections {
		chosen[section] = true
	}
	if len(chosen) == 0 {
		chosen[services.SectionPlaylists] = true
	}

	sectionList := list.New(buildSectionItems(chosen), list.NewDefaultDelegate(), 0, 0)
	sectionList.Title = "Library Sections"
	sectionList.SetShowStatusBar(false)
	sectionList.SetFilteringEnabled(false)

	return &Model{
		ctx:         ctx,
		view:        SectionsView,
		engine:      engine,
		opts:        opts,
		file:        file,
		format:      format,
		write:       write,
		sectionList: sectionList,
		chosen:      chosen,
		help:        help.New(),
		keys:        newKeyMap(),
	}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.sectionList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case SectionsView:
			return m.handleSectionsKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case exportDoneMsg:
		m.result = msg.result
		m.written = msg.written
		m.err = msg.err
		m.view = ResultView
		m.progressChan = nil
		return m, nil
	}

	var cmd tea.Cmd
	if m.view == SectionsView {
		m.sectionList, cmd = m.sectionList.Update(msg)
	}
	return m, cmd
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case SectionsView:
		return m.renderSections()
	case ConfirmView:
		return m.renderConfirm()
	case ExportView:
		return m.renderExport()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleSectionsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		return m, m.toggleSelected()
	case "enter":
		if len(m.selectedSections()) > 0 {
			m.view = ConfirmView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.sectionList, cmd = m.sectionList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "n", "esc":
		m.view = SectionsView
		return m, nil
	case "y":
		m.opts.Sections = m.selectedSections()
		m.view = ExportView
		return m, m.startExport()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = SectionsView
		m.result = nil
		m.written = ""
		m.err = nil
		return m, nil
	}
	return m, nil
}

// toggleSelected flips the checked state of the highlighted section.
func (m *Model) toggleSelected() tea.Cmd {
	item, ok := m.sectionList.SelectedItem().(sectionItem)
	if !ok {
		return nil
	}

	m.chosen[item.section] = !m.chosen[item.section]
	item.chosen = m.chosen[item.section]
	return m.sectionList.SetItem(m.sectionList.Index(), item)
}

// selectedSections returns the checked sections in canonical order.
func (m *Model) selectedSections() []services.Section {
	var out []services.Section
	for _, section := range []services.Section{services.SectionLiked, services.SectionPlaylists, services.SectionTop} {
		if m.chosen[section] {
			out = append(out, section)
		}
	}
	return out
}

func (m *Model) startExport() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)

	go func() {
		result, err := m.engine.Run(m.ctx, m.progressChan, m.opts)
		m.result = result
		m.err = err
		if err == nil && m.write != nil {
			m.written, m.err = m.write(result, m.opts.Sections)
		}
		close(m.progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return exportDoneMsg{result: m.result, written: m.written, err: m.err}
		}

		update, ok := <-m.progressChan
		if !ok {
			return exportDoneMsg{result: m.result, written: m.written, err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderSections() string {
	helpKeys := []key.Binding{m.keys.toggle, m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.sectionList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render("Export your Spotify library?")
	sections := strings.Join(services.SectionStrings(m.selectedSections()), ", ")
	info := fmt.Sprintf("\nSections: %s\nOutput: %s (%s)\n", sections, m.file, m.format)

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderExport() string {
	title := styles.title.Render("Exporting Library")

	var phase string
	switch m.progress.Phase {
	case tasks.FetchProfile:
		phase = "Loading user info..."
	case tasks.FetchLiked:
		phase = "Loading liked albums and songs..."
	case tasks.FetchPlaylists:
		phase = "Loading playlists..."
	case tasks.ResolveTracklists:
		phase = fmt.Sprintf("Resolving tracklists (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.FetchTop:
		phase = "Loading top items..."
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, styles.help.Render(m.progress.Message))
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Export failed: %v\n\nPress r to retry, q to quit", m.err))
	}

	if m.result == nil {
		return styles.err.Render("No result available\n\nPress r to retry, q to quit")
	}

	title := styles.ok.Render("✓ Export Complete!")
	info := fmt.Sprintf(
		"\nAccount: %s (%s)\nPlaylists: %d\nTracks: %d\nLiked albums: %d\n\nWrote %s",
		m.result.User.DisplayName,
		m.result.User.ID,
		len(m.result.Library.Playlists),
		countTracks(m.result.Library),
		len(m.result.Library.Albums),
		m.written,
	)

	var failed string
	if m.result.Failed > 0 {
		failed = fmt.Sprintf("\n\n%s", styles.warn.Render(
			fmt.Sprintf("%d playlists kept without tracklists", m.result.Failed)))
	}

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, failed, helpView)
}

// countTracks sums the resolved tracks across all playlists.
func countTracks(lib *models.Library) int {
	total := 0
	for _, playlist := range lib.Playlists {
		total += len(playlist.Items("tracks"))
	}
	return total
}
