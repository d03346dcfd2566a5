package tui

import (
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/amberpine/flicker/internal/clipboard"
	"github.com/amberpine/flicker/internal/config"
	"github.com/amberpine/flicker/internal/metadata"
	"github.com/amberpine/flicker/internal/servers"
	"github.com/amberpine/flicker/internal/session"
	"github.com/amberpine/flicker/internal/store"
	"github.com/amberpine/flicker/internal/tui/common"
	historycomp "github.com/amberpine/flicker/internal/tui/components/history"
	"github.com/amberpine/flicker/internal/tui/styles"
	"github.com/amberpine/flicker/internal/tui/watch"
	"github.com/amberpine/flicker/pkg/types"
)

// Deps carries the long-lived services the TUI is built on
type Deps struct {
	Config   *config.Config
	Logger   *slog.Logger
	Store    *store.Store
	Registry *servers.Registry
	Gate     *servers.Gate
	Metadata *metadata.Client
	Clip     clipboard.Service
}

// DeepLink preselects a title so the app opens straight on the watch
// view
type DeepLink struct {
	ContentType types.ContentType
	ContentID   string
	Season      int
	Episode     int
	ServerIndex int
}

type view int

const (
	viewHome view = iota
	viewWatch
)

// Model is the root application model
type Model struct {
	deps Deps

	current view
	home    historycomp.Model
	watch   watch.Model

	status string
	width  int
	height int
}

// New builds the root model. A non-nil deep link skips the home view.
func New(deps Deps, link *DeepLink) (Model, error) {
	m := Model{
		deps: deps,
		home: historycomp.New(),
	}
	m.home.SetEntries(deps.Store.History())

	if link != nil {
		if err := m.openWatch(*link); err != nil {
			return Model{}, err
		}
	}
	return m, nil
}

// openWatch creates a playback session and switches to the watch view
func (m *Model) openWatch(link DeepLink) error {
	sess, err := session.New(session.Options{
		ContentType: link.ContentType,
		ContentID:   link.ContentID,
		Season:      link.Season,
		Episode:     link.Episode,
		ServerIndex: link.ServerIndex,
		Registry:    m.deps.Registry,
		Gate:        m.deps.Gate,
		Metadata:    m.deps.Metadata,
		Store:       m.deps.Store,
		Logger:      m.deps.Logger,
	})
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	m.watch = watch.New(sess, m.deps.Clip)
	m.current = viewWatch
	return nil
}

func (m Model) Init() tea.Cmd {
	if m.current == viewWatch {
		return m.watch.Init()
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case common.HistorySelectedMsg:
		link := DeepLink{
			ContentType: types.ContentType(msg.ContentType),
			ContentID:   msg.ContentID,
			Season:      msg.Season,
			Episode:     msg.Episode,
		}
		if err := m.openWatch(link); err != nil {
			m.status = err.Error()
			return m, nil
		}
		return m, m.watch.Init()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.closeWatch()
			return m, tea.Quit
		case "q":
			if m.current == viewHome && !m.home.IsInputActive() {
				return m, tea.Quit
			}
			if m.current == viewWatch && !m.watchInputActive() {
				m.leaveWatch()
				return m, nil
			}
		case "esc":
			// esc inside a view first unwinds filters and prompts; the
			// inner models own that, so only a bare home esc quits
			if m.current == viewHome && !m.home.IsInputActive() {
				return m, tea.Quit
			}
		}
	}

	var cmd tea.Cmd
	switch m.current {
	case viewHome:
		m.home, cmd = m.home.Update(msg)
	case viewWatch:
		m.watch, cmd = m.watch.Update(msg)
	}
	return m, cmd
}

func (m *Model) watchInputActive() bool {
	// While a text prompt has focus, q is literal input
	return m.watch.InputActive()
}

func (m *Model) leaveWatch() {
	m.closeWatch()
	m.current = viewHome
	m.home.SetEntries(m.deps.Store.History())
}

func (m *Model) closeWatch() {
	if m.current == viewWatch {
		m.watch.Close()
	}
}

func (m Model) View() string {
	var body string
	switch m.current {
	case viewHome:
		body = m.home.View()
	case viewWatch:
		body = m.watch.View()
	}

	if m.status != "" {
		body += "\n" + styles.ErrorStyle.Render(m.status)
	}
	return body
}

// Run starts the program and blocks until the user quits
func Run(deps Deps, link *DeepLink) error {
	model, err := New(deps, link)
	if err != nil {
		return err
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui crashed: %w", err)
	}
	return nil
}
