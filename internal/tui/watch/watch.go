package watch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/browser"

	"github.com/amberpine/flicker/internal/clipboard"
	"github.com/amberpine/flicker/internal/session"
	"github.com/amberpine/flicker/internal/tui/common"
	episodescomp "github.com/amberpine/flicker/internal/tui/components/episodes"
	serverscomp "github.com/amberpine/flicker/internal/tui/components/servers"
	"github.com/amberpine/flicker/internal/tui/styles"
	"github.com/amberpine/flicker/pkg/types"
)

type pane int

const (
	paneServers pane = iota
	paneEpisodes
	panePlayer
)

// controlsState is pushed from the lifecycle's timer goroutine into the
// update loop
type controlsState struct {
	fullscreen bool
	visible    bool
}

// Model is the watch view: server picker, episode picker and the player
// pane, all driven by one playback session
type Model struct {
	sess      *session.Session
	lifecycle *session.ControlsLifecycle
	display   *termDisplay
	clip      clipboard.Service

	servers  serverscomp.Model
	episodes episodescomp.Model

	focus pane

	passwordInput  textinput.Model
	passwordFor    int
	passwordActive bool

	controls controlsState
	stateCh  chan controlsState

	status string
	width  int
	height int
}

// New builds the watch view around an already created session
func New(sess *session.Session, clip clipboard.Service) Model {
	pw := textinput.New()
	pw.Placeholder = "Password"
	pw.EchoMode = textinput.EchoPassword
	pw.CharLimit = 100

	display := newTermDisplay()
	stateCh := make(chan controlsState, 8)

	lifecycle := session.NewControlsLifecycle(display, session.LifecycleOptions{
		OnChange: func(fullscreen, visible bool) {
			select {
			case stateCh <- controlsState{fullscreen, visible}:
			default:
			}
		},
	})

	m := Model{
		sess:          sess,
		lifecycle:     lifecycle,
		display:       display,
		clip:          clip,
		servers:       serverscomp.New(sess.Servers()),
		episodes:      episodescomp.New(),
		passwordInput: pw,
		stateCh:       stateCh,
		controls:      controlsState{visible: true},
	}
	_, active := sess.ActiveServer()
	m.servers.SetActive(active)
	m.servers.SetUnlocked(m.unlockedServers())
	if sess.ContentType() == types.ContentTV {
		m.focus = paneEpisodes
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.bootstrapCmd(), m.waitControls())
}

// Close tears down playback state when navigating away. The lifecycle
// forces fullscreen off exactly once.
func (m *Model) Close() {
	m.lifecycle.Close()
	m.sess.StopPlayback()
}

func (m Model) bootstrapCmd() tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		sess.Bootstrap(ctx)
		return common.BootstrapDoneMsg{}
	}
}

// loadEpisodesCmd starts an episode-list fetch for the current season.
// The generation token travels with the result so stale answers get
// dropped on commit.
func (m Model) loadEpisodesCmd() tea.Cmd {
	sess := m.sess
	gen, seasonNum := sess.BeginEpisodeLoad()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		episodes, err := sess.FetchEpisodes(ctx, seasonNum)
		return common.EpisodesLoadedMsg{Gen: gen, Episodes: episodes, Err: err}
	}
}

func (m Model) waitControls() tea.Cmd {
	ch := m.stateCh
	return func() tea.Msg {
		return <-ch
	}
}

func (m Model) startPlaybackCmd() tea.Cmd {
	frame, err := m.sess.StartPlayback()
	if err != nil {
		return statusCmd(playbackErrorText(err))
	}
	url := frame.URL
	return func() tea.Msg {
		return common.PlaybackOpenedMsg{Err: browser.OpenURL(url)}
	}
}

func statusCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return common.StatusMsg{Text: text}
	}
}

func playbackErrorText(err error) string {
	switch {
	case errors.Is(err, session.ErrServerLocked):
		return "Server is locked"
	case errors.Is(err, session.ErrUnsupportedTitle):
		return "This server cannot play this title"
	default:
		return "Playback failed: " + err.Error()
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		var cmds []tea.Cmd
		var cmd tea.Cmd
		m.servers, cmd = m.servers.Update(msg)
		cmds = append(cmds, cmd)
		m.episodes, cmd = m.episodes.Update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)

	case controlsState:
		m.controls = msg
		return m, m.waitControls()

	case common.BootstrapDoneMsg:
		m.episodes.SetSeasons(m.sess.Seasons())
		if m.sess.ContentType() == types.ContentTV {
			m.episodes.SetSeason(m.sess.Season())
			m.episodes.SetActive(m.sess.Episode())
			return m, m.loadEpisodesCmd()
		}
		return m, nil

	case common.EpisodesLoadedMsg:
		if m.sess.CommitEpisodes(msg.Gen, msg.Episodes, msg.Err) {
			m.episodes.SetEpisodes(m.sess.Episodes())
			m.episodes.SetActive(m.sess.Episode())
			if msg.Err != nil {
				m.status = "Failed to load episodes"
			}
		}
		return m, nil

	case common.ServerSelectedMsg:
		return m.handleServerSelected(msg.Index)

	case common.SeasonSelectedMsg:
		m.sess.SelectSeason(msg.Season)
		m.episodes.SetSeason(msg.Season)
		m.episodes.SetActive(m.sess.Episode())
		return m, m.loadEpisodesCmd()

	case common.EpisodeSelectedMsg:
		if err := m.sess.SelectEpisode(msg.Episode); err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.episodes.SetActive(msg.Episode)
		return m, m.startPlaybackCmd()

	case common.PlaybackOpenedMsg:
		if msg.Err != nil {
			m.status = "Failed to open browser: " + msg.Err.Error()
		} else {
			m.status = "Playing in browser"
		}
		return m, nil

	case common.StatusMsg:
		m.status = msg.Text
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleServerSelected(index int) (Model, tea.Cmd) {
	err := m.sess.SelectServer(index)
	if errors.Is(err, session.ErrServerLocked) {
		m.passwordActive = true
		m.passwordFor = index
		m.passwordInput.SetValue("")
		return m, m.passwordInput.Focus()
	}
	if err != nil {
		m.status = err.Error()
		return m, nil
	}

	_, active := m.sess.ActiveServer()
	m.servers.SetActive(active)
	m.status = ""
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.passwordActive {
		return m.handlePasswordKey(msg)
	}

	// Any keypress counts as activity for the controls overlay
	if m.controls.fullscreen {
		m.lifecycle.Activity()
	}

	inputActive := (m.focus == paneServers && m.servers.IsInputActive()) ||
		(m.focus == paneEpisodes && m.episodes.IsInputActive())

	if !inputActive {
		switch msg.String() {
		case "tab":
			m.focus = m.nextPane()
			return m, nil
		case "f":
			return m, m.toggleFullscreenCmd()
		case "p":
			if m.sess.PlayerStarted() {
				m.sess.StopPlayback()
				m.status = "Stopped"
				return m, nil
			}
			return m, m.startPlaybackCmd()
		case "s":
			m.sess.ToggleSandbox()
			if m.sess.SandboxEnabled() {
				m.status = "Sandbox on"
			} else {
				m.status = "Sandbox off"
			}
			return m, nil
		case "c":
			return m, m.copyURLCmd()
		}
	}

	var cmd tea.Cmd
	switch m.focus {
	case paneServers:
		m.servers, cmd = m.servers.Update(msg)
	case paneEpisodes:
		m.episodes, cmd = m.episodes.Update(msg)
	}
	return m, cmd
}

func (m Model) handlePasswordKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.passwordActive = false
		m.passwordInput.Blur()
		return m, nil
	case "enter":
		password := m.passwordInput.Value()
		m.passwordActive = false
		m.passwordInput.Blur()

		if err := m.sess.UnlockServer(m.passwordFor, password); err != nil {
			if errors.Is(err, session.ErrWrongPassword) {
				m.status = "Incorrect password"
			} else {
				m.status = err.Error()
			}
			return m, nil
		}

		_, active := m.sess.ActiveServer()
		m.servers.SetActive(active)
		m.servers.SetUnlocked(m.unlockedServers())
		m.status = "Server unlocked"
		return m, nil
	}

	var cmd tea.Cmd
	m.passwordInput, cmd = m.passwordInput.Update(msg)
	return m, cmd
}

func (m Model) toggleFullscreenCmd() tea.Cmd {
	lifecycle := m.lifecycle
	return func() tea.Msg {
		if err := lifecycle.Toggle(); err != nil {
			return common.StatusMsg{Text: "Fullscreen failed: " + err.Error()}
		}
		return nil
	}
}

func (m Model) copyURLCmd() tea.Cmd {
	url, ok := m.sess.EmbedURL()
	if !ok {
		return statusCmd("No URL for this server and title")
	}
	clip := m.clip
	return func() tea.Msg {
		if clip == nil {
			return common.StatusMsg{Text: "Clipboard unavailable"}
		}
		if err := clip.Write(url); err != nil {
			return common.StatusMsg{Text: "Copy failed: " + err.Error()}
		}
		return common.StatusMsg{Text: "URL copied"}
	}
}

// InputActive reports whether a text prompt currently owns the keyboard
func (m Model) InputActive() bool {
	return m.passwordActive || m.servers.IsInputActive() || m.episodes.IsInputActive()
}

func (m Model) nextPane() pane {
	switch m.focus {
	case paneServers:
		if m.sess.ContentType() == types.ContentTV {
			return paneEpisodes
		}
		return panePlayer
	case paneEpisodes:
		return panePlayer
	default:
		return paneServers
	}
}

func (m Model) unlockedServers() map[string]bool {
	unlocked := map[string]bool{}
	for i, s := range m.sess.Servers() {
		if s.IsLocked && m.sess.ServerUnlocked(i) {
			unlocked[s.Name] = true
		}
	}
	return unlocked
}

func (m Model) View() string {
	if m.controls.fullscreen {
		return m.playerView(true)
	}

	title := m.sess.Title()
	if title == "" {
		title = m.sess.ContentID()
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(title))
	b.WriteString("\n\n")

	panels := []string{m.servers.View()}
	if m.sess.ContentType() == types.ContentTV {
		panels = append(panels, m.episodes.View())
	}
	panels = append(panels, m.playerView(false))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, panels...))

	if m.passwordActive {
		b.WriteString("\n")
		b.WriteString(styles.PopupStyle.Render(
			styles.ItemTitleStyle.Render("Server password") + "\n" + m.passwordInput.View()))
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(styles.FooterStyle.Render(m.status))
	}

	b.WriteString("\n")
	b.WriteString(styles.HelpStyle.Render("tab pane • p play/stop • f fullscreen • s sandbox • c copy url • q back"))
	return b.String()
}

func (m Model) playerView(fullscreen bool) string {
	var b strings.Builder
	srv, _ := m.sess.ActiveServer()

	if frame := m.sess.Frame(); frame != nil {
		b.WriteString(styles.ItemTitleStyle.Render("Now playing on " + srv.Name))
		b.WriteString("\n")
		b.WriteString(styles.URLStyle.Render(frame.URL))
		if len(frame.Sandbox) > 0 {
			b.WriteString("\n")
			b.WriteString(styles.SandboxBadgeStyle.Render("sandboxed: " + strings.Join(frame.Sandbox, " ")))
		}
	} else {
		b.WriteString(styles.MetadataStyle.Render("Player idle"))
		b.WriteString("\n")
		b.WriteString(styles.MetadataStyle.Render(fmt.Sprintf("Server: %s", srv.Name)))
	}

	if fullscreen {
		body := b.String()
		if m.controls.visible {
			body += "\n\n" + styles.ControlsOverlayStyle.Render("p stop • f exit fullscreen • c copy url")
		}
		return styles.AppStyle.Width(max(m.width-4, 20)).Render(body)
	}

	return styles.ItemStyle.Render(b.String())
}
