package episodes

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/amberpine/flicker/internal/metadata"
	"github.com/amberpine/flicker/internal/session"
	"github.com/amberpine/flicker/internal/tui/common"
	"github.com/amberpine/flicker/internal/tui/styles"
	"github.com/amberpine/flicker/internal/tui/utils"
)

// Model is the season and episode picker for series content. While a
// season's episode list is loading the list area shows a placeholder;
// the rest of the view stays interactive.
type Model struct {
	seasons       []metadata.Season
	episodes      []metadata.Episode
	currentSeason int
	activeEpisode int
	loading       bool
	currentIndex  int
	width         int
	height        int
	filter        *common.Filter
}

func New() Model {
	return Model{filter: common.NewFilter()}
}

func (m *Model) SetSeasons(seasons []metadata.Season) {
	m.seasons = seasons
}

// SetSeason switches the header and marks the episode list as pending
func (m *Model) SetSeason(season int) {
	m.currentSeason = season
	m.episodes = nil
	m.loading = true
	m.currentIndex = 0
	m.filter.Deactivate()
}

// SetEpisodes installs the loaded list for the current season
func (m *Model) SetEpisodes(episodes []metadata.Episode) {
	m.episodes = episodes
	m.loading = false
	m.currentIndex = 0
}

// SetActive highlights the episode playback currently uses
func (m *Model) SetActive(episode int) {
	m.activeEpisode = episode
}

func (m Model) IsInputActive() bool {
	return m.filter.IsActive() && !m.filter.IsLocked()
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.filter.SetWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		if m.filter.IsActive() {
			return m.updateFiltering(msg)
		}

		switch msg.String() {
		case "/":
			if !m.loading {
				m.currentIndex = 0
				return m, m.filter.Activate()
			}
		case "left", "h", "[":
			return m, m.stepSeason(-1)
		case "right", "l", "]":
			return m, m.stepSeason(1)
		case "up", "k":
			if m.currentIndex > 0 {
				m.currentIndex--
			}
		case "down", "j":
			if m.currentIndex < len(m.visibleEpisodes())-1 {
				m.currentIndex++
			}
		case "enter":
			return m, m.selectCurrent()
		}
	}
	return m, nil
}

func (m Model) updateFiltering(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.filter.IsLocked() {
		switch msg.String() {
		case "esc":
			m.filter.Deactivate()
			m.currentIndex = 0
		case "/":
			return m, m.filter.Unlock()
		case "up", "k":
			if m.currentIndex > 0 {
				m.currentIndex--
			}
		case "down", "j":
			if m.currentIndex < len(m.visibleEpisodes())-1 {
				m.currentIndex++
			}
		case "enter":
			return m, m.selectCurrent()
		}
		return m, nil
	}

	switch msg.String() {
	case "esc":
		m.filter.Lock()
		if max := len(m.visibleEpisodes()) - 1; m.currentIndex > max && max >= 0 {
			m.currentIndex = max
		}
		return m, nil
	case "enter":
		return m, m.selectCurrent()
	}

	cmd := m.filter.Update(msg)
	m.currentIndex = 0
	return m, cmd
}

// stepSeason emits a SeasonSelectedMsg for the season adjacent to the
// current one in catalog order
func (m Model) stepSeason(delta int) tea.Cmd {
	pos := -1
	for i, s := range m.seasons {
		if s.Number == m.currentSeason {
			pos = i
			break
		}
	}
	if pos < 0 {
		return nil
	}
	next := pos + delta
	if next < 0 || next >= len(m.seasons) {
		return nil
	}

	season := m.seasons[next].Number
	return func() tea.Msg {
		return common.SeasonSelectedMsg{Season: season}
	}
}

func (m Model) selectCurrent() tea.Cmd {
	visible := m.visibleEpisodes()
	if len(visible) == 0 || m.currentIndex >= len(visible) {
		return nil
	}

	episode := visible[m.currentIndex].Number
	return func() tea.Msg {
		return common.EpisodeSelectedMsg{Episode: episode}
	}
}

func (m Model) visibleEpisodes() []metadata.Episode {
	return session.FilterEpisodes(m.episodes, m.currentSeason, m.filter.Query())
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(styles.HeaderStyle.Render("Episodes"))
	b.WriteString("\n")
	b.WriteString(m.seasonTabs())
	b.WriteString("\n")

	if fv := m.filter.View(); fv != "" {
		b.WriteString(fv)
		b.WriteString("\n\n")
	}

	if m.loading {
		b.WriteString(styles.MetadataStyle.Render("Loading episodes..."))
		return b.String()
	}

	visible := m.visibleEpisodes()
	if len(visible) == 0 {
		b.WriteString(styles.MetadataStyle.Render("No episodes"))
		return b.String()
	}

	for pos, ep := range visible {
		title := styles.ItemTitleStyle.Render(fmt.Sprintf("%d. %s", ep.Number, ep.Name))
		if ep.Number == m.activeEpisode {
			title += styles.RecommendedBadgeStyle.Render(" ●")
		}

		row := title
		var meta []string
		if ep.Runtime > 0 {
			meta = append(meta, fmt.Sprintf("%dm", ep.Runtime))
		}
		if ep.AirDate != "" {
			meta = append(meta, ep.AirDate)
		}
		if len(meta) > 0 {
			row += "  " + styles.MetadataStyle.Render(strings.Join(meta, " • "))
		}
		if ep.Overview != "" && m.width > 40 {
			row += "\n" + styles.SynopsisStyle.Render(utils.ClampLines(ep.Overview, 2, m.width-10))
		}

		style := styles.ItemStyle
		if pos == m.currentIndex {
			style = styles.SelectedItemStyle
		}
		b.WriteString(style.Render(row))
		b.WriteString("\n")
	}

	b.WriteString(styles.HelpStyle.Render("enter play • h/l season • / search"))
	return b.String()
}

func (m Model) seasonTabs() string {
	if len(m.seasons) == 0 {
		return styles.MetadataStyle.Render(fmt.Sprintf("Season %d", m.currentSeason))
	}

	var tabs []string
	for _, s := range m.seasons {
		label := fmt.Sprintf("S%d", s.Number)
		if s.Number == m.currentSeason {
			tabs = append(tabs, styles.TitleStyle.Render(label))
		} else {
			tabs = append(tabs, styles.MetadataStyle.Render(label))
		}
	}
	return strings.Join(tabs, " ")
}
