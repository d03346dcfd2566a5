package servers

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	srv "github.com/amberpine/flicker/internal/servers"
	"github.com/amberpine/flicker/internal/tui/common"
	"github.com/amberpine/flicker/internal/tui/styles"
)

// Model is the server picker panel. The list order mirrors the catalog
// and never changes while the view is open.
type Model struct {
	servers      []srv.ServerDescriptor
	unlocked     map[string]bool
	activeIndex  int
	currentIndex int
	width        int
	height       int
	filter       *common.Filter
}

func New(list []srv.ServerDescriptor) Model {
	return Model{
		servers:  list,
		unlocked: map[string]bool{},
		filter:   common.NewFilter(),
	}
}

// SetActive marks which server playback currently uses
func (m *Model) SetActive(index int) {
	m.activeIndex = index
}

// SetUnlocked refreshes the unlock markers shown next to locked servers
func (m *Model) SetUnlocked(unlocked map[string]bool) {
	if unlocked == nil {
		unlocked = map[string]bool{}
	}
	m.unlocked = unlocked
}

// IsInputActive reports whether keys should go to the filter input
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
			m.currentIndex = 0
			return m, m.filter.Activate()
		case "up", "k":
			if m.currentIndex > 0 {
				m.currentIndex--
			}
		case "down", "j":
			if m.currentIndex < len(m.servers)-1 {
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
			return m, nil
		case "/":
			return m, m.filter.Unlock()
		case "up", "k":
			if m.currentIndex > 0 {
				m.currentIndex--
			}
			return m, nil
		case "down", "j":
			if max := len(m.filteredIndices()) - 1; m.currentIndex < max {
				m.currentIndex++
			}
			return m, nil
		case "enter":
			return m, m.selectCurrent()
		}
		return m, nil
	}

	switch msg.String() {
	case "esc":
		m.filter.Lock()
		m.clampCursor()
		return m, nil
	case "enter":
		return m, m.selectCurrent()
	}

	cmd := m.filter.Update(msg)
	m.currentIndex = 0
	return m, cmd
}

func (m *Model) clampCursor() {
	if max := len(m.filteredIndices()) - 1; m.currentIndex > max {
		m.currentIndex = max
	}
	if m.currentIndex < 0 {
		m.currentIndex = 0
	}
}

func (m Model) selectCurrent() tea.Cmd {
	indices := m.filteredIndices()
	if len(indices) == 0 || m.currentIndex >= len(indices) {
		return nil
	}
	index := indices[m.currentIndex]
	return func() tea.Msg {
		return common.ServerSelectedMsg{Index: index}
	}
}

func (m Model) filteredIndices() []int {
	names := make([]string, len(m.servers))
	for i, s := range m.servers {
		names[i] = s.Name
	}
	return m.filter.Match(names)
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(styles.HeaderStyle.Render("Servers"))
	b.WriteString("\n")

	if fv := m.filter.View(); fv != "" {
		b.WriteString(fv)
		b.WriteString("\n\n")
	}

	indices := m.filteredIndices()
	if len(indices) == 0 {
		b.WriteString(styles.MetadataStyle.Render("No servers match"))
		return b.String()
	}

	for pos, idx := range indices {
		s := m.servers[idx]

		title := styles.ItemTitleStyle.Render(s.Name)
		if idx == m.activeIndex {
			title += styles.RecommendedBadgeStyle.Render(" ●")
		}

		var badges []string
		if s.IsRecommended {
			badges = append(badges, styles.RecommendedBadgeStyle.Render("recommended"))
		}
		if s.HasSandboxSupport {
			badges = append(badges, styles.SandboxBadgeStyle.Render("sandbox"))
		}
		if s.HasAds {
			badges = append(badges, styles.AdsBadgeStyle.Render("ads"))
		}
		if s.IsLocked {
			if m.unlocked[s.Name] {
				badges = append(badges, styles.MetadataStyle.Render("unlocked"))
			} else {
				badges = append(badges, styles.LockedBadgeStyle.Render("locked"))
			}
		}

		row := title
		if len(badges) > 0 {
			row += "  " + strings.Join(badges, " ")
		}
		if s.Description != "" {
			row += "\n" + styles.MetadataStyle.Render(s.Description)
		}

		style := styles.ItemStyle
		if pos == m.currentIndex {
			style = styles.SelectedItemStyle
		}
		b.WriteString(style.Render(row))
		b.WriteString("\n")
	}

	b.WriteString(styles.HelpStyle.Render(fmt.Sprintf("%d servers • enter select • / filter", len(indices))))
	return b.String()
}
