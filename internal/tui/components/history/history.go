package history

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/amberpine/flicker/internal/store"
	"github.com/amberpine/flicker/internal/tui/common"
	"github.com/amberpine/flicker/internal/tui/styles"
	"github.com/amberpine/flicker/internal/tui/utils"
)

// Model is the continue-watching list shown on the home view, most
// recent first
type Model struct {
	entries      []store.HistoryEntry
	currentIndex int
	width        int
	height       int
	filter       *common.Filter
}

func New() Model {
	return Model{filter: common.NewFilter()}
}

func (m *Model) SetEntries(entries []store.HistoryEntry) {
	m.entries = entries
	if m.currentIndex >= len(entries) {
		m.currentIndex = 0
	}
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
		if m.filter.IsActive() && !m.filter.IsLocked() {
			switch msg.String() {
			case "esc":
				m.filter.Lock()
				return m, nil
			case "enter":
				return m, m.selectCurrent()
			}
			cmd := m.filter.Update(msg)
			m.currentIndex = 0
			return m, cmd
		}

		switch msg.String() {
		case "/":
			m.currentIndex = 0
			return m, m.filter.Activate()
		case "esc":
			if m.filter.IsActive() {
				m.filter.Deactivate()
				m.currentIndex = 0
			}
		case "up", "k":
			if m.currentIndex > 0 {
				m.currentIndex--
			}
		case "down", "j":
			if m.currentIndex < len(m.filteredIndices())-1 {
				m.currentIndex++
			}
		case "enter":
			return m, m.selectCurrent()
		}
	}
	return m, nil
}

func (m Model) selectCurrent() tea.Cmd {
	indices := m.filteredIndices()
	if len(indices) == 0 || m.currentIndex >= len(indices) {
		return nil
	}

	entry := m.entries[indices[m.currentIndex]]
	return func() tea.Msg {
		return common.HistorySelectedMsg{
			ContentID:   entry.ContentID,
			ContentType: entry.ContentType,
			Season:      entry.LastSeason,
			Episode:     entry.LastEpisode,
		}
	}
}

func (m Model) filteredIndices() []int {
	titles := make([]string, len(m.entries))
	for i, e := range m.entries {
		titles[i] = e.Title
	}
	return m.filter.Match(titles)
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(styles.HeaderStyle.Render("Continue Watching"))
	b.WriteString("\n")

	if fv := m.filter.View(); fv != "" {
		b.WriteString(fv)
		b.WriteString("\n\n")
	}

	indices := m.filteredIndices()
	if len(indices) == 0 {
		b.WriteString(styles.MetadataStyle.Render("Nothing here yet. Play something."))
		return b.String()
	}

	for pos, idx := range indices {
		e := m.entries[idx]

		title := styles.ItemTitleStyle.Render(utils.Truncate(e.Title, 60))
		var meta []string
		if e.ContentType == "tv" && e.LastSeason > 0 {
			meta = append(meta, fmt.Sprintf("S%d E%d", e.LastSeason, e.LastEpisode))
		}
		if !e.WatchedAt.IsZero() {
			meta = append(meta, humanize.Time(e.WatchedAt))
		}

		row := title
		if len(meta) > 0 {
			row += "\n" + styles.MetadataStyle.Render(strings.Join(meta, " • "))
		}

		style := styles.ItemStyle
		if pos == m.currentIndex {
			style = styles.SelectedItemStyle
		}
		b.WriteString(style.Render(row))
		b.WriteString("\n")
	}

	b.WriteString(styles.HelpStyle.Render("enter resume • / filter • q quit"))
	return b.String()
}
