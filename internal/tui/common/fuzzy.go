package common

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"github.com/amberpine/flicker/internal/tui/styles"
)

// Filter is the incremental list filter shared by the server and episode
// pickers. It has three states: inactive, editing (keys go to the input)
// and locked (filter applied, action keys work on the narrowed list).
type Filter struct {
	input  textinput.Model
	active bool
	locked bool
	query  string
}

func NewFilter() *Filter {
	ti := textinput.New()
	ti.Placeholder = "Type to filter..."
	ti.Prompt = ""
	ti.CharLimit = 200
	ti.TextStyle = styles.MetadataStyle
	ti.PlaceholderStyle = styles.MetadataStyle

	return &Filter{input: ti}
}

// Activate switches to editing mode with an empty query
func (f *Filter) Activate() tea.Cmd {
	f.active = true
	f.locked = false
	f.query = ""
	f.input.SetValue("")
	f.input.Focus()
	return textinput.Blink
}

// Deactivate clears the filter entirely
func (f *Filter) Deactivate() {
	f.active = false
	f.locked = false
	f.query = ""
	f.input.SetValue("")
	f.input.Blur()
}

// Lock stops editing while keeping the filter applied
func (f *Filter) Lock() {
	if f.active {
		f.locked = true
		f.input.Blur()
	}
}

// Unlock resumes editing
func (f *Filter) Unlock() tea.Cmd {
	if !f.active {
		return nil
	}
	f.locked = false
	f.input.Focus()
	return textinput.Blink
}

func (f *Filter) IsActive() bool { return f.active }
func (f *Filter) IsLocked() bool { return f.locked }
func (f *Filter) Query() string  { return f.query }

// Update feeds key events to the input while editing
func (f *Filter) Update(msg tea.Msg) tea.Cmd {
	if !f.active || f.locked {
		return nil
	}

	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	f.query = f.input.Value()
	return cmd
}

func (f *Filter) View() string {
	if !f.active {
		return ""
	}

	label := styles.MetadataStyle.Render("Filter: ")
	bar := styles.ItemTitleStyle.Render("┃")

	if f.locked {
		query := styles.ItemTitleStyle.Render(f.query)
		hint := styles.HelpStyle.Render(" (locked • / to edit • esc to clear)")
		return label + bar + " " + query + hint
	}

	hint := styles.HelpStyle.Render(" (esc to lock)")
	return label + bar + " " + f.input.View() + hint
}

func (f *Filter) SetWidth(width int) {
	f.input.Width = width - 20
}

// Match returns the indices of candidates matching the query, best match
// first. Without an active query every index is returned in order.
func (f *Filter) Match(candidates []string) []int {
	if !f.active || f.query == "" {
		indices := make([]int, len(candidates))
		for i := range indices {
			indices[i] = i
		}
		return indices
	}

	matches := fuzzy.Find(f.query, candidates)
	indices := make([]int, len(matches))
	for i, m := range matches {
		indices[i] = m.Index
	}
	return indices
}
