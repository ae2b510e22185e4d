package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HelpModel is the help screen model
type HelpModel struct{}

// NewHelpModel creates a new help model
func NewHelpModel() HelpModel {
	return HelpModel{}
}

// Init initializes the help screen
func (m HelpModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m, nil
}

// View renders the help screen
func (m HelpModel) View() string {
	var sections []string

	title := cardTitleStyle.Render("Keyboard Shortcuts")
	sections = append(sections, title)

	// Navigation section
	navSection := m.renderSection("Navigation", []keyHelp{
		{"1", "Duplicate activities"},
		{"2", "Set outliers"},
		{"3", "Time series"},
		{"4 or s", "Sync screen"},
		{"?", "Help (this screen)"},
		{"q", "Quit"},
		{"esc", "Back / close help"},
	})
	sections = append(sections, navSection)

	// Duplicates keys
	dupSection := m.renderSection("Duplicates", []keyHelp{
		{"j / k", "Move cursor"},
		{"enter", "Resolve the selected pair"},
		{"a / b", "Take the field value from side A or B"},
		{"space", "Keep the survivor's own value"},
		{"t", "Swap which activity survives"},
		{"r", "Rescan"},
	})
	sections = append(sections, dupSection)

	// Outliers / series keys
	listSection := m.renderSection("Outliers and Series", []keyHelp{
		{"j / k", "Move cursor"},
		{"enter", "Open detail view"},
		{"tab", "Switch activity / workout list (series)"},
		{"r", "Refresh / re-analyze"},
	})
	sections = append(sections, listSection)

	// Sync keys
	syncSection := m.renderSection("Sync Screen", []keyHelp{
		{"s / enter", "Start sync"},
	})
	sections = append(sections, syncSection)

	// Flag explanation
	flagSection := m.renderFlagHelp()
	sections = append(sections, flagSection)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

type keyHelp struct {
	key  string
	desc string
}

func (m HelpModel) renderSection(title string, keys []keyHelp) string {
	var lines []string

	lines = append(lines, "")
	lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#10B981")).Render(title))

	for _, k := range keys {
		lines = append(lines, "  "+RenderKeyHelp(k.key, k.desc))
	}

	return strings.Join(lines, "\n")
}

func (m HelpModel) renderFlagHelp() string {
	var lines []string

	lines = append(lines, "")
	lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#10B981")).Render("Flags Explained"))
	lines = append(lines, "")

	flags := []struct {
		name string
		desc string
	}{
		{"weight_high / weight_low", "Set weight far from the local median of nearby sets. Common causes: an extra digit, or pound/kilogram confusion."},
		{"reps_high", "Rep count far above the exercise's overall median, usually a trailing zero."},
		{"local median", "Median weight of up to 20 surrounding sets of the same exercise, needs at least 5 neighbors."},
		{"synthetic timeline", "Workout set/rest schedule estimated from set order and total duration. Not measured data."},
	}

	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	for _, f := range flags {
		lines = append(lines, "  "+helpKeyStyle.Render(f.name))
		lines = append(lines, "  "+mutedStyle.Render(f.desc))
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}
