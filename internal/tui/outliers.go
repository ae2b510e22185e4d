package tui

import (
	"context"
	"fmt"
	"strings"

	"fitlake/internal/outlier"
	"fitlake/internal/service"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

// OutliersModel is the set outlier analysis screen model
type OutliersModel struct {
	analysisSvc *service.AnalysisService
	reports     []*outlier.Report
	loading     bool
	err         error
	cursor      int

	// Detail view
	showDetail bool
	viewport   viewport.Model
	ready      bool
	width      int
	height     int
}

// NewOutliersModel creates a new outliers model
func NewOutliersModel(as *service.AnalysisService) OutliersModel {
	return OutliersModel{
		analysisSvc: as,
		loading:     true,
	}
}

// Init initializes the outliers screen
func (m OutliersModel) Init() tea.Cmd {
	return m.loadReports
}

type reportsLoadedMsg struct {
	reports []*outlier.Report
	err     error
}

func (m OutliersModel) loadReports() tea.Msg {
	reports, err := m.analysisSvc.FindOutliers(context.Background(), "")
	return reportsLoadedMsg{reports: reports, err: err}
}

// Update handles messages
func (m OutliersModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case reportsLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.reports = msg.reports
		m.cursor = 0

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-6)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 6
		}
		if m.showDetail {
			m.viewport.SetContent(m.renderDetail())
		}

	case tea.KeyMsg:
		if m.showDetail {
			switch msg.String() {
			case "esc":
				m.showDetail = false
				return m, nil
			}
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.reports)-1 {
				m.cursor++
			}
		case "r":
			m.loading = true
			return m, m.loadReports
		case "enter":
			if len(m.reports) > 0 && m.ready {
				m.showDetail = true
				m.viewport.SetContent(m.renderDetail())
				m.viewport.GotoTop()
			}
		}
	}
	return m, nil
}

// View renders the outliers screen
func (m OutliersModel) View() string {
	if m.loading {
		return "\n  Analyzing set history..."
	}
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if m.showDetail {
		footer := statusStyle.Render("  esc: back to list  j/k or arrows: scroll")
		return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), footer)
	}

	var sections []string
	title := cardTitleStyle.Render(fmt.Sprintf("Set Outliers (%d exercises flagged)", len(m.reports)))
	sections = append(sections, title)

	if len(m.reports) == 0 {
		sections = append(sections, "\n  No outliers found. Either the log is clean or no workouts are synced yet.")
		sections = append(sections, statusStyle.Render("\n  r: re-analyze"))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	header := tableHeaderStyle.Render(fmt.Sprintf("   %-28s  %8s  %8s  %10s", "Exercise", "Sets", "Flagged", "Median reps"))
	sections = append(sections, header)

	for i, r := range m.reports {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		row := fmt.Sprintf("%s%-28s  %8d  %8d  %10.1f",
			cursor, truncate(r.Exercise, 28), r.TotalSets, r.OutlierCount(), r.GlobalMedianReps)
		if i == m.cursor {
			sections = append(sections, tableSelectedStyle.Render(row))
		} else {
			sections = append(sections, tableRowStyle.Render(row))
		}
	}

	sections = append(sections, statusStyle.Render("\n  j/k: navigate  enter: findings  r: re-analyze"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m OutliersModel) renderDetail() string {
	if m.cursor >= len(m.reports) {
		return "No data"
	}
	r := m.reports[m.cursor]

	var sections []string
	sections = append(sections, cardTitleStyle.Render(r.Exercise))
	sections = append(sections, fmt.Sprintf("  %d sets, %d flagged, median %.1f reps", r.TotalSets, r.OutlierCount(), r.GlobalMedianReps))

	if chart := renderWeightChart(r.Chart); chart != "" {
		sections = append(sections, "")
		sections = append(sections, chart)
	}

	sections = append(sections, "")
	for _, f := range r.Findings {
		flagStyle := warningStyle
		if f.Flag == outlier.FlagWeightHigh || f.Flag == outlier.FlagRepsHigh {
			flagStyle = errorStyle
		}
		sections = append(sections, fmt.Sprintf("  %s  %s", flagStyle.Render(string(f.Flag)), f.Set.Date.Format("2006-01-02")))
		sections = append(sections, helpDescStyle.Render("    "+f.Reason))
		sections = append(sections, helpDescStyle.Render(fmt.Sprintf("    suggested: %.1f", f.SuggestedValue)))
		sections = append(sections, "")
	}

	return strings.Join(sections, "\n")
}

// renderWeightChart plots the weight history with the local median where
// it is defined.
func renderWeightChart(points []outlier.ChartPoint) string {
	if len(points) < 2 {
		return ""
	}
	data := make([]float64, len(points))
	for i, p := range points {
		data[i] = p.Weight
	}
	return asciigraph.Plot(data,
		asciigraph.Height(8),
		asciigraph.Width(60),
		asciigraph.Precision(1),
		asciigraph.Caption("weight per set (kg)"),
	)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
