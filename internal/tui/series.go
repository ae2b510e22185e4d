package tui

import (
	"context"
	"fmt"
	"strings"

	"fitlake/internal/series"
	"fitlake/internal/service"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

type seriesTab int

const (
	tabActivities seriesTab = iota
	tabWorkouts
)

// SeriesModel is the time-series screen: heart rate curves decoded from
// activity telemetry, and synthetic timelines for workouts that have none.
type SeriesModel struct {
	seriesSvc *service.SeriesService

	tab        seriesTab
	activities []service.ActivityInfo
	workouts   []service.WorkoutInfo
	loading    bool
	err        error
	cursor     int

	// Detail view
	showDetail bool
	viewport   viewport.Model
	ready      bool
	detail     string
}

// NewSeriesModel creates a new series model
func NewSeriesModel(ss *service.SeriesService) SeriesModel {
	return SeriesModel{
		seriesSvc: ss,
		loading:   true,
	}
}

// Init initializes the series screen
func (m SeriesModel) Init() tea.Cmd {
	return m.loadLists
}

type seriesListsLoadedMsg struct {
	activities []service.ActivityInfo
	workouts   []service.WorkoutInfo
	err        error
}

func (m SeriesModel) loadLists() tea.Msg {
	ctx := context.Background()
	activities, err := m.seriesSvc.ListDecodableActivities(ctx)
	if err != nil {
		return seriesListsLoadedMsg{err: err}
	}
	workouts, err := m.seriesSvc.ListWorkoutInfos(ctx)
	return seriesListsLoadedMsg{activities: activities, workouts: workouts, err: err}
}

type seriesDetailMsg struct {
	content string
	err     error
}

func (m SeriesModel) loadActivityDetail(info service.ActivityInfo) tea.Cmd {
	return func() tea.Msg {
		points, err := m.seriesSvc.DecodeActivitySeries(context.Background(), info.ActivityID)
		if err != nil {
			return seriesDetailMsg{err: err}
		}
		return seriesDetailMsg{content: renderActivitySeries(info, points)}
	}
}

func (m SeriesModel) loadWorkoutDetail(info service.WorkoutInfo) tea.Cmd {
	return func() tea.Msg {
		segments, err := m.seriesSvc.SynthesizeWorkoutTimeline(context.Background(), info.WorkoutID)
		if err != nil {
			return seriesDetailMsg{err: err}
		}
		return seriesDetailMsg{content: renderTimeline(info, segments)}
	}
}

// Update handles messages
func (m SeriesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case seriesListsLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.activities = msg.activities
		m.workouts = msg.workouts
		m.cursor = 0

	case seriesDetailMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.detail = msg.content
		if m.ready {
			m.showDetail = true
			m.viewport.SetContent(m.detail)
			m.viewport.GotoTop()
		}

	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-6)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 6
		}
		if m.showDetail {
			m.viewport.SetContent(m.detail)
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
		case "tab", "w":
			if m.tab == tabActivities {
				m.tab = tabWorkouts
			} else {
				m.tab = tabActivities
			}
			m.cursor = 0
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < m.listLen()-1 {
				m.cursor++
			}
		case "r":
			m.loading = true
			return m, m.loadLists
		case "enter":
			if m.tab == tabActivities && m.cursor < len(m.activities) {
				return m, m.loadActivityDetail(m.activities[m.cursor])
			}
			if m.tab == tabWorkouts && m.cursor < len(m.workouts) {
				return m, m.loadWorkoutDetail(m.workouts[m.cursor])
			}
		}
	}
	return m, nil
}

func (m SeriesModel) listLen() int {
	if m.tab == tabActivities {
		return len(m.activities)
	}
	return len(m.workouts)
}

// View renders the series screen
func (m SeriesModel) View() string {
	if m.loading {
		return "\n  Loading..."
	}
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if m.showDetail {
		footer := statusStyle.Render("  esc: back to list  j/k or arrows: scroll")
		return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), footer)
	}

	var sections []string

	tabLabel := "Activities with telemetry"
	if m.tab == tabWorkouts {
		tabLabel = "Workouts (synthetic timeline)"
	}
	sections = append(sections, cardTitleStyle.Render(fmt.Sprintf("Time Series: %s", tabLabel)))

	if m.listLen() == 0 {
		sections = append(sections, "\n  Nothing here yet. Sync some data first.")
		sections = append(sections, statusStyle.Render("\n  tab: switch list  r: refresh"))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	if m.tab == tabActivities {
		header := tableHeaderStyle.Render(fmt.Sprintf("   %-16s  %-28s  %-12s", "Start", "Name", "Type"))
		sections = append(sections, header)
		for i, a := range m.activities {
			cursor := "  "
			if i == m.cursor {
				cursor = "> "
			}
			row := fmt.Sprintf("%s%-16s  %-28s  %-12s",
				cursor, a.Start.Format("2006-01-02 15:04"), truncate(a.Name, 28), a.TypeKey)
			if i == m.cursor {
				sections = append(sections, tableSelectedStyle.Render(row))
			} else {
				sections = append(sections, tableRowStyle.Render(row))
			}
		}
	} else {
		header := tableHeaderStyle.Render(fmt.Sprintf("   %-16s  %-28s  %8s", "Start", "Title", "Minutes"))
		sections = append(sections, header)
		for i, w := range m.workouts {
			cursor := "  "
			if i == m.cursor {
				cursor = "> "
			}
			row := fmt.Sprintf("%s%-16s  %-28s  %8.0f",
				cursor, w.Start.Format("2006-01-02 15:04"), truncate(w.Title, 28), w.DurationSec/60)
			if i == m.cursor {
				sections = append(sections, tableSelectedStyle.Render(row))
			} else {
				sections = append(sections, tableRowStyle.Render(row))
			}
		}
	}

	sections = append(sections, statusStyle.Render("\n  tab: switch list  j/k: navigate  enter: view  r: refresh"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderActivitySeries(info service.ActivityInfo, points []series.TimeSeriesPoint) string {
	var sections []string
	sections = append(sections, cardTitleStyle.Render(info.Name))
	sections = append(sections, fmt.Sprintf("  %d samples decoded", len(points)))

	curve := service.HeartRateCurve(points)
	if len(curve) >= 2 {
		sections = append(sections, "")
		sections = append(sections, asciigraph.Plot(curve,
			asciigraph.Height(10),
			asciigraph.Width(60),
			asciigraph.Precision(0),
			asciigraph.Caption("heart rate (bpm)"),
		))
	} else {
		sections = append(sections, helpDescStyle.Render("\n  No heart rate readings in this activity."))
	}

	return strings.Join(sections, "\n")
}

func renderTimeline(info service.WorkoutInfo, segments []series.TimelineSegment) string {
	var sections []string
	sections = append(sections, cardTitleStyle.Render(info.Title))
	sections = append(sections, helpDescStyle.Render("  Estimated timeline, not measured."))
	sections = append(sections, "")

	for _, seg := range segments {
		style := timelineRestStyle
		label := string(seg.Kind)
		switch seg.Kind {
		case series.SegmentActive:
			style = timelineActiveStyle
			label = fmt.Sprintf("%s %s set %d", seg.Kind, seg.Exercise, seg.SetIndex+1)
		case series.SegmentWarmup:
			style = timelineWarmupStyle
			label = fmt.Sprintf("%s %s set %d", seg.Kind, seg.Exercise, seg.SetIndex+1)
		}

		bar := strings.Repeat("█", barWidth(seg.DurationSec))
		sections = append(sections, fmt.Sprintf("  %7.0fs  %s %s",
			seg.StartSec, style.Render(bar), style.Render(label)))
	}

	return strings.Join(sections, "\n")
}

// barWidth maps a segment duration to a bar length, clamped to keep long
// rests readable.
func barWidth(durationSec float64) int {
	w := int(durationSec / 10)
	if w < 1 {
		w = 1
	}
	if w > 30 {
		w = 30
	}
	return w
}
