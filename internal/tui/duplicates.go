package tui

import (
	"context"
	"fmt"
	"strings"

	"fitlake/internal/dedup"
	"fitlake/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// mergeFields is the order fields are shown in the resolve view.
var mergeFields = []dedup.Field{
	dedup.FieldName,
	dedup.FieldType,
	dedup.FieldStartTime,
	dedup.FieldDuration,
	dedup.FieldDistance,
	dedup.FieldCalories,
	dedup.FieldHeartRate,
}

type duplicatesMode int

const (
	modeList duplicatesMode = iota
	modeResolve
	modeOutcome
)

// DuplicatesModel is the duplicate detection and merge screen model
type DuplicatesModel struct {
	dedupSvc *service.DedupService

	mode    duplicatesMode
	pairs   []dedup.Pair
	loading bool
	err     error
	cursor  int

	// Resolve state
	pair         dedup.Pair
	survivorSide dedup.Side
	decision     dedup.Decision
	fieldCursor  int
	merging      bool
	outcome      *service.MergeOutcome
	mergeErr     error
}

// NewDuplicatesModel creates a new duplicates model
func NewDuplicatesModel(ds *service.DedupService) DuplicatesModel {
	return DuplicatesModel{
		dedupSvc: ds,
		loading:  true,
	}
}

// Init initializes the duplicates screen
func (m DuplicatesModel) Init() tea.Cmd {
	return m.loadPairs
}

// resolving reports whether the screen owns the keyboard.
func (m DuplicatesModel) resolving() bool {
	return m.mode != modeList || m.merging
}

type pairsLoadedMsg struct {
	pairs []dedup.Pair
	err   error
}

func (m DuplicatesModel) loadPairs() tea.Msg {
	pairs, err := m.dedupSvc.FindDuplicates(context.Background())
	return pairsLoadedMsg{pairs: pairs, err: err}
}

type mergeDoneMsg struct {
	outcome *service.MergeOutcome
	err     error
}

// Update handles messages
func (m DuplicatesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case pairsLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.pairs = msg.pairs
		m.cursor = 0

	case mergeDoneMsg:
		m.merging = false
		m.mode = modeOutcome
		m.outcome = msg.outcome
		m.mergeErr = msg.err

	case tea.KeyMsg:
		switch m.mode {
		case modeList:
			return m.updateList(msg)
		case modeResolve:
			return m.updateResolve(msg)
		case modeOutcome:
			switch msg.String() {
			case "enter", "esc":
				m.mode = modeList
				m.loading = true
				return m, m.loadPairs
			}
		}
	}
	return m, nil
}

func (m DuplicatesModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.pairs)-1 {
			m.cursor++
		}
	case "r":
		m.loading = true
		return m, m.loadPairs
	case "enter":
		if len(m.pairs) > 0 {
			m.pair = m.pairs[m.cursor]
			// Preselect the richer side as survivor; the user can swap.
			m.survivorSide = m.pair.RicherSide()
			m.decision = dedup.Decision{}
			m.fieldCursor = 0
			m.outcome = nil
			m.mergeErr = nil
			m.mode = modeResolve
		}
	}
	return m, nil
}

func (m DuplicatesModel) updateResolve(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.merging {
		return m, nil
	}

	switch msg.String() {
	case "esc":
		m.mode = modeList
	case "up", "k":
		if m.fieldCursor > 0 {
			m.fieldCursor--
		}
	case "down", "j":
		if m.fieldCursor < len(mergeFields)-1 {
			m.fieldCursor++
		}
	case "a":
		m.decision[mergeFields[m.fieldCursor]] = dedup.SideA
	case "b":
		m.decision[mergeFields[m.fieldCursor]] = dedup.SideB
	case " ":
		// Clear the choice: the survivor keeps its own value.
		delete(m.decision, mergeFields[m.fieldCursor])
	case "t":
		if m.survivorSide == dedup.SideA {
			m.survivorSide = dedup.SideB
		} else {
			m.survivorSide = dedup.SideA
		}
	case "enter":
		m.merging = true
		return m, m.runMerge
	}
	return m, nil
}

func (m DuplicatesModel) runMerge() tea.Msg {
	survivorID, loserID := m.pair.A.ActivityID, m.pair.B.ActivityID
	if m.survivorSide == dedup.SideB {
		survivorID, loserID = loserID, survivorID
	}
	outcome, err := m.dedupSvc.ResolveMerge(context.Background(), survivorID, loserID, m.decision)
	return mergeDoneMsg{outcome: outcome, err: err}
}

// View renders the duplicates screen
func (m DuplicatesModel) View() string {
	if m.loading {
		return "\n  Scanning for duplicate activities..."
	}
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	switch m.mode {
	case modeResolve:
		return m.viewResolve()
	case modeOutcome:
		return m.viewOutcome()
	default:
		return m.viewList()
	}
}

func (m DuplicatesModel) viewList() string {
	var sections []string

	title := cardTitleStyle.Render(fmt.Sprintf("Duplicate Activities (%d pairs)", len(m.pairs)))
	sections = append(sections, title)

	if len(m.pairs) == 0 {
		sections = append(sections, "\n  No overlapping activities found.")
		sections = append(sections, statusStyle.Render("\n  r: rescan"))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	header := tableHeaderStyle.Render(fmt.Sprintf("   %-19s  %-24s  %-24s", "Start", "A", "B"))
	sections = append(sections, header)

	for i, p := range m.pairs {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		row := fmt.Sprintf("%s%-19s  %-24s  %-24s",
			cursor,
			p.A.Start.Format("2006-01-02 15:04"),
			sideLabel(p.A),
			sideLabel(p.B),
		)
		if i == m.cursor {
			sections = append(sections, tableSelectedStyle.Render(row))
		} else {
			sections = append(sections, tableRowStyle.Render(row))
		}
	}

	sections = append(sections, statusStyle.Render("\n  j/k: navigate  enter: resolve  r: rescan"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func sideLabel(c dedup.Candidate) string {
	name := c.Name
	if name == "" {
		name = fmt.Sprintf("activity %d", c.ActivityID)
	}
	if len(name) > 18 {
		name = name[:17] + "…"
	}
	return fmt.Sprintf("%s (%dd)", name, c.DetailCount)
}

func (m DuplicatesModel) viewResolve() string {
	var sections []string

	title := cardTitleStyle.Render(fmt.Sprintf("Resolve Merge: %d vs %d", m.pair.A.ActivityID, m.pair.B.ActivityID))
	sections = append(sections, title)

	survivor, loser := m.pair.A, m.pair.B
	if m.survivorSide == dedup.SideB {
		survivor, loser = loser, survivor
	}
	sections = append(sections, fmt.Sprintf("  Survivor: %s  (activity %d, %d detail records)",
		successStyle.Render(string(m.survivorSide)), survivor.ActivityID, survivor.DetailCount))
	sections = append(sections, fmt.Sprintf("  Deleted:  activity %d, %d detail records",
		loser.ActivityID, loser.DetailCount))
	sections = append(sections, "")

	for i, field := range mergeFields {
		cursor := "  "
		if i == m.fieldCursor {
			cursor = "> "
		}
		choice := "survivor"
		if side, ok := m.decision[field]; ok {
			choice = "side " + string(side)
		}
		row := fmt.Sprintf("%s%-12s  %s", cursor, field, choice)
		if i == m.fieldCursor {
			sections = append(sections, tableSelectedStyle.Render(row))
		} else {
			sections = append(sections, tableRowStyle.Render(row))
		}
	}

	if m.merging {
		sections = append(sections, statusStyle.Render("\n  Merging..."))
	} else {
		sections = append(sections, statusStyle.Render("\n  a/b: choose side  space: keep survivor's  t: swap survivor  enter: merge  esc: cancel"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m DuplicatesModel) viewOutcome() string {
	var lines []string

	lines = append(lines, cardTitleStyle.Render("Merge Result"))

	if m.mergeErr != nil {
		lines = append(lines, errorStyle.Render(fmt.Sprintf("\n  Merge failed: %v", m.mergeErr)))
		lines = append(lines, statusStyle.Render("\n  enter/esc: back to list"))
		return strings.Join(lines, "\n")
	}

	o := m.outcome
	lines = append(lines, "")
	lines = append(lines, "  "+outcomeLine("Survivor updated", o.SurvivorUpdated))
	if o.SurvivorRenamedRemotely {
		lines = append(lines, "  "+outcomeLine("Survivor renamed on platform", true))
	}
	lines = append(lines, "  "+outcomeLine("Loser deleted locally", o.LoserDeletedLocally))
	lines = append(lines, "  "+outcomeLine("Loser deleted on platform", o.LoserDeletedRemotely))
	if o.RemoteError != "" {
		lines = append(lines, warningStyle.Render(fmt.Sprintf("  Platform deletion: %s", o.RemoteError)))
		lines = append(lines, statusStyle.Render("  The local lake is consistent; delete the activity on the platform manually."))
	}
	lines = append(lines, statusStyle.Render("\n  enter/esc: back to list"))

	return strings.Join(lines, "\n")
}

func outcomeLine(label string, ok bool) string {
	if ok {
		return successStyle.Render("✓ " + label)
	}
	return warningStyle.Render("✗ " + label)
}
