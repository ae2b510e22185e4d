package tui

import (
	"fitlake/internal/service"
	"fitlake/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Screen identifiers
type Screen int

const (
	ScreenDuplicates Screen = iota
	ScreenOutliers
	ScreenSeries
	ScreenSync
	ScreenHelp
)

// App is the root Bubble Tea model
type App struct {
	screen     Screen
	prevScreen Screen

	// Screen models
	duplicates DuplicatesModel
	outliers   OutliersModel
	series     SeriesModel
	syncScreen SyncModel
	help       HelpModel

	// Services
	db          *store.Store
	dedupSvc    *service.DedupService
	analysisSvc *service.AnalysisService
	seriesSvc   *service.SeriesService
	syncSvc     *service.SyncService

	// Window dimensions
	width  int
	height int
}

// NewApp creates a new App with all dependencies
func NewApp(db *store.Store, dedupSvc *service.DedupService, analysisSvc *service.AnalysisService, seriesSvc *service.SeriesService, syncSvc *service.SyncService) *App {
	return &App{
		screen:      ScreenDuplicates,
		db:          db,
		dedupSvc:    dedupSvc,
		analysisSvc: analysisSvc,
		seriesSvc:   seriesSvc,
		syncSvc:     syncSvc,
		duplicates:  NewDuplicatesModel(dedupSvc),
		outliers:    NewOutliersModel(analysisSvc),
		series:      NewSeriesModel(seriesSvc),
		syncScreen:  NewSyncModel(syncSvc),
		help:        NewHelpModel(),
	}
}

// Init initializes the app
func (a *App) Init() tea.Cmd {
	return a.duplicates.Init()
}

// Update handles messages
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Global keybindings, unless a screen has captured input
		if !a.inputCaptured() {
			switch msg.String() {
			case "q", "ctrl+c":
				return a, tea.Quit
			case "1":
				a.screen = ScreenDuplicates
				a.duplicates = NewDuplicatesModel(a.dedupSvc)
				return a, a.duplicates.Init()
			case "2":
				a.screen = ScreenOutliers
				a.outliers = NewOutliersModel(a.analysisSvc)
				return a, a.outliers.Init()
			case "3":
				a.screen = ScreenSeries
				a.series = NewSeriesModel(a.seriesSvc)
				return a, a.series.Init()
			case "4", "s":
				if a.screen != ScreenSync {
					a.screen = ScreenSync
					return a, a.syncScreen.Init()
				}
				// Let 's' fall through to the sync screen when already there
			case "?":
				a.prevScreen = a.screen
				a.screen = ScreenHelp
				return a, nil
			case "esc":
				if a.screen == ScreenHelp {
					a.screen = a.prevScreen
					return a, nil
				}
			}
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case SyncCompleteMsg:
		// Refresh the duplicate list after sync
		a.screen = ScreenDuplicates
		a.duplicates = NewDuplicatesModel(a.dedupSvc)
		return a, a.duplicates.Init()
	}

	// Delegate to current screen
	var cmd tea.Cmd
	switch a.screen {
	case ScreenDuplicates:
		var m tea.Model
		m, cmd = a.duplicates.Update(msg)
		a.duplicates = m.(DuplicatesModel)
	case ScreenOutliers:
		var m tea.Model
		m, cmd = a.outliers.Update(msg)
		a.outliers = m.(OutliersModel)
	case ScreenSeries:
		var m tea.Model
		m, cmd = a.series.Update(msg)
		a.series = m.(SeriesModel)
	case ScreenSync:
		var m tea.Model
		m, cmd = a.syncScreen.Update(msg)
		a.syncScreen = m.(SyncModel)
	case ScreenHelp:
		var m tea.Model
		m, cmd = a.help.Update(msg)
		a.help = m.(HelpModel)
	}

	return a, cmd
}

// inputCaptured reports whether the active screen owns the keyboard: a
// running sync must not be interrupted and the merge flow uses most keys
// itself.
func (a *App) inputCaptured() bool {
	if a.screen == ScreenSync && a.syncScreen.syncing {
		return true
	}
	if a.screen == ScreenDuplicates && a.duplicates.resolving() {
		return true
	}
	return false
}

// View renders the app
func (a *App) View() string {
	header := a.renderHeader()
	nav := a.renderNav()

	var content string
	switch a.screen {
	case ScreenDuplicates:
		content = a.duplicates.View()
	case ScreenOutliers:
		content = a.outliers.View()
	case ScreenSeries:
		content = a.series.View()
	case ScreenSync:
		content = a.syncScreen.View()
	case ScreenHelp:
		content = a.help.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, nav, content)
}

func (a *App) renderHeader() string {
	return headerStyle.Render("Fitlake Activity Analyzer")
}

func (a *App) renderNav() string {
	items := []struct {
		key    string
		label  string
		screen Screen
	}{
		{"1", "Duplicates", ScreenDuplicates},
		{"2", "Outliers", ScreenOutliers},
		{"3", "Series", ScreenSeries},
		{"4", "Sync", ScreenSync},
		{"?", "Help", ScreenHelp},
	}

	var nav string
	for i, item := range items {
		if i > 0 {
			nav += "  "
		}

		label := "[" + item.key + "] " + item.label
		if a.screen == item.screen {
			nav += navActiveStyle.Render(label)
		} else {
			nav += navInactiveStyle.Render(label)
		}
	}

	nav += "  " + navInactiveStyle.Render("[q] Quit")

	return navStyle.Render(nav)
}

// SyncCompleteMsg is sent when sync finishes
type SyncCompleteMsg struct{}
