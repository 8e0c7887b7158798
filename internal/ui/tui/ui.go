package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zach-fau/codescope/internal/core/app"
	"github.com/zach-fau/codescope/internal/engine/bundle"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	cycleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	conflictStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

type item struct {
	title, desc string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title + i.desc }

type panelMode int

const (
	panelIssues panelMode = iota
	panelPackages
)

type model struct {
	issueList   list.Model
	packageList list.Model
	mode        panelMode

	cycles       []string
	conflicts    int
	packageCount int
	fileCount    int
	parseErrors  int
	savings      int64
	lastUpdate   time.Time
}

type updateMsg struct {
	result *app.Result
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab":
			if m.mode == panelIssues {
				m.mode = panelPackages
			} else {
				m.mode = panelIssues
			}
			return m, nil
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		width := msg.Width - h
		height := msg.Height - v - 8
		if height < 5 {
			height = 5
		}
		m.issueList.SetSize(width, height)
		m.packageList.SetSize(width, height)
	case updateMsg:
		m = m.applyResult(msg.result)
	}

	var cmd tea.Cmd
	if m.mode == panelIssues {
		m.issueList, cmd = m.issueList.Update(msg)
	} else {
		m.packageList, cmd = m.packageList.Update(msg)
	}
	return m, cmd
}

func (m model) applyResult(result *app.Result) model {
	if result == nil {
		return m
	}
	m.lastUpdate = time.Now()
	m.packageCount = result.Graph.NodeCount()
	m.fileCount = result.FilesScanned
	if result.Imports != nil {
		m.parseErrors = result.Imports.ParseErrorCount()
	}
	if result.Savings != nil {
		m.savings = result.Savings.TotalSavings
	}

	items := []list.Item{}
	m.cycles = m.cycles[:0]
	for _, cycle := range result.Graph.CycleDetails() {
		path := cycle.CyclePath()
		m.cycles = append(m.cycles, path)
		items = append(items, item{title: "Circular Dependency", desc: path})
	}
	conflicts := result.Graph.DetectVersionConflicts()
	m.conflicts = len(conflicts)
	for _, conflict := range conflicts {
		desc := ""
		for i, req := range conflict.Requirements {
			if i > 0 {
				desc += ", "
			}
			desc += fmt.Sprintf("%s (%s)", req.Version, req.RequiredBy)
		}
		items = append(items, item{
			title: "Version Conflict: " + conflict.Package,
			desc:  desc,
		})
	}
	if result.Savings != nil {
		for _, opp := range result.Savings.Opportunities {
			items = append(items, item{
				title: fmt.Sprintf("Savings: %s (%s)", opp.Package, bundle.FormatSize(opp.EstimatedSavings)),
				desc:  opp.Suggestion,
			})
		}
	}
	m.issueList.SetItems(items)

	packageItems := []list.Item{}
	for _, node := range result.Graph.AllNodes() {
		desc := fmt.Sprintf("type=%s depth=%d deps=%d dependents=%d",
			node.Type,
			node.Depth,
			len(result.Graph.Dependencies(node.Name)),
			len(result.Graph.Dependents(node.Name)),
		)
		if node.HasBundleSize {
			desc += " size=" + bundle.FormatSize(node.BundleSize)
		}
		packageItems = append(packageItems, item{title: node.Name, desc: desc})
	}
	m.packageList.SetItems(packageItems)

	return m
}

func (m model) View() string {
	status := statusStyle.Render(fmt.Sprintf("Last update: %v | %d files | %d packages",
		m.lastUpdate.Format("15:04:05"), m.fileCount, m.packageCount))

	var summary string
	if len(m.cycles) == 0 && m.conflicts == 0 {
		summary = successStyle.Render("Dependencies Clean")
	} else {
		summary = fmt.Sprintf("%s | %s",
			cycleStyle.Render(fmt.Sprintf("%d cycles", len(m.cycles))),
			conflictStyle.Render(fmt.Sprintf("%d conflicts", m.conflicts)))
	}
	if m.savings > 0 {
		summary += " | " + statusStyle.Render("potential savings "+bundle.FormatSize(m.savings))
	}
	if m.parseErrors > 0 {
		summary += " | " + conflictStyle.Render(fmt.Sprintf("%d parse errors", m.parseErrors))
	}

	header := fmt.Sprintf("%s\n%s | %s\n", titleStyle("Dependency Monitor"), status, summary)
	help := statusStyle.Render("Keys: tab panel | / filter | q quit")

	body := m.issueList.View()
	if m.mode == panelPackages {
		body = m.packageList.View()
	}

	return docStyle.Render(header + "\n" + help + "\n\n" + body)
}

func initialModel() model {
	issueList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	issueList.Title = "Detected Issues"
	issueList.SetShowStatusBar(false)
	issueList.SetFilteringEnabled(true)

	packageList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	packageList.Title = "Package Explorer"
	packageList.SetShowStatusBar(false)
	packageList.SetFilteringEnabled(true)

	return model{
		issueList:   issueList,
		packageList: packageList,
		mode:        panelIssues,
		lastUpdate:  time.Now(),
	}
}

// Run starts the interactive monitor and feeds it analysis updates
// until the user quits.
func Run(a *app.App) error {
	m := initialModel()
	p := tea.NewProgram(m, tea.WithAltScreen())

	a.SetUpdateHandler(func(result *app.Result) {
		p.Send(updateMsg{result: result})
	})

	go func() {
		if result := a.CurrentResult(); result != nil {
			p.Send(updateMsg{result: result})
		}
	}()

	_, err := p.Run()
	return err
}
