package cliapp

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"depscope/internal/core/ports"
	"depscope/internal/data/history"
	"depscope/internal/engine/resolver"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	missingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	installingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

// maxInstallLines bounds the live pip output tail kept in the model.
const maxInstallLines = 12

type item struct {
	title, desc string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title + i.desc }

type panelMode int

const (
	panelPackages panelMode = iota
	panelActivity
)

type model struct {
	service ports.DependencyService

	packageList list.Model
	mode        panelMode

	report     ports.RefreshResult
	hasReport  bool
	refreshing bool
	statusNote string

	installing   bool
	installLines []string

	records    []history.Record
	recordsErr string

	showDetail bool
	detail     resolver.PackageStatus

	lastUpdate time.Time
}

type refreshMsg struct {
	result ports.RefreshResult
}

type refreshFailedMsg struct {
	err error
}

type installMsg struct {
	event ports.InstallEvent
}

type installDoneMsg struct {
	result ports.InstallResult
	err    error
}

type historyMsg struct {
	records []history.Record
	err     error
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return handleKeyActions(msg, m)
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		width := msg.Width - h
		height := msg.Height - v - 8
		if height < 5 {
			height = 5
		}
		m.packageList.SetSize(width, height)
	case refreshMsg:
		m.report = msg.result
		m.hasReport = true
		m.refreshing = false
		m.statusNote = ""
		m.lastUpdate = time.Now()
		m.packageList.SetItems(buildPackageItems(msg.result))
		if m.showDetail {
			m = refreshDetail(m)
		}
	case refreshFailedMsg:
		m.refreshing = false
		m.statusNote = missingStyle.Render(fmt.Sprintf("Refresh failed: %v", msg.err))
	case installMsg:
		if msg.event.Done {
			m.installing = false
			if msg.event.Success {
				m.statusNote = successStyle.Render("Install finished.")
			} else {
				m.statusNote = missingStyle.Render("Install failed: " + msg.event.Error)
			}
		} else {
			m.installLines = append(m.installLines, msg.event.Line)
			if len(m.installLines) > maxInstallLines {
				m.installLines = m.installLines[len(m.installLines)-maxInstallLines:]
			}
		}
	case installDoneMsg:
		m.installing = false
		if msg.err != nil {
			m.statusNote = missingStyle.Render(fmt.Sprintf("Install failed: %v", msg.err))
			break
		}
		// Re-resolve so the panel reflects the new package set.
		return m, refreshCmd(m.service)
	case historyMsg:
		if msg.err != nil {
			m.recordsErr = msg.err.Error()
			m.records = nil
		} else {
			m.recordsErr = ""
			m.records = msg.records
		}
	}

	var cmd tea.Cmd
	if m.mode == panelPackages {
		m.packageList, cmd = m.packageList.Update(msg)
	}
	return m, cmd
}

func handleKeyActions(msg tea.KeyMsg, m model) (tea.Model, tea.Cmd) {
	// While the list filter is active, every key belongs to the filter.
	if m.mode == panelPackages && m.packageList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.packageList, cmd = m.packageList.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "tab":
		if m.mode == panelPackages {
			m.mode = panelActivity
			return m, recentOperationsCmd(m.service)
		}
		m.mode = panelPackages
		return m, nil
	case "r":
		if m.refreshing {
			return m, nil
		}
		m.refreshing = true
		m.statusNote = ""
		return m, refreshCmd(m.service)
	case "i":
		if m.installing || !m.hasReport || len(m.report.Missing) == 0 {
			return m, nil
		}
		m.installing = true
		m.installLines = nil
		m.statusNote = ""
		return m, installCmd(m.service)
	}

	if m.mode != panelPackages {
		return m, nil
	}

	switch msg.String() {
	case "enter":
		return openDetail(m), nil
	case "esc", "backspace":
		m.showDetail = false
		return m, nil
	}

	var cmd tea.Cmd
	m.packageList, cmd = m.packageList.Update(msg)
	return m, cmd
}

func openDetail(m model) model {
	selected, ok := m.packageList.SelectedItem().(item)
	if !ok {
		return m
	}
	for _, status := range m.report.Packages {
		if status.InstallName == selected.title {
			m.detail = status
			m.showDetail = true
			return m
		}
	}
	return m
}

// refreshDetail re-binds the open detail view after a refresh replaced
// the package statuses. A package that disappeared closes the view.
func refreshDetail(m model) model {
	for _, status := range m.report.Packages {
		if status.InstallName == m.detail.InstallName {
			m.detail = status
			return m
		}
	}
	m.showDetail = false
	return m
}

func buildPackageItems(result ports.RefreshResult) []list.Item {
	items := make([]list.Item, 0, len(result.Packages))
	for _, status := range result.Packages {
		var desc string
		switch status.State {
		case resolver.StateMissing:
			desc = "missing"
		case resolver.StateInstalled:
			desc = "installed " + status.Version
		}
		if status.ImportName != status.InstallName {
			desc += fmt.Sprintf(" (imported as %s)", status.ImportName)
		}
		desc += fmt.Sprintf(" | %d files", len(status.Files))
		items = append(items, item{title: status.InstallName, desc: desc})
	}
	return items
}

func refreshCmd(service ports.DependencyService) tea.Cmd {
	if service == nil {
		return nil
	}
	return func() tea.Msg {
		if _, err := service.Refresh(context.Background()); err != nil {
			return refreshFailedMsg{err: err}
		}
		// The result arrives through the watch subscription.
		return nil
	}
}

func installCmd(service ports.DependencyService) tea.Cmd {
	if service == nil {
		return nil
	}
	return func() tea.Msg {
		result, err := service.Install(context.Background(), ports.InstallRequest{})
		if err != nil {
			return installDoneMsg{err: err}
		}
		return installDoneMsg{result: result}
	}
}

func recentOperationsCmd(service ports.DependencyService) tea.Cmd {
	if service == nil {
		return nil
	}
	return func() tea.Msg {
		records, err := service.RecentOperations(context.Background(), 20)
		if err != nil {
			return historyMsg{err: err}
		}
		return historyMsg{records: records}
	}
}

func (m model) View() string {
	status := statusStyle.Render(fmt.Sprintf("Last update: %v | %d files | %d modules | env %s",
		m.lastUpdate.Format("15:04:05"), m.report.FileCount, m.report.ModuleCount, m.report.Environment.Label()))

	var summary string
	switch {
	case m.installing:
		summary = installingStyle.Render("Installing...")
	case !m.hasReport:
		summary = statusStyle.Render("Scanning...")
	case len(m.report.Missing) == 0:
		summary = successStyle.Render("All packages installed")
	default:
		summary = missingStyle.Render(fmt.Sprintf("%d packages missing", len(m.report.Missing)))
	}

	header := fmt.Sprintf("%s\n%s | %s\n", titleStyle("Dependency Monitor"), status, summary)
	help := renderHelp(m)

	body := m.packageList.View()
	if m.mode == panelActivity {
		body = renderActivityPanel(m)
	} else if m.showDetail {
		body += "\n\n" + renderPackageDetail(m)
	}
	if m.installing || len(m.installLines) > 0 {
		body += "\n\n" + renderInstallTail(m)
	}
	if m.statusNote != "" {
		body += "\n\n" + m.statusNote
	}

	return docStyle.Render(header + "\n" + help + "\n\n" + body)
}

func initialModel(service ports.DependencyService) model {
	packageList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	packageList.Title = "Imported Packages"
	packageList.SetShowStatusBar(false)
	packageList.SetFilteringEnabled(true)

	return model{
		service:     service,
		packageList: packageList,
		mode:        panelPackages,
		lastUpdate:  time.Now(),
	}
}
