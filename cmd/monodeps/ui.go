package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	coreapp "monodeps/internal/core/app"
	"monodeps/internal/engine/analysis"
	"monodeps/internal/engine/anomaly"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	blockingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
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

type model struct {
	list       list.Model
	root       string
	summary    analysis.Summary
	blocking   int
	lastErr    error
	lastUpdate time.Time
	changed    int
	ready      bool
}

type updateMsg struct {
	summary   analysis.Summary
	anomalies []anomaly.Anomaly
	err       error
	at        time.Time
	changed   int
}

func newUpdateMsg(u coreapp.Update) updateMsg {
	msg := updateMsg{summary: u.Summary, err: u.Err, at: u.At, changed: len(u.Changed)}
	if u.Report != nil {
		msg.anomalies = u.Report.Anomalies
	}
	return msg
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || (msg.String() == "q" && m.list.FilterState() != list.Filtering) {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v-4)
	case updateMsg:
		m.lastUpdate = msg.at
		m.changed = msg.changed
		m.lastErr = msg.err
		if msg.err != nil {
			// keep the previous results on screen
			return m, nil
		}
		m.ready = true
		m.summary = msg.summary
		m.blocking = 0

		items := make([]list.Item, 0, len(msg.anomalies))
		for _, a := range msg.anomalies {
			if a.Severity.Blocking() {
				m.blocking++
			}
			items = append(items, item{
				title: fmt.Sprintf("[%s] %s (%d)", a.Severity, a.Kind(), a.Score),
				desc:  strings.Join(a.Packages, ", "),
			})
		}
		cmd := m.list.SetItems(items)
		return m, cmd
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) View() string {
	status := statusStyle.Render(fmt.Sprintf("Last update: %s | %d packages | %d edges | %d changed files",
		m.lastUpdate.Format("15:04:05"), m.summary.Packages, m.summary.Edges, m.changed))

	var summary string
	switch {
	case m.lastErr != nil:
		summary = blockingStyle.Render("Analysis failed: " + m.lastErr.Error())
	case !m.ready:
		summary = statusStyle.Render("Analyzing...")
	case m.summary.Anomalies == 0:
		summary = successStyle.Render("No anomalies")
	default:
		summary = fmt.Sprintf("%s | %s",
			blockingStyle.Render(fmt.Sprintf("%d blocking", m.blocking)),
			warningStyle.Render(fmt.Sprintf("%d anomalies, %d cycles", m.summary.Anomalies, m.summary.Cycles)))
	}

	header := fmt.Sprintf("%s\n%s | %s\n", titleStyle("Monorepo Dependency Monitor: "+m.root), status, summary)
	return docStyle.Render(header + "\n" + m.list.View())
}

func initialModel(root string) model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Anomalies"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)

	return model{
		list:       l,
		root:       root,
		lastUpdate: time.Now(),
	}
}
