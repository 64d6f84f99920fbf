// Package app renders the interactive download view for terminals.
package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nwatts/gbdl/pkg/services"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#82AAFF")).
			Bold(true).
			MarginBottom(1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#C3E88D"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F07178")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#546E7A"))
)

type progressMsg services.Progress

type channelClosedMsg struct{}

// waitForProgress relays the next update from the pipeline as a tea
// message. It re-arms itself from Update until the channel closes.
func waitForProgress(ch <-chan services.Progress) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return channelClosedMsg{}
		}
		return progressMsg(p)
	}
}

type model struct {
	ch        <-chan services.Progress
	bar       progress.Model
	current   services.Progress
	completed int
	failed    int
	errs      []string
	done      bool
}

func newModel(ch <-chan services.Progress) model {
	return model{
		ch:  ch,
		bar: progress.New(progress.WithDefaultGradient()),
	}
}

func (m model) Init() tea.Cmd {
	return waitForProgress(m.ch)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.bar.Width = msg.Width - 8
		if m.bar.Width > 60 {
			m.bar.Width = 60
		}

	case progressMsg:
		m.current = services.Progress(msg)
		switch m.current.Status {
		case services.StatusComplete:
			m.completed++
		case services.StatusError:
			m.failed++
			if m.current.Err != nil {
				m.errs = append(m.errs, fmt.Sprintf("%s: %v", m.current.IssueID, m.current.Err))
			}
		}
		return m, waitForProgress(m.ch)

	case channelClosedMsg:
		m.done = true
		return m, tea.Quit
	}

	return m, nil
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Downloading"))
	b.WriteString("\n")

	if m.current.Title != "" {
		b.WriteString(m.current.Title)
		b.WriteString("\n")
	}

	if m.current.TotalPages > 0 && m.current.Status == services.StatusDownloading {
		pct := float64(m.current.CurrentPage) / float64(m.current.TotalPages)
		b.WriteString(m.bar.ViewAs(pct))
		b.WriteString("\n")
		b.WriteString(statusStyle.Render(fmt.Sprintf("page %d/%d", m.current.CurrentPage, m.current.TotalPages)))
		b.WriteString("\n")
	} else if m.current.Status != "" {
		b.WriteString(statusStyle.Render(m.current.Status))
		b.WriteString("\n")
	}

	b.WriteString(mutedStyle.Render(fmt.Sprintf("%d completed, %d failed", m.completed, m.failed)))
	b.WriteString("\n")

	for _, e := range m.errs {
		b.WriteString(errorStyle.Render(e))
		b.WriteString("\n")
	}

	if !m.done {
		b.WriteString(mutedStyle.Render("press q to abort the view"))
		b.WriteString("\n")
	}
	return b.String()
}

// Run blocks rendering updates from ch until the pipeline closes it.
func Run(ch <-chan services.Progress) error {
	_, err := tea.NewProgram(newModel(ch)).Run()
	return err
}
