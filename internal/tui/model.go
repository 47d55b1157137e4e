package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"agentload/internal/stats"
	"agentload/internal/ui"
)

// Scanner produces a fresh scan result. *stats.Engine satisfies it.
type Scanner interface {
	Run(ctx context.Context) (*stats.Result, error)
}

// reportLoadedMsg carries the outcome of one background scan.
type reportLoadedMsg struct {
	res *stats.Result
	err error
	at  time.Time
}

// Model is the interactive report view.
type Model struct {
	ctx     context.Context
	scanner Scanner
	render  ui.RenderOptions

	spinner  spinner.Model
	viewport viewport.Model
	help     help.Model

	loading  bool
	result   *stats.Result
	err      error
	lastScan time.Time
	width    int
	height   int
}

// NewModel creates the view; the first scan starts in Init.
func NewModel(ctx context.Context, scanner Scanner, opts ui.RenderOptions) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = statusStyle

	return Model{
		ctx:      ctx,
		scanner:  scanner,
		render:   opts,
		spinner:  sp,
		viewport: viewport.New(0, 0),
		help:     help.New(),
		loading:  true,
	}
}

// loadReportCmd runs a scan off the UI goroutine.
func loadReportCmd(ctx context.Context, scanner Scanner) tea.Cmd {
	return func() tea.Msg {
		res, err := scanner.Run(ctx)
		return reportLoadedMsg{res: res, err: err, at: time.Now()}
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, loadReportCmd(m.ctx, m.scanner))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// appStyle padding(2) + header(1) + gap(1) + help(2) + status(1)
		m.viewport.Width = m.width - 4
		m.viewport.Height = max(m.height-7, 1)
		m.help.Width = m.width - 4
		m.refreshContent()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Refresh):
			if m.loading {
				return m, nil
			}
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, loadReportCmd(m.ctx, m.scanner))
		case key.Matches(msg, keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}

	case reportLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.result = msg.res
			m.lastScan = msg.at
		}
		m.refreshContent()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) refreshContent() {
	if m.result == nil {
		m.viewport.SetContent("")
		return
	}
	m.viewport.SetContent(ui.RenderReport(m.result.Report, m.render))
}

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("agentload"))
	b.WriteString("\n\n")

	if m.result == nil && m.loading {
		b.WriteString(m.spinner.View() + " Scanning session logs...")
	} else {
		b.WriteString(m.viewport.View())
	}
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString(helpStyle.Render(m.help.View(keys)))

	return appStyle.Render(b.String())
}

func (m Model) statusLine() string {
	switch {
	case m.loading && m.result != nil:
		return m.spinner.View() + statusStyle.Render(" Rescanning...")
	case m.err != nil:
		return statusErrorStyle.Render(fmt.Sprintf("Scan failed: %v", m.err))
	case !m.lastScan.IsZero():
		sessions := m.result.Report.MainSessions + m.result.Report.SubagentSessions
		return statusStyle.Render(fmt.Sprintf("%d sessions, scanned %s in %s",
			sessions, m.lastScan.Format("15:04:05"), m.result.Stats.Duration.Round(time.Millisecond)))
	default:
		return ""
	}
}

// Run starts the interactive report until the user quits or ctx ends.
func Run(ctx context.Context, scanner Scanner, opts ui.RenderOptions) error {
	m := NewModel(ctx, scanner, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
