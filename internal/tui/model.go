// Package tui implements the interactive chain runner.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/promptsmith/promptsmith/internal/chain"
	"github.com/promptsmith/promptsmith/internal/prompt"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	idleStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	runningStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	completedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	selectedStyle  = lipgloss.NewStyle().Bold(true)
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
	paneStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

type eventMsg chain.Event

type runDoneMsg struct {
	result chain.RunResult
	err    error
}

// Model drives one chain run and displays per-stage progress.
type Model struct {
	chain   *chain.Chain
	gen     chain.Generator
	globals prompt.Scope
	events  chan chain.Event
	cancel  context.CancelFunc
	ctx     context.Context

	spinner  spinner.Model
	viewport viewport.Model
	renderer *glamour.TermRenderer

	selected int
	result   *chain.RunResult
	runErr   error
	width    int
	height   int
	ready    bool
}

// New creates a chain runner model. The run starts when the program does.
func New(c *chain.Chain, gen chain.Generator, globals prompt.Scope) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = runningStyle
	ctx, cancel := context.WithCancel(context.Background())
	return Model{
		chain:   c,
		gen:     gen,
		globals: globals,
		events:  make(chan chain.Event, 256),
		ctx:     ctx,
		cancel:  cancel,
		spinner: sp,
	}
}

// Run executes the chain under the TUI and returns the run result.
func Run(c *chain.Chain, gen chain.Generator, globals prompt.Scope) (chain.RunResult, error) {
	final, err := tea.NewProgram(New(c, gen, globals), tea.WithAltScreen()).Run()
	if err != nil {
		return chain.RunResult{}, fmt.Errorf("run ui: %w", err)
	}
	m, ok := final.(Model)
	if !ok || m.result == nil {
		return chain.RunResult{}, fmt.Errorf("chain run did not finish")
	}
	return *m.result, m.runErr
}

// Init starts the spinner, the executor goroutine, and the event listener.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startRun(), m.waitForEvent())
}

func (m Model) startRun() tea.Cmd {
	events := m.events
	ctx := m.ctx
	c := m.chain
	gen := m.gen
	globals := m.globals
	return func() tea.Msg {
		ex := chain.NewExecutor(gen, chain.WithObserver(func(ev chain.Event) {
			select {
			case events <- ev:
			case <-ctx.Done():
			}
		}))
		res, err := ex.Run(ctx, c, globals)
		close(events)
		return runDoneMsg{result: res, err: err}
	}
}

func (m Model) waitForEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return eventMsg(ev)
	}
}

// Update handles progress events, resize, and key input.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.cancel()
			return m, tea.Quit
		case "up", "k":
			if m.selected > 0 {
				m.selected--
				m.refreshViewport()
			}
		case "down", "j":
			if m.selected < m.chain.Len()-1 {
				m.selected++
				m.refreshViewport()
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpWidth := m.width - stageListWidth - 6
		vpHeight := m.height - 6
		if vpWidth < 20 {
			vpWidth = 20
		}
		if vpHeight < 5 {
			vpHeight = 5
		}
		if !m.ready {
			m.viewport = viewport.New(vpWidth, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = vpWidth
			m.viewport.Height = vpHeight
		}
		m.renderer, _ = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(vpWidth-2),
		)
		m.refreshViewport()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case eventMsg:
		ev := chain.Event(msg)
		if ev.Kind == chain.EventStageStarted {
			m.selected = ev.StageIndex
		}
		m.refreshViewport()
		return m, m.waitForEvent()

	case runDoneMsg:
		res := msg.result
		m.result = &res
		m.runErr = msg.err
		m.refreshViewport()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

const stageListWidth = 28

func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	stages := m.chain.Stages()
	if m.selected >= len(stages) {
		return
	}
	st := stages[m.selected]
	content := st.Output()
	if content == "" {
		content = idleStyle.Render("(no output yet)")
	} else if st.Status() == chain.StatusCompleted && m.renderer != nil {
		if rendered, err := m.renderer.Render(content); err == nil {
			content = rendered
		}
	}
	m.viewport.SetContent(content)
	m.viewport.GotoBottom()
}

func (m Model) stageGlyph(st *chain.Stage) string {
	switch st.Status() {
	case chain.StatusRunning:
		return m.spinner.View()
	case chain.StatusCompleted:
		return completedStyle.Render("✓")
	case chain.StatusError:
		return errorStyle.Render("✗")
	default:
		return idleStyle.Render("○")
	}
}

// View renders the stage list beside the selected stage's output.
func (m Model) View() string {
	if !m.ready {
		return "starting..."
	}

	var list strings.Builder
	for i, st := range m.chain.Stages() {
		line := fmt.Sprintf("%s %d. %s", m.stageGlyph(st), i+1, st.Name())
		if i == m.selected {
			line = selectedStyle.Render(line)
		}
		list.WriteString(line)
		list.WriteString("\n")
	}

	left := paneStyle.Width(stageListWidth).Render(list.String())
	right := paneStyle.Render(m.viewport.View())
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	header := titleStyle.Render("promptsmith · " + m.chain.Name())
	status := ""
	switch {
	case m.result == nil:
		status = runningStyle.Render("running...")
	case m.runErr != nil:
		status = errorStyle.Render("failed: " + m.runErr.Error())
	default:
		status = completedStyle.Render("completed")
	}

	help := helpStyle.Render("↑/↓ select stage · q quit")
	return lipgloss.JoinVertical(lipgloss.Left, header+"  "+status, body, help)
}
