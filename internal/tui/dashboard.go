package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Cody994/21905-SerialController/internal/matrix"
	"github.com/Cody994/21905-SerialController/internal/ui"
)

// DefaultRefreshInterval is how often the dashboard re-reads the matrix
const DefaultRefreshInterval = 5 * time.Second

// opTimeout bounds one dashboard action, including the refresh after it
const opTimeout = 30 * time.Second

// Messages from async matrix calls
type snapshotMsg struct {
	snapshot *matrix.Snapshot
	err      error
	at       time.Time
}

type actionMsg struct {
	done string // e.g. "Input 2 → Output 1"
	err  error
}

type refreshTickMsg time.Time

// dashboardKeyMap defines key bindings for the dashboard
type dashboardKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Port    key.Binding
	Cancel  key.Binding
	All     key.Binding
	Power   key.Binding
	Beep    key.Binding
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k dashboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Port, k.All, k.Refresh, k.Help, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k dashboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Port, k.Cancel, k.All},
		{k.Power, k.Beep, k.Refresh},
		{k.Help, k.Quit},
	}
}

func newDashboardKeys() dashboardKeyMap {
	return dashboardKeyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "previous output")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next output")),
		Port:    key.NewBinding(key.WithKeys("1", "2", "3", "4"), key.WithHelp("1-4", "output, then input")),
		Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		All:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "toggle all outputs")),
		Power:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "toggle power")),
		Beep:    key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "toggle beep")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// DashboardModel shows the live matrix state and routes inputs from the
// keyboard. Only one matrix call runs at a time.
type DashboardModel struct {
	matrix   *matrix.Matrix
	labels   ui.Labeler
	interval time.Duration

	// Matrix state
	Snapshot    *matrix.Snapshot
	LastUpdated time.Time
	Err         error
	Notice      string

	// UI state
	Busy       bool
	Pending    bool // An output is selected and the next digit picks its input
	AllOutputs bool // A digit routes that input to every output at once
	Width      int
	Height     int

	outputs table.Model
	spinner spinner.Model
	help    help.Model
	keys    dashboardKeyMap
}

// NewDashboardModel creates a dashboard for m. labels may be nil. An
// interval of 0 disables automatic refresh.
func NewDashboardModel(m *matrix.Matrix, labels ui.Labeler, interval time.Duration) DashboardModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "OUTPUT", Width: 22},
			{Title: "SOURCE", Width: 22},
			{Title: "DISPLAY", Width: 8},
		}),
		table.WithFocused(true),
		table.WithHeight(len(matrix.Ports())+1),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(BorderColor).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(TextColor).
		Background(PrimaryColor)
	t.SetStyles(styles)

	if labels == nil {
		labels = plainLabels{}
	}

	// Init always starts a refresh
	return DashboardModel{
		Busy:     true,
		matrix:   m,
		labels:   labels,
		interval: interval,
		outputs:  t,
		spinner:  s,
		help:     help.New(),
		keys:     newDashboardKeys(),
	}
}

type plainLabels struct{}

func (plainLabels) InputLabel(n int) string  { return fmt.Sprintf("Input %d", n) }
func (plainLabels) OutputLabel(n int) string { return fmt.Sprintf("Output %d", n) }

// SelectedOutput is the output the cursor is on (1-4)
func (m DashboardModel) SelectedOutput() int {
	return m.outputs.Cursor() + 1
}

// Init starts the first refresh
func (m DashboardModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.refresh(), m.spinner.Tick}
	if m.interval > 0 {
		cmds = append(cmds, m.scheduleRefresh())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case snapshotMsg:
		m.Busy = false
		if msg.err != nil {
			m.Err = msg.err
			return m, nil
		}
		m.Err = nil
		m.Snapshot = msg.snapshot
		m.LastUpdated = msg.at
		m.outputs.SetRows(m.outputRows())
		return m, nil

	case actionMsg:
		if msg.err != nil {
			m.Busy = false
			m.Err = msg.err
			m.Notice = ""
			return m, nil
		}
		m.Err = nil
		m.Notice = msg.done
		// Stay busy and read back what the matrix now reports
		return m, m.refresh()

	case refreshTickMsg:
		var cmd tea.Cmd
		if !m.Busy {
			m.Busy = true
			cmd = tea.Batch(m.refresh(), m.spinner.Tick)
		}
		return m, tea.Batch(cmd, m.scheduleRefresh())

	case spinner.TickMsg:
		if !m.Busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m DashboardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.All):
		m.AllOutputs = !m.AllOutputs
		m.Pending = false
		return m, nil

	case key.Matches(msg, m.keys.Cancel):
		m.Pending = false
		return m, nil

	case key.Matches(msg, m.keys.Up, m.keys.Down):
		var cmd tea.Cmd
		m.outputs, cmd = m.outputs.Update(msg)
		m.Pending = !m.AllOutputs
		return m, cmd

	case key.Matches(msg, m.keys.Port) && !m.Pending && !m.AllOutputs:
		n, _ := strconv.Atoi(msg.String())
		m.outputs.SetCursor(n - 1)
		m.Pending = true
		return m, nil
	}

	// Everything below talks to the matrix
	if m.Busy {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Refresh):
		return m.start(m.refresh())

	case key.Matches(msg, m.keys.Port):
		input, _ := strconv.Atoi(msg.String())
		outputs := []int{m.SelectedOutput()}
		if m.AllOutputs {
			outputs = matrix.Ports()
		}
		m.Pending = false
		return m.start(m.route(input, outputs))

	case key.Matches(msg, m.keys.Power):
		if m.Snapshot == nil {
			return m, nil
		}
		on := !m.Snapshot.Power
		return m.start(m.action(fmt.Sprintf("Power %s", ui.OnOff(on)), func(ctx context.Context) error {
			return m.matrix.Power(ctx, on)
		}))

	case key.Matches(msg, m.keys.Beep):
		if m.Snapshot == nil {
			return m, nil
		}
		on := !m.Snapshot.Beep
		return m.start(m.action(fmt.Sprintf("Beep %s", ui.OnOff(on)), func(ctx context.Context) error {
			return m.matrix.Beep(ctx, on)
		}))
	}

	return m, nil
}

func (m DashboardModel) start(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	m.Busy = true
	return m, tea.Batch(cmd, m.spinner.Tick)
}

func (m DashboardModel) route(input int, outputs []int) tea.Cmd {
	targets := make([]string, len(outputs))
	for i, out := range outputs {
		targets[i] = m.labels.OutputLabel(out)
	}
	done := fmt.Sprintf("%s → %s", m.labels.InputLabel(input), strings.Join(targets, ", "))
	return m.action(done, func(ctx context.Context) error {
		return m.matrix.RouteInput(ctx, input, outputs...)
	})
}

func (m DashboardModel) action(done string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		return actionMsg{done: done, err: fn(ctx)}
	}
}

func (m DashboardModel) refresh() tea.Cmd {
	mx := m.matrix
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		s, err := mx.Snapshot(ctx)
		return snapshotMsg{snapshot: s, err: err, at: time.Now()}
	}
}

func (m DashboardModel) scheduleRefresh() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return refreshTickMsg(t)
	})
}

func (m DashboardModel) outputRows() []table.Row {
	if m.Snapshot == nil {
		return nil
	}
	rows := make([]table.Row, 0, len(m.Snapshot.Outputs))
	for _, o := range m.Snapshot.Outputs {
		rows = append(rows, table.Row{
			m.labels.OutputLabel(o.Port),
			m.labels.InputLabel(o.Input),
			ui.YesNo(o.Connected),
		})
	}
	return rows
}

// View renders the dashboard
func (m DashboardModel) View() string {
	return RenderApplicationContainer(m.renderContent(), m.help.View(m.keys), m.Width, m.Height)
}

func (m DashboardModel) renderContent() string {
	var b strings.Builder
	b.WriteString("\n")

	if m.Snapshot == nil {
		if m.Err != nil {
			b.WriteString("  " + RenderError(firstLine(matrix.TroubleshootingHint(m.Err))) + "\n")
			b.WriteString("  " + SubtitleStyle.Render(m.Err.Error()) + "\n\n")
			b.WriteString("  " + SubtitleStyle.Render("Press r to try again.") + "\n")
			return b.String()
		}
		b.WriteString("  " + m.spinner.View() + " Reading matrix state...\n")
		return b.String()
	}

	s := m.Snapshot
	b.WriteString("  " + LabelStyle.Render("Power") + RenderFlag(s.Power))
	b.WriteString("    " + LabelStyle.Render("Beep") + RenderFlag(s.Beep))
	b.WriteString("\n\n")

	var prompt string
	switch {
	case m.AllOutputs:
		prompt = "1-4 routes that input to ALL outputs"
	case m.Pending:
		prompt = fmt.Sprintf("Input for %s? (1-4, esc to cancel)", m.labels.OutputLabel(m.SelectedOutput()))
	default:
		prompt = "1-4 selects an output"
	}
	b.WriteString("  " + TitleStyle.Render("Outputs") + "  " + SubtitleStyle.Render(prompt) + "\n")
	b.WriteString(PanelStyle.MarginLeft(2).Render(m.outputs.View()))
	b.WriteString("\n\n")

	b.WriteString("  " + TitleStyle.Render("Inputs") + "\n")
	for _, in := range s.Inputs {
		signal := OffStyle.Render("no signal")
		if in.Connected {
			signal = OnStyle.Render("signal")
		}
		b.WriteString(fmt.Sprintf("    %-22s %s EDID %2d  %s\n",
			m.labels.InputLabel(in.Port), lipgloss.NewStyle().Width(11).Render(signal), int(in.EDID), SubtitleStyle.Render(in.EDIDName)))
	}
	b.WriteString("\n")

	switch {
	case m.Busy:
		b.WriteString("  " + m.spinner.View() + " Talking to the matrix...")
	case m.Err != nil:
		b.WriteString("  " + RenderError(m.Err.Error()))
	case m.Notice != "":
		b.WriteString("  " + NoticeStyle.Render("✓ "+m.Notice))
	default:
		b.WriteString("  " + SubtitleStyle.Render("Updated "+m.LastUpdated.Format("15:04:05")))
	}
	b.WriteString("\n")

	return b.String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
