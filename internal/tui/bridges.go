package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Cody994/21905-SerialController/internal/discovery"
)

// Messages for the scan
type scanStartMsg struct{}

type scanCompleteMsg struct {
	bridges []*discovery.Bridge
	err     error
}

type scanTickMsg time.Time

// bridgeItem adapts a Bridge to list.DefaultItem
type bridgeItem struct {
	bridge *discovery.Bridge
}

func (i bridgeItem) Title() string { return i.bridge.Instance }

func (i bridgeItem) Description() string {
	desc := i.bridge.BaseURL()
	if port := i.bridge.GetMetadata("serial"); port != "" {
		desc += "  serial " + port
	}
	if v := i.bridge.GetMetadata("version"); v != "" {
		desc += "  " + v
	}
	return desc
}

func (i bridgeItem) FilterValue() string { return i.bridge.Instance + " " + i.bridge.Hostname }

type bridgesKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Rescan key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k bridgesKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Rescan, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k bridgesKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// ScanFunc finds bridges; the default browses mDNS
type ScanFunc func(ctx context.Context) ([]*discovery.Bridge, error)

// BridgesModel scans the network for bridges and lets the user pick one
type BridgesModel struct {
	scan    ScanFunc
	timeout time.Duration

	Scanning  bool
	ScanStart time.Time
	Err       error
	Selected  *discovery.Bridge

	Width  int
	Height int

	list     list.Model
	spinner  spinner.Model
	progress progress.Model
	help     help.Model
	keys     bridgesKeyMap
}

// NewBridgesModel creates a picker that scans for up to timeout. scan may be
// nil to use a discovery.Scanner.
func NewBridgesModel(scan ScanFunc, timeout time.Duration) BridgesModel {
	if timeout <= 0 {
		timeout = discovery.DefaultScanTimeout
	}
	if scan == nil {
		scanner := discovery.NewScanner()
		scanner.Timeout = timeout
		scan = scanner.ScanForBridges
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	l := list.New(nil, list.NewDefaultDelegate(), MinTerminalWidth-4, 12)
	l.Title = "Bridges on this network"
	l.Styles.Title = TitleStyle
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)

	return BridgesModel{
		scan:     scan,
		timeout:  timeout,
		Scanning: true,
		list:     l,
		spinner:  s,
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		help:     help.New(),
		keys: bridgesKeyMap{
			Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
			Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
			Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
			Rescan: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rescan")),
			Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
		},
	}
}

// Bridges returns every bridge found by the last scan
func (m BridgesModel) Bridges() []*discovery.Bridge {
	items := m.list.Items()
	out := make([]*discovery.Bridge, 0, len(items))
	for _, it := range items {
		if b, ok := it.(bridgeItem); ok {
			out = append(out, b.bridge)
		}
	}
	return out
}

// Init starts scanning immediately
func (m BridgesModel) Init() tea.Cmd {
	return m.startScan()
}

func (m BridgesModel) startScan() tea.Cmd {
	scan := m.scan
	return tea.Batch(
		func() tea.Msg { return scanStartMsg{} },
		func() tea.Msg {
			bridges, err := scan(context.Background())
			return scanCompleteMsg{bridges: bridges, err: err}
		},
		m.spinner.Tick,
		scanTick(),
	)
}

func scanTick() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg { return scanTickMsg(t) })
}

// Update handles messages and updates the model
func (m BridgesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.list.SetSize(msg.Width-6, msg.Height-10)
		return m, nil

	case scanStartMsg:
		m.Scanning = true
		m.ScanStart = time.Now()
		return m, nil

	case scanCompleteMsg:
		m.Scanning = false
		m.Err = msg.err
		items := make([]list.Item, len(msg.bridges))
		for i, b := range msg.bridges {
			items[i] = bridgeItem{bridge: b}
		}
		return m, m.list.SetItems(items)

	case scanTickMsg:
		if m.Scanning {
			return m, scanTick()
		}
		return m, nil

	case spinner.TickMsg:
		if !m.Scanning {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case m.Scanning:
			return m, nil
		case key.Matches(msg, m.keys.Select):
			if it, ok := m.list.SelectedItem().(bridgeItem); ok {
				m.Selected = it.bridge
				return m, tea.Quit
			}
			return m, nil
		case key.Matches(msg, m.keys.Rescan):
			m.Err = nil
			return m, tea.Batch(m.list.SetItems(nil), m.startScan())
		}
	}

	if m.Scanning {
		return m, nil
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the picker
func (m BridgesModel) View() string {
	width := m.Width
	if width == 0 {
		width = MinTerminalWidth
	}

	var content string
	switch {
	case m.Scanning:
		content = m.renderScanning(width)
	case m.Err != nil:
		content = "\n  " + RenderError(fmt.Sprintf("Scan failed: %v", m.Err)) + "\n\n" + troubleshooting()
	case len(m.list.Items()) == 0:
		content = "\n  " + lipgloss.NewStyle().Foreground(WarningColor).Bold(true).
			Render("⚠ No bridges found on your network") + "\n\n" + troubleshooting()
	default:
		content = "\n" + m.list.View()
	}

	return RenderApplicationContainer(content, m.help.View(m.keys), m.Width, m.Height)
}

func (m BridgesModel) renderScanning(width int) string {
	elapsed := time.Since(m.ScanStart)
	if m.ScanStart.IsZero() {
		elapsed = 0
	}
	percent := float64(elapsed) / float64(m.timeout)
	if percent > 1 {
		percent = 1
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		TitleStyle.Render(m.spinner.View()+" SEARCHING FOR BRIDGES"),
		"",
		SubtitleStyle.Render("Browsing "+discovery.ServiceType+" on the local network..."),
		"",
		m.progress.ViewAs(percent),
		"",
	)
	return lipgloss.Place(width-4, 0, lipgloss.Center, lipgloss.Top, content)
}

func troubleshooting() string {
	return strings.Join([]string{
		"  Troubleshooting:",
		"    • Start a bridge with 'blackbird serve' on the machine wired to the matrix",
		"    • Make sure both machines are on the same network segment",
		"    • Some networks block multicast DNS; connect by address instead",
		"    • Press r to scan again",
	}, "\n") + "\n"
}
