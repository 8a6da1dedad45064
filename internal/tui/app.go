package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Cody994/21905-SerialController/internal/discovery"
	"github.com/Cody994/21905-SerialController/internal/matrix"
	"github.com/Cody994/21905-SerialController/internal/ui"
)

// RunDashboard runs the live dashboard full screen until the user quits
func RunDashboard(m *matrix.Matrix, labels ui.Labeler, interval time.Duration) error {
	p := tea.NewProgram(NewDashboardModel(m, labels, interval), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}

// PickBridge scans for bridges and returns the one the user selects, or nil
// if they quit without choosing
func PickBridge(timeout time.Duration) (*discovery.Bridge, error) {
	p := tea.NewProgram(NewBridgesModel(nil, timeout), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("bridge picker: %w", err)
	}
	if m, ok := final.(BridgesModel); ok {
		return m.Selected, nil
	}
	return nil, nil
}
