package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Cody994/21905-SerialController/internal/discovery"
	"github.com/Cody994/21905-SerialController/internal/emulator"
	"github.com/Cody994/21905-SerialController/internal/matrix"
)

// collect runs cmd and flattens batches into their messages
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// settle feeds the messages produced by cmd back into the model until none
// are left. Spinner ticks are dropped.
func settle[M tea.Model](t *testing.T, m M, cmd tea.Cmd) (M, []tea.Msg) {
	t.Helper()
	var seen []tea.Msg
	queue := collect(cmd)
	for i := 0; len(queue) > 0; i++ {
		if i > 100 {
			t.Fatal("model did not settle")
		}
		msg := queue[0]
		queue = queue[1:]
		seen = append(seen, msg)
		if _, ok := msg.(spinner.TickMsg); ok {
			continue
		}
		if _, ok := msg.(tea.QuitMsg); ok {
			continue
		}
		updated, next := m.Update(msg)
		m = updated.(M)
		queue = append(queue, collect(next)...)
	}
	return m, seen
}

func press[M tea.Model](t *testing.T, m M, k tea.KeyMsg) (M, []tea.Msg) {
	t.Helper()
	updated, cmd := m.Update(k)
	return settle(t, updated.(M), cmd)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func hasQuit(msgs []tea.Msg) bool {
	for _, msg := range msgs {
		if _, ok := msg.(tea.QuitMsg); ok {
			return true
		}
	}
	return false
}

func newDashboard(t *testing.T, dev *emulator.Device) DashboardModel {
	t.Helper()
	m := NewDashboardModel(matrix.New(dev), nil, 0)
	sized, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = sized.(DashboardModel)
	m, _ = settle(t, m, m.Init())
	return m
}

func TestDashboard_InitialRefresh(t *testing.T) {
	m := newDashboard(t, emulator.New())

	if m.Busy {
		t.Error("still busy after refresh")
	}
	if m.Err != nil {
		t.Fatalf("Err = %v", m.Err)
	}
	if m.Snapshot == nil || len(m.Snapshot.Outputs) != 4 {
		t.Fatalf("Snapshot = %+v", m.Snapshot)
	}
	if m.SelectedOutput() != 1 {
		t.Errorf("SelectedOutput() = %d, want 1", m.SelectedOutput())
	}

	view := m.View()
	for _, want := range []string{"Output 4", "Input 1", "1080p Stereo Audio 2.0", "Power"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestDashboard_Route(t *testing.T) {
	dev := emulator.New()
	m := newDashboard(t, dev)

	m, _ = press(t, m, runes("1"))
	if !m.Pending || len(dev.Received()) != 18 {
		t.Fatalf("selecting an output: Pending = %v, frames = %d", m.Pending, len(dev.Received()))
	}
	m, _ = press(t, m, runes("3"))
	if m.Pending {
		t.Error("still pending after route")
	}
	if got := dev.State().Routes[0]; got != 3 {
		t.Errorf("output 1 source = %d, want 3", got)
	}
	if m.Snapshot.Outputs[0].Input != 3 {
		t.Errorf("dashboard not refreshed after route: %+v", m.Snapshot.Outputs[0])
	}
	if !strings.Contains(m.Notice, "Input 3 → Output 1") {
		t.Errorf("Notice = %q", m.Notice)
	}

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if m.SelectedOutput() != 2 || !m.Pending {
		t.Fatalf("SelectedOutput() = %d, want 2", m.SelectedOutput())
	}
	m, _ = press(t, m, runes("4"))
	if got := dev.State().Routes; got != [4]int{3, 4, 3, 4} {
		t.Errorf("routes = %v", got)
	}

	m, _ = press(t, m, runes("a"))
	if !m.AllOutputs {
		t.Fatal("a did not enable all outputs")
	}
	m, _ = press(t, m, runes("2"))
	if got := dev.State().Routes; got != [4]int{2, 2, 2, 2} {
		t.Errorf("routes after all-output route = %v", got)
	}
	if m.Busy {
		t.Error("still busy")
	}
}

func TestDashboard_PowerAndBeep(t *testing.T) {
	dev := emulator.New()
	m := newDashboard(t, dev)

	m, _ = press(t, m, runes("p"))
	if dev.State().Power || m.Snapshot.Power {
		t.Error("p did not turn power off")
	}
	m, _ = press(t, m, runes("b"))
	if dev.State().Beep || m.Snapshot.Beep {
		t.Error("b did not turn beep off")
	}
	m, _ = press(t, m, runes("p"))
	if !dev.State().Power {
		t.Error("second p did not turn power on")
	}
}

func TestDashboard_IgnoresKeysWhileBusy(t *testing.T) {
	dev := emulator.New()
	m := newDashboard(t, dev)
	before := len(dev.Received())

	m.Busy = true
	m.Pending = true
	_, cmd := m.Update(runes("2"))
	if cmd != nil {
		t.Error("route key produced a command while busy")
	}
	if len(dev.Received()) != before {
		t.Error("frames sent while busy")
	}
}

func TestDashboard_Errors(t *testing.T) {
	dev := emulator.New()
	m := newDashboard(t, dev)

	dev.SilenceAfter(0)
	m, _ = press(t, m, runes("r"))
	if !matrix.IsTransportError(m.Err) {
		t.Errorf("Err = %v, want transport error", m.Err)
	}
	if m.Snapshot == nil {
		t.Error("last good snapshot was dropped")
	}
	if m.Busy {
		t.Error("still busy after failed refresh")
	}

	m, _ = press(t, m, runes("1"))
	m, _ = press(t, m, runes("1"))
	if m.Err == nil || m.Notice != "" {
		t.Errorf("failed route: Err = %v, Notice = %q", m.Err, m.Notice)
	}

	silent := emulator.New()
	silent.SilenceAfter(0)
	fresh := newDashboard(t, silent)
	if !strings.Contains(fresh.View(), "Press r to try again") {
		t.Error("first-refresh failure view missing retry hint")
	}
}

func TestDashboard_CancelSelection(t *testing.T) {
	m := newDashboard(t, emulator.New())
	m, _ = press(t, m, runes("3"))
	if m.SelectedOutput() != 3 || !m.Pending {
		t.Fatalf("SelectedOutput() = %d, Pending = %v", m.SelectedOutput(), m.Pending)
	}
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.Pending {
		t.Error("esc did not cancel")
	}
}

func TestDashboard_Quit(t *testing.T) {
	m := newDashboard(t, emulator.New())
	_, msgs := press(t, m, runes("q"))
	if !hasQuit(msgs) {
		t.Error("q did not quit")
	}
}

func TestBridges_PickFirst(t *testing.T) {
	found := []*discovery.Bridge{
		{Instance: "Rack", Hostname: "pi.local.", IP: "10.0.0.5", Port: 8421, Metadata: map[string]string{"serial": "/dev/ttyUSB0"}},
		{Instance: "Den", Hostname: "nuc.local.", IP: "10.0.0.9", Port: 8421},
	}
	scan := func(ctx context.Context) ([]*discovery.Bridge, error) { return found, nil }

	m := NewBridgesModel(scan, time.Second)
	m, _ = settle(t, m, m.Init())
	if m.Scanning {
		t.Fatal("still scanning")
	}
	if got := m.Bridges(); len(got) != 2 {
		t.Fatalf("Bridges() = %v", got)
	}
	if !strings.Contains(m.View(), "Rack") {
		t.Error("View() missing bridge")
	}

	m, msgs := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Selected != found[0] {
		t.Errorf("Selected = %v", m.Selected)
	}
	if !hasQuit(msgs) {
		t.Error("enter did not quit")
	}
}

func TestBridges_EmptyAndError(t *testing.T) {
	empty := NewBridgesModel(func(ctx context.Context) ([]*discovery.Bridge, error) { return nil, nil }, time.Second)
	empty, _ = settle(t, empty, empty.Init())
	if !strings.Contains(empty.View(), "No bridges found") {
		t.Error("empty view missing notice")
	}

	failing := NewBridgesModel(func(ctx context.Context) ([]*discovery.Bridge, error) {
		return nil, errors.New("no multicast")
	}, time.Second)
	failing, _ = settle(t, failing, failing.Init())
	if !strings.Contains(failing.View(), "no multicast") {
		t.Error("error view missing scan error")
	}
}

func TestBridgeItem(t *testing.T) {
	item := bridgeItem{bridge: &discovery.Bridge{
		Instance: "Rack",
		IP:       "10.0.0.5",
		Port:     8421,
		Metadata: map[string]string{"serial": "COM3", "version": "v1.0.0"},
	}}
	if item.Title() != "Rack" {
		t.Errorf("Title() = %q", item.Title())
	}
	desc := item.Description()
	for _, want := range []string{"http://10.0.0.5:8421", "COM3", "v1.0.0"} {
		if !strings.Contains(desc, want) {
			t.Errorf("Description() = %q, missing %q", desc, want)
		}
	}
}
