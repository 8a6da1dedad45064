package matrix

import (
	"context"
	"testing"

	"github.com/Cody994/21905-SerialController/internal/emulator"
	"github.com/Cody994/21905-SerialController/internal/protocol"
)

func TestMatrix_AgainstEmulator(t *testing.T) {
	ctx := context.Background()
	dev := emulator.New()
	m := New(dev, WithChecksumVerification(true))

	if err := m.RouteInput(ctx, 2, 1, 3); err != nil {
		t.Fatalf("RouteInput() error = %v", err)
	}
	routes, err := m.QueryRoutingAll(ctx)
	if err != nil {
		t.Fatalf("QueryRoutingAll() error = %v", err)
	}
	want := []int{2, 2, 2, 4}
	for i, r := range routes {
		if r.Input != want[i] {
			t.Errorf("output %d input = %d, want %d", r.Output, r.Input, want[i])
		}
	}

	if err := m.SetEDIDProfile(ctx, protocol.EDID4K30HDAudio, 4); err != nil {
		t.Fatalf("SetEDIDProfile() error = %v", err)
	}
	profile, err := m.QueryEDIDProfile(ctx, 4)
	if err != nil {
		t.Fatalf("QueryEDIDProfile() error = %v", err)
	}
	if profile != protocol.EDID4K30HDAudio {
		t.Errorf("QueryEDIDProfile() = %v, want %v", profile, protocol.EDID4K30HDAudio)
	}

	if err := m.Power(ctx, false); err != nil {
		t.Fatalf("Power(false) error = %v", err)
	}
	on, err := m.QueryPower(ctx)
	if err != nil || on {
		t.Errorf("QueryPower() = %v, %v; want false, nil", on, err)
	}

	if err := m.FactoryReset(ctx); err != nil {
		t.Fatalf("FactoryReset() error = %v", err)
	}
	if got := dev.State().Routes; got != [4]int{1, 2, 3, 4} {
		t.Errorf("Routes after reset = %v", got)
	}
}

// A matrix that stops answering mid fan-out leaves the earlier outputs
// switched and reports where it stopped.
func TestMatrix_EmulatorStopsAnswering(t *testing.T) {
	dev := emulator.New()
	dev.SilenceAfter(2)

	err := New(dev).RouteInputAll(context.Background(), 4)
	fe, ok := err.(*FanOutError)
	if !ok {
		t.Fatalf("error = %v, want *FanOutError", err)
	}
	if fe.Completed != 2 || fe.Target != 3 {
		t.Errorf("FanOutError = %+v", fe)
	}
	if !IsTransportError(err) {
		t.Error("cause is not a transport error")
	}
	if len(dev.Received()) != 3 {
		t.Errorf("device saw %d frames, want 3", len(dev.Received()))
	}
}
