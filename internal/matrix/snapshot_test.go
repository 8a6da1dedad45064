package matrix

import (
	"context"
	"testing"

	"github.com/Cody994/21905-SerialController/internal/emulator"
	"github.com/Cody994/21905-SerialController/internal/protocol"
)

func TestSnapshot(t *testing.T) {
	state := emulator.DefaultState()
	state.Beep = false
	state.Routes = [4]int{2, 2, 3, 1}
	state.HotPlug[3] = false
	state.Signal[0] = false
	state.EDID[2] = protocol.EDID4K30HDAudio
	dev := emulator.NewWithState(state)

	s, err := New(dev).Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	if !s.Power || s.Beep {
		t.Errorf("power/beep = %v/%v, want true/false", s.Power, s.Beep)
	}
	if len(s.Outputs) != 4 || len(s.Inputs) != 4 {
		t.Fatalf("got %d outputs / %d inputs", len(s.Outputs), len(s.Inputs))
	}
	for i, want := range state.Routes {
		if s.Outputs[i].Port != i+1 || s.Outputs[i].Input != want {
			t.Errorf("Outputs[%d] = %+v, want input %d", i, s.Outputs[i], want)
		}
	}
	if s.Outputs[3].Connected {
		t.Error("output 4 reports a display")
	}
	if s.Inputs[0].Connected {
		t.Error("input 1 reports a signal")
	}
	if s.Inputs[2].EDID != protocol.EDID4K30HDAudio || s.Inputs[2].EDIDName == "" {
		t.Errorf("Inputs[2] = %+v", s.Inputs[2])
	}

	// 2 global + 2 per output + 2 per input
	if n := len(dev.Received()); n != 18 {
		t.Errorf("device saw %d queries, want 18", n)
	}
}

func TestSnapshot_StopsOnFailure(t *testing.T) {
	dev := emulator.New()
	dev.SilenceAfter(3)

	_, err := New(dev).Snapshot(context.Background())
	if !IsTransportError(err) {
		t.Fatalf("Snapshot() error = %v, want transport error", err)
	}
	// power, beep, routing 1 answered; hot plug 1 was the last attempt
	if n := len(dev.Received()); n != 4 {
		t.Errorf("device saw %d queries, want 4", n)
	}
}
