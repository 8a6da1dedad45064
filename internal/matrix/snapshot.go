package matrix

import (
	"context"
	"fmt"

	"github.com/Cody994/21905-SerialController/internal/protocol"
)

// PortStatus describes one output or input
type PortStatus struct {
	Port      int                  `json:"port"`
	Input     int                  `json:"input,omitempty"`     // Outputs: current source
	Connected bool                 `json:"connected"`           // Outputs: display present; inputs: signal present
	EDID      protocol.EDIDProfile `json:"edid,omitempty"`      // Inputs: assigned preset
	EDIDName  string               `json:"edid_name,omitempty"` // Inputs: preset name
}

// Snapshot is every readable setting of the matrix at one point in time
type Snapshot struct {
	Power   bool         `json:"power"`
	Beep    bool         `json:"beep"`
	Outputs []PortStatus `json:"outputs"`
	Inputs  []PortStatus `json:"inputs"`
}

// Snapshot runs every query in a fixed order: power, beep, then per output
// routing and hot plug, then per input signal and EDID profile. The first
// failing query aborts the snapshot.
func (m *Matrix) Snapshot(ctx context.Context) (*Snapshot, error) {
	var s Snapshot
	var err error

	if s.Power, err = m.QueryPower(ctx); err != nil {
		return nil, fmt.Errorf("power: %w", err)
	}
	if s.Beep, err = m.QueryBeep(ctx); err != nil {
		return nil, fmt.Errorf("beep: %w", err)
	}

	for _, out := range Ports() {
		ps := PortStatus{Port: out}
		if ps.Input, err = m.QueryRouting(ctx, out); err != nil {
			return nil, fmt.Errorf("output %d routing: %w", out, err)
		}
		if ps.Connected, err = m.QueryHotPlugDetect(ctx, out); err != nil {
			return nil, fmt.Errorf("output %d hot plug: %w", out, err)
		}
		s.Outputs = append(s.Outputs, ps)
	}

	for _, in := range Ports() {
		ps := PortStatus{Port: in}
		if ps.Connected, err = m.QueryInputStatus(ctx, in); err != nil {
			return nil, fmt.Errorf("input %d status: %w", in, err)
		}
		if ps.EDID, err = m.QueryEDIDProfile(ctx, in); err != nil {
			return nil, fmt.Errorf("input %d EDID: %w", in, err)
		}
		ps.EDIDName = ps.EDID.String()
		s.Inputs = append(s.Inputs, ps)
	}

	return &s, nil
}
