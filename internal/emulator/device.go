package emulator

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Cody994/21905-SerialController/internal/logging"
	"github.com/Cody994/21905-SerialController/internal/protocol"
)

// DefaultDeviceType is the device type byte the emulator reports
const DefaultDeviceType = 0x21

// ErrNoReply is returned by ReadFull when nothing is waiting to be read,
// the same way a real port times out.
var ErrNoReply = errors.New("emulator: no reply pending")

// State is a snapshot of the emulated matrix
type State struct {
	Power      bool
	Beep       bool
	Routes     [protocol.MaxPort]int                  // Index = output-1, value = input
	EDID       [protocol.MaxPort]protocol.EDIDProfile // Index = input-1
	HotPlug    [protocol.MaxPort]bool                 // Index = output-1
	Signal     [protocol.MaxPort]bool                 // Index = input-1
	DeviceType byte
}

// DefaultState is the factory state: powered, beep on, output n showing
// input n, EDID profile 1 on every input, everything connected.
func DefaultState() State {
	s := State{Power: true, Beep: true, DeviceType: DefaultDeviceType}
	for i := 0; i < protocol.MaxPort; i++ {
		s.Routes[i] = i + 1
		s.EDID[i] = protocol.EDID1080pStereo
		s.HotPlug[i] = true
		s.Signal[i] = true
	}
	return s
}

// Device is an in-memory 21905 that speaks the serial protocol.
// It satisfies matrix.Transport and is safe for concurrent use.
type Device struct {
	mu      sync.Mutex
	state   State
	pending []byte
	log     []protocol.Decoded
	reboots int

	// Replies stop after silentAfter accepted frames when >= 0
	silentAfter int
	accepted    int
}

// New creates a Device in the factory state
func New() *Device {
	return &Device{state: DefaultState(), silentAfter: -1}
}

// NewWithState creates a Device starting from s
func NewWithState(s State) *Device {
	return &Device{state: s, silentAfter: -1}
}

// SilenceAfter makes the device stop replying once n frames have been
// accepted. A negative n restores normal behavior.
func (d *Device) SilenceAfter(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.silentAfter = n
	d.accepted = 0
}

// State returns a copy of the current state
func (d *Device) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// SetHotPlug marks a display as connected or not on output (1-4)
func (d *Device) SetHotPlug(output int, connected bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if output >= protocol.MinPort && output <= protocol.MaxPort {
		d.state.HotPlug[output-1] = connected
	}
}

// SetSignal marks a source as present or not on input (1-4)
func (d *Device) SetSignal(input int, present bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if input >= protocol.MinPort && input <= protocol.MaxPort {
		d.state.Signal[input-1] = present
	}
}

// Received returns every frame the device has decoded, in order
func (d *Device) Received() []protocol.Decoded {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]protocol.Decoded, len(d.log))
	copy(out, d.log)
	return out
}

// Reboots returns how many reboot commands were applied
func (d *Device) Reboots() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.reboots
}

// Write decodes one complete frame, applies it, and queues the reply.
// Frames that fail to decode are dropped without a reply, which is what the
// hardware does with line noise.
func (d *Device) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	decoded, err := protocol.Identify(p)
	if err != nil {
		logging.Debug("Emulator dropped frame", zap.Error(err), zap.String("frame", protocol.Frame(p).String()))
		return len(p), nil
	}
	d.log = append(d.log, *decoded)

	raw := d.apply(decoded)

	if d.silentAfter >= 0 && d.accepted >= d.silentAfter {
		return len(p), nil
	}
	d.accepted++

	resp, err := protocol.BuildResponse(decoded.Category, raw)
	if err != nil {
		return len(p), fmt.Errorf("emulator reply: %w", err)
	}
	d.pending = append(d.pending, resp...)
	return len(p), nil
}

// ReadFull returns the next n queued reply bytes
func (d *Device) ReadFull(n int) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.pending) < n {
		d.pending = nil
		return nil, ErrNoReply
	}
	out := make([]byte, n)
	copy(out, d.pending[:n])
	d.pending = d.pending[n:]
	return out, nil
}

// Close is a no-op so the Device can stand in for a serial port
func (d *Device) Close() error {
	return nil
}

// apply updates state for one frame and returns the reply field byte
func (d *Device) apply(f *protocol.Decoded) byte {
	ops := f.Operands
	switch f.Category {
	case protocol.RouteInput:
		if out := ops[1]; out >= protocol.MinPort && out <= protocol.MaxPort {
			d.state.Routes[out-1] = ops[0]
		}

	case protocol.SetEDIDProfile:
		if in := ops[1]; in >= protocol.MinPort && in <= protocol.MaxPort {
			d.state.EDID[in-1] = protocol.EDIDProfile(ops[0])
		}

	case protocol.CopyEDID:
		// Copied EDIDs are not one of the presets; the emulator records
		// them as the source output's number so queries stay in range.
		profile := protocol.EDIDProfile(ops[0])
		if ops[1] == protocol.AllInputs {
			for i := range d.state.EDID {
				d.state.EDID[i] = profile
			}
		} else if ops[1] <= protocol.MaxPort {
			d.state.EDID[ops[1]-1] = profile
		}

	case protocol.BeepOn:
		d.state.Beep = true
	case protocol.BeepOff:
		d.state.Beep = false
	case protocol.PowerOn:
		d.state.Power = true
	case protocol.PowerOff:
		d.state.Power = false
	case protocol.Reboot:
		d.reboots++
	case protocol.FactoryReset:
		hp, sig, dt := d.state.HotPlug, d.state.Signal, d.state.DeviceType
		d.state = DefaultState()
		d.state.HotPlug, d.state.Signal, d.state.DeviceType = hp, sig, dt

	case protocol.QueryOutputRouting:
		return bcd(d.portValue(d.state.Routes[:], ops[0]))
	case protocol.QueryEDIDProfile:
		if in := ops[0]; in >= protocol.MinPort && in <= protocol.MaxPort {
			return bcd(int(d.state.EDID[in-1]))
		}
	case protocol.QueryBeep:
		return status(protocol.QueryBeep, d.state.Beep)
	case protocol.QueryPower:
		return status(protocol.QueryPower, d.state.Power)
	case protocol.QueryHotPlugDetect:
		return status(protocol.QueryHotPlugDetect, d.portFlag(d.state.HotPlug, ops[0]))
	case protocol.QueryInputStatus:
		return status(protocol.QueryInputStatus, d.portFlag(d.state.Signal, ops[0]))
	case protocol.QueryDeviceType:
		return d.state.DeviceType
	}
	return 0
}

func (d *Device) portValue(values []int, port int) int {
	if port < protocol.MinPort || port > protocol.MaxPort {
		return 0
	}
	return values[port-1]
}

func (d *Device) portFlag(flags [protocol.MaxPort]bool, port int) bool {
	if port < protocol.MinPort || port > protocol.MaxPort {
		return false
	}
	return flags[port-1]
}

func bcd(n int) byte {
	b, err := protocol.EncodeBCD(n)
	if err != nil {
		return 0
	}
	return b
}

func status(category protocol.Category, active bool) byte {
	spec, _ := protocol.Lookup(category)
	if active {
		return spec.Response.Status.Active
	}
	return spec.Response.Status.Inactive
}
