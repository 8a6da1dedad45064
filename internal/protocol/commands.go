package protocol

import "fmt"

// Frame layout constants
const (
	HeaderLength   = 5  // Magic (3) + category (2)
	FrameLength    = 18 // Every 21905 command frame, checksum included
	ResponseLength = 18 // Every 21905 reply
)

// Port and profile ranges accepted by the matrix
const (
	MinPort        = 1
	MaxPort        = 4
	AllInputs      = 0 // Copy-EDID target meaning "every input"
	MinEDIDProfile = 1
	MaxEDIDProfile = 15

	// MaxOperand is the largest value a two-digit BCD field can carry
	MaxOperand = 99
)

// Magic prefixes every frame ("PVT")
var Magic = [3]byte{0x50, 0x56, 0x54}

// Category identifies a command or query kind
type Category int

const (
	RouteInput Category = iota
	CopyEDID
	SetEDIDProfile
	BeepOn
	BeepOff
	PowerOn
	PowerOff
	Reboot
	FactoryReset
	QueryOutputRouting
	QueryEDIDProfile
	QueryBeep
	QueryPower
	QueryHotPlugDetect
	QueryInputStatus
	QueryDeviceType
)

// FieldKind describes how a reply field is decoded
type FieldKind int

const (
	FieldInt    FieldKind = iota // BCD integer
	FieldStatus                  // One of two fixed byte patterns
	FieldRaw                     // Raw byte, no interpretation
)

func (k FieldKind) String() string {
	switch k {
	case FieldInt:
		return "int"
	case FieldStatus:
		return "status"
	case FieldRaw:
		return "raw"
	default:
		return fmt.Sprintf("FieldKind(%d)", int(k))
	}
}

// StatusPattern holds the two byte values a status field can take
type StatusPattern struct {
	Active   byte
	Inactive byte
}

// FieldSpec locates the interesting field inside a reply
type FieldSpec struct {
	Offset int
	Length int
	Kind   FieldKind
	Status StatusPattern // Only used when Kind == FieldStatus
}

// End returns the reply length needed to read this field
func (f FieldSpec) End() int {
	return f.Offset + f.Length
}

// CommandSpec is one row of the command table.
//
// Operands are written right after the header in the order given by the
// caller. Two-operand categories put a zero byte between the operands. Body
// follows the operands and the frame is then zero padded to Length-1 bytes
// before the checksum.
type CommandSpec struct {
	Name     string
	Header   [HeaderLength]byte
	Operands int
	Body     []byte
	Length   int
	Response *FieldSpec // nil for commands with no parsed reply
}

// IsQuery reports whether the category has a parsed reply field
func (s CommandSpec) IsQuery() bool {
	return s.Response != nil
}

func header(category, sub byte) [HeaderLength]byte {
	return [HeaderLength]byte{Magic[0], Magic[1], Magic[2], category, sub}
}

// Reply field locations. Power and device type sit at byte 5; everything
// else the matrix reports at byte 7.
var (
	routingField = &FieldSpec{Offset: 7, Length: 1, Kind: FieldInt}
	edidField    = &FieldSpec{Offset: 7, Length: 1, Kind: FieldInt}
	beepField    = &FieldSpec{Offset: 7, Length: 1, Kind: FieldStatus, Status: StatusPattern{Active: 0x00, Inactive: 0xFF}}
	powerField   = &FieldSpec{Offset: 5, Length: 1, Kind: FieldStatus, Status: StatusPattern{Active: 0x0F, Inactive: 0xF0}}
	hpdField     = &FieldSpec{Offset: 7, Length: 1, Kind: FieldStatus, Status: StatusPattern{Active: 0x00, Inactive: 0xFF}}
	inputField   = &FieldSpec{Offset: 7, Length: 1, Kind: FieldStatus, Status: StatusPattern{Active: 0x00, Inactive: 0xFF}}
	deviceField  = &FieldSpec{Offset: 5, Length: 1, Kind: FieldRaw}
)

// commandTable maps every category to its wire layout.
// Source: Monoprice 21905 RS-232 control sheet (rev 180103)
var commandTable = map[Category]CommandSpec{
	RouteInput:     {Name: "route-input", Header: header(0x02, 0x03), Operands: 2, Length: FrameLength},
	CopyEDID:       {Name: "copy-edid", Header: header(0x03, 0x04), Operands: 2, Length: FrameLength},
	SetEDIDProfile: {Name: "set-edid-profile", Header: header(0x02, 0x01), Operands: 2, Length: FrameLength},
	BeepOn:         {Name: "beep-on", Header: header(0x06, 0x01), Body: []byte{0x0F, 0x00, 0xDD}, Length: FrameLength},
	BeepOff:        {Name: "beep-off", Header: header(0x06, 0x01), Body: []byte{0xF0}, Length: FrameLength},
	PowerOn:        {Name: "power-on", Header: header(0x08, 0x0B), Body: []byte{0x0F, 0x00, 0x0F}, Length: FrameLength},
	PowerOff:       {Name: "power-off", Header: header(0x08, 0x0B), Body: []byte{0xF0, 0x00, 0xF0}, Length: FrameLength},
	Reboot:         {Name: "reboot", Header: header(0x08, 0x0D), Length: FrameLength},
	FactoryReset:   {Name: "factory-reset", Header: header(0x08, 0x0A), Length: FrameLength},

	QueryOutputRouting: {Name: "query-output-routing", Header: header(0x02, 0x01), Operands: 1, Length: FrameLength, Response: routingField},
	QueryEDIDProfile:   {Name: "query-edid-profile", Header: header(0x01, 0x0C), Operands: 1, Length: FrameLength, Response: edidField},
	QueryBeep:          {Name: "query-beep", Header: header(0x01, 0x0B), Length: FrameLength, Response: beepField},
	QueryPower:         {Name: "query-power", Header: header(0x08, 0x0C), Length: FrameLength, Response: powerField},
	QueryHotPlugDetect: {Name: "query-hot-plug-detect", Header: header(0x01, 0x05), Operands: 1, Length: FrameLength, Response: hpdField},
	QueryInputStatus:   {Name: "query-input-status", Header: header(0x01, 0x04), Operands: 1, Length: FrameLength, Response: inputField},
	QueryDeviceType: {
		Name:     "query-device-type",
		Header:   header(0x01, 0x01),
		Body:     []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xCC},
		Length:   FrameLength,
		Response: deviceField,
	},
}

// Categories lists every category in declaration order
var Categories = []Category{
	RouteInput, CopyEDID, SetEDIDProfile,
	BeepOn, BeepOff, PowerOn, PowerOff, Reboot, FactoryReset,
	QueryOutputRouting, QueryEDIDProfile, QueryBeep, QueryPower,
	QueryHotPlugDetect, QueryInputStatus, QueryDeviceType,
}

// Lookup returns the command table entry for a category
func Lookup(c Category) (CommandSpec, bool) {
	spec, ok := commandTable[c]
	return spec, ok
}

// Spec returns the command table entry for a category or an error if the
// category is unknown
func (c Category) Spec() (CommandSpec, error) {
	spec, ok := commandTable[c]
	if !ok {
		return CommandSpec{}, fmt.Errorf("unknown command category %d", int(c))
	}
	return spec, nil
}

// IsQuery reports whether the category expects a parsed reply
func (c Category) IsQuery() bool {
	spec, ok := commandTable[c]
	return ok && spec.IsQuery()
}

// String returns the category's command name
func (c Category) String() string {
	if spec, ok := commandTable[c]; ok {
		return spec.Name
	}
	return fmt.Sprintf("Category(%d)", int(c))
}
