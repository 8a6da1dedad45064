// Package protocol implements the Blackbird 4x4 HDMI matrix RS-232 protocol.
//
// This package builds command frames for the Monoprice Blackbird 21905 matrix
// switch and parses the fixed-layout replies it sends back. It does no I/O;
// sending frames and reading replies is the caller's job (see package matrix).
//
// # Frame Format
//
// Every command frame is 18 bytes on the wire:
//   - Magic: 3 bytes, "PVT" (0x50 0x56 0x54)
//   - Category: 2 bytes identifying the command or query
//   - Operands: port/profile numbers as two-digit BCD bytes (12 -> 0x12)
//   - Body: fixed bytes for commands without operands (power on/off, beep)
//   - Padding: zero bytes up to byte 16
//   - Checksum: 1 byte, sum of all preceding bytes modulo 256
//
// Commands with two operands place a zero byte between them:
//
//	50 56 54 02 03 | 02 00 03 | 00 ... 00 | 04     route input 2 to output 3
//
// # Replies
//
// The matrix answers every frame with an 18-byte reply. Query results live at
// a fixed offset in that reply: power and device type at byte 5, every other
// query at byte 7. Integer fields (routing, EDID profile) are BCD encoded.
// Status fields use one of two fixed byte patterns per query:
//
//	power       0x0F on     0xF0 off
//	beep        0x00 on     0xFF off
//	hot plug    0x00 high   0xFF low
//	input       0x00 signal 0xFF none
//
// # Usage Example - Construction
//
//	frame, err := protocol.Build(protocol.RouteInput, 2, 3)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_, err = port.Write(frame)
//
// # Usage Example - Parsing
//
//	reply := make([]byte, protocol.ResponseLength)
//	_, err := io.ReadFull(port, reply)
//	on, err := protocol.Parser{}.Status(protocol.QueryPower, reply)
//
// # Checksum Verification
//
// The matrix's own reply checksum is ignored by default, matching how the
// device has always been driven. A Parser with VerifyChecksum set rejects
// replies of the wrong length or with a bad trailing checksum.
//
// # Thread Safety
//
// All functions are stateless and safe for concurrent use. The command table
// is read-only after package initialization.
package protocol
