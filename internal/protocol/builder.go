package protocol

import (
	"bytes"
	"fmt"
)

// Frame is a complete command frame, checksum included
type Frame []byte

// String returns the frame as space separated upper-case hex
func (f Frame) String() string {
	return fmt.Sprintf("% X", []byte(f))
}

// EncodeBCD encodes 0-99 as a two-digit BCD byte (12 -> 0x12)
func EncodeBCD(value int) (byte, error) {
	if err := CheckRange("operand", value, 0, MaxOperand); err != nil {
		return 0, err
	}
	return byte(value/10)<<4 | byte(value%10), nil
}

// DecodeBCD decodes a two-digit BCD byte (0x12 -> 12).
// Returns false if either nibble is not a decimal digit.
func DecodeBCD(b byte) (int, bool) {
	hi, lo := b>>4, b&0x0F
	if hi > 9 || lo > 9 {
		return 0, false
	}
	return int(hi)*10 + int(lo), true
}

// Build constructs a single command frame for category.
//
// Frame Structure:
//
//	[0-2]   50 56 54       Magic
//	[3-4]   category       Category bytes from the command table
//	[5+]    operands       BCD operands, a zero byte between two operands
//	[..]    body           Fixed category body bytes
//	[..]    padding        Zeros up to Length-1
//	[N-1]   checksum       Sum of bytes 0..N-2 modulo 256
//
// The number of operands must match the category. Operand values must fit a
// two-digit BCD field (0-99); range checks against ports or profiles are the
// caller's job.
func Build(category Category, operands ...int) (Frame, error) {
	spec, err := category.Spec()
	if err != nil {
		return nil, err
	}

	if len(operands) != spec.Operands {
		return nil, fmt.Errorf("%s takes %d operand(s), got %d: %w",
			category, spec.Operands, len(operands), ErrInvalidOperand)
	}

	payload := make([]byte, 0, spec.Length-1)
	payload = append(payload, spec.Header[:]...)

	for i, value := range operands {
		if i > 0 {
			payload = append(payload, 0x00)
		}
		b, err := EncodeBCD(value)
		if err != nil {
			return nil, fmt.Errorf("%s operand %d: %w", category, i+1, err)
		}
		payload = append(payload, b)
	}

	payload = append(payload, spec.Body...)

	if len(payload) > spec.Length-1 {
		return nil, fmt.Errorf("%s payload is %d bytes, frame holds %d", category, len(payload), spec.Length-1)
	}

	// Zero padding up to the checksum byte
	payload = append(payload, make([]byte, spec.Length-1-len(payload))...)

	return Frame(AppendChecksum(payload)), nil
}

// BuildFanOut constructs one frame per target, each sharing the same leading
// operand. Frames are returned in target order.
//
// Used for commands the matrix only accepts one port pair at a time:
//   - RouteInput: lead = input, targets = outputs
//   - CopyEDID: lead = source output, targets = inputs
//
// Every target is encoded before any frame is returned, so a bad target never
// yields a partial set.
func BuildFanOut(category Category, lead int, targets []int) ([]Frame, error) {
	spec, err := category.Spec()
	if err != nil {
		return nil, err
	}
	if spec.Operands != 2 {
		return nil, fmt.Errorf("%s does not take a port pair", category)
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("%s needs at least one target: %w", category, ErrInvalidOperand)
	}

	frames := make([]Frame, 0, len(targets))
	for _, target := range targets {
		frame, err := Build(category, lead, target)
		if err != nil {
			return nil, err
		}
		frames = append(frames, frame)
	}
	return frames, nil
}

// Decoded is a frame matched back to its category
type Decoded struct {
	Category Category
	Operands []int
}

// Identify matches a frame against the command table and returns its
// category and decoded operands. The frame's checksum must be valid.
//
// SetEDIDProfile and QueryOutputRouting share a header; when both match, the
// reading with fewer operands wins, so a query is never mistaken for a set.
func Identify(frame []byte) (*Decoded, error) {
	if len(frame) < HeaderLength+1 {
		return nil, fmt.Errorf("frame too short: %d bytes", len(frame))
	}
	if !VerifyChecksum(frame) {
		return nil, fmt.Errorf("frame checksum mismatch: expected 0x%02X, got 0x%02X",
			Checksum(frame[:len(frame)-1]), frame[len(frame)-1])
	}

	var best *Decoded
	bestOperands := -1
	for _, category := range Categories {
		spec := commandTable[category]
		operands, ok := matchFrame(spec, frame)
		if !ok {
			continue
		}
		if best == nil || spec.Operands < bestOperands {
			best = &Decoded{Category: category, Operands: operands}
			bestOperands = spec.Operands
		}
	}

	if best == nil {
		return nil, fmt.Errorf("unrecognized frame: % X", frame)
	}
	return best, nil
}

// matchFrame checks frame against one table row
func matchFrame(spec CommandSpec, frame []byte) ([]int, bool) {
	if len(frame) != spec.Length {
		return nil, false
	}
	if !bytes.Equal(frame[:HeaderLength], spec.Header[:]) {
		return nil, false
	}

	pos := HeaderLength
	operands := make([]int, 0, spec.Operands)
	for i := 0; i < spec.Operands; i++ {
		if i > 0 {
			if frame[pos] != 0x00 {
				return nil, false
			}
			pos++
		}
		value, ok := DecodeBCD(frame[pos])
		if !ok {
			return nil, false
		}
		operands = append(operands, value)
		pos++
	}

	if !bytes.Equal(frame[pos:pos+len(spec.Body)], spec.Body) {
		return nil, false
	}
	pos += len(spec.Body)

	for _, b := range frame[pos : len(frame)-1] {
		if b != 0x00 {
			return nil, false
		}
	}
	return operands, true
}
