package protocol

import (
	"fmt"
)

// Response is a raw reply read from the matrix
type Response []byte

// Value is a decoded reply field
type Value struct {
	Category Category
	Kind     FieldKind
	Int      int  // FieldInt: decoded BCD value
	Active   bool // FieldStatus: true for the category's "active" pattern
	Raw      byte // Field byte as received
}

func (v Value) String() string {
	switch v.Kind {
	case FieldInt:
		return fmt.Sprintf("%s=%d", v.Category, v.Int)
	case FieldStatus:
		return fmt.Sprintf("%s=%t (0x%02X)", v.Category, v.Active, v.Raw)
	default:
		return fmt.Sprintf("%s=0x%02X", v.Category, v.Raw)
	}
}

// Parser decodes replies using the command table's field locations.
// The zero value ignores reply checksums.
type Parser struct {
	// VerifyChecksum rejects replies that are not exactly ResponseLength bytes
	// or whose trailing byte is not the checksum of the rest.
	VerifyChecksum bool
}

// Parse decodes resp with a default Parser
func Parse(category Category, resp []byte) (Value, error) {
	return Parser{}.Parse(category, resp)
}

// Parse extracts the category's field from resp.
//
// Errors:
//   - *ResponseError (ErrMalformedResponse) if resp is too short for the
//     field, the field is not valid BCD, or a status byte matches neither
//     pattern
//   - *ChecksumError (ErrChecksumMismatch) if VerifyChecksum is set and the
//     trailing checksum is wrong
func (p Parser) Parse(category Category, resp []byte) (Value, error) {
	spec, err := category.Spec()
	if err != nil {
		return Value{}, err
	}
	if spec.Response == nil {
		return Value{}, fmt.Errorf("%s has no reply field", category)
	}
	field := spec.Response

	if p.VerifyChecksum {
		if err := verifyResponse(category, resp); err != nil {
			return Value{}, err
		}
	}

	if len(resp) < field.End() {
		return Value{}, &ResponseError{
			Category: category,
			Reason:   fmt.Sprintf("need %d bytes to read field at offset %d", field.End(), field.Offset),
			Length:   len(resp),
			Raw:      resp,
		}
	}

	raw := resp[field.Offset]
	value := Value{Category: category, Kind: field.Kind, Raw: raw}

	switch field.Kind {
	case FieldInt:
		n, ok := DecodeBCD(raw)
		if !ok {
			return Value{}, &ResponseError{
				Category: category,
				Reason:   fmt.Sprintf("field byte 0x%02X is not BCD", raw),
				Length:   len(resp),
				Raw:      resp,
			}
		}
		value.Int = n

	case FieldStatus:
		switch raw {
		case field.Status.Active:
			value.Active = true
		case field.Status.Inactive:
			value.Active = false
		default:
			return Value{}, &ResponseError{
				Category: category,
				Reason: fmt.Sprintf("status byte 0x%02X is neither 0x%02X nor 0x%02X",
					raw, field.Status.Active, field.Status.Inactive),
				Length: len(resp),
				Raw:    resp,
			}
		}
	}

	return value, nil
}

// Int decodes an integer reply field (routing, EDID profile)
func (p Parser) Int(category Category, resp []byte) (int, error) {
	v, err := p.Parse(category, resp)
	if err != nil {
		return 0, err
	}
	if v.Kind != FieldInt {
		return 0, fmt.Errorf("%s reply is %s, not int", category, v.Kind)
	}
	return v.Int, nil
}

// Status decodes a two-state reply field (power, beep, hot plug, input)
func (p Parser) Status(category Category, resp []byte) (bool, error) {
	v, err := p.Parse(category, resp)
	if err != nil {
		return false, err
	}
	if v.Kind != FieldStatus {
		return false, fmt.Errorf("%s reply is %s, not status", category, v.Kind)
	}
	return v.Active, nil
}

// Raw returns the reply field byte without interpretation
func (p Parser) Raw(category Category, resp []byte) (byte, error) {
	v, err := p.Parse(category, resp)
	if err != nil {
		return 0, err
	}
	return v.Raw, nil
}

// verifyResponse checks reply length and trailing checksum
func verifyResponse(category Category, resp []byte) error {
	if len(resp) != ResponseLength {
		return &ResponseError{
			Category: category,
			Reason:   fmt.Sprintf("expected %d-byte reply", ResponseLength),
			Length:   len(resp),
			Raw:      resp,
		}
	}
	last := len(resp) - 1
	if expected := Checksum(resp[:last]); resp[last] != expected {
		return &ChecksumError{Category: category, Expected: expected, Actual: resp[last]}
	}
	return nil
}

// BuildResponse constructs a well-formed reply carrying raw at the category's
// field offset. The matrix echoes the request header in its replies; this
// does the same. Used by the emulator and tests.
func BuildResponse(category Category, raw byte) (Response, error) {
	spec, err := category.Spec()
	if err != nil {
		return nil, err
	}

	resp := make([]byte, ResponseLength-1)
	copy(resp, spec.Header[:])
	if spec.Response != nil {
		resp[spec.Response.Offset] = raw
	}
	return Response(AppendChecksum(resp)), nil
}
