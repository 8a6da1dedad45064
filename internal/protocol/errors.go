package protocol

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is matching
var (
	// ErrInvalidOperand indicates a port, profile or operand outside its range
	ErrInvalidOperand = errors.New("invalid operand")

	// ErrMalformedResponse indicates a reply that cannot be decoded
	ErrMalformedResponse = errors.New("malformed response")

	// ErrChecksumMismatch indicates a reply whose trailing checksum is wrong
	ErrChecksumMismatch = errors.New("checksum mismatch")
)

// OperandError describes an operand outside its valid closed range
type OperandError struct {
	Name  string // e.g. "input", "output", "EDID profile"
	Value int
	Min   int
	Max   int
}

func (e *OperandError) Error() string {
	return fmt.Sprintf("invalid operand: %s %d out of range %d-%d", e.Name, e.Value, e.Min, e.Max)
}

// Is lets errors.Is match ErrInvalidOperand
func (e *OperandError) Is(target error) bool {
	return target == ErrInvalidOperand
}

// CheckRange returns an *OperandError when value is outside [min, max]
func CheckRange(name string, value, min, max int) error {
	if value < min || value > max {
		return &OperandError{Name: name, Value: value, Min: min, Max: max}
	}
	return nil
}

// ResponseError describes a reply that could not be decoded
type ResponseError struct {
	Category Category
	Reason   string
	Length   int    // Length of the reply received
	Raw      []byte // Reply bytes, for debugging
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("malformed response to %s: %s (got %d bytes)", e.Category, e.Reason, e.Length)
}

// Is lets errors.Is match ErrMalformedResponse
func (e *ResponseError) Is(target error) bool {
	return target == ErrMalformedResponse
}

// ChecksumError indicates that a reply's trailing checksum byte disagrees
// with the sum of the preceding bytes
type ChecksumError struct {
	Category Category
	Expected byte
	Actual   byte
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum mismatch in response to %s: expected 0x%02X, got 0x%02X",
		e.Category, e.Expected, e.Actual)
}

// Is lets errors.Is match ErrChecksumMismatch
func (e *ChecksumError) Is(target error) bool {
	return target == ErrChecksumMismatch
}
