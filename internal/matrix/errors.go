package matrix

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Cody994/21905-SerialController/internal/protocol"
)

// Sentinel errors. The protocol sentinels are re-exported so callers only
// need to import this package.
var (
	ErrInvalidOperand    = protocol.ErrInvalidOperand
	ErrMalformedResponse = protocol.ErrMalformedResponse
	ErrChecksumMismatch  = protocol.ErrChecksumMismatch

	// ErrTransport matches any *TransportError
	ErrTransport = errors.New("transport error")
)

// TransportError wraps a write or read failure from the Transport.
// The underlying error is kept unmodified and available through Unwrap.
type TransportError struct {
	Op       string // "write" or "read"
	Category protocol.Category
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Category, e.Op, e.Err)
}

// Unwrap returns the underlying transport error
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match ErrTransport
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// Timeout reports whether the underlying error was a timeout
func (e *TransportError) Timeout() bool {
	var t interface{ Timeout() bool }
	if errors.As(e.Err, &t) && t.Timeout() {
		return true
	}
	return errors.Is(e.Err, os.ErrDeadlineExceeded)
}

// FanOutError reports a failure partway through a multi-port operation.
// Frames before Index were accepted by the matrix; frames after it were not
// sent.
type FanOutError struct {
	Category  protocol.Category
	Index     int // Position of the failed target in the caller's list
	Target    int // Port number that failed
	Completed int // Frames sent and acknowledged before the failure
	Total     int // Frames the operation would have sent
	Err       error
}

func (e *FanOutError) Error() string {
	return fmt.Sprintf("%s failed on port %d (%d of %d completed): %v",
		e.Category, e.Target, e.Completed, e.Total, e.Err)
}

// Unwrap returns the error of the failed sub-operation
func (e *FanOutError) Unwrap() error {
	return e.Err
}

// IsInvalidOperand checks if an error is an operand validation error
func IsInvalidOperand(err error) bool {
	return errors.Is(err, ErrInvalidOperand)
}

// IsTransportError checks if an error came from the Transport
func IsTransportError(err error) bool {
	return errors.Is(err, ErrTransport)
}

// IsMalformedResponse checks if an error is a reply decoding error
func IsMalformedResponse(err error) bool {
	return errors.Is(err, ErrMalformedResponse) || errors.Is(err, ErrChecksumMismatch)
}

// TroubleshootingHint returns user-facing advice for an error
func TroubleshootingHint(err error) string {
	var transportErr *TransportError
	switch {
	case err == nil:
		return ""

	case IsInvalidOperand(err):
		return strings.Join([]string{
			"A port or profile number is out of range.",
			"Valid values:",
			"  • Inputs and outputs: 1-4",
			"  • EDID copy targets: 0 (all inputs) or 1-4",
			"  • EDID profiles: 1-15 (see 'blackbird edid profiles')",
		}, "\n")

	case errors.As(err, &transportErr) && transportErr.Timeout():
		return strings.Join([]string{
			"The matrix did not answer in time.",
			"Troubleshooting:",
			"  • Check the RS-232 cable and that the matrix is powered",
			"  • Confirm the baud rate (factory default 115200)",
			"  • Try a longer --timeout",
		}, "\n")

	case IsTransportError(err):
		return strings.Join([]string{
			"Serial communication failed.",
			"Troubleshooting:",
			"  • Check the serial port name (see 'blackbird ports')",
			"  • Make sure no other program has the port open",
			"  • Unplug and replug the USB serial adapter",
		}, "\n")

	case errors.Is(err, ErrChecksumMismatch):
		return strings.Join([]string{
			"The matrix reply failed checksum verification.",
			"Troubleshooting:",
			"  • Check for line noise or a loose cable",
			"  • Confirm the baud rate matches the matrix",
			"  • Retry without --verify-checksum to compare",
		}, "\n")

	case IsMalformedResponse(err):
		return strings.Join([]string{
			"The matrix reply could not be decoded.",
			"Troubleshooting:",
			"  • Another device may be answering on this port",
			"  • Power cycle the matrix and try again",
		}, "\n")

	default:
		return "An error occurred. Please check the error message for details."
	}
}
