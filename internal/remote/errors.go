package remote

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"syscall"
)

// ErrorType represents the category of a bridge client failure
type ErrorType int

const (
	// ErrTypeNetwork indicates a network-level error
	ErrTypeNetwork ErrorType = iota
	// ErrTypeTimeout indicates the request timed out
	ErrTypeTimeout
	// ErrTypeConnectionRefused indicates nothing is listening at the address
	ErrTypeConnectionRefused
	// ErrTypeDNS indicates a hostname that does not resolve
	ErrTypeDNS
	// ErrTypeHTTP indicates an unexpected HTTP status without an envelope
	ErrTypeHTTP
	// ErrTypeParse indicates a body that is not a valid response
	ErrTypeParse
	// ErrTypeRemote indicates the bridge ran the request and the matrix
	// command failed
	ErrTypeRemote
)

func (et ErrorType) String() string {
	switch et {
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeConnectionRefused:
		return "Connection Refused"
	case ErrTypeDNS:
		return "DNS Error"
	case ErrTypeHTTP:
		return "HTTP Error"
	case ErrTypeParse:
		return "Parse Error"
	case ErrTypeRemote:
		return "Bridge Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// Error is a failed bridge request
type Error struct {
	Type       ErrorType
	Message    string
	StatusCode int    // HTTP status, when a response arrived
	Kind       string // Error kind reported by the bridge (ErrTypeRemote)
	Hint       string // Troubleshooting text reported by the bridge
	Err        error
	Retryable  bool
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// classifyNetworkError maps a transport failure to an *Error
func classifyNetworkError(message string, err error) *Error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}

	e := &Error{Type: ErrTypeNetwork, Message: message, Err: err, Retryable: true}

	var dnsErr *net.DNSError
	var opErr *net.OpError
	switch {
	case os.IsTimeout(err):
		e.Type = ErrTypeTimeout
	case errors.As(err, &dnsErr):
		e.Type = ErrTypeDNS
		e.Retryable = false
	case errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.ECONNREFUSED):
		e.Type = ErrTypeConnectionRefused
	}
	return e
}

// IsRetryable checks if an error should be retried
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return false
}

// IsRemoteError reports whether the bridge answered with a failed command
func IsRemoteError(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Type == ErrTypeRemote
}

// ErrorKind returns the bridge's error kind, or "" for local failures
func ErrorKind(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// TroubleshootingHint returns advice in the same layout as
// matrix.TroubleshootingHint: a summary line, then bulleted tips.
// Failures reported by the bridge carry the bridge's own hint.
func TroubleshootingHint(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}

	switch e.Type {
	case ErrTypeRemote:
		if e.Hint != "" {
			return e.Hint
		}
		return "The bridge reported: " + e.Message

	case ErrTypeTimeout:
		return strings.Join([]string{
			"The bridge did not answer in time.",
			"Troubleshooting:",
			"  • A full status read can take several seconds on a slow line",
			"  • Try a longer --timeout",
		}, "\n")

	case ErrTypeConnectionRefused:
		return strings.Join([]string{
			"Nothing is listening at that address.",
			"Troubleshooting:",
			"  • Check that 'blackbird serve' is running on the bridge machine",
			"  • Verify the port (default 8421)",
		}, "\n")

	case ErrTypeDNS:
		return strings.Join([]string{
			"Could not resolve the bridge hostname.",
			"Troubleshooting:",
			"  • Use the IP address instead (see 'blackbird bridges')",
			"  • Verify you're on the same network as the bridge",
		}, "\n")

	case ErrTypeHTTP, ErrTypeParse:
		return strings.Join([]string{
			"The address answered, but not like a blackbird bridge.",
			"Troubleshooting:",
			"  • Check the URL points at 'blackbird serve'",
			"  • Make sure both ends run the same blackbird version",
		}, "\n")

	default:
		return strings.Join([]string{
			"Could not reach the bridge.",
			"Troubleshooting:",
			"  • Check the network connection",
			"  • Find bridges with 'blackbird bridges'",
		}, "\n")
	}
}
