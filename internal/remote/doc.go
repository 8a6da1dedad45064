// Package remote is an HTTP client for a blackbird bridge.
//
// A bridge is a machine running 'blackbird serve' with the matrix on its
// serial port. Every operation goes to POST /api/command as one request
// envelope, so the bridge runs it with the same validation and error kinds
// as a local command.
//
// Basic usage:
//
//	c := remote.NewClient("192.168.1.20:8421")
//	if err := c.Route(ctx, 2, 1, 3); err != nil {
//	    fmt.Println(remote.TroubleshootingHint(err))
//	}
//
// Network failures are retried with exponential backoff, except for reboot
// and factory reset. A failed matrix command comes back as an *Error of
// type ErrTypeRemote carrying the bridge's error kind and hint.
package remote
