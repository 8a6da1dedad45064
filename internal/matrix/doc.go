// Package matrix is the command API for a Blackbird 4x4 HDMI matrix.
//
// A Matrix turns operations such as "route input 2 to outputs 1 and 3" or
// "is the unit powered on?" into protocol frames, sends them over a
// Transport, and decodes the replies.
//
// # Request/Response Model
//
// The matrix has no request IDs. Every operation writes one frame and reads
// one 18-byte reply before returning. Operations that touch several ports
// (RouteInput, CopyEDID) repeat that cycle once per port, in the order the
// caller gave, and never overlap two commands.
//
// Matrix does no locking. Callers sharing one Matrix between goroutines must
// serialize access themselves (the network bridge in package server does).
//
// # Usage Example
//
//	port, err := transport.Open(transport.Config{Port: "/dev/ttyUSB0"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
//	m := matrix.New(port)
//	if err := m.RouteInput(ctx, 2, 1, 3); err != nil {
//	    log.Fatal(err)
//	}
//	routes, err := m.QueryRoutingAll(ctx)
//
// # Error Handling
//
// Operand errors are reported before any byte is written. Transport and
// parse errors are returned as-is, wrapped in *TransportError or
// *protocol.ResponseError. Nothing is retried.
//
// Multi-port operations are not transactional: a *FanOutError reports which
// port failed and how many frames the matrix had already accepted.
package matrix
