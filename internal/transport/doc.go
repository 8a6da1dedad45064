// Package transport opens the RS-232 line to the matrix using go.bug.st/serial.
//
// A Serial satisfies matrix.Transport: Write clears stale input and writes a
// whole frame, ReadFull blocks until a full reply arrives or the configured
// read timeout expires.
package transport
