// Package discovery announces and finds blackbird network bridges over mDNS.
//
// A bridge started with "blackbird serve" registers itself as _blackbird._tcp
// with a TXT record carrying its version, serial port and WebSocket path.
// "blackbird bridges" browses for those registrations. The matrix itself
// has no network interface; only bridges are discoverable.
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Bridges must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
package discovery
