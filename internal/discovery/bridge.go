package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Bridge is a blackbird network bridge found over mDNS
type Bridge struct {
	// Instance is the advertised instance name (e.g. "Living room rack")
	Instance string

	// Hostname is the mDNS hostname (e.g. "pi.local.")
	Hostname string

	// IP is the IPv4 address, or IPv6 when no IPv4 was advertised
	IP string

	// Port is the HTTP port
	Port int

	// Metadata holds the TXT record: version, serial, ws, tls
	Metadata map[string]string

	// DiscoveredAt is when the bridge was seen
	DiscoveredAt time.Time
}

// String returns a human-readable description
func (b *Bridge) String() string {
	return fmt.Sprintf("%s (%s) at %s", b.Instance, b.Hostname, net.JoinHostPort(b.IP, strconv.Itoa(b.Port)))
}

// TLS reports whether the bridge advertised HTTPS
func (b *Bridge) TLS() bool {
	return b.GetMetadata("tls") == "1"
}

// BaseURL returns the HTTP base URL of the bridge
func (b *Bridge) BaseURL() string {
	scheme := "http://"
	if b.TLS() {
		scheme = "https://"
	}
	return scheme + net.JoinHostPort(b.IP, strconv.Itoa(b.Port))
}

// WebSocketURL returns the URL of the bridge's WebSocket endpoint
func (b *Bridge) WebSocketURL() string {
	path := b.GetMetadata("ws")
	if path == "" {
		path = "/ws"
	}
	scheme := "ws://"
	if b.TLS() {
		scheme = "wss://"
	}
	return scheme + net.JoinHostPort(b.IP, strconv.Itoa(b.Port)) + path
}

// GetMetadata retrieves a TXT value by key, or "" if absent
func (b *Bridge) GetMetadata(key string) string {
	if b.Metadata == nil {
		return ""
	}
	return b.Metadata[key]
}
