package discovery

import (
	"net"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"
)

func entry(instance, host string, port int, v4, v6 []net.IP, txt ...string) *zeroconf.ServiceEntry {
	e := zeroconf.NewServiceEntry(instance, ServiceType, ServiceDomain)
	e.HostName = host
	e.Port = port
	e.AddrIPv4 = v4
	e.AddrIPv6 = v6
	e.Text = txt
	return e
}

func TestParseServiceEntry(t *testing.T) {
	tests := []struct {
		name     string
		entry    *zeroconf.ServiceEntry
		wantNil  bool
		wantIP   string
		wantPort int
	}{
		{
			name:     "IPv4 bridge",
			entry:    entry("Rack", "pi.local.", 8421, []net.IP{net.ParseIP("192.168.1.20")}, nil),
			wantIP:   "192.168.1.20",
			wantPort: 8421,
		},
		{
			name:     "IPv6 only",
			entry:    entry("Rack", "pi.local.", 8421, nil, []net.IP{net.ParseIP("fe80::1")}),
			wantIP:   "fe80::1",
			wantPort: 8421,
		},
		{
			name:     "prefers IPv4",
			entry:    entry("Rack", "pi.local.", 9000, []net.IP{net.ParseIP("10.0.0.5")}, []net.IP{net.ParseIP("fe80::2")}),
			wantIP:   "10.0.0.5",
			wantPort: 9000,
		},
		{
			name:    "no address",
			entry:   entry("Rack", "pi.local.", 8421, nil, nil),
			wantNil: true,
		},
		{
			name:    "no port",
			entry:   entry("Rack", "pi.local.", 0, []net.IP{net.ParseIP("10.0.0.5")}, nil),
			wantNil: true,
		},
		{
			name:    "nil entry",
			entry:   nil,
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bridge := parseServiceEntry(tt.entry)

			if tt.wantNil {
				if bridge != nil {
					t.Errorf("parseServiceEntry() = %v, want nil", bridge)
				}
				return
			}
			if bridge == nil {
				t.Fatal("parseServiceEntry() = nil, want bridge")
			}
			if bridge.IP != tt.wantIP || bridge.Port != tt.wantPort {
				t.Errorf("bridge at %s:%d, want %s:%d", bridge.IP, bridge.Port, tt.wantIP, tt.wantPort)
			}
			if bridge.Instance != "Rack" {
				t.Errorf("Instance = %q, want Rack", bridge.Instance)
			}
			if time.Since(bridge.DiscoveredAt) > time.Second {
				t.Errorf("DiscoveredAt is not recent: %v", bridge.DiscoveredAt)
			}
		})
	}
}

func TestParseServiceEntry_Metadata(t *testing.T) {
	e := entry("Rack", "pi.local.", 8421, []net.IP{net.ParseIP("192.168.1.20")}, nil,
		"version=v1.2.0", "serial=/dev/ttyUSB0", "ws=/ws", "flag")

	bridge := parseServiceEntry(e)
	if bridge == nil {
		t.Fatal("parseServiceEntry() = nil")
	}

	want := map[string]string{
		"version": "v1.2.0",
		"serial":  "/dev/ttyUSB0",
		"ws":      "/ws",
		"flag":    "",
	}
	if len(bridge.Metadata) != len(want) {
		t.Errorf("Metadata has %d entries, want %d", len(bridge.Metadata), len(want))
	}
	for k, v := range want {
		if got, ok := bridge.Metadata[k]; !ok || got != v {
			t.Errorf("Metadata[%q] = %q (present %v), want %q", k, got, ok, v)
		}
	}
}

func TestBridge_URLs(t *testing.T) {
	tests := []struct {
		name   string
		bridge *Bridge
		base   string
		ws     string
	}{
		{
			name:   "IPv4 default ws path",
			bridge: &Bridge{IP: "192.168.1.20", Port: 8421},
			base:   "http://192.168.1.20:8421",
			ws:     "ws://192.168.1.20:8421/ws",
		},
		{
			name:   "IPv6 custom ws path",
			bridge: &Bridge{IP: "fe80::1", Port: 80, Metadata: map[string]string{"ws": "/matrix"}},
			base:   "http://[fe80::1]:80",
			ws:     "ws://[fe80::1]:80/matrix",
		},
		{
			name:   "TLS",
			bridge: &Bridge{IP: "10.0.0.5", Port: 8443, Metadata: map[string]string{"tls": "1"}},
			base:   "https://10.0.0.5:8443",
			ws:     "wss://10.0.0.5:8443/ws",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.bridge.BaseURL(); got != tt.base {
				t.Errorf("BaseURL() = %q, want %q", got, tt.base)
			}
			if got := tt.bridge.WebSocketURL(); got != tt.ws {
				t.Errorf("WebSocketURL() = %q, want %q", got, tt.ws)
			}
		})
	}
}

func TestBridge_String(t *testing.T) {
	b := &Bridge{Instance: "Rack", Hostname: "pi.local.", IP: "10.0.0.5", Port: 8421}
	if got, want := b.String(), "Rack (pi.local.) at 10.0.0.5:8421"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
