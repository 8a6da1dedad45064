// Package server exposes a single matrix on the network.
//
// The bridge offers a small JSON API over HTTP and the same operations as
// request envelopes over a WebSocket, so dashboards and home automation can
// switch outputs without owning the serial port. All requests go through one
// mutex: the matrix only handles one command at a time.
//
// # HTTP API
//
//	GET  /api/health        liveness and build info
//	GET  /api/status        power, beep, routing, hot plug, input signal, EDID
//	GET  /api/routing       source of every output
//	GET  /api/edid/{input}  EDID preset of an input
//	GET  /api/device-type
//	POST /api/route         {"input": 2, "outputs": [1, 3]} or {"input": 2, "all": true}
//	POST /api/power         {"on": true}
//	POST /api/beep          {"on": false}
//	POST /api/edid          {"profile": 12, "input": 1}
//	POST /api/edid/copy     {"output": 1, "targets": [0]}
//	POST /api/reboot
//	POST /api/factory-reset {"confirm": true}
//	POST /api/command       a Request envelope
//
// # WebSocket
//
// GET /ws upgrades to a WebSocket carrying JSON text messages:
//
//	→ {"id": "7", "op": "route", "args": {"input": 2, "outputs": [4]}}
//	← {"id": "7", "ok": true}
//	← {"id": "8", "ok": false, "error": {"kind": "timeout", "message": "..."}}
//
// The server pings every 54 seconds and drops clients that miss a pong.
//
// # Discovery
//
// When enabled the bridge registers itself as _blackbird._tcp over mDNS.
//
// # TLS
//
// With Config.TLSCert and Config.TLSKey set, the same listener serves HTTPS
// and WSS, and the TXT record carries tls=1.
package server
