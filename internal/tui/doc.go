// Package tui provides the interactive Bubble Tea screens of the blackbird
// CLI.
//
// # Screens
//
// DashboardModel (blackbird watch) shows power, beep, every output's source
// and display, and every input's signal and EDID profile. It re-reads the
// matrix on an interval and after every change. Keys:
//
//	1-4          select an output, then 1-4 again to pick its input
//	↑/↓ or k/j   select an output by moving the cursor
//	esc          cancel the selection
//	a            a single digit routes that input to every output
//	p / b        toggle power / beep
//	r            refresh now
//	q            quit
//
// BridgesModel (blackbird bridges --pick) browses mDNS for bridges started
// with `blackbird serve` and returns the one the user selects.
//
// # Concurrency
//
// The serial protocol is strictly one request, one reply. The dashboard
// keeps at most one matrix call in flight: keys that talk to the matrix are
// ignored while Busy, and timed refreshes are skipped.
//
// # Layout
//
// Every screen renders through RenderApplicationContainer, which draws the
// header with name and version, the content, and a help footer using the
// bubbles/help component.
package tui
