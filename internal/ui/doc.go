// Package ui renders the blackbird CLI's terminal output with Lipgloss.
//
// Commands print once and exit; nothing here needs user interaction except
// the factory reset confirmation. The components are:
//
//   - Header: command banner with the command line and its parameters
//   - Progress: one step per port for multi-port commands, with a bar
//   - Result: success, warning and failure boxes with troubleshooting tips
//   - Tables: routing, full status and the EDID profile list
//
// Runner ties the first three together:
//
//	err := ui.NewRunner(ui.RunnerConfig{
//	    Title:   "Route Input",
//	    Command: "blackbird route 2 1 3",
//	    Params:  []ui.Field{ui.F("Input", "2"), ui.F("Outputs", "1, 3")},
//	    Steps:   []string{"Output 1", "Output 3"},
//	}).Run(func() ([]ui.Field, error) {
//	    return nil, m.RouteInput(ctx, 2, 1, 3)
//	})
//
// A *matrix.FanOutError from the operation marks the steps that reached the
// matrix, the one that failed, and the ones never sent.
package ui
