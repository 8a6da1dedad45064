// Package emulator provides an in-memory Blackbird 21905 that decodes command
// frames and answers them the way the hardware does.
//
// It backs the CLI's --simulate flag and the tests of every layer above the
// protocol codec. A Device keeps routing, EDID, power and beep state and
// queues one 18-byte reply per accepted frame:
//
//	dev := emulator.New()
//	m := matrix.New(dev)
//	_ = m.RouteInput(ctx, 2, 1, 3)
//	dev.State().Routes // [2 2 2 4]
package emulator
