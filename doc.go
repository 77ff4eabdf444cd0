// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package udisplay drives display panels described by a compact textual
// descriptor instead of a per-controller driver.
//
// The descriptor names the panel geometry, the bus wiring and the raw
// command bytes of the controller; New parses it and Init binds the result
// to real hardware. One Display drives color TFTs and 1-bpp OLEDs over
// SPI, paged OLEDs over I2C, I80 parallel panels, RGB timing controller
// panels, MIPI-DSI panels and e-paper panels with full and partial LUT
// waveform updates.
//
// Display implements conn/display.Drawer so it fits wherever a periph
// display does.
package udisplay
