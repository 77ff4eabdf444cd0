// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package panel

// Vendor is the host LCD peripheral behind the RGB and DSI backends. It
// models the vendor panel API: a scanout framebuffer with explicit cache
// write-back, a bitmap blit, and the mirror and swap knobs used for
// rotation.
type Vendor interface {
	// FrameBuffer returns the RGB565 scanout buffer, or nil when the
	// peripheral only accepts blits.
	FrameBuffer() []uint16
	// Flush writes back the framebuffer range [off, off+n) to scanout
	// memory.
	Flush(off, n int)
	// DrawBitmap blits px into the rectangle [x0,y0)-(x1,y1).
	DrawBitmap(x0, y0, x1, y1 int, px []uint16) error
	DispOnOff(on bool) error
	Mirror(x, y bool) error
	SwapXY(swap bool) error
}

// VendorIO extends Vendor with the DBI parameter channel DSI panels use
// for their init command tables.
type VendorIO interface {
	Vendor
	// TxParam sends one command with its parameter bytes.
	TxParam(cmd byte, data []byte) error
}
