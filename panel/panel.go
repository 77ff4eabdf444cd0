// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package panel implements the display panel backends behind the udisplay
// driver. Each backend satisfies Universal; an operation returns true when
// the backend handled it and false to let the caller fall through to its
// framebuffer or direct bus path.
package panel

import "time"

// Universal is the capability surface a panel backend exposes. All
// coordinates are in the current rotation frame.
type Universal interface {
	DrawPixel(x, y int, color uint16) bool
	FillRect(x, y, w, h int, color uint16) bool
	DrawFastHLine(x, y, w int, color uint16) bool
	DrawFastVLine(x, y, h int, color uint16) bool
	// PushColors streams pixels into the window set by SetAddrWindow.
	// first marks the first chunk of a window.
	PushColors(data []uint16, first bool) bool
	SetAddrWindow(x0, y0, x1, y1 int) bool
	DisplayOnff(on bool) bool
	InvertDisplay(invert bool) bool
	SetRotation(rot int) bool
	UpdateFrame() bool
}

// Expand18 unpacks an RGB565 color to the three byte RGB666 wire format.
func Expand18(color uint16) (r, g, b byte) {
	r = byte((color & 0xF800) >> 11)
	g = byte((color & 0x07E0) >> 5)
	b = byte(color & 0x001F)
	r = r * 255 / 31
	g = g * 255 / 63
	b = b * 255 / 31
	return
}

// sleeper lets tests replace the wall clock waits.
type sleeper func(time.Duration)

func defaultSleep(s sleeper) sleeper {
	if s == nil {
		return time.Sleep
	}
	return s
}
