// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package panel

// RGB drives a parallel RGB panel through the vendor peripheral. Drawing
// writes the scanout framebuffer directly; only DrawPixel remaps
// coordinates for rotation, the fast paths arrive pre-rotated.
type RGB struct {
	vendor Vendor
	fb     []uint16
	width  int
	height int
	rot    int

	winX0, winY0, winX1, winY1 int
}

// NewRGB returns the panel over an initialized vendor peripheral.
func NewRGB(vendor Vendor, width, height int) *RGB {
	return &RGB{
		vendor: vendor,
		fb:     vendor.FrameBuffer(),
		width:  width,
		height: height,
		winX1:  1,
		winY1:  1,
	}
}

// FrameBuffer exposes the scanout buffer for host-side rendering.
func (p *RGB) FrameBuffer() []uint16 { return p.fb }

func (p *RGB) DrawPixel(x, y int, color uint16) bool {
	w, h := p.width, p.height
	switch p.rot {
	case 1:
		w, h = h, w
		x, y = y, x
		x = w - x - 1
	case 2:
		x = w - x - 1
		y = h - y - 1
	case 3:
		w, h = h, w
		x, y = y, x
		y = h - y - 1
	}
	if x < 0 || x >= w || y < 0 || y >= h {
		return true
	}
	off := y*w + x
	p.fb[off] = color
	p.vendor.Flush(off, 1)
	return true
}

func (p *RGB) FillRect(x, y, w, h int, color uint16) bool {
	for yp := y; yp < y+h; yp++ {
		off := yp*p.width + x
		for i := 0; i < w; i++ {
			p.fb[off+i] = color
		}
		p.vendor.Flush(off, w)
	}
	return true
}

func (p *RGB) DrawFastHLine(x, y, w int, color uint16) bool {
	off := y*p.width + x
	for i := 0; i < w; i++ {
		p.fb[off+i] = color
	}
	p.vendor.Flush(off, w)
	return true
}

func (p *RGB) DrawFastVLine(x, y, h int, color uint16) bool {
	for j := 0; j < h; j++ {
		off := (y+j)*p.width + x
		p.fb[off] = color
		p.vendor.Flush(off, 1)
	}
	return true
}

func (p *RGB) PushColors(data []uint16, first bool) bool {
	p.vendor.DrawBitmap(p.winX0, p.winY0, p.winX1, p.winY1, data)
	return true
}

func (p *RGB) SetAddrWindow(x0, y0, x1, y1 int) bool {
	p.winX0, p.winY0 = x0, y0
	p.winX1, p.winY1 = x1, y1
	return true
}

func (p *RGB) DisplayOnff(on bool) bool {
	p.vendor.DispOnOff(on)
	return true
}

// InvertDisplay is not supported by the RGB peripheral.
func (p *RGB) InvertDisplay(invert bool) bool { return true }

func (p *RGB) SetRotation(rot int) bool {
	p.rot = rot & 3
	p.vendor.Mirror(p.rot == 1 || p.rot == 2, p.rot&2 != 0)
	p.vendor.SwapXY(p.rot&1 != 0)
	return true
}

// UpdateFrame is a no-op, the panel scans the framebuffer continuously.
func (p *RGB) UpdateFrame() bool { return true }
