// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package panel

import "time"

// DSI drives a MIPI-DSI panel through the vendor peripheral. In DPI mode
// the vendor exposes a scanout framebuffer; without one every operation
// turns into a bitmap blit.
type DSI struct {
	vendor VendorIO
	fb     []uint16
	width  int
	height int
	sleep  sleeper
	rot    int

	winX0, winY0, winX1, winY1 int
}

// NewDSI replays initCmds over the DBI parameter channel and returns the
// panel. initCmds entries are cmd, length, data bytes, then a delay in
// milliseconds. sleep may be nil for the wall clock.
func NewDSI(vendor VendorIO, width, height int, initCmds []byte, sleep func(time.Duration)) (*DSI, error) {
	p := &DSI{
		vendor: vendor,
		fb:     vendor.FrameBuffer(),
		width:  width,
		height: height,
		sleep:  defaultSleep(sleep),
	}
	if err := p.sendInitCmds(initCmds); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *DSI) sendInitCmds(cmds []byte) error {
	i := 0
	for i+1 < len(cmds) {
		cmd := cmds[i]
		n := int(cmds[i+1])
		i += 2
		if i+n > len(cmds) {
			break
		}
		if err := p.vendor.TxParam(cmd, cmds[i:i+n]); err != nil {
			return err
		}
		i += n
		if i < len(cmds) {
			if d := cmds[i]; d > 0 {
				p.sleep(time.Duration(d) * time.Millisecond)
			}
			i++
		}
	}
	return nil
}

func (p *DSI) DrawPixel(x, y int, color uint16) bool {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return true
	}
	if p.fb != nil {
		off := y*p.width + x
		p.fb[off] = color
		p.vendor.Flush(off, 1)
		return true
	}
	return p.vendor.DrawBitmap(x, y, x+1, y+1, []uint16{color}) == nil
}

func (p *DSI) FillRect(x, y, w, h int, color uint16) bool {
	if x < 0 {
		w += x
		x = 0
	}
	if y < 0 {
		h += y
		y = 0
	}
	if x+w > p.width {
		w = p.width - x
	}
	if y+h > p.height {
		h = p.height - y
	}
	if w <= 0 || h <= 0 {
		return true
	}
	if p.fb != nil {
		for yp := y; yp < y+h; yp++ {
			off := yp*p.width + x
			for i := 0; i < w; i++ {
				p.fb[off+i] = color
			}
			p.vendor.Flush(off, w)
		}
		return true
	}
	buf := make([]uint16, w*h)
	for i := range buf {
		buf[i] = color
	}
	return p.vendor.DrawBitmap(x, y, x+w, y+h, buf) == nil
}

func (p *DSI) DrawFastHLine(x, y, w int, color uint16) bool {
	if y < 0 || y >= p.height || x >= p.width {
		return true
	}
	if x < 0 {
		w += x
		x = 0
	}
	if x+w > p.width {
		w = p.width - x
	}
	if w <= 0 {
		return true
	}
	if p.fb != nil {
		off := y*p.width + x
		for i := 0; i < w; i++ {
			p.fb[off+i] = color
		}
		p.vendor.Flush(off, w)
		return true
	}
	return p.FillRect(x, y, w, 1, color)
}

func (p *DSI) DrawFastVLine(x, y, h int, color uint16) bool {
	if x < 0 || x >= p.width || y >= p.height {
		return true
	}
	if y < 0 {
		h += y
		y = 0
	}
	if y+h > p.height {
		h = p.height - y
	}
	if h <= 0 {
		return true
	}
	if p.fb != nil {
		for j := 0; j < h; j++ {
			off := (y+j)*p.width + x
			p.fb[off] = color
			p.vendor.Flush(off, 1)
		}
		return true
	}
	return p.FillRect(x, y, 1, h, color)
}

func (p *DSI) PushColors(data []uint16, first bool) bool {
	return p.vendor.DrawBitmap(p.winX0, p.winY0, p.winX1, p.winY1, data) == nil
}

func (p *DSI) SetAddrWindow(x0, y0, x1, y1 int) bool {
	p.winX0, p.winY0 = x0, y0
	p.winX1, p.winY1 = x1, y1
	return true
}

func (p *DSI) DisplayOnff(on bool) bool {
	p.vendor.DispOnOff(on)
	return true
}

// InvertDisplay is not supported over the DPI path.
func (p *DSI) InvertDisplay(invert bool) bool { return true }

func (p *DSI) SetRotation(rot int) bool {
	p.rot = rot & 3
	p.vendor.Mirror(p.rot == 1 || p.rot == 2, p.rot&2 != 0)
	p.vendor.SwapXY(p.rot&1 != 0)
	return true
}

// UpdateFrame is a no-op, the panel scans the framebuffer continuously.
func (p *DSI) UpdateFrame() bool { return true }
