// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package panel

import (
	"github.com/GermanBionicSystems/udisplay/descriptor"
	"github.com/GermanBionicSystems/udisplay/spibus"
)

// SPI drives a color TFT or monochrome OLED on an SPI bus. Color panels
// without a local framebuffer stream pixels straight to the controller;
// 1-bpp panels render into fb and flush it page by page in UpdateFrame.
type SPI struct {
	ctrl *spibus.Controller
	cfg  *descriptor.Config
	fb   []byte
	rot  int

	// Address window recorded by SetAddrWindow, x1/y1 exclusive.
	winX0, winY0, winX1, winY1 int
}

// NewSPI returns the panel. fb is nil for direct streaming color panels.
func NewSPI(ctrl *spibus.Controller, cfg *descriptor.Config, fb []byte) *SPI {
	return &SPI{
		ctrl:  ctrl,
		cfg:   cfg,
		winX1: cfg.Width - 1,
		winY1: cfg.Height - 1,
		fb:    fb,
	}
}

func (p *SPI) writeColor(color uint16) {
	if p.cfg.ColMode == 18 {
		r, g, b := Expand18(color)
		p.ctrl.WriteData8(r)
		p.ctrl.WriteData8(g)
		p.ctrl.WriteData8(b)
		return
	}
	p.ctrl.WriteData16(color)
}

// DrawPixel handles the pixel on the direct color path and declines on
// framebuffer panels.
func (p *SPI) DrawPixel(x, y int, color uint16) bool {
	if x < 0 || x >= p.cfg.Width || y < 0 || y >= p.cfg.Height {
		return true
	}
	if p.fb != nil || p.cfg.BPP < 16 {
		return false
	}
	p.ctrl.CSLow()
	p.setAddrWindowInt(x, y, 1, 1)
	p.ctrl.WriteCommand(p.cfg.WriteRAM)
	p.writeColor(color)
	p.ctrl.CSHigh()
	return true
}

func (p *SPI) FillRect(x, y, w, h int, color uint16) bool {
	if x >= p.cfg.Width || y >= p.cfg.Height {
		return true
	}
	if x+w-1 >= p.cfg.Width {
		w = p.cfg.Width - x
	}
	if y+h-1 >= p.cfg.Height {
		h = p.cfg.Height - y
	}
	if p.fb != nil || p.cfg.BPP < 16 {
		return false
	}
	p.ctrl.CSLow()
	p.setAddrWindowInt(x, y, w, h)
	p.ctrl.WriteCommand(p.cfg.WriteRAM)
	for i := 0; i < w*h; i++ {
		p.writeColor(color)
	}
	p.ctrl.CSHigh()
	return true
}

func (p *SPI) DrawFastHLine(x, y, w int, color uint16) bool {
	return p.FillRect(x, y, w, 1, color)
}

func (p *SPI) DrawFastVLine(x, y, h int, color uint16) bool {
	return p.FillRect(x, y, 1, h, color)
}

// PushColors streams pixels into the current window. first re-addresses
// the window before the data.
func (p *SPI) PushColors(data []uint16, first bool) bool {
	if p.cfg.BPP < 16 {
		return false
	}
	p.ctrl.CSLow()
	if first {
		p.setAddrWindowInt(p.winX0, p.winY0, p.winX1-p.winX0, p.winY1-p.winY0)
		p.ctrl.WriteCommand(p.cfg.WriteRAM)
	}
	if p.cfg.ColMode == 18 {
		line := make([]byte, 0, len(data)*3)
		for _, c := range data {
			r, g, b := Expand18(c)
			line = append(line, r, g, b)
		}
		p.ctrl.WriteBytes(line)
	} else {
		p.ctrl.WritePixels(data, false)
	}
	p.ctrl.CSHigh()
	return true
}

// SetAddrWindow records the window for PushColors. x1 and y1 are
// exclusive.
func (p *SPI) SetAddrWindow(x0, y0, x1, y1 int) bool {
	p.winX0, p.winY0 = x0, y0
	p.winX1, p.winY1 = x1, y1
	return true
}

// setAddrWindowInt programs the controller address window. The rotation
// offsets shift into panel memory space; saMode 8 panels take 8-bit
// bounds, optionally as commands.
func (p *SPI) setAddrWindowInt(x, y, w, h int) {
	x += p.cfg.XAddrOffs[p.rot]
	y += p.cfg.YAddrOffs[p.rot]
	x2 := x + w - 1
	y2 := y + h - 1

	if p.cfg.SAMode != 8 {
		p.ctrl.WriteCommand(p.cfg.SetAddrX)
		p.ctrl.WriteData32(uint32(x)<<16 | uint32(x2)&0xFFFF)
		p.ctrl.WriteCommand(p.cfg.SetAddrY)
		p.ctrl.WriteData32(uint32(y)<<16 | uint32(y2)&0xFFFF)
		if descriptor.HasCmd(p.cfg.WriteRAM) {
			p.ctrl.WriteCommand(p.cfg.WriteRAM)
		}
		return
	}

	if p.rot&1 != 0 {
		x, y = y, x
		x2, y2 = y2, x2
	}
	p.ctrl.WriteCommand(p.cfg.SetAddrX)
	p.writeBound(byte(x))
	p.writeBound(byte(x2))
	p.ctrl.WriteCommand(p.cfg.SetAddrY)
	p.writeBound(byte(y))
	p.writeBound(byte(y2))
	if descriptor.HasCmd(p.cfg.WriteRAM) {
		p.ctrl.WriteCommand(p.cfg.WriteRAM)
	}
}

func (p *SPI) writeBound(v byte) {
	if p.cfg.AllCmdMode {
		p.ctrl.WriteData8(v)
	} else {
		p.ctrl.WriteCommand(v)
	}
}

func (p *SPI) DisplayOnff(on bool) bool {
	if on && descriptor.HasCmd(p.cfg.DspOn) {
		p.ctrl.CSLow()
		p.ctrl.WriteCommand(p.cfg.DspOn)
		p.ctrl.CSHigh()
		return true
	}
	if !on && descriptor.HasCmd(p.cfg.DspOff) {
		p.ctrl.CSLow()
		p.ctrl.WriteCommand(p.cfg.DspOff)
		p.ctrl.CSHigh()
		return true
	}
	return false
}

func (p *SPI) InvertDisplay(invert bool) bool {
	if invert && descriptor.HasCmd(p.cfg.InvOn) {
		p.ctrl.CSLow()
		p.ctrl.WriteCommand(p.cfg.InvOn)
		p.ctrl.CSHigh()
		return true
	}
	if !invert && descriptor.HasCmd(p.cfg.InvOff) {
		p.ctrl.CSLow()
		p.ctrl.WriteCommand(p.cfg.InvOff)
		p.ctrl.CSHigh()
		return true
	}
	return false
}

// SetRotation writes the rotation byte when the descriptor declares a
// memory access command for it.
func (p *SPI) SetRotation(rot int) bool {
	p.rot = rot & 3
	if !descriptor.HasCmd(p.cfg.MadCtl) || !descriptor.HasCmd(p.cfg.Rot[p.rot]) {
		return false
	}
	p.ctrl.CSLow()
	p.ctrl.WriteCommand(p.cfg.MadCtl)
	if p.cfg.AllCmdMode {
		p.ctrl.WriteCommand(p.cfg.Rot[p.rot])
	} else {
		p.ctrl.WriteData8(p.cfg.Rot[p.rot])
	}
	if p.cfg.SAMode == 8 && !p.cfg.AllCmdMode {
		height := p.cfg.Height
		if p.rot&1 == 1 {
			height = p.cfg.Width
		}
		p.ctrl.WriteCommand(p.cfg.Startline)
		if p.rot < 2 {
			p.ctrl.WriteData8(byte(height))
		} else {
			p.ctrl.WriteData8(0)
		}
	}
	p.ctrl.CSHigh()
	return true
}

// UpdateFrame flushes the 1-bpp framebuffer page by page. Each page is
// eight pixel rows; the column is re-addressed per page.
func (p *SPI) UpdateFrame() bool {
	if p.fb == nil || p.cfg.BPP != 1 {
		return false
	}
	pages := p.cfg.Height >> 3
	xs := p.cfg.Width >> 3
	mRow := p.cfg.SetAddrY
	mCol := p.cfg.ColStart

	p.ctrl.CSLow()
	pos := 0
	for i := 0; i < pages; i++ {
		p.ctrl.WriteCommand(0xB0 + byte(i) + mRow)
		p.ctrl.WriteCommand(mCol & 0xF)
		p.ctrl.WriteCommand(0x10 | mCol>>4)
		n := 8 * xs
		p.ctrl.WriteBytes(p.fb[pos : pos+n])
		pos += n
	}
	p.ctrl.CSHigh()
	return true
}
