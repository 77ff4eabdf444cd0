// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package panel

import (
	"github.com/GermanBionicSystems/udisplay/descriptor"
	"github.com/GermanBionicSystems/udisplay/i2cbus"
)

// I2C drives a monochrome OLED on an I2C bus. All drawing goes through the
// host framebuffer; the panel only flushes pages and executes the on and
// off style control commands.
type I2C struct {
	dev *i2cbus.Dev
	cfg *descriptor.Config
	fb  []byte
}

// NewI2C replays the descriptor init commands and returns the panel.
func NewI2C(dev *i2cbus.Dev, cfg *descriptor.Config, fb []byte) (*I2C, error) {
	for _, c := range cfg.Cmds {
		if err := dev.Command(c); err != nil {
			return nil, err
		}
	}
	return &I2C{dev: dev, cfg: cfg, fb: fb}, nil
}

// Drawing is declined so the caller renders into the framebuffer.

func (p *I2C) DrawPixel(x, y int, color uint16) bool { return false }
func (p *I2C) FillRect(x, y, w, h int, color uint16) bool { return false }
func (p *I2C) DrawFastHLine(x, y, w int, color uint16) bool { return false }
func (p *I2C) DrawFastVLine(x, y, h int, color uint16) bool { return false }
func (p *I2C) PushColors(data []uint16, first bool) bool { return false }
func (p *I2C) SetAddrWindow(x0, y0, x1, y1 int) bool { return false }

func (p *I2C) DisplayOnff(on bool) bool {
	if on {
		p.dev.Command(p.cfg.DspOn)
	} else {
		p.dev.Command(p.cfg.DspOff)
	}
	return true
}

func (p *I2C) InvertDisplay(invert bool) bool {
	if invert {
		p.dev.Command(p.cfg.InvOn)
	} else {
		p.dev.Command(p.cfg.InvOff)
	}
	return true
}

func (p *I2C) SetRotation(rot int) bool { return true }

// UpdateFrame flushes the framebuffer page by page, eight rows per page,
// re-addressing the column before each page.
func (p *I2C) UpdateFrame() bool {
	if p.fb == nil {
		return false
	}
	p.dev.Command(p.cfg.SetAddrX)
	p.dev.Command(p.cfg.PageStart)
	p.dev.Command(p.cfg.PageEnd)

	pages := p.cfg.Height >> 3
	xs := p.cfg.Width >> 3
	mRow := p.cfg.SetAddrY
	mCol := p.cfg.ColStart

	pos := 0
	for i := 0; i < pages; i++ {
		p.dev.Command(0xB0 + byte(i) + mRow)
		p.dev.Command(mCol & 0xF)
		p.dev.Command(0x10 | mCol>>4)
		for j := 0; j < 8; j++ {
			p.dev.Data(p.fb[pos : pos+xs])
			pos += xs
		}
	}
	return true
}
