// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package panel

import (
	"time"

	"github.com/GermanBionicSystems/udisplay/descriptor"
	"github.com/GermanBionicSystems/udisplay/i80bus"
)

// I80 drives a color TFT on a parallel 8080 bus. There is no local
// framebuffer: every operation addresses a window and streams pixels.
type I80 struct {
	bus   *i80bus.Bus
	cfg   *descriptor.Config
	sleep sleeper
	rot   int

	// Dimensions in the current rotation frame.
	width, height int

	winX0, winY0, winX1, winY1 int
}

// NewI80 replays the descriptor init commands and returns the panel.
// sleep may be nil for the wall clock.
func NewI80(bus *i80bus.Bus, cfg *descriptor.Config, sleep func(time.Duration)) *I80 {
	p := &I80{
		bus:    bus,
		cfg:    cfg,
		sleep:  defaultSleep(sleep),
		width:  cfg.Width,
		height: cfg.Height,
	}
	p.sendInitCmds()
	return p
}

// sendInitCmds runs the descriptor command table. Chip select stays low
// across the whole sequence, including delays.
func (p *I80) sendInitCmds() {
	cmds := p.cfg.Cmds
	if len(cmds) == 0 {
		return
	}
	p.bus.CSLow()
	i := 0
	for i < len(cmds) {
		p.bus.WriteCommand(uint32(cmds[i]), 8)
		i++
		if i >= len(cmds) {
			break
		}
		args := cmds[i]
		i++
		for n := int(args & 0x1F); n > 0 && i < len(cmds); n-- {
			p.bus.WriteData(uint32(cmds[i]), 8)
			i++
		}
		if args&0x80 != 0 {
			p.bus.Wait()
			p.sleep(BandedDelay(args))
		}
	}
	p.bus.CSHigh()
}

// BandedDelay maps the delay band in a command table argument byte to its
// duration. The top three bits select 150, 10 or 500 ms.
func BandedDelay(args byte) time.Duration {
	switch args & 0xE0 {
	case 0x80:
		return 150 * time.Millisecond
	case 0xA0:
		return 10 * time.Millisecond
	case 0xE0:
		return 500 * time.Millisecond
	}
	return 0
}

func (p *I80) writeColor(color uint16) {
	if p.cfg.ColMode == 18 {
		r, g, b := Expand18(color)
		p.bus.WriteData(uint32(r), 8)
		p.bus.WriteData(uint32(g), 8)
		p.bus.WriteData(uint32(b), 8)
		return
	}
	p.bus.WriteData(uint32(color), 16)
}

func (p *I80) setAddrWindowInt(x, y, w, h int) {
	x += p.cfg.XAddrOffs[p.rot]
	y += p.cfg.YAddrOffs[p.rot]
	p.bus.WriteCommand(uint32(p.cfg.SetAddrX), 8)
	p.bus.WriteData(uint32(x), 16)
	p.bus.WriteData(uint32(x+w-1), 16)
	p.bus.WriteCommand(uint32(p.cfg.SetAddrY), 8)
	p.bus.WriteData(uint32(y), 16)
	p.bus.WriteData(uint32(y+h-1), 16)
	p.bus.WriteCommand(uint32(p.cfg.WriteRAM), 8)
}

func (p *I80) DrawPixel(x, y int, color uint16) bool {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return true
	}
	p.bus.CSLow()
	p.setAddrWindowInt(x, y, 1, 1)
	p.writeColor(color)
	p.bus.CSHigh()
	return true
}

func (p *I80) FillRect(x, y, w, h int, color uint16) bool {
	if x >= p.width || y >= p.height {
		return true
	}
	if x+w-1 >= p.width {
		w = p.width - x
	}
	if y+h-1 >= p.height {
		h = p.height - y
	}
	p.bus.CSLow()
	p.setAddrWindowInt(x, y, w, h)
	for i := 0; i < w*h; i++ {
		p.writeColor(color)
	}
	p.bus.CSHigh()
	return true
}

func (p *I80) DrawFastHLine(x, y, w int, color uint16) bool {
	if x >= p.width || y >= p.height {
		return true
	}
	if x+w-1 >= p.width {
		w = p.width - x
	}
	p.bus.CSLow()
	p.setAddrWindowInt(x, y, w, 1)
	for ; w > 0; w-- {
		p.writeColor(color)
	}
	p.bus.CSHigh()
	return true
}

func (p *I80) DrawFastVLine(x, y, h int, color uint16) bool {
	if x >= p.width || y >= p.height {
		return true
	}
	if y+h-1 >= p.height {
		h = p.height - y
	}
	p.bus.CSLow()
	p.setAddrWindowInt(x, y, 1, h)
	for ; h > 0; h-- {
		p.writeColor(color)
	}
	p.bus.CSHigh()
	return true
}

// PushColors streams pixels. The first chunk re-addresses the recorded
// window, clipped to the panel, with the rotation offsets applied here
// rather than in the window math to keep them single-shot.
func (p *I80) PushColors(data []uint16, first bool) bool {
	p.bus.CSLow()
	if first {
		w := p.winX1 - p.winX0 + 1
		h := p.winY1 - p.winY0 + 1
		if p.winX0+w > p.width {
			w = p.width - p.winX0
		}
		if p.winY0+h > p.height {
			h = p.height - p.winY0
		}
		x := p.winX0 + p.cfg.XAddrOffs[p.rot]
		y := p.winY0 + p.cfg.YAddrOffs[p.rot]
		p.bus.WriteCommand(uint32(p.cfg.SetAddrX), 8)
		p.bus.WriteData(uint32(x), 16)
		p.bus.WriteData(uint32(x+w-1), 16)
		p.bus.WriteCommand(uint32(p.cfg.SetAddrY), 8)
		p.bus.WriteData(uint32(y), 16)
		p.bus.WriteData(uint32(y+h-1), 16)
		p.bus.WriteCommand(uint32(p.cfg.WriteRAM), 8)
	}
	p.bus.PushPixels(data, false)
	p.bus.CSHigh()
	return true
}

// SetAddrWindow records the window for PushColors, bounds inclusive.
func (p *I80) SetAddrWindow(x0, y0, x1, y1 int) bool {
	p.winX0, p.winY0 = x0, y0
	p.winX1, p.winY1 = x1, y1
	return true
}

// Display and inversion commands stay with the caller's command path.

func (p *I80) DisplayOnff(on bool) bool { return false }
func (p *I80) InvertDisplay(invert bool) bool { return false }

func (p *I80) SetRotation(rot int) bool {
	p.rot = rot & 3
	if p.rot&1 != 0 {
		p.width, p.height = p.cfg.Height, p.cfg.Width
	} else {
		p.width, p.height = p.cfg.Width, p.cfg.Height
	}
	return true
}

// UpdateFrame is a no-op, writes hit the panel immediately.
func (p *I80) UpdateFrame() bool { return true }
