// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package panel

import (
	"time"

	"periph.io/x/conn/v3/gpio"

	"github.com/GermanBionicSystems/udisplay/descriptor"
	"github.com/GermanBionicSystems/udisplay/spibus"
)

// SSD16xx style controller commands used by the dual LUT update path.
const (
	epCmdMasterActivation = 0x20
	epCmdUpdateControl2   = 0x22
	epCmdWriteRAM         = 0x24
	epCmdWriteLUT         = 0x32
	epCmdRAMXRange        = 0x44
	epCmdRAMYRange        = 0x45
	epCmdRAMXCounter      = 0x4E
	epCmdRAMYCounter      = 0x4F
	epFrameTerminate      = 0xFF
)

// busyTimeout bounds a busy pin wait; the update proceeds when the panel
// never releases the line.
const busyTimeout = 10 * time.Second

// EPDOpts carries the host wiring of an e-paper panel.
type EPDOpts struct {
	Reset gpio.PinOut
	// Busy is the controller busy line, usually the repurposed MISO pin.
	// nil falls back to plain delays.
	Busy gpio.PinIO
	// BusyInvert flips the level that means busy.
	BusyInvert bool
	// Sleep replaces time.Sleep, for tests.
	Sleep func(time.Duration)
}

// EPD drives an e-paper panel over SPI. Drawing always lands in the 1-bpp
// host framebuffer; the update methods move it to the controller RAM and
// trigger a refresh. Framebuffer bytes are inverted on the wire, e-paper
// RAM uses 0 for black.
type EPD struct {
	ctrl  *spibus.Controller
	cfg   *descriptor.Config
	fb    []byte
	opts  EPDOpts
	sleep sleeper

	invert  bool
	partial bool
}

// NewEPD resets the panel, loads the full refresh LUT and clears the
// controller RAM.
func NewEPD(ctrl *spibus.Controller, cfg *descriptor.Config, fb []byte, opts EPDOpts) *EPD {
	p := &EPD{
		ctrl:  ctrl,
		cfg:   cfg,
		fb:    fb,
		opts:  opts,
		sleep: defaultSleep(opts.Sleep),
	}
	p.reset()
	if len(cfg.LutFull) > 0 {
		p.SetLut(cfg.LutFull)
	}
	p.ClearFrameMemory(0xFF)
	p.DisplayFrame()
	return p
}

// SetUpdateMode selects the wait time UpdateFrame uses after a refresh.
func (p *EPD) SetUpdateMode(partial bool) {
	p.partial = partial
}

// DelaySync waits for the busy pin to release, bounded by busyTimeout,
// or sleeps d when there is no busy pin.
func (p *EPD) DelaySync(d time.Duration) {
	if p.opts.Busy == nil {
		p.sleep(d)
		return
	}
	busy := gpio.High
	if p.opts.BusyInvert {
		busy = gpio.Low
	}
	start := time.Now()
	for p.opts.Busy.Read() == busy {
		p.sleep(time.Millisecond)
		if time.Since(start) > busyTimeout {
			break
		}
	}
}

func (p *EPD) reset() {
	if p.opts.Reset == nil {
		return
	}
	p.opts.Reset.Out(gpio.High)
	p.sleep(10 * time.Millisecond)
	p.opts.Reset.Out(gpio.Low)
	p.sleep(10 * time.Millisecond)
	p.opts.Reset.Out(gpio.High)
	p.sleep(10 * time.Millisecond)
	p.DelaySync(100 * time.Millisecond)
}

// SetLut loads a waveform table into the LUT register.
func (p *EPD) SetLut(lut []byte) {
	if len(lut) == 0 {
		return
	}
	p.ctrl.CSLow()
	p.ctrl.WriteCommand(epCmdWriteLUT)
	p.ctrl.WriteBytes(lut)
	p.ctrl.CSHigh()
}

// SetLuts loads the five waveform tables of a five LUT controller,
// skipping undeclared slots.
func (p *EPD) SetLuts() {
	for i := 0; i < descriptor.MaxLUTs; i++ {
		if p.cfg.LutCmd[i] == 0 || len(p.cfg.Lut[i]) == 0 {
			continue
		}
		p.ctrl.CSLow()
		p.ctrl.WriteCommand(p.cfg.LutCmd[i])
		p.ctrl.WriteBytes(p.cfg.Lut[i])
		p.ctrl.CSHigh()
	}
}

// SetMemoryArea programs the controller RAM window. X coordinates are in
// bytes of eight pixels. The reversed scan variant emits the Y range end
// first.
func (p *EPD) SetMemoryArea(x0, y0, x1, y1 int) {
	p.ctrl.CSLow()
	p.ctrl.WriteCommand(epCmdRAMXRange)
	p.ctrl.WriteData8(byte(x0 >> 3))
	p.ctrl.WriteData8(byte(x1 >> 3))
	p.ctrl.WriteCommand(epCmdRAMYRange)
	if p.cfg.EPMode == descriptor.EPCmdOnly {
		p.ctrl.WriteData8(byte(y1))
		p.ctrl.WriteData8(byte(y1 >> 8))
		p.ctrl.WriteData8(byte(y0))
		p.ctrl.WriteData8(byte(y0 >> 8))
	} else {
		p.ctrl.WriteData8(byte(y0))
		p.ctrl.WriteData8(byte(y0 >> 8))
		p.ctrl.WriteData8(byte(y1))
		p.ctrl.WriteData8(byte(y1 >> 8))
	}
	p.ctrl.CSHigh()
}

// SetMemoryPointer positions the controller RAM write counter.
func (p *EPD) SetMemoryPointer(x, y int) {
	if p.cfg.EPMode == descriptor.EPCmdOnly {
		y--
	}
	p.ctrl.CSLow()
	p.ctrl.WriteCommand(epCmdRAMXCounter)
	p.ctrl.WriteData8(byte(x >> 3))
	p.ctrl.WriteCommand(epCmdRAMYCounter)
	p.ctrl.WriteData8(byte(y))
	p.ctrl.WriteData8(byte(y >> 8))
	p.ctrl.CSHigh()
}

// ClearFrameMemory fills the controller RAM with color.
func (p *EPD) ClearFrameMemory(color byte) {
	p.SetMemoryArea(0, 0, p.cfg.Width-1, p.cfg.Height-1)
	p.SetMemoryPointer(0, 0)
	p.ctrl.CSLow()
	p.ctrl.WriteCommand(epCmdWriteRAM)
	for i := p.cfg.Width * p.cfg.Height / 8; i > 0; i-- {
		p.ctrl.WriteData8(color)
	}
	p.ctrl.CSHigh()
}

// DisplayFrame triggers a refresh from controller RAM and waits for it.
func (p *EPD) DisplayFrame() {
	p.ctrl.CSLow()
	p.ctrl.WriteCommand(epCmdUpdateControl2)
	p.ctrl.WriteData8(0xC4)
	p.ctrl.WriteCommand(epCmdMasterActivation)
	p.ctrl.WriteData8(epFrameTerminate)
	p.ctrl.CSHigh()
	p.DelaySync(time.Duration(p.cfg.Lut3Time) * time.Millisecond)
}

// SetFrameMemory writes a full framebuffer, inverted, into controller
// RAM.
func (p *EPD) SetFrameMemory(buf []byte) {
	p.SetMemoryArea(0, 0, p.cfg.Width-1, p.cfg.Height-1)
	p.SetMemoryPointer(0, 0)
	p.ctrl.CSLow()
	p.ctrl.WriteCommand(epCmdWriteRAM)
	for i := 0; i < p.cfg.Width/8*p.cfg.Height; i++ {
		p.ctrl.WriteData8(buf[i] ^ 0xFF)
	}
	p.ctrl.CSHigh()
}

// SetFrameMemoryWindow writes a framebuffer rectangle into controller
// RAM. x and w are aligned down to eight pixel boundaries.
func (p *EPD) SetFrameMemoryWindow(buf []byte, x, y, w, h int) {
	if len(buf) == 0 {
		return
	}
	x &= 0xFFF8
	w &= 0xFFF8
	xEnd := x + w - 1
	if x+w >= p.cfg.Width {
		xEnd = p.cfg.Width - 1
	}
	yEnd := y + h - 1
	if y+h >= p.cfg.Height {
		yEnd = p.cfg.Height - 1
	}
	if x == 0 && y == 0 && w == p.cfg.Width && h == p.cfg.Height {
		p.SetFrameMemory(buf)
		return
	}
	p.SetMemoryArea(x, y, xEnd, yEnd)
	p.SetMemoryPointer(x, y)
	p.ctrl.CSLow()
	p.ctrl.WriteCommand(epCmdWriteRAM)
	for j := 0; j < yEnd-y+1; j++ {
		for i := 0; i < (xEnd-x+1)/8; i++ {
			p.ctrl.WriteData8(buf[i+j*(w/8)] ^ 0xFF)
		}
	}
	p.ctrl.CSHigh()
}

// SendEPData streams the framebuffer, inverted, without addressing. The
// caller addresses RAM through the descriptor command table.
func (p *EPD) SendEPData() {
	w := p.cfg.Width & 0xFFF8
	for j := 0; j < p.cfg.Height; j++ {
		for i := 0; i < p.cfg.Width/8; i++ {
			p.ctrl.WriteData8(p.fb[i+j*(w/8)] ^ 0xFF)
		}
	}
}

// ClearFrame42 blanks both RAM planes of a UC81xx style controller.
func (p *EPD) ClearFrame42() {
	p.ctrl.CSLow()
	p.ctrl.WriteCommand(p.cfg.SetAddrX)
	for i := p.cfg.Width * p.cfg.Height; i > 0; i-- {
		p.ctrl.WriteData8(0xFF)
	}
	p.ctrl.WriteCommand(p.cfg.SetAddrY)
	for i := p.cfg.Width * p.cfg.Height; i > 0; i-- {
		p.ctrl.WriteData8(0xFF)
	}
	p.ctrl.WriteCommand(p.cfg.WriteRAM)
	p.ctrl.CSHigh()
	p.DelaySync(100 * time.Millisecond)
}

// DisplayFrame42 pushes the framebuffer through both planes of a UC81xx
// style controller, reloads the waveform tables and refreshes.
func (p *EPD) DisplayFrame42() {
	p.ctrl.CSLow()
	p.ctrl.WriteCommand(p.cfg.SetAddrX)
	for i := 0; i < p.cfg.Width/8*p.cfg.Height; i++ {
		p.ctrl.WriteData8(0xFF)
	}
	p.ctrl.CSHigh()
	p.sleep(2 * time.Millisecond)

	p.ctrl.CSLow()
	p.ctrl.WriteCommand(p.cfg.SetAddrY)
	for i := 0; i < p.cfg.Width/8*p.cfg.Height; i++ {
		p.ctrl.WriteData8(p.fb[i] ^ 0xFF)
	}
	p.ctrl.CSHigh()
	p.sleep(2 * time.Millisecond)

	p.SetLuts()

	p.ctrl.CSLow()
	p.ctrl.WriteCommand(p.cfg.WriteRAM)
	p.ctrl.CSHigh()
	p.DelaySync(100 * time.Millisecond)
}

func (p *EPD) drawAbsolutePixel(x, y int, on bool) {
	if x < 0 || x >= p.cfg.Width || y < 0 || y >= p.cfg.Height {
		return
	}
	pos := (x + y*p.cfg.Width) / 8
	bit := byte(1) << (7 - uint(x%8))
	if on {
		p.fb[pos] |= bit
	} else {
		p.fb[pos] &^= bit
	}
}

func (p *EPD) mono(color uint16) bool {
	on := color != 0
	if p.invert {
		on = !on
	}
	return on
}

func (p *EPD) DrawPixel(x, y int, color uint16) bool {
	if p.fb == nil {
		return false
	}
	p.drawAbsolutePixel(x, y, p.mono(color))
	return true
}

func (p *EPD) FillRect(x, y, w, h int, color uint16) bool {
	if p.fb == nil {
		return false
	}
	on := p.mono(color)
	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+w; xx++ {
			p.drawAbsolutePixel(xx, yy, on)
		}
	}
	return true
}

func (p *EPD) DrawFastHLine(x, y, w int, color uint16) bool {
	return p.FillRect(x, y, w, 1, color)
}

func (p *EPD) DrawFastVLine(x, y, h int, color uint16) bool {
	return p.FillRect(x, y, 1, h, color)
}

// PushColors is declined, e-paper only draws from the framebuffer.
func (p *EPD) PushColors(data []uint16, first bool) bool { return false }

// SetAddrWindow is meaningless here, the whole framebuffer updates at
// once.
func (p *EPD) SetAddrWindow(x0, y0, x1, y1 int) bool { return true }

// DisplayOnff has no panel command, the refresh cycle controls power.
func (p *EPD) DisplayOnff(on bool) bool { return true }

// InvertDisplay flips the drawing polarity and repaints the whole panel.
func (p *EPD) InvertDisplay(invert bool) bool {
	p.invert = invert
	if p.fb != nil {
		for i := range p.fb {
			p.fb[i] = ^p.fb[i]
		}
		p.UpdateFrame()
	}
	return true
}

// SetRotation is handled by the caller's framebuffer math.
func (p *EPD) SetRotation(rot int) bool { return true }

// UpdateFrame writes the framebuffer to controller RAM, refreshes and
// waits for the waveform to settle.
func (p *EPD) UpdateFrame() bool {
	if p.fb == nil {
		return false
	}
	p.SetFrameMemory(p.fb)
	p.DisplayFrame()
	wait := time.Duration(p.cfg.LutFTime) * time.Millisecond
	if p.partial {
		wait = time.Duration(p.cfg.LutPTime) * time.Millisecond
	}
	p.DelaySync(wait)
	return true
}
