// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package spibus drives a display controller over SPI, either through a
// hardware port or by bit-banging GPIO pins for bus numbers above 2.
//
// Controllers without a DC pin receive 9-bit frames where the leading bit
// selects command or data; those always use the GPIO path.
package spibus

import (
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
)

// txChunk bounds a single hardware transfer. Large framebuffer pushes are
// split so the underlying driver never sees a transfer above its limit.
const txChunk = 4096

// Config selects the write path and the pins of a Controller.
type Config struct {
	// Conn is the hardware SPI connection. nil selects the GPIO
	// bit-bang path.
	Conn conn.Conn

	// BusNr is the descriptor bus number. 3 bit-bangs at full speed,
	// 4 and above insert settling delays for long wires.
	BusNr int

	CS   gpio.PinOut // nil when the bus has no chip select
	DC   gpio.PinOut // nil selects 9-bit framing
	CLK  gpio.PinOut
	MOSI gpio.PinOut
	MISO gpio.PinIO // doubles as the busy pin on e-paper panels
}

// Controller writes commands and data to one SPI attached display. Write
// errors latch: after the first failure all writes turn into no-ops and
// Err returns the original error.
type Controller struct {
	c    conn.Conn
	cs   gpio.PinOut
	dc   gpio.PinOut
	clk  gpio.PinOut
	mosi gpio.PinOut
	miso gpio.PinIO
	slow bool
	err  error
}

// New returns a Controller for cfg.
func New(cfg Config) *Controller {
	return &Controller{
		c:    cfg.Conn,
		cs:   cfg.CS,
		dc:   cfg.DC,
		clk:  cfg.CLK,
		mosi: cfg.MOSI,
		miso: cfg.MISO,
		slow: cfg.Conn == nil && cfg.BusNr > 3,
	}
}

// Err returns the first write error, if any.
func (c *Controller) Err() error {
	return c.err
}

// BusyPin returns the pin polled for controller-busy, or nil.
func (c *Controller) BusyPin() gpio.PinIO {
	return c.miso
}

// HasDC reports whether the bus has a data/command pin.
func (c *Controller) HasDC() bool {
	return c.dc != nil
}

func (c *Controller) out(p gpio.PinOut, l gpio.Level) {
	if c.err != nil || p == nil {
		return
	}
	c.err = p.Out(l)
}

// CSLow asserts chip select.
func (c *Controller) CSLow() { c.out(c.cs, gpio.Low) }

// CSHigh releases chip select.
func (c *Controller) CSHigh() { c.out(c.cs, gpio.High) }

// DCLow selects command framing.
func (c *Controller) DCLow() { c.out(c.dc, gpio.Low) }

// DCHigh selects data framing.
func (c *Controller) DCHigh() { c.out(c.dc, gpio.High) }

// WriteCommand writes one command byte, framing it with the DC pin or the
// 9-bit prefix as the bus requires.
func (c *Controller) WriteCommand(cmd byte) {
	if c.dc == nil {
		c.Write9(cmd, false)
		return
	}
	c.DCLow()
	c.write8(cmd)
	c.DCHigh()
}

// WriteData8 writes one data byte.
func (c *Controller) WriteData8(b byte) {
	if c.dc == nil {
		c.Write9(b, true)
		return
	}
	c.write8(b)
}

// WriteData16 writes a 16-bit big-endian data word.
func (c *Controller) WriteData16(v uint16) {
	if c.dc == nil {
		c.Write9(byte(v>>8), true)
		c.Write9(byte(v), true)
		return
	}
	if c.c != nil {
		c.tx([]byte{byte(v >> 8), byte(v)})
		return
	}
	c.write8(byte(v >> 8))
	c.write8(byte(v))
}

// WriteData32 writes a 32-bit big-endian data word.
func (c *Controller) WriteData32(v uint32) {
	if c.dc == nil {
		c.Write9(byte(v>>24), true)
		c.Write9(byte(v>>16), true)
		c.Write9(byte(v>>8), true)
		c.Write9(byte(v), true)
		return
	}
	if c.c != nil {
		c.tx([]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)})
		return
	}
	c.write8(byte(v >> 24))
	c.write8(byte(v >> 16))
	c.write8(byte(v >> 8))
	c.write8(byte(v))
}

// Write9 writes a 9-bit frame: the data bit first, then the byte MSB
// first. Only meaningful on the GPIO path.
func (c *Controller) Write9(val byte, data bool) {
	if c.err != nil {
		return
	}
	c.writeBit(data)
	for bit := byte(0x80); bit != 0; bit >>= 1 {
		c.writeBit(val&bit != 0)
	}
}

// WriteBytes writes a data byte stream, chunked on the hardware path.
func (c *Controller) WriteBytes(p []byte) {
	if c.err != nil {
		return
	}
	if c.dc != nil {
		c.DCHigh()
	}
	if c.c != nil {
		for len(p) > 0 {
			n := len(p)
			if n > txChunk {
				n = txChunk
			}
			c.tx(p[:n])
			p = p[n:]
		}
		return
	}
	for _, b := range p {
		c.WriteData8(b)
	}
}

// WritePixels writes 16-bit pixels, optionally byte swapped.
func (c *Controller) WritePixels(px []uint16, swap bool) {
	if c.err != nil {
		return
	}
	if c.c != nil && c.dc != nil {
		buf := make([]byte, 0, txChunk)
		for len(px) > 0 {
			n := len(px)
			if n > txChunk/2 {
				n = txChunk / 2
			}
			buf = buf[:0]
			for _, v := range px[:n] {
				if swap {
					buf = append(buf, byte(v), byte(v>>8))
				} else {
					buf = append(buf, byte(v>>8), byte(v))
				}
			}
			c.tx(buf)
			px = px[n:]
		}
		return
	}
	for _, v := range px {
		if swap {
			v = v<<8 | v>>8
		}
		c.WriteData16(v)
	}
}

func (c *Controller) tx(w []byte) {
	if c.err != nil {
		return
	}
	c.err = c.c.Tx(w, nil)
}

func (c *Controller) write8(val byte) {
	if c.err != nil {
		return
	}
	if c.c != nil {
		c.tx([]byte{val})
		return
	}
	for bit := byte(0x80); bit != 0; bit >>= 1 {
		c.writeBit(val&bit != 0)
	}
}

// writeBit clocks one bit out: clock low, set MOSI, clock high. The slow
// path settles each edge for long or noisy wiring.
func (c *Controller) writeBit(b bool) {
	c.out(c.clk, gpio.Low)
	c.out(c.mosi, gpio.Level(b))
	if c.slow {
		time.Sleep(time.Microsecond)
	}
	c.out(c.clk, gpio.High)
	if c.slow {
		time.Sleep(time.Microsecond)
	}
}
