// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package i80bus drives an Intel 8080 style parallel display bus through a
// memory-mapped LCD peripheral. The register file is reached through the
// Device seam, so the bus logic stays testable off target.
package i80bus

import (
	"periph.io/x/conn/v3/gpio"
)

// Device is the register-level access to the LCD peripheral. Cycle latches
// a value and strobes one bus cycle; wide selects a 16-bit cycle and cmd
// drives the data/command line low for the cycle.
type Device interface {
	// SetClock programs the bus clock divider.
	SetClock(d ClockDiv)
	// Cycle strobes one write cycle.
	Cycle(value uint16, wide, cmd bool)
	// Busy reports whether the previous cycle is still shifting out.
	Busy() bool
}

// Width is the data bus width in bits.
type Width int

// Supported bus widths.
const (
	Width8  Width = 8
	Width16 Width = 16
)

// Bus writes commands, data and pixels over one I80 bus.
type Bus struct {
	dev     Device
	cs      gpio.PinOut
	width   Width
	dmadesc []dmaDesc
	err     error
}

// baseClock is the peripheral source clock the divider works from.
const baseClock = 240 * 1000 * 1000

// New programs the bus clock for targetHz and returns the Bus. cs may be
// nil when the panel is permanently selected.
func New(dev Device, cs gpio.PinOut, width Width, targetHz uint32) *Bus {
	dev.SetClock(CalcClockDiv(baseClock, targetHz))
	return &Bus{dev: dev, cs: cs, width: width}
}

// Err returns the first chip select error, if any.
func (b *Bus) Err() error {
	return b.err
}

// CSLow asserts chip select.
func (b *Bus) CSLow() { b.csOut(gpio.Low) }

// CSHigh releases chip select.
func (b *Bus) CSHigh() { b.csOut(gpio.High) }

func (b *Bus) csOut(l gpio.Level) {
	if b.err != nil || b.cs == nil {
		return
	}
	b.err = b.cs.Out(l)
}

// Wait blocks until the peripheral finished the last cycle.
func (b *Bus) Wait() {
	for b.dev.Busy() {
	}
}

func (b *Bus) cycle(v uint16, wide, cmd bool) {
	b.Wait()
	b.dev.Cycle(v, wide, cmd)
}

// WriteCommand writes a command of bits length. On an 8-bit bus multi-byte
// commands go out low byte first; a 16-bit bus sends one wide cycle.
func (b *Bus) WriteCommand(data uint32, bits int) {
	if b.width == Width8 {
		for n := bits >> 3; n > 0; n-- {
			b.cycle(uint16(data&0xFF), false, true)
			data >>= 8
		}
		return
	}
	b.cycle(uint16(data), true, true)
}

// WriteData writes a data word of bits length, most significant byte
// first. A 16-bit bus sends 16-bit values in one wide cycle and splits 8
// and 32-bit values into wide byte cycles.
func (b *Bus) WriteData(data uint32, bits int) {
	n := bits >> 3
	if b.width == Width8 {
		for shift := (n - 1) * 8; n > 0; n-- {
			b.cycle(uint16(data>>shift)&0xFF, false, false)
			shift -= 8
		}
		return
	}
	if n == 1 || n == 4 {
		for shift := (n - 1) * 8; n > 0; n-- {
			b.cycle(uint16(data>>shift)&0xFF, true, false)
			shift -= 8
		}
		return
	}
	b.cycle(uint16(data), true, false)
}

// PushPixels writes 16-bit pixels. swap reverses the byte order on the
// wire.
func (b *Bus) PushPixels(px []uint16, swap bool) {
	if b.width == Width8 {
		for _, v := range px {
			if swap {
				b.cycle(v&0xFF, false, false)
				b.cycle(v>>8, false, false)
			} else {
				b.cycle(v>>8, false, false)
				b.cycle(v&0xFF, false, false)
			}
		}
		return
	}
	for _, v := range px {
		if swap {
			v = v<<8 | v>>8
		}
		b.cycle(v, true, false)
	}
}
