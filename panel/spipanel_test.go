// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package panel

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

const tftDesc = `:H,ILI9341,240,320,16,SPI,1,10,14,13,9,2,12,11,40
:A,2A,2B,2C,16
:o,28
:O,29
:i,20,21
`

func TestSPIDrawPixelDirect(t *testing.T) {
	ctrl, log := newSPIHarness()
	p := NewSPI(ctrl, mustParse(tftDesc), nil)
	if !p.DrawPixel(5, 10, 0x1234) {
		t.Fatal("direct color panel must handle DrawPixel")
	}
	want := []xfer{
		cmdOp(0x2A), dataOp(0x00, 0x05, 0x00, 0x05),
		cmdOp(0x2B), dataOp(0x00, 0x0A, 0x00, 0x0A),
		cmdOp(0x2C),
		cmdOp(0x2C),
		dataOp(0x12, 0x34),
	}
	if diff := cmp.Diff(want, log.Ops); diff != "" {
		t.Errorf("bus traffic mismatch (-want +got):\n%s", diff)
	}
}

func TestSPIDrawPixelOutOfBounds(t *testing.T) {
	ctrl, log := newSPIHarness()
	p := NewSPI(ctrl, mustParse(tftDesc), nil)
	if !p.DrawPixel(240, 0, 1) || !p.DrawPixel(-1, 5, 1) {
		t.Error("out of bounds pixels must be swallowed")
	}
	if len(log.Ops) != 0 {
		t.Errorf("bus touched %d times for clipped pixels", len(log.Ops))
	}
}

func TestSPIDrawPixel18Bit(t *testing.T) {
	ctrl, log := newSPIHarness()
	p := NewSPI(ctrl, mustParse(tftDesc+":P,18\n"), nil)
	p.DrawPixel(0, 0, 0x1234)
	// RGB565 0x1234 expands to r=16 g=68 b=164 on the 18-bit wire.
	n := len(log.Ops)
	if n < 3 {
		t.Fatalf("got %d transfers", n)
	}
	want := []xfer{dataOp(0x10), dataOp(0x44), dataOp(0xA4)}
	if diff := cmp.Diff(want, log.Ops[n-3:]); diff != "" {
		t.Errorf("18-bit pixel mismatch (-want +got):\n%s", diff)
	}
}

func TestSPIDeclinesWithFramebuffer(t *testing.T) {
	ctrl, log := newSPIHarness()
	cfg := mustParse(tftDesc)
	p := NewSPI(ctrl, cfg, make([]byte, cfg.Width*cfg.Height*2))
	if p.DrawPixel(1, 1, 1) || p.FillRect(0, 0, 4, 4, 1) {
		t.Error("framebuffer panel must decline direct drawing")
	}
	if len(log.Ops) != 0 {
		t.Errorf("bus touched %d times", len(log.Ops))
	}
}

func TestSPIFillRectClips(t *testing.T) {
	ctrl, log := newSPIHarness()
	p := NewSPI(ctrl, mustParse(tftDesc), nil)
	if !p.FillRect(238, 0, 10, 1, 0xFFFF) {
		t.Fatal("FillRect not handled")
	}
	// Width clips from 10 to 2: addressing plus two pixel writes.
	var pixels int
	for _, op := range log.Ops {
		if !op.Cmd && len(op.W) == 2 && op.W[0] == 0xFF {
			pixels++
		}
	}
	if pixels != 2 {
		t.Errorf("wrote %d pixels, want 2", pixels)
	}
}

func TestSPIAddrWindowMode8(t *testing.T) {
	ctrl, log := newSPIHarness()
	cfg := mustParse(`:H,SSD1351,128,128,16,SPI,1,10,14,13,9,2,12,11,40
:A,15,75,5C,8
`)
	p := NewSPI(ctrl, cfg, nil)
	p.SetRotation(1) // no MadCtl declared, still records the rotation
	log.Ops = nil
	p.DrawPixel(3, 4, 0x1234)
	// rotation&1 swaps the axis pairs, bounds go out as commands.
	want := []xfer{
		cmdOp(0x15), cmdOp(0x04), cmdOp(0x04),
		cmdOp(0x75), cmdOp(0x03), cmdOp(0x03),
		cmdOp(0x5C),
		cmdOp(0x5C),
		dataOp(0x12, 0x34),
	}
	if diff := cmp.Diff(want, log.Ops); diff != "" {
		t.Errorf("mode 8 addressing mismatch (-want +got):\n%s", diff)
	}
}

func TestSPISetRotation(t *testing.T) {
	ctrl, log := newSPIHarness()
	cfg := mustParse(tftDesc + `:R,36,A1
:0,00,00,00,00
:1,60,00,00,01
:2,C0,00,00,02
:3,A0,00,00,03
`)
	p := NewSPI(ctrl, cfg, nil)
	if !p.SetRotation(2) {
		t.Fatal("SetRotation not handled")
	}
	want := []xfer{cmdOp(0x36), dataOp(0xC0)}
	if diff := cmp.Diff(want, log.Ops); diff != "" {
		t.Errorf("rotation traffic mismatch (-want +got):\n%s", diff)
	}
}

func TestSPISetRotationUndeclared(t *testing.T) {
	ctrl, log := newSPIHarness()
	p := NewSPI(ctrl, mustParse(tftDesc), nil)
	if p.SetRotation(1) {
		t.Error("rotation without MadCtl must be declined")
	}
	if len(log.Ops) != 0 {
		t.Errorf("bus touched %d times", len(log.Ops))
	}
}

func TestSPIDisplayOnffInvert(t *testing.T) {
	ctrl, log := newSPIHarness()
	p := NewSPI(ctrl, mustParse(tftDesc), nil)
	if !p.DisplayOnff(true) || !p.DisplayOnff(false) {
		t.Fatal("display on/off not handled")
	}
	if !p.InvertDisplay(true) || !p.InvertDisplay(false) {
		t.Fatal("invert not handled")
	}
	want := []xfer{cmdOp(0x29), cmdOp(0x28), cmdOp(0x21), cmdOp(0x20)}
	if diff := cmp.Diff(want, log.Ops); diff != "" {
		t.Errorf("control traffic mismatch (-want +got):\n%s", diff)
	}

	// Without declared commands the ops fall through.
	ctrl2, log2 := newSPIHarness()
	p2 := NewSPI(ctrl2, mustParse(":H,X,16,16,16,SPI,1,10,14,13,9,2,12,11,40\n"), nil)
	if p2.DisplayOnff(true) || p2.InvertDisplay(true) {
		t.Error("undeclared control commands must be declined")
	}
	if len(log2.Ops) != 0 {
		t.Errorf("bus touched %d times", len(log2.Ops))
	}
}

func TestSPIPushColors(t *testing.T) {
	ctrl, log := newSPIHarness()
	p := NewSPI(ctrl, mustParse(tftDesc), nil)
	p.SetAddrWindow(10, 20, 12, 22)
	if !p.PushColors([]uint16{0xAAAA, 0x5555}, true) {
		t.Fatal("PushColors not handled")
	}
	want := []xfer{
		cmdOp(0x2A), dataOp(0x00, 0x0A, 0x00, 0x0B),
		cmdOp(0x2B), dataOp(0x00, 0x14, 0x00, 0x15),
		cmdOp(0x2C),
		cmdOp(0x2C),
		dataOp(0xAA, 0xAA, 0x55, 0x55),
	}
	if diff := cmp.Diff(want, log.Ops); diff != "" {
		t.Errorf("push traffic mismatch (-want +got):\n%s", diff)
	}

	// Later chunks skip the addressing.
	log.Ops = nil
	p.PushColors([]uint16{0x0001}, false)
	if diff := cmp.Diff([]xfer{dataOp(0x00, 0x01)}, log.Ops); diff != "" {
		t.Errorf("continuation mismatch (-want +got):\n%s", diff)
	}
}

func TestSPIUpdateFramePageWalk(t *testing.T) {
	ctrl, log := newSPIHarness()
	cfg := mustParse(`:H,SSD1306,128,64,1,SPI,2,10,14,13,9,-1,12,11,10
:A,00,00,FF
`)
	fb := make([]byte, cfg.Width*cfg.Height/8)
	for i := range fb {
		fb[i] = byte(i)
	}
	p := NewSPI(ctrl, cfg, fb)
	if !p.UpdateFrame() {
		t.Fatal("UpdateFrame not handled")
	}
	// 64 rows is 8 pages, each page re-addressed then 128 bytes of data.
	if len(log.Ops) != 8*4 {
		t.Fatalf("got %d transfers, want 32", len(log.Ops))
	}
	for page := 0; page < 8; page++ {
		ops := log.Ops[page*4 : page*4+4]
		want := []xfer{
			cmdOp(0xB0 + byte(page)),
			cmdOp(0x00),
			cmdOp(0x10),
			{W: fb[page*128 : page*128+128]},
		}
		if diff := cmp.Diff(want, ops); diff != "" {
			t.Fatalf("page %d mismatch (-want +got):\n%s", page, diff)
		}
	}
}
