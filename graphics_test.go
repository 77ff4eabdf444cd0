// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package udisplay

import (
	"image"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

func newOLEDRig(t *testing.T, desc string) (*testRig, *Display) {
	t.Helper()
	r := newTestRig()
	d := New(desc)
	if err := d.Init(r.hardware()); err != nil {
		t.Fatal(err)
	}
	r.reset()
	return r, d
}

func TestFbDrawPixelPagedLayout(t *testing.T) {
	_, d := newOLEDRig(t, oledSPIDesc)

	d.DrawPixel(3, 10, 1)
	// Page 1 starts at byte 128, bit 2 of the column byte.
	if d.fb[131] != 0x04 {
		t.Errorf("fb[131] = %#02x, want 0x04", d.fb[131])
	}
	d.DrawPixel(3, 10, 0)
	if d.fb[131] != 0 {
		t.Errorf("fb[131] = %#02x after clearing, want 0", d.fb[131])
	}
}

func TestFbDrawPixelRotated(t *testing.T) {
	_, d := newOLEDRig(t, oledSPIDesc)

	d.SetRotation(2)
	d.DrawPixel(0, 0, 1)
	// (0,0) rotates to (127,63), the last byte of the last page.
	if d.fb[1023] != 0x80 {
		t.Errorf("fb[1023] = %#02x, want 0x80", d.fb[1023])
	}
}

func TestFbDrawPixelHorizontalPacking(t *testing.T) {
	_, d := newOLEDRig(t, oledSPIDesc+":b,1\n")

	d.DrawPixel(3, 10, 1)
	// Row-major horizontal bytes, MSB first.
	if d.fb[160] != 0x10 {
		t.Errorf("fb[160] = %#02x, want 0x10", d.fb[160])
	}
	if d.fb[131] != 0 {
		t.Errorf("fb[131] = %#02x, want the paged layout untouched", d.fb[131])
	}
}

func TestPushColorsMono(t *testing.T) {
	_, d := newOLEDRig(t, oledSPIDesc)

	d.SetAddrWindow(0, 0, 2, 2)
	d.PushColors([]uint16{0xFFFF, 0x0000, 0x8000, 0x0010}, true)

	// (0,0) and (0,1) land in byte 0, (1,1) in byte 1.
	if d.fb[0] != 0x03 {
		t.Errorf("fb[0] = %#02x, want 0x03", d.fb[0])
	}
	if d.fb[1] != 0x02 {
		t.Errorf("fb[1] = %#02x, want 0x02", d.fb[1])
	}
}

func TestPushColorsMonoInverted(t *testing.T) {
	r := newTestRig()
	hw := r.hardware()
	hw.InvertBW = true
	d := New(oledSPIDesc)
	if err := d.Init(hw); err != nil {
		t.Fatal(err)
	}

	d.SetAddrWindow(0, 0, 2, 2)
	d.PushColors([]uint16{0xFFFF, 0x0000, 0x8000, 0x0010}, true)

	if d.fb[0] != 0x00 {
		t.Errorf("fb[0] = %#02x, want 0", d.fb[0])
	}
	if d.fb[1] != 0x01 {
		t.Errorf("fb[1] = %#02x, want 0x01", d.fb[1])
	}
}

func TestPushColorsMonoSwappedMask(t *testing.T) {
	_, d := newOLEDRig(t, oledSPIDesc)

	d.SetAddrWindow(0, 0, 2, 1)
	// Byte swapped stream, thresholded with the swapped mask.
	d.PushColors([]uint16{0x1000, 0x0008}, false)

	if d.fb[0] != 0x01 {
		t.Errorf("fb[0] = %#02x, want 0x01", d.fb[0])
	}
	if d.fb[1] != 0 {
		t.Errorf("fb[1] = %#02x, want 0", d.fb[1])
	}
}

func TestPushColorsSwapped(t *testing.T) {
	r := newTestRig()
	d := New(tftDesc)
	if err := d.Init(r.hardware()); err != nil {
		t.Fatal(err)
	}
	r.reset()

	d.SetAddrWindow(10, 20, 12, 22)
	d.PushColors([]uint16{0x3412, 0x7856}, false)

	want := []xfer{
		cmdOp(0x2A), dataOp(0x00, 0x0A, 0x00, 0x0B),
		cmdOp(0x2B), dataOp(0x00, 0x14, 0x00, 0x15),
		cmdOp(0x2C), cmdOp(0x2C),
		dataOp(0x12, 0x34, 0x56, 0x78),
	}
	if diff := cmp.Diff(want, r.log.Ops); diff != "" {
		t.Errorf("stream mismatch (-want +got):\n%s", diff)
	}

	// The window stays addressed for later chunks.
	r.reset()
	d.PushColors([]uint16{0xBC9A}, false)
	if diff := cmp.Diff([]xfer{dataOp(0x9A, 0xBC)}, r.log.Ops); diff != "" {
		t.Errorf("continuation mismatch (-want +got):\n%s", diff)
	}
}

func TestDrawVerticalLSBFastPath(t *testing.T) {
	r, d := newOLEDRig(t, oledSPIDesc)

	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
	img.Pix[131] = 0x04
	if err := d.Draw(d.Bounds(), img, image.Point{}); err != nil {
		t.Fatal(err)
	}
	if d.fb[131] != 0x04 {
		t.Errorf("fb[131] = %#02x, want 0x04", d.fb[131])
	}
	if len(r.log.Ops) == 0 || !r.log.Ops[0].Cmd {
		t.Errorf("ops = %v, want a page addressed frame push", r.log.Ops)
	}
}

func TestToRGB565(t *testing.T) {
	cases := []struct {
		c    color.Color
		want uint16
	}{
		{color.White, 0xFFFF},
		{color.Black, 0x0000},
		{color.RGBA{R: 0xFF, A: 0xFF}, 0xF800},
		{color.RGBA{G: 0xFF, A: 0xFF}, 0x07E0},
		{color.RGBA{B: 0xFF, A: 0xFF}, 0x001F},
	}
	for _, tc := range cases {
		if got := ToRGB565(tc.c); got != tc.want {
			t.Errorf("ToRGB565(%v) = %#04x, want %#04x", tc.c, got, tc.want)
		}
	}
}
