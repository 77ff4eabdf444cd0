// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package panel

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// fakeVendor models the host LCD peripheral with an in-memory scanout
// buffer and call recording.
type fakeVendor struct {
	fb      []uint16
	flushes [][2]int
	blits   []blit
	on      []bool
	mirror  [][2]bool
	swaps   []bool
	params  []param
}

type blit struct {
	X0, Y0, X1, Y1 int
	Px             []uint16
}

type param struct {
	Cmd  byte
	Data []byte
}

func (v *fakeVendor) FrameBuffer() []uint16 { return v.fb }

func (v *fakeVendor) Flush(off, n int) { v.flushes = append(v.flushes, [2]int{off, n}) }

func (v *fakeVendor) DrawBitmap(x0, y0, x1, y1 int, px []uint16) error {
	v.blits = append(v.blits, blit{x0, y0, x1, y1, append([]uint16(nil), px...)})
	return nil
}

func (v *fakeVendor) DispOnOff(on bool) error {
	v.on = append(v.on, on)
	return nil
}

func (v *fakeVendor) Mirror(x, y bool) error {
	v.mirror = append(v.mirror, [2]bool{x, y})
	return nil
}

func (v *fakeVendor) SwapXY(swap bool) error {
	v.swaps = append(v.swaps, swap)
	return nil
}

func (v *fakeVendor) TxParam(cmd byte, data []byte) error {
	v.params = append(v.params, param{cmd, append([]byte(nil), data...)})
	return nil
}

func TestRGBDrawPixel(t *testing.T) {
	v := &fakeVendor{fb: make([]uint16, 8*4)}
	p := NewRGB(v, 8, 4)
	if !p.DrawPixel(2, 1, 0xBEEF) {
		t.Fatal("DrawPixel not handled")
	}
	if v.fb[1*8+2] != 0xBEEF {
		t.Errorf("fb[10] = %#x", v.fb[10])
	}
	if diff := cmp.Diff([][2]int{{10, 1}}, v.flushes); diff != "" {
		t.Errorf("flush mismatch (-want +got):\n%s", diff)
	}
}

func TestRGBDrawPixelRotated(t *testing.T) {
	v := &fakeVendor{fb: make([]uint16, 8*4)}
	p := NewRGB(v, 8, 4)
	p.SetRotation(2)
	v.flushes = nil
	p.DrawPixel(0, 0, 1)
	// Rotation 2 maps the origin to the far corner.
	if v.fb[3*8+7] != 1 {
		t.Error("rotated pixel landed wrong")
	}
	if diff := cmp.Diff([][2]int{{31, 1}}, v.flushes); diff != "" {
		t.Errorf("flush mismatch (-want +got):\n%s", diff)
	}
}

func TestRGBFillRectFlushesRows(t *testing.T) {
	v := &fakeVendor{fb: make([]uint16, 8*4)}
	p := NewRGB(v, 8, 4)
	p.FillRect(1, 1, 3, 2, 7)
	for y := 1; y <= 2; y++ {
		for x := 1; x <= 3; x++ {
			if v.fb[y*8+x] != 7 {
				t.Errorf("fb[%d,%d] = %d, want 7", x, y, v.fb[y*8+x])
			}
		}
	}
	if diff := cmp.Diff([][2]int{{9, 3}, {17, 3}}, v.flushes); diff != "" {
		t.Errorf("flush mismatch (-want +got):\n%s", diff)
	}
}

func TestRGBPushColors(t *testing.T) {
	v := &fakeVendor{fb: make([]uint16, 8*4)}
	p := NewRGB(v, 8, 4)
	p.SetAddrWindow(1, 1, 3, 3)
	px := []uint16{1, 2, 3, 4}
	p.PushColors(px, true)
	want := []blit{{1, 1, 3, 3, px}}
	if diff := cmp.Diff(want, v.blits); diff != "" {
		t.Errorf("blit mismatch (-want +got):\n%s", diff)
	}
}

func TestRGBRotationKnobs(t *testing.T) {
	v := &fakeVendor{fb: make([]uint16, 8*4)}
	p := NewRGB(v, 8, 4)
	p.SetRotation(1)
	if diff := cmp.Diff([][2]bool{{true, false}}, v.mirror); diff != "" {
		t.Errorf("mirror mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]bool{true}, v.swaps); diff != "" {
		t.Errorf("swap mismatch (-want +got):\n%s", diff)
	}
	p.DisplayOnff(false)
	if diff := cmp.Diff([]bool{false}, v.on); diff != "" {
		t.Errorf("on/off mismatch (-want +got):\n%s", diff)
	}
}
