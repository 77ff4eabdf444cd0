// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package termview implements a 2D display.Drawer that renders to a
// terminal using ANSI color codes, one block character per pixel.
//
// Useful to develop display output on a host machine without the panel
// wired up.
package termview

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/display"
)

// Opts represents the options available for this display.
type Opts struct {
	W, H    int
	Palette *ansi256.Palette
	// Out replaces the colorable stdout, for tests.
	Out io.Writer

	_ struct{}
}

// Dev is a 2D panel emulator that outputs to the console.
type Dev struct {
	w       io.Writer
	width   int
	height  int
	palette ansi256.Palette

	pixels []byte
	buf    bytes.Buffer
	drawn  bool
}

// New returns a Dev that displays at the console.
func New(opts *Opts) *Dev {
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	w := opts.Out
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	return &Dev{
		w:       w,
		width:   opts.W,
		height:  opts.H,
		palette: *p,
		pixels:  make([]byte, 3*opts.W*opts.H),
	}
}

func (d *Dev) String() string {
	return fmt.Sprintf("TermView{%dx%d}", d.width, d.height)
}

// Halt implements conn.Resource.
//
// It resets the terminal colors so the shell is not corrupted.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\033[0m\n"))
	return err
}

// Write accepts a full frame of raw RGB pixels and renders it.
func (d *Dev) Write(pixels []byte) (int, error) {
	if len(pixels) != len(d.pixels) {
		return 0, errors.New("invalid RGB frame length")
	}
	copy(d.pixels, pixels)
	return len(pixels), d.refresh()
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return color.NRGBAModel
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	return image.Rect(0, 0, d.width, d.height)
}

// Draw implements display.Drawer.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	r = r.Intersect(d.Bounds())
	for y := 0; y < r.Dy(); y++ {
		for x := 0; x < r.Dx(); x++ {
			r16, g16, b16, _ := src.At(sp.X+x, sp.Y+y).RGBA()
			o := 3 * ((r.Min.Y+y)*d.width + r.Min.X + x)
			d.pixels[o] = byte(r16 >> 8)
			d.pixels[o+1] = byte(g16 >> 8)
			d.pixels[o+2] = byte(b16 >> 8)
		}
	}
	return d.refresh()
}

func (d *Dev) refresh() error {
	// This code is designed to minimize the amount of memory allocated per
	// call. Redrawing moves the cursor back up over the previous frame.
	d.buf.Reset()
	if d.drawn {
		fmt.Fprintf(&d.buf, "\033[%dA", d.height)
	}
	for y := 0; y < d.height; y++ {
		_, _ = d.buf.WriteString("\r\033[0m")
		for x := 0; x < d.width; x++ {
			o := 3 * (y*d.width + x)
			c := color.NRGBA{d.pixels[o], d.pixels[o+1], d.pixels[o+2], 255}
			_, _ = io.WriteString(&d.buf, d.palette.Block(c))
		}
		_, _ = d.buf.WriteString("\033[0m\n")
	}
	d.drawn = true
	_, err := d.buf.WriteTo(d.w)
	return err
}

var _ display.Drawer = &Dev{}
var _ fmt.Stringer = &Dev{}
