// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"image"

	"github.com/fogleman/gg"
)

// renderPattern draws a test pattern sized for the panel. Unknown names
// fall back to the grid.
func renderPattern(name string, w, h int) image.Image {
	dc := gg.NewContext(w, h)
	switch name {
	case "bars":
		drawBars(dc, w, h)
	case "rings":
		drawRings(dc, w, h)
	default:
		drawGrid(dc, w, h)
	}
	return dc.Image()
}

// drawBars paints the classic eight color bars.
func drawBars(dc *gg.Context, w, h int) {
	colors := [][3]float64{
		{1, 1, 1}, {1, 1, 0}, {0, 1, 1}, {0, 1, 0},
		{1, 0, 1}, {1, 0, 0}, {0, 0, 1}, {0, 0, 0},
	}
	bw := float64(w) / float64(len(colors))
	for i, c := range colors {
		dc.SetRGB(c[0], c[1], c[2])
		dc.DrawRectangle(float64(i)*bw, 0, bw+1, float64(h))
		dc.Fill()
	}
}

// drawRings paints concentric circles around the panel center.
func drawRings(dc *gg.Context, w, h int) {
	dc.SetRGB(0, 0, 0)
	dc.Clear()
	cx, cy := float64(w)/2, float64(h)/2
	max := cx
	if cy < max {
		max = cy
	}
	dc.SetRGB(1, 1, 1)
	dc.SetLineWidth(1)
	for r := max; r > 4; r -= 8 {
		dc.DrawCircle(cx, cy, r)
		dc.Stroke()
	}
	dc.SetRGB(1, 0, 0)
	dc.DrawCircle(cx, cy, 4)
	dc.Fill()
}

// drawGrid paints a line grid with a border, for checking geometry and
// rotation.
func drawGrid(dc *gg.Context, w, h int) {
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(1)
	for x := 0; x < w; x += 16 {
		dc.DrawLine(float64(x), 0, float64(x), float64(h))
		dc.Stroke()
	}
	for y := 0; y < h; y += 16 {
		dc.DrawLine(0, float64(y), float64(w), float64(y))
		dc.Stroke()
	}
	dc.SetRGB(1, 0, 0)
	dc.DrawRectangle(0.5, 0.5, float64(w)-1, float64(h)-1)
	dc.Stroke()
	dc.SetRGB(0, 0, 1)
	dc.DrawLine(0, 0, float64(w), float64(h))
	dc.Stroke()
}
