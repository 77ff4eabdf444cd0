// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package udisplay

import (
	"image"
	"image/color"

	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/GermanBionicSystems/udisplay/descriptor"
)

// A pixel is white when one of its components is above half intensity.
// The masks test that directly on RGB565, plain and byte swapped.
const (
	rgb16ToMono     = 0x8410
	rgb16SwapToMono = 0x1084
)

// DrawPixel draws one pixel in the current rotation frame. color is RGB565
// for color panels and 0 or 1 for monochrome ones.
func (d *Display) DrawPixel(x, y int, color uint16) {
	if d.panel != nil && d.panel.DrawPixel(x, y, color) {
		return
	}
	if d.epd != nil {
		d.drawPixelEPD(x, y, color)
		return
	}
	d.fbDrawPixel(x, y, color)
}

// FillRect fills a rectangle.
func (d *Display) FillRect(x, y, w, h int, color uint16) {
	if d.panel != nil && d.panel.FillRect(x, y, w, h, color) {
		return
	}
	if d.epd != nil {
		for yy := y; yy < y+h; yy++ {
			for xx := x; xx < x+w; xx++ {
				d.drawPixelEPD(xx, yy, color)
			}
		}
		return
	}
	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+w; xx++ {
			d.fbDrawPixel(xx, yy, color)
		}
	}
}

// DrawFastHLine draws a horizontal line.
func (d *Display) DrawFastHLine(x, y, w int, color uint16) {
	if d.epd != nil {
		for xx := x; xx < x+w; xx++ {
			d.drawPixelEPD(xx, y, color)
		}
		return
	}
	if d.fb != nil && d.panel != nil {
		for xx := x; xx < x+w; xx++ {
			d.fbDrawPixel(xx, y, color)
		}
		return
	}
	if x >= d.width || y >= d.height {
		return
	}
	if x+w-1 >= d.width {
		w = d.width - x
	}
	if d.panel != nil {
		d.panel.DrawFastHLine(x, y, w, color)
	}
}

// DrawFastVLine draws a vertical line.
func (d *Display) DrawFastVLine(x, y, h int, color uint16) {
	if d.epd != nil {
		for yy := y; yy < y+h; yy++ {
			d.drawPixelEPD(x, yy, color)
		}
		return
	}
	if d.fb != nil && d.panel != nil {
		for yy := y; yy < y+h; yy++ {
			d.fbDrawPixel(x, yy, color)
		}
		return
	}
	if x >= d.width || y >= d.height {
		return
	}
	if y+h-1 >= d.height {
		h = d.height - y
	}
	if d.panel != nil {
		d.panel.DrawFastVLine(x, y, h, color)
	}
}

// FillScreen fills the whole panel.
func (d *Display) FillScreen(color uint16) {
	d.FillRect(0, 0, d.width, d.height, color)
}

// rotFrame maps a coordinate from the rotated frame into the panel frame.
func (d *Display) rotFrame(x, y, rot int) (int, int) {
	switch rot & 3 {
	case 1:
		x, y = d.cfg.Width-1-y, x
	case 2:
		x, y = d.cfg.Width-1-x, d.cfg.Height-1-y
	case 3:
		x, y = y, d.cfg.Height-1-x
	}
	return x, y
}

// drawPixelEPD rotates through the descriptor's rotation remap table and
// writes the absolute pixel into the e-paper framebuffer.
func (d *Display) drawPixelEPD(x, y int, color uint16) {
	if x < 0 || x >= d.width || y < 0 || y >= d.height {
		return
	}
	x, y = d.rotFrame(x, y, int(d.cfg.RotT[d.rot]))
	d.epd.DrawPixel(x, y, color)
}

// fbDrawPixel writes one pixel into the host framebuffer of a 1-bpp
// panel. The default layout is the paged OLED one, a byte per eight
// vertical pixels; bit packing mode 1 switches to row-major horizontal
// bytes.
func (d *Display) fbDrawPixel(x, y int, color uint16) {
	if d.fb == nil || d.cfg.BPP != 1 {
		return
	}
	if x < 0 || x >= d.width || y < 0 || y >= d.height {
		return
	}
	x, y = d.rotFrame(x, y, d.rot)
	var pos int
	var bit byte
	if d.cfg.BPMode == 1 {
		pos = (x + y*d.cfg.Width) / 8
		bit = 0x80 >> uint(x&7)
	} else {
		pos = x + (y/8)*d.cfg.Width
		bit = 1 << uint(y&7)
	}
	if color != 0 {
		d.fb[pos] |= bit
	} else {
		d.fb[pos] &^= bit
	}
}

// SetAddrWindow opens the streaming window for PushColors; exclusive
// bounds. All zeros closes the window and releases the bus.
func (d *Display) SetAddrWindow(x0, y0, x1, y1 int) {
	d.setaXp1, d.setaYp1 = x0, y0
	d.setaXp2, d.setaYp2 = x1, y1
	d.pushFirst = true
	if d.panel != nil && d.panel.SetAddrWindow(x0, y0, x1, y1) {
		return
	}
	if x0 == 0 && y0 == 0 && x1 == 0 && y1 == 0 && d.ctrl != nil {
		d.ctrl.CSHigh()
	}
}

// PushColors streams pixels into the open window. notSwapped reports the
// byte order of data; monochrome panels threshold each pixel instead.
func (d *Display) PushColors(data []uint16, notSwapped bool) {
	if d.swapColor {
		notSwapped = !notSwapped
	}
	first := d.pushFirst
	d.pushFirst = false

	if d.cfg.BPP != 16 {
		d.pushColorsMono(data, !notSwapped)
		return
	}
	if !notSwapped {
		for i := range data {
			data[i] = data[i]<<8 | data[i]>>8
		}
	}
	if d.panel != nil {
		d.panel.PushColors(data, first)
	}
}

// pushColorsMono walks the window converting RGB565 to monochrome. The
// window row pointer advances so successive calls continue the stream.
func (d *Display) pushColorsMono(data []uint16, swapped bool) {
	mask := uint16(rgb16ToMono)
	if swapped {
		mask = rgb16SwapToMono
	}
	i := 0
	for y := d.setaYp1; y < d.setaYp2; y++ {
		d.setaYp1++
		for x := d.setaXp1; x < d.setaXp2; x++ {
			if i >= len(data) {
				return
			}
			color := data[i]
			i++
			if d.cfg.BPP == 1 {
				on := color&mask != 0
				if d.hw.InvertBW {
					on = !on
				}
				color = 0
				if on {
					color = 1
				}
			}
			d.DrawPixel(x, y, color)
		}
	}
}

// SetRotation selects the rotation, 0 to 3. Odd rotations swap the
// logical width and height.
func (d *Display) SetRotation(rot int) {
	d.rot = rot & 3
	if d.panel != nil {
		d.panel.SetRotation(d.rot)
	}
	if d.rot&1 == 1 {
		d.width, d.height = d.cfg.Height, d.cfg.Width
	} else {
		d.width, d.height = d.cfg.Width, d.cfg.Height
	}
}

// Rotation returns the current rotation.
func (d *Display) Rotation() int {
	return d.rot
}

// InvertDisplay inverts the panel colors.
func (d *Display) InvertDisplay(invert bool) {
	if d.panel != nil && d.panel.InvertDisplay(invert) {
		return
	}
	if d.epd != nil {
		d.epd.InvertDisplay(invert)
	}
}

// UpdateFrame pushes the host framebuffer to the panel. Direct streaming
// panels ignore it.
func (d *Display) UpdateFrame() {
	if d.panel != nil && d.panel.UpdateFrame() {
		return
	}
	if d.epd != nil {
		d.updateFrameEPD()
	}
}

// ColorModel implements display.Drawer.
func (d *Display) ColorModel() color.Model {
	if d.cfg.BPP == 1 {
		return image1bit.BitModel
	}
	return color.RGBAModel
}

// Bounds implements display.Drawer.
func (d *Display) Bounds() image.Rectangle {
	return image.Rect(0, 0, d.width, d.height)
}

// Draw implements display.Drawer. A full frame VerticalLSB image on a
// paged OLED copies straight into the framebuffer; everything else goes
// through the per-pixel path. The frame is pushed when done.
func (d *Display) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	r = r.Intersect(d.Bounds())
	srcR := image.Rectangle{Min: sp, Max: sp.Add(r.Size())}

	if img, ok := src.(*image1bit.VerticalLSB); ok &&
		d.cfg.BPP == 1 && d.cfg.BPMode == 0 && d.rot == 0 &&
		d.cfg.EPMode == descriptor.EPNone && d.fb != nil &&
		r == d.Bounds() && srcR == img.Bounds() && len(img.Pix) == len(d.fb) {
		copy(d.fb, img.Pix)
		d.UpdateFrame()
		return d.Err()
	}

	if d.cfg.BPP == 1 {
		for y := 0; y < r.Dy(); y++ {
			for x := 0; x < r.Dx(); x++ {
				var c uint16
				if image1bit.BitModel.Convert(src.At(sp.X+x, sp.Y+y)).(image1bit.Bit) {
					c = 1
				}
				d.DrawPixel(r.Min.X+x, r.Min.Y+y, c)
			}
		}
	} else {
		for y := 0; y < r.Dy(); y++ {
			for x := 0; x < r.Dx(); x++ {
				d.DrawPixel(r.Min.X+x, r.Min.Y+y, ToRGB565(src.At(sp.X+x, sp.Y+y)))
			}
		}
	}
	d.UpdateFrame()
	return d.Err()
}

// Halt implements conn.Resource; it turns the display off.
func (d *Display) Halt() error {
	d.DisplayOnff(false)
	return d.Err()
}

// ToRGB565 packs a color into the RGB565 wire format.
func ToRGB565(c color.Color) uint16 {
	r, g, b, _ := c.RGBA()
	return uint16(r>>11)<<11 | uint16(g>>10)<<5 | uint16(b>>11)
}
