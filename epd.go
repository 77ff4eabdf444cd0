// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package udisplay

import (
	"time"

	"github.com/GermanBionicSystems/udisplay/descriptor"
)

// InitMode selects what DisplayInit does. InitNormal runs the plain post
// bus setup; the other two arm an e-paper refresh mode.
type InitMode int8

// Valid InitMode.
const (
	InitNormal InitMode = iota
	InitPartial
	InitFull
)

// DisplayInit finishes the panel setup. For e-paper panels InitFull and
// InitPartial load the matching LUT and run a refresh; InitNormal applies
// the rotation, resets inversion and paints the splash background.
func (d *Display) DisplayInit(mode InitMode, rot int) {
	cfg := d.cfg
	if mode != InitNormal && cfg.EPMode != descriptor.EPNone {
		d.epUpdateMode = mode
		switch mode {
		case InitPartial:
			if cfg.LutPSize == 0 {
				return
			}
			d.logf(LogDebug, "udisplay: init partial epaper mode")
			if d.epd != nil {
				d.epd.SetLut(cfg.LutPartial)
				d.epd.SetUpdateMode(true)
			}
			d.updateFrameEPD()
			d.delaySync(time.Duration(cfg.LutPTime) * 10 * time.Millisecond)
		case InitFull:
			d.logf(LogDebug, "udisplay: init full epaper mode")
			if cfg.LutFSize != 0 && d.epd != nil {
				d.epd.SetLut(cfg.LutFull)
				d.epd.SetUpdateMode(false)
				d.updateFrameEPD()
			}
			if cfg.EPMode == descriptor.EPFiveLUT && d.epd != nil {
				d.epd.ClearFrame42()
				d.epd.DisplayFrame42()
			}
			d.delaySync(time.Duration(cfg.LutFTime) * 10 * time.Millisecond)
		}
		return
	}

	d.SetRotation(rot)
	d.InvertDisplay(false)
	if cfg.SplashFont >= 0 {
		d.FillScreen(uint16(cfg.BgCol))
		d.UpdateFrame()
	}
	d.logf(LogDebug, "udisplay: display init complete")
}

// updateFrameEPD runs the refresh recorded for the armed update mode.
// LUT driven panels replay their full or partial command sub-table when
// the descriptor has one, otherwise the frame memory is rewritten and
// flashed directly. Five-LUT panels always use the plane based refresh.
func (d *Display) updateFrameEPD() {
	if d.epd == nil {
		return
	}
	cfg := d.cfg
	if cfg.EPMode == descriptor.EPDualLUT || cfg.EPMode == descriptor.EPCmdOnly {
		switch d.epUpdateMode {
		case InitPartial:
			if cfg.EPPartCnt > 0 {
				d.sendCmds(cfg.EPOffsPart, cfg.EPPartCnt)
			}
		case InitFull:
			if cfg.EPFullCnt > 0 {
				d.sendCmds(cfg.EPOffsFull, cfg.EPFullCnt)
			}
		default:
			d.epd.SetFrameMemoryWindow(d.fb, 0, 0, cfg.Width, cfg.Height)
			d.epd.DisplayFrame()
		}
		return
	}
	d.epd.DisplayFrame42()
}
