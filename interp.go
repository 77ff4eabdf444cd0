// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package udisplay

import (
	"time"

	"periph.io/x/conn/v3/gpio"

	"github.com/GermanBionicSystems/udisplay/descriptor"
	"github.com/GermanBionicSystems/udisplay/panel"
	"github.com/GermanBionicSystems/udisplay/spibus"
)

// E-paper pseudo opcodes. Opcode bytes at or above epReset in a command
// stream of a LUT driven e-paper panel are interpreted, not sent.
const (
	epReset      = 0x60
	epLutFull    = 0x61
	epLutPartial = 0x62
	epWaitIdle   = 0x63
	epSetMemArea = 0x64
	epSetMemPtr  = 0x65
	epSendData   = 0x66
	epClrFrame   = 0x67
	epSendFrame  = 0x68
	epBreakRREqu = 0x69
	epBreakRRNeq = 0x6A
)

// sendInitCmds replays an out-of-band init command table over ctrl. The
// args byte keeps 7 length bits and there are no pseudo opcodes here.
func (d *Display) sendInitCmds(ctrl *spibus.Controller, cmds []byte) {
	offset := 0
	for offset+1 < len(cmds) {
		ctrl.CSLow()
		cmd := cmds[offset]
		offset++
		ctrl.WriteCommand(cmd)
		args := cmds[offset]
		offset++
		d.logf(LogDebugMore, "udisplay: icmd %02x, %d args", cmd, args&0x7F)
		for cnt := 0; cnt < int(args&0x7F) && offset < len(cmds); cnt++ {
			ctrl.WriteData8(cmds[offset])
			offset++
		}
		ctrl.CSHigh()
		if args&0x80 != 0 {
			d.sleep(panel.BandedDelay(args))
		}
	}
}

// sendCmds replays a slice of the opcode stream. For LUT driven e-paper
// panels opcodes at or above epReset run against the panel instead of the
// wire; the break opcodes compare their literal against the host reset
// reason and stop the stream with a partial refresh armed when it matches.
func (d *Display) sendCmds(offset, size int) {
	cfg := d.cfg
	if size <= 0 || offset+size > len(cfg.Cmds) {
		return
	}
	index := 0
	for {
		d.ctrl.CSLow()
		iob := cfg.Cmds[offset]
		offset++
		index++
		if (cfg.EPMode == descriptor.EPDualLUT || cfg.EPMode == descriptor.EPCmdOnly) && iob >= epReset {
			if d.epd == nil {
				// The init table runs before the panel exists.
				return
			}
			args := cfg.Cmds[offset]
			offset++
			index++
			d.logf(LogDebugMore, "udisplay: ep op %02x, args %02x", iob, args)
			switch iob {
			case epReset:
				if args&1 != 0 {
					iob = cfg.Cmds[offset]
					offset++
					index++
				}
				d.resetPin(int(iob), int(iob))
			case epLutFull:
				d.epd.SetLut(cfg.LutFull)
				d.epd.SetUpdateMode(false)
				d.epUpdateMode = InitFull
			case epLutPartial:
				d.epd.SetLut(cfg.LutPartial)
				d.epd.SetUpdateMode(true)
				d.epUpdateMode = InitPartial
			case epWaitIdle:
				if args&1 != 0 {
					iob = cfg.Cmds[offset]
					offset++
					index++
				}
				d.epd.DelaySync(time.Duration(iob) * 10 * time.Millisecond)
			case epSetMemArea:
				d.epd.SetMemoryArea(0, 0, cfg.Width-1, cfg.Height-1)
			case epSetMemPtr:
				d.epd.SetMemoryPointer(0, 0)
			case epSendData:
				d.epd.SendEPData()
			case epClrFrame:
				d.epd.ClearFrameMemory(0xFF)
			case epSendFrame:
				d.epd.SetFrameMemory(d.fb)
			case epBreakRREqu:
				if args&1 != 0 {
					iob = cfg.Cmds[offset]
					offset++
					index++
					if int(iob) == d.hw.ResetReason() {
						d.epUpdateMode = InitPartial
						d.epd.SetUpdateMode(true)
						return
					}
				}
			case epBreakRRNeq:
				if args&1 != 0 {
					iob = cfg.Cmds[offset]
					offset++
					index++
					if int(iob) != d.hw.ResetReason() {
						d.epUpdateMode = InitPartial
						d.epd.SetUpdateMode(true)
						return
					}
				}
			}
			if args&0x80 != 0 {
				d.sleep(panel.BandedDelay(args))
			}
		} else {
			d.ctrl.WriteCommand(iob)
			args := cfg.Cmds[offset]
			offset++
			index++
			d.logf(LogDebugMore, "udisplay: cmd %02x, %d args", iob, args&0x1F)
			for cnt := 0; cnt < int(args&0x1F); cnt++ {
				iob = cfg.Cmds[offset]
				offset++
				index++
				if !cfg.AllCmdMode {
					d.ctrl.WriteData8(iob)
				} else {
					d.ctrl.WriteCommand(iob)
				}
			}
			d.ctrl.CSHigh()
			if args&0x80 != 0 {
				d.sleep(panel.BandedDelay(args))
			}
		}
		if index >= size {
			break
		}
	}
}

// resetPin pulses the reset line low for lowMs then releases it for
// highMs.
func (d *Display) resetPin(lowMs, highMs int) {
	if d.reset == nil {
		return
	}
	d.reset.Out(gpio.Low)
	d.sleep(time.Duration(lowMs) * time.Millisecond)
	d.reset.Out(gpio.High)
	d.sleep(time.Duration(highMs) * time.Millisecond)
}

// delaySync waits for the e-paper busy line, or just sleeps when there is
// no panel to poll.
func (d *Display) delaySync(t time.Duration) {
	if d.epd != nil {
		d.epd.DelaySync(t)
		return
	}
	d.sleep(t)
}
