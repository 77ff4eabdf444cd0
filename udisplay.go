// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package udisplay

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/gpio/gpioreg"

	"github.com/GermanBionicSystems/udisplay/descriptor"
	"github.com/GermanBionicSystems/udisplay/i2cbus"
	"github.com/GermanBionicSystems/udisplay/i80bus"
	"github.com/GermanBionicSystems/udisplay/panel"
	"github.com/GermanBionicSystems/udisplay/spibus"
)

// LogLevel filters the messages a LogFunc receives.
type LogLevel int

// Valid LogLevel.
const (
	LogNone LogLevel = iota
	LogError
	LogInfo
	LogDebug
	LogDebugMore
)

// LogFunc receives driver messages. nil silences the driver.
type LogFunc func(level LogLevel, format string, args ...interface{})

// StdLog is a LogFunc writing to the standard logger.
func StdLog(level LogLevel, format string, args ...interface{}) {
	log.Printf(format, args...)
}

// Hardware binds a parsed descriptor to the host. Only the field matching
// the descriptor's bus has to be set; the rest may stay zero.
type Hardware struct {
	// Port is the hardware SPI port for bus numbers 0 to 2. nil bit-bangs
	// the descriptor's CLK and MOSI pins.
	Port spi.Port
	// I2C is the bus of an I2C attached panel.
	I2C i2c.Bus
	// I80 is the parallel bus peripheral of a PAR8/PAR16 panel.
	I80 i80bus.Device
	// RGB is the vendor peripheral behind an RGB timing controller panel.
	RGB panel.Vendor
	// DSI is the vendor peripheral behind a MIPI-DSI panel.
	DSI panel.VendorIO

	// Pins resolves a descriptor pin number to a GPIO. nil uses
	// gpioreg.ByName.
	Pins func(name string) gpio.PinIO
	// ResetReason reports the host reset cause for the e-paper
	// break opcodes. nil never matches, forcing a full refresh.
	ResetReason func() int
	// Sleep replaces time.Sleep, for tests.
	Sleep func(time.Duration)
	// Log receives driver messages.
	Log LogFunc

	// SwapColor flips the byte order pushColors expects.
	SwapColor bool
	// InvertBW inverts the monochrome threshold of pushColors.
	InvertBW bool
	// BusyInvert flips the level of the e-paper busy line.
	BusyInvert bool
}

// Display drives one panel. Create it with New, bind it with Init; the
// drawing methods follow the panel-first dispatch of the descriptor model:
// the panel backend gets the first shot at every operation, the host
// framebuffer and the raw bus are the fallbacks.
type Display struct {
	cfg *descriptor.Config
	hw  Hardware

	ctrl  *spibus.Controller
	bus   *i80bus.Bus
	panel panel.Universal
	epd   *panel.EPD

	fb        []byte
	width     int
	height    int
	rot       int
	backlight gpio.PinOut
	reset     gpio.PinOut

	epUpdateMode InitMode
	swapColor    bool

	// pushColors window, exclusive bounds in the rotated frame.
	setaXp1, setaYp1 int
	setaXp2, setaYp2 int
	pushFirst        bool

	err error
}

// New parses the descriptor text. Parsing never fails; a broken descriptor
// surfaces as an Init error or as a panel that ignores everything.
func New(text string) *Display {
	cfg := descriptor.Parse(text)
	return &Display{
		cfg:    cfg,
		width:  cfg.Width,
		height: cfg.Height,
	}
}

// Config exposes the parsed descriptor.
func (d *Display) Config() *descriptor.Config {
	return d.cfg
}

// Width returns the panel width in the current rotation.
func (d *Display) Width() int {
	return d.width
}

// Height returns the panel height in the current rotation.
func (d *Display) Height() int {
	return d.height
}

// Err returns the first error any operation hit since Init.
func (d *Display) Err() error {
	if d.err != nil {
		return d.err
	}
	if d.ctrl != nil {
		if err := d.ctrl.Err(); err != nil {
			return err
		}
	}
	if d.bus != nil {
		if err := d.bus.Err(); err != nil {
			return err
		}
	}
	return nil
}

func (d *Display) fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

func (d *Display) logf(level LogLevel, format string, args ...interface{}) {
	if d.hw.Log != nil {
		d.hw.Log(level, format, args...)
	}
}

func (d *Display) sleep(t time.Duration) {
	d.hw.Sleep(t)
}

func (d *Display) pinOut(n int) gpio.PinOut {
	if n < 0 {
		return nil
	}
	p := d.hw.Pins(strconv.Itoa(n))
	if p == nil {
		d.fail(fmt.Errorf("udisplay: unknown pin %d", n))
		return nil
	}
	return p
}

func (d *Display) pinIO(n int) gpio.PinIO {
	if n < 0 {
		return nil
	}
	p := d.hw.Pins(strconv.Itoa(n))
	if p == nil {
		d.fail(fmt.Errorf("udisplay: unknown pin %d", n))
		return nil
	}
	return p
}

// Init builds the bus controller and the panel backend for the descriptor
// and replays its init command stream. It allocates the host framebuffer
// for e-paper panels and panels below 16 bpp.
func (d *Display) Init(hw Hardware) error {
	d.hw = hw
	if d.hw.Pins == nil {
		d.hw.Pins = gpioreg.ByName
	}
	if d.hw.Sleep == nil {
		d.hw.Sleep = time.Sleep
	}
	if d.hw.ResetReason == nil {
		d.hw.ResetReason = func() int { return -1 }
	}
	d.swapColor = hw.SwapColor

	cfg := d.cfg
	if cfg.Interface == descriptor.NoBus {
		return fmt.Errorf("udisplay: display unavailable, descriptor has no valid interface")
	}
	d.logf(LogDebug, "udisplay: init %s %dx%d over %s", cfg.Name, cfg.Width, cfg.Height, cfg.Interface)

	if size := cfg.Size(); size > 0 {
		d.fb = make([]byte, size)
	}

	switch cfg.Interface {
	case descriptor.I2C:
		if hw.I2C == nil {
			return fmt.Errorf("udisplay: descriptor wants I2C but no bus was given")
		}
		dev := i2cbus.New(hw.I2C, uint16(cfg.I2CAddr))
		p, err := panel.NewI2C(dev, cfg, d.fb)
		if err != nil {
			return err
		}
		d.panel = p

	case descriptor.SPI:
		if err := d.initSPI(); err != nil {
			return err
		}

	case descriptor.PAR8, descriptor.PAR16:
		if hw.I80 == nil {
			return fmt.Errorf("udisplay: descriptor wants %s but no bus device was given", cfg.Interface)
		}
		width := i80bus.Width8
		if cfg.Interface == descriptor.PAR16 {
			width = i80bus.Width16
		}
		hz := uint32(cfg.Par.SpeedMHz) * 1000 * 1000
		d.bus = i80bus.New(hw.I80, d.pinOut(cfg.Par.CS), width, hz)
		d.panel = panel.NewI80(d.bus, cfg, d.hw.Sleep)
		if r := d.pinOut(cfg.Reset); r != nil {
			d.reset = r
			r.Out(gpio.High)
			d.sleep(50 * time.Millisecond)
			d.resetPin(50, 200)
		}
		d.backlightOn()

	case descriptor.RGB:
		if hw.RGB == nil {
			return fmt.Errorf("udisplay: descriptor wants RGB but no vendor panel was given")
		}
		if err := d.specialInit(); err != nil {
			return err
		}
		d.backlightOn()
		d.panel = panel.NewRGB(hw.RGB, cfg.Width, cfg.Height)
		// Byte swapping is wired into the data pin order, not done per
		// pixel.
		d.swapColor = false

	case descriptor.DSI:
		if hw.DSI == nil {
			return fmt.Errorf("udisplay: descriptor wants DSI but no vendor panel was given")
		}
		p, err := panel.NewDSI(hw.DSI, cfg.Width, cfg.Height, cfg.Cmds[:cfg.NCmds], d.hw.Sleep)
		if err != nil {
			return err
		}
		d.panel = p
		if cfg.DSI.BacklightPin >= 0 {
			if b := d.pinOut(cfg.DSI.BacklightPin); b != nil {
				d.backlight = b
				b.Out(gpio.High)
			}
		}

	default:
		return fmt.Errorf("udisplay: unsupported interface %s", cfg.Interface)
	}

	d.width = cfg.Width
	d.height = cfg.Height
	d.logf(LogDebug, "udisplay: init complete")
	return d.Err()
}

func (d *Display) initSPI() error {
	cfg := d.cfg
	scfg := spibus.Config{
		BusNr: cfg.SPI.BusNr,
		CS:    d.pinOut(cfg.SPI.CS),
		DC:    d.pinOut(cfg.SPI.DC),
		CLK:   d.pinOut(cfg.SPI.CLK),
		MOSI:  d.pinOut(cfg.SPI.MOSI),
		MISO:  d.pinIO(cfg.SPI.MISO),
	}
	if d.hw.Port != nil && cfg.SPI.BusNr <= 2 {
		mhz := cfg.SPI.SpeedMHz
		if mhz <= 0 {
			mhz = 8
		}
		c, err := d.hw.Port.Connect(physic.Frequency(mhz)*physic.MegaHertz, spi.Mode0, 8)
		if err != nil {
			return fmt.Errorf("udisplay: %v", err)
		}
		scfg.Conn = c
	}
	d.ctrl = spibus.New(scfg)

	d.backlightOn()

	if r := d.pinOut(cfg.Reset); r != nil {
		d.reset = r
		r.Out(gpio.High)
		d.sleep(50 * time.Millisecond)
		d.resetPin(50, 200)
	}

	if cfg.EPMode != descriptor.EPNone {
		d.sendCmds(0, cfg.NCmds)
		d.epd = panel.NewEPD(d.ctrl, cfg, d.fb, panel.EPDOpts{
			Reset:      d.reset,
			Busy:       d.ctrl.BusyPin(),
			BusyInvert: d.hw.BusyInvert,
			Sleep:      d.hw.Sleep,
		})
	} else {
		d.sendCmds(0, cfg.NCmds)
		d.panel = panel.NewSPI(d.ctrl, cfg, d.fb)
	}
	return nil
}

// specialInit replays the out-of-band init of an RGB panel whose timing
// controller is configured over soft SPI or I2C before the vendor
// peripheral takes over.
func (d *Display) specialInit() error {
	cfg := d.cfg
	switch cfg.SpecInit {
	case descriptor.SpecialSPI:
		// No DC pin: the controller takes 9-bit frames.
		ctrl := spibus.New(spibus.Config{
			BusNr: 3,
			CS:    d.pinOut(cfg.SpecSPI.CS),
			CLK:   d.pinOut(cfg.SpecSPI.CLK),
			MOSI:  d.pinOut(cfg.SpecSPI.MOSI),
		})
		if r := d.pinOut(cfg.Reset); r != nil {
			d.reset = r
			r.Out(gpio.High)
			d.sleep(50 * time.Millisecond)
			d.resetPin(50, 200)
		}
		for _, line := range cfg.SpecInitLines {
			d.sendInitCmds(ctrl, line)
		}
		return ctrl.Err()
	case descriptor.SpecialI2C:
		if d.hw.I2C == nil {
			return fmt.Errorf("udisplay: descriptor wants an I2C special init but no bus was given")
		}
		for _, line := range cfg.SpecInitLines {
			if len(line) == 2 {
				if err := d.hw.I2C.Tx(uint16(cfg.SpecI2CAddr), line, nil); err != nil {
					return fmt.Errorf("udisplay: %v", err)
				}
			} else if len(line) >= 1 {
				d.sleep(time.Duration(line[0]) * time.Millisecond)
			}
		}
	}
	return nil
}

func (d *Display) backlightOn() {
	if b := d.pinOut(d.cfg.Backlight); b != nil {
		d.backlight = b
		b.Out(gpio.High)
	}
}

// DisplayOnff switches the panel and its backlight on or off.
func (d *Display) DisplayOnff(on bool) {
	if d.epd != nil {
		return
	}
	if d.panel != nil {
		d.panel.DisplayOnff(on)
	}
	if d.backlight != nil {
		if on {
			d.backlight.Out(gpio.High)
		} else {
			d.backlight.Out(gpio.Low)
		}
	}
}

// Dim sets the panel brightness, 0 to 255. Panels without a dim command
// fall back to switching the backlight pin.
func (d *Display) Dim(level byte) {
	cfg := d.cfg
	if cfg.EPMode != descriptor.EPNone || cfg.Interface == descriptor.I2C {
		return
	}
	if descriptor.HasCmd(cfg.DimOp) && d.ctrl != nil {
		d.ctrl.CSLow()
		d.ctrl.WriteCommand(cfg.DimOp)
		d.ctrl.WriteData8(level)
		d.ctrl.CSHigh()
	}
	if d.backlight != nil {
		if level > 0 {
			d.backlight.Out(gpio.High)
		} else {
			d.backlight.Out(gpio.Low)
		}
	}
}

// RotConvert maps a raw touch coordinate into the rotated panel frame,
// applying the descriptor's remap bounds when present.
func (d *Display) RotConvert(x, y int) (int, int) {
	cfg := d.cfg
	if cfg.RotMapXMin >= 0 {
		x = remap(x, cfg.RotMapXMin, cfg.RotMapXMax, 0, cfg.Width)
		y = remap(y, cfg.RotMapYMin, cfg.RotMapYMax, 0, cfg.Height)
		x = clamp(x, 0, cfg.Width)
		y = clamp(y, 0, cfg.Height)
	}
	switch d.rot {
	case 1:
		x, y = y, d.height-x
	case 2:
		x, y = d.width-x, d.height-y
	case 3:
		x, y = d.width-y, x
	}
	return x, y
}

func remap(v, inLo, inHi, outLo, outHi int) int {
	if inHi == inLo {
		return outLo
	}
	return (v-inLo)*(outHi-outLo)/(inHi-inLo) + outLo
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (d *Display) String() string {
	return fmt.Sprintf("udisplay.Display{%s, %dx%d}", d.cfg.Name, d.width, d.height)
}
