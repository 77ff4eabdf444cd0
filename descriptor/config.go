// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package descriptor

// Bus selects the physical interface a descriptor binds the panel to.
type Bus uint8

// Supported buses.
const (
	NoBus Bus = iota
	SPI
	I2C
	PAR8
	PAR16
	RGB
	DSI
)

// Set sets the Bus to a value represented by the string s. Set implements
// the flag.Value interface.
func (b *Bus) Set(s string) error {
	switch s {
	case "SPI":
		*b = SPI
	case "I2C":
		*b = I2C
	case "PAR8":
		*b = PAR8
	case "PAR16":
		*b = PAR16
	case "RGB":
		*b = RGB
	case "DSI":
		*b = DSI
	default:
		return errUnknownBus(s)
	}
	return nil
}

func (b Bus) String() string {
	switch b {
	case SPI:
		return "SPI"
	case I2C:
		return "I2C"
	case PAR8:
		return "PAR8"
	case PAR16:
		return "PAR16"
	case RGB:
		return "RGB"
	case DSI:
		return "DSI"
	}
	return "none"
}

type errUnknownBus string

func (e errUnknownBus) Error() string {
	return "descriptor: unknown bus " + string(e)
}

// ColorType distinguishes 1-bit monochrome panels from color panels.
type ColorType uint8

// Valid ColorType.
const (
	ColorBW ColorType = iota
	ColorFull
)

// EPMode classifies the e-paper update strategy a descriptor selects. It is
// derived from which LUT and command-table fields were populated during
// parsing, never set directly.
type EPMode uint8

// Valid EPMode.
const (
	// EPNone is a non e-paper panel.
	EPNone EPMode = iota
	// EPDualLUT drives full and partial updates with two waveform tables.
	EPDualLUT
	// EPFiveLUT drives updates with five independent waveform tables.
	EPFiveLUT
	// EPCmdOnly has no LUTs; updates replay recorded command sub-tables.
	EPCmdOnly
)

const (
	// MaxLUTs is the number of independent waveform tables a controller can
	// hold. The bound comes from the five-LUT panel protocol, not from an
	// implementation limit.
	MaxLUTs = 5

	// MaxCmds caps the opcode stream, matching the fixed command buffer the
	// parser fills. Stream writes beyond this are dropped.
	MaxCmds = 1024

	// unset marks command bytes a descriptor never provided.
	unset = 0xFF
)

// SpecialInit identifies the bus used for the out-of-band init sequence of
// RGB panels whose timing controller is configured over SPI or I2C.
type SpecialInit uint8

// Valid SpecialInit.
const (
	SpecialNone SpecialInit = iota
	SpecialSPI
	SpecialI2C
)

// SPIPins holds the pin assignment and clock of an SPI-attached panel.
type SPIPins struct {
	BusNr int
	CS    int
	CLK   int
	MOSI  int
	DC    int
	MISO  int
	// SpeedMHz is the SPI clock in MHz.
	SpeedMHz int
}

// ParPins holds the control and data pin assignment of an I80 parallel bus.
type ParPins struct {
	CS int
	RS int
	WR int
	RD int
	// DataLow carries D0..D7, DataHigh D8..D15 for 16-bit buses.
	DataLow  [8]int
	DataHigh [8]int
	// SpeedMHz is the bus clock in MHz.
	SpeedMHz int
}

// RGBTimings is the sync timing block of an RGB timing-controller panel.
type RGBTimings struct {
	HSyncIdleLow    bool
	HSyncFrontPorch int
	HSyncPulseWidth int
	HSyncBackPorch  int
	VSyncIdleLow    bool
	VSyncFrontPorch int
	VSyncPulseWidth int
	VSyncBackPorch  int
	PClkActiveNeg   bool
}

// RGBPins holds the sync and data pin assignment of an RGB panel.
type RGBPins struct {
	DE    int
	VSync int
	HSync int
	PClk  int
	// DataLow carries the low byte, DataHigh the high byte of RGB565.
	DataLow  [8]int
	DataHigh [8]int
	// SpeedMHz is the pixel clock in MHz.
	SpeedMHz int
}

// DSIConfig holds the MIPI-DSI link parameters of a DSI panel.
type DSIConfig struct {
	Lanes         int
	TEPin         int
	BacklightPin  int
	ResetPin      int
	LDOChannel    int
	LDOVoltageMV  int
	PixelClockHz  int
	LaneSpeedMbps int
	RGBOrder      int
	DataEndian    int

	HFrontPorch int
	VFrontPorch int
	HBackPorch  int
	HSyncPulse  int
	VSyncPulse  int
	VBackPorch  int
}

// Touch retains the :U touch sub-language blocks verbatim. The touch
// interpreter lives outside this driver; the parser only carves the blocks
// out of the descriptor.
type Touch struct {
	Name    string
	I2CAddr uint8
	I2CBus  int
	SPINr   int
	SPICS   int
	Reset   int
	IRQ     int

	InitCode  []string
	TouchCode []string
	GetXCode  []string
	GetYCode  []string
}

// Config is the parsed, immutable-after-parse state of one device
// descriptor: logical geometry, bus selection, command bytes, rotation
// tables, the opcode stream and any e-paper waveform tables.
type Config struct {
	Name string

	// Logical geometry before rotation.
	Width   int // gxs
	Height  int // gys
	BPP     int
	DispBPP int // as declared, may be negative
	ColType ColorType

	Interface Bus

	// Reset is the reset pin, -1 when absent.
	Reset int
	// Backlight is the backlight pin, -1 when absent.
	Backlight int

	SPI SPIPins
	Par ParPins
	RGB RGBPins
	DSI DSIConfig

	RGBTiming RGBTimings

	I2CAddr  uint8
	I2CBusNr int
	I2CSCL   int
	I2CSDA   int

	// Address window command bytes (saw_1/saw_2/saw_3) and address mode.
	SetAddrX byte
	SetAddrY byte
	WriteRAM byte
	SAMode   int

	// I2C/1-bpp page addressing parameters from the 7-field :A form.
	PageStart byte
	PageEnd   byte
	ColStart  byte
	ColEnd    byte

	// Control command bytes; 0xFF means "not provided".
	DspOn     byte
	DspOff    byte
	InvOn     byte
	InvOff    byte
	DimOp     byte
	MadCtl    byte
	Startline byte

	// ColMode is the pixel packing on the wire: 16 (RGB565) or 18 (RGB666).
	ColMode int
	// BPMode selects the 1-bpp framebuffer bit packing.
	BPMode int
	// AllCmdMode sends what would normally be data bytes as commands.
	AllCmdMode bool

	// Per-rotation memory-access values and address offsets.
	Rot       [4]byte
	XAddrOffs [4]int
	YAddrOffs [4]int
	RotT      [4]byte

	// Rotation-remap bounds, -1 when unset.
	RotMapXMin int
	RotMapXMax int
	RotMapYMin int
	RotMapYMax int

	// Splash parameters.
	SplashFont int
	SplashSize int
	FgCol      int
	BgCol      int
	SplashX    int
	SplashY    int

	// Cmds is the flat opcode stream. The first NCmds bytes are the init
	// table; the e-paper full/partial sub-tables follow at EPOffsFull and
	// EPOffsPart.
	Cmds  []byte
	NCmds int

	EPOffsFull int
	EPFullCnt  int
	EPOffsPart int
	EPPartCnt  int

	// Dual-LUT e-paper waveforms.
	LutFull       []byte
	LutPartial    []byte
	LutSizFull    int
	LutSizPartial int
	LutFSize      int
	LutPSize      int

	// Five-LUT e-paper waveforms.
	Lut    [MaxLUTs][]byte
	LutSiz [MaxLUTs]int
	LutCnt [MaxLUTs]int
	LutCmd [MaxLUTs]byte

	// Update settle times, in 10 ms units.
	LutFTime int
	LutPTime int
	Lut3Time int

	EPMode EPMode

	// LVGL/DMA tuning from :B.
	FlushLines int
	DMAData    int

	// Out-of-band init for RGB panels configured over SPI or I2C.
	SpecInit      SpecialInit
	SpecSPI       SPIPins
	SpecI2CBus    int
	SpecI2CAddr   uint8
	SpecInitLines [][]byte

	Touch *Touch
}

// HasCmd reports whether a descriptor provided the command byte c.
func HasCmd(c byte) bool {
	return c != unset
}

// Size returns the framebuffer size in bytes for the configured geometry,
// or 0 when the panel streams pixels directly.
func (c *Config) Size() int {
	if c.EPMode == EPNone && c.BPP >= 16 {
		return 0
	}
	return c.Width * c.Height * c.BPP / 8
}

func (c *Config) String() string {
	return "descriptor.Config{" + c.Name + ", " + c.Interface.String() + "}"
}
