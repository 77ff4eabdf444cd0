// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package descriptor parses the line-oriented display descriptor
// mini-language into a Config.
//
// A descriptor is a series of lines. A line starting with ':' opens a
// section; following lines without a ':' continue the current section. ';'
// starts a comment line and '#' terminates the whole descriptor. Numeric
// fields are comma separated, decimal or hexadecimal depending on the
// section, and parse permissively: garbage yields 0.
package descriptor

// Parse scans text into a Config. It never fails; malformed input
// degrades to zero values field by field, which keeps old descriptor
// files working.
func Parse(text string) *Config {
	p := &parser{cfg: newConfig()}
	for _, line := range splitLines(text) {
		if !p.line(line) {
			break
		}
	}
	p.finish()
	return p.cfg
}

// newConfig returns a Config with the documented pre-scan defaults.
func newConfig() *Config {
	c := &Config{
		ColMode:    16,
		SAMode:     16,
		WriteRAM:   unset,
		DimOp:      unset,
		DspOn:      unset,
		DspOff:     unset,
		InvOn:      unset,
		InvOff:     unset,
		MadCtl:     unset,
		Startline:  0xA1,
		LutPTime:   35,
		LutFTime:   350,
		Lut3Time:   10,
		FgCol:      1,
		BgCol:      0,
		SplashFont: -1,
		RotMapXMin: -1,
		Reset:      -1,
		Backlight:  -1,
		FlushLines: 40,
		RotT:       [4]byte{0, 1, 2, 3},
	}
	for i := 0; i < MaxLUTs; i++ {
		c.LutCmd[i] = unset
	}
	for i := 0; i < 4; i++ {
		c.Rot[i] = unset
	}
	return c
}

type parser struct {
	cfg     *Config
	section byte
	lutNum  int

	// cmds is the flat opcode buffer; the e-paper sub-table sections
	// write at recorded offsets, so appends are by position with a high
	// water mark instead of a plain slice append.
	cmds   [MaxCmds]byte
	cmdLen int

	touchTarget *[]string
}

// splitLines breaks the descriptor on newlines. Space also terminates a
// line, so a descriptor delivered as one space-joined string still parses.
func splitLines(text string) []string {
	var out []string
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' || text[i] == ' ' {
			out = append(out, text[start:i])
			start = i + 1
		}
	}
	return append(out, text[start:])
}

// line consumes one descriptor line. It returns false on the '#'
// terminator.
func (p *parser) line(raw string) bool {
	for len(raw) > 0 && (raw[0] == ' ' || raw[0] == '\t' || raw[0] == '\r') {
		raw = raw[1:]
	}
	for len(raw) > 0 && (raw[len(raw)-1] == '\r' || raw[len(raw)-1] == ' ') {
		raw = raw[:len(raw)-1]
	}
	if len(raw) == 0 {
		return true
	}
	switch raw[0] {
	case '#':
		return false
	case ';':
		return true
	case ':':
		raw = p.openSection(raw[1:])
		if len(raw) > 0 && raw[0] == ',' {
			raw = raw[1:]
		}
	default:
		if p.section == 'U' && p.touchTarget != nil {
			*p.touchTarget = append(*p.touchTarget, raw)
			return true
		}
	}
	if len(raw) == 0 || raw[0] == ':' {
		return true
	}
	p.sectionLine(raw)
	return true
}

// openSection handles the id part of a ':' line and returns the unconsumed
// remainder. The 'I', 'L' and 'l' ids carry extra fields of their own.
func (p *parser) openSection(rest string) string {
	if len(rest) == 0 {
		p.section = 0
		return ""
	}
	p.section = rest[0]
	rest = rest[1:]
	c := p.cfg
	switch p.section {
	case 'I':
		if len(rest) > 0 && rest[0] == 'C' {
			c.AllCmdMode = true
			rest = rest[1:]
		}
		if len(rest) > 0 && rest[0] == 'S' {
			// RGB panel with an out-of-band software SPI init:
			// clk, mosi, cs, reset. The pins are recorded here and the
			// bus is brought up later at Init.
			rest = rest[1:]
			if c.Interface == RGB {
				sc := &scanner{s: strip(rest, ',')}
				c.SpecSPI = SPIPins{
					BusNr: 4,
					CS:    -1,
					DC:    -1,
					MISO:  -1,
					CLK:   sc.val(),
					MOSI:  sc.val(),
				}
				c.SpecSPI.CS = sc.val()
				c.Reset = sc.val()
				c.SpecInit = SpecialSPI
				rest = ""
			}
		} else if len(rest) > 0 && rest[0] == 'I' {
			// RGB panel with an out-of-band I2C init: bus nr, address.
			rest = rest[1:]
			if c.Interface == RGB {
				sc := &scanner{s: strip(rest, ',')}
				c.SpecI2CBus = sc.val()
				c.SpecI2CAddr = uint8(sc.hex())
				c.SpecInit = SpecialI2C
				rest = ""
			}
		}
	case 'L':
		if len(rest) > 0 && rest[0] >= '1' && rest[0] <= '5' {
			p.lutNum = int(rest[0] - '0')
			rest = strip(rest[1:], ',')
			sc := &scanner{s: rest}
			i := p.lutNum - 1
			c.LutSiz[i] = sc.val()
			c.Lut[i] = make([]byte, 0, c.LutSiz[i])
			c.LutCmd[i] = sc.hexByte()
			rest = ""
		} else {
			p.lutNum = 0
			sc := &scanner{s: strip(rest, ',')}
			c.LutSizFull = sc.val()
			c.LutFull = make([]byte, 0, c.LutSizFull)
			c.LutCmd[0] = sc.hexByte()
			rest = ""
		}
	case 'l':
		sc := &scanner{s: strip(rest, ',')}
		c.LutSizPartial = sc.val()
		c.LutPartial = make([]byte, 0, c.LutSizPartial)
		c.LutCmd[0] = sc.hexByte()
		rest = ""
	case 'U':
		rest = p.touchSection(rest)
	}
	return rest
}

func strip(s string, c byte) string {
	if len(s) > 0 && s[0] == c {
		return s[1:]
	}
	return s
}

// sectionLine dispatches the data part of a line to the current section.
func (p *parser) sectionLine(rest string) {
	c := p.cfg
	sc := &scanner{s: rest}
	switch p.section {
	case 'H':
		p.header(sc)
	case 'S':
		c.SplashFont = sc.val()
		c.SplashSize = sc.val()
		c.FgCol = sc.val()
		c.BgCol = sc.val()
		c.SplashX = sc.val()
		c.SplashY = sc.val()
	case 'I':
		p.initLine(sc)
	case 'f':
		if c.EPOffsFull == 0 {
			c.EPOffsFull = c.NCmds
			c.EPFullCnt = 0
		}
		for {
			tok, ok := sc.next()
			if !ok {
				break
			}
			if !p.storeCmd(c.EPOffsFull+c.EPFullCnt, byte(parseHex(tok))) {
				break
			}
			c.EPFullCnt++
		}
	case 'p':
		if c.EPOffsPart == 0 {
			c.EPOffsPart = c.NCmds + c.EPFullCnt
			c.EPPartCnt = 0
		}
		for {
			tok, ok := sc.next()
			if !ok {
				break
			}
			if !p.storeCmd(c.EPOffsPart+c.EPPartCnt, byte(parseHex(tok))) {
				break
			}
			c.EPPartCnt++
		}
	case 'V':
		switch c.Interface {
		case RGB:
			c.RGBTiming.HSyncIdleLow = sc.val() == 0
			c.RGBTiming.HSyncFrontPorch = sc.val()
			c.RGBTiming.HSyncPulseWidth = sc.val()
			c.RGBTiming.HSyncBackPorch = sc.val()
			c.RGBTiming.VSyncIdleLow = sc.val() == 0
			c.RGBTiming.VSyncFrontPorch = sc.val()
			c.RGBTiming.VSyncPulseWidth = sc.val()
			c.RGBTiming.VSyncBackPorch = sc.val()
			c.RGBTiming.PClkActiveNeg = sc.val() != 0
		case DSI:
			if c.DSI.HFrontPorch == 0 {
				c.DSI.HFrontPorch = sc.val()
				c.DSI.VFrontPorch = sc.val()
				c.DSI.HBackPorch = sc.val()
				c.DSI.HSyncPulse = sc.val()
				c.DSI.VSyncPulse = sc.val()
				c.DSI.VBackPorch = sc.val()
			}
		}
	case 'o':
		c.DspOff = sc.hexByte()
	case 'O':
		c.DspOn = sc.hexByte()
	case 'R':
		c.MadCtl = sc.hexByte()
		c.Startline = sc.hexByte()
	case '0', '1', '2', '3':
		i := int(p.section - '0')
		if c.Interface != RGB {
			c.Rot[i] = sc.hexByte()
			c.XAddrOffs[i] = sc.hex()
			c.YAddrOffs[i] = sc.hex()
		}
		c.RotT[i] = sc.hexByte()
	case 'A':
		if c.Interface == I2C || c.BPP == 1 {
			c.SetAddrX = sc.hexByte()
			c.PageStart = sc.hexByte()
			c.PageEnd = sc.hexByte()
			c.SetAddrY = sc.hexByte()
			c.ColStart = sc.hexByte()
			c.ColEnd = sc.hexByte()
			c.WriteRAM = sc.hexByte()
		} else {
			c.SetAddrX = sc.hexByte()
			c.SetAddrY = sc.hexByte()
			c.WriteRAM = sc.hexByte()
			c.SAMode = sc.val()
		}
	case 'a':
		c.SetAddrX = sc.hexByte()
		c.SetAddrY = sc.hexByte()
		c.WriteRAM = sc.hexByte()
	case 'P':
		c.ColMode = sc.val()
	case 'i':
		c.InvOff = sc.hexByte()
		c.InvOn = sc.hexByte()
	case 'D':
		c.DimOp = sc.hexByte()
	case 'L':
		if p.lutNum == 0 {
			if c.LutFull == nil {
				break
			}
			for len(c.LutFull) < c.LutSizFull {
				tok, ok := sc.next()
				if !ok {
					break
				}
				c.LutFull = append(c.LutFull, byte(parseHex(tok)))
			}
		} else {
			i := p.lutNum - 1
			if c.Lut[i] == nil {
				break
			}
			for len(c.Lut[i]) < c.LutSiz[i] {
				tok, ok := sc.next()
				if !ok {
					break
				}
				c.Lut[i] = append(c.Lut[i], byte(parseHex(tok)))
			}
		}
	case 'l':
		if c.LutPartial == nil {
			break
		}
		for len(c.LutPartial) < c.LutSizPartial {
			tok, ok := sc.next()
			if !ok {
				break
			}
			c.LutPartial = append(c.LutPartial, byte(parseHex(tok)))
		}
	case 'T':
		c.LutFTime = sc.val()
		c.LutPTime = sc.val()
		c.Lut3Time = sc.val()
	case 'B':
		c.FlushLines = sc.val()
		c.DMAData = sc.val()
	case 'M':
		c.RotMapXMin = sc.val()
		c.RotMapXMax = sc.val()
		c.RotMapYMin = sc.val()
		c.RotMapYMax = sc.val()
	case 'b':
		c.BPMode = sc.val()
	}
}

// header parses the :H line: name, width, height, bpp, then the bus tag
// with its per-bus pin and clock fields.
func (p *parser) header(sc *scanner) {
	c := p.cfg
	c.Name, _ = sc.next()
	c.Width = sc.val()
	c.Height = sc.val()
	c.DispBPP = sc.val()
	c.BPP = c.DispBPP
	if c.BPP < 0 {
		c.BPP = -c.BPP
	}
	if c.BPP == 1 {
		c.ColType = ColorBW
	} else {
		c.ColType = ColorFull
	}
	tag, _ := sc.next()
	switch {
	case hasPrefix(tag, "I2C"):
		c.Interface = I2C
		c.I2CBusNr = 1
		if hasPrefix(tag, "I2C2") {
			c.I2CBusNr = 2
		}
		c.I2CAddr = uint8(sc.hex())
		c.I2CSCL = sc.val()
		c.I2CSDA = sc.val()
		c.Reset = sc.val()
		p.section = 0
	case hasPrefix(tag, "SPI"):
		c.Interface = SPI
		c.SPI.BusNr = sc.val()
		c.SPI.CS = sc.val()
		c.SPI.CLK = sc.val()
		c.SPI.MOSI = sc.val()
		c.SPI.DC = sc.val()
		c.Backlight = sc.val()
		c.Reset = sc.val()
		c.SPI.MISO = sc.val()
		c.SPI.SpeedMHz = sc.val()
		p.section = 0
	case hasPrefix(tag, "PAR"):
		if sc.val() == 8 {
			c.Interface = PAR8
		} else {
			c.Interface = PAR16
		}
		c.Reset = sc.val()
		c.Par.CS = sc.val()
		c.Par.RS = sc.val()
		c.Par.WR = sc.val()
		c.Par.RD = sc.val()
		c.Backlight = sc.val()
		for i := 0; i < 8; i++ {
			c.Par.DataLow[i] = sc.val()
		}
		if c.Interface == PAR16 {
			for i := 0; i < 8; i++ {
				c.Par.DataHigh[i] = sc.val()
			}
		}
		c.Par.SpeedMHz = sc.val()
		p.section = 0
	case hasPrefix(tag, "RGB"):
		c.Interface = RGB
		c.RGB.DE = sc.val()
		c.RGB.VSync = sc.val()
		c.RGB.HSync = sc.val()
		c.RGB.PClk = sc.val()
		c.Backlight = sc.val()
		for i := 0; i < 8; i++ {
			c.RGB.DataLow[i] = sc.val()
		}
		for i := 0; i < 8; i++ {
			c.RGB.DataHigh[i] = sc.val()
		}
		c.RGB.SpeedMHz = sc.val()
	case hasPrefix(tag, "DSI"):
		c.Interface = DSI
		c.DSI.Lanes = sc.val()
		c.DSI.TEPin = sc.val()
		c.DSI.BacklightPin = sc.val()
		c.DSI.ResetPin = sc.val()
		c.DSI.LDOChannel = sc.val()
		c.DSI.LDOVoltageMV = sc.val()
		c.DSI.PixelClockHz = sc.val()
		c.DSI.LaneSpeedMbps = sc.val()
		c.DSI.RGBOrder = sc.val()
		c.DSI.DataEndian = sc.val()
		p.section = 0
	}
}

// initLine handles one :I data line. RGB panels with a special init record
// the line for later replay; I2C panels take at most a command plus one
// data byte per line; everything else accumulates into the opcode stream.
func (p *parser) initLine(sc *scanner) {
	c := p.cfg
	if c.Interface == RGB && c.SpecInit != SpecialNone {
		var line []byte
		for {
			tok, ok := sc.next()
			if !ok {
				break
			}
			line = append(line, byte(parseHex(tok)))
		}
		if len(line) > 0 {
			c.SpecInitLines = append(c.SpecInitLines, line)
		}
		return
	}
	if c.Interface == I2C {
		p.appendCmd(sc.hexByte())
		if tok, ok := sc.next(); ok {
			p.appendCmd(byte(parseHex(tok)))
		}
		return
	}
	for {
		tok, ok := sc.next()
		if !ok {
			break
		}
		if !p.appendCmd(byte(parseHex(tok))) {
			break
		}
	}
}

func (p *parser) appendCmd(b byte) bool {
	if !p.storeCmd(p.cfg.NCmds, b) {
		return false
	}
	p.cfg.NCmds++
	return true
}

func (p *parser) storeCmd(pos int, b byte) bool {
	if pos >= MaxCmds {
		return false
	}
	p.cmds[pos] = b
	if pos+1 > p.cmdLen {
		p.cmdLen = pos + 1
	}
	return true
}

// touchSection parses a :UT* id line and selects the code block the
// following lines feed. The blocks are retained verbatim; the touch
// interpreter lives elsewhere.
func (p *parser) touchSection(rest string) string {
	c := p.cfg
	if len(rest) < 2 {
		p.touchTarget = nil
		return ""
	}
	if c.Touch == nil {
		c.Touch = &Touch{Reset: -1, IRQ: -1}
	}
	t := c.Touch
	kind, rest := rest[:2], rest[2:]
	switch kind {
	case "TI":
		rest = strip(rest, ',')
		sc := &scanner{s: rest}
		t.Name, _ = sc.next()
		if len(sc.s) > 0 {
			switch sc.s[0] {
			case 'I':
				t.I2CBus = int(sc.s[1] & 0xF)
				sc.s = sc.s[2:]
				sc.s = strip(sc.s, ',')
				t.I2CAddr = uint8(sc.hex())
				t.Reset = sc.val()
				t.IRQ = sc.val()
			case 'S':
				t.SPINr = int(sc.s[1] & 0xF)
				sc.s = sc.s[2:]
				sc.s = strip(sc.s, ',')
				t.SPICS = sc.val()
				t.Reset = sc.val()
				t.IRQ = sc.val()
			}
		}
		p.touchTarget = &t.InitCode
	case "TT":
		p.touchTarget = &t.TouchCode
	case "TX":
		p.touchTarget = &t.GetXCode
	case "TY":
		p.touchTarget = &t.GetYCode
	default:
		p.touchTarget = nil
	}
	return ""
}

func hasPrefix(s, pre string) bool {
	return len(s) >= len(pre) && s[:len(pre)] == pre
}

// finish freezes the opcode stream, records the LUT fill counts and
// derives the e-paper mode. The derivation rules apply in order, so a
// later rule overrides an earlier match.
func (p *parser) finish() {
	c := p.cfg
	c.Cmds = append([]byte(nil), p.cmds[:p.cmdLen]...)
	c.LutFSize = len(c.LutFull)
	c.LutPSize = len(c.LutPartial)
	for i := 0; i < MaxLUTs; i++ {
		c.LutCnt[i] = len(c.Lut[i])
	}
	if c.LutFSize > 0 && c.LutPSize > 0 {
		c.EPMode = EPDualLUT
	}
	if c.LutCnt[0] > 0 && c.LutCnt[1] == c.LutCnt[2] &&
		c.LutCnt[1] == c.LutCnt[3] && c.LutCnt[1] == c.LutCnt[4] {
		c.EPMode = EPFiveLUT
	}
	if (c.EPOffsFull > 0 || c.EPOffsPart > 0) && c.LutFSize == 0 && c.LutPSize == 0 {
		c.EPMode = EPCmdOnly
	}
}
