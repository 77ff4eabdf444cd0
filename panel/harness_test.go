// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package panel

import (
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"

	"github.com/GermanBionicSystems/udisplay/descriptor"
	"github.com/GermanBionicSystems/udisplay/spibus"
)

// xfer is one bus transfer tagged with its command/data framing.
type xfer struct {
	Cmd bool
	W   []byte
}

// busLog records SPI transfers together with the DC pin state at transfer
// time.
type busLog struct {
	dc  *gpiotest.Pin
	Ops []xfer
}

func (b *busLog) String() string { return "buslog" }

func (b *busLog) Duplex() conn.Duplex { return conn.Half }

func (b *busLog) Tx(w, r []byte) error {
	b.Ops = append(b.Ops, xfer{
		Cmd: b.dc.L == gpio.Low,
		W:   append([]byte(nil), w...),
	})
	return nil
}

// cmdOp and dataOp build expected transfer lists.
func cmdOp(w ...byte) xfer  { return xfer{Cmd: true, W: w} }
func dataOp(w ...byte) xfer { return xfer{W: w} }

func newSPIHarness() (*spibus.Controller, *busLog) {
	dc := &gpiotest.Pin{}
	l := &busLog{dc: dc}
	c := spibus.New(spibus.Config{
		Conn: l,
		CS:   &gpiotest.Pin{},
		DC:   dc,
	})
	return c, l
}

func mustParse(desc string) *descriptor.Config {
	return descriptor.Parse(desc)
}

// countingSleep records requested sleep durations without waiting.
type countingSleep struct {
	slept []time.Duration
}

func (s *countingSleep) sleep(d time.Duration) {
	s.slept = append(s.slept, d)
}
