// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package udisplay

import (
	"strconv"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// xfer is one recorded bus transfer, tagged with the DC level at transfer
// time.
type xfer struct {
	Cmd bool
	W   []byte
}

// busLog records every transfer of the SPI controller.
type busLog struct {
	dc  *gpiotest.Pin
	Ops []xfer
}

func (b *busLog) String() string { return "buslog" }

func (b *busLog) Duplex() conn.Duplex { return conn.Half }

func (b *busLog) Tx(w, r []byte) error {
	b.Ops = append(b.Ops, xfer{Cmd: b.dc.L == gpio.Low, W: append([]byte(nil), w...)})
	return nil
}

func cmdOp(w ...byte) xfer { return xfer{Cmd: true, W: w} }

func dataOp(w ...byte) xfer { return xfer{Cmd: false, W: w} }

// fakePort hands the log out as the hardware SPI connection.
type fakePort struct {
	log *busLog
}

func (f *fakePort) String() string { return "fakeport" }

func (f *fakePort) Connect(freq physic.Frequency, mode spi.Mode, bits int) (spi.Conn, error) {
	return &fakeConn{f.log}, nil
}

type fakeConn struct {
	*busLog
}

func (c *fakeConn) TxPackets(p []spi.Packet) error {
	for i := range p {
		if err := c.Tx(p[i].W, p[i].R); err != nil {
			return err
		}
	}
	return nil
}

// testRig wires a Hardware to recording fakes. Pin numbers resolve to
// gpiotest pins created on demand.
type testRig struct {
	log    *busLog
	pins   map[string]*gpiotest.Pin
	sleeps []time.Duration
}

func newTestRig() *testRig {
	r := &testRig{pins: map[string]*gpiotest.Pin{}}
	r.log = &busLog{dc: r.pin(9)}
	return r
}

func (r *testRig) pin(n int) *gpiotest.Pin {
	name := strconv.Itoa(n)
	if p, ok := r.pins[name]; ok {
		return p
	}
	p := &gpiotest.Pin{N: name}
	r.pins[name] = p
	return p
}

func (r *testRig) sleep(t time.Duration) {
	r.sleeps = append(r.sleeps, t)
}

func (r *testRig) hardware() Hardware {
	return Hardware{
		Port: &fakePort{log: r.log},
		Pins: func(name string) gpio.PinIO {
			if p, ok := r.pins[name]; ok {
				return p
			}
			p := &gpiotest.Pin{N: name}
			r.pins[name] = p
			return p
		},
		Sleep: r.sleep,
	}
}

func (r *testRig) reset() {
	r.log.Ops = nil
	r.sleeps = nil
}
