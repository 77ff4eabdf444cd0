// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package i2cbus writes display commands and framebuffer data over I2C
// using the SSD13xx register framing: a control byte of 0x00 prefixes
// command bytes, 0x40 prefixes display data.
package i2cbus

import (
	"periph.io/x/conn/v3/i2c"
)

const (
	ctrlCmd  = 0x00 // control byte for a stream of command bytes
	ctrlData = 0x40 // control byte for a stream of data bytes

	// wireMax is the largest data payload per transaction, the classic
	// Wire library transfer limit the descriptors were written against.
	wireMax = 32
)

// Dev frames command and data writes to one display controller address.
type Dev struct {
	c i2c.Dev
}

// New returns a Dev talking to addr on bus.
func New(bus i2c.Bus, addr uint16) *Dev {
	return &Dev{c: i2c.Dev{Bus: bus, Addr: addr}}
}

// Command writes a single command byte.
func (d *Dev) Command(cmd byte) error {
	return d.c.Tx([]byte{ctrlCmd, cmd}, nil)
}

// Commands writes a stream of command bytes in one transaction.
func (d *Dev) Commands(cmds []byte) error {
	return d.c.Tx(append([]byte{ctrlCmd}, cmds...), nil)
}

// Data writes display data, chunked to the wire transfer limit.
func (d *Dev) Data(data []byte) error {
	buf := make([]byte, 0, wireMax+1)
	for len(data) > 0 {
		n := len(data)
		if n > wireMax {
			n = wireMax
		}
		buf = append(buf[:0], ctrlData)
		buf = append(buf, data[:n]...)
		if err := d.c.Tx(buf, nil); err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}
