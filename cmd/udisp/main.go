// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// udisp drives a descriptor defined panel with a test pattern, or
// previews the pattern in the terminal when no bus is bound.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"log"
	"os"

	"gopkg.in/yaml.v3"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/GermanBionicSystems/udisplay"
	"github.com/GermanBionicSystems/udisplay/termview"
)

var (
	configFile = flag.String("config", "udisp.yaml", "configuration `filename`")
	preview    = flag.Bool("preview", false, "render to the terminal instead of the panel")
	verbose    = flag.Bool("v", false, "log driver traffic")
)

// Config binds a descriptor file to host buses.
type Config struct {
	// Descriptor is the path of the panel descriptor file.
	Descriptor string `yaml:"descriptor"`
	// SPI is the spireg port name, e.g. "SPI0.0". Empty leaves SPI
	// unbound.
	SPI string `yaml:"spi"`
	// I2C is the i2creg bus name. Empty leaves I2C unbound.
	I2C string `yaml:"i2c"`
	// Rotation is the initial rotation, 0 to 3.
	Rotation int `yaml:"rotation"`
	// Pattern selects the test pattern: "bars", "rings" or "grid".
	Pattern string `yaml:"pattern"`

	SwapColor bool `yaml:"swap_color"`
	InvertBW  bool `yaml:"invert_bw"`
}

func loadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{Pattern: "grid"}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if cfg.Descriptor == "" {
		return nil, errors.New("config names no descriptor file")
	}
	return cfg, nil
}

func run() error {
	cfg, err := loadConfig(*configFile)
	if err != nil {
		return err
	}
	desc, err := os.ReadFile(cfg.Descriptor)
	if err != nil {
		return err
	}
	d := udisplay.New(string(desc))

	if *preview || (cfg.SPI == "" && cfg.I2C == "") {
		w, h := d.Width(), d.Height()
		if cfg.Rotation&1 == 1 {
			w, h = h, w
		}
		tv := termview.New(&termview.Opts{W: w, H: h})
		if err := tv.Draw(tv.Bounds(), renderPattern(cfg.Pattern, w, h), image.Point{}); err != nil {
			return err
		}
		return tv.Halt()
	}

	if _, err := host.Init(); err != nil {
		return err
	}
	hw := udisplay.Hardware{
		SwapColor: cfg.SwapColor,
		InvertBW:  cfg.InvertBW,
	}
	if *verbose {
		hw.Log = udisplay.StdLog
	}
	if cfg.SPI != "" {
		port, err := spireg.Open(cfg.SPI)
		if err != nil {
			return err
		}
		defer port.Close()
		hw.Port = port
	}
	if cfg.I2C != "" {
		bus, err := i2creg.Open(cfg.I2C)
		if err != nil {
			return err
		}
		defer bus.Close()
		hw.I2C = bus
	}

	if err := d.Init(hw); err != nil {
		return err
	}
	d.DisplayInit(udisplay.InitNormal, cfg.Rotation)
	if err := d.Draw(d.Bounds(), renderPattern(cfg.Pattern, d.Width(), d.Height()), image.Point{}); err != nil {
		return err
	}
	return d.Err()
}

func main() {
	flag.Parse()
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
