// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/GermanBionicSystems/envsense/aht20"
	"github.com/golang/glog"
	"github.com/spf13/cobra"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// openBus opens the named I²C bus. Tests replace it with a playback bus.
var openBus = func(name string) (i2c.BusCloser, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	return i2creg.Open(name)
}

// sleep is the timing source handed to the driver and used between samples.
var sleep = time.Sleep

// addrFlag lets an i2c.Addr be used as a pflag.Value.
type addrFlag struct {
	i2c.Addr
}

func (a *addrFlag) Type() string {
	return "addr"
}

type globalFlags struct {
	bus         string
	addr        addrFlag
	maxAttempts int
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{addr: addrFlag{aht20.DefaultAddress}}
	root := &cobra.Command{
		Use:   "aht20",
		Short: "Read an AHT20 humidity and temperature sensor",
		Long: `aht20 talks to an AHT20 sensor over an I²C bus of the host.

The sensor is calibrated on every run before it is read. Measurements with a
bad CRC are read again transparently; use --max-attempts to give up instead
of retrying forever on a broken bus.

Verbose driver logs are enabled with -v=2 -logtostderr.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&g.bus, "bus", "", "I²C bus name or number, empty for the first bus")
	root.PersistentFlags().Var(&g.addr, "addr", "I²C address of the sensor")
	root.PersistentFlags().IntVar(&g.maxAttempts, "max-attempts", 0, "give up after this many retries, 0 retries forever")
	root.PersistentFlags().AddGoFlagSet(flag.CommandLine)

	root.AddCommand(
		newReadCmd(g),
		newStatusCmd(g),
		newResetCmd(g),
		newWatchCmd(g),
		newPlotCmd(g),
	)
	return root
}

func (g *globalFlags) opts() *aht20.Opts {
	return &aht20.Opts{
		Sleep:       sleep,
		MaxAttempts: g.maxAttempts,
		OnError:     func(err error) { glog.Warning(err) },
	}
}

// open returns the uninitialized sensor and a func releasing the bus.
func (g *globalFlags) open() (*aht20.Dev, func(), error) {
	b, err := openBus(g.bus)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open I²C bus %q: %w", g.bus, err)
	}
	glog.V(1).Infof("opened %s, sensor at %s", b, g.addr.Addr)
	closer := func() {
		if err := b.Close(); err != nil {
			glog.Warningf("closing %s: %v", b, err)
		}
	}
	return aht20.New(b, g.addr.Addr, g.opts()), closer, nil
}

// withSensor opens and initializes the sensor, then calls fn.
func (g *globalFlags) withSensor(fn func(d *aht20.Initialized) error) error {
	dev, closer, err := g.open()
	if err != nil {
		return err
	}
	defer closer()
	d, err := dev.Initialize()
	if err != nil {
		return fmt.Errorf("failed to initialize AHT20: %w", err)
	}
	defer d.Halt()
	return fn(d)
}
