// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"time"

	"github.com/GermanBionicSystems/envsense/aht20"
	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"github.com/spf13/cobra"
)

func newReadCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "read",
		Short: "Print one temperature and humidity reading",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withSensor(func(d *aht20.Initialized) error {
				r, err := d.Measure()
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), r)
				return err
			})
		},
	}
}

func newStatusCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the raw status byte without calibrating the sensor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dev, closer, err := g.open()
			if err != nil {
				return err
			}
			defer closer()
			s, err := dev.CheckStatus()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "status %s\n", s)
			return err
		},
	}
}

func newResetCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Soft reset the sensor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withSensor(func(d *aht20.Initialized) error {
				if err := d.SoftReset(); err != nil {
					return err
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "reset done")
				return err
			})
		},
	}
}

func newWatchCmd(g *globalFlags) *cobra.Command {
	var (
		interval time.Duration
		count    int
		useColor bool
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print readings repeatedly",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if interval < 0 || count < 0 {
				return errors.New("--interval and --count must not be negative")
			}
			w := cmd.OutOrStdout()
			if useColor {
				if f, ok := w.(*os.File); ok {
					w = colorable.NewColorable(f)
				}
			}
			return g.withSensor(func(d *aht20.Initialized) error {
				for i := 0; count == 0 || i < count; i++ {
					if i != 0 {
						sleep(interval)
					}
					r, err := d.Measure()
					if err != nil {
						return err
					}
					if err := printReading(w, time.Now(), r, useColor); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "delay between readings")
	cmd.Flags().IntVar(&count, "count", 0, "number of readings, 0 runs until interrupted")
	cmd.Flags().BoolVar(&useColor, "color", false, "prefix each reading with a block colored by temperature")
	return cmd
}

func printReading(w io.Writer, t time.Time, r aht20.Reading, useColor bool) error {
	prefix := ""
	if useColor {
		prefix = ansi256.Default.Block(heatColor(r.Temperature)) + "\033[0m "
	}
	_, err := fmt.Fprintf(w, "%s%s %s\n", prefix, t.Format(time.TimeOnly), r)
	return err
}

const (
	coldC = 0.0
	hotC  = 40.0
)

// heatColor maps a temperature to a blue (cold) to red (hot) gradient.
func heatColor(c float64) color.NRGBA {
	f := (c - coldC) / (hotC - coldC)
	if f < 0 {
		f = 0
	} else if f > 1 {
		f = 1
	}
	return color.NRGBA{R: uint8(255 * f), G: 64, B: uint8(255 * (1 - f)), A: 255}
}
