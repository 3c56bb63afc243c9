// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/GermanBionicSystems/envsense/aht20"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/golang/glog"
	"github.com/spf13/cobra"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

func newPlotCmd(g *globalFlags) *cobra.Command {
	var (
		samples  int
		interval time.Duration
		out      string
		fontPath string
		fontSize float64
		width    int
		height   int
	)
	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Collect readings and draw them to a PNG chart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if samples < 2 {
				return errors.New("--samples must be at least 2")
			}
			if width < 4*chartMargin || height < 4*chartMargin {
				return fmt.Errorf("chart must be at least %dx%d", 4*chartMargin, 4*chartMargin)
			}
			face, err := loadFace(fontPath, fontSize)
			if err != nil {
				return err
			}
			var rs []aht20.Reading
			err = g.withSensor(func(d *aht20.Initialized) error {
				for i := 0; i < samples; i++ {
					if i != 0 {
						sleep(interval)
					}
					r, err := d.Measure()
					if err != nil {
						return err
					}
					glog.V(1).Infof("sample %d: %s", i, r)
					rs = append(rs, r)
				}
				return nil
			})
			if err != nil {
				return err
			}
			if err := renderChart(rs, width, height, face).SavePNG(out); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %d samples to %s\n", len(rs), out)
			return err
		},
	}
	cmd.Flags().IntVar(&samples, "samples", 60, "number of readings to collect")
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "delay between readings")
	cmd.Flags().StringVar(&out, "out", "aht20.png", "PNG file to write")
	cmd.Flags().StringVar(&fontPath, "font", "", "TrueType font for the labels, default is a built-in bitmap font")
	cmd.Flags().Float64Var(&fontSize, "font-size", 12, "label size in points when --font is set")
	cmd.Flags().IntVar(&width, "width", 640, "chart width in pixels")
	cmd.Flags().IntVar(&height, "height", 320, "chart height in pixels")
	return cmd
}

func loadFace(path string, size float64) (font.Face, error) {
	if path == "" {
		return basicfont.Face7x13, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := truetype.Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return truetype.NewFace(f, &truetype.Options{Size: size}), nil
}

const chartMargin = 40

// renderChart draws temperature (red, left scale) and humidity (blue, right
// scale) against the sample index.
func renderChart(rs []aht20.Reading, width, height int, face font.Face) *gg.Context {
	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetFontFace(face)

	m := float64(chartMargin)
	w, h := float64(width), float64(height)
	left, right, top, bottom := m, w-m, m, h-m

	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(1)
	dc.DrawLine(left, top, left, bottom)
	dc.DrawLine(left, bottom, right, bottom)
	dc.DrawLine(right, top, right, bottom)
	dc.Stroke()

	temps := make([]float64, len(rs))
	hums := make([]float64, len(rs))
	for i, r := range rs {
		temps[i] = r.Temperature
		hums[i] = r.Humidity
	}
	tLo, tHi := span(temps)
	hLo, hHi := span(hums)

	drawSeries(dc, temps, tLo, tHi, left, right, top, bottom)
	dc.SetRGB(0.8, 0.1, 0.1)
	dc.Stroke()
	drawSeries(dc, hums, hLo, hHi, left, right, top, bottom)
	dc.SetRGB(0.1, 0.2, 0.8)
	dc.Stroke()

	dc.SetRGB(0.8, 0.1, 0.1)
	dc.DrawStringAnchored(fmt.Sprintf("%.1f°C", tHi), left-2, top, 1, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("%.1f°C", tLo), left-2, bottom, 1, 0.5)
	dc.SetRGB(0.1, 0.2, 0.8)
	dc.DrawStringAnchored(fmt.Sprintf("%.0f%%", hHi), right+2, top, 0, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("%.0f%%", hLo), right+2, bottom, 0, 0.5)
	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored(fmt.Sprintf("AHT20, %d samples", len(rs)), w/2, m/2, 0.5, 0.5)
	return dc
}

// span returns the range of vs, widened so that a flat series is centered.
func span(vs []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range vs {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if len(vs) == 0 {
		return 0, 1
	}
	if hi-lo < 1 {
		mid := (hi + lo) / 2
		lo, hi = mid-0.5, mid+0.5
	}
	return lo, hi
}

func drawSeries(dc *gg.Context, vs []float64, lo, hi, left, right, top, bottom float64) {
	if len(vs) < 2 {
		return
	}
	step := (right - left) / float64(len(vs)-1)
	for i, v := range vs {
		x := left + float64(i)*step
		y := bottom - (v-lo)/(hi-lo)*(bottom-top)
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
}
