// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package aht20

import (
	"math"
	"testing"

	"periph.io/x/conn/v3/physic"
)

func TestStatus(t *testing.T) {
	for i := 0; i < 256; i++ {
		s := Status(i)
		if got, want := s.Ready(), i&0x80 == 0; got != want {
			t.Errorf("Status(%#02x).Ready()=%t expected %t", i, got, want)
		}
		if got, want := s.Calibrated(), i&0x08 != 0; got != want {
			t.Errorf("Status(%#02x).Calibrated()=%t expected %t", i, got, want)
		}
	}
}

func TestStatus_String(t *testing.T) {
	if s := Status(0x1c).String(); s != "0x1c{ready:true calibrated:true}" {
		t.Errorf("unexpected %q", s)
	}
	if s := Status(0x80).String(); s != "0x80{ready:false calibrated:false}" {
		t.Errorf("unexpected %q", s)
	}
}

func TestCommand_String(t *testing.T) {
	var tests = []struct {
		c    Command
		want string
	}{
		{CmdCheckStatus, "CheckStatus"},
		{CmdInitialize, "Initialize"},
		{CmdCalibrate, "Calibrate"},
		{CmdTriggerMeasurement, "TriggerMeasurement"},
		{CmdSoftReset, "SoftReset"},
		{Command(0x42), "Command(0x42)"},
	}
	for _, test := range tests {
		if got := test.c.String(); got != test.want {
			t.Errorf("Command(%#02x).String()=%q expected %q", byte(test.c), got, test.want)
		}
	}
}

func TestRawReading_Decode(t *testing.T) {
	var tests = []struct {
		raw         RawReading
		humidity    float64
		temperature float64
	}{
		// Captured at roughly 40%RH and 22.5°C.
		{RawReading{0x65, 0xb4, 0x25, 0xcd, 0x26}, 39.72797393798828, 22.517013549804688},
		{RawReading{0x75, 0x52, 0x05, 0x8e, 0x40}, 45.8282470703125, 19.44580078125},
		{RawReading{0x00, 0x00, 0x00, 0x00, 0x00}, 0, -50},
		{RawReading{0xff, 0xff, 0xff, 0xff, 0xff}, 99.99990463256836, 149.99980926513672},
		// The shared nibble only feeds the right field.
		{RawReading{0x00, 0x00, 0xf0, 0x00, 0x00}, 15.0 / fullScale * 100, -50},
		{RawReading{0x00, 0x00, 0x0f, 0x00, 0x00}, 0, float64(0xf0000)/fullScale*200 - 50},
	}
	for _, test := range tests {
		r := test.raw.Decode()
		if math.Abs(r.Humidity-test.humidity) > 1e-9 {
			t.Errorf("%#v humidity %v expected %v", test.raw, r.Humidity, test.humidity)
		}
		if math.Abs(r.Temperature-test.temperature) > 1e-9 {
			t.Errorf("%#v temperature %v expected %v", test.raw, r.Temperature, test.temperature)
		}
	}
}

func TestReading_Env(t *testing.T) {
	e := RawReading{0x75, 0x52, 0x05, 0x8e, 0x40}.Decode().Env()
	if expected := 19445800781*physic.NanoKelvin + physic.ZeroCelsius; e.Temperature != expected {
		t.Fatalf("temperature %s(%d) != %s(%d)", expected, expected, e.Temperature, e.Temperature)
	}
	if expected := 4582824 * physic.TenthMicroRH; e.Humidity != expected {
		t.Fatalf("humidity %s(%d) != %s(%d)", expected, expected, e.Humidity, e.Humidity)
	}
	if e.Pressure != 0 {
		t.Fatalf("pressure %s != 0", e.Pressure)
	}
}

func TestReading_String(t *testing.T) {
	r := Reading{Humidity: 39.7279, Temperature: 22.5154}
	if s := r.String(); s != "22.52°C 39.73%RH" {
		t.Errorf("unexpected %q", s)
	}
}
