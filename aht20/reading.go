// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package aht20

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
)

// Command is an AHT20 opcode, datasheet section 5.3 table 9.
type Command byte

const (
	CmdCheckStatus        Command = 0x71
	CmdInitialize         Command = 0xBE
	CmdCalibrate          Command = 0xE1
	CmdTriggerMeasurement Command = 0xAC
	CmdSoftReset          Command = 0xBA
)

func (c Command) String() string {
	switch c {
	case CmdCheckStatus:
		return "CheckStatus"
	case CmdInitialize:
		return "Initialize"
	case CmdCalibrate:
		return "Calibrate"
	case CmdTriggerMeasurement:
		return "TriggerMeasurement"
	case CmdSoftReset:
		return "SoftReset"
	}
	return fmt.Sprintf("Command(0x%02x)", byte(c))
}

const (
	bitBusy       byte = 1 << 7
	bitCalibrated byte = 1 << 3
)

// Status is the status byte returned by CmdCheckStatus and repeated at the
// start of every measurement frame.
type Status byte

// Ready reports whether the busy bit is clear, i.e. a triggered measurement
// can be read.
func (s Status) Ready() bool {
	return byte(s)&bitBusy == 0
}

// Calibrated reports whether the sensor finished its calibration. If not,
// CmdInitialize must be sent.
func (s Status) Calibrated() bool {
	return byte(s)&bitCalibrated != 0
}

func (s Status) String() string {
	return fmt.Sprintf("0x%02x{ready:%t calibrated:%t}", byte(s), s.Ready(), s.Calibrated())
}

// RawReading is the 5 byte payload of a measurement frame: 20 bits of
// humidity followed by 20 bits of temperature. The middle byte is shared.
type RawReading [5]byte

// fullScale is 2^20, the range of both 20 bit fields.
const fullScale = 1048576.0

// Decode converts the packed fields with the transfer functions of datasheet
// section 6.
func (r RawReading) Decode() Reading {
	hRaw := uint32(r[0])<<12 | uint32(r[1])<<4 | uint32(r[2])>>4
	tRaw := (uint32(r[2])&0x0F)<<16 | uint32(r[3])<<8 | uint32(r[4])
	return Reading{
		Humidity:    float64(hRaw) / fullScale * 100.0,
		Temperature: float64(tRaw)/fullScale*200.0 - 50.0,
	}
}

// Reading is a decoded measurement.
type Reading struct {
	// Humidity in %RH, nominally 0 to 100.
	Humidity float64
	// Temperature in °C, nominally -50 to 150.
	Temperature float64
}

// Env returns r in periph units. Pressure is left at 0.
func (r Reading) Env() physic.Env {
	return physic.Env{
		Temperature: physic.Temperature(r.Temperature*float64(physic.Kelvin)) + physic.ZeroCelsius,
		Humidity:    physic.RelativeHumidity(r.Humidity * float64(physic.PercentRH)),
	}
}

func (r Reading) String() string {
	return fmt.Sprintf("%.2f°C %.2f%%RH", r.Temperature, r.Humidity)
}
