// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package aht20 controls an AHT20 humidity and temperature sensor over I²C.
//
// The sensor has a typical accuracy of ±2% RH and ±0.3°C. A handle goes
// through two stages. New returns a *Dev which can only query the status
// byte and calibrate the sensor. Dev.Initialize waits for calibration and
// hands the bus over to an *Initialized, which is the only type that can
// measure. *Initialized implements physic.SenseEnv.
//
// Corrupted measurement frames (bad CRC8, or a ready flag contradicted by
// the CRC protected status byte) are retried by Measure. Bus errors are
// returned as *BusError and never retried. With the default options retries
// are unbounded; set Opts.MaxAttempts to cap them.
//
// # Datasheet
//
// https://cdn-learn.adafruit.com/assets/assets/000/091/676/original/AHT20-datasheet-2020-4-16.pdf
package aht20
