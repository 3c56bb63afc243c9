// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package envsense holds the AHT20 humidity and temperature sensor driver
// (package aht20), the CRC helpers it shares (package common) and a command
// line tool to read the sensor from a host (cmd/aht20).
package envsense
