// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package aht20

import (
	"errors"
	"fmt"
)

// ErrReleased is returned by a handle whose bus was handed over, either to an
// Initialized handle by Dev.Initialize or back to the caller by Release.
var ErrReleased = errors.New("aht20: bus was released")

// BusError wraps a failed I²C transaction. It is never retried by this
// package.
type BusError struct {
	// Op names the transaction that failed, e.g. "check status".
	Op  string
	Err error
}

func (e *BusError) Error() string {
	return "aht20: " + e.Op + ": " + e.Err.Error()
}

func (e *BusError) Unwrap() error {
	return e.Err
}

// InvalidChecksumError is returned when the CRC8 received with a measurement
// does not match the status and data bytes. Measure retries it.
type InvalidChecksumError struct {
	Got  byte
	Want byte
}

func (e *InvalidChecksumError) Error() string {
	return fmt.Sprintf("aht20: data is corrupt, crc 0x%02x != 0x%02x", e.Got, e.Want)
}

// UnexpectedReadyError is returned when the status polled before reading
// said ready but the CRC protected status inside the measurement says busy.
// Measure retries it.
type UnexpectedReadyError struct {
	Status Status
}

func (e *UnexpectedReadyError) Error() string {
	return fmt.Sprintf("aht20: sensor reported ready, then busy in checked status %s", e.Status)
}

// RetriesExhaustedError is returned once Opts.MaxAttempts is reached. It is
// never returned with the default options.
type RetriesExhaustedError struct {
	Op       string
	Attempts int
	// Err is the last recoverable error seen, if any.
	Err error
}

func (e *RetriesExhaustedError) Error() string {
	s := fmt.Sprintf("aht20: %s: gave up after %d attempts", e.Op, e.Attempts)
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *RetriesExhaustedError) Unwrap() error {
	return e.Err
}
