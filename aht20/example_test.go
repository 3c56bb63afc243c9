// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package aht20_test

import (
	"errors"
	"fmt"
	"log"

	"github.com/GermanBionicSystems/envsense/aht20"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

func Example() {
	// Make sure periph is initialized.
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}

	// Use i2creg I²C bus registry to find the first available I²C bus.
	b, err := i2creg.Open("")
	if err != nil {
		log.Fatalf("failed to open I²C: %v", err)
	}
	defer b.Close()

	// The sensor can only measure once it reports itself calibrated.
	d, err := aht20.New(b, aht20.DefaultAddress, nil).Initialize()
	if err != nil {
		log.Fatalf("failed to initialize AHT20: %v", err)
	}

	r, err := d.Measure()
	if err != nil {
		var busErr *aht20.BusError
		if errors.As(err, &busErr) {
			log.Fatalf("I²C failure during %s: %v", busErr.Op, busErr.Err)
		}
		log.Fatal(err)
	}
	fmt.Printf("temperature: %.2f°C humidity: %.2f%%RH\n", r.Temperature, r.Humidity)
}

func ExampleInitialized_Sense() {
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}
	b, err := i2creg.Open("")
	if err != nil {
		log.Fatalf("failed to open I²C: %v", err)
	}
	defer b.Close()

	d, err := aht20.NewI2C(b, &aht20.Opts{MaxAttempts: 10})
	if err != nil {
		log.Fatalf("failed to initialize AHT20: %v", err)
	}
	defer d.Halt()

	var e physic.Env
	if err := d.Sense(&e); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%8s %9s\n", e.Temperature, e.Humidity)
}
