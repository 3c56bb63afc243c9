// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package aht20

import (
	"errors"
	"sync"
	"time"

	"github.com/GermanBionicSystems/envsense/common"
	"github.com/golang/glog"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// DefaultAddress is the fixed I²C address of the AHT20.
const DefaultAddress i2c.Addr = 0x38

// Delays from the datasheet, section 5.4.
const (
	powerOnDelay     = 40 * time.Millisecond
	initializeDelay  = 10 * time.Millisecond
	measurementDelay = 80 * time.Millisecond
	busyPollDelay    = time.Millisecond
	softResetDelay   = 20 * time.Millisecond
)

var (
	argsCheckStatus = []byte{byte(CmdCheckStatus)}
	argsInitialize  = []byte{byte(CmdInitialize), 0x08, 0x00}
	argsMeasure     = []byte{byte(CmdTriggerMeasurement), 0x33, 0x00}
	argsSoftReset   = []byte{byte(CmdSoftReset)}
)

// frameSize is the status byte, 5 data bytes and the CRC8.
const frameSize = 7

// Opts holds the configuration options for the device.
type Opts struct {
	// Sleep blocks for the given duration. It is the timing source for every
	// datasheet delay and must not return early. Defaults to time.Sleep.
	Sleep func(time.Duration)
	// MaxAttempts caps the calibration loop of Initialize, the busy polling
	// of MeasureOnce and the retries of Measure. 0 means no cap: the calls
	// loop until they succeed or the bus fails.
	MaxAttempts int
	// OnError receives the errors of measurements started by
	// SenseContinuous. Defaults to logging a warning.
	OnError func(error)
}

// DefaultOpts holds the default configuration options for the device.
var DefaultOpts = Opts{
	Sleep: time.Sleep,
}

// link is the exclusive owner of the bus. It is moved, never copied, between
// the lifecycle handles.
type link struct {
	d    *i2c.Dev
	opts Opts
}

func (l *link) write(op string, w []byte) error {
	if err := l.d.Tx(w, nil); err != nil {
		return &BusError{Op: op, Err: err}
	}
	return nil
}

func (l *link) read(op string, r []byte) error {
	if err := l.d.Tx(nil, r); err != nil {
		return &BusError{Op: op, Err: err}
	}
	return nil
}

func (l *link) checkStatus() (Status, error) {
	if err := l.write("check status", argsCheckStatus); err != nil {
		return 0, err
	}
	var r [1]byte
	if err := l.read("check status", r[:]); err != nil {
		return 0, err
	}
	return Status(r[0]), nil
}

// exhausted reports whether n attempts reached the configured cap.
func (l *link) exhausted(n int) bool {
	return l.opts.MaxAttempts > 0 && n >= l.opts.MaxAttempts
}

func (l *link) String() string {
	return "AHT20{" + l.d.String() + "}"
}

// Dev is an AHT20 that was not yet seen calibrated. It can only query its
// status and be initialized.
type Dev struct {
	l *link
}

// New returns a handle to the AHT20 at addr on b. No I/O is done. The Opts
// can be nil.
func New(b i2c.Bus, addr i2c.Addr, opts *Opts) *Dev {
	if opts == nil {
		opts = &DefaultOpts
	}
	o := *opts
	if o.Sleep == nil {
		o.Sleep = time.Sleep
	}
	return &Dev{l: &link{d: &i2c.Dev{Bus: b, Addr: uint16(addr)}, opts: o}}
}

// NewI2C returns an initialized AHT20 at DefaultAddress. It takes at least
// 40ms. The Opts can be nil.
func NewI2C(b i2c.Bus, opts *Opts) (*Initialized, error) {
	return New(b, DefaultAddress, opts).Initialize()
}

func (d *Dev) String() string {
	if d.l == nil {
		return "AHT20{released}"
	}
	return d.l.String()
}

// CheckStatus writes CmdCheckStatus and reads back the status byte.
func (d *Dev) CheckStatus() (Status, error) {
	if d.l == nil {
		return 0, ErrReleased
	}
	return d.l.checkStatus()
}

// Initialize waits for the sensor to power up then sends CmdInitialize until
// the sensor reports itself calibrated. It takes at least 40ms.
//
// On success the bus is moved to the returned handle and d is released. On
// error d keeps the bus and can be initialized again.
func (d *Dev) Initialize() (*Initialized, error) {
	l := d.l
	if l == nil {
		return nil, ErrReleased
	}
	l.opts.Sleep(powerOnDelay)
	for n := 0; ; n++ {
		s, err := l.checkStatus()
		if err != nil {
			return nil, err
		}
		if s.Calibrated() {
			break
		}
		if l.exhausted(n) {
			return nil, &RetriesExhaustedError{Op: "initialize", Attempts: n}
		}
		glog.V(2).Infof("aht20: not calibrated (status %s), sending initialize", s)
		if err := l.write("initialize", argsInitialize); err != nil {
			return nil, err
		}
		l.opts.Sleep(initializeDelay)
	}
	d.l = nil
	return &Initialized{l: l}, nil
}

// Release returns the bus. d is unusable afterwards.
func (d *Dev) Release() i2c.Bus {
	if d.l == nil {
		return nil
	}
	b := d.l.d.Bus
	d.l = nil
	return b
}

// Initialized is a calibrated AHT20 ready to measure.
type Initialized struct {
	mu sync.Mutex
	l  *link

	// SenseContinuous state.
	cmu  sync.Mutex
	stop chan struct{}
	wg   sync.WaitGroup
}

func (d *Initialized) String() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.l == nil {
		return "AHT20{released}"
	}
	return d.l.String()
}

// CheckStatus writes CmdCheckStatus and reads back the status byte.
func (d *Initialized) CheckStatus() (Status, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.l == nil {
		return 0, ErrReleased
	}
	return d.l.checkStatus()
}

// TriggerMeasurement starts a measurement. The result can be read 80ms
// later; MeasureOnce and Measure take care of this.
func (d *Initialized) TriggerMeasurement() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.l == nil {
		return ErrReleased
	}
	return d.l.write("trigger measurement", argsMeasure)
}

// MeasureOnce does a single measurement and returns its raw payload. It
// takes at least 80ms.
//
// It returns *InvalidChecksumError or *UnexpectedReadyError when the frame
// cannot be trusted; both are worth retrying.
func (d *Initialized) MeasureOnce() (RawReading, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.l == nil {
		return RawReading{}, ErrReleased
	}
	return d.measureOnce()
}

func (d *Initialized) measureOnce() (RawReading, error) {
	l := d.l
	if err := l.write("trigger measurement", argsMeasure); err != nil {
		return RawReading{}, err
	}
	l.opts.Sleep(measurementDelay)

	for n := 1; ; n++ {
		s, err := l.checkStatus()
		if err != nil {
			return RawReading{}, err
		}
		if s.Ready() {
			break
		}
		if l.exhausted(n) {
			return RawReading{}, &RetriesExhaustedError{Op: "wait ready", Attempts: n}
		}
		l.opts.Sleep(busyPollDelay)
	}

	var frame [frameSize]byte
	if err := l.read("read measurement", frame[:]); err != nil {
		return RawReading{}, err
	}
	if crc := common.CRC8(frame[:frameSize-1]); crc != frame[frameSize-1] {
		return RawReading{}, &InvalidChecksumError{Got: frame[frameSize-1], Want: crc}
	}
	// The ready bit polled above is not CRC protected, this one is.
	if s := Status(frame[0]); !s.Ready() {
		return RawReading{}, &UnexpectedReadyError{Status: s}
	}
	var raw RawReading
	copy(raw[:], frame[1:frameSize-1])
	return raw, nil
}

// Measure returns the current humidity and temperature. It takes at least
// 80ms, more if the frame has to be read again.
func (d *Initialized) Measure() (Reading, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.l == nil {
		return Reading{}, ErrReleased
	}
	for n := 1; ; n++ {
		raw, err := d.measureOnce()
		if err == nil {
			return raw.Decode(), nil
		}
		if !isRecoverable(err) {
			return Reading{}, err
		}
		if d.l.exhausted(n) {
			return Reading{}, &RetriesExhaustedError{Op: "measure", Attempts: n, Err: err}
		}
		glog.V(2).Infof("aht20: retrying measurement: %v", err)
	}
}

func isRecoverable(err error) bool {
	var crcErr *InvalidChecksumError
	var readyErr *UnexpectedReadyError
	return errors.As(err, &crcErr) || errors.As(err, &readyErr)
}

// SoftReset reboots the sensor. It blocks for the 20ms the datasheet allows
// for the reset so that commands can be sent as soon as it returns.
func (d *Initialized) SoftReset() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.l == nil {
		return ErrReleased
	}
	if err := d.l.write("soft reset", argsSoftReset); err != nil {
		return err
	}
	d.l.opts.Sleep(softResetDelay)
	return nil
}

// Sense implements physic.SenseEnv. The pressure is always 0 since the AHT20
// does not measure it.
func (d *Initialized) Sense(e *physic.Env) error {
	r, err := d.Measure()
	if err != nil {
		return err
	}
	env := r.Env()
	e.Temperature = env.Temperature
	e.Humidity = env.Humidity
	e.Pressure = 0
	return nil
}

// SenseContinuous implements physic.SenseEnv. It returns a channel that
// receives a measurement every interval until Halt is called. Failed
// measurements are passed to Opts.OnError and skipped.
func (d *Initialized) SenseContinuous(interval time.Duration) (<-chan physic.Env, error) {
	if interval < measurementDelay {
		return nil, errors.New("aht20: sample interval is < measurement duration")
	}
	d.cmu.Lock()
	defer d.cmu.Unlock()
	if d.stop != nil {
		return nil, errors.New("aht20: SenseContinuous already running")
	}
	d.mu.Lock()
	l := d.l
	d.mu.Unlock()
	if l == nil {
		return nil, ErrReleased
	}
	onError := l.opts.OnError
	if onError == nil {
		onError = func(err error) { glog.Warningf("%v", err) }
	}

	stop := make(chan struct{})
	d.stop = stop
	sensing := make(chan physic.Env)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer close(sensing)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				var e physic.Env
				if err := d.Sense(&e); err != nil {
					onError(err)
					continue
				}
				select {
				case sensing <- e:
				case <-stop:
					return
				}
			}
		}
	}()
	return sensing, nil
}

// Precision implements physic.SenseEnv.
func (d *Initialized) Precision(e *physic.Env) {
	e.Temperature = 10 * physic.MilliKelvin
	e.Humidity = 24 * physic.MilliRH
	e.Pressure = 0
}

// Halt stops the measurements started by SenseContinuous.
func (d *Initialized) Halt() error {
	d.cmu.Lock()
	stop := d.stop
	d.stop = nil
	d.cmu.Unlock()
	if stop != nil {
		close(stop)
		d.wg.Wait()
	}
	return nil
}

// Release halts continuous sensing and returns the bus. d is unusable
// afterwards.
func (d *Initialized) Release() i2c.Bus {
	_ = d.Halt()
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.l == nil {
		return nil
	}
	b := d.l.d.Bus
	d.l = nil
	return b
}

var _ conn.Resource = &Initialized{}
var _ physic.SenseEnv = &Initialized{}
