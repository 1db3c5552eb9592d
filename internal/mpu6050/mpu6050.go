// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package mpu6050 drives InvenSense MPU-6050 class 6-axis motion sensors
// through a register-oriented Bus.
//
// Beyond plain register access the package carries two pieces of logic: a
// closed-loop bias calibrator that drives the six hardware offset registers
// toward a level, stationary reading, and a FIFO packet reader that extracts
// fixed-size DMP frames from the streaming FIFO under timeout and overflow
// conditions.
//
// A Dev owns its bus for its whole lifetime and does no locking; callers that
// share a Dev or a physical bus between goroutines must serialize access.
package mpu6050

import (
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

var (
	// ErrNotDevice is returned when WHO_AM_I does not match a supported part.
	ErrNotDevice = errors.New("mpu6050: WHO_AM_I does not match a supported device")
)

// DefaultFIFOTimeout bounds how long ReadPacket waits for a full frame.
const DefaultFIFOTimeout = 11000 * time.Millisecond

// Axis indexes the offset array.
type Axis int

const (
	AccelX Axis = iota
	AccelY
	AccelZ
	GyroX
	GyroY
	GyroZ
)

var axisNames = [...]string{"accel_x", "accel_y", "accel_z", "gyro_x", "gyro_y", "gyro_z"}

func (a Axis) String() string {
	if a < 0 || int(a) >= len(axisNames) {
		return fmt.Sprintf("axis(%d)", int(a))
	}
	return axisNames[a]
}

// Dev is an MPU-6050 on a bus.
type Dev struct {
	bus  Bus
	addr uint16
	clk  Clock
	log  *log.Entry

	// offsets mirrors the hardware offset registers in Axis order.
	offsets [6]int16

	fifoTimeout time.Duration
	packetSize  int
	cal         CalibrationParams
	onPass      func(PassReport)

	whoAmI byte
}

// Option configures a Dev at construction.
type Option func(d *Dev)

// Address selects the I2C address (AddrAD0Low or AddrAD0High).
func Address(addr uint16) Option {
	return func(d *Dev) { d.addr = addr }
}

// WithClock replaces the wall clock, mostly for tests.
func WithClock(c Clock) Option {
	return func(d *Dev) { d.clk = c }
}

// WithLogger sets the logger used for progress and diagnostics.
func WithLogger(l *log.Entry) Option {
	return func(d *Dev) { d.log = l }
}

// FIFOTimeout sets the initial FIFO wait bound.
func FIFOTimeout(t time.Duration) Option {
	return func(d *Dev) { d.fifoTimeout = t }
}

// PacketSize sets the FIFO frame length used by CurrentPacket.
func PacketSize(n int) Option {
	return func(d *Dev) { d.packetSize = n }
}

// Calibration replaces the calibrator tuning.
func Calibration(p CalibrationParams) Option {
	return func(d *Dev) { d.cal = p }
}

// New returns a Dev on bus. It does not touch the hardware; call Init.
func New(bus Bus, opts ...Option) (*Dev, error) {
	if bus == nil {
		return nil, errors.New("mpu6050: nil bus")
	}
	d := &Dev{
		bus:         bus,
		addr:        DefaultAddr,
		fifoTimeout: DefaultFIFOTimeout,
		cal:         DefaultCalibrationParams(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.clk == nil {
		d.clk = NewClock(nil)
	}
	if d.log == nil {
		d.log = log.WithField("device", fmt.Sprintf("mpu6050@0x%02X", d.addr))
	}
	return d, nil
}

// Init wakes the device with the gyro X PLL as clock source, ±250°/s gyro and
// ±2g accelerometer ranges.
func (d *Dev) Init() error {
	if _, err := d.WhoAmI(); err != nil {
		return err
	}
	if err := d.SetClockSource(ClockPLLXGyro); err != nil {
		return fmt.Errorf("mpu6050: set clock source: %w", err)
	}
	if err := d.SetFullScaleGyroRange(GyroFS250); err != nil {
		return fmt.Errorf("mpu6050: set gyro range: %w", err)
	}
	if err := d.SetFullScaleAccelRange(AccelFS2); err != nil {
		return fmt.Errorf("mpu6050: set accel range: %w", err)
	}
	if err := d.SetSleepEnabled(false); err != nil {
		return fmt.Errorf("mpu6050: wake: %w", err)
	}
	d.log.WithField("who_am_i", fmt.Sprintf("0x%02X", d.whoAmI)).Info("device initialized")
	return nil
}

// WhoAmI reads and caches the WHO_AM_I register. Unknown parts yield ErrNotDevice.
func (d *Dev) WhoAmI() (byte, error) {
	v, err := d.bus.ReadByte(d.addr, RegWhoAmI)
	if err != nil {
		return 0, fmt.Errorf("mpu6050: read WHO_AM_I: %w", err)
	}
	switch v {
	case WhoAmIMPU6050, WhoAmIMPU6500, WhoAmIMPU9250, WhoAmIMPU9255:
	default:
		return v, fmt.Errorf("%w: got 0x%02X", ErrNotDevice, v)
	}
	d.whoAmI = v
	return v, nil
}

// DeviceID returns the six identity bits of WHO_AM_I (0x34 on an MPU-6050).
func (d *Dev) DeviceID() (byte, error) {
	return d.readBits(bitField{reg: RegWhoAmI, bit: whoAmIBit, length: whoAmILength})
}

// TestConnection reports whether a supported part answers at the address.
func (d *Dev) TestConnection() bool {
	_, err := d.WhoAmI()
	return err == nil
}

// accelOffsetRegs returns the high-byte register of each accelerometer offset
// for the detected part.
func (d *Dev) accelOffsetRegs() [3]byte {
	if d.whoAmI >= WhoAmIMPU6500 {
		return [3]byte{RegXAOffsH6500, RegYAOffsH6500, RegZAOffsH6500}
	}
	return [3]byte{RegXAOffsH, RegYAOffsH, RegZAOffsH}
}

var gyroOffsetRegs = [3]byte{RegXGOffsUsrH, RegYGOffsUsrH, RegZGOffsUsrH}

// offsetReg returns the high-byte register of the offset of a. The part is
// identified on first use when neither Init nor WhoAmI ran yet.
func (d *Dev) offsetReg(a Axis) (byte, error) {
	if a > AccelZ {
		return gyroOffsetRegs[a-GyroX], nil
	}
	if d.whoAmI == 0 {
		if _, err := d.WhoAmI(); err != nil {
			return 0, err
		}
	}
	return d.accelOffsetRegs()[a], nil
}
