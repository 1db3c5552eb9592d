// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu6050

import (
	"errors"
	"testing"

	"go.viam.com/test"
)

func TestBitField(t *testing.T) {
	f := bitField{reg: RegConfig, bit: 2, length: 3}
	test.That(t, f.shift(), test.ShouldEqual, uint8(0))
	test.That(t, f.mask(), test.ShouldEqual, byte(0x07))
	test.That(t, f.insert(0xF8, 5), test.ShouldEqual, byte(0xFD))
	test.That(t, f.extract(0xFD), test.ShouldEqual, byte(5))

	g := bitField{reg: RegGyroConfig, bit: 4, length: 2}
	test.That(t, g.mask(), test.ShouldEqual, byte(0x18))
	test.That(t, g.insert(0xFF, 0), test.ShouldEqual, byte(0xE7))
	// Excess bits are dropped.
	test.That(t, g.insert(0x00, 0xFF), test.ShouldEqual, byte(0x18))
}

func TestNewNilBus(t *testing.T) {
	_, err := New(nil)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestInit(t *testing.T) {
	f := newFakeBus(WhoAmIMPU6050)
	f.regs[RegGyroConfig] = 0x18
	f.regs[RegAccelConfig] = 0x18
	d, _ := newTestDev(f)

	test.That(t, d.Init(), test.ShouldBeNil)

	src, err := d.ClockSource()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, src, test.ShouldEqual, byte(ClockPLLXGyro))
	g, err := d.FullScaleGyroRange()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, g, test.ShouldEqual, byte(GyroFS250))
	a, err := d.FullScaleAccelRange()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, a, test.ShouldEqual, byte(AccelFS2))
	sleep, err := d.SleepEnabled()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sleep, test.ShouldBeFalse)
}

func TestWhoAmI(t *testing.T) {
	d, _ := newTestDev(newFakeBus(0x12))
	_, err := d.WhoAmI()
	test.That(t, errors.Is(err, ErrNotDevice), test.ShouldBeTrue)
	test.That(t, d.TestConnection(), test.ShouldBeFalse)
	test.That(t, d.Init(), test.ShouldNotBeNil)

	d, _ = newTestDev(newFakeBus(WhoAmIMPU6050))
	test.That(t, d.TestConnection(), test.ShouldBeTrue)
	id, err := d.DeviceID()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, id, test.ShouldEqual, byte(0x34))
}

func TestAccessorsValidateRange(t *testing.T) {
	d, _ := newTestDev(newFakeBus(WhoAmIMPU6050))
	test.That(t, d.SetFullScaleGyroRange(4), test.ShouldNotBeNil)
	test.That(t, d.SetFullScaleAccelRange(9), test.ShouldNotBeNil)
	_, err := d.Offset(Axis(6))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, d.SetOffset(Axis(-1), 0), test.ShouldNotBeNil)
}

func TestRateAndDLPF(t *testing.T) {
	f := newFakeBus(WhoAmIMPU6050)
	f.regs[RegConfig] = 0x38
	d, _ := newTestDev(f)

	test.That(t, d.SetRate(4), test.ShouldBeNil)
	r, err := d.Rate()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, r, test.ShouldEqual, byte(4))

	test.That(t, d.SetDLPFMode(DLPFBW42), test.ShouldBeNil)
	m, err := d.DLPFMode()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m, test.ShouldEqual, byte(DLPFBW42))
	// EXT_SYNC_SET untouched.
	test.That(t, f.regs[RegConfig]&0x38, test.ShouldEqual, byte(0x38))
}

func TestMotionAndTemperature(t *testing.T) {
	f := newFakeBus(WhoAmIMPU6050)
	f.accelBias = [3]float64{100, -200, 16384}
	f.gyroBias = [3]float64{-5, 6, 7}
	f.setWord(RegTempOutH, -521)
	d, _ := newTestDev(f)

	m, err := d.Motion()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m, test.ShouldResemble, Motion{Ax: 100, Ay: -200, Az: 16384, Gx: -5, Gy: 6, Gz: 7})

	temp, err := d.Temperature()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, temp.Celsius(), test.ShouldAlmostEqual, 35.0, 0.01)
}

func TestSetOffsetRecords(t *testing.T) {
	f := newFakeBus(WhoAmIMPU6050)
	d, _ := newTestDev(f)

	test.That(t, d.SetOffset(GyroZ, -300), test.ShouldBeNil)
	test.That(t, f.word(RegZGOffsUsrH), test.ShouldEqual, int16(-300))
	test.That(t, d.Offsets()[GyroZ], test.ShouldEqual, int16(-300))
	v, err := d.Offset(GyroZ)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, v, test.ShouldEqual, int16(-300))
}

func TestAxisString(t *testing.T) {
	test.That(t, AccelZ.String(), test.ShouldEqual, "accel_z")
	test.That(t, GyroX.String(), test.ShouldEqual, "gyro_x")
	test.That(t, Axis(9).String(), test.ShouldEqual, "axis(9)")
	test.That(t, GyroGroup.String(), test.ShouldEqual, "gyro")
}
