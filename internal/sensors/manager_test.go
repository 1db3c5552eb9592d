// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"errors"
	"testing"

	"go.viam.com/test"

	"github.com/relabs-tech/mpu6050/internal/config"
	"github.com/relabs-tech/mpu6050/internal/mpu6050"
)

// regBus is a flat register file with a byte FIFO behind FIFO_R_W.
type regBus struct {
	regs [256]byte
	fifo []byte
}

func newRegBus(whoAmI byte) *regBus {
	b := &regBus{}
	b.regs[mpu6050.RegWhoAmI] = whoAmI
	b.regs[mpu6050.RegPwrMgmt1] = 0x40
	return b
}

func (b *regBus) ReadByte(addr uint16, reg byte) (byte, error) {
	r, err := b.ReadBlock(addr, reg, 1)
	if err != nil {
		return 0, err
	}
	return r[0], nil
}

func (b *regBus) ReadBlock(addr uint16, reg byte, n int) ([]byte, error) {
	switch reg {
	case mpu6050.RegFIFORW:
		out := append([]byte(nil), b.fifo[:n]...)
		b.fifo = b.fifo[n:]
		return out, nil
	case mpu6050.RegFIFOCountH:
		return []byte{byte(len(b.fifo) >> 8), byte(len(b.fifo))}, nil
	}
	out := make([]byte, n)
	copy(out, b.regs[int(reg):])
	return out, nil
}

func (b *regBus) WriteByte(addr uint16, reg byte, v byte) error {
	if reg == mpu6050.RegUserCtrl {
		if v&0x04 != 0 {
			b.fifo = nil
		}
		v &^= 0x0F
	}
	b.regs[reg] = v
	return nil
}

func (b *regBus) WriteBlock(addr uint16, reg byte, data []byte) error {
	copy(b.regs[int(reg):], data)
	return nil
}

type stepClock struct{ us int64 }

func (c *stepClock) NowMillis() int64  { return c.us / 1000 }
func (c *stepClock) DelayMicros(n int) { c.us += int64(n) }

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.MQTTBroker = "tcp://localhost:1883"
	cfg.AccelRange = mpu6050.AccelFS4
	cfg.GyroRange = mpu6050.GyroFS500
	cfg.SampleRateDiv = 9
	return cfg
}

func newTestManager(t *testing.T, b *regBus) *IMUManager {
	t.Helper()
	m, err := NewIMUManager("test", b, testConfig(), mpu6050.WithClock(&stepClock{}))
	test.That(t, err, test.ShouldBeNil)
	return m
}

func TestNewIMUManagerConfiguresDevice(t *testing.T) {
	b := newRegBus(mpu6050.WhoAmIMPU6050)
	m := newTestManager(t, b)

	test.That(t, m.Name(), test.ShouldEqual, "test")
	test.That(t, m.Features(), test.ShouldEqual, RawFeatures)
	test.That(t, b.regs[mpu6050.RegAccelConfig], test.ShouldEqual, byte(mpu6050.AccelFS4<<3))
	test.That(t, b.regs[mpu6050.RegGyroConfig], test.ShouldEqual, byte(mpu6050.GyroFS500<<3))
	test.That(t, b.regs[mpu6050.RegSmplrtDiv], test.ShouldEqual, byte(9))
	// Awake, FIFO on, accel and gyro routed into it.
	test.That(t, b.regs[mpu6050.RegPwrMgmt1]&0x40, test.ShouldEqual, byte(0))
	test.That(t, b.regs[mpu6050.RegUserCtrl]&0x40, test.ShouldEqual, byte(0x40))
	test.That(t, b.regs[mpu6050.RegFIFOEn], test.ShouldEqual, byte(0x78))
}

func TestNewIMUManagerRejectsUnknownDevice(t *testing.T) {
	_, err := NewIMUManager("test", newRegBus(0x12), testConfig(), mpu6050.WithClock(&stepClock{}))
	test.That(t, errors.Is(err, mpu6050.ErrNotDevice), test.ShouldBeTrue)
}

func TestConfigureMissingFirmware(t *testing.T) {
	cfg := testConfig()
	cfg.DMPFirmware = "/nonexistent/dmp.bin"
	_, err := NewIMUManager("test", newRegBus(mpu6050.WhoAmIMPU6050), cfg, mpu6050.WithClock(&stepClock{}))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "DMP firmware")
	test.That(t, Features(cfg), test.ShouldEqual, cfg.DMPFeatures)
}

func TestNextFrame(t *testing.T) {
	b := newRegBus(mpu6050.WhoAmIMPU6050)
	m := newTestManager(t, b)
	b.fifo = []byte{
		0x40, 0x00, 0x00, 0x10, 0xFF, 0xFF, // accel
		0x00, 0x05, 0x00, 0x00, 0x80, 0x00, // gyro
	}

	fr, err := m.NextFrame()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, fr.HasQuat, test.ShouldBeFalse)
	test.That(t, fr.Accel, test.ShouldResemble, [3]int16{16384, 16, -1})
	test.That(t, fr.Gyro, test.ShouldResemble, [3]int16{5, 0, -32768})
	test.That(t, b.fifo, test.ShouldBeEmpty)
}

func TestRegisterAccess(t *testing.T) {
	b := newRegBus(mpu6050.WhoAmIMPU6050)
	m := newTestManager(t, b)

	test.That(t, m.WriteRegister(mpu6050.RegIntEnable, 0x11), test.ShouldBeNil)
	v, err := m.ReadRegister(mpu6050.RegIntEnable)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, v, test.ShouldEqual, byte(0x11))

	err = m.WriteRegister(mpu6050.RegWhoAmI, 0x00)
	test.That(t, errors.Is(err, ErrNotWritable), test.ShouldBeTrue)
	err = m.WriteRegister(mpu6050.RegFIFORW, 0x00)
	test.That(t, errors.Is(err, ErrNotWritable), test.ShouldBeTrue)
	test.That(t, b.regs[mpu6050.RegWhoAmI], test.ShouldEqual, byte(mpu6050.WhoAmIMPU6050))

	all, err := m.ReadAllRegisters()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, all["0x75"], test.ShouldEqual, byte(0x68))
	test.That(t, all["0x38"], test.ShouldEqual, byte(0x11))
	test.That(t, all, test.ShouldNotContainKey, "0x74")
	test.That(t, len(all), test.ShouldEqual, len(m.GetRegisterMap()))
}

func TestRegisterMapFollowsPart(t *testing.T) {
	m := newTestManager(t, newRegBus(mpu6050.WhoAmIMPU6050))
	test.That(t, m.GetRegisterMap()[0].Address, test.ShouldEqual, "0x06")

	m = newTestManager(t, newRegBus(mpu6050.WhoAmIMPU6500))
	test.That(t, m.GetRegisterMap()[0].Address, test.ShouldEqual, "0x77")
	test.That(t, m.WriteRegister(0x7A, 0x01), test.ShouldBeNil)
}

func TestOffsets(t *testing.T) {
	b := newRegBus(mpu6050.WhoAmIMPU6050)
	m := newTestManager(t, b)

	want := [6]int16{-1200, 300, 1500, 12, -40, 7}
	test.That(t, m.SetOffsets(want), test.ShouldBeNil)
	test.That(t, b.regs[mpu6050.RegXGOffsUsrH], test.ShouldEqual, byte(0x00))
	test.That(t, b.regs[mpu6050.RegXGOffsUsrH+1], test.ShouldEqual, byte(12))

	got, err := m.Offsets()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, got, test.ShouldResemble, want)
}

func TestCalibrateReportsPasses(t *testing.T) {
	b := newRegBus(mpu6050.WhoAmIMPU6050)
	m := newTestManager(t, b)

	var reports []mpu6050.PassReport
	_, err := m.Calibrate(mpu6050.GyroGroup, 3, func(r mpu6050.PassReport) {
		reports = append(reports, r)
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(reports), test.ShouldEqual, 3)
	test.That(t, reports[2].Pass, test.ShouldEqual, 2)

	// The callback is dropped once the run ends.
	_, err = m.Calibrate(mpu6050.GyroGroup, 1, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(reports), test.ShouldEqual, 3)
}
