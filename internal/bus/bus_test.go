// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package bus

import (
	"testing"

	"go.viam.com/test"
	"periph.io/x/conn/v3/conntest"
	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spitest"

	"github.com/relabs-tech/mpu6050/internal/mpu6050"
)

var (
	_ mpu6050.Bus = (*I2C)(nil)
	_ mpu6050.Bus = (*SPI)(nil)
	_ Register    = (*I2C)(nil)
	_ Register    = (*SPI)(nil)
)

func TestI2C(t *testing.T) {
	p := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x68, W: []byte{0x75}, R: []byte{0x68}},
			{Addr: 0x68, W: []byte{0x72}, R: []byte{0x00, 0x1C}},
			{Addr: 0x68, W: []byte{0x6B, 0x01}},
			{Addr: 0x69, W: []byte{0x13, 0xFF, 0x38}},
		},
		DontPanic: true,
	}
	b := NewI2C(p)

	v, err := b.ReadByte(0x68, 0x75)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, v, test.ShouldEqual, byte(0x68))

	r, err := b.ReadBlock(0x68, 0x72, 2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, r, test.ShouldResemble, []byte{0x00, 0x1C})

	test.That(t, b.WriteByte(0x68, 0x6B, 0x01), test.ShouldBeNil)
	test.That(t, b.WriteBlock(0x69, 0x13, []byte{0xFF, 0x38}), test.ShouldBeNil)
	test.That(t, p.Close(), test.ShouldBeNil)
	// Buses handed in are not closed by the wrapper.
	test.That(t, b.Close(), test.ShouldBeNil)
}

func TestI2CError(t *testing.T) {
	p := &i2ctest.Playback{DontPanic: true}
	b := NewI2C(p)
	_, err := b.ReadByte(0x68, 0x75)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "0x75")
}

func TestSPI(t *testing.T) {
	p := &spitest.Playback{
		Playback: conntest.Playback{
			Ops: []conntest.IO{
				{W: []byte{0xF5, 0x00}, R: []byte{0x00, 0x68}},
				{W: []byte{0xF2, 0x00, 0x00}, R: []byte{0x00, 0x01, 0x00}},
				{W: []byte{0x6A, 0x04}},
			},
			DontPanic: true,
		},
	}
	c, err := p.Connect(physic.MegaHertz, spi.Mode3, 8)
	test.That(t, err, test.ShouldBeNil)
	b := NewSPI(c)

	v, err := b.ReadByte(0, 0x75)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, v, test.ShouldEqual, byte(0x68))

	r, err := b.ReadBlock(0, 0x72, 2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, r, test.ShouldResemble, []byte{0x01, 0x00})

	test.That(t, b.WriteByte(0, 0x6A, 0x04), test.ShouldBeNil)
	test.That(t, p.Close(), test.ShouldBeNil)
}
