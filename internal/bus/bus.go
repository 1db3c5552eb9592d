// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package bus implements register access over periph.io I2C and SPI buses.
package bus

import (
	"fmt"
	"io"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// SPIFrequency is the register interface clock; 1 MHz is the limit for
// writes on the MPU-6000 family.
const SPIFrequency = physic.MegaHertz

// spiRead is set in the register byte of an SPI read transfer.
const spiRead = 0x80

// Register is register-oriented access to devices on one bus.
type Register interface {
	ReadByte(addr uint16, reg byte) (byte, error)
	ReadBlock(addr uint16, reg byte, n int) ([]byte, error)
	WriteByte(addr uint16, reg byte, value byte) error
	WriteBlock(addr uint16, reg byte, data []byte) error
	io.Closer
}

// I2C talks to devices on an I2C bus.
type I2C struct {
	bus    i2c.Bus
	closer io.Closer
}

// NewI2C wraps an already opened bus.
func NewI2C(b i2c.Bus) *I2C {
	return &I2C{bus: b}
}

// OpenI2C initializes the host drivers and opens the named I2C bus ("" for
// the first available one).
func OpenI2C(name string) (*I2C, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	b, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open I2C bus %q: %w", name, err)
	}
	return &I2C{bus: b, closer: b}, nil
}

func (b *I2C) ReadByte(addr uint16, reg byte) (byte, error) {
	r, err := b.ReadBlock(addr, reg, 1)
	if err != nil {
		return 0, err
	}
	return r[0], nil
}

func (b *I2C) ReadBlock(addr uint16, reg byte, n int) ([]byte, error) {
	r := make([]byte, n)
	if err := b.bus.Tx(addr, []byte{reg}, r); err != nil {
		return nil, fmt.Errorf("i2c read 0x%02X@0x%02X: %w", reg, addr, err)
	}
	return r, nil
}

func (b *I2C) WriteByte(addr uint16, reg byte, value byte) error {
	return b.WriteBlock(addr, reg, []byte{value})
}

func (b *I2C) WriteBlock(addr uint16, reg byte, data []byte) error {
	w := make([]byte, 0, len(data)+1)
	w = append(w, reg)
	w = append(w, data...)
	if err := b.bus.Tx(addr, w, nil); err != nil {
		return fmt.Errorf("i2c write 0x%02X@0x%02X: %w", reg, addr, err)
	}
	return nil
}

// Close releases the bus when it was opened by OpenI2C.
func (b *I2C) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}

func (b *I2C) String() string {
	if s, ok := b.bus.(fmt.Stringer); ok {
		return s.String()
	}
	return "i2c"
}

// SPI talks to one device on an SPI port. The address argument of every call
// is ignored; chip select picks the device.
type SPI struct {
	conn   spi.Conn
	closer io.Closer
}

// NewSPI wraps an already connected SPI device.
func NewSPI(c spi.Conn) *SPI {
	return &SPI{conn: c}
}

// OpenSPI initializes the host drivers and connects to the named SPI device
// in mode 3 at SPIFrequency.
func OpenSPI(name string) (*SPI, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	p, err := spireg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open SPI port %q: %w", name, err)
	}
	c, err := p.Connect(SPIFrequency, spi.Mode3, 8)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("connect SPI %q: %w", name, err)
	}
	return &SPI{conn: c, closer: p}, nil
}

func (b *SPI) ReadByte(addr uint16, reg byte) (byte, error) {
	r, err := b.ReadBlock(addr, reg, 1)
	if err != nil {
		return 0, err
	}
	return r[0], nil
}

func (b *SPI) ReadBlock(addr uint16, reg byte, n int) ([]byte, error) {
	w := make([]byte, n+1)
	w[0] = reg | spiRead
	r := make([]byte, n+1)
	if err := b.conn.Tx(w, r); err != nil {
		return nil, fmt.Errorf("spi read 0x%02X: %w", reg, err)
	}
	return r[1:], nil
}

func (b *SPI) WriteByte(addr uint16, reg byte, value byte) error {
	return b.WriteBlock(addr, reg, []byte{value})
}

func (b *SPI) WriteBlock(addr uint16, reg byte, data []byte) error {
	w := make([]byte, 0, len(data)+1)
	w = append(w, reg&^spiRead)
	w = append(w, data...)
	if err := b.conn.Tx(w, nil); err != nil {
		return fmt.Errorf("spi write 0x%02X: %w", reg, err)
	}
	return nil
}

// Close releases the port when it was opened by OpenSPI.
func (b *SPI) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}

func (b *SPI) String() string {
	return b.conn.String()
}
