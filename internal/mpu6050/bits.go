// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu6050

import "fmt"

// bitField names a run of bits inside one register. bit is the most
// significant bit of the field and length counts down from it, matching the
// notation of the register map ("[5:3]" is bit 5, length 3).
type bitField struct {
	reg    byte
	bit    uint8
	length uint8
}

func (f bitField) shift() uint8 {
	return f.bit - f.length + 1
}

func (f bitField) mask() byte {
	return byte(((1 << f.length) - 1) << f.shift())
}

// extract returns the field value held in raw.
func (f bitField) extract(raw byte) byte {
	return (raw & f.mask()) >> f.shift()
}

// insert returns raw with the field replaced by v. Bits of v that do not fit
// the field are dropped.
func (f bitField) insert(raw, v byte) byte {
	return (raw &^ f.mask()) | ((v << f.shift()) & f.mask())
}

func bit(reg byte, n uint8) bitField {
	return bitField{reg: reg, bit: n, length: 1}
}

func (d *Dev) readBits(f bitField) (byte, error) {
	raw, err := d.bus.ReadByte(d.addr, f.reg)
	if err != nil {
		return 0, fmt.Errorf("read 0x%02X: %w", f.reg, err)
	}
	return f.extract(raw), nil
}

func (d *Dev) writeBits(f bitField, v byte) error {
	raw, err := d.bus.ReadByte(d.addr, f.reg)
	if err != nil {
		return fmt.Errorf("read 0x%02X: %w", f.reg, err)
	}
	if err := d.bus.WriteByte(d.addr, f.reg, f.insert(raw, v)); err != nil {
		return fmt.Errorf("write 0x%02X: %w", f.reg, err)
	}
	return nil
}

func (d *Dev) readBit(reg byte, n uint8) (bool, error) {
	v, err := d.readBits(bit(reg, n))
	return v != 0, err
}

func (d *Dev) writeBit(reg byte, n uint8, on bool) error {
	var v byte
	if on {
		v = 1
	}
	return d.writeBits(bit(reg, n), v)
}

// readWord reads a big-endian signed 16-bit value from reg (high) and reg+1 (low).
func (d *Dev) readWord(reg byte) (int16, error) {
	b, err := d.bus.ReadBlock(d.addr, reg, 2)
	if err != nil {
		return 0, fmt.Errorf("read word 0x%02X: %w", reg, err)
	}
	if len(b) != 2 {
		return 0, fmt.Errorf("read word 0x%02X: got %d bytes", reg, len(b))
	}
	return int16(uint16(b[0])<<8 | uint16(b[1])), nil
}

// writeWord writes v big-endian as a single block so both halves latch together.
func (d *Dev) writeWord(reg byte, v int16) error {
	if err := d.bus.WriteBlock(d.addr, reg, []byte{byte(uint16(v) >> 8), byte(v)}); err != nil {
		return fmt.Errorf("write word 0x%02X: %w", reg, err)
	}
	return nil
}
