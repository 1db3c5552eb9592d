// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu6050

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrFIFOTimeout is returned when a full frame did not arrive within the
	// FIFO timeout. Nothing was consumed; retry on the next cycle.
	ErrFIFOTimeout = errors.New("mpu6050: FIFO timeout")

	// ErrFIFOOverflow is returned when the FIFO was found full. The FIFO has
	// been reset; retry on the next cycle.
	ErrFIFOOverflow = errors.New("mpu6050: FIFO overflow, buffer reset")

	// ErrInvalidPacketLength is returned for frame lengths that cannot fit the FIFO.
	ErrInvalidPacketLength = errors.New("mpu6050: invalid packet length")
)

// Packet is one frame extracted from the FIFO.
type Packet []byte

// SetFIFOTimeout changes how long ReadPacket waits for a full frame.
func (d *Dev) SetFIFOTimeout(t time.Duration) {
	d.fifoTimeout = t
}

// FIFOTimeout returns the current FIFO wait bound.
func (d *Dev) FIFOTimeout() time.Duration {
	return d.fifoTimeout
}

// SetPacketSize changes the frame length used by CurrentPacket.
func (d *Dev) SetPacketSize(n int) {
	d.packetSize = n
}

// PacketSize returns the frame length used by CurrentPacket.
func (d *Dev) PacketSize() int {
	return d.packetSize
}

// CurrentPacket reads one frame of the configured packet size.
func (d *Dev) CurrentPacket() (Packet, error) {
	return d.ReadPacket(d.packetSize)
}

// ReadPacket returns the oldest length-byte frame in the FIFO.
//
// A full FIFO means frames were lost upstream: the FIFO is reset and
// ErrFIFOOverflow returned. Otherwise the FIFO count is polled until a whole
// frame is queued or the FIFO timeout elapses, in which case ErrFIFOTimeout
// is returned without consuming anything. The frame itself is read in a single
// block transfer and nothing past it is touched.
//
// The count alone cannot reveal a FIFO holding a partial frame, so a stream
// that lost alignment stays misaligned until the next overflow reset.
func (d *Dev) ReadPacket(length int) (Packet, error) {
	if length <= 0 || length > FIFOCapacity {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPacketLength, length)
	}

	start := d.clk.NowMillis()
	limit := d.fifoTimeout.Milliseconds()
	for {
		count, err := d.FIFOCount()
		if err != nil {
			return nil, err
		}
		if count >= FIFOCapacity {
			if err := d.ResetFIFO(); err != nil {
				return nil, fmt.Errorf("mpu6050: reset FIFO after overflow: %w", err)
			}
			d.log.WithField("count", count).Warn("FIFO overflow, buffer reset")
			return nil, ErrFIFOOverflow
		}
		if count >= length {
			break
		}
		if d.clk.NowMillis()-start > limit {
			return nil, fmt.Errorf("%w: %d of %d bytes after %v", ErrFIFOTimeout, count, length, d.fifoTimeout)
		}
	}

	b, err := d.bus.ReadBlock(d.addr, RegFIFORW, length)
	if err != nil {
		return nil, fmt.Errorf("mpu6050: read FIFO: %w", err)
	}
	if len(b) != length {
		return nil, fmt.Errorf("mpu6050: read FIFO: got %d of %d bytes", len(b), length)
	}
	return Packet(b), nil
}
