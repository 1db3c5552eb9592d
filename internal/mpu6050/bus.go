// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu6050

import (
	"time"

	"github.com/benbjohnson/clock"
)

// Bus is register-oriented access to devices on a serial bus. Implementations
// are synchronous and are not required to be safe for concurrent use.
type Bus interface {
	ReadByte(addr uint16, reg byte) (byte, error)
	ReadBlock(addr uint16, reg byte, n int) ([]byte, error)
	WriteByte(addr uint16, reg byte, value byte) error
	WriteBlock(addr uint16, reg byte, data []byte) error
}

// Clock is the monotonic time source used for FIFO timeouts and sampling delays.
type Clock interface {
	NowMillis() int64
	DelayMicros(n int)
}

type monotonicClock struct {
	c clock.Clock
}

// NewClock wraps c as a Clock. A nil c uses the wall clock.
func NewClock(c clock.Clock) Clock {
	if c == nil {
		c = clock.New()
	}
	return &monotonicClock{c: c}
}

func (m *monotonicClock) NowMillis() int64 {
	return m.c.Now().UnixMilli()
}

func (m *monotonicClock) DelayMicros(n int) {
	if n <= 0 {
		return
	}
	m.c.Sleep(time.Duration(n) * time.Microsecond)
}
