// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu6050

import (
	"errors"
	"time"

	"github.com/benbjohnson/clock"
)

var errBus = errors.New("bus failure")

type blockWrite struct {
	reg  byte
	data []byte
}

// fakeBus is an in-memory MPU-6050. Sensor outputs are computed from a fixed
// bias plus the current offset registers scaled to output counts, with a
// zero-mean alternating noise term.
type fakeBus struct {
	regs [256]byte

	accelBias [3]float64
	gyroBias  [3]float64
	noise     int16
	flip      bool

	fifo       []byte
	fifoResets int
	dmpResets  int
	countReads int
	// onCount runs before every FIFO count read.
	onCount func(f *fakeBus)

	mem     [DMPMemoryBanks][DMPMemoryBankSize]byte
	bank    byte
	memAddr byte
	// corrupt flips memory bits on read-back when set.
	corrupt bool

	blockWrites []blockWrite
	fifoReads   []int
	failReads   bool
}

func newFakeBus(whoAmI byte) *fakeBus {
	f := &fakeBus{}
	f.regs[RegWhoAmI] = whoAmI
	// The chip powers up asleep.
	f.regs[RegPwrMgmt1] = 1 << pwr1SleepBit
	return f
}

func (f *fakeBus) word(reg byte) int16 {
	return int16(uint16(f.regs[reg])<<8 | uint16(f.regs[reg+1]))
}

func (f *fakeBus) setWord(reg byte, v int16) {
	f.regs[reg] = byte(uint16(v) >> 8)
	f.regs[reg+1] = byte(v)
}

func (f *fakeBus) accelOffsetRegs() [3]byte {
	if f.regs[RegWhoAmI] >= WhoAmIMPU6500 {
		return [3]byte{RegXAOffsH6500, RegYAOffsH6500, RegZAOffsH6500}
	}
	return [3]byte{RegXAOffsH, RegYAOffsH, RegZAOffsH}
}

func saturate(v float64) int16 {
	switch {
	case v > 32767:
		return 32767
	case v < -32768:
		return -32768
	}
	return int16(v)
}

// outputs renders ACCEL_XOUT_H..GYRO_ZOUT_L for one sample.
func (f *fakeBus) outputs() [14]byte {
	var n int16
	if f.noise != 0 {
		n = f.noise
		if f.flip {
			n = -n
		}
		f.flip = !f.flip
	}
	var out [14]byte
	put := func(i int, v int16) {
		out[i] = byte(uint16(v) >> 8)
		out[i+1] = byte(v)
	}
	// Offset LSBs are fixed; their weight in output counts halves per range step.
	aScale := 8 / float64(int(1)<<(f.regs[RegAccelConfig]>>3&0x03))
	gScale := 4 / float64(int(1)<<(f.regs[RegGyroConfig]>>3&0x03))
	for i, reg := range f.accelOffsetRegs() {
		put(2*i, saturate(f.accelBias[i]+aScale*float64(f.word(reg))+float64(n)))
	}
	put(6, f.word(RegTempOutH))
	for i, reg := range gyroOffsetRegs {
		put(8+2*i, saturate(f.gyroBias[i]+gScale*float64(f.word(reg))+float64(n)))
	}
	return out
}

func (f *fakeBus) ReadByte(addr uint16, reg byte) (byte, error) {
	b, err := f.ReadBlock(addr, reg, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (f *fakeBus) ReadBlock(addr uint16, reg byte, n int) ([]byte, error) {
	if f.failReads {
		return nil, errBus
	}
	switch {
	case reg == RegFIFORW:
		f.fifoReads = append(f.fifoReads, n)
		if n > len(f.fifo) {
			n = len(f.fifo)
		}
		out := append([]byte(nil), f.fifo[:n]...)
		f.fifo = f.fifo[n:]
		return out, nil
	case reg == RegMemRW:
		out := make([]byte, n)
		for i := range out {
			out[i] = f.mem[f.bank][f.memAddr]
			if f.corrupt {
				out[i] ^= 0x01
			}
			f.memAddr++
		}
		return out, nil
	case reg == RegFIFOCountH:
		f.countReads++
		if f.onCount != nil {
			f.onCount(f)
		}
		c := len(f.fifo)
		if c > FIFOCapacity {
			c = FIFOCapacity
		}
		f.regs[RegFIFOCountH] = byte(c >> 8)
		f.regs[RegFIFOCountL] = byte(c)
	case reg >= RegAccelXOutH && reg <= RegGyroZOutH+1:
		o := f.outputs()
		copy(f.regs[RegAccelXOutH:], o[:])
	}
	out := make([]byte, n)
	copy(out, f.regs[int(reg):])
	return out, nil
}

func (f *fakeBus) WriteByte(addr uint16, reg byte, v byte) error {
	switch reg {
	case RegUserCtrl:
		if v&(1<<userCtrlFIFOResetBit) != 0 {
			f.fifo = nil
			f.fifoResets++
		}
		if v&(1<<userCtrlDMPResetBit) != 0 {
			f.dmpResets++
		}
		v &^= 1<<userCtrlFIFOResetBit | 1<<userCtrlDMPResetBit
	case RegBankSel:
		f.bank = v & 0x1F
	case RegMemStartAddr:
		f.memAddr = v
	}
	f.regs[reg] = v
	return nil
}

func (f *fakeBus) WriteBlock(addr uint16, reg byte, data []byte) error {
	f.blockWrites = append(f.blockWrites, blockWrite{reg: reg, data: append([]byte(nil), data...)})
	if reg == RegMemRW {
		for _, b := range data {
			f.mem[f.bank][f.memAddr] = b
			f.memAddr++
		}
		return nil
	}
	copy(f.regs[int(reg):], data)
	return nil
}

func (f *fakeBus) writesTo(reg byte) []blockWrite {
	var out []blockWrite
	for _, w := range f.blockWrites {
		if w.reg == reg {
			out = append(out, w)
		}
	}
	return out
}

// mockClock is a Clock on a clock.Mock: delays advance mock time instantly.
type mockClock struct {
	m *clock.Mock
}

func newMockClock() *mockClock {
	return &mockClock{m: clock.NewMock()}
}

func (c *mockClock) NowMillis() int64 {
	return c.m.Now().UnixMilli()
}

func (c *mockClock) DelayMicros(n int) {
	c.m.Add(time.Duration(n) * time.Microsecond)
}

func newTestDev(f *fakeBus, opts ...Option) (*Dev, *mockClock) {
	clk := newMockClock()
	d, err := New(f, append([]Option{WithClock(clk)}, opts...)...)
	if err != nil {
		panic(err)
	}
	return d, clk
}
