// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"errors"
	"fmt"
	"sync"

	"github.com/relabs-tech/mpu6050/internal/mpu6050"
	"github.com/relabs-tech/mpu6050/internal/sensors"
)

type published struct {
	topic    string
	retained bool
	v        any
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (p *fakePublisher) PublishJSON(topic string, retained bool, v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, published{topic, retained, v})
	return nil
}

type frameResult struct {
	f   mpu6050.Frame
	err error
}

type fakeSource struct {
	results []frameResult
}

func (s *fakeSource) Name() string { return "fake" }

func (s *fakeSource) NextFrame() (mpu6050.Frame, error) {
	if len(s.results) == 0 {
		return mpu6050.Frame{}, errors.New("no more frames")
	}
	r := s.results[0]
	s.results = s.results[1:]
	return r.f, r.err
}

// fakeDevice stands in for sensors.IMUManager.
type fakeDevice struct {
	offsets [6]int16
	regs    map[byte]byte
	motion  mpu6050.Motion
	calls   []mpu6050.AxisGroup
	failCal bool
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{regs: map[byte]byte{0x75: 0x68, 0x1B: 0x00}}
}

func (d *fakeDevice) Name() string { return "fake" }

func (d *fakeDevice) Calibrate(g mpu6050.AxisGroup, loops int, onPass func(mpu6050.PassReport)) ([6]int16, error) {
	if d.failCal {
		return d.offsets, errors.New("bus failure")
	}
	d.calls = append(d.calls, g)
	first := 0
	if g == mpu6050.GyroGroup {
		first = 3
	}
	for pass := 0; pass < loops; pass++ {
		for i := 0; i < 3; i++ {
			d.offsets[first+i] = int16((pass + 1) * (first + i + 1))
		}
		if onPass != nil {
			e := float64(loops - pass)
			onPass(mpu6050.PassReport{
				Group: g, Pass: pass, Loops: loops,
				Error:   [3]float64{e, -e, e / 2},
				Offsets: [3]int16{d.offsets[first], d.offsets[first+1], d.offsets[first+2]},
			})
		}
	}
	return d.offsets, nil
}

func (d *fakeDevice) Offsets() ([6]int16, error) { return d.offsets, nil }

func (d *fakeDevice) SetOffsets(o [6]int16) error {
	d.offsets = o
	return nil
}

func (d *fakeDevice) ReadRegister(reg byte) (byte, error) {
	v, ok := d.regs[reg]
	if !ok {
		return 0, fmt.Errorf("0x%02X: %w", reg, sensors.ErrNotWritable)
	}
	return v, nil
}

func (d *fakeDevice) WriteRegister(reg, value byte) error {
	if reg == 0x75 {
		return fmt.Errorf("0x%02X: %w", reg, sensors.ErrNotWritable)
	}
	d.regs[reg] = value
	return nil
}

func (d *fakeDevice) ReadAllRegisters() (map[string]byte, error) {
	out := map[string]byte{}
	for k, v := range d.regs {
		out[fmt.Sprintf("0x%02X", k)] = v
	}
	return out, nil
}

func (d *fakeDevice) GetRegisterMap() []sensors.RegisterInfo {
	return []sensors.RegisterInfo{
		{Address: "0x1B", Name: "GYRO_CONFIG", Access: "RW"},
		{Address: "0x75", Name: "WHO_AM_I", Access: "R"},
	}
}

func (d *fakeDevice) Motion() (mpu6050.Motion, error) { return d.motion, nil }
