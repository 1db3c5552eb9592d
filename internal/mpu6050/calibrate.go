// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu6050

import (
	"fmt"
	"math"
	"time"

	log "github.com/sirupsen/logrus"
)

// DefaultCalibrationLoops is the number of passes used when none is given.
const DefaultCalibrationLoops = 15

// AxisGroup selects which sensor the calibrator works on.
type AxisGroup int

const (
	AccelGroup AxisGroup = iota
	GyroGroup
)

func (g AxisGroup) String() string {
	switch g {
	case AccelGroup:
		return "accel"
	case GyroGroup:
		return "gyro"
	}
	return fmt.Sprintf("group(%d)", int(g))
}

// CalibrationParams tunes the offset feedback loop.
//
// UnitScale is the number of output counts one offset LSB moves the reading
// by at the ±2g and ±250°/s ranges. The accelerometer offsets are in ±16g
// units (8 counts at ±2g) and the gyroscope offsets in ±1000°/s units
// (4 counts at ±250°/s). Calibrate divides the scale by 2^range for the
// range the device is set to.
type CalibrationParams struct {
	AccelKP, AccelKI float64
	GyroKP, GyroKI   float64

	AccelUnitScale float64
	GyroUnitScale  float64

	// Samples is the burst size of the last FinalPasses passes, WarmupSamples
	// the burst size of the passes before them.
	Samples       int
	WarmupSamples int
	FinalPasses   int

	// SampleDelay separates consecutive reads of one burst.
	SampleDelay time.Duration
}

// DefaultCalibrationParams returns the stock tuning.
func DefaultCalibrationParams() CalibrationParams {
	return CalibrationParams{
		AccelKP:        0.3,
		AccelKI:        0.5,
		GyroKP:         0.3,
		GyroKI:         0.6,
		AccelUnitScale: 8,
		GyroUnitScale:  4,
		Samples:        100,
		WarmupSamples:  20,
		FinalPasses:    3,
		SampleDelay:    time.Millisecond,
	}
}

func (p CalibrationParams) gains(g AxisGroup) (kp, ki, scale float64) {
	if g == AccelGroup {
		return p.AccelKP, p.AccelKI, p.AccelUnitScale
	}
	return p.GyroKP, p.GyroKI, p.GyroUnitScale
}

func (p CalibrationParams) burst(pass, loops int) int {
	if pass >= loops-p.FinalPasses || p.WarmupSamples <= 0 {
		return p.Samples
	}
	return p.WarmupSamples
}

// PassReport describes one finished calibration pass.
type PassReport struct {
	Group   AxisGroup
	Pass    int
	Loops   int
	Samples int
	Mean    [3]float64
	Error   [3]float64
	Offsets [3]int16
}

// OnCalibrationPass registers fn to be called after every calibration pass.
func OnCalibrationPass(fn func(PassReport)) Option {
	return func(d *Dev) { d.onPass = fn }
}

// sample accumulates one burst of raw readings for one axis.
type sample struct {
	sum   float64
	count int
}

func (s *sample) add(v int16) {
	s.sum += float64(v)
	s.count++
}

func (s sample) mean() float64 {
	if s.count == 0 {
		return 0
	}
	return s.sum / float64(s.count)
}

// CalibrateAccel nulls the accelerometer bias. The device must rest level,
// Z axis up.
func (d *Dev) CalibrateAccel(loops int) error {
	return d.Calibrate(AccelGroup, loops)
}

// CalibrateGyro nulls the gyroscope bias. The device must be still.
func (d *Dev) CalibrateGyro(loops int) error {
	return d.Calibrate(GyroGroup, loops)
}

// Calibrate drives the three offset registers of group toward a level,
// stationary reading for loops passes (DefaultCalibrationLoops when loops is
// not positive). Every pass reads a burst per axis, compares the mean with
// the target (0, or 1g on accelerometer Z) and writes a proportional plus
// integral correction. Calibration always runs all passes; only bus errors
// are returned. The FIFO and DMP are reset afterwards since their contents
// were produced with the old offsets.
func (d *Dev) Calibrate(group AxisGroup, loops int) error {
	if group != AccelGroup && group != GyroGroup {
		return fmt.Errorf("mpu6050: unknown axis group %d", int(group))
	}
	if loops <= 0 {
		loops = DefaultCalibrationLoops
	}
	kp, ki, scale := d.cal.gains(group)
	if scale <= 0 {
		return fmt.Errorf("mpu6050: %s unit scale must be positive, got %v", group, scale)
	}

	var (
		readReg byte
		first   Axis
		target  [3]float64
		r       byte
		err     error
	)
	if group == AccelGroup {
		readReg, first = RegAccelXOutH, AccelX
		r, err = d.FullScaleAccelRange()
		target[2] = float64(int(16384) >> r)
	} else {
		readReg, first = RegGyroXOutH, GyroX
		r, err = d.FullScaleGyroRange()
	}
	if err != nil {
		return fmt.Errorf("mpu6050: calibrate %s: %w", group, err)
	}
	scale /= float64(int(1) << r)

	// The integral term starts from the offsets already in the device so a
	// short run refines a previous calibration instead of starting over.
	var (
		integral [3]float64
		bitZero  [3]int16
	)
	for i := 0; i < 3; i++ {
		cur, err := d.Offset(first + Axis(i))
		if err != nil {
			return fmt.Errorf("mpu6050: calibrate %s: %w", group, err)
		}
		d.offsets[first+Axis(i)] = cur
		integral[i] = float64(cur) * scale
		if group == AccelGroup {
			bitZero[i] = cur & 1
		}
	}

	l := d.log.WithFields(log.Fields{"group": group.String(), "loops": loops})
	l.Info("calibration started")

	for pass := 0; pass < loops; pass++ {
		n := d.cal.burst(pass, loops)
		acc, err := d.collect(readReg, n)
		if err != nil {
			return fmt.Errorf("mpu6050: calibrate %s pass %d: %w", group, pass, err)
		}

		report := PassReport{Group: group, Pass: pass, Loops: loops, Samples: n}
		for i := 0; i < 3; i++ {
			mean := acc[i].mean()
			e := target[i] - mean
			next := integral[i] + ki*e

			// The integral holds while the output is pinned to the register limits.
			v, clipped := clampInt16(math.Round((kp*e + next) / scale))
			if !clipped {
				integral[i] = next
			}
			if group == AccelGroup {
				v = withBitZero(v, bitZero[i])
			}
			if err := d.SetOffset(first+Axis(i), v); err != nil {
				return fmt.Errorf("mpu6050: calibrate %s pass %d: %w", group, pass, err)
			}
			report.Mean[i] = mean
			report.Error[i] = e
			report.Offsets[i] = v
		}
		l.WithFields(log.Fields{
			"pass":    pass,
			"samples": n,
			"error":   report.Error,
			"offsets": report.Offsets,
		}).Debug("calibration pass")
		if d.onPass != nil {
			d.onPass(report)
		}
	}

	if err := d.ResetFIFO(); err != nil {
		return fmt.Errorf("mpu6050: calibrate %s: %w", group, err)
	}
	if err := d.ResetDMP(); err != nil {
		return fmt.Errorf("mpu6050: calibrate %s: %w", group, err)
	}
	l.WithField("offsets", d.offsets).Info("calibration finished")
	return nil
}

// collect reads n samples of the three consecutive axis registers at reg.
func (d *Dev) collect(reg byte, n int) ([3]sample, error) {
	var acc [3]sample
	delay := int(d.cal.SampleDelay / time.Microsecond)
	for c := 0; c < n; c++ {
		b, err := d.bus.ReadBlock(d.addr, reg, 6)
		if err != nil {
			return acc, err
		}
		if len(b) != 6 {
			return acc, fmt.Errorf("read 0x%02X: got %d bytes", reg, len(b))
		}
		for i := 0; i < 3; i++ {
			acc[i].add(int16(uint16(b[2*i])<<8 | uint16(b[2*i+1])))
		}
		d.clk.DelayMicros(delay)
	}
	return acc, nil
}

func clampInt16(v float64) (int16, bool) {
	switch {
	case v > math.MaxInt16:
		return math.MaxInt16, true
	case v < math.MinInt16:
		return math.MinInt16, true
	}
	return int16(v), false
}

// withBitZero moves v by one LSB, away from zero where possible, when its bit 0
// differs from b. Bit 0 of the accelerometer offsets holds a factory flag and
// must survive the write.
func withBitZero(v int16, b int16) int16 {
	if v&1 == b {
		return v
	}
	if v == math.MaxInt16 {
		return v - 1
	}
	if v == math.MinInt16 || v > 0 {
		return v + 1
	}
	return v - 1
}

// Offsets returns the last known offsets in Axis order.
func (d *Dev) Offsets() [6]int16 {
	return d.offsets
}

// ActiveOffsets re-reads the six offset registers.
func (d *Dev) ActiveOffsets() ([6]int16, error) {
	for a := AccelX; a <= GyroZ; a++ {
		v, err := d.Offset(a)
		if err != nil {
			return d.offsets, fmt.Errorf("mpu6050: read %s offset: %w", a, err)
		}
		d.offsets[a] = v
	}
	return d.offsets, nil
}

// LogActiveOffsets reads the offset registers and logs them.
func (d *Dev) LogActiveOffsets() error {
	o, err := d.ActiveOffsets()
	if err != nil {
		return err
	}
	fields := log.Fields{}
	for a := AccelX; a <= GyroZ; a++ {
		fields[a.String()] = o[a]
	}
	d.log.WithFields(fields).Info("active offsets")
	return nil
}
