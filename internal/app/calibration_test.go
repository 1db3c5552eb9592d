// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"go.viam.com/test"

	"github.com/relabs-tech/mpu6050/internal/mpu6050"
)

func pinTime(t *testing.T) time.Time {
	t.Helper()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	old := timeNow
	timeNow = func() time.Time { return now }
	t.Cleanup(func() { timeNow = old })
	return now
}

func TestCalibrateDevice(t *testing.T) {
	now := pinTime(t)
	dev := newFakeDevice()

	var passes int
	res, err := CalibrateDevice(dev, 3, func(mpu6050.PassReport) { passes++ })
	test.That(t, err, test.ShouldBeNil)
	test.That(t, dev.calls, test.ShouldResemble, []mpu6050.AxisGroup{mpu6050.AccelGroup, mpu6050.GyroGroup})
	test.That(t, passes, test.ShouldEqual, 6)

	test.That(t, res.Version, test.ShouldEqual, 1)
	test.That(t, res.Source, test.ShouldEqual, "fake")
	test.That(t, res.Loops, test.ShouldEqual, 3)
	test.That(t, res.Timestamp.Equal(now), test.ShouldBeTrue)
	test.That(t, res.Offsets.Array(), test.ShouldResemble, [6]int16{3, 6, 9, 12, 15, 18})
	// Residuals come from the last pass of each group.
	test.That(t, res.AccelResidual, test.ShouldResemble, [3]float64{1, -1, 0.5})
	test.That(t, res.GyroResidual, test.ShouldResemble, [3]float64{1, -1, 0.5})
}

func TestCalibrateDeviceDefaultsLoops(t *testing.T) {
	res, err := CalibrateDevice(newFakeDevice(), 0, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res.Loops, test.ShouldEqual, mpu6050.DefaultCalibrationLoops)
}

func TestCalibrateDeviceError(t *testing.T) {
	dev := newFakeDevice()
	dev.failCal = true
	_, err := CalibrateDevice(dev, 2, nil)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "accel")
}

func TestSaveAndApplyCalibration(t *testing.T) {
	now := pinTime(t)
	dir := t.TempDir()
	res, err := CalibrateDevice(newFakeDevice(), 2, nil)
	test.That(t, err, test.ShouldBeNil)

	path, err := SaveCalibration(dir, res)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, filepath.Base(path), test.ShouldEqual, "fake_"+strconv.FormatInt(now.Unix(), 10)+"_offsets.json")

	loaded, err := LoadCalibration(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, loaded.Offsets.Array(), test.ShouldResemble, res.Offsets.Array())
	test.That(t, loaded.Timestamp.Equal(now), test.ShouldBeTrue)

	dev := newFakeDevice()
	off, err := ApplyCalibration(dev, path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, dev.offsets, test.ShouldResemble, res.Offsets.Array())
	test.That(t, off.Source, test.ShouldEqual, "fake")
}

func TestLoadCalibrationErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadCalibration(filepath.Join(dir, "missing.json"))
	test.That(t, err, test.ShouldNotBeNil)

	bad := filepath.Join(dir, "bad.json")
	test.That(t, os.WriteFile(bad, []byte("{"), 0o644), test.ShouldBeNil)
	_, err = LoadCalibration(bad)
	test.That(t, err, test.ShouldNotBeNil)

	future := filepath.Join(dir, "future.json")
	test.That(t, os.WriteFile(future, []byte(`{"version": 7}`), 0o644), test.ShouldBeNil)
	_, err = LoadCalibration(future)
	test.That(t, err.Error(), test.ShouldContainSubstring, "unsupported version")
}
