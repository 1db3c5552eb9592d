// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

import (
	"encoding/json"
	"testing"
	"time"

	"go.viam.com/test"

	"github.com/relabs-tech/mpu6050/internal/mpu6050"
)

func TestFromFrame(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	f := mpu6050.Frame{
		HasAccel: true,
		Accel:    [3]int16{1, 2, 16384},
		HasGyro:  true,
		Gyro:     [3]int16{-3, 4, 5},
	}
	s := FromFrame("mpu6050", now, f)
	test.That(t, s.Az, test.ShouldEqual, int16(16384))
	test.That(t, s.Gx, test.ShouldEqual, int16(-3))
	test.That(t, s.Quat, test.ShouldBeNil)

	b, err := json.Marshal(s)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(b), test.ShouldNotContainSubstring, "quat")

	f.HasQuat = true
	f.Quat = [4]float64{1, 0, 0, 0}
	s = FromFrame("mpu6050", now, f)
	test.That(t, s.Quat, test.ShouldNotBeNil)
	test.That(t, s.Quat[0], test.ShouldEqual, 1.0)
}

func TestOffsetsRoundTrip(t *testing.T) {
	o := [6]int16{-1200, 300, 1100, 17, -4, 90}
	off := NewOffsets("mpu6050", time.Time{}, o)
	test.That(t, off.AccelZ, test.ShouldEqual, int16(1100))
	test.That(t, off.GyroY, test.ShouldEqual, int16(-4))
	test.That(t, off.Array(), test.ShouldResemble, o)
}
