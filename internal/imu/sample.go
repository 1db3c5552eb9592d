// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

import (
	"time"

	"github.com/relabs-tech/mpu6050/internal/mpu6050"
)

// Sample is one decoded FIFO frame as published over MQTT.
type Sample struct {
	Source string    `json:"source"`
	Time   time.Time `json:"time"`

	Ax int16 `json:"ax"` // accel
	Ay int16 `json:"ay"`
	Az int16 `json:"az"`

	Gx int16 `json:"gx"` // gyro
	Gy int16 `json:"gy"`
	Gz int16 `json:"gz"`

	// Quaternion W, X, Y, Z; omitted when the DMP does not emit one.
	Quat *[4]float64 `json:"quat,omitempty"`

	Gesture uint32 `json:"gesture,omitempty"`
}

// FromFrame builds a Sample from a decoded DMP frame.
func FromFrame(source string, t time.Time, f mpu6050.Frame) Sample {
	s := Sample{Source: source, Time: t}
	if f.HasAccel {
		s.Ax, s.Ay, s.Az = f.Accel[0], f.Accel[1], f.Accel[2]
	}
	if f.HasGyro {
		s.Gx, s.Gy, s.Gz = f.Gyro[0], f.Gyro[1], f.Gyro[2]
	}
	if f.HasQuat {
		q := f.Quat
		s.Quat = &q
	}
	if f.HasGesture {
		s.Gesture = f.Gesture
	}
	return s
}

// FromMotion builds a Sample from a direct register read.
func FromMotion(source string, t time.Time, m mpu6050.Motion) Sample {
	return Sample{
		Source: source,
		Time:   t,
		Ax:     m.Ax,
		Ay:     m.Ay,
		Az:     m.Az,
		Gx:     m.Gx,
		Gy:     m.Gy,
		Gz:     m.Gz,
	}
}

// Offsets is the set of hardware offsets found by a calibration run.
type Offsets struct {
	Source string    `json:"source"`
	Time   time.Time `json:"time"`

	AccelX int16 `json:"accel_x"`
	AccelY int16 `json:"accel_y"`
	AccelZ int16 `json:"accel_z"`
	GyroX  int16 `json:"gyro_x"`
	GyroY  int16 `json:"gyro_y"`
	GyroZ  int16 `json:"gyro_z"`
}

// NewOffsets converts the driver offset array, in mpu6050.Axis order.
func NewOffsets(source string, t time.Time, o [6]int16) Offsets {
	return Offsets{
		Source: source,
		Time:   t,
		AccelX: o[mpu6050.AccelX],
		AccelY: o[mpu6050.AccelY],
		AccelZ: o[mpu6050.AccelZ],
		GyroX:  o[mpu6050.GyroX],
		GyroY:  o[mpu6050.GyroY],
		GyroZ:  o[mpu6050.GyroZ],
	}
}

// Array returns the offsets in mpu6050.Axis order.
func (o Offsets) Array() [6]int16 {
	return [6]int16{o.AccelX, o.AccelY, o.AccelZ, o.GyroX, o.GyroY, o.GyroZ}
}

// SampleSource yields samples one at a time.
type SampleSource interface {
	NextSample() (Sample, error)
}
