// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"fmt"

	"github.com/relabs-tech/mpu6050/internal/mpu6050"
)

// PacketReader yields FIFO frames, as *mpu6050.Dev does.
type PacketReader interface {
	CurrentPacket() (mpu6050.Packet, error)
}

type imuSource struct {
	name     string
	dev      PacketReader
	features mpu6050.Features
	last     mpu6050.Frame
}

// NewIMUSource returns a Source reading DMP frames from dev. Frames carrying a
// quaternion give a full pose; accelerometer-only frames give roll and pitch.
func NewIMUSource(name string, dev PacketReader, features mpu6050.Features) Source {
	return &imuSource{name: name, dev: dev, features: features}
}

func (s *imuSource) Next() (Pose, error) {
	p, err := s.dev.CurrentPacket()
	if err != nil {
		return Pose{}, fmt.Errorf("%s IMU packet: %w", s.name, err)
	}
	f, err := mpu6050.DecodePacket(s.features, p)
	if err != nil {
		return Pose{}, fmt.Errorf("%s IMU decode: %w", s.name, err)
	}
	s.last = f
	return PoseFromFrame(f)
}

// LastFrame returns the frame behind the most recent pose.
func (s *imuSource) LastFrame() mpu6050.Frame {
	return s.last
}

// PoseFromFrame picks the best pose estimate a frame supports.
func PoseFromFrame(f mpu6050.Frame) (Pose, error) {
	switch {
	case f.HasQuat:
		return ComputePoseFromQuat(Quat(f.Quat)), nil
	case f.HasAccel:
		return ComputePoseFromAccel(float64(f.Accel[0]), float64(f.Accel[1]), float64(f.Accel[2])), nil
	}
	return Pose{}, fmt.Errorf("frame carries neither quaternion nor accelerometer data")
}
