// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu6050

import (
	"fmt"
	"math"
)

// Frame is a decoded DMP FIFO frame. Fields not produced by the enabled
// features are left zero and flagged false.
type Frame struct {
	HasQuat bool
	// Quat is W, X, Y, Z as unit-length components.
	Quat [4]float64

	HasAccel bool
	Accel    [3]int16

	HasGyro bool
	Gyro    [3]int16

	HasGesture bool
	Gesture    uint32
}

const q30 = float64(1 << 30)

// DecodePacket splits p into the sections the DMP emits for features, in
// order: quaternion, accelerometer, gyroscope, gesture word.
func DecodePacket(features Features, p Packet) (Frame, error) {
	if want := features.PacketSize(); len(p) != want {
		return Frame{}, fmt.Errorf("%w: frame is %d bytes, features %s need %d", ErrInvalidPacketLength, len(p), features, want)
	}

	var f Frame
	i := 0
	if features&(FeatureLPQuat|Feature6XLPQuat) != 0 {
		for k := 0; k < 4; k++ {
			f.Quat[k] = float64(int32(be32(p[i:]))) / q30
			i += 4
		}
		normalize(&f.Quat)
		f.HasQuat = true
	}
	if features&FeatureSendRawAccel != 0 {
		for k := 0; k < 3; k++ {
			f.Accel[k] = int16(be16(p[i:]))
			i += 2
		}
		f.HasAccel = true
	}
	if features&FeatureSendAnyGyro != 0 {
		for k := 0; k < 3; k++ {
			f.Gyro[k] = int16(be16(p[i:]))
			i += 2
		}
		f.HasGyro = true
	}
	if features&(FeatureTap|FeatureAndroidOrient) != 0 {
		f.Gesture = be32(p[i:])
		f.HasGesture = true
	}
	return f, nil
}

func be16(b []byte) uint16 {
	return uint16(b[0])<<8 | uint16(b[1])
}

func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func normalize(q *[4]float64) {
	n := math.Sqrt(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])
	if n == 0 {
		return
	}
	for i := range q {
		q[i] /= n
	}
}
