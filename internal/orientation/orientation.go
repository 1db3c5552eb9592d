// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Pose is roll, pitch and yaw in degrees.
type Pose struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// Source is anything that can provide poses over time.
type Source interface {
	Next() (Pose, error)
}

// ComputePoseFromAccel computes roll and pitch from accelerometer data only.
// Yaw is unobservable from gravity and set to 0.
//
//	roll  = atan2(ay, az)
//	pitch = atan2(-ax, sqrt(ay² + az²))
func ComputePoseFromAccel(ax, ay, az float64) Pose {
	return Pose{
		Roll:  mgl64.RadToDeg(math.Atan2(ay, az)),
		Pitch: mgl64.RadToDeg(math.Atan2(-ax, math.Sqrt(ay*ay+az*az))),
	}
}

// Quat builds a unit quaternion from W, X, Y, Z components.
func Quat(c [4]float64) mgl64.Quat {
	return mgl64.Quat{W: c[0], V: mgl64.Vec3{c[1], c[2], c[3]}}.Normalize()
}

// Gravity returns the gravity direction in the sensor frame for orientation q.
func Gravity(q mgl64.Quat) mgl64.Vec3 {
	return q.Conjugate().Rotate(mgl64.Vec3{0, 0, 1})
}

// ComputePoseFromQuat converts a DMP quaternion to a pose. Roll and pitch use
// the same tilt formulas as ComputePoseFromAccel applied to the gravity
// vector, so both agree on a resting device.
func ComputePoseFromQuat(q mgl64.Quat) Pose {
	q = q.Normalize()
	g := Gravity(q)
	p := ComputePoseFromAccel(g.X(), g.Y(), g.Z())
	w, x, y, z := q.W, q.X(), q.Y(), q.Z()
	p.Yaw = mgl64.RadToDeg(math.Atan2(2*(w*z+x*y), 1-2*(y*y+z*z)))
	return p
}
