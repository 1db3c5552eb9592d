// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"

	"github.com/benbjohnson/clock"
)

type mockSource struct {
	clk   clock.Clock
	start int64
}

// NewMockSource creates a mock orientation source that generates smoothly
// changing values. A nil clk uses the wall clock.
func NewMockSource(clk clock.Clock) Source {
	if clk == nil {
		clk = clock.New()
	}
	return &mockSource{clk: clk, start: clk.Now().UnixNano()}
}

func (m *mockSource) Next() (Pose, error) {
	elapsed := float64(m.clk.Now().UnixNano()-m.start) / 1e9

	return Pose{
		Roll:  20 * math.Sin(elapsed),
		Pitch: 15 * math.Cos(elapsed*0.7),
		Yaw:   math.Mod(elapsed*30, 360),
	}, nil
}
