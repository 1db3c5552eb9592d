// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"bytes"
	"encoding/json"
	"image"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.viam.com/test"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/relabs-tech/mpu6050/internal/imu"
	"github.com/relabs-tech/mpu6050/internal/orientation"
)

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestWebStateServesLatest(t *testing.T) {
	s := &WebState{}
	h := s.Handler("")

	test.That(t, get(h, "/api/orientation").Code, test.ShouldEqual, http.StatusServiceUnavailable)

	s.pose.set(orientation.Pose{Roll: 1, Pitch: 2, Yaw: 3})
	s.pose.set(orientation.Pose{Roll: 4, Pitch: 5, Yaw: 6})
	rec := get(h, "/api/orientation")
	test.That(t, rec.Code, test.ShouldEqual, http.StatusOK)
	test.That(t, rec.Header().Get("Content-Type"), test.ShouldEqual, "application/json")
	var p orientation.Pose
	test.That(t, json.Unmarshal(rec.Body.Bytes(), &p), test.ShouldBeNil)
	test.That(t, p, test.ShouldResemble, orientation.Pose{Roll: 4, Pitch: 5, Yaw: 6})

	s.offsets.set(imu.Offsets{Source: "imu", GyroZ: -7})
	rec = get(h, "/api/offsets")
	var o imu.Offsets
	test.That(t, json.Unmarshal(rec.Body.Bytes(), &o), test.ShouldBeNil)
	test.That(t, o.GyroZ, test.ShouldEqual, int16(-7))

	test.That(t, get(h, "/api/sample").Code, test.ShouldEqual, http.StatusServiceUnavailable)
	test.That(t, get(h, "/index.html").Code, test.ShouldEqual, http.StatusNotFound)
}

func TestConsoleFormatting(t *testing.T) {
	test.That(t, formatPose(orientation.Pose{Roll: 1.5, Pitch: -2.25, Yaw: 180}), test.ShouldEqual,
		"[POSE]  ROLL=  1.50  PITCH= -2.25  YAW=180.00")

	s := imu.Sample{Ax: 1, Ay: 2, Az: 16384, Gx: -1, Gy: 0, Gz: 5}
	test.That(t, formatSample(s), test.ShouldEqual,
		"[IMU ]  ax=     1 ay=     2 az= 16384  gx=    -1 gy=     0 gz=     5")
	q := [4]float64{1, 0, 0, 0}
	s.Quat = &q
	test.That(t, formatSample(s), test.ShouldEndWith, "q=(1.000 0.000 0.000 0.000)")

	o := imu.Offsets{Source: "imu", AccelX: -1200, AccelY: 300, AccelZ: 1500, GyroX: 12, GyroY: -40, GyroZ: 7}
	test.That(t, formatOffsets(o), test.ShouldEqual, "[OFFS]  imu accel=-1200,300,1500 gyro=12,-40,7")

	var buf bytes.Buffer
	printer(&buf, formatOffsets)(o)
	test.That(t, buf.String(), test.ShouldEqual, formatOffsets(o)+"\n")
}

type fakeScreen struct {
	frames []image.Image
}

func (f *fakeScreen) Bounds() image.Rectangle { return image.Rect(0, 0, 128, 64) }

func (f *fakeScreen) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	f.frames = append(f.frames, src)
	return nil
}

func litPixels(img image.Image) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.At(x, y) == image1bit.On {
				n++
			}
		}
	}
	return n
}

func TestDisplayPages(t *testing.T) {
	s := &WebState{}
	scr := &fakeScreen{}

	// Every page has something to say even before data arrives.
	for n := 0; n < numPages*ticksPerPage; n += ticksPerPage {
		test.That(t, updateDisplay(scr, n, s), test.ShouldBeNil)
	}
	test.That(t, len(scr.frames), test.ShouldEqual, numPages)
	for _, f := range scr.frames {
		test.That(t, litPixels(f), test.ShouldBeGreaterThan, 0)
	}

	waiting := litPixels(renderPage(pageOrientation, s))
	s.pose.set(orientation.Pose{Roll: -12.5, Pitch: 3, Yaw: 270})
	test.That(t, litPixels(renderPage(pageOrientation, s)), test.ShouldNotEqual, waiting)

	s.offsets.set(imu.Offsets{Time: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)})
	test.That(t, litPixels(renderPage(pageOffsets, s)), test.ShouldBeGreaterThan, 0)
	test.That(t, showSplash(scr), test.ShouldBeNil)
}

func TestMockSample(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := mockSample(now, orientation.Pose{})
	test.That(t, s.Source, test.ShouldEqual, "mock")
	test.That(t, s.Ax, test.ShouldEqual, int16(0))
	test.That(t, s.Ay, test.ShouldEqual, int16(0))
	test.That(t, s.Az, test.ShouldEqual, int16(oneG))
	test.That(t, s.Quat[0], test.ShouldAlmostEqual, 1.0)

	// A tilted sample reads back as the pose it was built from.
	pose := orientation.Pose{Roll: 20, Pitch: -10, Yaw: 45}
	s = mockSample(now, pose)
	got := orientation.ComputePoseFromAccel(float64(s.Ax), float64(s.Ay), float64(s.Az))
	test.That(t, got.Roll, test.ShouldAlmostEqual, pose.Roll, 0.1)
	test.That(t, got.Pitch, test.ShouldAlmostEqual, pose.Pitch, 0.1)
	q := orientation.ComputePoseFromQuat(orientation.Quat(*s.Quat))
	test.That(t, q.Yaw, test.ShouldAlmostEqual, pose.Yaw, 0.1)
}
