// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/mpu6050/internal/imu"
	"github.com/relabs-tech/mpu6050/internal/mpu6050"
	"github.com/relabs-tech/mpu6050/internal/sensors"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// CalibrationSession holds the state of one calibration websocket.
type CalibrationSession struct {
	Conn *websocket.Conn
	dev  CalibrationDevice
	dir  string

	// writeMu serializes writes; progress arrives from inside Calibrate.
	writeMu sync.Mutex
	last    *CalibrationResult
}

// WSMessage is a request from the calibration page.
type WSMessage struct {
	Action string `json:"action"` // accel, gyro, all, offsets, save, cancel
	Loops  int    `json:"loops,omitempty"`
}

// WSResponse is sent back to the calibration page.
type WSResponse struct {
	Type     string       `json:"type"` // phase, progress, complete, offsets, saved, error
	Phase    string       `json:"phase,omitempty"`
	Pass     int          `json:"pass,omitempty"`
	Loops    int          `json:"loops,omitempty"`
	Progress float64      `json:"progress,omitempty"`
	Error    []float64    `json:"error,omitempty"`
	Offsets  *imu.Offsets `json:"offsets,omitempty"`
	Results  any          `json:"results,omitempty"`
	Message  string       `json:"message,omitempty"`
}

// HandleCalibrationWS serves /ws/calibration on the shared IMU manager.
func HandleCalibrationWS(w http.ResponseWriter, r *http.Request) {
	mgr := sensors.GetIMUManager()
	if mgr == nil {
		http.Error(w, "IMU manager not initialized", http.StatusServiceUnavailable)
		return
	}
	NewCalibrationHandler(mgr, ".")(w, r)
}

// NewCalibrationHandler returns a websocket handler calibrating dev. Saved
// results go to dir.
func NewCalibrationHandler(dev CalibrationDevice, dir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("calibration: websocket upgrade error: %v", err)
			return
		}
		defer conn.Close()

		s := &CalibrationSession{Conn: conn, dev: dev, dir: dir}
		for {
			var msg WSMessage
			if err := conn.ReadJSON(&msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("calibration: websocket read error: %v", err)
				}
				return
			}
			if msg.Action == "cancel" {
				log.Printf("calibration: cancelled by user")
				return
			}
			if err := s.handle(msg); err != nil {
				s.sendError(err.Error())
			}
		}
	}
}

func (s *CalibrationSession) handle(msg WSMessage) error {
	switch msg.Action {
	case "accel":
		return s.runGroup(mpu6050.AccelGroup, msg.Loops)
	case "gyro":
		return s.runGroup(mpu6050.GyroGroup, msg.Loops)
	case "all":
		res, err := CalibrateDevice(s.dev, msg.Loops, s.sendPass)
		if err != nil {
			return err
		}
		s.last = &res
		return s.send(WSResponse{Type: "complete", Offsets: &res.Offsets, Results: res})
	case "offsets":
		o, err := s.dev.Offsets()
		if err != nil {
			return err
		}
		off := imu.NewOffsets(s.dev.Name(), timeNow(), o)
		return s.send(WSResponse{Type: "offsets", Offsets: &off})
	case "save":
		if s.last == nil {
			return fmt.Errorf("nothing to save, run a full calibration first")
		}
		path, err := SaveCalibration(s.dir, *s.last)
		if err != nil {
			return err
		}
		return s.send(WSResponse{Type: "saved", Results: map[string]any{"filename": path}})
	}
	return fmt.Errorf("unknown action: %s", msg.Action)
}

func (s *CalibrationSession) runGroup(g mpu6050.AxisGroup, loops int) error {
	if loops <= 0 {
		loops = mpu6050.DefaultCalibrationLoops
	}
	if err := s.send(WSResponse{Type: "phase", Phase: g.String(), Loops: loops}); err != nil {
		return err
	}
	o, err := s.dev.Calibrate(g, loops, s.sendPass)
	if err != nil {
		return err
	}
	off := imu.NewOffsets(s.dev.Name(), timeNow(), o)
	return s.send(WSResponse{Type: "complete", Phase: g.String(), Offsets: &off})
}

func (s *CalibrationSession) sendPass(r mpu6050.PassReport) {
	err := s.send(WSResponse{
		Type:     "progress",
		Phase:    r.Group.String(),
		Pass:     r.Pass + 1,
		Loops:    r.Loops,
		Progress: 100 * float64(r.Pass+1) / float64(r.Loops),
		Error:    r.Error[:],
	})
	if err != nil {
		log.Printf("calibration: progress not sent: %v", err)
	}
}

func (s *CalibrationSession) send(resp WSResponse) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.Conn.WriteJSON(resp)
}

func (s *CalibrationSession) sendError(message string) {
	if err := s.send(WSResponse{Type: "error", Message: message}); err != nil {
		log.Printf("calibration: error not sent: %v", err)
	}
}
