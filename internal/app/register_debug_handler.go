// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/mpu6050/internal/imu"
	"github.com/relabs-tech/mpu6050/internal/mpu6050"
	"github.com/relabs-tech/mpu6050/internal/sensors"
)

// RegisterDevice is the part of sensors.IMUManager the register debugger uses.
type RegisterDevice interface {
	Name() string
	ReadRegister(reg byte) (byte, error)
	WriteRegister(reg, value byte) error
	ReadAllRegisters() (map[string]byte, error)
	GetRegisterMap() []sensors.RegisterInfo
	Offsets() ([6]int16, error)
	Motion() (mpu6050.Motion, error)
}

// RegisterDebugSession holds WebSocket connection state for register debugging.
type RegisterDebugSession struct {
	Conn *websocket.Conn
	dev  RegisterDevice
}

// RegisterCmd is a request from the register debug page.
type RegisterCmd struct {
	Action  string `json:"action"` // get_map, read, read_all, write, offsets
	Address string `json:"addr,omitempty"`
	Value   string `json:"value,omitempty"`
}

// RegisterResponse is sent back to the register debug page.
type RegisterResponse struct {
	Type        string                 `json:"type"` // register_map, register_data, offsets, error
	Device      string                 `json:"device,omitempty"`
	Address     string                 `json:"addr,omitempty"`
	Value       string                 `json:"value,omitempty"`
	Registers   map[string]string      `json:"registers,omitempty"`
	Timestamp   string                 `json:"timestamp,omitempty"`
	Message     string                 `json:"message,omitempty"`
	RegisterMap []sensors.RegisterInfo `json:"register_map,omitempty"`
	Offsets     *imu.Offsets           `json:"offsets,omitempty"`
}

// HandleRegisterDebugWS serves /ws/registers on the shared IMU manager.
func HandleRegisterDebugWS(w http.ResponseWriter, r *http.Request) {
	mgr := sensors.GetIMUManager()
	if mgr == nil {
		http.Error(w, "IMU manager not initialized", http.StatusServiceUnavailable)
		return
	}
	NewRegisterDebugHandler(mgr)(w, r)
}

// NewRegisterDebugHandler returns a websocket handler exposing the registers
// of dev. The register map is sent as soon as the connection opens.
func NewRegisterDebugHandler(dev RegisterDevice) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("register_debug: websocket upgrade error: %v", err)
			return
		}
		defer conn.Close()

		s := &RegisterDebugSession{Conn: conn, dev: dev}
		if err := s.sendRegisterMap(); err != nil {
			log.Printf("register_debug: error sending register map: %v", err)
			return
		}

		for {
			var cmd RegisterCmd
			if err := conn.ReadJSON(&cmd); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("register_debug: websocket error: %v", err)
				}
				return
			}

			switch cmd.Action {
			case "get_map":
				err = s.sendRegisterMap()
			case "read":
				err = s.handleRead(cmd)
			case "read_all":
				err = s.handleReadAll()
			case "write":
				err = s.handleWrite(cmd)
			case "offsets":
				err = s.handleOffsets()
			default:
				err = fmt.Errorf("unknown action: %s", cmd.Action)
			}
			if err != nil {
				s.sendError(err.Error())
			}
		}
	}
}

func (s *RegisterDebugSession) handleRead(cmd RegisterCmd) error {
	addr, err := parseHexByte("address", cmd.Address)
	if err != nil {
		return err
	}
	value, err := s.dev.ReadRegister(addr)
	if err != nil {
		return fmt.Errorf("read error: %w", err)
	}
	return s.Conn.WriteJSON(RegisterResponse{
		Type:      "register_data",
		Device:    s.dev.Name(),
		Address:   fmt.Sprintf("0x%02X", addr),
		Value:     fmt.Sprintf("0x%02X", value),
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func (s *RegisterDebugSession) handleReadAll() error {
	regs, err := s.dev.ReadAllRegisters()
	if err != nil {
		return fmt.Errorf("read all error: %w", err)
	}
	regMap := make(map[string]string, len(regs))
	for addr, value := range regs {
		regMap[addr] = fmt.Sprintf("0x%02X", value)
	}
	return s.Conn.WriteJSON(RegisterResponse{
		Type:      "register_data",
		Device:    s.dev.Name(),
		Registers: regMap,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func (s *RegisterDebugSession) handleWrite(cmd RegisterCmd) error {
	addr, err := parseHexByte("address", cmd.Address)
	if err != nil {
		return err
	}
	value, err := parseHexByte("value", cmd.Value)
	if err != nil {
		return err
	}
	if err := s.dev.WriteRegister(addr, value); err != nil {
		return fmt.Errorf("write error: %w", err)
	}
	return s.Conn.WriteJSON(RegisterResponse{
		Type:      "register_data",
		Device:    s.dev.Name(),
		Address:   fmt.Sprintf("0x%02X", addr),
		Value:     fmt.Sprintf("0x%02X", value),
		Timestamp: time.Now().Format(time.RFC3339),
		Message:   "write successful",
	})
}

func (s *RegisterDebugSession) handleOffsets() error {
	o, err := s.dev.Offsets()
	if err != nil {
		return fmt.Errorf("read offsets error: %w", err)
	}
	off := imu.NewOffsets(s.dev.Name(), time.Now(), o)
	return s.Conn.WriteJSON(RegisterResponse{Type: "offsets", Device: s.dev.Name(), Offsets: &off})
}

func (s *RegisterDebugSession) sendRegisterMap() error {
	return s.Conn.WriteJSON(RegisterResponse{
		Type:        "register_map",
		Device:      s.dev.Name(),
		RegisterMap: s.dev.GetRegisterMap(),
	})
}

func (s *RegisterDebugSession) sendError(message string) {
	if err := s.Conn.WriteJSON(RegisterResponse{Type: "error", Message: message}); err != nil {
		log.Printf("register_debug: error not sent: %v", err)
	}
}

// parseHexByte parses a hex byte with or without the 0x prefix.
func parseHexByte(what, s string) (byte, error) {
	if s == "" {
		return 0, fmt.Errorf("missing %s field", what)
	}
	digits := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(digits, 16, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid %s format: %s", what, s)
	}
	return byte(v), nil
}

// NewIMUDataHandler serves the current accelerometer and gyroscope output
// registers of dev as JSON.
func NewIMUDataHandler(dev RegisterDevice) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Access-Control-Allow-Origin", "*")

		m, err := dev.Motion()
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}
		json.NewEncoder(w).Encode(imu.FromMotion(dev.Name(), time.Now(), m))
	}
}

// HandleIMUData serves live register readings of the shared IMU manager.
func HandleIMUData(w http.ResponseWriter, r *http.Request) {
	mgr := sensors.GetIMUManager()
	if mgr == nil {
		http.Error(w, `{"error": "IMU manager not initialized"}`, http.StatusServiceUnavailable)
		return
	}
	NewIMUDataHandler(mgr)(w, r)
}
