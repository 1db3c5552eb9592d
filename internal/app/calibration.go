// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/mpu6050/internal/config"
	"github.com/relabs-tech/mpu6050/internal/imu"
	"github.com/relabs-tech/mpu6050/internal/mpu6050"
	"github.com/relabs-tech/mpu6050/internal/sensors"
)

// timeNow stamps results and offsets.
var timeNow = time.Now

// CalibrationDevice is the part of sensors.IMUManager calibration needs.
type CalibrationDevice interface {
	Name() string
	Calibrate(group mpu6050.AxisGroup, loops int, onPass func(mpu6050.PassReport)) ([6]int16, error)
	Offsets() ([6]int16, error)
	SetOffsets(o [6]int16) error
}

// CalibrationResult is the file written after a calibration run.
type CalibrationResult struct {
	Version   int       `json:"version"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	Loops     int       `json:"loops"`

	Offsets imu.Offsets `json:"offsets"`

	// Residual is the target minus the mean reading of the last pass.
	AccelResidual [3]float64 `json:"accel_residual"`
	GyroResidual  [3]float64 `json:"gyro_residual"`
}

// CalibrateDevice runs the accelerometer and then the gyroscope calibration.
// The device must rest level, Z axis up, for the whole run.
func CalibrateDevice(dev CalibrationDevice, loops int, onPass func(mpu6050.PassReport)) (CalibrationResult, error) {
	if loops <= 0 {
		loops = mpu6050.DefaultCalibrationLoops
	}
	res := CalibrationResult{
		Version:   1,
		Source:    dev.Name(),
		Timestamp: timeNow(),
		Loops:     loops,
	}
	track := func(r mpu6050.PassReport) {
		if r.Group == mpu6050.AccelGroup {
			res.AccelResidual = r.Error
		} else {
			res.GyroResidual = r.Error
		}
		if onPass != nil {
			onPass(r)
		}
	}

	for _, g := range []mpu6050.AxisGroup{mpu6050.AccelGroup, mpu6050.GyroGroup} {
		log.Printf("%s IMU: calibrating %s (%d loops)", dev.Name(), g, loops)
		if _, err := dev.Calibrate(g, loops, track); err != nil {
			return res, fmt.Errorf("%s IMU: calibrate %s: %w", dev.Name(), g, err)
		}
	}

	o, err := dev.Offsets()
	if err != nil {
		return res, fmt.Errorf("%s IMU: read offsets: %w", dev.Name(), err)
	}
	res.Offsets = imu.NewOffsets(dev.Name(), res.Timestamp, o)
	log.WithFields(log.Fields{
		"accel": o[:3],
		"gyro":  o[3:],
	}).Infof("%s IMU: calibration complete", dev.Name())
	return res, nil
}

// SaveCalibration writes r as <source>_<unix time>_offsets.json into dir and
// returns the file path.
func SaveCalibration(dir string, r CalibrationResult) (string, error) {
	name := fmt.Sprintf("%s_%d_offsets.json", r.Source, r.Timestamp.Unix())
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal calibration results: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write calibration file: %w", err)
	}
	log.Printf("calibration: saved results to %s", path)
	return path, nil
}

// LoadCalibration reads a file written by SaveCalibration.
func LoadCalibration(path string) (CalibrationResult, error) {
	var r CalibrationResult
	data, err := os.ReadFile(path)
	if err != nil {
		return r, fmt.Errorf("failed to read calibration file: %w", err)
	}
	if err := json.Unmarshal(data, &r); err != nil {
		return r, fmt.Errorf("failed to parse calibration file %s: %w", path, err)
	}
	if r.Version != 1 {
		return r, fmt.Errorf("calibration file %s: unsupported version %d", path, r.Version)
	}
	return r, nil
}

// ApplyCalibration writes the offsets stored in path to dev.
func ApplyCalibration(dev CalibrationDevice, path string) (imu.Offsets, error) {
	r, err := LoadCalibration(path)
	if err != nil {
		return imu.Offsets{}, err
	}
	if err := dev.SetOffsets(r.Offsets.Array()); err != nil {
		return imu.Offsets{}, fmt.Errorf("%s IMU: apply offsets: %w", dev.Name(), err)
	}
	log.Printf("%s IMU: applied offsets from %s", dev.Name(), path)
	return r.Offsets, nil
}

// CalibrationOptions selects what RunCalibration does besides calibrating.
type CalibrationOptions struct {
	Loops     int
	OutputDir string
	Publish   bool
	// Apply, when set, loads offsets from this file instead of calibrating.
	Apply string
}

// RunCalibration calibrates the configured device, saves the offsets and
// optionally publishes them.
func RunCalibration(opts CalibrationOptions) error {
	cfg := config.Get()
	if err := sensors.InitIMUManager("imu"); err != nil {
		return fmt.Errorf("failed to initialize IMU manager: %w", err)
	}
	mgr := sensors.GetIMUManager()

	var offsets imu.Offsets
	if opts.Apply != "" {
		o, err := ApplyCalibration(mgr, opts.Apply)
		if err != nil {
			return err
		}
		offsets = o
	} else {
		loops := opts.Loops
		if loops <= 0 {
			loops = cfg.CalLoops
		}
		res, err := CalibrateDevice(mgr, loops, func(r mpu6050.PassReport) {
			log.Printf("%s pass %d/%d: error %6.1f %6.1f %6.1f  offsets %6d %6d %6d",
				r.Group, r.Pass+1, r.Loops, r.Error[0], r.Error[1], r.Error[2],
				r.Offsets[0], r.Offsets[1], r.Offsets[2])
		})
		if err != nil {
			return err
		}
		if _, err := SaveCalibration(opts.OutputDir, res); err != nil {
			return err
		}
		offsets = res.Offsets
	}

	if !opts.Publish {
		return nil
	}
	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDCalib)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)
	return mqttPublisher{client: client}.PublishJSON(cfg.TopicOffsets, true, offsets)
}
