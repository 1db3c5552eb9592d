// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/mpu6050/internal/bus"
	"github.com/relabs-tech/mpu6050/internal/config"
	"github.com/relabs-tech/mpu6050/internal/mpu6050"
)

var (
	accelRanges = []int{2, 4, 8, 16}
	gyroRanges  = []int{250, 500, 1000, 2000}
)

// OpenBus opens the bus named by the configuration: SPI when SPI_DEVICE is
// set, I2C otherwise.
func OpenBus(cfg *config.Config) (bus.Register, error) {
	if cfg.SPIDevice != "" {
		return bus.OpenSPI(cfg.SPIDevice)
	}
	return bus.OpenI2C(cfg.I2CBus)
}

// NewDevice builds a driver on b using the configured address, FIFO timeout
// and calibration tuning. Extra options are applied last.
func NewDevice(name string, b mpu6050.Bus, cfg *config.Config, opts ...mpu6050.Option) (*mpu6050.Dev, error) {
	base := []mpu6050.Option{
		mpu6050.Address(cfg.I2CAddr),
		mpu6050.FIFOTimeout(cfg.FIFOTimeout),
		mpu6050.Calibration(cfg.CalibrationParams()),
		mpu6050.WithLogger(log.WithField("imu", name)),
	}
	dev, err := mpu6050.New(b, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("%s IMU: device creation: %w", name, err)
	}
	return dev, nil
}

// Configure initializes dev and applies the configured ranges, filter and
// sample rate. When a DMP firmware path is configured the image is uploaded
// and the DMP started with the configured features; otherwise the raw
// accelerometer and gyroscope registers are streamed into the FIFO.
func Configure(name string, dev *mpu6050.Dev, cfg *config.Config) error {
	l := log.WithField("imu", name)
	if err := dev.Init(); err != nil {
		return fmt.Errorf("%s IMU: initialization: %w", name, err)
	}

	if err := dev.SetFullScaleAccelRange(cfg.AccelRange); err != nil {
		return fmt.Errorf("%s IMU: set accel range: %w", name, err)
	}
	l.Infof("accelerometer range set to %d (±%dg)", cfg.AccelRange, accelRanges[cfg.AccelRange])

	if err := dev.SetFullScaleGyroRange(cfg.GyroRange); err != nil {
		return fmt.Errorf("%s IMU: set gyro range: %w", name, err)
	}
	l.Infof("gyroscope range set to %d (±%d°/s)", cfg.GyroRange, gyroRanges[cfg.GyroRange])

	if err := dev.SetDLPFMode(cfg.DLPFConfig); err != nil {
		return fmt.Errorf("%s IMU: set DLPF config: %w", name, err)
	}
	l.Infof("DLPF config set to %d", cfg.DLPFConfig)

	if err := dev.SetRate(cfg.SampleRateDiv); err != nil {
		return fmt.Errorf("%s IMU: set sample rate divider: %w", name, err)
	}
	internalRate := 1000 // 1kHz with DLPF enabled
	if cfg.DLPFConfig == 0 {
		internalRate = 8000
	}
	l.Infof("sample rate divider set to %d (output rate: %d Hz)", cfg.SampleRateDiv, internalRate/(1+int(cfg.SampleRateDiv)))

	if cfg.DMPFirmware == "" {
		return startRawFIFO(l, name, dev)
	}
	image, err := os.ReadFile(cfg.DMPFirmware)
	if err != nil {
		return fmt.Errorf("%s IMU: read DMP firmware: %w", name, err)
	}
	if err := dev.LoadFirmware(image); err != nil {
		return fmt.Errorf("%s IMU: load DMP firmware: %w", name, err)
	}
	l.Infof("DMP firmware loaded from %s (%d bytes)", cfg.DMPFirmware, len(image))
	if err := dev.StartDMP(cfg.DMPFeatures); err != nil {
		return fmt.Errorf("%s IMU: start DMP: %w", name, err)
	}
	return nil
}

// RawFeatures describes the frames produced by startRawFIFO.
const RawFeatures = mpu6050.FeatureSendRawAccel | mpu6050.FeatureSendRawGyro

func startRawFIFO(l *log.Entry, name string, dev *mpu6050.Dev) error {
	if err := dev.SetAccelFIFOEnabled(true); err != nil {
		return fmt.Errorf("%s IMU: enable accel FIFO: %w", name, err)
	}
	if err := dev.SetGyroFIFOEnabled(true); err != nil {
		return fmt.Errorf("%s IMU: enable gyro FIFO: %w", name, err)
	}
	if err := dev.SetFIFOEnabled(true); err != nil {
		return fmt.Errorf("%s IMU: enable FIFO: %w", name, err)
	}
	if err := dev.ResetFIFO(); err != nil {
		return fmt.Errorf("%s IMU: reset FIFO: %w", name, err)
	}
	dev.SetPacketSize(RawFeatures.PacketSize())
	l.Infof("raw FIFO streaming started (%d byte frames)", dev.PacketSize())
	return nil
}

// Features returns the frame layout a configured device produces.
func Features(cfg *config.Config) mpu6050.Features {
	if cfg.DMPFirmware == "" {
		return RawFeatures
	}
	return cfg.DMPFeatures
}
