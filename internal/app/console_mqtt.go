// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/mpu6050/internal/config"
	"github.com/relabs-tech/mpu6050/internal/imu"
	"github.com/relabs-tech/mpu6050/internal/orientation"
)

func formatPose(p orientation.Pose) string {
	return fmt.Sprintf("[POSE]  ROLL=%6.2f  PITCH=%6.2f  YAW=%6.2f", p.Roll, p.Pitch, p.Yaw)
}

func formatSample(s imu.Sample) string {
	line := fmt.Sprintf("[IMU ]  ax=%6d ay=%6d az=%6d  gx=%6d gy=%6d gz=%6d",
		s.Ax, s.Ay, s.Az, s.Gx, s.Gy, s.Gz)
	if s.Quat != nil {
		q := s.Quat
		line += fmt.Sprintf("  q=(%.3f %.3f %.3f %.3f)", q[0], q[1], q[2], q[3])
	}
	return line
}

func formatOffsets(o imu.Offsets) string {
	return fmt.Sprintf("[OFFS]  %s accel=%d,%d,%d gyro=%d,%d,%d",
		o.Source, o.AccelX, o.AccelY, o.AccelZ, o.GyroX, o.GyroY, o.GyroZ)
}

// printer writes one formatted line per message.
func printer[T any](w io.Writer, format func(T) string) func(T) {
	return func(v T) {
		fmt.Fprintln(w, format(v))
	}
}

// RunConsoleMQTT prints every pose, sample and offsets message until
// interrupted.
func RunConsoleMQTT() error {
	cfg := config.Get()
	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDConsole)
	if err != nil {
		return err
	}

	if err := subscribeJSON(client, cfg.TopicPose, printer(os.Stdout, formatPose)); err != nil {
		return err
	}
	if err := subscribeJSON(client, cfg.TopicSample, printer(os.Stdout, formatSample)); err != nil {
		return err
	}
	if err := subscribeJSON(client, cfg.TopicOffsets, printer(os.Stdout, formatOffsets)); err != nil {
		return err
	}

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
