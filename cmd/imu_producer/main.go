// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/relabs-tech/mpu6050/internal/app"
	"github.com/relabs-tech/mpu6050/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "imu_producer",
	Short: "stream MPU-6050 FIFO frames to MQTT",
	Long: `imu_producer configures the MPU-6050 (optionally uploading DMP firmware),
optionally calibrates it, then publishes every FIFO frame as a sample and a pose.`,
	Example: `  imu_producer --config=/etc/mpu6050_config.txt --calibrate`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		if err := config.InitGlobal(path); err != nil {
			return err
		}
		cfg := config.Get()
		if cmd.Flags().Changed("calibrate") {
			cfg.CalOnStart, _ = cmd.Flags().GetBool("calibrate")
		}
		if cmd.Flags().Changed("fifo-timeout") {
			cfg.FIFOTimeout, _ = cmd.Flags().GetDuration("fifo-timeout")
		}
		return app.RunIMUProducer()
	},
}

func main() {
	rootCmd.Flags().String("config", config.DefaultPath, "path to configuration file")
	rootCmd.Flags().Bool("calibrate", false, "calibrate before streaming (overrides CAL_ON_START)")
	rootCmd.Flags().Duration("fifo-timeout", 11*time.Second, "FIFO wait bound (overrides FIFO_TIMEOUT_MS)")

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
