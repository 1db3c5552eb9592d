// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Calibration nulls the accelerometer and gyroscope bias of an MPU-6050 by
// driving its hardware offset registers. The device must rest level, Z axis
// up, and still for the whole run.
//
// Output:
//
//	Writes <source>_<unix time>_offsets.json into --output with the offsets
//	and the residual error of the last pass.
//
// Run:
//
//	go run ./cmd/calibration --loops 15
//	go run ./cmd/calibration --apply imu_1767268800_offsets.json
package main

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/relabs-tech/mpu6050/internal/app"
	"github.com/relabs-tech/mpu6050/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "calibration",
	Short: "calibrate MPU-6050 accelerometer and gyroscope offsets",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		if err := config.InitGlobal(path); err != nil {
			return err
		}
		var opts app.CalibrationOptions
		opts.Loops, _ = cmd.Flags().GetInt("loops")
		opts.OutputDir, _ = cmd.Flags().GetString("output")
		opts.Publish, _ = cmd.Flags().GetBool("publish")
		opts.Apply, _ = cmd.Flags().GetString("apply")
		return app.RunCalibration(opts)
	},
}

func main() {
	rootCmd.Flags().String("config", config.DefaultPath, "path to configuration file")
	rootCmd.Flags().IntP("loops", "n", 0, "calibration passes per sensor (0 uses CAL_LOOPS)")
	rootCmd.Flags().StringP("output", "o", ".", "directory for the offsets file")
	rootCmd.Flags().Bool("publish", false, "publish the offsets to TOPIC_OFFSETS")
	rootCmd.Flags().String("apply", "", "write offsets from a saved file instead of calibrating")

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
