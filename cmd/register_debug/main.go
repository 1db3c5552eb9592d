// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/relabs-tech/mpu6050/internal/app"
	"github.com/relabs-tech/mpu6050/internal/config"
	"github.com/relabs-tech/mpu6050/internal/sensors"
)

var rootCmd = &cobra.Command{
	Use:   "register_debug",
	Short: "inspect and calibrate the MPU-6050 from a browser",
	Long: `register_debug owns the device and serves:
  /ws              register map, reads and writes
  /ws/calibration  interactive calibration
  /api/imu         live accelerometer and gyroscope registers`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		if err := config.InitGlobal(path); err != nil {
			return err
		}
		cfg := config.Get()

		log.Println("Initializing IMU manager...")
		if err := sensors.InitIMUManager("imu"); err != nil {
			return err
		}

		mux := http.NewServeMux()
		mux.HandleFunc("/ws", app.HandleRegisterDebugWS)
		mux.HandleFunc("/ws/calibration", app.HandleCalibrationWS)
		mux.HandleFunc("/api/imu", app.HandleIMUData)
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, "web/register_debug.html")
		})

		addr := fmt.Sprintf(":%d", cfg.RegisterDebugPort)
		log.Printf("Register debug tool listening on %s", addr)
		log.Printf("Open http://localhost%s in your browser", addr)
		return http.ListenAndServe(addr, mux)
	},
}

func main() {
	rootCmd.Flags().String("config", config.DefaultPath, "path to configuration file")

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
