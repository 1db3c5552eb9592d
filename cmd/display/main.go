// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/relabs-tech/mpu6050/internal/app"
	"github.com/relabs-tech/mpu6050/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "display",
	Short: "show the latest pose, sample and offsets on an SSD1306 OLED",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		if err := config.InitGlobal(path); err != nil {
			return err
		}
		return app.RunDisplay()
	},
}

func main() {
	rootCmd.Flags().String("config", config.DefaultPath, "path to configuration file")

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
