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
	Use:   "producer",
	Short: "publish a synthetic pose and sample without hardware",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		if err := config.InitGlobal(path); err != nil {
			return err
		}
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		return app.RunMockProducer(dryRun)
	},
}

func main() {
	rootCmd.Flags().String("config", config.DefaultPath, "path to configuration file")
	rootCmd.Flags().Bool("dry-run", false, "print poses instead of publishing them")

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
