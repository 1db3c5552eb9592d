// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"math"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/go-gl/mathgl/mgl64"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/mpu6050/internal/config"
	"github.com/relabs-tech/mpu6050/internal/imu"
	"github.com/relabs-tech/mpu6050/internal/orientation"
)

// oneG is the accelerometer reading of 1g at ±2g full scale.
const oneG = 16384

// mockSample builds the sample a still sensor at pose p would produce.
func mockSample(t time.Time, p orientation.Pose) imu.Sample {
	q := mgl64.AnglesToQuat(mgl64.DegToRad(p.Yaw), mgl64.DegToRad(p.Pitch), mgl64.DegToRad(p.Roll), mgl64.ZYX)
	g := orientation.Gravity(q).Mul(oneG)
	c := [4]float64{q.W, q.V[0], q.V[1], q.V[2]}
	return imu.Sample{
		Source: "mock",
		Time:   t,
		Ax:     int16(math.Round(g[0])),
		Ay:     int16(math.Round(g[1])),
		Az:     int16(math.Round(g[2])),
		Quat:   &c,
	}
}

// RunMockProducer publishes a synthetic pose and matching sample every
// SAMPLE_INTERVAL. With dryRun set nothing is published and poses are only
// printed.
func RunMockProducer(dryRun bool) error {
	cfg := config.Get()
	log.Println("starting MPU-6050 MQTT producer (mock)")

	var pub Publisher
	if !dryRun {
		client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDProducer)
		if err != nil {
			return err
		}
		defer client.Disconnect(250)
		pub = mqttPublisher{client: client}
	}

	clk := clock.New()
	src := orientation.NewMockSource(clk)
	ticker := clk.Ticker(time.Duration(cfg.SampleInterval) * time.Millisecond)
	defer ticker.Stop()

	for t := range ticker.C {
		pose, err := src.Next()
		if err != nil {
			log.Printf("error from mock source: %v", err)
			continue
		}
		if pub == nil {
			fmt.Println(formatPose(pose))
			continue
		}
		if err := pub.PublishJSON(cfg.TopicPose, true, pose); err != nil {
			log.Printf("%v", err)
			continue
		}
		if err := pub.PublishJSON(cfg.TopicSample, false, mockSample(t, pose)); err != nil {
			log.Printf("%v", err)
		}
	}
	return nil
}
