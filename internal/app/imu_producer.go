// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/mpu6050/internal/config"
	"github.com/relabs-tech/mpu6050/internal/imu"
	"github.com/relabs-tech/mpu6050/internal/mpu6050"
	"github.com/relabs-tech/mpu6050/internal/orientation"
	"github.com/relabs-tech/mpu6050/internal/sensors"
)

// FrameSource yields decoded FIFO frames, as *sensors.IMUManager does.
type FrameSource interface {
	Name() string
	NextFrame() (mpu6050.Frame, error)
}

// ProducerStats counts what a Producer has seen since it started.
type ProducerStats struct {
	Frames    int
	Timeouts  int
	Overflows int
}

// Producer turns FIFO frames into published samples and poses.
type Producer struct {
	src         FrameSource
	pub         Publisher
	clk         clock.Clock
	topicSample string
	topicPose   string

	stats    ProducerStats
	lastPose orientation.Pose
}

// NewProducer returns a Producer publishing on the configured topics.
// A nil clk uses the wall clock.
func NewProducer(src FrameSource, pub Publisher, cfg *config.Config, clk clock.Clock) *Producer {
	if clk == nil {
		clk = clock.New()
	}
	return &Producer{
		src:         src,
		pub:         pub,
		clk:         clk,
		topicSample: cfg.TopicSample,
		topicPose:   cfg.TopicPose,
	}
}

// Step reads one frame and publishes it. FIFO timeouts and overflows are
// counted and swallowed so the caller simply tries again.
func (p *Producer) Step() error {
	f, err := p.src.NextFrame()
	switch {
	case errors.Is(err, mpu6050.ErrFIFOTimeout):
		p.stats.Timeouts++
		log.WithError(err).Warnf("%s IMU: no frame", p.src.Name())
		return nil
	case errors.Is(err, mpu6050.ErrFIFOOverflow):
		p.stats.Overflows++
		log.Warnf("%s IMU: FIFO overflow, frames dropped", p.src.Name())
		return nil
	case err != nil:
		return err
	}
	p.stats.Frames++

	now := p.clk.Now()
	if err := p.pub.PublishJSON(p.topicSample, false, imu.FromFrame(p.src.Name(), now, f)); err != nil {
		return err
	}
	pose, err := orientation.PoseFromFrame(f)
	if err != nil {
		// Gyro-only layouts carry nothing to derive a pose from.
		return nil
	}
	p.lastPose = pose
	return p.pub.PublishJSON(p.topicPose, true, pose)
}

// Stats returns the counters accumulated so far.
func (p *Producer) Stats() ProducerStats { return p.stats }

// LastPose returns the most recently published pose.
func (p *Producer) LastPose() orientation.Pose { return p.lastPose }

// Run calls Step until ctx is done or Step fails, logging a summary every
// logEvery.
func (p *Producer) Run(ctx context.Context, logEvery time.Duration) error {
	tick := p.clk.Ticker(logEvery)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
			s := p.stats
			log.WithFields(log.Fields{
				"frames":    s.Frames,
				"timeouts":  s.Timeouts,
				"overflows": s.Overflows,
			}).Infof("%s tick: pose R=%.2f P=%.2f Y=%.2f", p.src.Name(), p.lastPose.Roll, p.lastPose.Pitch, p.lastPose.Yaw)
		default:
		}
		if err := p.Step(); err != nil {
			return err
		}
	}
}

// RunIMUProducer streams FIFO frames from the configured device to MQTT.
func RunIMUProducer() error {
	log.Println("starting MPU-6050 FIFO producer (IMU → MQTT)")
	cfg := config.Get()

	if err := sensors.InitIMUManager("imu"); err != nil {
		return fmt.Errorf("failed to initialize IMU manager: %w", err)
	}
	mgr := sensors.GetIMUManager()

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDProducer)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)
	pub := mqttPublisher{client: client}

	var offsets [6]int16
	if cfg.CalOnStart {
		res, err := CalibrateDevice(mgr, cfg.CalLoops, nil)
		if err != nil {
			return err
		}
		offsets = res.Offsets.Array()
	} else if offsets, err = mgr.Offsets(); err != nil {
		return err
	}
	if err := pub.PublishJSON(cfg.TopicOffsets, true, imu.NewOffsets(mgr.Name(), time.Now(), offsets)); err != nil {
		log.WithError(err).Warn("offsets not published")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("publishing %s frames (%d bytes) to %s and %s", mgr.Features(), mgr.Features().PacketSize(), cfg.TopicSample, cfg.TopicPose)
	p := NewProducer(mgr, pub, cfg, nil)
	return p.Run(ctx, time.Duration(cfg.ConsoleLogInterval)*time.Millisecond)
}
