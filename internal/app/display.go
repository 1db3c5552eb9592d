// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"image"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/mpu6050/internal/config"
)

// Display pages, shown in turn.
const (
	pageOrientation = iota
	pageRaw
	pageOffsets
	numPages
)

// ticksPerPage is how many display updates a page stays up.
const ticksPerPage = 6

// screen is the part of *ssd1306.Dev the display loop draws on.
type screen interface {
	Bounds() image.Rectangle
	Draw(r image.Rectangle, src image.Image, sp image.Point) error
}

// lines renders up to four text lines with the 7x13 font.
func lines(text ...string) *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	for i, t := range text {
		drawer.Dot = fixed.P(0, 13*(i+1))
		drawer.DrawString(t)
	}
	return img
}

// renderPage draws one page from the values received so far.
func renderPage(page int, s *WebState) *image1bit.VerticalLSB {
	switch page {
	case pageOrientation:
		p, ok := s.pose.get()
		if !ok {
			return lines("Orientation", "Waiting...")
		}
		return lines(
			fmt.Sprintf("R: %6.1f", p.Roll),
			fmt.Sprintf("P: %6.1f", p.Pitch),
			fmt.Sprintf("Y: %6.1f", p.Yaw),
		)
	case pageRaw:
		r, ok := s.sample.get()
		if !ok {
			return lines("IMU raw", "Waiting...")
		}
		return lines(
			fmt.Sprintf("A:%5d %5d", r.Ax, r.Ay),
			fmt.Sprintf("  %5d", r.Az),
			fmt.Sprintf("G:%5d %5d", r.Gx, r.Gy),
			fmt.Sprintf("  %5d", r.Gz),
		)
	case pageOffsets:
		o, ok := s.offsets.get()
		if !ok {
			return lines("Offsets", "Waiting...")
		}
		return lines(
			"Offsets",
			fmt.Sprintf("A:%d %d %d", o.AccelX, o.AccelY, o.AccelZ),
			fmt.Sprintf("G:%d %d %d", o.GyroX, o.GyroY, o.GyroZ),
			o.Time.Format("15:04:05"),
		)
	}
	return lines(fmt.Sprintf("page %d?", page))
}

// updateDisplay draws the page due at tick n.
func updateDisplay(dev screen, n int, s *WebState) error {
	page := (n / ticksPerPage) % numPages
	return dev.Draw(dev.Bounds(), renderPage(page, s), image.Point{})
}

func showSplash(dev screen) error {
	return dev.Draw(dev.Bounds(), lines("", "  MPU-6050", "  waiting for", "  producer"), image.Point{})
}

// RunDisplay shows the published pose, raw sample and offsets on an SSD1306.
func RunDisplay() error {
	cfg := config.Get()

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}
	b, err := i2creg.Open(cfg.I2CBus)
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer b.Close()

	opts := ssd1306.DefaultOpts
	dev, err := ssd1306.NewI2C(b, &opts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	log.Printf("display: initialized at 0x%02X", cfg.DisplayI2CAddr)
	if err := showSplash(dev); err != nil {
		log.Printf("display: error showing splash: %v", err)
	}

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDDisplay)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	state := &WebState{}
	if err := subscribeJSON(client, cfg.TopicPose, state.pose.set); err != nil {
		return err
	}
	if err := subscribeJSON(client, cfg.TopicSample, state.sample.set); err != nil {
		return err
	}
	if err := subscribeJSON(client, cfg.TopicOffsets, state.offsets.set); err != nil {
		return err
	}

	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	log.Println("display: starting update loop")
	for n := 0; ; n++ {
		<-ticker.C
		if err := updateDisplay(dev, n, state); err != nil {
			log.Printf("display: update error: %v", err)
		}
	}
}
