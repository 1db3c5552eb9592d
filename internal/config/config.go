// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/relabs-tech/mpu6050/internal/mpu6050"
)

// DefaultPath is the configuration file looked up when no path is given.
const DefaultPath = "mpu6050_config.txt"

// DisplayAddr is the only SSD1306 address the display driver supports.
const DisplayAddr = 0x3C

// EnvPrefix prefixes environment variables that override file values,
// e.g. MPU6050_MQTT_BROKER.
const EnvPrefix = "MPU6050"

// Config holds all application configuration values.
type Config struct {
	// Bus
	I2CBus    string // periph bus name, "" for the first one
	I2CAddr   uint16
	SPIDevice string // when set, SPI is used instead of I2C

	// Sensor ranges
	// Accelerometer: 0=±2g, 1=±4g, 2=±8g, 3=±16g
	AccelRange byte
	// Gyroscope: 0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s
	GyroRange byte

	// Sample rate
	DLPFConfig    byte // digital low pass filter (0-6)
	SampleRateDiv byte // output rate = internal rate / (1 + div)

	// Calibration
	CalLoops         int
	CalKPAccel       float64
	CalKIAccel       float64
	CalKPGyro        float64
	CalKIGyro        float64
	CalSamples       int
	CalWarmupSamples int
	CalOnStart       bool

	// FIFO / DMP
	FIFOTimeout time.Duration
	DMPFirmware string // path of the MotionApps image, "" to run without DMP
	DMPFeatures mpu6050.Features

	// MQTT
	MQTTBroker           string
	MQTTClientIDProducer string
	MQTTClientIDConsole  string
	MQTTClientIDWeb      string
	MQTTClientIDDisplay  string
	MQTTClientIDCalib    string

	// Topics
	TopicSample  string
	TopicPose    string
	TopicOffsets string

	// Timing
	SampleInterval     int // milliseconds
	ConsoleLogInterval int // milliseconds

	// Servers
	WebServerPort     int
	RegisterDebugPort int

	// Display
	DisplayI2CAddr        uint16
	DisplayUpdateInterval int // milliseconds

	LogLevel log.Level
}

// Default returns a Config with every optional value filled in.
func Default() *Config {
	p := mpu6050.DefaultCalibrationParams()
	return &Config{
		I2CAddr:               mpu6050.DefaultAddr,
		AccelRange:            mpu6050.AccelFS2,
		GyroRange:             mpu6050.GyroFS250,
		DLPFConfig:            mpu6050.DLPFBW42,
		SampleRateDiv:         4,
		CalLoops:              mpu6050.DefaultCalibrationLoops,
		CalKPAccel:            p.AccelKP,
		CalKIAccel:            p.AccelKI,
		CalKPGyro:             p.GyroKP,
		CalKIGyro:             p.GyroKI,
		CalSamples:            p.Samples,
		CalWarmupSamples:      p.WarmupSamples,
		FIFOTimeout:           mpu6050.DefaultFIFOTimeout,
		DMPFeatures:           mpu6050.DefaultFeatures,
		MQTTClientIDProducer:  "mpu6050-producer",
		MQTTClientIDConsole:   "mpu6050-console",
		MQTTClientIDWeb:       "mpu6050-web",
		MQTTClientIDDisplay:   "mpu6050-display",
		MQTTClientIDCalib:     "mpu6050-calibration",
		TopicSample:           "mpu6050/sample",
		TopicPose:             "mpu6050/pose",
		TopicOffsets:          "mpu6050/offsets",
		SampleInterval:        10,
		ConsoleLogInterval:    1000,
		WebServerPort:         8080,
		RegisterDebugPort:     8081,
		DisplayI2CAddr:        DisplayAddr,
		DisplayUpdateInterval: 500,
		LogLevel:              log.InfoLevel,
	}
}

// Package-level unexported variables for the singleton:
//   - globalConfig is only set by InitGlobal and read through Get.
//   - configOnce makes InitGlobal run once.
//   - configMu guards globalConfig; Get takes the read lock.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads a KEY=VALUE configuration file. Blank lines and lines starting
// with # are ignored. Environment variables named EnvPrefix_KEY override
// values present in the file.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("env")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := Default()
	keys := v.AllKeys()
	sort.Strings(keys)
	for _, k := range keys {
		key := strings.ToUpper(k)
		value := strings.TrimSpace(v.GetString(k))
		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config key %s: %w", key, err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseByte(key, value string, max int) (byte, error) {
	val, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if val < 0 || val > max {
		return 0, fmt.Errorf("%s must be 0-%d, got %d", key, max, val)
	}
	return byte(val), nil
}

func parsePositive(key, value string) (int, error) {
	val, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if val <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", key, val)
	}
	return val, nil
}

func parseGain(key, value string) (float64, error) {
	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if val < 0 {
		return 0, fmt.Errorf("%s must not be negative, got %v", key, val)
	}
	return val, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	var err error
	switch key {
	// Bus
	case "I2C_BUS":
		c.I2CBus = value
	case "I2C_ADDR":
		addr, perr := strconv.ParseUint(value, 0, 16)
		if perr != nil {
			return fmt.Errorf("invalid I2C_ADDR %q: %w", value, perr)
		}
		if a := uint16(addr); a != mpu6050.AddrAD0Low && a != mpu6050.AddrAD0High {
			return fmt.Errorf("I2C_ADDR must be 0x68 or 0x69, got 0x%02X", addr)
		}
		c.I2CAddr = uint16(addr)
	case "SPI_DEVICE":
		c.SPIDevice = value

	// Sensor ranges
	case "ACCEL_RANGE":
		c.AccelRange, err = parseByte(key, value, 3)
	case "GYRO_RANGE":
		c.GyroRange, err = parseByte(key, value, 3)
	case "DLPF_CFG":
		c.DLPFConfig, err = parseByte(key, value, 6)
	case "SMPLRT_DIV":
		c.SampleRateDiv, err = parseByte(key, value, 255)

	// Calibration
	case "CAL_LOOPS":
		c.CalLoops, err = parsePositive(key, value)
	case "CAL_KP_ACCEL":
		c.CalKPAccel, err = parseGain(key, value)
	case "CAL_KI_ACCEL":
		c.CalKIAccel, err = parseGain(key, value)
	case "CAL_KP_GYRO":
		c.CalKPGyro, err = parseGain(key, value)
	case "CAL_KI_GYRO":
		c.CalKIGyro, err = parseGain(key, value)
	case "CAL_SAMPLES":
		c.CalSamples, err = parsePositive(key, value)
	case "CAL_WARMUP_SAMPLES":
		c.CalWarmupSamples, err = parsePositive(key, value)
	case "CAL_ON_START":
		c.CalOnStart, err = strconv.ParseBool(value)

	// FIFO / DMP
	case "FIFO_TIMEOUT_MS":
		ms, perr := parsePositive(key, value)
		if perr != nil {
			return perr
		}
		c.FIFOTimeout = time.Duration(ms) * time.Millisecond
	case "DMP_FIRMWARE":
		c.DMPFirmware = value
	case "DMP_FEATURES":
		c.DMPFeatures, err = mpu6050.ParseFeatures(value)

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value
	case "MQTT_CLIENT_ID_CALIBRATION":
		c.MQTTClientIDCalib = value

	// Topics
	case "TOPIC_SAMPLE":
		c.TopicSample = value
	case "TOPIC_POSE":
		c.TopicPose = value
	case "TOPIC_OFFSETS":
		c.TopicOffsets = value

	// Timing
	case "SAMPLE_INTERVAL":
		c.SampleInterval, err = parsePositive(key, value)
	case "CONSOLE_LOG_INTERVAL":
		c.ConsoleLogInterval, err = parsePositive(key, value)

	// Servers
	case "WEB_SERVER_PORT":
		c.WebServerPort, err = parsePositive(key, value)
	case "REGISTER_DEBUG_PORT":
		c.RegisterDebugPort, err = parsePositive(key, value)

	// Display
	case "DISPLAY_I2C_ADDR":
		addr, perr := strconv.ParseUint(value, 0, 16)
		if perr != nil {
			return fmt.Errorf("invalid DISPLAY_I2C_ADDR %q: %w", value, perr)
		}
		if addr != DisplayAddr {
			// ssd1306.NewI2C always talks to 0x3C.
			return fmt.Errorf("DISPLAY_I2C_ADDR must be 0x%02X, got 0x%02X", DisplayAddr, addr)
		}
		c.DisplayI2CAddr = uint16(addr)
	case "DISPLAY_UPDATE_INTERVAL":
		c.DisplayUpdateInterval, err = parsePositive(key, value)

	case "LOG_LEVEL":
		c.LogLevel, err = log.ParseLevel(value)

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}
	return err
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.CalWarmupSamples > c.CalSamples {
		return fmt.Errorf("CAL_WARMUP_SAMPLES (%d) must not exceed CAL_SAMPLES (%d)", c.CalWarmupSamples, c.CalSamples)
	}
	if c.DMPFirmware != "" && c.DMPFeatures.PacketSize() == 0 {
		return fmt.Errorf("DMP_FEATURES %s produce no FIFO data", c.DMPFeatures)
	}
	return nil
}

// CalibrationParams returns the calibrator tuning described by the config.
func (c *Config) CalibrationParams() mpu6050.CalibrationParams {
	p := mpu6050.DefaultCalibrationParams()
	p.AccelKP, p.AccelKI = c.CalKPAccel, c.CalKIAccel
	p.GyroKP, p.GyroKI = c.CalKPGyro, c.CalKIGyro
	p.Samples, p.WarmupSamples = c.CalSamples, c.CalWarmupSamples
	return p
}

// InitGlobal initializes the global configuration from file.
// Only the first call has any effect.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
		if err == nil {
			log.SetLevel(globalConfig.LogLevel)
		}
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
