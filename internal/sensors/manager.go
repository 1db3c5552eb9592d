// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/relabs-tech/mpu6050/internal/config"
	"github.com/relabs-tech/mpu6050/internal/mpu6050"
)

// ErrNotWritable is returned for writes to read-only or unknown registers.
var ErrNotWritable = errors.New("register is not writable")

// IMUManager serializes access to one device shared by the producer, the
// calibration handler and the register debugger.
type IMUManager struct {
	mu       sync.Mutex
	name     string
	bus      mpu6050.Bus
	addr     uint16
	dev      *mpu6050.Dev
	features mpu6050.Features
	whoAmI   byte

	// onPass receives calibration progress of the running Calibrate call.
	onPass func(mpu6050.PassReport)
}

// NewIMUManager builds and configures a device on b.
func NewIMUManager(name string, b mpu6050.Bus, cfg *config.Config, opts ...mpu6050.Option) (*IMUManager, error) {
	m := &IMUManager{
		name:     name,
		bus:      b,
		addr:     cfg.I2CAddr,
		features: Features(cfg),
	}
	opts = append(opts, mpu6050.OnCalibrationPass(m.dispatchPass))
	dev, err := NewDevice(name, b, cfg, opts...)
	if err != nil {
		return nil, err
	}
	if err := Configure(name, dev, cfg); err != nil {
		return nil, err
	}
	if m.whoAmI, err = dev.WhoAmI(); err != nil {
		return nil, err
	}
	m.dev = dev
	return m, nil
}

func (m *IMUManager) dispatchPass(r mpu6050.PassReport) {
	if m.onPass != nil {
		m.onPass(r)
	}
}

// Name returns the source name used in published messages.
func (m *IMUManager) Name() string { return m.name }

// Features returns the layout of the frames returned by NextFrame.
func (m *IMUManager) Features() mpu6050.Features { return m.features }

// NextFrame reads and decodes the next FIFO frame.
func (m *IMUManager) NextFrame() (mpu6050.Frame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, err := m.dev.CurrentPacket()
	if err != nil {
		return mpu6050.Frame{}, err
	}
	return mpu6050.DecodePacket(m.features, p)
}

// CurrentPacket reads the next FIFO frame without decoding it.
func (m *IMUManager) CurrentPacket() (mpu6050.Packet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dev.CurrentPacket()
}

// Motion reads the accelerometer and gyroscope output registers directly.
func (m *IMUManager) Motion() (mpu6050.Motion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dev.Motion()
}

// Calibrate runs one calibration of group, reporting each pass to onPass
// when it is not nil. Concurrent readers block until it finishes.
func (m *IMUManager) Calibrate(group mpu6050.AxisGroup, loops int, onPass func(mpu6050.PassReport)) ([6]int16, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onPass = onPass
	defer func() { m.onPass = nil }()
	if err := m.dev.Calibrate(group, loops); err != nil {
		return m.dev.Offsets(), err
	}
	return m.dev.Offsets(), nil
}

// Offsets re-reads the six offset registers.
func (m *IMUManager) Offsets() ([6]int16, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dev.ActiveOffsets()
}

// SetOffsets writes all six offsets in mpu6050.Axis order.
func (m *IMUManager) SetOffsets(o [6]int16) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for a := mpu6050.AccelX; a <= mpu6050.GyroZ; a++ {
		if err := m.dev.SetOffset(a, o[a]); err != nil {
			return err
		}
	}
	return nil
}

// ReadRegister reads one register.
func (m *IMUManager) ReadRegister(reg byte) (byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bus.ReadByte(m.addr, reg)
}

// WriteRegister writes one register listed as writable in the register map.
func (m *IMUManager) WriteRegister(reg, value byte) error {
	info, ok := m.lookup(reg)
	if !ok || !info.Writable() {
		return fmt.Errorf("0x%02X: %w", reg, ErrNotWritable)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bus.WriteByte(m.addr, reg, value)
}

// ReadAllRegisters reads every mapped register. Keys are "0xNN" addresses.
// FIFO_R_W and MEM_R_W are never mapped since reading them consumes data.
func (m *IMUManager) ReadAllRegisters() (map[string]byte, error) {
	regs := m.GetRegisterMap()
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]byte, len(regs))
	for _, r := range regs {
		addr, err := parseAddress(r.Address)
		if err != nil {
			return nil, err
		}
		v, err := m.bus.ReadByte(m.addr, addr)
		if err != nil {
			return nil, fmt.Errorf("read %s (%s): %w", r.Name, r.Address, err)
		}
		out[r.Address] = v
	}
	return out, nil
}

// GetRegisterMap returns the register metadata for the detected part.
func (m *IMUManager) GetRegisterMap() []RegisterInfo {
	regs := getMPU6050RegisterMap()
	if m.whoAmI >= mpu6050.WhoAmIMPU6500 {
		return append(accelOffsetRegisters6500(), regs...)
	}
	return append(accelOffsetRegisters6050(), regs...)
}

func (m *IMUManager) lookup(reg byte) (RegisterInfo, bool) {
	want := fmt.Sprintf("0x%02X", reg)
	for _, r := range m.GetRegisterMap() {
		if r.Address == want {
			return r, true
		}
	}
	return RegisterInfo{}, false
}

func parseAddress(s string) (byte, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("bad register address %q: %w", s, err)
	}
	return byte(v), nil
}

var (
	imuManager     *IMUManager
	imuManagerOnce sync.Once
	imuManagerErr  error
)

// InitIMUManager opens the configured bus and sets up the shared device.
// Only the first call has any effect.
func InitIMUManager(name string) error {
	imuManagerOnce.Do(func() {
		cfg := config.Get()
		if cfg == nil {
			imuManagerErr = errors.New("configuration not loaded")
			return
		}
		b, err := OpenBus(cfg)
		if err != nil {
			imuManagerErr = fmt.Errorf("%s IMU: %w", name, err)
			return
		}
		imuManager, imuManagerErr = NewIMUManager(name, b, cfg)
		if imuManagerErr != nil {
			b.Close()
		}
	})
	return imuManagerErr
}

// GetIMUManager returns the shared device, nil before InitIMUManager.
func GetIMUManager() *IMUManager {
	return imuManager
}
