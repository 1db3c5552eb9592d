// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu6050

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMemoryVerify is returned when DMP memory does not read back as written.
	ErrMemoryVerify = errors.New("mpu6050: DMP memory verify failed")

	// ErrFirmwareSize is returned for firmware images of the wrong size.
	ErrFirmwareSize = errors.New("mpu6050: DMP firmware has wrong size")
)

// Features selects the DMP outputs placed into each FIFO frame.
type Features uint16

const (
	FeatureTap           Features = 0x001
	FeatureAndroidOrient Features = 0x002
	FeatureLPQuat        Features = 0x004
	FeaturePedometer     Features = 0x008
	Feature6XLPQuat      Features = 0x010
	FeatureGyroCal       Features = 0x020
	FeatureSendRawAccel  Features = 0x040
	FeatureSendRawGyro   Features = 0x080
	FeatureSendCalGyro   Features = 0x100

	FeatureSendAnyGyro = FeatureSendRawGyro | FeatureSendCalGyro
)

// DefaultFeatures is the MotionApps 6-axis quaternion stream with raw sensors.
const DefaultFeatures = Feature6XLPQuat | FeatureSendRawAccel | FeatureSendCalGyro | FeatureGyroCal

// DMP memory locations of the pedometer counters.
const (
	dmpPedometerSteps = 768 + 0x60
	dmpPedometerTime  = 964
)

var featureNames = []struct {
	f    Features
	name string
}{
	{FeatureTap, "tap"},
	{FeatureAndroidOrient, "android_orient"},
	{FeatureLPQuat, "lp_quat"},
	{FeaturePedometer, "pedometer"},
	{Feature6XLPQuat, "6x_lp_quat"},
	{FeatureGyroCal, "gyro_cal"},
	{FeatureSendRawAccel, "raw_accel"},
	{FeatureSendRawGyro, "raw_gyro"},
	{FeatureSendCalGyro, "cal_gyro"},
}

func (f Features) String() string {
	var parts []string
	for _, n := range featureNames {
		if f&n.f != 0 {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// ParseFeatures parses a "|" or "," separated list of feature names.
func ParseFeatures(s string) (Features, error) {
	var f Features
	for _, tok := range strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ',' }) {
		tok = strings.ToLower(strings.TrimSpace(tok))
		found := false
		for _, n := range featureNames {
			if n.name == tok {
				f |= n.f
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown DMP feature %q", tok)
		}
	}
	return f, nil
}

// PacketSize is the FIFO frame length produced with these features enabled.
// Pedometer counters live in DMP memory and do not add to the frame.
func (f Features) PacketSize() int {
	n := 0
	if f&(FeatureLPQuat|Feature6XLPQuat) != 0 {
		n += 16
	}
	if f&FeatureSendRawAccel != 0 {
		n += 6
	}
	if f&FeatureSendAnyGyro != 0 {
		n += 6
	}
	if f&(FeatureTap|FeatureAndroidOrient) != 0 {
		n += 4
	}
	return n
}

// SetMemoryBank selects the DMP memory bank for MEM_R_W accesses.
func (d *Dev) SetMemoryBank(bank byte, prefetch, userBank bool) error {
	v := bank & 0x1F
	if userBank {
		v |= 1 << bankSelCfgUserBankBit
	}
	if prefetch {
		v |= 1 << bankSelPrefetchEnBit
	}
	return d.bus.WriteByte(d.addr, RegBankSel, v)
}

// SetMemoryStartAddress sets the offset inside the selected bank.
func (d *Dev) SetMemoryStartAddress(addr byte) error {
	return d.bus.WriteByte(d.addr, RegMemStartAddr, addr)
}

// memoryChunks walks n bytes from bank:addr in transfers that neither exceed
// DMPMemoryChunkSize nor cross a bank boundary.
func memoryChunks(n int, bank, addr byte, fn func(bank, addr byte, off, size int) error) error {
	for off := 0; off < n; {
		size := DMPMemoryChunkSize
		if rem := n - off; rem < size {
			size = rem
		}
		if room := DMPMemoryBankSize - int(addr); room < size {
			size = room
		}
		if err := fn(bank, addr, off, size); err != nil {
			return err
		}
		off += size
		next := int(addr) + size
		if next >= DMPMemoryBankSize {
			bank++
			next = 0
		}
		addr = byte(next)
	}
	return nil
}

func (d *Dev) seekMemory(bank, addr byte) error {
	if err := d.SetMemoryBank(bank, false, false); err != nil {
		return err
	}
	return d.SetMemoryStartAddress(addr)
}

// WriteMemoryBlock writes data into DMP memory starting at bank:addr. With
// verify every chunk is read back and compared.
func (d *Dev) WriteMemoryBlock(data []byte, bank, addr byte, verify bool) error {
	if len(data) > (DMPMemoryBanks-int(bank))*DMPMemoryBankSize-int(addr) {
		return fmt.Errorf("mpu6050: %d bytes do not fit DMP memory from bank %d addr 0x%02X", len(data), bank, addr)
	}
	return memoryChunks(len(data), bank, addr, func(bank, addr byte, off, size int) error {
		if err := d.seekMemory(bank, addr); err != nil {
			return fmt.Errorf("mpu6050: select DMP memory %d:0x%02X: %w", bank, addr, err)
		}
		chunk := data[off : off+size]
		if err := d.bus.WriteBlock(d.addr, RegMemRW, chunk); err != nil {
			return fmt.Errorf("mpu6050: write DMP memory %d:0x%02X: %w", bank, addr, err)
		}
		if !verify {
			return nil
		}
		if err := d.seekMemory(bank, addr); err != nil {
			return fmt.Errorf("mpu6050: select DMP memory %d:0x%02X: %w", bank, addr, err)
		}
		got, err := d.bus.ReadBlock(d.addr, RegMemRW, size)
		if err != nil {
			return fmt.Errorf("mpu6050: verify DMP memory %d:0x%02X: %w", bank, addr, err)
		}
		if !bytes.Equal(got, chunk) {
			return fmt.Errorf("%w at bank %d addr 0x%02X", ErrMemoryVerify, bank, addr)
		}
		return nil
	})
}

// ReadMemoryBlock reads n bytes of DMP memory starting at bank:addr.
func (d *Dev) ReadMemoryBlock(n int, bank, addr byte) ([]byte, error) {
	out := make([]byte, 0, n)
	err := memoryChunks(n, bank, addr, func(bank, addr byte, off, size int) error {
		if err := d.seekMemory(bank, addr); err != nil {
			return fmt.Errorf("mpu6050: select DMP memory %d:0x%02X: %w", bank, addr, err)
		}
		b, err := d.bus.ReadBlock(d.addr, RegMemRW, size)
		if err != nil {
			return fmt.Errorf("mpu6050: read DMP memory %d:0x%02X: %w", bank, addr, err)
		}
		out = append(out, b...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LoadFirmware uploads the MotionApps image verbatim from bank 0 and points the
// DMP program counter at its entry. The image is opaque to this package.
func (d *Dev) LoadFirmware(image []byte) error {
	if len(image) != DMPCodeSize {
		return fmt.Errorf("%w: %d bytes, want %d", ErrFirmwareSize, len(image), DMPCodeSize)
	}
	if err := d.WriteMemoryBlock(image, 0, 0, true); err != nil {
		return err
	}
	if err := d.bus.WriteBlock(d.addr, RegDMPCfg1, []byte{dmpStartAddress >> 8, dmpStartAddress & 0xFF}); err != nil {
		return fmt.Errorf("mpu6050: set DMP start address: %w", err)
	}
	d.log.WithField("bytes", len(image)).Info("DMP firmware loaded")
	return nil
}

// StartDMP enables the FIFO and the DMP with features and sets the packet size
// CurrentPacket reads.
func (d *Dev) StartDMP(features Features) error {
	if err := d.SetIntDMPEnabled(true); err != nil {
		return fmt.Errorf("mpu6050: enable DMP interrupt: %w", err)
	}
	if err := d.SetFIFOEnabled(true); err != nil {
		return fmt.Errorf("mpu6050: enable FIFO: %w", err)
	}
	if err := d.ResetFIFO(); err != nil {
		return fmt.Errorf("mpu6050: reset FIFO: %w", err)
	}
	if err := d.SetDMPEnabled(true); err != nil {
		return fmt.Errorf("mpu6050: enable DMP: %w", err)
	}
	if err := d.ResetDMP(); err != nil {
		return fmt.Errorf("mpu6050: reset DMP: %w", err)
	}
	d.packetSize = features.PacketSize()
	d.log.WithFields(map[string]interface{}{
		"features":    features.String(),
		"packet_size": d.packetSize,
	}).Info("DMP started")
	return nil
}

// PedometerSteps reads the DMP step counter.
func (d *Dev) PedometerSteps() (uint32, error) {
	return d.readMemoryUint32(dmpPedometerSteps)
}

// PedometerWalkTime reads the DMP walk-time counter in milliseconds.
func (d *Dev) PedometerWalkTime() (uint32, error) {
	v, err := d.readMemoryUint32(dmpPedometerTime)
	return v * 20, err
}

func (d *Dev) readMemoryUint32(loc int) (uint32, error) {
	b, err := d.ReadMemoryBlock(4, byte(loc>>8), byte(loc))
	if err != nil {
		return 0, err
	}
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), nil
}
