// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu6050

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
)

// Motion is one accelerometer + gyroscope reading in raw counts.
type Motion struct {
	Ax, Ay, Az int16
	Gx, Gy, Gz int16
}

// SetClockSource selects the PWR_MGMT_1 clock (ClockInternal ... ClockKeepReset).
func (d *Dev) SetClockSource(src byte) error {
	return d.writeBits(bitField{RegPwrMgmt1, pwr1ClkSelBit, pwr1ClkSelLength}, src)
}

// ClockSource returns the PWR_MGMT_1 clock selection.
func (d *Dev) ClockSource() (byte, error) {
	return d.readBits(bitField{RegPwrMgmt1, pwr1ClkSelBit, pwr1ClkSelLength})
}

// SetSleepEnabled puts the device to sleep or wakes it.
func (d *Dev) SetSleepEnabled(on bool) error {
	return d.writeBit(RegPwrMgmt1, pwr1SleepBit, on)
}

// SleepEnabled reports whether the device is asleep.
func (d *Dev) SleepEnabled() (bool, error) {
	return d.readBit(RegPwrMgmt1, pwr1SleepBit)
}

// Reset triggers a full device reset. The device sleeps afterwards.
func (d *Dev) Reset() error {
	return d.writeBit(RegPwrMgmt1, pwr1DeviceResetBit, true)
}

// SetFullScaleGyroRange sets FS_SEL (0=±250°/s ... 3=±2000°/s).
func (d *Dev) SetFullScaleGyroRange(r byte) error {
	if r > GyroFS2000 {
		return fmt.Errorf("gyro range must be 0-3, got %d", r)
	}
	return d.writeBits(bitField{RegGyroConfig, gConfigFSSelBit, gConfigFSSelLength}, r)
}

// FullScaleGyroRange returns FS_SEL.
func (d *Dev) FullScaleGyroRange() (byte, error) {
	return d.readBits(bitField{RegGyroConfig, gConfigFSSelBit, gConfigFSSelLength})
}

// SetFullScaleAccelRange sets AFS_SEL (0=±2g ... 3=±16g).
func (d *Dev) SetFullScaleAccelRange(r byte) error {
	if r > AccelFS16 {
		return fmt.Errorf("accel range must be 0-3, got %d", r)
	}
	return d.writeBits(bitField{RegAccelConfig, aConfigAFSSelBit, aConfigAFSSelLength}, r)
}

// FullScaleAccelRange returns AFS_SEL.
func (d *Dev) FullScaleAccelRange() (byte, error) {
	return d.readBits(bitField{RegAccelConfig, aConfigAFSSelBit, aConfigAFSSelLength})
}

// SetDLPFMode sets CONFIG.DLPF_CFG.
func (d *Dev) SetDLPFMode(mode byte) error {
	return d.writeBits(bitField{RegConfig, cfgDLPFCfgBit, cfgDLPFCfgLength}, mode)
}

// DLPFMode returns CONFIG.DLPF_CFG.
func (d *Dev) DLPFMode() (byte, error) {
	return d.readBits(bitField{RegConfig, cfgDLPFCfgBit, cfgDLPFCfgLength})
}

// SetRate sets the sample rate divider: rate = gyro output rate / (1 + div).
func (d *Dev) SetRate(div byte) error {
	return d.bus.WriteByte(d.addr, RegSmplrtDiv, div)
}

// Rate returns the sample rate divider.
func (d *Dev) Rate() (byte, error) {
	return d.bus.ReadByte(d.addr, RegSmplrtDiv)
}

// SetFIFOEnabled enables the FIFO buffer in USER_CTRL.
func (d *Dev) SetFIFOEnabled(on bool) error {
	return d.writeBit(RegUserCtrl, userCtrlFIFOEnBit, on)
}

// FIFOEnabled reports the USER_CTRL FIFO enable bit.
func (d *Dev) FIFOEnabled() (bool, error) {
	return d.readBit(RegUserCtrl, userCtrlFIFOEnBit)
}

// SetDMPEnabled starts or stops the on-chip DMP.
func (d *Dev) SetDMPEnabled(on bool) error {
	return d.writeBit(RegUserCtrl, userCtrlDMPEnBit, on)
}

// DMPEnabled reports the USER_CTRL DMP enable bit.
func (d *Dev) DMPEnabled() (bool, error) {
	return d.readBit(RegUserCtrl, userCtrlDMPEnBit)
}

// ResetFIFO clears the FIFO and restarts accumulation. The bit self-clears.
func (d *Dev) ResetFIFO() error {
	return d.writeBit(RegUserCtrl, userCtrlFIFOResetBit, true)
}

// ResetDMP resets the DMP. The bit self-clears.
func (d *Dev) ResetDMP() error {
	return d.writeBit(RegUserCtrl, userCtrlDMPResetBit, true)
}

// SetAccelFIFOEnabled routes accelerometer samples into the FIFO.
func (d *Dev) SetAccelFIFOEnabled(on bool) error {
	return d.writeBit(RegFIFOEn, accelFIFOEnBit, on)
}

// SetGyroFIFOEnabled routes all three gyroscope axes into the FIFO.
func (d *Dev) SetGyroFIFOEnabled(on bool) error {
	for _, b := range []uint8{xgFIFOEnBit, ygFIFOEnBit, zgFIFOEnBit} {
		if err := d.writeBit(RegFIFOEn, b, on); err != nil {
			return err
		}
	}
	return nil
}

// SetIntFIFOOverflowEnabled enables the FIFO overflow interrupt.
func (d *Dev) SetIntFIFOOverflowEnabled(on bool) error {
	return d.writeBit(RegIntEnable, interruptFIFOOflowBit, on)
}

// SetIntDMPEnabled enables the DMP interrupt.
func (d *Dev) SetIntDMPEnabled(on bool) error {
	return d.writeBit(RegIntEnable, interruptDMPIntBit, on)
}

// IntStatus reads (and so clears) INT_STATUS.
func (d *Dev) IntStatus() (byte, error) {
	return d.bus.ReadByte(d.addr, RegIntStatus)
}

// FIFOCount returns the number of bytes queued in the FIFO.
func (d *Dev) FIFOCount() (int, error) {
	b, err := d.bus.ReadBlock(d.addr, RegFIFOCountH, 2)
	if err != nil {
		return 0, fmt.Errorf("read FIFO count: %w", err)
	}
	if len(b) != 2 {
		return 0, fmt.Errorf("read FIFO count: got %d bytes", len(b))
	}
	return int(b[0])<<8 | int(b[1]), nil
}

// Motion reads accelerometer and gyroscope in one burst.
func (d *Dev) Motion() (Motion, error) {
	b, err := d.bus.ReadBlock(d.addr, RegAccelXOutH, 14)
	if err != nil {
		return Motion{}, fmt.Errorf("read motion: %w", err)
	}
	if len(b) != 14 {
		return Motion{}, fmt.Errorf("read motion: got %d bytes", len(b))
	}
	w := func(i int) int16 { return int16(uint16(b[i])<<8 | uint16(b[i+1])) }
	return Motion{
		Ax: w(0), Ay: w(2), Az: w(4),
		Gx: w(8), Gy: w(10), Gz: w(12),
	}, nil
}

// Temperature reads the die temperature.
func (d *Dev) Temperature() (physic.Temperature, error) {
	raw, err := d.readWord(RegTempOutH)
	if err != nil {
		return 0, err
	}
	// Register map: °C = raw/340 + 36.53.
	c := float64(raw)/340.0 + 36.53
	return physic.ZeroCelsius + physic.Temperature(c*float64(physic.Celsius)), nil
}

// Offset reads the hardware offset register of one axis.
func (d *Dev) Offset(a Axis) (int16, error) {
	if a < AccelX || a > GyroZ {
		return 0, fmt.Errorf("invalid axis %d", int(a))
	}
	reg, err := d.offsetReg(a)
	if err != nil {
		return 0, err
	}
	return d.readWord(reg)
}

// SetOffset writes the hardware offset register of one axis and records it.
func (d *Dev) SetOffset(a Axis, v int16) error {
	if a < AccelX || a > GyroZ {
		return fmt.Errorf("invalid axis %d", int(a))
	}
	reg, err := d.offsetReg(a)
	if err != nil {
		return err
	}
	if err := d.writeWord(reg, v); err != nil {
		return err
	}
	d.offsets[a] = v
	return nil
}
