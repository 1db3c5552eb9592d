// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

// RegisterInfo describes one register for the register debugger.
type RegisterInfo struct {
	Address     string     `json:"address"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Access      string     `json:"access"` // "R", "W", "RW"
	Default     string     `json:"default,omitempty"`
	BitFields   []BitField `json:"bit_fields,omitempty"`
}

// BitField describes a run of bits inside a register.
type BitField struct {
	Bits        string `json:"bits"` // "7" or "5:3"
	Name        string `json:"name"`
	Description string `json:"description"`
	Values      string `json:"values,omitempty"`
}

// Writable reports whether the register may be written.
func (r RegisterInfo) Writable() bool {
	return r.Access == "RW" || r.Access == "W"
}

// getMPU6050RegisterMap returns metadata for the MPU-6050 registers the
// debugger exposes. Offset registers follow the part detected at runtime,
// see offsetRegisters.
func getMPU6050RegisterMap() []RegisterInfo {
	return []RegisterInfo{
		// Factory offsets
		{Address: "0x00", Name: "XG_OFFS_TC", Description: "X Gyro OTP offset / temperature compensation", Access: "RW",
			BitFields: []BitField{
				{Bits: "7", Name: "PWR_MODE", Description: "Power mode of auxiliary I2C", Values: "0=VLOGIC, 1=VDD"},
				{Bits: "6:1", Name: "XG_OFFS_TC", Description: "X gyro temperature compensation offset"},
				{Bits: "0", Name: "OTP_BNK_VLD", Description: "OTP bank valid"},
			}},
		{Address: "0x01", Name: "YG_OFFS_TC", Description: "Y Gyro OTP offset", Access: "RW"},
		{Address: "0x02", Name: "ZG_OFFS_TC", Description: "Z Gyro OTP offset", Access: "RW"},

		// Gyro user offsets
		{Address: "0x13", Name: "XG_OFFS_USRH", Description: "X Gyro offset high byte (±1000°/s units)", Access: "RW"},
		{Address: "0x14", Name: "XG_OFFS_USRL", Description: "X Gyro offset low byte", Access: "RW"},
		{Address: "0x15", Name: "YG_OFFS_USRH", Description: "Y Gyro offset high byte", Access: "RW"},
		{Address: "0x16", Name: "YG_OFFS_USRL", Description: "Y Gyro offset low byte", Access: "RW"},
		{Address: "0x17", Name: "ZG_OFFS_USRH", Description: "Z Gyro offset high byte", Access: "RW"},
		{Address: "0x18", Name: "ZG_OFFS_USRL", Description: "Z Gyro offset low byte", Access: "RW"},

		// Configuration
		{Address: "0x19", Name: "SMPLRT_DIV", Description: "Sample Rate Divider", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7:0", Name: "SMPLRT_DIV", Description: "Sample Rate = Gyro_Output_Rate / (1 + SMPLRT_DIV)", Values: "0-255"},
			}},
		{Address: "0x1A", Name: "CONFIG", Description: "Configuration (DLPF)", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "5:3", Name: "EXT_SYNC_SET", Description: "External FSYNC pin sampling", Values: "0=Disabled"},
				{Bits: "2:0", Name: "DLPF_CFG", Description: "Digital Low Pass Filter", Values: "0=260Hz, 1=184Hz, 2=94Hz, 3=44Hz, 4=21Hz, 5=10Hz, 6=5Hz"},
			}},
		{Address: "0x1B", Name: "GYRO_CONFIG", Description: "Gyroscope Configuration", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7", Name: "XG_ST", Description: "X Gyro self-test", Values: "0=Disabled, 1=Enabled"},
				{Bits: "6", Name: "YG_ST", Description: "Y Gyro self-test", Values: "0=Disabled, 1=Enabled"},
				{Bits: "5", Name: "ZG_ST", Description: "Z Gyro self-test", Values: "0=Disabled, 1=Enabled"},
				{Bits: "4:3", Name: "FS_SEL", Description: "Gyro Full Scale Range", Values: "0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s"},
			}},
		{Address: "0x1C", Name: "ACCEL_CONFIG", Description: "Accelerometer Configuration", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7", Name: "XA_ST", Description: "X Accel self-test", Values: "0=Disabled, 1=Enabled"},
				{Bits: "6", Name: "YA_ST", Description: "Y Accel self-test", Values: "0=Disabled, 1=Enabled"},
				{Bits: "5", Name: "ZA_ST", Description: "Z Accel self-test", Values: "0=Disabled, 1=Enabled"},
				{Bits: "4:3", Name: "AFS_SEL", Description: "Accel Full Scale Range", Values: "0=±2g, 1=±4g, 2=±8g, 3=±16g"},
				{Bits: "2:0", Name: "ACCEL_HPF", Description: "Digital high pass filter", Values: "0=Reset, 1=5Hz, 2=2.5Hz, 3=1.25Hz, 4=0.63Hz, 7=Hold"},
			}},
		{Address: "0x1F", Name: "MOT_THR", Description: "Motion Detection Threshold", Access: "RW", Default: "0x00"},
		{Address: "0x20", Name: "MOT_DUR", Description: "Motion Detection Duration", Access: "RW", Default: "0x00"},
		{Address: "0x21", Name: "ZRMOT_THR", Description: "Zero Motion Threshold", Access: "RW", Default: "0x00"},
		{Address: "0x22", Name: "ZRMOT_DUR", Description: "Zero Motion Duration", Access: "RW", Default: "0x00"},
		{Address: "0x23", Name: "FIFO_EN", Description: "FIFO Enable", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7", Name: "TEMP_FIFO_EN", Description: "Temperature into FIFO"},
				{Bits: "6", Name: "XG_FIFO_EN", Description: "Gyro X into FIFO"},
				{Bits: "5", Name: "YG_FIFO_EN", Description: "Gyro Y into FIFO"},
				{Bits: "4", Name: "ZG_FIFO_EN", Description: "Gyro Z into FIFO"},
				{Bits: "3", Name: "ACCEL_FIFO_EN", Description: "Accelerometer into FIFO"},
				{Bits: "2", Name: "SLV2_FIFO_EN", Description: "Slave 2 data into FIFO"},
				{Bits: "1", Name: "SLV1_FIFO_EN", Description: "Slave 1 data into FIFO"},
				{Bits: "0", Name: "SLV0_FIFO_EN", Description: "Slave 0 data into FIFO"},
			}},

		// Interrupts
		{Address: "0x37", Name: "INT_PIN_CFG", Description: "INT Pin / Bypass Enable Configuration", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7", Name: "INT_LEVEL", Description: "INT pin active low", Values: "0=Active high, 1=Active low"},
				{Bits: "6", Name: "INT_OPEN", Description: "INT pin open drain", Values: "0=Push-pull, 1=Open drain"},
				{Bits: "5", Name: "LATCH_INT_EN", Description: "Latch INT pin", Values: "0=50us pulse, 1=Latch until cleared"},
				{Bits: "4", Name: "INT_RD_CLEAR", Description: "Clear INT on any read", Values: "0=Status read only, 1=Any read"},
				{Bits: "1", Name: "I2C_BYPASS_EN", Description: "I2C bypass enable", Values: "0=Disabled, 1=Enabled"},
			}},
		{Address: "0x38", Name: "INT_ENABLE", Description: "Interrupt Enable", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "6", Name: "MOT_EN", Description: "Motion detection interrupt"},
				{Bits: "4", Name: "FIFO_OFLOW_EN", Description: "FIFO overflow interrupt"},
				{Bits: "3", Name: "I2C_MST_INT_EN", Description: "I2C master interrupt"},
				{Bits: "1", Name: "DMP_INT_EN", Description: "DMP interrupt"},
				{Bits: "0", Name: "DATA_RDY_EN", Description: "Data ready interrupt"},
			}},
		{Address: "0x39", Name: "DMP_INT_STATUS", Description: "DMP Interrupt Status", Access: "R"},
		{Address: "0x3A", Name: "INT_STATUS", Description: "Interrupt Status (cleared on read)", Access: "R", Default: "0x00",
			BitFields: []BitField{
				{Bits: "6", Name: "MOT_INT", Description: "Motion detected"},
				{Bits: "4", Name: "FIFO_OFLOW_INT", Description: "FIFO overflowed"},
				{Bits: "1", Name: "DMP_INT", Description: "DMP interrupt"},
				{Bits: "0", Name: "DATA_RDY_INT", Description: "Data ready"},
			}},

		// Sensor outputs
		{Address: "0x3B", Name: "ACCEL_XOUT_H", Description: "Accelerometer X-Axis High Byte", Access: "R"},
		{Address: "0x3C", Name: "ACCEL_XOUT_L", Description: "Accelerometer X-Axis Low Byte", Access: "R"},
		{Address: "0x3D", Name: "ACCEL_YOUT_H", Description: "Accelerometer Y-Axis High Byte", Access: "R"},
		{Address: "0x3E", Name: "ACCEL_YOUT_L", Description: "Accelerometer Y-Axis Low Byte", Access: "R"},
		{Address: "0x3F", Name: "ACCEL_ZOUT_H", Description: "Accelerometer Z-Axis High Byte", Access: "R"},
		{Address: "0x40", Name: "ACCEL_ZOUT_L", Description: "Accelerometer Z-Axis Low Byte", Access: "R"},
		{Address: "0x41", Name: "TEMP_OUT_H", Description: "Temperature High Byte", Access: "R"},
		{Address: "0x42", Name: "TEMP_OUT_L", Description: "Temperature Low Byte", Access: "R"},
		{Address: "0x43", Name: "GYRO_XOUT_H", Description: "Gyroscope X-Axis High Byte", Access: "R"},
		{Address: "0x44", Name: "GYRO_XOUT_L", Description: "Gyroscope X-Axis Low Byte", Access: "R"},
		{Address: "0x45", Name: "GYRO_YOUT_H", Description: "Gyroscope Y-Axis High Byte", Access: "R"},
		{Address: "0x46", Name: "GYRO_YOUT_L", Description: "Gyroscope Y-Axis Low Byte", Access: "R"},
		{Address: "0x47", Name: "GYRO_ZOUT_H", Description: "Gyroscope Z-Axis High Byte", Access: "R"},
		{Address: "0x48", Name: "GYRO_ZOUT_L", Description: "Gyroscope Z-Axis Low Byte", Access: "R"},

		// Control
		{Address: "0x6A", Name: "USER_CTRL", Description: "User Control", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7", Name: "DMP_EN", Description: "Enable DMP"},
				{Bits: "6", Name: "FIFO_EN", Description: "Enable FIFO"},
				{Bits: "5", Name: "I2C_MST_EN", Description: "Enable I2C master"},
				{Bits: "3", Name: "DMP_RESET", Description: "Reset DMP (self-clearing)"},
				{Bits: "2", Name: "FIFO_RESET", Description: "Reset FIFO (self-clearing)"},
				{Bits: "1", Name: "I2C_MST_RESET", Description: "Reset I2C master"},
				{Bits: "0", Name: "SIG_COND_RESET", Description: "Reset signal paths"},
			}},
		{Address: "0x6B", Name: "PWR_MGMT_1", Description: "Power Management 1", Access: "RW", Default: "0x40",
			BitFields: []BitField{
				{Bits: "7", Name: "DEVICE_RESET", Description: "Reset all registers"},
				{Bits: "6", Name: "SLEEP", Description: "Sleep mode"},
				{Bits: "5", Name: "CYCLE", Description: "Cycle between sleep and sample"},
				{Bits: "3", Name: "TEMP_DIS", Description: "Disable temperature sensor"},
				{Bits: "2:0", Name: "CLKSEL", Description: "Clock source", Values: "0=Internal 8MHz, 1=PLL X gyro, 2=PLL Y gyro, 3=PLL Z gyro, 4=PLL ext 32kHz, 5=PLL ext 19MHz, 7=Stop"},
			}},
		{Address: "0x6C", Name: "PWR_MGMT_2", Description: "Power Management 2", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7:6", Name: "LP_WAKE_CTRL", Description: "Low power wake-up frequency", Values: "0=1.25Hz, 1=5Hz, 2=20Hz, 3=40Hz"},
				{Bits: "5:0", Name: "STBY", Description: "Standby XA YA ZA XG YG ZG"},
			}},

		// DMP memory window
		{Address: "0x6D", Name: "BANK_SEL", Description: "DMP memory bank select", Access: "RW"},
		{Address: "0x6E", Name: "MEM_START_ADDR", Description: "DMP memory start address", Access: "RW"},
		{Address: "0x70", Name: "DMP_CFG_1", Description: "DMP program start address high byte", Access: "RW"},
		{Address: "0x71", Name: "DMP_CFG_2", Description: "DMP program start address low byte", Access: "RW"},

		// FIFO
		{Address: "0x72", Name: "FIFO_COUNTH", Description: "FIFO Count High Byte", Access: "R"},
		{Address: "0x73", Name: "FIFO_COUNTL", Description: "FIFO Count Low Byte", Access: "R"},

		// Identity
		{Address: "0x75", Name: "WHO_AM_I", Description: "Device ID (0x68 on MPU-6050)", Access: "R", Default: "0x68",
			BitFields: []BitField{
				{Bits: "6:1", Name: "WHO_AM_I", Description: "Upper 6 bits of the I2C address", Values: "0x34"},
			}},
	}
}

// accelOffsetRegisters6050 describes the MPU-6050 accelerometer offsets.
func accelOffsetRegisters6050() []RegisterInfo {
	return []RegisterInfo{
		{Address: "0x06", Name: "XA_OFFS_H", Description: "X Accel offset high byte (±16g units, bit 0 of the pair is reserved)", Access: "RW"},
		{Address: "0x07", Name: "XA_OFFS_L", Description: "X Accel offset low byte", Access: "RW"},
		{Address: "0x08", Name: "YA_OFFS_H", Description: "Y Accel offset high byte", Access: "RW"},
		{Address: "0x09", Name: "YA_OFFS_L", Description: "Y Accel offset low byte", Access: "RW"},
		{Address: "0x0A", Name: "ZA_OFFS_H", Description: "Z Accel offset high byte", Access: "RW"},
		{Address: "0x0B", Name: "ZA_OFFS_L", Description: "Z Accel offset low byte", Access: "RW"},
	}
}

// accelOffsetRegisters6500 describes the MPU-6500 family accelerometer offsets.
func accelOffsetRegisters6500() []RegisterInfo {
	return []RegisterInfo{
		{Address: "0x77", Name: "XA_OFFSET_H", Description: "X Accel offset high byte (±16g units, bit 0 of the pair is reserved)", Access: "RW"},
		{Address: "0x78", Name: "XA_OFFSET_L", Description: "X Accel offset low byte", Access: "RW"},
		{Address: "0x7A", Name: "YA_OFFSET_H", Description: "Y Accel offset high byte", Access: "RW"},
		{Address: "0x7B", Name: "YA_OFFSET_L", Description: "Y Accel offset low byte", Access: "RW"},
		{Address: "0x7D", Name: "ZA_OFFSET_H", Description: "Z Accel offset high byte", Access: "RW"},
		{Address: "0x7E", Name: "ZA_OFFSET_L", Description: "Z Accel offset low byte", Access: "RW"},
	}
}
