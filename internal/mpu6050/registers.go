// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu6050

// I2C addresses selected by the AD0 pin.
const (
	AddrAD0Low  uint16 = 0x68
	AddrAD0High uint16 = 0x69
	DefaultAddr        = AddrAD0Low
)

// Register addresses.
const (
	RegXGOffsTC     = 0x00
	RegYGOffsTC     = 0x01
	RegZGOffsTC     = 0x02
	RegXAOffsH      = 0x06
	RegYAOffsH      = 0x08
	RegZAOffsH      = 0x0A
	RegSelfTestX    = 0x0D
	RegSelfTestY    = 0x0E
	RegSelfTestZ    = 0x0F
	RegSelfTestA    = 0x10
	RegXGOffsUsrH   = 0x13
	RegYGOffsUsrH   = 0x15
	RegZGOffsUsrH   = 0x17
	RegSmplrtDiv    = 0x19
	RegConfig       = 0x1A
	RegGyroConfig   = 0x1B
	RegAccelConfig  = 0x1C
	RegFFThr        = 0x1D
	RegFFDur        = 0x1E
	RegMotThr       = 0x1F
	RegMotDur       = 0x20
	RegZRMotThr     = 0x21
	RegZRMotDur     = 0x22
	RegFIFOEn       = 0x23
	RegI2CMstCtrl   = 0x24
	RegI2CMstStatus = 0x36
	RegIntPinCfg    = 0x37
	RegIntEnable    = 0x38
	RegDMPIntStatus = 0x39
	RegIntStatus    = 0x3A
	RegAccelXOutH   = 0x3B
	RegAccelYOutH   = 0x3D
	RegAccelZOutH   = 0x3F
	RegTempOutH     = 0x41
	RegGyroXOutH    = 0x43
	RegGyroYOutH    = 0x45
	RegGyroZOutH    = 0x47
	RegMotDetStatus = 0x61
	RegSignalReset  = 0x68
	RegMotDetCtrl   = 0x69
	RegUserCtrl     = 0x6A
	RegPwrMgmt1     = 0x6B
	RegPwrMgmt2     = 0x6C
	RegBankSel      = 0x6D
	RegMemStartAddr = 0x6E
	RegMemRW        = 0x6F
	RegDMPCfg1      = 0x70
	RegDMPCfg2      = 0x71
	RegFIFOCountH   = 0x72
	RegFIFOCountL   = 0x73
	RegFIFORW       = 0x74
	RegWhoAmI       = 0x75

	// MPU-6500 family parts keep the accelerometer offsets further up,
	// three registers apart.
	RegXAOffsH6500 = 0x77
	RegYAOffsH6500 = 0x7A
	RegZAOffsH6500 = 0x7D
)

// Bit positions use the register-map convention: bit is the most significant
// bit of the field, length counts towards bit 0.
const (
	cfgExtSyncSetBit    = 5
	cfgExtSyncSetLength = 3
	cfgDLPFCfgBit       = 2
	cfgDLPFCfgLength    = 3

	gConfigFSSelBit    = 4
	gConfigFSSelLength = 2

	aConfigAFSSelBit    = 4
	aConfigAFSSelLength = 2

	tempFIFOEnBit  = 7
	xgFIFOEnBit    = 6
	ygFIFOEnBit    = 5
	zgFIFOEnBit    = 4
	accelFIFOEnBit = 3

	interruptFIFOOflowBit = 4
	interruptDMPIntBit    = 1
	interruptDataRdyBit   = 0

	userCtrlDMPEnBit       = 7
	userCtrlFIFOEnBit      = 6
	userCtrlI2CMstEnBit    = 5
	userCtrlDMPResetBit    = 3
	userCtrlFIFOResetBit   = 2
	userCtrlSigCondReset   = 0
	pwr1DeviceResetBit     = 7
	pwr1SleepBit           = 6
	pwr1CycleBit           = 5
	pwr1TempDisBit         = 3
	pwr1ClkSelBit          = 2
	pwr1ClkSelLength       = 3
	bankSelPrefetchEnBit   = 6
	bankSelCfgUserBankBit  = 5
	bankSelMemSelBit       = 4
	bankSelMemSelLength    = 5
	whoAmIBit              = 6
	whoAmILength           = 6
	tcOffsetBit            = 6
	tcOffsetLength         = 6
	tcOTPBankValidBit      = 0
	signalPathResetBitsAll = 0x07
)

// Clock sources for PWR_MGMT_1.
const (
	ClockInternal  = 0x00
	ClockPLLXGyro  = 0x01
	ClockPLLYGyro  = 0x02
	ClockPLLZGyro  = 0x03
	ClockPLLExt32K = 0x04
	ClockPLLExt19M = 0x05
	ClockKeepReset = 0x07
)

// Full-scale ranges.
const (
	GyroFS250  = 0x00
	GyroFS500  = 0x01
	GyroFS1000 = 0x02
	GyroFS2000 = 0x03

	AccelFS2  = 0x00
	AccelFS4  = 0x01
	AccelFS8  = 0x02
	AccelFS16 = 0x03
)

// DLPF bandwidth settings for CONFIG.DLPF_CFG.
const (
	DLPFBW256 = 0x00
	DLPFBW188 = 0x01
	DLPFBW98  = 0x02
	DLPFBW42  = 0x03
	DLPFBW20  = 0x04
	DLPFBW10  = 0x05
	DLPFBW5   = 0x06
)

// DMP memory geometry.
const (
	DMPMemoryBankSize  = 256
	DMPMemoryChunkSize = 16

	// DMPCodeSize is the size of the MotionApps firmware image.
	DMPCodeSize = 3062

	// DMPMemoryBanks is the number of banks the firmware image spans.
	DMPMemoryBanks = (DMPCodeSize + DMPMemoryBankSize - 1) / DMPMemoryBankSize

	// dmpStartAddress is the program counter loaded into DMP_CFG_1/2 after upload.
	dmpStartAddress = 0x0400
)

// FIFOCapacity is the size in bytes of the hardware FIFO.
const FIFOCapacity = 1024

// WHO_AM_I values reported by supported parts.
const (
	WhoAmIMPU6050 = 0x68
	WhoAmIMPU6500 = 0x70
	WhoAmIMPU9250 = 0x71
	WhoAmIMPU9255 = 0x73
)
