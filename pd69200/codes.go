// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pd69200

// SUB byte (offset 2) command group selectors.
const (
	subChannel      = 0x05
	subE2           = 0x06
	subGlobal       = 0x07
	subRestoreFact  = 0x2D
	subUserByte     = 0x41
)

// SUB1 byte (offset 3) command selectors, AF/AT dialect.
const (
	sub1Priority      = 0x0A
	sub1Supply        = 0x0B
	sub1EnDis         = 0x0C
	sub1PortStatus    = 0x0E
	sub1SaveConfig    = 0x0F
	sub1Versionz      = 0x1E
	sub1Paramz        = 0x25
	sub1SystemStatus  = 0x3D
	sub1TempMatrix    = 0x43
	sub1ChMatrix      = 0x44
	sub1Reset         = 0x55
	sub1IndvMask      = 0x56
	sub1DevParams     = 0x87
)

// SUB1 byte, BT dialect.
const (
	sub1BTSystemStatus = 0xD0
	sub1BTPortParams   = 0xC0
	sub1BTPortClass    = 0xC4
	sub1BTPortMeas     = 0xC5
)

// SUB2 byte (offset 4) sub-selectors.
const (
	sub2Main          = 0x17
	sub2SWVersion     = 0x21
	sub2PwrBudget     = 0x57
	sub2PwrManageMode = 0x5F
	sub2TotalPwr      = 0x60
)

// Port enable/disable data values shared across dialects.
const (
	dataEnDisOnly  = 0x00
	dataDisable    = 0x00
	dataEnable     = 0x01
	dataBTEnDisNoChange = 0x0F
)

// BT port-mode/class/priority "no change" sentinels used when a BT command
// touches only one field of the multi-field ports-parameters record.
const (
	btModeNoChange        = 0x0F
	btClassErrorNoChange  = 0xF0
	btOpModeNoChange      = 0xFF
	btPowerSame           = 0x00
	btPriorityNoChange    = 0xFF
)

// Priority data values, shared by AF/AT and (TBD per-port) BT priority byte.
const (
	PriorityCrit = 1
	PriorityHigh = 2
	PriorityLow  = 3
)

// AF/AT port protocol/type data values.
const (
	protocolAF   = 0
	portTypeAT   = 1
	portTypeAOH  = 2
)

// Power management method defaults (dynamic / PPL / no-condition).
const (
	PM1Dynamic = 0
	PM2PPL     = 0
	PM3NoCond  = 0
)
