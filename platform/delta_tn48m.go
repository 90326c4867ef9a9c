// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package platform

func init() {
	Register(deltaTN48M)
}

// deltaTN48M is the tn48m-poe-r0 descriptor: one PD69200 chip, 48 ports,
// 2-pair matrix, the same three-bank 680/680/1500W supply as as4224.
var deltaTN48M = &Descriptor{
	Name: "x86-64-delta-tn48m-poe-r0",

	Chips:        []ChipBus{{I2CBus: 1, I2CAddr: 0x3C}},
	PortsPerChip: 48,
	TotalPorts:   48,

	DefaultMatrix: []MatrixEntry{
		{0, 2, noPhy}, {1, 3, noPhy}, {2, 0, noPhy}, {3, 1, noPhy},
		{4, 5, noPhy}, {5, 4, noPhy}, {6, 7, noPhy}, {7, 6, noPhy},
		{8, 10, noPhy}, {9, 11, noPhy}, {10, 8, noPhy}, {11, 9, noPhy},
		{12, 13, noPhy}, {13, 12, noPhy}, {14, 15, noPhy}, {15, 14, noPhy},
		{16, 21, noPhy}, {17, 20, noPhy}, {18, 23, noPhy}, {19, 22, noPhy},
		{20, 18, noPhy}, {21, 19, noPhy}, {22, 16, noPhy}, {23, 17, noPhy},
		{24, 29, noPhy}, {25, 28, noPhy}, {26, 31, noPhy}, {27, 30, noPhy},
		{28, 26, noPhy}, {29, 27, noPhy}, {30, 24, noPhy}, {31, 25, noPhy},
		{32, 37, noPhy}, {33, 36, noPhy}, {34, 39, noPhy}, {35, 38, noPhy},
		{36, 34, noPhy}, {37, 35, noPhy}, {38, 32, noPhy}, {39, 33, noPhy},
		{40, 45, noPhy}, {41, 44, noPhy}, {42, 47, noPhy}, {43, 46, noPhy},
		{44, 42, noPhy}, {45, 43, noPhy}, {46, 40, noPhy}, {47, 41, noPhy},
	},

	PowerBanks:       []PowerBank{{13, 680}, {14, 680}, {15, 1500}},
	MaxShutdownVolt:  0x0239, // 56.9V
	MinShutdownVolt:  0x01F5, // 50.1V
	GuardBand:        0x01,
	PortPowerLimitMW: 0x7530, // 30000mW

	PSULabels: []PSULabel{
		{13, "PSU2"}, {14, "PSU1"}, {15, "PSU1, PSU2"},
	},
}
