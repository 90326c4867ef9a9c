// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package platform

func init() {
	Register(acctonAS4224)
}

// acctonAS4224 is the as4224-52p-r0 descriptor: one PD69200 chip, 48 ports,
// 2-pair matrix, three-bank 680/680/1500W supply.
var acctonAS4224 = &Descriptor{
	Name: "x86-64-accton-as4224-52p-r0",

	Chips:        []ChipBus{{I2CBus: 1, I2CAddr: 0x3C}},
	PortsPerChip: 48,
	TotalPorts:   48,

	DefaultMatrix: []MatrixEntry{
		{0, 7, noPhy}, {1, 4, noPhy}, {2, 5, noPhy}, {3, 6, noPhy},
		{4, 0, noPhy}, {5, 1, noPhy}, {6, 2, noPhy}, {7, 3, noPhy},
		{8, 12, noPhy}, {9, 13, noPhy}, {10, 14, noPhy}, {11, 15, noPhy},
		{12, 9, noPhy}, {13, 10, noPhy}, {14, 11, noPhy}, {15, 8, noPhy},
		{16, 20, noPhy}, {17, 21, noPhy}, {18, 22, noPhy}, {19, 23, noPhy},
		{20, 17, noPhy}, {21, 18, noPhy}, {22, 19, noPhy}, {23, 16, noPhy},
		{24, 28, noPhy}, {25, 29, noPhy}, {26, 30, noPhy}, {27, 31, noPhy},
		{28, 27, noPhy}, {29, 26, noPhy}, {30, 25, noPhy}, {31, 24, noPhy},
		{32, 39, noPhy}, {33, 36, noPhy}, {34, 37, noPhy}, {35, 38, noPhy},
		{36, 32, noPhy}, {37, 33, noPhy}, {38, 34, noPhy}, {39, 35, noPhy},
		{40, 47, noPhy}, {41, 44, noPhy}, {42, 45, noPhy}, {43, 46, noPhy},
		{44, 40, noPhy}, {45, 41, noPhy}, {46, 42, noPhy}, {47, 43, noPhy},
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
