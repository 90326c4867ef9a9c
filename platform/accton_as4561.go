// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package platform

func init() {
	Register(acctonAS4561)
}

// acctonAS4561 is the as4561-52p5-r0 descriptor: two PD69200BT chips on
// separate I2C buses, 24 physical ports each, composed into one 48-port
// logical view. Unlike the single-chip platforms, the same matrix (24 wired
// entries followed by 24 unused ones) and power-bank table is applied
// independently to both chips.
var acctonAS4561 = &Descriptor{
	Name:     "x86-64-accton-as4561-52p5-r0",
	FourPair: true,

	Chips: []ChipBus{
		{I2CBus: 17, I2CAddr: 0x3C},
		{I2CBus: 18, I2CAddr: 0x38},
	},
	PortsPerChip: 24,
	TotalPorts:   48,

	DefaultMatrix: []MatrixEntry{
		{0, 2, 3}, {1, 0, 1}, {2, 6, 7}, {3, 4, 5},
		{4, 10, 11}, {5, 8, 9}, {6, 14, 15}, {7, 12, 13},
		{8, 18, 19}, {9, 16, 17}, {10, 22, 23}, {11, 20, 21},
		{12, 26, 27}, {13, 24, 25}, {14, 30, 31}, {15, 28, 29},
		{16, 34, 35}, {17, 32, 33}, {18, 38, 39}, {19, 36, 37},
		{20, 42, 43}, {21, 40, 41}, {22, 46, 47}, {23, 44, 45},
		{24, noPhy, noPhy}, {25, noPhy, noPhy}, {26, noPhy, noPhy}, {27, noPhy, noPhy},
		{28, noPhy, noPhy}, {29, noPhy, noPhy}, {30, noPhy, noPhy}, {31, noPhy, noPhy},
		{32, noPhy, noPhy}, {33, noPhy, noPhy}, {34, noPhy, noPhy}, {35, noPhy, noPhy},
		{36, noPhy, noPhy}, {37, noPhy, noPhy}, {38, noPhy, noPhy}, {39, noPhy, noPhy},
		{40, noPhy, noPhy}, {41, noPhy, noPhy}, {42, noPhy, noPhy}, {43, noPhy, noPhy},
		{44, noPhy, noPhy}, {45, noPhy, noPhy}, {46, noPhy, noPhy}, {47, noPhy, noPhy},
	},

	PowerBanks:      []PowerBank{{0, 0}, {1, 1500}},
	MaxShutdownVolt: 0x0249, // 58.5V
	MinShutdownVolt: 0x01E0, // 48.0V
	GuardBand:       0x0A,

	PSULabels: []PSULabel{
		{1, "PSU1, PSU2"},
	},
}
