// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package platform

func init() {
	Register(acctonAS4564)
}

// acctonAS4564 is the as4564-26p-r0 descriptor: one PD69200BT chip, 24
// powered ports (of 48 logical slots), a mix of 2-pair and 4-pair wiring
// across the matrix, and a single 520W bank. Unlike as4224/tn48m this model
// relies on BT per-port operation mode rather than a flat power limit.
var acctonAS4564 = &Descriptor{
	Name: "x86-64-accton-as4564-26p-r0",

	Chips:        []ChipBus{{I2CBus: 1, I2CAddr: 0x3C}},
	PortsPerChip: 48,
	TotalPorts:   48,

	DefaultMatrix: []MatrixEntry{
		{0, 4, noPhy}, {1, 5, noPhy}, {2, 6, noPhy}, {3, 7, noPhy},
		{4, 1, noPhy}, {5, 2, noPhy}, {6, 3, noPhy}, {7, 0, noPhy},
		{8, 12, noPhy}, {9, 13, noPhy}, {10, 14, noPhy}, {11, 15, noPhy},
		{12, 11, noPhy}, {13, 10, noPhy}, {14, 9, noPhy}, {15, 8, noPhy},
		{16, 22, 21}, {17, 20, 23}, {18, 19, 18}, {19, 17, 16},
		{20, 30, 29}, {21, 28, 31}, {22, 27, 26}, {23, 25, 24},
		{24, noPhy, noPhy}, {25, noPhy, noPhy}, {26, noPhy, noPhy}, {27, noPhy, noPhy},
		{28, noPhy, noPhy}, {29, noPhy, noPhy}, {30, noPhy, noPhy}, {31, noPhy, noPhy},
		{32, noPhy, noPhy}, {33, noPhy, noPhy}, {34, noPhy, noPhy}, {35, noPhy, noPhy},
		{36, noPhy, noPhy}, {37, noPhy, noPhy}, {38, noPhy, noPhy}, {39, noPhy, noPhy},
		{40, noPhy, noPhy}, {41, noPhy, noPhy}, {42, noPhy, noPhy}, {43, noPhy, noPhy},
		{44, noPhy, noPhy}, {45, noPhy, noPhy}, {46, noPhy, noPhy}, {47, noPhy, noPhy},
	},

	PowerBanks:      []PowerBank{{1, 520}},
	MaxShutdownVolt: 0x0249, // 58.5V
	MinShutdownVolt: 0x01E0, // 48.0V
	GuardBand:       0x0A,

	PSULabels: []PSULabel{
		{1, "PSU1, PSU2"},
	},
}
