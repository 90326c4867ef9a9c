// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package platform

import (
	"fmt"

	"github.com/dentproject/poed/pd69200"
)

// MatrixEntry maps one logical port to its physical pair(s) on a chip. PhyB
// is 0xFF when the switch wires that logical port in 2-pair mode only.
type MatrixEntry struct {
	LogicPort byte
	PhyA      byte
	PhyB      byte
}

const noPhy = 0xFF

// PowerBank is one (bank id, budget watts) entry of a chip's power-bank
// table, applied in order during platform bring-up.
type PowerBank struct {
	Bank   byte
	Budget uint16 // watts
}

// ChipBus identifies one physical PD69200 chip on the carrier board: its
// I2C bus number and 7-bit address. Single-chip platforms have exactly one
// entry; multi-chip platforms (e.g. as4561-52p5) have one per chip select.
type ChipBus struct {
	I2CBus  int
	I2CAddr uint16
}

// PSULabel names the power-supply combination backing one power bank, for
// status reporting (e.g. "PSU1, PSU2").
type PSULabel struct {
	Bank  byte
	Label string
}

// Descriptor is a switch model's static PoE configuration: everything a
// daemon needs to construct chip drivers and bring each one up from cold
// boot, independent of runtime port state.
type Descriptor struct {
	Name string

	Chips        []ChipBus
	PortsPerChip int
	TotalPorts   int

	DefaultMatrix []MatrixEntry
	FourPair      bool // true if DefaultMatrix wires each logic port across two phy pairs (PhyA and PhyB), not just PhyA

	PowerBanks       []PowerBank
	MaxShutdownVolt  uint16
	MinShutdownVolt  uint16
	GuardBand        byte
	PortPowerLimitMW uint16 // 0 means the model doesn't set a flat per-port limit

	PSULabels []PSULabel
}

// ChipForPort returns which chip index (0-based) owns the given global port
// id, and the port id local to that chip. Single-chip descriptors always
// return (0, portID).
func (d *Descriptor) ChipForPort(portID int) (chipIndex, localPort int) {
	if d.PortsPerChip <= 0 {
		return 0, portID
	}
	return portID / d.PortsPerChip, portID % d.PortsPerChip
}

// BankToPSU reports the PSU combination backing bank, or "" if unknown.
func (d *Descriptor) BankToPSU(bank byte) string {
	for _, p := range d.PSULabels {
		if p.Bank == bank {
			return p.Label
		}
	}
	return ""
}

// Validate sanity-checks a descriptor's invariants: at least one chip, a
// positive port count, and a matrix entry for every port the descriptor
// claims. Power limits are not checked.
func (d *Descriptor) Validate() error {
	if len(d.Chips) == 0 {
		return fmt.Errorf("platform %q: no chips configured", d.Name)
	}
	if d.TotalPorts <= 0 {
		return fmt.Errorf("platform %q: total port count must be positive", d.Name)
	}
	if len(d.DefaultMatrix) != d.TotalPorts {
		return fmt.Errorf("platform %q: default matrix has %d entries, want %d",
			d.Name, len(d.DefaultMatrix), d.TotalPorts)
	}
	return nil
}

// MatrixMatchesDefault reports whether every logical port's currently
// programmed matrix mapping already equals the descriptor's default. It
// stops at the first mismatch, mirroring the early-return comparison used
// before deciding whether a full matrix reprogram (and its port outage) is
// necessary.
func MatrixMatchesDefault(d *Descriptor, drv *pd69200.Driver) (bool, error) {
	for _, m := range d.DefaultMatrix {
		got, err := drv.GetActiveMatrix(m.LogicPort)
		if err != nil {
			return false, fmt.Errorf("platform: reading active matrix for port %d: %w", m.LogicPort, err)
		}
		if got.PhyA != m.PhyA {
			return false, nil
		}
		if d.FourPair && got.PhyB != m.PhyB {
			return false, nil
		}
	}
	return true, nil
}
