// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package portview

import (
	"fmt"

	"github.com/dentproject/poed/pd69200"
)

// SystemStatus is one chip's normalized system-wide state.
type SystemStatus struct {
	TotalPorts      int
	TotalPowerW     uint16
	PowerConsumedW  uint16
	PowerAvailW     int32
	PowerBank       byte
	PowerSource     string
	MaxShutdownVolt uint16 // decivolts
	MinShutdownVolt uint16 // decivolts

	PM1, PM2, PM3 byte // AF/AT only, zero under BT

	CPUStatus1 byte // AF/AT only
	CPUStatus2 byte
	FacDefault byte
	GIE        byte // AF/AT only
	PrivLabel  byte
	UserByte   byte // AF/AT only
	DeviceFail byte // AF/AT only
	TempDisco  byte // AF/AT only
	TempAlarm  byte // AF/AT only
	IntrReg    uint16

	NVMUserByte byte // BT only
	FoundDevice byte // BT only
	EventExist  byte // BT only
}

// System is a dialect-agnostic read-only view over one chip's aggregate
// power-supply and status registers.
type System struct {
	drv        *pd69200.Driver
	totalPorts int
	bankToPSU  func(bank byte) string
}

// NewSystem returns a System view over drv. totalPorts is the platform's
// configured port count (the chip has no way to report it itself) and
// bankToPSU labels the active power bank for display, e.g. "PSU1, PSU2".
func NewSystem(drv *pd69200.Driver, totalPorts int, bankToPSU func(byte) string) *System {
	return &System{drv: drv, totalPorts: totalPorts, bankToPSU: bankToPSU}
}

// Refresh reads back the chip's current aggregate status.
func (s *System) Refresh() (SystemStatus, error) {
	supply, err := s.drv.GetPowerSupplyParams()
	if err != nil {
		return SystemStatus{}, fmt.Errorf("portview: get power supply params: %w", err)
	}
	out := SystemStatus{
		TotalPorts:      s.totalPorts,
		TotalPowerW:     supply.TotalPower,
		PowerConsumedW:  supply.PowerConsumption,
		PowerAvailW:     int32(supply.TotalPower) - int32(supply.PowerConsumption),
		PowerBank:       supply.PowerBank,
		MaxShutdownVolt: supply.MaxShutdownVolt,
		MinShutdownVolt: supply.MinShutdownVolt,
	}
	if s.bankToPSU != nil {
		out.PowerSource = s.bankToPSU(supply.PowerBank)
	}

	if s.drv.Dialect() == pd69200.DialectBT {
		bt, err := s.drv.GetBTSystemStatus()
		if err != nil {
			return SystemStatus{}, fmt.Errorf("portview: get bt system status: %w", err)
		}
		out.CPUStatus2 = bt.CPUStatus2
		out.FacDefault = bt.FacDefault
		out.PrivLabel = bt.PrivLabel
		out.NVMUserByte = bt.NvmUserByte
		out.FoundDevice = bt.FoundDevice
		out.EventExist = bt.EventExist
		return out, nil
	}

	sys, err := s.drv.GetSystemStatus()
	if err != nil {
		return SystemStatus{}, fmt.Errorf("portview: get system status: %w", err)
	}
	out.CPUStatus1 = sys.CPUStatus1
	out.CPUStatus2 = sys.CPUStatus2
	out.FacDefault = sys.FacDefault
	out.GIE = sys.GIE
	out.PrivLabel = sys.PrivLabel
	out.UserByte = sys.UserByte
	out.DeviceFail = sys.DeviceFail
	out.TempDisco = sys.TempDisco
	out.TempAlarm = sys.TempAlarm
	out.IntrReg = sys.IntrReg

	pm, err := s.drv.GetPMMethod()
	if err != nil {
		return SystemStatus{}, fmt.Errorf("portview: get pm method: %w", err)
	}
	out.PM1, out.PM2, out.PM3 = pm.PM1, pm.PM2, pm.PM3
	return out, nil
}
