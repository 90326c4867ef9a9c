// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package portview

import (
	"fmt"

	"github.com/dentproject/poed/pd69200"
)

// Status is one logical port's normalized state: power-limit and power-
// consumption are always in milliwatts and voltage is always in decivolts,
// regardless of which dialect reported them.
type Status struct {
	LogicPort        byte
	Enabled          bool
	Priority         byte
	PowerLimitMW     uint32
	PortStatus       byte
	Protocol         byte
	Latch            byte
	En4Pair          byte
	Class            byte
	MeasuredClass    byte
	PowerConsumption uint32 // mW
	Voltage          uint16 // decivolts
	Current          uint16 // mA
}

// Port is a dialect-agnostic read/modify/write wrapper over one logical
// port of a pd69200.Driver.
type Port struct {
	drv       *pd69200.Driver
	logicPort byte
}

// NewPort returns a Port view over logicPort on drv.
func NewPort(drv *pd69200.Driver, logicPort byte) *Port {
	return &Port{drv: drv, logicPort: logicPort}
}

// Refresh reads back logicPort's complete current state.
func (p *Port) Refresh() (Status, error) {
	if p.drv.Dialect() == pd69200.DialectBT {
		return p.refreshBT()
	}
	return p.refreshAFAT()
}

func (p *Port) refreshAFAT() (Status, error) {
	st, err := p.drv.GetPortStatus(p.logicPort)
	if err != nil {
		return Status{}, fmt.Errorf("portview: get port status for port %d: %w", p.logicPort, err)
	}
	pr, err := p.drv.GetPortPriority(p.logicPort)
	if err != nil {
		return Status{}, fmt.Errorf("portview: get port priority for port %d: %w", p.logicPort, err)
	}
	pl, err := p.drv.GetPortPowerLimit(p.logicPort)
	if err != nil {
		return Status{}, fmt.Errorf("portview: get port power limit for port %d: %w", p.logicPort, err)
	}
	meas, err := p.drv.GetPortMeasurements(p.logicPort)
	if err != nil {
		return Status{}, fmt.Errorf("portview: get port measurements for port %d: %w", p.logicPort, err)
	}
	return Status{
		LogicPort:        p.logicPort,
		Enabled:          st.EnDis != 0,
		Priority:         pr.Priority,
		PowerLimitMW:     uint32(pl.PPL),
		PortStatus:       st.Status,
		Protocol:         st.Protocol,
		Latch:            st.Latch,
		En4Pair:          st.En4Pair,
		Class:            st.Class,
		PowerConsumption: uint32(meas.PowerConsumption),
		Voltage:          meas.Voltage,
		Current:          meas.Current,
	}, nil
}

func (p *Port) refreshBT() (Status, error) {
	params, err := p.drv.GetBTPortParameters(p.logicPort)
	if err != nil {
		return Status{}, fmt.Errorf("portview: get bt port parameters for port %d: %w", p.logicPort, err)
	}
	class, err := p.drv.GetBTPortClass(p.logicPort)
	if err != nil {
		return Status{}, fmt.Errorf("portview: get bt port class for port %d: %w", p.logicPort, err)
	}
	meas, err := p.drv.GetBTPortMeasurements(p.logicPort)
	if err != nil {
		return Status{}, fmt.Errorf("portview: get bt port measurements for port %d: %w", p.logicPort, err)
	}
	return Status{
		LogicPort:        p.logicPort,
		Enabled:          params.EnDis != 0,
		Priority:         params.Priority,
		PowerLimitMW:     uint32(class.TPPL) * 100,
		PortStatus:       params.Status,
		Class:            class.Class >> 4,
		MeasuredClass:    class.MeasuredClass >> 4,
		PowerConsumption: uint32(meas.PowerConsumption) * 100,
		Voltage:          meas.Voltage,
		Current:          meas.Current,
	}, nil
}

// SetEnable enables or disables the port if its current state differs,
// and reports whether a command was actually issued.
func (p *Port) SetEnable(enable bool) (bool, error) {
	want := byte(0)
	if enable {
		want = 1
	}
	if p.drv.Dialect() == pd69200.DialectBT {
		params, err := p.drv.GetBTPortParameters(p.logicPort)
		if err != nil {
			return false, err
		}
		if params.EnDis == want {
			return false, nil
		}
		return true, p.drv.SetBTPortEnable(p.logicPort, enable)
	}
	st, err := p.drv.GetPortStatus(p.logicPort)
	if err != nil {
		return false, err
	}
	if st.EnDis == want {
		return false, nil
	}
	return true, p.drv.SetPortEnable(p.logicPort, enable)
}

// SetPriority sets the port's priority if it differs from the chip's
// current value.
func (p *Port) SetPriority(priority byte) (bool, error) {
	if p.drv.Dialect() == pd69200.DialectBT {
		params, err := p.drv.GetBTPortParameters(p.logicPort)
		if err != nil {
			return false, err
		}
		if params.Priority == priority {
			return false, nil
		}
		return true, p.drv.SetBTPortPriority(p.logicPort, priority)
	}
	pr, err := p.drv.GetPortPriority(p.logicPort)
	if err != nil {
		return false, err
	}
	if pr.Priority == priority {
		return false, nil
	}
	return true, p.drv.SetPortPriority(p.logicPort, priority)
}

// SetPowerLimit sets the port's power limit in mW. AF/AT only: BT firmware
// derives the limit from the negotiated class, so this returns
// an error wrapping pd69200.ErrUnsupported there without calling the driver.
func (p *Port) SetPowerLimit(limitMW uint16) (bool, error) {
	if p.drv.Dialect() == pd69200.DialectBT {
		return false, fmt.Errorf("portview: set power limit for port %d: %w", p.logicPort, pd69200.ErrUnsupported)
	}
	pl, err := p.drv.GetPortPowerLimit(p.logicPort)
	if err != nil {
		return false, err
	}
	if pl.PPL == limitMW {
		return false, nil
	}
	if err := p.drv.SetPortPowerLimit(p.logicPort, limitMW); err != nil {
		return false, err
	}
	return true, nil
}

// Params bundles the subset of a port's settable fields a config restore or
// a poecli invocation may want to apply together.
type Params struct {
	Enable       *bool
	Priority     *byte
	PowerLimitMW *uint16
}

// Apply sets every non-nil field in params, skipping BT's unsupported
// power-limit setter, and reports whether anything actually changed.
func (p *Port) Apply(params Params) (bool, error) {
	changed := false
	if params.Enable != nil {
		c, err := p.SetEnable(*params.Enable)
		if err != nil {
			return changed, err
		}
		changed = changed || c
	}
	if params.PowerLimitMW != nil && p.drv.Dialect() != pd69200.DialectBT {
		c, err := p.SetPowerLimit(*params.PowerLimitMW)
		if err != nil {
			return changed, err
		}
		changed = changed || c
	}
	if params.Priority != nil {
		c, err := p.SetPriority(*params.Priority)
		if err != nil {
			return changed, err
		}
		changed = changed || c
	}
	return changed, nil
}
