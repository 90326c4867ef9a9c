// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package portview

import (
	"testing"

	"github.com/dentproject/poed/pd69200"
)

func TestPortRefreshAFAT(t *testing.T) {
	var status, priority, limit, meas [pd69200.MsgLen]byte
	status[pd69200.OffsetSub] = 1 // EnDis
	priority[pd69200.OffsetSub] = 2
	limit[pd69200.OffsetSub], limit[pd69200.OffsetSub1] = 0x00, 0x64 // PPL=100

	drv, _ := newAFATDriver(t, status, priority, limit, meas)
	p := NewPort(drv, 3)
	st, err := p.Refresh()
	if err != nil {
		t.Fatalf("Refresh() err = %v", err)
	}
	if !st.Enabled {
		t.Error("Enabled = false, want true")
	}
	if st.Priority != 2 {
		t.Errorf("Priority = %d, want 2", st.Priority)
	}
	if st.PowerLimitMW != 100 {
		t.Errorf("PowerLimitMW = %d, want 100", st.PowerLimitMW)
	}
}

func TestPortSetEnableSkipsWhenUnchanged(t *testing.T) {
	var status [pd69200.MsgLen]byte
	status[pd69200.OffsetSub] = 1 // already enabled
	drv, f := newAFATDriver(t, status)
	p := NewPort(drv, 0)

	changed, err := p.SetEnable(true)
	if err != nil {
		t.Fatalf("SetEnable() err = %v", err)
	}
	if changed {
		t.Error("SetEnable(true) on an already-enabled port reported changed = true")
	}
	if len(f.writes) != 2 { // dialect probe + get_port_status, no set command
		t.Errorf("writes = %d, want 2 (no set command issued)", len(f.writes))
	}
}

func TestPortSetEnableIssuesCommandWhenDifferent(t *testing.T) {
	var status, setReply [pd69200.MsgLen]byte
	status[pd69200.OffsetSub] = 0 // currently disabled
	drv, f := newAFATDriver(t, status, setReply)
	p := NewPort(drv, 0)

	changed, err := p.SetEnable(true)
	if err != nil {
		t.Fatalf("SetEnable() err = %v", err)
	}
	if !changed {
		t.Error("SetEnable(true) on a disabled port should report changed = true")
	}
	if len(f.writes) != 3 { // probe + get_port_status + set_port_enDis
		t.Errorf("writes = %d, want 3", len(f.writes))
	}
}

func TestPortSetPowerLimitRejectedUnderBT(t *testing.T) {
	drv, _ := newBTDriver(t)
	p := NewPort(drv, 0)
	if _, err := p.SetPowerLimit(15000); err == nil {
		t.Fatal("SetPowerLimit() under BT should fail")
	}
}

func TestPortApplyOnlyChangesDifferingFields(t *testing.T) {
	var status, setEnable [pd69200.MsgLen]byte
	status[pd69200.OffsetSub] = 0 // disabled
	drv, f := newAFATDriver(t, status, setEnable)
	p := NewPort(drv, 0)

	enable := true
	changed, err := p.Apply(Params{Enable: &enable})
	if err != nil {
		t.Fatalf("Apply() err = %v", err)
	}
	if !changed {
		t.Error("Apply() should report changed = true")
	}
	if len(f.writes) != 3 { // probe + get status + set enable
		t.Errorf("writes = %d, want 3", len(f.writes))
	}
}
