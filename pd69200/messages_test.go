// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pd69200

import (
	"reflect"
	"testing"
)

func TestParseAllPortsEnDisLayoutSkipsData5(t *testing.T) {
	var msg [MsgLen]byte
	msg[OffsetSub] = 0x01   // port 0 on
	msg[OffsetSub1] = 0x00  // ports 8..15 off
	msg[OffsetSub2] = 0x00  // ports 16..23 off
	msg[OffsetData5] = 0xFF // must be ignored entirely
	msg[OffsetData6] = 0x80 // port 31 on (top bit of group)
	msg[OffsetData7] = 0x00
	msg[OffsetData8] = 0x00

	got := parseAllPortsEnDis(msg)
	if len(got.EnDis) != 48 {
		t.Fatalf("len(EnDis) = %d, want 48", len(got.EnDis))
	}
	if got.EnDis[0] != 1 {
		t.Errorf("port 0 = %d, want 1", got.EnDis[0])
	}
	if got.EnDis[31] != 1 {
		t.Errorf("port 31 = %d, want 1", got.EnDis[31])
	}
	for i := 1; i < 31; i++ {
		if got.EnDis[i] != 0 {
			t.Errorf("port %d = %d, want 0 (DATA5 must not leak in)", i, got.EnDis[i])
		}
	}
}

func TestParsePowerSupplyParams(t *testing.T) {
	var msg [MsgLen]byte
	msg[OffsetSub], msg[OffsetSub1] = 0x01, 0x90   // consumption = 0x0190
	msg[OffsetSub2], msg[OffsetData5] = 0x02, 0x39 // max sd volt = 0x0239
	msg[OffsetData6], msg[OffsetData7] = 0x01, 0xF5
	msg[OffsetData9] = 15
	msg[OffsetData10], msg[OffsetData11] = 0x05, 0xDC

	got := parsePowerSupplyParams(msg)
	want := PowerSupplyParams{
		PowerConsumption: 0x0190,
		MaxShutdownVolt:  0x0239,
		MinShutdownVolt:  0x01F5,
		PowerBank:        15,
		TotalPower:       0x05DC,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parsePowerSupplyParams() = %+v, want %+v", got, want)
	}
}

func TestParseBTPortClass(t *testing.T) {
	var msg [MsgLen]byte
	msg[OffsetSub2] = 0x50  // measured class
	msg[OffsetData8] = 0x60 // class nibble in upper bits
	msg[OffsetData9], msg[OffsetData10] = 0x00, 0x64

	got := parseBTPortClass(msg)
	if got.MeasuredClass != 0x50 || got.Class != 0x60 || got.TPPL != 0x64 {
		t.Errorf("parseBTPortClass() = %+v", got)
	}
}

func TestParseSoftwareVersionFormat(t *testing.T) {
	var msg [MsgLen]byte
	msg[OffsetSub2] = 3                            // product number
	msg[OffsetData5], msg[OffsetData6] = 0x01, 0x4B // sw_ver = 331 -> 3.3.1

	sv := parseSoftwareVersion(msg)
	if sv.SWVer != 331 {
		t.Fatalf("SWVer = %d, want 331", sv.SWVer)
	}
	major, minor, patch := sv.SWVer/100, (sv.SWVer/10)%10, sv.SWVer%10
	if major != 3 || minor != 3 || patch != 1 {
		t.Errorf("major.minor.patch = %d.%d.%d, want 3.3.1", major, minor, patch)
	}
}
