// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package portview

import (
	"errors"
	"testing"

	"periph.io/x/periph/conn/physic"

	"github.com/dentproject/poed/pd69200"
)

// fakeBus is a scripted i2c.Bus fake, one reply per write+read round trip,
// echoing back the ECHO byte of the most recent write, filling in the
// expected reply key when the reply leaves it zero, and filling in the
// checksum when both checksum bytes are zero, so validation passes without
// the test predicting the echo sequence by hand.
type fakeBus struct {
	replies [][pd69200.MsgLen]byte
	writes  [][]byte
	idx     int
}

func (f *fakeBus) Tx(addr uint16, w, r []byte) error {
	if len(w) != 0 {
		cp := make([]byte, len(w))
		copy(cp, w)
		f.writes = append(f.writes, cp)
		return nil
	}
	if len(r) != 0 {
		if f.idx >= len(f.replies) {
			return errors.New("fakeBus: no more replies queued")
		}
		reply := f.replies[f.idx]
		if len(f.writes) > 0 {
			last := f.writes[len(f.writes)-1]
			reply[pd69200.OffsetEcho] = last[pd69200.OffsetEcho]
			if reply[pd69200.OffsetKey] == 0 {
				reply[pd69200.OffsetKey] = byte(pd69200.KeyReport)
				if pd69200.Key(last[pd69200.OffsetKey]) == pd69200.KeyRequest {
					reply[pd69200.OffsetKey] = byte(pd69200.KeyTelemetry)
				}
			}
		}
		if reply[pd69200.OffsetCsumHi] == 0 && reply[pd69200.OffsetCsumLo] == 0 {
			var sum uint16
			for _, b := range reply[:pd69200.OffsetCsumHi] {
				sum += uint16(b)
			}
			reply[pd69200.OffsetCsumHi], reply[pd69200.OffsetCsumLo] = byte(sum>>8), byte(sum)
		}
		f.idx++
		copy(r, reply[:])
		return nil
	}
	return nil
}

func (f *fakeBus) String() string                   { return "fakeBus" }
func (f *fakeBus) SetSpeed(freq physic.Frequency) error { return nil }

// newAFATDriver builds a Driver probed into the AF/AT dialect (firmware
// major version < 3), followed by repliesAfterProbe queued for the test's
// own calls.
func newAFATDriver(t *testing.T, repliesAfterProbe ...[pd69200.MsgLen]byte) (*pd69200.Driver, *fakeBus) {
	t.Helper()
	f := &fakeBus{}
	var probe [pd69200.MsgLen]byte
	probe[pd69200.OffsetSub2] = 3
	probe[pd69200.OffsetData5] = 0x00
	probe[pd69200.OffsetData6] = 0x96 // sw_ver 150 -> major 1
	f.replies = append(f.replies, probe)
	f.replies = append(f.replies, repliesAfterProbe...)

	tp := pd69200.NewTransport(f, 0x3C)
	d, err := pd69200.NewDriver(tp, 0x0239, 0x01F5, 0x01)
	if err != nil {
		t.Fatalf("NewDriver() err = %v", err)
	}
	return d, f
}

func newBTDriver(t *testing.T, repliesAfterProbe ...[pd69200.MsgLen]byte) (*pd69200.Driver, *fakeBus) {
	t.Helper()
	f := &fakeBus{}
	var probe [pd69200.MsgLen]byte
	probe[pd69200.OffsetSub2] = 3
	probe[pd69200.OffsetData5] = 0x03
	probe[pd69200.OffsetData6] = 0x20 // sw_ver 800 -> major 8
	f.replies = append(f.replies, probe)
	f.replies = append(f.replies, repliesAfterProbe...)

	tp := pd69200.NewTransport(f, 0x3C)
	d, err := pd69200.NewDriver(tp, 0x0249, 0x01E0, 0x0A)
	if err != nil {
		t.Fatalf("NewDriver() err = %v", err)
	}
	return d, f
}
