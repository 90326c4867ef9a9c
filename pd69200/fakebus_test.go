// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pd69200

import (
	"errors"
	"testing"

	"periph.io/x/periph/conn/physic"
)

// scripted is a hand-rolled i2c.Bus fake driven by a list of canned replies,
// one per write+read round trip, mirroring how the scripted responder in
// the end-to-end scenarios is meant to work. It echoes the ECHO byte of the
// most recent write into the next queued reply, fills in the expected reply
// key when the reply leaves it zero, and fills in the checksum when the
// reply leaves both checksum bytes zero, so the protocol engine's validation
// passes without each test case having to predict the echo sequence by hand.
type scripted struct {
	replies [][MsgLen]byte
	writes  [][]byte
	idx     int
	failN   int // if > 0, the next failN writes return an I/O error
}

// Tx implements i2c.Bus.
func (s *scripted) Tx(addr uint16, w, r []byte) error {
	if len(w) != 0 {
		if s.failN > 0 {
			s.failN--
			return errors.New("scripted: injected write failure")
		}
		cp := make([]byte, len(w))
		copy(cp, w)
		s.writes = append(s.writes, cp)
		return nil
	}
	if len(r) != 0 {
		if s.idx >= len(s.replies) {
			return errors.New("scripted: no more replies queued")
		}
		reply := s.replies[s.idx]
		if len(s.writes) > 0 {
			last := s.writes[len(s.writes)-1]
			reply[OffsetEcho] = last[OffsetEcho]
			if k, ok := replyKeyFor(Key(last[OffsetKey])); ok && reply[OffsetKey] == 0 {
				reply[OffsetKey] = byte(k)
			}
		}
		if reply[OffsetCsumHi] == 0 && reply[OffsetCsumLo] == 0 {
			reply[OffsetCsumHi], reply[OffsetCsumLo] = checksum(reply[:OffsetCsumHi])
		}
		s.idx++
		copy(r, reply[:])
		return nil
	}
	return nil
}

func (s *scripted) String() string                      { return "scripted" }
func (s *scripted) SetSpeed(f physic.Frequency) error    { return nil }

func newScriptedDriver(t *testing.T, keys []Key) (*Driver, *scripted) {
	t.Helper()
	s := &scripted{}
	for _, k := range keys {
		var reply [MsgLen]byte
		reply[OffsetKey] = byte(k)
		s.replies = append(s.replies, reply)
	}
	tp := NewTransport(s, 0x3C)
	return &Driver{eng: newEngine(tp), dialect: DialectAFAT}, s
}
