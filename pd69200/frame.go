// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pd69200

import "fmt"

// MsgLen is the fixed length of every PD69200 request and reply frame.
const MsgLen = 15

// csumLen is the number of trailing checksum bytes in a frame.
const csumLen = 2

// padByte fills unused command/payload bytes before the checksum is computed.
const padByte = 0x4E

// Frame offsets, named after the PD69200 datasheet's own field names.
const (
	OffsetKey   = 0
	OffsetEcho  = 1
	OffsetSub   = 2
	OffsetSub1  = 3
	OffsetSub2  = 4
	OffsetData5 = 5
	OffsetData6 = 6
	OffsetData7 = 7
	OffsetData8 = 8
	OffsetData9 = 9
	OffsetData10 = 10
	OffsetData11 = 11
	OffsetData12 = 12
	OffsetCsumHi = 13
	OffsetCsumLo = 14
)

// Key identifies the frame class carried in byte 0.
type Key byte

const (
	KeyCommand   Key = 0x00
	KeyProgram   Key = 0x01
	KeyRequest   Key = 0x02
	KeyTelemetry Key = 0x03
	KeyTest      Key = 0x04
	KeyReport    Key = 0x52
)

func (k Key) String() string {
	switch k {
	case KeyCommand:
		return "COMMAND"
	case KeyProgram:
		return "PROGRAM"
	case KeyRequest:
		return "REQUEST"
	case KeyTelemetry:
		return "TELEMETRY"
	case KeyTest:
		return "TEST"
	case KeyReport:
		return "REPORT"
	default:
		return fmt.Sprintf("Key(%#02x)", byte(k))
	}
}

// replyKeyFor returns the reply key the chip is expected to answer with for
// a given request key, per the COMMAND/PROGRAM->REPORT and REQUEST->TELEMETRY
// mapping; ok is false for keys that never appear as a request (e.g. REPORT).
func replyKeyFor(sent Key) (Key, bool) {
	switch sent {
	case KeyCommand, KeyProgram:
		return KeyReport, true
	case KeyRequest:
		return KeyTelemetry, true
	default:
		return 0, false
	}
}

// echoCounter generates the 8-bit ECHO sequence used to match a reply to its
// request. It wraps 0xFE -> 0x00, skipping the 0xFF sentinel value entirely
// so 0xFF is never observed on the wire as a live echo.
type echoCounter struct {
	v byte
}

func (e *echoCounter) next() byte {
	e.v++
	if e.v == 0xFF {
		e.v = 0x00
	}
	return e.v
}

// Build assembles a 15-byte frame from a command byte vector (key, echo and
// up to 11 further bytes), padding unused payload bytes with padByte and
// appending the checksum. It fails if command is longer than MsgLen-csumLen.
func Build(command []byte) ([MsgLen]byte, error) {
	var frame [MsgLen]byte
	if len(command) > MsgLen-csumLen {
		return frame, fmt.Errorf("pd69200: command too long: %d bytes", len(command))
	}
	copy(frame[:], command)
	for i := len(command); i < MsgLen-csumLen; i++ {
		frame[i] = padByte
	}
	hi, lo := checksum(frame[:MsgLen-csumLen])
	frame[OffsetCsumHi] = hi
	frame[OffsetCsumLo] = lo
	return frame, nil
}

// checksum computes the 16-bit unsigned additive checksum of b, split into
// high and low bytes.
func checksum(b []byte) (hi, lo byte) {
	var sum uint16
	for _, c := range b {
		sum += uint16(c)
	}
	return byte(sum >> 8), byte(sum)
}

// ValidateError enumerates the ways a reply frame can fail validation.
type ValidateError int

const (
	ErrNone ValidateError = iota
	ErrLength
	ErrAllZero
	ErrKeyMismatch
	ErrEchoMismatch
	ErrChecksum
)

func (e ValidateError) Error() string {
	switch e {
	case ErrLength:
		return "pd69200: reply has wrong length"
	case ErrAllZero:
		return "pd69200: reply not ready (all zero)"
	case ErrKeyMismatch:
		return "pd69200: reply key mismatch"
	case ErrEchoMismatch:
		return "pd69200: reply echo mismatch"
	case ErrChecksum:
		return "pd69200: reply checksum invalid"
	default:
		return "pd69200: reply ok"
	}
}

// Validate checks a reply frame against the frame that was sent: length,
// all-zero (chip not yet ready), key mapping, echo match and checksum.
func Validate(reply []byte, sent [MsgLen]byte) error {
	if len(reply) != MsgLen {
		return ErrLength
	}
	allZero := true
	for _, b := range reply {
		if b != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		return ErrAllZero
	}
	wantKey, ok := replyKeyFor(Key(sent[OffsetKey]))
	if ok && Key(reply[OffsetKey]) != wantKey {
		return ErrKeyMismatch
	}
	if reply[OffsetEcho] != sent[OffsetEcho] {
		return ErrEchoMismatch
	}
	hi, lo := checksum(reply[:OffsetCsumHi])
	if reply[OffsetCsumHi] != hi || reply[OffsetCsumLo] != lo {
		return ErrChecksum
	}
	return nil
}
