// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pd69200

import (
	"fmt"
	"sync"
	"time"

	"periph.io/x/periph/conn/i2c"
)

// clearBusBufferDelay is how long the transport waits after a failed
// transaction before the bus is touched again, giving the controller time to
// flush its I2C output state.
const clearBusBufferDelay = 500 * time.Millisecond

// Transport owns one PD69200 endpoint: an i2c.Bus and the device address the
// chip answers on. Every transaction is a 15-byte write followed, after a
// command-specific settle delay, by a 15-byte read; the two halves are
// issued as separate i2c.Bus.Tx calls because the PD69200 needs an explicit
// delay between them that a single combined Tx cannot express. A Transport
// serializes all transactions issued against it with a mutex, mirroring the
// per-bus exclusive lock the chip's datasheet requires.
type Transport struct {
	bus  i2c.Bus
	addr uint16

	mu sync.Mutex
}

// NewTransport wraps an already-opened i2c.Bus for the PD69200 at addr.
func NewTransport(bus i2c.Bus, addr uint16) *Transport {
	return &Transport{bus: bus, addr: addr}
}

// Write sends one 15-byte frame, then sleeps settle before returning,
// holding the transport's exclusive lock for the duration.
func (t *Transport) Write(frame [MsgLen]byte, settle time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.writeLocked(frame, settle)
}

func (t *Transport) writeLocked(frame [MsgLen]byte, settle time.Duration) error {
	if err := t.bus.Tx(t.addr, frame[:], nil); err != nil {
		return fmt.Errorf("pd69200: bus write: %w", err)
	}
	time.Sleep(settle)
	return nil
}

// Read reads back exactly MsgLen bytes. A short read is a transport error.
func (t *Transport) Read() ([MsgLen]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.readLocked()
}

func (t *Transport) readLocked() ([MsgLen]byte, error) {
	var reply [MsgLen]byte
	buf := make([]byte, MsgLen)
	if err := t.bus.Tx(t.addr, nil, buf); err != nil {
		return reply, fmt.Errorf("pd69200: bus read: %w", err)
	}
	copy(reply[:], buf)
	return reply, nil
}

// Transact performs one write+settle+read round trip under a single lock
// acquisition, so a concurrent caller never observes the write half of one
// transaction interleaved with the read half of another. On error it drains
// one stale read and sleeps clearBusBufferDelay before returning, per the
// datasheet's buffer-clearing discipline.
func (t *Transport) Transact(frame [MsgLen]byte, settle time.Duration) ([MsgLen]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.writeLocked(frame, settle); err != nil {
		t.drainLocked()
		return [MsgLen]byte{}, err
	}
	reply, err := t.readLocked()
	if err != nil {
		t.drainLocked()
		return reply, err
	}
	return reply, nil
}

// drainLocked issues a throwaway read and waits for the chip's I2C buffer to
// settle; errors are ignored, the point is only to flush stale bytes.
func (t *Transport) drainLocked() {
	_, _ = t.readLocked()
	time.Sleep(clearBusBufferDelay)
}
