// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pd69200

import (
	"fmt"
	"time"
)

// commRetryTimes is the number of attempts the engine makes before giving up
// on one logical command, matching the original firmware driver's retry
// budget.
const commRetryTimes = 6

// Settle delays, keyed by command category. All but the three explicitly
// named categories use msgDelay.
const (
	msgDelay                   = 30 * time.Millisecond
	saveSysDelay               = 50 * time.Millisecond
	restoreFactoryDefaultDelay = 100 * time.Millisecond
	resetPoeChipDelay          = 300 * time.Millisecond
)

// TransportError wraps a bus or protocol-validation failure that survived
// every retry attempt; it is always surfaced to the caller, never silently
// dropped.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("pd69200: %s: transport error: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// engine sequences one logical command against a Transport: build frame,
// enforce the 30ms back-to-back command delay, transact, validate, retry.
type engine struct {
	transport *Transport
	echo      echoCounter

	lastSentKey Key
	haveSent    bool
}

func newEngine(t *Transport) *engine {
	return &engine{transport: t}
}

// run builds a frame from command, sequences it through the transport with
// the command-specific settle delay, and returns the validated reply.
func (e *engine) run(op string, command []byte, settle time.Duration) ([MsgLen]byte, error) {
	frame, err := Build(command)
	if err != nil {
		return frame, err
	}
	frame[OffsetEcho] = e.echo.next()
	key := Key(frame[OffsetKey])

	// Back-to-back COMMAND frames need an explicit 30ms gap; every other
	// transition is already separated by the settle delay of the previous
	// command.
	if e.haveSent && e.lastSentKey == KeyCommand && key == KeyCommand {
		time.Sleep(msgDelay)
	}

	var lastErr error
	for attempt := 0; attempt < commRetryTimes; attempt++ {
		reply, err := e.transport.Transact(frame, settle)
		if err != nil {
			lastErr = err
			continue
		}
		if verr := Validate(reply[:], frame); verr != nil {
			lastErr = verr
			e.transport.mu.Lock()
			e.transport.drainLocked()
			e.transport.mu.Unlock()
			continue
		}
		e.lastSentKey = key
		e.haveSent = true
		return reply, nil
	}
	return [MsgLen]byte{}, &TransportError{Op: op, Err: lastErr}
}
