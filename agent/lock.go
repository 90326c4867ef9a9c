// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package agent

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

const (
	exclusiveLockRetries = 5
	exclusiveLockDelay   = 100 * time.Millisecond
)

// AccessLock is a process-wide advisory lock serializing every path that
// touches the PoE chip(s) — config restore, autosave, and poecli-driven
// sets all take it before issuing any pd69200 command.
type AccessLock struct {
	path string
	f    *os.File
}

// NewAccessLock opens (creating if necessary) the lock file at path without
// acquiring it.
func NewAccessLock(path string) (*AccessLock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("agent: opening lock file %s: %w", path, err)
	}
	return &AccessLock{path: path, f: f}, nil
}

// Close releases the underlying file handle. Call only when no WithLock call
// is in progress.
func (l *AccessLock) Close() error { return l.f.Close() }

// WithLock acquires the exclusive lock, retrying exclusiveLockRetries times
// with a short backoff if it's already held, runs fn, and always releases
// the lock afterward. It reports whether fn actually ran.
func (l *AccessLock) WithLock(fn func() error) (bool, error) {
	var lastErr error
	for retry := exclusiveLockRetries; retry > 0; retry-- {
		if err := unix.Flock(int(l.f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
			lastErr = err
			time.Sleep(exclusiveLockDelay)
			continue
		}
		defer unix.Flock(int(l.f.Fd()), unix.LOCK_UN)
		return true, fn()
	}
	return false, fmt.Errorf("agent: failed to acquire %s after %d retries: %w", l.path, exclusiveLockRetries, lastErr)
}

// WritePID records the current process's PID at path, the way a warm
// restart distinguishes itself from the previous instance.
func WritePID(path string) error {
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

// ReadPID reads back a previously written PID file.
func ReadPID(path string) (int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(b)))
}

// IsAlive reports whether pid names a live process, by sending it signal 0
// and checking whether the kernel rejects it.
func IsAlive(pid int) bool {
	return unix.Kill(pid, 0) == nil
}

// DetectWarmBoot reads the PID file at path and reports whether the
// previous instance it names is still running (in which case the caller
// must refuse to start) and otherwise whether this is a warm restart (a
// stale PID file existed) as opposed to a clean boot. It always rewrites
// path with the current process's PID before returning.
func DetectWarmBoot(path string) (warm bool, alreadyRunning bool, err error) {
	if prev, rerr := ReadPID(path); rerr == nil {
		if IsAlive(prev) {
			return false, true, nil
		}
		warm = true
	}
	if err := WritePID(path); err != nil {
		return warm, false, fmt.Errorf("agent: writing pid file %s: %w", path, err)
	}
	return warm, false, nil
}

// Touch creates path if it doesn't already exist, truncating it if it does,
// used for the boot-busy flag file.
func Touch(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	return f.Close()
}

// RemoveFlag removes path if present; a missing file is not an error.
func RemoveFlag(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// FlagExists reports whether path is present.
func FlagExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
