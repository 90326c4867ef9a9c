// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package agent

// Paths collects every filesystem location the daemon touches, gathered
// into one struct instead of package-scope globals so tests can point a
// whole daemon instance at a scratch directory.
type Paths struct {
	RuntimeConfig string // last-known-good PoE state, rewritten by autosave
	PermanentConfig string // operator-committed PoE state, loaded on cold boot
	AccessLock    string // process-wide exclusive lock over all chip access
	PIDFile       string // current daemon's PID, checked on startup for a warm restart
	BusyFlag      string // present while boot-time bring-up is in progress
	IPCEvent      string // named pipe poecli writes set/cfg notifications to
}

// DefaultPaths returns the paths poed uses in production.
func DefaultPaths() Paths {
	return Paths{
		RuntimeConfig:   "/run/poe_runtime_cfg.json",
		PermanentConfig: "/etc/poe_agent/poe_perm_cfg.json",
		AccessLock:      "/run/poe_access.lock",
		PIDFile:         "/run/poed.pid",
		BusyFlag:        "/run/.poed_busy",
		IPCEvent:        "/run/poe_ipc_event",
	}
}
