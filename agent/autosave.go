// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package agent

import (
	"fmt"
	"time"
)

const (
	autosaveInterval   = time.Second
	cfgUpdateIntervalN = 4 // write the runtime config once every N autosave ticks

	// PermanentSaveInterval is how often the original agent could in
	// principle promote the runtime config to the permanent config
	// automatically. Nothing currently drives this on a timer: the
	// permanent file is only ever written synchronously, in response to a
	// "poecli_cfg,save" IPC event. Kept as a named constant rather than
	// wired up, matching the upstream agent's own dormant
	// cfg_update_intvl_perm.
	PermanentSaveInterval = 30 * time.Second
)

// Autosaver periodically snapshots live chip state to the runtime config, so
// a later warm restart has somewhere recent to restore from. It runs on its
// own goroutine, started by Agent.StartAutosave.
type Autosaver struct {
	a       *Agent
	stop    chan struct{}
	done    chan struct{}
	forceCh chan struct{}
}

// StartAutosave launches the autosave goroutine, returning an Autosaver
// whose Stop method shuts it down cleanly.
func (a *Agent) StartAutosave() *Autosaver {
	as := &Autosaver{a: a, stop: make(chan struct{}), done: make(chan struct{}), forceCh: make(chan struct{}, 1)}
	go as.run()
	return as
}

// Stop signals the autosave goroutine to exit and waits for it to do so.
func (as *Autosaver) Stop() {
	close(as.stop)
	<-as.done
}

// forceNextSave resets the tick countdown so the next autosave tick writes
// immediately, the way a poecli set event resets rt_counter so a change
// isn't left unpersisted for a full cfgUpdateIntervalN.
func (as *Autosaver) forceNextSave() {
	select {
	case as.forceCh <- struct{}{}:
	default:
	}
}

func (as *Autosaver) run() {
	defer close(as.done)
	as.a.Log.Info("starting autosave")
	ticker := time.NewTicker(autosaveInterval)
	defer ticker.Stop()

	tick := 0
	for {
		select {
		case <-as.stop:
			return
		case <-as.forceCh:
			tick = cfgUpdateIntervalN
		case <-ticker.C:
			tick++
		}
		if tick < cfgUpdateIntervalN {
			continue
		}
		tick = 0
		as.saveOnce()
	}
}

func (as *Autosaver) saveOnce() {
	a := as.a
	doc, err := a.Snapshot()
	if err != nil {
		a.Log.Err(fmt.Sprintf("autosave: failed to collect running state: %v", err))
		return
	}
	if a.Failsafe() {
		a.Log.Warn("agent in fail-safe mode, skipping runtime config autosave")
		return
	}
	if err := a.RuntimeCfg.Save(doc); err != nil {
		a.Log.Warn(fmt.Sprintf("autosave: failed to save runtime config: %v", err))
		return
	}
	a.mu.Lock()
	a.lastSaveTime = now()
	a.mu.Unlock()
}

// PromoteRuntimeToPermanent copies the current runtime config over the
// permanent config, the way a "poecli cfg save" without an explicit path
// commits the last-known-good state.
func (a *Agent) PromoteRuntimeToPermanent() error {
	doc, err := a.RuntimeCfg.Load()
	if err != nil {
		return fmt.Errorf("loading runtime config: %w", err)
	}
	if err := a.RuntimeCfg.IsValid(doc); err != nil {
		return fmt.Errorf("runtime config is not valid: %w", err)
	}
	if err := a.PermanentCfg.Save(doc); err != nil {
		return fmt.Errorf("saving permanent config: %w", err)
	}
	return nil
}
