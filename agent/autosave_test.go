// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package agent

import "testing"

func TestSaveOnceSkipsWhileInFailsafe(t *testing.T) {
	a := testAgent(t)
	a.mu.Lock()
	a.failsafe = true
	a.mu.Unlock()

	as := &Autosaver{a: a}
	as.saveOnce()

	if a.RuntimeCfg.Exists() {
		t.Error("saveOnce wrote the runtime config while in fail-safe mode")
	}
}

func TestSaveOnceWritesRuntimeConfig(t *testing.T) {
	a := testAgent(t)
	as := &Autosaver{a: a}
	as.saveOnce()

	if !a.RuntimeCfg.Exists() {
		t.Fatal("saveOnce did not write the runtime config")
	}
	doc, err := a.RuntimeCfg.Load()
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if doc.GenInfo.Platform != a.Desc.Name {
		t.Errorf("saved platform = %q, want %q", doc.GenInfo.Platform, a.Desc.Name)
	}
}

func TestStartAutosaveStopsCleanly(t *testing.T) {
	a := testAgent(t)
	as := a.StartAutosave()
	as.forceNextSave()
	as.Stop() // must return once the goroutine has exited, not hang
}

func TestForceNextSaveDoesNotBlockWithoutAListener(t *testing.T) {
	as := &Autosaver{forceCh: make(chan struct{}, 1)}
	as.forceNextSave()
	as.forceNextSave() // buffered channel full: must not block
}
