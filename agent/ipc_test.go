// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package agent

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewIPCListenerCreatesFifo(t *testing.T) {
	a := testAgent(t)
	l, err := NewIPCListener(a, nil)
	if err != nil {
		t.Fatalf("NewIPCListener() = %v", err)
	}
	go l.Serve()
	defer l.Stop()

	info, err := os.Stat(a.Paths.IPCEvent)
	if err != nil {
		t.Fatalf("Stat(%s) = %v", a.Paths.IPCEvent, err)
	}
	if info.Mode()&os.ModeNamedPipe == 0 {
		t.Errorf("%s is not a named pipe: mode %v", a.Paths.IPCEvent, info.Mode())
	}
}

func TestNewIPCListenerToleratesExistingFifo(t *testing.T) {
	a := testAgent(t)
	l1, err := NewIPCListener(a, nil)
	if err != nil {
		t.Fatalf("first NewIPCListener() = %v", err)
	}
	go l1.Serve()
	defer l1.Stop()

	l2, err := NewIPCListener(a, nil)
	if err != nil {
		t.Fatalf("second NewIPCListener() over an existing fifo = %v", err)
	}
	go l2.Serve()
	l2.Stop()
}

func TestIPCListenerHandlesSetEvent(t *testing.T) {
	a := testAgent(t)
	as := a.StartAutosave()
	defer as.Stop()
	l, err := NewIPCListener(a, as)
	if err != nil {
		t.Fatalf("NewIPCListener() = %v", err)
	}
	go l.Serve()
	defer l.Stop()

	writeIPCLine(t, a.Paths.IPCEvent, "poecli_set")

	deadline := time.After(2 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for the set event to be processed")
		default:
		}
		a.mu.Lock()
		seen := !a.lastSetTime.IsZero()
		a.mu.Unlock()
		if seen {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestIPCListenerHandlesCfgSaveToFile(t *testing.T) {
	a := testAgent(t)
	if err := a.RuntimeCfg.Save(seedDocument(a)); err != nil {
		t.Fatal(err)
	}
	l, err := NewIPCListener(a, nil)
	if err != nil {
		t.Fatalf("NewIPCListener() = %v", err)
	}
	defer l.Stop()

	dst := filepath.Join(t.TempDir(), "exported.json")
	go l.Serve()
	writeIPCLine(t, a.Paths.IPCEvent, "poecli_cfg,save,"+dst)

	waitForFile(t, dst)
}

func TestIPCListenerHandlesCfgLoadFromFile(t *testing.T) {
	a := testAgent(t)
	src := filepath.Join(t.TempDir(), "imported.json")
	fromStore := newTestStoreAt(a, src)
	if err := fromStore.Save(seedDocument(a)); err != nil {
		t.Fatal(err)
	}

	l, err := NewIPCListener(a, nil)
	if err != nil {
		t.Fatalf("NewIPCListener() = %v", err)
	}
	defer l.Stop()
	go l.Serve()

	writeIPCLine(t, a.Paths.IPCEvent, "poecli_cfg,load,"+src)

	deadline := time.After(2 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for cfg load to be processed")
		default:
		}
		a.mu.Lock()
		seen := !a.lastSetTime.IsZero()
		a.mu.Unlock()
		if seen {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func writeIPCLine(t *testing.T, path, line string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		t.Fatalf("opening %s for write: %v", path, err)
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func waitForFile(t *testing.T, path string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for %s to appear", path)
		default:
		}
		if _, err := os.Stat(path); err == nil {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
}
