// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package agent

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"github.com/dentproject/poed/poeconfig"
)

// IPC message tokens poecli writes to the named pipe, one comma-separated
// line per invocation.
const (
	ipcSet = "poecli_set"
	ipcCfg = "poecli_cfg"

	cfgActionSave = "save"
	cfgActionLoad = "load"
)

// IPCListener serves the named-pipe event bus poecli uses to notify a
// running daemon that it changed something out of band: a plain port set
// (which should reset the autosave countdown so the change is persisted
// promptly) or a config save/load request.
type IPCListener struct {
	a    *Agent
	as   *Autosaver
	stop chan struct{}
	done chan struct{}
}

// NewIPCListener creates the named pipe at a.Paths.IPCEvent if it doesn't
// already exist. as may be nil if autosave isn't running.
func NewIPCListener(a *Agent, as *Autosaver) (*IPCListener, error) {
	if err := unix.Mkfifo(a.Paths.IPCEvent, 0o644); err != nil && err != unix.EEXIST {
		return nil, fmt.Errorf("agent: creating ipc pipe %s: %w", a.Paths.IPCEvent, err)
	}
	return &IPCListener{a: a, as: as, stop: make(chan struct{}), done: make(chan struct{})}, nil
}

// Serve blocks processing events until Stop is called.
func (l *IPCListener) Serve() {
	defer close(l.done)
	for {
		select {
		case <-l.stop:
			return
		default:
		}
		if err := l.serveOnce(); err != nil {
			l.a.Log.Err(fmt.Sprintf("ipc: %v", err))
		}
	}
}

// Stop signals Serve to exit and waits for it to return.
func (l *IPCListener) Stop() {
	close(l.stop)
	// Unblock the pending open by writing a no-op event to ourselves. The
	// open is non-blocking and repeated until Serve returns, because Serve
	// may not have reached its own open yet.
	for {
		if f, err := os.OpenFile(l.a.Paths.IPCEvent, os.O_WRONLY|unix.O_NONBLOCK, 0); err == nil {
			f.Close()
		}
		select {
		case <-l.done:
			return
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func (l *IPCListener) serveOnce() error {
	f, err := os.OpenFile(l.a.Paths.IPCEvent, os.O_RDONLY, 0)
	if err != nil {
		return fmt.Errorf("opening %s: %w", l.a.Paths.IPCEvent, err)
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("reading %s: %w", l.a.Paths.IPCEvent, err)
	}
	line := strings.TrimSpace(string(raw))
	if line == "" {
		return nil
	}
	tokens := strings.Split(line, ",")
	switch tokens[0] {
	case ipcSet:
		l.a.recordSetTime()
		l.a.Log.Info("received a set event from poecli")
		if l.as != nil {
			l.as.forceNextSave()
		}
	case ipcCfg:
		l.handleCfg(tokens[1:])
	default:
		l.a.Log.Notice(fmt.Sprintf("received unrecognized ipc event %q, ignored", tokens[0]))
	}
	return nil
}

func (l *IPCListener) handleCfg(args []string) {
	var action, file, apply string
	if len(args) > 0 {
		action = args[0]
	}
	if len(args) > 1 {
		file = args[1]
	}
	if len(args) > 2 {
		apply = args[2]
	}
	_ = apply // reserved: the original only ever set this when saving, never consumed it

	switch action {
	case cfgActionSave:
		if file == "" {
			l.a.Log.Info("cfg save: promoting runtime config to the permanent config")
			if err := l.a.PromoteRuntimeToPermanent(); err != nil {
				l.a.Log.Err(fmt.Sprintf("cfg save: %v", err))
			}
			return
		}
		l.a.Log.Info(fmt.Sprintf("cfg save: copying runtime config to %s", file))
		if err := copyFile(l.a.RuntimeCfg.Path(), file); err != nil {
			l.a.Log.Err(fmt.Sprintf("cfg save: %v", err))
		}
	case cfgActionLoad:
		store := l.a.PermanentCfg
		if file != "" {
			l.a.Log.Info(fmt.Sprintf("cfg load: loading %s", file))
			store = poeconfig.NewStore(file, l.a.Desc.Name)
		} else {
			l.a.Log.Info("cfg load: loading the permanent config")
		}
		if err := l.a.LoadAndApply(store); err != nil {
			l.a.Log.Err(fmt.Sprintf("cfg load: %v", err))
			return
		}
		l.a.recordSetTime()
	default:
		l.a.Log.Notice(fmt.Sprintf("cfg event with unrecognized action %q, ignored", action))
	}
}

// SendIPCEvent writes a comma-separated event line to the daemon's named
// pipe at path, the way poecli notifies a running poed of a set or a cfg
// action it just performed directly against the chip. It's a best-effort
// notification: if no daemon is listening (the open would block
// indefinitely against a FIFO with no reader) callers should not rely on
// it for correctness.
func SendIPCEvent(path string, tokens ...string) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("agent: opening ipc pipe %s: %w", path, err)
	}
	defer f.Close()
	_, err = f.WriteString(strings.Join(tokens, ","))
	return err
}

func copyFile(src, dst string) error {
	b, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, b, 0o644)
}

// LoadAndApply loads store's document and restores it onto the live
// chip(s), retrying a few times the way load_poe_cfg does against a
// transiently unreadable file.
func (a *Agent) LoadAndApply(store *poeconfig.Store) error {
	const retries = 3
	var lastErr error
	for i := 0; i < retries; i++ {
		doc, err := store.Load()
		if err != nil {
			lastErr = err
			continue
		}
		if err := store.IsValid(doc); err != nil {
			return fmt.Errorf("invalid config at %s: %w", store.Path(), err)
		}
		return a.restore(doc)
	}
	return fmt.Errorf("loading %s: %w", store.Path(), lastErr)
}
