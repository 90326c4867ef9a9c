// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package agent

import (
	"fmt"

	"github.com/dentproject/poed/poeconfig"
	"github.com/dentproject/poed/portview"
)

// Snapshot reads every chip's live port and system state back into a
// poeconfig.Document, the same shape autosave and seedRuntimeConfig write
// to disk. It takes the access lock itself.
func (a *Agent) Snapshot() (*poeconfig.Document, error) {
	var doc *poeconfig.Document
	_, err := a.Lock.WithLock(func() error {
		d, err := a.collectRunningState()
		doc = d
		return err
	})
	return doc, err
}

// collectRunningState assumes the caller already holds the access lock.
func (a *Agent) collectRunningState() (*poeconfig.Document, error) {
	ports := make([]portview.Status, 0, a.Desc.TotalPorts)
	for global := 0; global < a.Desc.TotalPorts; global++ {
		chipIdx, local := a.Desc.ChipForPort(global)
		if chipIdx >= len(a.Drivers) {
			continue
		}
		p := portview.NewPort(a.Drivers[chipIdx], byte(local))
		status, err := p.Refresh()
		if err != nil {
			return nil, fmt.Errorf("reading port %d: %w", global, err)
		}
		status.LogicPort = byte(global)
		ports = append(ports, status)
	}

	var sysStatus portview.SystemStatus
	if len(a.Drivers) > 0 {
		sys := portview.NewSystem(a.Drivers[0], a.Desc.TotalPorts, a.Desc.BankToPSU)
		s, err := sys.Refresh()
		if err != nil {
			return nil, fmt.Errorf("reading system status: %w", err)
		}
		sysStatus = s
	}

	a.mu.Lock()
	a.serial++
	serial := a.serial
	lastSet := a.lastSetTime
	a.mu.Unlock()

	doc := &poeconfig.Document{
		GenInfo: poeconfig.GeneralInfo{
			Platform:      a.Desc.Name,
			AgentVersion:  poeconfig.AgentVersion,
			ConfigVersion: poeconfig.ConfigVersion,
			SerialNumber:  serial,
		},
		Timestamp: poeconfig.Timestamps{
			FileSaveTime: poeconfig.Stamp(now()),
			LastSetTime:  poeconfig.Stamp(lastSet),
		},
		SystemInfo: sysStatus,
		Ports:      ports,
	}
	return doc, nil
}
