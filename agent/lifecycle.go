// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package agent

import (
	"fmt"
	"sync"
	"time"

	"github.com/dentproject/poed/pd69200"
	"github.com/dentproject/poed/platform"
	"github.com/dentproject/poed/poeconfig"
	"github.com/dentproject/poed/portview"
)

// State is the daemon's coarse lifecycle position, reported for diagnostics.
// Autosave does not consult it; it checks only the fail-safe flag.
type State int

const (
	StateBoot State = iota
	StateRestoring
	StateSeeding
	StateFailsafe
	StateRunning
)

// AgentState records whether the running agent made it through Boot with a
// trustworthy configuration. It is diagnostic only: poed logs it after Boot,
// poecli does not display it, and it is never persisted to a config document.
type AgentState byte

const (
	CleanStart AgentState = iota
	UncleanStart
)

func (s AgentState) String() string {
	if s == UncleanStart {
		return "unclean_start"
	}
	return "clean_start"
}

func (s State) String() string {
	switch s {
	case StateBoot:
		return "boot"
	case StateRestoring:
		return "restoring"
	case StateSeeding:
		return "seeding"
	case StateFailsafe:
		return "failsafe"
	case StateRunning:
		return "running"
	default:
		return "unknown"
	}
}

// Agent owns one platform's chip driver(s), config stores and process
// coordination, and drives the daemon through cold/warm boot into steady
// state. It is the Go analogue of poed.py's module-scope PoeAgent, with
// every former global promoted to an explicit field.
type Agent struct {
	Desc    *platform.Descriptor
	Drivers []*pd69200.Driver // one per platform.Descriptor.Chips entry

	Paths Paths
	Log   *Logger
	Lock  *AccessLock

	RuntimeCfg   *poeconfig.Store
	PermanentCfg *poeconfig.Store

	mu           sync.Mutex
	state        State
	agentState   AgentState
	lastSetTime  time.Time
	lastSaveTime time.Time
	serial       int
	failsafe     bool
}

// NewAgent wires a descriptor and its already-constructed chip drivers
// (one per descriptor.Chips entry, in order) into an Agent.
func NewAgent(desc *platform.Descriptor, drivers []*pd69200.Driver, paths Paths, log *Logger, lock *AccessLock) (*Agent, error) {
	if len(drivers) != len(desc.Chips) {
		return nil, fmt.Errorf("agent: %d drivers given, descriptor %q has %d chips", len(drivers), desc.Name, len(desc.Chips))
	}
	return &Agent{
		Desc:         desc,
		Drivers:      drivers,
		Paths:        paths,
		Log:          log,
		Lock:         lock,
		RuntimeCfg:   poeconfig.NewStore(paths.RuntimeConfig, desc.Name),
		PermanentCfg: poeconfig.NewStore(paths.PermanentConfig, desc.Name),
		state:        StateBoot,
	}, nil
}

// State reports the agent's current lifecycle state.
func (a *Agent) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *Agent) setState(s State) {
	a.mu.Lock()
	a.state = s
	a.mu.Unlock()
}

// AgentState reports whether Boot completed cleanly or had to fall back to
// fail-safe mode because platform init or the config restore failed.
func (a *Agent) AgentState() AgentState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.agentState
}

// UncleanStart is a convenience wrapper over AgentState for callers that
// only care about the boolean fact.
func (a *Agent) UncleanStart() bool {
	return a.AgentState() == UncleanStart
}

// Boot runs the daemon's full bring-up sequence: it brings each chip up to
// its platform default, then restores port state from the runtime config
// (on a warm restart) or the permanent config (on a cold boot). With no
// valid config it keeps the platform defaults and seeds the runtime config
// from them; it falls back to fail-safe (every port disabled) only when
// platform init or the restore fails.
func (a *Agent) Boot(warmBoot bool) error {
	if err := Touch(a.Paths.BusyFlag); err != nil {
		a.Log.Warn(fmt.Sprintf("failed to raise busy flag: %v", err))
	}
	defer RemoveFlag(a.Paths.BusyFlag)

	if err := a.initPlatform(); err != nil {
		a.Log.Err(fmt.Sprintf("platform init failed: %v", err))
		a.mu.Lock()
		a.agentState = UncleanStart
		a.mu.Unlock()
		a.failSafe()
		return nil
	}
	a.recordSetTime()

	cfg := a.PermanentCfg
	if warmBoot {
		if _, err := a.RuntimeCfg.Load(); err == nil {
			cfg = a.RuntimeCfg
		}
	}

	doc, err := cfg.Load()
	valid := err == nil && cfg.IsValid(doc) == nil
	if !valid {
		a.Log.Info(fmt.Sprintf("no valid configuration at %s, running with platform defaults", cfg.Path()))
		a.setState(StateSeeding)
		return a.seedRuntimeConfig()
	}

	a.setState(StateRestoring)
	if err := a.restore(doc); err != nil {
		a.Log.Warn(fmt.Sprintf("restore from %s failed: %v", cfg.Path(), err))
		a.mu.Lock()
		a.agentState = UncleanStart
		a.mu.Unlock()
		a.failSafe()
		return nil
	}
	a.Log.Info(fmt.Sprintf("restored port configuration from %s", cfg.Path()))
	a.setState(StateRunning)
	return nil
}

// InitPlatform brings every chip up to the descriptor's defaults, the same
// bring-up Boot runs at startup. poecli's "restore" command calls this
// directly after RestoreFactoryDefault, the way the original CLI's
// restore_factory_default() follows a factory reset with init_poe().
func (a *Agent) InitPlatform() error { return a.initPlatform() }

// initPlatform brings every chip up to the descriptor's defaults: it
// reprograms the logical-to-physical matrix only if the chip's current
// mapping has drifted, always (re)applies the power-bank table, and for
// AF/AT dialects also sets a flat per-port power limit and the PM method.
// Mirrors poe_platform.py's per-model init_poe.
func (a *Agent) initPlatform() error {
	_, err := a.Lock.WithLock(func() error {
		for i, drv := range a.Drivers {
			if err := a.initChip(drv); err != nil {
				return fmt.Errorf("chip %d: %w", i, err)
			}
		}
		return nil
	})
	return err
}

func (a *Agent) initChip(drv *pd69200.Driver) error {
	match, err := platform.MatrixMatchesDefault(a.Desc, drv)
	if err != nil {
		return fmt.Errorf("comparing active matrix: %w", err)
	}
	if !match {
		for _, m := range a.Desc.DefaultMatrix {
			if err := drv.SetTempMatrix(m.LogicPort, m.PhyA, m.PhyB); err != nil {
				return fmt.Errorf("staging matrix for port %d: %w", m.LogicPort, err)
			}
		}
		if err := drv.ProgramActiveMatrix(); err != nil {
			return fmt.Errorf("programming active matrix: %w", err)
		}
	}

	for port := 0; port < a.Desc.PortsPerChip; port++ {
		if err := setPortEnableAnyDialect(drv, byte(port), false); err != nil {
			return fmt.Errorf("disabling port %d: %w", port, err)
		}
		if drv.Dialect() == pd69200.DialectBT {
			if err := drv.SetBTPortPriority(byte(port), pd69200.PriorityLow); err != nil {
				return fmt.Errorf("setting default priority for port %d: %w", port, err)
			}
		}
	}

	for _, bank := range a.Desc.PowerBanks {
		if err := drv.SetPowerBank(bank.Bank, bank.Budget); err != nil {
			return fmt.Errorf("programming power bank %d: %w", bank.Bank, err)
		}
	}

	if drv.Dialect() != pd69200.DialectBT {
		if a.Desc.PortPowerLimitMW > 0 {
			for port := 0; port < a.Desc.PortsPerChip; port++ {
				if err := drv.SetPortPowerLimit(byte(port), a.Desc.PortPowerLimitMW); err != nil {
					return fmt.Errorf("setting power limit for port %d: %w", port, err)
				}
			}
		}
		if err := drv.SetPMMethod(pd69200.PM1Dynamic, pd69200.PM2PPL, pd69200.PM3NoCond); err != nil {
			return fmt.Errorf("setting pm method: %w", err)
		}
		for port := 0; port < a.Desc.PortsPerChip; port++ {
			if err := setPortEnableAnyDialect(drv, byte(port), true); err != nil {
				return fmt.Errorf("enabling port %d: %w", port, err)
			}
		}
		if err := drv.SaveSystemSettings(); err != nil {
			return fmt.Errorf("saving system settings: %w", err)
		}
		return nil
	}

	// BT: every port goes to 4-pair, 90W operation mode, regardless of
	// whether the matrix needed reprogramming — mirrors as4561-52p5's
	// init_poe, which runs this loop unconditionally every bring-up.
	for port := 0; port < a.Desc.PortsPerChip; port++ {
		if err := drv.SetBTPortOperationMode(byte(port), btOpMode4Pair90W); err != nil {
			return fmt.Errorf("setting operation mode for port %d: %w", port, err)
		}
	}
	if !match {
		if err := drv.SaveSystemSettings(); err != nil {
			return fmt.Errorf("saving system settings: %w", err)
		}
	}
	return nil
}

// btOpMode4Pair90W is the BT ports-parameters operation-mode byte for
// 4-pair, 90W PoE++ power delivery — the only mode platform init applies.
const btOpMode4Pair90W = 0x0

func setPortEnableAnyDialect(drv *pd69200.Driver, port byte, enable bool) error {
	if drv.Dialect() == pd69200.DialectBT {
		return drv.SetBTPortEnable(port, enable)
	}
	return drv.SetPortEnable(port, enable)
}

// failSafe disables every port on every chip and marks the agent as
// running in fail-safe mode, refusing further autosave writes until an
// operator intervenes.
func (a *Agent) failSafe() {
	a.Log.Warn("entering fail-safe mode: disabling all ports")
	a.mu.Lock()
	a.failsafe = true
	a.mu.Unlock()
	for _, drv := range a.Drivers {
		for port := 0; port < a.Desc.PortsPerChip; port++ {
			if err := setPortEnableAnyDialect(drv, byte(port), false); err != nil {
				a.Log.Err(fmt.Sprintf("fail-safe: disabling port %d: %v", port, err))
			}
		}
	}
	a.setState(StateFailsafe)
}

// Failsafe reports whether the agent is currently refusing autosave writes
// because Boot could not trust any restorable configuration.
func (a *Agent) Failsafe() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.failsafe
}

// restore applies every port's saved parameters read back from doc onto
// the live chip(s), comparing against the chip's actual current state so
// unchanged ports are left alone.
func (a *Agent) restore(doc *poeconfig.Document) error {
	_, err := a.Lock.WithLock(func() error {
		// Fetch each chip's full enable/disable bitmap once up front, the
		// way flush_settings_to_chip reads current_enDis once and passes
		// it to every port's set_all_params, instead of one status
		// request per port.
		bitmaps := make(map[int]pd69200.AllPortsEnDis, len(a.Drivers))
		for _, saved := range doc.Ports {
			chipIdx, local := a.Desc.ChipForPort(int(saved.LogicPort))
			if chipIdx >= len(a.Drivers) {
				continue
			}
			p := portview.NewPort(a.Drivers[chipIdx], byte(local))
			priority := saved.Priority
			params := portview.Params{Priority: &priority}

			bitmap, ok := bitmaps[chipIdx]
			if !ok {
				b, err := a.Drivers[chipIdx].GetAllPortsEnDis()
				if err != nil {
					return fmt.Errorf("reading port enable bitmap for chip %d: %w", chipIdx, err)
				}
				bitmap = b
				bitmaps[chipIdx] = bitmap
			}
			currentlyEnabled := local < len(bitmap.EnDis) && bitmap.EnDis[local] != 0
			if currentlyEnabled != saved.Enabled {
				enable := saved.Enabled
				params.Enable = &enable
			}

			if saved.PowerLimitMW > 0 && a.Drivers[chipIdx].Dialect() != pd69200.DialectBT {
				limit := uint16(saved.PowerLimitMW)
				params.PowerLimitMW = &limit
			}
			if _, err := p.Apply(params); err != nil {
				return fmt.Errorf("restoring port %d: %w", saved.LogicPort, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	a.recordSetTime()
	a.setState(StateRunning)
	return nil
}

// seedRuntimeConfig writes the chip's current (just-initialized) state out
// as the runtime config, for the case where no prior config existed at all
// — the daemon's first-ever boot on a freshly flashed switch.
func (a *Agent) seedRuntimeConfig() error {
	if a.RuntimeCfg.Exists() {
		return nil
	}
	doc, err := a.Snapshot()
	if err != nil {
		return fmt.Errorf("collecting running state to seed config: %w", err)
	}
	if err := a.RuntimeCfg.Save(doc); err != nil {
		return fmt.Errorf("seeding %s: %w", a.RuntimeCfg.Path(), err)
	}
	a.setState(StateRunning)
	return nil
}

func (a *Agent) recordSetTime() {
	a.mu.Lock()
	a.lastSetTime = now()
	a.mu.Unlock()
}

// now is overridden in tests to keep timestamps deterministic.
var now = time.Now
