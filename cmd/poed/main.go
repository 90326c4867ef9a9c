// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// poed is the PoE management daemon: it brings up a PD69200 controller (or
// several, on multi-chip platforms) to its platform's defaults, restores
// port configuration from disk, and keeps it there.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/host"

	"github.com/dentproject/poed/agent"
	"github.com/dentproject/poed/pd69200"
	"github.com/dentproject/poed/platform"
)

func mainImpl() error {
	platformOverride := flag.String("platform", "", "override onl_platform detection")
	debug := flag.Bool("debug", false, "echo log records to stdout")
	flag.Parse()
	if flag.NArg() != 0 {
		return fmt.Errorf("unexpected argument, try -help")
	}

	if os.Geteuid() != 0 {
		return fmt.Errorf("poed must run as root")
	}

	log, err := agent.NewLogger("poed", *debug)
	if err != nil {
		return fmt.Errorf("opening syslog: %w", err)
	}
	defer log.Close()

	paths := agent.DefaultPaths()

	name := *platformOverride
	if name == "" {
		name, err = platform.BootPlatform()
		if err != nil {
			return fmt.Errorf("detecting boot platform: %w", err)
		}
	}
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGTERM, syscall.SIGINT)

	desc, err := platform.Lookup(name)
	if err != nil {
		log.Alert(fmt.Sprintf("unsupported platform %q, idling", name))
		s := <-sig
		log.Info(fmt.Sprintf("received signal %v while idle, exiting", s))
		return nil
	}
	if err := desc.Validate(); err != nil {
		return fmt.Errorf("platform descriptor %q is invalid: %w", name, err)
	}

	warm, running, err := agent.DetectWarmBoot(paths.PIDFile)
	if err != nil {
		return fmt.Errorf("detecting warm boot: %w", err)
	}
	if running {
		log.Warn("a previous poed instance is still alive, exiting")
		os.Exit(1)
	}

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("initializing periph host drivers: %w", err)
	}

	drivers := make([]*pd69200.Driver, 0, len(desc.Chips))
	for _, c := range desc.Chips {
		bus, err := i2creg.Open(fmt.Sprintf("%d", c.I2CBus))
		if err != nil {
			return fmt.Errorf("opening i2c bus %d: %w", c.I2CBus, err)
		}
		t := pd69200.NewTransport(bus, c.I2CAddr)
		drv, err := pd69200.NewDriver(t, desc.MaxShutdownVolt, desc.MinShutdownVolt, desc.GuardBand)
		if err != nil {
			return fmt.Errorf("probing chip at bus %d addr %#x: %w", c.I2CBus, c.I2CAddr, err)
		}
		drivers = append(drivers, drv)
	}

	lock, err := agent.NewAccessLock(paths.AccessLock)
	if err != nil {
		return fmt.Errorf("opening access lock: %w", err)
	}
	defer lock.Close()

	a, err := agent.NewAgent(desc, drivers, paths, log, lock)
	if err != nil {
		return fmt.Errorf("constructing agent: %w", err)
	}

	if err := a.Boot(warm); err != nil {
		return fmt.Errorf("boot sequence failed: %w", err)
	}
	if a.UncleanStart() {
		log.Warn("started in fail-safe mode: platform init or config restore failed")
	}

	autosaver := a.StartAutosave()
	defer autosaver.Stop()

	ipc, err := agent.NewIPCListener(a, autosaver)
	if err != nil {
		return fmt.Errorf("starting ipc listener: %w", err)
	}
	go ipc.Serve()
	defer ipc.Stop()

	s := <-sig
	log.Info(fmt.Sprintf("received signal %v, shutting down", s))
	return nil
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "poed: %s.\n", err)
		os.Exit(1)
	}
}
