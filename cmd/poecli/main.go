// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// poecli is the operator-facing command-line tool for poed: it reads and
// writes PoE port/system state directly against the chip, under the same
// process-wide lock poed itself uses, and nudges a running poed over its
// IPC pipe afterward so changes are picked up for autosave/restore.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/host"

	"github.com/dentproject/poed/agent"
	"github.com/dentproject/poed/pd69200"
	"github.com/dentproject/poed/platform"
	"github.com/dentproject/poed/portview"
)

var (
	rangeRe  = regexp.MustCompile(`^([0-9]{1,2})-([0-9]{1,2})$`)
	singleRe = regexp.MustCompile(`^([0-9]{1,2})$`)
)

// parsePortList expands a comma-separated "1,3-5,45-48" spec into
// zero-based, sorted, de-duplicated port indices, validating each against
// total.
func parsePortList(spec string, total int) ([]int, error) {
	seen := map[int]bool{}
	for _, field := range strings.Split(spec, ",") {
		switch {
		case rangeRe.MatchString(field):
			m := rangeRe.FindStringSubmatch(field)
			start, _ := strconv.Atoi(m[1])
			end, _ := strconv.Atoi(m[2])
			start--
			end--
			if start > end {
				start, end = end, start
			}
			if start < 0 || end >= total {
				return nil, fmt.Errorf("invalid port range %q", field)
			}
			for p := start; p <= end; p++ {
				seen[p] = true
			}
		case singleRe.MatchString(field):
			p, _ := strconv.Atoi(field)
			p--
			if p < 0 || p >= total {
				return nil, fmt.Errorf("invalid port %q", field)
			}
			seen[p] = true
		default:
			return nil, fmt.Errorf("invalid port spec %q", field)
		}
	}
	ports := make([]int, 0, len(seen))
	for p := range seen {
		ports = append(ports, p)
	}
	for i := 1; i < len(ports); i++ {
		for j := i; j > 0 && ports[j-1] > ports[j]; j-- {
			ports[j-1], ports[j] = ports[j], ports[j-1]
		}
	}
	return ports, nil
}

// rig bundles everything poecli needs to talk to the chip(s): the platform
// descriptor, one driver per chip, and the lock every access serializes
// through.
type rig struct {
	desc    *platform.Descriptor
	drivers []*pd69200.Driver
	lock    *agent.AccessLock
	paths   agent.Paths
}

func openRig(platformOverride string) (*rig, error) {
	paths := agent.DefaultPaths()

	name := platformOverride
	if name == "" {
		var err error
		name, err = platform.BootPlatform()
		if err != nil {
			return nil, fmt.Errorf("detecting boot platform: %w", err)
		}
	}
	desc, err := platform.Lookup(name)
	if err != nil {
		return nil, fmt.Errorf("platform %q: %w", name, err)
	}

	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("initializing periph host drivers: %w", err)
	}

	drivers := make([]*pd69200.Driver, 0, len(desc.Chips))
	for _, c := range desc.Chips {
		bus, err := i2creg.Open(fmt.Sprintf("%d", c.I2CBus))
		if err != nil {
			return nil, fmt.Errorf("opening i2c bus %d: %w", c.I2CBus, err)
		}
		t := pd69200.NewTransport(bus, c.I2CAddr)
		drv, err := pd69200.NewDriver(t, desc.MaxShutdownVolt, desc.MinShutdownVolt, desc.GuardBand)
		if err != nil {
			return nil, fmt.Errorf("probing chip at bus %d addr %#x: %w", c.I2CBus, c.I2CAddr, err)
		}
		drivers = append(drivers, drv)
	}

	lock, err := agent.NewAccessLock(paths.AccessLock)
	if err != nil {
		return nil, fmt.Errorf("opening access lock: %w", err)
	}
	return &rig{desc: desc, drivers: drivers, lock: lock, paths: paths}, nil
}

func (r *rig) port(global int) *portview.Port {
	chipIdx, local := r.desc.ChipForPort(global)
	return portview.NewPort(r.drivers[chipIdx], byte(local))
}

// notifyPoed tells a running poed about a change this invocation just made
// directly against the chip, the way the original CLI only ever wrote to
// the IPC FIFO after confirming the daemon's PID file names a live
// process — writing unconditionally would block forever on the open if no
// poed is running to read the other end.
func (r *rig) notifyPoed(tokens ...string) {
	pid, err := agent.ReadPID(r.paths.PIDFile)
	if err != nil || !agent.IsAlive(pid) {
		return
	}
	if err := agent.SendIPCEvent(r.paths.IPCEvent, tokens...); err != nil {
		fmt.Fprintf(os.Stderr, "poecli: could not notify poed: %v\n", err)
	}
}

func printJSON(v interface{}) {
	b, _ := json.MarshalIndent(v, "", "    ")
	fmt.Println(string(b))
}

func printPortsTable(ports []portview.Status, debug bool) {
	fmt.Println()
	if debug {
		fmt.Println("Port  En/Dis  Priority  Class  PWR Consump  PWR Limit  Voltage   Current  Latch  En4Pair")
	} else {
		fmt.Println("Port  En/Dis  Priority  Class  PWR Consump  PWR Limit  Voltage   Current")
	}
	for _, p := range ports {
		if debug {
			fmt.Printf("%-4d  %-6t  %-8d  %-5d  %6d (mW)  %6d (mW)  %4.1f (V)  %3d (mA)  0x%02x  %d\n",
				p.LogicPort+1, p.Enabled, p.Priority, p.Class, p.PowerConsumption,
				p.PowerLimitMW, float64(p.Voltage)/10, p.Current, p.Latch, p.En4Pair)
		} else {
			fmt.Printf("%-4d  %-6t  %-8d  %-5d  %6d (mW)  %6d (mW)  %4.1f (V)  %3d (mA)\n",
				p.LogicPort+1, p.Enabled, p.Priority, p.Class, p.PowerConsumption,
				p.PowerLimitMW, float64(p.Voltage)/10, p.Current)
		}
	}
	fmt.Println()
}

func printSystem(s portview.SystemStatus, debug bool) {
	fmt.Println()
	fmt.Println("==============================")
	fmt.Println(" PoE System Information")
	fmt.Println("==============================")
	fmt.Printf(" Total PoE Ports   : %d\n\n", s.TotalPorts)
	fmt.Printf(" Total Power       : %d W\n", s.TotalPowerW)
	fmt.Printf(" Power Consumption : %d W\n", s.PowerConsumedW)
	fmt.Printf(" Power Available   : %d W\n\n", s.PowerAvailW)
	fmt.Printf(" Power Bank #      : %d\n", s.PowerBank)
	fmt.Printf(" Power Sources     : %s\n\n", s.PowerSource)
	if debug {
		fmt.Printf(" Max Shutdown Volt : %.1f V\n", float64(s.MaxShutdownVolt)/10)
		fmt.Printf(" Min Shutdown Volt : %.1f V\n\n", float64(s.MinShutdownVolt)/10)
		fmt.Printf(" PM1               : 0x%02x\n", s.PM1)
		fmt.Printf(" PM2               : 0x%02x\n", s.PM2)
		fmt.Printf(" PM3               : 0x%02x\n\n", s.PM3)
		fmt.Printf(" Device Fail       : 0x%02x\n", s.DeviceFail)
		fmt.Printf(" Temp Disconnect   : 0x%02x\n", s.TempDisco)
		fmt.Printf(" Temp Alarm        : 0x%02x\n", s.TempAlarm)
		fmt.Printf(" Interrupt Reg     : 0x%04x\n\n", s.IntrReg)
	}
}

func cmdShow(r *rig, args []string) error {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	portsFlag := fs.String("p", "", "show ports, e.g. 1,3-5,45-48")
	sysFlag := fs.Bool("s", false, "show system information")
	maskFlag := fs.Bool("m", false, "show individual mask registers")
	allFlag := fs.Bool("a", false, "show ports, system, and mask information")
	verFlag := fs.Bool("v", false, "show PoE versions")
	debug := fs.Bool("d", false, "show extra debug fields")
	asJSON := fs.Bool("j", false, "print as JSON")
	matrixFlag := fs.Bool("t", false, "with -p, also show staged vs active port matrix mapping")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sys := portview.NewSystem(r.drivers[0], r.desc.TotalPorts, r.desc.BankToPSU)

	if *verFlag || *allFlag {
		v, err := r.drivers[0].GetPoeVersions()
		if err != nil {
			return fmt.Errorf("reading versions: %w", err)
		}
		if *asJSON {
			printJSON(map[string]string{"sw_version": v})
		} else {
			fmt.Printf("PoE SW Versions: %s\n", v)
		}
	}
	if *sysFlag || *allFlag {
		status, err := sys.Refresh()
		if err != nil {
			return fmt.Errorf("reading system status: %w", err)
		}
		if *asJSON {
			printJSON(status)
		} else {
			printSystem(status, *debug)
		}
		if *debug || *allFlag {
			devParams := make([]pd69200.DeviceParameters, 0, len(r.drivers))
			for i, drv := range r.drivers {
				dp, err := drv.GetPoeDeviceParameters(byte(i))
				if err != nil {
					return fmt.Errorf("reading device parameters for chip %d: %w", i, err)
				}
				devParams = append(devParams, dp)
			}
			if *asJSON {
				printJSON(devParams)
			} else {
				fmt.Println(" Chip  Status  Temp  TempAlarm")
				for _, dp := range devParams {
					fmt.Printf(" %-4d  0x%02x    %3d   0x%02x\n", dp.CSNum, dp.Status, dp.Temp, dp.TempAlarm)
				}
				fmt.Println()
			}
		}
	}
	if *maskFlag || *allFlag {
		type mask struct {
			Reg   string `json:"reg"`
			EnDis byte   `json:"en_dis"`
		}
		masks := make([]mask, 0, 0x54)
		for m := 0; m < 0x54; m++ {
			im, err := r.drivers[0].GetIndividualMask(byte(m))
			if err != nil {
				return fmt.Errorf("reading mask %#x: %w", m, err)
			}
			masks = append(masks, mask{Reg: fmt.Sprintf("0x%02x", m), EnDis: im.EnDis})
		}
		if *asJSON {
			printJSON(masks)
		} else {
			fmt.Println("\n==================\n Individual Masks\n==================")
			for _, m := range masks {
				fmt.Printf(" %s:%2d\n", m.Reg, m.EnDis)
			}
		}
	}
	if *portsFlag != "" || *allFlag {
		spec := *portsFlag
		if *allFlag && spec == "" {
			spec = fmt.Sprintf("1-%d", r.desc.TotalPorts)
		}
		portIDs, err := parsePortList(spec, r.desc.TotalPorts)
		if err != nil {
			return err
		}
		statuses := make([]portview.Status, 0, len(portIDs))
		for _, id := range portIDs {
			st, err := r.port(id).Refresh()
			if err != nil {
				return fmt.Errorf("reading port %d: %w", id+1, err)
			}
			statuses = append(statuses, st)
		}
		if *asJSON {
			printJSON(statuses)
		} else {
			printPortsTable(statuses, *debug)
		}
		if *matrixFlag {
			type matrixRow struct {
				LogicPort int  `json:"logic_port"`
				Staged    byte `json:"staged_phy_a"`
				Active    byte `json:"active_phy_a"`
			}
			rows := make([]matrixRow, 0, len(portIDs))
			for _, id := range portIDs {
				chipIdx, local := r.desc.ChipForPort(id)
				drv := r.drivers[chipIdx]
				staged, err := drv.GetTempMatrix(byte(local))
				if err != nil {
					return fmt.Errorf("reading staged matrix for port %d: %w", id+1, err)
				}
				active, err := drv.GetActiveMatrix(byte(local))
				if err != nil {
					return fmt.Errorf("reading active matrix for port %d: %w", id+1, err)
				}
				rows = append(rows, matrixRow{LogicPort: id + 1, Staged: staged.PhyA, Active: active.PhyA})
			}
			if *asJSON {
				printJSON(rows)
			} else {
				fmt.Println("\nPort  Staged PhyA  Active PhyA")
				for _, row := range rows {
					fmt.Printf("%-4d  0x%02x          0x%02x\n", row.LogicPort, row.Staged, row.Active)
				}
				fmt.Println()
			}
		}
	}
	return nil
}

func cmdSet(r *rig, args []string) error {
	fs := flag.NewFlagSet("set", flag.ExitOnError)
	portsFlag := fs.String("p", "", "logic ports, e.g. 1,3-5,45-48")
	enableFlag := fs.Int("e", -1, "0=disable, 1=enable")
	levelFlag := fs.Int("l", -1, "priority: 1=crit, 2=high, 3=low")
	powerFlag := fs.Int("o", -1, "power limit in mW, 0-0xffff")
	maskNumFlag := fs.Int("k", -1, "individual mask register number to set, with -x")
	maskEnDisFlag := fs.Int("x", -1, "enable/disable value for the -k mask register")
	userByteFlag := fs.Int("u", -1, "NVM user byte to persist on chip 0, 0-0xff")
	if err := fs.Parse(args); err != nil {
		return err
	}

	portMutation := *enableFlag >= 0 || *levelFlag >= 0 || *powerFlag >= 0
	maskMutation := *maskNumFlag >= 0 || *maskEnDisFlag >= 0
	userByteMutation := *userByteFlag >= 0
	if !portMutation && !maskMutation && !userByteMutation {
		return fmt.Errorf("set: no action requested, try -e/-l/-o, -k/-x, or -u")
	}
	if maskMutation && (*maskNumFlag < 0 || *maskEnDisFlag < 0) {
		return fmt.Errorf("set: -k and -x must be given together")
	}

	var portIDs []int
	if portMutation {
		if *portsFlag == "" {
			return fmt.Errorf("set: -p is required with -e/-l/-o")
		}
		var err error
		portIDs, err = parsePortList(*portsFlag, r.desc.TotalPorts)
		if err != nil {
			return err
		}
	}

	_, err := r.lock.WithLock(func() error {
		for _, id := range portIDs {
			p := r.port(id)
			var params portview.Params
			if *enableFlag >= 0 {
				enable := *enableFlag != 0
				params.Enable = &enable
			}
			if *levelFlag >= 0 {
				priority := byte(*levelFlag)
				params.Priority = &priority
			}
			if *powerFlag >= 0 && *powerFlag != 0xffff {
				limit := uint16(*powerFlag)
				params.PowerLimitMW = &limit
			}
			if _, err := p.Apply(params); err != nil {
				return fmt.Errorf("port %d: %w", id+1, err)
			}
		}
		if maskMutation {
			if err := r.drivers[0].SetIndividualMask(byte(*maskNumFlag), byte(*maskEnDisFlag)); err != nil {
				return fmt.Errorf("mask %#x: %w", *maskNumFlag, err)
			}
		}
		if userByteMutation {
			if err := r.drivers[0].SetUserByte(byte(*userByteFlag)); err != nil {
				return fmt.Errorf("user byte: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.notifyPoed("poecli_set")
	return nil
}

func cmdSave(r *rig, args []string) error {
	fs := flag.NewFlagSet("save", flag.ExitOnError)
	settings := fs.Bool("s", false, "save PoE system settings")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !*settings {
		return fmt.Errorf("save: -s is required")
	}
	_, err := r.lock.WithLock(func() error {
		for i, drv := range r.drivers {
			if err := drv.SaveSystemSettings(); err != nil {
				return fmt.Errorf("chip %d: %w", i, err)
			}
		}
		return nil
	})
	return err
}

func cmdRestore(r *rig, a *agent.Agent, args []string) error {
	_, err := r.lock.WithLock(func() error {
		for i, drv := range r.drivers {
			if err := drv.RestoreFactoryDefault(); err != nil {
				return fmt.Errorf("chip %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := a.InitPlatform(); err != nil {
		return fmt.Errorf("reapplying platform defaults: %w", err)
	}
	fmt.Println("restored factory default and reapplied platform PoE settings")
	r.notifyPoed("poecli_set")
	return nil
}

func mainImpl() error {
	platformOverride := flag.String("platform", "", "override onl_platform detection")
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		return fmt.Errorf("usage: poecli [-platform NAME] <show|set|save|restore> [flags]")
	}

	r, err := openRig(*platformOverride)
	if err != nil {
		return err
	}
	defer r.lock.Close()

	switch args[0] {
	case "show":
		_, err = r.lock.WithLock(func() error { return cmdShow(r, args[1:]) })
		return err
	case "set":
		return cmdSet(r, args[1:])
	case "save":
		return cmdSave(r, args[1:])
	case "restore":
		log, err := agent.NewLogger("poecli", false)
		if err != nil {
			return fmt.Errorf("opening syslog: %w", err)
		}
		defer log.Close()
		a, err := agent.NewAgent(r.desc, r.drivers, r.paths, log, r.lock)
		if err != nil {
			return err
		}
		return cmdRestore(r, a, args[1:])
	default:
		return fmt.Errorf("unknown subcommand %q", args[0])
	}
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "poecli: %s.\n", err)
		os.Exit(1)
	}
}
