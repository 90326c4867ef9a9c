// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pd69200

import (
	"errors"
	"fmt"
)

// Dialect is the PD69200 firmware generation exposed on the wire. It is
// probed once at driver construction and fixed thereafter. Driver does not
// route by it: AF/AT and BT operations are separate methods (for example
// SetPortEnable and SetBTPortEnable), and callers choose one by Dialect().
type Dialect int

const (
	DialectAFAT Dialect = iota
	DialectBT
)

func (d Dialect) String() string {
	if d == DialectBT {
		return "BT"
	}
	return "AF/AT"
}

// ErrUnsupported is returned by operations not available in the driver's
// current dialect, e.g. setting a power limit directly on BT firmware.
var ErrUnsupported = errors.New("pd69200: unsupported in this dialect")

// Driver is a typed PD69200 chip abstraction over one Transport. It carries
// the probed Dialect and the shutdown-voltage/guard-band parameters a
// platform supplies for power-bank programming.
type Driver struct {
	eng     *engine
	dialect Dialect

	maxShutdownVol uint16
	minShutdownVol uint16
	guardBand      byte
}

// NewDriver constructs a Driver over t and probes the firmware version to
// select a dialect: if the version string's second dotted field is >= 3,
// the chip is BT firmware.
func NewDriver(t *Transport, maxShutdownVol, minShutdownVol uint16, guardBand byte) (*Driver, error) {
	d := &Driver{
		eng:            newEngine(t),
		dialect:        DialectAFAT,
		maxShutdownVol: maxShutdownVol,
		minShutdownVol: minShutdownVol,
		guardBand:      guardBand,
	}
	bt, err := d.support4WireBT(3)
	if err != nil {
		return nil, fmt.Errorf("pd69200: probing firmware dialect: %w", err)
	}
	if bt {
		d.dialect = DialectBT
	}
	return d, nil
}

// Dialect reports the dialect this driver was probed into.
func (d *Driver) Dialect() Dialect { return d.dialect }

func (d *Driver) support4WireBT(minMajor int) (bool, error) {
	major, err := d.poeVersionMajor()
	if err != nil {
		return false, err
	}
	return major >= minMajor, nil
}

// ResetPoe issues a global chip reset, with the mandatory 300ms wake delay.
func (d *Driver) ResetPoe() error {
	cmd := []byte{byte(KeyCommand), 0, subGlobal, sub1Reset, 0x00, sub1Reset, 0x00, sub1Reset}
	_, err := d.eng.run("reset_poe", cmd, resetPoeChipDelay)
	return err
}

// RestoreFactoryDefault restores the chip's factory settings.
func (d *Driver) RestoreFactoryDefault() error {
	cmd := []byte{byte(KeyProgram), 0, subRestoreFact}
	_, err := d.eng.run("restore_factory_default", cmd, restoreFactoryDefaultDelay)
	return err
}

// SaveSystemSettings commits the chip's current working configuration to
// its own NVM.
func (d *Driver) SaveSystemSettings() error {
	cmd := []byte{byte(KeyProgram), 0, subE2, sub1SaveConfig}
	_, err := d.eng.run("save_system_settings", cmd, saveSysDelay)
	return err
}

// SetUserByte persists a single user-defined byte in the chip's NVM.
func (d *Driver) SetUserByte(userVal byte) error {
	cmd := []byte{byte(KeyProgram), 0, subUserByte, userVal}
	_, err := d.eng.run("set_user_byte_to_save", cmd, saveSysDelay)
	return err
}

// GetSystemStatus returns the AF/AT system status record.
func (d *Driver) GetSystemStatus() (SystemStatus, error) {
	cmd := []byte{byte(KeyRequest), 0, subGlobal, sub1SystemStatus}
	reply, err := d.eng.run("get_system_status", cmd, msgDelay)
	if err != nil {
		return SystemStatus{}, err
	}
	return parseSystemStatus(reply), nil
}

// GetBTSystemStatus returns the BT system status record.
func (d *Driver) GetBTSystemStatus() (BTSystemStatus, error) {
	cmd := []byte{byte(KeyRequest), 0, subGlobal, sub1BTSystemStatus}
	reply, err := d.eng.run("get_bt_system_status", cmd, msgDelay)
	if err != nil {
		return BTSystemStatus{}, err
	}
	return parseBTSystemStatus(reply), nil
}

// SetIndividualMask sets the enable bit for mask group maskNum.
func (d *Driver) SetIndividualMask(maskNum, enDis byte) error {
	cmd := []byte{byte(KeyCommand), 0, subGlobal, sub1IndvMask, maskNum, enDis}
	_, err := d.eng.run("set_individual_mask", cmd, msgDelay)
	return err
}

// GetIndividualMask reads back the enable bit for mask group maskNum.
func (d *Driver) GetIndividualMask(maskNum byte) (IndividualMask, error) {
	cmd := []byte{byte(KeyRequest), 0, subGlobal, sub1IndvMask, maskNum}
	reply, err := d.eng.run("get_individual_mask", cmd, msgDelay)
	if err != nil {
		return IndividualMask{}, err
	}
	return parseIndividualMask(reply), nil
}

// GetSoftwareVersion returns the raw product/version record.
func (d *Driver) GetSoftwareVersion() (SoftwareVersion, error) {
	cmd := []byte{byte(KeyRequest), 0, subGlobal, sub1Versionz, sub2SWVersion}
	reply, err := d.eng.run("get_software_version", cmd, msgDelay)
	if err != nil {
		return SoftwareVersion{}, err
	}
	return parseSoftwareVersion(reply), nil
}

// GetPoeVersions formats the software version as "{prod}.{major}.{minor}.{patch}".
func (d *Driver) GetPoeVersions() (string, error) {
	v, err := d.GetSoftwareVersion()
	if err != nil {
		return "", err
	}
	major := v.SWVer / 100
	minor := (v.SWVer / 10) % 10
	patch := v.SWVer % 10
	return fmt.Sprintf("%d.%d.%d.%d", v.ProdNum, major, minor, patch), nil
}

func (d *Driver) poeVersionMajor() (int, error) {
	v, err := d.GetSoftwareVersion()
	if err != nil {
		return 0, err
	}
	return int(v.SWVer / 100), nil
}

// ActiveMatrix is the logical-to-physical port mapping read back from the
// chip's temporary or committed matrix region.
type ActiveMatrix struct {
	PhyA byte
	PhyB byte
}

// SetTempMatrix stages one logical-port mapping into the chip's temporary
// matrix region. Pass phyB as the 2-pair sentinel 0xFF for a 2-pair port.
func (d *Driver) SetTempMatrix(logicPort, phyA, phyB byte) error {
	cmd := []byte{byte(KeyCommand), 0, subChannel, sub1TempMatrix, logicPort, phyA, phyB}
	_, err := d.eng.run("set_temp_matrix", cmd, msgDelay)
	return err
}

// GetTempMatrix reads back one logical port's staged (not yet committed)
// mapping.
func (d *Driver) GetTempMatrix(logicPort byte) (ActiveMatrix, error) {
	cmd := []byte{byte(KeyRequest), 0, subChannel, sub1TempMatrix, logicPort}
	reply, err := d.eng.run("get_temp_matrix", cmd, msgDelay)
	if err != nil {
		return ActiveMatrix{}, err
	}
	return ActiveMatrix{PhyA: reply[OffsetSub], PhyB: reply[OffsetSub1]}, nil
}

// ProgramActiveMatrix commits the staged temporary matrix atomically; after
// this call returns without error the chip's active matrix equals whatever
// was last staged via SetTempMatrix.
func (d *Driver) ProgramActiveMatrix() error {
	cmd := []byte{byte(KeyCommand), 0, subGlobal, sub1TempMatrix}
	_, err := d.eng.run("program_active_matrix", cmd, msgDelay)
	return err
}

// GetActiveMatrix reads one logical port's committed mapping.
func (d *Driver) GetActiveMatrix(logicPort byte) (ActiveMatrix, error) {
	cmd := []byte{byte(KeyRequest), 0, subChannel, sub1ChMatrix, logicPort}
	reply, err := d.eng.run("get_active_matrix", cmd, msgDelay)
	if err != nil {
		return ActiveMatrix{}, err
	}
	return ActiveMatrix{PhyA: reply[OffsetSub], PhyB: reply[OffsetSub1]}, nil
}

// SetPortEnable enables or disables logicPort. Only valid in the AF/AT
// dialect; callers should use SetBTPortEnable for BT chips.
func (d *Driver) SetPortEnable(logicPort byte, enable bool) error {
	v := byte(dataDisable)
	if enable {
		v = dataEnable
	}
	cmd := []byte{byte(KeyCommand), 0, subChannel, sub1EnDis, logicPort,
		dataEnDisOnly | v, portTypeAT}
	_, err := d.eng.run("set_port_enDis", cmd, msgDelay)
	return err
}

// GetAllPortsEnDis returns the enable/disable bitmap for every logical port
// the chip knows about (length 48, one byte per port: 0 or 1).
func (d *Driver) GetAllPortsEnDis() (AllPortsEnDis, error) {
	cmd := []byte{byte(KeyRequest), 0, subGlobal, sub1EnDis}
	reply, err := d.eng.run("get_all_ports_enDis", cmd, msgDelay)
	if err != nil {
		return AllPortsEnDis{}, err
	}
	return parseAllPortsEnDis(reply), nil
}

// SetPortPowerLimit sets logicPort's power limit in mW. AF/AT only: BT
// firmware derives the limit from the negotiated class and rejects this
// with ErrUnsupported.
func (d *Driver) SetPortPowerLimit(logicPort byte, limitMW uint16) error {
	if d.dialect == DialectBT {
		return fmt.Errorf("set_port_power_limit: %w", ErrUnsupported)
	}
	cmd := []byte{byte(KeyCommand), 0, subChannel, sub1Supply, logicPort,
		byte(limitMW >> 8), byte(limitMW)}
	_, err := d.eng.run("set_port_power_limit", cmd, msgDelay)
	return err
}

// GetPortPowerLimit reads back logicPort's power limit and the chip-wide
// total PD power limit.
func (d *Driver) GetPortPowerLimit(logicPort byte) (PortPowerLimit, error) {
	cmd := []byte{byte(KeyRequest), 0, subChannel, sub1Supply, logicPort}
	reply, err := d.eng.run("get_port_power_limit", cmd, msgDelay)
	if err != nil {
		return PortPowerLimit{}, err
	}
	return parsePortPowerLimit(reply), nil
}

// SetPortPriority sets logicPort's priority (AF/AT dialect; PriorityCrit,
// PriorityHigh or PriorityLow).
func (d *Driver) SetPortPriority(logicPort, priority byte) error {
	cmd := []byte{byte(KeyCommand), 0, subChannel, sub1Priority, logicPort, priority}
	_, err := d.eng.run("set_port_priority", cmd, msgDelay)
	return err
}

// GetPortPriority reads back logicPort's priority (AF/AT dialect).
func (d *Driver) GetPortPriority(logicPort byte) (PortPriority, error) {
	cmd := []byte{byte(KeyRequest), 0, subChannel, sub1Priority, logicPort}
	reply, err := d.eng.run("get_port_priority", cmd, msgDelay)
	if err != nil {
		return PortPriority{}, err
	}
	return parsePortPriority(reply), nil
}

// GetPortStatus returns the AF/AT typed port status record.
func (d *Driver) GetPortStatus(logicPort byte) (PortStatus, error) {
	cmd := []byte{byte(KeyRequest), 0, subChannel, sub1PortStatus, logicPort}
	reply, err := d.eng.run("get_port_status", cmd, msgDelay)
	if err != nil {
		return PortStatus{}, err
	}
	return parsePortStatus(reply), nil
}

// SetPMMethod configures the chip's power-management triplet. AF/AT only.
func (d *Driver) SetPMMethod(pm1, pm2, pm3 byte) error {
	cmd := []byte{byte(KeyCommand), 0, subGlobal, sub1Supply, sub2PwrManageMode, pm1, pm2, pm3}
	_, err := d.eng.run("set_pm_method", cmd, msgDelay)
	return err
}

// GetPMMethod reads back the power-management triplet.
func (d *Driver) GetPMMethod() (PMMethod, error) {
	cmd := []byte{byte(KeyRequest), 0, subGlobal, sub1Supply, sub2PwrManageMode}
	reply, err := d.eng.run("get_pm_method", cmd, msgDelay)
	if err != nil {
		return PMMethod{}, err
	}
	return parsePMMethod(reply), nil
}

// SetPowerBank programs one power bank's budget along with the driver's
// shutdown-voltage and guard-band parameters, as the chip requires all four
// values in a single command.
func (d *Driver) SetPowerBank(bank byte, budgetW uint16) error {
	cmd := []byte{
		byte(KeyCommand), 0, subGlobal, sub1Supply, sub2PwrBudget,
		bank,
		byte(budgetW >> 8), byte(budgetW),
		byte(d.maxShutdownVol >> 8), byte(d.maxShutdownVol),
		byte(d.minShutdownVol >> 8), byte(d.minShutdownVol),
		d.guardBand,
	}
	_, err := d.eng.run("set_power_bank", cmd, msgDelay)
	return err
}

// GetPowerSupplyParams returns consumption, shutdown-voltage thresholds,
// the active power bank and total power.
func (d *Driver) GetPowerSupplyParams() (PowerSupplyParams, error) {
	cmd := []byte{byte(KeyRequest), 0, subGlobal, sub1Supply, sub2Main}
	reply, err := d.eng.run("get_power_supply_params", cmd, msgDelay)
	if err != nil {
		return PowerSupplyParams{}, err
	}
	return parsePowerSupplyParams(reply), nil
}

// GetCurrentPowerBank is a convenience wrapper reading just the active bank
// id out of GetPowerSupplyParams.
func (d *Driver) GetCurrentPowerBank() (byte, error) {
	p, err := d.GetPowerSupplyParams()
	if err != nil {
		return 0, err
	}
	return p.PowerBank, nil
}

// GetPortMeasurements returns current/power/voltage for logicPort (AF/AT
// dialect).
func (d *Driver) GetPortMeasurements(logicPort byte) (PortMeasurements, error) {
	cmd := []byte{byte(KeyRequest), 0, subChannel, sub1Paramz, logicPort}
	reply, err := d.eng.run("get_port_measurements", cmd, msgDelay)
	if err != nil {
		return PortMeasurements{}, err
	}
	return parsePortMeasurements(reply), nil
}

// GetPoeDeviceParameters reads the per-chip-select diagnostic record used
// on multi-chip platforms to poll each chip-select's health independent of
// port state.
func (d *Driver) GetPoeDeviceParameters(csnum byte) (DeviceParameters, error) {
	cmd := []byte{byte(KeyRequest), 0, subGlobal, sub1DevParams, csnum}
	reply, err := d.eng.run("get_poe_device_parameters", cmd, msgDelay)
	if err != nil {
		return DeviceParameters{}, err
	}
	return parseDeviceParameters(reply), nil
}
