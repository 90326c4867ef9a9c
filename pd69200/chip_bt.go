// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pd69200

// BT dialect operations. The BT ports-parameters command packs enable,
// operation mode, class-error policy, priority and a few reserved fields
// into one five-byte payload after the port number; every BT setter below sends the full payload
// with "no change" sentinels in every field it isn't touching, matching the
// firmware's single-command-per-field-group wire contract.

// SetBTPortEnable enables or disables logicPort on BT firmware.
func (d *Driver) SetBTPortEnable(logicPort byte, enable bool) error {
	v := byte(dataDisable)
	if enable {
		v = dataEnable
	}
	cmd := []byte{
		byte(KeyCommand), 0, subChannel, sub1BTPortParams, logicPort,
		dataEnDisOnly | v,
		btModeNoChange | btClassErrorNoChange,
		btOpModeNoChange,
		btPowerSame,
		btPriorityNoChange,
	}
	_, err := d.eng.run("set_bt_port_enDis", cmd, msgDelay)
	return err
}

// SetBTPortPriority sets logicPort's priority on BT firmware.
func (d *Driver) SetBTPortPriority(logicPort, priority byte) error {
	cmd := []byte{
		byte(KeyCommand), 0, subChannel, sub1BTPortParams, logicPort,
		dataBTEnDisNoChange,
		btModeNoChange | btClassErrorNoChange,
		btOpModeNoChange,
		btPowerSame,
		priority,
	}
	_, err := d.eng.run("set_bt_port_priority", cmd, msgDelay)
	return err
}

// SetBTPortOperationMode sets logicPort's operation mode byte directly,
// leaving enable, class-error policy, power and priority untouched.
func (d *Driver) SetBTPortOperationMode(logicPort, mode byte) error {
	cmd := []byte{
		byte(KeyCommand), 0, subChannel, sub1BTPortParams, logicPort,
		dataBTEnDisNoChange,
		btModeNoChange | btClassErrorNoChange,
		mode,
		btPowerSame,
		btPriorityNoChange,
	}
	_, err := d.eng.run("set_bt_port_operation_mode", cmd, msgDelay)
	return err
}

// GetBTPortParameters returns the BT ports-parameters record (status,
// enable, operation mode, priority) for logicPort.
func (d *Driver) GetBTPortParameters(logicPort byte) (BTPortParameters, error) {
	cmd := []byte{byte(KeyRequest), 0, subChannel, sub1BTPortParams, logicPort}
	reply, err := d.eng.run("get_bt_port_parameters", cmd, msgDelay)
	if err != nil {
		return BTPortParameters{}, err
	}
	return parseBTPortParameters(reply), nil
}

// GetBTPortClass returns measured class, negotiated class and TPPL for
// logicPort.
func (d *Driver) GetBTPortClass(logicPort byte) (BTPortClass, error) {
	cmd := []byte{byte(KeyRequest), 0, subChannel, sub1BTPortClass, logicPort}
	reply, err := d.eng.run("get_bt_port_class", cmd, msgDelay)
	if err != nil {
		return BTPortClass{}, err
	}
	return parseBTPortClass(reply), nil
}

// GetBTPortMeasurements returns current/power/voltage for logicPort on BT
// firmware.
func (d *Driver) GetBTPortMeasurements(logicPort byte) (PortMeasurements, error) {
	cmd := []byte{byte(KeyRequest), 0, subChannel, sub1BTPortMeas, logicPort}
	reply, err := d.eng.run("get_bt_port_measurements", cmd, msgDelay)
	if err != nil {
		return PortMeasurements{}, err
	}
	return parsePortMeasurements(reply), nil
}
