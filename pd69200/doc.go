// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package pd69200 implements the wire protocol, message parsers and typed
// chip driver for the Microsemi/Microchip PD69200 family of PoE controllers.
//
// A PD69200 frame is always exactly 15 bytes. The protocol engine builds a
// frame, writes it to the bus, waits a command-specific settle delay, reads
// back exactly 15 bytes, and validates key/echo/checksum before handing the
// reply to a message parser. The chip exposes two wire dialects, AF/AT and
// BT (802.3bt, 4-pair); Driver probes the firmware at construction time and
// reports the result through Dialect(). AF/AT and BT operations are separate
// Driver methods, and the caller picks the one for the probed dialect.
package pd69200
