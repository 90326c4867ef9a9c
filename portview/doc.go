// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package portview presents one normalized view over a pd69200.Driver's
// per-port and system-wide state, regardless of which wire dialect (AF/AT
// or BT) the underlying chip speaks. Setters compare against the chip's
// current value first and only issue a command when the requested value
// actually differs, so a config restore that reapplies unchanged settings
// doesn't churn the bus or the chip's NVM write budget.
package portview
