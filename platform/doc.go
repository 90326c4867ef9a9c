// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package platform holds the static, per-switch-model PoE descriptors: port
// count, default matrix, power-bank budgets and shutdown-voltage/guard-band
// parameters a pd69200.Driver needs to bring a chip up from cold boot.
//
// A descriptor is selected once at daemon start by matching the
// onl_platform= field of /proc/cmdline against a compile-time registry, in
// place of loading a per-model Python module at runtime.
package platform
