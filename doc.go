// Copyright 2018 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package poed is the root of the PoE management agent: poed (the daemon)
// and poecli (the CLI) that together drive one or more Microsemi PD69200
// PoE controllers over I2C.
//
// poed brings the chip(s) up to a platform's default matrix, power banks,
// and PM method, restores per-port configuration from disk, and keeps
// persisting it. poecli is the operator-facing tool for inspecting and
// changing port state directly, notifying a running poed afterward over a
// named-pipe event bus.
//
// See the agent, pd69200, platform, poeconfig, and portview packages.
package poed
