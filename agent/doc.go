// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package agent implements poed's process lifecycle: boot-mode detection,
// platform bring-up, configuration restore with a fail-safe fallback,
// periodic autosave, and the named-pipe event bus poecli uses to notify a
// running daemon of out-of-band changes.
package agent
