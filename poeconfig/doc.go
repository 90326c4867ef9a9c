// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package poeconfig persists the daemon's last-known PoE configuration as a
// JSON document, and validates a loaded document against the running
// platform and agent before it's trusted as a basis for restore.
package poeconfig
