// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package platform

import (
	"fmt"
	"os"
	"strings"
)

const cmdlinePath = "/proc/cmdline"

// BootPlatform reads the onl_platform= field out of /proc/cmdline, the way
// ONL-based switch images identify their own hardware to user-space daemons.
func BootPlatform() (string, error) {
	return bootPlatformFrom(cmdlinePath)
}

func bootPlatformFrom(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("platform: reading %s: %w", path, err)
	}
	for _, kv := range strings.Fields(string(b)) {
		k, v, ok := strings.Cut(kv, "=")
		if ok && k == "onl_platform" {
			return v, nil
		}
	}
	return "", fmt.Errorf("platform: onl_platform= not found in %s", path)
}
