// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package platform

import "fmt"

// registry holds every compiled-in Descriptor, keyed by its onl_platform
// name. Descriptors self-register from an init() in their own file, the Go
// equivalent of the per-model poe_platform.py modules the daemon used to
// pick with imp.load_source at runtime.
var registry = map[string]*Descriptor{}

// Register adds d to the registry under its own Name. It panics on a
// duplicate name, since that can only happen from a programming error at
// package init time.
func Register(d *Descriptor) {
	if _, dup := registry[d.Name]; dup {
		panic(fmt.Sprintf("platform: duplicate registration for %q", d.Name))
	}
	registry[d.Name] = d
}

// Lookup returns the Descriptor registered under name.
func Lookup(name string) (*Descriptor, error) {
	d, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("platform: no descriptor registered for %q", name)
	}
	return d, nil
}

// Names returns every registered platform name, for diagnostics.
func Names() []string {
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	return out
}
