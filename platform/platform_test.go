// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package platform

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRegistryHasAllFourModels(t *testing.T) {
	want := []string{
		"x86-64-accton-as4224-52p-r0",
		"x86-64-delta-tn48m-poe-r0",
		"x86-64-accton-as4564-26p-r0",
		"x86-64-accton-as4561-52p5-r0",
	}
	for _, name := range want {
		if _, err := Lookup(name); err != nil {
			t.Errorf("Lookup(%q) err = %v", name, err)
		}
	}
}

func TestLookupUnknownPlatform(t *testing.T) {
	if _, err := Lookup("no-such-platform"); err == nil {
		t.Fatal("Lookup() of an unregistered name should fail")
	}
}

func TestDescriptorsValidate(t *testing.T) {
	for _, name := range Names() {
		d, err := Lookup(name)
		if err != nil {
			t.Fatal(err)
		}
		if err := d.Validate(); err != nil {
			t.Errorf("%s: Validate() = %v", name, err)
		}
	}
}

func TestChipForPortMultiChip(t *testing.T) {
	d, err := Lookup("x86-64-accton-as4561-52p5-r0")
	if err != nil {
		t.Fatal(err)
	}
	if chip, local := d.ChipForPort(0); chip != 0 || local != 0 {
		t.Errorf("ChipForPort(0) = (%d, %d), want (0, 0)", chip, local)
	}
	if chip, local := d.ChipForPort(30); chip != 1 || local != 6 {
		t.Errorf("ChipForPort(30) = (%d, %d), want (1, 6)", chip, local)
	}
}

func TestChipForPortSingleChip(t *testing.T) {
	d, err := Lookup("x86-64-accton-as4224-52p-r0")
	if err != nil {
		t.Fatal(err)
	}
	if chip, local := d.ChipForPort(10); chip != 0 || local != 10 {
		t.Errorf("ChipForPort(10) = (%d, %d), want (0, 10)", chip, local)
	}
}

func TestBankToPSU(t *testing.T) {
	d, err := Lookup("x86-64-delta-tn48m-poe-r0")
	if err != nil {
		t.Fatal(err)
	}
	if got := d.BankToPSU(15); got != "PSU1, PSU2" {
		t.Errorf("BankToPSU(15) = %q, want %q", got, "PSU1, PSU2")
	}
	if got := d.BankToPSU(99); got != "" {
		t.Errorf("BankToPSU(99) = %q, want empty", got)
	}
}

func TestBootPlatformParsesCmdline(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cmdline")
	content := "console=ttyS0,115200n8 onl_platform=x86-64-accton-as4224-52p-r0 quiet\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := bootPlatformFrom(path)
	if err != nil {
		t.Fatalf("bootPlatformFrom() err = %v", err)
	}
	if got != "x86-64-accton-as4224-52p-r0" {
		t.Errorf("bootPlatformFrom() = %q, want %q", got, "x86-64-accton-as4224-52p-r0")
	}
}

func TestBootPlatformMissingKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cmdline")
	if err := os.WriteFile(path, []byte("console=ttyS0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := bootPlatformFrom(path); err == nil {
		t.Fatal("bootPlatformFrom() without onl_platform= should fail")
	}
}
