// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package poeconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dentproject/poed/portview"
)

// AgentVersion and ConfigVersion are this build's version strings. Only
// their major component (the text before the first '.') needs to match
// between a saved document and the running daemon for the document to be
// considered restorable.
const (
	AgentVersion  = "1.0.0"
	ConfigVersion = "1.0.0"
)

const timeLayout = "2006/01/02 15:04:05"

// ConfigTime is a timestamp serialized in the config file's fixed
// "YYYY/MM/DD HH:MM:SS" layout, rather than RFC 3339, to match the on-disk
// format already in use by deployed configuration files.
type ConfigTime time.Time

func (s ConfigTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(s).Format(timeLayout))
}

func (s *ConfigTime) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	t, err := time.Parse(timeLayout, str)
	if err != nil {
		return fmt.Errorf("poeconfig: parsing timestamp %q: %w", str, err)
	}
	*s = ConfigTime(t)
	return nil
}

func (s ConfigTime) Time() time.Time { return time.Time(s) }

// Stamp wraps t as a config-file timestamp.
func Stamp(t time.Time) ConfigTime { return ConfigTime(t) }

// GeneralInfo identifies which platform and which agent/config version
// produced a document, the minimum needed to decide whether it's safe to
// restore from.
type GeneralInfo struct {
	Platform      string `json:"platform"`
	AgentVersion  string `json:"poe_agent_version"`
	ConfigVersion string `json:"poe_config_version"`
	SerialNumber  int    `json:"file_serial_number"`
}

// Timestamps records when the document was written and when the PoE state
// it captures was last actually changed on the chip.
type Timestamps struct {
	FileSaveTime ConfigTime `json:"file_save_time"`
	LastSetTime  ConfigTime `json:"last_poe_set_time"`
}

// Document is the complete persisted snapshot of one platform's PoE state.
type Document struct {
	GenInfo    GeneralInfo           `json:"GENERAL_INFORMATION"`
	Timestamp  Timestamps            `json:"TIMESTAMP"`
	SystemInfo portview.SystemStatus `json:"SYSTEM_INFORMATION"`
	Ports      []portview.Status     `json:"PORTS_CONFIGURATIONS"`
}

// Store reads and writes Documents for one platform at one file path.
type Store struct {
	path     string
	platform string
}

// NewStore returns a Store persisting to path, validating loaded documents
// against platform.
func NewStore(path, platform string) *Store {
	return &Store{path: path, platform: platform}
}

// Path returns the store's backing file path.
func (s *Store) Path() string { return s.path }

// Exists reports whether the backing file is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Load reads and JSON-decodes the document at Path.
func (s *Store) Load() (*Document, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("poeconfig: reading %s: %w", s.path, err)
	}
	var doc Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("poeconfig: decoding %s: %w", s.path, err)
	}
	return &doc, nil
}

// Save atomically writes doc to Path: it's encoded to a temp file in the
// same directory, then renamed into place, so a reader never observes a
// partially written document. doc is validated first, the way the
// original's save() refuses to persist a document that wouldn't survive
// its own is_valid() check on the next load.
func (s *Store) Save(doc *Document) error {
	if err := s.IsValid(doc); err != nil {
		return fmt.Errorf("poeconfig: refusing to save invalid document: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("poeconfig: creating %s: %w", filepath.Dir(s.path), err)
	}
	b, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("poeconfig: encoding document: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".poeconfig-*.tmp")
	if err != nil {
		return fmt.Errorf("poeconfig: creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("poeconfig: writing %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("poeconfig: closing %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("poeconfig: renaming into %s: %w", s.path, err)
	}
	return nil
}

// IsValid reports whether doc is both structurally sound and restorable
// onto the Store's platform: the platform name must match exactly, the
// agent and config version majors must match, and the document's save
// time must not precede the PoE-set time it claims to capture.
func (s *Store) IsValid(doc *Document) error {
	if doc.GenInfo.Platform != s.platform {
		return fmt.Errorf("poeconfig: document platform %q does not match running platform %q",
			doc.GenInfo.Platform, s.platform)
	}
	if !sameMajorVersion(doc.GenInfo.AgentVersion, AgentVersion) {
		return fmt.Errorf("poeconfig: document agent version %q is incompatible with running version %q",
			doc.GenInfo.AgentVersion, AgentVersion)
	}
	if !sameMajorVersion(doc.GenInfo.ConfigVersion, ConfigVersion) {
		return fmt.Errorf("poeconfig: document config version %q is incompatible with running version %q",
			doc.GenInfo.ConfigVersion, ConfigVersion)
	}
	if doc.Timestamp.FileSaveTime.Time().Before(doc.Timestamp.LastSetTime.Time()) {
		return fmt.Errorf("poeconfig: document save time %s precedes its last-set time %s (corrupt or tampered)",
			doc.Timestamp.FileSaveTime.Time().Format(timeLayout),
			doc.Timestamp.LastSetTime.Time().Format(timeLayout))
	}
	return nil
}

func sameMajorVersion(a, b string) bool {
	return majorOf(a) == majorOf(b)
}

func majorOf(v string) string {
	parts := strings.SplitN(v, ".", 2)
	major := parts[0]
	if _, err := strconv.Atoi(major); err != nil {
		return v
	}
	return major
}
