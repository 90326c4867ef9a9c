// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package agent

import (
	"time"

	"github.com/dentproject/poed/poeconfig"
)

// seedDocument returns a minimal Document that passes a's stores' IsValid.
func seedDocument(a *Agent) *poeconfig.Document {
	ts := poeconfig.Stamp(time.Now())
	return &poeconfig.Document{
		GenInfo: poeconfig.GeneralInfo{
			Platform:      a.Desc.Name,
			AgentVersion:  poeconfig.AgentVersion,
			ConfigVersion: poeconfig.ConfigVersion,
		},
		Timestamp: poeconfig.Timestamps{FileSaveTime: ts, LastSetTime: ts},
	}
}

func newTestStoreAt(a *Agent, path string) *poeconfig.Store {
	return poeconfig.NewStore(path, a.Desc.Name)
}
