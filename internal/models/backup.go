package models

import (
	"encoding/json"
	"time"
)

// Backup is the export format for the whole persisted state.
type Backup struct {
	Version       int                        `json:"version"`
	ExportedAt    time.Time                  `json:"exportedAt"`
	Local         map[string]json.RawMessage `json:"local"`
	Sync          map[string]json.RawMessage `json:"sync"`
	ModelSettings []ModelSetting             `json:"modelSettings,omitempty"`
	Templates     []Template                 `json:"templates,omitempty"`
}
