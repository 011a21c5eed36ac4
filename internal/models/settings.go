package models

// Settings is the user configuration kept in the sync partition.
type Settings struct {
	Version    int                `json:"version"`
	Generation GenerationSettings `json:"generation"`
	Chat       ChatSettings       `json:"chat"`
	Presence   PresenceSettings   `json:"presence"`
	UpdatedAt  string             `json:"updatedAt,omitempty"`
}

type GenerationSettings struct {
	ModelKey        string  `json:"modelKey"`
	BranchRules     string  `json:"branchRules,omitempty"`
	CommitRules     string  `json:"commitRules,omitempty"`
	Language        string  `json:"language,omitempty"`
	Temperature     float32 `json:"temperature" validate:"gte=0,lte=2"`
	MaxOutputTokens int32   `json:"maxOutputTokens" validate:"gte=0"`
}

type ChatSettings struct {
	ServerURL string `json:"serverUrl,omitempty" validate:"omitempty,url"`
	UserID    string `json:"userId,omitempty"`
}

type PresenceSettings struct {
	Enabled       bool                      `json:"enabled"`
	Default       StatusOverride            `json:"default"`
	FilteredRooms []string                  `json:"filteredRooms,omitempty"`
	RoomOverrides map[string]StatusOverride `json:"roomOverrides,omitempty" validate:"dive"`
}
