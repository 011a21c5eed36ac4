package models

// StatusRecord is one presence change. A record with a nil EndTime is still open.
type StatusRecord struct {
	ID        string `json:"id"`
	RoomID    string `json:"roomId,omitempty"`
	Title     string `json:"title,omitempty"`
	Status    string `json:"status"`
	Emoji     string `json:"emoji"`
	Text      string `json:"text"`
	StartTime int64  `json:"startTime"`
	EndTime   *int64 `json:"endTime"`
	Duration  *int64 `json:"duration,omitempty"`
}

// IsOpen reports whether the record has not been closed yet.
func (r StatusRecord) IsOpen() bool {
	return r.EndTime == nil
}

// StatusOverride is a custom availability/emoji/text triple.
type StatusOverride struct {
	Availability string `json:"availability,omitempty" validate:"omitempty,oneof=online away dnd offline"`
	Emoji        string `json:"emoji,omitempty"`
	Text         string `json:"text,omitempty"`
}
