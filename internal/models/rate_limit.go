package models

// RateLimitState is the persisted usage of a single model.
type RateLimitState struct {
	MinuteHits []int64 `json:"minuteHits"`
	Day        string  `json:"day"`
	DayCount   int     `json:"dayCount"`
}
