package models

import "strings"

// Priority is the task-tracker priority attached to a history entry.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityNormal Priority = "Normal"
	PriorityHigh   Priority = "High"
	PriorityUrgent Priority = "Urgent"
)

// ParsePriority maps free-form tracker labels onto a Priority. Unknown values fall back to Normal.
func ParsePriority(s string) Priority {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return PriorityLow
	case "high":
		return PriorityHigh
	case "urgent":
		return PriorityUrgent
	default:
		return PriorityNormal
	}
}

// TimeEstimation is a cached AI estimate attached to an entry after creation.
type TimeEstimation struct {
	Junior    string `json:"junior"`
	Mid       string `json:"mid"`
	Senior    string `json:"senior"`
	Reasoning string `json:"reasoning"`
	Timestamp int64  `json:"timestamp"`
}

// HistoryEntry is one generation or saved task reference. Empty strings stand in for null.
// Timestamp together with TaskID identifies the entry; it is set once and never changed.
type HistoryEntry struct {
	TaskID                string          `json:"taskId" validate:"required"`
	TaskTitle             string          `json:"taskTitle" validate:"required"`
	TaskDescription       string          `json:"taskDescription,omitempty"`
	TaskPriority          Priority        `json:"taskPriority,omitempty" validate:"omitempty,oneof=Low Normal High Urgent"`
	BranchName            string          `json:"branchName,omitempty"`
	CommitMessage         string          `json:"commitMessage,omitempty"`
	SourceURL             string          `json:"sourceUrl,omitempty"`
	GitlabMergeRequestURL string          `json:"gitlabMergeRequestUrl,omitempty"`
	Timestamp             int64           `json:"timestamp"`
	LastUpdated           *int64          `json:"lastUpdated,omitempty"`
	LastEdited            *int64          `json:"lastEdited,omitempty"`
	TimeEstimation        *TimeEstimation `json:"timeEstimation,omitempty"`
}

// HistoryPatch carries the mutable fields of an entry. Nil fields are left untouched.
type HistoryPatch struct {
	TaskTitle             *string
	TaskDescription       *string
	TaskPriority          *Priority
	BranchName            *string
	CommitMessage         *string
	SourceURL             *string
	GitlabMergeRequestURL *string
	TimeEstimation        *TimeEstimation
}

// Apply merges the non-nil patch fields into e.
func (p HistoryPatch) Apply(e *HistoryEntry) {
	if p.TaskTitle != nil {
		e.TaskTitle = *p.TaskTitle
	}
	if p.TaskDescription != nil {
		e.TaskDescription = *p.TaskDescription
	}
	if p.TaskPriority != nil {
		e.TaskPriority = *p.TaskPriority
	}
	if p.BranchName != nil {
		e.BranchName = *p.BranchName
	}
	if p.CommitMessage != nil {
		e.CommitMessage = *p.CommitMessage
	}
	if p.SourceURL != nil {
		e.SourceURL = *p.SourceURL
	}
	if p.GitlabMergeRequestURL != nil {
		e.GitlabMergeRequestURL = *p.GitlabMergeRequestURL
	}
	if p.TimeEstimation != nil {
		est := *p.TimeEstimation
		e.TimeEstimation = &est
	}
}

// MatchType names the tier that matched a history entry. Declaration order is rank order.
type MatchType string

const (
	MatchExactURL        MatchType = "exact-url"
	MatchTaskID          MatchType = "task-id"
	MatchTitleSimilarity MatchType = "title-similarity"
	MatchDomainContext   MatchType = "domain-context"
)

// MatchResult is a history entry decorated with how and where it matched.
type MatchResult struct {
	HistoryEntry
	MatchType     MatchType `json:"matchType"`
	OriginalIndex int       `json:"originalIndex"`
}
