// Package messages is the typed command surface between the CLI and the services.
package messages

import (
	"clickhelper/internal/extractor"
	"clickhelper/internal/models"
	"clickhelper/internal/services"
)

// Message is one of the variants below. The unexported marker keeps the set closed.
type Message interface {
	isMessage()
}

// AutoSearch looks the visited page up in the history log.
type AutoSearch struct {
	Page extractor.Page
}

// Generate produces a branch name and commit message for a task.
type Generate struct {
	Request services.GenerateRequest
}

// EstimateTime attaches an effort estimate to the history entry at Index.
type EstimateTime struct {
	Index    int
	ModelKey string
}

// AttachMergeRequest records a merge-request URL on the newest entry for TaskID.
type AttachMergeRequest struct {
	TaskID string
	URL    string
}

type SetMeetingStatus struct {
	RoomID string
	Title  string
}

type ClearMeetingStatus struct {
	RoomID string
}

// SaveTask stores a task reference without generating anything.
type SaveTask struct {
	Task models.TaskData
}

type EditEntry struct {
	Index int
	Patch models.HistoryPatch
}

type DeleteEntry struct {
	Index int
}

func (AutoSearch) isMessage()         {}
func (Generate) isMessage()           {}
func (EstimateTime) isMessage()       {}
func (AttachMergeRequest) isMessage() {}
func (SetMeetingStatus) isMessage()   {}
func (ClearMeetingStatus) isMessage() {}
func (SaveTask) isMessage()           {}
func (EditEntry) isMessage()          {}
func (DeleteEntry) isMessage()        {}
