package messages

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"clickhelper/internal/events"
	"clickhelper/internal/models"
	"clickhelper/internal/services"
)

// Router dispatches messages to the services.
//
// Background work (auto-search and presence) never fails a dispatch: errors are
// logged and a nil reply is returned. Everything the user asked for explicitly
// emits an error notification and returns the error.
type Router struct {
	AutoSearch services.AutoSearchService
	Generation services.GenerationService
	History    services.HistoryService
	Presence   services.PresenceService
}

// Dispatch handles msg and returns its reply:
//
//	AutoSearch          services.AutoSearchResult
//	Generate            *models.GenerationResult
//	EstimateTime        *models.HistoryEntry
//	AttachMergeRequest  *models.HistoryEntry
//	SetMeetingStatus    *models.StatusRecord (nil when skipped)
//	ClearMeetingStatus  *models.StatusRecord (nil when nothing was open)
//	SaveTask            *models.HistoryEntry
//	EditEntry           *models.HistoryEntry
//	DeleteEntry         nil
func (r *Router) Dispatch(ctx context.Context, msg Message) (any, error) {
	switch m := msg.(type) {
	case AutoSearch:
		return r.AutoSearch.Search(ctx, m.Page), nil

	case Generate:
		res, err := r.Generation.Generate(ctx, m.Request)
		if err != nil {
			return nil, r.fail(ctx, events.TopicGenerate, "generation failed", err)
		}
		events.Emit(ctx, events.TopicGenerate, events.NewSuccess("generated "+res.BranchName))
		return res, nil

	case EstimateTime:
		entry, err := r.Generation.EstimateTime(ctx, m.Index, m.ModelKey)
		if err != nil {
			return nil, r.fail(ctx, events.TopicGenerate, "estimate failed", err)
		}
		events.Emit(ctx, events.TopicHistory, events.NewSuccess("estimate attached to "+entry.TaskID))
		return entry, nil

	case AttachMergeRequest:
		entry, err := r.History.AttachMergeRequest(ctx, m.TaskID, m.URL)
		if err != nil {
			return nil, r.fail(ctx, events.TopicHistory, "attaching merge request failed", err)
		}
		events.Emit(ctx, events.TopicHistory, events.NewSuccess("merge request attached to "+entry.TaskID))
		return entry, nil

	case SetMeetingStatus:
		rec, err := r.Presence.SetMeetingStatus(ctx, m.RoomID, m.Title)
		if err != nil {
			slog.WarnContext(ctx, "presence: set status failed", "room", m.RoomID, "error", err)
			return nil, nil
		}
		return rec, nil

	case ClearMeetingStatus:
		rec, err := r.Presence.ClearMeetingStatus(ctx, m.RoomID)
		if err != nil {
			slog.WarnContext(ctx, "presence: clear status failed", "room", m.RoomID, "error", err)
			return nil, nil
		}
		return rec, nil

	case SaveTask:
		entry, err := r.History.Append(ctx, entryFromTask(m.Task))
		if err != nil {
			return nil, r.fail(ctx, events.TopicHistory, "saving task failed", err)
		}
		events.Emit(ctx, events.TopicHistory, events.NewSuccess("saved "+entry.TaskID))
		return entry, nil

	case EditEntry:
		entry, err := r.History.Update(ctx, m.Index, m.Patch)
		if err != nil {
			return nil, r.fail(ctx, events.TopicHistory, "saving changes failed", err)
		}
		return entry, nil

	case DeleteEntry:
		if err := r.History.Remove(ctx, m.Index); err != nil {
			return nil, r.fail(ctx, events.TopicHistory, "delete failed", err)
		}
		events.Emit(ctx, events.TopicHistory, events.NewInfo(fmt.Sprintf("deleted entry %d", m.Index)))
		return nil, nil

	default:
		return nil, fmt.Errorf("unhandled message %T", msg)
	}
}

func (r *Router) fail(ctx context.Context, topic, what string, err error) error {
	n := events.NewError(what + ": " + err.Error())
	if hint := services.Hint(err); hint != "" {
		n = n.With("hint", hint)
	}
	events.Emit(ctx, topic, n)
	return err
}

func entryFromTask(task models.TaskData) models.HistoryEntry {
	id := strings.TrimSpace(task.ID)
	title := strings.TrimSpace(task.Title)
	if title == "" {
		title = id
	}
	return models.HistoryEntry{
		TaskID:          id,
		TaskTitle:       title,
		TaskDescription: task.Description,
		TaskPriority:    models.ParsePriority(task.Priority),
		SourceURL:       task.URL,
	}
}
