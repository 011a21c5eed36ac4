package ui

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"clickhelper/internal/events"
	"clickhelper/internal/models"
)

// HistoryTable lists entries with their index, which is what the edit commands take.
func HistoryTable(entries []models.HistoryEntry) string {
	t := &Table{Headers: []string{"#", "Task", "Title", "Branch", "Priority", "Created"}, MaxWidth: 48}
	for i, e := range entries {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(i),
			e.TaskID,
			e.TaskTitle,
			e.BranchName,
			string(e.TaskPriority),
			time.UnixMilli(e.Timestamp).Format("2006-01-02 15:04"),
		})
	}
	return t.Render()
}

// MatchTable renders auto-search hits in rank order.
func MatchTable(matches []models.MatchResult) string {
	t := &Table{Headers: []string{"#", "Match", "Task", "Title", "Branch"}, MaxWidth: 48}
	for _, m := range matches {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(m.OriginalIndex),
			string(m.MatchType),
			m.TaskID,
			m.TaskTitle,
			m.BranchName,
		})
	}
	return t.Render()
}

func StatusTable(records []models.StatusRecord) string {
	t := &Table{Headers: []string{"Room", "Title", "Status", "Started", "Duration"}, MaxWidth: 40}
	for _, r := range records {
		duration := "open"
		if r.Duration != nil {
			duration = (time.Duration(*r.Duration) * time.Millisecond).Round(time.Second).String()
		}
		t.Rows = append(t.Rows, []string{
			r.RoomID,
			r.Title,
			r.Status,
			time.UnixMilli(r.StartTime).Format("2006-01-02 15:04"),
			duration,
		})
	}
	return t.Render()
}

// GenerationBox frames a generated result for copy-paste.
func GenerationBox(res *models.GenerationResult) string {
	body := StyleLabel.Render("branch ") + res.BranchName + "\n" + StyleLabel.Render("commit ") + res.CommitMessage
	return StyleResultBox.Render(body)
}

// NotificationPrinter returns an events emitter that writes styled one-liners to w.
func NotificationPrinter(w io.Writer) func(context.Context, string, events.Notification) {
	return func(_ context.Context, _ string, n events.Notification) {
		var prefix string
		switch n.Level {
		case events.LevelSuccess:
			prefix = StyleSuccess.Render("✔")
		case events.LevelError:
			prefix = StyleError.Render("✖")
		case events.LevelWarn:
			prefix = StyleWarning.Render("!")
		default:
			prefix = StyleSubtle.Render("•")
		}
		fmt.Fprintf(w, "%s %s\n", prefix, n.Message)
		if hint := n.Metadata["hint"]; hint != "" {
			fmt.Fprintf(w, "  %s\n", StyleSubtle.Render(hint))
		}
	}
}
