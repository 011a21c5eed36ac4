package cmd

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"clickhelper/internal/extractor"
	"clickhelper/internal/models"
)

// addTaskFlags registers the ways to describe a task: a saved tracker page or explicit fields.
func addTaskFlags(cmd *cobra.Command) {
	cmd.Flags().String("page", "", "file with the task JSON served for the tracker page")
	cmd.Flags().String("url", "", "task page URL")
	cmd.Flags().String("id", "", "task id, e.g. WDEV-12")
	cmd.Flags().String("title", "", "task title")
	cmd.Flags().String("description", "", "task description")
	cmd.Flags().String("priority", "", "task priority")
}

// pageFromFlags loads --page when given. A missing file yields a page with only the URL.
func pageFromFlags(cmd *cobra.Command) (extractor.Page, error) {
	path, _ := cmd.Flags().GetString("page")
	url, _ := cmd.Flags().GetString("url")
	if path == "" {
		return extractor.Page{URL: url}, nil
	}
	page, err := extractor.LoadPage(app.fs, path, url)
	if errors.Is(err, extractor.ErrUnavailable) {
		return extractor.Page{URL: url}, nil
	}
	return page, err
}

// taskFromFlags extracts the task from --page and lets explicit flags override its fields.
func taskFromFlags(cmd *cobra.Command) (models.TaskData, error) {
	var task models.TaskData
	page, err := pageFromFlags(cmd)
	if err != nil {
		return task, err
	}
	if len(page.Document) > 0 {
		extracted, err := extractor.TaskJSON{}.Extract(cmd.Context(), page)
		if err != nil {
			return task, err
		}
		if extracted != nil {
			task = *extracted
		}
	}
	task.URL = firstSet(page.URL, task.URL)

	flags := cmd.Flags()
	for name, field := range map[string]*string{
		"id":          &task.ID,
		"title":       &task.Title,
		"description": &task.Description,
		"priority":    &task.Priority,
	} {
		if v, _ := flags.GetString(name); strings.TrimSpace(v) != "" {
			*field = v
		}
	}
	if task.ID == "" && task.Title == "" {
		return task, errors.New("describe the task with --page or --id/--title")
	}
	return task, nil
}

func firstSet(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
