package models

// TaskData is what a page extractor recovers from a task-tracker page.
type TaskData struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority,omitempty"`
	URL         string `json:"url"`
}

// GenerationResult is the parsed model output for a task.
type GenerationResult struct {
	BranchName    string `json:"branchName"`
	CommitMessage string `json:"commitMessage"`
}
