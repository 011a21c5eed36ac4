package client

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"clickhelper/internal/models"
)

const (
	PromptGenerate = "generate"
	PromptEstimate = "estimate"
)

// PromptData is what the prompt templates can reference.
type PromptData struct {
	Task        models.TaskData
	BranchRules string
	CommitRules string
	Language    string
}

// RenderPrompt executes the embedded prompt template called name.
func RenderPrompt(name string, data PromptData) (string, error) {
	raw, err := embeddedPrompts.ReadFile("prompts/" + name + ".txt")
	if err != nil {
		return "", fmt.Errorf("loading prompt %s: %w", name, err)
	}
	tmpl, err := template.New(name).Option("missingkey=zero").Parse(string(raw))
	if err != nil {
		return "", fmt.Errorf("parsing prompt %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering prompt %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}
