package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"clickhelper/internal/models"
)

const (
	branchLabel = "BRANCH:"
	commitLabel = "COMMIT:"
)

// ParseGeneration reads the labeled-line answer format:
//
//	BRANCH: feature/wdev-12-fix-login
//	COMMIT: WDEV-12 Fix login redirect loop
//
// Labels match case-insensitively, the first occurrence of each wins, and
// surrounding quotes, backticks and markdown emphasis are stripped. Both values
// must be non-empty.
func ParseGeneration(text string) (*models.GenerationResult, error) {
	var res models.GenerationResult
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimLeft(strings.TrimSpace(line), "*_-> ")
		if v, ok := cutLabel(line, branchLabel); ok && res.BranchName == "" {
			res.BranchName = cleanValue(v)
			continue
		}
		if v, ok := cutLabel(line, commitLabel); ok && res.CommitMessage == "" {
			res.CommitMessage = cleanValue(v)
		}
	}
	if res.BranchName == "" || res.CommitMessage == "" {
		return nil, fmt.Errorf("%w: %q", ErrParse, preview(text))
	}
	return &res, nil
}

// ParseEstimation pulls the first JSON object out of the answer. At least one level must be filled.
func ParseEstimation(text string) (*models.TimeEstimation, error) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: no JSON object in %q", ErrParse, preview(text))
	}
	var est models.TimeEstimation
	if err := json.Unmarshal([]byte(text[start:end+1]), &est); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	est.Junior = strings.TrimSpace(est.Junior)
	est.Mid = strings.TrimSpace(est.Mid)
	est.Senior = strings.TrimSpace(est.Senior)
	est.Reasoning = strings.TrimSpace(est.Reasoning)
	if est.Junior == "" && est.Mid == "" && est.Senior == "" {
		return nil, fmt.Errorf("%w: estimate has no values", ErrParse)
	}
	est.Timestamp = 0
	return &est, nil
}

func cutLabel(line, label string) (string, bool) {
	if len(line) < len(label) || !strings.EqualFold(line[:len(label)], label) {
		return "", false
	}
	return line[len(label):], true
}

func cleanValue(v string) string {
	return strings.Trim(strings.TrimSpace(v), "`\"'* ")
}

func preview(text string) string {
	const limit = 120
	text = strings.TrimSpace(text)
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}
