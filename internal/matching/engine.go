// Package matching ranks stored history entries against the page currently open.
//
// Each entry is tested against four tiers in order and keeps the first one it
// satisfies: exact-url, task-id, title-similarity, domain-context. Results are
// ordered by tier and then newest first. The scan is eager; the log is capped
// small enough that pagination buys nothing.
package matching

import (
	"net/url"
	"sort"
	"strings"
	"unicode/utf8"

	"clickhelper/internal/models"
)

// SimilarityThreshold is the exclusive lower bound for a title-similarity match.
const SimilarityThreshold = 0.70

var tierRank = map[models.MatchType]int{
	models.MatchExactURL:        0,
	models.MatchTaskID:          1,
	models.MatchTitleSimilarity: 2,
	models.MatchDomainContext:   3,
}

// Find returns every entry that plausibly describes the same task as the current page.
// A nil task disables all tiers except exact-url.
func Find(entries []models.HistoryEntry, currentURL string, task *models.TaskData) []models.MatchResult {
	current := parseLoose(currentURL)

	var results []models.MatchResult
	for i, entry := range entries {
		matchType, ok := classify(entry, current, task)
		if !ok {
			continue
		}
		results = append(results, models.MatchResult{
			HistoryEntry:  entry,
			MatchType:     matchType,
			OriginalIndex: i,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		ri, rj := tierRank[results[i].MatchType], tierRank[results[j].MatchType]
		if ri != rj {
			return ri < rj
		}
		return results[i].Timestamp > results[j].Timestamp
	})
	return results
}

func classify(entry models.HistoryEntry, current pageURL, task *models.TaskData) (models.MatchType, bool) {
	source := parseLoose(entry.SourceURL)

	if source.valid() && current.valid() && source.normalized == current.normalized {
		return models.MatchExactURL, true
	}
	if task == nil {
		return "", false
	}
	if task.ID != "" && strings.EqualFold(task.ID, entry.TaskID) {
		return models.MatchTaskID, true
	}
	if task.Title != "" && entry.TaskTitle != "" && Similarity(task.Title, entry.TaskTitle) > SimilarityThreshold {
		return models.MatchTitleSimilarity, true
	}
	if task.ID != "" && source.host != "" && source.host == current.host {
		// Raw, case-sensitive containment. The task-id tier above is case-insensitive;
		// this one deliberately is not.
		if strings.Contains(entry.TaskID, taskPrefix(task.ID)) {
			return models.MatchDomainContext, true
		}
	}
	return "", false
}

// Similarity is the share of significant words two titles have in common, over the
// word count of the longer title. Significant words are lowercased tokens longer than
// two characters. The result is symmetric in its arguments.
func Similarity(a, b string) float64 {
	wordsA := strings.Fields(strings.ToLower(a))
	wordsB := strings.Fields(strings.ToLower(b))
	longest := max(len(wordsA), len(wordsB))
	if longest == 0 {
		return 0
	}

	inB := make(map[string]struct{}, len(wordsB))
	for _, w := range wordsB {
		if significant(w) {
			inB[w] = struct{}{}
		}
	}
	common := make(map[string]struct{})
	for _, w := range wordsA {
		if !significant(w) {
			continue
		}
		if _, ok := inB[w]; ok {
			common[w] = struct{}{}
		}
	}
	return float64(len(common)) / float64(longest)
}

func significant(word string) bool {
	return utf8.RuneCountInString(word) > 2
}

// NormalizeURL keeps scheme, lowercased host and path and drops the query string and fragment.
func NormalizeURL(raw string) string {
	return parseLoose(raw).normalized
}

func taskPrefix(id string) string {
	prefix, _, _ := strings.Cut(id, "-")
	return prefix
}

type pageURL struct {
	normalized string
	host       string
}

func (p pageURL) valid() bool {
	return p.normalized != ""
}

func parseLoose(raw string) pageURL {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return pageURL{}
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		stripped, _, _ := strings.Cut(raw, "#")
		stripped, _, _ = strings.Cut(stripped, "?")
		return pageURL{normalized: stripped}
	}
	host := strings.ToLower(u.Host)
	return pageURL{
		normalized: u.Scheme + "://" + host + u.Path,
		host:       host,
	}
}
