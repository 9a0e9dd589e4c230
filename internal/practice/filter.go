package practice

import (
	"sort"

	"learningtime/internal/models"
)

// Filters narrows the question list. Empty fields match everything.
type Filters struct {
	Path           string `json:"path"`
	Course         string `json:"course"`
	Module         string `json:"module"`
	IncludeGuessed bool   `json:"includeGuessed"`
}

// Match reports whether q passes every non-empty filter field
func (f Filters) Match(q models.Question) bool {
	if f.Path != "" && q.Path != f.Path {
		return false
	}
	if f.Course != "" && q.Course != f.Course {
		return false
	}
	if f.Module != "" && q.Module != f.Module {
		return false
	}
	if !f.IncludeGuessed && q.HasGuess() {
		return false
	}
	return true
}

// Apply returns the questions matching f, keeping their order
func Apply(questions []models.Question, f Filters) []models.Question {
	filtered := make([]models.Question, 0, len(questions))
	for _, q := range questions {
		if f.Match(q) {
			filtered = append(filtered, q)
		}
	}
	return filtered
}

// Options holds the distinct grouping labels used to fill filter drop-downs
type Options struct {
	Paths   []string `json:"paths"`
	Courses []string `json:"courses"`
	Modules []string `json:"modules"`
}

// OptionsFor collects the unique, sorted path, course and module labels
func OptionsFor(questions []models.Question) Options {
	paths := map[string]bool{}
	courses := map[string]bool{}
	modules := map[string]bool{}
	for _, q := range questions {
		paths[q.Path] = true
		courses[q.Course] = true
		modules[q.Module] = true
	}
	return Options{
		Paths:   sortedKeys(paths),
		Courses: sortedKeys(courses),
		Modules: sortedKeys(modules),
	}
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		if k != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
