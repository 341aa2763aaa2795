package report

import (
	"sort"
	"strings"

	"github.com/nhle/led-repair/internal/model"
)

// IssueIndex resolves free-text issue names to catalogue categories.
type IssueIndex struct {
	exact map[string]model.Issue
	keys  []string
}

// NewIssueIndex builds a lookup over every category's stored key, report
// label and aliases.
func NewIssueIndex() *IssueIndex {
	ix := &IssueIndex{exact: make(map[string]model.Issue)}
	for _, issue := range model.AllIssues() {
		names := append([]string{issue.Key(), issue.Label()}, issue.Aliases()...)
		for _, name := range names {
			norm := model.NormalizeIssueName(name)
			if norm == "" {
				continue
			}
			if _, ok := ix.exact[norm]; !ok {
				ix.keys = append(ix.keys, norm)
			}
			ix.exact[norm] = issue
		}
	}
	sort.Strings(ix.keys)
	return ix
}

// Issues is the index shared by the report builders.
var Issues = NewIssueIndex()

// Match returns the category named by text. An exact normalized match wins.
// Otherwise text is compared by substring against every known name and
// accepted only when all hits agree on one category.
func (ix *IssueIndex) Match(text string) (model.Issue, bool) {
	norm := model.NormalizeIssueName(text)
	if norm == "" {
		return 0, false
	}
	if issue, ok := ix.exact[norm]; ok {
		return issue, true
	}

	found := false
	var match model.Issue
	for _, key := range ix.keys {
		if !containsEither(key, norm) {
			continue
		}
		issue := ix.exact[key]
		if found && issue != match {
			return 0, false
		}
		found = true
		match = issue
	}
	return match, found
}

func containsEither(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}
