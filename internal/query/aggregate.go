package query

import (
	"slices"
	"strings"

	"github.com/nhle/led-repair/internal/model"
)

// PickerOptions holds the distinct values offered by the filter pickers.
type PickerOptions struct {
	Sites     []string
	Sizes     []string
	Operators []string
}

// Options collects the sorted distinct non-blank sites, sizes and operators.
func Options(boards []model.Board) PickerOptions {
	return PickerOptions{
		Sites:     distinct(boards, func(b model.Board) string { return b.Name }),
		Sizes:     distinct(boards, func(b model.Board) string { return b.Size }),
		Operators: distinct(boards, func(b model.Board) string { return b.CreatedBy }),
	}
}

func distinct(boards []model.Board, field func(model.Board) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, b := range boards {
		v := field(b)
		if strings.TrimSpace(v) == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// SiteSummary tallies the boards of one site.
type SiteSummary struct {
	Site      string
	Boards    int
	Urgent    int
	TotalLoss int
	NoIssue   int
	Issues    [model.NumIssues]int
}

// IssueTotal sums every category count.
func (s SiteSummary) IssueTotal() int {
	total := 0
	for _, n := range s.Issues {
		total += n
	}
	return total
}

func (s *SiteSummary) add(b model.Board) {
	issues := b.Issues
	issues.Normalize()

	s.Boards++
	if b.Urgency {
		s.Urgent++
	}
	if issues.TotalLoss {
		s.TotalLoss++
	}
	if issues.NoIssue {
		s.NoIssue++
	}
	for i, n := range issues.Counts {
		s.Issues[i] += n
	}
}

// Summary is a per-site breakdown with a grand total.
type Summary struct {
	Sites []SiteSummary
	Total SiteSummary
}

// Summarize groups boards by site, ordered by site name. Boards without a
// site are grouped under None.
func Summarize(boards []model.Board) Summary {
	bySite := make(map[string]*SiteSummary)
	summary := Summary{Total: SiteSummary{Site: "Total"}}

	for _, b := range boards {
		site := DisplayValue(b.Name)
		s, ok := bySite[site]
		if !ok {
			s = &SiteSummary{Site: site}
			bySite[site] = s
		}
		s.add(b)
		summary.Total.add(b)
	}

	for _, s := range bySite {
		summary.Sites = append(summary.Sites, *s)
	}
	slices.SortFunc(summary.Sites, func(a, b SiteSummary) int {
		return strings.Compare(a.Site, b.Site)
	})
	return summary
}
