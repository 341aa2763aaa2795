package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/led-repair/internal/model"
)

func board(id, site, size, date string) model.Board {
	return model.Board{BoardID: id, Name: site, IC: "ic", DC: "dc", Size: size, DateRequest: date}
}

func ids(boards []model.Board) []string {
	out := make([]string, len(boards))
	for i, b := range boards {
		out[i] = b.BoardID
	}
	return out
}

func sampleBoards() []model.Board {
	b1 := board("1", "KLCC", "P2.5", "2024-03-15")
	b1.Urgency = true
	b1.CreatedBy = "ali"
	b1.ModuleNumber = "12"
	b1.RunningNoP2 = "0040"

	b2 := board("2", "Pavilion", "P3", "2024-01-02")
	b2.CreatedBy = "siti"
	b2.ModuleNumber = "3"
	b2.RunningNo = "R77"

	b3 := board("3", "KLCC", "P3", "garbage")
	b3.ModuleNumber = "abc"
	b3.RunningNoP2 = "9"

	b4 := board("4", "Mid Valley", "P2.5", "")
	b4.Urgency = true
	b4.CreatedBy = "ali"
	b4.ModuleNumber = "40"
	b4.RunningNoP2 = "100"

	b5 := board("5", "klcc annex", "P2.5", "2023-12-31")
	b5.ModuleNumber = "7"

	return []model.Board{b1, b2, b3, b4, b5}
}

func TestFilterDefaultsAreNoOps(t *testing.T) {
	boards := sampleBoards()

	assert.Equal(t, ids(boards), ids(Filter(boards, Criteria{})))
	assert.Equal(t, ids(boards), ids(Filter(boards, Criteria{Site: All, Size: All, Operator: All})))
}

func TestFilterPredicates(t *testing.T) {
	boards := sampleBoards()

	tests := []struct {
		name string
		c    Criteria
		want []string
	}{
		{"site", Criteria{Site: "KLCC"}, []string{"1", "3"}},
		{"size", Criteria{Size: "P3"}, []string{"2", "3"}},
		{"operator", Criteria{Operator: "ali"}, []string{"1", "4"}},
		{"no operator", Criteria{Operator: None}, []string{"3", "5"}},
		{"urgent", Criteria{Urgency: UrgencyYes}, []string{"1", "4"}},
		{"not urgent", Criteria{Urgency: UrgencyNo}, []string{"2", "3", "5"}},
		{"months", Criteria{Months: []time.Month{time.January, time.March}}, []string{"1", "2"}},
		{"december", Criteria{Months: []time.Month{time.December}}, []string{"5"}},
		{"and", Criteria{Site: "KLCC", Size: "P2.5", Urgency: UrgencyYes}, []string{"1"}},
		{"search id", Criteria{Search: "4"}, []string{"1", "4"}},
		{"search site", Criteria{Search: "klcc"}, []string{"1", "3", "5"}},
		{"search running", Criteria{Search: "r77"}, []string{"2"}},
		{"nothing", Criteria{Site: "Nowhere"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(boards, tt.c)))
		})
	}
}

func TestFilterUrgencyPartitions(t *testing.T) {
	boards := sampleBoards()
	yes := Filter(boards, Criteria{Urgency: UrgencyYes})
	no := Filter(boards, Criteria{Urgency: UrgencyNo})

	assert.Len(t, boards, len(yes)+len(no))
	seen := make(map[string]bool)
	for _, b := range append(yes, no...) {
		assert.False(t, seen[b.BoardID])
		seen[b.BoardID] = true
	}
}

func TestFilterDoesNotMutate(t *testing.T) {
	boards := sampleBoards()
	before := ids(boards)

	_ = Apply(boards, Criteria{Site: "KLCC", Sort: SortDateNewest})
	_ = Sort(boards, SortSiteAZ)

	assert.Equal(t, before, ids(boards))
}

func TestRequestMonth(t *testing.T) {
	tests := []struct {
		date string
		want time.Month
		ok   bool
	}{
		{"2024-03-15", time.March, true},
		{"2024-11", time.November, true},
		{"2024-13-01", 0, false},
		{"15/03/2024", 0, false},
		{"", 0, false},
		{"abcd-03-01", 0, false},
	}
	for _, tt := range tests {
		got, ok := RequestMonth(tt.date)
		assert.Equal(t, tt.ok, ok, tt.date)
		assert.Equal(t, tt.want, got, tt.date)
	}
}

func TestSortModes(t *testing.T) {
	boards := sampleBoards()

	tests := []struct {
		mode SortMode
		want []string
	}{
		{SortNone, []string{"1", "2", "3", "4", "5"}},
		{SortDateNewest, []string{"1", "2", "5", "3", "4"}},
		{SortDateOldest, []string{"3", "4", "5", "2", "1"}},
		{SortModuleAsc, []string{"3", "2", "5", "1", "4"}},
		{SortModuleDesc, []string{"4", "1", "5", "2", "3"}},
		{SortRunningNoAsc, []string{"2", "5", "3", "1", "4"}},
		{SortRunningNoDesc, []string{"4", "1", "3", "2", "5"}},
		{SortSiteAZ, []string{"1", "3", "5", "4", "2"}},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Sort(boards, tt.mode)))
		})
	}
}

func TestSortEmpty(t *testing.T) {
	assert.Empty(t, Sort(nil, SortDateNewest))
	assert.NotNil(t, Sort(nil, SortNone))
}

func TestParseSortMode(t *testing.T) {
	for _, m := range SortModes() {
		got, err := ParseSortMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)

		got, err = ParseSortMode(m.Label())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}

	got, err := ParseSortMode("")
	require.NoError(t, err)
	assert.Equal(t, SortNone, got)

	_, err = ParseSortMode("by colour")
	assert.Error(t, err)
}

func TestParseUrgency(t *testing.T) {
	for in, want := range map[string]Urgency{"": UrgencyAll, "All": UrgencyAll, "YES": UrgencyYes, "n": UrgencyNo} {
		got, err := ParseUrgency(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseUrgency("maybe")
	assert.Error(t, err)
}

func TestParseMonths(t *testing.T) {
	months, err := ParseMonths("jan, 3,March , december,1")
	require.NoError(t, err)
	assert.Equal(t, []time.Month{time.January, time.March, time.December}, months)

	months, err = ParseMonths("")
	require.NoError(t, err)
	assert.Empty(t, months)

	_, err = ParseMonths("13")
	assert.Error(t, err)
	_, err = ParseMonths("Smarch")
	assert.Error(t, err)
}

func TestOptions(t *testing.T) {
	opts := Options(sampleBoards())
	assert.Equal(t, []string{"KLCC", "Mid Valley", "Pavilion", "klcc annex"}, opts.Sites)
	assert.Equal(t, []string{"P2.5", "P3"}, opts.Sizes)
	assert.Equal(t, []string{"ali", "siti"}, opts.Operators)
}

func TestSummarize(t *testing.T) {
	boards := sampleBoards()
	boards[0].Issues.Set(model.IssueWiring, 2)
	boards[2].Issues.Set(model.IssueWiring, 1)
	boards[2].Issues.TotalLoss = true
	boards[1].Issues.Set(model.IssueCaterpillar, 5)
	boards[1].Issues.NoIssue = true

	s := Summarize(boards)
	require.Len(t, s.Sites, 4)
	assert.Equal(t, "KLCC", s.Sites[0].Site)
	assert.Equal(t, 2, s.Sites[0].Boards)
	assert.Equal(t, 1, s.Sites[0].Urgent)
	assert.Equal(t, 1, s.Sites[0].TotalLoss)
	assert.Equal(t, 3, s.Sites[0].Issues[model.IssueWiring])

	assert.Equal(t, "Pavilion", s.Sites[2].Site)
	assert.Equal(t, 1, s.Sites[2].NoIssue)
	assert.Equal(t, 0, s.Sites[2].IssueTotal(), "no_issue zeroes counts")

	assert.Equal(t, 5, s.Total.Boards)
	assert.Equal(t, 2, s.Total.Urgent)

	sum := 0
	for _, site := range s.Sites {
		sum += site.IssueTotal()
	}
	assert.Equal(t, s.Total.IssueTotal(), sum)
	assert.Equal(t, 3, sum)
}
