package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Issue identifies one of the fixed defect categories tallied per board.
// The numeric value is the category's position in the catalogue and in the
// quotation's issue columns.
type Issue int

const (
	IssueCaterpillar Issue = iota
	IssuePixelDrop
	IssuePixelProblem
	IssueKakiPatah
	IssueColorLine
	IssueBoxProblem
	IssueModuleBlackout
	IssueBrokenModule
	IssueBrokenConnector
	IssueBrokenPowerSocket
	IssueWiring
	IssueBrokenFrame

	// NumIssues is the size of the catalogue.
	NumIssues = 12
)

type issueInfo struct {
	key     string
	label   string
	aliases []string
}

// issueCatalogue maps each category to the key stored in the record file,
// the short label used as a quotation column header, and the alternate
// spellings found in older records.
var issueCatalogue = [NumIssues]issueInfo{
	IssueCaterpillar:       {"caterpillar", "caterpillar", nil},
	IssuePixelDrop:         {"lamp pixel drop", "pixel drop", []string{"lamp_pixel_drop", "pixel_drop"}},
	IssuePixelProblem:      {"lamp pixel problem", "pixel problem", []string{"lamp_pixel_problem", "pixel_problem"}},
	IssueKakiPatah:         {"kaki patah", "kaki patah", []string{"kakipatah", "kaki_patah"}},
	IssueColorLine:         {"green/red/blue line", "green/red/blue line", []string{"anomalyline", "line_issue", "rgb_line", "grb_line"}},
	IssueBoxProblem:        {"box problem", "box problem", []string{"boxproblem"}},
	IssueModuleBlackout:    {"half/whole module blackout", "module blackout", []string{"halfwholemoduleblackout", "moduleblackout"}},
	IssueBrokenModule:      {"broken module", "broken module", []string{"brokenmodule"}},
	IssueBrokenConnector:   {"broken connector", "broken connector", []string{"brokenconnector"}},
	IssueBrokenPowerSocket: {"broken power socket", "broken power socket", []string{"brokenpowersocket"}},
	IssueWiring:            {"wiring", "wiring", nil},
	IssueBrokenFrame:       {"broken frame", "broken frame", []string{"brokenframe"}},
}

// AllIssues returns the catalogue in column order.
func AllIssues() []Issue {
	out := make([]Issue, NumIssues)
	for i := range out {
		out[i] = Issue(i)
	}
	return out
}

// Valid reports whether i is a catalogue entry.
func (i Issue) Valid() bool { return i >= 0 && int(i) < NumIssues }

// Key returns the name under which the count is stored in a record.
func (i Issue) Key() string { return issueCatalogue[i].key }

// Label returns the quotation column header for the category.
func (i Issue) Label() string { return issueCatalogue[i].label }

// Aliases returns alternate spellings accepted when decoding records.
func (i Issue) Aliases() []string { return issueCatalogue[i].aliases }

func (i Issue) String() string {
	if !i.Valid() {
		return fmt.Sprintf("Issue(%d)", int(i))
	}
	return i.Label()
}

// NormalizeIssueName lower-cases s and strips everything except ASCII
// letters and digits, so "Green/Red/Blue Line" and "green_red_blue_line"
// compare equal.
func NormalizeIssueName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// issueByKey resolves normalized keys, labels and aliases to a category.
var issueByKey = func() map[string]Issue {
	m := make(map[string]Issue)
	for _, issue := range AllIssues() {
		m[NormalizeIssueName(issue.Key())] = issue
		m[NormalizeIssueName(issue.Label())] = issue
		for _, alias := range issue.Aliases() {
			m[NormalizeIssueName(alias)] = issue
		}
	}
	return m
}()

// IssueForKey resolves a stored key, label or alias to its category using
// exact normalized comparison.
func IssueForKey(name string) (Issue, bool) {
	issue, ok := issueByKey[NormalizeIssueName(name)]
	return issue, ok
}

// Issues is a board's defect tally. When NoIssue is set every count is
// forced to zero.
type Issues struct {
	Counts    [NumIssues]int
	NoIssue   bool
	TotalLoss bool
}

// Normalize enforces the invariants: counts are non-negative and all zero
// when NoIssue is set.
func (is *Issues) Normalize() {
	for i := range is.Counts {
		if is.NoIssue || is.Counts[i] < 0 {
			is.Counts[i] = 0
		}
	}
}

// Count returns the tally for a single category.
func (is Issues) Count(issue Issue) int {
	if !issue.Valid() {
		return 0
	}
	return is.Counts[issue]
}

// Set stores n for issue. Negative values are clamped to zero.
func (is *Issues) Set(issue Issue, n int) {
	if !issue.Valid() {
		return
	}
	if n < 0 {
		n = 0
	}
	is.Counts[issue] = n
}

// Total sums every category count.
func (is Issues) Total() int {
	total := 0
	for _, n := range is.Counts {
		total += n
	}
	return total
}

// HasCounts reports whether any category count is non-zero.
func (is Issues) HasCounts() bool {
	return is.Total() > 0
}

// MarshalJSON writes the tally as a flat object in catalogue order
// followed by the two flags.
func (is Issues) MarshalJSON() ([]byte, error) {
	is.Normalize()

	var buf bytes.Buffer
	buf.WriteByte('{')
	for _, issue := range AllIssues() {
		key, err := json.Marshal(issue.Key())
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(is.Counts[issue]))
		buf.WriteByte(',')
	}
	fmt.Fprintf(&buf, `"no_issue":%t,"total_loss":%t}`, is.NoIssue, is.TotalLoss)
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts the flat object written by MarshalJSON as well as
// older records that use alias keys or string-typed counts. Keys that do
// not name a category or flag are ignored. A canonical key wins over an
// alias for the same category.
func (is *Issues) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decoding issues: %w", err)
	}

	*is = Issues{}
	var canonical [NumIssues]bool
	for key, value := range raw {
		norm := NormalizeIssueName(key)
		switch norm {
		case "noissue":
			is.NoIssue = decodeFlag(value)
			continue
		case "totalloss":
			is.TotalLoss = decodeFlag(value)
			continue
		}

		issue, ok := issueByKey[norm]
		if !ok {
			continue
		}
		exact := key == issue.Key()
		if canonical[issue] && !exact {
			continue
		}
		is.Set(issue, decodeCount(value))
		if exact {
			canonical[issue] = true
		}
	}

	is.Normalize()
	return nil
}

// decodeCount reads an integer count that may have been written as a
// number, a float, or a numeric string. Anything else counts as zero.
func decodeCount(raw json.RawMessage) int {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return int(n)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return v
		}
	}
	return 0
}

func decodeFlag(raw json.RawMessage) bool {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}
	return decodeCount(raw) != 0
}
