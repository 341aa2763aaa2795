// Package query filters, sorts and aggregates board listings. Every
// function is pure: inputs are never modified and results are new slices.
package query

import (
	"fmt"
	"strings"
	"time"
)

// All is the picker value meaning "no restriction".
const All = "All"

// None is the display value for a blank field. Filtering on None selects
// boards where the field is empty.
const None = "-"

// Urgency is a tri-state urgency filter.
type Urgency int

const (
	UrgencyAll Urgency = iota
	UrgencyYes
	UrgencyNo
)

var urgencyNames = [...]string{
	UrgencyAll: "All",
	UrgencyYes: "Yes",
	UrgencyNo:  "No",
}

func (u Urgency) String() string {
	if u < 0 || int(u) >= len(urgencyNames) {
		return fmt.Sprintf("Urgency(%d)", int(u))
	}
	return urgencyNames[u]
}

// ParseUrgency accepts all/yes/no in any case, plus y/n/true/false.
func ParseUrgency(s string) (Urgency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return UrgencyAll, nil
	case "yes", "y", "true":
		return UrgencyYes, nil
	case "no", "n", "false":
		return UrgencyNo, nil
	}
	return UrgencyAll, fmt.Errorf("unknown urgency %q (want all, yes or no)", s)
}

// SortMode selects the ordering applied by Sort.
type SortMode int

const (
	SortNone SortMode = iota
	SortDateNewest
	SortDateOldest
	SortModuleAsc
	SortModuleDesc
	SortRunningNoAsc
	SortRunningNoDesc
	SortSiteAZ
)

var sortModeNames = [...]string{
	SortNone:          "none",
	SortDateNewest:    "date-newest",
	SortDateOldest:    "date-oldest",
	SortModuleAsc:     "module-asc",
	SortModuleDesc:    "module-desc",
	SortRunningNoAsc:  "running-asc",
	SortRunningNoDesc: "running-desc",
	SortSiteAZ:        "site",
}

var sortModeLabels = [...]string{
	SortNone:          "None",
	SortDateNewest:    "Date Request (Newest)",
	SortDateOldest:    "Date Request (Oldest)",
	SortModuleAsc:     "Module Number (Asc)",
	SortModuleDesc:    "Module Number (Desc)",
	SortRunningNoAsc:  "Running No Right (Asc)",
	SortRunningNoDesc: "Running No Right (Desc)",
	SortSiteAZ:        "Site Name (A-Z)",
}

// SortModes returns every mode in cycling order.
func SortModes() []SortMode {
	modes := make([]SortMode, len(sortModeNames))
	for i := range modes {
		modes[i] = SortMode(i)
	}
	return modes
}

// String returns the flag value for the mode.
func (m SortMode) String() string {
	if m < 0 || int(m) >= len(sortModeNames) {
		return fmt.Sprintf("SortMode(%d)", int(m))
	}
	return sortModeNames[m]
}

// Label returns the human-readable name shown in pickers.
func (m SortMode) Label() string {
	if m < 0 || int(m) >= len(sortModeLabels) {
		return m.String()
	}
	return sortModeLabels[m]
}

// ParseSortMode accepts a flag value or a picker label, case-insensitively.
func ParseSortMode(s string) (SortMode, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return SortNone, nil
	}
	for _, m := range SortModes() {
		if strings.EqualFold(s, m.String()) || strings.EqualFold(s, m.Label()) {
			return m, nil
		}
	}
	return SortNone, fmt.Errorf("unknown sort mode %q", s)
}

// Criteria is a transient filter and sort selection.
type Criteria struct {
	// Site, Size and Operator match exactly. "" and All disable the
	// predicate; None matches boards where the field is blank.
	Site     string
	Size     string
	Operator string

	Urgency Urgency

	// Months keeps boards requested in any of the listed months. Empty
	// disables the predicate.
	Months []time.Month

	// Search is a case-insensitive substring matched against the board id,
	// site, running numbers and size.
	Search string

	Sort SortMode
}

// ParseMonths reads a comma-separated list of month numbers, English names
// or three-letter abbreviations.
func ParseMonths(s string) ([]time.Month, error) {
	var months []time.Month
	seen := make(map[time.Month]bool)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		m, ok := parseMonth(part)
		if !ok {
			return nil, fmt.Errorf("unknown month %q", part)
		}
		if !seen[m] {
			seen[m] = true
			months = append(months, m)
		}
	}
	return months, nil
}

func parseMonth(s string) (time.Month, bool) {
	if n, ok := atoi(s); ok {
		if n >= 1 && n <= 12 {
			return time.Month(n), true
		}
		return 0, false
	}
	for m := time.January; m <= time.December; m++ {
		name := m.String()
		if strings.EqualFold(s, name) || strings.EqualFold(s, name[:3]) {
			return m, true
		}
	}
	return 0, false
}
