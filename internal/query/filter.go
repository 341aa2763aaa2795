package query

import (
	"strconv"
	"strings"
	"time"

	"github.com/nhle/led-repair/internal/model"
)

// Filter returns the boards matching every active predicate in c, in input
// order.
func Filter(boards []model.Board, c Criteria) []model.Board {
	months := make(map[time.Month]bool, len(c.Months))
	for _, m := range c.Months {
		months[m] = true
	}
	search := strings.ToLower(strings.TrimSpace(c.Search))

	out := make([]model.Board, 0, len(boards))
	for _, b := range boards {
		if !matchField(c.Site, b.Name) ||
			!matchField(c.Size, b.Size) ||
			!matchField(c.Operator, b.CreatedBy) {
			continue
		}
		if c.Urgency == UrgencyYes && !b.Urgency {
			continue
		}
		if c.Urgency == UrgencyNo && b.Urgency {
			continue
		}
		if len(months) > 0 {
			m, ok := RequestMonth(b.DateRequest)
			if !ok || !months[m] {
				continue
			}
		}
		if search != "" && !matchSearch(b, search) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// Apply filters then sorts.
func Apply(boards []model.Board, c Criteria) []model.Board {
	return Sort(Filter(boards, c), c.Sort)
}

// RequestMonth extracts the month from a YYYY-MM[-DD] request date.
func RequestMonth(date string) (time.Month, bool) {
	parts := strings.Split(strings.TrimSpace(date), "-")
	if len(parts) < 2 {
		return 0, false
	}
	if _, ok := atoi(parts[0]); !ok {
		return 0, false
	}
	n, ok := atoi(parts[1])
	if !ok || n < 1 || n > 12 {
		return 0, false
	}
	return time.Month(n), true
}

// DisplayValue returns v, or None when v is blank.
func DisplayValue(v string) string {
	if strings.TrimSpace(v) == "" {
		return None
	}
	return v
}

func matchField(want, have string) bool {
	if want == "" || want == All {
		return true
	}
	return DisplayValue(have) == want
}

func matchSearch(b model.Board, needle string) bool {
	for _, v := range []string{b.BoardID, b.Name, b.RunningNo, b.Size, b.RunningNoP1, b.RunningNoP2} {
		if v != "" && strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}

func atoi(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	return n, err == nil
}
