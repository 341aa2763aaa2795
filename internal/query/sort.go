package query

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/nhle/led-repair/internal/model"
)

// dateLayouts are tried in order when reading a request date.
var dateLayouts = []string{"2006-01-02", "2006-1-2", "2006-01"}

// Sort returns a copy of boards ordered by mode. Ties keep input order.
func Sort(boards []model.Board, mode SortMode) []model.Board {
	out := slices.Clone(boards)
	if out == nil {
		out = []model.Board{}
	}

	var compare func(a, b model.Board) int
	switch mode {
	case SortDateNewest:
		compare = func(a, b model.Board) int { return requestTime(b).Compare(requestTime(a)) }
	case SortDateOldest:
		compare = func(a, b model.Board) int { return requestTime(a).Compare(requestTime(b)) }
	case SortModuleAsc:
		compare = func(a, b model.Board) int { return cmp.Compare(numeric(a.ModuleNumber), numeric(b.ModuleNumber)) }
	case SortModuleDesc:
		compare = func(a, b model.Board) int { return cmp.Compare(numeric(b.ModuleNumber), numeric(a.ModuleNumber)) }
	case SortRunningNoAsc:
		compare = func(a, b model.Board) int { return cmp.Compare(numeric(a.RunningNoRight()), numeric(b.RunningNoRight())) }
	case SortRunningNoDesc:
		compare = func(a, b model.Board) int { return cmp.Compare(numeric(b.RunningNoRight()), numeric(a.RunningNoRight())) }
	case SortSiteAZ:
		compare = func(a, b model.Board) int { return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)) }
	default:
		return out
	}

	slices.SortStableFunc(out, compare)
	return out
}

// requestTime parses the board's request date. Unparseable dates sort as
// the zero time, before every real date.
func requestTime(b model.Board) time.Time {
	s := strings.TrimSpace(b.DateRequest)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// numeric reads s as an integer; anything else is zero.
func numeric(s string) int {
	n, ok := atoi(s)
	if !ok {
		return 0
	}
	return n
}
