package command

import (
	"fmt"
	"strings"

	"github.com/nhle/led-repair/internal/query"
)

// Action is a side effect requested by a palette line beyond changing the
// criteria.
type Action int

const (
	ActionNone Action = iota
	ActionReload
	ActionQuit
)

// Apply interprets one palette line against c and returns the updated
// criteria. Filter values "all" and "-" keep their picker meaning.
func Apply(line string, c query.Criteria) (query.Criteria, Action, error) {
	verb, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(verb) {
	case "site":
		c.Site = pickerValue(arg)
	case "size":
		c.Size = pickerValue(arg)
	case "operator", "user":
		c.Operator = pickerValue(arg)
	case "urgency":
		u, err := query.ParseUrgency(arg)
		if err != nil {
			return c, ActionNone, err
		}
		c.Urgency = u
	case "months", "month":
		months, err := query.ParseMonths(arg)
		if err != nil {
			return c, ActionNone, err
		}
		c.Months = months
	case "sort":
		mode, err := query.ParseSortMode(arg)
		if err != nil {
			return c, ActionNone, err
		}
		c.Sort = mode
	case "search", "find":
		c.Search = arg
	case "clear":
		c = query.Criteria{}
	case "reload", "refresh":
		return c, ActionReload, nil
	case "quit", "q":
		return c, ActionQuit, nil
	default:
		return c, ActionNone, fmt.Errorf("unknown command %q", verb)
	}
	return c, ActionNone, nil
}

func pickerValue(arg string) string {
	if arg == "" || strings.EqualFold(arg, query.All) {
		return ""
	}
	return arg
}
