package viewer

import (
	"github.com/nhle/led-repair/internal/model"
	"github.com/nhle/led-repair/internal/query"
)

// Column describes one board table column.
type Column struct {
	Title string
	Width int
	Value func(model.Board) string
}

// Columns are the board table columns, in display order.
var Columns = []Column{
	{"ID", 6, func(b model.Board) string { return b.BoardID }},
	{"Site Name", 18, func(b model.Board) string { return b.Name }},
	{"IC", 9, func(b model.Board) string { return b.IC }},
	{"DC", 6, func(b model.Board) string { return b.DC }},
	{"Size", 7, func(b model.Board) string { return b.Size }},
	{"Module Number", 13, func(b model.Board) string { return b.ModuleNumber }},
	{"Pixel", 6, func(b model.Board) string { return b.Pixel }},
	{"Board Code", 10, func(b model.Board) string { return b.BoardCode }},
	{"Running No", 12, func(b model.Board) string { return b.RunningNumber() }},
	{"Date Request", 12, func(b model.Board) string { return b.DateRequest }},
	{"DO Date", 10, func(b model.Board) string { return b.DODate }},
	{"Date Repair", 11, func(b model.Board) string { return b.DateRepair }},
	{"Urgency", 7, func(b model.Board) string { return yesNo(b.Urgency) }},
	{"Added by", 10, func(b model.Board) string { return b.CreatedBy }},
}

// Headers returns the column titles.
func Headers() []string {
	out := make([]string, len(Columns))
	for i, c := range Columns {
		out[i] = c.Title
	}
	return out
}

// Cells renders b as one table row. Blank values show as "-".
func Cells(b model.Board) []string {
	out := make([]string, len(Columns))
	for i, c := range Columns {
		out[i] = query.DisplayValue(c.Value(b))
	}
	return out
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
