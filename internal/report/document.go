// Package report turns quotation line items into a paginated workbook or a
// flat CSV file.
package report

import (
	"strconv"
	"strings"
	"time"

	"github.com/nhle/led-repair/internal/model"
)

// RowsPerPage is the fixed number of item rows printed on every page.
const RowsPerPage = 10

// Row is one printed table line. Padding rows have Item set to zero.
type Row struct {
	Item      int
	ModuleNo  string
	RunningNo string

	// Issue is the item's selected category text, kept for the CSV output.
	Issue string

	Quantity int

	// Cells holds the value printed under each issue column; zero prints
	// as an empty cell.
	Cells [model.NumIssues]int
}

// Blank reports whether the row is page padding.
func (r Row) Blank() bool { return r.Item == 0 }

// Page is one printed block of RowsPerPage rows.
type Page struct {
	Number int
	Rows   []Row
}

// Document is a fully resolved quotation ready to be written.
type Document struct {
	Meta   model.QuotationMeta
	Issued time.Time

	// Items holds every non-padding row in order.
	Items []Row
	Pages []Page

	// Total is the repair module count printed in every totals row.
	Total int
}

// PageCount returns the number of pages.
func (d Document) PageCount() int { return len(d.Pages) }

// Build resolves items against their source boards and splits them into
// pages. A board's own non-zero issue counts take precedence over the
// item's single selected issue; otherwise the item quantity is placed in
// the column of the selected issue. There is always at least one page.
// issued is the date printed on every page.
func Build(meta model.QuotationMeta, items []model.LineItem, boards []model.Board, issued time.Time) Document {
	byID := make(map[string]model.Board, len(boards))
	for _, b := range boards {
		if _, ok := byID[b.BoardID]; !ok {
			byID[b.BoardID] = b
		}
	}

	doc := Document{Meta: meta, Issued: issued}
	sum := 0
	for i, item := range items {
		row := Row{
			Item:      i + 1,
			ModuleNo:  item.ModuleNo,
			RunningNo: item.RunningNo,
			Issue:     strings.TrimSpace(item.Issue),
			Quantity:  item.Quantity,
		}
		b, hasBoard := byID[item.BoardID]
		row.Cells = resolveCells(row, b, hasBoard)
		doc.Items = append(doc.Items, row)
		sum += item.Quantity
	}

	doc.Total = sum
	if n, err := strconv.Atoi(strings.TrimSpace(meta.TotalRepairModules)); err == nil {
		doc.Total = n
	}

	for start := 0; start == 0 || start < len(doc.Items); start += RowsPerPage {
		end := min(start+RowsPerPage, len(doc.Items))
		rows := make([]Row, RowsPerPage)
		copy(rows, doc.Items[start:end])
		doc.Pages = append(doc.Pages, Page{Number: len(doc.Pages) + 1, Rows: rows})
	}

	return doc
}

func resolveCells(row Row, board model.Board, hasBoard bool) [model.NumIssues]int {
	var cells [model.NumIssues]int
	selected, matched := Issues.Match(row.Issue)

	var counts model.Issues
	if hasBoard {
		counts = board.Issues
		counts.Normalize()
	}

	for _, issue := range model.AllIssues() {
		if n := counts.Count(issue); n != 0 {
			cells[issue] = n
			continue
		}
		if matched && selected == issue && row.Quantity != 0 {
			cells[issue] = row.Quantity
		}
	}
	return cells
}

// IssueText returns the label printed for the row's selected issue in the
// CSV output: the category label when it resolves, the raw text otherwise.
func (r Row) IssueText() string {
	if issue, ok := Issues.Match(r.Issue); ok {
		return issue.Label()
	}
	return r.Issue
}
