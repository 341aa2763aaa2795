package report

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/nhle/led-repair/internal/model"
)

var issued = time.Date(2025, 3, 7, 9, 30, 0, 0, time.UTC)

func lineItems(n int) []model.LineItem {
	items := make([]model.LineItem, n)
	for i := range items {
		items[i] = model.LineItem{
			BoardID:   fmt.Sprint(i + 1),
			ModuleNo:  fmt.Sprintf("M%d", i+1),
			RunningNo: fmt.Sprintf("%04d", i+1),
			Issue:     "wiring",
			Quantity:  1,
		}
	}
	return items
}

func testLetterhead() Letterhead {
	return Letterhead{Name: "ACME LED", Contact: "Tel: 000", Team: "Repair Team"}
}

func TestIssueIndexMatch(t *testing.T) {
	tests := []struct {
		text string
		want model.Issue
		ok   bool
	}{
		{"Wiring", model.IssueWiring, true},
		{"pixel drop", model.IssuePixelDrop, true},
		{"Lamp_Pixel_Problem", model.IssuePixelProblem, true},
		{"half/whole module blackout", model.IssueModuleBlackout, true},
		{"blackout", model.IssueModuleBlackout, true},
		{"frame", model.IssueBrokenFrame, true},
		{"power socket broken?", 0, false},
		{"broken", 0, false},
		{"pixel", 0, false},
		{"", 0, false},
		{"water", 0, false},
	}
	for _, tt := range tests {
		got, ok := Issues.Match(tt.text)
		assert.Equal(t, tt.ok, ok, tt.text)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.text)
		}
	}
}

func TestBuildPagination(t *testing.T) {
	tests := []struct {
		items int
		pages int
	}{
		{0, 1},
		{1, 1},
		{10, 1},
		{11, 2},
		{23, 3},
	}
	for _, tt := range tests {
		doc := Build(model.QuotationMeta{}, lineItems(tt.items), nil, issued)
		require.Len(t, doc.Pages, tt.pages, "%d items", tt.items)
		filled := 0
		for i, p := range doc.Pages {
			assert.Equal(t, i+1, p.Number)
			assert.Len(t, p.Rows, RowsPerPage)
			for _, r := range p.Rows {
				if !r.Blank() {
					filled++
				}
			}
		}
		assert.Equal(t, tt.items, filled)
	}

	doc := Build(model.QuotationMeta{}, lineItems(23), nil, issued)
	assert.Equal(t, 21, doc.Pages[2].Rows[0].Item)
	assert.Equal(t, 23, doc.Pages[2].Rows[2].Item)
	assert.True(t, doc.Pages[2].Rows[3].Blank())
}

func TestBuildTotal(t *testing.T) {
	items := lineItems(3)
	items[1].Quantity = 4

	doc := Build(model.QuotationMeta{TotalRepairModules: " 12 "}, items, nil, issued)
	assert.Equal(t, 12, doc.Total)

	doc = Build(model.QuotationMeta{TotalRepairModules: "twelve"}, items, nil, issued)
	assert.Equal(t, 6, doc.Total)

	doc = Build(model.QuotationMeta{}, items, nil, issued)
	assert.Equal(t, 6, doc.Total)
}

func TestBuildBoardCountsWin(t *testing.T) {
	var counts model.Issues
	counts.Set(model.IssueCaterpillar, 2)
	counts.Set(model.IssueBrokenFrame, 1)
	boards := []model.Board{
		{BoardID: "1", Issues: counts},
		{BoardID: "2"},
	}
	items := []model.LineItem{
		{BoardID: "1", Issue: "wiring", Quantity: 3},
		{BoardID: "2", Issue: "Broken Frame", Quantity: 5},
		{BoardID: "3", Issue: "", Quantity: 1},
		{BoardID: "1", Issue: "caterpillar", Quantity: 9},
	}

	doc := Build(model.QuotationMeta{}, items, boards, issued)
	rows := doc.Items

	assert.Equal(t, 2, rows[0].Cells[model.IssueCaterpillar])
	assert.Equal(t, 1, rows[0].Cells[model.IssueBrokenFrame])
	assert.Equal(t, 3, rows[0].Cells[model.IssueWiring], "selected issue fills its empty column")

	assert.Equal(t, 5, rows[1].Cells[model.IssueBrokenFrame])

	for _, n := range rows[2].Cells {
		assert.Zero(t, n)
	}

	assert.Equal(t, 2, rows[3].Cells[model.IssueCaterpillar], "board count wins over the selected issue")
}

func TestWriteWorkbookPages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quote.xlsx")
	meta := model.QuotationMeta{
		QuotationID: "Q-7",
		ProjectName: "Tower",
		DateRequest: "01/02/2024",
		Pixel:       "P2.5",
	}
	doc := Build(meta, lineItems(23), nil, time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC))

	require.NoError(t, WriteWorkbook(path, doc, testLetterhead()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)

	counts := make(map[string]int)
	for _, row := range rows {
		for _, v := range row {
			counts[v]++
		}
	}
	assert.Equal(t, 3, counts["QUOTATION"])
	assert.Equal(t, 3, counts["QUOTATION NO: Q-7"])
	assert.Equal(t, 3, counts["Total Repair Modules (pcs)"])
	assert.Equal(t, 3, counts["Item"])
	assert.Equal(t, 3, counts["ACME LED"])
	assert.Equal(t, 3, counts["Date: 03-Feb-24"])
	assert.Equal(t, 3, counts["Project Name: Tower"])
	assert.Equal(t, 3, counts["Total Repair Modules : 23pcs"])
	assert.Equal(t, 1, counts["Page: 1 of 3"])
	assert.Equal(t, 1, counts["Page: 3 of 3"])
	assert.Equal(t, 1, counts["M23"])
	assert.Equal(t, 0, counts["M24"])
	assert.Equal(t, 3, counts["pixel drop"])
	assert.Equal(t, 3, counts["module blackout"])

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteWorkbookRowValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quote.xlsx")
	doc := Build(model.QuotationMeta{QuotationID: "1"}, lineItems(1), nil, issued)
	require.NoError(t, WriteWorkbook(path, doc, testLetterhead()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)

	header := -1
	for i, row := range rows {
		if len(row) > 0 && row[0] == "Item" {
			header = i
			break
		}
	}
	require.GreaterOrEqual(t, header, 0)
	assert.Equal(t, "Quantity", rows[header][colQuantity-1])

	item := rows[header+1]
	require.Len(t, item, colQuantity)
	assert.Equal(t, "1", item[colItem-1])
	assert.Equal(t, "M1", item[colModule-1])
	assert.Equal(t, "0001", item[colRunning-1])
	assert.Equal(t, "1", item[colFirstIss-1+int(model.IssueWiring)])
	assert.Equal(t, "", item[colFirstIss-1+int(model.IssueCaterpillar)])
	assert.Equal(t, "1", item[colQuantity-1])
}

func TestWriteTextFallbackRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quote.csv")
	doc := Build(model.QuotationMeta{QuotationID: "9", ProjectName: "Tower, East"}, lineItems(23), nil, issued)

	require.NoError(t, WriteText(path, doc))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n\nItem,Module No,RN No,Issue,Quantity\n")

	r := csv.NewReader(bytes.NewReader(raw))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)

	header := -1
	for i, rec := range records {
		if rec[0] == "Item" {
			header = i
		}
	}
	require.Equal(t, 7, header)
	assert.Equal(t, []string{"Project Name", "Tower, East"}, records[1])

	data := records[header+1:]
	require.Len(t, data, 23)
	assert.Equal(t, []string{"1", "M1", "0001", "wiring", "1"}, data[0])
	assert.Equal(t, "23", data[22][0])
}

func TestExportWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quote.XLSX")
	warned := false

	res, err := Export(path, Build(model.QuotationMeta{}, lineItems(2), nil, issued), Options{
		Letterhead: testLetterhead(),
		Warn:       func(error) { warned = true },
	})
	require.NoError(t, err)
	assert.False(t, warned)
	assert.Equal(t, Result{Path: path, Format: FormatWorkbook}, res)
}

func TestExportFallsBackToCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quote.xlsx")
	// A directory in the way makes the workbook rename fail.
	require.NoError(t, os.Mkdir(path, 0o755))

	var warning error
	res, err := Export(path, Build(model.QuotationMeta{}, lineItems(3), nil, issued), Options{
		Warn: func(err error) { warning = err },
	})
	require.NoError(t, err)
	assert.Error(t, warning)
	assert.True(t, res.FellBack)
	assert.Equal(t, FormatText, res.Format)
	assert.Equal(t, filepath.Join(dir, "quote.csv"), res.Path)

	_, err = os.Stat(res.Path)
	require.NoError(t, err)
}

func TestExportTextPaths(t *testing.T) {
	dir := t.TempDir()
	doc := Build(model.QuotationMeta{}, lineItems(1), nil, issued)

	res, err := Export(filepath.Join(dir, "a.txt"), doc, Options{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a.txt"), res.Path)

	res, err = Export(filepath.Join(dir, "b"), doc, Options{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "b.csv"), res.Path)
	assert.False(t, res.FellBack)
}

func TestExportFallbackFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "quote.xlsx")

	_, err := Export(path, Build(model.QuotationMeta{}, lineItems(1), nil, issued), Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExportFailed))

	_, statErr := os.Stat(filepath.Dir(path))
	assert.True(t, os.IsNotExist(statErr))
}

func TestWriteDraft(t *testing.T) {
	dir := t.TempDir()
	attachment := filepath.Join(dir, "quote.csv")
	require.NoError(t, os.WriteFile(attachment, []byte("Item,Quantity\n1,1\n"), 0o644))

	meta := model.QuotationMeta{QuotationID: "5", ProjectName: "Tower"}
	d := NewDraft(meta, 7, attachment, "Shop <shop@example.com>", "client@example.com", issued)
	assert.True(t, d.Date.Equal(issued))

	var buf bytes.Buffer
	require.NoError(t, WriteDraft(&buf, d))

	mr, err := mail.CreateReader(&buf)
	require.NoError(t, err)
	defer mr.Close()

	assert.Equal(t, "1", mr.Header.Get("X-Unsent"))
	subject, err := mr.Header.Subject()
	require.NoError(t, err)
	assert.Equal(t, "Quotation 5 - Tower", subject)

	to, err := mr.Header.AddressList("To")
	require.NoError(t, err)
	require.Len(t, to, 1)
	assert.Equal(t, "client@example.com", to[0].Address)

	var body, attached string
	var filename string
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)

		data, err := io.ReadAll(part.Body)
		require.NoError(t, err)

		switch h := part.Header.(type) {
		case *mail.InlineHeader:
			body = string(data)
		case *mail.AttachmentHeader:
			filename, _ = h.Filename()
			attached = string(data)
		}
	}

	assert.Contains(t, body, "Total repair modules: 7 pcs")
	assert.Equal(t, "quote.csv", filename)
	assert.Equal(t, "Item,Quantity\n1,1\n", attached)
}

func TestWriteDraftBadAddress(t *testing.T) {
	err := WriteDraft(io.Discard, Draft{From: "not an address <", Subject: "x"})
	assert.Error(t, err)
	assert.False(t, strings.Contains(err.Error(), "attachment"))
}

func TestBuildStampsIssuedDate(t *testing.T) {
	doc := Build(model.QuotationMeta{}, lineItems(2), nil, issued)
	assert.True(t, doc.Issued.Equal(issued))

	d := NewDraft(doc.Meta, doc.Total, "quote.xlsx", "", "", issued)
	assert.True(t, d.Date.Equal(issued))
}

func TestWriteTextTotalMatchesWorkbook(t *testing.T) {
	items := lineItems(3)
	items[2].Quantity = 5

	for _, tt := range []struct {
		name  string
		total string
		want  string
	}{
		{"blank sums quantities", "", "7"},
		{"unparsable sums quantities", "many", "7"},
		{"explicit", " 12 ", "12"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "quote.csv")
			doc := Build(model.QuotationMeta{TotalRepairModules: tt.total}, items, nil, issued)
			require.NoError(t, WriteText(path, doc))

			raw, err := os.ReadFile(path)
			require.NoError(t, err)
			r := csv.NewReader(bytes.NewReader(raw))
			r.FieldsPerRecord = -1
			records, err := r.ReadAll()
			require.NoError(t, err)

			var got []string
			for _, rec := range records {
				if rec[0] == "Total Repair Modules" {
					got = rec
				}
			}
			assert.Equal(t, []string{"Total Repair Modules", tt.want}, got)
		})
	}
}
