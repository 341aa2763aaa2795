package report

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/nhle/led-repair/internal/model"
)

// SheetName is the single worksheet holding every page.
const SheetName = "Quotation"

// Letterhead is the company information printed on every page.
type Letterhead struct {
	Name     string
	Contact  string
	LogoPath string
	Team     string
}

const (
	disclaimer = "** Please Notice that above information is just an estimate cost of repair & rework for Led Modules."

	// Column layout: item, module, running number, the issue columns, then
	// quantity.
	colItem     = 1
	colModule   = 2
	colRunning  = 3
	colFirstIss = 4
	colQuantity = colFirstIss + model.NumIssues
	colLast     = colQuantity + 1

	// The letterhead and metadata blocks span A:I.
	colBlockEnd = 9

	logoHeightPx = 80
)

// WriteWorkbook renders doc as a single-sheet workbook at path. The file is
// written to a temporary name first and only renamed into place once
// complete.
func WriteWorkbook(path string, doc Document, lh Letterhead) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	styles, err := newSheetStyles(f)
	if err != nil {
		return err
	}

	sw := &sheetWriter{f: f, sheet: SheetName, styles: styles}
	sw.setupPage()

	row := 1
	for _, page := range doc.Pages {
		row = sw.writePage(row, doc, page, lh)
	}
	if sw.err != nil {
		return fmt.Errorf("building workbook: %w", sw.err)
	}

	return writeAtomic(path, func(w io.Writer) error {
		return f.Write(w)
	})
}

type sheetStyles struct {
	company    int
	bold       int
	title      int
	boxed      int
	header     int
	cell       int
	smallCell  int
	totalLabel int
	totalValue int
	remark     int
	left       int
	right      int
	signature  int
}

func newSheetStyles(f *excelize.File) (sheetStyles, error) {
	thin := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	center := &excelize.Alignment{Horizontal: "center", Vertical: "center"}

	type styleDef struct {
		dst   *int
		style excelize.Style
	}
	var (
		s    sheetStyles
		defs []styleDef
	)
	add := func(dst *int, style excelize.Style) {
		defs = append(defs, styleDef{dst, style})
	}
	add(&s.company, excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	add(&s.bold, excelize.Style{Font: &excelize.Font{Bold: true}})
	add(&s.title, excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	add(&s.boxed, excelize.Style{Border: thin})
	add(&s.header, excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 8},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"DDDDDD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    thin,
	})
	add(&s.cell, excelize.Style{Border: thin, Alignment: center})
	add(&s.smallCell, excelize.Style{Border: thin, Alignment: center, Font: &excelize.Font{Size: 6.5}})
	add(&s.totalLabel, excelize.Style{
		Border:    thin,
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	add(&s.totalValue, excelize.Style{Border: thin, Font: &excelize.Font{Bold: true}, Alignment: center})
	add(&s.remark, excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 10},
		Alignment: &excelize.Alignment{Horizontal: "left"},
	})
	add(&s.left, excelize.Style{Alignment: &excelize.Alignment{Horizontal: "left"}})
	add(&s.right, excelize.Style{Alignment: &excelize.Alignment{Horizontal: "right"}})
	add(&s.signature, excelize.Style{Border: []excelize.Border{{Type: "top", Color: "000000", Style: 2}}})

	for _, d := range defs {
		id, err := f.NewStyle(&d.style)
		if err != nil {
			return s, fmt.Errorf("creating cell style: %w", err)
		}
		*d.dst = id
	}
	return s, nil
}

// sheetWriter keeps the first error from a run of cell operations so the
// layout code can stay linear.
type sheetWriter struct {
	f      *excelize.File
	sheet  string
	styles sheetStyles
	err    error
}

func cellName(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return ""
	}
	return name
}

func (sw *sheetWriter) set(col, row int, value any) {
	if sw.err != nil {
		return
	}
	sw.err = sw.f.SetCellValue(sw.sheet, cellName(col, row), value)
}

func (sw *sheetWriter) style(c1, r1, c2, r2, style int) {
	if sw.err != nil {
		return
	}
	sw.err = sw.f.SetCellStyle(sw.sheet, cellName(c1, r1), cellName(c2, r2), style)
}

func (sw *sheetWriter) merge(c1, r1, c2, r2 int) {
	if sw.err != nil {
		return
	}
	sw.err = sw.f.MergeCell(sw.sheet, cellName(c1, r1), cellName(c2, r2))
}

func (sw *sheetWriter) height(row int, h float64) {
	if sw.err != nil {
		return
	}
	sw.err = sw.f.SetRowHeight(sw.sheet, row, h)
}

func (sw *sheetWriter) width(col int, w float64) {
	if sw.err != nil {
		return
	}
	name, err := excelize.ColumnNumberToName(col)
	if err != nil {
		sw.err = err
		return
	}
	sw.err = sw.f.SetColWidth(sw.sheet, name, name, w)
}

// mergedText writes value into a merged range with an optional style.
func (sw *sheetWriter) mergedText(c1, c2, row int, value any, style int) {
	sw.merge(c1, row, c2, row)
	sw.set(c1, row, value)
	if style != 0 {
		sw.style(c1, row, c2, row, style)
	}
}

// setupPage hides gridlines and prepares A4 portrait printing.
func (sw *sheetWriter) setupPage() {
	if sw.err != nil {
		return
	}
	showGrid := false
	if err := sw.f.SetSheetView(sw.sheet, 0, &excelize.ViewOptions{ShowGridLines: &showGrid}); err != nil {
		sw.err = err
		return
	}

	fitToPage := true
	if err := sw.f.SetSheetProps(sw.sheet, &excelize.SheetPropsOptions{FitToPage: &fitToPage}); err != nil {
		sw.err = err
		return
	}

	size := 9 // A4
	orientation := "portrait"
	fitWidth, fitHeight := 1, 0
	if err := sw.f.SetPageLayout(sw.sheet, &excelize.PageLayoutOptions{
		Size:        &size,
		Orientation: &orientation,
		FitToWidth:  &fitWidth,
		FitToHeight: &fitHeight,
	}); err != nil {
		sw.err = err
		return
	}

	side, edge := 0.3, 0.5
	sw.err = sw.f.SetPageMargins(sw.sheet, &excelize.PageLayoutMarginsOptions{
		Left:   &side,
		Right:  &side,
		Top:    &edge,
		Bottom: &edge,
	})

	sw.width(colItem, 5)
	sw.width(colModule, 7)
	sw.width(colRunning, 8)
	for col := colFirstIss; col <= colQuantity; col++ {
		sw.width(col, 8)
	}
}

// writePage lays out one page starting at row r and returns the first row
// of the next page.
func (sw *sheetWriter) writePage(r int, doc Document, page Page, lh Letterhead) int {
	st := sw.styles

	// Letterhead.
	if lh.LogoPath != "" {
		sw.addLogo(r, lh.LogoPath)
	}
	sw.mergedText(2, colBlockEnd, r, lh.Name, st.company)
	sw.height(r, 30)
	sw.height(r+1, 30)
	r++
	sw.mergedText(2, colBlockEnd, r, lh.Contact, 0)
	r += 2

	// Quotation number, date and page index.
	sw.mergedText(1, colBlockEnd, r, "QUOTATION NO: "+doc.Meta.QuotationID, st.bold)
	r++
	sw.mergedText(1, colBlockEnd, r, "Date: "+doc.Issued.Format("02-Jan-06"), 0)
	r++
	sw.mergedText(1, colBlockEnd, r, fmt.Sprintf("Page: %d of %d", page.Number, doc.PageCount()), 0)
	r += 2

	sw.mergedText(1, colBlockEnd, r, "QUOTATION", st.title)
	r += 2

	// Metadata grid.
	m := doc.Meta
	sw.mergedText(1, 5, r, "Project Name: "+m.ProjectName, st.boxed)
	sw.mergedText(6, colBlockEnd, r, "Modules Code: "+m.ModulesCode, st.boxed)
	r++
	sw.mergedText(1, 5, r, "Project Code: "+m.ProjectCode, st.boxed)
	sw.mergedText(6, colBlockEnd, r, fmt.Sprintf("Total Repair Modules : %dpcs", doc.Total), st.boxed)
	r++
	sw.mergedText(1, 2, r, "Date Request", st.boxed)
	sw.mergedText(3, 5, r, m.DateRequest, st.boxed)
	sw.mergedText(6, 7, r, "Pixel", st.boxed)
	sw.mergedText(8, colBlockEnd, r, m.Pixel, st.boxed)
	r += 2

	// Column headers.
	sw.set(colItem, r, "Item")
	sw.set(colModule, r, "Module No")
	sw.set(colRunning, r, "RN No")
	for _, issue := range model.AllIssues() {
		sw.set(colFirstIss+int(issue), r, issue.Label())
	}
	sw.set(colQuantity, r, "Quantity")
	sw.style(colItem, r, colQuantity, r, st.header)
	sw.height(r, 20)
	r++

	// Item rows, padded to RowsPerPage.
	for _, row := range page.Rows {
		sw.style(colItem, r, colRunning, r, st.cell)
		sw.style(colFirstIss, r, colQuantity, r, st.smallCell)
		if !row.Blank() {
			sw.set(colItem, r, row.Item)
			sw.set(colModule, r, row.ModuleNo)
			sw.set(colRunning, r, row.RunningNo)
			for i, n := range row.Cells {
				if n != 0 {
					sw.set(colFirstIss+i, r, n)
				}
			}
			sw.set(colQuantity, r, row.Quantity)
		}
		sw.height(r, 12)
		r++
	}

	// Totals.
	sw.merge(colItem, r, colQuantity-1, r)
	sw.set(colItem, r, "Total Repair Modules (pcs)")
	sw.style(colItem, r, colQuantity-1, r, st.totalLabel)
	sw.set(colQuantity, r, doc.Total)
	sw.style(colQuantity, r, colQuantity, r, st.totalValue)
	r += 3

	// Remark and signature block.
	sw.mergedText(1, colLast, r, "Remark:", st.remark)
	r++
	sw.mergedText(1, colLast, r, disclaimer, st.left)
	sw.height(r, 18)
	r += 2

	dateStart, dateEnd := colLast-6, colLast-2
	sw.mergedText(1, dateStart-1, r, "Authorized  by :", st.left)
	sw.mergedText(dateStart, dateEnd, r, "Date:", st.right)
	r += 2

	sw.style(1, r, 6, r, st.signature)
	sw.height(r, 12)
	r++
	sw.set(1, r, lh.Team)
	sw.style(1, r, 1, r, st.left)

	return r + 3
}

// addLogo places the logo at the top-left of a page, scaled to a fixed
// height. An unreadable logo is logged and skipped.
func (sw *sheetWriter) addLogo(row int, path string) {
	if sw.err != nil {
		return
	}

	scale, err := logoScale(path)
	if err != nil {
		log.Printf("report: skipping logo %s: %v", path, err)
		return
	}

	err = sw.f.AddPicture(sw.sheet, cellName(1, row), path, &excelize.GraphicOptions{
		ScaleX:          scale,
		ScaleY:          scale,
		LockAspectRatio: true,
		Positioning:     "oneCell",
	})
	if err != nil {
		log.Printf("report: skipping logo %s: %v", path, err)
	}
}

func logoScale(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, err
	}
	if cfg.Height == 0 {
		return 0, fmt.Errorf("image has zero height")
	}
	return float64(logoHeightPx) / float64(cfg.Height), nil
}
