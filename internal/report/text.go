package report

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteText writes doc as a flat CSV file: metadata key/value lines, a
// blank line, a header line, then one line per item.
func WriteText(path string, doc Document) error {
	return writeAtomic(path, func(w io.Writer) error {
		return encodeText(w, doc)
	})
}

func encodeText(w io.Writer, doc Document) error {
	bw := bufio.NewWriter(w)
	cw := csv.NewWriter(bw)

	m := doc.Meta
	meta := [][]string{
		{"Quotation ID", m.QuotationID},
		{"Project Name", m.ProjectName},
		{"Project Code", m.ProjectCode},
		{"Modules Code", m.ModulesCode},
		{"Total Repair Modules", strconv.Itoa(doc.Total)},
		{"Date Request", m.DateRequest},
		{"Pixel", m.Pixel},
	}
	if err := cw.WriteAll(meta); err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}

	if _, err := bw.WriteString("\n"); err != nil {
		return err
	}

	if err := cw.Write([]string{"Item", "Module No", "RN No", "Issue", "Quantity"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, row := range doc.Items {
		record := []string{
			strconv.Itoa(row.Item),
			row.ModuleNo,
			row.RunningNo,
			row.IssueText(),
			strconv.Itoa(row.Quantity),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing item %d: %w", row.Item, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return bw.Flush()
}
