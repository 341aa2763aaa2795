package report

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrExportFailed is returned when neither the workbook nor the CSV
// fallback could be written.
var ErrExportFailed = errors.New("export failed")

// Format identifies the kind of file an export produced.
type Format string

const (
	FormatWorkbook Format = "xlsx"
	FormatText     Format = "csv"
)

// Options controls Export.
type Options struct {
	Letterhead Letterhead

	// Warn receives the workbook error before the CSV fallback is written.
	// Nil discards it.
	Warn func(error)
}

// Result describes a completed export.
type Result struct {
	Path     string
	Format   Format
	FellBack bool
}

// Export writes doc to path, choosing the format from the extension. An
// .xlsx path gets a workbook; if that fails the warning is passed to
// opts.Warn and a CSV file is written beside it with the extension
// replaced. .csv and .txt paths are written as CSV directly; any other
// extension gets .csv appended.
func Export(path string, doc Document, opts Options) (Result, error) {
	ext := strings.ToLower(filepath.Ext(path))

	textPath := path
	fellBack := false
	switch ext {
	case ".xlsx":
		err := WriteWorkbook(path, doc, opts.Letterhead)
		if err == nil {
			return Result{Path: path, Format: FormatWorkbook}, nil
		}
		if opts.Warn != nil {
			opts.Warn(err)
		}
		textPath = strings.TrimSuffix(path, filepath.Ext(path)) + ".csv"
		fellBack = true
	case ".csv", ".txt":
	default:
		textPath = path + ".csv"
	}

	if err := WriteText(textPath, doc); err != nil {
		return Result{}, fmt.Errorf("%w: %s: %w", ErrExportFailed, textPath, err)
	}
	return Result{Path: textPath, Format: FormatText, FellBack: fellBack}, nil
}
