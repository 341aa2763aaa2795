package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/nhle/led-repair/internal/model"
	"github.com/nhle/led-repair/internal/query"
	"github.com/nhle/led-repair/internal/theme"
	"github.com/nhle/led-repair/internal/ui/viewer"
)

func renderTable(w io.Writer, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.ColorBorder)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return theme.TableHeaderStyle
			}
			return theme.TableCellStyle
		})
	fmt.Fprintln(w, t.Render())
}

func printBoards(w io.Writer, boards []model.Board) {
	rows := make([][]string, len(boards))
	for i, b := range boards {
		rows[i] = viewer.Cells(b)
	}
	renderTable(w, viewer.Headers(), rows)
	fmt.Fprintf(w, "%d board(s)\n", len(boards))
}

func printSummary(w io.Writer, s query.Summary) {
	headers := []string{"Site", "Boards", "Urgent", "Total loss", "No issue"}
	for _, issue := range model.AllIssues() {
		headers = append(headers, issue.Label())
	}
	headers = append(headers, "Issues")

	row := func(ss query.SiteSummary) []string {
		r := []string{
			ss.Site,
			strconv.Itoa(ss.Boards),
			strconv.Itoa(ss.Urgent),
			strconv.Itoa(ss.TotalLoss),
			strconv.Itoa(ss.NoIssue),
		}
		for _, n := range ss.Issues {
			r = append(r, strconv.Itoa(n))
		}
		return append(r, strconv.Itoa(ss.IssueTotal()))
	}

	rows := make([][]string, 0, len(s.Sites)+1)
	for _, ss := range s.Sites {
		rows = append(rows, row(ss))
	}
	rows = append(rows, row(s.Total))
	renderTable(w, headers, rows)
}

func printBoard(w io.Writer, b model.Board, photoPath func(string) string) {
	field := func(label, value string) {
		fmt.Fprintf(w, "%-14s %s\n", label+":", query.DisplayValue(value))
	}
	field("ID", b.BoardID)
	field("Site Name", b.Name)
	field("IC", b.IC)
	field("DC", b.DC)
	field("Size", b.Size)
	field("Module Number", b.ModuleNumber)
	field("Pixel", b.Pixel)
	field("Board Code", b.BoardCode)
	field("Running No", b.RunningNumber())
	field("Date Request", b.DateRequest)
	field("DO Date", b.DODate)
	field("Date Repair", b.DateRepair)
	field("Urgency", strconv.FormatBool(b.Urgency))
	field("Added by", b.CreatedBy)

	for _, p := range []struct{ label, path string }{
		{"Before Photo", b.BeforePhoto},
		{"After Photo", b.AfterPhoto},
	} {
		if p.path == "" {
			field(p.label, "")
			continue
		}
		field(p.label, photoPath(p.path))
	}

	switch {
	case b.Issues.NoIssue:
		field("Issues", "no issue")
	case !b.Issues.HasCounts():
		field("Issues", "")
	default:
		fmt.Fprintln(w, "Issues:")
		for _, issue := range model.AllIssues() {
			if n := b.Issues.Count(issue); n != 0 {
				fmt.Fprintf(w, "  %-28s %d\n", issue.Label(), n)
			}
		}
	}
	if b.Issues.TotalLoss {
		field("Total loss", "yes")
	}
}
