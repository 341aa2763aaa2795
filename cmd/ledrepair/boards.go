package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/pflag"

	"github.com/nhle/led-repair/internal/model"
	"github.com/nhle/led-repair/internal/query"
)

// boardField binds one string flag to a board field.
type boardField struct {
	flag  string
	usage string
	field func(*model.Board) *string
}

var boardFields = []boardField{
	{"site", "site name", func(b *model.Board) *string { return &b.Name }},
	{"ic", "driver IC", func(b *model.Board) *string { return &b.IC }},
	{"dc", "date code", func(b *model.Board) *string { return &b.DC }},
	{"size", "pixel pitch or size, e.g. P2.5", func(b *model.Board) *string { return &b.Size }},
	{"module", "module number", func(b *model.Board) *string { return &b.ModuleNumber }},
	{"pixel", "pixel pitch or format, e.g. 64x64", func(b *model.Board) *string { return &b.Pixel }},
	{"board-code", "internal board code", func(b *model.Board) *string { return &b.BoardCode }},
	{"running-no", "running number", func(b *model.Board) *string { return &b.RunningNo }},
	{"running-no-p1", "left part of a split running number", func(b *model.Board) *string { return &b.RunningNoP1 }},
	{"running-no-p2", "right part of a split running number", func(b *model.Board) *string { return &b.RunningNoP2 }},
	{"date-request", "request date, YYYY-MM-DD", func(b *model.Board) *string { return &b.DateRequest }},
	{"do-date", "delivery order date, YYYY-MM-DD", func(b *model.Board) *string { return &b.DODate }},
	{"date-repair", "repair date, YYYY-MM-DD", func(b *model.Board) *string { return &b.DateRepair }},
	{"before-photo", "photo taken before repair", func(b *model.Board) *string { return &b.BeforePhoto }},
	{"after-photo", "photo taken after repair", func(b *model.Board) *string { return &b.AfterPhoto }},
}

// boardFlags holds the parsed board flags of add and edit.
type boardFlags struct {
	fs        *pflag.FlagSet
	values    map[string]*string
	urgent    *bool
	noIssue   *bool
	totalLoss *bool
	issues    *map[string]int
}

func bindBoardFlags(fs *pflag.FlagSet) *boardFlags {
	bf := &boardFlags{fs: fs, values: make(map[string]*string)}
	for _, f := range boardFields {
		bf.values[f.flag] = fs.String(f.flag, "", f.usage)
	}
	bf.urgent = fs.Bool("urgent", false, "mark the repair as urgent")
	bf.noIssue = fs.Bool("no-issue", false, "board has no defects; clears every count")
	bf.totalLoss = fs.Bool("total-loss", false, "board is beyond repair")

	keys := make([]string, 0, model.NumIssues)
	for _, issue := range model.AllIssues() {
		keys = append(keys, issue.Key())
	}
	bf.issues = fs.StringToInt("issue", nil, "issue count as KEY=N, repeatable. Keys: "+strings.Join(keys, ", "))
	return bf
}

// apply copies every flag the user set onto b.
func (bf *boardFlags) apply(b *model.Board) error {
	for _, f := range boardFields {
		if bf.fs.Changed(f.flag) {
			*f.field(b) = strings.TrimSpace(*bf.values[f.flag])
		}
	}
	if bf.fs.Changed("urgent") {
		b.Urgency = *bf.urgent
	}
	if bf.fs.Changed("no-issue") {
		b.Issues.NoIssue = *bf.noIssue
	}
	if bf.fs.Changed("total-loss") {
		b.Issues.TotalLoss = *bf.totalLoss
	}

	names := make([]string, 0, len(*bf.issues))
	for name := range *bf.issues {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		issue, ok := model.IssueForKey(name)
		if !ok {
			return fmt.Errorf("unknown issue %q", name)
		}
		b.Issues.Set(issue, (*bf.issues)[name])
	}
	return nil
}

func runAdd(e *env, args []string) error {
	fs := newFlags(e, "add", "")
	id := fs.String("id", "", "board id (next free number when omitted)")
	bf := bindBoardFlags(fs)
	if err := parse(fs, args, 0, 0); err != nil {
		return err
	}

	ctx := context.Background()
	if err := e.requireUser(ctx); err != nil {
		return err
	}

	b := model.Board{BoardID: strings.TrimSpace(*id)}
	if err := bf.apply(&b); err != nil {
		return err
	}
	saved, err := e.service().AddBoard(ctx, b)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "added board %s\n", saved.BoardID)
	return nil
}

func runEdit(e *env, args []string) error {
	fs := newFlags(e, "edit", "<board-id>")
	bf := bindBoardFlags(fs)
	if err := parse(fs, args, 1, 1); err != nil {
		return err
	}

	ctx := context.Background()
	if err := e.requireUser(ctx); err != nil {
		return err
	}

	b, err := e.store.FindBoard(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	if b == nil {
		return fmt.Errorf("no board with id %q", fs.Arg(0))
	}
	if err := bf.apply(b); err != nil {
		return err
	}
	saved, err := e.service().EditBoard(ctx, *b)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "updated board %s\n", saved.BoardID)
	return nil
}

// bindCriteria registers the filter and sort flags shared by list, summary
// and quote.
func bindCriteria(fs *pflag.FlagSet) func() (query.Criteria, error) {
	site := fs.String("site", query.All, `site to keep ("-" for blank)`)
	size := fs.String("size", query.All, `size to keep ("-" for blank)`)
	operator := fs.String("operator", query.All, `operator to keep ("-" for blank)`)
	urgency := fs.String("urgency", "all", "all, yes or no")
	months := fs.String("months", "", "request months to keep, e.g. jan,feb or 1,2")
	search := fs.String("search", "", "text matched against id, site, running numbers and size")
	sortMode := fs.String("sort", query.SortNone.String(), "sort order: "+sortModeNames())

	return func() (query.Criteria, error) {
		c := query.Criteria{
			Site:     *site,
			Size:     *size,
			Operator: *operator,
			Search:   *search,
		}
		var err error
		if c.Urgency, err = query.ParseUrgency(*urgency); err != nil {
			return c, err
		}
		if c.Months, err = query.ParseMonths(*months); err != nil {
			return c, err
		}
		if c.Sort, err = query.ParseSortMode(*sortMode); err != nil {
			return c, err
		}
		return c, nil
	}
}

func sortModeNames() string {
	var names []string
	for _, m := range query.SortModes() {
		names = append(names, m.String())
	}
	return strings.Join(names, ", ")
}

func runList(e *env, args []string) error {
	fs := newFlags(e, "list", "")
	criteria := bindCriteria(fs)
	asJSON := fs.Bool("json", false, "print one JSON record per line")
	options := fs.Bool("options", false, "print the distinct sites, sizes and operators instead")
	if err := parse(fs, args, 0, 0); err != nil {
		return err
	}

	c, err := criteria()
	if err != nil {
		return err
	}
	ctx := context.Background()

	if *options {
		all, err := e.store.ListBoards(ctx)
		if err != nil {
			return err
		}
		opts := query.Options(all)
		fmt.Fprintf(e.out, "sites:     %s\n", strings.Join(opts.Sites, ", "))
		fmt.Fprintf(e.out, "sizes:     %s\n", strings.Join(opts.Sizes, ", "))
		fmt.Fprintf(e.out, "operators: %s\n", strings.Join(opts.Operators, ", "))
		return nil
	}

	boards, err := e.service().Boards(ctx, c)
	if err != nil {
		return err
	}

	if *asJSON {
		enc := json.NewEncoder(e.out)
		enc.SetEscapeHTML(false)
		for _, b := range boards {
			if err := enc.Encode(b); err != nil {
				return err
			}
		}
		return nil
	}
	printBoards(e.out, boards)
	return nil
}

func runShow(e *env, args []string) error {
	fs := newFlags(e, "show", "<board-id>")
	if err := parse(fs, args, 1, 1); err != nil {
		return err
	}

	b, err := e.store.FindBoard(context.Background(), fs.Arg(0))
	if err != nil {
		return err
	}
	if b == nil {
		return fmt.Errorf("no board with id %q", fs.Arg(0))
	}
	printBoard(e.out, *b, e.store.PhotoPath)
	return nil
}

func runDelete(e *env, args []string) error {
	fs := newFlags(e, "delete", "<board-id>")
	if err := parse(fs, args, 1, 1); err != nil {
		return err
	}

	ctx := context.Background()
	if err := e.requireAdmin(ctx); err != nil {
		return err
	}
	removed, err := e.store.DeleteBoard(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("no board with id %q", fs.Arg(0))
	}
	fmt.Fprintf(e.out, "deleted board %s\n", fs.Arg(0))
	return nil
}

func runNextID(e *env, args []string) error {
	fs := newFlags(e, "next-id", "")
	if err := parse(fs, args, 0, 0); err != nil {
		return err
	}

	id, err := e.store.NextBoardID(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprintln(e.out, id)
	return nil
}

func runSummary(e *env, args []string) error {
	fs := newFlags(e, "summary", "")
	criteria := bindCriteria(fs)
	if err := parse(fs, args, 0, 0); err != nil {
		return err
	}

	c, err := criteria()
	if err != nil {
		return err
	}
	s, err := e.service().Summary(context.Background(), c)
	if err != nil {
		return err
	}
	printSummary(e.out, s)
	return nil
}
