package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/led-repair/internal/app"
	"github.com/nhle/led-repair/internal/model"
	"github.com/nhle/led-repair/internal/store"
	uiconfig "github.com/nhle/led-repair/internal/ui/config"
)

// metaField binds one quotation header flag.
type metaField struct {
	flag  string
	usage string
	field func(*model.QuotationMeta) *string
}

var metaFields = []metaField{
	{"quotation-id", "quotation number (default 1)", func(m *model.QuotationMeta) *string { return &m.QuotationID }},
	{"project-name", "project name", func(m *model.QuotationMeta) *string { return &m.ProjectName }},
	{"project-code", "project code", func(m *model.QuotationMeta) *string { return &m.ProjectCode }},
	{"modules-code", "modules code", func(m *model.QuotationMeta) *string { return &m.ModulesCode }},
	{"total", "total repair modules (default: summed quantities)", func(m *model.QuotationMeta) *string { return &m.TotalRepairModules }},
	{"request-date", "request date, dd/mm/yyyy (default today)", func(m *model.QuotationMeta) *string { return &m.DateRequest }},
	{"quote-pixel", "pixel printed on the quotation (default from the first board)", func(m *model.QuotationMeta) *string { return &m.Pixel }},
}

func runQuote(e *env, args []string) error {
	fs := newFlags(e, "quote", "[board-id...]")
	out := fs.StringP("out", "o", "quotation.xlsx", "output file; .xlsx, or .csv for plain text")
	issues := fs.StringToString("issue", nil, "issue for a board as ID=TEXT, repeatable")
	qty := fs.StringToInt("qty", nil, "quantity for a board as ID=N, repeatable (default 1)")
	draft := fs.String("draft", "", "also write an unsent mail draft (.eml) with the quotation attached")
	from := fs.String("from", "", "draft sender (default mail.from from the config)")
	to := fs.String("to", "", "draft recipient (default mail.to from the config)")
	criteria := bindCriteria(fs)
	metaValues := make(map[string]*string, len(metaFields))
	for _, f := range metaFields {
		metaValues[f.flag] = fs.String(f.flag, "", f.usage)
	}
	if err := parse(fs, args, 0, -1); err != nil {
		return err
	}

	ctx := context.Background()
	svc := e.service()

	ids := trimAll(fs.Args())
	if len(ids) == 0 {
		c, err := criteria()
		if err != nil {
			return err
		}
		boards, err := svc.Boards(ctx, c)
		if err != nil {
			return err
		}
		for _, b := range boards {
			ids = append(ids, b.BoardID)
		}
	}
	if len(ids) == 0 {
		return errors.New("no boards selected for the quotation")
	}

	items, err := svc.QuotationItems(ctx, ids)
	if err != nil {
		return err
	}
	for i := range items {
		id := items[i].BoardID
		if text, ok := (*issues)[id]; ok {
			items[i].Issue = text
		}
		if n, ok := (*qty)[id]; ok {
			items[i].Quantity = n
		}
	}

	meta, err := svc.DefaultMeta(ctx, items)
	if err != nil {
		return err
	}
	for _, f := range metaFields {
		if fs.Changed(f.flag) {
			*f.field(&meta) = strings.TrimSpace(*metaValues[f.flag])
		}
	}

	q, err := svc.ExportQuotation(ctx, *out, meta, items)
	if err != nil {
		return err
	}
	if q.Result.FellBack {
		fmt.Fprintf(e.out, "workbook could not be written, saved CSV instead\n")
	}
	fmt.Fprintf(e.out, "saved %d item(s) on %d page(s) to %s\n", len(q.Document.Items), q.Document.PageCount(), q.Result.Path)

	if *draft == "" {
		return nil
	}
	sender, recipient := e.cfg.Mail.From, e.cfg.Mail.To
	if fs.Changed("from") {
		sender = *from
	}
	if fs.Changed("to") {
		recipient = *to
	}
	if err := svc.SaveDraft(*draft, q, sender, recipient); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "saved draft to %s\n", *draft)
	return nil
}

func runArchive(e *env, args []string) error {
	fs := newFlags(e, "archive", "")
	dbPath := fs.String("db", "", "archive database (default <data-dir>/archive.db)")
	list := fs.Bool("list", false, "list earlier snapshots instead of taking one")
	if err := parse(fs, args, 0, 0); err != nil {
		return err
	}

	path := *dbPath
	if path == "" {
		path = filepath.Join(e.cfg.DataDir, "archive.db")
	}
	a, err := store.OpenArchive(path)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	if *list {
		snaps, err := a.Snapshots(ctx)
		if err != nil {
			return err
		}
		rows := make([][]string, len(snaps))
		for i, s := range snaps {
			rows[i] = []string{s.ID, s.TakenAt.Local().Format("2006-01-02 15:04:05"), strconv.Itoa(s.BoardCount)}
		}
		renderTable(e.out, []string{"Snapshot", "Taken", "Boards"}, rows)
		return nil
	}

	snap, err := e.service().Snapshot(ctx, a)
	if err != nil {
		return err
	}
	totals, err := a.SiteIssueTotals(ctx, snap.ID)
	if err != nil {
		return err
	}
	rows := make([][]string, len(totals))
	for i, t := range totals {
		rows[i] = []string{t.Site, t.Issue, strconv.Itoa(t.Total)}
	}
	fmt.Fprintf(e.out, "snapshot %s: %d board(s)\n", snap.ID, snap.BoardCount)
	renderTable(e.out, []string{"Site", "Issue", "Total"}, rows)
	return nil
}

func runView(e *env, args []string) error {
	fs := newFlags(e, "view", "")
	if err := parse(fs, args, 0, 0); err != nil {
		return err
	}
	if err := e.signIn(context.Background()); err != nil {
		return err
	}

	p := tea.NewProgram(app.NewModel(e.service()), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running viewer: %w", err)
	}
	return nil
}

func runConfig(e *env, args []string) error {
	fs := newFlags(e, "config", "")
	save := fs.Bool("save", false, "write the resolved configuration to --config")
	edit := fs.Bool("edit", false, "edit the configuration in a form, then save it")
	if err := parse(fs, args, 0, 0); err != nil {
		return err
	}

	if *edit {
		settings := uiconfig.FromConfig(e.cfg)
		if err := uiconfig.NewForm(settings, 80).Run(); err != nil {
			return fmt.Errorf("editing configuration: %w", err)
		}
		settings.Apply(e.cfg)
		*save = true
	}

	if *save {
		if err := model.SaveConfig(e.configPath, e.cfg); err != nil {
			return err
		}
		fmt.Fprintf(e.out, "saved %s\n", e.configPath)
		return nil
	}

	c := e.cfg
	for _, kv := range [][2]string{
		{"config", e.configPath},
		{"data_dir", c.DataDir},
		{"company.name", c.Company.Name},
		{"company.contact", c.Company.Contact},
		{"company.logo_path", c.Company.LogoPath},
		{"company.team", c.Company.Team},
		{"mail.from", c.Mail.From},
		{"mail.to", c.Mail.To},
	} {
		fmt.Fprintf(e.out, "%-18s %s\n", kv[0]+":", kv[1])
	}
	return nil
}
