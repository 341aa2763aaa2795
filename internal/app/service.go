// Package app ties the record store, the query engine and the report
// generator together into the operations the front ends call.
package app

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/nhle/led-repair/internal/model"
	"github.com/nhle/led-repair/internal/query"
	"github.com/nhle/led-repair/internal/report"
	"github.com/nhle/led-repair/internal/store"
)

// Options configures a Service.
type Options struct {
	// Operator is stamped into created_by on every add and edit. Empty
	// leaves the field as given.
	Operator string

	Letterhead report.Letterhead

	// Now returns the current time. Nil means time.Now.
	Now func() time.Time
}

// Service is the application layer shared by the CLI and the terminal UI.
type Service struct {
	store store.Store
	opts  Options
}

// New returns a Service backed by s.
func New(s store.Store, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{store: s, opts: opts}
}

// Store returns the underlying record store.
func (s *Service) Store() store.Store {
	return s.store
}

// PhotoPath resolves a stored photo reference when the store keeps photos
// on disk, and returns it unchanged otherwise.
func (s *Service) PhotoPath(stored string) string {
	if r, ok := s.store.(interface{ PhotoPath(string) string }); ok {
		return r.PhotoPath(stored)
	}
	return stored
}

// Operator returns the name stamped on saved boards.
func (s *Service) Operator() string {
	return s.opts.Operator
}

// AddBoard stores a new board. A blank id is replaced with the next free
// numeric id.
func (s *Service) AddBoard(ctx context.Context, b model.Board) (*model.Board, error) {
	if strings.TrimSpace(b.BoardID) == "" {
		id, err := s.store.NextBoardID(ctx)
		if err != nil {
			return nil, fmt.Errorf("allocating board id: %w", err)
		}
		b.BoardID = id
	}
	s.stamp(&b)
	return s.store.AddBoard(ctx, b)
}

// EditBoard replaces the stored board with the same id.
func (s *Service) EditBoard(ctx context.Context, b model.Board) (*model.Board, error) {
	s.stamp(&b)
	return s.store.ReplaceBoard(ctx, b)
}

func (s *Service) stamp(b *model.Board) {
	if s.opts.Operator != "" {
		b.CreatedBy = s.opts.Operator
	}
}

// Boards returns the stored boards filtered and sorted by c.
func (s *Service) Boards(ctx context.Context, c query.Criteria) ([]model.Board, error) {
	boards, err := s.store.ListBoards(ctx)
	if err != nil {
		return nil, err
	}
	return query.Apply(boards, c), nil
}

// Summary aggregates the boards selected by c per site.
func (s *Service) Summary(ctx context.Context, c query.Criteria) (query.Summary, error) {
	boards, err := s.Boards(ctx, c)
	if err != nil {
		return query.Summary{}, err
	}
	return query.Summarize(boards), nil
}

// QuotationItems derives one line item per board id, in the given order.
// Unknown ids are an error.
func (s *Service) QuotationItems(ctx context.Context, ids []string) ([]model.LineItem, error) {
	boards, err := s.lookup(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]model.LineItem, 0, len(boards))
	for _, b := range boards {
		items = append(items, model.LineItem{
			BoardID:   b.BoardID,
			ModuleNo:  orDash(b.ModuleNumber),
			RunningNo: orDash(b.RunningNoRight()),
			Quantity:  1,
		})
	}
	return items, nil
}

// DefaultMeta proposes quotation header values for items: quotation "1",
// the summed quantity (or the item count) as total, today's date and the
// first board's pixel pitch or size.
func (s *Service) DefaultMeta(ctx context.Context, items []model.LineItem) (model.QuotationMeta, error) {
	total := 0
	for _, it := range items {
		total += it.Quantity
	}
	if total == 0 {
		total = len(items)
	}

	meta := model.QuotationMeta{
		QuotationID:        "1",
		TotalRepairModules: strconv.Itoa(total),
		DateRequest:        s.opts.Now().Format("02/01/2006"),
	}

	if len(items) > 0 {
		b, err := s.store.FindBoard(ctx, items[0].BoardID)
		if err != nil {
			return meta, err
		}
		if b != nil {
			meta.Pixel = b.Pixel
			if meta.Pixel == "" {
				meta.Pixel = b.Size
			}
		}
	}
	return meta, nil
}

// Quotation is a built quotation document together with where it was
// written.
type Quotation struct {
	Document report.Document
	Result   report.Result
}

// ExportQuotation builds the quotation for items and writes it to path.
// A workbook failure is logged and the CSV fallback is used.
func (s *Service) ExportQuotation(ctx context.Context, path string, meta model.QuotationMeta, items []model.LineItem) (*Quotation, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("quotation has no items")
	}

	boards, err := s.store.ListBoards(ctx)
	if err != nil {
		return nil, err
	}

	doc := report.Build(meta, items, boards, s.opts.Now())

	res, err := report.Export(path, doc, report.Options{
		Letterhead: s.opts.Letterhead,
		Warn: func(err error) {
			log.Printf("report: workbook export failed, writing CSV instead: %v", err)
		},
	})
	if err != nil {
		return nil, err
	}
	return &Quotation{Document: doc, Result: res}, nil
}

// SaveDraft writes an unsent mail draft carrying the exported quotation.
func (s *Service) SaveDraft(path string, q *Quotation, from, to string) error {
	d := report.NewDraft(q.Document.Meta, q.Document.Total, q.Result.Path, from, to, s.opts.Now())
	if err := report.SaveDraft(path, d); err != nil {
		return fmt.Errorf("saving draft %s: %w", path, err)
	}
	return nil
}

// Snapshot copies every stored board into the archive.
func (s *Service) Snapshot(ctx context.Context, a *store.Archive) (*store.Snapshot, error) {
	boards, err := s.store.ListBoards(ctx)
	if err != nil {
		return nil, err
	}
	return a.WriteSnapshot(ctx, boards)
}

func (s *Service) lookup(ctx context.Context, ids []string) ([]model.Board, error) {
	all, err := s.store.ListBoards(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]model.Board, len(all))
	for _, b := range all {
		if _, ok := byID[b.BoardID]; !ok {
			byID[b.BoardID] = b
		}
	}

	out := make([]model.Board, 0, len(ids))
	for _, id := range ids {
		b, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", store.ErrBoardNotFound, id)
		}
		out = append(out, b)
	}
	return out, nil
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return query.None
	}
	return s
}
