package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/nhle/led-repair/internal/model"
)

// AddBoard validates board, ingests its photos and appends it to the board
// file. It returns the record as stored.
func (s *FileStore) AddBoard(ctx context.Context, board model.Board) (*model.Board, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateBoard(board); err != nil {
		return nil, err
	}

	boards, err := s.boards.Load()
	if err != nil {
		return nil, fmt.Errorf("loading boards: %w", err)
	}
	if indexOfBoard(boards, board.BoardID) >= 0 {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateBoard, board.BoardID)
	}

	stored := s.prepareBoard(board)
	boards = append(boards, stored)
	if err := s.boards.Save(boards); err != nil {
		return nil, fmt.Errorf("saving boards: %w", err)
	}

	return &stored, nil
}

// ReplaceBoard swaps the stored record with the same id for board in a
// single save. Blank photo fields keep the previously stored photos, and
// record keys the board type does not model are carried over. The replaced
// record moves to the end of the file.
func (s *FileStore) ReplaceBoard(ctx context.Context, board model.Board) (*model.Board, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateBoard(board); err != nil {
		return nil, err
	}

	boards, err := s.boards.Load()
	if err != nil {
		return nil, fmt.Errorf("loading boards: %w", err)
	}
	idx := indexOfBoard(boards, board.BoardID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrBoardNotFound, board.BoardID)
	}

	previous := boards[idx]
	if strings.TrimSpace(board.BeforePhoto) == "" {
		board.BeforePhoto = previous.BeforePhoto
	}
	if strings.TrimSpace(board.AfterPhoto) == "" {
		board.AfterPhoto = previous.AfterPhoto
	}
	board.KeepExtra(previous)

	stored := s.prepareBoard(board)
	kept := removeBoards(boards, board.BoardID)
	kept = append(kept, stored)
	if err := s.boards.Save(kept); err != nil {
		return nil, fmt.Errorf("saving boards: %w", err)
	}

	return &stored, nil
}

// NextBoardID returns one more than the largest purely numeric board id, or
// "1" when there is none.
func (s *FileStore) NextBoardID(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	boards, err := s.boards.Load()
	if err != nil {
		return "", fmt.Errorf("loading boards: %w", err)
	}

	highest := 0
	for _, b := range boards {
		if !isDecimal(b.BoardID) {
			continue
		}
		n, err := strconv.Atoi(b.BoardID)
		if err != nil {
			continue
		}
		if n > highest {
			highest = n
		}
	}

	return strconv.Itoa(highest + 1), nil
}

// FindBoard returns the first board with the given id, or nil when there is
// none.
func (s *FileStore) FindBoard(ctx context.Context, id string) (*model.Board, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	boards, err := s.boards.Load()
	if err != nil {
		return nil, fmt.Errorf("loading boards: %w", err)
	}
	idx := indexOfBoard(boards, id)
	if idx < 0 {
		return nil, nil
	}

	b := boards[idx]
	return &b, nil
}

// DeleteBoard removes every board with the given id and reports whether any
// was removed. The file is only rewritten when something changed.
func (s *FileStore) DeleteBoard(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	boards, err := s.boards.Load()
	if err != nil {
		return false, fmt.Errorf("loading boards: %w", err)
	}
	kept := removeBoards(boards, id)
	if len(kept) == len(boards) {
		return false, nil
	}

	if err := s.boards.Save(kept); err != nil {
		return false, fmt.Errorf("saving boards: %w", err)
	}
	return true, nil
}

// ListBoards returns every board in storage order.
func (s *FileStore) ListBoards(ctx context.Context) ([]model.Board, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	boards, err := s.boards.Load()
	if err != nil {
		return nil, fmt.Errorf("loading boards: %w", err)
	}
	return boards, nil
}

// PhotoPath returns the absolute path of a stored photo reference.
func (s *FileStore) PhotoPath(stored string) string {
	return s.photos.Resolve(stored)
}

// prepareBoard ingests the photos and normalizes the issue tally.
func (s *FileStore) prepareBoard(board model.Board) model.Board {
	board.BeforePhoto = s.photos.Ingest(board.BoardID, model.PhotoBefore, board.BeforePhoto)
	board.AfterPhoto = s.photos.Ingest(board.BoardID, model.PhotoAfter, board.AfterPhoto)
	board.Issues.Normalize()
	return board
}

func validateBoard(board model.Board) error {
	if missing := board.MissingFields(); len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s", ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

func indexOfBoard(boards []model.Board, id string) int {
	for i := range boards {
		if boards[i].BoardID == id {
			return i
		}
	}
	return -1
}

func removeBoards(boards []model.Board, id string) []model.Board {
	kept := make([]model.Board, 0, len(boards))
	for _, b := range boards {
		if b.BoardID != id {
			kept = append(kept, b)
		}
	}
	return kept
}

func isDecimal(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
