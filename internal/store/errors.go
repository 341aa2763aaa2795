package store

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned when a record is missing required fields or
	// otherwise cannot be stored.
	ErrValidation = errors.New("validation failed")

	// ErrDuplicateBoard is returned when adding a board whose id already
	// exists. It wraps ErrValidation.
	ErrDuplicateBoard = fmt.Errorf("duplicate board id: %w", ErrValidation)

	// ErrReservedUsername is returned when saving an employee under the
	// admin name. It wraps ErrValidation.
	ErrReservedUsername = fmt.Errorf("reserved username: %w", ErrValidation)

	// ErrBoardNotFound is returned by ReplaceBoard for an unknown id.
	ErrBoardNotFound = errors.New("board not found")
)
