package store

import (
	"context"
	"path/filepath"

	"github.com/nhle/led-repair/internal/model"
)

// File names under the data root.
const (
	BoardsFile    = "boards_note.jsonl"
	EmployeesFile = "employees_note.jsonl"
	PicturesDir   = "pictures"
)

// Paths locates the record files and picture directory under a data root.
type Paths struct {
	Root      string
	Boards    string
	Employees string
	Pictures  string
}

// NewPaths returns the standard layout for dataDir.
func NewPaths(dataDir string) Paths {
	return Paths{
		Root:      dataDir,
		Boards:    filepath.Join(dataDir, BoardsFile),
		Employees: filepath.Join(dataDir, EmployeesFile),
		Pictures:  filepath.Join(dataDir, PicturesDir),
	}
}

// BoardStore persists board repair records.
type BoardStore interface {
	AddBoard(ctx context.Context, board model.Board) (*model.Board, error)
	NextBoardID(ctx context.Context) (string, error)
	FindBoard(ctx context.Context, id string) (*model.Board, error)
	DeleteBoard(ctx context.Context, id string) (bool, error)
	ListBoards(ctx context.Context) ([]model.Board, error)
	ReplaceBoard(ctx context.Context, board model.Board) (*model.Board, error)
}

// EmployeeStore persists non-admin login credentials.
type EmployeeStore interface {
	SaveEmployee(ctx context.Context, username, password string) error
	DeleteEmployee(ctx context.Context, username string) (bool, error)
	FindEmployee(ctx context.Context, username string) (*model.Employee, error)
	ListEmployees(ctx context.Context) ([]model.Employee, error)
}

// Store is the full persistence interface used by the application.
type Store interface {
	BoardStore
	EmployeeStore
}

// FileStore implements Store on top of JSONL collections under a data root.
type FileStore struct {
	paths     Paths
	boards    *Collection[model.Board]
	employees *Collection[model.Employee]
	photos    *PhotoIngester
}

var _ Store = (*FileStore)(nil)

// NewFileStore returns a store rooted at paths. Files are created lazily on
// first access.
func NewFileStore(paths Paths) *FileStore {
	return &FileStore{
		paths:     paths,
		boards:    NewCollection[model.Board](paths.Boards),
		employees: NewCollection[model.Employee](paths.Employees),
		photos:    NewPhotoIngester(paths),
	}
}

// Paths returns the layout the store was opened with.
func (s *FileStore) Paths() Paths {
	return s.paths
}
