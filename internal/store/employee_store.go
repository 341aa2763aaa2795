package store

import (
	"context"
	"fmt"

	"github.com/nhle/led-repair/internal/model"
)

// SaveEmployee stores a credential, replacing any existing record with the
// same username. The admin name is reserved.
func (s *FileStore) SaveEmployee(ctx context.Context, username, password string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if username == "" || password == "" {
		return fmt.Errorf("%w: username and password are required", ErrValidation)
	}
	if username == model.AdminUsername {
		return fmt.Errorf("%w: %s", ErrReservedUsername, username)
	}

	employees, err := s.employees.Load()
	if err != nil {
		return fmt.Errorf("loading employees: %w", err)
	}
	employees = removeEmployees(employees, username)
	employees = append(employees, model.Employee{Username: username, Password: password})

	if err := s.employees.Save(employees); err != nil {
		return fmt.Errorf("saving employees: %w", err)
	}
	return nil
}

// DeleteEmployee removes every record for username and reports whether any
// was removed. The admin name is never removed.
func (s *FileStore) DeleteEmployee(ctx context.Context, username string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if username == model.AdminUsername {
		return false, nil
	}

	employees, err := s.employees.Load()
	if err != nil {
		return false, fmt.Errorf("loading employees: %w", err)
	}
	kept := removeEmployees(employees, username)
	if len(kept) == len(employees) {
		return false, nil
	}

	if err := s.employees.Save(kept); err != nil {
		return false, fmt.Errorf("saving employees: %w", err)
	}
	return true, nil
}

// FindEmployee returns the first record for username, or nil.
func (s *FileStore) FindEmployee(ctx context.Context, username string) (*model.Employee, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	employees, err := s.employees.Load()
	if err != nil {
		return nil, fmt.Errorf("loading employees: %w", err)
	}
	for _, e := range employees {
		if e.Username == username {
			return &e, nil
		}
	}
	return nil, nil
}

// ListEmployees returns every employee in storage order.
func (s *FileStore) ListEmployees(ctx context.Context) ([]model.Employee, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	employees, err := s.employees.Load()
	if err != nil {
		return nil, fmt.Errorf("loading employees: %w", err)
	}
	return employees, nil
}

func removeEmployees(employees []model.Employee, username string) []model.Employee {
	kept := make([]model.Employee, 0, len(employees))
	for _, e := range employees {
		if e.Username != username {
			kept = append(kept, e)
		}
	}
	return kept
}
