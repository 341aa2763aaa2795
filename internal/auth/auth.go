// Package auth checks operator logins against the admin secret and the
// employee records.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/nhle/led-repair/internal/credential"
	"github.com/nhle/led-repair/internal/model"
	"github.com/nhle/led-repair/internal/store"
)

// ErrInvalidCredentials is returned for any failed login.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Role is what a logged-in operator may do.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

// Session identifies a logged-in operator.
type Session struct {
	Username string
	Role     Role
}

// IsAdmin reports whether the session has full record control.
func (s Session) IsAdmin() bool { return s.Role == RoleAdmin }

// AdminSecret provides the admin password.
type AdminSecret interface {
	AdminPassword() (string, error)
}

// Authenticator checks logins.
type Authenticator struct {
	admin     AdminSecret
	employees store.EmployeeStore
}

// New returns an Authenticator using admin for the built-in account and
// employees for everyone else.
func New(admin AdminSecret, employees store.EmployeeStore) *Authenticator {
	return &Authenticator{admin: admin, employees: employees}
}

// Login returns a session when username and password match.
func (a *Authenticator) Login(ctx context.Context, username, password string) (*Session, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	if username == model.AdminUsername {
		want, err := a.admin.AdminPassword()
		if errors.Is(err, credential.ErrNotSet) {
			return nil, fmt.Errorf("%w: admin password has not been set", ErrInvalidCredentials)
		}
		if err != nil {
			return nil, fmt.Errorf("reading admin password: %w", err)
		}
		if !equal(want, password) {
			return nil, ErrInvalidCredentials
		}
		return &Session{Username: username, Role: RoleAdmin}, nil
	}

	e, err := a.employees.FindEmployee(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("looking up employee: %w", err)
	}
	if e == nil || !equal(e.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return &Session{Username: e.Username, Role: RoleEmployee}, nil
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
