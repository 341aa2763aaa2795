package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"

	"github.com/nhle/led-repair/internal/auth"
	"github.com/nhle/led-repair/internal/credential"
)

var (
	errNeedsUser  = errors.New("this command needs --user")
	errNeedsAdmin = errors.New("this command needs --user admin")
)

// signIn authenticates --user once. Without --user there is no session.
func (e *env) signIn(ctx context.Context) error {
	if e.user == "" || e.session != nil {
		return nil
	}

	password := os.Getenv(passwordEnv)
	if password == "" {
		var err error
		password, err = promptPassword("Password for " + e.user)
		if err != nil {
			return err
		}
	}

	vault, err := e.credentials()
	if err != nil {
		return err
	}
	sess, err := auth.New(vault, e.store).Login(ctx, e.user, password)
	if err != nil {
		return err
	}
	e.session = sess
	return nil
}

func (e *env) requireUser(ctx context.Context) error {
	if err := e.signIn(ctx); err != nil {
		return err
	}
	if e.session == nil {
		return errNeedsUser
	}
	return nil
}

func (e *env) requireAdmin(ctx context.Context) error {
	if e.user == "" {
		return errNeedsAdmin
	}
	if err := e.requireUser(ctx); err != nil {
		return err
	}
	if !e.session.IsAdmin() {
		return errNeedsAdmin
	}
	return nil
}

func promptPassword(title string) (string, error) {
	var password string
	err := huh.NewInput().
		Title(title).
		EchoMode(huh.EchoModePassword).
		Value(&password).
		Run()
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return password, nil
}

// newPassword returns flagValue, or prompts twice until both entries match.
func newPassword(flagValue, title string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}

	var first, second string
	err := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title(title).EchoMode(huh.EchoModePassword).Value(&first).
			Validate(func(s string) error {
				if s == "" {
					return errors.New("password must not be empty")
				}
				return nil
			}),
		huh.NewInput().Title("Repeat password").EchoMode(huh.EchoModePassword).Value(&second).
			Validate(func(s string) error {
				if s != first {
					return errors.New("passwords do not match")
				}
				return nil
			}),
	)).Run()
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return first, nil
}

func runLogin(e *env, args []string) error {
	fs := newFlags(e, "login", "")
	if err := parse(fs, args, 0, 0); err != nil {
		return err
	}

	if err := e.requireUser(context.Background()); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "signed in as %s (%s)\n", e.session.Username, e.session.Role)
	return nil
}

func runAdminPassword(e *env, args []string) error {
	fs := newFlags(e, "admin-password", "")
	password := fs.String("password", "", "new password (prompted when omitted)")
	if err := parse(fs, args, 0, 0); err != nil {
		return err
	}

	ctx := context.Background()
	vault, err := e.credentials()
	if err != nil {
		return err
	}

	// The first password can be set by anyone; changing it needs the admin.
	if _, err := vault.AdminPassword(); !errors.Is(err, credential.ErrNotSet) {
		if err != nil {
			return err
		}
		if err := e.requireAdmin(ctx); err != nil {
			return err
		}
	}

	pw, err := newPassword(*password, "New admin password")
	if err != nil {
		return err
	}
	if err := vault.SetAdminPassword(pw); err != nil {
		return err
	}
	fmt.Fprintln(e.out, "admin password updated")
	return nil
}

func runEmployee(e *env, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(e.out, "Usage: ledrepair employee add|delete|list ...")
		return errUsage
	}

	ctx := context.Background()
	sub, rest := args[0], args[1:]
	switch sub {
	case "add":
		fs := newFlags(e, "employee add", "<username>")
		password := fs.String("password", "", "password (prompted when omitted)")
		if err := parse(fs, rest, 1, 1); err != nil {
			return err
		}
		if err := e.requireAdmin(ctx); err != nil {
			return err
		}
		pw, err := newPassword(*password, "Password for "+fs.Arg(0))
		if err != nil {
			return err
		}
		if err := e.store.SaveEmployee(ctx, fs.Arg(0), pw); err != nil {
			return err
		}
		fmt.Fprintf(e.out, "saved employee %s\n", fs.Arg(0))
		return nil

	case "delete":
		fs := newFlags(e, "employee delete", "<username>")
		if err := parse(fs, rest, 1, 1); err != nil {
			return err
		}
		if err := e.requireAdmin(ctx); err != nil {
			return err
		}
		removed, err := e.store.DeleteEmployee(ctx, fs.Arg(0))
		if err != nil {
			return err
		}
		if !removed {
			return fmt.Errorf("no employee named %q", fs.Arg(0))
		}
		fmt.Fprintf(e.out, "deleted employee %s\n", fs.Arg(0))
		return nil

	case "list":
		fs := newFlags(e, "employee list", "")
		if err := parse(fs, rest, 0, 0); err != nil {
			return err
		}
		if err := e.requireAdmin(ctx); err != nil {
			return err
		}
		employees, err := e.store.ListEmployees(ctx)
		if err != nil {
			return err
		}
		for _, emp := range employees {
			fmt.Fprintln(e.out, emp.Username)
		}
		return nil
	}

	return fmt.Errorf("unknown employee command %q", sub)
}
