// Package config provides the settings form used to edit the letterhead,
// mail and data directory configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/emersion/go-message/mail"

	"github.com/nhle/led-repair/internal/model"
)

// Settings holds the editable configuration values. huh binds to its
// fields, so it must not move while a form is running.
type Settings struct {
	DataDir string

	CompanyName    string
	CompanyContact string
	LogoPath       string
	Team           string

	MailFrom string
	MailTo   string
}

// FromConfig copies the editable values out of cfg.
func FromConfig(cfg *model.AppConfig) *Settings {
	return &Settings{
		DataDir:        cfg.DataDir,
		CompanyName:    cfg.Company.Name,
		CompanyContact: cfg.Company.Contact,
		LogoPath:       cfg.Company.LogoPath,
		Team:           cfg.Company.Team,
		MailFrom:       cfg.Mail.From,
		MailTo:         cfg.Mail.To,
	}
}

// Apply writes the trimmed values back into cfg.
func (s *Settings) Apply(cfg *model.AppConfig) {
	cfg.DataDir = strings.TrimSpace(s.DataDir)
	cfg.Company.Name = strings.TrimSpace(s.CompanyName)
	cfg.Company.Contact = strings.TrimSpace(s.CompanyContact)
	cfg.Company.LogoPath = strings.TrimSpace(s.LogoPath)
	cfg.Company.Team = strings.TrimSpace(s.Team)
	cfg.Mail.From = strings.TrimSpace(s.MailFrom)
	cfg.Mail.To = strings.TrimSpace(s.MailTo)
}

// NewForm builds the settings form over s.
func NewForm(s *Settings, width int) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Data directory").
				Description("Holds boards_note.jsonl, employees_note.jsonl and pictures/").
				Value(&s.DataDir).
				Validate(validateRequired("Data directory")),
		).Title("Storage"),
		huh.NewGroup(
			huh.NewInput().
				Title("Company name").
				Description("Bold line at the top of every quotation page").
				Value(&s.CompanyName).
				Validate(validateRequired("Company name")),
			huh.NewInput().
				Title("Contact line").
				Description("Website and telephone line under the company name").
				Value(&s.CompanyContact),
			huh.NewInput().
				Title("Logo").
				Description("PNG or JPEG placed in the page header; blank for none").
				Placeholder("/path/to/logo.png").
				Value(&s.LogoPath).
				Validate(validateLogo),
			huh.NewInput().
				Title("Team").
				Description("Signature line of the quotation").
				Value(&s.Team),
		).Title("Letterhead"),
		huh.NewGroup(
			huh.NewInput().
				Title("From").
				Description("Sender of quotation drafts").
				Placeholder("repairs@example.com").
				Value(&s.MailFrom).
				Validate(validateAddress),
			huh.NewInput().
				Title("To").
				Description("Default recipient of quotation drafts").
				Value(&s.MailTo).
				Validate(validateAddress),
		).Title("Mail"),
	).WithWidth(formWidth(width))
}

func formWidth(width int) int {
	w := width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func validateRequired(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func validateLogo(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	switch strings.ToLower(filepath.Ext(s)) {
	case ".png", ".jpg", ".jpeg":
	default:
		return errors.New("logo must be a .png, .jpg or .jpeg file")
	}
	if _, err := os.Stat(s); err != nil {
		return fmt.Errorf("logo not found: %s", s)
	}
	return nil
}

func validateAddress(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := mail.ParseAddress(s); err != nil {
		return fmt.Errorf("not a mail address: %s", s)
	}
	return nil
}
