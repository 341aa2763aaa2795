package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// CompanyConfig holds the letterhead printed on every quotation page.
type CompanyConfig struct {
	// Name is the bold company line at the top of each page.
	Name string `mapstructure:"name" yaml:"name"`

	// Contact is the website/telephone line under the company name.
	Contact string `mapstructure:"contact" yaml:"contact"`

	// LogoPath points at a PNG or JPEG placed in the page header.
	// Empty disables the logo.
	LogoPath string `mapstructure:"logo_path" yaml:"logo_path"`

	// Team is printed under the signature line.
	Team string `mapstructure:"team" yaml:"team"`
}

// MailConfig holds the addresses used when a quotation is saved as a
// mail draft.
type MailConfig struct {
	From string `mapstructure:"from" yaml:"from"`
	To   string `mapstructure:"to" yaml:"to"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	// DataDir is the data root holding the record files and pictures.
	// Relative paths are resolved against the config file's directory.
	DataDir string        `mapstructure:"data_dir" yaml:"data_dir"`
	Company CompanyConfig `mapstructure:"company" yaml:"company"`
	Mail    MailConfig    `mapstructure:"mail" yaml:"mail"`
}

const (
	defaultCompanyName    = "IDS BEYOND MEDIA SDN BHD"
	defaultCompanyContact = "Website: www.megascreen.com.my   Tel: 601-657 3233   Fax: 604-656 1318"
	defaultCompanyTeam    = "Repair & Rework Team"
)

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/ledrepair/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "ledrepair", "config.yaml")
}

// DefaultDataDir returns the data root used when none is configured.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "data")
	}
	return filepath.Join(home, ".config", "ledrepair", "data")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		DataDir: DefaultDataDir(),
		Company: CompanyConfig{
			Name:    defaultCompanyName,
			Contact: defaultCompanyContact,
			Team:    defaultCompanyTeam,
		},
	}
}

// LoadConfig reads configuration from the given YAML or JSON file using
// Viper. A missing file yields the defaults. LEDREPAIR_DATA_DIR overrides
// data_dir either way.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(configType(path))

	v.SetDefault("data_dir", DefaultDataDir())
	v.SetDefault("company.name", defaultCompanyName)
	v.SetDefault("company.contact", defaultCompanyContact)
	v.SetDefault("company.team", defaultCompanyTeam)

	v.SetEnvPrefix("LEDREPAIR")
	if err := v.BindEnv("data_dir"); err != nil {
		return nil, fmt.Errorf("binding data_dir env: %w", err)
	}

	fileRead := true
	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		fileRead = false
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir()
	}
	if fileRead && !filepath.IsAbs(cfg.DataDir) {
		cfg.DataDir = filepath.Join(filepath.Dir(path), cfg.DataDir)
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to path, creating parent
// directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(configType(path))

	v.Set("data_dir", cfg.DataDir)
	v.Set("company.name", cfg.Company.Name)
	v.Set("company.contact", cfg.Company.Contact)
	v.Set("company.logo_path", cfg.Company.LogoPath)
	v.Set("company.team", cfg.Company.Team)
	v.Set("mail.from", cfg.Mail.From)
	v.Set("mail.to", cfg.Mail.To)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}

// configType picks the Viper decoder from the file extension, defaulting
// to YAML.
func configType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	case ".toml":
		return "toml"
	default:
		return "yaml"
	}
}
