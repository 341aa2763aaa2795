// Command ledrepair records LED board repairs and produces repair
// quotations.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/pflag"

	"github.com/nhle/led-repair/internal/app"
	"github.com/nhle/led-repair/internal/auth"
	"github.com/nhle/led-repair/internal/credential"
	"github.com/nhle/led-repair/internal/model"
	"github.com/nhle/led-repair/internal/report"
	"github.com/nhle/led-repair/internal/store"
)

// passwordEnv supplies the password for --user without prompting.
const passwordEnv = "LEDREPAIR_PASSWORD"

var errUsage = errors.New("usage")

// command is one ledrepair subcommand.
type command struct {
	summary string
	run     func(e *env, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"add":            {"add a board record", runAdd},
		"edit":           {"change fields of a board record", runEdit},
		"list":           {"list boards, filtered and sorted", runList},
		"show":           {"print every field of one board", runShow},
		"delete":         {"delete a board record (admin)", runDelete},
		"next-id":        {"print the next free numeric board id", runNextID},
		"summary":        {"per-site issue totals", runSummary},
		"quote":          {"export a repair quotation for boards", runQuote},
		"archive":        {"snapshot the board file into the SQLite archive", runArchive},
		"view":           {"open the interactive board viewer", runView},
		"employee":       {"manage employee logins (admin)", runEmployee},
		"admin-password": {"set the admin password", runAdminPassword},
		"login":          {"check a username and password", runLogin},
		"config":         {"print, edit or save the resolved configuration", runConfig},
	}
}

// env is the state shared by every subcommand.
type env struct {
	out        io.Writer
	configPath string
	cfg        *model.AppConfig
	user       string

	store   *store.FileStore
	session *auth.Session

	// openVault opens the credential store. Tests replace it with an
	// in-memory keyring.
	openVault func(dir string) (*credential.Vault, error)
	vault     *credential.Vault
}

func main() {
	e := &env{out: os.Stdout, openVault: credential.OpenVault}
	if err := run(e, os.Args[1:]); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "ledrepair: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(e *env, args []string) error {
	fs := pflag.NewFlagSet("ledrepair", pflag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.StringVar(&e.configPath, "config", model.DefaultConfigPath(), "configuration file (yaml or json)")
	dataDir := fs.String("data-dir", "", "data root holding boards_note.jsonl, employees_note.jsonl and pictures/")
	fs.StringVarP(&e.user, "user", "u", "", "operator to sign in as (password from "+passwordEnv+" or prompt)")
	fs.Usage = func() { usage(e.out, fs) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}

	cfg, err := model.LoadConfig(e.configPath)
	if err != nil {
		return err
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	e.cfg = cfg
	e.store = store.NewFileStore(store.NewPaths(cfg.DataDir))

	name := fs.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		fs.Usage()
		return fmt.Errorf("unknown command %q", name)
	}
	return cmd.run(e, fs.Args()[1:])
}

func usage(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintln(w, "Usage: ledrepair [global flags] <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(w, "  %-15s %s\n", n, commands[n].summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global flags:")
	fmt.Fprint(w, fs.FlagUsages())
}

// newFlags returns a flag set for a subcommand that prints its own usage.
func newFlags(e *env, name, argsHelp string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(e.out)
	fs.Usage = func() {
		fmt.Fprintf(e.out, "Usage: ledrepair %s [flags] %s\n", name, argsHelp)
		fmt.Fprint(e.out, fs.FlagUsages())
	}
	return fs
}

// parse parses args into fs and checks the positional argument count.
// maxArgs < 0 means unbounded.
func parse(fs *pflag.FlagSet, args []string, minArgs, maxArgs int) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return errUsage
		}
		return err
	}
	if fs.NArg() < minArgs || (maxArgs >= 0 && fs.NArg() > maxArgs) {
		fs.Usage()
		return errUsage
	}
	return nil
}

// service returns the application layer stamped with the signed-in
// operator, if any.
func (e *env) service() *app.Service {
	opts := app.Options{
		Letterhead: report.Letterhead{
			Name:     e.cfg.Company.Name,
			Contact:  e.cfg.Company.Contact,
			LogoPath: e.cfg.Company.LogoPath,
			Team:     e.cfg.Company.Team,
		},
	}
	if e.session != nil {
		opts.Operator = e.session.Username
	}
	return app.New(e.store, opts)
}

// credentials opens the vault once, keeping its file backend beside the
// configuration.
func (e *env) credentials() (*credential.Vault, error) {
	if e.vault != nil {
		return e.vault, nil
	}
	v, err := e.openVault(filepath.Join(filepath.Dir(e.configPath), "keyring"))
	if err != nil {
		return nil, err
	}
	e.vault = v
	return v, nil
}

func trimAll(ss []string) []string {
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
