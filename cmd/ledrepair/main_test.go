package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/led-repair/internal/credential"
	"github.com/nhle/led-repair/internal/model"
)

// harness runs ledrepair commands against a temporary data root and an
// in-memory keyring shared across invocations.
type harness struct {
	t       *testing.T
	dir     string
	config  string
	dataDir string
	vault   *credential.Vault
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	return &harness{
		t:       t,
		dir:     dir,
		config:  filepath.Join(dir, "config.yaml"),
		dataDir: filepath.Join(dir, "data"),
		vault:   credential.NewVault(keyring.NewArrayKeyring(nil)),
	}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	var out bytes.Buffer
	e := &env{
		out: &out,
		openVault: func(string) (*credential.Vault, error) {
			return h.vault, nil
		},
	}
	global := []string{"--config", h.config, "--data-dir", h.dataDir}
	err := run(e, append(global, args...))
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, "ledrepair %s", strings.Join(args, " "))
	return out
}

// bootstrap sets the admin password and signs every later command in with it.
func (h *harness) bootstrap() {
	h.t.Helper()
	h.mustRun("admin-password", "--password", "secret")
	h.t.Setenv(passwordEnv, "secret")
}

func (h *harness) addBoard(args ...string) string {
	h.t.Helper()
	base := []string{"-u", "admin", "add", "--site", "KLCC", "--ic", "ICN2153", "--dc", "2301", "--size", "P2.5"}
	return h.mustRun(append(base, args...)...)
}

func TestUsageWithoutCommand(t *testing.T) {
	h := newHarness(t)
	out, err := h.run()
	assert.ErrorIs(t, err, errUsage)
	assert.Contains(t, out, "Commands:")
	assert.Contains(t, out, "next-id")
}

func TestUnknownCommand(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("frobnicate")
	assert.ErrorContains(t, err, `unknown command "frobnicate"`)
}

func TestAddNeedsUser(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("add", "--site", "KLCC", "--ic", "X", "--dc", "1", "--size", "P3")
	assert.ErrorIs(t, err, errNeedsUser)
}

func TestAddListShow(t *testing.T) {
	h := newHarness(t)
	h.bootstrap()

	out := h.addBoard("--module", "M-12", "--running-no", "0042", "--date-request", "2025-02-10",
		"--urgent", "--issue", "lamp pixel drop=3")
	assert.Equal(t, "added board 1\n", out)
	assert.Equal(t, "2\n", h.mustRun("next-id"))

	out = h.mustRun("list", "--json")
	var b model.Board
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &b))
	assert.Equal(t, "1", b.BoardID)
	assert.Equal(t, "admin", b.CreatedBy)
	assert.True(t, b.Urgency)
	assert.Equal(t, 3, b.Issues.Count(model.IssuePixelDrop))

	out = h.mustRun("show", "1")
	assert.Contains(t, out, "KLCC")
	assert.Contains(t, out, "0042")
	assert.Contains(t, out, model.IssuePixelDrop.Label())

	_, err := h.run("show", "99")
	assert.ErrorContains(t, err, `no board with id "99"`)
}

func TestAddRejectsMissingFields(t *testing.T) {
	h := newHarness(t)
	h.bootstrap()

	_, err := h.run("-u", "admin", "add", "--site", "KLCC")
	assert.ErrorContains(t, err, "missing required fields")
}

func TestEditKeepsUnsetFields(t *testing.T) {
	h := newHarness(t)
	h.bootstrap()
	h.addBoard("--module", "M-12")

	assert.Equal(t, "updated board 1\n", h.mustRun("-u", "admin", "edit", "1", "--size", "P3"))

	out := h.mustRun("list", "--json")
	var b model.Board
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &b))
	assert.Equal(t, "P3", b.Size)
	assert.Equal(t, "M-12", b.ModuleNumber)
	assert.Equal(t, "KLCC", b.Name)
}

func TestListFilters(t *testing.T) {
	h := newHarness(t)
	h.bootstrap()
	h.addBoard("--date-request", "2025-02-10")
	h.addBoard("--site", "Pavilion", "--date-request", "2025-03-01", "--urgent")

	out := h.mustRun("list", "--json", "--urgency", "yes")
	assert.Equal(t, 1, strings.Count(out, "\n"))
	assert.Contains(t, out, "Pavilion")

	out = h.mustRun("list", "--json", "--months", "feb")
	assert.Equal(t, 1, strings.Count(out, "\n"))
	assert.Contains(t, out, "KLCC")

	out = h.mustRun("list", "--options")
	assert.Contains(t, out, "KLCC, Pavilion")

	_, err := h.run("list", "--urgency", "maybe")
	assert.Error(t, err)
}

func TestDeleteNeedsAdmin(t *testing.T) {
	h := newHarness(t)
	h.bootstrap()
	h.addBoard()
	h.mustRun("-u", "admin", "employee", "add", "bob", "--password", "pw")

	t.Setenv(passwordEnv, "pw")
	assert.Equal(t, "signed in as bob (employee)\n", h.mustRun("-u", "bob", "login"))
	_, err := h.run("-u", "bob", "delete", "1")
	assert.ErrorIs(t, err, errNeedsAdmin)

	t.Setenv(passwordEnv, "secret")
	assert.Equal(t, "deleted board 1\n", h.mustRun("-u", "admin", "delete", "1"))
	_, err = h.run("-u", "admin", "delete", "1")
	assert.ErrorContains(t, err, `no board with id "1"`)
}

func TestEmployeeCommands(t *testing.T) {
	h := newHarness(t)
	h.bootstrap()

	h.mustRun("-u", "admin", "employee", "add", "bob", "--password", "pw")
	h.mustRun("-u", "admin", "employee", "add", "alice", "--password", "pw2")
	out := h.mustRun("-u", "admin", "employee", "list")
	assert.Contains(t, out, "bob")
	assert.Contains(t, out, "alice")

	_, err := h.run("-u", "admin", "employee", "add", "admin", "--password", "x")
	assert.Error(t, err)

	h.mustRun("-u", "admin", "employee", "delete", "bob")
	out = h.mustRun("-u", "admin", "employee", "list")
	assert.NotContains(t, out, "bob")

	_, err = h.run("employee", "list")
	assert.ErrorIs(t, err, errNeedsAdmin)
}

func TestAdminPasswordChangeNeedsAdmin(t *testing.T) {
	h := newHarness(t)
	h.bootstrap()

	_, err := h.run("admin-password", "--password", "other")
	assert.ErrorIs(t, err, errNeedsAdmin)

	h.mustRun("-u", "admin", "admin-password", "--password", "other")
	_, err = h.run("-u", "admin", "login")
	assert.Error(t, err)

	t.Setenv(passwordEnv, "other")
	assert.Equal(t, "signed in as admin (admin)\n", h.mustRun("-u", "admin", "login"))
}

func TestQuoteWritesCSVAndDraft(t *testing.T) {
	h := newHarness(t)
	h.bootstrap()
	h.addBoard("--module", "M-12", "--running-no", "0042", "--pixel", "64x64")
	h.addBoard("--site", "Pavilion")

	csvPath := filepath.Join(h.dir, "quote.csv")
	emlPath := filepath.Join(h.dir, "quote.eml")
	out := h.mustRun("quote", "1", "2", "--out", csvPath, "--project-name", "KLCC Facade",
		"--qty", "2=3", "--draft", emlPath, "--to", "ops@example.com")
	assert.Contains(t, out, "saved 2 item(s)")
	assert.Contains(t, out, csvPath)

	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "KLCC Facade")
	assert.Contains(t, string(data), "M-12")

	draft, err := os.ReadFile(emlPath)
	require.NoError(t, err)
	assert.Contains(t, string(draft), "Quotation 1 - KLCC Facade")
	assert.Contains(t, string(draft), "ops@example.com")
}

func TestQuoteSelectsByCriteria(t *testing.T) {
	h := newHarness(t)
	h.bootstrap()
	h.addBoard()
	h.addBoard("--site", "Pavilion")

	csvPath := filepath.Join(h.dir, "pav.csv")
	out := h.mustRun("quote", "--site", "Pavilion", "--out", csvPath)
	assert.Contains(t, out, "saved 1 item(s)")

	_, err := h.run("quote", "--site", "Nowhere", "--out", csvPath)
	assert.ErrorContains(t, err, "no boards selected")

	_, err = h.run("quote", "42", "--out", csvPath)
	assert.Error(t, err)
}

func TestArchiveSnapshots(t *testing.T) {
	h := newHarness(t)
	h.bootstrap()
	h.addBoard("--issue", "lamp pixel drop=2")

	db := filepath.Join(h.dir, "archive.db")
	out := h.mustRun("archive", "--db", db)
	assert.Contains(t, out, "1 board(s)")
	assert.Contains(t, out, "KLCC")

	out = h.mustRun("archive", "--db", db, "--list")
	assert.Contains(t, out, "Boards")
}

func TestConfigSaveAndPrint(t *testing.T) {
	h := newHarness(t)

	assert.Contains(t, h.mustRun("config", "--save"), h.config)
	_, err := os.Stat(h.config)
	require.NoError(t, err)

	out := h.mustRun("config")
	assert.Contains(t, out, "data_dir:")
	assert.Contains(t, out, h.dataDir)
}
