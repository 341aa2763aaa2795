package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/led-repair/internal/model"
)

// Archive keeps point-in-time copies of the board file in a SQLite database
// for reporting. The JSONL files remain the system of record.
type Archive struct {
	db *sqlx.DB
}

// Snapshot describes one archived copy of the board file.
type Snapshot struct {
	ID         string    `db:"id"`
	TakenAt    time.Time `db:"taken_at"`
	BoardCount int       `db:"board_count"`
}

// SiteIssueTotal is the summed count of one issue category at one site.
type SiteIssueTotal struct {
	Site  string `db:"site"`
	Issue string `db:"issue"`
	Total int    `db:"total"`
}

// OpenArchive opens (or creates) a SQLite database at dbPath, enables WAL
// mode, and runs any pending schema migrations.
func OpenArchive(dbPath string) (*Archive, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// A single connection keeps ":memory:" databases from splitting per
	// connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	a := &Archive{db: db}
	if err := a.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return a, nil
}

// Close closes the underlying database connection.
func (a *Archive) Close() error {
	return a.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (a *Archive) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := a.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = a.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := a.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// WriteSnapshot archives boards in one transaction and returns the new
// snapshot.
func (a *Archive) WriteSnapshot(ctx context.Context, boards []model.Board) (*Snapshot, error) {
	snap := Snapshot{
		ID:         uuid.New().String(),
		TakenAt:    time.Now().UTC(),
		BoardCount: len(boards),
	}

	tx, err := a.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO snapshots (id, taken_at, board_count) VALUES (?, ?, ?)`,
		snap.ID, snap.TakenAt, snap.BoardCount,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting snapshot: %w", err)
	}

	boardStmt, err := tx.PreparexContext(ctx, `
		INSERT INTO snapshot_boards (
			snapshot_id, position, board_id,
			site, size, ic, dc,
			module_number, running_no, date_request,
			urgency, no_issue, total_loss, created_by
		) VALUES (
			?, ?, ?,
			?, ?, ?, ?,
			?, ?, ?,
			?, ?, ?, ?
		)`)
	if err != nil {
		return nil, fmt.Errorf("preparing board insert: %w", err)
	}
	defer boardStmt.Close()

	issueStmt, err := tx.PreparexContext(ctx,
		`INSERT INTO snapshot_issues (snapshot_id, position, issue, count) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("preparing issue insert: %w", err)
	}
	defer issueStmt.Close()

	for pos, b := range boards {
		issues := b.Issues
		issues.Normalize()

		_, err := boardStmt.ExecContext(ctx,
			snap.ID, pos, b.BoardID,
			b.Name, b.Size, b.IC, b.DC,
			b.ModuleNumber, b.RunningNumber(), b.DateRequest,
			boolToInt(b.Urgency), boolToInt(issues.NoIssue), boolToInt(issues.TotalLoss), b.CreatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("inserting board %s: %w", b.BoardID, err)
		}

		for _, issue := range model.AllIssues() {
			n := issues.Count(issue)
			if n == 0 {
				continue
			}
			if _, err := issueStmt.ExecContext(ctx, snap.ID, pos, issue.Key(), n); err != nil {
				return nil, fmt.Errorf("inserting %s count for board %s: %w", issue.Key(), b.BoardID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing snapshot: %w", err)
	}

	return &snap, nil
}

// Snapshots lists archived snapshots, newest first.
func (a *Archive) Snapshots(ctx context.Context) ([]Snapshot, error) {
	var snaps []Snapshot
	err := a.db.SelectContext(ctx, &snaps,
		`SELECT id, taken_at, board_count FROM snapshots ORDER BY taken_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	return snaps, nil
}

// SiteIssueTotals sums issue counts per site and category for one snapshot,
// ordered by site then category key.
func (a *Archive) SiteIssueTotals(ctx context.Context, snapshotID string) ([]SiteIssueTotal, error) {
	const query = `
		SELECT b.site AS site, i.issue AS issue, SUM(i.count) AS total
		FROM snapshot_issues i
		JOIN snapshot_boards b
			ON b.snapshot_id = i.snapshot_id AND b.position = i.position
		WHERE i.snapshot_id = ?
		GROUP BY b.site, i.issue
		ORDER BY b.site, i.issue`

	var totals []SiteIssueTotal
	if err := a.db.SelectContext(ctx, &totals, query, snapshotID); err != nil {
		return nil, fmt.Errorf("summing issues for snapshot %s: %w", snapshotID, err)
	}
	return totals, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
