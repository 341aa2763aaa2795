package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of archive schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS snapshots (
	id          TEXT PRIMARY KEY,
	taken_at    DATETIME NOT NULL,
	board_count INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS snapshot_boards (
	snapshot_id   TEXT NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
	position      INTEGER NOT NULL,
	board_id      TEXT NOT NULL,
	site          TEXT NOT NULL DEFAULT '',
	size          TEXT NOT NULL DEFAULT '',
	ic            TEXT NOT NULL DEFAULT '',
	dc            TEXT NOT NULL DEFAULT '',
	module_number TEXT NOT NULL DEFAULT '',
	running_no    TEXT NOT NULL DEFAULT '',
	date_request  TEXT NOT NULL DEFAULT '',
	urgency       INTEGER NOT NULL DEFAULT 0 CHECK(urgency IN (0, 1)),
	no_issue      INTEGER NOT NULL DEFAULT 0 CHECK(no_issue IN (0, 1)),
	total_loss    INTEGER NOT NULL DEFAULT 0 CHECK(total_loss IN (0, 1)),
	created_by    TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (snapshot_id, position)
);

CREATE TABLE IF NOT EXISTS snapshot_issues (
	snapshot_id TEXT NOT NULL,
	position    INTEGER NOT NULL,
	issue       TEXT NOT NULL,
	count       INTEGER NOT NULL CHECK(count > 0),
	PRIMARY KEY (snapshot_id, position, issue),
	FOREIGN KEY (snapshot_id, position)
		REFERENCES snapshot_boards(snapshot_id, position) ON DELETE CASCADE
);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE INDEX IF NOT EXISTS idx_snapshots_taken_at ON snapshots(taken_at);
CREATE INDEX IF NOT EXISTS idx_snapshot_boards_site ON snapshot_boards(snapshot_id, site);
CREATE INDEX IF NOT EXISTS idx_snapshot_issues_issue ON snapshot_issues(snapshot_id, issue);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
