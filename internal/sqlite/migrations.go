package sqlite

func (s Storage) RunMigrations() error {
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id VARCHAR NOT NULL PRIMARY KEY,
		auth TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS feed_cache (
		url VARCHAR NOT NULL PRIMARY KEY,
		etag VARCHAR NOT NULL DEFAULT "",
		last_modified VARCHAR NOT NULL DEFAULT "",
		body BLOB NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS runs (
		id VARCHAR NOT NULL PRIMARY KEY,
		calendar_id VARCHAR NOT NULL,
		feed_url VARCHAR NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL,
		dry_run BOOLEAN NOT NULL DEFAULT 0,
		created INTEGER NOT NULL DEFAULT 0,
		updated INTEGER NOT NULL DEFAULT 0,
		deleted INTEGER NOT NULL DEFAULT 0,
		skipped INTEGER NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT ""
	)`,
	`CREATE INDEX IF NOT EXISTS runs_calendar_started ON runs (calendar_id, started_at)`,
}
