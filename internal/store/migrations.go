package store

// migration is a single versioned schema change.
type migration struct {
	version int
	sql     string
}

// migrations are applied in order by runMigrations, which records each
// applied version itself. Never edit an applied migration; append a new
// version instead.
var migrations = []migration{
	{
		version: 1,
		sql: `
			CREATE TABLE IF NOT EXISTS kv (
				key        TEXT PRIMARY KEY,
				value      TEXT NOT NULL,
				updated_at TIMESTAMP NOT NULL
			);

			CREATE TABLE IF NOT EXISTS profile_cache (
				id   INTEGER PRIMARY KEY CHECK (id = 1),
				data TEXT NOT NULL
			);

			CREATE TABLE IF NOT EXISTS poll_cache (
				id   INTEGER PRIMARY KEY,
				data TEXT NOT NULL
			);
		`,
	},
}
