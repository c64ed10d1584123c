package sqlite

// Schema DDL for the index tables.
const (
	createRuns = `CREATE TABLE IF NOT EXISTS runs (
    run_id TEXT PRIMARY KEY,
    inventory TEXT NOT NULL,
    created_at TEXT NOT NULL,
    groups_total INTEGER NOT NULL,
    excluded INTEGER NOT NULL,
    with_image INTEGER NOT NULL,
    misses INTEGER NOT NULL
);`

	createResolutions = `CREATE TABLE IF NOT EXISTS resolutions (
    run_id TEXT NOT NULL,
    ordinal INTEGER NOT NULL,
    part_id TEXT NOT NULL,
    colour_id TEXT NOT NULL,
    quantity INTEGER NOT NULL,
    path TEXT NOT NULL,
    width INTEGER NOT NULL,
    height INTEGER NOT NULL,
    source TEXT NOT NULL,
    important INTEGER NOT NULL,
    missing INTEGER NOT NULL,
    PRIMARY KEY (run_id, ordinal),
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);`

	createLocalImages = `CREATE TABLE IF NOT EXISTS local_images (
    url TEXT PRIMARY KEY,
    rel_path TEXT NOT NULL,
    created_at TEXT NOT NULL
);`
)

// Index DDL for common queries.
const (
	idxRunsCreated        = `CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);`
	idxResolutionsPart    = `CREATE INDEX IF NOT EXISTS idx_resolutions_part ON resolutions(part_id);`
	idxResolutionsMissing = `CREATE INDEX IF NOT EXISTS idx_resolutions_missing ON resolutions(run_id, missing);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createRuns,
	createResolutions,
	createLocalImages,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxRunsCreated,
	idxResolutionsPart,
	idxResolutionsMissing,
}
