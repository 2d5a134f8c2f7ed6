package migration

// HistoryMigrations create the run history tables
var HistoryMigrations = []Migration{
	{
		Version: 1,
		Name:    "create runs",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS ptc_runs (
				id VARCHAR(36) PRIMARY KEY,
				started_at TIMESTAMP NOT NULL,
				duration_ms BIGINT NOT NULL,
				passed INTEGER NOT NULL,
				failed INTEGER NOT NULL,
				errored INTEGER NOT NULL,
				cancelled BOOLEAN NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS ptc_case_results (
				run_id VARCHAR(36) NOT NULL,
				seq INTEGER NOT NULL,
				file VARCHAR(1024) NOT NULL,
				label VARCHAR(255) NOT NULL,
				status VARCHAR(16) NOT NULL,
				message TEXT,
				PRIMARY KEY (run_id, seq)
			)`,
		},
	},
	{
		Version: 2,
		Name:    "index runs by start time",
		Statements: []string{
			"CREATE INDEX idx_ptc_runs_started_at ON ptc_runs (started_at)",
		},
	},
}
