package database

type migration struct {
	id   int
	name string
	sql  string
}

var migrations = []migration{
	{
		id:   1,
		name: "initial_schema",
		sql: `
			-- Sessions: one row per game, the save document kept as JSON text
			CREATE TABLE sessions (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				scenario TEXT NOT NULL,
				seed INTEGER NOT NULL,
				day INTEGER NOT NULL DEFAULT 1,
				cash INTEGER NOT NULL DEFAULT 0,
				status TEXT NOT NULL DEFAULT 'active',
				state_json TEXT NOT NULL,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX idx_sessions_updated ON sessions(updated_at);

			-- Day reports: the economy snapshot of every day advance
			CREATE TABLE day_reports (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				session_id TEXT NOT NULL,
				day INTEGER NOT NULL,
				production INTEGER NOT NULL,
				refined INTEGER NOT NULL,
				contract_delivered INTEGER NOT NULL,
				maintenance_cost INTEGER NOT NULL,
				interest_cost INTEGER NOT NULL,
				cash INTEGER NOT NULL,
				price INTEGER NOT NULL,
				petrol_price INTEGER NOT NULL,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
			);
			CREATE INDEX idx_day_reports_session ON day_reports(session_id, day);

			-- Report events: narrative lines of a report, in order
			CREATE TABLE report_events (
				report_id INTEGER NOT NULL,
				seq INTEGER NOT NULL,
				kind TEXT NOT NULL,
				message TEXT NOT NULL,
				amount INTEGER NOT NULL DEFAULT 0,
				PRIMARY KEY (report_id, seq),
				FOREIGN KEY (report_id) REFERENCES day_reports(id) ON DELETE CASCADE
			);
		`,
	},
	{
		id:   2,
		name: "add_final_assets_column",
		sql: `
			-- Net worth at the last save, for leaderboards without decoding state
			ALTER TABLE sessions ADD COLUMN final_assets INTEGER NOT NULL DEFAULT 0;
		`,
	},
}
