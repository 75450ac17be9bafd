package database

import (
	"database/sql"
	"fmt"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations are embedded and applied in version order; the applied set
// is tracked in the migrations table.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_sports",
		SQL: `
			CREATE TABLE IF NOT EXISTS sports (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				label TEXT NOT NULL UNIQUE,
				is_pace_sport INTEGER NOT NULL DEFAULT 0,
				stopped_speed_threshold REAL NOT NULL DEFAULT 0.28
			);
			INSERT OR IGNORE INTO sports (label, is_pace_sport, stopped_speed_threshold) VALUES
				('Cycling', 0, 0.28),
				('Running', 1, 0.1),
				('Hiking', 1, 0.05),
				('Walking', 1, 0.05),
				('Mountain Biking', 0, 0.28),
				('Trail Running', 1, 0.1);
		`,
	},
	{
		Version: 2,
		Name:    "create_equipment",
		SQL: `
			CREATE TABLE IF NOT EXISTS equipment (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id INTEGER NOT NULL,
				label TEXT NOT NULL,
				is_active INTEGER NOT NULL DEFAULT 1
			);
			CREATE INDEX IF NOT EXISTS idx_equipment_user ON equipment(user_id);
		`,
	},
	{
		Version: 3,
		Name:    "create_workouts",
		SQL: `
			CREATE TABLE IF NOT EXISTS workouts (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				uuid TEXT NOT NULL UNIQUE,
				user_id INTEGER NOT NULL,
				sport_id INTEGER NOT NULL REFERENCES sports(id),
				title TEXT NOT NULL DEFAULT '',
				description TEXT NOT NULL DEFAULT '',
				notes TEXT NOT NULL DEFAULT '',
				source TEXT NOT NULL DEFAULT '',
				equipment_id INTEGER REFERENCES equipment(id),
				distance_km REAL NOT NULL DEFAULT 0,
				duration INTEGER NOT NULL DEFAULT 0,
				moving_time INTEGER NOT NULL DEFAULT 0,
				stopped_time INTEGER NOT NULL DEFAULT 0,
				ave_speed REAL NOT NULL DEFAULT 0,
				max_speed REAL NOT NULL DEFAULT 0,
				ascent REAL,
				descent REAL,
				max_alt REAL,
				min_alt REAL,
				ave_pace REAL,
				best_pace REAL,
				ave_cadence REAL,
				max_cadence INTEGER,
				ave_hr REAL,
				max_hr INTEGER,
				ave_power REAL,
				max_power INTEGER,
				min_lat REAL,
				max_lat REAL,
				min_lon REAL,
				max_lon REAL,
				start_time TIMESTAMP NOT NULL,
				end_time TIMESTAMP NOT NULL,
				track_file_path TEXT NOT NULL DEFAULT '',
				map_id TEXT NOT NULL DEFAULT '',
				weather_start TEXT,
				weather_end TEXT,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_workouts_user_start ON workouts(user_id, start_time);
		`,
	},
	{
		Version: 4,
		Name:    "create_workout_segments",
		SQL: `
			CREATE TABLE IF NOT EXISTS workout_segments (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				workout_id INTEGER NOT NULL REFERENCES workouts(id),
				segment_no INTEGER NOT NULL,
				distance_km REAL NOT NULL DEFAULT 0,
				duration INTEGER NOT NULL DEFAULT 0,
				moving_time INTEGER NOT NULL DEFAULT 0,
				stopped_time INTEGER NOT NULL DEFAULT 0,
				ave_speed REAL NOT NULL DEFAULT 0,
				max_speed REAL NOT NULL DEFAULT 0,
				ascent REAL,
				descent REAL,
				max_alt REAL,
				min_alt REAL,
				ave_pace REAL,
				best_pace REAL,
				ave_cadence REAL,
				max_cadence INTEGER,
				ave_hr REAL,
				max_hr INTEGER,
				ave_power REAL,
				max_power INTEGER
			);
			CREATE INDEX IF NOT EXISTS idx_workout_segments_workout ON workout_segments(workout_id);
		`,
	},
	{
		Version: 5,
		Name:    "create_import_tasks",
		SQL: `
			CREATE TABLE IF NOT EXISTS import_tasks (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id INTEGER NOT NULL,
				status TEXT NOT NULL DEFAULT 'pending',
				progress_percent INTEGER NOT NULL DEFAULT 0,
				total_files INTEGER NOT NULL DEFAULT 0,
				processed_files INTEGER NOT NULL DEFAULT 0,
				created_count INTEGER NOT NULL DEFAULT 0,
				file_errors TEXT NOT NULL DEFAULT '{}',
				errored INTEGER NOT NULL DEFAULT 0,
				archive_path TEXT NOT NULL DEFAULT '',
				error_message TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_import_tasks_user ON import_tasks(user_id);
		`,
	},
}

// Migrate applies all pending migrations in version order.
func Migrate(db *sql.DB) error {
	if err := initMigrationsTable(db); err != nil {
		return err
	}

	applied, err := appliedMigrations(db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		if _, err := db.Exec(m.SQL); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Name, err)
		}
		if _, err := db.Exec("INSERT INTO migrations (version, name) VALUES (?, ?)", m.Version, m.Name); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}
	}
	return nil
}

func initMigrationsTable(db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

func appliedMigrations(db *sql.DB) (map[int]bool, error) {
	rows, err := db.Query("SELECT version FROM migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}
	return applied, rows.Err()
}
