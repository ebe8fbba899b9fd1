package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// migrationStep is one schema version: a set of statements applied together
// in a single transaction.
type migrationStep struct {
	version     string
	description string
	statements  []string
}

// migrations is the ordered schema history. Steps are append-only; never edit
// a released step.
var migrations = []migrationStep{
	{
		version:     "001",
		description: "create departments table",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS departments (
				id         TEXT PRIMARY KEY,
				name       TEXT NOT NULL COLLATE NOCASE UNIQUE,
				status     TEXT NOT NULL CHECK (status IN ('Active', 'Inactive')),
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
		},
	},
	{
		version:     "002",
		description: "create users table",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS users (
				id            TEXT PRIMARY KEY,
				employee_id   TEXT NOT NULL UNIQUE,
				name          TEXT NOT NULL,
				role          TEXT NOT NULL,
				department_id TEXT NOT NULL REFERENCES departments(id),
				password_hash TEXT NOT NULL,
				created_at    TEXT NOT NULL,
				updated_at    TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_users_department ON users(department_id)`,
			`CREATE INDEX IF NOT EXISTS idx_users_role ON users(role)`,
		},
	},
	{
		version:     "003",
		description: "create monthly_reports table",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS monthly_reports (
				year                          INTEGER NOT NULL,
				month                         INTEGER NOT NULL CHECK (month BETWEEN 1 AND 12),
				report_date                   TEXT NOT NULL,
				total_beds                    INTEGER NOT NULL DEFAULT 0,
				total_beds_hdu                INTEGER NOT NULL DEFAULT 0,
				total_beds_ward               INTEGER NOT NULL DEFAULT 0,
				total_beds_isolation          INTEGER NOT NULL DEFAULT 0,
				admissions_male               INTEGER NOT NULL DEFAULT 0,
				admissions_female             INTEGER NOT NULL DEFAULT 0,
				admissions_ah                 INTEGER NOT NULL DEFAULT 0,
				admissions_amca               INTEGER NOT NULL DEFAULT 0,
				admissions_sama               INTEGER NOT NULL DEFAULT 0,
				admissions_ku                 INTEGER NOT NULL DEFAULT 0,
				admissions_munt               INTEGER NOT NULL DEFAULT 0,
				admissions_ward02             INTEGER NOT NULL DEFAULT 0,
				admissions_isolation          INTEGER NOT NULL DEFAULT 0,
				admissions_hdu_unit           INTEGER NOT NULL DEFAULT 0,
				bed_occupancy_rate            REAL NOT NULL DEFAULT 0,
				avg_length_of_stay            REAL NOT NULL DEFAULT 0,
				midnight_total                INTEGER NOT NULL DEFAULT 0,
				discharges                    INTEGER NOT NULL DEFAULT 0,
				lama                          INTEGER NOT NULL DEFAULT 0,
				re_admissions                 INTEGER NOT NULL DEFAULT 0,
				discharge_same_day            INTEGER NOT NULL DEFAULT 0,
				transfer_to_other_hospitals   INTEGER NOT NULL DEFAULT 0,
				transfer_from_other_hospitals INTEGER NOT NULL DEFAULT 0,
				weekday_transfers_in          INTEGER NOT NULL DEFAULT 0,
				weekday_transfers_out         INTEGER NOT NULL DEFAULT 0,
				weekend_transfers_in          INTEGER NOT NULL DEFAULT 0,
				weekend_transfers_out         INTEGER NOT NULL DEFAULT 0,
				missing                       INTEGER NOT NULL DEFAULT 0,
				number_of_death               INTEGER NOT NULL DEFAULT 0,
				death_within_24hrs            INTEGER NOT NULL DEFAULT 0,
				death_within_48hrs            INTEGER NOT NULL DEFAULT 0,
				death_rate                    REAL NOT NULL DEFAULT 0,
				no_of_hd                      INTEGER NOT NULL DEFAULT 0,
				xray_inward                   INTEGER NOT NULL DEFAULT 0,
				xray_departmental             INTEGER NOT NULL DEFAULT 0,
				ecg_inward                    INTEGER NOT NULL DEFAULT 0,
				ecg_departmental              INTEGER NOT NULL DEFAULT 0,
				abg                           INTEGER NOT NULL DEFAULT 0,
				wit_meetings                  INTEGER NOT NULL DEFAULT 0,
				referrals_cardiology          INTEGER NOT NULL DEFAULT 0,
				referrals_chest_physician     INTEGER NOT NULL DEFAULT 0,
				referrals_radiodiagnosis      INTEGER NOT NULL DEFAULT 0,
				referrals_rheumatology        INTEGER NOT NULL DEFAULT 0,
				referrals_others              INTEGER NOT NULL DEFAULT 0,
				total_referrals               INTEGER NOT NULL DEFAULT 0,
				status                        TEXT NOT NULL CHECK (status IN ('draft', 'submitted', 'approved')),
				created_by                    TEXT,
				last_updated_by               TEXT,
				created_at                    TEXT NOT NULL,
				updated_at                    TEXT NOT NULL,
				PRIMARY KEY (year, month)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_monthly_reports_status ON monthly_reports(status)`,
		},
	},
}

// RunMigrations brings the schema up to date. Applied versions are tracked in
// schema_migrations; each pending step runs in its own transaction so a
// failure leaves earlier steps committed.
func RunMigrations(ctx context.Context, pool *ConnectionPool) error {
	if _, err := pool.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version     TEXT PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  TEXT NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("sqlite: failed to initialise schema_migrations: %w", err)
	}

	applied, err := appliedVersions(ctx, pool.db)
	if err != nil {
		return err
	}

	for _, step := range migrations {
		if applied[step.version] {
			continue
		}

		err := pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			for _, statement := range step.statements {
				if _, err := tx.Exec(statement); err != nil {
					return fmt.Errorf("sqlite: migration %s (%s) failed: %w", step.version, step.description, err)
				}
			}
			_, err := tx.Exec(
				`INSERT INTO schema_migrations (version, description, applied_at) VALUES (?, ?, ?)`,
				step.version, step.description, time.Now().UTC().Format(time.RFC3339),
			)
			if err != nil {
				return fmt.Errorf("sqlite: failed to record migration %s: %w", step.version, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func appliedVersions(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to read schema_migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("sqlite: failed to scan schema_migrations: %w", err)
		}
		applied[version] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: failed to iterate schema_migrations: %w", err)
	}
	return applied, nil
}
