package db

import (
	"context"
	"embed"
	"fmt"
	"sort"
	"strings"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type migration struct {
	version int
	name    string
	up      string
	down    string
}

// Migrate applies all pending migrations.
func (d *DB) Migrate(ctx context.Context) error {
	return d.runMigrate(ctx, false)
}

// Rollback rolls back all migrations.
func (d *DB) Rollback(ctx context.Context) error {
	return d.runMigrate(ctx, true)
}

func (d *DB) runMigrate(ctx context.Context, down bool) error {
	_, err := d.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			dirty INTEGER NOT NULL DEFAULT 0
		)
	`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	var currentVersion, dirty int
	err = d.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0), COALESCE(MAX(dirty), 0) FROM schema_migrations`).Scan(&currentVersion, &dirty)
	if err != nil {
		return fmt.Errorf("get current version: %w", err)
	}
	if dirty != 0 {
		return fmt.Errorf("database is in dirty state at version %d, manual intervention required", currentVersion)
	}

	migrations, err := loadMigrations()
	if err != nil {
		return err
	}

	versions := make([]int, 0, len(migrations))
	for v := range migrations {
		versions = append(versions, v)
	}
	sort.Ints(versions)

	if down {
		sort.Sort(sort.Reverse(sort.IntSlice(versions)))
		for _, v := range versions {
			if v > currentVersion {
				continue
			}
			m := migrations[v]
			if m.down == "" {
				return fmt.Errorf("no down migration for version %d", v)
			}
			if err := d.step(ctx, v, m.down, `DELETE FROM schema_migrations WHERE version = ?`); err != nil {
				return fmt.Errorf("roll back %s: %w", m.name, err)
			}
		}
		return nil
	}

	for _, v := range versions {
		if v <= currentVersion {
			continue
		}
		m := migrations[v]
		if m.up == "" {
			return fmt.Errorf("no up migration for version %d", v)
		}
		if err := d.step(ctx, v, m.up, `UPDATE schema_migrations SET dirty = 0 WHERE version = ?`); err != nil {
			return fmt.Errorf("apply %s: %w", m.name, err)
		}
	}
	return nil
}

// step marks version dirty, runs script, then runs finish to record the outcome.
func (d *DB) step(ctx context.Context, version int, script, finish string) error {
	if _, err := d.db.ExecContext(ctx, `INSERT OR REPLACE INTO schema_migrations (version, dirty) VALUES (?, 1)`, version); err != nil {
		return fmt.Errorf("mark version %d as dirty: %w", version, err)
	}
	if _, err := d.db.ExecContext(ctx, script); err != nil {
		return fmt.Errorf("run migration %d: %w", version, err)
	}
	if _, err := d.db.ExecContext(ctx, finish, version); err != nil {
		return fmt.Errorf("record version %d: %w", version, err)
	}
	return nil
}

func loadMigrations() (map[int]*migration, error) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}

	migrations := make(map[int]*migration)
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".sql") {
			continue
		}

		var version int
		var suffix string
		if _, err := fmt.Sscanf(name, "%d_%s", &version, &suffix); err != nil {
			continue
		}

		if migrations[version] == nil {
			migrations[version] = &migration{version: version}
		}

		content, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}

		switch {
		case strings.HasSuffix(name, ".up.sql"):
			migrations[version].up = string(content)
			migrations[version].name = strings.TrimSuffix(name, ".up.sql")
		case strings.HasSuffix(name, ".down.sql"):
			migrations[version].down = string(content)
		}
	}
	return migrations, nil
}
