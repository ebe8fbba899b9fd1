package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/example/hospital-admin/internal/persistence"
)

func newTestPool(t *testing.T) *ConnectionPool {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "hospital.db")
	pool, err := NewConnectionPool(DefaultConfig(dsn))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		_ = pool.Close()
	})
	return pool
}

func TestNewConnectionPool(t *testing.T) {
	t.Parallel()

	t.Run("rejects an empty DSN", func(t *testing.T) {
		t.Parallel()

		if _, err := NewConnectionPool(Config{}); err == nil {
			t.Fatal("expected an error for an empty DSN")
		}
	})

	t.Run("enforces foreign keys", func(t *testing.T) {
		t.Parallel()

		pool := newTestPool(t)
		var enabled int
		if err := pool.DB().QueryRow(`PRAGMA foreign_keys`).Scan(&enabled); err != nil {
			t.Fatalf("failed to read pragma: %v", err)
		}
		if enabled != 1 {
			t.Fatal("expected foreign_keys pragma to be on")
		}
	})
}

func TestPragmasApplyToPooledConnections(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pool := newTestPool(t)
	if err := RunMigrations(ctx, pool); err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}

	// Hold one connection so the statements below run on a fresh one.
	held, err := pool.DB().Conn(ctx)
	if err != nil {
		t.Fatalf("failed to obtain connection: %v", err)
	}
	defer held.Close()

	second, err := pool.DB().Conn(ctx)
	if err != nil {
		t.Fatalf("failed to obtain second connection: %v", err)
	}
	defer second.Close()

	var enabled int
	if err := second.QueryRowContext(ctx, `PRAGMA foreign_keys`).Scan(&enabled); err != nil {
		t.Fatalf("failed to read pragma: %v", err)
	}
	if enabled != 1 {
		t.Fatal("expected foreign_keys pragma to be on for every pooled connection")
	}

	_, err = second.ExecContext(ctx, `
		INSERT INTO users (id, employee_id, name, role, department_id, password_hash, created_at, updated_at)
		VALUES ('staff-1', 'EMP001', 'Amara Silva', 'Nurse', 'no-such-department', 'hash', '2025-03-10T09:30:00Z', '2025-03-10T09:30:00Z')
	`)
	if !errors.Is(NewErrorMapper().MapError(err), persistence.ErrForeignKeyViolation) {
		t.Fatalf("expected a foreign key violation for a missing department, got %v", err)
	}
}

func TestRunMigrations(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pool := newTestPool(t)

	if err := RunMigrations(ctx, pool); err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}

	// Running again must be a no-op.
	if err := RunMigrations(ctx, pool); err != nil {
		t.Fatalf("RunMigrations rerun failed: %v", err)
	}

	var applied int
	if err := pool.DB().QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&applied); err != nil {
		t.Fatalf("failed to count migrations: %v", err)
	}
	if applied != len(migrations) {
		t.Fatalf("expected %d applied migrations, got %d", len(migrations), applied)
	}

	for _, table := range []string{"departments", "users", "monthly_reports"} {
		var name string
		err := pool.DB().QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Fatalf("expected table %s to exist: %v", table, err)
		}
	}
}

func TestErrorMapper(t *testing.T) {
	t.Parallel()

	mapper := NewErrorMapper()
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"unique", errors.New("constraint failed: UNIQUE constraint failed: users.employee_id"), persistence.ErrDuplicate},
		{"foreign key", errors.New("constraint failed: FOREIGN KEY constraint failed"), persistence.ErrForeignKeyViolation},
		{"check", errors.New("constraint failed: CHECK constraint failed: month"), persistence.ErrConstraintViolation},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := mapper.MapError(tc.err); !errors.Is(got, tc.want) {
				t.Fatalf("MapError(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}

	t.Run("passes unknown errors through", func(t *testing.T) {
		t.Parallel()

		unknown := errors.New("disk I/O error")
		if got := mapper.MapError(unknown); got != unknown {
			t.Fatalf("expected error passed through, got %v", got)
		}
	})
}
