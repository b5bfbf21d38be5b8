package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"budgetku/internal/core"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteRepository keeps snapshots in the snapshots table, one row per key.
type SQLiteRepository struct {
	db     *sql.DB
	key    string
	schema uint
	now    func() time.Time
}

func NewSQLiteRepository(dbPath, key string) (*SQLiteRepository, error) {
	if key == "" {
		key = DefaultKey
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	schema, err := migrateSnapshots(dbPath)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteRepository{db: db, key: key, schema: schema, now: time.Now}, nil
}

// migrateSnapshots applies the embedded snapshot schema on its own
// connection, since closing a migrate instance also closes its database.
// It returns the schema version the file ends up at.
func migrateSnapshots(dbPath string) (uint, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return 0, fmt.Errorf("snapshot schema: open %s: %w", dbPath, err)
	}
	defer conn.Close()

	driver, err := sqlite.WithInstance(conn, &sqlite.Config{})
	if err != nil {
		return 0, fmt.Errorf("snapshot schema: sqlite driver: %w", err)
	}
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return 0, fmt.Errorf("snapshot schema: embedded migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return 0, fmt.Errorf("snapshot schema: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("snapshot schema: upgrade %s: %w", dbPath, err)
	}
	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("snapshot schema: read version: %w", err)
	}
	if dirty {
		return 0, fmt.Errorf("snapshot schema: version %d is dirty, fix %s by hand", version, dbPath)
	}
	return version, nil
}

// SchemaVersion is the snapshot schema version applied at open time.
func (r *SQLiteRepository) SchemaVersion() uint {
	return r.schema
}

func (r *SQLiteRepository) Load(ctx context.Context) (core.State, error) {
	var data string
	err := r.db.QueryRowContext(ctx, `SELECT data FROM snapshots WHERE name = ?`, r.key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return core.State{}, ErrNoSnapshot
	}
	if err != nil {
		return core.State{}, fmt.Errorf("query snapshot: %w", err)
	}
	return Decode([]byte(data))
}

func (r *SQLiteRepository) Save(ctx context.Context, state core.State) error {
	b, err := Encode(state)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO snapshots (name, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		r.key, string(b), r.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}

// UpdatedAt reports when the snapshot was last written.
func (r *SQLiteRepository) UpdatedAt(ctx context.Context) (time.Time, error) {
	var ts string
	err := r.db.QueryRowContext(ctx, `SELECT updated_at FROM snapshots WHERE name = ?`, r.key).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, ErrNoSnapshot
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("query snapshot timestamp: %w", err)
	}
	return time.Parse(time.RFC3339Nano, ts)
}

// Ping checks the database connection, used by readiness probes.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
