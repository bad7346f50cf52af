package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	ioutils "github.com/Ayushsahu75/mental-healthcare-hub/internal/io"
	"github.com/Ayushsahu75/mental-healthcare-hub/internal/model"
)

const schema = `CREATE TABLE IF NOT EXISTS mixes (
	name       TEXT PRIMARY KEY,
	mix        TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLiteStore keeps mixes in a SQLite database, one row per mix with the
// weights as a JSON object.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := ioutils.EnsureDir(filepath.Dir(path)); err != nil {
			return nil, Backend.Wrap(err, "create store directory")
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, Backend.Wrap(err, "open %s", path)
	}
	// One connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, Backend.Wrap(err, "create schema")
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) LoadMix(ctx context.Context, name string) (model.Mix, bool, error) {
	if err := checkName(name); err != nil {
		return nil, false, err
	}

	var data string
	err := s.db.QueryRowContext(ctx, `SELECT mix FROM mixes WHERE name = ?`, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, Backend.Wrap(err, "load mix %q", name)
	}

	mix, err := decodeMix(name, []byte(data))
	if err != nil {
		return nil, false, err
	}
	return mix, true, nil
}

func (s *SQLiteStore) SaveMix(ctx context.Context, name string, mix model.Mix) error {
	if err := checkName(name); err != nil {
		return err
	}
	data, err := encodeMix(mix)
	if err != nil {
		return Backend.Wrap(err, "encode mix %q", name)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO mixes (name, mix, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET mix = excluded.mix, updated_at = excluded.updated_at`,
		name, string(data), s.now().Unix())
	if err != nil {
		return Backend.Wrap(err, "save mix %q", name)
	}
	return nil
}

func (s *SQLiteStore) ListMixes(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM mixes ORDER BY name`)
	if err != nil {
		return nil, Backend.Wrap(err, "list mixes")
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, Backend.Wrap(err, "scan mix name")
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, Backend.Wrap(err, "list mixes")
	}
	return names, nil
}

func (s *SQLiteStore) DeleteMix(ctx context.Context, name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM mixes WHERE name = ?`, name); err != nil {
		return Backend.Wrap(err, "delete mix %q", name)
	}
	return nil
}

// UpdatedAt returns when name was last saved.
func (s *SQLiteStore) UpdatedAt(ctx context.Context, name string) (time.Time, bool, error) {
	var unix int64
	err := s.db.QueryRowContext(ctx, `SELECT updated_at FROM mixes WHERE name = ?`, name).Scan(&unix)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, Backend.Wrap(err, "load mix %q", name)
	}
	return time.Unix(unix, 0), true, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
