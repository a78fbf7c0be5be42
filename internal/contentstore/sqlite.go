package contentstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/goose-online/goose-sites/internal/apperr"
	"github.com/goose-online/goose-sites/internal/checksum"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS files (
	path       TEXT PRIMARY KEY,
	content    BLOB NOT NULL,
	revision   TEXT NOT NULL,
	size       INTEGER NOT NULL DEFAULT 0,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS history (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	path       TEXT NOT NULL,
	action     TEXT NOT NULL,
	revision   TEXT NOT NULL DEFAULT '',
	message    TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_history_path ON history(path);
`

// SQLite is a Store backed by a single SQLite database file.
type SQLite struct {
	conn *sql.DB
}

// Verify *SQLite satisfies Store at compile time.
var _ Store = (*SQLite)(nil)

// HistoryEntry is one recorded write or delete.
type HistoryEntry struct {
	Path     string
	Action   string
	Revision string
	Message  string
}

// OpenSQLite opens (or creates) the store database and applies the schema.
func OpenSQLite(dsn string) (*SQLite, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("contentstore: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("contentstore: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("contentstore: apply schema: %w", err)
	}
	return &SQLite{conn: conn}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.conn.Close()
}

func cleanPath(p string) string {
	return strings.Trim(path.Clean("/"+p), "/")
}

// CreateFolder writes an empty marker so the folder shows up in listings.
func (s *SQLite) CreateFolder(ctx context.Context, owner, name string) error {
	return s.WriteFile(ctx, path.Join(SitePath(owner, name), KeepFile), nil, "Create site: "+name)
}

// ReadFile returns the current content and revision of p.
func (s *SQLite) ReadFile(ctx context.Context, p string) (*File, error) {
	p = cleanPath(p)
	f := &File{Path: p}
	err := s.conn.QueryRowContext(ctx,
		`SELECT content, revision, size FROM files WHERE path = ?`, p,
	).Scan(&f.Content, &f.Revision, &f.Size)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("contentstore: read %s: %w", p, err)
	}
	return f, nil
}

// WriteFile stores content at p, guarded by the revision read beforehand.
func (s *SQLite) WriteFile(ctx context.Context, p string, content []byte, message string) error {
	p = cleanPath(p)
	if p == "" {
		return fmt.Errorf("contentstore: write: empty path")
	}

	var prev string
	cur, err := s.ReadFile(ctx, p)
	switch {
	case err == nil:
		prev = cur.Revision
	case !errors.Is(err, apperr.ErrNotFound):
		return err
	}

	if content == nil {
		content = []byte{}
	}
	rev := checksum.Revision(content)
	now := time.Now().UTC()

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("contentstore: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	var res sql.Result
	if prev == "" {
		res, err = tx.ExecContext(ctx, `
			INSERT INTO files (path, content, revision, size, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(path) DO NOTHING
		`, p, content, rev, len(content), now)
	} else {
		res, err = tx.ExecContext(ctx, `
			UPDATE files SET content = ?, revision = ?, size = ?, updated_at = ?
			WHERE path = ? AND revision = ?
		`, content, rev, len(content), now, p, prev)
	}
	if err != nil {
		return fmt.Errorf("contentstore: write %s: %w", p, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("contentstore: write %s: %w", p, apperr.ErrConflict)
	}

	if err := logHistory(ctx, tx, p, "write", rev, message, now); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteFile removes p if present.
func (s *SQLite) DeleteFile(ctx context.Context, p, message string) error {
	p = cleanPath(p)
	cur, err := s.ReadFile(ctx, p)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("contentstore: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, `DELETE FROM files WHERE path = ? AND revision = ?`, p, cur.Revision)
	if err != nil {
		return fmt.Errorf("contentstore: delete %s: %w", p, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("contentstore: delete %s: %w", p, apperr.ErrConflict)
	}
	if err := logHistory(ctx, tx, p, "delete", cur.Revision, message, now); err != nil {
		return err
	}
	return tx.Commit()
}

func logHistory(ctx context.Context, tx *sql.Tx, p, action, rev, message string, at time.Time) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO history (path, action, revision, message, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, p, action, rev, message, at)
	if err != nil {
		return fmt.Errorf("contentstore: log history: %w", err)
	}
	return nil
}

// History returns the recorded operations on p, oldest first.
func (s *SQLite) History(ctx context.Context, p string) ([]HistoryEntry, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT path, action, revision, message FROM history WHERE path = ? ORDER BY id`, cleanPath(p))
	if err != nil {
		return nil, fmt.Errorf("contentstore: history: %w", err)
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		var h HistoryEntry
		if err := rows.Scan(&h.Path, &h.Action, &h.Revision, &h.Message); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// FolderSizeBytes sums file sizes at or below p.
func (s *SQLite) FolderSizeBytes(ctx context.Context, p string) (int64, error) {
	p = cleanPath(p)
	var total int64
	var err error
	if p == "" {
		err = s.conn.QueryRowContext(ctx, `SELECT COALESCE(SUM(size), 0) FROM files`).Scan(&total)
	} else {
		prefix := p + "/"
		err = s.conn.QueryRowContext(ctx, `
			SELECT COALESCE(SUM(size), 0) FROM files
			WHERE path = ? OR substr(path, 1, length(?)) = ?
		`, p, prefix, prefix).Scan(&total)
	}
	if err != nil {
		return 0, fmt.Errorf("contentstore: folder size %s: %w", p, err)
	}
	return total, nil
}

// children lists the immediate children of folder.
func (s *SQLite) children(ctx context.Context, folder string) ([]Entry, error) {
	prefix := cleanPath(folder) + "/"
	rows, err := s.conn.QueryContext(ctx, `
		SELECT path, size FROM files
		WHERE substr(path, 1, length(?)) = ?
		ORDER BY path
	`, prefix, prefix)
	if err != nil {
		return nil, fmt.Errorf("contentstore: list %s: %w", folder, err)
	}
	defer rows.Close()

	dirs := make(map[string]struct{})
	var out []Entry
	for rows.Next() {
		var p string
		var size int64
		if err := rows.Scan(&p, &size); err != nil {
			return nil, err
		}
		rest := strings.TrimPrefix(p, prefix)
		name, _, nested := strings.Cut(rest, "/")
		if !nested {
			out = append(out, Entry{Name: name, Path: p, Type: TypeFile, Size: size})
			continue
		}
		if _, ok := dirs[name]; ok {
			continue
		}
		dirs[name] = struct{}{}
		out = append(out, Entry{Name: name, Path: prefix + name, Type: TypeDir})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ListUserSites returns the site folders of owner.
func (s *SQLite) ListUserSites(ctx context.Context, owner string) ([]Entry, error) {
	entries, err := s.children(ctx, path.Join(SitesPrefix, owner))
	if err != nil {
		return nil, err
	}
	dirs := entries[:0]
	for _, e := range entries {
		if e.Type == TypeDir {
			dirs = append(dirs, e)
		}
	}
	return dirs, nil
}

// ListSiteFiles returns the immediate children of one site folder.
func (s *SQLite) ListSiteFiles(ctx context.Context, owner, name string) ([]Entry, error) {
	return s.children(ctx, SitePath(owner, name))
}
