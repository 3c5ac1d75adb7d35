/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"adnate/internal/design"
	applog "adnate/internal/log"
	"adnate/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// IndexDirName holds the library's derived data under the library root.
	IndexDirName  = ".adnate"
	IndexFileName = "index.sqlite"

	// schemaVersion tracks the local SQLite schema. Bump it together with a
	// new step in runMigrations.
	schemaVersion = 2

	// tsLayout is fixed width so that stored timestamps sort as text.
	tsLayout = "2006-01-02T15:04:05.000000000Z"
)

func formatTS(t time.Time) string { return t.UTC().Format(tsLayout) }

func parseTS(s string) time.Time {
	t, err := time.Parse(tsLayout, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339Nano, s)
	}
	return t
}

// IndexPath returns the index database file of the library at root.
func IndexPath(root string) string {
	return filepath.Join(root, IndexDirName, IndexFileName)
}

// Library is a directory of design files with its SQLite index.
type Library struct {
	Root string

	db         *sql.DB
	log        *slog.Logger
	previewCap int64
}

// OpenLibrary ensures the index at <root>/.adnate/index.sqlite exists, enables
// WAL mode and brings the schema up to date.
func OpenLibrary(root string) (*Library, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "index_open").With(slog.String("root", root))
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("library root is required")
	}
	if err := os.MkdirAll(filepath.Join(root, IndexDirName), 0o755); err != nil {
		l.Error("create index dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create index dir: %w", err)
	}

	path := IndexPath(root)
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ensureMetaAndVersion(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure meta/version failed", slog.Any("err", err))
		return nil, err
	}
	if err := ensureIndexSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure index schema failed", slog.Any("err", err))
		return nil, err
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}
	l.Debug("index ready", slog.String("path", path))
	return &Library{
		Root:       root,
		db:         db,
		log:        applog.WithComponent("storage").With(slog.String("root", root)),
		previewCap: MaxPreviewsBytesFromEnv(),
	}, nil
}

// Close releases the index database.
func (lib *Library) Close() error { return lib.db.Close() }

// DB exposes the index database for diagnostics.
func (lib *Library) DB() *sql.DB { return lib.db }

func ensureMetaAndVersion(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := formatTS(time.Now())
	appv := version.String()
	var cur int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, schemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		// keep the stored schema so migrations can run
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// runMigrations applies incremental schema migrations up to schemaVersion.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	for cur < schemaVersion {
		next := cur + 1
		var stmts []string
		switch next {
		case 2:
			stmts = []string{
				`CREATE INDEX IF NOT EXISTS idx_designs_updated ON designs(updated_at);`,
				`CREATE INDEX IF NOT EXISTS idx_versions_created ON versions(design_id, created_at);`,
			}
		}
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", next, err)
		}
		for _, q := range stmts {
			if _, err := tx.ExecContext(ctx, q); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d stmt failed: %w", next, err)
			}
		}
		if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, formatTS(time.Now())); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d update version: %w", next, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d commit: %w", next, err)
		}
		cur = next
	}
	return nil
}

func ensureIndexSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS designs (
			doc_id     INTEGER PRIMARY KEY,
			id         TEXT    NOT NULL UNIQUE,
			name       TEXT    NOT NULL,
			path       TEXT    NOT NULL,
			width      INTEGER NOT NULL,
			height     INTEGER NOT NULL,
			elements   INTEGER NOT NULL,
			body       TEXT    NOT NULL DEFAULT '',
			created_at TEXT    NOT NULL,
			updated_at TEXT    NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_designs_path ON designs(path);`,

		// Contentless FTS5 index over name and text content, fed by triggers.
		`CREATE VIRTUAL TABLE IF NOT EXISTS fts_designs USING fts5(
			name,
			body,
			content='',
			tokenize = 'unicode61'
		);`,

		`CREATE TABLE IF NOT EXISTS versions (
			id             INTEGER PRIMARY KEY,
			design_id      TEXT    NOT NULL,
			version_number INTEGER NOT NULL,
			description    TEXT    NOT NULL DEFAULT '',
			created_at     TEXT    NOT NULL,
			document       BLOB    NOT NULL,
			UNIQUE(design_id, version_number)
		);`,

		`CREATE TABLE IF NOT EXISTS previews (
			id             INTEGER PRIMARY KEY,
			design_id      TEXT    NOT NULL,
			w              INTEGER NOT NULL,
			h              INTEGER NOT NULL,
			blob           BLOB    NOT NULL,
			size           INTEGER NOT NULL DEFAULT 0,
			source_updated TEXT    NOT NULL,
			updated_at     TEXT    NOT NULL,
			last_access    TEXT,
			UNIQUE(design_id, w, h)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_previews_access ON previews(last_access);`,
		`CREATE INDEX IF NOT EXISTS idx_designs_updated ON designs(updated_at);`,
		`CREATE INDEX IF NOT EXISTS idx_versions_created ON versions(design_id, created_at);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure index schema: %w", err)
		}
	}
	triggers := []string{
		`CREATE TRIGGER IF NOT EXISTS designs_ai AFTER INSERT ON designs BEGIN
			INSERT INTO fts_designs(rowid, name, body) VALUES (new.doc_id, new.name, new.body);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS designs_ad AFTER DELETE ON designs BEGIN
			INSERT INTO fts_designs(fts_designs, rowid, name, body) VALUES ('delete', old.doc_id, old.name, old.body);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS designs_au AFTER UPDATE OF name, body ON designs BEGIN
			INSERT INTO fts_designs(fts_designs, rowid, name, body) VALUES ('delete', old.doc_id, old.name, old.body);
			INSERT INTO fts_designs(rowid, name, body) VALUES (new.doc_id, new.name, new.body);
		END;`,
	}
	for _, q := range triggers {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure fts triggers: %w", err)
		}
	}
	return nil
}

// searchText joins the text content of a design for the full-text index.
func searchText(d design.Design) string {
	var parts []string
	for _, e := range d.Elements {
		if e.Type == design.TypeText {
			if s := strings.TrimSpace(e.Content); s != "" {
				parts = append(parts, s)
			}
		}
	}
	return strings.Join(parts, " ")
}

// Upsert records the design stored at path in the index.
func (lib *Library) Upsert(ctx context.Context, path string, d design.Design) error {
	rel := path
	if r, err := filepath.Rel(lib.Root, path); err == nil {
		rel = filepath.ToSlash(r)
	}
	m := d.Metadata
	_, err := lib.db.ExecContext(ctx, `INSERT INTO designs(id, name, path, width, height, elements, body, created_at, updated_at)
		VALUES(?,?,?,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET name=excluded.name, path=excluded.path, width=excluded.width, height=excluded.height,
			elements=excluded.elements, body=excluded.body, updated_at=excluded.updated_at`,
		m.ID, m.Name, rel, m.Width, m.Height, len(d.Elements), searchText(d), formatTS(m.CreatedAt), formatTS(m.UpdatedAt))
	if err != nil {
		return fmt.Errorf("upsert design %s: %w", m.ID, err)
	}
	return nil
}

// Remove drops a design with its versions and previews from the index.
// The design file itself is left alone.
func (lib *Library) Remove(ctx context.Context, id string) error {
	tx, err := lib.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM designs WHERE id=?`, id)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete design: %w", err)
	}
	for _, q := range []string{`DELETE FROM versions WHERE design_id=?`, `DELETE FROM previews WHERE design_id=?`} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("delete design data: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("design %s: %w", id, ErrNotFound)
	}
	return nil
}

// Rebuild replaces the design rows with the design files found in the
// library root. Versions and previews are kept. It returns the number of
// designs indexed; unreadable files are logged and skipped.
func (lib *Library) Rebuild(ctx context.Context) (int, error) {
	ents, err := os.ReadDir(lib.Root)
	if err != nil {
		return 0, fmt.Errorf("read library: %w", err)
	}
	if _, err := lib.db.ExecContext(ctx, `DELETE FROM designs;`); err != nil {
		return 0, fmt.Errorf("clear designs: %w", err)
	}
	n := 0
	for _, e := range ents {
		if e.IsDir() || !IsDesignFile(e.Name()) {
			continue
		}
		path := filepath.Join(lib.Root, e.Name())
		f, err := Open(path)
		if err != nil {
			lib.log.Warn("skip unreadable design", slog.String("path", path), slog.Any("err", err))
			continue
		}
		if err := lib.Upsert(ctx, path, f.Design); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// DetectAndRebuild checks the index of the library at root for corruption and
// rebuilds it from the design files when needed. It reports whether a rebuild
// happened.
func DetectAndRebuild(ctx context.Context, root string) (bool, error) {
	path := IndexPath(root)
	lib, err := OpenLibrary(root)
	if err != nil {
		backupIndexFile(path)
		_ = os.Remove(path)
		lib, err = OpenLibrary(root)
		if err != nil {
			return false, fmt.Errorf("reopen after failure: %w", err)
		}
		defer lib.Close()
		_, err = lib.Rebuild(ctx)
		return err == nil, err
	}
	defer lib.Close()
	var chk string
	needs := false
	if err := lib.db.QueryRowContext(ctx, `PRAGMA quick_check;`).Scan(&chk); err != nil || !strings.Contains(strings.ToLower(chk), "ok") {
		needs = true
	}
	if !needs {
		if _, err := lib.db.ExecContext(ctx, `SELECT 1 FROM designs LIMIT 1;`); err != nil {
			needs = true
		}
	}
	if !needs {
		return false, nil
	}
	_, err = lib.Rebuild(ctx)
	return err == nil, err
}

// backupIndexFile copies the index into a timestamped backup next to it.
func backupIndexFile(indexPath string) {
	bdir := filepath.Join(filepath.Dir(indexPath), BackupsDirName)
	_ = os.MkdirAll(bdir, 0o755)
	stamp := time.Now().Format("20060102-150405")
	bak := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", filepath.Base(indexPath), stamp))
	if data, err := os.ReadFile(indexPath); err == nil {
		_ = os.WriteFile(bak, data, 0o644)
	}
}
