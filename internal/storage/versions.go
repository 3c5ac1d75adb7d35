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
	"time"

	"adnate/internal/design"
)

// language=SQL
// dialect=SQLite
const insertVersionSQL = `INSERT INTO versions(design_id, version_number, description, created_at, document)
	VALUES (?, (SELECT COALESCE(MAX(version_number), 0) + 1 FROM versions WHERE design_id = ?), ?, ?, ?)`

// language=SQL
// dialect=SQLite
const selectVersionSQL = `SELECT id, design_id, version_number, description, created_at, document FROM versions WHERE id = ?`

// language=SQL
// dialect=SQLite
const listVersionsSQL = `SELECT id, design_id, version_number, description, created_at, document
	FROM versions WHERE design_id = ? ORDER BY version_number DESC LIMIT ?`

// language=SQL
// dialect=SQLite
const pruneVersionsSQL = `DELETE FROM versions WHERE design_id = ? AND id NOT IN (
	SELECT id FROM versions WHERE design_id = ? ORDER BY version_number DESC LIMIT ?
)`

// Version is a saved copy of a design. Numbers count up from 1 per design.
type Version struct {
	ID          int64
	DesignID    string
	Number      int
	Description string
	CreatedAt   time.Time
	Document    []byte
}

// Design decodes the stored document.
func (v Version) Design() (design.Design, error) { return design.DeserializeDesign(v.Document) }

// CreateVersion stores the current state of d as the next version.
func (lib *Library) CreateVersion(ctx context.Context, d design.Design, description string) (Version, error) {
	doc, err := design.Serialize(d.Metadata, d.Elements)
	if err != nil {
		return Version{}, err
	}
	now := time.Now()
	res, err := lib.db.ExecContext(ctx, insertVersionSQL, d.Metadata.ID, d.Metadata.ID, description, formatTS(now), doc)
	if err != nil {
		return Version{}, fmt.Errorf("insert version: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Version{}, fmt.Errorf("version id: %w", err)
	}
	v, err := lib.Version(ctx, id)
	if err != nil {
		return Version{}, err
	}
	lib.log.Info("version created", slog.String("design", d.Metadata.ID), slog.Int("number", v.Number))
	return v, nil
}

// Version loads one version by id.
func (lib *Library) Version(ctx context.Context, id int64) (Version, error) {
	v, err := scanVersion(lib.db.QueryRowContext(ctx, selectVersionSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Version{}, fmt.Errorf("version %d: %w", id, ErrNotFound)
	}
	return v, err
}

// Versions lists up to limit versions of a design, newest first.
func (lib *Library) Versions(ctx context.Context, designID string, limit int) ([]Version, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := lib.db.QueryContext(ctx, listVersionsSQL, designID, limit)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []Version
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVersion(r rowScanner) (Version, error) {
	var v Version
	var ts string
	if err := r.Scan(&v.ID, &v.DesignID, &v.Number, &v.Description, &ts, &v.Document); err != nil {
		return Version{}, err
	}
	v.CreatedAt = parseTS(ts)
	return v, nil
}

// Rollback restores the design stored in version id. The restore is itself
// recorded as a new version, so history only grows. The returned design has
// UpdatedAt set to now; the caller persists it.
func (lib *Library) Rollback(ctx context.Context, id int64) (design.Design, Version, error) {
	v, err := lib.Version(ctx, id)
	if err != nil {
		return design.Design{}, Version{}, err
	}
	d, err := v.Design()
	if err != nil {
		return design.Design{}, Version{}, fmt.Errorf("version %d: %w", id, err)
	}
	d.Metadata.UpdatedAt = time.Now().UTC()
	nv, err := lib.CreateVersion(ctx, d, fmt.Sprintf("Rolled back to version %d", v.Number))
	if err != nil {
		return design.Design{}, Version{}, err
	}
	return d, nv, nil
}

// CompareVersions reports the elements added, removed and modified going
// from version a to version b.
func (lib *Library) CompareVersions(ctx context.Context, a, b int64) (design.Diff, error) {
	va, err := lib.Version(ctx, a)
	if err != nil {
		return design.Diff{}, err
	}
	vb, err := lib.Version(ctx, b)
	if err != nil {
		return design.Diff{}, err
	}
	da, err := va.Design()
	if err != nil {
		return design.Diff{}, err
	}
	db, err := vb.Design()
	if err != nil {
		return design.Diff{}, err
	}
	return design.Compare(da.Elements, db.Elements), nil
}

// PruneVersions keeps the newest keep versions of a design.
func (lib *Library) PruneVersions(ctx context.Context, designID string, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}
	res, err := lib.db.ExecContext(ctx, pruneVersionsSQL, designID, designID, keep)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
