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
	"strings"
	"time"
)

// GalleryQuery filters the design gallery.
// Name matches a case-insensitive substring of the design name. Text is a
// full-text query over text element content; it is matched as a phrase.
// Limit/Offset paginate; Limit defaults to 100.
type GalleryQuery struct {
	Name   string
	Text   string
	Limit  int
	Offset int
}

// DesignSummary is one gallery entry.
type DesignSummary struct {
	ID        string
	Name      string
	Path      string // relative to the library root
	Width     int
	Height    int
	Elements  int
	CreatedAt time.Time
	UpdatedAt time.Time
	Snippet   string
}

// List returns the designs of the library, most recently updated first.
func (lib *Library) List(ctx context.Context, q GalleryQuery) ([]DesignSummary, error) {
	var args []any
	var sb strings.Builder
	if t := strings.TrimSpace(q.Text); t != "" {
		sb.WriteString("SELECT d.id, d.name, d.path, d.width, d.height, d.elements, d.created_at, d.updated_at, snippet(fts_designs, 1, '[', ']', '...', 10)\n")
		sb.WriteString("FROM fts_designs JOIN designs d ON fts_designs.rowid = d.doc_id\n")
		sb.WriteString("WHERE fts_designs MATCH ?\n")
		args = append(args, ftsPhrase(t))
	} else {
		sb.WriteString("SELECT d.id, d.name, d.path, d.width, d.height, d.elements, d.created_at, d.updated_at, ''\n")
		sb.WriteString("FROM designs d\nWHERE 1=1\n")
	}
	if n := strings.TrimSpace(q.Name); n != "" {
		sb.WriteString(" AND lower(d.name) LIKE ? ESCAPE '\\'\n")
		args = append(args, likeContains(strings.ToLower(n)))
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := max(q.Offset, 0)
	sb.WriteString("ORDER BY d.updated_at DESC, d.name\n")
	sb.WriteString("LIMIT ? OFFSET ?")
	args = append(args, limit, offset)

	rows, err := lib.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("gallery query: %w", err)
	}
	defer rows.Close()
	var out []DesignSummary
	for rows.Next() {
		var s DesignSummary
		var created, updated string
		var sn sql.NullString
		if err := rows.Scan(&s.ID, &s.Name, &s.Path, &s.Width, &s.Height, &s.Elements, &created, &updated, &sn); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		s.CreatedAt, s.UpdatedAt = parseTS(created), parseTS(updated)
		s.Snippet = sn.String
		out = append(out, s)
	}
	return out, rows.Err()
}

// Lookup returns the gallery entry of one design.
func (lib *Library) Lookup(ctx context.Context, id string) (DesignSummary, error) {
	var s DesignSummary
	var created, updated string
	err := lib.db.QueryRowContext(ctx, `SELECT id, name, path, width, height, elements, created_at, updated_at FROM designs WHERE id=?`, id).
		Scan(&s.ID, &s.Name, &s.Path, &s.Width, &s.Height, &s.Elements, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return DesignSummary{}, fmt.Errorf("design %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return DesignSummary{}, fmt.Errorf("lookup design: %w", err)
	}
	s.CreatedAt, s.UpdatedAt = parseTS(created), parseTS(updated)
	return s, nil
}

func ftsPhrase(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// likeContains builds a LIKE pattern for substring match with escaping.
func likeContains(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return "%" + s + "%"
}
