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
	"os"
	"strconv"
	"strings"
	"time"

	"adnate/internal/design"
)

// EnvPreviewsMaxBytes caps the preview cache of a library.
const EnvPreviewsMaxBytes = "ADN_PREVIEWS_MAX_BYTES"

// Preview returns the cached thumbnail of a design at w×h. A missing entry or
// one rendered from an older revision than sourceUpdated yields nil.
func (lib *Library) Preview(ctx context.Context, designID string, w, h int, sourceUpdated time.Time) ([]byte, error) {
	var blob []byte
	var src string
	err := lib.db.QueryRowContext(ctx, `SELECT blob, source_updated FROM previews WHERE design_id=? AND w=? AND h=?`, designID, w, h).Scan(&blob, &src)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query preview: %w", err)
	}
	if parseTS(src).Before(sourceUpdated.UTC()) {
		return nil, nil
	}
	_, _ = lib.db.ExecContext(ctx, `UPDATE previews SET last_access=? WHERE design_id=? AND w=? AND h=?`, formatTS(time.Now()), designID, w, h)
	return blob, nil
}

// PutPreview stores a thumbnail and evicts least recently used entries above
// the cache cap.
func (lib *Library) PutPreview(ctx context.Context, designID string, w, h int, sourceUpdated time.Time, blob []byte) error {
	if len(blob) == 0 {
		return errors.New("empty preview")
	}
	now := formatTS(time.Now())
	_, err := lib.db.ExecContext(ctx, `INSERT INTO previews(design_id,w,h,blob,size,source_updated,updated_at,last_access)
		VALUES(?,?,?,?,?,?,?,?)
		ON CONFLICT(design_id,w,h) DO UPDATE SET blob=excluded.blob, size=excluded.size, source_updated=excluded.source_updated,
			updated_at=excluded.updated_at, last_access=excluded.last_access`,
		designID, w, h, blob, len(blob), formatTS(sourceUpdated), now, now)
	if err != nil {
		return fmt.Errorf("upsert preview: %w", err)
	}
	if lib.previewCap > 0 {
		return lib.EvictPreviewsToFit(ctx, lib.previewCap)
	}
	return nil
}

// PreviewOrCreate returns the cached thumbnail of d or renders one with gen.
func (lib *Library) PreviewOrCreate(ctx context.Context, d design.Design, w, h int, gen func(context.Context) ([]byte, error)) ([]byte, error) {
	id, updated := d.Metadata.ID, d.Metadata.UpdatedAt
	if b, err := lib.Preview(ctx, id, w, h, updated); err != nil {
		return nil, err
	} else if b != nil {
		return b, nil
	}
	data, err := gen(ctx)
	if err != nil {
		return nil, err
	}
	if err := lib.PutPreview(ctx, id, w, h, updated, data); err != nil {
		return nil, err
	}
	return data, nil
}

// EvictPreviewsToFit deletes least recently used rows until the total size
// is at most capBytes.
func (lib *Library) EvictPreviewsToFit(ctx context.Context, capBytes int64) error {
	var total int64
	if err := lib.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(size),0) FROM previews`).Scan(&total); err != nil {
		return fmt.Errorf("sum previews size: %w", err)
	}
	if total <= capBytes {
		return nil
	}
	rows, err := lib.db.QueryContext(ctx, `SELECT id, size FROM previews ORDER BY
		CASE WHEN last_access IS NULL THEN 0 ELSE 1 END ASC, last_access ASC, id ASC`)
	if err != nil {
		return fmt.Errorf("select victims: %w", err)
	}
	var victims []any
	cur := total
	for rows.Next() {
		var id, sz int64
		if err := rows.Scan(&id, &sz); err != nil {
			_ = rows.Close()
			return err
		}
		victims = append(victims, id)
		cur -= sz
		if cur <= capBytes {
			break
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	// close the cursor before writing; the pool has a single connection
	if err := rows.Close(); err != nil {
		return err
	}
	if len(victims) == 0 {
		return nil
	}
	q := `DELETE FROM previews WHERE id IN (` + strings.TrimSuffix(strings.Repeat("?,", len(victims)), ",") + `)`
	if _, err := lib.db.ExecContext(ctx, q, victims...); err != nil {
		return fmt.Errorf("evict delete: %w", err)
	}
	return nil
}

// TotalPreviewBytes returns the bytes held by the preview cache.
func (lib *Library) TotalPreviewBytes(ctx context.Context) (int64, error) {
	var total int64
	if err := lib.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(size),0) FROM previews`).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// MaxPreviewsBytesFromEnv reads ADN_PREVIEWS_MAX_BYTES, defaulting to 64 MiB.
func MaxPreviewsBytesFromEnv() int64 {
	const def = 64 << 20
	v := os.Getenv(EnvPreviewsMaxBytes)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
