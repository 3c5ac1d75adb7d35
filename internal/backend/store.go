/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package backend keeps designs in a remote PostgreSQL database, scoped to
// one owner. Every call takes a context and is bounded by the configured
// timeout. Saves are throttled so a chatty autosave cannot flood the server.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"adnate/internal/config"
	"adnate/internal/design"
	applog "adnate/internal/log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/time/rate"
)

var (
	// ErrNotFound is returned when the design does not exist for this owner.
	ErrNotFound = errors.New("remote design not found")
	// ErrNotConfigured is returned by Open when no DSN is set.
	ErrNotConfigured = errors.New("remote store not configured")
)

// Options configures a Store.
type Options struct {
	DSN      string
	Password string
	Owner    string
	Timeout  time.Duration
	// SavesPerSecond and SaveBurst bound Save calls. Zero disables throttling.
	SavesPerSecond float64
	SaveBurst      int
	MaxConns       int32
}

// OptionsFrom maps the remote config section and the keychain password to Options.
func OptionsFrom(rc config.RemoteConfig, password string) Options {
	return Options{
		DSN:            rc.DSN,
		Password:       password,
		Owner:          rc.Owner,
		Timeout:        rc.EffectiveTimeout(),
		SavesPerSecond: rc.SavesPerSecond,
		SaveBurst:      rc.SaveBurst,
	}
}

func (o Options) normalized() Options {
	o.DSN = strings.TrimSpace(o.DSN)
	o.Owner = strings.TrimSpace(o.Owner)
	if o.Owner == "" {
		o.Owner = "local"
	}
	if o.Timeout <= 0 {
		o.Timeout = 15 * time.Second
	}
	if o.SavesPerSecond > 0 && o.SaveBurst < 1 {
		o.SaveBurst = 1
	}
	if o.MaxConns <= 0 {
		o.MaxConns = 4
	}
	return o
}

func (o Options) limiter() *rate.Limiter {
	if o.SavesPerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(o.SavesPerSecond), o.SaveBurst)
}

// Summary is one row of List.
type Summary struct {
	ID        string
	Name      string
	Width     int
	Height    int
	Elements  int
	CreatedAt time.Time
	UpdatedAt time.Time
	Revision  int64
}

// Store is a pooled, owner-scoped design repository.
type Store struct {
	pool    *pgxpool.Pool
	owner   string
	timeout time.Duration
	limiter *rate.Limiter
	log     *slog.Logger
}

// Open connects, pings and brings the schema up to date.
func Open(ctx context.Context, opts Options) (*Store, error) {
	opts = opts.normalized()
	if opts.DSN == "" {
		return nil, ErrNotConfigured
	}
	cfg, err := pgxpool.ParseConfig(opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if opts.Password != "" {
		cfg.ConnConfig.Password = opts.Password
	}
	cfg.MaxConns = opts.MaxConns
	cfg.MinConns = 0
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.HealthCheckPeriod = time.Minute

	log := applog.WithComponent("backend")
	cctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(cctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(cctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	if err := applyMigrations(cctx, pool, log); err != nil {
		pool.Close()
		return nil, err
	}
	log.Info("remote store ready", slog.String("owner", opts.Owner), slog.String("host", cfg.ConnConfig.Host))
	return &Store{pool: pool, owner: opts.Owner, timeout: opts.Timeout, limiter: opts.limiter(), log: log}, nil
}

// Close releases the pool.
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// Owner returns the owner every query is scoped to.
func (s *Store) Owner() string { return s.owner }

func (s *Store) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// Save inserts or replaces the design. A row with the same id owned by
// someone else is reported as ErrNotFound and left untouched. Concurrent
// saves of the same design are last-write-wins.
func (s *Store) Save(ctx context.Context, d design.Design) (int64, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("save throttled: %w", err)
	}
	d = design.Sanitize(d)
	if err := design.ValidateDesign(d); err != nil {
		return 0, err
	}
	elems := d.Elements
	if elems == nil {
		elems = []design.Element{}
	}
	body, err := json.Marshal(elems)
	if err != nil {
		return 0, fmt.Errorf("encode elements: %w", err)
	}
	ctx = applog.WithDesign(ctx, d.Metadata.ID)
	cctx, cancel := s.bounded(ctx)
	defer cancel()

	m := d.Metadata
	var rev int64
	err = s.pool.QueryRow(cctx, `
		INSERT INTO designs (id, owner, name, width, height, elements, preview_url, full_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			width = EXCLUDED.width,
			height = EXCLUDED.height,
			elements = EXCLUDED.elements,
			preview_url = EXCLUDED.preview_url,
			full_url = EXCLUDED.full_url,
			updated_at = EXCLUDED.updated_at,
			revision = designs.revision + 1
		WHERE designs.owner = EXCLUDED.owner
		RETURNING revision`,
		m.ID, s.owner, m.Name, m.Width, m.Height, body, m.PreviewURL, m.FullURL, m.CreatedAt.UTC(), m.UpdatedAt.UTC(),
	).Scan(&rev)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("save %s: %w", m.ID, ErrNotFound)
	}
	if err != nil {
		s.log.ErrorContext(ctx, "remote save failed", slog.Any("err", err))
		return 0, fmt.Errorf("save %s: %w", m.ID, err)
	}
	s.log.DebugContext(ctx, "remote save", slog.Int64("revision", rev), slog.Int("elements", len(elems)))
	return rev, nil
}

// Load fetches one design.
func (s *Store) Load(ctx context.Context, id string) (design.Design, error) {
	cctx, cancel := s.bounded(ctx)
	defer cancel()
	var (
		m       design.Metadata
		body    []byte
		preview *string
		full    *string
	)
	err := s.pool.QueryRow(cctx, `
		SELECT id, name, width, height, elements, preview_url, full_url, created_at, updated_at
		FROM designs WHERE id = $1 AND owner = $2`, id, s.owner,
	).Scan(&m.ID, &m.Name, &m.Width, &m.Height, &body, &preview, &full, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return design.Design{}, fmt.Errorf("load %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return design.Design{}, fmt.Errorf("load %s: %w", id, err)
	}
	if preview != nil {
		m.PreviewURL = *preview
	}
	if full != nil {
		m.FullURL = *full
	}
	m.CreatedAt = m.CreatedAt.UTC()
	m.UpdatedAt = m.UpdatedAt.UTC()
	return decodeRow(m, body)
}

// decodeRow runs the stored element list through the document decoder so
// rows written by older clients get the same defaults as imported files.
func decodeRow(m design.Metadata, elements []byte) (design.Design, error) {
	if len(elements) == 0 {
		elements = []byte("[]")
	}
	doc := append(append([]byte(`{"elements":`), elements...), '}')
	_, elems, err := design.Deserialize(doc)
	if err != nil {
		return design.Design{}, fmt.Errorf("decode %s: %w", m.ID, err)
	}
	return design.Design{Metadata: m, Elements: elems}, nil
}

// List returns the owner's designs, most recently updated first. A non-empty
// name filters case-insensitively by substring.
func (s *Store) List(ctx context.Context, name string, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 100
	}
	cctx, cancel := s.bounded(ctx)
	defer cancel()
	q := `SELECT id, name, width, height, jsonb_array_length(elements), created_at, updated_at, revision
		FROM designs WHERE owner = $1`
	args := []any{s.owner}
	if name = strings.TrimSpace(name); name != "" {
		q += ` AND lower(name) LIKE '%' || $2 || '%' ESCAPE '\'`
		args = append(args, escapeLike(strings.ToLower(name)))
	}
	q += fmt.Sprintf(` ORDER BY updated_at DESC, id LIMIT %d`, limit)
	rows, err := s.pool.Query(cctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list designs: %w", err)
	}
	defer rows.Close()
	var out []Summary
	for rows.Next() {
		var r Summary
		if err := rows.Scan(&r.ID, &r.Name, &r.Width, &r.Height, &r.Elements, &r.CreatedAt, &r.UpdatedAt, &r.Revision); err != nil {
			return nil, err
		}
		r.CreatedAt = r.CreatedAt.UTC()
		r.UpdatedAt = r.UpdatedAt.UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)
	return r.Replace(s)
}

// Delete removes one design.
func (s *Store) Delete(ctx context.Context, id string) error {
	cctx, cancel := s.bounded(ctx)
	defer cancel()
	tag, err := s.pool.Exec(cctx, `DELETE FROM designs WHERE id = $1 AND owner = $2`, id, s.owner)
	if err != nil {
		s.log.ErrorContext(applog.WithDesign(ctx, id), "remote delete failed", slog.Any("err", err))
		return fmt.Errorf("delete %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	return nil
}

// Duplicate copies a stored design under a new id and returns the copy.
func (s *Store) Duplicate(ctx context.Context, id string, now time.Time) (design.Design, error) {
	src, err := s.Load(ctx, id)
	if err != nil {
		return design.Design{}, err
	}
	dup := src.Duplicate(now)
	if _, err := s.Save(ctx, dup); err != nil {
		return design.Design{}, fmt.Errorf("duplicate %s: %w", id, err)
	}
	return dup, nil
}
