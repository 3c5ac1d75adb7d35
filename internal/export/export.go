/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"adnate/internal/design"
	applog "adnate/internal/log"
	"adnate/internal/telemetry"

	"github.com/disintegration/imaging"
)

// Format is an export file format.
type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
	PDF Format = "pdf"
)

// Formats lists the supported formats.
var Formats = []Format{PNG, SVG, PDF}

// ErrUnknownFormat is returned for anything outside Formats.
var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat accepts a format name in any case, with or without a leading dot.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")))
	for _, k := range Formats {
		if k == f {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatFor picks the format from a file name's extension.
func FormatFor(path string) (Format, error) { return ParseFormat(filepath.Ext(path)) }

// Write renders d in format f to w.
func Write(ctx context.Context, w io.Writer, d design.Design, f Format, opt Options) (err error) {
	start := time.Now()
	defer func() { telemetry.ObserveExport(string(f), time.Since(start), err) }()
	if err := ctx.Err(); err != nil {
		return err
	}
	switch f {
	case PNG:
		return WritePNG(w, d, opt)
	case SVG:
		return WriteSVG(w, d, opt)
	case PDF:
		return WritePDF(w, d, opt)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// WriteFile renders d into path. An empty format is taken from the
// extension. The file is written next to its destination and renamed into
// place, so a failed export never leaves a truncated file behind.
func WriteFile(ctx context.Context, path string, d design.Design, f Format, opt Options) error {
	if f == "" {
		var err error
		if f, err = FormatFor(path); err != nil {
			return err
		}
	}
	log := applog.WithOperation(applog.WithComponent("export"), "write")
	ctx = applog.WithDesign(ctx, d.Metadata.ID)
	var buf bytes.Buffer
	if err := Write(ctx, &buf, d, f, opt); err != nil {
		log.ErrorContext(ctx, "export failed", slog.String("format", string(f)), slog.Any("err", err))
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", f, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	log.InfoContext(ctx, "exported", slog.String("format", string(f)), slog.String("path", path), slog.Int("bytes", buf.Len()))
	return nil
}

// Thumbnail renders d and shrinks it to fit within maxW x maxH, keeping the
// aspect ratio. It returns PNG bytes.
func Thumbnail(d design.Design, maxW, maxH int) ([]byte, error) {
	if maxW <= 0 || maxH <= 0 {
		return nil, fmt.Errorf("thumbnail bounds %dx%d: %w", maxW, maxH, design.ErrInvalidSize)
	}
	img, err := Render(d, Options{})
	if err != nil {
		return nil, err
	}
	thumb := imaging.Fit(img, maxW, maxH, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// ThumbnailFunc adapts Thumbnail to the preview cache's generator signature.
func ThumbnailFunc(d design.Design, maxW, maxH int) func(context.Context) ([]byte, error) {
	return func(ctx context.Context) ([]byte, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return Thumbnail(d, maxW, maxH)
	}
}
